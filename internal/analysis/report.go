package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
)

// Report is an analytical snapshot of one learner's mistake history. It is
// recomputed on every request and never stored.
type Report struct {
	LearnerID          string               `json:"learnerId"`
	LearnerName        string               `json:"learnerName"`
	LearnerEmail       string               `json:"learnerEmail"`
	TotalMistakes      int                  `json:"totalMistakes"`
	MistakesByType     map[mistake.Type]int `json:"mistakesByType"`
	MostCommonMistakes []mistake.Type       `json:"mostCommonMistakes"`
	StrugglingTopics   []string             `json:"strugglingTopics"`
	ImprovementAreas   []string             `json:"improvementAreas"`
	RecommendedLessons []string             `json:"recommendedLessons"`
	OverallProgress    Progress             `json:"overallProgress"`
	ReportDate         time.Time            `json:"reportDate"`
}

// HistoryReader is the slice of the store the builder needs.
type HistoryReader interface {
	HistoryFor(ctx context.Context, learnerID string) ([]mistake.Event, error)
}

// Builder composes classification, aggregation and recommendation into a
// Report.
type Builder struct {
	src         HistoryReader
	now         func() time.Time
	recommender *Recommender
	rules       []ProgressRule
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithClock sets the time used for the recent window and ReportDate.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// WithRecommender replaces the default rule tables.
func WithRecommender(r *Recommender) BuilderOption {
	return func(b *Builder) { b.recommender = r }
}

// WithProgressRules replaces the default progress rules.
func WithProgressRules(rules []ProgressRule) BuilderOption {
	return func(b *Builder) { b.rules = rules }
}

// NewBuilder creates a Builder reading history from src.
func NewBuilder(src HistoryReader, opts ...BuilderOption) *Builder {
	b := &Builder{
		src:         src,
		now:         func() time.Time { return time.Now().UTC() },
		recommender: DefaultRecommender(),
		rules:       DefaultProgressRules(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build reads the learner's current history and derives a fresh Report.
// It returns an error wrapping ErrNoHistory when the learner has no events.
func (b *Builder) Build(ctx context.Context, learnerID string) (*Report, error) {
	history, err := b.src.HistoryFor(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load history for %s: %w", learnerID, err)
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("build report for %s: %w", learnerID, ErrNoHistory)
	}
	return b.FromHistory(history), nil
}

// FromHistory derives a Report from a non-empty history without touching the
// store.
func (b *Builder) FromHistory(history []mistake.Event) *Report {
	now := b.now()
	agg := Summarize(history)
	recs := b.recommender.Recommend(agg)
	first := history[0]

	return &Report{
		LearnerID:          first.LearnerID,
		LearnerName:        first.LearnerName,
		LearnerEmail:       first.LearnerEmail,
		TotalMistakes:      agg.Total,
		MistakesByType:     agg.ByType,
		MostCommonMistakes: agg.MostCommonMistakes,
		StrugglingTopics:   agg.StrugglingTopics,
		ImprovementAreas:   recs.ImprovementAreas,
		RecommendedLessons: recs.Lessons,
		OverallProgress:    RunProgressRules(b.rules, ComputeMetrics(history, now)),
		ReportDate:         now,
	}
}
