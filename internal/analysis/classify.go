package analysis

import (
	"errors"
	"math"
	"time"

	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
)

// ErrNoHistory is returned when a learner has no recorded mistakes, so there
// is nothing to classify or report. Callers should treat it as "nothing to
// report yet".
var ErrNoHistory = errors.New("learner has no mistake history")

// Progress is the coarse trajectory label derived from a learner's history.
type Progress string

const (
	ProgressExcellent        Progress = "excellent"
	ProgressGood             Progress = "good"
	ProgressNeedsImprovement Progress = "needs-improvement"
	ProgressStruggling       Progress = "struggling"
)

// RecentWindow is how far back from now an event counts as recent. The
// boundary is inclusive: an event exactly RecentWindow old is recent.
const RecentWindow = 7 * 24 * time.Hour

// Metrics are the three inputs the progress rules look at.
type Metrics struct {
	RecentCount  int
	ResolvedRate float64 // resolved events / total events (0.0–1.0)
	AvgAttempts  float64
}

// ComputeMetrics derives Metrics from a non-empty history.
func ComputeMetrics(history []mistake.Event, now time.Time) Metrics {
	cutoff := now.Add(-RecentWindow)

	var recent, resolved, attempts int
	for _, ev := range history {
		if !ev.Timestamp.Before(cutoff) {
			recent++
		}
		if ev.Resolved {
			resolved++
		}
		attempts += ev.Attempts
	}

	total := float64(len(history))
	return Metrics{
		RecentCount:  recent,
		ResolvedRate: float64(resolved) / total,
		AvgAttempts:  float64(attempts) / total,
	}
}

// ProgressRule assigns Progress when all of its bounds hold.
type ProgressRule struct {
	Progress Progress

	// MaxRecent is the highest recent-event count allowed (inclusive).
	MaxRecent int

	// MinResolvedRate is the resolved rate that must be exceeded (exclusive).
	MinResolvedRate float64

	// MaxAvgAttempts is the highest average attempt count allowed
	// (inclusive). Use math.Inf(1) for no limit.
	MaxAvgAttempts float64
}

// Matches reports whether m satisfies every bound of the rule.
func (r ProgressRule) Matches(m Metrics) bool {
	return m.RecentCount <= r.MaxRecent &&
		m.ResolvedRate > r.MinResolvedRate &&
		m.AvgAttempts <= r.MaxAvgAttempts
}

// DefaultProgressRules returns the progress rules in priority order.
func DefaultProgressRules() []ProgressRule {
	return []ProgressRule{
		{Progress: ProgressExcellent, MaxRecent: 2, MinResolvedRate: 0.8, MaxAvgAttempts: 3},
		{Progress: ProgressGood, MaxRecent: 5, MinResolvedRate: 0.6, MaxAvgAttempts: 5},
		{Progress: ProgressNeedsImprovement, MaxRecent: 10, MinResolvedRate: 0.4, MaxAvgAttempts: math.Inf(1)},
	}
}

// RunProgressRules returns the Progress of the first matching rule, or
// ProgressStruggling when none match.
func RunProgressRules(rules []ProgressRule, m Metrics) Progress {
	for _, r := range rules {
		if r.Matches(m) {
			return r.Progress
		}
	}
	return ProgressStruggling
}

// ClassifyMetrics applies the default rules to m.
func ClassifyMetrics(m Metrics) Progress {
	return RunProgressRules(DefaultProgressRules(), m)
}

// Classify labels a learner's trajectory relative to now.
func Classify(history []mistake.Event, now time.Time) (Progress, error) {
	if len(history) == 0 {
		return "", ErrNoHistory
	}
	return ClassifyMetrics(ComputeMetrics(history, now)), nil
}
