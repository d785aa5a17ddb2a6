package analysis

import (
	"errors"
	"testing"
	"time"

	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
)

var now = time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)

func event(typ mistake.Type, topic string, ts time.Time, resolved bool, attempts int) mistake.Event {
	return mistake.Event{
		ID:         topic + ts.String(),
		LearnerID:  "ada",
		Timestamp:  ts,
		Type:       typ,
		Topic:      topic,
		Difficulty: mistake.DifficultyBeginner,
		Resolved:   resolved,
		Attempts:   attempts,
	}
}

func TestClassify_EmptyHistory(t *testing.T) {
	_, err := Classify(nil, now)
	if !errors.Is(err, ErrNoHistory) {
		t.Errorf("got %v, want ErrNoHistory", err)
	}
}

func TestClassify_SingleResolvedEventIsExcellent(t *testing.T) {
	got, err := Classify([]mistake.Event{event(mistake.TypeSyntax, "Basic Syntax", now, true, 1)}, now)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got != ProgressExcellent {
		t.Errorf("got %q, want %q", got, ProgressExcellent)
	}
}

func TestClassify_ManyRecentFewResolvedIsStruggling(t *testing.T) {
	var history []mistake.Event
	for i := 0; i < 12; i++ {
		history = append(history, event(mistake.TypeLogic, "Loops", now.Add(-time.Duration(i)*time.Hour), i < 3, 2))
	}

	m := ComputeMetrics(history, now)
	if m.RecentCount != 12 || m.ResolvedRate != 0.25 {
		t.Fatalf("metrics = %+v, want 12 recent at 0.25 resolved", m)
	}
	got, err := Classify(history, now)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got != ProgressStruggling {
		t.Errorf("got %q, want %q", got, ProgressStruggling)
	}
}

func TestClassifyMetrics(t *testing.T) {
	tests := []struct {
		name string
		m    Metrics
		want Progress
	}{
		{"excellent", Metrics{2, 0.81, 3}, ProgressExcellent},
		{"excellent needs rate above 0.8", Metrics{2, 0.8, 3}, ProgressGood},
		{"excellent needs few recent", Metrics{3, 1, 1}, ProgressGood},
		{"excellent avg attempts bound", Metrics{0, 1, 3.01}, ProgressGood},
		{"good at bounds", Metrics{5, 0.61, 5}, ProgressGood},
		{"good needs rate above 0.6", Metrics{5, 0.6, 1}, ProgressNeedsImprovement},
		{"good avg attempts bound", Metrics{5, 0.9, 5.5}, ProgressNeedsImprovement},
		{"needs improvement ignores attempts", Metrics{10, 0.41, 50}, ProgressNeedsImprovement},
		{"needs improvement needs rate above 0.4", Metrics{10, 0.4, 1}, ProgressStruggling},
		{"too many recent", Metrics{11, 1, 1}, ProgressStruggling},
		{"nothing resolved", Metrics{0, 0, 1}, ProgressStruggling},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyMetrics(tt.m); got != tt.want {
				t.Errorf("ClassifyMetrics(%+v) = %q, want %q", tt.m, got, tt.want)
			}
		})
	}
}

func TestComputeMetrics_RecentWindowInclusive(t *testing.T) {
	history := []mistake.Event{
		event(mistake.TypeSyntax, "a", now.Add(-RecentWindow), true, 1),
		event(mistake.TypeSyntax, "b", now.Add(-RecentWindow-time.Nanosecond), false, 2),
		event(mistake.TypeSyntax, "c", now.Add(-30*24*time.Hour), false, 3),
		event(mistake.TypeSyntax, "d", now, false, 2),
	}

	m := ComputeMetrics(history, now)
	if m.RecentCount != 2 {
		t.Errorf("recent = %d, want 2", m.RecentCount)
	}
	if m.ResolvedRate != 0.25 {
		t.Errorf("resolved rate = %v, want 0.25", m.ResolvedRate)
	}
	if m.AvgAttempts != 2 {
		t.Errorf("avg attempts = %v, want 2", m.AvgAttempts)
	}
}

func TestClassify_OldHistoryCanBeExcellent(t *testing.T) {
	// Ten resolved events a month ago: none are recent.
	var history []mistake.Event
	for i := 0; i < 10; i++ {
		history = append(history, event(mistake.TypeLogic, "Loops", now.Add(-30*24*time.Hour), true, 1))
	}
	got, _ := Classify(history, now)
	if got != ProgressExcellent {
		t.Errorf("got %q, want %q", got, ProgressExcellent)
	}
}

func TestRunProgressRules_CustomTable(t *testing.T) {
	rules := []ProgressRule{
		{Progress: ProgressGood, MaxRecent: 100, MinResolvedRate: -1, MaxAvgAttempts: 100},
	}
	if got := RunProgressRules(rules, Metrics{50, 0, 10}); got != ProgressGood {
		t.Errorf("got %q, want %q", got, ProgressGood)
	}
	if got := RunProgressRules(nil, Metrics{0, 1, 1}); got != ProgressStruggling {
		t.Errorf("empty rule table: got %q, want %q", got, ProgressStruggling)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	history := []mistake.Event{
		event(mistake.TypeSyntax, "a", now.Add(-time.Hour), true, 2),
		event(mistake.TypeLogic, "b", now.Add(-48*time.Hour), false, 4),
		event(mistake.TypeRuntime, "c", now.Add(-9*24*time.Hour), true, 1),
	}
	first, _ := Classify(history, now)
	for i := 0; i < 10; i++ {
		got, _ := Classify(history, now)
		if got != first {
			t.Fatalf("run %d: got %q, want %q", i, got, first)
		}
	}
}
