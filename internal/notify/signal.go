package notify

import (
	"context"
	"fmt"

	"github.com/riddhika-19/openboxcodelearn/internal/analysis"
	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
)

// Kind names a signal type. It doubles as the metrics label and the bus
// subject suffix.
type Kind string

const (
	KindFirstMistake Kind = "first_mistake"
	KindConsultation Kind = "consultation"
	KindWeeklyReport Kind = "weekly_report"
)

// Signal is an intent to notify someone about a learner. Signals carry data
// only; delivery belongs to a Dispatcher.
type Signal interface {
	Kind() Kind
	LearnerID() string
}

// FirstMistakeSignal fires once per learner, on the insert that creates the
// learner's history.
type FirstMistakeSignal struct {
	Event mistake.Event `json:"event"`
}

func (s *FirstMistakeSignal) Kind() Kind        { return KindFirstMistake }
func (s *FirstMistakeSignal) LearnerID() string { return s.Event.LearnerID }

// ConsultationSignal carries a fresh report for a consultation offer.
type ConsultationSignal struct {
	Report analysis.Report `json:"report"`
}

func (s *ConsultationSignal) Kind() Kind        { return KindConsultation }
func (s *ConsultationSignal) LearnerID() string { return s.Report.LearnerID }

// WeeklyReportSignal carries a fresh report for periodic admin reporting.
type WeeklyReportSignal struct {
	Report analysis.Report `json:"report"`
}

func (s *WeeklyReportSignal) Kind() Kind        { return KindWeeklyReport }
func (s *WeeklyReportSignal) LearnerID() string { return s.Report.LearnerID }

// Dispatcher delivers signals to the outside world.
type Dispatcher interface {
	Dispatch(ctx context.Context, sig Signal) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, sig Signal) error

func (f DispatcherFunc) Dispatch(ctx context.Context, sig Signal) error { return f(ctx, sig) }

// DispatchError reports that a signal was produced but could not be
// delivered.
type DispatchError struct {
	Kind Kind
	Err  error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s signal: %v", e.Kind, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
