package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/riddhika-19/openboxcodelearn/internal/analysis"
	"github.com/riddhika-19/openboxcodelearn/internal/logging"
	"github.com/riddhika-19/openboxcodelearn/internal/metrics"
	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
	"github.com/riddhika-19/openboxcodelearn/internal/store"
)

// State is where a learner sits in the first-mistake state machine.
type State string

const (
	StateNoMistakesYet State = "no-mistakes-yet"
	StateHasMistakes   State = "has-mistakes"
)

// Trigger decides when signals fire. It records mistakes, emits the one-time
// first-mistake signal and builds on-demand report signals.
type Trigger struct {
	repo       store.MistakeRepo
	builder    *analysis.Builder
	dispatcher Dispatcher
	log        *logging.Logger
	metrics    *metrics.Metrics
}

// Option configures a Trigger.
type Option func(*Trigger)

// WithDispatcher sets where signals are delivered. Without one, signals are
// only returned to the caller.
func WithDispatcher(d Dispatcher) Option {
	return func(t *Trigger) { t.dispatcher = d }
}

// WithBuilder replaces the default report builder.
func WithBuilder(b *analysis.Builder) Option {
	return func(t *Trigger) { t.builder = b }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(t *Trigger) { t.log = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Trigger) { t.metrics = m }
}

// NewTrigger creates a Trigger over repo.
func NewTrigger(repo store.MistakeRepo, opts ...Option) *Trigger {
	t := &Trigger{repo: repo, log: logging.Nop()}
	for _, opt := range opts {
		opt(t)
	}
	if t.builder == nil {
		t.builder = analysis.NewBuilder(repo)
	}
	return t
}

// Record inserts n. When the insert creates the learner's history, the
// returned FirstMistakeSignal is non-nil and has been dispatched. Delivery
// failures are logged and counted but never fail the insert.
func (t *Trigger) Record(ctx context.Context, n mistake.New) (mistake.Event, *FirstMistakeSignal, error) {
	ev, size, err := t.repo.Insert(ctx, n)
	if err != nil {
		return mistake.Event{}, nil, err
	}
	t.metrics.RecordMistake(string(ev.Type))
	t.log.Debug("mistake recorded",
		"learner", ev.LearnerID, "event", ev.ID, "type", ev.Type, "history", size)

	if size != 1 {
		return ev, nil, nil
	}

	sig := &FirstMistakeSignal{Event: ev}
	if err := t.dispatch(ctx, sig); err != nil {
		t.log.Warn("first mistake signal not delivered", "learner", ev.LearnerID, "error", err)
	}
	return ev, sig, nil
}

// RequestConsultationSignal builds a fresh report and dispatches it as a
// consultation offer. It returns an error wrapping analysis.ErrNoHistory,
// without dispatching, when the learner has no events. A delivery failure
// returns the signal together with a *DispatchError.
func (t *Trigger) RequestConsultationSignal(ctx context.Context, learnerID string) (*ConsultationSignal, error) {
	report, err := t.buildReport(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	sig := &ConsultationSignal{Report: *report}
	if err := t.dispatch(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// RequestWeeklyReportSignal is RequestConsultationSignal for the periodic
// admin report. Cadence is the caller's concern.
func (t *Trigger) RequestWeeklyReportSignal(ctx context.Context, learnerID string) (*WeeklyReportSignal, error) {
	report, err := t.buildReport(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	sig := &WeeklyReportSignal{Report: *report}
	if err := t.dispatch(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// LearnerState reports the learner's first-mistake state.
func (t *Trigger) LearnerState(ctx context.Context, learnerID string) (State, error) {
	history, err := t.repo.HistoryFor(ctx, learnerID)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	if len(history) == 0 {
		return StateNoMistakesYet, nil
	}
	return StateHasMistakes, nil
}

func (t *Trigger) buildReport(ctx context.Context, learnerID string) (*analysis.Report, error) {
	report, err := t.builder.Build(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	t.metrics.RecordReport(string(report.OverallProgress))
	return report, nil
}

func (t *Trigger) dispatch(ctx context.Context, sig Signal) error {
	if t.dispatcher == nil {
		return nil
	}

	start := time.Now()
	err := t.dispatcher.Dispatch(ctx, sig)
	t.metrics.RecordSignal(string(sig.Kind()), err, time.Since(start).Seconds())
	if err != nil {
		t.log.Error("signal dispatch failed",
			"kind", sig.Kind(), "learner", sig.LearnerID(), "error", err)
		return &DispatchError{Kind: sig.Kind(), Err: err}
	}
	return nil
}
