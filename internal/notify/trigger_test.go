package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riddhika-19/openboxcodelearn/internal/analysis"
	"github.com/riddhika-19/openboxcodelearn/internal/metrics"
	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
	"github.com/riddhika-19/openboxcodelearn/internal/store/memstore"
	"github.com/riddhika-19/openboxcodelearn/internal/store/storetest"
)

// recorder captures dispatched signals.
type recorder struct {
	mu      sync.Mutex
	signals []Signal
	err     error
}

func (r *recorder) Dispatch(_ context.Context, sig Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, sig)
	return r.err
}

func (r *recorder) kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Kind
	for _, s := range r.signals {
		out = append(out, s.Kind())
	}
	return out
}

func newTrigger(t *testing.T, d Dispatcher) (*Trigger, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	return NewTrigger(memstore.New(), WithDispatcher(d), WithMetrics(m)), m
}

func TestRecord_FirstMistakeFiresOnce(t *testing.T) {
	rec := &recorder{}
	trig, _ := newTrigger(t, rec)
	ctx := context.Background()

	ev, sig, err := trig.Record(ctx, storetest.Event("ada", mistake.TypeSyntax, "Basic Syntax"))
	require.NoError(t, err)
	require.NotNil(t, sig)
	assert.Equal(t, ev, sig.Event)

	_, sig, err = trig.Record(ctx, storetest.Event("ada", mistake.TypeLogic, "Loops"))
	require.NoError(t, err)
	assert.Nil(t, sig, "second event must not re-fire")

	_, sig, err = trig.Record(ctx, storetest.Event("bob", mistake.TypeLogic, "Loops"))
	require.NoError(t, err)
	assert.NotNil(t, sig, "another learner gets their own first signal")

	assert.Equal(t, []Kind{KindFirstMistake, KindFirstMistake}, rec.kinds())
}

func TestRecord_ConcurrentFirstInsertsFireExactlyOnce(t *testing.T) {
	rec := &recorder{}
	trig, _ := newTrigger(t, rec)
	ctx := context.Background()

	const writers = 16
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fired int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, sig, err := trig.Record(ctx, storetest.Event("ada", mistake.TypeRuntime, "Pointers"))
			if err != nil {
				t.Errorf("record: %v", err)
				return
			}
			if sig != nil {
				mu.Lock()
				fired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fired)
	assert.Len(t, rec.kinds(), 1)
}

func TestRecord_InvalidEvent(t *testing.T) {
	rec := &recorder{}
	trig, _ := newTrigger(t, rec)

	bad := storetest.Event("ada", mistake.TypeSyntax, "")
	_, sig, err := trig.Record(context.Background(), bad)

	var inv *mistake.InvalidEventError
	require.True(t, errors.As(err, &inv), "got %v", err)
	assert.Nil(t, sig)
	assert.Empty(t, rec.kinds())

	state, err := trig.LearnerState(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, StateNoMistakesYet, state)
}

func TestRecord_DispatchFailureDoesNotFailInsert(t *testing.T) {
	rec := &recorder{err: errors.New("sendgrid down")}
	trig, m := newTrigger(t, rec)

	ev, sig, err := trig.Record(context.Background(), storetest.Event("ada", mistake.TypeSyntax, "Basic Syntax"))
	require.NoError(t, err)
	assert.NotNil(t, sig)
	assert.NotEmpty(t, ev.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Signals.WithLabelValues(string(KindFirstMistake), metrics.ResultFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MistakesRecorded.WithLabelValues("syntax")))
}

func TestLearnerState(t *testing.T) {
	trig, _ := newTrigger(t, nil)
	ctx := context.Background()

	state, err := trig.LearnerState(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, StateNoMistakesYet, state)

	_, _, err = trig.Record(ctx, storetest.Event("ada", mistake.TypeSyntax, "Basic Syntax"))
	require.NoError(t, err)

	state, err = trig.LearnerState(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, StateHasMistakes, state)
}

func TestOnDemandSignals(t *testing.T) {
	rec := &recorder{}
	trig, m := newTrigger(t, rec)
	ctx := context.Background()

	_, _, err := trig.Record(ctx, storetest.Event("ada", mistake.TypeSyntax, "Loops & Iterations"))
	require.NoError(t, err)

	consult, err := trig.RequestConsultationSignal(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, "ada", consult.LearnerID())
	assert.Equal(t, 1, consult.Report.TotalMistakes)

	// Repeatable without limit.
	_, err = trig.RequestConsultationSignal(ctx, "ada")
	require.NoError(t, err)

	weekly, err := trig.RequestWeeklyReportSignal(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, KindWeeklyReport, weekly.Kind())

	assert.Equal(t, []Kind{KindFirstMistake, KindConsultation, KindConsultation, KindWeeklyReport}, rec.kinds())
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ReportsBuilt.WithLabelValues(string(consult.Report.OverallProgress))))
}

func TestOnDemandSignals_NoHistory(t *testing.T) {
	rec := &recorder{}
	trig, _ := newTrigger(t, rec)
	ctx := context.Background()

	sig, err := trig.RequestConsultationSignal(ctx, "nobody")
	assert.Nil(t, sig)
	assert.ErrorIs(t, err, analysis.ErrNoHistory)

	weekly, err := trig.RequestWeeklyReportSignal(ctx, "nobody")
	assert.Nil(t, weekly)
	assert.ErrorIs(t, err, analysis.ErrNoHistory)

	assert.Empty(t, rec.kinds())
}

func TestOnDemandSignals_DispatchError(t *testing.T) {
	boom := errors.New("nats unavailable")
	rec := &recorder{}
	trig, _ := newTrigger(t, rec)
	ctx := context.Background()

	_, _, err := trig.Record(ctx, storetest.Event("ada", mistake.TypeSyntax, "Basic Syntax"))
	require.NoError(t, err)

	rec.err = boom
	sig, err := trig.RequestWeeklyReportSignal(ctx, "ada")
	require.NotNil(t, sig, "the report is still returned")

	var derr *DispatchError
	require.True(t, errors.As(err, &derr), "got %v", err)
	assert.Equal(t, KindWeeklyReport, derr.Kind)
	assert.ErrorIs(t, err, boom)
}

func TestNewTrigger_CustomBuilder(t *testing.T) {
	fixed := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	repo := memstore.New(memstore.WithClock(func() time.Time { return fixed }))
	trig := NewTrigger(repo, WithBuilder(analysis.NewBuilder(repo, analysis.WithClock(func() time.Time { return fixed }))))

	_, _, err := trig.Record(context.Background(), storetest.Event("ada", mistake.TypeSyntax, "Basic Syntax"))
	require.NoError(t, err)

	sig, err := trig.RequestConsultationSignal(context.Background(), "ada")
	require.NoError(t, err)
	assert.True(t, sig.Report.ReportDate.Equal(fixed))
}

func TestDispatcherFunc(t *testing.T) {
	var got Kind
	d := DispatcherFunc(func(_ context.Context, sig Signal) error {
		got = sig.Kind()
		return nil
	})
	require.NoError(t, d.Dispatch(context.Background(), &ConsultationSignal{}))
	assert.Equal(t, KindConsultation, got)
}
