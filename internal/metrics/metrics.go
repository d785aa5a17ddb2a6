package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Signal delivery outcomes for the result label.
const (
	ResultSent   = "sent"
	ResultFailed = "failed"
)

// Metrics holds the Prometheus collectors for openbox. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	MistakesRecorded *prometheus.CounterVec
	Signals          *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	ReportsBuilt     *prometheus.CounterVec
	WeeklyRuns       *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		MistakesRecorded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openbox_mistakes_recorded_total",
				Help: "Total number of mistake events recorded",
			},
			[]string{"type"},
		),
		Signals: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openbox_signals_total",
				Help: "Total number of signals emitted, by delivery result",
			},
			[]string{"kind", "result"},
		),
		DispatchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "openbox_dispatch_duration_seconds",
				Help:    "Time spent handing a signal to its dispatcher",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		ReportsBuilt: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openbox_reports_built_total",
				Help: "Total number of learner reports built, by overall progress",
			},
			[]string{"progress"},
		),
		WeeklyRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openbox_weekly_runs_total",
				Help: "Weekly report fan-out runs, by outcome",
			},
			[]string{"result"},
		),
	}
}

// Handler serves the metrics gathered from g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordMistake counts one recorded event of the given type.
func (m *Metrics) RecordMistake(mistakeType string) {
	if m == nil {
		return
	}
	m.MistakesRecorded.WithLabelValues(mistakeType).Inc()
}

// RecordSignal counts one signal and how long its dispatch took.
func (m *Metrics) RecordSignal(kind string, err error, seconds float64) {
	if m == nil {
		return
	}
	result := ResultSent
	if err != nil {
		result = ResultFailed
	}
	m.Signals.WithLabelValues(kind, result).Inc()
	m.DispatchDuration.WithLabelValues(kind).Observe(seconds)
}

// RecordReport counts one built report.
func (m *Metrics) RecordReport(progress string) {
	if m == nil {
		return
	}
	m.ReportsBuilt.WithLabelValues(progress).Inc()
}

// RecordWeeklyRun counts one scheduled fan-out.
func (m *Metrics) RecordWeeklyRun(failed int) {
	if m == nil {
		return
	}
	result := "ok"
	if failed > 0 {
		result = "partial"
	}
	m.WeeklyRuns.WithLabelValues(result).Inc()
}
