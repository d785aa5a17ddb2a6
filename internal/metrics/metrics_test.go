package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordMistake("syntax")
	m.RecordMistake("syntax")
	m.RecordSignal("first_mistake", nil, 0.01)
	m.RecordSignal("weekly_report", errors.New("smtp down"), 0.2)
	m.RecordReport("good")
	m.RecordWeeklyRun(0)
	m.RecordWeeklyRun(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MistakesRecorded.WithLabelValues("syntax")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Signals.WithLabelValues("first_mistake", ResultSent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Signals.WithLabelValues("weekly_report", ResultFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsBuilt.WithLabelValues("good")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WeeklyRuns.WithLabelValues("partial")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordMistake("logic")
	m.RecordSignal("consultation", nil, 0)
	m.RecordReport("excellent")
	m.RecordWeeklyRun(1)
}

func TestHandlerExposesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordMistake("runtime")

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), `openbox_mistakes_recorded_total{type="runtime"} 1`), string(body))
}
