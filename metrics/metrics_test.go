package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.FlightOutcome("retained", 3)
	m.FlightOutcome("retained", 2)
	m.FlightOutcome("self_loop", 1)
	m.FlightOutcome("malformed", 0)
	m.FlightFileDone()
	m.CaseOutcome("kept", 4)
	m.ArtifactWritten("flights_countries.json")

	assert.Equal(t, 5.0, testutil.ToFloat64(m.FlightRows.WithLabelValues("retained")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FlightRows.WithLabelValues("self_loop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FlightFiles))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.CaseRows.WithLabelValues("kept")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Artifacts.WithLabelValues("flights_countries.json")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.FlightOutcome("retained", 1)
		m.FlightFileDone()
		m.CaseOutcome("kept", 1)
		m.ArtifactWritten("x")
		m.ObserveStage("flights", time.Second, nil)
		m.MarkSuccess(time.Now())
	})
	assert.NoError(t, m.WriteTextfile("/nonexistent/metrics.prom"))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveStage("flights", 2*time.Second, nil)
	m.ObserveStage("cases", time.Second, errors.New("boom"))
	m.MarkSuccess(time.Unix(1600000000, 0))

	p := filepath.Join(t.TempDir(), "flightmatrix.prom")
	require.NoError(t, m.WriteTextfile(p))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	body := string(b)
	assert.Contains(t, body, `flightmatrix_stage_duration_seconds_count{stage="flights",status="success"} 1`)
	assert.Contains(t, body, `flightmatrix_stage_duration_seconds_count{stage="cases",status="failed"} 1`)
	assert.Contains(t, body, "flightmatrix_last_success_timestamp_seconds 1.6e+09")
}
