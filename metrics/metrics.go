// Package metrics counts what a pipeline run did. A run is one process, so
// there is no scrape endpoint: the registry is written out as a textfile for
// the node_exporter textfile collector when the run ends.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is nil-safe: every method on a nil *Metrics does nothing, so
// library callers can run without one.
type Metrics struct {
	Registry *prometheus.Registry

	// FlightRows counts flight-list rows by outcome (retained, malformed, ...)
	FlightRows *prometheus.CounterVec
	// FlightFiles counts flight-list files fully read
	FlightFiles prometheus.Counter
	// CaseRows counts case-feed rows by outcome
	CaseRows *prometheus.CounterVec
	// Artifacts counts written outputs by name
	Artifacts *prometheus.CounterVec
	// StageDuration measures each pipeline stage
	StageDuration *prometheus.HistogramVec
	// LastSuccess is the unix time the run finished without error
	LastSuccess prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		FlightRows: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightmatrix_flight_rows_total",
				Help: "Flight-list rows processed, by outcome",
			},
			[]string{"outcome"},
		),
		FlightFiles: f.NewCounter(
			prometheus.CounterOpts{
				Name: "flightmatrix_flight_files_total",
				Help: "Flight-list files read to completion",
			},
		),
		CaseRows: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightmatrix_case_rows_total",
				Help: "Case-feed rows processed, by outcome",
			},
			[]string{"outcome"},
		),
		Artifacts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightmatrix_artifacts_written_total",
				Help: "Output artifacts written",
			},
			[]string{"artifact"},
		),
		StageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flightmatrix_stage_duration_seconds",
				Help:    "Pipeline stage duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 14), // 0.1s to ~27m
			},
			[]string{"stage", "status"},
		),
		LastSuccess: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "flightmatrix_last_success_timestamp_seconds",
				Help: "Unix time of the last successful run",
			},
		),
	}
}

func (m *Metrics) FlightOutcome(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.FlightRows.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) FlightFileDone() {
	if m == nil {
		return
	}
	m.FlightFiles.Inc()
}

func (m *Metrics) CaseOutcome(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.CaseRows.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) ArtifactWritten(name string) {
	if m == nil {
		return
	}
	m.Artifacts.WithLabelValues(name).Inc()
}

func (m *Metrics) ObserveStage(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
	}
	m.StageDuration.WithLabelValues(stage, status).Observe(d.Seconds())
}

func (m *Metrics) MarkSuccess(t time.Time) {
	if m == nil {
		return
	}
	m.LastSuccess.Set(float64(t.Unix()))
}

// WriteTextfile writes the registry in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
