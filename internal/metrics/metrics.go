// Package metrics exposes Prometheus instrumentation for dataset loads,
// searches and sessions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// Dataset loads by outcome: "ok", "fetch_error", "parse_error", "busy"
	LoadOutcome *prometheus.CounterVec

	// Wall-clock duration of successful loads
	LoadDuration prometheus.Histogram

	// Rows in each successfully loaded table
	LoadedRows prometheus.Histogram

	// Searches by mode and outcome: "found", "empty", "skipped", "invalid", "not_loaded"
	SearchOutcome *prometheus.CounterVec

	// Sessions currently held in memory
	ActiveSessions prometheus.Gauge
}

// NewWithRegistry registers the collectors with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoadOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nonfiler_dataset_loads_total",
			Help: "Dataset load attempts by outcome",
		}, []string{"outcome"}),

		LoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "nonfiler_dataset_load_duration_seconds",
			Help:    "Duration of successful dataset loads",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),

		LoadedRows: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "nonfiler_dataset_rows",
			Help:    "Rows per successfully loaded table",
			Buckets: prometheus.ExponentialBuckets(10, 10, 7),
		}),

		SearchOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nonfiler_searches_total",
			Help: "Searches by mode and outcome",
		}, []string{"mode", "outcome"}),

		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nonfiler_sessions_active",
			Help: "Sessions currently held in memory",
		}),
	}
}

// ObserveLoad records a successful load.
func (m *Metrics) ObserveLoad(d time.Duration, rows int) {
	if m != nil {
		m.LoadOutcome.WithLabelValues("ok").Inc()
		m.LoadDuration.Observe(d.Seconds())
		m.LoadedRows.Observe(float64(rows))
	}
}

// IncrementLoadFailure records a failed load.
func (m *Metrics) IncrementLoadFailure(outcome string) {
	if m != nil {
		m.LoadOutcome.WithLabelValues(outcome).Inc()
	}
}

// IncrementSearch records a search outcome.
func (m *Metrics) IncrementSearch(mode, outcome string) {
	if m != nil {
		m.SearchOutcome.WithLabelValues(mode, outcome).Inc()
	}
}

// SetActiveSessions records the number of held sessions.
func (m *Metrics) SetActiveSessions(n int) {
	if m != nil {
		m.ActiveSessions.Set(float64(n))
	}
}
