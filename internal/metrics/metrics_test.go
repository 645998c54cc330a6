package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ObserveLoad(2*time.Second, 1500)
	m.IncrementLoadFailure("fetch_error")
	m.IncrementSearch("id", "found")
	m.IncrementSearch("id", "found")
	m.SetActiveSessions(4)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadOutcome.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadOutcome.WithLabelValues("fetch_error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchOutcome.WithLabelValues("id", "found")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ActiveSessions))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveLoad(time.Second, 1)
		m.IncrementLoadFailure("parse_error")
		m.IncrementSearch("full", "empty")
		m.SetActiveSessions(1)
	})
}
