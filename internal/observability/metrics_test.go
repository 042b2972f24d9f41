package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/queries", "POST", 201, 4*time.Millisecond)
	m.RecordRequest("/queries", "POST", 201, 2*time.Millisecond)
	m.RecordError("/queries/:id/close", "POST", "NOT_FOUND")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/queries|POST|201"])
	assert.InDelta(t, 3.0, snap.AvgLatencyMillis["/queries|POST|201"], 0.001)
	assert.Equal(t, int64(1), snap.Errors["/queries/:id/close|POST|NOT_FOUND"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	assert.Empty(t, m.Snapshot().Requests)
}
