package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/imagegate/internal/cache"
	"github.com/sells-group/imagegate/internal/declog"
)

func TestObserveAndSnapshot(t *testing.T) {
	m := New()

	m.Observe("validate", 10*time.Millisecond)
	m.Observe("validate", 30*time.Millisecond)
	m.Observe("probe", 5*time.Millisecond)

	snap := m.Snapshot()
	require.Contains(t, snap, "validate")
	require.Contains(t, snap, "probe")

	v := snap["validate"]
	assert.Equal(t, int64(2), v.Count)
	assert.InDelta(t, 10.0, v.MinMs, 0.5)
	assert.InDelta(t, 30.0, v.MaxMs, 0.5)
	assert.InDelta(t, 20.0, v.AvgMs, 0.5)
	assert.Greater(t, v.PerSecond, 0.0)
}

func TestReset(t *testing.T) {
	m := New()
	m.Observe("validate", time.Millisecond)

	m.Reset()

	assert.Empty(t, m.Snapshot())
}

func TestHealthHealthy(t *testing.T) {
	m := New()

	report := m.Health(declog.AggregateStats{
		Total:                   100,
		Successful:              90,
		Rejected:                9,
		Errors:                  1,
		AverageValidationTimeMs: 50,
	}, cache.Stats{HitRate: 0.8, Size: 10})

	assert.Equal(t, StatusHealthy, report.Status)
	assert.Len(t, report.Checks, 3)
}

func TestHealthDegradedOnErrorRate(t *testing.T) {
	m := New()

	report := m.Health(declog.AggregateStats{
		Total:  10,
		Errors: 3,
	}, cache.Stats{})

	assert.Equal(t, StatusDegraded, report.Status)
}

func TestHealthUnhealthyOnErrorRate(t *testing.T) {
	m := New()

	report := m.Health(declog.AggregateStats{
		Total:  10,
		Errors: 6,
	}, cache.Stats{})

	assert.Equal(t, StatusUnhealthy, report.Status)
}

func TestHealthDegradedOnLatency(t *testing.T) {
	m := New()

	report := m.Health(declog.AggregateStats{
		Total:                   10,
		Successful:              10,
		AverageValidationTimeMs: 5000,
	}, cache.Stats{})

	assert.Equal(t, StatusDegraded, report.Status)
}

func TestHealthNoTraffic(t *testing.T) {
	m := New()

	report := m.Health(declog.AggregateStats{}, cache.Stats{})

	assert.Equal(t, StatusHealthy, report.Status)
}
