// Package monitoring provides independent timing and throughput counters
// for the validation pipeline, plus a health-check summary combining them
// with cache and decision-log telemetry.
package monitoring

import (
	"sync"
	"time"
)

// OpStats is the timing summary for one named operation.
type OpStats struct {
	Count     int64   `json:"count"`
	TotalMs   float64 `json:"total_ms"`
	MinMs     float64 `json:"min_ms"`
	MaxMs     float64 `json:"max_ms"`
	AvgMs     float64 `json:"avg_ms"`
	PerSecond float64 `json:"per_second"`
}

type opTally struct {
	count   int64
	totalMs float64
	minMs   float64
	maxMs   float64
}

// Monitor accumulates per-operation timings. Not required for pipeline
// correctness; purely observational.
type Monitor struct {
	mu        sync.Mutex
	ops       map[string]*opTally
	startedAt time.Time
	now       func() time.Time
}

// New creates a monitor.
func New() *Monitor {
	return &Monitor{
		ops:       make(map[string]*opTally),
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// Observe records one timed execution of the named operation.
func (m *Monitor) Observe(op string, d time.Duration) {
	ms := float64(d.Microseconds()) / 1000

	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.ops[op]
	if !ok {
		t = &opTally{minMs: ms, maxMs: ms}
		m.ops[op] = t
	}
	t.count++
	t.totalMs += ms
	if ms < t.minMs {
		t.minMs = ms
	}
	if ms > t.maxMs {
		t.maxMs = ms
	}
}

// Snapshot returns current per-operation stats.
func (m *Monitor) Snapshot() map[string]OpStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	elapsed := m.now().Sub(m.startedAt).Seconds()
	out := make(map[string]OpStats, len(m.ops))
	for op, t := range m.ops {
		s := OpStats{
			Count:   t.count,
			TotalMs: t.totalMs,
			MinMs:   t.minMs,
			MaxMs:   t.maxMs,
		}
		if t.count > 0 {
			s.AvgMs = t.totalMs / float64(t.count)
		}
		if elapsed > 0 {
			s.PerSecond = float64(t.count) / elapsed
		}
		out[op] = s
	}
	return out
}

// Reset drops all accumulated timings and restarts the throughput window.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = make(map[string]*opTally)
	m.startedAt = m.now()
}
