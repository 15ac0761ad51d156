// Package declog is the append-only decision log: a bounded ring buffer of
// validation decisions plus running aggregates, so rejections can be audited
// and statistics reconstructed without unbounded memory growth.
package declog

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/imagegate/internal/model"
)

// DefaultCapacity bounds the ring buffer when no capacity is configured.
const DefaultCapacity = 1000

// methodTally accumulates per-method effectiveness counters.
type methodTally struct {
	total         int64
	successes     int64
	confidenceSum float64
}

// Log records every validation decision. Append-mostly, guarded by a single
// mutex around a fixed-size ring buffer; aggregates are running counters so
// they survive records rotating out of the buffer.
type Log struct {
	mu       sync.Mutex
	buf      []model.DecisionRecord
	head     int
	size     int
	capacity int

	total         int64
	successes     int64
	rejections    int64
	faults        int64
	networkErrors int64
	timeoutErrors int64
	totalTimeMs   int64

	formatCounts map[string]int64
	reasonCounts map[string]int64
	methodCounts map[model.DetectionMethod]int64
	methodTally  map[model.DetectionMethod]*methodTally

	now func() time.Time
}

// New creates a log bounded at capacity records (DefaultCapacity when <= 0).
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l := &Log{
		buf:      make([]model.DecisionRecord, capacity),
		capacity: capacity,
		now:      time.Now,
	}
	l.resetAggregates()
	return l
}

func (l *Log) resetAggregates() {
	l.total, l.successes, l.rejections, l.faults = 0, 0, 0, 0
	l.networkErrors, l.timeoutErrors, l.totalTimeMs = 0, 0, 0
	l.formatCounts = make(map[string]int64)
	l.reasonCounts = make(map[string]int64)
	l.methodCounts = make(map[model.DetectionMethod]int64)
	l.methodTally = make(map[model.DetectionMethod]*methodTally)
}

// Record appends one decision. Missing ID and timestamp are filled in; once
// the buffer is full the oldest record drops first.
func (l *Log) Record(rec model.DecisionRecord) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = l.now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := (l.head + l.size) % l.capacity
	l.buf[idx] = rec
	if l.size < l.capacity {
		l.size++
	} else {
		l.head = (l.head + 1) % l.capacity
	}

	l.total++
	l.totalTimeMs += rec.ValidationTimeMs
	switch {
	case rec.IsError():
		l.faults++
		if rec.Metadata != nil {
			if rec.Metadata.NetworkTimeout {
				l.timeoutErrors++
			} else {
				l.networkErrors++
			}
		} else {
			l.networkErrors++
		}
	case rec.ValidationResult:
		l.successes++
	default:
		l.rejections++
	}

	if rec.DetectedFormat != "" {
		l.formatCounts[rec.DetectedFormat]++
	}
	// Fault records keep their own error counters; only clean rejections
	// feed the per-reason tallies, so reason percentages stay a breakdown
	// of l.rejections.
	if !rec.ValidationResult && !rec.IsError() && rec.RejectionReason != "" {
		l.reasonCounts[rec.RejectionReason]++
	}
	l.methodCounts[rec.DetectionMethod]++

	tally, ok := l.methodTally[rec.DetectionMethod]
	if !ok {
		tally = &methodTally{}
		l.methodTally[rec.DetectionMethod] = tally
	}
	tally.total++
	tally.confidenceSum += rec.Confidence
	if rec.ValidationResult {
		tally.successes++
	}
}

// Recent returns up to n of the newest records, ordered oldest to newest.
// n <= 0 returns the whole buffer.
func (l *Log) Recent(n int) []model.DecisionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := l.size
	if n > 0 && n < count {
		count = n
	}
	out := make([]model.DecisionRecord, 0, count)
	start := l.size - count
	for i := start; i < l.size; i++ {
		out = append(out, l.buf[(l.head+i)%l.capacity])
	}
	return out
}

// Clear drops all buffered records and resets every derived counter.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.head, l.size = 0, 0
	l.resetAggregates()
}

// Len returns the number of buffered records.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}
