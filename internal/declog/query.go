package declog

import (
	"time"

	"github.com/sells-group/imagegate/internal/model"
)

// Filter selects records from the log. Nil/zero fields match everything;
// set fields combine with logical AND.
type Filter struct {
	// Valid matches the validation verdict.
	Valid *bool
	// Method matches the detection method exactly.
	Method model.DetectionMethod
	// HasError matches the presence (or absence) of error details.
	HasError *bool
	// MinConfidence and MaxConfidence bound the confidence, inclusive.
	MinConfidence *float64
	MaxConfidence *float64
	// Since matches records at or after the given time.
	Since time.Time
}

func (f Filter) matches(rec model.DecisionRecord) bool {
	if f.Valid != nil && rec.ValidationResult != *f.Valid {
		return false
	}
	if f.Method != "" && rec.DetectionMethod != f.Method {
		return false
	}
	if f.HasError != nil && rec.IsError() != *f.HasError {
		return false
	}
	if f.MinConfidence != nil && rec.Confidence < *f.MinConfidence {
		return false
	}
	if f.MaxConfidence != nil && rec.Confidence > *f.MaxConfidence {
		return false
	}
	if !f.Since.IsZero() && rec.Timestamp.Before(f.Since) {
		return false
	}
	return true
}

// Filtered returns all buffered records matching the filter, oldest to
// newest.
func (l *Log) Filtered(f Filter) []model.DecisionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []model.DecisionRecord
	for i := 0; i < l.size; i++ {
		rec := l.buf[(l.head+i)%l.capacity]
		if f.matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}
