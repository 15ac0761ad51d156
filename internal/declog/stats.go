package declog

import (
	"sort"

	"github.com/sells-group/imagegate/internal/model"
)

// AggregateStats summarizes everything the log has seen. Counters keep
// counting after records rotate out of the ring buffer.
type AggregateStats struct {
	Total         int64 `json:"total"`
	Successful    int64 `json:"successful"`
	Rejected      int64 `json:"rejected"`
	Errors        int64 `json:"errors"`
	NetworkErrors int64 `json:"network_errors"`
	TimeoutErrors int64 `json:"timeout_errors"`

	AverageValidationTimeMs float64 `json:"average_validation_time_ms"`

	FormatCounts          map[string]int64                `json:"format_counts"`
	RejectionReasonCounts map[string]int64                `json:"rejection_reason_counts"`
	MethodCounts          map[model.DetectionMethod]int64 `json:"method_counts"`
}

// ReasonCount is one rejection reason with its share of all rejections.
type ReasonCount struct {
	Reason     string  `json:"reason"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// FormatCount is one detected format with its occurrence count.
type FormatCount struct {
	Format string `json:"format"`
	Count  int64  `json:"count"`
}

// MethodStat reports how well one detection method performs.
type MethodStat struct {
	Method        model.DetectionMethod `json:"method"`
	SuccessRate   float64               `json:"success_rate"`
	AvgConfidence float64               `json:"avg_confidence"`
}

// RejectionPatterns is the analytical view over logged rejections.
type RejectionPatterns struct {
	CommonReasons       []ReasonCount `json:"common_reasons"`
	FormatDistribution  []FormatCount `json:"format_distribution"`
	MethodEffectiveness []MethodStat  `json:"method_effectiveness"`
}

// Stats returns the aggregate counters.
func (l *Log) Stats() AggregateStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := AggregateStats{
		Total:                 l.total,
		Successful:            l.successes,
		Rejected:              l.rejections,
		Errors:                l.faults,
		NetworkErrors:         l.networkErrors,
		TimeoutErrors:         l.timeoutErrors,
		FormatCounts:          make(map[string]int64, len(l.formatCounts)),
		RejectionReasonCounts: make(map[string]int64, len(l.reasonCounts)),
		MethodCounts:          make(map[model.DetectionMethod]int64, len(l.methodCounts)),
	}
	if l.total > 0 {
		s.AverageValidationTimeMs = float64(l.totalTimeMs) / float64(l.total)
	}
	for k, v := range l.formatCounts {
		s.FormatCounts[k] = v
	}
	for k, v := range l.reasonCounts {
		s.RejectionReasonCounts[k] = v
	}
	for k, v := range l.methodCounts {
		s.MethodCounts[k] = v
	}
	return s
}

// Patterns analyzes logged rejections: the most common reasons (with their
// share of all rejections), the format distribution, and per-method
// effectiveness sorted by success rate.
func (l *Log) Patterns() RejectionPatterns {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := RejectionPatterns{}

	for reason, count := range l.reasonCounts {
		rc := ReasonCount{Reason: reason, Count: count}
		if l.rejections > 0 {
			rc.Percentage = 100 * float64(count) / float64(l.rejections)
		}
		p.CommonReasons = append(p.CommonReasons, rc)
	}
	sort.Slice(p.CommonReasons, func(i, j int) bool {
		if p.CommonReasons[i].Count != p.CommonReasons[j].Count {
			return p.CommonReasons[i].Count > p.CommonReasons[j].Count
		}
		return p.CommonReasons[i].Reason < p.CommonReasons[j].Reason
	})

	for format, count := range l.formatCounts {
		p.FormatDistribution = append(p.FormatDistribution, FormatCount{Format: format, Count: count})
	}
	sort.Slice(p.FormatDistribution, func(i, j int) bool {
		if p.FormatDistribution[i].Count != p.FormatDistribution[j].Count {
			return p.FormatDistribution[i].Count > p.FormatDistribution[j].Count
		}
		return p.FormatDistribution[i].Format < p.FormatDistribution[j].Format
	})

	for method, tally := range l.methodTally {
		ms := MethodStat{Method: method}
		if tally.total > 0 {
			ms.SuccessRate = float64(tally.successes) / float64(tally.total)
			ms.AvgConfidence = tally.confidenceSum / float64(tally.total)
		}
		p.MethodEffectiveness = append(p.MethodEffectiveness, ms)
	}
	sort.Slice(p.MethodEffectiveness, func(i, j int) bool {
		if p.MethodEffectiveness[i].SuccessRate != p.MethodEffectiveness[j].SuccessRate {
			return p.MethodEffectiveness[i].SuccessRate > p.MethodEffectiveness[j].SuccessRate
		}
		return p.MethodEffectiveness[i].Method < p.MethodEffectiveness[j].Method
	})

	return p
}
