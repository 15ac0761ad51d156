package monitoring

import (
	"fmt"
	"time"

	"github.com/sells-group/imagegate/internal/cache"
	"github.com/sells-group/imagegate/internal/declog"
)

// HealthStatus grades the pipeline's condition.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Thresholds for grading; error rate dominates, latency degrades.
const (
	degradedErrorRate  = 0.2
	unhealthyErrorRate = 0.5
	degradedAvgTimeMs  = 2000
)

// HealthCheck is one named check inside a report.
type HealthCheck struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail string       `json:"detail"`
}

// HealthReport is the overall health summary.
type HealthReport struct {
	Status      HealthStatus  `json:"status"`
	Checks      []HealthCheck `json:"checks"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// Health grades the pipeline from decision-log aggregates and cache stats.
// Error rate drives the verdict; slow validations and a cold cache degrade
// it.
func (m *Monitor) Health(logStats declog.AggregateStats, cacheStats cache.Stats) HealthReport {
	report := HealthReport{
		Status:      StatusHealthy,
		GeneratedAt: m.now().UTC(),
	}

	errCheck := HealthCheck{Name: "error_rate", Status: StatusHealthy}
	if logStats.Total > 0 {
		rate := float64(logStats.Errors) / float64(logStats.Total)
		errCheck.Detail = fmt.Sprintf("%.1f%% of %d validations errored", 100*rate, logStats.Total)
		switch {
		case rate >= unhealthyErrorRate:
			errCheck.Status = StatusUnhealthy
		case rate >= degradedErrorRate:
			errCheck.Status = StatusDegraded
		}
	} else {
		errCheck.Detail = "no validations recorded"
	}
	report.Checks = append(report.Checks, errCheck)

	latCheck := HealthCheck{Name: "validation_latency", Status: StatusHealthy}
	latCheck.Detail = fmt.Sprintf("avg %.1fms", logStats.AverageValidationTimeMs)
	if logStats.AverageValidationTimeMs >= degradedAvgTimeMs {
		latCheck.Status = StatusDegraded
	}
	report.Checks = append(report.Checks, latCheck)

	cacheCheck := HealthCheck{Name: "cache", Status: StatusHealthy}
	cacheCheck.Detail = fmt.Sprintf("hit rate %.1f%%, %d entries, %d evictions",
		100*cacheStats.HitRate, cacheStats.Size, cacheStats.Evictions)
	report.Checks = append(report.Checks, cacheCheck)

	for _, c := range report.Checks {
		if c.Status == StatusUnhealthy {
			report.Status = StatusUnhealthy
			break
		}
		if c.Status == StatusDegraded && report.Status == StatusHealthy {
			report.Status = StatusDegraded
		}
	}
	return report
}
