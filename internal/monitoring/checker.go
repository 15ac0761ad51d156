package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/imagegate/internal/cache"
	"github.com/sells-group/imagegate/internal/declog"
)

// Checker periodically evaluates pipeline health and logs status changes.
type Checker struct {
	monitor  *Monitor
	declog   *declog.Log
	cache    *cache.Cache
	interval time.Duration

	lastStatus HealthStatus
}

// NewChecker creates a background health checker. Interval <= 0 defaults to
// five minutes.
func NewChecker(monitor *Monitor, dl *declog.Log, c *cache.Cache, interval time.Duration) *Checker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Checker{
		monitor:  monitor,
		declog:   dl,
		cache:    c,
		interval: interval,
	}
}

// Run starts the periodic check loop. It blocks until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	log := zap.L().With(zap.String("component", "monitoring.checker"))
	log.Info("starting health checker", zap.Duration("interval", c.interval))

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("health checker stopped")
			return
		case <-ticker.C:
			c.check(log)
		}
	}
}

func (c *Checker) check(log *zap.Logger) {
	report := c.monitor.Health(c.declog.Stats(), c.cache.Stats())
	if report.Status != c.lastStatus && c.lastStatus != "" {
		log.Warn("pipeline health changed",
			zap.String("from", string(c.lastStatus)),
			zap.String("to", string(report.Status)),
		)
	}
	c.lastStatus = report.Status

	fields := []zap.Field{zap.String("status", string(report.Status))}
	for _, chk := range report.Checks {
		fields = append(fields, zap.String(chk.Name, chk.Detail))
	}
	if report.Status == StatusHealthy {
		log.Debug("health check", fields...)
	} else {
		log.Warn("health check", fields...)
	}
}
