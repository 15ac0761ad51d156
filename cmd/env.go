package main

import (
	"github.com/sells-group/imagegate/internal/cache"
	"github.com/sells-group/imagegate/internal/config"
	"github.com/sells-group/imagegate/internal/declog"
	"github.com/sells-group/imagegate/internal/detect"
	"github.com/sells-group/imagegate/internal/monitoring"
	"github.com/sells-group/imagegate/internal/registry"
	"github.com/sells-group/imagegate/internal/validate"
)

// pipelineEnv bundles the explicitly constructed pipeline components so
// commands share one wiring path.
type pipelineEnv struct {
	Registry     *registry.Registry
	Cache        *cache.Cache
	Declog       *declog.Log
	Monitor      *monitoring.Monitor
	Orchestrator *validate.Orchestrator
}

// initPipeline constructs the registry, cache, log, monitor, and
// orchestrator from the loaded config.
func initPipeline(cfg *config.Config) *pipelineEnv {
	reg := registry.NewDefault()
	c := cache.New(cfg.Cache.MaxEntries)
	dl := declog.New(cfg.Declog.Capacity)
	mon := monitoring.New()

	orch := validate.New(reg, c, dl, detect.ProbeOptions{
		UserAgent:  cfg.Probe.UserAgent,
		Timeout:    cfg.Probe.Timeout(),
		RatePerSec: cfg.Probe.RatePerSec,
		Burst:      cfg.Probe.Burst,
	}, validate.WithMonitor(mon))

	return &pipelineEnv{
		Registry:     reg,
		Cache:        c,
		Declog:       dl,
		Monitor:      mon,
		Orchestrator: orch,
	}
}
