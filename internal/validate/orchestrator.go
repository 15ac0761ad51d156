// Package validate runs the detection strategy chain: cache lookup first,
// then each detector in priority order with confidence-based early exit and
// fallback, folding every outcome into a ClassificationResult plus exactly
// one decision-log record.
package validate

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/imagegate/internal/cache"
	"github.com/sells-group/imagegate/internal/declog"
	"github.com/sells-group/imagegate/internal/detect"
	"github.com/sells-group/imagegate/internal/model"
	"github.com/sells-group/imagegate/internal/monitoring"
	"github.com/sells-group/imagegate/internal/registry"
)

// Early-exit thresholds for the strategy fold.
const (
	// definitiveConfidence terminates the chain immediately: the strategy
	// consulted authoritative data and got an unambiguous answer.
	definitiveConfidence = 0.8
	// candidateConfidence is the floor for keeping a result as a fallback
	// candidate.
	candidateConfidence = 0.6
	// stopConfidence stops iterating once a candidate reaches it; lower
	// candidates stay overridable by later strategies.
	stopConfidence = 0.7
)

// Orchestrator wires the registry, detectors, cache, log, and monitor into
// one validation entry point. Construct instances explicitly; there are no
// package-level singletons.
type Orchestrator struct {
	reg       *registry.Registry
	detectors []detect.Detector
	cache     *cache.Cache
	declog    *declog.Log
	monitor   *monitoring.Monitor
	now       func() time.Time
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithMonitor attaches a performance monitor.
func WithMonitor(m *monitoring.Monitor) Option {
	return func(o *Orchestrator) { o.monitor = m }
}

// WithDetectors replaces the default detector set.
func WithDetectors(detectors ...detect.Detector) Option {
	return func(o *Orchestrator) { o.detectors = detectors }
}

// New creates an orchestrator over the given collaborators. By default it
// runs the three standard detectors against reg; the probe uses opts.
func New(reg *registry.Registry, c *cache.Cache, dl *declog.Log, probeOpts detect.ProbeOptions, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		reg:    reg,
		cache:  c,
		declog: dl,
		now:    time.Now,
		detectors: []detect.Detector{
			detect.NewMimeDetector(reg),
			detect.NewExtensionDetector(reg),
			detect.NewProbeDetector(reg, probeOpts),
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	sort.SliceStable(o.detectors, func(i, j int) bool {
		return o.detectors[i].Priority() < o.detectors[j].Priority()
	})
	return o
}

// Validate classifies one locator. It never returns an error: every
// failure mode is folded into the returned result, and every call produces
// exactly one decision-log record.
func (o *Orchestrator) Validate(ctx context.Context, locator, mimeHint string, metadata *model.Metadata) model.ClassificationResult {
	started := o.now()

	if strings.TrimSpace(locator) == "" {
		result := model.ClassificationResult{
			IsValid:         false,
			RejectionReason: "Invalid URL provided",
			Confidence:      1.0,
			DetectionMethod: model.MethodInputValidation,
		}
		o.finish(locator, result, started, nil, false)
		return result
	}

	req := detect.Request{Locator: locator, MimeHint: mimeHint, Metadata: metadata}
	hint := req.ResolvedMimeHint()

	if cached, ok := o.cache.Get(locator, hint); ok {
		o.finish(locator, cached, started, nil, true)
		return cached
	}

	result, fault := o.runChain(ctx, req)
	o.finish(locator, result, started, fault, false)
	if fault == nil {
		o.cache.Put(locator, hint, result, false)
	}
	return result
}

// runChain folds over the ordered detector list, tracking the best
// mid-confidence candidate, the last normal result, and the last fault.
func (o *Orchestrator) runChain(ctx context.Context, req detect.Request) (model.ClassificationResult, *detect.TransportFault) {
	var (
		best      *model.ClassificationResult
		last      *model.ClassificationResult
		lastFault *detect.TransportFault
	)

	for _, d := range o.detectors {
		result, err := d.Detect(ctx, req)
		if err != nil {
			fault := asTransportFault(err)
			lastFault = fault
			if d.Name() == model.MethodHTTPContentType {
				// The probe's transport fault is terminal: there is nothing
				// left to try and the caller needs the failure mode.
				return model.ClassificationResult{
					IsValid:         false,
					RejectionReason: fault.UserMessage(),
					Confidence:      0,
					DetectionMethod: model.MethodHTTPContentType,
				}, fault
			}
			zap.L().Warn("detector failed, continuing chain",
				zap.String("detector", string(d.Name())),
				zap.String("url", req.Locator),
				zap.Error(err),
			)
			continue
		}

		last = &result

		if result.Confidence >= definitiveConfidence {
			return result, nil
		}

		if result.DetectedFormat != "" && result.Confidence >= candidateConfidence {
			// Re-check the registry so the kept candidate reflects current
			// state even if a later strategy disagrees.
			candidate := result
			if st, ok := o.reg.LookupFormat(result.DetectedFormat); ok {
				candidate.IsValid = st.Valid
				candidate.RejectionReason = st.Reason
			}
			if best == nil || candidate.Confidence > best.Confidence {
				best = &candidate
			}
			if candidate.Confidence >= stopConfidence {
				break
			}
		}
		// Zero-information results fall through to the next strategy.
	}

	switch {
	case best != nil:
		return *best, nil
	case last != nil:
		return *last, nil
	default:
		reason := "Unable to determine image format"
		if lastFault != nil {
			reason += ": " + lastFault.Error()
		}
		// When every strategy faulted, surface the last fault so the log
		// records it as an error and the result stays out of the cache.
		return model.ClassificationResult{
			IsValid:         false,
			RejectionReason: reason,
			Confidence:      0,
			DetectionMethod: model.MethodUnknown,
		}, lastFault
	}
}

// finish emits the single decision-log record for a validation and feeds
// the monitor.
func (o *Orchestrator) finish(locator string, result model.ClassificationResult, started time.Time, fault *detect.TransportFault, fromCache bool) {
	elapsed := o.now().Sub(started)

	method := result.DetectionMethod
	if fromCache {
		method = method.Cached()
	}

	rec := model.DecisionRecord{
		URL:              locator,
		ValidationResult: result.IsValid,
		DetectedFormat:   result.DetectedFormat,
		DetectedMimeType: result.DetectedMimeType,
		RejectionReason:  result.RejectionReason,
		ValidationTimeMs: elapsed.Milliseconds(),
		DetectionMethod:  method,
		Confidence:       result.Confidence,
	}
	if fault != nil {
		rec.ErrorDetails = &model.ErrorDetails{
			ErrorType:    string(fault.Kind),
			ErrorMessage: fault.Error(),
		}
		if fault.Err != nil {
			rec.ErrorDetails.StackTrace = eris.ToString(fault.Err, true)
		}
		rec.Metadata = &model.RecordMetadata{
			NetworkTimeout: fault.IsTimeout(),
			HTTPStatusCode: fault.StatusCode,
		}
	}
	o.declog.Record(rec)

	if o.monitor != nil {
		o.monitor.Observe("validate", elapsed)
	}

	switch {
	case fault != nil:
		zap.L().Warn("validation failed",
			zap.String("url", locator),
			zap.String("method", string(method)),
			zap.String("reason", result.RejectionReason),
			zap.Error(fault),
		)
	case result.IsValid:
		zap.L().Debug("validation accepted",
			zap.String("url", locator),
			zap.String("format", result.DetectedFormat),
			zap.String("method", string(method)),
			zap.Float64("confidence", result.Confidence),
		)
	default:
		zap.L().Debug("validation rejected",
			zap.String("url", locator),
			zap.String("method", string(method)),
			zap.String("reason", result.RejectionReason),
		)
	}
}

func asTransportFault(err error) *detect.TransportFault {
	var fault *detect.TransportFault
	if errors.As(err, &fault) {
		return fault
	}
	return &detect.TransportFault{Kind: detect.FaultNetwork, Err: err}
}
