// Package detect implements the classification strategies that turn a
// resource locator (plus optional hints) into a confidence-scored format
// verdict. Three detectors ship: metadata MIME hint, locator extension, and
// a live content-type probe. The set is closed — the orchestrator depends on
// exactly these three and their priority order.
package detect

import (
	"context"
	"strings"

	"github.com/sells-group/imagegate/internal/model"
	"github.com/sells-group/imagegate/internal/registry"
)

// Confidence contract shared by the detectors and the orchestrator's
// early-exit rules.
const (
	// ConfidenceMimeKnown is an unambiguous answer from caller-supplied MIME
	// metadata. Always terminal.
	ConfidenceMimeKnown = 0.9
	// ConfidenceMimeUnknown is a well-formed MIME hint absent from the
	// registry. Terminal as well: the caller told us what it is.
	ConfidenceMimeUnknown = 0.8
	// ConfidenceProbeKnown is a registry match from a live Content-Type
	// header.
	ConfidenceProbeKnown = 0.8
	// ConfidenceExtension is a registry match derived from the locator path.
	// Plausible but spoofable, so it stays overridable.
	ConfidenceExtension = 0.7
	// ConfidenceProbeUnknown is a live Content-Type header absent from the
	// registry.
	ConfidenceProbeUnknown = 0.6
	// ConfidenceNone means the detector has nothing to say.
	ConfidenceNone = 0.0
)

// Request carries one classification input through the strategy chain.
type Request struct {
	// Locator is the resource URL under test.
	Locator string
	// MimeHint is a directly supplied MIME type, if any.
	MimeHint string
	// Metadata is out-of-band resource metadata that may carry a MIME hint.
	Metadata *model.Metadata
}

// ResolvedMimeHint returns the effective MIME hint: the direct parameter
// wins, then the metadata field. Empty when neither is present.
func (r Request) ResolvedMimeHint() string {
	if hint := strings.TrimSpace(r.MimeHint); hint != "" {
		return hint
	}
	return r.Metadata.MimeHint()
}

// Detector is one self-contained classifier. Detect never returns an error
// for ordinary "could not classify" cases — that is a zero-confidence
// result; errors are reserved for transport faults from the probe.
type Detector interface {
	Name() model.DetectionMethod
	// Priority orders the chain; lower runs first.
	Priority() int
	Detect(ctx context.Context, req Request) (model.ClassificationResult, error)
}

// noResult is the shared "nothing to say" verdict.
func noResult(method model.DetectionMethod) model.ClassificationResult {
	return model.ClassificationResult{
		IsValid:         false,
		Confidence:      ConfidenceNone,
		DetectionMethod: method,
	}
}

// resultFromStatus folds a registry status into a verdict at the given
// confidence.
func resultFromStatus(method model.DetectionMethod, st registry.Status, confidence float64) model.ClassificationResult {
	return model.ClassificationResult{
		IsValid:          st.Valid,
		DetectedFormat:   st.Format,
		DetectedMimeType: st.MimeType,
		RejectionReason:  st.Reason,
		Confidence:       confidence,
		DetectionMethod:  method,
	}
}
