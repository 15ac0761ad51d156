package detect

import (
	"context"
	"strings"

	"github.com/sells-group/imagegate/internal/model"
	"github.com/sells-group/imagegate/internal/registry"
)

// MimeDetector classifies by a caller-supplied MIME hint, either passed
// directly or extracted from structured metadata. Highest priority: when the
// caller already knows the content type there is nothing more authoritative
// to consult.
type MimeDetector struct {
	reg *registry.Registry
}

// NewMimeDetector creates the metadata-MIME detector.
func NewMimeDetector(reg *registry.Registry) *MimeDetector {
	return &MimeDetector{reg: reg}
}

func (d *MimeDetector) Name() model.DetectionMethod { return model.MethodMimeType }

func (d *MimeDetector) Priority() int { return 1 }

// Detect looks the hint up in the registry. No hint at all is a
// zero-confidence pass; a hint unknown to the registry is still a strong
// rejection because the caller asserted the type.
func (d *MimeDetector) Detect(_ context.Context, req Request) (model.ClassificationResult, error) {
	hint := req.ResolvedMimeHint()
	if hint == "" {
		return noResult(d.Name()), nil
	}

	normalized := strings.ToLower(strings.TrimSpace(hint))
	st, known := d.reg.LookupMime(normalized)
	if !known {
		return model.ClassificationResult{
			IsValid:          false,
			DetectedMimeType: normalized,
			RejectionReason:  "Unknown MIME type",
			Confidence:       ConfidenceMimeUnknown,
			DetectionMethod:  d.Name(),
		}, nil
	}
	return resultFromStatus(d.Name(), st, ConfidenceMimeKnown), nil
}
