package detect

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/sells-group/imagegate/internal/model"
	"github.com/sells-group/imagegate/internal/registry"
)

// extensionRe matches a dot followed by word characters at the end of a
// path segment.
var extensionRe = regexp.MustCompile(`^\.[\w]+$`)

// ExtensionDetector classifies by the file extension of the locator's path
// component. Query string and fragment are ignored, so cache-busting
// parameters never confuse the match.
type ExtensionDetector struct {
	reg *registry.Registry
}

// NewExtensionDetector creates the locator-extension detector.
func NewExtensionDetector(reg *registry.Registry) *ExtensionDetector {
	return &ExtensionDetector{reg: reg}
}

func (d *ExtensionDetector) Name() model.DetectionMethod { return model.MethodURLExtension }

func (d *ExtensionDetector) Priority() int { return 2 }

// Detect extracts the extension and looks it up. A locator without a
// recognizable extension, or with one unknown to the registry, is a
// zero-confidence pass to the next strategy.
func (d *ExtensionDetector) Detect(_ context.Context, req Request) (model.ClassificationResult, error) {
	ext, ok := PathExtension(req.Locator)
	if !ok {
		return noResult(d.Name()), nil
	}
	st, known := d.reg.LookupExtension(ext)
	if !known {
		return noResult(d.Name()), nil
	}
	return resultFromStatus(d.Name(), st, ConfidenceExtension), nil
}

// PathExtension extracts the lowercase file extension (with leading dot)
// from the path component of a locator. The dot must sit after the last
// path separator and the extension must be at least two characters
// including the dot. Returns false when no extension can be derived.
func PathExtension(locator string) (string, bool) {
	path := locator
	if u, err := url.Parse(locator); err == nil && u.Path != "" {
		path = u.Path
	} else {
		// Not parsable as a URL: strip query and fragment by hand.
		if idx := strings.IndexAny(path, "?#"); idx >= 0 {
			path = path[:idx]
		}
	}

	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		path = path[idx+1:]
	}
	dot := strings.LastIndex(path, ".")
	if dot < 0 {
		return "", false
	}
	ext := strings.ToLower(path[dot:])
	if len(ext) < 2 || !extensionRe.MatchString(ext) {
		return "", false
	}
	return ext, true
}
