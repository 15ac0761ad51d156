package registry

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sells-group/imagegate/internal/model"
)

// extensionPattern matches a leading dot followed by word characters.
var extensionPattern = regexp.MustCompile(`^\.[\w]+$`)

// validateShape checks the structural rules for a single definition:
// extensions carry a leading dot, are lowercase, and are at least two
// characters including the dot; MIME types contain a slash.
func validateShape(name string, extensions, mimeTypes []string) []string {
	var errs []string
	for _, ext := range extensions {
		if len(ext) < 2 || !strings.HasPrefix(ext, ".") || !extensionPattern.MatchString(ext) {
			errs = append(errs, fmt.Sprintf("format %q: invalid extension %q (want lowercase %q-style)", name, ext, ".ext"))
			continue
		}
		if ext != strings.ToLower(ext) {
			errs = append(errs, fmt.Sprintf("format %q: extension %q must be lowercase", name, ext))
		}
	}
	for _, mt := range mimeTypes {
		if !strings.Contains(mt, "/") {
			errs = append(errs, fmt.Sprintf("format %q: invalid MIME type %q (missing %q)", name, mt, "/"))
		}
	}
	return errs
}

// shapeWarnings reports non-fatal oddities in a definition.
func shapeWarnings(name string, extensions, mimeTypes []string) []string {
	var warnings []string
	if len(extensions) == 0 {
		warnings = append(warnings, fmt.Sprintf("format %q has no extensions defined", name))
	}
	if len(mimeTypes) == 0 {
		warnings = append(warnings, fmt.Sprintf("format %q has no MIME types defined", name))
	}
	return warnings
}

// validateConfig validates an entire candidate configuration: structural
// rules per definition plus a full cross-set conflict scan. Used by New and
// ReplaceAll so a bad config can never be committed.
func validateConfig(cfg model.RegistryConfig) model.ValidationOutcome {
	outcome := model.ValidationOutcome{IsValid: true}

	if cfg.Supported == nil {
		outcome.Errors = append(outcome.Errors, "supported format map must not be nil")
	}
	if cfg.Rejected == nil {
		outcome.Errors = append(outcome.Errors, "rejected format map must not be nil")
	}
	if len(outcome.Errors) > 0 {
		outcome.IsValid = false
		return outcome
	}

	extOwners := make(map[string]string)
	mimeOwners := make(map[string]string)

	claim := func(name string, extensions, mimeTypes []string) {
		for _, ext := range extensions {
			if owner, taken := extOwners[ext]; taken {
				outcome.Errors = append(outcome.Errors,
					fmt.Sprintf("extension %q claimed by both %q and %q", ext, owner, name))
				continue
			}
			extOwners[ext] = name
		}
		for _, mt := range mimeTypes {
			if owner, taken := mimeOwners[mt]; taken {
				outcome.Errors = append(outcome.Errors,
					fmt.Sprintf("MIME type %q claimed by both %q and %q", mt, owner, name))
				continue
			}
			mimeOwners[mt] = name
		}
	}

	for name, def := range cfg.Supported {
		if strings.TrimSpace(name) == "" {
			outcome.Errors = append(outcome.Errors, "supported set contains an empty format name")
		}
		if _, dup := cfg.Rejected[name]; dup {
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("format %q appears in both supported and rejected sets", name))
		}
		outcome.Errors = append(outcome.Errors, validateShape(name, def.Extensions, def.MimeTypes)...)
		claim(name, def.Extensions, def.MimeTypes)
		outcome.Warnings = append(outcome.Warnings, shapeWarnings(name, def.Extensions, def.MimeTypes)...)
	}
	for name, def := range cfg.Rejected {
		if strings.TrimSpace(name) == "" {
			outcome.Errors = append(outcome.Errors, "rejected set contains an empty format name")
		}
		if strings.TrimSpace(def.Reason) == "" {
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("format %q: rejection reason must be non-empty", name))
		}
		outcome.Errors = append(outcome.Errors, validateShape(name, def.Extensions, def.MimeTypes)...)
		claim(name, def.Extensions, def.MimeTypes)
		outcome.Warnings = append(outcome.Warnings, shapeWarnings(name, def.Extensions, def.MimeTypes)...)
	}

	if len(outcome.Errors) > 0 {
		outcome.IsValid = false
	}
	return outcome
}
