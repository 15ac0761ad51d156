// Package registry holds the authoritative mapping of image format names to
// extensions, MIME types, and validity. Formats are split into a supported
// set and a rejected set; every mutation is validated before commit so the
// registry can never be observed in an inconsistent state.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sells-group/imagegate/internal/model"
)

// Registry is the format registry. Safe for concurrent use: reads vastly
// outnumber reconfiguration, so it is guarded by a RWMutex.
type Registry struct {
	mu  sync.RWMutex
	cfg model.RegistryConfig
}

// Status is the registry's verdict on a single extension or MIME type.
type Status struct {
	// Format is the registry key the lookup resolved to.
	Format string
	// MimeType is the canonical MIME type for the format.
	MimeType string
	// Valid reports whether the format is supported and enabled.
	Valid bool
	// Reason is the human-readable rejection reason when Valid is false.
	Reason string
}

// New creates a registry seeded with the given config. The config is
// deep-copied and validated; an invalid seed returns the errors and a nil
// registry.
func New(cfg model.RegistryConfig) (*Registry, model.ValidationOutcome) {
	outcome := validateConfig(cfg)
	if !outcome.IsValid {
		return nil, outcome
	}
	return &Registry{cfg: cfg.Clone()}, outcome
}

// NewDefault creates a registry seeded with the standard web-displayable
// format set.
func NewDefault() *Registry {
	r, outcome := New(Defaults())
	if !outcome.IsValid {
		// Defaults are fixed at compile time; this is unreachable unless the
		// seed table itself is broken.
		panic(fmt.Sprintf("registry: invalid defaults: %v", outcome.Errors))
	}
	return r
}

// Get returns a deep copy of the current configuration. Callers can never
// mutate registry state through the returned value.
func (r *Registry) Get() model.RegistryConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.Clone()
}

// AddSupported inserts a supported format definition. The name must be new
// to both maps and the definition must pass structural and cross-set
// conflict validation. Warnings (e.g. a format with no extensions) do not
// fail the insert.
func (r *Registry) AddSupported(name string, def model.FormatDefinition) model.ValidationOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	outcome := model.ValidationOutcome{IsValid: true}
	if err := r.checkNameFree(name); err != "" {
		outcome.Errors = append(outcome.Errors, err)
	}
	outcome.Errors = append(outcome.Errors, validateShape(name, def.Extensions, def.MimeTypes)...)
	outcome.Errors = append(outcome.Errors, r.checkConflicts(name, def.Extensions, def.MimeTypes)...)
	if len(outcome.Errors) > 0 {
		outcome.IsValid = false
		return outcome
	}

	outcome.Warnings = shapeWarnings(name, def.Extensions, def.MimeTypes)
	r.cfg.Supported[name] = model.FormatDefinition{
		Extensions: append([]string(nil), def.Extensions...),
		MimeTypes:  append([]string(nil), def.MimeTypes...),
		Enabled:    def.Enabled,
	}
	return outcome
}

// AddRejected inserts a rejected format definition. Same rules as
// AddSupported, plus the rejection reason must be non-empty.
func (r *Registry) AddRejected(name string, def model.RejectedFormatDefinition) model.ValidationOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	outcome := model.ValidationOutcome{IsValid: true}
	if err := r.checkNameFree(name); err != "" {
		outcome.Errors = append(outcome.Errors, err)
	}
	if strings.TrimSpace(def.Reason) == "" {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("format %q: rejection reason must be non-empty", name))
	}
	outcome.Errors = append(outcome.Errors, validateShape(name, def.Extensions, def.MimeTypes)...)
	outcome.Errors = append(outcome.Errors, r.checkConflicts(name, def.Extensions, def.MimeTypes)...)
	if len(outcome.Errors) > 0 {
		outcome.IsValid = false
		return outcome
	}

	outcome.Warnings = shapeWarnings(name, def.Extensions, def.MimeTypes)
	r.cfg.Rejected[name] = model.RejectedFormatDefinition{
		Extensions: append([]string(nil), def.Extensions...),
		MimeTypes:  append([]string(nil), def.MimeTypes...),
		Reason:     def.Reason,
	}
	return outcome
}

// RemoveSupported deletes a supported format. Returns false if absent.
func (r *Registry) RemoveSupported(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cfg.Supported[name]; !ok {
		return false
	}
	delete(r.cfg.Supported, name)
	return true
}

// RemoveRejected deletes a rejected format. Returns false if absent.
func (r *Registry) RemoveRejected(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cfg.Rejected[name]; !ok {
		return false
	}
	delete(r.cfg.Rejected, name)
	return true
}

// SetEnabled toggles a supported format. Returns false if absent.
func (r *Registry) SetEnabled(name string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.cfg.Supported[name]
	if !ok {
		return false
	}
	def.Enabled = enabled
	r.cfg.Supported[name] = def
	return true
}

// ReplaceAll swaps the entire configuration atomically. The candidate is
// fully validated (including a complete cross-set conflict scan) before
// commit; on failure the previous configuration is retained unchanged.
func (r *Registry) ReplaceAll(cfg model.RegistryConfig) model.ValidationOutcome {
	outcome := validateConfig(cfg)
	if !outcome.IsValid {
		return outcome
	}
	r.mu.Lock()
	r.cfg = cfg.Clone()
	r.mu.Unlock()
	return outcome
}

// SupportedNames returns the names of enabled supported formats, sorted.
func (r *Registry) SupportedNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.cfg.Supported))
	for name, def := range r.cfg.Supported {
		if def.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// RejectedNames returns the names of rejected formats, sorted.
func (r *Registry) RejectedNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.cfg.Rejected))
	for name := range r.cfg.Rejected {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupMime resolves a normalized MIME type to a registry status. The
// second return is false when the MIME type is unknown to both maps.
func (r *Registry) LookupMime(mimeType string) (Status, bool) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, def := range r.cfg.Supported {
		for _, mt := range def.MimeTypes {
			if mt == mimeType {
				return r.supportedStatus(name, def, mimeType), true
			}
		}
	}
	for name, def := range r.cfg.Rejected {
		for _, mt := range def.MimeTypes {
			if mt == mimeType {
				return Status{Format: name, MimeType: mimeType, Valid: false, Reason: def.Reason}, true
			}
		}
	}
	return Status{}, false
}

// LookupExtension resolves a file extension (with leading dot) to a registry
// status. The second return is false when the extension is unknown.
func (r *Registry) LookupExtension(ext string) (Status, bool) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, def := range r.cfg.Supported {
		for _, e := range def.Extensions {
			if e == ext {
				return r.supportedStatus(name, def, canonicalMime(def.MimeTypes)), true
			}
		}
	}
	for name, def := range r.cfg.Rejected {
		for _, e := range def.Extensions {
			if e == ext {
				return Status{Format: name, MimeType: canonicalMime(def.MimeTypes), Valid: false, Reason: def.Reason}, true
			}
		}
	}
	return Status{}, false
}

// LookupFormat re-checks a previously detected format name against the
// current registry state, keeping best-so-far decisions authoritative.
func (r *Registry) LookupFormat(name string) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if def, ok := r.cfg.Supported[name]; ok {
		return r.supportedStatus(name, def, canonicalMime(def.MimeTypes)), true
	}
	if def, ok := r.cfg.Rejected[name]; ok {
		return Status{Format: name, MimeType: canonicalMime(def.MimeTypes), Valid: false, Reason: def.Reason}, true
	}
	return Status{}, false
}

func (r *Registry) supportedStatus(name string, def model.FormatDefinition, mimeType string) Status {
	st := Status{Format: name, MimeType: mimeType, Valid: def.Enabled}
	if !def.Enabled {
		st.Reason = fmt.Sprintf("Format %q is currently disabled", name)
	}
	return st
}

func canonicalMime(mimeTypes []string) string {
	if len(mimeTypes) == 0 {
		return ""
	}
	return mimeTypes[0]
}

// checkNameFree returns an error message if name exists in either map.
// Caller holds the lock.
func (r *Registry) checkNameFree(name string) string {
	if strings.TrimSpace(name) == "" {
		return "format name must be non-empty"
	}
	if _, ok := r.cfg.Supported[name]; ok {
		return fmt.Sprintf("format %q already exists in the supported set", name)
	}
	if _, ok := r.cfg.Rejected[name]; ok {
		return fmt.Sprintf("format %q already exists in the rejected set", name)
	}
	return ""
}

// checkConflicts scans both maps for extension and MIME collisions with the
// candidate definition. Caller holds the lock.
func (r *Registry) checkConflicts(name string, extensions, mimeTypes []string) []string {
	var errs []string
	for _, ext := range extensions {
		if owner := r.extensionOwner(ext); owner != "" && owner != name {
			errs = append(errs, fmt.Sprintf("format %q: extension %q already claimed by %q", name, ext, owner))
		}
	}
	for _, mt := range mimeTypes {
		if owner := r.mimeOwner(mt); owner != "" && owner != name {
			errs = append(errs, fmt.Sprintf("format %q: MIME type %q already claimed by %q", name, mt, owner))
		}
	}
	return errs
}

func (r *Registry) extensionOwner(ext string) string {
	for name, def := range r.cfg.Supported {
		for _, e := range def.Extensions {
			if e == ext {
				return name
			}
		}
	}
	for name, def := range r.cfg.Rejected {
		for _, e := range def.Extensions {
			if e == ext {
				return name
			}
		}
	}
	return ""
}

func (r *Registry) mimeOwner(mimeType string) string {
	for name, def := range r.cfg.Supported {
		for _, mt := range def.MimeTypes {
			if mt == mimeType {
				return name
			}
		}
	}
	for name, def := range r.cfg.Rejected {
		for _, mt := range def.MimeTypes {
			if mt == mimeType {
				return name
			}
		}
	}
	return ""
}
