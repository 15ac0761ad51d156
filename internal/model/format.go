package model

import "strings"

// FormatDefinition describes one supported image format: the file extensions
// and MIME types that identify it, and whether it is currently enabled.
type FormatDefinition struct {
	Extensions []string `json:"extensions" yaml:"extensions"`
	MimeTypes  []string `json:"mime_types" yaml:"mime_types"`
	Enabled    bool     `json:"enabled" yaml:"enabled"`
}

// RejectedFormatDefinition describes a format that is recognized but not
// web-displayable, with the human-readable reason returned to callers.
type RejectedFormatDefinition struct {
	Extensions []string `json:"extensions" yaml:"extensions"`
	MimeTypes  []string `json:"mime_types" yaml:"mime_types"`
	Reason     string   `json:"reason" yaml:"reason"`
}

// RegistryConfig is the full registry state: the supported and rejected
// format maps. Copies of it cross the registry boundary; the registry's
// internal maps are never shared.
type RegistryConfig struct {
	Supported map[string]FormatDefinition         `json:"supported" yaml:"supported"`
	Rejected  map[string]RejectedFormatDefinition `json:"rejected" yaml:"rejected"`
}

// Clone returns a deep copy of the config.
func (c RegistryConfig) Clone() RegistryConfig {
	out := RegistryConfig{
		Supported: make(map[string]FormatDefinition, len(c.Supported)),
		Rejected:  make(map[string]RejectedFormatDefinition, len(c.Rejected)),
	}
	for name, def := range c.Supported {
		out.Supported[name] = FormatDefinition{
			Extensions: append([]string(nil), def.Extensions...),
			MimeTypes:  append([]string(nil), def.MimeTypes...),
			Enabled:    def.Enabled,
		}
	}
	for name, def := range c.Rejected {
		out.Rejected[name] = RejectedFormatDefinition{
			Extensions: append([]string(nil), def.Extensions...),
			MimeTypes:  append([]string(nil), def.MimeTypes...),
			Reason:     def.Reason,
		}
	}
	return out
}

// ValidationOutcome reports the result of a registry mutation: hard errors
// abort the mutation, warnings accompany a successful one.
type ValidationOutcome struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Metadata is out-of-band resource metadata supplied alongside a locator.
// Fields holds arbitrary key/value pairs; the MimeType field, when present,
// provides a MIME hint for classification.
type Metadata struct {
	Fields map[string]MetadataField `json:"fields,omitempty"`
}

// MetadataField is a single typed metadata value.
type MetadataField struct {
	Value string `json:"value"`
}

// MimeHint extracts the MIME hint from the metadata, or "" if absent.
func (m *Metadata) MimeHint() string {
	if m == nil {
		return ""
	}
	f, ok := m.Fields["MimeType"]
	if !ok {
		return ""
	}
	return strings.TrimSpace(f.Value)
}
