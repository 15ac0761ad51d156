package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/imagegate/internal/model"
)

func TestNewDefault(t *testing.T) {
	reg := NewDefault()

	assert.Contains(t, reg.SupportedNames(), "jpeg")
	assert.Contains(t, reg.SupportedNames(), "webp")
	assert.Contains(t, reg.RejectedNames(), "tiff")
}

func TestGetReturnsDeepCopy(t *testing.T) {
	reg := NewDefault()

	cfg := reg.Get()
	cfg.Supported["jpeg"] = model.FormatDefinition{Enabled: false}
	cfg.Supported["png"].Extensions[0] = ".mutated"
	delete(cfg.Rejected, "tiff")

	fresh := reg.Get()
	assert.True(t, fresh.Supported["jpeg"].Enabled)
	assert.Equal(t, ".png", fresh.Supported["png"].Extensions[0])
	assert.Contains(t, fresh.Rejected, "tiff")
}

func TestAddSupported(t *testing.T) {
	reg := NewDefault()

	outcome := reg.AddSupported("jxl", model.FormatDefinition{
		Extensions: []string{".jxl"},
		MimeTypes:  []string{"image/jxl"},
		Enabled:    true,
	})

	require.True(t, outcome.IsValid)
	assert.Empty(t, outcome.Errors)
	assert.Contains(t, reg.SupportedNames(), "jxl")
}

func TestAddSupportedDuplicateName(t *testing.T) {
	reg := NewDefault()

	outcome := reg.AddSupported("jpeg", model.FormatDefinition{
		Extensions: []string{".xyz"},
		MimeTypes:  []string{"image/xyz"},
		Enabled:    true,
	})

	assert.False(t, outcome.IsValid)
	require.NotEmpty(t, outcome.Errors)
	assert.Contains(t, outcome.Errors[0], "already exists")
}

func TestAddSupportedNameInRejectedSet(t *testing.T) {
	reg := NewDefault()

	outcome := reg.AddSupported("tiff", model.FormatDefinition{
		Extensions: []string{".xyz"},
		MimeTypes:  []string{"image/xyz"},
		Enabled:    true,
	})

	assert.False(t, outcome.IsValid)
}

func TestAddSupportedStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		def  model.FormatDefinition
	}{
		{"extension without dot", model.FormatDefinition{Extensions: []string{"xyz"}, MimeTypes: []string{"image/xyz"}}},
		{"extension too short", model.FormatDefinition{Extensions: []string{"."}, MimeTypes: []string{"image/xyz"}}},
		{"extension uppercase", model.FormatDefinition{Extensions: []string{".XYZ"}, MimeTypes: []string{"image/xyz"}}},
		{"mime without slash", model.FormatDefinition{Extensions: []string{".xyz"}, MimeTypes: []string{"imagexyz"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewDefault()
			outcome := reg.AddSupported("xyz", tt.def)
			assert.False(t, outcome.IsValid)
			assert.NotEmpty(t, outcome.Errors)
		})
	}
}

func TestAddSupportedExtensionConflict(t *testing.T) {
	reg := NewDefault()

	// .png belongs to the png entry.
	outcome := reg.AddSupported("png2", model.FormatDefinition{
		Extensions: []string{".png"},
		MimeTypes:  []string{"image/png2"},
		Enabled:    true,
	})

	assert.False(t, outcome.IsValid)
	assert.Contains(t, outcome.Errors[0], "already claimed")
}

func TestAddSupportedMimeConflictWithRejected(t *testing.T) {
	reg := NewDefault()

	outcome := reg.AddSupported("tiff2", model.FormatDefinition{
		Extensions: []string{".tf2"},
		MimeTypes:  []string{"image/tiff"},
		Enabled:    true,
	})

	assert.False(t, outcome.IsValid)
}

func TestAddSupportedWarnsOnEmptyExtensions(t *testing.T) {
	reg := NewDefault()

	outcome := reg.AddSupported("jxl", model.FormatDefinition{
		MimeTypes: []string{"image/jxl"},
		Enabled:   true,
	})

	require.True(t, outcome.IsValid)
	require.NotEmpty(t, outcome.Warnings)
	assert.Contains(t, outcome.Warnings[0], "no extensions")
}

func TestAddRejected(t *testing.T) {
	reg := NewDefault()

	outcome := reg.AddRejected("xcf", model.RejectedFormatDefinition{
		Extensions: []string{".xcf"},
		MimeTypes:  []string{"image/x-xcf"},
		Reason:     "GIMP project files cannot be displayed",
	})

	require.True(t, outcome.IsValid)
	assert.Contains(t, reg.RejectedNames(), "xcf")
}

func TestAddRejectedRequiresReason(t *testing.T) {
	reg := NewDefault()

	outcome := reg.AddRejected("xcf", model.RejectedFormatDefinition{
		Extensions: []string{".xcf"},
		MimeTypes:  []string{"image/x-xcf"},
	})

	assert.False(t, outcome.IsValid)
	assert.Contains(t, outcome.Errors[0], "reason")
}

func TestRemove(t *testing.T) {
	reg := NewDefault()

	assert.True(t, reg.RemoveSupported("bmp"))
	assert.False(t, reg.RemoveSupported("bmp"))
	assert.NotContains(t, reg.SupportedNames(), "bmp")

	assert.True(t, reg.RemoveRejected("psd"))
	assert.False(t, reg.RemoveRejected("psd"))
}

func TestSetEnabled(t *testing.T) {
	reg := NewDefault()

	require.True(t, reg.SetEnabled("gif", false))
	assert.NotContains(t, reg.SupportedNames(), "gif")

	st, ok := reg.LookupExtension(".gif")
	require.True(t, ok)
	assert.False(t, st.Valid)
	assert.NotEmpty(t, st.Reason)

	require.True(t, reg.SetEnabled("gif", true))
	assert.Contains(t, reg.SupportedNames(), "gif")

	assert.False(t, reg.SetEnabled("nope", true))
}

func TestReplaceAllRoundTrip(t *testing.T) {
	reg := NewDefault()
	before := reg.Get()

	outcome := reg.ReplaceAll(before)

	require.True(t, outcome.IsValid)
	assert.Equal(t, before, reg.Get())
}

func TestReplaceAllAtomicOnFailure(t *testing.T) {
	reg := NewDefault()
	before := reg.Get()

	bad := before.Clone()
	// Introduce a cross-set MIME conflict.
	bad.Rejected["fake"] = model.RejectedFormatDefinition{
		Extensions: []string{".fake"},
		MimeTypes:  []string{"image/png"},
		Reason:     "conflicting on purpose",
	}

	outcome := reg.ReplaceAll(bad)

	assert.False(t, outcome.IsValid)
	assert.Equal(t, before, reg.Get())
}

func TestReplaceAllRejectsNilMaps(t *testing.T) {
	reg := NewDefault()

	outcome := reg.ReplaceAll(model.RegistryConfig{})

	assert.False(t, outcome.IsValid)
}

func TestLookupMime(t *testing.T) {
	reg := NewDefault()

	st, ok := reg.LookupMime("image/jpeg")
	require.True(t, ok)
	assert.Equal(t, "jpeg", st.Format)
	assert.True(t, st.Valid)

	st, ok = reg.LookupMime("  IMAGE/TIFF ")
	require.True(t, ok)
	assert.Equal(t, "tiff", st.Format)
	assert.False(t, st.Valid)
	assert.Equal(t, "Limited browser support", st.Reason)

	_, ok = reg.LookupMime("application/pdf")
	assert.False(t, ok)
}

func TestLookupExtension(t *testing.T) {
	reg := NewDefault()

	st, ok := reg.LookupExtension(".JPG")
	require.True(t, ok)
	assert.Equal(t, "jpeg", st.Format)
	assert.True(t, st.Valid)

	st, ok = reg.LookupExtension(".cr2")
	require.True(t, ok)
	assert.Equal(t, "raw", st.Format)
	assert.False(t, st.Valid)

	_, ok = reg.LookupExtension(".txt")
	assert.False(t, ok)
}

func TestLookupFormat(t *testing.T) {
	reg := NewDefault()

	st, ok := reg.LookupFormat("webp")
	require.True(t, ok)
	assert.True(t, st.Valid)

	st, ok = reg.LookupFormat("heic")
	require.True(t, ok)
	assert.False(t, st.Valid)

	_, ok = reg.LookupFormat("nope")
	assert.False(t, ok)
}

func TestDisjointDefaults(t *testing.T) {
	// The seed set itself must satisfy the cross-set disjointness rule.
	outcome := validateConfig(Defaults())
	assert.True(t, outcome.IsValid, "default registry config has conflicts: %v", outcome.Errors)
}
