package registry

import "github.com/sells-group/imagegate/internal/model"

// Defaults returns the standard web-displayable format set: the formats
// every mainstream browser renders natively, plus the common camera and
// editor formats that are recognized but rejected with an explanation.
func Defaults() model.RegistryConfig {
	return model.RegistryConfig{
		Supported: map[string]model.FormatDefinition{
			"jpeg": {
				Extensions: []string{".jpg", ".jpeg", ".jpe", ".jfif"},
				MimeTypes:  []string{"image/jpeg", "image/jpg"},
				Enabled:    true,
			},
			"png": {
				Extensions: []string{".png"},
				MimeTypes:  []string{"image/png"},
				Enabled:    true,
			},
			"gif": {
				Extensions: []string{".gif"},
				MimeTypes:  []string{"image/gif"},
				Enabled:    true,
			},
			"webp": {
				Extensions: []string{".webp"},
				MimeTypes:  []string{"image/webp"},
				Enabled:    true,
			},
			"svg": {
				Extensions: []string{".svg"},
				MimeTypes:  []string{"image/svg+xml"},
				Enabled:    true,
			},
			"bmp": {
				Extensions: []string{".bmp"},
				MimeTypes:  []string{"image/bmp"},
				Enabled:    true,
			},
			"ico": {
				Extensions: []string{".ico"},
				MimeTypes:  []string{"image/x-icon", "image/vnd.microsoft.icon"},
				Enabled:    true,
			},
			"avif": {
				Extensions: []string{".avif"},
				MimeTypes:  []string{"image/avif"},
				Enabled:    true,
			},
		},
		Rejected: map[string]model.RejectedFormatDefinition{
			"tiff": {
				Extensions: []string{".tif", ".tiff"},
				MimeTypes:  []string{"image/tiff"},
				Reason:     "Limited browser support",
			},
			"heic": {
				Extensions: []string{".heic", ".heif"},
				MimeTypes:  []string{"image/heic", "image/heif"},
				Reason:     "Not supported by most browsers",
			},
			"raw": {
				Extensions: []string{".raw", ".cr2", ".nef", ".arw", ".dng"},
				MimeTypes:  []string{"image/x-raw"},
				Reason:     "RAW formats require conversion before display",
			},
			"psd": {
				Extensions: []string{".psd"},
				MimeTypes:  []string{"image/vnd.adobe.photoshop"},
				Reason:     "Photoshop documents cannot be displayed in browsers",
			},
		},
	}
}
