package model

import "time"

// DetectionMethod identifies which classifier produced a result.
type DetectionMethod string

const (
	MethodMimeType        DetectionMethod = "mime-type"
	MethodURLExtension    DetectionMethod = "url-extension"
	MethodHTTPContentType DetectionMethod = "http-content-type"
	MethodInputValidation DetectionMethod = "input-validation"
	MethodUnknown         DetectionMethod = "unknown"
)

// CachedSuffix is appended to the detection method on cache-served results
// so telemetry can distinguish cache-assisted decisions from fresh ones.
const CachedSuffix = "-cached"

// Cached returns the method tagged as cache-served.
func (m DetectionMethod) Cached() DetectionMethod {
	return m + CachedSuffix
}

// ClassificationResult is the verdict for a single locator. It is an
// immutable value: strategies and the orchestrator always produce a fresh
// one rather than mutating a shared instance.
type ClassificationResult struct {
	IsValid          bool            `json:"is_valid"`
	DetectedFormat   string          `json:"detected_format,omitempty"`
	DetectedMimeType string          `json:"detected_mime_type,omitempty"`
	RejectionReason  string          `json:"rejection_reason,omitempty"`
	Confidence       float64         `json:"confidence"`
	DetectionMethod  DetectionMethod `json:"detection_method"`
}

// ErrorDetails describes a fault attached to a decision record.
type ErrorDetails struct {
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
	StackTrace   string `json:"stack_trace,omitempty"`
}

// RecordMetadata carries transport-level context for a decision record.
type RecordMetadata struct {
	NetworkTimeout bool `json:"network_timeout,omitempty"`
	HTTPStatusCode int  `json:"http_status_code,omitempty"`
}

// DecisionRecord is one entry in the decision log.
type DecisionRecord struct {
	ID               string          `json:"id"`
	URL              string          `json:"url"`
	Timestamp        time.Time       `json:"timestamp"`
	ValidationResult bool            `json:"validation_result"`
	DetectedFormat   string          `json:"detected_format,omitempty"`
	DetectedMimeType string          `json:"detected_mime_type,omitempty"`
	RejectionReason  string          `json:"rejection_reason,omitempty"`
	ValidationTimeMs int64           `json:"validation_time_ms"`
	DetectionMethod  DetectionMethod `json:"detection_method"`
	Confidence       float64         `json:"confidence"`
	ErrorDetails     *ErrorDetails   `json:"error_details,omitempty"`
	Metadata         *RecordMetadata `json:"metadata,omitempty"`
}

// IsError reports whether the record captured a fault rather than a clean
// accept/reject decision.
func (r DecisionRecord) IsError() bool {
	return r.ErrorDetails != nil
}
