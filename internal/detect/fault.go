package detect

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// FaultKind classifies a transport fault from the content-type probe.
type FaultKind string

const (
	// FaultNetwork means no response reached us at all.
	FaultNetwork FaultKind = "network"
	// FaultTimeout means the probe exceeded its deadline.
	FaultTimeout FaultKind = "timeout"
	// FaultHTTPStatus means the server answered with a 4xx/5xx status.
	FaultHTTPStatus FaultKind = "http_status"
)

// TransportFault is an I/O-level failure raised only by the content-type
// probe. It carries enough context for the orchestrator to synthesize a
// user-facing rejection and for the decision log to record the failure mode.
type TransportFault struct {
	Kind       FaultKind
	StatusCode int
	Err        error
}

func (f *TransportFault) Error() string {
	if f.Kind == FaultHTTPStatus {
		return fmt.Sprintf("probe: http %d", f.StatusCode)
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	return fmt.Sprintf("probe: %s fault", f.Kind)
}

func (f *TransportFault) Unwrap() error {
	return f.Err
}

// IsTimeout reports whether the fault is deadline expiry.
func (f *TransportFault) IsTimeout() bool {
	return f.Kind == FaultTimeout
}

// UserMessage maps the fault to the rejection reason shown to callers.
func (f *TransportFault) UserMessage() string {
	switch f.Kind {
	case FaultTimeout:
		return "Request timed out while checking the image"
	case FaultHTTPStatus:
		switch {
		case f.StatusCode == 404:
			return "Image not found (404)"
		case f.StatusCode == 403:
			return "Access denied (403)"
		case f.StatusCode >= 500:
			return fmt.Sprintf("Server error (%d)", f.StatusCode)
		default:
			return fmt.Sprintf("Request failed (%d)", f.StatusCode)
		}
	default:
		return "Network connection failed"
	}
}

// classifyTransportErr wraps a transport-level error as a TransportFault,
// separating deadline expiry from plain connectivity failures.
func classifyTransportErr(err error) *TransportFault {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportFault{Kind: FaultTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportFault{Kind: FaultTimeout, Err: err}
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return &TransportFault{Kind: FaultNetwork, Err: err}
	}
	// Wrapped client errors lose their types; fall back to message matching.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{"timeout", "deadline exceeded"} {
		if strings.Contains(msg, p) {
			return &TransportFault{Kind: FaultTimeout, Err: err}
		}
	}
	return &TransportFault{Kind: FaultNetwork, Err: err}
}
