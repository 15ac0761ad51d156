package detect

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/imagegate/internal/model"
	"github.com/sells-group/imagegate/internal/registry"
)

// ProbeOptions configures the content-type probe.
type ProbeOptions struct {
	UserAgent string
	Timeout   time.Duration
	// RatePerSec limits outbound probes; zero disables limiting.
	RatePerSec float64
	Burst      int
}

// ProbeDetector performs the one network call in the chain: a header-only
// fetch of the locator, classifying by the Content-Type response header.
// Runs last because it is the slowest and the only strategy that can fail
// with a transport fault.
type ProbeDetector struct {
	reg     *registry.Registry
	client  *http.Client
	limiter *rate.Limiter
	opts    ProbeOptions
}

// NewProbeDetector creates the probe with the given options.
func NewProbeDetector(reg *registry.Registry, opts ProbeOptions) *ProbeDetector {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "imagegate/1.0"
	}
	var limiter *rate.Limiter
	if opts.RatePerSec > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return &ProbeDetector{
		reg: reg,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		limiter: limiter,
		opts:    opts,
	}
}

func (d *ProbeDetector) Name() model.DetectionMethod { return model.MethodHTTPContentType }

func (d *ProbeDetector) Priority() int { return 3 }

// Detect fetches headers for http(s) locators and classifies the
// Content-Type. Non-HTTP locators are a zero-confidence pass with no
// network call. Transport failures, timeouts, and non-2xx statuses return a
// *TransportFault.
func (d *ProbeDetector) Detect(ctx context.Context, req Request) (model.ClassificationResult, error) {
	if !IsProbeable(req.Locator) {
		return noResult(d.Name()), nil
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return noResult(d.Name()), classifyTransportErr(eris.Wrap(err, "probe: rate limiter wait"))
		}
	}

	contentType, fault := d.fetchContentType(ctx, req.Locator)
	if fault != nil {
		return noResult(d.Name()), fault
	}
	if contentType == "" {
		return noResult(d.Name()), nil
	}

	st, known := d.reg.LookupMime(contentType)
	if !known {
		return model.ClassificationResult{
			IsValid:          false,
			DetectedMimeType: contentType,
			RejectionReason:  "Unknown MIME type",
			Confidence:       ConfidenceProbeUnknown,
			DetectionMethod:  d.Name(),
		}, nil
	}
	return resultFromStatus(d.Name(), st, ConfidenceProbeKnown), nil
}

// fetchContentType issues a HEAD request, falling back to a body-discarded
// GET when the server rejects HEAD with 405. Returns the media type with
// parameters stripped, or "" when the header is absent.
func (d *ProbeDetector) fetchContentType(ctx context.Context, locator string) (string, *TransportFault) {
	resp, fault := d.do(ctx, http.MethodHead, locator)
	if fault != nil && fault.Kind == FaultHTTPStatus && fault.StatusCode == http.StatusMethodNotAllowed {
		zap.L().Debug("probe: HEAD not allowed, retrying with GET",
			zap.String("url", locator),
		)
		resp, fault = d.do(ctx, http.MethodGet, locator)
	}
	if fault != nil {
		return "", fault
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<14))
		_ = resp.Body.Close()
	}()

	return ParseMediaType(resp.Header.Get("Content-Type")), nil
}

func (d *ProbeDetector) do(ctx context.Context, method, locator string) (*http.Response, *TransportFault) {
	req, err := http.NewRequestWithContext(ctx, method, locator, nil)
	if err != nil {
		return nil, &TransportFault{Kind: FaultNetwork, Err: eris.Wrap(err, "probe: build request")}
	}
	req.Header.Set("User-Agent", d.opts.UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, classifyTransportErr(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, &TransportFault{Kind: FaultHTTPStatus, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// IsProbeable reports whether the locator is a syntactically valid http(s)
// URL worth a network call.
func IsProbeable(locator string) bool {
	u, err := url.Parse(locator)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// ParseMediaType strips parameters and whitespace from a Content-Type
// header value and lowercases the media type. Returns "" for an empty
// header.
func ParseMediaType(header string) string {
	if header == "" {
		return ""
	}
	if idx := strings.Index(header, ";"); idx >= 0 {
		header = header[:idx]
	}
	return strings.ToLower(strings.TrimSpace(header))
}
