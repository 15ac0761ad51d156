package detect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/imagegate/internal/model"
	"github.com/sells-group/imagegate/internal/registry"
)

func newTestProbe(timeout time.Duration) *ProbeDetector {
	return NewProbeDetector(registry.NewDefault(), ProbeOptions{
		UserAgent: "test-agent",
		Timeout:   timeout,
	})
}

func TestProbeKnownContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "image/webp")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := newTestProbe(5 * time.Second)
	res, err := d.Detect(context.Background(), Request{Locator: srv.URL + "/photo"})

	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.Equal(t, "webp", res.DetectedFormat)
	assert.Equal(t, "image/webp", res.DetectedMimeType)
	assert.Equal(t, ConfidenceProbeKnown, res.Confidence)
	assert.Equal(t, model.MethodHTTPContentType, res.DetectionMethod)
}

func TestProbeStripsContentTypeParameters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png; charset=binary")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := newTestProbe(5 * time.Second)
	res, err := d.Detect(context.Background(), Request{Locator: srv.URL + "/photo"})

	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.Equal(t, "png", res.DetectedFormat)
}

func TestProbeUnknownContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := newTestProbe(5 * time.Second)
	res, err := d.Detect(context.Background(), Request{Locator: srv.URL + "/blob"})

	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Equal(t, "Unknown MIME type", res.RejectionReason)
	assert.Equal(t, ConfidenceProbeUnknown, res.Confidence)
}

func TestProbeNoContentTypeHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Suppress Go's automatic content-type sniffing.
		w.Header()["Content-Type"] = nil
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := newTestProbe(5 * time.Second)
	res, err := d.Detect(context.Background(), Request{Locator: srv.URL + "/mystery"})

	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Equal(t, ConfidenceNone, res.Confidence)
}

func TestProbeHeadFallsBackToGet(t *testing.T) {
	var sawGet bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		sawGet = true
		w.Header().Set("Content-Type", "image/gif")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := newTestProbe(5 * time.Second)
	res, err := d.Detect(context.Background(), Request{Locator: srv.URL + "/anim"})

	require.NoError(t, err)
	assert.True(t, sawGet)
	assert.True(t, res.IsValid)
	assert.Equal(t, "gif", res.DetectedFormat)
}

func TestProbeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	d := newTestProbe(5 * time.Second)
	_, err := d.Detect(context.Background(), Request{Locator: srv.URL + "/missing"})

	var fault *TransportFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, FaultHTTPStatus, fault.Kind)
	assert.Equal(t, 404, fault.StatusCode)
	assert.Equal(t, "Image not found (404)", fault.UserMessage())
}

func TestProbeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := newTestProbe(5 * time.Second)
	_, err := d.Detect(context.Background(), Request{Locator: srv.URL + "/broken"})

	var fault *TransportFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, FaultHTTPStatus, fault.Kind)
	assert.Equal(t, "Server error (502)", fault.UserMessage())
}

func TestProbeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	d := newTestProbe(50 * time.Millisecond)
	_, err := d.Detect(context.Background(), Request{Locator: srv.URL + "/slow"})

	var fault *TransportFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, FaultTimeout, fault.Kind)
	assert.True(t, fault.IsTimeout())
	assert.Equal(t, "Request timed out while checking the image", fault.UserMessage())
}

func TestProbeNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := srv.URL + "/gone"
	srv.Close()

	d := newTestProbe(1 * time.Second)
	_, err := d.Detect(context.Background(), Request{Locator: target})

	var fault *TransportFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, FaultNetwork, fault.Kind)
	assert.Equal(t, "Network connection failed", fault.UserMessage())
}

func TestProbeSkipsNonHTTPLocators(t *testing.T) {
	d := newTestProbe(time.Second)
	for _, locator := range []string{
		"ftp://x.test/photo.jpg",
		"file:///tmp/photo.jpg",
		"not a url at all",
		"/relative/photo.jpg",
	} {
		res, err := d.Detect(context.Background(), Request{Locator: locator})
		require.NoError(t, err, locator)
		assert.Equal(t, ConfidenceNone, res.Confidence, locator)
	}
}

func TestIsProbeable(t *testing.T) {
	assert.True(t, IsProbeable("https://x.test/a.jpg"))
	assert.True(t, IsProbeable("http://x.test"))
	assert.False(t, IsProbeable("ftp://x.test/a.jpg"))
	assert.False(t, IsProbeable("https://"))
	assert.False(t, IsProbeable(""))
}

func TestParseMediaType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ParseMediaType("image/jpeg"))
	assert.Equal(t, "image/jpeg", ParseMediaType("IMAGE/JPEG; charset=utf-8"))
	assert.Equal(t, "image/png", ParseMediaType("  image/png ; boundary=x"))
	assert.Empty(t, ParseMediaType(""))
}
