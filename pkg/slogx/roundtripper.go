package slogx

import (
	"log/slog"
	"net/http"
	"time"
)

// RoundTripper logs outbound requests at debug level. Headers are never
// logged since they carry bearer tokens.
type RoundTripper struct {
	next   http.RoundTripper
	logger *slog.Logger
}

// NewRoundTripper wraps next, which defaults to http.DefaultTransport.
func NewRoundTripper(next http.RoundTripper, logger *slog.Logger) *RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RoundTripper{next: next, logger: logger}
}

func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := rt.next.RoundTrip(req)

	attrs := []any{
		"method", req.Method,
		"host", req.URL.Host,
		"path", req.URL.Path,
		"req_id", req.Header.Get(headerRequestID),
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		rt.logger.DebugContext(req.Context(), "outbound_request_failed", append(attrs, "error", err)...)
		return nil, err
	}

	rt.logger.DebugContext(req.Context(), "outbound_request", append(attrs, "status", resp.StatusCode)...)
	return resp, nil
}
