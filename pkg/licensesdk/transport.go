package licensesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/licensing/pkg/idx"
	"github.com/aussiebroadwan/licensing/pkg/slogx"
	"golang.org/x/time/rate"
)

// Transport performs the HTTP round-trips of a Client. Implementations return
// a Response for every status code and an error only when no response was
// received. Paths are relative to the service base URL and may carry a
// query string.
type Transport interface {
	Get(ctx context.Context, path string, headers map[string]string) (*Response, error)
	Post(ctx context.Context, path string, body any, headers map[string]string) (*Response, error)
	Put(ctx context.Context, path string, body any, headers map[string]string) (*Response, error)
	Delete(ctx context.Context, path string, headers map[string]string) (*Response, error)
}

// HTTPTransport is the default Transport backed by net/http.
type HTTPTransport struct {
	BaseURL    string
	HTTPClient *http.Client

	// Limiter throttles outgoing requests when set.
	Limiter *rate.Limiter
}

// NewHTTPTransport creates a transport with the given overall request
// timeout. Outgoing requests are logged at debug level through logger.
func NewHTTPTransport(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	base.DialContext = (&net.Dialer{
		Timeout:   DefaultConnectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext

	return &HTTPTransport{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: slogx.NewRoundTripper(base, logger),
		},
	}
}

func (t *HTTPTransport) Get(ctx context.Context, path string, headers map[string]string) (*Response, error) {
	return t.do(ctx, http.MethodGet, path, nil, headers)
}

func (t *HTTPTransport) Post(ctx context.Context, path string, body any, headers map[string]string) (*Response, error) {
	return t.do(ctx, http.MethodPost, path, jsonBody(body), headers)
}

func (t *HTTPTransport) Put(ctx context.Context, path string, body any, headers map[string]string) (*Response, error) {
	return t.do(ctx, http.MethodPut, path, jsonBody(body), headers)
}

func (t *HTTPTransport) Delete(ctx context.Context, path string, headers map[string]string) (*Response, error) {
	return t.do(ctx, http.MethodDelete, path, nil, headers)
}

// jsonBody makes POST and PUT always send a JSON object.
func jsonBody(body any) any {
	if body == nil {
		return map[string]any{}
	}
	return body
}

func (t *HTTPTransport) do(
	ctx context.Context,
	method, path string,
	body any,
	headers map[string]string,
) (*Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(ctx); err != nil {
			return nil, networkError(fmt.Errorf("rate limiter: %w", err))
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &APIError{
				Kind:    KindGenericAPIFailure,
				Code:    ErrorCodeValidationError,
				Message: fmt.Sprintf("failed to marshal request body: %v", err),
				Err:     err,
			}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(HeaderAccept, ContentTypeJSON)
	req.Header.Set(HeaderRequestID, idx.New().String())
	if reader != nil {
		req.Header.Set(HeaderContentType, ContentTypeJSON)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(fmt.Errorf("failed to read response body: %w", err))
	}

	respHeaders := make(map[string]string, len(resp.Header))
	for name, values := range resp.Header {
		respHeaders[name] = strings.Join(values, ", ")
	}

	return &Response{
		Status:  resp.StatusCode,
		Body:    string(bodyBytes),
		Headers: respHeaders,
	}, nil
}

func networkError(err error) *APIError {
	return &APIError{
		Kind:    KindNetworkFailure,
		Code:    ErrorCodeAuthenticationError,
		Message: fmt.Sprintf("network error: %v", err),
		Err:     err,
	}
}
