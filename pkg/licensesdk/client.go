package licensesdk

import (
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/licensing/pkg/httpx"
)

// Client is a client for the admin API of the license service. It owns the
// bearer token of one logical session and issues one round-trip per call.
//
// A Client is not meant to be shared by independent sessions: Authenticate
// and SetToken replace the token seen by every caller.
type Client struct {
	BaseURL string

	transport Transport
	auth      authState
	now       func() time.Time
	logger    *slog.Logger
}

type clientOptions struct {
	transport Transport
	timeout   time.Duration
	logger    *slog.Logger
	clock     func() time.Time
	rateLimit *httpx.RateLimitConfig
}

// Option configures a Client.
type Option func(*clientOptions)

// WithTransport replaces the default net/http transport.
func WithTransport(t Transport) Option {
	return func(o *clientOptions) { o.transport = t }
}

// WithTimeout sets the request timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithLogger sets the logger used for debug request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) { o.clock = now }
}

// WithRateLimit throttles the default transport on the client side.
func WithRateLimit(cfg httpx.RateLimitConfig) Option {
	return func(o *clientOptions) { o.rateLimit = &cfg }
}

// NewClient creates a new license service client. The client starts
// unauthenticated.
func NewClient(baseURL string, opts ...Option) *Client {
	o := clientOptions{
		timeout: DefaultTimeout,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	baseURL = strings.TrimSuffix(baseURL, "/")

	transport := o.transport
	if transport == nil {
		ht := NewHTTPTransport(baseURL, o.timeout, o.logger)
		if o.rateLimit != nil {
			ht.Limiter = o.rateLimit.Limiter()
		}
		transport = ht
	}

	return &Client{
		BaseURL:   baseURL,
		transport: transport,
		now:       o.clock,
		logger:    o.logger,
	}
}

// SetToken sets the bearer token directly, e.g. a token obtained out of band.
// A nil expiresAt means the token never expires. No network call is made.
func (c *Client) SetToken(token string, expiresAt *time.Time) {
	c.auth.set(token, expiresAt)
}

// Token returns the current bearer token, or "" when unauthenticated.
func (c *Client) Token() string {
	token, _, _ := c.auth.snapshot()
	return token
}

// TokenExpiresAt returns the expiry of the current token, nil when the token
// never expires or no token is set.
func (c *Client) TokenExpiresAt() *time.Time {
	_, exp, _ := c.auth.snapshot()
	return exp
}

// IsAuthenticated reports whether a token is set and not expired.
func (c *Client) IsAuthenticated() bool {
	_, err := c.auth.issueHeaders(c.now())
	return err == nil
}
