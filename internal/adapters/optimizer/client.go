package optimizer

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// Client talks to the remote route optimizer.
//
// It exposes:
//   - the three optimization strategies (genetic, advanced, nearest lookup)
//   - the supply-point dataset used by the local fallback
//   - the two-stage connectivity probe
//
// The client holds no per-request state and is safe for concurrent use.
// Deadlines come from the caller's context, so the http.Client carries no
// global timeout of its own.
type Client struct {
	session       *http.Client
	baseURL       string
	userAgent     string
	maxAttempts   int
	backoff       time.Duration
	maxDistanceKm float64

	probePrimaryTimeout   time.Duration
	probeSecondaryTimeout time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.session = hc }
}

// WithRetry sets how many times idempotent dataset reads are attempted and
// the initial backoff between them.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxAttempts = maxAttempts
		c.backoff = backoff
	}
}

// WithNearestMaxDistance sets the max_distance sent to /find-nearest-points.
func WithNearestMaxDistance(km float64) Option {
	return func(c *Client) { c.maxDistanceKm = km }
}

// WithProbeTimeouts bounds the /health and root probe requests.
func WithProbeTimeouts(primary, secondary time.Duration) Option {
	return func(c *Client) {
		c.probePrimaryTimeout = primary
		c.probeSecondaryTimeout = secondary
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("optimizer base url is empty")
	}

	c := &Client{
		session:       &http.Client{},
		baseURL:       baseURL,
		userAgent:     "water-route-service/1.0",
		maxAttempts:   3,
		backoff:       200 * time.Millisecond,
		maxDistanceKm: 1000,

		probePrimaryTimeout:   10 * time.Second,
		probeSecondaryTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the normalized optimizer base URL.
func (c *Client) BaseURL() string { return c.baseURL }
