package api

import (
	"log/slog"
	"net/http"
	"time"

	"bazaarsync/internal/ratelimit"
)

// Client provides access to the market REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration

	region       int
	summaryBatch int
	pacer        ratelimit.Pacer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new market API client. The region is the single
// monitored region; orders from any other region are filtered out at fetch
// time and never enter the model.
func NewClient(baseURL string, region int, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       slog.Default(),
		maxRetries:   3,
		retryBackoff: time.Second,
		region:       region,
		summaryBatch: 100,
		pacer:        ratelimit.Interval(200 * time.Millisecond),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSummaryBatchSize caps how many ids go into one bulk-summary call.
// The remote API rejects oversized batches.
func WithSummaryBatchSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.summaryBatch = n
		}
	}
}

// WithPacer sets the inter-batch pacer.
func WithPacer(p ratelimit.Pacer) ClientOption {
	return func(c *Client) {
		if p != nil {
			c.pacer = p
		}
	}
}
