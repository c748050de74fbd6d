package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"bazaarsync/internal/ratelimit"
)

// Table names in the backing store.
const (
	TableItems   = "market_items"
	TableOrders  = "item_orders"
	TableChanges = "market_changes"
	TableMeta    = "sync_meta"
)

// StoreError represents an error response from the backing store.
type StoreError struct {
	StatusCode int
	Body       []byte
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Client talks to the backing store's REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	batchSize int
	pacer     ratelimit.Pacer
}

// Option configures a Client.
type Option func(*Client)

// New creates a backing-store client. An empty baseURL or apiKey leaves the
// client unconfigured; remote operations are then skipped by callers, and
// local-only commands keep working.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:    slog.Default(),
		batchSize: 200,
		pacer:     ratelimit.Interval(150 * time.Millisecond),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBatchSize caps rows per upload request.
func WithBatchSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithPacer sets the inter-batch pacer.
func WithPacer(p ratelimit.Pacer) Option {
	return func(c *Client) {
		if p != nil {
			c.pacer = p
		}
	}
}

// Configured reports whether the store credentials are present.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// do issues one request against a table endpoint. merge adds the
// upsert-with-merge preference so repeated pushes of the same row are
// conflict-free no-ops on the server side.
func (c *Client) do(ctx context.Context, method, table string, query url.Values, payload []byte, merge bool) error {
	endpoint := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if merge {
		req.Header.Set("Prefer", "resolution=merge-duplicates")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &StoreError{StatusCode: resp.StatusCode, Body: respBody}
	}

	return nil
}
