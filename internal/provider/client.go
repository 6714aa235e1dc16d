package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 20 * time.Second

// Client is the shared HTTP client for the public JSON feeds. The feeds are
// unauthenticated; pacing between calls belongs to the driver, so the client
// only bounds each call with a timeout.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *slog.Logger
}

// ClientOptions configures NewClient.
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string
	Logger    *slog.Logger
}

// NewClient creates a client for one base URL.
func NewClient(baseURL string, opts ClientOptions) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "scoracle-ingest/1.0"
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    baseURL,
		userAgent:  opts.UserAgent,
		logger:     opts.Logger,
	}
}

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetJSON performs a GET and decodes a JSON object response.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values) (map[string]interface{}, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	c.logger.Debug("source request", "url", u, "status", resp.StatusCode,
		"bytes", len(body), "duration", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, Truncate(body, 200))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}

// Truncate returns a truncated string representation for error messages.
func Truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
