// Package fetch holds the HTTP plumbing shared by every data provider: a
// rate-limited JSON client and a disk cache for responses.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
	userAgent        = "Mozilla/5.0 (X11; Linux x86_64) fterm/1.0"
)

// Client performs rate-limited GET requests against one provider.
type Client struct {
	provider   string
	baseURL    string
	query      url.Values // sent with every request (keys, formats)
	header     http.Header
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Option configures the client
type Option func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithRateLimit sets the rate limit in requests per second.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *Client) {
		burst := max(int(requestsPerSecond), 1)
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithTransport sets the RoundTripper, typically a cache built with NewCache.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithQuery adds a query parameter sent with every request.
func WithQuery(key, value string) Option {
	return func(c *Client) { c.query.Set(key, value) }
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Set(key, value) }
}

// NewClient creates a client for the named provider.
func NewClient(provider, baseURL string, opts ...Option) *Client {
	c := &Client{
		provider:   provider,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		query:      url.Values{},
		header:     http.Header{},
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     zap.NewNop(),
	}
	c.header.Set("User-Agent", userAgent)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Live returns a client for data that must not be cached, like quotes.
// It shares c's rate limiter, and its requests bypass the disk cache.
func (c *Client) Live() *Client {
	live := *c
	live.header = c.header.Clone()
	live.header.Set("Cache-Control", "no-cache")
	return &live
}

// Provider returns the provider name used in errors and logs.
func (c *Client) Provider() string { return c.provider }

// GetBytes performs a rate-limited GET request and returns the response body.
func (c *Client) GetBytes(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	for k, v := range c.query {
		q[k] = v
	}
	for k, v := range params {
		q[k] = v
	}
	reqURL := c.baseURL + path
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}

	c.logger.Debug("api request", zap.String("provider", c.provider), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to execute request: %w", c.provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", c.provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Message:    message(body, resp.Status),
			Endpoint:   path,
		}
	}
	return body, nil
}

// GetJSON performs a rate-limited GET request and decodes the JSON response into result.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, result any) error {
	body, err := c.GetBytes(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", c.provider, err)
	}
	return nil
}

// GetAny is like GetJSON but decodes into generic values, ready for jsonpath queries.
func (c *Client) GetAny(ctx context.Context, path string, params url.Values) (any, error) {
	var v any
	if err := c.GetJSON(ctx, path, params, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// message extracts a short error message from a body.
func message(body []byte, status string) string {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return status
	}
	const maxLen = 200
	if len(msg) > maxLen {
		msg = msg[:maxLen] + "..."
	}
	return msg
}
