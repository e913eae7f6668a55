// ABOUTME: HTTP client for the discussion server with form posts and retry on 429/5xx
// ABOUTME: Secure transport timeouts; retries are opt-in per call so post creation never repeats

package api

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	pihttp "github.com/mauromedda/pi-post-go/internal/http"
)

const (
	maxAttempts     = 3
	maxResponseSize = 1 << 20
)

// Client talks to the search and post-creation endpoints.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	headers     map[string]string
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithHeader adds a header sent on every request.
func WithHeader(k, v string) Option {
	return func(c *Client) { c.headers[k] = v }
}

// WithBackoff sets the first retry delay; later delays double up to 20x base.
func WithBackoff(base time.Duration) Option {
	return func(c *Client) {
		c.baseBackoff = base
		c.maxBackoff = 20 * base
	}
}

// NewClient creates a client for the server at baseURL.
// The timeout bounds each whole request; zero means 30s.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		httpClient:  pihttp.SecureHTTPClient(timeout),
		baseURL:     strings.TrimRight(baseURL, "/"),
		headers:     map[string]string{"Accept": "application/json, text/plain"},
		baseBackoff: 500 * time.Millisecond,
		maxBackoff:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// postForm sends a form POST and returns the status code and body.
// With retry set, 429 and 5xx responses are retried with exponential backoff
// and the last response is returned once attempts run out.
func (c *Client) postForm(ctx context.Context, path string, form url.Values, retry bool) (int, []byte, error) {
	attempts := 1
	if retry {
		attempts = maxAttempts
	}

	var (
		status int
		body   []byte
	)
	for attempt := range attempts {
		req, err := c.buildRequest(ctx, path, form)
		if err != nil {
			return 0, nil, err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, fmt.Errorf("http request failed: %w", err)
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()
		if err != nil {
			return 0, nil, fmt.Errorf("reading response from %s: %w", path, err)
		}
		status = resp.StatusCode

		if !isRetryable(status) || attempt == attempts-1 {
			break
		}
		if err := sleepWithContext(ctx, c.backoff(attempt)); err != nil {
			return 0, nil, fmt.Errorf("context cancelled during retry backoff: %w", err)
		}
	}
	return status, body, nil
}

func (c *Client) buildRequest(ctx context.Context, path string, form url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// isRetryable returns true for status codes that warrant a retry.
func isRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

// backoff returns the exponential delay before retry number attempt+1.
func (c *Client) backoff(attempt int) time.Duration {
	d := time.Duration(float64(c.baseBackoff) * math.Pow(2, float64(attempt)))
	return min(d, c.maxBackoff)
}

// sleepWithContext waits for the given duration or until the context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
