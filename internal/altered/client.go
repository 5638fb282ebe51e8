// Package altered provides a client for the Altered TCG REST API.
package altered

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the production API host.
	DefaultBaseURL = "https://api.altered.gg"

	rateLimitDelay = 100 * time.Millisecond // 100ms between requests (10 req/sec)
	requestTimeout = 30 * time.Second

	maxAttempts = 3
	retryDelay  = 500 * time.Millisecond
)

// Client represents an Altered API client with rate limiting and bounded
// retries. All requests carry the caller's bearer token and the fixed
// Accept-Language header the vendor expects.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string

	maxAttempts int
	retryDelay  time.Duration
}

// NewClient creates a new Altered API client. An empty baseURL selects the
// production host.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		// Rate limiter: 1 request per 100ms = 10 req/sec
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		userAgent:   "Altered-Companion/1.0",
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

// Do performs an HTTP request with up to 3 attempts. HTTP 401 and 500 are
// terminal and fail immediately; any other failure is retried after a fixed
// 500ms delay, and the last error is returned once attempts are exhausted.
// Each attempt re-issues the request from scratch.
//
// The returned response has status 2xx and its body is unread; callers own
// closing it.
func (c *Client) Do(ctx context.Context, method, url, token string, body []byte) (*http.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.doAttempt(ctx, method, url, token, body)
		if err == nil {
			return resp, nil
		}

		var terminal *TerminalError
		if errors.As(err, &terminal) {
			return nil, err
		}

		lastErr = err

		if attempt < c.maxAttempts {
			log.Printf("[altered] retrying %s %s (%d/%d): %v", method, url, attempt, c.maxAttempts, err)
			time.Sleep(c.retryDelay)
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doAttempt issues the request once and classifies the outcome.
func (c *Client) doAttempt(ctx context.Context, method, url, token string, body []byte) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req, token, body != nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusInternalServerError:
		_ = resp.Body.Close()
		return nil, &TerminalError{StatusCode: resp.StatusCode, URL: url}

	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, &NotFoundError{URL: url}

	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s %s: unexpected status %d: %s", method, url, resp.StatusCode, msg)
	}

	return resp, nil
}

// DoOnce performs a single HTTP request with no retry. It exists for trade
// creation: re-issuing a failed POST could duplicate the trade, so failures
// there surface once. Terminal statuses are reported the same way Do reports
// them.
func (c *Client) DoOnce(ctx context.Context, method, url, token string, body []byte) (*http.Response, error) {
	return c.doAttempt(ctx, method, url, token, body)
}

// setHeaders applies the fixed header set the vendor API expects.
// The vendor localizes card names, so Accept-Language is pinned.
func (c *Client) setHeaders(req *http.Request, token string, hasBody bool) {
	req.Header.Set("Authorization", token)
	req.Header.Set("Accept-Language", "fr-fr")
	req.Header.Set("User-Agent", c.userAgent)
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

// getJSON performs a retried GET and decodes the response body into result.
func (c *Client) getJSON(ctx context.Context, url, token string, result interface{}) error {
	resp, err := c.Do(ctx, http.MethodGet, url, token, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return nil
}
