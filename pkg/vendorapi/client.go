package vendorapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// DefaultBackoff is the retry delay table for rate-limited requests.
var DefaultBackoff = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

// APIError is any non-2xx response from a vendor API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vendor API error: %d - %s", e.Status, e.Body)
}

// IsRateLimited reports whether err is a 429 response.
func IsRateLimited(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusTooManyRequests
}

// Client is a thin JSON request wrapper over vendor REST APIs. Each call is
// independent: bearer auth, no connection affinity, rate-limit retries with a
// bounded delay table.
type Client struct {
	httpClient *http.Client
	backoff    []time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithBackoff(backoff []time.Duration) Option {
	return func(c *Client) { c.backoff = backoff }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		backoff:    DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON performs an authenticated GET and decodes the JSON response into out.
// On 429 the request is retried up to len(backoff) times (1s, 2s, 4s by
// default); any other non-2xx status fails immediately with *APIError.
func (c *Client) GetJSON(ctx context.Context, url, token string, out interface{}, extraHeaders ...string) error {
	return c.Retry(ctx, func() error {
		return c.doJSON(ctx, http.MethodGet, url, token, out, extraHeaders)
	})
}

// Retry runs fn, retrying only rate-limit failures using the client's delay
// table. The last error is returned once attempts are exhausted.
func (c *Client) Retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !IsRateLimited(err) || attempt >= len(c.backoff) {
			return err
		}
		delay := c.backoff[attempt]
		log.Printf("[VENDOR API] Rate limited, retrying in %s (attempt %d)", delay, attempt+1)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) doJSON(ctx context.Context, method, url, token string, out interface{}, extraHeaders []string) error {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(extraHeaders); i += 2 {
		req.Header.Set(extraHeaders[i], extraHeaders[i+1])
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
