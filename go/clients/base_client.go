package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4 << 10
)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, strings.TrimSpace(e.Body))
}

// Option configures a BaseClient.
type Option func(*BaseClient)

// WithHeader sets a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *BaseClient) { c.headers.Set(key, value) }
}

// WithTimeout overrides the request timeout. Non-positive values are ignored.
func WithTimeout(timeout time.Duration) Option {
	return func(c *BaseClient) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *BaseClient) { c.client = hc }
}

// BaseClient is a small JSON-over-HTTP client shared by the API clients.
type BaseClient struct {
	baseURL string
	client  *http.Client
	headers http.Header
}

func NewBaseClient(baseURL string, opts ...Option) *BaseClient {
	c := &BaseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		headers: http.Header{"Accept": []string{"application/json"}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends the request and returns the response body of a 2xx answer.
func (c *BaseClient) Do(ctx context.Context, method, endpoint string, body io.Reader) ([]byte, error) {
	url := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range c.headers {
		req.Header[key] = values
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", method).
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Method: method, URL: url, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

// GetJSON fetches endpoint and decodes the body into v.
func (c *BaseClient) GetJSON(ctx context.Context, endpoint string, v interface{}) error {
	data, err := c.Do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
