package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds every outbound call made through StandardHTTPClient
const DefaultTimeout = 30 * time.Second

// Client defines an interface for making HTTP requests
// This allows for easy mocking and testing of HTTP calls
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// StandardHTTPClient wraps the standard http.Client
type StandardHTTPClient struct {
	client *http.Client
}

// NewStandardClient creates a new HTTP client with default settings
func NewStandardClient() *StandardHTTPClient {
	return NewClientWithTimeout(DefaultTimeout)
}

// NewClientWithTimeout creates a client whose requests give up after timeout
func NewClientWithTimeout(timeout time.Duration) *StandardHTTPClient {
	return &StandardHTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Do executes an HTTP request
func (c *StandardHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

// PostJSON encodes payload as JSON and POSTs it to url.
// The caller owns the response body.
func PostJSON(ctx context.Context, c Client, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.Do(req)
}

// PostForm POSTs an url-encoded form body to url
func PostForm(ctx context.Context, c Client, url string, form string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(form))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.Do(req)
}

// Get issues a GET request bound to ctx
func Get(ctx context.Context, c Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.Do(req)
}

// ReadBody reads at most limit bytes of a response body, for error reporting
func ReadBody(resp *http.Response, limit int64) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return ""
	}
	return string(bytes.TrimSpace(data))
}
