// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"
)

// Client is the outbound HTTP client shared by collaborator adapters.
type Client struct {
	httpClient *http.Client
}

// NewClient returns a client with a pooled transport. timeout bounds each
// request; zero leaves requests bounded by their context only.
func NewClient(timeout time.Duration) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 10
	transport.IdleConnTimeout = 90 * time.Second

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}

// Standard exposes the underlying client for SDKs that take *http.Client.
func (c *Client) Standard() *http.Client {
	return c.httpClient
}
