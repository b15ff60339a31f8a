// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dental-claims/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client used by the claim job worker.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

// ClientConfig holds configuration for the Camunda/Zeebe client.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RetryConfig            *RetryConfig
}

// RetryConfig bounds connection attempts at startup.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
}

// NewClient connects to the gateway, retrying transient failures with
// exponential backoff.
func NewClient(ctx context.Context, config *ClientConfig) (*Client, error) {
	if config.RetryConfig == nil {
		config.RetryConfig = DefaultRetryConfig
	}
	if config.ConnectionTimeout == 0 {
		config.ConnectionTimeout = 10 * time.Second
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{client: zeebeClient, config: config}

	var lastErr error
	for attempt := 0; attempt <= config.RetryConfig.MaxRetries; attempt++ {
		if lastErr = c.HealthCheck(ctx); lastErr == nil {
			return c, nil
		}
		if !isRetryableZeebeError(lastErr) {
			break
		}

		delay := config.RetryConfig.BaseDelay * time.Duration(1<<attempt)
		if delay > config.RetryConfig.MaxDelay {
			delay = config.RetryConfig.MaxDelay
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			zeebeClient.Close()
			return nil, fmt.Errorf("connecting to %s cancelled: %w", config.GatewayAddress, ctx.Err())
		}
	}

	zeebeClient.Close()
	return nil, mapZeebeError(lastErr, config.GatewayAddress)
}

// GetClient returns the raw Zeebe client for job polling.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck performs a topology request against the broker.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

func isRetryableZeebeError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

func mapZeebeError(err error, address string) error {
	wrapped := fmt.Errorf("zeebe broker at %s: %w", address, err)
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded") {
		return errors.NewTimeoutError("zeebe", wrapped)
	}
	return errors.NewExternalServiceError("zeebe", wrapped)
}
