// internal/workers/claims/process-claim-intent/config.go
package processclaimintent

import "time"

type Config struct {
	// Timeout bounds one pipeline run started from a Zeebe job or an HTTP request.
	Timeout time.Duration
	// Transport labels the active-runs gauge ("http", "zeebe", "lambda").
	Transport string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   30 * time.Second,
		Transport: "http",
	}
}
