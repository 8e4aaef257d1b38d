package outbound

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultRetryStatuses are the upstream status codes retried when an
// endpoint does not configure its own set.
var DefaultRetryStatuses = []int{
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
}

// EndpointConfig describes a named remote call target. Configs are
// registered at engine construction and immutable afterwards, so they may
// be read concurrently without locking.
type EndpointConfig struct {
	// Name is the unique key callers use to address this endpoint.
	Name string `json:"name"`

	// Method is the HTTP method. Defaults to POST when empty.
	Method string `json:"method,omitempty"`

	// URL is the target address handed to the transport.
	URL string `json:"url"`

	// Headers are endpoint-level defaults. They override engine defaults
	// and are overridden by per-call headers.
	Headers map[string]string `json:"headers,omitempty"`

	// Timeout bounds a single transport attempt. Zero falls back to the
	// engine's Config.DefaultTimeout.
	Timeout time.Duration `json:"timeout,omitempty"`

	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int `json:"max_retries,omitempty"`

	// RetryStatuses lists upstream status codes that trigger a retry.
	// Empty means DefaultRetryStatuses.
	RetryStatuses []int `json:"retry_statuses,omitempty"`
}

// Validate checks the config for registration.
func (c EndpointConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEndpoint)
	}
	if c.URL == "" {
		return fmt.Errorf("%w: endpoint %q has no url", ErrInvalidEndpoint, c.Name)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: endpoint %q has negative max_retries", ErrInvalidEndpoint, c.Name)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: endpoint %q has negative timeout", ErrInvalidEndpoint, c.Name)
	}
	return nil
}

// Retryable reports whether an upstream status code should trigger
// another attempt for this endpoint.
func (c EndpointConfig) Retryable(status int) bool {
	statuses := c.RetryStatuses
	if len(statuses) == 0 {
		statuses = DefaultRetryStatuses
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// EffectiveMethod returns the configured method uppercased, defaulting
// to POST.
func (c EndpointConfig) EffectiveMethod() string {
	if c.Method == "" {
		return http.MethodPost
	}
	return strings.ToUpper(c.Method)
}
