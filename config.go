package outbound

import "time"

// Config holds engine-level configuration.
type Config struct {
	// DefaultTimeout bounds a single transport attempt when neither the
	// endpoint nor the call sets a timeout.
	DefaultTimeout time.Duration

	// TraceAttempts emits a dispatch.attempt trace event per transport
	// attempt. Off by default: a call traces once at resolution and once
	// at dispatch start, keeping trace volume bounded under retries.
	TraceAttempts bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultTimeout: 5 * time.Second,
	}
}
