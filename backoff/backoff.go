// Package backoff provides pluggable retry delay strategies for call
// dispatch. Strategies are plain functions and safe for concurrent use.
package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// Strategy computes the delay before retry attempt n (1-indexed).
// Attempt 1 is the first retry after the initial failure.
type Strategy func(attempt int) time.Duration

// None retries immediately, with no delay between attempts.
func None() Strategy {
	return func(int) time.Duration { return 0 }
}

// Constant waits the same interval before every retry.
func Constant(interval time.Duration) Strategy {
	return func(int) time.Duration { return interval }
}

// Exponential doubles the delay each attempt:
// min(initial * 2^(attempt-1), max). A max of zero means uncapped.
func Exponential(initial, maxDelay time.Duration) Strategy {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		d := time.Duration(float64(initial) * math.Pow(2, float64(attempt-1)))
		if maxDelay > 0 && d > maxDelay {
			return maxDelay
		}
		return d
	}
}

// FullJitter wraps a strategy, returning a random delay in [0, s(attempt)].
// This prevents thundering herd when many retries fire simultaneously.
func FullJitter(s Strategy) Strategy {
	return func(attempt int) time.Duration {
		base := s(attempt)
		if base <= 0 {
			return 0
		}
		return time.Duration(rand.Float64() * float64(base)) //nolint:gosec // jitter intentionally uses non-crypto rand
	}
}

// Default returns the engine's default strategy: full-jitter exponential
// with 100ms initial delay capped at 5s. Retry timing is a configuration
// knob — callers needing different behavior (or none, in tests) swap the
// Strategy rather than the engine.
func Default() Strategy {
	return FullJitter(Exponential(100*time.Millisecond, 5*time.Second))
}
