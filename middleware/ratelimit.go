package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/xraph/outbound"
)

// RateLimit returns middleware that throttles dispatch through a token
// bucket. The wait happens before the first transport attempt; if the
// caller's context expires while waiting, the call resolves to a
// timeout-category Response rather than an error.
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(ctx context.Context, req *outbound.Request, next Handler) *outbound.Response {
		if err := limiter.Wait(ctx); err != nil {
			return &outbound.Response{
				Category: outbound.CategoryTimeout,
				Err:      "rate limit wait: " + err.Error(),
			}
		}
		return next(ctx)
	}
}
