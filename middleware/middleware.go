// Package middleware provides composable middleware for call dispatch.
// Middleware wraps the engine's dispatch phase synchronously — after
// endpoint resolution and payload parsing, around the whole retry loop —
// and can observe or replace the Response (log, trace, meter, throttle).
package middleware

import (
	"context"

	"github.com/xraph/outbound"
)

// Handler is the terminal function that performs the dispatch and returns
// the call's Response.
type Handler func(ctx context.Context) *outbound.Response

// Middleware wraps a Handler with cross-cutting logic. It receives the
// fully built request and the next handler. Middleware MUST call next to
// continue the chain (unless short-circuiting with its own Response).
type Middleware func(ctx context.Context, req *outbound.Request, next Handler) *outbound.Response

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the list
// is the outermost wrapper.
//
// Example: Chain(logging, tracing, ratelimit) executes as:
//
//	logging → tracing → ratelimit → dispatch
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, req *outbound.Request, next Handler) *outbound.Response {
		// Build the chain from the end backwards.
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) *outbound.Response {
				return mw(ctx, req, prev)
			}
		}
		return h(ctx)
	}
}
