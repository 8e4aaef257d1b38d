package outbound

import (
	"context"
	"time"
)

// CallContext carries the per-call inputs to the engine. It is created
// per call and discarded afterwards; the engine never retains it.
type CallContext struct {
	// Payload is the raw request body, expected to be JSON. Nil means no
	// body; a non-nil payload that fails to parse aborts the call with
	// CategoryParseError before the transport is touched.
	Payload []byte

	// Headers override engine defaults and endpoint headers per key.
	Headers map[string]string

	// Timeout overrides the endpoint timeout for this call. Zero keeps
	// the endpoint's value.
	Timeout time.Duration
}

// Request is the fully built outbound request handed to a Transport. It is
// immutable across retry attempts of the same call.
type Request struct {
	// Endpoint is the resolved endpoint name.
	Endpoint string

	// Method and URL come from the endpoint config.
	Method string
	URL    string

	// Headers is the merged header set: engine defaults, then endpoint
	// headers, then per-call overrides, last write wins.
	Headers map[string]string

	// Body is the JSON-decoded payload. Nil when the call has no body.
	Body any

	// Timeout bounds a single transport attempt.
	Timeout time.Duration
}

// RawResponse is what a Transport returns: the upstream status code and
// the unparsed body. Normalization and category mapping happen in the
// engine, not in the transport.
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// Result pairs a RawResponse with a transport failure, for asynchronous
// delivery. Exactly one of the two fields is set.
type Result struct {
	Response *RawResponse
	Err      error
}

// Transport performs the actual request/response exchange. Implementations
// must honor ctx cancellation and should return ErrTimeout,
// context.DeadlineExceeded, or a net.Error timeout for timed-out attempts;
// any other error is treated as a network failure.
type Transport interface {
	Do(ctx context.Context, req *Request) (*RawResponse, error)
}

// AsyncTransport is a Transport that can also begin a call without
// blocking the caller. Submit returns a channel that receives exactly one
// Result when the exchange completes.
type AsyncTransport interface {
	Transport

	Submit(ctx context.Context, req *Request) <-chan Result
}
