package outbound

import "errors"

var (
	// Construction errors.
	ErrNoTransport       = errors.New("outbound: no transport configured")
	ErrDuplicateEndpoint = errors.New("outbound: duplicate endpoint")
	ErrInvalidEndpoint   = errors.New("outbound: invalid endpoint config")

	// ErrTimeout signals a transport-level timeout. Transports may return
	// it (or wrap it) instead of context.DeadlineExceeded; the engine
	// treats both as the timeout category.
	ErrTimeout = errors.New("outbound: transport timeout")
)
