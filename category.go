package outbound

// Category classifies the outcome of a dispatched call.
type Category string

const (
	// CategorySuccess means the upstream answered with a 2xx status.
	CategorySuccess Category = "success"
	// CategoryUnknownEndpoint means no endpoint is registered under the
	// requested name. Never retried.
	CategoryUnknownEndpoint Category = "unknown_endpoint"
	// CategoryParseError means the outbound payload or the upstream
	// response body was not valid JSON. Never retried.
	CategoryParseError Category = "parse_error"
	// CategoryClientError means the upstream answered with a 4xx status.
	// Terminal; never retried.
	CategoryClientError Category = "client_error"
	// CategoryServerError means the upstream answered with a 5xx (or
	// unmapped) status.
	CategoryServerError Category = "server_error"
	// CategoryTimeout means the transport timed out, or the caller's
	// context expired, on every permitted attempt.
	CategoryTimeout Category = "timeout"
	// CategoryNetworkError means the transport failed at the
	// connection level on every permitted attempt.
	CategoryNetworkError Category = "network_error"
)

// String returns the wire form of the category.
func (c Category) String() string { return string(c) }
