// Package engine wires the outbound subsystems together: endpoint
// registry, transport, trace sink, retry backoff, and middleware chain.
// It exposes the public call surface — Call, CallAsync, and CallBatch.
//
// This package sits above all subsystem packages so that middleware,
// trace, and transport implementations can share the root outbound types
// without import cycles.
package engine
