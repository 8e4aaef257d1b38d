// Package outbound provides a lightweight orchestration layer for outbound
// API calls. It dispatches requests to named, pre-registered endpoints with
// uniform header merging, retry-on-failure, timeout handling, and
// HTTP-status-to-category mapping across blocking and asynchronous call
// paths.
//
// Outbound is designed as a library, not a service. Import it, configure a
// transport, register endpoints, and call them by name.
//
// # Quick Start
//
//	eng, err := engine.New(
//	    engine.WithTransport(httptransport.New()),
//	    engine.WithEndpoints(endpoints...),
//	)
//	resp := eng.Call(ctx, "billing", outbound.CallContext{Payload: body})
//
// # Architecture
//
// This root package holds the shared data model: endpoint configuration,
// requests, responses, categories, and the Transport contract. Subsystem
// packages (trace, middleware, backoff, transport/http) build on it, and
// the engine package wires everything together on top.
//
// Business-level failures — unknown endpoint, malformed payload, timeouts,
// upstream HTTP errors — are never surfaced as Go errors from the call
// surface. They come back as a Response with the matching Category.
package outbound
