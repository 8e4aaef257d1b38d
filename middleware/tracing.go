package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/outbound"
)

// tracerName is the instrumentation scope name for outbound tracing.
const tracerName = "github.com/xraph/outbound"

// Tracing returns middleware that wraps call dispatch in an OpenTelemetry
// span. If no TracerProvider is configured globally, the default noop
// tracer is used and this middleware becomes a pass-through.
//
// Span attributes include: outbound.endpoint, outbound.method,
// outbound.url, outbound.category, outbound.status_code. Non-success
// categories set the span status to codes.Error with the response's
// error message.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided tracer.
// This variant allows injecting a specific TracerProvider for testing or
// when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, req *outbound.Request, next Handler) *outbound.Response {
		ctx, span := tracer.Start(ctx, "outbound.call.dispatch",
			trace.WithAttributes(
				attribute.String("outbound.endpoint", req.Endpoint),
				attribute.String("outbound.method", req.Method),
				attribute.String("outbound.url", req.URL),
			),
			trace.WithSpanKind(trace.SpanKindClient),
		)
		defer span.End()

		resp := next(ctx)

		span.SetAttributes(
			attribute.String("outbound.category", resp.Category.String()),
			attribute.Int("outbound.status_code", resp.StatusCode),
		)
		if resp.OK() {
			span.SetStatus(codes.Ok, "")
		} else {
			span.SetStatus(codes.Error, resp.Err)
		}

		return resp
	}
}
