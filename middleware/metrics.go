package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/outbound"
)

// meterName is the instrumentation scope name for outbound metrics.
const meterName = "github.com/xraph/outbound"

// Metrics returns middleware that records per-call metrics using the
// global OTel MeterProvider. If no MeterProvider is configured, noop
// instruments are used and this middleware becomes a pass-through.
//
// Instruments:
//   - outbound.call.duration (Float64Histogram): dispatch time in seconds,
//     with attributes: endpoint, category
//   - outbound.call.total (Int64Counter): total dispatched calls,
//     with attributes: endpoint, category
func Metrics() Middleware {
	meter := otel.Meter(meterName)
	return MetricsWithMeter(meter)
}

// MetricsWithMeter returns metrics middleware using the provided meter.
// This variant allows injecting a specific MeterProvider for testing.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// Create instruments once at middleware construction time.
	// OTel instruments are safe for concurrent use. On error, the API
	// returns noop instruments so the middleware degrades gracefully.
	duration, dErr := meter.Float64Histogram(
		"outbound.call.duration",
		metric.WithDescription("Duration of call dispatch in seconds"),
		metric.WithUnit("s"),
	)
	_ = dErr // noop fallback guaranteed by OTel API contract

	total, tErr := meter.Int64Counter(
		"outbound.call.total",
		metric.WithDescription("Total number of dispatched calls"),
		metric.WithUnit("{call}"),
	)
	_ = tErr // noop fallback guaranteed by OTel API contract

	return func(ctx context.Context, req *outbound.Request, next Handler) *outbound.Response {
		start := time.Now()
		resp := next(ctx)
		elapsed := time.Since(start).Seconds()

		attrs := metric.WithAttributes(
			attribute.String("endpoint", req.Endpoint),
			attribute.String("category", resp.Category.String()),
		)

		duration.Record(ctx, elapsed, attrs)
		total.Add(ctx, 1, attrs)

		return resp
	}
}
