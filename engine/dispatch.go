package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/xraph/outbound"
	"github.com/xraph/outbound/trace"
)

// invoker performs one transport exchange. The blocking and asynchronous
// call paths run the same dispatch algorithm and differ only in the
// invoker they hand it.
type invoker func(ctx context.Context, req *outbound.Request) (*outbound.RawResponse, error)

// Call dispatches a blocking call to a named endpoint. It always returns
// a Response: unknown endpoints, malformed payloads, timeouts, and
// upstream HTTP errors come back as categories, never as panics or
// escaped errors.
func (e *Engine) Call(ctx context.Context, name string, call outbound.CallContext) *outbound.Response {
	return e.dispatch(ctx, name, call, e.transport.Do)
}

// CallAsync dispatches the same logical call without blocking the caller.
// The returned channel is buffered and receives exactly one Response,
// field-for-field identical to what Call would have produced for the same
// transport behavior. When the transport implements AsyncTransport, its
// Submit operation is used as the suspension point; otherwise the
// blocking operation runs on a background goroutine.
func (e *Engine) CallAsync(ctx context.Context, name string, call outbound.CallContext) <-chan *outbound.Response {
	invoke := invoker(e.transport.Do)
	if at, ok := e.transport.(outbound.AsyncTransport); ok {
		invoke = func(ctx context.Context, req *outbound.Request) (*outbound.RawResponse, error) {
			select {
			case res := <-at.Submit(ctx, req):
				return res.Response, res.Err
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	out := make(chan *outbound.Response, 1)
	go func() {
		out <- e.dispatch(ctx, name, call, invoke)
		close(out)
	}()
	return out
}

// dispatch is the shared core: resolve → parse → merge headers →
// middleware-wrapped attempt loop → terminal trace.
func (e *Engine) dispatch(ctx context.Context, name string, call outbound.CallContext, invoke invoker) *outbound.Response {
	e.emit(trace.EventResolveStart, map[string]any{"endpoint": name})

	ep, ok := e.endpoints[name]
	if !ok {
		e.emit(trace.EventResolveError, map[string]any{
			"endpoint": name,
			"error":    "unknown_endpoint",
		})
		return &outbound.Response{
			Category: outbound.CategoryUnknownEndpoint,
			Err:      fmt.Sprintf("unknown endpoint %q", name),
		}
	}
	e.emit(trace.EventResolveDone, map[string]any{"endpoint": name})

	// Payload parsing happens strictly before header building and any
	// transport work. A bad payload is a permanent caller error.
	var body any
	if call.Payload != nil {
		if err := json.Unmarshal(call.Payload, &body); err != nil {
			e.emit(trace.EventPayloadError, map[string]any{
				"endpoint": name,
				"error":    "bad_payload",
				"message":  err.Error(),
			})
			return &outbound.Response{
				Category: outbound.CategoryParseError,
				Err:      "bad payload: " + err.Error(),
			}
		}
	}

	req := &outbound.Request{
		Endpoint: name,
		Method:   ep.EffectiveMethod(),
		URL:      ep.URL,
		Headers:  outbound.MergeHeaders(e.defaults, ep.Headers, call.Headers),
		Body:     body,
		Timeout:  e.timeoutFor(ep, call),
	}

	// One dispatch trace per call, whatever the retry count turns out
	// to be.
	e.emit(trace.EventDispatchStart, map[string]any{
		"endpoint":    name,
		"method":      req.Method,
		"url":         req.URL,
		"headers":     req.Headers,
		"max_retries": ep.MaxRetries,
	})

	resp := e.chain(ctx, req, func(hctx context.Context) *outbound.Response {
		return e.attemptLoop(hctx, ep, req, invoke)
	})

	if resp.OK() {
		e.emit(trace.EventResponseOK, map[string]any{
			"endpoint": name,
			"status":   resp.StatusCode,
		})
	} else {
		e.emit(trace.EventResponseError, map[string]any{
			"endpoint": name,
			"status":   resp.StatusCode,
			"category": resp.Category.String(),
			"message":  resp.Err,
		})
	}
	return resp
}

// attemptLoop runs the transport up to MaxRetries+1 times. Retries fire
// only for transport timeouts, transport network failures, and retryable
// upstream statuses; 4xx responses are terminal. Backoff sleeps inside
// the loop honor the caller's context.
func (e *Engine) attemptLoop(ctx context.Context, ep outbound.EndpointConfig, req *outbound.Request, invoke invoker) *outbound.Response {
	attempts := ep.MaxRetries + 1

	for attempt := 1; ; attempt++ {
		if e.config.TraceAttempts {
			e.emit(trace.EventDispatchAttempt, map[string]any{
				"endpoint": ep.Name,
				"attempt":  attempt,
			})
		}

		actx := ctx
		cancel := context.CancelFunc(func() {})
		if req.Timeout > 0 {
			actx, cancel = context.WithTimeout(ctx, req.Timeout)
		}
		raw, err := invoke(actx, req)
		cancel()

		if err != nil {
			category := classifyTransportError(err)
			if attempt < attempts && ctx.Err() == nil {
				e.logger.Debug("retrying after transport failure",
					slog.String("endpoint", ep.Name),
					slog.String("category", category.String()),
					slog.Int("attempt", attempt),
					slog.Int("max_retries", ep.MaxRetries),
					slog.String("error", err.Error()),
				)
				if werr := e.wait(ctx, attempt); werr != nil {
					return &outbound.Response{
						Category: outbound.CategoryTimeout,
						Err:      "cancelled during retry wait: " + werr.Error(),
					}
				}
				continue
			}
			return &outbound.Response{Category: category, Err: err.Error()}
		}

		if ep.Retryable(raw.StatusCode) && attempt < attempts && ctx.Err() == nil {
			e.logger.Debug("retrying after retryable status",
				slog.String("endpoint", ep.Name),
				slog.Int("status", raw.StatusCode),
				slog.Int("attempt", attempt),
				slog.Int("max_retries", ep.MaxRetries),
			)
			if werr := e.wait(ctx, attempt); werr != nil {
				return &outbound.Response{
					Category: outbound.CategoryTimeout,
					Err:      "cancelled during retry wait: " + werr.Error(),
				}
			}
			continue
		}

		// Terminal: a non-retryable status, or a retryable one with the
		// attempt budget exhausted — the last response is normalized
		// either way.
		return normalize(raw)
	}
}

// timeoutFor picks the per-attempt timeout: call override, then endpoint,
// then engine default.
func (e *Engine) timeoutFor(ep outbound.EndpointConfig, call outbound.CallContext) time.Duration {
	if call.Timeout > 0 {
		return call.Timeout
	}
	if ep.Timeout > 0 {
		return ep.Timeout
	}
	return e.config.DefaultTimeout
}

// wait sleeps for the strategy's delay before the next attempt, waking
// early if the caller's context ends.
func (e *Engine) wait(ctx context.Context, attempt int) error {
	d := e.strategy(attempt)
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// normalize turns the final raw transport response into a Response:
// JSON-decode the body, then map the status through the decision table.
func normalize(raw *outbound.RawResponse) *outbound.Response {
	var data any
	if len(raw.Body) > 0 {
		if err := json.Unmarshal(raw.Body, &data); err != nil {
			return &outbound.Response{
				Category:   outbound.CategoryParseError,
				StatusCode: raw.StatusCode,
				Data:       string(raw.Body),
				Err:        "bad response body: " + err.Error(),
			}
		}
	}

	category := outbound.CategoryForStatus(raw.StatusCode)
	if category == outbound.CategorySuccess {
		return &outbound.Response{
			Category:   category,
			StatusCode: raw.StatusCode,
			Data:       data,
		}
	}
	return &outbound.Response{
		Category:   category,
		StatusCode: raw.StatusCode,
		Data:       data,
		Err:        fmt.Sprintf("upstream error: status %d", raw.StatusCode),
	}
}

// classifyTransportError decides between the timeout and network
// categories. Cancellation from the caller or the per-attempt deadline
// is a timeout by contract — it must never escape as an error.
func classifyTransportError(err error) outbound.Category {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, outbound.ErrTimeout) {
		return outbound.CategoryTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return outbound.CategoryTimeout
	}
	return outbound.CategoryNetworkError
}

// emit snapshots the payload and hands the event to the sink.
func (e *Engine) emit(name string, payload map[string]any) {
	e.sink.Emit(trace.NewEvent(name, payload))
}
