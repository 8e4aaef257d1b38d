package engine_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/xraph/outbound"
	"github.com/xraph/outbound/backoff"
	"github.com/xraph/outbound/engine"
	"github.com/xraph/outbound/trace"
)

// scriptedTransport replays queued responses and errors per URL, recording
// every request it sees. It implements both the blocking and the
// asynchronous transport forms so sync/async equivalence can be tested
// against identical behavior.
type scriptedTransport struct {
	mu    sync.Mutex
	kinds []string
	calls []outbound.Request
	queue map[string][]scriptedStep
}

type scriptedStep struct {
	raw *outbound.RawResponse
	err error
}

func newScriptedTransport() *scriptedTransport {
	return &scriptedTransport{queue: make(map[string][]scriptedStep)}
}

func (t *scriptedTransport) queueResponse(url string, status int, body string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue[url] = append(t.queue[url], scriptedStep{raw: &outbound.RawResponse{StatusCode: status, Body: []byte(body)}})
}

func (t *scriptedTransport) queueError(url string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue[url] = append(t.queue[url], scriptedStep{err: err})
}

func (t *scriptedTransport) next(kind string, ctx context.Context, req *outbound.Request) (*outbound.RawResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.kinds = append(t.kinds, kind)
	t.calls = append(t.calls, *req)

	steps := t.queue[req.URL]
	if len(steps) == 0 {
		return nil, fmt.Errorf("no scripted step for %s", req.URL)
	}
	t.queue[req.URL] = steps[1:]
	return steps[0].raw, steps[0].err
}

func (t *scriptedTransport) Do(ctx context.Context, req *outbound.Request) (*outbound.RawResponse, error) {
	return t.next("sync", ctx, req)
}

func (t *scriptedTransport) Submit(ctx context.Context, req *outbound.Request) <-chan outbound.Result {
	ch := make(chan outbound.Result, 1)
	raw, err := t.next("async", ctx, req)
	ch <- outbound.Result{Response: raw, Err: err}
	close(ch)
	return ch
}

func (t *scriptedTransport) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

func (t *scriptedTransport) lastCall() outbound.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[len(t.calls)-1]
}

var testEndpoints = []outbound.EndpointConfig{
	{Name: "ok", Method: "GET", URL: "/ok"},
	{Name: "retry", Method: "GET", URL: "/retry", MaxRetries: 2, RetryStatuses: []int{500}},
}

func makeEngine(t *testing.T, opts ...engine.Option) (*engine.Engine, *scriptedTransport, *trace.Recorder) {
	t.Helper()

	transport := newScriptedTransport()
	rec := trace.NewRecorder()

	base := []engine.Option{
		engine.WithTransport(transport),
		engine.WithEndpoints(testEndpoints...),
		engine.WithDefaultHeaders(map[string]string{"X-Default": "1"}),
		engine.WithTraceSink(rec),
		engine.WithBackoff(backoff.None()),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	eng, err := engine.New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return eng, transport, rec
}

func TestNew_RequiresTransport(t *testing.T) {
	_, err := engine.New()
	if !errors.Is(err, outbound.ErrNoTransport) {
		t.Fatalf("error = %v, want ErrNoTransport", err)
	}
}

func TestNew_RejectsDuplicateEndpoint(t *testing.T) {
	_, err := engine.New(
		engine.WithTransport(newScriptedTransport()),
		engine.WithEndpoints(
			outbound.EndpointConfig{Name: "ok", URL: "/a"},
			outbound.EndpointConfig{Name: "ok", URL: "/b"},
		),
	)
	if !errors.Is(err, outbound.ErrDuplicateEndpoint) {
		t.Fatalf("error = %v, want ErrDuplicateEndpoint", err)
	}
}

func TestNew_RejectsInvalidEndpoint(t *testing.T) {
	_, err := engine.New(
		engine.WithTransport(newScriptedTransport()),
		engine.WithEndpoint(outbound.EndpointConfig{Name: "nourl"}),
	)
	if !errors.Is(err, outbound.ErrInvalidEndpoint) {
		t.Fatalf("error = %v, want ErrInvalidEndpoint", err)
	}
}

func TestCall_UnknownEndpoint(t *testing.T) {
	eng, transport, rec := makeEngine(t)

	resp := eng.Call(context.Background(), "missing", outbound.CallContext{Payload: []byte(`{}`)})

	if resp.Category != outbound.CategoryUnknownEndpoint {
		t.Errorf("category = %q, want %q", resp.Category, outbound.CategoryUnknownEndpoint)
	}
	if transport.callCount() != 0 {
		t.Errorf("transport invoked %d times, want 0", transport.callCount())
	}

	want := []string{trace.EventResolveStart, trace.EventResolveError}
	got := rec.Names()
	if len(got) != len(want) {
		t.Fatalf("trace names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("trace[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCall_BadPayload(t *testing.T) {
	eng, transport, rec := makeEngine(t)

	resp := eng.Call(context.Background(), "ok", outbound.CallContext{Payload: []byte(`{not-json}`)})

	if resp.Category != outbound.CategoryParseError {
		t.Errorf("category = %q, want %q", resp.Category, outbound.CategoryParseError)
	}
	if transport.callCount() != 0 {
		t.Errorf("transport invoked %d times, want 0", transport.callCount())
	}

	names := rec.Names()
	if names[0] != trace.EventResolveStart {
		t.Errorf("first trace = %q, want %q", names[0], trace.EventResolveStart)
	}
	if names[len(names)-1] != trace.EventPayloadError {
		t.Errorf("last trace = %q, want %q", names[len(names)-1], trace.EventPayloadError)
	}
}

func TestCall_HeaderMergePrecedence(t *testing.T) {
	transport := newScriptedTransport()
	eng, err := engine.New(
		engine.WithTransport(transport),
		engine.WithDefaultHeaders(map[string]string{"A": "1", "B": "2"}),
		engine.WithEndpoint(outbound.EndpointConfig{
			Name:    "merge",
			URL:     "/merge",
			Headers: map[string]string{"B": "3", "C": "4"},
		}),
		engine.WithBackoff(backoff.None()),
	)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	transport.queueResponse("/merge", 200, `{"a":1}`)

	resp := eng.Call(context.Background(), "merge", outbound.CallContext{
		Payload: []byte(`{}`),
		Headers: map[string]string{"C": "5", "D": "6"},
	})
	if !resp.OK() {
		t.Fatalf("unexpected response: %+v", resp)
	}

	want := map[string]string{"A": "1", "B": "3", "C": "5", "D": "6"}
	got := transport.lastCall().Headers
	if len(got) != len(want) {
		t.Fatalf("merged headers = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("header %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestCall_RetriesTimeoutsUntilSuccess(t *testing.T) {
	eng, transport, _ := makeEngine(t)

	// max_retries = 2 → three attempts; the first two time out.
	transport.queueError("/retry", outbound.ErrTimeout)
	transport.queueError("/retry", outbound.ErrTimeout)
	transport.queueResponse("/retry", 200, `{"v":1}`)

	resp := eng.Call(context.Background(), "retry", outbound.CallContext{Payload: []byte(`{}`)})

	if resp.Category != outbound.CategorySuccess {
		t.Errorf("category = %q, want %q (err: %s)", resp.Category, outbound.CategorySuccess, resp.Err)
	}
	if transport.callCount() != 3 {
		t.Errorf("transport invoked %d times, want 3", transport.callCount())
	}
}

func TestCall_TimeoutExhaustion(t *testing.T) {
	eng, transport, _ := makeEngine(t)

	for range 3 {
		transport.queueError("/retry", outbound.ErrTimeout)
	}

	resp := eng.Call(context.Background(), "retry", outbound.CallContext{Payload: []byte(`{}`)})

	if resp.Category != outbound.CategoryTimeout {
		t.Errorf("category = %q, want %q", resp.Category, outbound.CategoryTimeout)
	}
	if resp.StatusCode != 0 {
		t.Errorf("status = %d, want 0", resp.StatusCode)
	}
	if transport.callCount() != 3 {
		t.Errorf("transport invoked %d times, want 3", transport.callCount())
	}
}

func TestCall_NetworkErrorExhaustion(t *testing.T) {
	eng, transport, _ := makeEngine(t)

	for range 3 {
		transport.queueError("/retry", errors.New("connection refused"))
	}

	resp := eng.Call(context.Background(), "retry", outbound.CallContext{Payload: []byte(`{}`)})

	if resp.Category != outbound.CategoryNetworkError {
		t.Errorf("category = %q, want %q", resp.Category, outbound.CategoryNetworkError)
	}
	if transport.callCount() != 3 {
		t.Errorf("transport invoked %d times, want 3", transport.callCount())
	}
}

func TestCall_ClientErrorNotRetried(t *testing.T) {
	eng, transport, _ := makeEngine(t)

	transport.queueResponse("/retry", 404, `{"error":"not found"}`)

	resp := eng.Call(context.Background(), "retry", outbound.CallContext{Payload: []byte(`{}`)})

	if resp.Category != outbound.CategoryClientError {
		t.Errorf("category = %q, want %q", resp.Category, outbound.CategoryClientError)
	}
	if resp.StatusCode != 404 {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if transport.callCount() != 1 {
		t.Errorf("transport invoked %d times, want 1 (4xx is terminal)", transport.callCount())
	}
}

func TestCall_RetryableStatusExhaustionKeepsLastResponse(t *testing.T) {
	eng, transport, _ := makeEngine(t)

	for range 3 {
		transport.queueResponse("/retry", 500, `{"reason":"down"}`)
	}

	resp := eng.Call(context.Background(), "retry", outbound.CallContext{Payload: []byte(`{}`)})

	if resp.Category != outbound.CategoryServerError {
		t.Errorf("category = %q, want %q", resp.Category, outbound.CategoryServerError)
	}
	if resp.StatusCode != 500 {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	data, ok := resp.Data.(map[string]any)
	if !ok || data["reason"] != "down" {
		t.Errorf("data = %v, want the last response body", resp.Data)
	}
	if transport.callCount() != 3 {
		t.Errorf("transport invoked %d times, want 3", transport.callCount())
	}
}

func TestCall_TimeoutThenRetryableStatuses(t *testing.T) {
	eng, transport, _ := makeEngine(t)

	// timeout, then 500, then 500 — the budget ends on an HTTP response,
	// so the result maps the final status, not the earlier timeout.
	transport.queueError("/retry", outbound.ErrTimeout)
	transport.queueResponse("/retry", 500, `{}`)
	transport.queueResponse("/retry", 500, `{}`)

	resp := eng.Call(context.Background(), "retry", outbound.CallContext{Payload: []byte(`{}`)})

	if resp.Category != outbound.CategoryServerError {
		t.Errorf("category = %q, want %q", resp.Category, outbound.CategoryServerError)
	}
	if resp.StatusCode != 500 {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestCall_BadResponseBodyPreservedAsString(t *testing.T) {
	eng, transport, _ := makeEngine(t)

	transport.queueResponse("/ok", 200, `{not-json`)

	resp := eng.Call(context.Background(), "ok", outbound.CallContext{Payload: []byte(`{}`)})

	if resp.Category != outbound.CategoryParseError {
		t.Errorf("category = %q, want %q", resp.Category, outbound.CategoryParseError)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Data != `{not-json` {
		t.Errorf("data = %v, want raw body string", resp.Data)
	}
}

func TestCall_UnmappedStatusIsServerError(t *testing.T) {
	eng, transport, _ := makeEngine(t)

	transport.queueResponse("/ok", 600, `{}`)

	resp := eng.Call(context.Background(), "ok", outbound.CallContext{Payload: []byte(`{}`)})

	if resp.Category != outbound.CategoryServerError {
		t.Errorf("category = %q, want %q", resp.Category, outbound.CategoryServerError)
	}
	if resp.StatusCode != 600 {
		t.Errorf("status = %d, want 600", resp.StatusCode)
	}
}

func TestCall_EmptyBodySucceedsWithNilData(t *testing.T) {
	eng, transport, _ := makeEngine(t)

	transport.queueResponse("/ok", 204, "")

	resp := eng.Call(context.Background(), "ok", outbound.CallContext{})

	if !resp.OK() {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Data != nil {
		t.Errorf("data = %v, want nil", resp.Data)
	}
}

func TestCall_PerCallTimeoutOverride(t *testing.T) {
	eng, transport, _ := makeEngine(t)

	transport.queueResponse("/ok", 200, `{}`)
	eng.Call(context.Background(), "ok", outbound.CallContext{Timeout: 1500 * time.Millisecond})

	if got := transport.lastCall().Timeout; got != 1500*time.Millisecond {
		t.Errorf("request timeout = %v, want 1.5s", got)
	}
}
