// Package http implements the outbound Transport contract on top of
// net/http, in both the blocking and the asynchronous form. It performs
// the exchange only — retry, timeout categorization, and status mapping
// stay in the engine.
//
// Usage:
//
//	t := httptransport.New(httptransport.WithUserAgent("billing-svc/1.2"))
//	eng, err := engine.New(engine.WithTransport(t), ...)
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xraph/outbound"
)

// Compile-time interface checks.
var (
	_ outbound.Transport      = (*Transport)(nil)
	_ outbound.AsyncTransport = (*Transport)(nil)
)

// defaultClientTimeout is a safety net for requests whose engine-level
// timeout is unset; the per-attempt context normally fires first.
const defaultClientTimeout = 30 * time.Second

// Option configures the Transport.
type Option func(*Transport)

// WithClient sets a custom *http.Client (connection pool, TLS, proxies).
func WithClient(c *http.Client) Option {
	return func(t *Transport) { t.client = c }
}

// WithUserAgent sets the User-Agent header applied when the merged
// headers don't carry one.
func WithUserAgent(ua string) Option {
	return func(t *Transport) { t.userAgent = ua }
}

// Transport performs outbound requests with net/http. JSON-encodes the
// request body and hands back the raw status code and body.
type Transport struct {
	client    *http.Client
	userAgent string
}

// New creates an HTTP transport. The zero configuration uses a dedicated
// client with a conservative overall timeout.
func New(opts ...Option) *Transport {
	t := &Transport{
		client: &http.Client{Timeout: defaultClientTimeout},
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Do performs one request/response exchange. The request timeout is
// enforced through the context, so timed-out attempts surface as
// context.DeadlineExceeded for the engine to classify.
func (t *Transport) Do(ctx context.Context, req *outbound.Request) (*outbound.RawResponse, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("outbound/http: encode body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	hreq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("outbound/http: build request: %w", err)
	}
	for k, v := range req.Headers {
		hreq.Header.Set(k, v)
	}
	if body != nil && hreq.Header.Get("Content-Type") == "" {
		hreq.Header.Set("Content-Type", "application/json")
	}
	if t.userAgent != "" && hreq.Header.Get("User-Agent") == "" {
		hreq.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.client.Do(hreq)
	if err != nil {
		return nil, fmt.Errorf("outbound/http: %s %s: %w", req.Method, req.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("outbound/http: read body: %w", err)
	}

	return &outbound.RawResponse{StatusCode: resp.StatusCode, Body: raw}, nil
}

// Submit begins the exchange without blocking the caller. The returned
// channel is buffered and receives exactly one Result.
func (t *Transport) Submit(ctx context.Context, req *outbound.Request) <-chan outbound.Result {
	ch := make(chan outbound.Result, 1)
	go func() {
		raw, err := t.Do(ctx, req)
		ch <- outbound.Result{Response: raw, Err: err}
		close(ch)
	}()
	return ch
}
