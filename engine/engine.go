package engine

import (
	"fmt"
	"log/slog"

	"github.com/xraph/outbound"
	"github.com/xraph/outbound/backoff"
	mw "github.com/xraph/outbound/middleware"
	"github.com/xraph/outbound/trace"
)

// Engine dispatches outbound calls to named endpoints. Create one with
// New() and functional options. The endpoint registry is frozen at
// construction, so an Engine is safe for concurrent use without locking;
// all per-call state lives on the stack of the call that owns it.
type Engine struct {
	config    outbound.Config
	logger    *slog.Logger
	transport outbound.Transport
	endpoints map[string]outbound.EndpointConfig
	defaults  map[string]string
	sink      trace.Sink
	strategy  backoff.Strategy
	mws       []mw.Middleware
	chain     mw.Middleware
}

// Option configures an Engine.
type Option func(*Engine) error

// New creates an Engine with the given options. A transport is required;
// everything else has a working default (discarded traces, full-jitter
// exponential backoff, slog.Default logging).
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		config:    outbound.DefaultConfig(),
		logger:    slog.Default(),
		endpoints: make(map[string]outbound.EndpointConfig),
		sink:      trace.Discard,
		strategy:  backoff.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.transport == nil {
		return nil, outbound.ErrNoTransport
	}
	e.chain = mw.Chain(e.mws...)
	return e, nil
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() outbound.Config { return e.config }

// Endpoint returns the registered config for a name.
func (e *Engine) Endpoint(name string) (outbound.EndpointConfig, bool) {
	cfg, ok := e.endpoints[name]
	return cfg, ok
}

// WithTransport sets the transport performing the actual exchanges.
func WithTransport(t outbound.Transport) Option {
	return func(e *Engine) error {
		e.transport = t
		return nil
	}
}

// WithEndpoints registers endpoint configs. Each is validated; names must
// be unique across all WithEndpoint/WithEndpoints options.
func WithEndpoints(configs ...outbound.EndpointConfig) Option {
	return func(e *Engine) error {
		for _, cfg := range configs {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if _, exists := e.endpoints[cfg.Name]; exists {
				return fmt.Errorf("%w: %q", outbound.ErrDuplicateEndpoint, cfg.Name)
			}
			e.endpoints[cfg.Name] = cfg
		}
		return nil
	}
}

// WithEndpoint registers a single endpoint config.
func WithEndpoint(cfg outbound.EndpointConfig) Option {
	return WithEndpoints(cfg)
}

// WithDefaultHeaders sets engine-level default headers, the lowest layer
// of the merge. The map is copied.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(e *Engine) error {
		cp := make(map[string]string, len(headers))
		for k, v := range headers {
			cp[k] = v
		}
		e.defaults = cp
		return nil
	}
}

// WithLogger sets the structured logger for the engine.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) error {
		e.logger = l
		return nil
	}
}

// WithTraceSink sets the sink receiving call-lifecycle trace events.
func WithTraceSink(s trace.Sink) Option {
	return func(e *Engine) error {
		e.sink = s
		return nil
	}
}

// WithBackoff sets the retry delay strategy. If not set,
// backoff.Default() (full-jitter exponential) is used.
func WithBackoff(s backoff.Strategy) Option {
	return func(e *Engine) error {
		e.strategy = s
		return nil
	}
}

// WithMiddleware appends middleware to the engine's chain. The chain
// wraps the dispatch phase of every call, in registration order.
func WithMiddleware(mws ...mw.Middleware) Option {
	return func(e *Engine) error {
		e.mws = append(e.mws, mws...)
		return nil
	}
}

// WithConfig replaces the engine-level configuration.
func WithConfig(cfg outbound.Config) Option {
	return func(e *Engine) error {
		e.config = cfg
		return nil
	}
}
