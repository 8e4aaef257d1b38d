// Package redis implements a trace.Sink backed by a Redis Stream, for
// shipping call-lifecycle events off-process. Events are appended with
// XADD to a capped stream; consumers read them with XREAD/XRANGE.
//
// Usage:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	sink := redistrace.New(client, redistrace.WithStream("outbound:trace"))
//	eng, _ := engine.New(engine.WithTraceSink(sink), ...)
package redis

import (
	"context"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/outbound/trace"
)

// Compile-time interface check.
var _ trace.Sink = (*Sink)(nil)

const (
	// defaultStream is the stream key used when none is configured.
	defaultStream = "outbound:trace"

	// defaultMaxLen caps the stream (approximate trimming) so an engine
	// left running does not grow Redis without bound.
	defaultMaxLen = 10_000

	// defaultEmitTimeout bounds a single XADD. Emit has no caller
	// context — the engine call path must not be held hostage by a slow
	// trace backend.
	defaultEmitTimeout = 2 * time.Second
)

// Option configures the Sink.
type Option func(*Sink)

// WithStream sets the stream key events are appended to.
func WithStream(key string) Option {
	return func(s *Sink) { s.stream = key }
}

// WithMaxLen caps the stream length (approximate). Zero disables trimming.
func WithMaxLen(n int64) Option {
	return func(s *Sink) { s.maxLen = n }
}

// WithCodec sets the payload encoding. Defaults to JSON.
func WithCodec(c Codec) Option {
	return func(s *Sink) { s.codec = c }
}

// WithEmitTimeout bounds a single append to Redis.
func WithEmitTimeout(d time.Duration) Option {
	return func(s *Sink) { s.timeout = d }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sink) { s.logger = l }
}

// Sink appends trace events to a Redis Stream. Emit failures are logged
// and swallowed: tracing must never fail a call.
type Sink struct {
	client  goredis.Cmdable
	stream  string
	maxLen  int64
	timeout time.Duration
	codec   Codec
	logger  *slog.Logger
}

// New creates a Redis-backed sink. The caller owns the Redis client
// lifecycle.
func New(client goredis.Cmdable, opts ...Option) *Sink {
	s := &Sink{
		client:  client,
		stream:  defaultStream,
		maxLen:  defaultMaxLen,
		timeout: defaultEmitTimeout,
		codec:   JSON{},
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Emit appends the event to the stream.
func (s *Sink) Emit(evt trace.Event) {
	payload, err := s.codec.Marshal(evt.Payload)
	if err != nil {
		s.logger.Error("outbound/redis: encode trace payload",
			slog.String("event", evt.Name),
			slog.String("error", err.Error()),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	args := &goredis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"name":    evt.Name,
			"time":    evt.Time.Format(time.RFC3339Nano),
			"codec":   s.codec.Name(),
			"payload": payload,
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		s.logger.Error("outbound/redis: append trace event",
			slog.String("event", evt.Name),
			slog.String("stream", s.stream),
			slog.String("error", err.Error()),
		)
	}
}
