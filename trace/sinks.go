package trace

import (
	"log/slog"
	"sync"
)

// Ensure sink implementations satisfy Sink at compile time.
var (
	_ Sink = (*Recorder)(nil)
	_ Sink = (*SlogSink)(nil)
	_ Sink = (Multi)(nil)
	_ Sink = discard{}
)

// ──────────────────────────────────────────────────
// Recorder
// ──────────────────────────────────────────────────

// Recorder is an in-memory Sink that keeps every emitted event in order.
// Safe for concurrent use. Intended for unit testing and development.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit appends the event.
func (r *Recorder) Emit(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

// Events returns a copy of the recorded events in emission order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Names returns the recorded event names in emission order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, evt := range r.events {
		names[i] = evt.Name
	}
	return names
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// ──────────────────────────────────────────────────
// SlogSink
// ──────────────────────────────────────────────────

// SlogSink writes every event to a structured logger at Debug level.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink writing to the given logger.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

// Emit logs the event name and payload.
func (s *SlogSink) Emit(evt Event) {
	s.logger.Debug("trace event",
		slog.String("event", evt.Name),
		slog.Time("at", evt.Time),
		slog.Any("payload", evt.Payload),
	)
}

// ──────────────────────────────────────────────────
// Multi / Discard
// ──────────────────────────────────────────────────

// Multi fans an event out to several sinks in order.
type Multi []Sink

// Emit forwards the event to every sink.
func (m Multi) Emit(evt Event) {
	for _, s := range m {
		s.Emit(evt)
	}
}

// Discard is a Sink that drops every event. It is the engine default when
// no sink is configured.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(Event) {}
