// Package trace defines the call-lifecycle trace events emitted by the
// dispatch engine and the Sink interface that receives them.
//
// Event names and their emission order are part of the engine's observable
// contract: a call always traces resolution first (EventResolveStart, then
// EventResolveError or EventResolveDone), and dispatch start strictly
// after a successful resolution. Payloads are snapshotted at emission, so
// mutating a map after a call can never rewrite what was recorded.
package trace

import "time"

// Event names emitted by the engine, in lifecycle order.
const (
	// EventResolveStart opens every call, before endpoint lookup.
	EventResolveStart = "resolve.start"
	// EventResolveError records a failed endpoint lookup. Emitted before
	// any payload parsing; the transport is never invoked afterwards.
	EventResolveError = "resolve.error"
	// EventResolveDone records a successful endpoint lookup.
	EventResolveDone = "resolve.done"
	// EventPayloadError records an unparseable outbound payload.
	EventPayloadError = "payload.error"
	// EventDispatchStart is emitted once per call when the transport
	// phase begins — not once per retry attempt.
	EventDispatchStart = "dispatch.start"
	// EventDispatchAttempt is emitted per transport attempt, only when
	// Config.TraceAttempts is enabled.
	EventDispatchAttempt = "dispatch.attempt"
	// EventResponseOK closes a successful call.
	EventResponseOK = "response.ok"
	// EventResponseError closes a failed call.
	EventResponseError = "response.error"
)

// Event is a single trace record. Payload is a snapshot taken at emission
// time and is never shared with the caller's data.
type Event struct {
	Name    string         `json:"name"`
	Payload map[string]any `json:"payload,omitempty"`
	Time    time.Time      `json:"time"`
}

// Sink receives trace events. Implementations must not block the call
// path for long; the engine emits synchronously.
type Sink interface {
	Emit(evt Event)
}

// NewEvent builds an Event with a deep-copied payload and a UTC timestamp.
// All engine emissions go through here, so every Sink sees detached data.
func NewEvent(name string, payload map[string]any) Event {
	return Event{
		Name:    name,
		Payload: Snapshot(payload),
		Time:    time.Now().UTC(),
	}
}

// Snapshot deep-copies a payload map. Nested maps and slices are copied
// recursively; scalar values are copied by assignment.
func Snapshot(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	cp := make(map[string]any, len(payload))
	for k, v := range payload {
		cp[k] = copyValue(v)
	}
	return cp
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Snapshot(t)
	case map[string]string:
		cp := make(map[string]string, len(t))
		for k, s := range t {
			cp[k] = s
		}
		return cp
	case []any:
		cp := make([]any, len(t))
		for i, e := range t {
			cp[i] = copyValue(e)
		}
		return cp
	case []byte:
		cp := make([]byte, len(t))
		copy(cp, t)
		return cp
	case []int:
		cp := make([]int, len(t))
		copy(cp, t)
		return cp
	case []string:
		cp := make([]string, len(t))
		copy(cp, t)
		return cp
	default:
		return v
	}
}
