package outbound

// Response is the uniform result of a dispatched call. Every call returns
// one, regardless of outcome or execution model; expected failure modes are
// expressed through Category rather than a Go error.
type Response struct {
	// Category classifies the outcome.
	Category Category `json:"category"`

	// StatusCode is the raw HTTP status of the last upstream response.
	// Zero when no response was received (unknown endpoint, bad payload,
	// timeout, network failure).
	StatusCode int `json:"status_code,omitempty"`

	// Data is the JSON-decoded upstream body. For parse failures of the
	// response body it holds the raw body as a string instead.
	Data any `json:"data,omitempty"`

	// Err is a human-readable error message for non-success outcomes.
	Err string `json:"error,omitempty"`
}

// OK reports whether the call succeeded.
func (r *Response) OK() bool { return r.Category == CategorySuccess }
