// Package output provides JSONL output for search results.
//
// Output is structured as typed record envelopes containing result
// rows, errors, and a final summary. Each line is a self-contained
// JSON object that can be parsed independently.
package output

import (
	"encoding/json"
	"errors"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: splunkmcp.<type>.v<version>
const (
	// TypeResult identifies search result rows.
	TypeResult = "splunkmcp.result.v1"

	// TypeError identifies error records.
	TypeError = "splunkmcp.error.v1"

	// TypeSummary identifies final summary records.
	TypeSummary = "splunkmcp.summary.v1"
)

// Record is the envelope for all JSONL output.
//
// Each line of JSONL output contains a Record with a type-specific
// payload in the Data field.
type Record struct {
	// Type identifies the record type (e.g., "splunkmcp.result.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// InvocationID is the correlation ID for this search invocation.
	InvocationID string `json:"invocation_id"`

	// SID is the remote search job identifier, once known.
	SID string `json:"sid,omitempty"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// ResultRecord is the data payload for one search result row. Field
// values are passed through as returned by the platform; no schema is
// assumed.
type ResultRecord struct {
	Row map[string]any `json:"row"`
}

// ErrorRecord is the data payload for failures.
type ErrorRecord struct {
	// Kind is the error classification (e.g., "timeout_error").
	Kind string `json:"kind"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Details carries kind-specific diagnostics.
	Details map[string]any `json:"details,omitempty"`
}

// SummaryRecord is the data payload for the final invocation summary.
type SummaryRecord struct {
	Query       string  `json:"query"`
	ResultCount int     `json:"result_count"`
	Truncated   bool    `json:"truncated"`
	DurationS   float64 `json:"duration_s"`
}

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = errors.New("writer is closed")

// WriteError wraps failures inside the writer itself.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return "output " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
