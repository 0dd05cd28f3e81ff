// Package otel records structured observability events for ESES.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// them asynchronously through a buffered channel drained by one goroutine.
// An optional RingBuffer keeps recent events for the TUI debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Dataset events
	KindDatasetLoad  EventKind = "dataset.load"
	KindDatasetError EventKind = "dataset.error"

	// Inference events
	KindInferStart    EventKind = "infer.start"
	KindRuleFire      EventKind = "infer.rule"
	KindInferComplete EventKind = "infer.complete"

	// Store events
	KindStoreImport EventKind = "store.import"
	KindStoreError  EventKind = "store.error"

	// UI events
	KindKeyPress EventKind = "ui.key"
	KindSubmit   EventKind = "ui.submit"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // "expert", "ui", "cli", "store"
	SessionID string         `json:"session_id,omitempty"` // same for the whole process
	RunID     string         `json:"run,omitempty"`        // one inference run
	Rule      string         `json:"rule,omitempty"`
	Pass      int            `json:"pass,omitempty"`
	Row       *int           `json:"row,omitempty"` // dataset row; 0 is a valid row
	Derived   []string       `json:"derived,omitempty"`
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	Source    string         `json:"source,omitempty"`
	Query     string         `json:"query,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := alias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}

// RowPtr returns a pointer to row for Event.Row.
func RowPtr(row int) *int {
	return &row
}
