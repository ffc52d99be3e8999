// Package otel provides structured observability for bookscout.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer keeps recent events in memory for the debug overlay.
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

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Open Library client
	KindFetchStart    EventKind = "fetch.start"
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"
	KindFetchSkipped  EventKind = "fetch.skipped" // blank query, no network

	// Search pipeline
	KindSearchChange   EventKind = "search.change"
	KindSearchDispatch EventKind = "search.dispatch"
	KindSearchSuppress EventKind = "search.suppress"
	KindSearchSettle   EventKind = "search.settle"
	KindSearchDiscard  EventKind = "search.discard"
	KindLoadMore       EventKind = "scroll.load_more"

	// Detail view
	KindDetailStart    EventKind = "detail.start"
	KindDetailComplete EventKind = "detail.complete"
	KindDetailError    EventKind = "detail.error"

	// Local storage
	KindStoreError EventKind = "store.error"

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
	Comp      string         `json:"comp,omitempty"`       // component: "openlibrary", "search", "ui", "store", "main"
	SessionID string         `json:"session_id,omitempty"` // uuid, same for entire app run
	QueryID   string         `json:"qid,omitempty"`        // dispatch correlation ID
	Dur       time.Duration  `json:"-"`                    // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"`     // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	Page      int            `json:"page,omitempty"`
	Total     int            `json:"total,omitempty"`
	Query     string         `json:"query,omitempty"`
	BookID    string         `json:"book_id,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}

// Emitter is the narrow interface components take so tests can pass nil or a
// recorder instead of a real Logger.
type Emitter interface {
	Emit(e Event)
}

// Emit sends e to em if em is non-nil.
func Emit(em Emitter, e Event) {
	if em == nil {
		return
	}
	em.Emit(e)
}
