// Package otel records structured client events for MySearch.
//
// Events are serialized as JSONL lines by an asynchronous Logger. A RingBuffer
// keeps the most recent events in memory for the debug overlay.
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

// EventKind identifies an event. Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Query session
	KindSearchStart    EventKind = "search.start"
	KindSearchComplete EventKind = "search.complete"
	KindSearchError    EventKind = "search.error"
	KindSearchStale    EventKind = "search.stale"
	KindSearchReset    EventKind = "search.reset"

	// Autocomplete
	KindSuggestRequest  EventKind = "suggest.request"
	KindSuggestComplete EventKind = "suggest.complete"
	KindSuggestError    EventKind = "suggest.error"
	KindSuggestStale    EventKind = "suggest.stale"

	// Knowledge panel
	KindKnowledgeRequest  EventKind = "knowledge.request"
	KindKnowledgeComplete EventKind = "knowledge.complete"
	KindKnowledgeError    EventKind = "knowledge.error"
	KindKnowledgeStale    EventKind = "knowledge.stale"

	// Result clicks
	KindClickOpen  EventKind = "click.open"
	KindClickError EventKind = "click.error"

	// Background refresh and admin actions
	KindAnalyticsRefresh EventKind = "analytics.refresh"
	KindAnalyticsError   EventKind = "analytics.error"
	KindCrawlStart       EventKind = "crawl.start"
	KindCrawlError       EventKind = "crawl.error"

	KindStoreError EventKind = "store.error"

	// UI
	KindKeyPress EventKind = "ui.key"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Per-message tracing, only with MYSEARCH_TRACE set
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is the universal record. Every field except Kind and Time is optional.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // "session", "suggest", "ui", "main"...
	SessionID string         `json:"session_id,omitempty"` // same for the whole run
	QueryID   string         `json:"qid,omitempty"`        // correlates one search's events
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"` // filled from Dur when marshaled
	Count     int            `json:"count,omitempty"`
	Page      int            `json:"page,omitempty"`
	Source    string         `json:"source,omitempty"`
	Query     string         `json:"query,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	p := plain(e)
	if e.Dur > 0 {
		p.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(p)
}
