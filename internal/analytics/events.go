package analytics

import "time"

type EventType string

const (
	EventSearch      EventType = "search"
	EventZeroResult  EventType = "zero_result"
	EventSearchError EventType = "search_error"
)

// SearchEvent describes one served search request.
type SearchEvent struct {
	Type        EventType `json:"type"`
	Ingredients string    `json:"ingredients,omitempty"`
	Keywords    string    `json:"keywords,omitempty"`
	Mode        string    `json:"mode"`
	K           int       `json:"k"`
	Facets      []string  `json:"facets,omitempty"`
	FullRecords bool      `json:"full_records"`
	Returned    int       `json:"returned"`
	Status      int       `json:"status"`
	LatencyMs   int64     `json:"latency_ms"`
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id"`
}
