/*
Package learning records what users search for and which tools they open,
and turns that history into a popularity ranking.

Tracking is asynchronous: events are queued and flushed to storage in small
batches by a background goroutine, so search latency never waits on disk.
*/
package learning

import (
	"time"

	"github.com/google/uuid"

	"github.com/toolora/toolora-search/internal/storage"
)

// UsageEvent is one tool shown for, or opened from, a search.
type UsageEvent struct {
	// ToolID is the catalog slug of the tool.
	ToolID string

	// Category is the tool's category slug.
	Category string

	// ContextHash is the SHA256 hash of the query for privacy.
	ContextHash string

	// Timestamp is when the event happened.
	Timestamp time.Time

	// Selected is true when the tool was opened, false when it was only shown.
	Selected bool

	// SearchID links the event to the search that surfaced the tool (optional).
	SearchID string
}

// NewUsageEvent creates a usage event stamped with the current time.
func NewUsageEvent(toolID, category, query string, selected bool, searchID string) UsageEvent {
	return UsageEvent{
		ToolID:      toolID,
		Category:    category,
		ContextHash: hashContext(query),
		Timestamp:   time.Now(),
		Selected:    selected,
		SearchID:    searchID,
	}
}

// ToStorage converts learning event to storage model.
func (e UsageEvent) ToStorage() storage.UsageEvent {
	return storage.UsageEvent{
		ToolID:      e.ToolID,
		Category:    e.Category,
		ContextHash: e.ContextHash,
		Timestamp:   e.Timestamp,
		Selected:    e.Selected,
	}
}

// SearchEvent is one answered query.
type SearchEvent struct {
	SearchID     string
	QueryHash    string
	Timestamp    time.Time
	ResultsCount int
	Engine       string
}

// NewSearchEvent creates a search event with a fresh UUID.
func NewSearchEvent(query, engine string, resultsCount int) SearchEvent {
	return SearchEvent{
		SearchID:     uuid.NewString(),
		QueryHash:    hashContext(query),
		Timestamp:    time.Now(),
		ResultsCount: resultsCount,
		Engine:       engine,
	}
}

// ToStorage converts learning event to storage model.
func (e SearchEvent) ToStorage() storage.SearchRecord {
	return storage.SearchRecord{
		SearchID:     e.SearchID,
		QueryHash:    e.QueryHash,
		Timestamp:    e.Timestamp,
		ResultsCount: e.ResultsCount,
		Engine:       e.Engine,
	}
}

// hashContext hashes a query for privacy. Empty queries stay empty.
func hashContext(context string) string {
	if context == "" {
		return ""
	}
	return storage.HashQuery(context)
}
