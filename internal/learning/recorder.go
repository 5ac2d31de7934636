package learning

import (
	"github.com/toolora/toolora-search/internal/catalog"
)

// Recorder receives search and selection activity.
type Recorder interface {
	// RecordSearch notes a query and the records it returned. It returns the
	// search ID to pass to a later RecordSelection.
	RecordSearch(query, engine string, results []catalog.ToolRecord) string

	// RecordSelection notes that a tool was opened.
	RecordSelection(record catalog.ToolRecord, query, searchID string)
}

// NopRecorder discards all activity.
type NopRecorder struct{}

// RecordSearch implements Recorder.
func (NopRecorder) RecordSearch(string, string, []catalog.ToolRecord) string { return "" }

// RecordSelection implements Recorder.
func (NopRecorder) RecordSelection(catalog.ToolRecord, string, string) {}

// RecordSearch queues the search and an impression for every result.
func (t *Tracker) RecordSearch(query, engine string, results []catalog.ToolRecord) string {
	event := NewSearchEvent(query, engine, len(results))
	t.TrackSearch(event)

	for _, r := range results {
		t.Track(UsageEvent{
			ToolID:      r.ID,
			Category:    r.Category,
			ContextHash: event.QueryHash,
			Timestamp:   event.Timestamp,
			SearchID:    event.SearchID,
		})
	}
	return event.SearchID
}

// RecordSelection queues a selection event.
func (t *Tracker) RecordSelection(record catalog.ToolRecord, query, searchID string) {
	t.Track(NewUsageEvent(record.ID, record.Category, query, true, searchID))
}
