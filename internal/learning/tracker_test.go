package learning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolora/toolora-search/internal/catalog"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker(newMockStorage(), nil)

	if tracker == nil {
		t.Fatal("NewTracker returned nil")
	}
	if !tracker.IsEnabled() {
		t.Error("expected tracker to be enabled")
	}

	tracker.Stop()
}

func TestNewTracker_NilStorage(t *testing.T) {
	tracker := NewTracker(nil, nil)
	defer tracker.Stop()

	if tracker.IsEnabled() {
		t.Error("expected tracker without storage to be disabled")
	}
	// must not panic
	tracker.Track(UsageEvent{ToolID: "pdf-merge"})
}

func TestTracker_Track(t *testing.T) {
	mockStore := newMockStorage()
	tracker := NewTracker(mockStore, nil)
	defer tracker.Stop()

	tracker.Track(UsageEvent{ToolID: "pdf-merge", Timestamp: time.Now(), Selected: true})

	require.Eventually(t, func() bool {
		history, _ := mockStore.GetUsageHistory("pdf-merge", time.Now().Add(-time.Hour))
		return len(history) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestTracker_Stop_FlushesPending(t *testing.T) {
	mockStore := newMockStorage()
	tracker := NewTracker(mockStore, nil)

	for i := 0; i < 5; i++ {
		tracker.Track(UsageEvent{ToolID: "pdf-merge", Timestamp: time.Now()})
	}
	tracker.Stop()

	history, err := mockStore.GetUsageHistory("pdf-merge", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("failed to get history: %v", err)
	}
	if len(history) != 5 {
		t.Errorf("expected 5 events after stop, got %d", len(history))
	}

	// second stop is a no-op
	tracker.Stop()
}

func TestTracker_TrackAfterStop(t *testing.T) {
	mockStore := newMockStorage()
	tracker := NewTracker(mockStore, nil)
	tracker.Stop()

	tracker.Track(UsageEvent{ToolID: "pdf-merge", Timestamp: time.Now()})
	tracker.TrackSearch(NewSearchEvent("merge pdf", "inverted", 1))

	assert.Zero(t, tracker.GetEventQueueSize(), "nothing queued once stopped")
	assert.Zero(t, mockStore.usageCount())
	assert.Zero(t, mockStore.searchCount())
}

func TestTracker_Disable(t *testing.T) {
	mockStore := newMockStorage()
	tracker := NewTracker(mockStore, nil)

	tracker.Disable()
	tracker.Track(UsageEvent{ToolID: "pdf-merge", Timestamp: time.Now()})
	tracker.Enable()
	tracker.Track(UsageEvent{ToolID: "pdf-split", Timestamp: time.Now()})
	tracker.Stop()

	assert.Equal(t, 1, mockStore.usageCount())
	history, _ := mockStore.GetUsageHistory("pdf-split", time.Time{})
	assert.Len(t, history, 1)
}

func TestTracker_TrackNonBlocking(t *testing.T) {
	tracker := NewTracker(newMockStorage(), nil)
	defer tracker.Stop()

	start := time.Now()
	for i := 0; i < eventQueueSize+100; i++ {
		tracker.Track(UsageEvent{ToolID: "pdf-merge", Timestamp: time.Now()})
	}

	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Track is blocking: took %v", elapsed)
	}
	if size := tracker.GetEventQueueSize(); size > eventQueueSize {
		t.Errorf("queue size %d exceeds capacity %d", size, eventQueueSize)
	}
}

func TestTracker_StorageError(t *testing.T) {
	tracker := NewTracker(&errorMockStorage{}, nil)

	tracker.Track(UsageEvent{ToolID: "pdf-merge", Timestamp: time.Now()})
	tracker.TrackSearch(SearchEvent{SearchID: "s1"})
	tracker.Stop()

	if !tracker.IsEnabled() {
		t.Error("expected tracker to remain enabled after storage error")
	}
}

func TestTracker_RecordSearchAndSelection(t *testing.T) {
	mockStore := newMockStorage()
	tracker := NewTracker(mockStore, nil)

	results := []catalog.ToolRecord{
		{ID: "pdf-merge", Category: "pdf"},
		{ID: "pdf-split", Category: "pdf"},
	}
	searchID := tracker.RecordSearch("merge pdf", "inverted", results)
	tracker.RecordSelection(results[0], "merge pdf", searchID)
	tracker.Stop()

	require.NotEmpty(t, searchID)
	require.Equal(t, 1, mockStore.searchCount())

	search := mockStore.searches[0]
	assert.Equal(t, searchID, search.SearchID)
	assert.Equal(t, 2, search.ResultsCount)
	assert.Equal(t, "inverted", search.Engine)
	assert.Equal(t, hashContext("merge pdf"), search.QueryHash)

	// two impressions plus one selection
	assert.Equal(t, 3, mockStore.usageCount())
	counts, _ := mockStore.ToolUsageCounts(time.Time{}, 10)
	require.Len(t, counts, 1)
	assert.Equal(t, "pdf-merge", counts[0].ToolID)
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = NopRecorder{}
	assert.Empty(t, r.RecordSearch("pdf", "inverted", nil))
	r.RecordSelection(catalog.ToolRecord{ID: "pdf-merge"}, "pdf", "")

	var _ Recorder = (*Tracker)(nil)
}

func TestEvents_ToStorage(t *testing.T) {
	usage := NewUsageEvent("pdf-merge", "pdf", "merge", true, "search-1")
	stored := usage.ToStorage()

	assert.Equal(t, "pdf-merge", stored.ToolID)
	assert.Equal(t, "pdf", stored.Category)
	assert.Equal(t, hashContext("merge"), stored.ContextHash)
	assert.True(t, stored.Selected)
	assert.Equal(t, usage.Timestamp, stored.Timestamp)

	search := NewSearchEvent("merge", "bm25", 4)
	record := search.ToStorage()
	assert.Len(t, record.SearchID, 36)
	assert.Equal(t, "bm25", record.Engine)
	assert.Equal(t, 4, record.ResultsCount)

	assert.NotEqual(t, search.SearchID, NewSearchEvent("merge", "bm25", 4).SearchID)
	assert.Empty(t, hashContext(""))
}
