package learning

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/toolora/toolora-search/internal/storage"
)

// mockStorage is an in-memory storage.Storage.
type mockStorage struct {
	mu       sync.Mutex
	usage    []storage.UsageEvent
	searches []storage.SearchRecord
}

func newMockStorage() *mockStorage {
	return &mockStorage{}
}

func (m *mockStorage) Init() error  { return nil }
func (m *mockStorage) Close() error { return nil }

func (m *mockStorage) RecordUsage(event storage.UsageEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = append(m.usage, event)
	return nil
}

func (m *mockStorage) GetUsageHistory(toolID string, since time.Time) ([]storage.UsageEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []storage.UsageEvent
	for _, e := range m.usage {
		if e.ToolID == toolID && !e.Timestamp.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockStorage) RecordSearch(search storage.SearchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, search)
	return nil
}

func (m *mockStorage) ToolUsageCounts(since time.Time, limit int) ([]storage.ToolCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byTool := map[string]*storage.ToolCount{}
	var order []string
	for _, e := range m.usage {
		if !e.Selected || e.Timestamp.Before(since) {
			continue
		}
		c, ok := byTool[e.ToolID]
		if !ok {
			c = &storage.ToolCount{ToolID: e.ToolID, Category: e.Category}
			byTool[e.ToolID] = c
			order = append(order, e.ToolID)
		}
		c.Selections++
		if e.Timestamp.After(c.LastUsed) {
			c.LastUsed = e.Timestamp
		}
	}

	out := make([]storage.ToolCount, 0, len(order))
	for _, id := range order {
		out = append(out, *byTool[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Selections > out[j].Selections })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockStorage) SearchStats(since time.Time) (storage.SearchSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return storage.SearchSummary{Total: len(m.searches), ByEngine: map[string]int{}}, nil
}

func (m *mockStorage) Cleanup(retention time.Duration) error { return nil }

func (m *mockStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = nil
	m.searches = nil
	return nil
}

func (m *mockStorage) searchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.searches)
}

func (m *mockStorage) usageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.usage)
}

// errorMockStorage always returns errors
type errorMockStorage struct{}

var errMock = errors.New("mock error")

func (e *errorMockStorage) Init() error  { return nil }
func (e *errorMockStorage) Close() error { return nil }
func (e *errorMockStorage) RecordUsage(storage.UsageEvent) error {
	return errMock
}
func (e *errorMockStorage) GetUsageHistory(string, time.Time) ([]storage.UsageEvent, error) {
	return nil, errMock
}
func (e *errorMockStorage) RecordSearch(storage.SearchRecord) error { return errMock }
func (e *errorMockStorage) ToolUsageCounts(time.Time, int) ([]storage.ToolCount, error) {
	return nil, errMock
}
func (e *errorMockStorage) SearchStats(time.Time) (storage.SearchSummary, error) {
	return storage.SearchSummary{}, errMock
}
func (e *errorMockStorage) Cleanup(time.Duration) error { return errMock }
func (e *errorMockStorage) Clear() error                { return errMock }
