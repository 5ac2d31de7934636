package learning

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/toolora/toolora-search/internal/storage"
)

const (
	// eventQueueSize is the buffer size for the event queue.
	// If full, events are dropped (non-blocking).
	eventQueueSize = 1000

	// batchFlushSize is the number of events that triggers an immediate flush.
	batchFlushSize = 10

	// flushInterval is how often pending events are flushed.
	flushInterval = 50 * time.Millisecond
)

// trackedEvent carries exactly one of its fields.
type trackedEvent struct {
	usage  *UsageEvent
	search *SearchEvent
}

// Tracker tracks searches and tool usage in the background with
// non-blocking writes.
type Tracker struct {
	storage    storage.Storage
	eventQueue chan trackedEvent
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	enabled    bool
	stopped    bool
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewTracker initializes s and starts background processing.
func NewTracker(s storage.Storage, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &Tracker{
		storage:    s,
		eventQueue: make(chan trackedEvent, eventQueueSize),
		stopChan:   make(chan struct{}),
		enabled:    true,
		logger:     logger.Named("tracker"),
	}

	if s == nil {
		t.enabled = false
	} else if err := s.Init(); err != nil {
		t.logger.Warn("learning storage initialization failed", zap.Error(err))
		t.enabled = false
	}

	t.wg.Add(1)
	go t.processEvents()

	return t
}

// Track records a tool usage event (non-blocking).
// If the queue is full, the event is dropped and a warning is logged.
func (t *Tracker) Track(event UsageEvent) {
	t.enqueue(trackedEvent{usage: &event}, event.ToolID)
}

// TrackSearch records a search event (non-blocking).
func (t *Tracker) TrackSearch(event SearchEvent) {
	t.enqueue(trackedEvent{search: &event}, event.SearchID)
}

func (t *Tracker) enqueue(ev trackedEvent, ref string) {
	// the read lock spans the send so Stop cannot drain in between
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.stopped || !t.enabled || t.storage == nil {
		return
	}

	select {
	case t.eventQueue <- ev:
	default:
		t.logger.Warn("learning queue full, dropping event", zap.String("ref", ref))
	}
}

// Stop gracefully shuts down the tracker, flushing remaining events.
// Events tracked after Stop are dropped.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		t.mu.Lock()
		t.stopped = true
		t.mu.Unlock()

		close(t.stopChan)
		t.wg.Wait()
	})
}

// Disable disables tracking (events are ignored).
func (t *Tracker) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = false
}

// Enable enables tracking.
func (t *Tracker) Enable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = true
}

// IsEnabled returns whether tracking is enabled.
func (t *Tracker) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// processEvents runs in the background, batching and flushing events.
func (t *Tracker) processEvents() {
	defer t.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]trackedEvent, 0, batchFlushSize)

	for {
		select {
		case ev := <-t.eventQueue:
			batch = append(batch, ev)
			if len(batch) >= batchFlushSize {
				t.flush(batch)
				batch = make([]trackedEvent, 0, batchFlushSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = make([]trackedEvent, 0, batchFlushSize)
			}

		case <-t.stopChan:
			// drain whatever is still queued, then exit
			for {
				select {
				case ev := <-t.eventQueue:
					batch = append(batch, ev)
					if len(batch) >= batchFlushSize {
						t.flush(batch)
						batch = make([]trackedEvent, 0, batchFlushSize)
					}
				default:
					t.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch of events to storage.
func (t *Tracker) flush(events []trackedEvent) {
	for _, ev := range events {
		var err error
		switch {
		case ev.search != nil:
			err = t.storage.RecordSearch(ev.search.ToStorage())
		case ev.usage != nil:
			err = t.storage.RecordUsage(ev.usage.ToStorage())
		}
		if err != nil {
			t.logger.Warn("failed to record event", zap.Error(err))
		}
	}
}

// GetEventQueueSize returns the current number of events in the queue.
func (t *Tracker) GetEventQueueSize() int {
	return len(t.eventQueue)
}
