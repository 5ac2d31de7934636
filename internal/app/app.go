/*
Package app wires the catalog, search engine, usage tracking and metrics into
one long-lived service used by both the CLI and the HTTP API.

The active catalog and its searcher form an immutable snapshot. Reloads build
a complete new snapshot and swap it in atomically, so in-flight searches keep
using the one they started with.
*/
package app

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/toolora/toolora-search/internal/catalog"
	"github.com/toolora/toolora-search/internal/config"
	"github.com/toolora/toolora-search/internal/learning"
	"github.com/toolora/toolora-search/internal/search"
	"github.com/toolora/toolora-search/internal/storage"
	"github.com/toolora/toolora-search/internal/telemetry"
)

// Search statuses.
const (
	StatusOK        = "ok"
	StatusNoResults = "no_results"
	StatusNoQuery   = "no_query"
)

// ErrToolNotFound is returned for IDs missing from the active catalog.
var ErrToolNotFound = errors.New("tool not found")

// retiredSnapshotTTL is how long a replaced searcher stays open for
// searches that were already running on it.
const retiredSnapshotTTL = 5 * time.Second

// App is the search service.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *telemetry.PrometheusMetrics

	store    storage.Storage
	tracker  *learning.Tracker
	recorder learning.Recorder

	snapshot atomic.Pointer[Snapshot]
	revision atomic.Uint64
	reloadMu sync.Mutex
	closed   atomic.Bool
}

// Option configures an App.
type Option func(*App)

// WithMetrics reports searches, reloads and selections to m.
func WithMetrics(m *telemetry.PrometheusMetrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithStorage uses s for usage history instead of the configured database.
func WithStorage(s storage.Storage) Option {
	return func(a *App) { a.store = s }
}

// New loads the configured catalog and builds the first snapshot.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &App{
		cfg:    cfg,
		logger: logger.Named("app"),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.store == nil && cfg.Storage.Enabled {
		a.store = storage.NewStorage(cfg.Storage.Path, logger)
	}
	if a.store != nil {
		a.tracker = learning.NewTracker(a.store, logger)
		a.recorder = a.tracker
	} else {
		a.recorder = learning.NopRecorder{}
	}

	res, err := catalog.Load(cfg.Catalog.Path, logger)
	if err != nil {
		a.stopTracking()
		return nil, err
	}
	if err := a.Apply(res); err != nil {
		a.stopTracking()
		return nil, err
	}

	return a, nil
}

// Config returns the configuration the app was built with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Snapshot returns the active catalog snapshot.
func (a *App) Snapshot() *Snapshot {
	return a.snapshot.Load()
}

// Catalog returns the active catalog.
func (a *App) Catalog() *catalog.Catalog {
	return a.Snapshot().Catalog
}

// Store returns the usage history store, or nil when tracking is off.
func (a *App) Store() storage.Storage {
	return a.store
}

// SearchOutcome is one answered query.
type SearchOutcome struct {
	Query    string          `json:"query"`
	Status   string          `json:"status"`
	SearchID string          `json:"searchId,omitempty"`
	Results  []search.Result `json:"results"`
}

// Search ranks the active catalog for query. A positive limit below the
// configured maximum shortens the list. The searcher has already truncated
// to MaxResults, so a larger limit returns the same list.
func (a *App) Search(query string, limit int) SearchOutcome {
	out := SearchOutcome{Query: query, Results: []search.Result{}}

	if utf8.RuneCountInString(strings.TrimSpace(query)) < a.cfg.Search.MinQueryLength {
		out.Status = StatusNoQuery
		return out
	}

	results := a.Snapshot().Searcher.SearchScored(query)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	out.Results = results

	out.Status = StatusOK
	if len(results) == 0 {
		out.Status = StatusNoResults
	}

	out.SearchID = a.recorder.RecordSearch(query, a.cfg.Search.Engine, search.Records(results))
	return out
}

// Open records that the tool was opened, optionally from a search.
func (a *App) Open(toolID, query, searchID string) (catalog.ToolRecord, error) {
	record, ok := a.Catalog().Get(toolID)
	if !ok {
		return catalog.ToolRecord{}, fmt.Errorf("%w: %s", ErrToolNotFound, toolID)
	}

	a.recorder.RecordSelection(record, query, searchID)
	if a.metrics != nil {
		a.metrics.ObserveSelection(record.Category)
	}
	return record, nil
}

// Popular lists the most used tools, topped up with the catalog's picks.
func (a *App) Popular(limit int) []learning.PopularTool {
	return learning.PopularTools(a.store, a.Catalog(), limit)
}

// Stats summarizes searches since the given time.
func (a *App) Stats(since time.Time) (storage.SearchSummary, error) {
	if a.store == nil {
		return storage.SearchSummary{ByEngine: map[string]int{}}, nil
	}
	return a.store.SearchStats(since)
}

// Close stops tracking, flushing queued events, and releases the searcher.
func (a *App) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}

	a.stopTracking()

	// a concurrent Apply either finishes its swap first or sees closed
	a.reloadMu.Lock()
	snap := a.snapshot.Load()
	a.reloadMu.Unlock()

	var errs []error
	if snap != nil {
		errs = append(errs, snap.close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}

func (a *App) stopTracking() {
	if a.tracker != nil {
		a.tracker.Stop()
	}
}
