package app

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/toolora/toolora-search/internal/catalog"
	"github.com/toolora/toolora-search/internal/search"
)

// Snapshot is an immutable catalog with the searcher built over it.
type Snapshot struct {
	Catalog  *catalog.Catalog
	Searcher search.Searcher
	Report   catalog.ValidationReport
	Revision uint64
	LoadedAt time.Time

	// cache is nil when result caching is disabled.
	cache *search.CachedSearcher
}

// CacheStats reports the result cache counters. All zero without a cache.
func (s *Snapshot) CacheStats() (hits, misses uint64, size int) {
	if s.cache == nil {
		return 0, 0, 0
	}
	return s.cache.Stats()
}

func (s *Snapshot) close() error {
	return search.Close(s.Searcher)
}

// Reload reads the catalog again from its configured source.
func (a *App) Reload() error {
	res, err := catalog.Load(a.cfg.Catalog.Path, a.logger)
	if err != nil {
		a.observeReload(err)
		return err
	}
	return a.Apply(res)
}

// Apply builds a snapshot for a loaded catalog and makes it active.
func (a *App) Apply(res *catalog.Result) error {
	if res == nil || res.Catalog == nil {
		err := errors.New("empty catalog result")
		a.observeReload(err)
		return err
	}

	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	if a.closed.Load() {
		return errors.New("app is closed")
	}

	snap, err := a.buildSnapshot(res)
	if err != nil {
		a.observeReload(err)
		return err
	}

	prev := a.snapshot.Swap(snap)
	a.observeReload(nil)
	if a.metrics != nil {
		a.metrics.SetCatalogSize(snap.Catalog.Len())
	}

	a.logger.Info("catalog snapshot active",
		zap.Uint64("revision", snap.Revision),
		zap.Int("tools", snap.Catalog.Len()),
		zap.Int("skipped", len(snap.Report.Skipped)),
		zap.String("engine", a.cfg.Search.Engine),
	)

	if prev != nil {
		time.AfterFunc(retiredSnapshotTTL, func() {
			if err := prev.close(); err != nil {
				a.logger.Warn("failed to close retired searcher", zap.Error(err))
			}
		})
	}
	return nil
}

func (a *App) buildSnapshot(res *catalog.Result) (*Snapshot, error) {
	engine := a.cfg.Search.Engine
	opts := a.cfg.SearchOptions()
	opts.Logger = a.logger

	searcher, err := search.NewSearcher(engine, res.Catalog.Records(), search.WithOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("building %s searcher: %w", engine, err)
	}

	snap := &Snapshot{
		Catalog:  res.Catalog,
		Report:   res.Report,
		Revision: a.revision.Add(1),
		LoadedAt: time.Now(),
	}

	if a.cfg.Search.CacheSize > 0 {
		snap.cache = search.NewCachedSearcher(searcher, a.cfg.Search.CacheSize)
		searcher = snap.cache
	}

	var observer search.Observer = search.NopObserver{}
	if a.metrics != nil {
		observer = a.metrics
	}
	snap.Searcher = search.NewObservedSearcher(searcher, engine, observer)

	return snap, nil
}

func (a *App) observeReload(err error) {
	if err != nil {
		a.logger.Warn("catalog reload failed", zap.Error(err))
	}
	if a.metrics != nil {
		a.metrics.ObserveReload(err)
	}
}
