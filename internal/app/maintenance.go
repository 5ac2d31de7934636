package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/toolora/toolora-search/internal/catalog"
)

// DefaultCleanupInterval is how often old history is pruned while serving.
const DefaultCleanupInterval = time.Hour

// Watch reloads the catalog whenever its file changes, until ctx is done.
// It returns immediately for the builtin catalog.
func (a *App) Watch(ctx context.Context) error {
	if a.cfg.Catalog.Path == "" {
		a.logger.Debug("builtin catalog, nothing to watch")
		return nil
	}

	w := catalog.NewWatcher(a.cfg.Catalog.Path, func(res *catalog.Result) {
		if err := a.Apply(res); err != nil {
			a.logger.Warn("keeping previous catalog", zap.Error(err))
		}
	}, a.logger)
	return w.Run(ctx)
}

// RunCleanup prunes history older than the configured retention every
// interval, until ctx is done. Retention zero keeps history forever.
func (a *App) RunCleanup(ctx context.Context, interval time.Duration) error {
	if a.store == nil || a.cfg.Storage.RetentionDays == 0 {
		return nil
	}
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	retention := time.Duration(a.cfg.Storage.RetentionDays) * 24 * time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.cleanup(retention)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (a *App) cleanup(retention time.Duration) {
	if err := a.store.Cleanup(retention); err != nil {
		a.logger.Warn("history cleanup failed", zap.Error(err))
		return
	}
	a.logger.Debug("history cleanup done", zap.Duration("retention", retention))
}
