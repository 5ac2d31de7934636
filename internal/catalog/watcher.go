package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultReloadDebounce = 200 * time.Millisecond

// ReloadFunc receives a freshly loaded catalog after the file changed.
type ReloadFunc func(*Result)

// Watcher reloads a catalog file when it changes on disk. Editors often
// replace files through renames, so the parent directory is watched and
// events are filtered by name.
type Watcher struct {
	path     string
	loader   *Loader
	onReload ReloadFunc
	debounce time.Duration
	logger   *zap.Logger
}

// NewWatcher creates a watcher for path. onReload is called from the
// watcher goroutine for every successful reload.
func NewWatcher(path string, onReload ReloadFunc, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     path,
		loader:   NewLoader(logger),
		onReload: onReload,
		debounce: defaultReloadDebounce,
		logger:   logger.Named("catalog_watcher"),
	}
}

// Run blocks until ctx is done. A failed reload is logged and the previous
// catalog stays in effect.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.logger.Info("watching catalog", zap.String("path", w.path))

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("catalog watcher error", zap.Error(err))
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !samePath(event.Name, w.path) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		case <-timerChan(timer):
			timer = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	res, err := w.loader.LoadFile(w.path)
	if err != nil {
		w.logger.Warn("catalog reload failed", zap.Error(err))
		return
	}
	w.logger.Info("catalog reloaded",
		zap.Int("records", res.Report.Accepted),
		zap.Int("skipped", len(res.Report.Skipped)))
	if w.onReload != nil {
		w.onReload(res)
	}
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

func timerChan(timer *time.Timer) <-chan time.Time {
	if timer == nil {
		return nil
	}
	return timer.C
}
