package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolora/toolora-search/internal/catalog"
	"github.com/toolora/toolora-search/internal/config"
	"github.com/toolora/toolora-search/internal/search"
	"github.com/toolora/toolora-search/internal/storage"
	"github.com/toolora/toolora-search/internal/telemetry"
)

const smallCatalog = `
categories:
  - id: pdf
    name: PDF Toolkit
    icon: file-text
    color: red
    tools:
      - id: pdf-merge
        description: Combine PDF files
        popular: true
      - id: pdf-split
        description: Divide PDF pages
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Storage.Enabled = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, opts ...Option) *App {
	t.Helper()
	a, err := New(cfg, nil, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func writeCatalog(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNew_BuiltinCatalog(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	snap := a.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, 85, snap.Catalog.Len())
	assert.Equal(t, uint64(1), snap.Revision)
	assert.True(t, snap.Report.OK())
	assert.Nil(t, a.Store())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Search.Engine = "semantic"

	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestNew_MissingCatalogFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestSearch_Statuses(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	out := a.Search("qr code", 0)
	assert.Equal(t, StatusOK, out.Status)
	require.NotEmpty(t, out.Results)
	assert.Equal(t, "qr-generator", out.Results[0].Record.ID)
	assert.LessOrEqual(t, len(out.Results), search.DefaultMaxResults)

	out = a.Search("pdf", 2)
	assert.Len(t, out.Results, 2)

	// a limit above MaxResults never widens the list
	full := a.Search("pdf", 0)
	require.Len(t, full.Results, search.DefaultMaxResults)
	out = a.Search("pdf", 20)
	assert.Equal(t, full.Results, out.Results)

	out = a.Search(" q ", 0)
	assert.Equal(t, StatusNoQuery, out.Status)
	assert.NotNil(t, out.Results)
	assert.Empty(t, out.Results)

	out = a.Search("zzzzzzzz", 0)
	assert.Equal(t, StatusNoResults, out.Status)
	assert.Empty(t, out.Results)
}

func TestSearch_Engines(t *testing.T) {
	for _, engine := range search.Engines {
		t.Run(engine, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Search.Engine = engine
			a := newTestApp(t, cfg)

			out := a.Search("background remover", 0)
			require.NotEmpty(t, out.Results)
			assert.Equal(t, "background-remover", out.Results[0].Record.ID)
		})
	}
}

func TestSearch_RecordsHistory(t *testing.T) {
	store := storage.NewStorage(filepath.Join(t.TempDir(), "history.db"), nil)
	a, err := New(testConfig(t), nil, WithStorage(store))
	require.NoError(t, err)

	out := a.Search("pdf merge", 0)
	require.NotEmpty(t, out.SearchID)

	record, err := a.Open("pdf-merge", "pdf merge", out.SearchID)
	require.NoError(t, err)
	assert.Equal(t, "pdf", record.Category)

	_, err = a.Open("no-such-tool", "", "")
	assert.ErrorIs(t, err, ErrToolNotFound)

	// stop the tracker so queued events reach the database
	a.tracker.Stop()

	summary, err := a.Stats(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Selections)

	popular := a.Popular(3)
	require.NotEmpty(t, popular)
	assert.Equal(t, "pdf-merge", popular[0].Record.ID)
	assert.Equal(t, 1, popular[0].Selections)

	require.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}

func TestStats_NoStorage(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	summary, err := a.Stats(time.Time{})
	require.NoError(t, err)
	assert.Zero(t, summary.Total)

	popular := a.Popular(10)
	require.NotEmpty(t, popular)
	assert.True(t, popular[0].Record.Popular)
}

func TestReload_SwapsSnapshot(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.Catalog.Path = writeCatalog(t, dir, smallCatalog)
	a := newTestApp(t, cfg)

	first := a.Snapshot()
	assert.Equal(t, 2, first.Catalog.Len())
	assert.Equal(t, StatusNoResults, a.Search("crop image", 0).Status)

	writeCatalog(t, dir, smallCatalog+`
  - id: image
    name: Image Tools
    tools:
      - id: image-crop
        description: Crop images
`)
	require.NoError(t, a.Reload())

	second := a.Snapshot()
	assert.Equal(t, 3, second.Catalog.Len())
	assert.Greater(t, second.Revision, first.Revision)
	assert.Equal(t, "image-crop", a.Search("crop image", 0).Results[0].Record.ID)

	// the old snapshot is untouched
	assert.Equal(t, 2, first.Catalog.Len())
}

func TestReload_ConcurrentSearch(t *testing.T) {
	for _, engine := range search.Engines {
		t.Run(engine, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Search.Engine = engine
			cfg.Catalog.Path = writeCatalog(t, t.TempDir(), smallCatalog)
			a := newTestApp(t, cfg)

			var (
				wg       sync.WaitGroup
				searches atomic.Int64
				empty    atomic.Int64
			)
			stop := make(chan struct{})
			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for {
						select {
						case <-stop:
							return
						default:
						}
						out := a.Search("pdf merge", 0)
						searches.Add(1)
						if len(out.Results) == 0 {
							empty.Add(1)
						}
					}
				}()
			}

			var reloadErrs []error
			for i := 0; i < 20; i++ {
				if err := a.Reload(); err != nil {
					reloadErrs = append(reloadErrs, err)
				}
			}
			close(stop)
			wg.Wait()

			assert.Empty(t, reloadErrs)
			assert.Positive(t, searches.Load())
			assert.Zero(t, empty.Load(), "every search sees a complete snapshot")
			assert.Equal(t, uint64(21), a.Snapshot().Revision)
		})
	}
}

func TestClose_ConcurrentApply(t *testing.T) {
	cfg := testConfig(t)
	cfg.Search.Engine = search.EngineBM25
	cfg.Search.CacheSize = 0
	cfg.Catalog.Path = writeCatalog(t, t.TempDir(), smallCatalog)

	a, err := New(cfg, nil)
	require.NoError(t, err)

	res, err := catalog.Load(cfg.Catalog.Path, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for a.Apply(res) == nil {
		}
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, a.Close())
	<-done

	assert.Error(t, a.Apply(res))
	// the snapshot left active after Close has its index released
	assert.Empty(t, a.Snapshot().Searcher.SearchScored("pdf merge"))
}

func TestReload_FailureKeepsSnapshot(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.Catalog.Path = writeCatalog(t, dir, smallCatalog)
	a := newTestApp(t, cfg)

	before := a.Snapshot()
	writeCatalog(t, dir, "categories: [")

	assert.Error(t, a.Reload())
	assert.Same(t, before, a.Snapshot())
	assert.Error(t, a.Apply(nil))
}

func TestCacheStats(t *testing.T) {
	cfg := testConfig(t)
	a := newTestApp(t, cfg)

	a.Search("pdf", 0)
	a.Search("PDF", 0)
	hits, misses, size := a.Snapshot().CacheStats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 1, size)

	cfg = testConfig(t)
	cfg.Search.CacheSize = 0
	uncached := newTestApp(t, cfg)
	uncached.Search("pdf", 0)
	hits, misses, size = uncached.Snapshot().CacheStats()
	assert.Zero(t, hits+misses)
	assert.Zero(t, size)
}

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	a := newTestApp(t, testConfig(t), WithMetrics(telemetry.NewPrometheusMetrics(registry)))

	a.Search("pdf", 0)
	_, err := a.Open("pdf-merge", "", "")
	require.NoError(t, err)

	families, err := registry.Gather()
	require.NoError(t, err)

	counts := map[string]int{}
	for _, mf := range families {
		counts[mf.GetName()] = len(mf.GetMetric())
	}
	assert.Equal(t, 1, counts["toolora_searches_total"])
	assert.Equal(t, 1, counts["toolora_catalog_tools"])
	assert.Equal(t, 1, counts["toolora_tool_selections_total"])
	assert.Equal(t, 1, counts["toolora_catalog_reloads_total"])
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.Catalog.Path = writeCatalog(t, dir, smallCatalog)
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx) }()

	// give the watcher time to subscribe
	time.Sleep(100 * time.Millisecond)
	writeCatalog(t, dir, smallCatalog+`
      - id: pdf-compress
        description: Shrink PDF files
`)

	require.Eventually(t, func() bool {
		return a.Catalog().Len() == 3
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatch_BuiltinCatalog(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	assert.NoError(t, a.Watch(context.Background()))
}

func TestRunCleanup(t *testing.T) {
	store := storage.NewStorage(filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, store.Init())
	require.NoError(t, store.RecordUsage(storage.UsageEvent{
		ToolID: "pdf-merge", ContextHash: "h", Timestamp: time.Now().Add(-200 * 24 * time.Hour), Selected: true,
	}))

	a := newTestApp(t, testConfig(t), WithStorage(store))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, a.RunCleanup(ctx, time.Hour))

	counts, err := store.ToolUsageCounts(time.Time{}, 10)
	require.NoError(t, err)
	assert.Empty(t, counts)
}
