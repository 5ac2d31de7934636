package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/toolora/toolora-search/internal/app"
	"github.com/toolora/toolora-search/internal/config"
	"github.com/toolora/toolora-search/internal/httpapi"
	"github.com/toolora/toolora-search/internal/telemetry"
	"github.com/toolora/toolora-search/internal/version"
)

// NewServeCmd creates the 'serve' command for running the JSON search API.
func NewServeCmd() *cobra.Command {
	var addr string
	var catalogPath string
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON search API",
		Long: `Start the toolora-search HTTP server.

Endpoints:
  • GET  /search?q=&limit=        - Ranked search results
  • GET  /api/tools[?category=]   - Catalog tools
  • GET  /api/tools/:id           - One tool
  • POST /api/tools/:id/open      - Record that a tool was opened
  • GET  /api/categories          - Categories with tool counts
  • GET  /api/popular?limit=      - Most used tools
  • GET  /health, /metrics        - Liveness and Prometheus metrics

With --watch the catalog file is reloaded whenever it changes.`,
		Example: `  # Serve the builtin catalog
  toolora-search serve

  # Serve a catalog file and reload it on change
  toolora-search serve --catalog ./catalog.yaml --watch --addr :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.ListenAddress = addr
			}
			if catalogPath != "" {
				cfg.Catalog.Path = catalogPath
			}
			if cmd.Flags().Changed("watch") {
				cfg.Catalog.Watch = watch
			}

			logger, err := telemetry.NewLogger(cfg.Logging.Level, cfg.Logging.Development)
			if err != nil {
				return err
			}
			defer telemetry.Sync(logger)

			// Graceful shutdown on SIGINT/SIGTERM/SIGQUIT
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
			defer stop()

			return runServe(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default: server.listenAddress)")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog file (default: catalog.path or builtin)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the catalog file when it changes")

	return cmd
}

// runServe serves the API, and optionally watches the catalog, until ctx
// is done or one of the tasks fails.
func runServe(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewPrometheusMetrics(registry)

	a, err := app.New(cfg, logger, app.WithMetrics(metrics))
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("error during shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting toolora-search",
		zap.String("version", version.GetVersion()),
		zap.String("engine", cfg.Search.Engine),
		zap.Int("tools", a.Catalog().Len()))

	server := httpapi.NewServer(a, logger, httpapi.WithMetrics(metrics, registry))
	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Run(gctx, cfg.Server.ListenAddress, shutdownTimeout); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if cfg.Catalog.Watch {
		g.Go(func() error {
			return a.Watch(gctx)
		})
	}

	g.Go(func() error {
		return a.RunCleanup(gctx, app.DefaultCleanupInterval)
	})

	err = g.Wait()
	logger.Info("shutdown complete")
	return err
}
