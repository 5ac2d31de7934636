// Package httpapi serves the search index over HTTP as JSON.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/toolora/toolora-search/internal/app"
	"github.com/toolora/toolora-search/internal/telemetry"
)

// Server exposes an App over HTTP.
type Server struct {
	app      *app.App
	logger   *zap.Logger
	metrics  *telemetry.PrometheusMetrics
	gatherer prometheus.Gatherer
	router   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics counts requests in m and serves gatherer on /metrics.
func WithMetrics(m *telemetry.PrometheusMetrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// NewServer builds the router.
func NewServer(a *app.App, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		app:    a,
		logger: logger.Named("http"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(ginLogger(s.logger))
	router.Use(gin.Recovery())
	if s.metrics != nil {
		router.Use(requestMetrics(s.metrics))
	}

	router.GET("/health", s.handleHealth)
	router.GET("/search", s.handleSearch)

	api := router.Group("/api")
	{
		api.GET("/tools", s.handleTools)
		api.GET("/tools/:id", s.handleTool)
		api.POST("/tools/:id/open", s.handleOpen)
		api.GET("/categories", s.handleCategories)
		api.GET("/popular", s.handlePopular)
	}

	if s.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	return router
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("server started", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server exited")
	return nil
}
