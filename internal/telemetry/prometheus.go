package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/toolora/toolora-search/internal/search"
)

// PrometheusMetrics records search and server activity.
type PrometheusMetrics struct {
	searchDuration *prometheus.HistogramVec
	searches       *prometheus.CounterVec
	searchResults  *prometheus.HistogramVec
	requests       *prometheus.CounterVec
	catalogTools   prometheus.Gauge
	reloads        *prometheus.CounterVec
	selections     *prometheus.CounterVec
}

// NewPrometheusMetrics registers the metrics with registerer, or with the
// default registerer when nil.
func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		searchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolora_search_duration_seconds",
				Help:    "Duration of search queries in seconds",
				Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
			},
			[]string{"engine"},
		),
		searches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolora_searches_total",
				Help: "Total number of search queries",
			},
			[]string{"engine", "status"},
		),
		searchResults: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolora_search_results",
				Help:    "Number of results returned per search",
				Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
			},
			[]string{"engine"},
		),
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolora_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "code"},
		),
		catalogTools: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "toolora_catalog_tools",
				Help: "Number of tools in the active index",
			},
		),
		reloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolora_catalog_reloads_total",
				Help: "Total number of catalog reloads",
			},
			[]string{"status"},
		),
		selections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolora_tool_selections_total",
				Help: "Total number of tools opened from search",
			},
			[]string{"category"},
		),
	}
}

// ObserveSearch implements search.Observer. The query text is not recorded.
func (p *PrometheusMetrics) ObserveSearch(engine, _ string, results int, elapsed time.Duration) {
	status := "ok"
	if results == 0 {
		status = "no_results"
	}
	p.searchDuration.WithLabelValues(engine).Observe(elapsed.Seconds())
	p.searches.WithLabelValues(engine, status).Inc()
	p.searchResults.WithLabelValues(engine).Observe(float64(results))
}

// ObserveRequest counts one HTTP response.
func (p *PrometheusMetrics) ObserveRequest(route string, code int) {
	if route == "" {
		route = "unmatched"
	}
	p.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// SetCatalogSize records the number of indexed tools.
func (p *PrometheusMetrics) SetCatalogSize(n int) {
	p.catalogTools.Set(float64(n))
}

// ObserveReload counts a catalog reload attempt.
func (p *PrometheusMetrics) ObserveReload(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.reloads.WithLabelValues(status).Inc()
}

// ObserveSelection counts a tool opened from the results.
func (p *PrometheusMetrics) ObserveSelection(category string) {
	p.selections.WithLabelValues(category).Inc()
}

var _ search.Observer = (*PrometheusMetrics)(nil)
