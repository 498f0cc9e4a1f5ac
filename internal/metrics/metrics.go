// Package metrics holds the Prometheus collectors of gridmap on a private
// registry. A nil *Registry is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// Fetch boundary
	FetchTotal      *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
	FetchSuperseded prometheus.Counter

	// Scene pipeline
	SceneBuilds       prometheus.Counter
	SceneVisibleNodes prometheus.Gauge
	SceneVisibleEdges prometheus.Gauge

	// HTTP surface
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every collector registered, plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{registry: reg}
	r.initFetchMetrics()
	r.initSceneMetrics()
	r.initHTTPMetrics()
	return r
}

func (r *Registry) initFetchMetrics() {
	r.FetchTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridmap_fetch_total",
			Help: "Knowledge graph fetches by source and outcome",
		},
		[]string{"source", "status"},
	)
	r.FetchDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridmap_fetch_duration_seconds",
			Help:    "Knowledge graph fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
	r.FetchSuperseded = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "gridmap_fetch_superseded_total",
			Help: "Fetch results discarded because a newer request started",
		},
	)
}

func (r *Registry) initSceneMetrics() {
	r.SceneBuilds = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "gridmap_scene_builds_total",
			Help: "Scenes computed from a snapshot",
		},
	)
	r.SceneVisibleNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "gridmap_scene_visible_nodes",
			Help: "Positioned nodes in the last scene",
		},
	)
	r.SceneVisibleEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "gridmap_scene_visible_edges",
			Help: "Styled edges in the last scene",
		},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridmap_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridmap_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "gridmap_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
}

// RecordFetch records one fetch with its outcome.
func (r *Registry) RecordFetch(source, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.FetchTotal.WithLabelValues(source, status).Inc()
	r.FetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// RecordSuperseded counts a discarded fetch result.
func (r *Registry) RecordSuperseded() {
	if r == nil {
		return
	}
	r.FetchSuperseded.Inc()
}

// RecordScene records the size of a freshly built scene.
func (r *Registry) RecordScene(nodes, edges int) {
	if r == nil {
		return
	}
	r.SceneBuilds.Inc()
	r.SceneVisibleNodes.Set(float64(nodes))
	r.SceneVisibleEdges.Set(float64(edges))
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
