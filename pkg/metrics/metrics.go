// Package metrics exposes pipecheck's Prometheus metrics.
//
// A [Registry] owns a private prometheus.Registry (so tests and multiple
// servers in one process never collide) and implements the hook interfaces
// from pkg/observability, so wiring it up is a matter of registering it:
//
//	reg := metrics.NewRegistry()
//	observability.SetValidationHooks(reg)
//	observability.SetCacheHooks(reg)
//	observability.SetServerHooks(reg)
//	http.Handle("/metrics", reg.Handler())
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/pipecheck/pkg/observability"
)

const namespace = "pipecheck"

// Registry holds all metrics for the application.
type Registry struct {
	// Validation metrics
	ValidationsTotal   *prometheus.CounterVec
	ValidationDuration prometheus.Histogram
	GraphNodes         prometheus.Histogram
	GraphEdges         prometheus.Histogram

	// Cache metrics
	CacheRequestsTotal *prometheus.CounterVec
	CacheWriteBytes    *prometheus.HistogramVec

	// HTTP server metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every metric registered, plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{registry: reg}
	r.initValidationMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

func (r *Registry) initValidationMetrics() {
	factory := promauto.With(r.registry)

	r.ValidationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Total number of pipeline validations by outcome",
		},
		[]string{"outcome"},
	)
	r.ValidationDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Time spent validating a pipeline",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)
	r.GraphNodes = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Number of nodes per submitted pipeline",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
	r.GraphEdges = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Number of edges per submitted pipeline",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
}

func (r *Registry) initCacheMetrics() {
	factory := promauto.With(r.registry)

	r.CacheRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups and writes by key type and result",
		},
		[]string{"key_type", "result"},
	)
	r.CacheWriteBytes = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cache_write_bytes",
			Help:      "Size of cache entries written",
			Buckets:   []float64{64, 256, 1024, 4096, 16384},
		},
		[]string{"key_type"},
	)
}

func (r *Registry) initHTTPMetrics() {
	factory := promauto.With(r.registry)

	r.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	r.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

// Prometheus returns the underlying Prometheus registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// OnValidateStart implements [observability.ValidationHooks].
func (r *Registry) OnValidateStart(ctx context.Context, nodeCount, edgeCount int) {
	r.GraphNodes.Observe(float64(nodeCount))
	r.GraphEdges.Observe(float64(edgeCount))
}

// OnValidateComplete implements [observability.ValidationHooks].
func (r *Registry) OnValidateComplete(ctx context.Context, nodeCount, edgeCount int, acyclic bool, duration time.Duration, err error) {
	outcome := "dag"
	switch {
	case err != nil:
		outcome = "error"
	case !acyclic:
		outcome = "cycle"
	}
	r.ValidationsTotal.WithLabelValues(outcome).Inc()
	r.ValidationDuration.Observe(duration.Seconds())
}

// OnCacheHit implements [observability.CacheHooks].
func (r *Registry) OnCacheHit(ctx context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements [observability.CacheHooks].
func (r *Registry) OnCacheMiss(ctx context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements [observability.CacheHooks].
func (r *Registry) OnCacheSet(ctx context.Context, keyType string, size int) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "set").Inc()
	r.CacheWriteBytes.WithLabelValues(keyType).Observe(float64(size))
}

// OnServe implements [observability.ServerHooks].
func (r *Registry) OnServe(ctx context.Context, method, route string, statusCode int, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

var (
	_ observability.ValidationHooks = (*Registry)(nil)
	_ observability.CacheHooks      = (*Registry)(nil)
	_ observability.ServerHooks     = (*Registry)(nil)
)
