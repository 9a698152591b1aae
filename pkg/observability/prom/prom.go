// Package prom implements the observability hooks with Prometheus metrics.
//
// Metrics live on a private registry, so several Metrics values can coexist
// in one process (tests create one each) without duplicate registration.
//
//	m := prom.New("mindmap")
//	m.Install()
//	http.Handle("/metrics", m.Handler())
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unixblacksteel/mindmap/pkg/observability"
)

// Metrics holds every collector and implements PipelineHooks, CacheHooks and
// HTTPHooks.
type Metrics struct {
	registry *prometheus.Registry

	generations        *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	inflight           *prometheus.GaugeVec

	layouts        *prometheus.CounterVec
	layoutDuration prometheus.Histogram
	layoutNodes    prometheus.Histogram

	exports        *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec
	exportBytes    *prometheus.HistogramVec

	cacheEvents   *prometheus.CounterVec
	cacheSetBytes *prometheus.CounterVec

	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec

	serverRequests *prometheus.CounterVec
	serverDuration *prometheus.HistogramVec
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

// New creates metrics under namespace, plus the Go runtime and process
// collectors.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generation calls by kind and outcome.",
		}, []string{"kind", "status"}),
		generationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Generation call latency.",
			Buckets:   []float64{.25, .5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"kind"}),
		inflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generations_in_flight",
			Help:      "Generation calls currently running.",
		}, []string{"kind"}),

		layouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layouts_total",
			Help:      "Layout computations by outcome.",
		}, []string{"status"}),
		layoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Layout computation time.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		layoutNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_nodes",
			Help:      "Nodes per laid-out tree.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),

		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Exports by format and outcome.",
		}, []string{"format", "status"}),
		exportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Export time by format.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		exportBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_bytes",
			Help:      "Exported artifact size.",
			Buckets:   prometheus.ExponentialBuckets(4096, 4, 8),
		}, []string{"format"}),

		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache hits, misses and writes by key type.",
		}, []string{"key_type", "event"}),
		cacheSetBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"key_type"}),

		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Outgoing HTTP requests by host and status code.",
		}, []string{"method", "host", "code"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Outgoing HTTP latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "host"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Outgoing HTTP requests that failed without a response.",
		}, []string{"method", "host"}),

		serverRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Served HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		serverDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Served HTTP latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.generations, m.generationDuration, m.inflight,
		m.layouts, m.layoutDuration, m.layoutNodes,
		m.exports, m.exportDuration, m.exportBytes,
		m.cacheEvents, m.cacheSetBytes,
		m.upstreamRequests, m.upstreamDuration, m.upstreamErrors,
		m.serverRequests, m.serverDuration,
	)
	return m
}

// Install registers m as the global pipeline, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one served HTTP request. route is the route pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	m.serverRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.serverDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// =============================================================================
// PipelineHooks
// =============================================================================

func (m *Metrics) OnGenerateStart(_ context.Context, kind string) {
	m.inflight.WithLabelValues(kind).Inc()
}

func (m *Metrics) OnGenerateComplete(_ context.Context, kind string, d time.Duration, err error) {
	m.inflight.WithLabelValues(kind).Dec()
	m.generations.WithLabelValues(kind, status(err)).Inc()
	m.generationDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) OnLayoutStart(context.Context, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, nodes int, d time.Duration, err error) {
	m.layouts.WithLabelValues(status(err)).Inc()
	if err == nil {
		m.layoutDuration.Observe(d.Seconds())
		m.layoutNodes.Observe(float64(nodes))
	}
}

func (m *Metrics) OnExportStart(context.Context, string) {}

func (m *Metrics) OnExportComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	m.exports.WithLabelValues(format, status(err)).Inc()
	m.exportDuration.WithLabelValues(format).Observe(d.Seconds())
	if err == nil {
		m.exportBytes.WithLabelValues(format).Observe(float64(size))
	}
}

// =============================================================================
// CacheHooks
// =============================================================================

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheSetBytes.WithLabelValues(keyType).Add(float64(size))
}

// =============================================================================
// HTTPHooks
// =============================================================================

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, host, _ string, code int, d time.Duration) {
	m.upstreamRequests.WithLabelValues(method, host, strconv.Itoa(code)).Inc()
	m.upstreamDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, host, _ string, _ error) {
	m.upstreamErrors.WithLabelValues(method, host).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
