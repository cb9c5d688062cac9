// Package metrics implements the observability hooks with Prometheus
// collectors.
//
//	m, err := metrics.New(prometheus.DefaultRegisterer)
//	if err != nil { ... }
//	m.Install()
package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/runshape/pkg/observability"
)

const namespace = "runshape"

// Metrics holds the collectors. It implements [observability.LayoutHooks],
// [observability.CacheHooks] and [observability.HTTPHooks].
type Metrics struct {
	resolveEdges   prometheus.Histogram
	layerings      prometheus.Counter
	layeringPasses prometheus.Histogram
	unplacedTasks  prometheus.Counter
	layeringTime   prometheus.Histogram
	graphLayouts   *prometheus.CounterVec
	graphLayoutDur *prometheus.HistogramVec
	cacheOps       *prometheus.CounterVec
	cacheBytes     *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	httpErrors     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Collectors that
// are already registered are reused. A nil reg means the default registerer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		resolveEdges: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_edges",
			Help:      "Parent references resolved per snapshot.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		layerings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layerings_total",
			Help:      "Column assignments computed.",
		}),
		layeringPasses: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layering_passes",
			Help:      "Relaxation passes per column assignment.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		unplacedTasks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unplaced_tasks_total",
			Help:      "Tasks left without a column, waiting on a cycle.",
		}),
		layeringTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layering_duration_seconds",
			Help:      "Time spent assigning columns.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		graphLayouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_layouts_total",
			Help:      "Graph layouts by engine and result.",
		}, []string{"engine", "result"}),
		graphLayoutDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_layout_duration_seconds",
			Help:      "Time spent in the graph layout engine.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"engine"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type.",
		}, []string{"key_type", "op"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_responses_total",
			Help:      "Upstream HTTP responses by host and status.",
		}, []string{"method", "host", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_client_duration_seconds",
			Help:      "Upstream HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "host"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_errors_total",
			Help:      "Upstream HTTP requests that failed without a response.",
		}, []string{"method", "host"}),
	}

	var err error
	register := func(c prometheus.Collector) prometheus.Collector {
		if err != nil {
			return c
		}
		var existing prometheus.Collector
		existing, err = registerOrReuse(reg, c)
		return existing
	}

	m.resolveEdges = register(m.resolveEdges).(prometheus.Histogram)
	m.layerings = register(m.layerings).(prometheus.Counter)
	m.layeringPasses = register(m.layeringPasses).(prometheus.Histogram)
	m.unplacedTasks = register(m.unplacedTasks).(prometheus.Counter)
	m.layeringTime = register(m.layeringTime).(prometheus.Histogram)
	m.graphLayouts = register(m.graphLayouts).(*prometheus.CounterVec)
	m.graphLayoutDur = register(m.graphLayoutDur).(*prometheus.HistogramVec)
	m.cacheOps = register(m.cacheOps).(*prometheus.CounterVec)
	m.cacheBytes = register(m.cacheBytes).(*prometheus.CounterVec)
	m.httpRequests = register(m.httpRequests).(*prometheus.CounterVec)
	m.httpDuration = register(m.httpDuration).(*prometheus.HistogramVec)
	m.httpErrors = register(m.httpErrors).(*prometheus.CounterVec)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, returning the already registered collector
// when an identical one exists.
func registerOrReuse(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector, nil
		}
		return c, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}

// Install registers m as the layout, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetLayoutHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// OnResolve implements [observability.LayoutHooks].
func (m *Metrics) OnResolve(_ context.Context, _, edges int) {
	m.resolveEdges.Observe(float64(edges))
}

// OnLayering implements [observability.LayoutHooks].
func (m *Metrics) OnLayering(_ context.Context, _, unplaced, passes int, d time.Duration) {
	m.layerings.Inc()
	m.layeringPasses.Observe(float64(passes))
	m.unplacedTasks.Add(float64(unplaced))
	m.layeringTime.Observe(d.Seconds())
}

// OnGraphLayout implements [observability.LayoutHooks].
func (m *Metrics) OnGraphLayout(_ context.Context, engine string, _ int, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.graphLayouts.WithLabelValues(engine, result).Inc()
	m.graphLayoutDur.WithLabelValues(engine).Observe(d.Seconds())
}

// OnCacheHit implements [observability.CacheHooks].
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements [observability.CacheHooks].
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements [observability.CacheHooks].
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements [observability.HTTPHooks].
func (m *Metrics) OnRequest(context.Context, string, string, string) {}

// OnResponse implements [observability.HTTPHooks].
func (m *Metrics) OnResponse(_ context.Context, method, host, _ string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, host, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

// OnError implements [observability.HTTPHooks].
func (m *Metrics) OnError(_ context.Context, method, host, _ string, _ error) {
	m.httpErrors.WithLabelValues(method, host).Inc()
}

var (
	_ observability.LayoutHooks = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
	_ observability.HTTPHooks   = (*Metrics)(nil)
)
