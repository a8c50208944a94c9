// Package metrics provides Prometheus metrics for the classification cache.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom buckets for the inference latency histogram.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRegistry sets the Prometheus registry metrics are registered on.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// Manager owns the cache metrics and the registry they are exposed from.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	lookups          *prometheus.CounterVec
	writeFailures    prometheus.Counter
	errors           *prometheus.CounterVec
	inferenceLatency prometheus.Histogram
}

// NewManager creates a Manager on a private registry unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "glimpse",
		buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(m.registry)

	m.lookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Cache lookups partitioned by outcome (hit or miss)",
	}, []string{"outcome"})

	m.writeFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "cache",
		Name:      "write_failures_total",
		Help:      "Computed results that could not be written back to the store",
	})

	m.errors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "classify",
		Name:      "errors_total",
		Help:      "Terminal classification failures partitioned by kind",
	}, []string{"kind"})

	m.inferenceLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "classify",
		Name:      "inference_seconds",
		Help:      "Time spent scoring and labelling on cache misses",
		Buckets:   m.buckets,
	})

	return m
}

// CacheHit counts a lookup served from the store.
func (m *Manager) CacheHit() {
	m.lookups.WithLabelValues("hit").Inc()
}

// CacheMiss counts a lookup that required inference.
func (m *Manager) CacheMiss() {
	m.lookups.WithLabelValues("miss").Inc()
}

// CacheWriteFailed counts a computed result that was not persisted.
func (m *Manager) CacheWriteFailed() {
	m.writeFailures.Inc()
}

// Failure counts a terminal failure of the given kind.
func (m *Manager) Failure(kind string) {
	m.errors.WithLabelValues(kind).Inc()
}

// ObserveInference records the duration of a scoring run.
func (m *Manager) ObserveInference(d time.Duration) {
	m.inferenceLatency.Observe(d.Seconds())
}

// Registry returns the registry metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
