// Package observability holds the Prometheus metrics collector, logger
// construction, and tracing setup shared across the backend.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics for the application. Each
// Collector owns its registry, so tests can create throwaway instances
// without tripping duplicate-registration panics.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Object cache (L0) metrics, labeled by category
	L0Hits      *prometheus.CounterVec
	L0Misses    *prometheus.CounterVec
	L0Evictions *prometheus.CounterVec

	// Response cache (L1) metrics
	L1Hits      prometheus.Counter
	L1Misses    prometheus.Counter
	L1Evictions prometheus.Counter
	L1Oversized prometheus.Counter

	// Invalidation pipeline metrics
	EventsPublished *prometheus.CounterVec
	EventsDropped   prometheus.Counter
	ConsumeCycles   prometheus.Counter
	ConsumeDuration prometheus.Histogram
	PurgedKeys      prometheus.Counter

	// Cache warming metrics
	WarmTriggers     prometheus.Counter
	WarmDispatches   prometheus.Counter
	WarmDispatchTime prometheus.Histogram
}

// NewCollector creates a metrics collector with the given namespace and
// registers every metric with a fresh registry.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		L0Hits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "l0_cache_hits_total",
				Help:      "Total number of object cache hits",
			},
			[]string{"category"},
		),
		L0Misses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "l0_cache_misses_total",
				Help:      "Total number of object cache misses",
			},
			[]string{"category"},
		),
		L0Evictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "l0_cache_evictions_total",
				Help:      "Total number of object cache LRU evictions",
			},
			[]string{"category"},
		),

		L1Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "l1_cache_hits_total",
			Help:      "Total number of response cache hits",
		}),
		L1Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "l1_cache_misses_total",
			Help:      "Total number of response cache misses",
		}),
		L1Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "l1_cache_evictions_total",
			Help:      "Total number of response cache LRU evictions",
		}),
		L1Oversized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "l1_cache_oversized_total",
			Help:      "Total number of responses skipped for exceeding the body size limit",
		}),

		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_events_published_total",
				Help:      "Total number of invalidation events published",
			},
			[]string{"kind"},
		),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_dropped_total",
			Help:      "Total number of invalidation events dropped on queue overflow",
		}),
		ConsumeCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_consume_cycles_total",
			Help:      "Total number of consumer drain cycles",
		}),
		ConsumeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cache_consume_duration_seconds",
			Help:      "Duration of consumer drain cycles in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		PurgedKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_purged_keys_total",
			Help:      "Total number of cache keys purged by the consumer",
		}),

		WarmTriggers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_warm_triggers_total",
			Help:      "Total number of warm trigger firings",
		}),
		WarmDispatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_warm_dispatches_total",
			Help:      "Total number of warm jobs handed to the job queue",
		}),
		WarmDispatchTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cache_warm_dispatch_duration_seconds",
			Help:      "Duration of warm job submissions in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(
		c.HTTPRequests, c.HTTPDuration,
		c.L0Hits, c.L0Misses, c.L0Evictions,
		c.L1Hits, c.L1Misses, c.L1Evictions, c.L1Oversized,
		c.EventsPublished, c.EventsDropped,
		c.ConsumeCycles, c.ConsumeDuration, c.PurgedKeys,
		c.WarmTriggers, c.WarmDispatches, c.WarmDispatchTime,
	)

	return c
}

// Registry returns the Prometheus registry backing this collector, for
// mounting a /metrics handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
