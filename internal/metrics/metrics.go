// Package metrics holds the prometheus instruments of the caching core.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup results.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// Trending run outcomes.
const (
	OutcomeComputed = "computed"
	OutcomeBusy     = "busy"
	OutcomeFailed   = "failed"
)

// Collector holds all Prometheus metrics of the caching core.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	CacheRequests    *prometheus.CounterVec
	TrendingRuns     *prometheus.CounterVec
	TrendingDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry, so several
// instances can live in one process (tests, multiple containers).
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	cacheRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Total number of read-through cache lookups",
		},
		[]string{"kind", "result"},
	)

	trendingRuns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trending_runs_total",
			Help:      "Total number of trending aggregation triggers",
		},
		[]string{"subject_type", "period", "outcome"},
	)

	trendingDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trending_run_duration_seconds",
			Help:      "Duration of trending aggregations that reached the store",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"subject_type", "period"},
	)

	registry.MustRegister(cacheRequests, trendingRuns, trendingDuration)

	return &Collector{
		registry:         registry,
		CacheRequests:    cacheRequests,
		TrendingRuns:     trendingRuns,
		TrendingDuration: trendingDuration,
	}
}

// Registry returns the registry the collector's metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// CacheLookups adds n lookups of kind with the given result.
func (c *Collector) CacheLookups(kind, result string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.CacheRequests.WithLabelValues(kind, result).Add(float64(n))
}

// TrendingRun records one trigger outcome.
func (c *Collector) TrendingRun(subjectType, period, outcome string) {
	if c == nil {
		return
	}
	c.TrendingRuns.WithLabelValues(subjectType, period, outcome).Inc()
}

// ObserveTrending records how long an aggregation took.
func (c *Collector) ObserveTrending(subjectType, period string, d time.Duration) {
	if c == nil {
		return
	}
	c.TrendingDuration.WithLabelValues(subjectType, period).Observe(d.Seconds())
}
