// Package metrics holds the Prometheus collectors for the score pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK           = "ok"
	OutcomeUnavailable  = "unavailable"
	OutcomeMalformed    = "malformed"
	OutcomePersistError = "persist_error"
)

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	cacheLookups    *prometheus.CounterVec
	fetches         *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "score_cache_lookups_total",
				Help: "Per-player score lookups against today's persisted scores.",
			},
			[]string{"kind", "result"},
		),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "score_fetches_total",
				Help: "Per-player score fetches from the stats provider by outcome.",
			},
			[]string{"kind", "outcome"},
		),
		upstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "opendota_request_duration_seconds",
				Help:    "Latency of stats provider requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "outcome"},
		),
	}
	reg.MustRegister(m.cacheLookups, m.fetches, m.upstreamLatency)
	return m
}

func (m *Metrics) CacheHits(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.cacheLookups.WithLabelValues(kind, "hit").Add(float64(n))
}

func (m *Metrics) CacheMisses(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.cacheLookups.WithLabelValues(kind, "miss").Add(float64(n))
}

func (m *Metrics) Fetch(kind, outcome string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) Upstream(endpoint string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if !ok {
		outcome = OutcomeUnavailable
	}
	m.upstreamLatency.WithLabelValues(endpoint, outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
