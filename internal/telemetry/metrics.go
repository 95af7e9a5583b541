// Package telemetry holds the Prometheus collectors for the image loader and
// its HTTP front end.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup results
const (
	LookupHit    = "hit"
	LookupMiss   = "miss"
	LookupBypass = "bypass"
)

// Fetch outcomes
const (
	OutcomeStored       = "stored"
	OutcomeTransport    = "transport_error"
	OutcomeInvalidImage = "invalid_image"
	OutcomeShared       = "shared"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	CacheLookups    *prometheus.CounterVec
	CacheEntries    prometheus.Gauge
	Fetches         *prometheus.CounterVec
	FetchDuration   prometheus.Histogram
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics with the given registerer
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fastimage",
			Name:      "cache_lookups_total",
			Help:      "Image cache lookups by result.",
		}, []string{"result"}),

		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fastimage",
			Name:      "cache_entries",
			Help:      "Number of images held by the cache.",
		}),

		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fastimage",
			Name:      "fetches_total",
			Help:      "Network image fetches by outcome.",
		}, []string{"outcome"}),

		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fastimage",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent downloading and decoding an image.",
			Buckets:   prometheus.DefBuckets,
		}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fastimage",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fastimage",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		m.CacheLookups,
		m.CacheEntries,
		m.Fetches,
		m.FetchDuration,
		m.RequestsTotal,
		m.RequestDuration,
	)

	return m
}

func (m *Metrics) Lookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) Fetch(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(outcome).Inc()
	if outcome != OutcomeShared {
		m.FetchDuration.Observe(seconds)
	}
}

func (m *Metrics) Entries(n int) {
	if m == nil {
		return
	}
	m.CacheEntries.Set(float64(n))
}
