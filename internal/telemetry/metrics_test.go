package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.Lookup(LookupHit)
	m.Lookup(LookupHit)
	m.Lookup(LookupMiss)
	m.Fetch(OutcomeStored, 0.2)
	m.Fetch(OutcomeShared, 0)
	m.Entries(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues(LookupHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues(LookupMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fetches.WithLabelValues(OutcomeStored)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fetches.WithLabelValues(OutcomeShared)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CacheEntries))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FetchDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Lookup(LookupHit)
		m.Fetch(OutcomeStored, 1)
		m.Entries(1)
	})
}
