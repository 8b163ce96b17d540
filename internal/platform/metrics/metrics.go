package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	Verifications       *prometheus.CounterVec
	VerifyDuration      prometheus.Histogram
	RegionLookupMisses  prometheus.Counter
	BatchSize           prometheus.Histogram
	RegionTableEntries  prometheus.Gauge
	RegionTableReloads  *prometheus.CounterVec
	RegionReloadSeconds prometheus.Histogram
	RegionTableStale    prometheus.Gauge
}

// New creates the metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idverify_verifications_total",
			Help: "Identity numbers verified, by outcome (valid or the rejection reason)",
		}, []string{"outcome"}),
		VerifyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "idverify_verify_duration_seconds",
			Help:    "Time spent validating and decoding a single identity number",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}),
		RegionLookupMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "idverify_region_lookup_misses_total",
			Help: "Valid identity numbers whose region code is absent from the region table",
		}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "idverify_batch_size",
			Help:    "Number of identity numbers per batch request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 6),
		}),
		RegionTableEntries: factory.NewGauge(prometheus.GaugeOpts{
			Name: "idverify_region_table_entries",
			Help: "Entries in the active region table snapshot",
		}),
		RegionTableReloads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idverify_region_table_reloads_total",
			Help: "Region table reload attempts, by result",
		}, []string{"source", "result"}),
		RegionReloadSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "idverify_region_table_reload_duration_seconds",
			Help:    "Time spent loading and swapping in a region table",
			Buckets: prometheus.DefBuckets,
		}),
		RegionTableStale: factory.NewGauge(prometheus.GaugeOpts{
			Name: "idverify_region_table_stale",
			Help: "1 while repeated reload failures keep an old region table in service",
		}),
	}
}

// RecordVerification counts one verification outcome and its latency.
func (m *Metrics) RecordVerification(outcome string, seconds float64) {
	m.Verifications.WithLabelValues(outcome).Inc()
	m.VerifyDuration.Observe(seconds)
}

// IncrementRegionMisses counts a region code absent from the table.
func (m *Metrics) IncrementRegionMisses() {
	m.RegionLookupMisses.Inc()
}

// ObserveBatchSize records the size of a batch request.
func (m *Metrics) ObserveBatchSize(n int) {
	m.BatchSize.Observe(float64(n))
}

// RecordReload records a reload attempt. entries is ignored on failure.
func (m *Metrics) RecordReload(source string, ok bool, entries int, seconds float64) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.RegionTableReloads.WithLabelValues(source, result).Inc()
	m.RegionReloadSeconds.Observe(seconds)
	if ok {
		m.RegionTableEntries.Set(float64(entries))
	}
}

// SetRegionStale flags whether the active region table is stale.
func (m *Metrics) SetRegionStale(stale bool) {
	if stale {
		m.RegionTableStale.Set(1)
		return
	}
	m.RegionTableStale.Set(0)
}
