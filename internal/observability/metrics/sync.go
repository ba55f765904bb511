// Package metrics provides Prometheus metric collectors for the RailWatch
// client services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics contains Prometheus metrics for defect synchronizer operations
type SyncMetrics struct {
	fetchesTotal           *prometheus.CounterVec
	fetchesSkippedTotal    prometheus.Counter
	fetchDuration          prometheus.Histogram
	publishesTotal         prometheus.Counter
	publishSuppressedTotal prometheus.Counter
	invalidationsTotal     prometheus.Counter
	snapshotSizeGauge      prometheus.Gauge
}

// NewSyncMetrics creates and registers new synchronizer metrics
func NewSyncMetrics(registry *prometheus.Registry) (*SyncMetrics, error) {
	m := &SyncMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SyncMetrics) initMetrics() {
	m.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "defect_fetches_total",
			Help: "Total number of defect set fetch attempts",
		},
		[]string{"status"}, // status: success, error
	)

	m.fetchesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "defect_fetches_skipped_total",
		Help: "Poll cycles skipped because a fetch was still in flight",
	})

	m.fetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "defect_fetch_duration_seconds",
		Help: "Time taken to fetch the defect set",
		// Buckets cover typical API response times: 100ms to ~50s
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	m.publishesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "defect_snapshot_publishes_total",
		Help: "Snapshot publications to subscribers",
	})

	m.publishSuppressedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "defect_snapshot_publishes_suppressed_total",
		Help: "Fetches whose result equaled the current snapshot and were not republished",
	})

	m.invalidationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "defect_snapshot_invalidations_total",
		Help: "Mutation-triggered snapshot invalidations",
	})

	m.snapshotSizeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "defect_snapshot_size",
		Help: "Number of defect records in the current snapshot",
	})
}

// RecordFetch increments the fetch counter for the given outcome
func (m *SyncMetrics) RecordFetch(status string) {
	m.fetchesTotal.WithLabelValues(status).Inc()
}

// RecordFetchSkipped counts a poll cycle skipped by the in-flight guard
func (m *SyncMetrics) RecordFetchSkipped() {
	m.fetchesSkippedTotal.Inc()
}

// RecordFetchDuration observes the duration of a fetch attempt
func (m *SyncMetrics) RecordFetchDuration(seconds float64) {
	m.fetchDuration.Observe(seconds)
}

// RecordPublish counts a snapshot publication
func (m *SyncMetrics) RecordPublish() {
	m.publishesTotal.Inc()
}

// RecordPublishSuppressed counts a suppressed (unchanged) publication
func (m *SyncMetrics) RecordPublishSuppressed() {
	m.publishSuppressedTotal.Inc()
}

// RecordInvalidation counts a mutation-triggered invalidation
func (m *SyncMetrics) RecordInvalidation() {
	m.invalidationsTotal.Inc()
}

// SetSnapshotSize updates the snapshot size gauge
func (m *SyncMetrics) SetSnapshotSize(n int) {
	m.snapshotSizeGauge.Set(float64(n))
}

// Describe implements the Collector interface
func (m *SyncMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.fetchesTotal.Describe(ch)
	m.fetchesSkippedTotal.Describe(ch)
	m.fetchDuration.Describe(ch)
	m.publishesTotal.Describe(ch)
	m.publishSuppressedTotal.Describe(ch)
	m.invalidationsTotal.Describe(ch)
	m.snapshotSizeGauge.Describe(ch)
}

// Collect implements the Collector interface
func (m *SyncMetrics) Collect(ch chan<- prometheus.Metric) {
	m.fetchesTotal.Collect(ch)
	m.fetchesSkippedTotal.Collect(ch)
	m.fetchDuration.Collect(ch)
	m.publishesTotal.Collect(ch)
	m.publishSuppressedTotal.Collect(ch)
	m.invalidationsTotal.Collect(ch)
	m.snapshotSizeGauge.Collect(ch)
}
