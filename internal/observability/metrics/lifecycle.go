package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics contains Prometheus metrics for defect lifecycle operations
type LifecycleMetrics struct {
	mutationsTotal     *prometheus.CounterVec
	rejectionsTotal    *prometheus.CounterVec
	mutationDuration   *prometheus.HistogramVec
	bulkDeleteSize     prometheus.Histogram
	reconciliesTotal   prometheus.Counter
	exportsTotal       *prometheus.CounterVec
	exportPayloadBytes prometheus.Histogram
}

// NewLifecycleMetrics creates and registers new lifecycle metrics
func NewLifecycleMetrics(registry *prometheus.Registry) (*LifecycleMetrics, error) {
	m := &LifecycleMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *LifecycleMetrics) initMetrics() {
	m.mutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "defect_mutations_total",
			Help: "Lifecycle mutations dispatched to the detection service",
		},
		[]string{"transition", "status"}, // transition: resolve, reopen, delete, bulk_delete
	)

	m.rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "defect_mutation_rejections_total",
			Help: "Mutations rejected client-side before any network dispatch",
		},
		[]string{"transition", "reason"}, // reason: unauthorized, invalid_transition, not_found, empty_selection
	)

	m.mutationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "defect_mutation_duration_seconds",
			Help:    "Time taken for lifecycle mutation requests",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"transition"},
	)

	m.bulkDeleteSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "defect_bulk_delete_size",
		Help:    "Number of records per bulk delete request",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	m.reconciliesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "defect_reconciliations_total",
		Help: "Full refetches forced after successful mutations",
	})

	m.exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "defect_exports_total",
			Help: "Report export requests",
		},
		[]string{"status"},
	)

	m.exportPayloadBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "defect_export_payload_bytes",
		Help:    "Size of exported report artifacts",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})
}

// RecordMutation counts a dispatched mutation and its outcome
func (m *LifecycleMetrics) RecordMutation(transition, status string) {
	m.mutationsTotal.WithLabelValues(transition, status).Inc()
}

// RecordRejection counts a client-side pre-dispatch rejection
func (m *LifecycleMetrics) RecordRejection(transition, reason string) {
	m.rejectionsTotal.WithLabelValues(transition, reason).Inc()
}

// RecordMutationDuration observes the duration of a mutation request
func (m *LifecycleMetrics) RecordMutationDuration(transition string, seconds float64) {
	m.mutationDuration.WithLabelValues(transition).Observe(seconds)
}

// RecordBulkDeleteSize observes the record count of a bulk delete
func (m *LifecycleMetrics) RecordBulkDeleteSize(n int) {
	m.bulkDeleteSize.Observe(float64(n))
}

// RecordReconciliation counts a post-mutation reconciliation refetch
func (m *LifecycleMetrics) RecordReconciliation() {
	m.reconciliesTotal.Inc()
}

// RecordExport counts an export request and its outcome
func (m *LifecycleMetrics) RecordExport(status string) {
	m.exportsTotal.WithLabelValues(status).Inc()
}

// RecordExportPayload observes the exported artifact size
func (m *LifecycleMetrics) RecordExportPayload(bytes int) {
	m.exportPayloadBytes.Observe(float64(bytes))
}

// Describe implements the Collector interface
func (m *LifecycleMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.mutationsTotal.Describe(ch)
	m.rejectionsTotal.Describe(ch)
	m.mutationDuration.Describe(ch)
	m.bulkDeleteSize.Describe(ch)
	m.reconciliesTotal.Describe(ch)
	m.exportsTotal.Describe(ch)
	m.exportPayloadBytes.Describe(ch)
}

// Collect implements the Collector interface
func (m *LifecycleMetrics) Collect(ch chan<- prometheus.Metric) {
	m.mutationsTotal.Collect(ch)
	m.rejectionsTotal.Collect(ch)
	m.mutationDuration.Collect(ch)
	m.bulkDeleteSize.Collect(ch)
	m.reconciliesTotal.Collect(ch)
	m.exportsTotal.Collect(ch)
	m.exportPayloadBytes.Collect(ch)
}
