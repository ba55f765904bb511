// Package observability provides Prometheus metrics functionality for
// monitoring the RailWatch client.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	metricspkg "github.com/railwatch/railwatch-go/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry  *prometheus.Registry
	Sync      *metricspkg.SyncMetrics
	Lifecycle *metricspkg.LifecycleMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric collectors.
// It returns an error if any metric collector fails to initialize.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	syncMetrics, err := metricspkg.NewSyncMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync metrics: %w", err)
	}

	lifecycleMetrics, err := metricspkg.NewLifecycleMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create lifecycle metrics: %w", err)
	}

	return &Metrics{
		registry:  registry,
		Sync:      syncMetrics,
		Lifecycle: lifecycleMetrics,
	}, nil
}

// RegisterHandlers registers the metrics HTTP handlers on the given mux.
func (m *Metrics) RegisterHandlers(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
