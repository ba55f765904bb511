package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railwatch/railwatch-go/internal/conf"
)

func TestNewMetricsRegistersCollectors(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	require.NotNil(t, m.Sync)
	require.NotNil(t, m.Lifecycle)

	families, err := m.registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetricsEndpointServesRecordedValues(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.Sync.RecordFetch("success")
	m.Sync.RecordPublish()
	m.Sync.SetSnapshotSize(12)
	m.Lifecycle.RecordMutation("resolve", "success")
	m.Lifecycle.RecordRejection("reopen", "unauthorized")

	mux := http.NewServeMux()
	m.RegisterHandlers(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `defect_fetches_total{status="success"} 1`)
	assert.Contains(t, body, `defect_snapshot_size 12`)
	assert.Contains(t, body, `defect_mutations_total{status="success",transition="resolve"} 1`)
	assert.Contains(t, body, `defect_mutation_rejections_total{reason="unauthorized",transition="reopen"} 1`)
}

func TestNewEndpointRequiresTelemetryEnabled(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	settings := &conf.Settings{}
	_, err = NewEndpoint(settings, m)
	require.Error(t, err)

	settings.Telemetry.Enabled = true
	settings.Telemetry.Listen = "127.0.0.1:0"
	endpoint, err := NewEndpoint(settings, m)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", endpoint.listenAddress)
}
