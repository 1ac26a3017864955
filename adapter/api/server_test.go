package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitrack/habitrack/internal/shared/infrastructure/outbox"
	"github.com/habitrack/habitrack/pkg/observability"
)

type fakeOutbox struct {
	stats outbox.Stats
}

func (f fakeOutbox) GetStats() outbox.Stats { return f.stats }

func newTestServer(stats outbox.Stats, health *observability.HealthRegistry, metrics MetricsSnapshot) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(DefaultServerConfig(":0"), fakeOutbox{stats}, health, metrics, logger).Handler()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLiveness(t *testing.T) {
	tests := []struct {
		name     string
		running  bool
		wantCode int
		wantBody string
	}{
		{"running", true, http.StatusOK, "ok"},
		{"stopped", false, http.StatusServiceUnavailable, "stopped"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(outbox.Stats{IsRunning: tt.running}, observability.NewHealthRegistry(), nil)
			rec := get(t, h, "/healthz")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body["status"])
		})
	}
}

func TestReadiness(t *testing.T) {
	down := func(context.Context) error { return errors.New("connection refused") }
	up := func(context.Context) error { return nil }

	tests := []struct {
		name       string
		database   func(context.Context) error
		broker     func(context.Context) error
		wantCode   int
		wantStatus observability.HealthStatus
	}{
		{"all up", up, up, http.StatusOK, observability.HealthStatusHealthy},
		{"broker down is degraded", up, down, http.StatusOK, observability.HealthStatusDegraded},
		{"database down", down, up, http.StatusServiceUnavailable, observability.HealthStatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := observability.NewHealthRegistry()
			registry.Register("database", observability.DatabaseHealthChecker(tt.database))
			registry.Register("broker", observability.BrokerHealthChecker("rabbitmq", tt.broker))

			rec := get(t, newTestServer(outbox.Stats{IsRunning: true}, registry, nil), "/readyz")

			assert.Equal(t, tt.wantCode, rec.Code)
			var body observability.OverallHealth
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Len(t, body.Checks, 2)
		})
	}
}

func TestStats(t *testing.T) {
	metrics := observability.NewInMemoryMetrics()
	metrics.Counter(observability.MetricOperationTotal, 3)

	h := newTestServer(outbox.Stats{IsRunning: true, PublishedCount: 7, DeadCount: 1}, observability.NewHealthRegistry(), metrics)
	rec := get(t, h, "/stats")

	require.Equal(t, http.StatusOK, rec.Code)
	var body statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(7), body.Outbox.PublishedCount)
	assert.Equal(t, uint64(1), body.Outbox.DeadCount)
	assert.NotEmpty(t, body.Counters)
}

func TestUnknownRoute(t *testing.T) {
	h := newTestServer(outbox.Stats{}, observability.NewHealthRegistry(), nil)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/metrics").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, func() int {
		req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}())
}
