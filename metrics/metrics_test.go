package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveProvider(t *testing.T) {
	m := New()
	m.ObserveProvider("open-meteo", "success", 120*time.Millisecond)
	m.ObserveProvider("open-meteo", "success", 80*time.Millisecond)
	m.ObserveProvider("7timer", "error", time.Second)
	m.ObserveRetry("7timer")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProviderRequests.WithLabelValues("open-meteo", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderRequests.WithLabelValues("7timer", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderRetries.WithLabelValues("7timer")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveProvider("x", "success", time.Second)
		m.ObserveRetry("x")
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.WebSocketClients.Set(3)
	m.LastRefresh.WithLabelValues("7timer").SetToCurrentTime()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "stargazing_websocket_clients 3")
	assert.Contains(t, string(body), `stargazing_forecast_last_refresh_timestamp_seconds{source="7timer"}`)
}

func TestIndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.WebSocketClients.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.WebSocketClients))
}
