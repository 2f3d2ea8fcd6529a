// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered on one registry
type Metrics struct {
	registry *prometheus.Registry

	ProviderRequests *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec
	ProviderRetries  *prometheus.CounterVec
	RefreshDuration  prometheus.Histogram
	RefreshErrors    *prometheus.CounterVec
	LastRefresh      *prometheus.GaugeVec
	RecordsScored    *prometheus.CounterVec
	BestWindowScore  *prometheus.GaugeVec
	WebSocketClients prometheus.Gauge
}

// New registers every collector on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ProviderRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stargazing_provider_requests_total",
			Help: "Provider HTTP requests by outcome",
		}, []string{"provider", "outcome"}),
		ProviderLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stargazing_provider_request_duration_seconds",
			Help:    "Provider HTTP request latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		ProviderRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stargazing_provider_retries_total",
			Help: "Provider HTTP retries",
		}, []string{"provider"}),
		RefreshDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stargazing_forecast_refresh_duration_seconds",
			Help:    "Time taken by a full forecast refresh",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		RefreshErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stargazing_forecast_refresh_errors_total",
			Help: "Failed forecast refreshes by source",
		}, []string{"source"}),
		LastRefresh: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stargazing_forecast_last_refresh_timestamp_seconds",
			Help: "Unix time of the last successful refresh by source",
		}, []string{"source"}),
		RecordsScored: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stargazing_records_scored_total",
			Help: "Forecast hours normalized and scored",
		}, []string{"source"}),
		BestWindowScore: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stargazing_best_window_score",
			Help: "Average score of the best two-hour night window",
		}, []string{"source"}),
		WebSocketClients: f.NewGauge(prometheus.GaugeOpts{
			Name: "stargazing_websocket_clients",
			Help: "Connected WebSocket clients",
		}),
	}
}

// Registry exposes the underlying registry, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveProvider records one provider request. A nil receiver is a no-op.
func (m *Metrics) ObserveProvider(provider, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.ProviderRequests.WithLabelValues(provider, outcome).Inc()
	m.ProviderLatency.WithLabelValues(provider).Observe(took.Seconds())
}

// ObserveRetry counts a retry. A nil receiver is a no-op.
func (m *Metrics) ObserveRetry(provider string) {
	if m == nil {
		return
	}
	m.ProviderRetries.WithLabelValues(provider).Inc()
}
