package openmeteo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devskill-org/stargazing/forecast"
	"github.com/devskill-org/stargazing/resilience"
)

const fixture = `{
  "latitude": 56.95,
  "longitude": 24.1,
  "elevation": 7,
  "timezone": "UTC",
  "hourly_units": {"cloud_cover": "%", "visibility": "m"},
  "hourly": {
    "time": ["2025-10-15T21:00", "2025-10-15T22:00", "2025-10-15T23:00"],
    "cloud_cover": [10, 95, null],
    "cloud_cover_high": [0, 20, 80],
    "cloud_cover_mid": [5, 60, 0],
    "cloud_cover_low": [10, 90, 0],
    "visibility": [24000, 3000, 30000],
    "relative_humidity_2m": [70, 95, 60],
    "temperature_2m": [6.5, 7.1, 5.9],
    "dew_point_2m": [1.2, 6.3, 0.5],
    "wind_speed_10m": [2.1, 8.4, 1.0],
    "wind_direction_10m": [210, 230, 200],
    "pressure_msl": [1021.3, 1004.2, 1020.0],
    "temperature_850hPa": [0.4, -5.0],
    "wind_speed_500hPa": [20.0, 60.0]
  }
}`

func fastDoer(srv *httptest.Server) *resilience.Doer {
	cfg := resilience.DefaultConfig("open-meteo")
	cfg.Backoff = resilience.BackoffConfig{MaxRetries: 1, InitialInterval: time.Millisecond}
	cfg.RatePerSecond = 0
	return resilience.New(srv.Client(), cfg)
}

func TestGetHourly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "56.9496", q.Get("latitude"))
		assert.Equal(t, "24.1052", q.Get("longitude"))
		assert.Equal(t, "ms", q.Get("wind_speed_unit"))
		assert.Equal(t, "UTC", q.Get("timezone"))
		assert.Equal(t, "3", q.Get("forecast_days"))
		assert.Contains(t, q.Get("hourly"), "cloud_cover_high")
		assert.Contains(t, q.Get("hourly"), "temperature_850hPa")
		assert.Equal(t, "TestApp/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixture))
	}))
	defer srv.Close()

	client := NewClientWithHTTPClient(srv.Client(), "TestApp/1.0")
	client.SetBaseURL(srv.URL)

	resp, err := client.GetHourly(context.Background(), 56.9496, 24.1052)
	require.NoError(t, err)
	assert.Equal(t, "UTC", resp.Timezone)
	require.Len(t, resp.Hourly.Time, 3)

	samples, err := resp.Samples()
	require.NoError(t, err)
	require.Len(t, samples, 3)

	first := samples[0]
	assert.Equal(t, time.Date(2025, 10, 15, 21, 0, 0, 0, time.UTC), first.Time)
	require.NotNil(t, first.CloudCover)
	assert.Equal(t, 10.0, *first.CloudCover)
	assert.Equal(t, 1021.3, *first.Pressure)
	assert.Equal(t, 0.4, *first.Temperature850)

	last := samples[2]
	assert.Nil(t, last.CloudCover, "null values stay nil")
	assert.Nil(t, last.Temperature850, "short arrays leave trailing hours nil")
	assert.Nil(t, last.WindSpeed500)
	assert.Equal(t, 80.0, *last.CloudCoverHigh)
}

func TestSamplesNormalize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fixture))
	}))
	defer srv.Close()

	client := NewClientWithHTTPClient(srv.Client(), "TestApp/1.0")
	client.SetBaseURL(srv.URL)

	resp, err := client.GetHourly(context.Background(), 56.9496, 24.1052)
	require.NoError(t, err)
	samples, err := resp.Samples()
	require.NoError(t, err)

	records := forecast.Normalize(samples, forecast.SourceOpenMeteo, time.Date(2025, 10, 15, 21, 30, 0, 0, time.UTC))
	require.Len(t, records, 3)
	assert.Less(t, records[0].CloudCover, records[1].CloudCover)
	assert.Greater(t, records[0].Transparency, records[1].Transparency)
	assert.Greater(t, records[0].Seeing, records[1].Seeing)
}

func TestGetHourlyAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": true, "reason": "Cannot initialize WeatherVariable from invalid String value"}`))
	}))
	defer srv.Close()

	client := NewClientWithHTTPClient(srv.Client(), "TestApp/1.0")
	client.SetBaseURL(srv.URL)

	_, err := client.GetHourly(context.Background(), 10, 10)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Reason, "WeatherVariable")
}

func TestGetHourlyRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(fixture))
	}))
	defer srv.Close()

	client := NewClientWithHTTPClient(srv.Client(), "TestApp/1.0")
	client.SetBaseURL(srv.URL)
	client.SetDoer(fastDoer(srv))

	_, err := client.GetHourly(context.Background(), 10, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestGetHourlyValidation(t *testing.T) {
	client := NewClient("TestApp/1.0")

	_, err := client.GetHourly(context.Background(), 91, 0)
	assert.Error(t, err)
	_, err = client.GetHourly(context.Background(), 0, -181)
	assert.Error(t, err)
}

func TestSamplesBadTime(t *testing.T) {
	r := &Response{Hourly: Hourly{Time: []string{"yesterday"}}}
	_, err := r.Samples()
	assert.Error(t, err)
}

func TestSetForecastDays(t *testing.T) {
	client := NewClient("TestApp/1.0")
	client.SetForecastDays(7)
	assert.Equal(t, 7, client.forecastDays)
	client.SetForecastDays(40)
	assert.Equal(t, 7, client.forecastDays)
}
