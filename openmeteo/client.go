// Package openmeteo fetches hourly cloud layer and upper-air forecasts from the
// Open-Meteo forecast API and maps them onto forecast.RawWeatherSample.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/devskill-org/stargazing/resilience"
)

const (
	DefaultBaseURL      = "https://api.open-meteo.com/v1/forecast"
	DefaultForecastDays = 3
)

// HourlyVariables are requested on every call
var HourlyVariables = []string{
	"cloud_cover",
	"cloud_cover_high",
	"cloud_cover_mid",
	"cloud_cover_low",
	"visibility",
	"relative_humidity_2m",
	"temperature_2m",
	"dew_point_2m",
	"wind_speed_10m",
	"wind_direction_10m",
	"pressure_msl",
	"temperature_850hPa",
	"wind_speed_500hPa",
}

// Client represents a client for the Open-Meteo forecast API
type Client struct {
	doer         *resilience.Doer
	baseURL      string
	userAgent    string
	forecastDays int
}

// NewClient creates a new client with a 30 second timeout
func NewClient(userAgent string) *Client {
	return NewClientWithHTTPClient(&http.Client{Timeout: 30 * time.Second}, userAgent)
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client
func NewClientWithHTTPClient(httpClient *http.Client, userAgent string, opts ...resilience.Option) *Client {
	return &Client{
		doer:         resilience.New(httpClient, resilience.DefaultConfig("open-meteo"), opts...),
		baseURL:      DefaultBaseURL,
		userAgent:    userAgent,
		forecastDays: DefaultForecastDays,
	}
}

// SetBaseURL sets the base URL for the API (useful for testing)
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetDoer replaces the resilience wrapper
func (c *Client) SetDoer(d *resilience.Doer) {
	c.doer = d
}

// SetForecastDays limits how far ahead the forecast reaches (1-16)
func (c *Client) SetForecastDays(days int) {
	if days >= 1 && days <= 16 {
		c.forecastDays = days
	}
}

// GetHourly retrieves the hourly forecast for a location. Times are UTC and
// wind speeds are in m/s.
func (c *Client) GetHourly(ctx context.Context, lat, lon float64) (*Response, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("latitude must be between -90 and 90, got %f", lat)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("longitude must be between -180 and 180, got %f", lon)
	}

	reqURL, err := c.buildURL(lat, lon)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	resp, err := c.doer.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Reason: strings.TrimSpace(string(body))}
		var payload struct {
			Reason string `json:"reason"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Reason != "" {
			apiErr.Reason = payload.Reason
		}
		return nil, apiErr
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &out, nil
}

func (c *Client) buildURL(lat, lon float64) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	query := u.Query()
	query.Set("latitude", formatFloat(lat))
	query.Set("longitude", formatFloat(lon))
	query.Set("hourly", strings.Join(HourlyVariables, ","))
	query.Set("wind_speed_unit", "ms")
	query.Set("timezone", "UTC")
	query.Set("forecast_days", strconv.Itoa(c.forecastDays))

	u.RawQuery = query.Encode()
	return u.String(), nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// APIError represents an error returned by Open-Meteo
type APIError struct {
	StatusCode int
	Reason     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("open-meteo API error %d: %s", e.StatusCode, e.Reason)
}
