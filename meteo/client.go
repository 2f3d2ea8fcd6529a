package meteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/devskill-org/stargazing/resilience"
)

const DefaultBaseURL = "https://api.met.no/weatherapi/locationforecast/2.0"

var errNoUserAgent = errors.New("met.no requires a User-Agent identifying the application")

// Client represents a client for the MET Norway Location Forecast API
type Client struct {
	doer      *resilience.Doer
	baseURL   string
	userAgent string
}

// NewClient creates a new client for the MET Norway Location Forecast API
func NewClient(userAgent string) *Client {
	return NewClientWithHTTPClient(&http.Client{Timeout: 30 * time.Second}, userAgent)
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client
func NewClientWithHTTPClient(httpClient *http.Client, userAgent string, opts ...resilience.Option) *Client {
	cfg := resilience.DefaultConfig("met-norway")
	// MET asks clients to stay under 20 requests per second per application
	cfg.RatePerSecond = 10
	return &Client{
		doer:      resilience.New(httpClient, cfg, opts...),
		baseURL:   DefaultBaseURL,
		userAgent: userAgent,
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

// GetCompact retrieves compact forecast data for the specified location
func (c *Client) GetCompact(ctx context.Context, params QueryParams) (*METJSONForecast, error) {
	return c.getForecast(ctx, "compact", params)
}

// GetComplete retrieves complete forecast data, including cloud layers and fog
func (c *Client) GetComplete(ctx context.Context, params QueryParams) (*METJSONForecast, error) {
	return c.getForecast(ctx, "complete", params)
}

func (c *Client) getForecast(ctx context.Context, endpoint string, params QueryParams) (*METJSONForecast, error) {
	if c.userAgent == "" {
		return nil, errNoUserAgent
	}
	if err := ValidateLocation(params.Location); err != nil {
		return nil, err
	}

	reqURL, err := c.buildURL(endpoint, params)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	resp, err := c.doer.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
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
		return nil, &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var fc METJSONForecast
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &fc, nil
}

func (c *Client) buildURL(endpoint string, params QueryParams) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	u.Path = fmt.Sprintf("%s/%s", u.Path, endpoint)

	// MET truncates coordinates to 4 decimals and caches by URL
	query := u.Query()
	query.Set("lat", formatCoord(params.Location.Latitude))
	query.Set("lon", formatCoord(params.Location.Longitude))
	if params.Location.Altitude != nil {
		query.Set("altitude", strconv.Itoa(*params.Location.Altitude))
	}

	u.RawQuery = query.Encode()
	return u.String(), nil
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

// ValidateLocation validates that the location parameters are within acceptable ranges
func ValidateLocation(loc Location) error {
	if loc.Latitude < -90 || loc.Latitude > 90 {
		return &ValidationError{Field: "latitude", Value: loc.Latitude}
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		return &ValidationError{Field: "longitude", Value: loc.Longitude}
	}
	if loc.Altitude != nil && *loc.Altitude < 0 {
		return &ValidationError{Field: "altitude", Value: float64(*loc.Altitude)}
	}
	return nil
}
