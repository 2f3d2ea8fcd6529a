// Package seventimer fetches the 7Timer ASTRO product, a three-hourly
// astronomy forecast with pre-quantized cloud, seeing and transparency values.
package seventimer

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

const DefaultBaseURL = "https://www.7timer.info/bin/api.pl"

// Client represents a client for the 7Timer API
type Client struct {
	doer      *resilience.Doer
	baseURL   string
	userAgent string
}

// NewClient creates a new client with a 30 second timeout
func NewClient(userAgent string) *Client {
	return NewClientWithHTTPClient(&http.Client{Timeout: 30 * time.Second}, userAgent)
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client
func NewClientWithHTTPClient(httpClient *http.Client, userAgent string, opts ...resilience.Option) *Client {
	return &Client{
		doer:      resilience.New(httpClient, resilience.DefaultConfig("7timer"), opts...),
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

// GetAstro retrieves the ASTRO product for a location
func (c *Client) GetAstro(ctx context.Context, lat, lon float64) (*Response, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("latitude must be between -90 and 90, got %f", lat)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("longitude must be between -180 and 180, got %f", lon)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}
	query := u.Query()
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("product", "astro")
	query.Set("output", "json")
	u.RawQuery = query.Encode()
	reqURL := u.String()

	resp, err := c.doer.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)
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
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if out.Product != "" && out.Product != "astro" {
		return nil, fmt.Errorf("unexpected product %q", out.Product)
	}
	return &out, nil
}

// APIError represents an HTTP error returned by 7Timer
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("7timer API error %d: %s", e.StatusCode, e.Message)
}
