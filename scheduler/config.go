package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/devskill-org/stargazing/scoring"
)

// Environment variables that override the JSON configuration
const (
	EnvPostgresConn = "STARGAZING_POSTGRES_CONN"
	EnvUserAgent    = "STARGAZING_USER_AGENT"
	EnvHTTPPort     = "STARGAZING_HTTP_PORT"
)

// Config represents the configuration of the forecast service
type Config struct {
	// Observer
	Latitude  float64 `json:"latitude"`  // degrees, north positive
	Longitude float64 `json:"longitude"` // degrees, east positive
	Elevation float64 `json:"elevation"` // meters
	Timezone  string  `json:"timezone"`  // IANA name used for night hours and calendar days

	// Providers
	UserAgent       string `json:"user_agent"`        // sent to every provider, MET Norway requires contact info
	OpenMeteoURL    string `json:"open_meteo_url"`    // empty = public endpoint
	SevenTimerURL   string `json:"seven_timer_url"`   // empty = public endpoint
	MetNorwayURL    string `json:"met_norway_url"`    // empty = public endpoint
	EnableMetNorway bool   `json:"enable_met_norway"` // fetch MET Norway as a third source

	// Scheduling
	RefreshInterval time.Duration `json:"refresh_interval"` // How often forecasts are refreshed
	APITimeout      time.Duration `json:"api_timeout"`      // Timeout for one provider call
	CacheDuration   time.Duration `json:"cache_duration"`   // How long a cached forecast is served
	DryRun          bool          `json:"dry_run"`          // Skip database writes

	// Alerts
	AlertMaxCloud        int `json:"alert_max_cloud"`
	AlertMinSeeing       int `json:"alert_min_seeing"`
	AlertMinTransparency int `json:"alert_min_transparency"`

	// Server and storage
	HTTPPort           int    `json:"http_port"`            // 0 disables the web server
	WebDir             string `json:"web_dir"`              // static UI bundle served at /
	PostgresConnString string `json:"postgres_conn_string"` // empty disables persistence

	// Logging settings
	LogLevel  string `json:"log_level"`  // Log level: debug, info, warn, error
	LogFormat string `json:"log_format"` // Log format: text, json
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	alerts := scoring.DefaultAlertCriteria()
	return &Config{
		Latitude:             56.9496, // Riga, Latvia
		Longitude:            24.1052,
		Elevation:            7,
		Timezone:             "Europe/Riga",
		UserAgent:            "stargazing/1.0 (username@example.com)",
		RefreshInterval:      time.Hour,
		APITimeout:           30 * time.Second,
		CacheDuration:        3 * time.Hour,
		AlertMaxCloud:        alerts.MaxCloud,
		AlertMinSeeing:       alerts.MinSeeing,
		AlertMinTransparency: alerts.MinTransparency,
		HTTPPort:             0,
		WebDir:               "./web/dist",
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

// LoadConfig loads configuration from a JSON file and applies environment overrides
func LoadConfig(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	config := DefaultConfig()

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config JSON: %w", err)
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadDotEnv reads a .env file into the process environment. A missing file is not an error.
func LoadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// ApplyEnv overrides secrets and deployment specific values from the environment
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvPostgresConn); v != "" {
		c.PostgresConnString = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv(EnvHTTPPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHTTPPort, err)
		}
		c.HTTPPort = port
	}
	return nil
}

// SaveConfig saves the configuration to a JSON file
func (c *Config) SaveConfig(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	return c.SaveConfigToWriter(file)
}

// SaveConfigToWriter saves the configuration to an io.Writer
func (c *Config) SaveConfigToWriter(writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config JSON: %w", err)
	}

	return nil
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got: %f", c.Latitude)
	}

	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got: %f", c.Longitude)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user_agent cannot be empty")
	}

	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be greater than 0, got: %s", c.RefreshInterval)
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be greater than 0, got: %s", c.APITimeout)
	}

	if c.CacheDuration < c.RefreshInterval {
		return fmt.Errorf("cache_duration (%s) must not be shorter than refresh_interval (%s)", c.CacheDuration, c.RefreshInterval)
	}

	if c.AlertMaxCloud < 1 || c.AlertMaxCloud > 9 {
		return fmt.Errorf("alert_max_cloud must be between 1 and 9, got: %d", c.AlertMaxCloud)
	}

	if c.AlertMinSeeing < 1 || c.AlertMinSeeing > 8 {
		return fmt.Errorf("alert_min_seeing must be between 1 and 8, got: %d", c.AlertMinSeeing)
	}

	if c.AlertMinTransparency < 1 || c.AlertMinTransparency > 8 {
		return fmt.Errorf("alert_min_transparency must be between 1 and 8, got: %d", c.AlertMinTransparency)
	}

	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port must be between 0 and 65535, got: %d", c.HTTPPort)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level: %s, must be one of: debug, info, warn, error", c.LogLevel)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("invalid log_format: %s, must be one of: text, json", c.LogFormat)
	}

	return nil
}

// TimeLocation returns the configured timezone, falling back to UTC
func (c *Config) TimeLocation() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AlertCriteria returns the alert thresholds, always restricted to night hours
func (c *Config) AlertCriteria() scoring.AlertCriteria {
	return scoring.AlertCriteria{
		MaxCloud:        c.AlertMaxCloud,
		MinSeeing:       c.AlertMinSeeing,
		MinTransparency: c.AlertMinTransparency,
		NightOnly:       true,
	}
}

// MarshalJSON implements custom JSON marshaling to handle durations
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		RefreshInterval string `json:"refresh_interval"`
		APITimeout      string `json:"api_timeout"`
		CacheDuration   string `json:"cache_duration"`
	}{
		Alias:           (*Alias)(c),
		RefreshInterval: c.RefreshInterval.String(),
		APITimeout:      c.APITimeout.String(),
		CacheDuration:   c.CacheDuration.String(),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling to handle durations
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config
	aux := &struct {
		*Alias
		RefreshInterval string `json:"refresh_interval"`
		APITimeout      string `json:"api_timeout"`
		CacheDuration   string `json:"cache_duration"`
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if aux.RefreshInterval != "" {
		if c.RefreshInterval, err = time.ParseDuration(aux.RefreshInterval); err != nil {
			return fmt.Errorf("invalid refresh_interval: %w", err)
		}
	}

	if aux.APITimeout != "" {
		if c.APITimeout, err = time.ParseDuration(aux.APITimeout); err != nil {
			return fmt.Errorf("invalid api_timeout: %w", err)
		}
	}

	if aux.CacheDuration != "" {
		if c.CacheDuration, err = time.ParseDuration(aux.CacheDuration); err != nil {
			return fmt.Errorf("invalid cache_duration: %w", err)
		}
	}

	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
