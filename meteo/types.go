package meteo

import (
	"strings"
	"time"
)

// WeatherSymbol is a MET symbol code such as "partlycloudy_night"
type WeatherSymbol string

// Symbols the service reacts to. The API emits many more.
const (
	ClearSkyNight     WeatherSymbol = "clearsky_night"
	FairNight         WeatherSymbol = "fair_night"
	PartlyCloudyNight WeatherSymbol = "partlycloudy_night"
	Cloudy            WeatherSymbol = "cloudy"
	Fog               WeatherSymbol = "fog"
)

// IsNight reports whether the symbol is a night variant
func (ws WeatherSymbol) IsNight() bool {
	return strings.HasSuffix(string(ws), "_night")
}

// HasThunder reports whether the symbol forecasts thunder
func (ws WeatherSymbol) HasThunder() bool {
	return strings.Contains(string(ws), "thunder")
}

// PointGeometry represents a GeoJSON point geometry
type PointGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [longitude, latitude, altitude]
}

// ForecastMeta contains metadata for the forecast
type ForecastMeta struct {
	UpdatedAt time.Time         `json:"updated_at"`
	Units     map[string]string `json:"units"`
}

// InstantDetails are the values valid at the time step itself
type InstantDetails struct {
	AirPressureAtSeaLevel   *float64 `json:"air_pressure_at_sea_level,omitempty"`
	AirTemperature          *float64 `json:"air_temperature,omitempty"`
	CloudAreaFraction       *float64 `json:"cloud_area_fraction,omitempty"`
	CloudAreaFractionHigh   *float64 `json:"cloud_area_fraction_high,omitempty"`
	CloudAreaFractionLow    *float64 `json:"cloud_area_fraction_low,omitempty"`
	CloudAreaFractionMedium *float64 `json:"cloud_area_fraction_medium,omitempty"`
	DewPointTemperature     *float64 `json:"dew_point_temperature,omitempty"`
	FogAreaFraction         *float64 `json:"fog_area_fraction,omitempty"`
	RelativeHumidity        *float64 `json:"relative_humidity,omitempty"`
	WindFromDirection       *float64 `json:"wind_from_direction,omitempty"`
	WindSpeed               *float64 `json:"wind_speed,omitempty"`
	WindSpeedOfGust         *float64 `json:"wind_speed_of_gust,omitempty"`
}

// PeriodDetails are aggregated over the period that follows the time step
type PeriodDetails struct {
	PrecipitationAmount        *float64 `json:"precipitation_amount,omitempty"`
	ProbabilityOfPrecipitation *float64 `json:"probability_of_precipitation,omitempty"`
}

// Summary names the weather symbol of a period
type Summary struct {
	SymbolCode WeatherSymbol `json:"symbol_code"`
}

// PeriodData contains forecast data for the next 1, 6 or 12 hours
type PeriodData struct {
	Summary *Summary       `json:"summary,omitempty"`
	Details *PeriodDetails `json:"details,omitempty"`
}

// InstantData wraps the instant details
type InstantData struct {
	Details *InstantDetails `json:"details,omitempty"`
}

// TimeStepData contains the instant and period forecasts of a time step
type TimeStepData struct {
	Instant     *InstantData `json:"instant,omitempty"`
	Next1Hours  *PeriodData  `json:"next_1_hours,omitempty"`
	Next6Hours  *PeriodData  `json:"next_6_hours,omitempty"`
	Next12Hours *PeriodData  `json:"next_12_hours,omitempty"`
}

// TimeStep is one entry of the forecast timeseries
type TimeStep struct {
	Time time.Time     `json:"time"`
	Data *TimeStepData `json:"data,omitempty"`
}

// Forecast contains the main forecast data
type Forecast struct {
	Meta       ForecastMeta `json:"meta"`
	Timeseries []TimeStep   `json:"timeseries"`
}

// METJSONForecast represents the root forecast response
type METJSONForecast struct {
	Type       string         `json:"type"`
	Geometry   *PointGeometry `json:"geometry,omitempty"`
	Properties *Forecast      `json:"properties,omitempty"`
}

// Location represents coordinates for a forecast request
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Altitude  *int    `json:"altitude,omitempty"`
}

// QueryParams represents query parameters for forecast requests
type QueryParams struct {
	Location Location `json:"location"`
}
