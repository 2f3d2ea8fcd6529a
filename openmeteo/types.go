package openmeteo

import (
	"fmt"
	"time"

	"github.com/devskill-org/stargazing/forecast"
)

// TimeLayout is the ISO-8601 layout Open-Meteo uses for hourly timestamps
const TimeLayout = "2006-01-02T15:04"

// Response is the subset of the forecast payload the service consumes
type Response struct {
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	Elevation   float64           `json:"elevation"`
	Timezone    string            `json:"timezone"`
	HourlyUnits map[string]string `json:"hourly_units"`
	Hourly      Hourly            `json:"hourly"`
}

// Hourly holds parallel arrays indexed like Time. Values may be null.
type Hourly struct {
	Time             []string   `json:"time"`
	CloudCover       []*float64 `json:"cloud_cover"`
	CloudCoverHigh   []*float64 `json:"cloud_cover_high"`
	CloudCoverMid    []*float64 `json:"cloud_cover_mid"`
	CloudCoverLow    []*float64 `json:"cloud_cover_low"`
	Visibility       []*float64 `json:"visibility"`
	RelativeHumidity []*float64 `json:"relative_humidity_2m"`
	Temperature      []*float64 `json:"temperature_2m"`
	DewPoint         []*float64 `json:"dew_point_2m"`
	WindSpeed        []*float64 `json:"wind_speed_10m"`
	WindDirection    []*float64 `json:"wind_direction_10m"`
	PressureMSL      []*float64 `json:"pressure_msl"`
	Temperature850   []*float64 `json:"temperature_850hPa"`
	WindSpeed500     []*float64 `json:"wind_speed_500hPa"`
}

// Samples converts the hourly arrays into raw samples. A variable array
// shorter than Time leaves the field nil for the missing hours.
func (r *Response) Samples() ([]forecast.RawWeatherSample, error) {
	h := r.Hourly
	samples := make([]forecast.RawWeatherSample, 0, len(h.Time))

	for i, ts := range h.Time {
		t, err := time.ParseInLocation(TimeLayout, ts, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid hourly time %q: %w", ts, err)
		}

		samples = append(samples, forecast.RawWeatherSample{
			Time:           t,
			CloudCover:     at(h.CloudCover, i),
			CloudCoverHigh: at(h.CloudCoverHigh, i),
			CloudCoverMid:  at(h.CloudCoverMid, i),
			CloudCoverLow:  at(h.CloudCoverLow, i),
			Visibility:     at(h.Visibility, i),
			Humidity:       at(h.RelativeHumidity, i),
			Temperature:    at(h.Temperature, i),
			DewPoint:       at(h.DewPoint, i),
			WindSpeed:      at(h.WindSpeed, i),
			WindDirection:  at(h.WindDirection, i),
			Pressure:       at(h.PressureMSL, i),
			Temperature850: at(h.Temperature850, i),
			WindSpeed500:   at(h.WindSpeed500, i),
		})
	}
	return samples, nil
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}
