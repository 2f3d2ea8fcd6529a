package forecast

import "time"

// Source identifies the provider a record was derived from
type Source string

const (
	SourceOpenMeteo  Source = "open-meteo"
	SourceSevenTimer Source = "7timer"
	SourceMetNorway  Source = "met-norway"
)

// Valid reports whether s is one of the known providers
func (s Source) Valid() bool {
	switch s {
	case SourceOpenMeteo, SourceSevenTimer, SourceMetNorway:
		return true
	}
	return false
}

// RawWeatherSample is one hour of provider output mapped onto a common shape.
// Nil fields were not reported by the provider.
type RawWeatherSample struct {
	Time           time.Time `json:"time"`
	CloudCover     *float64  `json:"cloud_cover,omitempty"`      // percent
	CloudCoverHigh *float64  `json:"cloud_cover_high,omitempty"` // percent
	CloudCoverMid  *float64  `json:"cloud_cover_mid,omitempty"`  // percent
	CloudCoverLow  *float64  `json:"cloud_cover_low,omitempty"`  // percent
	Visibility     *float64  `json:"visibility,omitempty"`       // meters
	Humidity       *float64  `json:"humidity,omitempty"`         // percent
	Temperature    *float64  `json:"temperature,omitempty"`      // celsius
	DewPoint       *float64  `json:"dew_point,omitempty"`        // celsius
	WindSpeed      *float64  `json:"wind_speed,omitempty"`       // m/s
	WindDirection  *float64  `json:"wind_direction,omitempty"`   // degrees
	Pressure       *float64  `json:"pressure,omitempty"`         // hPa
	Temperature850 *float64  `json:"temperature_850hpa,omitempty"`
	WindSpeed500   *float64  `json:"wind_speed_500hpa,omitempty"`
}

// AstroSample is one data point of an astronomy feed whose cloud, seeing and
// transparency values are already quantized by the provider.
type AstroSample struct {
	TimepointHours int     `json:"timepoint"`
	CloudCover     int     `json:"cloudcover"`   // 1-9, lower is better
	Seeing         int     `json:"seeing"`       // 1-8, higher is better
	Transparency   int     `json:"transparency"` // 1-8, higher is better
	LiftedIndex    int     `json:"lifted_index"`
	Humidity2m     int     `json:"rh2m"`
	Temperature2m  int     `json:"temp2m"`
	Precipitation  string  `json:"prec_type"`
	WindDirection  string  `json:"wind_direction"`
	WindSpeed      float64 `json:"wind_speed"` // m/s
}

// NormalizedConditionRecord is one provider-agnostic forecast hour.
// Cloud ordinals run 1 (clear) to 9 (overcast).
type NormalizedConditionRecord struct {
	Time         time.Time `json:"time"`
	Source       Source    `json:"source"`
	CloudCover   int       `json:"cloud_cover"`
	HighCloud    int       `json:"high_cloud"`
	MidCloud     int       `json:"mid_cloud"`
	LowCloud     int       `json:"low_cloud"`
	AstroCloud   int       `json:"astro_cloud"`
	Seeing       int       `json:"seeing"`
	Transparency int       `json:"transparency"`

	Temperature   *float64 `json:"temperature,omitempty"`
	WindSpeed     *float64 `json:"wind_speed,omitempty"`
	WindDirection *float64 `json:"wind_direction,omitempty"`
}

// Float64Ptr returns a pointer to v
func Float64Ptr(v float64) *float64 {
	return &v
}
