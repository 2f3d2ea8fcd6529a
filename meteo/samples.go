package meteo

import (
	"time"

	"github.com/devskill-org/stargazing/forecast"
)

// The API has no visibility field. Fog thins the default visibility linearly,
// so 30 % fog already counts as poor and 70 % as very poor visibility.
func visibilityFromFog(fog *float64) *float64 {
	if fog == nil {
		return nil
	}
	f := *fog
	if f < 0 {
		f = 0
	}
	if f > 100 {
		f = 100
	}
	return forecast.Float64Ptr(forecast.DefaultVisibility * (1 - f/100))
}

func (ts *TimeStep) details() *InstantDetails {
	if ts == nil || ts.Data == nil || ts.Data.Instant == nil {
		return nil
	}
	return ts.Data.Instant.Details
}

// Sample maps the instant details of a time step. ok is false when the step has none.
func (ts *TimeStep) Sample() (s forecast.RawWeatherSample, ok bool) {
	d := ts.details()
	if d == nil {
		return forecast.RawWeatherSample{}, false
	}
	return forecast.RawWeatherSample{
		Time:           ts.Time.UTC(),
		CloudCover:     d.CloudAreaFraction,
		CloudCoverHigh: d.CloudAreaFractionHigh,
		CloudCoverMid:  d.CloudAreaFractionMedium,
		CloudCoverLow:  d.CloudAreaFractionLow,
		Visibility:     visibilityFromFog(d.FogAreaFraction),
		Humidity:       d.RelativeHumidity,
		Temperature:    d.AirTemperature,
		DewPoint:       d.DewPointTemperature,
		WindSpeed:      d.WindSpeed,
		WindDirection:  d.WindFromDirection,
		Pressure:       d.AirPressureAtSeaLevel,
	}, true
}

// Samples maps every time step that carries instant details
func (f *METJSONForecast) Samples() []forecast.RawWeatherSample {
	if f == nil || f.Properties == nil {
		return nil
	}
	return StepSamples(f.Properties.Timeseries)
}

// Hourly keeps the steps on whole hours within horizon of from. The timeseries
// switches to 6-hourly steps after about two and a half days, so the result
// ends at the first step more than an hour after the one before it.
func (f *METJSONForecast) Hourly(from time.Time, horizon time.Duration) []TimeStep {
	if f == nil || f.Properties == nil {
		return nil
	}
	end := from.Add(horizon)
	var out []TimeStep
	for _, step := range f.Properties.Timeseries {
		if step.Time.Before(from) || step.Time.After(end) {
			continue
		}
		if step.Time.Minute() != 0 {
			continue
		}
		if n := len(out); n > 0 && step.Time.Sub(out[n-1].Time) > time.Hour {
			break
		}
		out = append(out, step)
	}
	return out
}

// StepSamples maps the steps that carry instant details
func StepSamples(steps []TimeStep) []forecast.RawWeatherSample {
	out := make([]forecast.RawWeatherSample, 0, len(steps))
	for i := range steps {
		if s, ok := steps[i].Sample(); ok {
			out = append(out, s)
		}
	}
	return out
}

// SymbolCode returns the symbol for the shortest period available
func (ts *TimeStep) SymbolCode() (WeatherSymbol, bool) {
	if ts == nil || ts.Data == nil {
		return "", false
	}
	for _, p := range []*PeriodData{ts.Data.Next1Hours, ts.Data.Next6Hours, ts.Data.Next12Hours} {
		if p != nil && p.Summary != nil {
			return p.Summary.SymbolCode, true
		}
	}
	return "", false
}

// HasPrecipitation reports rain or snow in the next hour, or the next six when
// the hourly period is absent
func (ts *TimeStep) HasPrecipitation() bool {
	if ts == nil || ts.Data == nil {
		return false
	}
	for _, p := range []*PeriodData{ts.Data.Next1Hours, ts.Data.Next6Hours} {
		if p != nil && p.Details != nil && p.Details.PrecipitationAmount != nil {
			return *p.Details.PrecipitationAmount > 0
		}
	}
	return false
}
