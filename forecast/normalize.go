package forecast

import (
	"math"
	"sort"
	"time"
)

// StaleTolerance is how far behind the reference instant a sample may be and still be kept
const StaleTolerance = time.Hour

const (
	MinCloudOrdinal = 1
	MaxCloudOrdinal = 9

	MinTransparency = 1
	MaxTransparency = 3

	baseSeeingPenalty = 3
	maxSeeingPenalty  = 2
	seeingScaleTop    = 9
)

// Layer weights for the astronomical cloud blend
const (
	LowCloudWeight  = 0.6
	MidCloudWeight  = 0.3
	HighCloudWeight = 0.1
)

// Thin cirrus floor: clear low and mid layers under a high layer above this
// threshold still count as at least ordinal 2.
const (
	ClearLayerPercent    = 20.0
	CirrusPercent        = 40.0
	CirrusFloorOrdinal   = 2
	DefaultVisibility    = 10000.0 // meters
	DefaultCloudPercent  = 50.0
	transparencyStarting = 3
)

// Thresholds holds the penalty limits used by Transparency and Seeing.
// Units must match the sample units.
type Thresholds struct {
	PoorVisibility     float64 // meters
	VeryPoorVisibility float64 // meters
	HighHumidity       float64 // percent
	HeavyHighCloud     float64 // percent
	SurfaceWind        float64 // m/s
	TemperatureDelta   float64 // celsius
	LowPressure        float64 // hPa
	JetStreamWind      float64 // m/s at 500 hPa
}

// DefaultThresholds returns the limits for samples in meters, m/s and hPa
func DefaultThresholds() Thresholds {
	return Thresholds{
		PoorVisibility:     8000,
		VeryPoorVisibility: 4000,
		HighHumidity:       85,
		HeavyHighCloud:     60,
		SurfaceWind:        7,
		TemperatureDelta:   10,
		LowPressure:        1008,
		JetStreamWind:      55,
	}
}

// NormalizeCloud maps a cloud percentage onto the 1-9 ordinal scale
func NormalizeCloud(percent float64) int {
	switch {
	case math.IsNaN(percent):
		percent = DefaultCloudPercent
	case percent < 0:
		percent = 0
	case percent > 100:
		percent = 100
	}
	return clampInt(1+int(math.Round(percent/100*8)), MinCloudOrdinal, MaxCloudOrdinal)
}

// BlendLayers returns the weighted astronomical cloud percentage
func BlendLayers(low, mid, high float64) float64 {
	return LowCloudWeight*low + MidCloudWeight*mid + HighCloudWeight*high
}

// AstroCloud returns the astronomical cloud ordinal for the given layer percentages
func AstroCloud(low, mid, high float64) int {
	ordinal := NormalizeCloud(BlendLayers(low, mid, high))
	if low < ClearLayerPercent && mid < ClearLayerPercent && high > CirrusPercent && ordinal < CirrusFloorOrdinal {
		ordinal = CirrusFloorOrdinal
	}
	return ordinal
}

// Transparency derives the 1-3 transparency ordinal, higher is better.
// A nil visibility uses DefaultVisibility; nil humidity or high cloud adds no penalty.
func Transparency(visibility, humidity, highCloud *float64, th Thresholds) int {
	vis := DefaultVisibility
	if visibility != nil {
		vis = *visibility
	}

	t := transparencyStarting
	if vis < th.PoorVisibility {
		t--
	}
	if vis < th.VeryPoorVisibility {
		t--
	}
	if humidity != nil && *humidity > th.HighHumidity {
		t--
	}
	if highCloud != nil && *highCloud > th.HeavyHighCloud {
		t--
	}
	return clampInt(t, MinTransparency, MaxTransparency)
}

// Seeing derives the seeing ordinal from the penalty model. The result is
// always within 4..6 because penalties are capped.
func Seeing(s RawWeatherSample, th Thresholds) int {
	penalties := 0
	if s.WindSpeed != nil && *s.WindSpeed > th.SurfaceWind {
		penalties++
	}
	if delta, ok := temperatureDelta(s); ok && delta > th.TemperatureDelta {
		penalties++
	}
	if s.Pressure != nil && *s.Pressure < th.LowPressure {
		penalties++
	}
	if s.WindSpeed500 != nil && *s.WindSpeed500 > th.JetStreamWind {
		penalties++
	}
	if penalties > maxSeeingPenalty {
		penalties = maxSeeingPenalty
	}
	return seeingScaleTop - (baseSeeingPenalty + penalties)
}

// temperatureDelta compares the surface temperature with 850 hPa, falling back to the dew point
func temperatureDelta(s RawWeatherSample) (float64, bool) {
	if s.Temperature == nil {
		return 0, false
	}
	switch {
	case s.Temperature850 != nil:
		return math.Abs(*s.Temperature - *s.Temperature850), true
	case s.DewPoint != nil:
		return math.Abs(*s.Temperature - *s.DewPoint), true
	}
	return 0, false
}

// cloudPercents resolves the total and layer percentages of a sample.
// A missing layer takes the total; a missing total is the blend of the present layers.
func cloudPercents(s RawWeatherSample) (total, low, mid, high float64) {
	switch {
	case s.CloudCover != nil:
		total = *s.CloudCover
	case s.CloudCoverLow != nil || s.CloudCoverMid != nil || s.CloudCoverHigh != nil:
		var sum, weight float64
		if s.CloudCoverLow != nil {
			sum += LowCloudWeight * *s.CloudCoverLow
			weight += LowCloudWeight
		}
		if s.CloudCoverMid != nil {
			sum += MidCloudWeight * *s.CloudCoverMid
			weight += MidCloudWeight
		}
		if s.CloudCoverHigh != nil {
			sum += HighCloudWeight * *s.CloudCoverHigh
			weight += HighCloudWeight
		}
		total = sum / weight
	default:
		total = DefaultCloudPercent
	}

	low, mid, high = total, total, total
	if s.CloudCoverLow != nil {
		low = *s.CloudCoverLow
	}
	if s.CloudCoverMid != nil {
		mid = *s.CloudCoverMid
	}
	if s.CloudCoverHigh != nil {
		high = *s.CloudCoverHigh
	}
	return total, low, mid, high
}

// NormalizeSample converts a single sample without stale filtering
func NormalizeSample(s RawWeatherSample, source Source, th Thresholds) NormalizedConditionRecord {
	total, low, mid, high := cloudPercents(s)
	return NormalizedConditionRecord{
		Time:          s.Time,
		Source:        source,
		CloudCover:    NormalizeCloud(total),
		HighCloud:     NormalizeCloud(high),
		MidCloud:      NormalizeCloud(mid),
		LowCloud:      NormalizeCloud(low),
		AstroCloud:    AstroCloud(low, mid, high),
		Seeing:        Seeing(s, th),
		Transparency:  Transparency(s.Visibility, s.Humidity, &high, th),
		Temperature:   s.Temperature,
		WindSpeed:     s.WindSpeed,
		WindDirection: s.WindDirection,
	}
}

// Normalize converts raw samples into hourly records using DefaultThresholds
func Normalize(samples []RawWeatherSample, source Source, ref time.Time) []NormalizedConditionRecord {
	return NormalizeWith(samples, source, ref, DefaultThresholds())
}

// NormalizeWith drops samples older than ref minus StaleTolerance and returns the rest
// sorted by time. When two samples share a timestamp the first one wins.
func NormalizeWith(samples []RawWeatherSample, source Source, ref time.Time, th Thresholds) []NormalizedConditionRecord {
	cutoff := ref.Add(-StaleTolerance)

	fresh := make([]RawWeatherSample, 0, len(samples))
	for _, s := range samples {
		if s.Time.Before(cutoff) {
			continue
		}
		fresh = append(fresh, s)
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].Time.Before(fresh[j].Time)
	})

	records := make([]NormalizedConditionRecord, 0, len(fresh))
	for i, s := range fresh {
		if i > 0 && s.Time.Equal(fresh[i-1].Time) {
			continue
		}
		records = append(records, NormalizeSample(s, source, th))
	}
	return records
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
