package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ref = time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

func TestNormalizeCloud(t *testing.T) {
	tests := []struct {
		percent  float64
		expected int
	}{
		{0, 1},
		{25, 3},
		{50, 5},
		{100, 9},
		{6.25, 2},
		{-50, 1},
		{250, 9},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeCloud(tt.percent), "percent %v", tt.percent)
	}
}

func TestNormalizeCloudClamping(t *testing.T) {
	for p := -1000.0; p <= 1000; p += 0.5 {
		got := NormalizeCloud(p)
		if got < MinCloudOrdinal || got > MaxCloudOrdinal {
			t.Fatalf("NormalizeCloud(%v) = %d, outside [1,9]", p, got)
		}
	}
}

func TestAstroCloud(t *testing.T) {
	tests := []struct {
		name           string
		low, mid, high float64
		expected       int
	}{
		{"all clear", 0, 0, 0, 1},
		{"overcast", 100, 100, 100, 9},
		{"low cloud dominates", 100, 0, 0, 6},
		{"thin cirrus floors at two", 0, 0, 50, 2},
		{"cirrus below threshold", 0, 0, 40, 1},
		{"mid layer blocks floor", 0, 25, 50, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AstroCloud(tt.low, tt.mid, tt.high))
		})
	}
}

func TestTransparency(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name       string
		visibility *float64
		humidity   *float64
		highCloud  *float64
		expected   int
	}{
		{"no data", nil, nil, nil, 3},
		{"good visibility", Float64Ptr(18000), Float64Ptr(40), Float64Ptr(10), 3},
		{"hazy", Float64Ptr(7000), nil, nil, 2},
		{"very poor visibility", Float64Ptr(3000), nil, nil, 1},
		{"humid", Float64Ptr(20000), Float64Ptr(90), nil, 2},
		{"high cloud", nil, nil, Float64Ptr(70), 2},
		{"everything bad clamps", Float64Ptr(1000), Float64Ptr(99), Float64Ptr(99), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Transparency(tt.visibility, tt.humidity, tt.highCloud, th))
		})
	}
}

func TestSeeing(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name     string
		sample   RawWeatherSample
		expected int
	}{
		{"calm", RawWeatherSample{WindSpeed: Float64Ptr(3)}, 6},
		{"windy", RawWeatherSample{WindSpeed: Float64Ptr(9)}, 5},
		{
			"upper air gradient",
			RawWeatherSample{Temperature: Float64Ptr(20), Temperature850: Float64Ptr(5)},
			5,
		},
		{
			"dew point fallback",
			RawWeatherSample{Temperature: Float64Ptr(20), DewPoint: Float64Ptr(8)},
			5,
		},
		{
			"850 hPa takes precedence over dew point",
			RawWeatherSample{Temperature: Float64Ptr(20), Temperature850: Float64Ptr(15), DewPoint: Float64Ptr(0)},
			6,
		},
		{
			"penalties are capped",
			RawWeatherSample{
				WindSpeed:    Float64Ptr(12),
				Pressure:     Float64Ptr(990),
				WindSpeed500: Float64Ptr(70),
				Temperature:  Float64Ptr(25),
				DewPoint:     Float64Ptr(2),
			},
			4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Seeing(tt.sample, th))
		})
	}
}

func TestNormalizeScenario(t *testing.T) {
	samples := []RawWeatherSample{{
		Time:       ref,
		CloudCover: Float64Ptr(25),
		Visibility: Float64Ptr(18000),
		Humidity:   Float64Ptr(40),
		WindSpeed:  Float64Ptr(3),
	}}

	records := Normalize(samples, SourceOpenMeteo, ref)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, 3, rec.CloudCover)
	assert.Equal(t, 3, rec.AstroCloud)
	assert.Equal(t, 3, rec.Transparency)
	assert.Equal(t, 6, rec.Seeing)
	assert.Equal(t, SourceOpenMeteo, rec.Source)
	assert.Equal(t, 3.0, *rec.WindSpeed)
}

func TestNormalizeFiltersAndOrders(t *testing.T) {
	samples := []RawWeatherSample{
		{Time: ref.Add(2 * time.Hour), CloudCover: Float64Ptr(100)},
		{Time: ref.Add(-2 * time.Hour), CloudCover: Float64Ptr(0)},
		{Time: ref.Add(-time.Hour), CloudCover: Float64Ptr(50)},
		{Time: ref, CloudCover: Float64Ptr(0)},
		{Time: ref, CloudCover: Float64Ptr(100)},
	}

	records := Normalize(samples, SourceMetNorway, ref)
	require.Len(t, records, 3)

	assert.Equal(t, ref.Add(-time.Hour), records[0].Time)
	assert.Equal(t, ref, records[1].Time)
	assert.Equal(t, 1, records[1].CloudCover, "first duplicate wins")
	assert.Equal(t, ref.Add(2*time.Hour), records[2].Time)

	for i := 1; i < len(records); i++ {
		assert.True(t, records[i].Time.After(records[i-1].Time))
	}
}

func TestNormalizeMissingFields(t *testing.T) {
	records := Normalize([]RawWeatherSample{{Time: ref}}, SourceOpenMeteo, ref)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, NormalizeCloud(DefaultCloudPercent), rec.CloudCover)
	assert.Equal(t, MaxTransparency, rec.Transparency)
	assert.Equal(t, 6, rec.Seeing)
	assert.Nil(t, rec.Temperature)
}

func TestNormalizeLayersWithoutTotal(t *testing.T) {
	s := RawWeatherSample{
		Time:           ref,
		CloudCoverLow:  Float64Ptr(0),
		CloudCoverMid:  Float64Ptr(0),
		CloudCoverHigh: Float64Ptr(80),
	}

	rec := NormalizeSample(s, SourceMetNorway, DefaultThresholds())
	assert.Equal(t, NormalizeCloud(8), rec.CloudCover)
	assert.Equal(t, 1, rec.LowCloud)
	assert.Equal(t, 7, rec.HighCloud)
	assert.Equal(t, CirrusFloorOrdinal, rec.AstroCloud)
	assert.Equal(t, 2, rec.Transparency)
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Empty(t, Normalize(nil, SourceOpenMeteo, ref))
}
