package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynopticBaseTime(t *testing.T) {
	riga, err := time.LoadLocation("Europe/Riga")
	require.NoError(t, err)

	tests := []struct {
		name     string
		ref      time.Time
		expected time.Time
	}{
		{"exact run hour", time.Date(2025, 6, 1, 1, 0, 0, 0, time.UTC), time.Date(2025, 6, 1, 1, 0, 0, 0, time.UTC)},
		{"between runs", time.Date(2025, 6, 1, 5, 59, 0, 0, time.UTC), time.Date(2025, 6, 1, 4, 0, 0, 0, time.UTC)},
		{"late evening", time.Date(2025, 6, 1, 23, 10, 0, 0, time.UTC), time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)},
		{"before first run", time.Date(2025, 6, 1, 0, 30, 0, 0, time.UTC), time.Date(2025, 5, 31, 22, 0, 0, 0, time.UTC)},
		{"non-UTC input", time.Date(2025, 6, 1, 3, 0, 0, 0, riga), time.Date(2025, 5, 31, 22, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SynopticBaseTime(tt.ref)
			assert.True(t, tt.expected.Equal(got), "expected %v, got %v", tt.expected, got)
		})
	}
}

func TestNormalizeAstro(t *testing.T) {
	now := time.Date(2025, 6, 1, 13, 30, 0, 0, time.UTC)
	samples := []AstroSample{
		{TimepointHours: 3, CloudCover: 2, Seeing: 6, Transparency: 5, Temperature2m: 18, WindSpeed: 1.8},
		{TimepointHours: 6, CloudCover: MissingValue, Seeing: MissingValue, Transparency: 12, Temperature2m: MissingValue},
		{TimepointHours: 0, CloudCover: 0, Seeing: 1, Transparency: 1},
	}

	records := NormalizeAstro(samples, now)
	require.Len(t, records, 3)

	base := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	assert.Equal(t, base, records[0].Time)
	assert.Equal(t, MinCloudOrdinal, records[0].CloudCover)

	assert.Equal(t, base.Add(3*time.Hour), records[1].Time)
	assert.Equal(t, 2, records[1].CloudCover)
	assert.Equal(t, 2, records[1].AstroCloud)
	assert.Equal(t, 6, records[1].Seeing)
	assert.Equal(t, 5, records[1].Transparency)
	assert.Equal(t, 18.0, *records[1].Temperature)
	assert.Equal(t, SourceSevenTimer, records[1].Source)

	assert.Equal(t, neutralCloud, records[2].CloudCover)
	assert.Equal(t, neutralAstro, records[2].Seeing)
	assert.Equal(t, MaxAstroOrdinal, records[2].Transparency)
	assert.Nil(t, records[2].Temperature)
}

func TestNormalizeAstroDropsStale(t *testing.T) {
	base := time.Date(2025, 6, 1, 1, 0, 0, 0, time.UTC)
	now := base.Add(10 * time.Hour)
	samples := []AstroSample{
		{TimepointHours: 3, CloudCover: 1},
		{TimepointHours: 9, CloudCover: 1},
		{TimepointHours: 12, CloudCover: 1},
	}

	records := NormalizeAstroFrom(samples, base, now)
	require.Len(t, records, 2)
	assert.Equal(t, base.Add(9*time.Hour), records[0].Time)
}
