package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devskill-org/stargazing/forecast"
)

func TestRawScore(t *testing.T) {
	tests := []struct {
		name                        string
		cloud, seeing, transparency int
		expected                    int
	}{
		{"scenario record", 3, 6, 3, 66},
		{"best astronomy feed values", 1, 8, 8, 100},
		{"overcast and poor", 9, 1, 1, 6},
		{"pathological high", -20, 20, 20, 100},
		{"pathological low", 40, -20, -20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RawScore(tt.cloud, tt.seeing, tt.transparency))
		})
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	rec := forecast.NormalizedConditionRecord{
		Time:         time.Date(2025, 1, 1, 22, 0, 0, 0, time.UTC),
		CloudCover:   4,
		Seeing:       5,
		Transparency: 2,
	}

	first := Score(rec)
	second := Score(rec)
	assert.Equal(t, first, second)
	assert.Equal(t, CloudClear, first.CloudLabel)
	assert.Equal(t, rec, first.NormalizedConditionRecord)
}

func TestCloudLabelFor(t *testing.T) {
	tests := []struct {
		ordinal  int
		expected CloudLabel
	}{
		{1, CloudPerfect},
		{2, CloudPerfect},
		{3, CloudClear},
		{4, CloudClear},
		{5, CloudLight},
		{6, CloudLight},
		{7, CloudModerate},
		{8, CloudModerate},
		{9, CloudPoor},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, CloudLabelFor(tt.ordinal), "ordinal %d", tt.ordinal)
	}
}

func TestCloudLabelMonotonic(t *testing.T) {
	for v1 := 0; v1 <= 10; v1++ {
		for v2 := v1 + 1; v2 <= 10; v2++ {
			require.LessOrEqual(t, CloudLabelFor(v1).Rank(), CloudLabelFor(v2).Rank(),
				"label for %d is worse than label for %d", v1, v2)
		}
	}
}

func TestScoreAll(t *testing.T) {
	records := []forecast.NormalizedConditionRecord{
		{CloudCover: 1, Seeing: 8, Transparency: 8},
		{CloudCover: 9, Seeing: 1, Transparency: 1},
	}

	scored := ScoreAll(records)
	require.Len(t, scored, 2)
	assert.Equal(t, 100, scored[0].Score)
	assert.Equal(t, CloudPoor, scored[1].CloudLabel)
}
