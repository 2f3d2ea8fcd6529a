package scoring

import (
	"math"

	"github.com/devskill-org/stargazing/celestial"
	"github.com/devskill-org/stargazing/forecast"
)

// Component weights of the observing score; they sum to 100
const (
	CloudWeight        = 50.0
	SeeingWeight       = 25.0
	TransparencyWeight = 25.0

	ordinalSpan = 8.0

	MinScore = 0
	MaxScore = 100
)

// CloudLabel is a qualitative cloud condition
type CloudLabel string

const (
	CloudPerfect  CloudLabel = "Perfect"
	CloudClear    CloudLabel = "Clear"
	CloudLight    CloudLabel = "Lightly cloudy"
	CloudModerate CloudLabel = "Moderate"
	CloudPoor     CloudLabel = "Poor"
)

// Rank orders labels from best (0) to worst
func (l CloudLabel) Rank() int {
	switch l {
	case CloudPerfect:
		return 0
	case CloudClear:
		return 1
	case CloudLight:
		return 2
	case CloudModerate:
		return 3
	default:
		return 4
	}
}

// CloudLabelFor maps a 1-9 cloud ordinal to its label
func CloudLabelFor(ordinal int) CloudLabel {
	switch {
	case ordinal <= 2:
		return CloudPerfect
	case ordinal <= 4:
		return CloudClear
	case ordinal <= 6:
		return CloudLight
	case ordinal <= 8:
		return CloudModerate
	default:
		return CloudPoor
	}
}

// ObservingScoreRecord is a normalized record with its derived score and label
type ObservingScoreRecord struct {
	forecast.NormalizedConditionRecord
	Score      int        `json:"score"`
	CloudLabel CloudLabel `json:"cloud_label"`

	// Sky is filled by AnnotateSky and never feeds into Score
	Sky *celestial.SlotSky `json:"sky,omitempty"`
}

// Score computes the observing score of rec
func Score(rec forecast.NormalizedConditionRecord) ObservingScoreRecord {
	return ObservingScoreRecord{
		NormalizedConditionRecord: rec,
		Score:                     RawScore(rec.CloudCover, rec.Seeing, rec.Transparency),
		CloudLabel:                CloudLabelFor(rec.CloudCover),
	}
}

// RawScore combines the three ordinals into a score clamped to [0,100]
func RawScore(cloud, seeing, transparency int) int {
	v := math.Round(
		float64(9-cloud)/ordinalSpan*CloudWeight +
			float64(seeing)/ordinalSpan*SeeingWeight +
			float64(transparency)/ordinalSpan*TransparencyWeight,
	)
	switch {
	case v < MinScore:
		return MinScore
	case v > MaxScore:
		return MaxScore
	}
	return int(v)
}

// ScoreAll scores every record, preserving order
func ScoreAll(records []forecast.NormalizedConditionRecord) []ObservingScoreRecord {
	out := make([]ObservingScoreRecord, len(records))
	for i, r := range records {
		out[i] = Score(r)
	}
	return out
}
