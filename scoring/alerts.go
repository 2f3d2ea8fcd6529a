package scoring

import "time"

// AlertCriteria describes the conditions a slot must meet to raise an observing alert.
// Seeing and transparency limits are on the 1-8 astronomy feed scale.
type AlertCriteria struct {
	MaxCloud        int  `json:"max_cloud"`
	MinSeeing       int  `json:"min_seeing"`
	MinTransparency int  `json:"min_transparency"`
	NightOnly       bool `json:"night_only"`
}

// DefaultAlertCriteria returns the standard alert thresholds
func DefaultAlertCriteria() AlertCriteria {
	return AlertCriteria{
		MaxCloud:        3,
		MinSeeing:       6,
		MinTransparency: 6,
		NightOnly:       true,
	}
}

// Matches reports whether rec satisfies c
func (c AlertCriteria) Matches(rec ObservingScoreRecord, loc *time.Location) bool {
	if c.NightOnly && !IsNight(rec.Time, loc) {
		return false
	}
	return rec.CloudCover <= c.MaxCloud &&
		rec.Seeing >= c.MinSeeing &&
		rec.Transparency >= c.MinTransparency
}

// MatchingSlots returns the records that satisfy c, in order
func (c AlertCriteria) MatchingSlots(records []ObservingScoreRecord, loc *time.Location) []ObservingScoreRecord {
	var out []ObservingScoreRecord
	for _, r := range records {
		if c.Matches(r, loc) {
			out = append(out, r)
		}
	}
	return out
}
