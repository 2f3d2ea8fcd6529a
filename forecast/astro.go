package forecast

import (
	"sort"
	"time"
)

// MissingValue marks a field the astronomy feed could not compute
const MissingValue = -9999

const (
	MinAstroOrdinal = 1
	MaxAstroOrdinal = 8

	neutralCloud = 5
	neutralAstro = 4
)

// SynopticHours are the UTC model-run hours the astronomy feed is issued from
var SynopticHours = [...]int{1, 4, 7, 10, 13, 16, 19, 22}

// SynopticBaseTime returns the latest synoptic run at or before ref, in UTC.
// Before 01 UTC the base is 22 UTC of the previous day.
func SynopticBaseTime(ref time.Time) time.Time {
	u := ref.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)

	base := -1
	for _, h := range SynopticHours {
		if h <= u.Hour() {
			base = h
		}
	}
	if base < 0 {
		return day.AddDate(0, 0, -1).Add(time.Duration(SynopticHours[len(SynopticHours)-1]) * time.Hour)
	}
	return day.Add(time.Duration(base) * time.Hour)
}

// NormalizeAstro aligns astronomy feed samples to the synoptic base of ref and passes
// their ordinals through, clamped. Missing markers become the scale midpoint.
func NormalizeAstro(samples []AstroSample, ref time.Time) []NormalizedConditionRecord {
	return NormalizeAstroFrom(samples, SynopticBaseTime(ref), ref)
}

// NormalizeAstroFrom is NormalizeAstro with an explicit run time, used when the feed
// reports its own init instant.
func NormalizeAstroFrom(samples []AstroSample, base, ref time.Time) []NormalizedConditionRecord {
	cutoff := ref.Add(-StaleTolerance)

	records := make([]NormalizedConditionRecord, 0, len(samples))
	for _, s := range samples {
		t := base.Add(time.Duration(s.TimepointHours) * time.Hour)
		if t.Before(cutoff) {
			continue
		}

		cloud := astroOrdinal(s.CloudCover, MinCloudOrdinal, MaxCloudOrdinal, neutralCloud)
		rec := NormalizedConditionRecord{
			Time:         t,
			Source:       SourceSevenTimer,
			CloudCover:   cloud,
			HighCloud:    cloud,
			MidCloud:     cloud,
			LowCloud:     cloud,
			AstroCloud:   cloud,
			Seeing:       astroOrdinal(s.Seeing, MinAstroOrdinal, MaxAstroOrdinal, neutralAstro),
			Transparency: astroOrdinal(s.Transparency, MinAstroOrdinal, MaxAstroOrdinal, neutralAstro),
			WindSpeed:    Float64Ptr(s.WindSpeed),
		}
		if s.Temperature2m != MissingValue {
			rec.Temperature = Float64Ptr(float64(s.Temperature2m))
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Time.Before(records[j].Time)
	})
	out := make([]NormalizedConditionRecord, 0, len(records))
	for _, r := range records {
		if n := len(out); n > 0 && r.Time.Equal(out[n-1].Time) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func astroOrdinal(v, lo, hi, neutral int) int {
	if v == MissingValue {
		return neutral
	}
	return clampInt(v, lo, hi)
}
