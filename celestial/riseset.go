package celestial

import (
	"time"
)

const (
	// searchMargin extends the rise/set search past both ends of the day
	searchMargin = time.Hour
	scanStep     = 10 * time.Minute
	refineLimit  = time.Second
)

// VisibilityWindow holds the rise and set of a body on one calendar day.
// Set may be earlier in the day than Rise, meaning the body is up through midnight.
type VisibilityWindow struct {
	Body         string     `json:"body"`
	Date         time.Time  `json:"date"`
	Rise         *time.Time `json:"rise,omitempty"`
	Set          *time.Time `json:"set,omitempty"`
	AboveHorizon bool       `json:"above_horizon"`
}

// Contains reports whether the time of day of t lies between rise and set,
// wrapping past midnight when set comes before rise. It is false unless both
// events are known.
func (w VisibilityWindow) Contains(t time.Time) bool {
	if w.Rise == nil || w.Set == nil {
		return false
	}
	loc := w.Date.Location()
	s := secondsOfDay(w.Rise.In(loc))
	e := secondsOfDay(w.Set.In(loc))
	x := secondsOfDay(t.In(loc))

	if s <= e {
		return x >= s && x <= e
	}
	return x >= s || x <= e
}

func secondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

type crossing struct {
	at     time.Time
	rising bool
}

// RiseSet finds when body crosses the horizon on the calendar day of date, in
// the location of date. A missing event is left nil.
func RiseSet(body Body, obs Observer, date time.Time) VisibilityWindow {
	dayStart := StartOfDay(date)
	dayEnd := dayStart.AddDate(0, 0, 1)

	altitude := func(t time.Time) float64 {
		return body.Horizontal(t, obs).Altitude
	}

	var found []crossing
	from := dayStart.Add(-searchMargin)
	until := dayEnd.Add(searchMargin)
	prevT, prevAlt := from, altitude(from)
	for t := from.Add(scanStep); !t.After(until); t = t.Add(scanStep) {
		alt := altitude(t)
		switch {
		case prevAlt <= 0 && alt > 0:
			found = append(found, crossing{at: refineCrossing(altitude, prevT, t, true), rising: true})
		case prevAlt > 0 && alt <= 0:
			found = append(found, crossing{at: refineCrossing(altitude, prevT, t, false), rising: false})
		}
		prevT, prevAlt = t, alt
	}

	return VisibilityWindow{
		Body: body.Name(),
		Date: dayStart,
		Rise: pickCrossing(found, true, dayStart, dayEnd),
		Set:  pickCrossing(found, false, dayStart, dayEnd),
	}
}

// refineCrossing bisects [lo,hi] down to refineLimit
func refineCrossing(altitude func(time.Time) float64, lo, hi time.Time, rising bool) time.Time {
	for hi.Sub(lo) > refineLimit {
		mid := lo.Add(hi.Sub(lo) / 2)
		above := altitude(mid) > 0
		if above == rising {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi.Truncate(time.Second)
}

// pickCrossing returns the first event inside the day, or failing that the one
// closest to the day among those found in the margins.
func pickCrossing(found []crossing, rising bool, dayStart, dayEnd time.Time) *time.Time {
	var best *time.Time
	var bestGap time.Duration
	for _, c := range found {
		if c.rising != rising {
			continue
		}
		if !c.at.Before(dayStart) && c.at.Before(dayEnd) {
			at := c.at
			return &at
		}
		gap := dayStart.Sub(c.at)
		if c.at.After(dayEnd) || c.at.Equal(dayEnd) {
			gap = c.at.Sub(dayEnd)
		}
		if best == nil || gap < bestGap {
			at := c.at
			best, bestGap = &at, gap
		}
	}
	return best
}

// DefaultSampleInstants returns eight instants at three-hour spacing from local midnight
func DefaultSampleInstants(date time.Time) []time.Time {
	start := StartOfDay(date)
	out := make([]time.Time, 0, 8)
	for h := 0; h < 24; h += 3 {
		out = append(out, time.Date(start.Year(), start.Month(), start.Day(), h, 0, 0, 0, start.Location()))
	}
	return out
}

// IsAboveHorizonNow is true when body is above the horizon at any sample instant
// that also lies inside its rise/set window for the day of the first sample.
// Bodies without a rise or a set only need a positive altitude.
func IsAboveHorizonNow(body Body, obs Observer, samples []time.Time) bool {
	if len(samples) == 0 {
		return false
	}
	return aboveAtSamples(body, obs, samples, RiseSet(body, obs, samples[0]))
}

func aboveAtSamples(body Body, obs Observer, samples []time.Time, win VisibilityWindow) bool {
	for _, t := range samples {
		if body.Horizontal(t, obs).Altitude <= 0 {
			continue
		}
		if win.Rise == nil || win.Set == nil || win.Contains(t) {
			return true
		}
	}
	return false
}

// Visibility computes the window of body for the day of date together with the
// sampled above-horizon flag.
func Visibility(body Body, obs Observer, date time.Time) VisibilityWindow {
	win := RiseSet(body, obs, date)
	win.AboveHorizon = aboveAtSamples(body, obs, DefaultSampleInstants(date), win)
	return win
}

// PlanetVisibility returns the visibility window of each planet for the day of date
func PlanetVisibility(obs Observer, date time.Time) []VisibilityWindow {
	planets := Planets()
	out := make([]VisibilityWindow, 0, len(planets))
	for _, p := range planets {
		out = append(out, Visibility(p, obs, date))
	}
	return out
}

// StartOfDay returns local midnight of t in its own location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
