package celestial

import (
	"time"

	"github.com/sixdouglas/suncalc"
)

// MoonPhase names one of the eight lunar phases
type MoonPhase string

const (
	NewMoon        MoonPhase = "New Moon"
	WaxingCrescent MoonPhase = "Waxing Crescent"
	FirstQuarter   MoonPhase = "First Quarter"
	WaxingGibbous  MoonPhase = "Waxing Gibbous"
	FullMoon       MoonPhase = "Full Moon"
	WaningGibbous  MoonPhase = "Waning Gibbous"
	LastQuarter    MoonPhase = "Last Quarter"
	WaningCrescent MoonPhase = "Waning Crescent"
)

// PhaseName maps a phase fraction (0 new, 0.25 first quarter, 0.5 full, 0.75 last quarter)
// to its name. The quarters and the full and new moon get a band around their exact value.
func PhaseName(phase float64) MoonPhase {
	switch {
	case phase < 0.03 || phase > 0.97:
		return NewMoon
	case phase < 0.22:
		return WaxingCrescent
	case phase < 0.28:
		return FirstQuarter
	case phase < 0.47:
		return WaxingGibbous
	case phase < 0.53:
		return FullMoon
	case phase < 0.72:
		return WaningGibbous
	case phase < 0.78:
		return LastQuarter
	default:
		return WaningCrescent
	}
}

// MoonIllumination describes the lit part of the Moon at one instant
type MoonIllumination struct {
	Fraction float64   `json:"fraction"` // 0 dark, 1 fully lit
	Phase    float64   `json:"phase"`
	Angle    float64   `json:"angle"` // radians, midpoint of the bright limb
	Name     MoonPhase `json:"name"`
}

// MoonPhaseAt returns the illumination and phase name of the Moon at t
func MoonPhaseAt(t time.Time) MoonIllumination {
	m := suncalc.GetMoonIllumination(t)
	return MoonIllumination{
		Fraction: m.Fraction,
		Phase:    m.Phase,
		Angle:    m.Angle,
		Name:     PhaseName(m.Phase),
	}
}

// AstroDarknessAltitude is the solar altitude below which the sky is astronomically dark
const AstroDarknessAltitude = -18.0

// Night is one astronomically dark interval, from dusk to the following dawn
type Night struct {
	Dusk time.Time `json:"dusk"`
	Dawn time.Time `json:"dawn"`
}

// AstronomicalNight returns the night that begins on the calendar day of date,
// in the location of date. ok is false when the Sun does not cross -18° that
// evening or the next morning, as in high-latitude summers.
func AstronomicalNight(obs Observer, date time.Time) (Night, bool) {
	day := StartOfDay(date)
	dusk, ok := twilightEvent(obs, day, true)
	if !ok {
		return Night{}, false
	}
	dawn, ok := twilightEvent(obs, day.AddDate(0, 0, 1), false)
	if !ok || !dawn.After(dusk) {
		return Night{}, false
	}
	return Night{Dusk: dusk, Dawn: dawn}, true
}

// twilightEvent reads astronomical dusk or dawn from suncalc for the day starting
// at day. Events that do not happen come back as nonsense instants, so anything
// outside the day with a half-day margin counts as missing.
func twilightEvent(obs Observer, day time.Time, dusk bool) (time.Time, bool) {
	noon := day.Add(12 * time.Hour)
	times := suncalc.GetTimes(noon, obs.Latitude, obs.Longitude)
	t := times["nightEnd"].Value
	if dusk {
		t = times["night"].Value
	}
	if t.IsZero() || t.Before(day.Add(-12*time.Hour)) || t.After(day.Add(36*time.Hour)) {
		return time.Time{}, false
	}
	return t, true
}

// NightCoverage tells how much of a forecast slot is astronomically dark
type NightCoverage string

const (
	NightNone    NightCoverage = ""
	NightPartial NightCoverage = "partial"
	NightFull    NightCoverage = "full"
)

// slotHalfWidth is half of the one-hour cell a forecast slot stands for
const slotHalfWidth = 30 * time.Minute

// SlotSky is the Sun and Moon context of one forecast slot
type SlotSky struct {
	AstroNight       NightCoverage `json:"astro_night,omitempty"`
	MoonUp           bool          `json:"moon_up"`
	MoonPhase        MoonPhase     `json:"moon_phase"`
	MoonIllumination float64       `json:"moon_illumination"`
}

// Almanac computes SlotSky values for one observer, caching the per-day
// twilight and moonrise searches. It is not safe for concurrent use.
type Almanac struct {
	obs    Observer
	loc    *time.Location
	nights map[time.Time]*Night
	moon   map[time.Time]VisibilityWindow
}

// NewAlmanac creates an almanac whose calendar days follow loc. A nil loc means UTC.
func NewAlmanac(obs Observer, loc *time.Location) *Almanac {
	if loc == nil {
		loc = time.UTC
	}
	return &Almanac{
		obs:    obs,
		loc:    loc,
		nights: make(map[time.Time]*Night),
		moon:   make(map[time.Time]VisibilityWindow),
	}
}

// At returns the context of the one-hour slot centred on slot
func (a *Almanac) At(slot time.Time) SlotSky {
	illum := MoonPhaseAt(slot)
	return SlotSky{
		AstroNight:       a.AstroNight(slot),
		MoonUp:           a.MoonUp(slot),
		MoonPhase:        illum.Name,
		MoonIllumination: illum.Fraction,
	}
}

func (a *Almanac) night(day time.Time) *Night {
	if n, ok := a.nights[day]; ok {
		return n
	}
	var out *Night
	if n, ok := AstronomicalNight(a.obs, day); ok {
		out = &n
	}
	a.nights[day] = out
	return out
}

func (a *Almanac) moonWindow(day time.Time) VisibilityWindow {
	if w, ok := a.moon[day]; ok {
		return w
	}
	w := RiseSet(Moon(), a.obs, day)
	a.moon[day] = w
	return w
}

// AstroNight reports whether the slot cell lies fully or partly within an
// astronomical night. The nights starting on the slot's day and the day
// before are both checked, so early-morning slots are covered.
func (a *Almanac) AstroNight(slot time.Time) NightCoverage {
	local := slot.In(a.loc)
	day := StartOfDay(local)
	start, end := slot.Add(-slotHalfWidth), slot.Add(slotHalfWidth)

	found := false
	coverage := NightNone
	for _, d := range []time.Time{day.AddDate(0, 0, -1), day} {
		n := a.night(d)
		if n == nil {
			continue
		}
		found = true
		if !start.Before(n.Dusk) && !end.After(n.Dawn) {
			return NightFull
		}
		if start.Before(n.Dawn) && end.After(n.Dusk) {
			coverage = NightPartial
		}
	}
	if found {
		return coverage
	}

	// Polar night keeps the Sun below -18° all day, midsummer never gets it there
	if Sun().Horizontal(slot, a.obs).Altitude < AstroDarknessAltitude {
		return NightFull
	}
	return NightNone
}

// MoonUp reports whether the Moon is above the horizon at any point of the
// slot cell. The windows of the slot's day and the day before are checked so a
// cell straddling midnight is covered.
func (a *Almanac) MoonUp(slot time.Time) bool {
	local := slot.In(a.loc)
	day := StartOfDay(local)
	start, end := slot.Add(-slotHalfWidth), slot.Add(slotHalfWidth)

	incomplete := false
	for _, d := range []time.Time{day, day.AddDate(0, 0, -1)} {
		spans, ok := moonSpans(a.moonWindow(d), d)
		if !ok {
			incomplete = true
			continue
		}
		for _, sp := range spans {
			if start.Before(sp[1]) && end.After(sp[0]) {
				return true
			}
		}
	}
	if !incomplete {
		return false
	}

	// Without both events for a day, fall back to sampling the cell
	for _, t := range []time.Time{start, slot, end} {
		if Moon().Horizontal(t, a.obs).Altitude > 0 {
			return true
		}
	}
	return false
}

// moonSpans turns one day's window into the spans the Moon is up. A set before
// the rise means the Moon was up from midnight until it set and again from its
// rise to the end of the day.
func moonSpans(w VisibilityWindow, day time.Time) ([][2]time.Time, bool) {
	if w.Rise == nil || w.Set == nil {
		return nil, false
	}
	rise, set := *w.Rise, *w.Set
	if rise.Before(set) {
		return [][2]time.Time{{rise, set}}, true
	}
	return [][2]time.Time{{day, set}, {rise, day.AddDate(0, 0, 1)}}, true
}

// AstroNightAt is AstroNight for a single slot, with calendar days in the slot's location
func AstroNightAt(slot time.Time, obs Observer) NightCoverage {
	return NewAlmanac(obs, slot.Location()).AstroNight(slot)
}

// MoonUpAt is MoonUp for a single slot, with calendar days in the slot's location
func MoonUpAt(slot time.Time, obs Observer) bool {
	return NewAlmanac(obs, slot.Location()).MoonUp(slot)
}
