package celestial

import (
	"strings"
	"time"

	"github.com/sixdouglas/suncalc"
)

// Body is anything whose apparent position can be computed for an observer
type Body interface {
	Name() string
	Horizontal(t time.Time, obs Observer) Horizontal
}

type sun struct{}

// Sun returns the Sun as a Body
func Sun() Body { return sun{} }

func (sun) Name() string { return "Sun" }

func (sun) Horizontal(t time.Time, obs Observer) Horizontal {
	mustBeFinite(obs, t)
	pos := suncalc.GetPosition(t, obs.Latitude, obs.Longitude)

	// suncalc measures azimuth from south towards west
	alt := pos.Altitude * rad2deg
	return Horizontal{
		Altitude: alt + Refraction(alt),
		Azimuth:  normalizeDegrees(pos.Azimuth*rad2deg + 180),
	}
}

type moon struct{}

// Moon returns the Moon as a Body
func Moon() Body { return moon{} }

func (moon) Name() string { return "Moon" }

// Horizontal uses the suncalc lunar position, whose altitude is already refracted
func (moon) Horizontal(t time.Time, obs Observer) Horizontal {
	mustBeFinite(obs, t)
	pos := suncalc.GetMoonPosition(t, obs.Latitude, obs.Longitude)
	return Horizontal{
		Altitude: pos.Altitude * rad2deg,
		Azimuth:  normalizeDegrees(pos.Azimuth*rad2deg + 180),
	}
}

// Planet is a major planet positioned from its mean orbital elements
type Planet struct {
	name     string
	elements orbitalElements
}

// NewPlanet looks a planet up by its English name
func NewPlanet(name string) (Planet, bool) {
	el, ok := planetElements[name]
	if !ok {
		return Planet{}, false
	}
	return Planet{name: name, elements: el}, true
}

// Planets returns Mercury through Neptune, excluding Earth
func Planets() []Planet {
	out := make([]Planet, 0, len(planetOrder))
	for _, n := range planetOrder {
		out = append(out, Planet{name: n, elements: planetElements[n]})
	}
	return out
}

// BodyByName resolves "Sun", "Moon" or a planet name, ignoring case
func BodyByName(name string) (Body, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sun":
		return Sun(), true
	case "moon":
		return Moon(), true
	}
	for _, n := range planetOrder {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			p, ok := NewPlanet(n)
			return p, ok
		}
	}
	return nil, false
}

func (p Planet) Name() string { return p.name }

// Equatorial returns the geocentric position of the planet at t
func (p Planet) Equatorial(t time.Time) Equatorial {
	return geocentricEquatorial(p.elements, t)
}

func (p Planet) Horizontal(t time.Time, obs Observer) Horizontal {
	return HorizontalCoordinates(p.Equatorial(t), obs, t)
}

// FixedTarget is a catalog object with constant RA/Dec
type FixedTarget struct {
	Label string
	Equatorial
}

// NewFixedTarget builds a target from sexagesimal catalog coordinates
func NewFixedTarget(label, ra, dec string) FixedTarget {
	return FixedTarget{Label: label, Equatorial: Equatorial{RA: ParseRA(ra), Dec: ParseDec(dec)}}
}

func (f FixedTarget) Name() string { return f.Label }

func (f FixedTarget) Horizontal(t time.Time, obs Observer) Horizontal {
	return HorizontalCoordinates(f.Equatorial, obs, t)
}

// Circumpolar reports whether a fixed declination never sets for obs
func Circumpolar(dec float64, obs Observer) bool {
	if obs.Latitude >= 0 {
		return dec > 90-obs.Latitude
	}
	return dec < -90-obs.Latitude
}

// NeverRises reports whether a fixed declination stays below the horizon for obs
func NeverRises(dec float64, obs Observer) bool {
	if obs.Latitude >= 0 {
		return dec < obs.Latitude-90
	}
	return dec > 90+obs.Latitude
}
