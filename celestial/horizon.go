package celestial

import (
	"fmt"
	"math"
	"time"
)

// Observer is a location on Earth. Longitude is east-positive.
type Observer struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"` // meters
}

// Validate checks the observer is a real place
func (o Observer) Validate() error {
	if !finite(o.Latitude) || o.Latitude < -90 || o.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got: %f", o.Latitude)
	}
	if !finite(o.Longitude) || o.Longitude < -180 || o.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got: %f", o.Longitude)
	}
	return nil
}

// Equatorial holds right ascension and declination in degrees
type Equatorial struct {
	RA  float64 `json:"ra"`
	Dec float64 `json:"dec"`
}

// Horizontal holds altitude above the horizon and azimuth from north, clockwise, in degrees
type Horizontal struct {
	Altitude float64 `json:"altitude"`
	Azimuth  float64 `json:"azimuth"`
}

// refractionFloor is the lowest geometric altitude refraction is applied to
const refractionFloor = -1.0

// Refraction returns the standard atmospheric refraction in degrees for a geometric
// altitude, or 0 below refractionFloor.
func Refraction(altitude float64) float64 {
	if altitude < refractionFloor {
		return 0
	}
	// Saemundsson, arcminutes
	r := 1.02 / math.Tan((altitude+10.3/(altitude+5.11))*deg2rad)
	return r / 60
}

// HorizontalCoordinates returns the apparent position of target for obs at t,
// including refraction.
func HorizontalCoordinates(target Equatorial, obs Observer, t time.Time) Horizontal {
	h := GeometricHorizontal(target, obs, t)
	h.Altitude += Refraction(h.Altitude)
	return h
}

// GeometricHorizontal is HorizontalCoordinates without refraction
func GeometricHorizontal(target Equatorial, obs Observer, t time.Time) Horizontal {
	mustBeFinite(obs, t)
	if !finite(target.RA) || !finite(target.Dec) {
		panic(fmt.Sprintf("celestial: non-finite target %+v", target))
	}

	ha := (LocalSiderealTime(t, obs.Longitude) - target.RA) * deg2rad
	dec := target.Dec * deg2rad
	lat := obs.Latitude * deg2rad

	east := -math.Cos(dec) * math.Sin(ha)
	north := math.Sin(dec)*math.Cos(lat) - math.Cos(dec)*math.Cos(ha)*math.Sin(lat)
	up := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(ha)*math.Cos(lat)

	return Horizontal{
		Altitude: math.Asin(math.Max(-1, math.Min(1, up))) * rad2deg,
		Azimuth:  normalizeDegrees(math.Atan2(east, north) * rad2deg),
	}
}

func mustBeFinite(obs Observer, t time.Time) {
	if !finite(obs.Latitude) || !finite(obs.Longitude) || !finite(obs.Elevation) {
		panic(fmt.Sprintf("celestial: non-finite observer %+v", obs))
	}
	if t.IsZero() {
		panic("celestial: zero instant")
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
