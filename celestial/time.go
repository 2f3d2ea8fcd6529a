package celestial

import (
	"math"
	"time"
)

// j2000 is the Julian Date of the J2000.0 epoch
const j2000 = 2451545.0

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// JulianDate converts t to a Julian Date
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	y := float64(t.Year())
	m := float64(t.Month())
	d := float64(t.Day())
	dayFrac := (float64(t.Hour()) +
		float64(t.Minute())/60 +
		(float64(t.Second())+float64(t.Nanosecond())/1e9)/3600) / 24

	if m <= 2 {
		y--
		m += 12
	}

	a := math.Floor(y / 100)
	b := 2 - a + math.Floor(a/4)

	return math.Floor(365.25*(y+4716)) + math.Floor(30.6001*(m+1)) + d + b - 1524.5 + dayFrac
}

// centuriesSinceJ2000 returns Julian centuries elapsed since J2000.0
func centuriesSinceJ2000(t time.Time) float64 {
	return (JulianDate(t) - j2000) / 36525
}

// GMST returns Greenwich Mean Sidereal Time in degrees [0,360) using the IAU-82 model
func GMST(t time.Time) float64 {
	tu := centuriesSinceJ2000(t)

	// seconds of time; 876600h = 3155760000 s
	sec := 67310.54841 +
		(3155760000.0+8640184.812866)*tu +
		0.093104*tu*tu -
		6.2e-6*tu*tu*tu

	sec = math.Mod(sec, 86400)
	if sec < 0 {
		sec += 86400
	}
	return sec / 86400 * 360
}

// LocalSiderealTime returns the local mean sidereal time in degrees for an east-positive longitude
func LocalSiderealTime(t time.Time, longitude float64) float64 {
	return normalizeDegrees(GMST(t) + longitude)
}

func normalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// wrap180 maps an angle into [-180,180]
func wrap180(a float64) float64 {
	a = math.Mod(a+180, 360)
	if a < 0 {
		a += 360
	}
	return a - 180
}
