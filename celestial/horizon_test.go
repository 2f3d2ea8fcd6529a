package celestial

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var riga = Observer{Latitude: 56.9496, Longitude: 24.1052}

func TestJulianDate(t *testing.T) {
	assert.InDelta(t, j2000, JulianDate(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)), 1e-9)
	assert.InDelta(t, 2460676.5, JulianDate(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)), 1e-9)

	cet := time.FixedZone("CET", 3600)
	assert.InDelta(t, j2000, JulianDate(time.Date(2000, 1, 1, 13, 0, 0, 0, cet)), 1e-9)
}

func TestGMST(t *testing.T) {
	assert.InDelta(t, 280.46061837, GMST(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)), 1e-4)

	lst := LocalSiderealTime(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC), 100)
	assert.InDelta(t, 20.46061837, lst, 1e-4)
}

// meridian returns an instant and RA placing a target on the meridian of obs
func meridian(obs Observer) (time.Time, float64) {
	at := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	return at, LocalSiderealTime(at, obs.Longitude)
}

func TestGeometricHorizontal(t *testing.T) {
	obs := Observer{Latitude: 50, Longitude: 10}
	at, lst := meridian(obs)

	t.Run("pole sits at the latitude", func(t *testing.T) {
		h := GeometricHorizontal(Equatorial{RA: 123, Dec: 90}, obs, at)
		assert.InDelta(t, 50, h.Altitude, 1e-9)
		assert.InDelta(t, 0, wrap180(h.Azimuth), 1e-9)
	})

	t.Run("transit south of zenith", func(t *testing.T) {
		h := GeometricHorizontal(Equatorial{RA: lst, Dec: 20}, obs, at)
		assert.InDelta(t, 60, h.Altitude, 1e-9)
		assert.InDelta(t, 180, h.Azimuth, 1e-9)
	})

	t.Run("equator rising in the east", func(t *testing.T) {
		h := GeometricHorizontal(Equatorial{RA: lst + 90, Dec: 0}, obs, at)
		assert.InDelta(t, 0, h.Altitude, 1e-9)
		assert.InDelta(t, 90, h.Azimuth, 1e-9)
	})

	t.Run("equator setting in the west", func(t *testing.T) {
		h := GeometricHorizontal(Equatorial{RA: lst - 90, Dec: 0}, obs, at)
		assert.InDelta(t, 0, h.Altitude, 1e-9)
		assert.InDelta(t, 270, h.Azimuth, 1e-9)
	})
}

func TestRefraction(t *testing.T) {
	assert.InDelta(t, 0.483, Refraction(0), 0.002)
	assert.InDelta(t, 0, Refraction(90), 0.001)
	assert.Equal(t, 0.0, Refraction(-2))
	assert.Greater(t, Refraction(-1), Refraction(0))
	assert.Greater(t, Refraction(5), Refraction(30))
}

func TestHorizontalCoordinatesAppliesRefraction(t *testing.T) {
	obs := Observer{Latitude: 50, Longitude: 10}
	at, lst := meridian(obs)
	target := Equatorial{RA: lst + 90, Dec: 0}

	geo := GeometricHorizontal(target, obs, at)
	app := HorizontalCoordinates(target, obs, at)
	assert.InDelta(t, geo.Altitude+Refraction(geo.Altitude), app.Altitude, 1e-12)
	assert.Equal(t, geo.Azimuth, app.Azimuth)
	assert.Greater(t, app.Altitude, 0.0)
}

func TestHorizontalCoordinatesPanicsOnBadInput(t *testing.T) {
	at := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)

	assert.Panics(t, func() {
		HorizontalCoordinates(Equatorial{}, Observer{Latitude: math.NaN()}, at)
	})
	assert.Panics(t, func() {
		HorizontalCoordinates(Equatorial{RA: math.Inf(1)}, riga, at)
	})
	assert.Panics(t, func() {
		HorizontalCoordinates(Equatorial{}, riga, time.Time{})
	})
}

func TestObserverValidate(t *testing.T) {
	require.NoError(t, riga.Validate())
	assert.Error(t, Observer{Latitude: 91}.Validate())
	assert.Error(t, Observer{Longitude: -181}.Validate())
	assert.Error(t, Observer{Latitude: math.NaN()}.Validate())
}
