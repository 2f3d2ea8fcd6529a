package celestial

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSunHorizontal(t *testing.T) {
	obs := Observer{Latitude: 50, Longitude: 0}
	h := Sun().Horizontal(time.Date(2025, 6, 21, 12, 0, 0, 0, time.UTC), obs)

	assert.InDelta(t, 63.45, h.Altitude, 0.5)
	assert.InDelta(t, 180, h.Azimuth, 3)
	assert.Equal(t, "Sun", Sun().Name())
}

func TestSunBelowHorizonAtMidnight(t *testing.T) {
	h := Sun().Horizontal(time.Date(2025, 12, 21, 0, 0, 0, 0, time.UTC), Observer{Latitude: 50})
	assert.Less(t, h.Altitude, -50.0)
}

func TestMoonHorizontal(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 48; i++ {
		h := Moon().Horizontal(start.Add(time.Duration(i)*time.Hour), riga)
		require.False(t, math.IsNaN(h.Altitude))
		assert.GreaterOrEqual(t, h.Altitude, -90.0)
		assert.LessOrEqual(t, h.Altitude, 90.0)
		assert.GreaterOrEqual(t, h.Azimuth, 0.0)
		assert.Less(t, h.Azimuth, 360.0)
	}
}

func TestSolveKepler(t *testing.T) {
	for _, e := range []float64{0, 0.0167, 0.2056, 0.6} {
		for m := -math.Pi; m <= math.Pi; m += 0.3 {
			E := solveKepler(m, e)
			assert.InDelta(t, m, E-e*math.Sin(E), 1e-10)
		}
	}
}

// sunEquatorial places the origin of the heliocentric frame as seen from Earth
func sunEquatorial(t time.Time) Equatorial {
	return geocentricEquatorial(orbitalElements{}, t)
}

func TestSunFromOrbitalElements(t *testing.T) {
	equinox := time.Date(2025, 3, 20, 9, 1, 0, 0, time.UTC)
	sun := sunEquatorial(equinox)
	assert.InDelta(t, 0, wrap180(sun.RA), 1)
	assert.InDelta(t, 0, sun.Dec, 0.5)

	solstice := time.Date(2025, 6, 21, 2, 42, 0, 0, time.UTC)
	sun = sunEquatorial(solstice)
	assert.InDelta(t, 90, sun.RA, 1)
	assert.InDelta(t, obliquityJ2000, sun.Dec, 0.5)
}

func TestInnerPlanetElongation(t *testing.T) {
	mercury, ok := NewPlanet("Mercury")
	require.True(t, ok)
	venus, ok := NewPlanet("Venus")
	require.True(t, ok)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 730; day += 5 {
		at := start.AddDate(0, 0, day)
		sun := sunEquatorial(at)
		assert.LessOrEqual(t, AngularDistance(sun, mercury.Equatorial(at)), 29.0, at.String())
		assert.LessOrEqual(t, AngularDistance(sun, venus.Equatorial(at)), 48.0, at.String())
	}
}

func TestPlanets(t *testing.T) {
	planets := Planets()
	require.Len(t, planets, 7)
	assert.Equal(t, "Mercury", planets[0].Name())
	assert.Equal(t, "Neptune", planets[6].Name())

	at := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	for _, p := range planets {
		eq := p.Equatorial(at)
		assert.GreaterOrEqual(t, eq.RA, 0.0, p.Name())
		assert.Less(t, eq.RA, 360.0, p.Name())
		assert.LessOrEqual(t, math.Abs(eq.Dec), 30.0, p.Name())
	}

	_, ok := NewPlanet("Pluto")
	assert.False(t, ok)
}

func TestNewFixedTarget(t *testing.T) {
	m31 := NewFixedTarget("M31", "00:42:44", "+41:16:09")
	assert.Equal(t, "M31", m31.Name())
	assert.InDelta(t, 10.6833, m31.RA, 1e-3)
	assert.InDelta(t, 41.2692, m31.Dec, 1e-3)
}

func TestCircumpolar(t *testing.T) {
	tests := []struct {
		name        string
		dec, lat    float64
		circumpolar bool
		neverRises  bool
	}{
		{"polaris from riga", 89.26, 56.95, true, false},
		{"orion from riga", 0, 56.95, false, false},
		{"southern cross from riga", -60, 56.95, false, true},
		{"southern cross from sydney", -60, -33.87, true, false},
		{"polaris from sydney", 89.26, -33.87, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := Observer{Latitude: tt.lat}
			assert.Equal(t, tt.circumpolar, Circumpolar(tt.dec, obs))
			assert.Equal(t, tt.neverRises, NeverRises(tt.dec, obs))
		})
	}
}
