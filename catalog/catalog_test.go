package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devskill-org/stargazing/celestial"
)

var (
	riga        = celestial.Observer{Latitude: 56.9496, Longitude: 24.1052}
	autumnNight = time.Date(2025, 10, 15, 22, 0, 0, 0, time.UTC)
)

func loadSky(t *testing.T) *Sky {
	t.Helper()
	sky, err := LoadDefault()
	require.NoError(t, err)
	return sky
}

func numbers(targets []VisibleTarget) []int {
	out := make([]int, 0, len(targets))
	for _, v := range targets {
		out = append(out, v.MessierNumber)
	}
	return out
}

func TestNormalizeSeason(t *testing.T) {
	tests := []struct {
		input    string
		expected Season
	}{
		{"Winter", Winter},
		{"early winter", Winter},
		{"Spring", Spring},
		{"SUMMER", Summer},
		{"Autumn", Autumn},
		{"Late Fall", Autumn},
		{"all year", Summer},
		{"", Summer},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeSeason(tt.input), tt.input)
	}
}

func TestLoadMessier(t *testing.T) {
	sky := loadSky(t)
	cat := sky.Messier

	require.Equal(t, 12, cat.Len())
	all := cat.All()
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].MessierNumber, all[i].MessierNumber)
	}

	m42, ok := cat.Get("m42")
	require.True(t, ok)
	assert.Equal(t, "Orion Nebula", m42.Name)
	assert.Equal(t, Easy, m42.Difficulty)
	assert.InDelta(t, 83.822, m42.Equatorial().RA, 1e-3)
	assert.Equal(t, "M42", m42.Target().Name())

	_, ok = cat.Get("M110")
	assert.False(t, ok)

	assert.Contains(t, string(cat.Info()), "J2000")
	assert.Equal(t, []string{
		"Andromeda", "Canes Venatici", "Hercules", "Lyra", "Orion", "Scorpius",
		"Taurus", "Triangulum", "Ursa Major", "Virgo", "Vulpecula",
	}, cat.Constellations())
}

func TestLoadMessierErrors(t *testing.T) {
	_, err := LoadMessier(strings.NewReader("not json"))
	assert.Error(t, err)

	_, err = LoadMessier(strings.NewReader(`{"info": {}, "data": {}}`))
	assert.Error(t, err)
}

func TestVisible(t *testing.T) {
	cat := loadSky(t).Messier

	visible := cat.Visible(riga, autumnNight, Filter{})
	assert.Equal(t, []int{1, 13, 27, 31, 33, 45, 51, 57, 81}, numbers(visible))
	for _, v := range visible {
		assert.Greater(t, v.Altitude, DefaultMinAltitude)
		h := celestial.HorizontalCoordinates(v.CelestialTarget.Equatorial(), riga, autumnNight)
		assert.Equal(t, h.Altitude, v.Altitude)
	}

	high := 60.0
	tests := []struct {
		name     string
		filter   Filter
		expected []int
	}{
		{"hard objects", Filter{Difficulty: Hard}, []int{33}},
		{"autumn objects", Filter{Season: Autumn}, []int{31, 33}},
		{"by constellation", Filter{Constellation: "Taurus"}, []int{1, 45}},
		{"higher altitude", Filter{MinAltitude: &high}, []int{31, 33}},
		{"combined filters", Filter{Season: Winter, Difficulty: Easy}, []int{45}},
		{"never rises", Filter{Constellation: "Scorpius"}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, numbers(cat.Visible(riga, autumnNight, tt.filter)))
		})
	}
}

func TestVisibleZeroMinAltitude(t *testing.T) {
	cat := loadSky(t).Messier

	var above []int
	low := 0
	for _, o := range cat.All() {
		alt := celestial.HorizontalCoordinates(o.Equatorial(), riga, autumnNight).Altitude
		if alt > 0 {
			above = append(above, o.MessierNumber)
		}
		if alt > 0 && alt <= DefaultMinAltitude {
			low++
		}
	}

	zero := 0.0
	got := numbers(cat.Visible(riga, autumnNight, Filter{MinAltitude: &zero}))
	assert.Equal(t, above, got)
	// An explicit zero is a real threshold, not a request for the default
	assert.Len(t, got, len(numbers(cat.Visible(riga, autumnNight, Filter{})))+low)
}

func TestFindStar(t *testing.T) {
	stars := loadSky(t).Stars

	vega, ok := stars.FindStar("VEGA ")
	require.True(t, ok)
	assert.InDelta(t, 279.235, vega.RA, 1e-9)

	cih, ok := stars.FindStar("Cah")
	require.True(t, ok)
	assert.Equal(t, "Cih", cih.Name)

	polaris, ok := stars.FindStar("north star")
	require.True(t, ok)
	assert.Equal(t, "Polaris", polaris.Name)

	_, ok = stars.FindStar("Altair")
	assert.False(t, ok)
}

func TestAliasNeverShadowsRealName(t *testing.T) {
	stars := NewStarCatalog(
		[]Star{{Name: "Gienah", RA: 311.553, Dec: 33.97}, {Name: "Aljanah", RA: 1, Dec: 1}},
		map[string]string{"aljanah": "Gienah"},
	)

	s, ok := stars.FindStar("aljanah")
	require.True(t, ok)
	assert.Equal(t, "Aljanah", s.Name)
}

func TestDensity(t *testing.T) {
	assert.Equal(t, 4.0, Sparse.MaxMagnitude())
	assert.Equal(t, 5.0, Normal.MaxMagnitude())
	assert.Equal(t, 6.0, Dense.MaxMagnitude())
	assert.Equal(t, 5.0, Density("").MaxMagnitude())
}

func TestStarsNear(t *testing.T) {
	stars := NewStarCatalog([]Star{
		{Name: "bright", RA: 10, Dec: 10, Mag: 1},
		{Name: "medium", RA: 11, Dec: 10, Mag: 4.5},
		{Name: "faint", RA: 10, Dec: 11, Mag: 5.8},
		{Name: "far", RA: 40, Dec: 10, Mag: 1},
	}, nil)

	center := celestial.Equatorial{RA: 10, Dec: 10}
	names := func(d Density) []string {
		var out []string
		for _, s := range stars.StarsNear(center, 5, d) {
			out = append(out, s.Name)
		}
		return out
	}

	assert.Equal(t, []string{"bright"}, names(Sparse))
	assert.Equal(t, []string{"bright", "medium"}, names(Normal))
	assert.Equal(t, []string{"bright", "medium", "faint"}, names(Dense))
}

func TestConstellations(t *testing.T) {
	sky := loadSky(t)

	names := make([]string, 0, len(sky.Constellations))
	for _, c := range sky.Constellations {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Ursa Major", "Orion", "Cassiopeia", "Cygnus", "Lyra"}, names)

	defs := []ConstellationDef{
		{Name: "Aquila", Abbreviation: "Aql", Connections: [][2]string{{"Altair", "Tarazed"}}},
		{Name: "Lyra", Abbreviation: "Lyr", Connections: [][2]string{{"Vega", "Sheliak"}, {"Vega", "Epsilon Lyrae"}}},
	}
	resolved, missing := sky.Stars.Constellations(defs)
	require.Len(t, resolved, 1)
	assert.Equal(t, 2, missing)
	assert.Len(t, resolved[0].Lines, 1)

	cas := sky.Constellations[2]
	require.Len(t, cas.Lines, 4)
}

func TestConstellationsInView(t *testing.T) {
	sky := loadSky(t)

	orion := celestial.Equatorial{RA: 83.8, Dec: -1}
	inView := ConstellationsInView(sky.Constellations, orion, 15)
	require.Len(t, inView, 1)
	assert.Equal(t, "Ori", inView[0].Abbreviation)

	assert.Empty(t, ConstellationsInView(sky.Constellations, orion, 5))
}

func TestSkyResolve(t *testing.T) {
	sky := loadSky(t)

	tests := []struct {
		name string
		want string
	}{
		{"moon", "Moon"},
		{"Saturn", "Saturn"},
		{"m31", "M31"},
		{"vega", "Vega"},
		{"Cah", "Cih"},
	}
	for _, tt := range tests {
		b, ok := sky.Resolve(tt.name)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.want, b.Name(), tt.name)
	}

	m31, _ := sky.Resolve("M31")
	fixed, ok := m31.(celestial.FixedTarget)
	require.True(t, ok)
	assert.InDelta(t, 10.68, fixed.RA, 0.1)

	_, ok = sky.Resolve("Planet X")
	assert.False(t, ok)

	var empty *Sky
	_, ok = empty.Resolve("sun")
	assert.True(t, ok)
}
