package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/devskill-org/stargazing/celestial"
)

// Season is the part of the year an object is best placed
type Season string

const (
	Winter Season = "Winter"
	Spring Season = "Spring"
	Summer Season = "Summer"
	Autumn Season = "Autumn"
)

// NormalizeSeason folds free-form catalog seasons ("Late Fall", "early winter") onto
// the four seasons. Unrecognized text maps to Summer.
func NormalizeSeason(v string) Season {
	s := strings.ToLower(v)
	switch {
	case strings.Contains(s, "winter"):
		return Winter
	case strings.Contains(s, "spring"):
		return Spring
	case strings.Contains(s, "summer"):
		return Summer
	case strings.Contains(s, "autumn"), strings.Contains(s, "fall"):
		return Autumn
	}
	return Summer
}

// Difficulty is how hard an object is to observe
type Difficulty string

const (
	VeryEasy Difficulty = "Very Easy"
	Easy     Difficulty = "Easy"
	Moderate Difficulty = "Moderate"
	Hard     Difficulty = "Hard"
	VeryHard Difficulty = "Very Hard"
)

// CelestialTarget is a deep-sky catalog entry
type CelestialTarget struct {
	MessierNumber  int        `json:"messierNumber"`
	Name           string     `json:"name"`
	AlternateNames []string   `json:"alternateNames"`
	NGC            string     `json:"NGC"`
	Type           string     `json:"type"`
	Constellation  string     `json:"constellation"`
	RightAscension string     `json:"rightAscension"`
	Declination    string     `json:"declination"`
	Magnitude      float64    `json:"magnitude"`
	Size           string     `json:"size"`
	Distance       float64    `json:"distance"` // light years
	ViewingSeason  string     `json:"viewingSeason"`
	Difficulty     Difficulty `json:"viewingDifficulty"`
	Image          string     `json:"image"`
}

// ID returns the catalog designation, e.g. "M42"
func (t CelestialTarget) ID() string {
	return fmt.Sprintf("M%d", t.MessierNumber)
}

// Equatorial returns the parsed catalog position in degrees
func (t CelestialTarget) Equatorial() celestial.Equatorial {
	return celestial.Equatorial{
		RA:  celestial.ParseRA(t.RightAscension),
		Dec: celestial.ParseDec(t.Declination),
	}
}

// Target adapts the entry for rise/set and altitude computations
func (t CelestialTarget) Target() celestial.FixedTarget {
	return celestial.FixedTarget{Label: t.ID(), Equatorial: t.Equatorial()}
}

// Catalog is an immutable, number-ordered deep-sky catalog
type Catalog struct {
	info    json.RawMessage
	objects []CelestialTarget
	byID    map[string]int
}

type messierFile struct {
	Info json.RawMessage            `json:"info"`
	Data map[string]CelestialTarget `json:"data"`
}

// LoadMessier reads a catalog of the form {"info": ..., "data": {"M1": {...}}}
func LoadMessier(r io.Reader) (*Catalog, error) {
	var f messierFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode messier catalog: %w", err)
	}
	if len(f.Data) == 0 {
		return nil, fmt.Errorf("messier catalog is empty")
	}

	objects := make([]CelestialTarget, 0, len(f.Data))
	for _, o := range f.Data {
		objects = append(objects, o)
	}
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].MessierNumber < objects[j].MessierNumber
	})

	byID := make(map[string]int, len(objects))
	for i, o := range objects {
		byID[strings.ToUpper(o.ID())] = i
	}
	return &Catalog{info: f.Info, objects: objects, byID: byID}, nil
}

// Info returns the raw catalog metadata
func (c *Catalog) Info() json.RawMessage { return c.info }

// Len returns the number of entries
func (c *Catalog) Len() int { return len(c.objects) }

// All returns a copy of every entry ordered by Messier number
func (c *Catalog) All() []CelestialTarget {
	out := make([]CelestialTarget, len(c.objects))
	copy(out, c.objects)
	return out
}

// Get looks up an entry by designation, case-insensitive ("m42", "M42")
func (c *Catalog) Get(id string) (CelestialTarget, bool) {
	i, ok := c.byID[strings.ToUpper(strings.TrimSpace(id))]
	if !ok {
		return CelestialTarget{}, false
	}
	return c.objects[i], true
}

// Constellations lists the distinct constellations in the catalog, sorted
func (c *Catalog) Constellations() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range c.objects {
		if o.Constellation == "" {
			continue
		}
		if _, ok := seen[o.Constellation]; ok {
			continue
		}
		seen[o.Constellation] = struct{}{}
		out = append(out, o.Constellation)
	}
	sort.Strings(out)
	return out
}

// DefaultMinAltitude is the altitude an object must clear to count as visible
const DefaultMinAltitude = 10.0

// Filter narrows Visible. Empty strings disable a criterion and a nil
// MinAltitude means DefaultMinAltitude.
type Filter struct {
	MinAltitude   *float64
	Difficulty    Difficulty
	Season        Season
	Constellation string
}

// VisibleTarget is an entry together with its position at the query instant
type VisibleTarget struct {
	CelestialTarget
	RA       float64 `json:"raDeg"`
	Dec      float64 `json:"decDeg"`
	Altitude float64 `json:"altitude"`
	Azimuth  float64 `json:"azimuth"`
}

// Visible returns the entries above the minimum altitude for obs at t that match f,
// ordered by Messier number.
func (c *Catalog) Visible(obs celestial.Observer, t time.Time, f Filter) []VisibleTarget {
	minAlt := DefaultMinAltitude
	if f.MinAltitude != nil {
		minAlt = *f.MinAltitude
	}

	var out []VisibleTarget
	for _, o := range c.objects {
		if f.Difficulty != "" && o.Difficulty != f.Difficulty {
			continue
		}
		if f.Season != "" && NormalizeSeason(o.ViewingSeason) != f.Season {
			continue
		}
		if f.Constellation != "" && o.Constellation != f.Constellation {
			continue
		}

		eq := o.Equatorial()
		h := celestial.HorizontalCoordinates(eq, obs, t)
		if h.Altitude <= minAlt {
			continue
		}
		out = append(out, VisibleTarget{
			CelestialTarget: o,
			RA:              eq.RA,
			Dec:             eq.Dec,
			Altitude:        h.Altitude,
			Azimuth:         h.Azimuth,
		})
	}
	return out
}
