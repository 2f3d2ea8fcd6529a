package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/devskill-org/stargazing/celestial"
)

// Star is a bright-star catalog entry with decimal coordinates
type Star struct {
	Name string  `json:"name"`
	RA   float64 `json:"ra"`
	Dec  float64 `json:"dec"`
	Mag  float64 `json:"mag"`
}

// Equatorial returns the star position
func (s Star) Equatorial() celestial.Equatorial {
	return celestial.Equatorial{RA: s.RA, Dec: s.Dec}
}

// Density selects how faint StarsNear goes
type Density string

const (
	Sparse Density = "sparse"
	Normal Density = "normal"
	Dense  Density = "dense"
)

// MaxMagnitude returns the faintest magnitude shown at density d
func (d Density) MaxMagnitude() float64 {
	switch d {
	case Sparse:
		return 4
	case Dense:
		return 6
	default:
		return 5
	}
}

// StarCatalog indexes stars by lower-cased name and alias
type StarCatalog struct {
	stars     []Star
	nameIndex map[string]int
}

// LoadStars reads a JSON array of stars. aliases maps alternative names to the name
// used in the star data; an alias for a star that is not present is ignored.
func LoadStars(r io.Reader, aliases map[string]string) (*StarCatalog, error) {
	var stars []Star
	if err := json.NewDecoder(r).Decode(&stars); err != nil {
		return nil, fmt.Errorf("failed to decode star catalog: %w", err)
	}
	return NewStarCatalog(stars, aliases), nil
}

// NewStarCatalog builds the name index over stars
func NewStarCatalog(stars []Star, aliases map[string]string) *StarCatalog {
	c := &StarCatalog{
		stars:     stars,
		nameIndex: make(map[string]int, len(stars)+len(aliases)),
	}
	for i, s := range stars {
		if s.Name == "" {
			continue
		}
		c.nameIndex[nameKey(s.Name)] = i
	}
	for alias, name := range aliases {
		if i, ok := c.nameIndex[nameKey(name)]; ok {
			if _, taken := c.nameIndex[nameKey(alias)]; !taken {
				c.nameIndex[nameKey(alias)] = i
			}
		}
	}
	return c
}

func nameKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Len returns the number of stars
func (c *StarCatalog) Len() int { return len(c.stars) }

// FindStar resolves a name or alias, ignoring case
func (c *StarCatalog) FindStar(name string) (Star, bool) {
	i, ok := c.nameIndex[nameKey(name)]
	if !ok {
		return Star{}, false
	}
	return c.stars[i], true
}

// StarsNear returns the stars within radius degrees of center that are at least as
// bright as the density limit.
func (c *StarCatalog) StarsNear(center celestial.Equatorial, radius float64, d Density) []Star {
	maxMag := d.MaxMagnitude()
	var out []Star
	for _, s := range c.stars {
		if s.Mag > maxMag {
			continue
		}
		if celestial.AngularDistance(center, s.Equatorial()) <= radius {
			out = append(out, s)
		}
	}
	return out
}
