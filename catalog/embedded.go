package catalog

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/devskill-org/stargazing/celestial"
)

//go:embed data/*.json
var dataFS embed.FS

// Sky bundles the built-in deep-sky, star and constellation data
type Sky struct {
	Messier        *Catalog
	Stars          *StarCatalog
	Constellations []Constellation
}

// LoadDefault parses the catalogs shipped with the binary
func LoadDefault() (*Sky, error) {
	messier, err := readFile("data/messier.json")
	if err != nil {
		return nil, err
	}
	cat, err := LoadMessier(bytes.NewReader(messier))
	if err != nil {
		return nil, err
	}

	aliasData, err := readFile("data/aliases.json")
	if err != nil {
		return nil, err
	}
	var aliases map[string]string
	if err := json.Unmarshal(aliasData, &aliases); err != nil {
		return nil, fmt.Errorf("failed to decode star aliases: %w", err)
	}

	starData, err := readFile("data/stars.json")
	if err != nil {
		return nil, err
	}
	stars, err := LoadStars(bytes.NewReader(starData), aliases)
	if err != nil {
		return nil, err
	}

	defData, err := readFile("data/constellations.json")
	if err != nil {
		return nil, err
	}
	defs, err := LoadConstellationDefs(bytes.NewReader(defData))
	if err != nil {
		return nil, err
	}
	figures, _ := stars.Constellations(defs)

	return &Sky{Messier: cat, Stars: stars, Constellations: figures}, nil
}

// Resolve finds a target by name: the Sun, the Moon or a planet, then a Messier
// designation, then a star name or alias
func (s *Sky) Resolve(name string) (celestial.Body, bool) {
	if b, ok := celestial.BodyByName(name); ok {
		return b, true
	}
	if s == nil {
		return nil, false
	}
	if s.Messier != nil {
		if o, ok := s.Messier.Get(name); ok {
			return o.Target(), true
		}
	}
	if s.Stars != nil {
		if star, ok := s.Stars.FindStar(name); ok {
			return celestial.FixedTarget{Label: star.Name, Equatorial: star.Equatorial()}, true
		}
	}
	return nil, false
}

func readFile(name string) ([]byte, error) {
	b, err := dataFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded %s: %w", name, err)
	}
	return b, nil
}
