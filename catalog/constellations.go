package catalog

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/devskill-org/stargazing/celestial"
)

// ConstellationDef describes a stick figure by star names
type ConstellationDef struct {
	Name         string      `json:"name"`
	Abbreviation string      `json:"abbreviation"`
	Connections  [][2]string `json:"connections"`
}

// Line is one resolved segment of a stick figure
type Line struct {
	From celestial.Equatorial `json:"from"`
	To   celestial.Equatorial `json:"to"`
}

// Constellation is a stick figure with resolved coordinates
type Constellation struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Lines        []Line `json:"lines"`
}

// LoadConstellationDefs reads a JSON array of definitions
func LoadConstellationDefs(r io.Reader) ([]ConstellationDef, error) {
	var defs []ConstellationDef
	if err := json.NewDecoder(r).Decode(&defs); err != nil {
		return nil, fmt.Errorf("failed to decode constellations: %w", err)
	}
	return defs, nil
}

// Constellations resolves defs against the star catalog. Connections naming an
// unknown star are skipped and counted in missing; figures left with no lines are dropped.
func (c *StarCatalog) Constellations(defs []ConstellationDef) (out []Constellation, missing int) {
	for _, def := range defs {
		var lines []Line
		for _, conn := range def.Connections {
			a, okA := c.FindStar(conn[0])
			b, okB := c.FindStar(conn[1])
			if !okA || !okB {
				missing++
				continue
			}
			lines = append(lines, Line{From: a.Equatorial(), To: b.Equatorial()})
		}
		if len(lines) == 0 {
			continue
		}
		out = append(out, Constellation{Name: def.Name, Abbreviation: def.Abbreviation, Lines: lines})
	}
	return out, missing
}

// ConstellationsInView keeps figures whose every line endpoint lies within radius of center
func ConstellationsInView(all []Constellation, center celestial.Equatorial, radius float64) []Constellation {
	var out []Constellation
	for _, con := range all {
		inView := true
		for _, l := range con.Lines {
			if celestial.AngularDistance(center, l.From) > radius || celestial.AngularDistance(center, l.To) > radius {
				inView = false
				break
			}
		}
		if inView {
			out = append(out, con)
		}
	}
	return out
}
