// Package crystal holds the crystal-structure record persisted alongside
// mesh data, with a JSON text codec.
package crystal

import (
	"encoding/json"
	"fmt"
)

// Site is one crystallographic site: a species label and fractional
// coordinates in the lattice basis.
type Site struct {
	Species string     `json:"species"`
	Coords  [3]float64 `json:"coords"`
}

// Structure is a periodic crystal: row-vector lattice matrix in angstrom and
// the occupied sites.
type Structure struct {
	Lattice [3][3]float64 `json:"lattice"`
	Sites   []Site        `json:"sites"`
}

// ToJSON serializes the structure to its textual form.
func (s *Structure) ToJSON() ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode structure: %w", err)
	}
	return raw, nil
}

// FromJSON deserializes a structure from its textual form.
func FromJSON(raw []byte) (*Structure, error) {
	var s Structure
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode structure: %w", err)
	}
	return &s, nil
}

// Composition counts sites per species.
func (s *Structure) Composition() map[string]int {
	counts := make(map[string]int, len(s.Sites))
	for _, site := range s.Sites {
		counts[site.Species]++
	}
	return counts
}

// Equal reports whether two structures share a lattice and composition.
func (s *Structure) Equal(o *Structure) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Lattice != o.Lattice {
		return false
	}
	a, b := s.Composition(), o.Composition()
	if len(a) != len(b) {
		return false
	}
	for species, count := range a {
		if b[species] != count {
			return false
		}
	}
	return true
}
