// Package arena runs local matches between controllers under the Halite III
// turn rules.
package arena

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/freeeve/bigbrainbot/pkg/halite"
)

// MapSpec describes a starting board. Either Halite rows are given, or every
// cell starts at InitialHalite. A non-zero Seed scatters the initial halite
// randomly, mirrored left to right so two-seat maps stay fair.
type MapSpec struct {
	Name          string            `yaml:"name"`
	Width         int               `yaml:"width"`
	Height        int               `yaml:"height"`
	Halite        [][]int           `yaml:"halite"`
	InitialHalite int               `yaml:"initial_halite"`
	Seed          int64             `yaml:"seed"`
	Shipyards     []halite.Position `yaml:"shipyards"`
}

// LoadMap reads and validates a YAML map file. The file name (without
// extension) is used when the map has no name.
func LoadMap(path string) (*MapSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map: %w", err)
	}
	spec, err := ParseMap(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return spec, nil
}

// ParseMap decodes and validates a YAML map.
func ParseMap(raw []byte) (*MapSpec, error) {
	var spec MapSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("decode map: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks dimensions, halite rows and shipyard placement.
func (s *MapSpec) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("map size %dx%d must be positive", s.Width, s.Height)
	}
	if len(s.Halite) > 0 {
		if len(s.Halite) != s.Height {
			return fmt.Errorf("map has %d halite rows, want %d", len(s.Halite), s.Height)
		}
		for y, row := range s.Halite {
			if len(row) != s.Width {
				return fmt.Errorf("halite row %d has %d cells, want %d", y, len(row), s.Width)
			}
			for x, h := range row {
				if h < 0 {
					return fmt.Errorf("halite at (%d,%d) is negative", x, y)
				}
			}
		}
	}
	if s.InitialHalite < 0 {
		return fmt.Errorf("initial_halite must not be negative")
	}
	if len(s.Shipyards) == 0 {
		return fmt.Errorf("map has no shipyards")
	}
	seen := make(map[halite.Position]bool, len(s.Shipyards))
	for i, p := range s.Shipyards {
		if p.X < 0 || p.X >= s.Width || p.Y < 0 || p.Y >= s.Height {
			return fmt.Errorf("shipyard %d at %v is out of bounds", i, p)
		}
		if seen[p] {
			return fmt.Errorf("shipyard %d at %v overlaps another shipyard", i, p)
		}
		seen[p] = true
	}
	return nil
}

// Seats returns the number of players the map supports.
func (s *MapSpec) Seats() int {
	return len(s.Shipyards)
}

// Build returns a fresh game map with the starting halite. Shipyard cells
// start empty and are flagged as structures.
func (s *MapSpec) Build() *halite.GameMap {
	m := halite.NewGameMap(s.Width, s.Height)
	var rng *rand.Rand
	if s.Seed != 0 {
		rng = rand.New(rand.NewSource(s.Seed))
	}
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			switch {
			case len(s.Halite) > 0:
				m.SetHalite(halite.Pos(x, y), s.Halite[y][x])
			case rng != nil && x < (s.Width+1)/2:
				h := rng.Intn(2*s.InitialHalite + 1)
				m.SetHalite(halite.Pos(x, y), h)
				m.SetHalite(halite.Pos(s.Width-1-x, y), h)
			case rng == nil:
				m.SetHalite(halite.Pos(x, y), s.InitialHalite)
			}
		}
	}
	for _, p := range s.Shipyards {
		m.SetHalite(p, 0)
		m.At(p).Structure = true
	}
	return m
}
