package arena

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/freeeve/bigbrainbot/pkg/halite"
)

const tinyMap = `
width: 3
height: 2
halite:
  - [10, 20, 30]
  - [40, 50, 60]
shipyards:
  - {x: 0, y: 0}
  - {x: 2, y: 1}
`

func TestParseMapRows(t *testing.T) {
	spec, err := ParseMap([]byte(tinyMap))
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	if spec.Seats() != 2 {
		t.Errorf("Seats = %d, want 2", spec.Seats())
	}
	m := spec.Build()
	cases := []struct {
		p         halite.Position
		want      int
		structure bool
	}{
		{halite.Pos(0, 0), 0, true},
		{halite.Pos(1, 0), 20, false},
		{halite.Pos(0, 1), 40, false},
		{halite.Pos(2, 1), 0, true},
	}
	for _, tc := range cases {
		if got := m.Halite(tc.p); got != tc.want {
			t.Errorf("Halite(%v) = %d, want %d", tc.p, got, tc.want)
		}
		if got := m.At(tc.p).Structure; got != tc.structure {
			t.Errorf("Structure(%v) = %v, want %v", tc.p, got, tc.structure)
		}
	}
}

func TestParseMapRejects(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"no size", "shipyards: [{x: 0, y: 0}]", "must be positive"},
		{"short rows", "width: 2\nheight: 2\nhalite: [[1, 2]]\nshipyards: [{x: 0, y: 0}]", "halite rows"},
		{"ragged row", "width: 2\nheight: 1\nhalite: [[1]]\nshipyards: [{x: 0, y: 0}]", "row 0"},
		{"negative", "width: 1\nheight: 1\nhalite: [[-1]]\nshipyards: [{x: 0, y: 0}]", "negative"},
		{"no shipyards", "width: 2\nheight: 2", "no shipyards"},
		{"out of bounds", "width: 2\nheight: 2\nshipyards: [{x: 2, y: 0}]", "out of bounds"},
		{"overlap", "width: 2\nheight: 2\nshipyards: [{x: 1, y: 1}, {x: 1, y: 1}]", "overlaps"},
		{"bad yaml", "width: [", "decode map"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseMap([]byte(tc.yaml))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %v, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestBuildSeededMapIsMirrored(t *testing.T) {
	spec := &MapSpec{Width: 7, Height: 5, InitialHalite: 200, Seed: 3, Shipyards: []halite.Position{halite.Pos(1, 2), halite.Pos(5, 2)}}
	a, b := spec.Build(), spec.Build()
	for y := 0; y < spec.Height; y++ {
		for x := 0; x < spec.Width; x++ {
			p := halite.Pos(x, y)
			if a.Halite(p) != b.Halite(p) {
				t.Fatalf("seeded build not reproducible at %v", p)
			}
			if h := a.Halite(p); h < 0 || h > 400 {
				t.Errorf("Halite(%v) = %d, outside [0,400]", p, h)
			}
			if mirror := halite.Pos(spec.Width-1-x, y); a.Halite(p) != a.Halite(mirror) {
				t.Errorf("Halite(%v) = %d, mirror %v = %d", p, a.Halite(p), mirror, a.Halite(mirror))
			}
		}
	}
}

func TestLoadMapNamesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corner.yaml")
	if err := os.WriteFile(path, []byte(tinyMap), 0o644); err != nil {
		t.Fatal(err)
	}
	spec, err := LoadMap(path)
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if spec.Name != "corner" {
		t.Errorf("Name = %q, want corner", spec.Name)
	}
	if _, err := LoadMap(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestBundledMapsLoad(t *testing.T) {
	paths, err := filepath.Glob("../../maps/*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no bundled maps found")
	}
	for _, p := range paths {
		spec, err := LoadMap(p)
		if err != nil {
			t.Errorf("LoadMap(%s): %v", p, err)
			continue
		}
		if want := strings.TrimSuffix(filepath.Base(p), ".yaml"); spec.Name != want {
			t.Errorf("%s: Name = %q, want %q", p, spec.Name, want)
		}
	}
}
