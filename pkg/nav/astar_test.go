package nav

import (
	"math/rand"
	"testing"

	"github.com/freeeve/bigbrainbot/pkg/halite"
)

// reachable is a plain BFS over free cells, used as the reference answer.
func reachable(m *halite.GameMap, src, dst halite.Position) bool {
	src, dst = m.Normalize(src), m.Normalize(dst)
	if src == dst {
		return true
	}
	seen := map[halite.Position]bool{src: true}
	queue := []halite.Position{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range m.Neighbors(cur) {
			if seen[nb] || m.IsOccupied(nb) {
				continue
			}
			if nb == dst {
				return true
			}
			seen[nb] = true
			queue = append(queue, nb)
		}
	}
	return false
}

func checkPath(t *testing.T, m *halite.GameMap, src, dst halite.Position, res Result) {
	t.Helper()
	if !res.Found {
		if len(res.Steps) != 0 {
			t.Fatalf("not found but returned %d steps", len(res.Steps))
		}
		return
	}
	prev := m.Normalize(src)
	for i, p := range res.Steps {
		if m.IsOccupied(p) {
			t.Fatalf("step %d %v is occupied", i, p)
		}
		if !m.Adjacent(prev, p) {
			t.Fatalf("step %d %v not adjacent to %v", i, p, prev)
		}
		prev = p
	}
	if len(res.Steps) > 0 && prev != m.Normalize(dst) {
		t.Fatalf("path ends at %v, want %v", prev, dst)
	}
}

func TestFindPathStraightLine(t *testing.T) {
	m := halite.NewGameMap(8, 8)
	res := FindPath(m, halite.Pos(1, 1), halite.Pos(4, 1), Options{})
	checkPath(t, m, halite.Pos(1, 1), halite.Pos(4, 1), res)
	if !res.Found || len(res.Steps) != 3 {
		t.Fatalf("got found=%v steps=%v, want 3 steps", res.Found, res.Steps)
	}
	if res.Steps[2] != halite.Pos(4, 1) {
		t.Errorf("last step = %v, want (4,1)", res.Steps[2])
	}
}

func TestFindPathWrapsAroundEdge(t *testing.T) {
	m := halite.NewGameMap(5, 5)
	res := FindPath(m, halite.Pos(0, 0), halite.Pos(4, 0), Options{})
	if !res.Found || len(res.Steps) != 1 || res.Steps[0] != halite.Pos(4, 0) {
		t.Fatalf("wrap path = %+v, want single step west to (4,0)", res)
	}
}

func TestFindPathSameCell(t *testing.T) {
	m := halite.NewGameMap(5, 5)
	res := FindPath(m, halite.Pos(2, 2), halite.Pos(7, 7), Options{})
	if !res.Found || len(res.Steps) != 0 {
		t.Errorf("same cell = %+v, want found with no steps", res)
	}
	if _, ok := res.Next(); ok {
		t.Error("Next on an empty path should report false")
	}
}

func TestFindPathEnclosedDestination(t *testing.T) {
	m := halite.NewGameMap(7, 7)
	dst := halite.Pos(3, 3)
	for _, nb := range m.Neighbors(dst) {
		m.MarkUnsafe(nb, 1)
	}
	res := FindPath(m, halite.Pos(0, 0), dst, Options{})
	if res.Found || len(res.Steps) != 0 {
		t.Fatalf("enclosed destination returned %+v", res)
	}
	if res.Exhausted {
		t.Error("open set emptied; should not be flagged as exhausted")
	}
}

func TestFindPathOccupiedDestination(t *testing.T) {
	m := halite.NewGameMap(6, 6)
	m.MarkUnsafe(halite.Pos(3, 0), 9)
	res := FindPath(m, halite.Pos(0, 0), halite.Pos(3, 0), Options{})
	if res.Found {
		t.Errorf("occupied destination should be unreachable, got %v", res.Steps)
	}
}

func TestFindPathRoutesAroundWall(t *testing.T) {
	m := halite.NewGameMap(9, 9)
	for y := 0; y < 8; y++ {
		m.MarkUnsafe(halite.Pos(4, y), 1)
	}
	src, dst := halite.Pos(2, 2), halite.Pos(6, 2)
	res := FindPath(m, src, dst, Options{})
	checkPath(t, m, src, dst, res)
	if !res.Found {
		t.Fatal("expected a route through the gap or around the torus")
	}
}

func TestFindPathFrictionAvoidsRichCells(t *testing.T) {
	m := halite.NewGameMap(9, 9)
	m.SetHalite(halite.Pos(3, 2), 900)
	src, dst := halite.Pos(2, 2), halite.Pos(4, 2)

	res := FindPath(m, src, dst, Options{Cost: StepFrictionCost})
	checkPath(t, m, src, dst, res)
	for _, p := range res.Steps {
		if p == halite.Pos(3, 2) {
			t.Errorf("path %v crosses the rich cell", res.Steps)
		}
	}
	if len(res.Steps) != 4 {
		t.Errorf("detour length = %d, want 4", len(res.Steps))
	}
}

func TestFrictionCostIsNotDistanceOptimal(t *testing.T) {
	m := halite.NewGameMap(9, 9)
	m.SetHalite(halite.Pos(3, 2), 900)
	src, dst := halite.Pos(2, 2), halite.Pos(4, 2)

	res := FindPath(m, src, dst, Options{Cost: FrictionCost})
	checkPath(t, m, src, dst, res)
	if !res.Found || res.Cost != 0 {
		t.Fatalf("found=%v cost=%v, want a free detour", res.Found, res.Cost)
	}
	if len(res.Steps) <= m.Distance(src, dst) {
		t.Errorf("path length %d, want longer than distance %d", len(res.Steps), m.Distance(src, dst))
	}
}

func TestFindPathExpansionCap(t *testing.T) {
	m := halite.NewGameMap(20, 20)
	res := FindPath(m, halite.Pos(0, 0), halite.Pos(10, 10), Options{MaxExpansions: 3})
	if res.Found || !res.Exhausted {
		t.Errorf("capped search = found:%v exhausted:%v, want exhausted", res.Found, res.Exhausted)
	}
	if res.Expanded != 3 {
		t.Errorf("Expanded = %d, want 3", res.Expanded)
	}
}

func TestFindPathDeterministic(t *testing.T) {
	m := halite.NewGameMap(12, 12)
	for i := 0; i < 12; i++ {
		m.SetHalite(halite.Pos(i, (i*5)%12), 40*i)
	}
	first := FindPath(m, halite.Pos(0, 0), halite.Pos(6, 6), Options{Cost: FrictionCost})
	for i := 0; i < 20; i++ {
		again := FindPath(m, halite.Pos(0, 0), halite.Pos(6, 6), Options{Cost: FrictionCost})
		if len(again.Steps) != len(first.Steps) {
			t.Fatalf("run %d length %d, want %d", i, len(again.Steps), len(first.Steps))
		}
		for j := range first.Steps {
			if again.Steps[j] != first.Steps[j] {
				t.Fatalf("run %d diverged at step %d: %v vs %v", i, j, again.Steps[j], first.Steps[j])
			}
		}
	}
}

func TestFindPathMatchesReachability(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		w, h := 3+rng.Intn(8), 3+rng.Intn(8)
		m := halite.NewGameMap(w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				m.SetHalite(halite.Pos(x, y), rng.Intn(1000))
				if rng.Float64() < 0.35 {
					m.MarkUnsafe(halite.Pos(x, y), halite.ShipID(y*w+x))
				}
			}
		}
		src := halite.Pos(rng.Intn(w), rng.Intn(h))
		dst := halite.Pos(rng.Intn(w), rng.Intn(h))
		m.At(src).OccupiedBy = halite.NoShip
		if src == dst {
			continue
		}

		for _, cost := range []CostFunc{StepFrictionCost, FrictionCost} {
			res := FindPath(m, src, dst, Options{Cost: cost})
			checkPath(t, m, src, dst, res)
			if want := reachable(m, src, dst); res.Found != want {
				t.Fatalf("trial %d %dx%d %v->%v: found=%v, reachable=%v", trial, w, h, src, dst, res.Found, want)
			}
			if res.Exhausted {
				t.Fatalf("trial %d: default cap should cover the whole map", trial)
			}
		}
	}
}

func TestCostByName(t *testing.T) {
	cell := &halite.Cell{Halite: 50}
	cases := []struct {
		name string
		want float64
	}{
		{"", 6},
		{"step_friction", 6},
		{"friction", 5},
	}
	for _, tc := range cases {
		f, err := CostByName(tc.name)
		if err != nil {
			t.Fatalf("CostByName(%q): %v", tc.name, err)
		}
		if got := f(cell); got != tc.want {
			t.Errorf("CostByName(%q)(50) = %v, want %v", tc.name, got, tc.want)
		}
	}
	if _, err := CostByName("teleport"); err == nil {
		t.Error("unknown cost name should fail")
	}
}
