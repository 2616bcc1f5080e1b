package halite

import "testing"

func TestMoveThenInverseReturnsToStart(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {2, 3}, {5, 5}, {7, 4}, {32, 32}} {
		m := NewGameMap(size[0], size[1])
		for y := -1; y <= size[1]; y++ {
			for x := -1; x <= size[0]; x++ {
				p := Pos(x, y)
				for _, d := range append(Cardinals(), Still) {
					got := m.Move(m.Move(p, d), d.Invert())
					if got != m.Normalize(p) {
						t.Errorf("%dx%d: %v %s then %s = %v, want %v", size[0], size[1], p, d, d.Invert(), got, m.Normalize(p))
					}
				}
			}
		}
	}
}

func TestNormalizeWraps(t *testing.T) {
	m := NewGameMap(5, 4)
	cases := []struct {
		in, want Position
	}{
		{Pos(0, 0), Pos(0, 0)},
		{Pos(5, 4), Pos(0, 0)},
		{Pos(-1, -1), Pos(4, 3)},
		{Pos(12, -9), Pos(2, 3)},
	}
	for _, tc := range cases {
		if got := m.Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDistanceUsesShortestWrap(t *testing.T) {
	m := NewGameMap(10, 8)
	cases := []struct {
		a, b Position
		want int
	}{
		{Pos(0, 0), Pos(0, 0), 0},
		{Pos(0, 0), Pos(9, 0), 1},
		{Pos(0, 0), Pos(0, 7), 1},
		{Pos(0, 0), Pos(5, 4), 9},
		{Pos(1, 1), Pos(8, 6), 6},
		{Pos(-1, 0), Pos(0, 0), 1},
	}
	for _, tc := range cases {
		if got := m.Distance(tc.a, tc.b); got != tc.want {
			t.Errorf("Distance(%v, %v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
		if got := m.Distance(tc.b, tc.a); got != tc.want {
			t.Errorf("Distance(%v, %v) = %d, want %d (symmetry)", tc.b, tc.a, got, tc.want)
		}
	}
}

func TestNeighborsOrderAndWrap(t *testing.T) {
	m := NewGameMap(5, 5)
	got := m.Neighbors(Pos(0, 0))
	want := [4]Position{Pos(0, 4), Pos(0, 1), Pos(1, 0), Pos(4, 0)}
	if got != want {
		t.Errorf("Neighbors((0,0)) = %v, want %v", got, want)
	}
	for _, n := range got {
		if !m.Adjacent(Pos(0, 0), n) {
			t.Errorf("neighbor %v not adjacent to origin", n)
		}
	}
}

func TestDirectionTo(t *testing.T) {
	m := NewGameMap(6, 6)
	for _, d := range Cardinals() {
		from := Pos(0, 5)
		to := m.Move(from, d)
		got, ok := m.DirectionTo(from, to)
		if !ok || got != d {
			t.Errorf("DirectionTo(%v, %v) = %s,%v, want %s", from, to, got, ok, d)
		}
	}
	if _, ok := m.DirectionTo(Pos(0, 0), Pos(2, 0)); ok {
		t.Error("DirectionTo should reject non-adjacent cells")
	}
}

func TestOccupancyMarking(t *testing.T) {
	m := NewGameMap(4, 4)
	if m.IsOccupied(Pos(1, 1)) {
		t.Fatal("fresh map should be free")
	}
	m.MarkUnsafe(Pos(5, 5), 7)
	if !m.IsOccupied(Pos(1, 1)) {
		t.Error("wrapped mark not visible at (1,1)")
	}
	if got := m.At(Pos(1, 1)).OccupiedBy; got != 7 {
		t.Errorf("OccupiedBy = %d, want 7", got)
	}
	c := m.Clone()
	m.ClearOccupancy()
	if m.IsOccupied(Pos(1, 1)) {
		t.Error("ClearOccupancy left a reservation")
	}
	if !c.IsOccupied(Pos(1, 1)) {
		t.Error("Clone should not share cells with the original")
	}
}

func TestResetOccupancyMarksAllShips(t *testing.T) {
	g := &Game{
		MyID: 0,
		Map:  NewGameMap(8, 8),
		Players: map[PlayerID]*Player{
			0: {ID: 0, Shipyard: Pos(1, 1), Ships: []*Ship{{ID: 0, Owner: 0, Position: Pos(2, 2)}}},
			1: {ID: 1, Shipyard: Pos(6, 6), Ships: []*Ship{{ID: 1, Owner: 1, Position: Pos(6, 5)}}},
		},
	}
	g.Map.MarkUnsafe(Pos(4, 4), 99)
	g.ResetOccupancy()

	if g.Map.IsOccupied(Pos(4, 4)) {
		t.Error("stale reservation survived ResetOccupancy")
	}
	if !g.Map.IsOccupied(Pos(2, 2)) || !g.Map.IsOccupied(Pos(6, 5)) {
		t.Error("ship cells should be occupied")
	}
	if g.Map.IsOccupied(Pos(1, 1)) {
		t.Error("empty shipyard should not be occupied")
	}
	if !g.Map.At(Pos(6, 6)).Structure {
		t.Error("shipyard should be flagged as a structure")
	}
	if got := g.OpponentShipyards(); len(got) != 1 || got[0] != Pos(6, 6) {
		t.Errorf("OpponentShipyards = %v, want [(6,6)]", got)
	}
}
