package halite

// Cell is a single square of the toroidal grid.
type Cell struct {
	Position   Position
	Halite     int
	OccupiedBy ShipID // NoShip when free
	Structure  bool   // shipyard or dropoff
}

// IsOccupied reports whether a ship is on, or has reserved, the cell.
func (c *Cell) IsOccupied() bool {
	return c.OccupiedBy != NoShip
}

// GameMap is the toroidal grid. All lookups wrap, so callers may pass
// positions outside [0,width) x [0,height).
type GameMap struct {
	Width  int
	Height int
	cells  []Cell
}

// NewGameMap allocates a width x height map with every cell empty and free.
func NewGameMap(width, height int) *GameMap {
	m := &GameMap{Width: width, Height: height, cells: make([]Cell, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := &m.cells[y*width+x]
			c.Position = Position{X: x, Y: y}
			c.OccupiedBy = NoShip
		}
	}
	return m
}

// Normalize wraps p into the map bounds.
func (m *GameMap) Normalize(p Position) Position {
	return Position{X: mod(p.X, m.Width), Y: mod(p.Y, m.Height)}
}

// Index returns the dense cell index (0..width*height-1) for p.
func (m *GameMap) Index(p Position) int {
	p = m.Normalize(p)
	return p.Y*m.Width + p.X
}

// CellCount returns width*height.
func (m *GameMap) CellCount() int {
	return len(m.cells)
}

// At returns the cell at p (wrapped).
func (m *GameMap) At(p Position) *Cell {
	return &m.cells[m.Index(p)]
}

// Halite returns the halite on the cell at p.
func (m *GameMap) Halite(p Position) int {
	return m.At(p).Halite
}

// SetHalite overwrites the halite on the cell at p. Negative values clamp to 0.
func (m *GameMap) SetHalite(p Position, amount int) {
	if amount < 0 {
		amount = 0
	}
	m.At(p).Halite = amount
}

// IsOccupied reports whether the cell at p is taken for this turn.
func (m *GameMap) IsOccupied(p Position) bool {
	return m.At(p).IsOccupied()
}

// MarkUnsafe reserves the cell at p for ship id. Later readers in the same
// turn see it as occupied.
func (m *GameMap) MarkUnsafe(p Position, id ShipID) {
	m.At(p).OccupiedBy = id
}

// ClearOccupancy frees every cell.
func (m *GameMap) ClearOccupancy() {
	for i := range m.cells {
		m.cells[i].OccupiedBy = NoShip
	}
}

// Move returns the wrapped position one step from p in direction d.
func (m *GameMap) Move(p Position, d Direction) Position {
	return m.Normalize(p.Offset(d))
}

// Neighbors returns the four wrapped neighbours of p in North, South, East,
// West order.
func (m *GameMap) Neighbors(p Position) [4]Position {
	var out [4]Position
	for i, d := range Cardinals() {
		out[i] = m.Move(p, d)
	}
	return out
}

// Distance is the wrapped Manhattan distance:
// min(|dx|, W-|dx|) + min(|dy|, H-|dy|).
func (m *GameMap) Distance(a, b Position) int {
	a, b = m.Normalize(a), m.Normalize(b)
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	return min(dx, m.Width-dx) + min(dy, m.Height-dy)
}

// Adjacent reports whether a and b are 4-neighbours under wraparound.
func (m *GameMap) Adjacent(a, b Position) bool {
	return m.Distance(a, b) == 1
}

// DirectionTo returns the direction that steps from a onto the adjacent cell b.
// It returns Still, false when b is not adjacent to a.
func (m *GameMap) DirectionTo(a, b Position) (Direction, bool) {
	b = m.Normalize(b)
	for _, d := range Cardinals() {
		if m.Move(a, d) == b {
			return d, true
		}
	}
	return Still, false
}

// TotalHalite sums the halite left on the map.
func (m *GameMap) TotalHalite() int {
	total := 0
	for i := range m.cells {
		total += m.cells[i].Halite
	}
	return total
}

// Clone returns a deep copy. Mutations on the clone do not affect m.
func (m *GameMap) Clone() *GameMap {
	c := &GameMap{Width: m.Width, Height: m.Height, cells: make([]Cell, len(m.cells))}
	copy(c.cells, m.cells)
	return c
}
