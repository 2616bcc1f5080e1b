package halite

import "fmt"

// Direction is one of the four cardinal moves or Still.
type Direction int

const (
	Still Direction = iota
	North
	South
	East
	West
)

// Cardinals returns the four moving directions in the fixed enumeration order
// used for tie-breaking: North, South, East, West.
func Cardinals() []Direction {
	return []Direction{North, South, East, West}
}

// Offset returns the unit delta of the direction. North is -y.
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	case West:
		return -1, 0
	}
	return 0, 0
}

// Invert returns the opposite direction. Still inverts to itself.
func (d Direction) Invert() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	}
	return Still
}

// Char returns the engine wire character for the direction.
func (d Direction) Char() byte {
	switch d {
	case North:
		return 'n'
	case South:
		return 's'
	case East:
		return 'e'
	case West:
		return 'w'
	}
	return 'o'
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	}
	return "still"
}

// Position is a cell coordinate. Positions are only meaningful relative to a
// GameMap, which normalizes them into [0,width) x [0,height).
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Pos is shorthand for Position{X: x, Y: y}.
func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

// Offset returns the position one step in direction d, without wrapping.
// Use GameMap.Move for a wrapped step.
func (p Position) Offset(d Direction) Position {
	dx, dy := d.Offset()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
