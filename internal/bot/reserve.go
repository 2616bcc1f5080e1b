package bot

import (
	"fmt"

	"github.com/freeeve/bigbrainbot/pkg/halite"
)

// reservations tracks the destination each unit committed to this turn.
// Every claim is written through to the map's occupancy layer so units
// evaluated later see the cell as taken.
type reservations struct {
	m     *halite.GameMap
	taken map[halite.Position]halite.ShipID
}

func newReservations(m *halite.GameMap) *reservations {
	return &reservations{m: m, taken: make(map[halite.Position]halite.ShipID)}
}

// claim commits d. Two units claiming one cell means the occupancy layer was
// bypassed, which is reported as an invalid state.
func (r *reservations) claim(d Decision) error {
	dest := r.m.Normalize(d.Dest)
	if prev, ok := r.taken[dest]; ok {
		return fmt.Errorf("%w: ships %d and %d both reserved %v", ErrInvalidState, prev, d.Ship, dest)
	}
	r.taken[dest] = d.Ship
	r.m.MarkUnsafe(dest, d.Ship)
	return nil
}
