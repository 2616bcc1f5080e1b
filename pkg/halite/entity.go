package halite

import "sort"

// ShipID identifies a ship. The engine allocates ids monotonically, so
// ascending id order is creation order.
type ShipID int

// NoShip marks a free cell.
const NoShip ShipID = -1

// PlayerID identifies a player seat.
type PlayerID int

// Ship is a unit as reported by the engine for the current turn.
type Ship struct {
	ID       ShipID   `json:"id"`
	Owner    PlayerID `json:"owner"`
	Position Position `json:"position"`
	Halite   int      `json:"halite"`
}

// IsFull reports whether the ship carries at least maxHalite.
func (s *Ship) IsFull(maxHalite int) bool {
	return s.Halite >= maxHalite
}

// Dropoff is a structure where ships may deposit cargo.
type Dropoff struct {
	ID       int      `json:"id"`
	Owner    PlayerID `json:"owner"`
	Position Position `json:"position"`
}

// Player holds one seat's bank, shipyard and fleet.
type Player struct {
	ID       PlayerID  `json:"id"`
	Halite   int       `json:"halite"`
	Shipyard Position  `json:"shipyard"`
	Ships    []*Ship   `json:"ships"`
	Dropoffs []Dropoff `json:"dropoffs,omitempty"`
}

// SortShips orders the fleet by ship id (creation order).
func (p *Player) SortShips() {
	sort.Slice(p.Ships, func(i, j int) bool { return p.Ships[i].ID < p.Ships[j].ID })
}

// Ship returns the ship with the given id, or nil.
func (p *Player) Ship(id ShipID) *Ship {
	for _, s := range p.Ships {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// CargoHalite sums the halite carried by the player's ships.
func (p *Player) CargoHalite() int {
	total := 0
	for _, s := range p.Ships {
		total += s.Halite
	}
	return total
}

// TotalHalite is banked halite plus cargo.
func (p *Player) TotalHalite() int {
	return p.Halite + p.CargoHalite()
}
