package halite

import "sort"

// Constants are the engine parameters sent at game start.
type Constants struct {
	MaxHalite               int     `json:"MAX_ENERGY"`
	ShipCost                int     `json:"NEW_ENTITY_ENERGY_COST"`
	DropoffCost             int     `json:"DROPOFF_COST"`
	MaxTurns                int     `json:"MAX_TURNS"`
	ExtractRatio            int     `json:"EXTRACT_RATIO"`
	MoveCostRatio           int     `json:"MOVE_COST_RATIO"`
	InspirationEnabled      bool    `json:"INSPIRATION_ENABLED"`
	InspirationRadius       int     `json:"INSPIRATION_RADIUS"`
	InspirationShipCount    int     `json:"INSPIRATION_SHIP_COUNT"`
	InspiredExtractRatio    int     `json:"INSPIRED_EXTRACT_RATIO"`
	InspiredBonusMultiplier float64 `json:"INSPIRED_BONUS_MULTIPLIER"`
	InspiredMoveCostRatio   int     `json:"INSPIRED_MOVE_COST_RATIO"`
	GameSeed                int64   `json:"game_seed"`
}

// DefaultConstants returns the standard Halite III values.
func DefaultConstants() Constants {
	return Constants{
		MaxHalite:               1000,
		ShipCost:                1000,
		DropoffCost:             4000,
		MaxTurns:                500,
		ExtractRatio:            4,
		MoveCostRatio:           10,
		InspirationEnabled:      true,
		InspirationRadius:       4,
		InspirationShipCount:    2,
		InspiredExtractRatio:    4,
		InspiredBonusMultiplier: 2.0,
		InspiredMoveCostRatio:   10,
	}
}

// Game is the world snapshot for one turn.
type Game struct {
	Turn      int
	MyID      PlayerID
	Players   map[PlayerID]*Player
	Map       *GameMap
	Constants Constants
}

// Me returns the player this bot controls.
func (g *Game) Me() *Player {
	return g.Players[g.MyID]
}

// PlayerIDs returns every seat id in ascending order.
func (g *Game) PlayerIDs() []PlayerID {
	ids := make([]PlayerID, 0, len(g.Players))
	for id := range g.Players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Opponents returns the other players in ascending id order.
func (g *Game) Opponents() []*Player {
	var out []*Player
	for _, id := range g.PlayerIDs() {
		if id != g.MyID {
			out = append(out, g.Players[id])
		}
	}
	return out
}

// OpponentShipyards returns opponent shipyard positions in ascending player id order.
func (g *Game) OpponentShipyards() []Position {
	var out []Position
	for _, p := range g.Opponents() {
		out = append(out, p.Shipyard)
	}
	return out
}

// ResetOccupancy recomputes the occupancy layer from scratch: every ship of
// every player marks the cell it stands on, and shipyards and dropoffs are
// flagged as structures.
func (g *Game) ResetOccupancy() {
	g.Map.ClearOccupancy()
	for _, id := range g.PlayerIDs() {
		p := g.Players[id]
		g.Map.At(p.Shipyard).Structure = true
		for _, d := range p.Dropoffs {
			g.Map.At(d.Position).Structure = true
		}
		for _, s := range p.Ships {
			g.Map.MarkUnsafe(s.Position, s.ID)
		}
	}
}

// TotalHalite returns banked plus carried halite per player.
func (g *Game) TotalHalite() map[PlayerID]int {
	out := make(map[PlayerID]int, len(g.Players))
	for id, p := range g.Players {
		out[id] = p.TotalHalite()
	}
	return out
}
