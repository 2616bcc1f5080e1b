package bot

import (
	"time"

	"github.com/freeeve/bigbrainbot/pkg/halite"
	"github.com/freeeve/bigbrainbot/pkg/nav"
)

const (
	DefaultLowYieldThreshold = 20
	DefaultSpawnReserveTurns = 50
	DefaultTurnBudget        = 1800 * time.Millisecond
	DefaultMinHarvesters     = 5
	DefaultBlockerLimit      = 4
	DefaultSearchRadius      = 1
)

// Settings is everything the controller needs that is not part of the
// per-turn snapshot.
type Settings struct {
	MaxCargo          int
	ShipCost          int
	MaxTurns          int
	MoveCostRatio     int // 0 disables the move-cost check
	LowYieldThreshold int
	SpawnCutoffTurn   int
	SpawnGuard        string // optional expr-lang boolean expression
	SearchRadius      int    // 1 scans the four neighbours only

	TurnBudget    time.Duration
	MaxExpansions int // 0 means width*height
	PathCost      nav.CostFunc
}

// DefaultSettings derives settings from the engine constants.
func DefaultSettings(c halite.Constants) Settings {
	return Settings{
		MaxCargo:          c.MaxHalite,
		ShipCost:          c.ShipCost,
		MaxTurns:          c.MaxTurns,
		MoveCostRatio:     c.MoveCostRatio,
		LowYieldThreshold: DefaultLowYieldThreshold,
		SpawnCutoffTurn:   c.MaxTurns - DefaultSpawnReserveTurns,
		SearchRadius:      DefaultSearchRadius,
		TurnBudget:        DefaultTurnBudget,
		PathCost:          nav.StepFrictionCost,
	}
}
