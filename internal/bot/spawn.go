package bot

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/freeeve/bigbrainbot/pkg/halite"
)

// SpawnEnv is the environment a spawn guard expression is evaluated against.
type SpawnEnv struct {
	Turn      int
	MaxTurns  int
	Banked    int
	ShipCost  int
	Ships     int
	Opponents int
}

func compileSpawnGuard(src string) (*vm.Program, error) {
	if src == "" {
		return nil, nil
	}
	program, err := expr.Compile(src, expr.Env(SpawnEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile spawn guard %q: %w", src, err)
	}
	return program, nil
}

// shouldSpawn applies the spawn rule after every unit has reserved its
// destination: inside the spawn window, enough banked halite, and a free
// shipyard cell. A configured guard can only veto.
func (c *Controller) shouldSpawn(g *halite.Game) (bool, error) {
	me := g.Me()
	if g.Turn > c.settings.SpawnCutoffTurn || me.Halite < c.settings.ShipCost {
		return false, nil
	}
	if g.Map.IsOccupied(me.Shipyard) {
		return false, nil
	}
	if c.spawnGuard == nil {
		return true, nil
	}
	env := SpawnEnv{
		Turn:      g.Turn,
		MaxTurns:  c.settings.MaxTurns,
		Banked:    me.Halite,
		ShipCost:  c.settings.ShipCost,
		Ships:     len(me.Ships),
		Opponents: len(g.Players) - 1,
	}
	out, err := vm.Run(c.spawnGuard, env)
	if err != nil {
		return false, fmt.Errorf("spawn guard: %w", err)
	}
	ok, _ := out.(bool)
	return ok, nil
}
