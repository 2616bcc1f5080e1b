package bot

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/bigbrainbot/pkg/halite"
)

// TurnResult is the outcome of PlayTurn.
type TurnResult struct {
	Turn       int
	Commands   []halite.Command
	Decisions  []Decision
	Spawned    bool
	Moves      int
	Stays      map[StayReason]int
	Added      []halite.ShipID
	Removed    []halite.ShipID
	Elapsed    time.Duration
	OverBudget bool
}

// PlayTurn decides every owned unit's directive for the snapshot g and, last,
// whether to spawn. Units are evaluated in creation order and each one's
// destination is reserved before the next is evaluated.
//
// PlayTurn mutates g: occupancy is rebuilt from ship positions and then
// extended with this turn's reservations.
func (c *Controller) PlayTurn(g *halite.Game) (TurnResult, error) {
	start := c.now()
	deadline := start.Add(c.settings.TurnBudget)
	me := g.Me()
	if me == nil {
		return TurnResult{}, fmt.Errorf("player %d missing from snapshot", g.MyID)
	}

	g.ResetOccupancy()
	me.SortShips()
	if !c.started {
		c.started = true
		c.logStart(g)
	}

	res := TurnResult{Turn: g.Turn, Stays: make(map[StayReason]int)}
	res.Added, res.Removed = c.registry.Sync(g, c.roles)

	reserved := newReservations(g.Map)
	for _, ship := range me.Ships {
		u := c.registry.Get(ship.ID)
		d, err := c.step(g, ship, u, deadline)
		if err != nil {
			return res, err
		}
		if err := reserved.claim(d); err != nil {
			return res, err
		}
		res.Decisions = append(res.Decisions, d)
		res.Commands = append(res.Commands, d.Command())
		if d.Moving() {
			res.Moves++
		} else {
			res.Stays[d.Reason]++
		}
	}

	spawn, err := c.shouldSpawn(g)
	if err != nil {
		return res, err
	}
	if spawn {
		res.Spawned = true
		res.Commands = append(res.Commands, halite.Spawn())
	}

	res.Elapsed = c.now().Sub(start)
	res.OverBudget = res.Elapsed > c.settings.TurnBudget || res.Stays[ReasonOverBudget] > 0
	c.logTurn(g, res)
	return res, nil
}

func (c *Controller) logStart(g *halite.Game) {
	arr := zerolog.Arr()
	for _, p := range g.OpponentShipyards() {
		arr.Str(p.String())
	}
	c.log.Info().
		Int("player", int(g.MyID)).
		Int("width", g.Map.Width).
		Int("height", g.Map.Height).
		Str("roles", c.roles.Name()).
		Array("opponentShipyards", arr).
		Msg("Game started")
}

func (c *Controller) logTurn(g *halite.Game, res TurnResult) {
	if res.OverBudget {
		c.log.Warn().Int("turn", res.Turn).Dur("elapsed", res.Elapsed).Msg("Turn over budget")
	}
	ev := c.log.Debug()
	if !ev.Enabled() {
		return
	}
	totals := zerolog.Dict()
	for _, id := range g.PlayerIDs() {
		totals.Int(strconv.Itoa(int(id)), g.Players[id].TotalHalite())
	}
	stays := zerolog.Dict()
	for r := ReasonCollecting; r <= ReasonOverBudget; r++ {
		if n := res.Stays[r]; n > 0 {
			stays.Int(r.String(), n)
		}
	}
	census := c.registry.Census()
	ev.Int("turn", res.Turn).
		Int("ships", len(res.Decisions)).
		Int("harvesters", census.Normal).
		Int("blockers", census.Blocker).
		Int("moves", res.Moves).
		Dict("stays", stays).
		Bool("spawned", res.Spawned).
		Dict("totalHalite", totals).
		Dur("elapsed", res.Elapsed).
		Msg("Turn played")
}
