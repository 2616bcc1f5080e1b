package bot

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/bigbrainbot/pkg/halite"
	"github.com/freeeve/bigbrainbot/pkg/nav"
)

// maxHops bounds the transitions a unit may take in one evaluation.
const maxHops = 4

// Controller drives one player's fleet. It keeps per-unit FSM state across
// turns and is not safe for concurrent use.
type Controller struct {
	settings   Settings
	roles      RoleAssigner
	registry   *Registry
	spawnGuard *vm.Program
	log        zerolog.Logger
	now        func() time.Time
	started    bool
}

// NewController validates s and returns a controller with an empty registry.
func NewController(s Settings, roles RoleAssigner) (*Controller, error) {
	if s.MaxCargo <= 0 {
		return nil, fmt.Errorf("max cargo must be positive, got %d", s.MaxCargo)
	}
	if s.ShipCost < 0 {
		return nil, fmt.Errorf("ship cost must not be negative, got %d", s.ShipCost)
	}
	if s.PathCost == nil {
		s.PathCost = nav.StepFrictionCost
	}
	if s.TurnBudget <= 0 {
		s.TurnBudget = DefaultTurnBudget
	}
	if s.SearchRadius < 1 {
		s.SearchRadius = DefaultSearchRadius
	}
	if roles == nil {
		roles = HarvestOnly{}
	}
	guard, err := compileSpawnGuard(s.SpawnGuard)
	if err != nil {
		return nil, err
	}
	return &Controller{
		settings:   s,
		roles:      roles,
		registry:   NewRegistry(),
		spawnGuard: guard,
		log:        log.Logger,
		now:        time.Now,
	}, nil
}

// SetLogger replaces the logger used for turn reports.
func (c *Controller) SetLogger(l zerolog.Logger) {
	c.log = l
}

// Settings returns the effective settings.
func (c *Controller) Settings() Settings {
	return c.settings
}

// step runs one FSM evaluation for ship and returns its directive. The
// directive is not yet reserved.
func (c *Controller) step(g *halite.Game, ship *halite.Ship, u *Unit, deadline time.Time) (Decision, error) {
	switch mode := u.Mode.(type) {
	case *Harvesting:
		return c.stepHarvest(g, ship, u, mode, deadline)
	case *Blocking:
		return c.stepBlock(g, ship, mode, deadline), nil
	}
	return Decision{}, fmt.Errorf("%w: ship %d has mode %T", ErrInvalidState, ship.ID, u.Mode)
}

func (c *Controller) stepHarvest(g *halite.Game, ship *halite.Ship, u *Unit, h *Harvesting, deadline time.Time) (Decision, error) {
	home := g.Me().Shipyard
	for hops := 0; hops <= maxHops; hops++ {
		switch h.Phase {
		case StateSearch:
			target, ok := c.findTarget(g.Map, ship.Position)
			if !ok {
				return stay(ship, ReasonBlocked), nil
			}
			u.Target, u.HasTarget = target, true
			h.Phase = StateMoveToTarget

		case StateMoveToTarget:
			if c.settings.SearchRadius > 1 {
				if u.HasTarget && g.Map.Normalize(ship.Position) == u.Target {
					h.Phase = StateCollecting
					continue
				}
				return c.travel(g.Map, ship, u, deadline), nil
			}
			d := c.harvestMove(g.Map, ship, u)
			h.Phase = StateCollecting
			return d, nil

		case StateCollecting:
			switch {
			case ship.IsFull(c.settings.MaxCargo):
				h.Phase = StateBackToHome
			case g.Map.Halite(ship.Position) < c.settings.LowYieldThreshold:
				h.Phase = StateMoveToTarget
				u.HasTarget = false
			default:
				return stay(ship, ReasonCollecting), nil
			}

		case StateBackToHome:
			if g.Map.Normalize(ship.Position) == g.Map.Normalize(home) {
				h.Phase = StateMoveToTarget
				u.HasTarget = false
				return stay(ship, ReasonDelivered), nil
			}
			return c.pathStep(g.Map, ship, home, deadline), nil

		default:
			return Decision{}, fmt.Errorf("%w: ship %d in %v", ErrInvalidState, ship.ID, h.Phase)
		}
	}
	return Decision{}, fmt.Errorf("%w: ship %d exceeded %d transitions", ErrInvalidState, ship.ID, maxHops)
}

func (c *Controller) stepBlock(g *halite.Game, ship *halite.Ship, b *Blocking, deadline time.Time) Decision {
	if !b.HasPost {
		return stay(ship, ReasonIdle)
	}
	if g.Map.Normalize(ship.Position) == g.Map.Normalize(b.Post) {
		return stay(ship, ReasonHolding)
	}
	return c.pathStep(g.Map, ship, b.Post, deadline)
}

// selectTarget picks the free neighbour with the most halite. Ties keep the
// first in North, South, East, West order.
func (c *Controller) selectTarget(m *halite.GameMap, from halite.Position) (halite.Position, bool) {
	var best halite.Position
	found := false
	for _, nb := range m.Neighbors(from) {
		if m.IsOccupied(nb) {
			continue
		}
		if !found || m.Halite(nb) > m.Halite(best) {
			best, found = nb, true
		}
	}
	return best, found
}

// findTarget picks the next harvest cell within the configured search
// radius.
func (c *Controller) findTarget(m *halite.GameMap, from halite.Position) (halite.Position, bool) {
	if c.settings.SearchRadius <= 1 {
		return c.selectTarget(m, from)
	}
	return c.scanTarget(m, from, c.settings.SearchRadius)
}

// scanTarget picks the free cell with the most halite within Manhattan
// distance r of from. Ties go to the nearer cell, then to the first in
// row-major order starting north-west. Structures are skipped.
func (c *Controller) scanTarget(m *halite.GameMap, from halite.Position, r int) (halite.Position, bool) {
	from = m.Normalize(from)
	var best halite.Position
	bestDist, found := 0, false
	seen := make(map[int]bool)
	for dy := -r; dy <= r; dy++ {
		span := r - abs(dy)
		for dx := -span; dx <= span; dx++ {
			p := m.Normalize(halite.Pos(from.X+dx, from.Y+dy))
			idx := m.Index(p)
			if p == from || seen[idx] {
				continue
			}
			seen[idx] = true
			cell := m.At(p)
			if cell.IsOccupied() || cell.Structure {
				continue
			}
			d := m.Distance(from, p)
			if !found || cell.Halite > m.Halite(best) || (cell.Halite == m.Halite(best) && d < bestDist) {
				best, bestDist, found = p, d, true
			}
		}
	}
	return best, found
}

// travel steps toward the unit's target, re-scanning when it has none or
// another ship now holds it.
func (c *Controller) travel(m *halite.GameMap, ship *halite.Ship, u *Unit, deadline time.Time) Decision {
	if !u.HasTarget || m.IsOccupied(u.Target) {
		target, ok := c.scanTarget(m, ship.Position, c.settings.SearchRadius)
		if !ok {
			u.HasTarget = false
			return stay(ship, ReasonBlocked)
		}
		u.Target, u.HasTarget = target, true
	}
	return c.pathStep(m, ship, u.Target, deadline)
}

// harvestMove issues the one-step harvesting move. The target is
// re-selected against the current occupancy since units evaluated earlier
// this turn may have taken it.
func (c *Controller) harvestMove(m *halite.GameMap, ship *halite.Ship, u *Unit) Decision {
	target, ok := c.selectTarget(m, ship.Position)
	if !ok {
		u.HasTarget = false
		return stay(ship, ReasonBlocked)
	}
	u.Target, u.HasTarget = target, true
	return c.moveTo(m, ship, target)
}

// pathStep takes the first step of an A* route to dst.
func (c *Controller) pathStep(m *halite.GameMap, ship *halite.Ship, dst halite.Position, deadline time.Time) Decision {
	if c.now().After(deadline) {
		return stay(ship, ReasonOverBudget)
	}
	res := nav.FindPath(m, ship.Position, dst, nav.Options{
		Cost:          c.settings.PathCost,
		MaxExpansions: c.settings.MaxExpansions,
	})
	next, ok := res.Next()
	if !ok {
		return stay(ship, ReasonUnreachable)
	}
	return c.moveTo(m, ship, next)
}

// moveTo builds a move onto the adjacent free cell next, or a stay when the
// ship cannot pay to leave its cell.
func (c *Controller) moveTo(m *halite.GameMap, ship *halite.Ship, next halite.Position) Decision {
	if r := c.settings.MoveCostRatio; r > 0 && ship.Halite < m.Halite(ship.Position)/r {
		return stay(ship, ReasonStranded)
	}
	dir, ok := m.DirectionTo(ship.Position, next)
	if !ok {
		return stay(ship, ReasonUnreachable)
	}
	return Decision{Ship: ship.ID, Direction: dir, Dest: m.Normalize(next)}
}

func stay(ship *halite.Ship, reason StayReason) Decision {
	return Decision{Ship: ship.ID, Direction: halite.Still, Dest: ship.Position, Reason: reason}
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
