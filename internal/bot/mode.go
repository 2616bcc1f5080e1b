package bot

import (
	"fmt"

	"github.com/freeeve/bigbrainbot/pkg/halite"
)

// State is a harvesting unit's FSM state.
type State int

const (
	StateSearch State = iota + 1
	StateMoveToTarget
	StateCollecting
	StateBackToHome
)

func (s State) String() string {
	switch s {
	case StateSearch:
		return "search"
	case StateMoveToTarget:
		return "move_to_target"
	case StateCollecting:
		return "collecting"
	case StateBackToHome:
		return "back_to_home"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Role is the job a unit was given on first sighting.
type Role int

const (
	RoleNormal Role = iota
	RoleBlocker
)

func (r Role) String() string {
	if r == RoleBlocker {
		return "blocker"
	}
	return "normal"
}

// Mode is the per-unit tagged variant: the concrete type fixes the role and
// carries only the state that role can be in.
type Mode interface {
	Role() Role
	State() State
	isMode()
}

// Harvesting is the mode of a Normal unit cycling through the harvest FSM.
type Harvesting struct {
	Phase State
}

func (*Harvesting) Role() Role     { return RoleNormal }
func (h *Harvesting) State() State { return h.Phase }
func (*Harvesting) isMode()        {}

// Blocking is the mode of a Blocker unit. It keeps searching for its post
// next to an opponent shipyard and holds it once there.
type Blocking struct {
	Post    halite.Position
	HasPost bool
}

func (*Blocking) Role() Role   { return RoleBlocker }
func (*Blocking) State() State { return StateSearch }
func (*Blocking) isMode()      {}

// StayReason tells apart the different reasons a unit did not move.
type StayReason int

const (
	ReasonNone StayReason = iota
	ReasonCollecting
	ReasonBlocked
	ReasonUnreachable
	ReasonDelivered
	ReasonHolding
	ReasonIdle
	ReasonStranded
	ReasonOverBudget
)

func (r StayReason) String() string {
	return [...]string{"none", "collecting", "blocked", "unreachable", "delivered", "holding", "idle", "stranded", "over_budget"}[r]
}

// Decision is one unit's committed directive for the turn.
type Decision struct {
	Ship      halite.ShipID
	Direction halite.Direction
	Dest      halite.Position
	Reason    StayReason // set only when Direction is Still
}

// Moving reports whether the decision leaves the current cell.
func (d Decision) Moving() bool {
	return d.Direction != halite.Still
}

// Command converts the decision to an engine directive.
func (d Decision) Command() halite.Command {
	if !d.Moving() {
		return halite.Stay(d.Ship)
	}
	return halite.Move(d.Ship, d.Direction)
}
