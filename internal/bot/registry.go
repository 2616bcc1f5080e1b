package bot

import (
	"sort"

	"github.com/freeeve/bigbrainbot/pkg/halite"
)

// Unit is the controller's memory of one ship, kept across turns.
type Unit struct {
	ID        halite.ShipID
	Mode      Mode
	Target    halite.Position
	HasTarget bool
}

// Census counts live units per role.
type Census struct {
	Normal  int
	Blocker int
}

// Registry maps ship ids to their controller state. Entries are added the
// first time a ship is seen and dropped once it is missing from a snapshot.
type Registry struct {
	units      map[halite.ShipID]*Unit
	blockerSeq int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{units: make(map[halite.ShipID]*Unit)}
}

// Get returns the unit for id, or nil.
func (r *Registry) Get(id halite.ShipID) *Unit {
	return r.units[id]
}

// Len returns the number of tracked units.
func (r *Registry) Len() int {
	return len(r.units)
}

// Census counts the tracked units by role.
func (r *Registry) Census() Census {
	var c Census
	for _, u := range r.units {
		if u.Mode.Role() == RoleBlocker {
			c.Blocker++
		} else {
			c.Normal++
		}
	}
	return c
}

// Sync reconciles the registry with the player's current fleet. Ships must
// already be in creation order. New ships get a role from assign and the
// role's initial mode.
func (r *Registry) Sync(g *halite.Game, assign RoleAssigner) (added, removed []halite.ShipID) {
	me := g.Me()
	live := make(map[halite.ShipID]bool, len(me.Ships))
	for _, s := range me.Ships {
		live[s.ID] = true
	}
	for id := range r.units {
		if !live[id] {
			removed = append(removed, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	for _, id := range removed {
		delete(r.units, id)
	}

	for _, s := range me.Ships {
		if _, ok := r.units[s.ID]; ok {
			continue
		}
		role := assign.AssignRole(s, r.Census())
		r.units[s.ID] = &Unit{ID: s.ID, Mode: r.initialMode(g, role)}
		added = append(added, s.ID)
	}
	return added, removed
}

func (r *Registry) initialMode(g *halite.Game, role Role) Mode {
	if role != RoleBlocker {
		return &Harvesting{Phase: StateSearch}
	}
	yards := g.OpponentShipyards()
	if len(yards) == 0 {
		return &Blocking{}
	}
	dirs := halite.Cardinals()
	post := g.Map.Move(yards[0], dirs[r.blockerSeq%len(dirs)])
	r.blockerSeq++
	return &Blocking{Post: post, HasPost: true}
}
