package bot

import (
	"fmt"

	"github.com/freeeve/bigbrainbot/pkg/halite"
)

// RoleAssigner picks the role of a ship the first time the controller sees it.
type RoleAssigner interface {
	Name() string
	AssignRole(ship *halite.Ship, live Census) Role
}

// HarvestOnly makes every ship a harvester.
type HarvestOnly struct{}

func (HarvestOnly) Name() string                         { return "harvest" }
func (HarvestOnly) AssignRole(*halite.Ship, Census) Role { return RoleNormal }

// Quota keeps MinHarvesters harvesters alive before assigning up to
// BlockerLimit blockers. Ships beyond both quotas harvest.
type Quota struct {
	MinHarvesters int
	BlockerLimit  int
}

func (Quota) Name() string { return "blockade" }

func (q Quota) AssignRole(_ *halite.Ship, live Census) Role {
	if live.Normal < q.MinHarvesters {
		return RoleNormal
	}
	if live.Blocker < q.BlockerLimit {
		return RoleBlocker
	}
	return RoleNormal
}

// RoleAssignerByName returns the assigner registered under name.
func RoleAssignerByName(name string, minHarvesters, blockerLimit int) (RoleAssigner, error) {
	switch name {
	case "", "harvest":
		return HarvestOnly{}, nil
	case "blockade":
		return Quota{MinHarvesters: minHarvesters, BlockerLimit: blockerLimit}, nil
	}
	return nil, fmt.Errorf("unknown role policy %q", name)
}
