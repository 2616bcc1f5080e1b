package halite

import (
	"fmt"
	"strings"
)

// CommandType distinguishes the directives a bot can send.
type CommandType int

const (
	CommandMove CommandType = iota
	CommandSpawn
)

// Command is one directive for the engine. A Move with Direction Still is
// the "stay" directive.
type Command struct {
	Type      CommandType
	Ship      ShipID
	Direction Direction
}

// Move builds a move directive.
func Move(id ShipID, d Direction) Command {
	return Command{Type: CommandMove, Ship: id, Direction: d}
}

// Stay builds a stay-still directive.
func Stay(id ShipID) Command {
	return Command{Type: CommandMove, Ship: id, Direction: Still}
}

// Spawn builds the shipyard spawn directive.
func Spawn() Command {
	return Command{Type: CommandSpawn, Ship: NoShip}
}

// String encodes the command in engine wire format.
func (c Command) String() string {
	if c.Type == CommandSpawn {
		return "g"
	}
	return fmt.Sprintf("m %d %c", c.Ship, c.Direction.Char())
}

// EncodeCommands joins commands into one engine line (without newline).
func EncodeCommands(cmds []Command) string {
	parts := make([]string, len(cmds))
	for i, c := range cmds {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
