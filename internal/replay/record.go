package replay

import (
	"github.com/freeeve/bigbrainbot/internal/model"
	"github.com/freeeve/bigbrainbot/pkg/halite"
)

// Record kinds.
const (
	KindHeader = "header"
	KindFrame  = "frame"
	KindResult = "result"
)

// Record is one JSONL line of a replay. Exactly one payload is set, matching
// Kind.
type Record struct {
	Kind   string  `json:"kind"`
	Header *Header `json:"header,omitempty"`
	Frame  *Frame  `json:"frame,omitempty"`
	Result *Result `json:"result,omitempty"`
}

// Header describes the match. It is always the first record.
type Header struct {
	MatchID   string            `json:"match_id"`
	Name      string            `json:"name"`
	MapName   string            `json:"map_name"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Policies  []string          `json:"policies"`
	Shipyards []halite.Position `json:"shipyards"`
	Halite    [][]int           `json:"halite"`
	Constants halite.Constants  `json:"constants"`
}

// Frame is the state after one turn was resolved.
type Frame struct {
	Turn       int         `json:"turn"`
	Seats      []SeatFrame `json:"seats"`
	Collisions int         `json:"collisions"`
	MapHalite  int         `json:"map_halite"`
	Changed    []CellDelta `json:"changed,omitempty"`
}

// SeatFrame is one seat's state within a frame.
type SeatFrame struct {
	Seat     int            `json:"seat"`
	Banked   int            `json:"banked"`
	Commands string         `json:"commands"`
	Ships    []*halite.Ship `json:"ships"`
}

// CellDelta is a cell whose halite changed during the turn.
type CellDelta struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Halite int `json:"halite"`
}

// Result closes a replay.
type Result struct {
	Turns  int                `json:"turns"`
	Winner int                `json:"winner"`
	Seats  []model.SeatResult `json:"seats"`
}
