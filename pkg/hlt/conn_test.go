package hlt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/freeeve/bigbrainbot/pkg/halite"
)

const initLines = `{"MAX_ENERGY":1000,"NEW_ENTITY_ENERGY_COST":1000,"MAX_TURNS":400,"game_seed":7}
2 1
0 1 1
1 3 3
4 4
0 10 20 30
40 50 60 70
80 90 100 110
120 130 140 150
`

const frameLines = `1
0 1 0 2000
5 1 2 300
1 0 1 3000
9 0 0
2
1 2 0
3 3 999
`

func TestReadInitAndFrame(t *testing.T) {
	var out bytes.Buffer
	c := NewConn(strings.NewReader(initLines+frameLines), &out)
	ctx := context.Background()

	g, err := c.ReadInit(ctx)
	if err != nil {
		t.Fatalf("ReadInit: %v", err)
	}
	if g.MyID != 1 || len(g.Players) != 2 {
		t.Fatalf("MyID = %d, players = %d; want 1, 2", g.MyID, len(g.Players))
	}
	if g.Me().Shipyard != halite.Pos(3, 3) {
		t.Errorf("shipyard = %v, want (3,3)", g.Me().Shipyard)
	}
	if g.Map.Width != 4 || g.Map.Height != 4 {
		t.Fatalf("map = %dx%d, want 4x4", g.Map.Width, g.Map.Height)
	}
	if got := g.Map.Halite(halite.Pos(2, 1)); got != 60 {
		t.Errorf("halite(2,1) = %d, want 60", got)
	}
	if g.Constants.MaxTurns != 400 || g.Constants.GameSeed != 7 {
		t.Errorf("constants = %+v", g.Constants)
	}
	if g.Constants.MoveCostRatio != 10 {
		t.Errorf("MoveCostRatio = %d, want default 10", g.Constants.MoveCostRatio)
	}

	if err := c.Ready("BBB"); err != nil {
		t.Fatalf("Ready: %v", err)
	}

	g, err = c.ReadFrame(ctx)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if g.Turn != 1 {
		t.Errorf("Turn = %d, want 1", g.Turn)
	}
	p0 := g.Players[0]
	if p0.Halite != 2000 || len(p0.Ships) != 1 {
		t.Fatalf("player 0 = %+v", p0)
	}
	if s := p0.Ships[0]; s.ID != 5 || s.Position != halite.Pos(1, 2) || s.Halite != 300 || s.Owner != 0 {
		t.Errorf("ship = %+v", s)
	}
	if p1 := g.Players[1]; len(p1.Dropoffs) != 1 || p1.Dropoffs[0].Position != halite.Pos(0, 0) {
		t.Errorf("dropoffs = %+v", p1.Dropoffs)
	}
	if got := g.Map.Halite(halite.Pos(1, 2)); got != 0 {
		t.Errorf("updated halite(1,2) = %d, want 0", got)
	}
	if got := g.Map.Halite(halite.Pos(3, 3)); got != 999 {
		t.Errorf("updated halite(3,3) = %d, want 999", got)
	}

	if err := c.EndTurn([]halite.Command{halite.Move(5, halite.North), halite.Spawn()}); err != nil {
		t.Fatalf("EndTurn: %v", err)
	}
	if got := out.String(); got != "BBB\nm 5 n g\n" {
		t.Errorf("written = %q", got)
	}

	if _, err := c.ReadFrame(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("ReadFrame at end = %v, want io.EOF", err)
	}
}

func TestReadFrameTruncated(t *testing.T) {
	c := NewConn(strings.NewReader(initLines+"1\n0 1 0 2000\n"), io.Discard)
	if _, err := c.ReadInit(context.Background()); err != nil {
		t.Fatalf("ReadInit: %v", err)
	}
	_, err := c.ReadFrame(context.Background())
	if !errors.Is(err, ErrProtocol) {
		t.Errorf("ReadFrame = %v, want ErrProtocol", err)
	}
}

func TestReadInitRejectsBadInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"missing max turns", `{"MAX_ENERGY":1000,"NEW_ENTITY_ENERGY_COST":1000}` + "\n1 0\n0 0 0\n1 1\n5\n"},
		{"wrong type", `{"MAX_ENERGY":"lots","NEW_ENTITY_ENERGY_COST":1000,"MAX_TURNS":400}` + "\n1 0\n0 0 0\n1 1\n5\n"},
		{"not json", "hello\n"},
		{"unknown self", `{"MAX_ENERGY":1000,"NEW_ENTITY_ENERGY_COST":1000,"MAX_TURNS":400}` + "\n1 3\n0 0 0\n1 1\n5\n"},
		{"short row", `{"MAX_ENERGY":1000,"NEW_ENTITY_ENERGY_COST":1000,"MAX_TURNS":400}` + "\n1 0\n0 0 0\n2 1\n5\n"},
		{"truncated grid", `{"MAX_ENERGY":1000,"NEW_ENTITY_ENERGY_COST":1000,"MAX_TURNS":400}` + "\n1 0\n0 0 0\n1 2\n5\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewConn(strings.NewReader(tc.input), io.Discard)
			if _, err := c.ReadInit(context.Background()); !errors.Is(err, ErrProtocol) {
				t.Errorf("ReadInit = %v, want ErrProtocol", err)
			}
		})
	}
}

func TestReadFrameBeforeInit(t *testing.T) {
	c := NewConn(strings.NewReader(frameLines), io.Discard)
	if _, err := c.ReadFrame(context.Background()); err == nil {
		t.Error("ReadFrame before ReadInit should fail")
	}
}

func TestReadInitHonoursContext(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	c := NewConn(r, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.ReadInit(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("ReadInit = %v, want deadline exceeded", err)
	}
}

func TestParseConstantsDefaults(t *testing.T) {
	c, err := ParseConstants([]byte(`{"MAX_ENERGY":500,"NEW_ENTITY_ENERGY_COST":700,"MAX_TURNS":25}`))
	if err != nil {
		t.Fatalf("ParseConstants: %v", err)
	}
	if c.MaxHalite != 500 || c.ShipCost != 700 || c.MaxTurns != 25 {
		t.Errorf("constants = %+v", c)
	}
	if c.ExtractRatio != 4 || c.DropoffCost != 4000 {
		t.Errorf("defaults lost: %+v", c)
	}
}
