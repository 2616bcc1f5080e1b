// Package hlt speaks the Halite III engine protocol. The engine writes the
// game description and per-turn frames to the bot's stdin and reads one
// command line per turn from its stdout.
package hlt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/freeeve/bigbrainbot/pkg/halite"
)

// ErrProtocol is wrapped by every error caused by malformed engine input.
var ErrProtocol = errors.New("hlt: protocol error")

const maxLineBytes = 1 << 20

// Conn is one bot's end of the engine channel. Reads and writes are
// serialized; a Conn is meant to be driven by a single game loop.
type Conn struct {
	scanner *bufio.Scanner
	lineNo  int

	mu sync.Mutex
	w  *bufio.Writer

	game *halite.Game
}

// NewConn wraps the engine's output stream r and input stream w.
func NewConn(r io.Reader, w io.Writer) *Conn {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Conn{scanner: sc, w: bufio.NewWriter(w)}
}

// Game returns the snapshot maintained by the connection, or nil before
// ReadInit.
func (c *Conn) Game() *halite.Game {
	return c.game
}

// ReadInit reads the constants, player list, shipyards and the initial
// halite grid.
func (c *Conn) ReadInit(ctx context.Context) (*halite.Game, error) {
	g, err := runBounded(ctx, c.readInit)
	if err != nil {
		return nil, fmt.Errorf("read init: %w", err)
	}
	c.game = g
	return g, nil
}

// Ready sends the bot name, ending the handshake.
func (c *Conn) Ready(name string) error {
	return c.writeLine(name)
}

// ReadFrame reads the next turn and applies it to the game returned by
// ReadInit. It returns io.EOF when the engine closes the stream between
// turns.
func (c *Conn) ReadFrame(ctx context.Context) (*halite.Game, error) {
	if c.game == nil {
		return nil, fmt.Errorf("hlt: ReadFrame before ReadInit")
	}
	g, err := runBounded(ctx, func() (*halite.Game, error) {
		return c.game, c.readFrame(c.game)
	})
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return g, nil
}

// EndTurn writes the turn's commands as a single line.
func (c *Conn) EndTurn(cmds []halite.Command) error {
	return c.writeLine(halite.EncodeCommands(cmds))
}

func (c *Conn) writeLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.w.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("hlt: write: %w", err)
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("hlt: flush: %w", err)
	}
	return nil
}

// runBounded runs fn in its own goroutine so a stalled engine cannot outlive
// ctx. On cancellation the reader goroutine is abandoned, and the Conn must
// not be used again.
func runBounded(ctx context.Context, fn func() (*halite.Game, error)) (*halite.Game, error) {
	type result struct {
		g   *halite.Game
		err error
	}
	ch := make(chan result, 1)
	go func() {
		g, err := fn()
		ch <- result{g, err}
	}()
	select {
	case r := <-ch:
		return r.g, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("context canceled: %w", ctx.Err())
	}
}

func (c *Conn) readInit() (*halite.Game, error) {
	line, err := c.nextLine()
	if err != nil {
		return nil, err
	}
	consts, err := ParseConstants([]byte(line))
	if err != nil {
		return nil, err
	}

	head, err := c.more(2)
	if err != nil {
		return nil, err
	}
	numPlayers, myID := head[0], head[1]
	if numPlayers < 1 {
		return nil, c.protocolErr("player count %d", numPlayers)
	}
	g := &halite.Game{
		MyID:      halite.PlayerID(myID),
		Players:   make(map[halite.PlayerID]*halite.Player, numPlayers),
		Constants: consts,
	}
	for i := 0; i < numPlayers; i++ {
		f, err := c.more(3)
		if err != nil {
			return nil, err
		}
		id := halite.PlayerID(f[0])
		g.Players[id] = &halite.Player{ID: id, Shipyard: halite.Pos(f[1], f[2])}
	}
	if g.Me() == nil {
		return nil, c.protocolErr("my id %d not among players", myID)
	}

	dims, err := c.more(2)
	if err != nil {
		return nil, err
	}
	w, h := dims[0], dims[1]
	if w <= 0 || h <= 0 {
		return nil, c.protocolErr("map size %dx%d", w, h)
	}
	g.Map = halite.NewGameMap(w, h)
	for y := 0; y < h; y++ {
		row, err := c.more(w)
		if err != nil {
			return nil, err
		}
		for x, v := range row {
			g.Map.SetHalite(halite.Pos(x, y), v)
		}
	}
	for _, p := range g.Players {
		g.Map.At(p.Shipyard).Structure = true
	}
	return g, nil
}

func (c *Conn) readFrame(g *halite.Game) error {
	turn, err := c.ints(1)
	if err != nil {
		return err
	}
	g.Turn = turn[0]

	for range g.Players {
		f, err := c.more(4)
		if err != nil {
			return err
		}
		p, ok := g.Players[halite.PlayerID(f[0])]
		if !ok {
			return c.protocolErr("unknown player %d", f[0])
		}
		numShips, numDropoffs := f[1], f[2]
		p.Halite = f[3]
		p.Ships = p.Ships[:0]
		for i := 0; i < numShips; i++ {
			s, err := c.more(4)
			if err != nil {
				return err
			}
			p.Ships = append(p.Ships, &halite.Ship{
				ID:       halite.ShipID(s[0]),
				Owner:    p.ID,
				Position: halite.Pos(s[1], s[2]),
				Halite:   s[3],
			})
		}
		p.Dropoffs = p.Dropoffs[:0]
		for i := 0; i < numDropoffs; i++ {
			d, err := c.more(3)
			if err != nil {
				return err
			}
			p.Dropoffs = append(p.Dropoffs, halite.Dropoff{ID: d[0], Owner: p.ID, Position: halite.Pos(d[1], d[2])})
		}
	}

	n, err := c.more(1)
	if err != nil {
		return err
	}
	for i := 0; i < n[0]; i++ {
		u, err := c.more(3)
		if err != nil {
			return err
		}
		g.Map.SetHalite(halite.Pos(u[0], u[1]), u[2])
	}
	return nil
}

func (c *Conn) nextLine() (string, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", fmt.Errorf("hlt: scan: %w", err)
		}
		return "", io.EOF
	}
	c.lineNo++
	return c.scanner.Text(), nil
}

// ints reads one line holding exactly n integers. EOF mid-message is a
// protocol error; EOF before the first line of a frame is passed through.
func (c *Conn) ints(n int) ([]int, error) {
	line, err := c.nextLine()
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) != n {
		return nil, c.protocolErr("want %d fields, got %q", n, line)
	}
	out := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, c.protocolErr("bad integer %q in %q", f, line)
		}
		out[i] = v
	}
	return out, nil
}

// more is ints for lines in the middle of a message, where EOF means the
// engine stopped part way.
func (c *Conn) more(n int) ([]int, error) {
	v, err := c.ints(n)
	if errors.Is(err, io.EOF) {
		return nil, c.protocolErr("unexpected end of input")
	}
	return v, err
}

func (c *Conn) protocolErr(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrProtocol, c.lineNo, fmt.Sprintf(format, args...))
}
