package arena

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/bigbrainbot/internal/bot"
	"github.com/freeeve/bigbrainbot/internal/config"
	"github.com/freeeve/bigbrainbot/internal/logger"
	"github.com/freeeve/bigbrainbot/internal/model"
	"github.com/freeeve/bigbrainbot/internal/replay"
	"github.com/freeeve/bigbrainbot/internal/repository"
	"github.com/freeeve/bigbrainbot/internal/spectate"
	"github.com/freeeve/bigbrainbot/pkg/halite"
)

// DefaultInitialBank is the halite every seat starts with.
const DefaultInitialBank = 5000

// Broadcaster publishes match events to live viewers.
type Broadcaster interface {
	BroadcastMatchEvent(matchID, eventType string, data any)
}

// Config configures a single match.
type Config struct {
	Name        string
	Map         *MapSpec
	Seats       []string         // role policy per seat
	Constants   halite.Constants // zero value uses halite.DefaultConstants
	Tuning      *config.Config   // nil uses config.Default
	MaxTurns    int              // 0 uses Constants.MaxTurns
	InitialBank int              // 0 uses DefaultInitialBank
}

// Sinks are the optional outputs of a match. Zero fields are skipped.
type Sinks struct {
	ReplayDir   string
	Repo        repository.MatchRepository
	Cache       repository.MatchCache
	Broadcaster Broadcaster
}

// Result describes the outcome of a completed match.
type Result struct {
	MatchID         string             `json:"match_id"`
	Name            string             `json:"name"`
	MapName         string             `json:"map_name"`
	Turns           int                `json:"turns"`
	Winner          int                `json:"winner"`
	Collisions      int                `json:"collisions"`
	OverBudgetTurns int                `json:"over_budget_turns"`
	Seats           []model.SeatResult `json:"seats"`
	ReplayPath      string             `json:"replay_path,omitempty"`
	Elapsed         time.Duration      `json:"elapsed"`
}

type seat struct {
	policy     string
	player     *halite.Player
	ctrl       *bot.Controller
	commands   []halite.Command
	result     model.SeatResult
	overBudget int
}

type match struct {
	id       string
	name     string
	mapName  string
	k        halite.Constants
	m        *halite.GameMap
	seats    []*seat
	nextShip halite.ShipID

	sinks      Sinks
	replay     *replay.Writer
	collisions int
	log        zerolog.Logger
}

// shipMove is one ship's outcome in the movement step.
type shipMove struct {
	ship  *halite.Ship
	owner *seat
	moved bool
}

// Run plays a full match. Every seat is driven by its own controller, fed
// with a private copy of the authoritative state each turn, and all seats'
// commands are then applied simultaneously.
func Run(ctx context.Context, cfg Config, sinks Sinks) (*Result, error) {
	if cfg.Map == nil {
		return nil, errors.New("arena: no map")
	}
	if len(cfg.Seats) != cfg.Map.Seats() {
		return nil, fmt.Errorf("arena: %d seat policies for a %d-seat map", len(cfg.Seats), cfg.Map.Seats())
	}
	k := cfg.Constants
	if k.MaxHalite == 0 {
		k = halite.DefaultConstants()
	}
	if cfg.MaxTurns > 0 {
		k.MaxTurns = cfg.MaxTurns
	}
	tuning := cfg.Tuning
	if tuning == nil {
		tuning = config.Default()
	}
	bank := cfg.InitialBank
	if bank <= 0 {
		bank = DefaultInitialBank
	}
	name := cfg.Name
	if name == "" {
		name = Label(cfg.Seats)
	}

	id := logger.NewMatchID()
	ctx = logger.WithMatchID(ctx, id)
	mt := &match{
		id:      id,
		name:    name,
		mapName: cfg.Map.Name,
		k:       k,
		m:       cfg.Map.Build(),
		sinks:   sinks,
		log:     logger.ForMatch(ctx),
	}

	for i, policy := range cfg.Seats {
		settings, err := tuning.Resolve(k)
		if err != nil {
			return nil, fmt.Errorf("seat %d settings: %w", i, err)
		}
		roles, err := bot.RoleAssignerByName(policy, tuning.MinHarvesters, tuning.BlockerLimit)
		if err != nil {
			return nil, fmt.Errorf("seat %d: %w", i, err)
		}
		ctrl, err := bot.NewController(settings, roles)
		if err != nil {
			return nil, fmt.Errorf("seat %d controller: %w", i, err)
		}
		ctrl.SetLogger(logger.ForSeat(mt.log, i, policy))
		mt.seats = append(mt.seats, &seat{
			policy: policy,
			ctrl:   ctrl,
			player: &halite.Player{ID: halite.PlayerID(i), Halite: bank, Shipyard: cfg.Map.Shipyards[i]},
			result: model.SeatResult{MatchID: id, Seat: i, Policy: policy},
		})
	}

	start := time.Now()
	if err := mt.open(ctx); err != nil {
		return nil, err
	}
	defer mt.closeReplay()

	for turn := 1; turn <= k.MaxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := mt.playTurn(ctx, turn); err != nil {
			return nil, fmt.Errorf("turn %d: %w", turn, err)
		}
	}

	res, err := mt.finish(ctx, k.MaxTurns)
	if err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

func (mt *match) open(ctx context.Context) error {
	header := &replay.Header{
		MatchID:   mt.id,
		Name:      mt.name,
		MapName:   mt.mapName,
		Width:     mt.m.Width,
		Height:    mt.m.Height,
		Halite:    haliteRows(mt.m),
		Constants: mt.k,
	}
	for _, s := range mt.seats {
		header.Policies = append(header.Policies, s.policy)
		header.Shipyards = append(header.Shipyards, s.player.Shipyard)
	}

	if dir := mt.sinks.ReplayDir; dir != "" {
		w, err := replay.Create(dir, mt.id)
		if err != nil {
			return fmt.Errorf("create replay: %w", err)
		}
		mt.replay = w
		if err := w.WriteHeader(header); err != nil {
			return fmt.Errorf("write replay header: %w", err)
		}
	}
	if repo := mt.sinks.Repo; repo != nil {
		err := repo.CreateMatch(ctx, &model.Match{
			ID:      mt.id,
			Name:    mt.name,
			MapName: mt.mapName,
			Width:   mt.m.Width,
			Height:  mt.m.Height,
			Seats:   len(mt.seats),
		})
		if err != nil {
			return fmt.Errorf("create match: %w", err)
		}
	}
	if b := mt.sinks.Broadcaster; b != nil {
		b.BroadcastMatchEvent(mt.id, spectate.EventMatchStarted, header)
	}
	mt.log.Info().Str("name", mt.name).Str("map", mt.mapName).Int("seats", len(mt.seats)).Int("turns", mt.k.MaxTurns).Msg("Match started")
	return nil
}

func (mt *match) closeReplay() {
	if mt.replay == nil {
		return
	}
	if err := mt.replay.Close(); err != nil {
		mt.log.Error().Err(err).Str("path", mt.replay.Path()).Msg("Failed to close replay")
	}
}

// snapshot builds the view handed to one seat's controller. Controllers
// mutate the map's occupancy layer, so every seat gets its own copy.
func (mt *match) snapshot(turn int, me halite.PlayerID) *halite.Game {
	players := make(map[halite.PlayerID]*halite.Player, len(mt.seats))
	for _, s := range mt.seats {
		p := *s.player
		p.Ships = make([]*halite.Ship, len(s.player.Ships))
		for i, sh := range s.player.Ships {
			c := *sh
			p.Ships[i] = &c
		}
		players[p.ID] = &p
	}
	return &halite.Game{
		Turn:      turn,
		MyID:      me,
		Players:   players,
		Map:       mt.m.Clone(),
		Constants: mt.k,
	}
}

func (mt *match) playTurn(ctx context.Context, turn int) error {
	for _, s := range mt.seats {
		tr, err := s.ctrl.PlayTurn(mt.snapshot(turn, s.player.ID))
		if err != nil {
			return fmt.Errorf("seat %d: %w", s.player.ID, err)
		}
		s.commands = tr.Commands
		if tr.OverBudget {
			s.overBudget++
		}
	}

	touched := make(map[halite.Position]bool)
	collisions := mt.apply(touched)
	return mt.publish(ctx, mt.frame(turn, collisions, touched))
}

// apply resolves one turn: moves and spawns, then collisions, deposits and
// extraction. It returns the number of collision cells.
func (mt *match) apply(touched map[halite.Position]bool) int {
	var fleet []shipMove
	for _, s := range mt.seats {
		dirs := make(map[halite.ShipID]halite.Direction, len(s.commands))
		spawn := false
		for _, c := range s.commands {
			if c.Type == halite.CommandSpawn {
				spawn = true
				continue
			}
			if _, dup := dirs[c.Ship]; dup {
				mt.log.Warn().Int("seat", int(s.player.ID)).Int("ship", int(c.Ship)).Msg("Duplicate command ignored")
				continue
			}
			dirs[c.Ship] = c.Direction
		}

		for _, sh := range s.player.Ships {
			moved := false
			if d := dirs[sh.ID]; d != halite.Still {
				cost := 0
				if r := mt.k.MoveCostRatio; r > 0 {
					cost = mt.m.Halite(sh.Position) / r
				}
				if sh.Halite >= cost {
					sh.Halite -= cost
					sh.Position = mt.m.Move(sh.Position, d)
					moved = true
				}
			}
			fleet = append(fleet, shipMove{ship: sh, owner: s, moved: moved})
		}

		if spawn && s.player.Halite >= mt.k.ShipCost {
			s.player.Halite -= mt.k.ShipCost
			sh := &halite.Ship{ID: mt.nextShip, Owner: s.player.ID, Position: s.player.Shipyard}
			mt.nextShip++
			s.player.Ships = append(s.player.Ships, sh)
			s.result.Spawned++
			// A fresh ship does not extract on its first turn.
			fleet = append(fleet, shipMove{ship: sh, owner: s, moved: true})
		}
	}

	destroyed, collisions := mt.collide(fleet, touched)
	for _, mv := range fleet {
		sh := mv.ship
		if destroyed[sh.ID] {
			continue
		}
		if sh.Position == mv.owner.player.Shipyard {
			mv.owner.player.Halite += sh.Halite
			sh.Halite = 0
			continue
		}
		if mv.moved {
			continue
		}
		cell := mt.m.Halite(sh.Position)
		take := min(ceilDiv(cell, mt.k.ExtractRatio), mt.k.MaxHalite-sh.Halite)
		if take > 0 {
			sh.Halite += take
			mt.m.SetHalite(sh.Position, cell-take)
			touched[sh.Position] = true
		}
	}

	for _, s := range mt.seats {
		s.player.Ships = slices.DeleteFunc(s.player.Ships, func(sh *halite.Ship) bool { return destroyed[sh.ID] })
	}
	return collisions
}

// collide destroys every ship that shares its cell with another. Cargo is
// dropped on the cell, or banked when the cell is a shipyard.
func (mt *match) collide(fleet []shipMove, touched map[halite.Position]bool) (map[halite.ShipID]bool, int) {
	byCell := make(map[halite.Position][]shipMove)
	for _, mv := range fleet {
		byCell[mv.ship.Position] = append(byCell[mv.ship.Position], mv)
	}

	destroyed := make(map[halite.ShipID]bool)
	cells := 0
	for p, group := range byCell {
		if len(group) < 2 {
			continue
		}
		cells++
		cargo := 0
		perOwner := make(map[*seat]int)
		for _, mv := range group {
			destroyed[mv.ship.ID] = true
			cargo += mv.ship.Halite
			perOwner[mv.owner]++
			mv.owner.result.Collisions++
		}
		for s, n := range perOwner {
			if n > 1 {
				s.result.SelfCollisions++
				mt.log.Warn().Int("seat", int(s.player.ID)).Stringer("cell", p).Msg("Self collision")
			}
		}
		if owner := mt.shipyardOwner(p); owner != nil {
			owner.player.Halite += cargo
		} else {
			mt.m.SetHalite(p, mt.m.Halite(p)+cargo)
			touched[p] = true
		}
	}
	mt.collisions += cells
	return destroyed, cells
}

func (mt *match) shipyardOwner(p halite.Position) *seat {
	if !mt.m.At(p).Structure {
		return nil
	}
	for _, s := range mt.seats {
		if s.player.Shipyard == p {
			return s
		}
	}
	return nil
}

func (mt *match) frame(turn, collisions int, touched map[halite.Position]bool) *replay.Frame {
	f := &replay.Frame{Turn: turn, Collisions: collisions, MapHalite: mt.m.TotalHalite()}
	for _, s := range mt.seats {
		sf := replay.SeatFrame{
			Seat:     int(s.player.ID),
			Banked:   s.player.Halite,
			Commands: halite.EncodeCommands(s.commands),
			Ships:    make([]*halite.Ship, 0, len(s.player.Ships)),
		}
		for _, sh := range s.player.Ships {
			c := *sh
			sf.Ships = append(sf.Ships, &c)
		}
		f.Seats = append(f.Seats, sf)
	}
	for p := range touched {
		f.Changed = append(f.Changed, replay.CellDelta{X: p.X, Y: p.Y, Halite: mt.m.Halite(p)})
	}
	sort.Slice(f.Changed, func(i, j int) bool {
		if f.Changed[i].Y != f.Changed[j].Y {
			return f.Changed[i].Y < f.Changed[j].Y
		}
		return f.Changed[i].X < f.Changed[j].X
	})
	return f
}

func (mt *match) publish(ctx context.Context, f *replay.Frame) error {
	if mt.replay != nil {
		if err := mt.replay.WriteFrame(f); err != nil {
			return fmt.Errorf("write replay frame: %w", err)
		}
	}
	if cache := mt.sinks.Cache; cache != nil {
		raw, err := json.Marshal(f)
		if err == nil {
			err = cache.SetLiveFrame(ctx, mt.id, raw)
		}
		if err != nil {
			mt.log.Warn().Err(err).Int("turn", f.Turn).Msg("Live frame not cached")
		}
	}
	if b := mt.sinks.Broadcaster; b != nil {
		b.BroadcastMatchEvent(mt.id, spectate.EventFrame, f)
	}
	return nil
}

func (mt *match) finish(ctx context.Context, turns int) (*Result, error) {
	res := &Result{
		MatchID:    mt.id,
		Name:       mt.name,
		MapName:    mt.mapName,
		Turns:      turns,
		Winner:     winner(mt.seats),
		Collisions: mt.collisions,
	}
	for _, s := range mt.seats {
		s.result.Banked = s.player.Halite
		s.result.Ships = len(s.player.Ships)
		res.Seats = append(res.Seats, s.result)
		res.OverBudgetTurns += s.overBudget
	}

	if mt.replay != nil {
		res.ReplayPath = mt.replay.Path()
		if err := mt.replay.WriteResult(&replay.Result{Turns: turns, Winner: res.Winner, Seats: res.Seats}); err != nil {
			return nil, fmt.Errorf("write replay result: %w", err)
		}
		if err := mt.replay.Close(); err != nil {
			return nil, fmt.Errorf("close replay: %w", err)
		}
	}
	if repo := mt.sinks.Repo; repo != nil {
		if err := repo.SaveSeatResults(ctx, mt.id, res.Seats); err != nil {
			return nil, fmt.Errorf("save seat results: %w", err)
		}
		if err := repo.FinishMatch(ctx, mt.id, turns, res.Winner); err != nil {
			return nil, fmt.Errorf("finish match: %w", err)
		}
	}
	if cache := mt.sinks.Cache; cache != nil {
		if res.Winner != model.NoWinner {
			if err := cache.RecordWin(ctx, mt.seats[res.Winner].policy); err != nil {
				mt.log.Warn().Err(err).Msg("Win not recorded")
			}
		}
		if err := cache.DeleteMatch(ctx, mt.id); err != nil {
			mt.log.Warn().Err(err).Msg("Live state not deleted")
		}
	}
	if b := mt.sinks.Broadcaster; b != nil {
		b.BroadcastMatchEvent(mt.id, spectate.EventMatchEnded, res)
	}

	ev := mt.log.Info().Int("turns", turns).Int("winner", res.Winner).Int("collisions", res.Collisions)
	for _, sr := range res.Seats {
		ev = ev.Int(fmt.Sprintf("banked%d", sr.Seat), sr.Banked)
	}
	ev.Msg("Match finished")
	return res, nil
}

// winner returns the seat with the most banked halite, or NoWinner on a tie.
func winner(seats []*seat) int {
	best, win := -1, model.NoWinner
	for i, s := range seats {
		switch {
		case s.player.Halite > best:
			best, win = s.player.Halite, i
		case s.player.Halite == best:
			win = model.NoWinner
		}
	}
	return win
}

func haliteRows(m *halite.GameMap) [][]int {
	rows := make([][]int, m.Height)
	for y := range rows {
		rows[y] = make([]int, m.Width)
		for x := range rows[y] {
			rows[y][x] = m.Halite(halite.Pos(x, y))
		}
	}
	return rows
}

func ceilDiv(a, b int) int {
	if b <= 1 {
		return a
	}
	return (a + b - 1) / b
}
