package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/bigbrainbot/internal/arena"
	"github.com/freeeve/bigbrainbot/internal/config"
	"github.com/freeeve/bigbrainbot/internal/logger"
	"github.com/freeeve/bigbrainbot/internal/model"
	"github.com/freeeve/bigbrainbot/internal/repository"
	"github.com/freeeve/bigbrainbot/internal/repository/postgres"
	"github.com/freeeve/bigbrainbot/internal/repository/redis"
	"github.com/freeeve/bigbrainbot/internal/repository/sqlite"
	"github.com/freeeve/bigbrainbot/internal/spectate"
)

func main() {
	logger.Init(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	var (
		mapPath    string
		seatCfg    string
		tuningPath string
		numGames   int
		workers    int
		maxTurns   int
		dbURL      string
		sqlitePath string
		redisURL   string
		replayDir  string
		spectateAt string
		jsonOut    bool
	)

	flag.StringVar(&mapPath, "map", "maps/duel.yaml", "Map file (YAML)")
	flag.StringVar(&seatCfg, "seats", "*=harvest", "Seat policies (e.g. 0=blockade,*=harvest)")
	flag.StringVar(&tuningPath, "tuning", cfg.TuningPath, "Tuning file applied to every seat (or use BOT_TUNING env)")
	flag.IntVar(&numGames, "n", 1, "Number of matches to run")
	flag.IntVar(&workers, "workers", 1, "Concurrency (parallel matches)")
	flag.IntVar(&maxTurns, "turns", 0, "Turns per match (0 = engine MAX_TURNS)")
	flag.StringVar(&dbURL, "db", cfg.DatabaseURL, "Postgres URL for match history (or use DATABASE_URL env)")
	flag.StringVar(&sqlitePath, "sqlite", cfg.SQLitePath, "SQLite file for match history (or use SQLITE_PATH env)")
	flag.StringVar(&redisURL, "redis", cfg.RedisURL, "Redis URL for live frames and the leaderboard (or use REDIS_URL env)")
	flag.StringVar(&replayDir, "replay-dir", cfg.ReplayDir, "Directory for match replays (or use REPLAY_DIR env)")
	flag.StringVar(&spectateAt, "spectate", "", "Serve the spectator feed on this address (e.g. :8080)")
	flag.BoolVar(&jsonOut, "json", false, "Output results as JSON")

	flag.Parse()

	if workers < 1 {
		workers = 1
	}
	if tuningPath != "" && tuningPath != cfg.TuningPath {
		if err := cfg.ApplyTuning(tuningPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to load tuning")
		}
	}

	spec, err := arena.LoadMap(mapPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load map")
	}
	seats, err := arena.ParseSeatConfig(seatCfg, spec.Seats())
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid seat config")
	}
	label := arena.Label(seats)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	var sinks arena.Sinks
	sinks.ReplayDir = replayDir

	switch {
	case dbURL != "":
		db, err := postgres.Connect(dbURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		defer db.Close()
		sinks.Repo = postgres.NewMatchRepo(db)
	case sqlitePath != "":
		db, err := sqlite.Open(sqlitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("SQLite open failed")
		}
		defer db.Close()
		sinks.Repo = sqlite.NewMatchRepo(db)
	}

	var cache *redis.Client
	if redisURL != "" {
		cache, err = redis.NewClient(redisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer cache.Close()
		sinks.Cache = cache
	}

	if spectateAt != "" {
		hub := spectate.NewHub()
		sinks.Broadcaster = hub
		srv := &http.Server{
			Addr:              spectateAt,
			Handler:           spectate.NewServer(hub, sinks.Repo, cacheOrNil(cache)).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Info().Str("addr", spectateAt).Msg("Spectator feed listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Spectator server failed")
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			srv.Shutdown(shutdownCtx)
		}()
	}

	// Run matches
	results := make([]*arena.Result, numGames)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	errCount := 0
	start := time.Now()

	for i := 0; i < numGames; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			mc := arena.Config{
				Name:     fmt.Sprintf("%s #%d", label, idx+1),
				Map:      spec,
				Seats:    seats,
				Tuning:   cfg,
				MaxTurns: maxTurns,
			}
			result, err := arena.Run(ctx, mc, sinks)
			if err != nil {
				log.Error().Err(err).Int("match", idx+1).Msg("Match failed")
				mu.Lock()
				errCount++
				mu.Unlock()
				return
			}

			mu.Lock()
			results[idx] = result
			mu.Unlock()

			log.Info().Int("match", idx+1).Str("matchId", result.MatchID).Int("winner", result.Winner).Dur("elapsed", result.Elapsed).Msg("Match completed")
		}(i)
	}

	wg.Wait()

	if jsonOut {
		printJSON(results, numGames, errCount)
	} else {
		printSummary(results, spec, seats, errCount, time.Since(start))
	}
}

// cacheOrNil keeps a nil *redis.Client from becoming a non-nil interface.
func cacheOrNil(c *redis.Client) repository.MatchCache {
	if c == nil {
		return nil
	}
	return c
}

func printSummary(results []*arena.Result, spec *arena.MapSpec, seats []string, errCount int, elapsed time.Duration) {
	type stats struct {
		wins       int
		ties       int
		banked     int
		ships      int
		spawned    int
		collisions int
		self       int
		games      int
	}

	bySeat := make([]stats, len(seats))
	completed, overBudget := 0, 0
	for _, r := range results {
		if r == nil {
			continue
		}
		completed++
		overBudget += r.OverBudgetTurns
		for _, sr := range r.Seats {
			s := &bySeat[sr.Seat]
			s.games++
			s.banked += sr.Banked
			s.ships += sr.Ships
			s.spawned += sr.Spawned
			s.collisions += sr.Collisions
			s.self += sr.SelfCollisions
			switch r.Winner {
			case sr.Seat:
				s.wins++
			case model.NoWinner:
				s.ties++
			}
		}
	}

	fmt.Printf("\nResults (%d matches on %s %dx%d, %s):\n", completed, spec.Name, spec.Width, spec.Height, elapsed.Round(time.Millisecond))
	if errCount > 0 {
		fmt.Printf("  (%d matches failed)\n", errCount)
	}

	order := make([]int, len(seats))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return bySeat[order[a]].wins > bySeat[order[b]].wins })

	for _, i := range order {
		s := bySeat[i]
		avg := func(n int) float64 {
			if s.games == 0 {
				return 0
			}
			return float64(n) / float64(s.games)
		}
		fmt.Printf("  seat %d %-9s %d wins, %d ties  -- avg banked %s, ships %s, spawned %s, collisions %s (%d own)\n",
			i, "("+seats[i]+"):", s.wins, s.ties,
			humanize.Comma(int64(avg(s.banked))),
			humanize.FtoaWithDigits(avg(s.ships), 1),
			humanize.FtoaWithDigits(avg(s.spawned), 1),
			humanize.FtoaWithDigits(avg(s.collisions), 1),
			s.self)
	}
	if overBudget > 0 {
		fmt.Printf("\n  %s seat-turns ran over the turn budget\n", humanize.Comma(int64(overBudget)))
	}
}

func printJSON(results []*arena.Result, total, errCount int) {
	out := struct {
		Total   int             `json:"total"`
		Errors  int             `json:"errors"`
		Results []*arena.Result `json:"results"`
	}{
		Total:   total,
		Errors:  errCount,
		Results: results,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}
