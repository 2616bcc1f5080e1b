package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/freeeve/bigbrainbot/internal/bot"
	"github.com/freeeve/bigbrainbot/pkg/halite"
	"github.com/freeeve/bigbrainbot/pkg/nav"
)

// Config holds bot tuning and arena persistence settings. Values come from
// built-in defaults, then an optional YAML tuning file (BOT_TUNING), then
// environment variables. Zero values for the engine-derived fields mean
// "use what the engine announced".
type Config struct {
	Name              string        `yaml:"name"`
	Roles             string        `yaml:"roles"`
	MaxCargo          int           `yaml:"max_cargo"`
	ShipCost          int           `yaml:"ship_cost"`
	MaxTurns          int           `yaml:"max_turns"`
	LowYieldThreshold int           `yaml:"low_yield_threshold"`
	SpawnCutoffTurn   int           `yaml:"spawn_cutoff_turn"`
	SpawnReserveTurns int           `yaml:"spawn_reserve_turns"`
	SpawnGuard        string        `yaml:"spawn_guard"`
	MinHarvesters     int           `yaml:"min_harvesters"`
	BlockerLimit      int           `yaml:"blocker_limit"`
	TurnBudget        time.Duration `yaml:"turn_budget"`
	MaxExpansions     int           `yaml:"max_expansions"`
	SearchRadius      int           `yaml:"search_radius"`
	PathCost          string        `yaml:"path_cost"`

	TuningPath  string `yaml:"-"`
	DatabaseURL string `yaml:"-"`
	SQLitePath  string `yaml:"-"`
	RedisURL    string `yaml:"-"`
	ReplayDir   string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Name:              "BBB",
		Roles:             "harvest",
		LowYieldThreshold: bot.DefaultLowYieldThreshold,
		SpawnReserveTurns: bot.DefaultSpawnReserveTurns,
		MinHarvesters:     bot.DefaultMinHarvesters,
		BlockerLimit:      bot.DefaultBlockerLimit,
		TurnBudget:        bot.DefaultTurnBudget,
		SearchRadius:      bot.DefaultSearchRadius,
		PathCost:          "step_friction",
	}
}

// Load reads configuration from the tuning file named by BOT_TUNING, if
// any, and environment variables with sensible defaults.
func Load() (*Config, error) {
	c := Default()
	c.TuningPath = os.Getenv("BOT_TUNING")
	if c.TuningPath != "" {
		if err := c.LoadFile(c.TuningPath); err != nil {
			return nil, err
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile overlays the YAML tuning file at path onto c. Keys missing from
// the file leave the current values alone.
func (c *Config) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ApplyTuning overlays the tuning file at path and re-applies the
// environment on top, keeping env values ahead of the file.
func (c *Config) ApplyTuning(path string) error {
	if err := c.LoadFile(path); err != nil {
		return err
	}
	c.TuningPath = path
	return c.applyEnv()
}

func (c *Config) applyEnv() error {
	c.Name = envOrDefault("BOT_NAME", c.Name)
	c.Roles = envOrDefault("BOT_ROLES", c.Roles)
	c.SpawnGuard = envOrDefault("BOT_SPAWN_GUARD", c.SpawnGuard)
	c.PathCost = envOrDefault("BOT_PATH_COST", c.PathCost)
	c.DatabaseURL = envOrDefault("DATABASE_URL", c.DatabaseURL)
	c.SQLitePath = envOrDefault("SQLITE_PATH", c.SQLitePath)
	c.RedisURL = envOrDefault("REDIS_URL", c.RedisURL)
	c.ReplayDir = envOrDefault("REPLAY_DIR", c.ReplayDir)

	ints := []struct {
		key string
		dst *int
	}{
		{"BOT_MAX_CARGO", &c.MaxCargo},
		{"BOT_SHIP_COST", &c.ShipCost},
		{"BOT_MAX_TURNS", &c.MaxTurns},
		{"BOT_LOW_YIELD", &c.LowYieldThreshold},
		{"BOT_SPAWN_CUTOFF", &c.SpawnCutoffTurn},
		{"BOT_SPAWN_RESERVE", &c.SpawnReserveTurns},
		{"BOT_MIN_HARVESTERS", &c.MinHarvesters},
		{"BOT_BLOCKER_LIMIT", &c.BlockerLimit},
		{"BOT_MAX_EXPANSIONS", &c.MaxExpansions},
		{"BOT_SEARCH_RADIUS", &c.SearchRadius},
	}
	for _, e := range ints {
		v, err := envInt(e.key, *e.dst)
		if err != nil {
			return err
		}
		*e.dst = v
	}

	if v := os.Getenv("BOT_TURN_BUDGET"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BOT_TURN_BUDGET: %w", err)
		}
		c.TurnBudget = d
	}
	return nil
}

// Resolve fills engine-derived defaults from k and returns controller
// settings.
func (c *Config) Resolve(k halite.Constants) (bot.Settings, error) {
	s := bot.DefaultSettings(k)
	if c.MaxCargo > 0 {
		s.MaxCargo = c.MaxCargo
	}
	if c.ShipCost > 0 {
		s.ShipCost = c.ShipCost
	}
	if c.MaxTurns > 0 {
		s.MaxTurns = c.MaxTurns
	}
	s.LowYieldThreshold = c.LowYieldThreshold
	s.SpawnCutoffTurn = s.MaxTurns - c.SpawnReserveTurns
	if c.SpawnCutoffTurn > 0 {
		s.SpawnCutoffTurn = c.SpawnCutoffTurn
	}
	s.SpawnGuard = c.SpawnGuard
	if c.TurnBudget > 0 {
		s.TurnBudget = c.TurnBudget
	}
	s.MaxExpansions = c.MaxExpansions
	if c.SearchRadius < 1 {
		return bot.Settings{}, fmt.Errorf("search radius must be at least 1, got %d", c.SearchRadius)
	}
	s.SearchRadius = c.SearchRadius

	cost, err := nav.CostByName(c.PathCost)
	if err != nil {
		return bot.Settings{}, err
	}
	s.PathCost = cost
	return s, nil
}

// RoleAssigner returns the configured role policy.
func (c *Config) RoleAssigner() (bot.RoleAssigner, error) {
	return bot.RoleAssignerByName(c.Roles, c.MinHarvesters, c.BlockerLimit)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
