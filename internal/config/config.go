package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries every tunable the server reads at startup. Zero values are
// replaced by the deployed defaults, so a partial YAML file only overrides
// what it names.
type Config struct {
	Port     int    `yaml:"port"`
	HTTPPort int    `yaml:"http_port"`
	DBPath   string `yaml:"db_path"`

	GridWidth   int     `yaml:"grid_width"`
	GridHeight  int     `yaml:"grid_height"`
	PlayerSpeed float64 `yaml:"player_speed"`

	RoundSeconds      int `yaml:"round_seconds"`
	WinScoreThreshold int `yaml:"win_score_threshold"`
	MaxPlayers        int `yaml:"max_players"`

	StationSize      int `yaml:"station_size"`
	FusionStations   int `yaml:"fusion_stations"`
	MaxActiveOrders  int `yaml:"max_active_orders"`
	OrderIntervalMin int `yaml:"order_interval_min"`
	OrderIntervalMax int `yaml:"order_interval_max"`

	DoorprizeSpawnMin  int `yaml:"doorprize_spawn_min"`
	DoorprizeSpawnMax  int `yaml:"doorprize_spawn_max"`
	DoorprizeDuration  int `yaml:"doorprize_duration"`
	DoorprizeScoreMin  int `yaml:"doorprize_score_min"`
	DoorprizeScoreMax  int `yaml:"doorprize_score_max"`

	NeededIngredientBias float64 `yaml:"needed_ingredient_bias"`

	TickInterval      time.Duration `yaml:"tick_interval"`
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
}

// Default returns the deployed configuration.
func Default() Config {
	return Config{
		Port:     5555,
		HTTPPort: 8000,
		DBPath:   "recipes.db",

		GridWidth:   24,
		GridHeight:  12,
		PlayerSpeed: 0.25,

		RoundSeconds:      300,
		WinScoreThreshold: 100000,
		MaxPlayers:        8,

		StationSize:      2,
		FusionStations:   2,
		MaxActiveOrders:  3,
		OrderIntervalMin: 5,
		OrderIntervalMax: 15,

		DoorprizeSpawnMin: 10,
		DoorprizeSpawnMax: 15,
		DoorprizeDuration: 3,
		DoorprizeScoreMin: 1000,
		DoorprizeScoreMax: 20000,

		NeededIngredientBias: 0.5,

		TickInterval:      20 * time.Millisecond,
		BroadcastInterval: 100 * time.Millisecond,
	}
}

// Load reads the YAML file at path on top of the defaults. A missing file is
// not an error; a malformed one is. PORT, if set in the environment, wins
// over both (the hosting platform sets it).
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if p := os.Getenv("PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return cfg, fmt.Errorf("invalid PORT %q: %w", p, err)
		}
		cfg.HTTPPort = port
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.GridWidth < 4 || c.GridHeight < 4 {
		return fmt.Errorf("grid %dx%d too small for station placement", c.GridWidth, c.GridHeight)
	}
	if c.StationSize < 1 {
		return fmt.Errorf("station size must be positive, got %d", c.StationSize)
	}
	if c.OrderIntervalMin > c.OrderIntervalMax {
		return fmt.Errorf("order interval min %d exceeds max %d", c.OrderIntervalMin, c.OrderIntervalMax)
	}
	if c.NeededIngredientBias < 0 || c.NeededIngredientBias > 1 {
		return fmt.Errorf("needed ingredient bias %.2f outside [0,1]", c.NeededIngredientBias)
	}
	return nil
}
