// Package config loads server configuration from a YAML file with
// sane defaults for everything, so an empty file is a valid config.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Server   ServerConfig   `mapstructure:"server"`
	Match    MatchConfig    `mapstructure:"match"`
	Decision DecisionConfig `mapstructure:"decision"`
	Decks    DecksConfig    `mapstructure:"decks"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Stats    StatsConfig    `mapstructure:"stats"`
	Scryfall ScryfallConfig `mapstructure:"scryfall"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// ServerConfig holds the network surfaces.
type ServerConfig struct {
	WebSocket WebSocketConfig `mapstructure:"websocket"`
}

// WebSocketConfig configures the WebSocket prompt server.
type WebSocketConfig struct {
	Address      string        `mapstructure:"address"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// MatchConfig holds per-match parameters.
type MatchConfig struct {
	Format string `mapstructure:"format"`
	// Seed of 0 means derive one from the clock at startup.
	Seed int64 `mapstructure:"seed"`
}

// DecisionConfig tunes the automated decision policies.
type DecisionConfig struct {
	PlayProbability float64 `mapstructure:"play_probability"`
	MinLands        int     `mapstructure:"min_lands"`
	MaxLands        int     `mapstructure:"max_lands"`
	MaxMulligans    int     `mapstructure:"max_mulligans"`
}

// DecksConfig locates saved deck files.
type DecksConfig struct {
	Dir string `mapstructure:"dir"`
}

// CatalogConfig locates archetype catalog files.
type CatalogConfig struct {
	Dir string `mapstructure:"dir"`
}

// StatsConfig selects and configures the win-rate store.
type StatsConfig struct {
	Backend     string `mapstructure:"backend"` // file or postgres
	Dir         string `mapstructure:"dir"`     // file backend
	DatabaseURL string `mapstructure:"database_url"`
}

// ScryfallConfig configures the external card catalog client.
type ScryfallConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads the config file at path. An empty path yields defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.websocket.address", ":8089")
	v.SetDefault("server.websocket.write_timeout", 10*time.Second)

	v.SetDefault("match.format", "standard")
	v.SetDefault("match.seed", 0)

	v.SetDefault("decision.play_probability", 0.6)
	v.SetDefault("decision.min_lands", 3)
	v.SetDefault("decision.max_lands", 5)
	v.SetDefault("decision.max_mulligans", 2)

	v.SetDefault("decks.dir", "data/decks")
	v.SetDefault("catalog.dir", "data/archetypes")

	v.SetDefault("stats.backend", "file")
	v.SetDefault("stats.dir", "data/stats")

	v.SetDefault("scryfall.base_url", "https://api.scryfall.com")
	v.SetDefault("scryfall.timeout", 15*time.Second)
}

func (c *Config) validate() error {
	switch c.Stats.Backend {
	case "file", "postgres":
	default:
		return fmt.Errorf("config: unknown stats backend %q", c.Stats.Backend)
	}
	if c.Stats.Backend == "postgres" && c.Stats.DatabaseURL == "" {
		return fmt.Errorf("config: stats backend postgres requires database_url")
	}
	if c.Decision.PlayProbability < 0 || c.Decision.PlayProbability > 1 {
		return fmt.Errorf("config: play_probability %v outside [0, 1]", c.Decision.PlayProbability)
	}
	if c.Decision.MinLands > c.Decision.MaxLands {
		return fmt.Errorf("config: min_lands %d exceeds max_lands %d", c.Decision.MinLands, c.Decision.MaxLands)
	}
	return nil
}
