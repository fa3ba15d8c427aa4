package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PARKING_"

type Config struct {
	Lot        LotConfig             `json:"lot"`
	Rates      map[string]RateConfig `json:"rates"`
	Server     ServerConfig          `json:"server"`
	Logging    LoggingConfig         `json:"logging"`
	Telemetry  TelemetryConfig       `json:"telemetry"`
	Simulation SimulationConfig      `json:"simulation"`
}

// Load reads an optional YAML or JSON file, applies PARKING_ environment
// overrides and fills in defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}

	// PARKING_LOT__SPOTS_PER_LEVEL=20 sets lot.spots_per_level
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) SetDefaults() {
	c.Lot.SetDefaults()
	c.Server.SetDefaults()
	c.Logging.SetDefaults()
	c.Telemetry.SetDefaults()
	c.Simulation.SetDefaults()
}

func (c Config) Validate() error {
	if err := c.Lot.Validate(); err != nil {
		return fmt.Errorf("lot: %w", err)
	}
	if err := validateRates(c.Rates); err != nil {
		return fmt.Errorf("rates: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	return nil
}

// LotConfig is the layout used when a lot is created at startup.
type LotConfig struct {
	Levels        int `json:"levels"`
	SpotsPerLevel int `json:"spots_per_level"`
}

func (c *LotConfig) SetDefaults() {
	if c.Levels == 0 {
		c.Levels = 3
	}
	if c.SpotsPerLevel == 0 {
		c.SpotsPerLevel = 40
	}
}

func (c LotConfig) Validate() error {
	if c.Levels < 1 {
		return fmt.Errorf("levels must be at least 1, got %d", c.Levels)
	}
	if c.SpotsPerLevel < 0 {
		return fmt.Errorf("spots_per_level must not be negative, got %d", c.SpotsPerLevel)
	}
	return nil
}

type ServerConfig struct {
	Port int `json:"port"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
}

func (c ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	return nil
}
