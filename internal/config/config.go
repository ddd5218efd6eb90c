package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/voice-ci/engine/internal/session"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Rules  RulesConfig  `yaml:"rules"`
	Stream StreamConfig `yaml:"stream"`
}

type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port" env:"PORT"`
	AuthToken      string   `yaml:"auth_token" env:"VCI_AUTH_TOKEN"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RulesConfig struct {
	MaxFirstResponseMs int64    `yaml:"max_first_response_ms"`
	MaxDeadAirMs       int64    `yaml:"max_dead_air_ms"`
	MaxInterruptions   int      `yaml:"max_interruptions"`
	RequiredKeywords   []string `yaml:"required_keywords"`
	HoldKeyword        string   `yaml:"hold_keyword"`
}

type StreamConfig struct {
	BroadcastThrottle time.Duration `yaml:"broadcast_throttle"`
	SnapshotInterval  time.Duration `yaml:"snapshot_interval"`
}

// Platform carries the values the hosting platform injects into the
// container environment. Defaults make local runs behave like a
// standalone process.
type Platform struct {
	ProcessID     string `env:"HATHORA_PROCESS_ID" envDefault:"local"`
	Region        string `env:"HATHORA_REGION" envDefault:"local"`
	InitialRoomID string `env:"HATHORA_INITIAL_ROOM_ID"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 4000,
		},
		Rules: RulesConfig{
			MaxFirstResponseMs: 3000,
			MaxDeadAirMs:       4000,
			MaxInterruptions:   1,
			RequiredKeywords:   []string{"verify", "confirm"},
			HoldKeyword:        "hold",
		},
		Stream: StreamConfig{
			BroadcastThrottle: 100 * time.Millisecond,
			SnapshotInterval:  5 * time.Second,
		},
	}
}

// Load reads the config file at path over the defaults, then applies
// environment overrides. A missing file is not an error: the engine runs
// on defaults plus environment, like the original deployment did.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// LoadPlatform reads the platform-injected environment.
func LoadPlatform() (Platform, error) {
	var p Platform
	if err := env.Parse(&p); err != nil {
		return Platform{}, fmt.Errorf("parse env: %w", err)
	}
	return p, nil
}

// SessionRules converts the rules section into the engine's rule set.
func (c *RulesConfig) SessionRules() session.Rules {
	return session.Rules{
		MaxFirstResponseMs: c.MaxFirstResponseMs,
		MaxDeadAirMs:       c.MaxDeadAirMs,
		MaxInterruptions:   c.MaxInterruptions,
		RequiredKeywords:   c.RequiredKeywords,
		HoldKeyword:        c.HoldKeyword,
	}
}
