// Package config loads the YAML configuration shared by the commands.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/go-ctap/vkapi/pkg/options"
	"github.com/go-ctap/vkapi/pkg/vkx"
)

const (
	EngineSim    = "sim"
	EngineNative = "native"
	EngineProxy  = "proxy"
)

type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
	// RetryOn lists the engine error codes, by name, the engine may retry
	// instead of failing the operation.
	RetryOn []string `yaml:"retry_on"`
}

type EngineConfig struct {
	Kind    string    `yaml:"kind"`
	Library string    `yaml:"library"`
	Address string    `yaml:"address"`
	Sim     SimConfig `yaml:"sim"`
}

type SimConfig struct {
	Delay  string `yaml:"delay"` // duration string, e.g. "250ms"
	Stages int    `yaml:"stages"`
}

type StoreConfig struct {
	Dir    string `yaml:"dir"`
	Secret string `yaml:"secret"` //nolint:gosec // expanded from the environment
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default is used for keys missing from the file.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			Kind: EngineSim,
			Sim:  SimConfig{Stages: 3},
		},
		Store: StoreConfig{Dir: "prints"},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML file. Environment variables referenced as ${VAR} or
// $VAR are expanded before parsing, so the store secret can live in the
// environment or a .env file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration
	if err != nil {
		return Config{}, fmt.Errorf("config: load: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from a .env file into the environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// FromFlags loads the environment file, then the configuration file if one
// is named. Without a file the defaults are used.
func FromFlags(path, envPath string) (Config, error) {
	if envPath != "" {
		if err := LoadDotEnv(envPath); err != nil {
			return Config{}, fmt.Errorf("config: env: %w", err)
		}
	}

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	switch c.Engine.Kind {
	case EngineSim:
		if c.Engine.Sim.Delay != "" {
			if _, err := time.ParseDuration(c.Engine.Sim.Delay); err != nil {
				return fmt.Errorf("config: engine.sim.delay: %w", err)
			}
		}
		if c.Engine.Sim.Stages < 1 {
			return fmt.Errorf("config: engine.sim.stages must be positive")
		}
	case EngineNative, EngineProxy:
	default:
		return fmt.Errorf("config: unknown engine kind %q", c.Engine.Kind)
	}

	if c.Store.Dir == "" {
		return fmt.Errorf("config: store.dir is required")
	}

	for _, code := range c.RetryOn {
		if _, ok := vkx.ParseResult(code); !ok {
			return fmt.Errorf("config: retry_on: unknown code %q", code)
		}
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("config: log.format must be text or json")
	}
	return nil
}

// SimDelay returns the parsed simulator delay. Call after Validate.
func (c Config) SimDelay() time.Duration {
	d, _ := time.ParseDuration(c.Engine.Sim.Delay)
	return d
}

// RetryPolicy accepts a retry for the configured codes.
func (c Config) RetryPolicy() options.RetryPolicy {
	if len(c.RetryOn) == 0 {
		return options.NoRetry
	}
	codes := lo.FilterMap(c.RetryOn, func(name string, _ int) (vkx.Result, bool) {
		return vkx.ParseResult(name)
	})
	return func(code vkx.Result) bool {
		return lo.Contains(codes, code)
	}
}

// Logger builds the logger described by the log section.
func (c Config) Logger() *slog.Logger {
	var lvl slog.Level
	_ = lvl.UnmarshalText([]byte(c.Log.Level))

	hOpts := &slog.HandlerOptions{Level: lvl}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, hOpts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, hOpts))
}
