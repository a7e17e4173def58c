package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Soak    SoakConfig    `toml:"soak"`
	Trace   TraceConfig   `toml:"trace"`
	Script  ScriptConfig  `toml:"script"`
	Logging LoggingConfig `toml:"logging"`
}

type SoakConfig struct {
	Seed       int64   `toml:"seed"` // 0 = derive from current time at startup
	Ops        int     `toml:"ops"`
	Capacity   int     `toml:"capacity"`
	EraseBias  float64 `toml:"erase_bias"`  // 0.0-1.0
	CheckEvery int     `toml:"check_every"` // full check interval in ops, 0 = final only
}

type TraceConfig struct {
	RecordPath string `toml:"record_path"` // write executed trace here ("" = don't)
	ReplayPath string `toml:"replay_path"` // replay this trace instead of soaking ("" = soak)
}

type ScriptConfig struct {
	Dir string `toml:"dir"` // Lua scenario directory ("" = skip scenarios)
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Soak: SoakConfig{
			Ops:        100_000,
			Capacity:   256,
			EraseBias:  0.45,
			CheckEvery: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c *Config) validate() error {
	if c.Soak.Capacity < 1 || c.Soak.Capacity >= 1<<16 {
		return fmt.Errorf("soak.capacity %d out of range [1, 65536)", c.Soak.Capacity)
	}
	if c.Soak.Ops < 0 {
		return fmt.Errorf("soak.ops %d is negative", c.Soak.Ops)
	}
	if c.Soak.EraseBias < 0 || c.Soak.EraseBias > 1 {
		return fmt.Errorf("soak.erase_bias %v out of range [0, 1]", c.Soak.EraseBias)
	}
	if c.Soak.CheckEvery < 0 {
		return fmt.Errorf("soak.check_every %d is negative", c.Soak.CheckEvery)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if f := c.Logging.Format; f != "console" && f != "json" {
		return fmt.Errorf("logging.format %q is not %q or %q", f, "console", "json")
	}
	return nil
}
