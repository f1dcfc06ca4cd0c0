// Package config loads server configuration from YAML with sane defaults.
package config

import (
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Config mirrors the server config file.
type Config struct {
	Addr      string `yaml:"addr"`       // listen address
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text, json

	// TimeQuantum is the slice length in seconds of simulated work.
	TimeQuantum float64 `yaml:"time_quantum"`

	// TraceDB enables the SQLite execution-trace recorder when non-empty.
	TraceDB string `yaml:"trace_db"`

	// CORSOrigins lists allowed origins; defaults to all.
	CORSOrigins []string `yaml:"cors_origins"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:        ":8080",
		LogLevel:    "info",
		LogFormat:   "text",
		TimeQuantum: 2.0,
		CORSOrigins: []string{"*"},
	}
}

// Load reads YAML from path and overrides defaults; an empty path yields
// defaults only.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.clamp()
	return cfg, nil
}

// clamp repairs out-of-range values instead of failing startup.
func (c *Config) clamp() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.TimeQuantum <= 0 {
		c.TimeQuantum = 2.0
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
}
