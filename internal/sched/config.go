package sched

import (
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Config mirrors config.yml
type Config struct {
	TickMS   int64  `yaml:"tick_ms"`   // virtual ms advanced per convenience tick, 1 (by default)
	MaxTicks int    `yaml:"max_ticks"` // RunUntilQuiescent safety bound, 10000 (by default)
	TraceCSV string `yaml:"trace_csv"` // optional CSV event trace path, empty = disabled
	LogLevel string `yaml:"log_level"` // zerolog level, "info" (by default)
}

// If the config file is not found, we use default values
func defaultConfig() Config {
	return Config{
		TickMS:   1,
		MaxTicks: 10000,
		LogLevel: "info",
	}
}

// Load reads YAML and overrides defaults; empty path = defaults only
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)

	// sanity clamps
	if cfg.TickMS <= 0 {
		cfg.TickMS = 1
	}
	if cfg.MaxTicks <= 0 {
		cfg.MaxTicks = 10000
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg
}
