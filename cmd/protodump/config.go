package main

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/anirudhraja/protodesc/wire"
)

const EnvLogLevel = "PROTODUMP_LOG_LEVEL"

type dumpConfig struct {
	MaxDepth int
	LogLevel zerolog.Level
	Hex      bool
	Nested   bool
}

type fileConfig struct {
	MaxDepth int    `toml:"max_depth"`
	LogLevel string `toml:"log_level"`
	Hex      bool   `toml:"hex"`
	Nested   bool   `toml:"nested"`
}

func defaultConfig() dumpConfig {
	return dumpConfig{
		MaxDepth: wire.DefaultMaxDepth,
		LogLevel: zerolog.WarnLevel,
	}
}

// loadConfig overlays the keys present in the TOML file at path onto cfg.
func loadConfig(path string, cfg dumpConfig) (dumpConfig, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return dumpConfig{}, errors.Wrap(err, "load protodump config")
	}

	if meta.IsDefined("max_depth") {
		if raw.MaxDepth <= 0 {
			return dumpConfig{}, errors.Errorf("max_depth must be positive, got %d", raw.MaxDepth)
		}
		cfg.MaxDepth = raw.MaxDepth
	}

	if meta.IsDefined("log_level") {
		lvl, ok := parseLevel(raw.LogLevel)
		if !ok {
			return dumpConfig{}, errors.Errorf("unknown log_level %q", raw.LogLevel)
		}
		cfg.LogLevel = lvl
	}

	if meta.IsDefined("hex") {
		cfg.Hex = raw.Hex
	}

	if meta.IsDefined("nested") {
		cfg.Nested = raw.Nested
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *dumpConfig) {
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.LogLevel = lvl
	}
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}
