// Package config provides layered configuration loading for habitd.
//
// Precedence, highest to lowest: environment variables with the
// HABITD_ prefix, a YAML config file, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete habitd configuration.
type Config struct {
	Sessions SessionsConfig `koanf:"sessions"`
	Budgets  BudgetsConfig  `koanf:"budgets"`
	Mining   MiningConfig   `koanf:"mining"`
	Scrub    ScrubConfig    `koanf:"scrub"`
	Log      LogConfig      `koanf:"log"`
}

// SessionsConfig controls where session logs are read from.
type SessionsConfig struct {
	// Root is the directory holding per-project session logs.
	Root string `koanf:"root"`
	// MaxAge bounds how far back sessions are collected.
	MaxAge time.Duration `koanf:"max_age"`
	// ExcludePrefixes skips session files whose names start with one
	// of these, such as subagent transcripts.
	ExcludePrefixes []string `koanf:"exclude_prefixes"`
}

// BudgetsConfig bounds digest sizes.
type BudgetsConfig struct {
	PerSessionBytes int `koanf:"per_session_bytes"`
	TotalBytes      int `koanf:"total_bytes"`
}

// MiningConfig tunes pattern extraction thresholds.
type MiningConfig struct {
	MinFrequency         int     `koanf:"min_frequency"`
	SequenceLen          int     `koanf:"sequence_len"`
	ConsistencyThreshold float64 `koanf:"consistency_threshold"`
	LongSessionTurns     int     `koanf:"long_session_turns"`
	ShortSessionTurns    int     `koanf:"short_session_turns"`
}

// ScrubConfig controls secret redaction of digests.
type ScrubConfig struct {
	Enabled bool `koanf:"enabled"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Validate checks ranges and enums after loading.
func (c *Config) Validate() error {
	if c.Sessions.Root == "" {
		return errors.New("sessions.root must not be empty")
	}
	if c.Budgets.PerSessionBytes <= 0 {
		return fmt.Errorf("budgets.per_session_bytes must be positive, got %d", c.Budgets.PerSessionBytes)
	}
	if c.Budgets.TotalBytes <= 0 {
		return fmt.Errorf("budgets.total_bytes must be positive, got %d", c.Budgets.TotalBytes)
	}
	if c.Mining.ConsistencyThreshold <= 0 || c.Mining.ConsistencyThreshold > 1 {
		return fmt.Errorf("mining.consistency_threshold must be in (0,1], got %v", c.Mining.ConsistencyThreshold)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}
