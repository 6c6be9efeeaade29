package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "HABITD_"

// defaultYAML carries the built-in defaults. Loading it through the
// same parser as the user file keeps one source of truth for keys.
const defaultYAML = `
sessions:
  root: ""
  max_age: 720h
  exclude_prefixes:
    - agent-
budgets:
  per_session_bytes: 2048
  total_bytes: 102400
mining:
  min_frequency: 3
  sequence_len: 3
  consistency_threshold: 0.8
  long_session_turns: 15
  short_session_turns: 5
scrub:
  enabled: true
log:
  level: info
  format: console
`

// DefaultPath returns ~/.config/habitd/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "habitd", "config.yaml"), nil
}

// Load reads configuration in three layers: built-in defaults, the
// YAML file at configPath (skipped when missing), then HABITD_
// environment variables. An empty configPath uses DefaultPath.
//
// Environment variables map to dotted keys by lowercasing and
// splitting on the first underscore after the prefix:
//
//	HABITD_BUDGETS_TOTAL_BYTES  -> budgets.total_bytes
//	HABITD_LOG_LEVEL            -> log.level
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaultYAML)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading default config: %w", err)
	}

	if configPath == "" {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = path
	}
	if content, err := os.ReadFile(configPath); err == nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// applyDefaults fills values the YAML layer cannot express, currently
// just the home-relative session root.
func applyDefaults(cfg *Config) {
	if cfg.Sessions.Root == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Sessions.Root = filepath.Join(home, ".claude", "projects")
		}
	}
}
