package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "WORDLE_"
	envFileVar = "WORDLE_CONFIG"
	dotEnvFile = ".env"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if WORDLE_CONFIG is set
//  3. env (prefix WORDLE_), including values from an optional .env file
func Load(ctx context.Context) (*Config, error) {
	// .env never overrides variables already present in the environment.
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, dotEnvFile, err)
	}

	base := New(ctx)
	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// WORDLE_QUEUE_SIZE -> queue_size. Underscores are kept to match the flat koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file path itself is not a setting.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and cross-field constraints.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	}
	if c.CommandPrefix == "" {
		return fmt.Errorf("%w: command_prefix must not be empty", ErrInvalidConfig)
	}
	if c.FailedScore != 7 && c.FailedScore != 8 {
		return fmt.Errorf("%w: failed_score must be 7 or 8, got %d", ErrInvalidConfig, c.FailedScore)
	}
	if _, err := ParseWeekday(c.WeekStartDay); err != nil {
		return fmt.Errorf("%w: week_start_day: %w", ErrInvalidConfig, err)
	}
	if c.WeekStartHour < 0 || c.WeekStartHour > 23 {
		return fmt.Errorf("%w: week_start_hour must be within 0..23", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone: %w", ErrInvalidConfig, err)
	}
	if c.LeaderboardLimit < 1 {
		return fmt.Errorf("%w: leaderboard_limit must be positive", ErrInvalidConfig)
	}
	if c.GateEnabled {
		if _, err := ParseWeekday(c.GateDay); err != nil {
			return fmt.Errorf("%w: gate_day: %w", ErrInvalidConfig, err)
		}
		if c.GateStartHour < 0 || c.GateEndHour > 24 || c.GateStartHour >= c.GateEndHour {
			return fmt.Errorf("%w: gate hours must satisfy 0 <= start < end <= 24", ErrInvalidConfig)
		}
	}
	if c.QueueSize < 1 || c.WorkerCount < 1 || c.DedupeSize < 1 {
		return fmt.Errorf("%w: queue_size, worker_count and dedupe_size must be positive", ErrInvalidConfig)
	}
	if c.DedupeTTL <= 0 {
		return fmt.Errorf("%w: dedupe_ttl must be positive", ErrInvalidConfig)
	}
	if c.LogChannelRate <= 0 {
		return fmt.Errorf("%w: log_channel_rate must be positive", ErrInvalidConfig)
	}
	return nil
}

// Location resolves Timezone. Call after Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseWeekday accepts full or three-letter English day names, case-insensitive.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("%w: %q", ErrUnknownWeekday, s)
}
