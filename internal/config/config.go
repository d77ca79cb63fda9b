// Package config defines process configuration and its defaults.
package config

import (
	"context"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log line encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080". Empty disables HTTP.
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// DiscordToken is the bot token. Empty disables the chat adapter.
	DiscordToken string `koanf:"discord_token"`

	// CommandPrefix precedes every chat command, e.g. "!lb".
	CommandPrefix string `koanf:"command_prefix"`

	// OwnerID is the chat user allowed to run admin commands.
	OwnerID string `koanf:"owner_id"`

	// GuildScoped keys scores by guild as well as user and puzzle.
	GuildScoped bool `koanf:"guild_scoped"`

	// FailedScore is the value stored for an X/6 result. Either 7 or 8.
	FailedScore int `koanf:"failed_score"`

	// WeekStartDay and WeekStartHour define where the weekly window opens.
	WeekStartDay  string `koanf:"week_start_day"`
	WeekStartHour int    `koanf:"week_start_hour"`

	// Timezone is an IANA zone name used for week boundaries and gating.
	Timezone string `koanf:"timezone"`

	// LeaderboardLimit caps rendered boards and GET /leaderboard?limit.
	LeaderboardLimit int `koanf:"leaderboard_limit"`

	// Gate* restrict the public leaderboard command to a weekly viewing window
	// on GateDay from GateStartHour up to, not including, GateEndHour.
	GateEnabled   bool   `koanf:"gate_enabled"`
	GateDay       string `koanf:"gate_day"`
	GateStartHour int    `koanf:"gate_start_hour"`
	GateEndHour   int    `koanf:"gate_end_hour"`

	// QueueSize bounds the inbound message queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of message workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the message-ID deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// DedupeTTL is how long accepted message IDs are remembered, e.g. "6h".
	DedupeTTL time.Duration `koanf:"dedupe_ttl"`

	// LogChannelRate is the maximum number of log lines per second sent to a chat channel.
	LogChannelRate float64 `koanf:"log_channel_rate"`
}

// New creates a Config populated with defaults. Context is accepted first to
// match the rest of the codebase and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		DBPath:           "wordle_scores.db",
		CommandPrefix:    "!",
		FailedScore:      7,
		WeekStartDay:     "monday",
		WeekStartHour:    0,
		Timezone:         "UTC",
		LeaderboardLimit: 10,
		GateDay:          "sunday",
		GateStartHour:    17,
		GateEndHour:      24,
		QueueSize:        10_000,
		WorkerCount:      runtime.NumCPU(),
		DedupeSize:       50_000,
		DedupeTTL:        6 * time.Hour,
		LogChannelRate:   1,
	}
}
