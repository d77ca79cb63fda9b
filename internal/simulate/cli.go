package simulate

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/okian/wordlebot/pkg/logger"
)

// SetupLogging initialises the logger and mirrors every line into logFile.
// If logFile is empty, a timestamped filename is generated. The returned
// function removes the mirror and closes the file.
func SetupLogging(logFile string) (func() error, error) {
	if err := logger.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		logFile = "simulate_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	logger.SetMirror(file)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))

	return func() error {
		logger.SetMirror(nil)
		return file.Close()
	}, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Wordlebot Simulator
===================

Submits synthetic Wordle results to a running wordlebot and checks that the
served all-time leaderboard matches a locally computed ranking.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -guild string
        Guild ID to write to (default: a fresh sim-<uuid>)
  -users int
        Number of players (default 25)
  -puzzles int
        Puzzles per player (default 10)
  -first int
        First puzzle number (default 1200)
  -resubmit float
        Fraction of results posted twice (default 0.1)
  -chatter float
        Fraction of extra non-result messages (default 0.2)
  -failed int
        Score the server stores for X/6, 7 or 8 (default 7)
  -workers int
        Number of concurrent submitters (default 8)
  -timeout duration
        HTTP request timeout (default 10s)
  -async
        Queue messages with ?async=true instead of recording inline
  -settle duration
        How long to wait for async processing (default 30s)
  -top int
        Leaderboard entries to compare, at most 100 (default 100)
  -output string
        Write generated messages to this JSON file
  -log string
        Log file (default: simulate_TIMESTAMP.log)
  -verbose
        Log every failed request
  -help
        Show this help message

Examples:
  # Verify a local bot with default settings
  go run ./cmd/simulate

  # Exercise the queue path against a server with the legacy failure score
  go run ./cmd/simulate -async -failed 8 -users 80 -puzzles 30
`)
}
