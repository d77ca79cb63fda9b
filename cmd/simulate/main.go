package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/wordlebot/internal/simulate"
)

// Default configuration constants.
const (
	defaultResubmit = 0.1
	defaultChatter  = 0.2
	defaultRunLimit = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		guildID    = flag.String("guild", "", "Guild ID to write to (default: a fresh sim-<uuid>)")
		users      = flag.Int("users", simulate.DefaultUsers, "Number of players")
		puzzles    = flag.Int("puzzles", simulate.DefaultPuzzles, "Puzzles per player")
		first      = flag.Int("first", simulate.DefaultFirstPuzzle, "First puzzle number")
		resubmit   = flag.Float64("resubmit", defaultResubmit, "Fraction of results posted twice")
		chatter    = flag.Float64("chatter", defaultChatter, "Fraction of extra non-result messages")
		failed     = flag.Int("failed", 0, "Score the server stores for X/6, 7 or 8 (default 7)")
		workers    = flag.Int("workers", simulate.DefaultWorkers, "Number of concurrent submitters")
		timeout    = flag.Duration("timeout", simulate.DefaultTimeout, "HTTP request timeout")
		async      = flag.Bool("async", false, "Queue messages with ?async=true")
		settle     = flag.Duration("settle", simulate.DefaultSettleTimeout, "How long to wait for async processing")
		topN       = flag.Int("top", simulate.DefaultTopN, "Leaderboard entries to compare")
		outputFile = flag.String("output", "", "Write generated messages to this JSON file")
		logFile    = flag.String("log", "", "Log file (default: simulate_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Log every failed request")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	closeLog, err := simulate.SetupLogging(*logFile)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunLimit)

	cfg := &simulate.Config{
		BaseURL:       *baseURL,
		GuildID:       *guildID,
		Users:         *users,
		Puzzles:       *puzzles,
		FirstPuzzle:   *first,
		Resubmit:      *resubmit,
		Chatter:       *chatter,
		FailedScore:   *failed,
		Workers:       *workers,
		Timeout:       *timeout,
		Async:         *async,
		SettleTimeout: *settle,
		TopN:          *topN,
		OutputFile:    *outputFile,
		LogFile:       *logFile,
		Verbose:       *verbose,
	}

	_, runErr := simulate.Run(ctx, cfg)
	cancel()
	_ = closeLog()
	if runErr != nil {
		_, _ = os.Stderr.WriteString("Simulation failed: " + runErr.Error() + "\n")
		os.Exit(1)
	}
}
