// Package simulate drives a running wordlebot HTTP API with synthetic result
// messages and checks the served leaderboard against a locally ranked one.
package simulate

import (
	"time"

	"github.com/okian/wordlebot/internal/domain/types"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL       string        // Base URL of the service
	GuildID       string        // Guild the run writes to; generated when empty
	Users         int           // Number of distinct players
	Puzzles       int           // Puzzles each player attempts
	FirstPuzzle   int           // Puzzle number of the first puzzle
	Resubmit      float64       // Fraction of results sent a second time
	Chatter       float64       // Fraction of extra messages that are not results
	FailedScore   int           // Score the server stores for X/6
	Workers       int           // Number of concurrent submitters
	Timeout       time.Duration // HTTP request timeout
	Async         bool          // Submit with ?async=true
	SettleTimeout time.Duration // How long to wait for async processing
	TopN          int           // Leaderboard entries to compare
	OutputFile    string        // Output file for generated messages
	LogFile       string        // Log file for run output
	Verbose       bool          // Enable verbose logging
}

// Submission is one generated message plus what the server should do with it.
type Submission struct {
	Request types.MessageRequest `json:"request"`
	Want    string               `json:"want"` // inserted, duplicate or no_match
	Score   int                  `json:"score,omitempty"`
	Puzzle  int                  `json:"puzzle,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Inserted   int
	Duplicate  int
	NoMatch    int
	Accepted   int
	Failed     int
	Unexpected int
	Compared   int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
