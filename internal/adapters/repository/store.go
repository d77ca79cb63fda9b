// Package repository persists score records and answers aggregation queries.
package repository

import (
	"context"

	"github.com/okian/wordlebot/internal/domain/leaderboard"
	"github.com/okian/wordlebot/internal/domain/model"
	"github.com/okian/wordlebot/internal/domain/scoring"
)

// InsertResult reports whether an insert stored a new record.
type InsertResult int

const (
	// Inserted means the record was new and is now stored.
	Inserted InsertResult = iota + 1
	// Duplicate means a record for the same key already existed; nothing changed.
	Duplicate
)

func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Stats summarizes one user's stored results.
type Stats struct {
	UserID      string
	DisplayName string
	Mean        scoring.Mean
}

// Games returns the number of stored results.
func (s Stats) Games() int { return s.Mean.Count }

// Average returns the mean score.
func (s Stats) Average() float64 { return s.Mean.Value() }

// DuplicateGroup lists records by one user recorded on the same UTC day.
type DuplicateGroup struct {
	UserID  string
	Day     string // YYYY-MM-DD, UTC
	Records []model.ScoreRecord
}

// Store provides read/write access to score records. Every method scopes
// by guildID; unscoped deployments pass "".
type Store interface {
	// Insert stores rec unless (guild, user, puzzle) already exists.
	// A duplicate is reported through the result, not as an error.
	Insert(ctx context.Context, rec model.ScoreRecord) (InsertResult, error)

	// Query returns records in the window, unsorted.
	Query(ctx context.Context, guildID string, w leaderboard.Window) ([]model.ScoreRecord, error)

	// StatsFor summarizes a user. Returns ErrNotFound when the user has no records.
	StatsFor(ctx context.Context, guildID, userID string) (Stats, error)

	// Overwrite inserts rec or replaces score and display name of the existing
	// record, keeping its id and timestamp. replaced reports which happened.
	Overwrite(ctx context.Context, rec model.ScoreRecord) (replaced bool, err error)

	// DeleteAll removes every record of the guild and returns how many were removed.
	DeleteAll(ctx context.Context, guildID string) (int64, error)

	// Duplicates lists groups of records by the same user on the same UTC day.
	Duplicates(ctx context.Context, guildID string) ([]DuplicateGroup, error)

	// CleanDuplicates keeps the earliest record of each duplicate group and
	// returns how many were removed.
	CleanDuplicates(ctx context.Context, guildID string) (int64, error)

	// Count returns the number of stored records across all guilds.
	Count(ctx context.Context) (int64, error)
}
