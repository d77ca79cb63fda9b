package repository

import (
	"time"

	"github.com/okian/wordlebot/internal/domain/scoring"
)

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithClock sets the time source used to stamp inserted records.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithBusyTimeout sets how long SQLite waits on a locked database. Only used by Open.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLiteStore) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithFailedScore sets the sentinel accepted for failed games. Values other
// than the supported sentinels are ignored.
func WithFailedScore(failed int) Option {
	return func(s *SQLiteStore) {
		if scoring.ValidSentinel(failed) {
			s.failedScore = failed
		}
	}
}
