package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver

	"github.com/okian/wordlebot/internal/domain/leaderboard"
	"github.com/okian/wordlebot/internal/domain/model"
	"github.com/okian/wordlebot/internal/domain/scoring"
	"github.com/okian/wordlebot/pkg/metrics"
)

// timestampLayout is fixed width so text order equals time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS scores (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	guild_id      TEXT    NOT NULL DEFAULT '',
	user_id       TEXT    NOT NULL,
	username      TEXT    NOT NULL,
	puzzle_number INTEGER NOT NULL,
	score         INTEGER NOT NULL,
	timestamp     TEXT    NOT NULL,
	UNIQUE (guild_id, user_id, puzzle_number)
);
CREATE INDEX IF NOT EXISTS idx_scores_guild_time ON scores (guild_id, timestamp);
`

const selectColumns = `SELECT id, guild_id, user_id, username, puzzle_number, score, timestamp FROM scores`

// SQLiteStore implements Store on a single SQLite database.
type SQLiteStore struct {
	db          *sql.DB
	now         func() time.Time
	busyTimeout time.Duration
	failedScore int
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore wraps an open database. The caller owns schema setup; see Migrate.
func NewSQLiteStore(db *sql.DB, opts ...Option) *SQLiteStore {
	s := &SQLiteStore{
		db:          db,
		now:         time.Now,
		busyTimeout: 5 * time.Second,
		failedScore: scoring.FailedScore,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates the database file if needed, applies pragmas and the schema,
// and returns a ready store. SQLite serializes writers, so one connection is kept.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := NewSQLiteStore(nil, opts...)

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: mkdir %s: %w", ErrUnavailable, dir, err)
		}
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=%d&_journal_mode=WAL", path, s.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, unavailable("open", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, unavailable("ping", err)
	}

	s.db = db
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the scores table and its indexes if they do not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return unavailable("migrate", err)
	}
	return nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks that the database answers.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Insert implements Store with a single INSERT ... ON CONFLICT DO NOTHING.
func (s *SQLiteStore) Insert(ctx context.Context, rec model.ScoreRecord) (res InsertResult, err error) {
	defer observe("insert", time.Now(), &err)

	if err := s.validate(rec); err != nil {
		return 0, err
	}
	at := rec.RecordedAt
	if at.IsZero() {
		at = s.now()
	}

	r, err := s.db.ExecContext(ctx, `
		INSERT INTO scores (guild_id, user_id, username, puzzle_number, score, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (guild_id, user_id, puzzle_number) DO NOTHING`,
		rec.GuildID, rec.UserID, rec.DisplayName, rec.PuzzleNumber, rec.Score, formatTime(at))
	if err != nil {
		return 0, unavailable("insert", err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		return 0, unavailable("insert", err)
	}
	if n == 0 {
		return Duplicate, nil
	}
	return Inserted, nil
}

// Query implements Store.
func (s *SQLiteStore) Query(ctx context.Context, guildID string, w leaderboard.Window) (recs []model.ScoreRecord, err error) {
	defer observe("query", time.Now(), &err)

	q := selectColumns + ` WHERE guild_id = ?`
	args := []any{guildID}
	if !w.Since.IsZero() {
		q += ` AND timestamp >= ?`
		args = append(args, formatTime(w.Since))
	}
	if !w.Until.IsZero() {
		q += ` AND timestamp < ?`
		args = append(args, formatTime(w.Until))
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable("query", err)
	}
	return scanRecords(rows)
}

// StatsFor implements Store.
func (s *SQLiteStore) StatsFor(ctx context.Context, guildID, userID string) (st Stats, err error) {
	defer observe("stats", time.Now(), &err)

	var name sql.NullString
	st.UserID = userID
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(score), 0),
		       (SELECT username FROM scores WHERE guild_id = ? AND user_id = ? ORDER BY timestamp DESC, id DESC LIMIT 1)
		FROM scores WHERE guild_id = ? AND user_id = ?`,
		guildID, userID, guildID, userID).Scan(&st.Mean.Count, &st.Mean.Sum, &name)
	if err != nil {
		return Stats{}, unavailable("stats", err)
	}
	if st.Mean.Count == 0 {
		return Stats{}, ErrNotFound
	}
	st.DisplayName = name.String
	return st, nil
}

// Overwrite implements Store. The update and the fallback insert share a
// transaction. A display name that is empty or equal to the user ID keeps
// the stored username.
func (s *SQLiteStore) Overwrite(ctx context.Context, rec model.ScoreRecord) (replaced bool, err error) {
	defer observe("overwrite", time.Now(), &err)

	if err := s.validate(rec); err != nil {
		return false, err
	}
	at := rec.RecordedAt
	if at.IsZero() {
		at = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, unavailable("overwrite", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	r, err := tx.ExecContext(ctx, `
		UPDATE scores SET score = ?, username = COALESCE(NULLIF(NULLIF(?, ''), user_id), username)
		WHERE guild_id = ? AND user_id = ? AND puzzle_number = ?`,
		rec.Score, rec.DisplayName, rec.GuildID, rec.UserID, rec.PuzzleNumber)
	if err != nil {
		return false, unavailable("overwrite", err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		return false, unavailable("overwrite", err)
	}
	if n == 0 {
		name := rec.DisplayName
		if name == "" {
			name = rec.UserID
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO scores (guild_id, user_id, username, puzzle_number, score, timestamp)
			VALUES (?, ?, ?, ?, ?, ?)`,
			rec.GuildID, rec.UserID, name, rec.PuzzleNumber, rec.Score, formatTime(at)); err != nil {
			return false, unavailable("overwrite", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return false, unavailable("overwrite", err)
	}
	return n > 0, nil
}

// DeleteAll implements Store.
func (s *SQLiteStore) DeleteAll(ctx context.Context, guildID string) (n int64, err error) {
	defer observe("delete_all", time.Now(), &err)
	return s.execCount(ctx, "delete_all", `DELETE FROM scores WHERE guild_id = ?`, guildID)
}

// sameDay matches rows by one user on one UTC day. The outer table is "scores".
const sameDay = `s2.guild_id = scores.guild_id AND s2.user_id = scores.user_id
	AND substr(s2.timestamp, 1, 10) = substr(scores.timestamp, 1, 10)`

// Duplicates implements Store.
func (s *SQLiteStore) Duplicates(ctx context.Context, guildID string) (groups []DuplicateGroup, err error) {
	defer observe("duplicates", time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, selectColumns+`
		WHERE guild_id = ? AND EXISTS (
			SELECT 1 FROM scores s2 WHERE `+sameDay+` AND s2.id <> scores.id)
		ORDER BY user_id, timestamp, id`, guildID)
	if err != nil {
		return nil, unavailable("duplicates", err)
	}
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	for _, r := range recs {
		day := r.RecordedAt.UTC().Format(time.DateOnly)
		if n := len(groups); n > 0 && groups[n-1].UserID == r.UserID && groups[n-1].Day == day {
			groups[n-1].Records = append(groups[n-1].Records, r)
			continue
		}
		groups = append(groups, DuplicateGroup{UserID: r.UserID, Day: day, Records: []model.ScoreRecord{r}})
	}
	return groups, nil
}

// CleanDuplicates implements Store.
func (s *SQLiteStore) CleanDuplicates(ctx context.Context, guildID string) (n int64, err error) {
	defer observe("clean_duplicates", time.Now(), &err)
	return s.execCount(ctx, "clean_duplicates", `
		DELETE FROM scores WHERE guild_id = ? AND EXISTS (
			SELECT 1 FROM scores s2 WHERE `+sameDay+`
			AND (s2.timestamp < scores.timestamp OR (s2.timestamp = scores.timestamp AND s2.id < scores.id)))`,
		guildID)
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (n int64, err error) {
	defer observe("count", time.Now(), &err)
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scores`).Scan(&n); err != nil {
		return 0, unavailable("count", err)
	}
	return n, nil
}

func (s *SQLiteStore) execCount(ctx context.Context, op, q string, args ...any) (int64, error) {
	r, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, unavailable(op, err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		return 0, unavailable(op, err)
	}
	return n, nil
}

func scanRecords(rows *sql.Rows) ([]model.ScoreRecord, error) {
	defer func() { _ = rows.Close() }()

	var recs []model.ScoreRecord
	for rows.Next() {
		var (
			r  model.ScoreRecord
			ts string
		)
		if err := rows.Scan(&r.ID, &r.GuildID, &r.UserID, &r.DisplayName, &r.PuzzleNumber, &r.Score, &ts); err != nil {
			return nil, unavailable("scan", err)
		}
		at, err := time.Parse(timestampLayout, ts)
		if err != nil {
			return nil, unavailable("scan", fmt.Errorf("record %d timestamp %q: %w", r.ID, ts, err))
		}
		r.RecordedAt = at
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("scan", err)
	}
	return recs, nil
}

// validate rejects records the ranking could not interpret: scores must be
// 1..6 or the configured failure sentinel.
func (s *SQLiteStore) validate(rec model.ScoreRecord) error {
	switch {
	case strings.TrimSpace(rec.UserID) == "":
		return fmt.Errorf("%w: empty user id", ErrInvalidRecord)
	case rec.PuzzleNumber <= 0:
		return fmt.Errorf("%w: puzzle number %d", ErrInvalidRecord, rec.PuzzleNumber)
	case !scoring.Valid(rec.Score, s.failedScore):
		return fmt.Errorf("%w: score %d", ErrInvalidRecord, rec.Score)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// observe records latency for op and counts failures other than validation
// errors and ErrNotFound.
func observe(op string, start time.Time, err *error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
	if *err != nil && errors.Is(*err, ErrUnavailable) {
		metrics.RecordStoreError(op)
	}
}
