// Package service composes the parser, store, leaderboard engine and message
// pipeline into the operations used by the chat and HTTP adapters.
package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	messagequeue "github.com/okian/wordlebot/internal/adapters/mq/queue"
	workerpool "github.com/okian/wordlebot/internal/adapters/mq/worker"
	"github.com/okian/wordlebot/internal/adapters/repository"
	"github.com/okian/wordlebot/internal/domain/dedupe"
	"github.com/okian/wordlebot/internal/domain/leaderboard"
	"github.com/okian/wordlebot/internal/domain/model"
	"github.com/okian/wordlebot/internal/domain/parser"
	"github.com/okian/wordlebot/internal/domain/scoring"
	"github.com/okian/wordlebot/pkg/logger"
	"github.com/okian/wordlebot/pkg/metrics"
)

// Acknowledger signals the outcome of a recorded message back to its author.
// It is never called for messages without a Wordle result. OutcomeFailed
// means the store refused the result.
type Acknowledger interface {
	Acknowledge(ctx context.Context, m model.Message, outcome model.Outcome) error
}

const (
	// enqueueWait bounds how long Submit blocks the gateway on a full queue.
	enqueueWait = 50 * time.Millisecond
	// processTimeout bounds one queued message's trip through the store.
	processTimeout = 10 * time.Second
)

// Scope selects the leaderboard window.
type Scope string

// Supported scopes.
const (
	ScopeWeekly Scope = "weekly"
	ScopeAll    Scope = "all"
)

// ParseScope maps user input to a Scope. Anything unrecognized is weekly.
func ParseScope(s string) Scope {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "alltime", "all-time", "overall", "ever":
		return ScopeAll
	default:
		return ScopeWeekly
	}
}

// AdminScore is a manually entered result.
type AdminScore struct {
	GuildID      string
	UserID       string
	DisplayName  string
	PuzzleNumber int
	Score        int
	RecordedAt   time.Time // zero means now
}

// Service implements the core operations.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	parser  *parser.Parser
	deduper dedupe.Deduper
	queue   *messagequeue.InMemoryQueue
	pool    *workerpool.Pool
	ack     Acknowledger

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	dedupeTTL     time.Duration
	failedScore   int
	guildScoped   bool
	weekStartDay  time.Weekday
	weekStartHour int
	loc           *time.Location
	now           func() time.Time

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service over store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		workerCount:  runtime.NumCPU(),
		queueSize:    10_000,
		dedupeSize:   50_000,
		dedupeTTL:    6 * time.Hour,
		failedScore:  scoring.FailedScore,
		weekStartDay: time.Monday,
		loc:          time.UTC,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.parser = parser.New(parser.WithFailedScore(s.failedScore))
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
		dedupe.WithTTL(s.dedupeTTL),
		dedupe.WithClock(s.now),
	)
	return s
}

// Start launches the queue and worker pool. Workers run on a context owned by
// the service so that Stop can drain them after the caller's context ends.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.queue = messagequeue.NewInMemoryQueue(
		messagequeue.WithCapacity(s.queueSize),
		messagequeue.WithEnqueueWait(enqueueWait),
	)
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s, workerpool.WithProcessTimeout(processTimeout))

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "wordle service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Int("failed_score", s.failedScore),
		logger.Bool("guild_scoped", s.guildScoped),
	)
	return nil
}

// Stop closes the queue, waits for workers to drain it until ctx is done,
// and cancels whatever is left.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping wordle service...")
	err := s.pool.Shutdown(ctx)
	s.cancel()
	s.started = false

	if err != nil {
		s.logger.Warn(ctx, "worker drain incomplete", logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "wordle service stopped")
	return nil
}

// FailedScore returns the sentinel stored for X/6.
func (s *Service) FailedScore() int { return s.failedScore }

// Parse runs the configured parser on text.
func (s *Service) Parse(text string) (parser.Result, bool) {
	return s.parser.Parse(text)
}

// guild collapses guild IDs when scoping is disabled.
func (s *Service) guild(id string) string {
	if !s.guildScoped {
		return ""
	}
	return id
}

// Record parses m and stores its result. Messages without a Wordle result
// yield OutcomeNoMatch and never touch the store.
func (s *Service) Record(ctx context.Context, m model.Message) (model.Outcome, error) { //nolint:gocritic // hugeParam: Message is a value type
	res, ok := s.parser.Parse(m.Content)
	if !ok {
		metrics.RecordOutcome(model.OutcomeNoMatch.String())
		return model.OutcomeNoMatch, nil
	}

	rec := model.ScoreRecord{
		GuildID:      s.guild(m.GuildID),
		UserID:       m.AuthorID,
		DisplayName:  m.AuthorName,
		PuzzleNumber: res.PuzzleNumber,
		Score:        res.Score,
	}
	ins, err := s.store.Insert(ctx, rec)
	if err != nil {
		metrics.RecordErrorByComponent("service", "record")
		s.logger.Error(ctx, "failed to record score",
			logger.String("user_id", m.AuthorID),
			logger.Int("puzzle", res.PuzzleNumber),
			logger.Error(err),
		)
		metrics.RecordOutcome(model.OutcomeFailed.String())
		return model.OutcomeFailed, fmt.Errorf("record score: %w", err)
	}

	outcome := model.OutcomeInserted
	if ins == repository.Duplicate {
		outcome = model.OutcomeDuplicate
	}
	metrics.RecordOutcome(outcome.String())
	s.logger.Info(ctx, "wordle result",
		logger.String("outcome", outcome.String()),
		logger.String("user", m.AuthorName),
		logger.Int("puzzle", res.PuzzleNumber),
		logger.String("score", scoring.Label(res.Score, s.failedScore)),
	)
	return outcome, nil
}

// Process is the worker entry point: Record, then acknowledge.
func (s *Service) Process(ctx context.Context, m model.Message) error { //nolint:gocritic // hugeParam: Message is a value type
	metrics.RecordMessageProcessed()

	outcome, err := s.Record(ctx, m)
	if err != nil {
		// a redelivery of this message may succeed once the store is back
		if m.ID != "" {
			s.deduper.Unrecord(ctx, m.ID)
		}
		if s.ack != nil {
			if ackErr := s.ack.Acknowledge(ctx, m, model.OutcomeFailed); ackErr != nil {
				metrics.RecordErrorByComponent("service", "acknowledge")
				return fmt.Errorf("%w; acknowledge failure: %w", err, ackErr)
			}
		}
		return err
	}
	if outcome == model.OutcomeNoMatch || s.ack == nil {
		return nil
	}
	if err := s.ack.Acknowledge(ctx, m, outcome); err != nil {
		metrics.RecordErrorByComponent("service", "acknowledge")
		return fmt.Errorf("acknowledge %s: %w", outcome, err)
	}
	return nil
}

// Submit queues m for asynchronous processing. Redelivered message IDs are
// dropped and reported as accepted. Returns false on backpressure or when
// the service is not running; the ID is then forgotten so a retry can succeed.
func (s *Service) Submit(ctx context.Context, m model.Message) bool { //nolint:gocritic // hugeParam: Message is a value type
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return false
	}

	if m.ID != "" && s.deduper.SeenAndRecord(ctx, m.ID) {
		metrics.RecordMessageRedelivered()
		s.logger.Debug(ctx, "redelivered message dropped", logger.String("message_id", m.ID))
		return true
	}

	if !s.queue.Enqueue(ctx, m) {
		if m.ID != "" {
			s.deduper.Unrecord(ctx, m.ID)
		}
		s.logger.Warn(ctx, "message queue full", logger.String("message_id", m.ID))
		return false
	}
	metrics.RecordMessageReceived()
	return true
}

// Window returns the time window for scope at the current instant.
func (s *Service) Window(scope Scope) leaderboard.Window {
	if scope == ScopeAll {
		return leaderboard.AllTime()
	}
	return leaderboard.Weekly(s.now(), s.weekStartDay, s.weekStartHour, s.loc)
}

// Leaderboard ranks every user with results in scope.
func (s *Service) Leaderboard(ctx context.Context, guildID string, scope Scope) (leaderboard.Board, error) {
	recs, err := s.store.Query(ctx, s.guild(guildID), s.Window(scope))
	if err != nil {
		metrics.RecordErrorByComponent("service", "leaderboard")
		return leaderboard.Board{}, fmt.Errorf("leaderboard %s: %w", scope, err)
	}
	board := leaderboard.Rank(recs)
	metrics.RecordLeaderboardQuery(string(scope), len(board.Entries))
	return board, nil
}

// Stats returns a user's all-time summary. repository.ErrNotFound means no data.
func (s *Service) Stats(ctx context.Context, guildID, userID string) (repository.Stats, error) {
	st, err := s.store.StatsFor(ctx, s.guild(guildID), userID)
	if err != nil {
		return repository.Stats{}, fmt.Errorf("stats for %s: %w", userID, err)
	}
	return st, nil
}

func (s *Service) adminRecord(a AdminScore) (model.ScoreRecord, error) { //nolint:gocritic // hugeParam: AdminScore is a value type
	switch {
	case strings.TrimSpace(a.UserID) == "":
		return model.ScoreRecord{}, fmt.Errorf("%w: missing user", ErrInvalidInput)
	case a.PuzzleNumber <= 0:
		return model.ScoreRecord{}, fmt.Errorf("%w: puzzle number must be positive", ErrInvalidInput)
	case !scoring.Valid(a.Score, s.failedScore):
		return model.ScoreRecord{}, fmt.Errorf("%w: score %d", ErrInvalidInput, a.Score)
	case !a.RecordedAt.IsZero() && a.RecordedAt.After(s.now()):
		return model.ScoreRecord{}, fmt.Errorf("%w: date is in the future", ErrInvalidInput)
	}
	name := a.DisplayName
	if name == "" {
		name = a.UserID
	}
	return model.ScoreRecord{
		GuildID:      s.guild(a.GuildID),
		UserID:       a.UserID,
		DisplayName:  name,
		PuzzleNumber: a.PuzzleNumber,
		Score:        a.Score,
		RecordedAt:   a.RecordedAt,
	}, nil
}

// AddScore inserts a manual result with the same duplicate rule as chat submissions.
func (s *Service) AddScore(ctx context.Context, a AdminScore) (model.Outcome, error) { //nolint:gocritic // hugeParam: AdminScore is a value type
	rec, err := s.adminRecord(a)
	if err != nil {
		return model.OutcomeNoMatch, err
	}
	res, err := s.store.Insert(ctx, rec)
	if err != nil {
		return model.OutcomeNoMatch, fmt.Errorf("add score: %w", err)
	}
	s.logger.Info(ctx, "manual score added",
		logger.String("user_id", rec.UserID),
		logger.Int("puzzle", rec.PuzzleNumber),
		logger.String("result", res.String()),
	)
	if res == repository.Duplicate {
		return model.OutcomeDuplicate, nil
	}
	return model.OutcomeInserted, nil
}

// OverwriteScore replaces or creates a result. replaced is false when nothing existed.
func (s *Service) OverwriteScore(ctx context.Context, a AdminScore) (replaced bool, err error) { //nolint:gocritic // hugeParam: AdminScore is a value type
	rec, err := s.adminRecord(a)
	if err != nil {
		return false, err
	}
	replaced, err = s.store.Overwrite(ctx, rec)
	if err != nil {
		return false, fmt.Errorf("overwrite score: %w", err)
	}
	s.logger.Info(ctx, "score overwritten",
		logger.String("user_id", rec.UserID),
		logger.Int("puzzle", rec.PuzzleNumber),
		logger.Bool("replaced", replaced),
	)
	return replaced, nil
}

// Duplicates lists same-day submission groups.
func (s *Service) Duplicates(ctx context.Context, guildID string) ([]repository.DuplicateGroup, error) {
	groups, err := s.store.Duplicates(ctx, s.guild(guildID))
	if err != nil {
		return nil, fmt.Errorf("duplicates: %w", err)
	}
	return groups, nil
}

// CleanDuplicates removes all but the earliest record of each same-day group.
func (s *Service) CleanDuplicates(ctx context.Context, guildID string) (int64, error) {
	n, err := s.store.CleanDuplicates(ctx, s.guild(guildID))
	if err != nil {
		return 0, fmt.Errorf("clean duplicates: %w", err)
	}
	s.logger.Info(ctx, "duplicates cleaned", logger.Int64("deleted", n))
	return n, nil
}

// Reset deletes every score of the guild.
func (s *Service) Reset(ctx context.Context, guildID string) (int64, error) {
	n, err := s.store.DeleteAll(ctx, s.guild(guildID))
	if err != nil {
		return 0, fmt.Errorf("reset: %w", err)
	}
	s.logger.Warn(ctx, "leaderboard reset", logger.Int64("deleted", n))
	return n, nil
}

// Records returns every raw record of the guild in scope, for export.
func (s *Service) Records(ctx context.Context, guildID string, scope Scope) ([]model.ScoreRecord, error) {
	recs, err := s.store.Query(ctx, s.guild(guildID), s.Window(scope))
	if err != nil {
		return nil, fmt.Errorf("records: %w", err)
	}
	return recs, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"dedupeSize":   s.dedupeSize,
		"failedScore":  s.failedScore,
		"guildScoped":  s.guildScoped,
		"dedupeLength": s.deduper.Size(),
	}
	metrics.UpdateDedupeSize(s.deduper.Size())

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
	}
	if n, err := s.store.Count(ctx); err == nil {
		stats["totalScores"] = n
		metrics.UpdateScoresTotal(n)
	} else {
		s.logger.Warn(ctx, "count scores failed", logger.Error(err))
	}
	return stats
}
