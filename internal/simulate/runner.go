package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/wordlebot/internal/domain/leaderboard"
	"github.com/okian/wordlebot/internal/domain/scoring"
	"github.com/okian/wordlebot/pkg/logger"
)

// Normalize fills unset fields with defaults. An empty guild gets a fresh
// UUID so runs against a guild-scoped server do not see each other.
func (c *Config) Normalize() {
	if c.Users <= 0 {
		c.Users = DefaultUsers
	}
	if c.Puzzles <= 0 {
		c.Puzzles = DefaultPuzzles
	}
	if c.FirstPuzzle <= 0 {
		c.FirstPuzzle = DefaultFirstPuzzle
	}
	if c.FailedScore == 0 {
		c.FailedScore = scoring.FailedScore
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.SettleTimeout <= 0 {
		c.SettleTimeout = DefaultSettleTimeout
	}
	if c.TopN <= 0 {
		c.TopN = DefaultTopN
	}
	if c.GuildID == "" {
		c.GuildID = "sim-" + uuid.NewString()
	}
}

// Run executes a complete simulation: health check, generation, submission,
// then leaderboard verification.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	cfg.Normalize()
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("simulate")

	log.Info(ctx, "starting simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("guild", cfg.GuildID),
		logger.Int("users", cfg.Users),
		logger.Int("puzzles", cfg.Puzzles),
		logger.Int("workers", cfg.Workers),
		logger.Bool("async", cfg.Async))

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	subs, err := Generate(ctx, cfg)
	if err != nil {
		return stats, fmt.Errorf("message generation failed: %w", err)
	}
	stats.Generated = len(subs)

	// Resubmissions go in a second pass so they always follow the original.
	split := len(subs)
	for i, s := range subs {
		if s.Want == WantDuplicate {
			split = i
			break
		}
	}
	submit(ctx, client, cfg, subs[:split], stats)
	submit(ctx, client, cfg, subs[split:], stats)
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("submission cancelled: %w", err)
	}

	expected := Expected(subs)
	compared, err := settle(ctx, client, cfg, expected)
	stats.Compared = compared

	if cfg.OutputFile != "" {
		if serr := saveSubmissions(cfg.OutputFile, subs); serr != nil {
			log.Warn(ctx, "failed to save messages", logger.Error(serr))
		} else {
			log.Info(ctx, "messages saved", logger.String("file", cfg.OutputFile))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}
	if stats.Unexpected > 0 || stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d unexpected outcomes, %d failed requests", ErrMismatch, stats.Unexpected, stats.Failed)
	}
	log.Info(ctx, "simulation completed successfully")
	return stats, nil
}

// submit posts subs concurrently and folds the outcomes into stats.
func submit(ctx context.Context, client *Client, cfg *Config, subs []Submission, stats *Stats) {
	if len(subs) == 0 {
		return
	}
	log := logger.Get().Named("simulate")

	var inserted, duplicate, noMatch, accepted, failed, unexpected, submitted int64

	ch := make(chan Submission, cfg.Workers*2)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range ch {
				outcome, err := client.Post(ctx, s.Request, cfg.Async)
				atomic.AddInt64(&submitted, 1)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						log.Warn(ctx, "submit failed", logger.String("messageID", s.Request.MessageID), logger.Error(err))
					}
					continue
				}
				switch outcome {
				case WantInserted:
					atomic.AddInt64(&inserted, 1)
				case WantDuplicate:
					atomic.AddInt64(&duplicate, 1)
				case WantNoMatch:
					atomic.AddInt64(&noMatch, 1)
				case "accepted":
					atomic.AddInt64(&accepted, 1)
					continue
				}
				if outcome != s.Want {
					atomic.AddInt64(&unexpected, 1)
					log.Warn(ctx, "unexpected outcome",
						logger.String("messageID", s.Request.MessageID),
						logger.String("want", s.Want),
						logger.String("got", outcome))
				}
			}
		}()
	}

	func() {
		defer close(ch)
		for _, s := range subs {
			select {
			case <-ctx.Done():
				return
			case ch <- s:
			}
		}
	}()
	wg.Wait()

	stats.Submitted += int(submitted)
	stats.Inserted += int(inserted)
	stats.Duplicate += int(duplicate)
	stats.NoMatch += int(noMatch)
	stats.Accepted += int(accepted)
	stats.Failed += int(failed)
	stats.Unexpected += int(unexpected)

	log.Info(ctx, "submission pass completed",
		logger.Int("submitted", int(submitted)),
		logger.Int("failed", int(failed)))
}

// settle fetches and verifies the leaderboard. Async submissions are
// processed in the background, so a mismatch is retried until SettleTimeout.
func settle(ctx context.Context, client *Client, cfg *Config, expected leaderboard.Board) (int, error) {
	log := logger.Get().Named("simulate")
	deadline := time.Now().Add(cfg.SettleTimeout)
	for {
		lb, err := client.Leaderboard(ctx, cfg.GuildID, cfg.TopN)
		if err != nil {
			return 0, fmt.Errorf("leaderboard retrieval failed: %w", err)
		}
		n, verr := Verify(expected, lb.Entries)
		if verr == nil {
			displayTop(ctx, lb.Entries, 3)
			log.Info(ctx, "leaderboard verified", logger.Int("entries", n))
			return n, nil
		}
		if !cfg.Async || !errors.Is(verr, ErrMismatch) || time.Now().After(deadline) {
			return n, verr
		}
		select {
		case <-ctx.Done():
			return n, fmt.Errorf("waiting for processing: %w", ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

// saveSubmissions writes the generated messages as a JSON array.
func saveSubmissions(filename string, subs []Submission) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}
	if err := os.WriteFile(filename, data, logFilePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, perSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Submitted-stats.Failed) / float64(stats.Submitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("inserted", stats.Inserted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("noMatch", stats.NoMatch),
		logger.Int("accepted", stats.Accepted),
		logger.Int("failed", stats.Failed),
		logger.Int("unexpected", stats.Unexpected),
		logger.Int("compared", stats.Compared),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("messagesPerSecond", perSecond))
}
