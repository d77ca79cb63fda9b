package service

import (
	"time"

	"github.com/okian/wordlebot/internal/domain/scoring"
	"github.com/okian/wordlebot/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of message workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued messages.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the message-ID deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithDedupeTTL sets how long accepted message IDs are remembered.
func WithDedupeTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.dedupeTTL = ttl
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFailedScore selects the value stored for X/6. Unsupported values are ignored.
func WithFailedScore(failed int) Option {
	return func(s *Service) {
		if scoring.ValidSentinel(failed) {
			s.failedScore = failed
		}
	}
}

// WithGuildScoped keys scores by guild. When disabled every guild shares one board.
func WithGuildScoped(scoped bool) Option {
	return func(s *Service) {
		s.guildScoped = scoped
	}
}

// WithWeekStart sets the weekday and hour at which the weekly board resets.
func WithWeekStart(day time.Weekday, hour int) Option {
	return func(s *Service) {
		if hour >= 0 && hour <= 23 {
			s.weekStartDay = day
			s.weekStartHour = hour
		}
	}
}

// WithLocation sets the time zone used for week boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock sets the time source for window computation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAcknowledger sets who is told about inserted and duplicate results.
func WithAcknowledger(a Acknowledger) Option {
	return func(s *Service) {
		s.ack = a
	}
}
