package chat

import (
	"time"

	"github.com/okian/wordlebot/pkg/logger"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPrefix sets the command prefix.
func WithPrefix(prefix string) Option {
	return func(d *Dispatcher) {
		if prefix != "" {
			d.prefix = prefix
		}
	}
}

// WithOwner sets the user allowed to run admin commands.
func WithOwner(userID string) Option {
	return func(d *Dispatcher) {
		d.ownerID = userID
	}
}

// WithGate restricts the public leaderboard command.
func WithGate(g Gate) Option {
	return func(d *Dispatcher) {
		d.gate = g
	}
}

// WithLimit sets how many entries a rendered board shows.
func WithLimit(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.limit = n
		}
	}
}

// WithLogSink enables the logs command.
func WithLogSink(s *LogSink) Option {
	return func(d *Dispatcher) {
		d.logs = s
	}
}

// WithLocation sets the zone for dates shown to and read from users.
func WithLocation(loc *time.Location) Option {
	return func(d *Dispatcher) {
		if loc != nil {
			d.loc = loc
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}
