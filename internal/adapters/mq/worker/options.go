package worker

import (
	"sync/atomic"
	"time"
)

// Option configures an InMemoryWorker. Options given to NewPool apply to
// every worker in it.
type Option func(*InMemoryWorker)

// WithName names the worker in its log lines.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithProcessTimeout bounds each Process call. Zero leaves it unbounded.
func WithProcessTimeout(d time.Duration) Option {
	return func(w *InMemoryWorker) {
		if d >= 0 {
			w.timeout = d
		}
	}
}

func withActiveCounter(c *atomic.Int64) Option {
	return func(w *InMemoryWorker) {
		w.active = c
	}
}
