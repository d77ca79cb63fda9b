package queue

import "time"

// Option configures an InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets how many messages may wait for a worker.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithEnqueueWait lets Enqueue wait up to d for a free slot before reporting
// the queue as full. Zero keeps Enqueue non-blocking.
func WithEnqueueWait(d time.Duration) Option {
	return func(q *InMemoryQueue) {
		if d >= 0 {
			q.wait = d
		}
	}
}
