// Package queue buffers inbound chat messages between the gateway and the workers.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/wordlebot/internal/domain/model"
	"github.com/okian/wordlebot/pkg/metrics"
)

const defaultQueueCapacity = 10_000

// Message is the payload flowing through the queue.
type Message = model.Message

// Queue provides bounded enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a message. Returns false if the queue stays full for the
	// configured wait, is closed, or ctx is done.
	Enqueue(ctx context.Context, m Message) bool

	// Dequeue returns a channel that yields messages until the queue is
	// closed and drained, or ctx is done.
	Dequeue(ctx context.Context) <-chan Message

	// Len returns the number of queued messages.
	Len(ctx context.Context) int

	// Close stops accepting messages. Queued messages can still be dequeued.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	messages chan Message
	capacity int
	wait     time.Duration
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.messages = make(chan Message, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	q.updateMetrics()
	return q
}

// Enqueue implements Queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, m Message) bool { //nolint:gocritic // hugeParam: Message is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	}

	select {
	case q.messages <- m:
		metrics.RecordQueueEnqueue()
		q.updateMetrics()
		return true
	default:
	}

	if q.wait > 0 {
		timer := time.NewTimer(q.wait)
		defer timer.Stop()
		select {
		case q.messages <- m:
			metrics.RecordQueueEnqueue()
			q.updateMetrics()
			return true
		case <-ctx.Done():
			metrics.RecordQueueEnqueueError()
			metrics.RecordErrorByComponent("queue", "context_cancelled")
			return false
		case <-timer.C:
		}
	}
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", "queue_full")
	return false
}

// Dequeue implements Queue.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Message {
	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-q.messages:
				if !ok {
					return
				}
				metrics.RecordQueueDequeue()
				q.updateMetrics()
				select {
				case out <- m:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len implements Queue.
func (q *InMemoryQueue) Len(_ context.Context) int {
	q.updateMetrics()
	return len(q.messages)
}

// Capacity returns the maximum number of queued messages.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Close implements Queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.messages)
	q.closed = true
	return nil
}

// IsClosed implements Queue.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) updateMetrics() {
	size := len(q.messages)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) * 100 / float64(q.capacity))
}
