package queue_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/wordlebot/internal/adapters/mq/queue"
	"github.com/okian/wordlebot/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func msg(id string) model.Message {
	return model.Message{ID: id, AuthorID: "u1", Content: "Wordle 1 3/6", ReceivedAt: time.Now()}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	Convey("Given a new queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))

		Convey("When enqueuing and dequeuing one message", func() {
			ok := q.Enqueue(ctx, msg("m1"))
			So(q.Len(ctx), ShouldEqual, 1)

			dctx, cancel := context.WithCancel(ctx)
			defer cancel()
			got := <-q.Dequeue(dctx)

			Convey("Then the same message should come out", func() {
				So(ok, ShouldBeTrue)
				So(got.ID, ShouldEqual, "m1")
				So(q.Capacity(), ShouldEqual, 4)
			})
		})
	})
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	Convey("Given a queue with capacity two", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))

		Convey("When enqueuing three messages", func() {
			r1 := q.Enqueue(ctx, msg("m1"))
			r2 := q.Enqueue(ctx, msg("m2"))
			r3 := q.Enqueue(ctx, msg("m3"))

			Convey("Then the third should be rejected by backpressure", func() {
				So(r1, ShouldBeTrue)
				So(r2, ShouldBeTrue)
				So(r3, ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then enqueue should fail", func() {
				So(q.Enqueue(cctx, msg("m1")), ShouldBeFalse)
			})
		})
	})
}

func TestInMemoryQueue_EnqueueWait(t *testing.T) {
	Convey("Given a full queue that waits for space", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(1), queue.WithEnqueueWait(time.Second))
		So(q.Enqueue(ctx, msg("m1")), ShouldBeTrue)

		Convey("When a consumer frees a slot during the wait", func() {
			dctx, cancel := context.WithCancel(ctx)
			defer cancel()
			out := q.Dequeue(dctx)
			go func() {
				time.Sleep(20 * time.Millisecond)
				<-out
			}()

			Convey("Then the enqueue succeeds", func() {
				So(q.Enqueue(ctx, msg("m2")), ShouldBeTrue)
			})
		})

		Convey("When the caller gives up first", func() {
			cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()

			Convey("Then the enqueue fails without waiting out the full second", func() {
				start := time.Now()
				So(q.Enqueue(cctx, msg("m2")), ShouldBeFalse)
				So(time.Since(start), ShouldBeLessThan, 500*time.Millisecond)
			})
		})
	})
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	Convey("Given concurrent producers and one consumer", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue(queue.WithCapacity(1000))

		var wg sync.WaitGroup
		for p := 0; p < 4; p++ {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					q.Enqueue(ctx, msg(fmt.Sprintf("p%d-%d", p, i)))
				}
			}(p)
		}
		wg.Wait()
		_ = q.Close()

		seen := map[string]bool{}
		for m := range q.Dequeue(ctx) {
			seen[m.ID] = true
		}

		Convey("Then every message should be delivered once", func() {
			So(len(seen), ShouldEqual, 400)
		})
	})
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	Convey("Given a queue holding messages", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		q.Enqueue(ctx, msg("m1"))
		q.Enqueue(ctx, msg("m2"))

		Convey("When the queue is closed", func() {
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then new messages are rejected but queued ones drain", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, msg("m3")), ShouldBeFalse)

				var ids []string
				for m := range q.Dequeue(ctx) {
					ids = append(ids, m.ID)
				}
				So(ids, ShouldResemble, []string{"m1", "m2"})
			})
		})
	})
}
