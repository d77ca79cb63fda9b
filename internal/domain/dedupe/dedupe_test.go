package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	dedupe "github.com/okian/wordlebot/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording messages", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the message is new", func() {
				seen := d.SeenAndRecord(ctx, "msg-1")

				Convey("Then it should return false and record it", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the message was redelivered", func() {
				d.SeenAndRecord(ctx, "msg-1")
				seen := d.SeenAndRecord(ctx, "msg-1")

				Convey("Then it should return true without growing", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})
		})

		Convey("When unrecording messages", func() {
			d := dedupe.NewInMemoryDeduper()
			d.SeenAndRecord(ctx, "msg-1")

			Convey("And the message exists", func() {
				d.Unrecord(ctx, "msg-1")

				Convey("Then it can be recorded again", func() {
					So(d.Size(), ShouldEqual, 0)
					So(d.SeenAndRecord(ctx, "msg-1"), ShouldBeFalse)
				})
			})

			Convey("And the message does not exist", func() {
				d.Unrecord(ctx, "missing")

				Convey("Then the size should not change", func() {
					So(d.Size(), ShouldEqual, 1)
				})
			})
		})

		Convey("When using bounded mode at capacity", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for _, id := range []string{"a", "b", "c"} {
				d.SeenAndRecord(ctx, id)
			}
			d.SeenAndRecord(ctx, "d")

			Convey("Then the oldest ID should be evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "d"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			})
		})

		Convey("When an unrecorded ID frees a slot in bounded mode", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
			d.SeenAndRecord(ctx, "a")
			d.SeenAndRecord(ctx, "b")
			d.Unrecord(ctx, "a")
			d.SeenAndRecord(ctx, "c")

			Convey("Then nothing else should be evicted", func() {
				So(d.Size(), ShouldEqual, 2)
				So(d.SeenAndRecord(ctx, "b"), ShouldBeTrue)
			})
		})

		Convey("When IDs outlive the TTL", func() {
			now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
			d := dedupe.NewInMemoryDeduper(
				dedupe.WithTTL(10*time.Minute),
				dedupe.WithClock(func() time.Time { return now }),
			)
			d.SeenAndRecord(ctx, "old")
			now = now.Add(6 * time.Minute)
			d.SeenAndRecord(ctx, "recent")
			now = now.Add(5 * time.Minute)

			Convey("Then only the expired ID is forgotten", func() {
				So(d.SeenAndRecord(ctx, "recent"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "old"), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 2)
			})
		})

		Convey("When using unbounded mode", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			for i := 0; i < 1000; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("msg-%d", i))
			}

			Convey("Then all IDs should be kept", func() {
				So(d.Size(), ShouldEqual, 1000)
				So(d.SeenAndRecord(ctx, "msg-0"), ShouldBeTrue)
				d.Unrecord(ctx, "msg-0")
				So(d.Size(), ShouldEqual, 999)
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper with concurrent access", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(10000))
		ctx := context.Background()

		Convey("When many goroutines race on the same IDs", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			fresh := 0
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < 100; i++ {
						if !d.SeenAndRecord(ctx, fmt.Sprintf("msg-%d", i)) {
							mu.Lock()
							fresh++
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then each ID should be newly recorded exactly once", func() {
				So(fresh, ShouldEqual, 100)
				So(d.Size(), ShouldEqual, 100)
			})
		})
	})
}
