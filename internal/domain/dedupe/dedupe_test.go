package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/rostr/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("Then it starts empty", func() {
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When a player is queued for regrade", func() {
			seen := d.SeenAndRecord(ctx, "player-1")

			Convey("Then it is recorded as pending", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And queueing it again is reported as a duplicate", func() {
				So(d.SeenAndRecord(ctx, "player-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And once released it can be queued again", func() {
				d.Unrecord(ctx, "player-1")
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "player-1"), ShouldBeFalse)
			})
		})

		Convey("When releasing an unknown id", func() {
			d.Unrecord(ctx, "missing")

			Convey("Then nothing changes", func() {
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a bounded deduper at capacity", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for _, id := range []string{"p1", "p2", "p3"} {
			So(d.SeenAndRecord(ctx, id), ShouldBeFalse)
		}

		Convey("When another id arrives", func() {
			So(d.SeenAndRecord(ctx, "p4"), ShouldBeFalse)

			Convey("Then the oldest pending id is dropped", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "p3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "p4"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "p1"), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 3)
			})
		})

		Convey("When a middle id is released first", func() {
			d.Unrecord(ctx, "p2")
			So(d.SeenAndRecord(ctx, "p4"), ShouldBeFalse)

			Convey("Then there was room and nothing was dropped", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "p1"), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		const n = 1000
		for i := 0; i < n; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("p-%d", i))
		}

		Convey("Then every id stays pending", func() {
			So(d.Size(), ShouldEqual, int64(n))
			So(d.SeenAndRecord(ctx, "p-0"), ShouldBeTrue)
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	ctx := context.Background()

	Convey("Given concurrent producers and workers", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		const goroutines = 10
		const perGoroutine = 100

		var wg sync.WaitGroup
		for g := 0; g < goroutines; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for j := 0; j < perGoroutine; j++ {
					d.SeenAndRecord(ctx, fmt.Sprintf("p-%d-%d", g, j))
				}
			}(g)
		}
		wg.Wait()

		Convey("Then every id is recorded once", func() {
			So(d.Size(), ShouldEqual, int64(goroutines*perGoroutine))
		})

		Convey("When all are released concurrently", func() {
			for g := 0; g < goroutines; g++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for j := 0; j < perGoroutine; j++ {
						d.Unrecord(ctx, fmt.Sprintf("p-%d-%d", g, j))
					}
				}(g)
			}
			wg.Wait()

			Convey("Then the deduper is empty", func() {
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})
}
