package worker_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"

	"github.com/okian/rostr/internal/adapters/mq/queue"
	"github.com/okian/rostr/internal/adapters/mq/worker"
	"github.com/okian/rostr/internal/adapters/repository"
	"github.com/okian/rostr/internal/domain/dedupe"
	"github.com/okian/rostr/internal/domain/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeStore struct {
	mu        sync.Mutex
	players   map[string]model.Player
	catalog   map[string]model.PitcherSeason // idfg/season
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		players: map[string]model.Player{},
		catalog: map[string]model.PitcherSeason{},
	}
}

func (f *fakeStore) addLine(idfg, name string, season int, kPct, ip, era float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalog[fmt.Sprintf("%s/%d", idfg, season)] = model.PitcherSeason{
		IDFG: idfg, Name: name, Season: season, KPct: kPct, Innings: ip, ERA: era,
	}
}

func (f *fakeStore) addPlayer(p model.Player) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.players[p.ID] = p
}

func (f *fakeStore) player(id string) model.Player {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.players[id]
}

func (f *fakeStore) Player(_ context.Context, id string) (model.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[id]
	if !ok {
		return model.Player{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) PitcherSeason(_ context.Context, idfg string, season int) (model.PitcherSeason, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	line, ok := f.catalog[fmt.Sprintf("%s/%d", idfg, season)]
	if !ok {
		return model.PitcherSeason{}, repository.ErrNotFound
	}
	return line, nil
}

func (f *fakeStore) PitcherSeasonByName(_ context.Context, name string, season int) (model.PitcherSeason, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, line := range f.catalog {
		if strings.EqualFold(line.Name, name) && line.Season == season {
			return line, nil
		}
	}
	return model.PitcherSeason{}, repository.ErrNotFound
}

func (f *fakeStore) UpdatePlayerGrade(_ context.Context, id string, grade float64, analysis string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	p := f.players[id]
	p.Grade, p.Analysis = grade, analysis
	f.players[id] = p
	return nil
}

type result struct {
	job worker.Job
	err error
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker over a queue and a catalog", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store := newFakeStore()
		store.addLine("13125", "Gerrit Cole", 2024, 28.5, 180, 3.25)
		store.addLine("15423", "Logan Webb", 2024, 18, 90, 5.5)
		store.addPlayer(model.Player{ID: "p1", Name: "Gerrit Cole", IDFG: "13125", Season: 2024})
		store.addPlayer(model.Player{ID: "p2", Name: "logan webb", Season: 2024})
		store.addPlayer(model.Player{ID: "p3", Name: "Nobody", Season: 2024})

		pending := dedupe.NewInMemoryDeduper()
		results := make(chan result, 10)
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		w := worker.NewInMemoryWorker(q, store,
			worker.WithName("test"),
			worker.WithReleaser(pending),
			worker.WithOnProcessed(func(j worker.Job, err error) { results <- result{j, err} }))
		go w.Run(ctx)

		enqueue := func(playerID string) {
			pending.SeenAndRecord(ctx, playerID)
			convey.So(q.Enqueue(ctx, worker.Job{JobID: "j-" + playerID, PlayerID: playerID}), convey.ShouldBeNil)
		}
		next := func() result {
			select {
			case r := <-results:
				return r
			case <-time.After(2 * time.Second):
				t.Fatal("job not processed")
				return result{}
			}
		}

		convey.Convey("When a player with an idfg is regraded", func() {
			enqueue("p1")
			r := next()

			convey.Convey("Then the grade and analysis are stored", func() {
				convey.So(r.err, convey.ShouldBeNil)
				p := store.player("p1")
				convey.So(p.Grade, convey.ShouldEqual, 64.25)
				convey.So(p.Analysis, convey.ShouldStartWith, "Solid Tier:\n")
			})

			convey.Convey("And the player is released for another regrade", func() {
				convey.So(pending.Size(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When a player is matched by name", func() {
			enqueue("p2")
			r := next()

			convey.Convey("Then the catalog line is found case-insensitively", func() {
				convey.So(r.err, convey.ShouldBeNil)
				convey.So(store.player("p2").Grade, convey.ShouldEqual, -1.0)
			})
		})

		convey.Convey("When the catalog has no line", func() {
			enqueue("p3")
			r := next()

			convey.Convey("Then the job fails with ErrNoStats and is still released", func() {
				convey.So(errors.Is(r.err, worker.ErrNoStats), convey.ShouldBeTrue)
				convey.So(pending.Size(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the player was removed", func() {
			enqueue("gone")
			r := next()

			convey.Convey("Then the job is skipped without error", func() {
				convey.So(r.err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When storing fails", func() {
			store.mu.Lock()
			store.updateErr = errors.New("disk full")
			store.mu.Unlock()
			enqueue("p1")
			r := next()

			convey.Convey("Then the error is reported", func() {
				convey.So(r.err, convey.ShouldNotBeNil)
				convey.So(r.err.Error(), convey.ShouldContainSubstring, "disk full")
			})
		})

		convey.Convey("When shutting down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()

			convey.Convey("Then the worker stops", func() {
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store := newFakeStore()
		const players = 40
		for i := 0; i < players; i++ {
			id := fmt.Sprintf("p%d", i)
			store.addLine(id, "Pitcher "+id, 2024, 20+float64(i%10), 150, 3.5)
			store.addPlayer(model.Player{ID: id, Name: "Pitcher " + id, IDFG: id, Season: 2024})
		}

		var wg sync.WaitGroup
		wg.Add(players)
		q := queue.NewInMemoryQueue(queue.WithCapacity(players))
		pool := worker.NewPool(4, q, store, worker.WithOnProcessed(func(worker.Job, error) { wg.Done() }))
		convey.So(pool.Size(), convey.ShouldEqual, 4)
		pool.Start(ctx)

		convey.Convey("When many jobs are queued", func() {
			for i := 0; i < players; i++ {
				convey.So(q.Enqueue(ctx, worker.Job{PlayerID: fmt.Sprintf("p%d", i), Season: 2024}), convey.ShouldBeNil)
			}
			wg.Wait()

			convey.Convey("Then every player is graded", func() {
				for i := 0; i < players; i++ {
					convey.So(store.player(fmt.Sprintf("p%d", i)).Analysis, convey.ShouldNotBeEmpty)
				}
			})

			convey.Convey("And the pool shuts down cleanly", func() {
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})
}
