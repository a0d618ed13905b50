// Package worker regrades rostered players from queued jobs.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/rostr/internal/adapters/repository"
	"github.com/okian/rostr/internal/domain/grading"
	"github.com/okian/rostr/internal/domain/model"
	"github.com/okian/rostr/pkg/logger"
	"github.com/okian/rostr/pkg/metrics"
)

const (
	poolShutdownTimeout = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = model.RegradeJob

// Store is the persistence a worker needs.
type Store interface {
	Player(ctx context.Context, playerID string) (model.Player, error)
	PitcherSeason(ctx context.Context, idfg string, season int) (model.PitcherSeason, error)
	PitcherSeasonByName(ctx context.Context, name string, season int) (model.PitcherSeason, error)
	UpdatePlayerGrade(ctx context.Context, playerID string, grade float64, analysis string) error
}

// Releaser is told when a player's job is finished so it can be queued again.
type Releaser interface {
	Unrecord(ctx context.Context, id string)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// ErrNoStats means the catalog has no line for the player's season.
var ErrNoStats = errors.New("no stats found")

type nopReleaser struct{}

func (nopReleaser) Unrecord(context.Context, string) {}

// InMemoryWorker consumes jobs and writes new grades.
type InMemoryWorker struct {
	queue       Queue
	store       Store
	releaser    Releaser
	onProcessed func(Job, error)
	active      *atomic.Int64
	name        string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(q Queue, store Store, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		store:    store,
		releaser: nopReleaser{},
		active:   &atomic.Int64{},
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("regrade")
	}
	w.logger = w.logger.With(logger.String("worker", w.name))
	return w
}

// Run processes jobs until ctx is done, Shutdown is called or the queue closes.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			err := w.process(ctx, j)
			if err != nil {
				w.logger.Error(ctx, "regrade failed",
					logger.String("job_id", j.JobID),
					logger.String("player_id", j.PlayerID),
					logger.Error(err))
			}
			if w.onProcessed != nil {
				w.onProcessed(j, err)
			}
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, j Job) error {
	start := time.Now()
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000.0)
		w.releaser.Unrecord(ctx, j.PlayerID)
	}()

	p, err := w.store.Player(ctx, j.PlayerID)
	if errors.Is(err, repository.ErrNotFound) {
		// Removed from the roster after the job was queued.
		w.logger.Debug(ctx, "player gone, skipping regrade", logger.String("player_id", j.PlayerID))
		return nil
	}
	if err != nil {
		return w.fail("load_player", fmt.Errorf("load player %s: %w", j.PlayerID, err))
	}

	season := j.Season
	if season == 0 {
		season = p.Season
	}
	line, err := w.lookup(ctx, p, season)
	if err != nil {
		return w.fail("no_stats", err)
	}

	gradeStart := time.Now()
	report := grading.Evaluate(p.Name, line.GradingStats())
	metrics.RecordGrade(report.Tier.String(), float64(time.Since(gradeStart).Microseconds())/1000.0)

	if err := w.store.UpdatePlayerGrade(ctx, p.ID, report.Grade, report.Analysis.String()); err != nil {
		return w.fail("update_grade", fmt.Errorf("store grade for %s: %w", p.ID, err))
	}
	metrics.RecordRegradeCompleted()
	w.logger.Debug(ctx, "player regraded",
		logger.String("player_id", p.ID),
		logger.Float64("grade", report.Grade),
		logger.String("tier", report.Tier.String()))
	return nil
}

func (w *InMemoryWorker) lookup(ctx context.Context, p model.Player, season int) (model.PitcherSeason, error) {
	if p.IDFG != "" {
		line, err := w.store.PitcherSeason(ctx, p.IDFG, season)
		if err == nil {
			return line, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return model.PitcherSeason{}, err
		}
	}
	line, err := w.store.PitcherSeasonByName(ctx, p.Name, season)
	if errors.Is(err, repository.ErrNotFound) {
		return model.PitcherSeason{}, fmt.Errorf("%w for %s in %d", ErrNoStats, p.Name, season)
	}
	return line, err
}

func (w *InMemoryWorker) fail(kind string, err error) error {
	metrics.RecordWorkerError()
	metrics.RecordErrorByComponent("worker", kind)
	return err
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers. workerCount < 1 uses runtime.NumCPU().
// opts apply to every worker.
func NewPool(workerCount int, q Queue, store Store, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("regrade-pool"),
	}
	active := &atomic.Int64{}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(q, store, wopts...)
		w.active = active
		pool.workers[i] = w
	}
	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue (when it can be closed) and waits for workers.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
