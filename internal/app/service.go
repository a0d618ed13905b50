// Package service implements the roster operations behind the HTTP API:
// accounts, teams, grading views, catalog search, trades, recommendations
// and the asynchronous regrade pipeline.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/okian/rostr/internal/adapters/mq/queue"
	"github.com/okian/rostr/internal/adapters/mq/worker"
	"github.com/okian/rostr/internal/adapters/repository"
	"github.com/okian/rostr/internal/auth"
	"github.com/okian/rostr/internal/domain/dedupe"
	"github.com/okian/rostr/internal/domain/recommend"
	"github.com/okian/rostr/internal/domain/trade"
	"github.com/okian/rostr/pkg/logger"
	"github.com/okian/rostr/pkg/metrics"
)

const (
	defaultSeason        = 2024
	defaultMaxRosterSize = 10
	defaultLineupSize    = 5
	metricsInterval      = 15 * time.Second
)

// Service implements the API dependencies for the roster system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       repository.Store
	auth        *auth.Service
	pending     dedupe.Deduper
	queue       *queue.InMemoryQueue
	pool        *worker.Pool
	recommender *recommend.Recommender

	// Configuration
	workerCount   int
	queueSize     int
	pendingSize   int
	season        int
	maxRosterSize int
	lineupSize    int
	evenMargin    float64

	// State
	started bool
	stopCh  chan struct{}
	loopWG  sync.WaitGroup

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of regrade workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the regrade queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithPendingSize caps how many pending player ids are remembered.
func WithPendingSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pendingSize = size
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

// WithSeason sets the season used when a request names none.
func WithSeason(season int) Option {
	return func(s *Service) {
		if season > 0 {
			s.season = season
		}
	}
}

// WithMaxRosterSize caps players per team.
func WithMaxRosterSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRosterSize = n
		}
	}
}

// WithLineupSize sets how many pitchers a lineup starts.
func WithLineupSize(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.lineupSize = n
		}
	}
}

// WithTradeEvenMargin sets the grade gap below which a trade is even.
func WithTradeEvenMargin(margin float64) Option {
	return func(s *Service) {
		if margin >= 0 {
			s.evenMargin = margin
		}
	}
}

// WithRecommender replaces the pitcher recommender.
func WithRecommender(r *recommend.Recommender) Option {
	return func(s *Service) {
		if r != nil {
			s.recommender = r
		}
	}
}

// New constructs a Service over store. authSvc signs and checks credentials.
func New(store repository.Store, authSvc *auth.Service, opts ...Option) *Service {
	s := &Service{
		store:         store,
		auth:          authSvc,
		recommender:   recommend.New(),
		workerCount:   runtime.NumCPU(),
		queueSize:     1024,
		pendingSize:   10_000,
		season:        defaultSeason,
		maxRosterSize: defaultMaxRosterSize,
		lineupSize:    defaultLineupSize,
		evenMargin:    trade.DefaultEvenMargin,
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start builds the regrade pipeline and starts its workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting roster service...")

	s.stopCh = make(chan struct{})
	s.pending = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.pendingSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.store,
		worker.WithReleaser(s.pending),
		worker.WithLogger(s.logger.Named("regrade")))
	s.pool.Start(ctx)

	s.loopWG.Add(1)
	go s.metricsLoop(ctx)

	s.started = true
	s.logger.Info(ctx, "roster service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("pendingSize", s.pendingSize),
	)
	return nil
}

// Stop drains the regrade pipeline. Jobs still queued when ctx expires are
// dropped.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping roster service...")

	err := s.pool.Shutdown(ctx)

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.loopWG.Wait()

	s.started = false
	s.logger.Info(ctx, "roster service stopped")
	return err
}

// metricsLoop refreshes gauges that are cheaper to poll than to track.
func (s *Service) metricsLoop(ctx context.Context) {
	defer s.loopWG.Done()

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	var lastGC uint32
	for {
		s.refreshGauges(ctx)

		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		metrics.UpdateSystemMemoryUsage(ms.HeapInuse)
		metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		if ms.NumGC > lastGC {
			metrics.RecordSystemGCPauseTime(float64(ms.PauseNs[(ms.NumGC+255)%256]) / 1e6)
		}
		lastGC = ms.NumGC

		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
		}
	}
}

func (s *Service) refreshGauges(ctx context.Context) {
	c, err := s.store.Counts(ctx)
	if err != nil {
		s.logger.Warn(ctx, "failed to count rows", logger.Error(err))
		return
	}
	metrics.UpdateUsersTotal(c.Users)
	metrics.UpdateTeamsTotal(c.Teams)
	metrics.UpdatePlayersTotal(c.Players)
	metrics.UpdateCatalogSeasons(c.PitcherSeasons)
}

// Season returns the default season.
func (s *Service) Season() int { return s.season }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueCapacity": s.queueSize,
		"season":        s.season,
		"maxRosterSize": s.maxRosterSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["pendingRegrades"] = s.pending.Size()
		metrics.UpdateQueueSize(queueLen)
	}

	if c, err := s.store.Counts(ctx); err == nil {
		stats["users"] = c.Users
		stats["teams"] = c.Teams
		stats["players"] = c.Players
		stats["pitcherSeasons"] = c.PitcherSeasons
	}
	return stats
}
