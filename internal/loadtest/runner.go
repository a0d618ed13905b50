package loadtest

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/okian/rostr/pkg/logger"
)

// ErrNoCatalog is returned when the server has no pitchers for the season.
var ErrNoCatalog = errors.New("catalog has no pitchers for season")

const percentageMultiplier = 100

// Run executes the complete load run and returns its statistics.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("loadtest")
	log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("users", cfg.Users),
		logger.Int("playersPerTeam", cfg.PlayersPerTeam),
		logger.Int("workers", cfg.Workers),
		logger.Int("season", cfg.Season),
		logger.Int("authPerMinute", cfg.AuthPerMinute),
		logger.Bool("verbose", cfg.Verbose))

	c := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	if err := c.do(ctx, http.MethodGet, "/healthz", "", nil, nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	var pool []pitcher
	if err := c.do(ctx, http.MethodGet, "/api/search-pitcher?season="+strconv.Itoa(cfg.Season), "", nil, &pool); err != nil {
		return stats, fmt.Errorf("catalog lookup failed: %w", err)
	}
	if len(pool) == 0 {
		return stats, fmt.Errorf("%w %d", ErrNoCatalog, cfg.Season)
	}

	teams := buildTeams(ctx, c, cfg, stats)
	fillRosters(ctx, c, cfg, pool, teams, stats)
	if err := verifyTeams(ctx, c, teams, stats); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

// authLimiter paces sign-up and login calls so a run from one address stays
// under the server's per-client auth limit.
func authLimiter(cfg Config) *rate.Limiter {
	if cfg.AuthPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.AuthPerMinute)), max(cfg.AuthBurst, 1))
}

// buildTeams signs up cfg.Users users concurrently and creates one team
// for each. Users whose requests fail are counted and skipped.
func buildTeams(ctx context.Context, c *httpClient, cfg Config, stats *Stats) []*team {
	var (
		mu     sync.Mutex
		teams  []*team
		failed int64
	)
	limiter := authLimiter(cfg)
	authCall := func(ctx context.Context, path string, body, out any) error {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		return c.do(ctx, http.MethodPost, path, "", body, out)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	run := uuid.NewString()[:8]

	for i := 0; i < cfg.Users; i++ {
		g.Go(func() error {
			creds := map[string]string{
				"username": fmt.Sprintf("load-%s-%d", run, i),
				"password": "load-" + run,
			}
			var sess session
			var created struct {
				ID string `json:"id"`
			}
			err := authCall(gctx, "/api/users", creds, nil)
			if err == nil {
				err = authCall(gctx, "/api/users/login", creds, &sess)
			}
			if err == nil {
				err = c.do(gctx, http.MethodPost, "/api/teams", sess.Token,
					map[string]string{"team_name": fmt.Sprintf("Load Staff %d", i)}, &created)
			}
			if err != nil {
				atomic.AddInt64(&failed, 1)
				logFailure(gctx, cfg, "team setup failed", err)
				return nil
			}
			mu.Lock()
			teams = append(teams, &team{ID: created.ID, Token: sess.Token, grades: map[string]float64{}})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	stats.UsersCreated = len(teams)
	stats.TeamsCreated = len(teams)
	stats.RequestsFailed += int(failed)
	return teams
}

// fillRosters adds random catalog pitchers to every team. Conflicts from
// picking the same pitcher twice or a full roster are expected and counted
// as rejections.
func fillRosters(ctx context.Context, c *httpClient, cfg Config, pool []pitcher, teams []*team, stats *Stats) {
	var (
		mu                      sync.Mutex
		added, rejected, failed int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))

	for _, t := range teams {
		for _, p := range pick(pool, cfg.PlayersPerTeam) {
			g.Go(func() error {
				var got addedPlayer
				err := c.do(gctx, http.MethodPost, "/api/teams/"+t.ID+"/players", t.Token,
					map[string]any{"player_name": p.Name, "idfg": p.IDFG, "season": cfg.Season}, &got)
				var se *statusError
				switch {
				case err == nil:
					atomic.AddInt64(&added, 1)
					mu.Lock()
					t.grades[got.Name] = got.Grade
					mu.Unlock()
				case errors.As(err, &se) && se.Status == http.StatusConflict:
					atomic.AddInt64(&rejected, 1)
				default:
					atomic.AddInt64(&failed, 1)
					logFailure(gctx, cfg, "add player failed", err)
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	stats.PlayersAdded = int(added)
	stats.PlayersRejected = int(rejected)
	stats.RequestsFailed += int(failed)
}

// pick returns n distinct pitchers from pool, or all of them when n is larger.
func pick(pool []pitcher, n int) []pitcher {
	idx := rand.Perm(len(pool))
	if n > len(idx) {
		n = len(idx)
	}
	out := make([]pitcher, 0, n)
	for _, i := range idx[:n] {
		out = append(out, pool[i])
	}
	return out
}

func logFailure(ctx context.Context, cfg Config, msg string, err error) {
	if cfg.Verbose {
		logger.Named("loadtest").Warn(ctx, msg, logger.Error(err))
	}
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, requestsPerSecond float64
	attempts := stats.PlayersAdded + stats.PlayersRejected
	if attempts > 0 {
		acceptRate = float64(stats.PlayersAdded) / float64(attempts) * percentageMultiplier
	}
	if stats.Duration > 0 {
		requests := stats.UsersCreated*3 + attempts + stats.TeamsVerified
		requestsPerSecond = float64(requests) / stats.Duration.Seconds()
	}

	logger.Named("loadtest").Info(ctx, "final statistics",
		logger.Int("usersCreated", stats.UsersCreated),
		logger.Int("teamsCreated", stats.TeamsCreated),
		logger.Int("playersAdded", stats.PlayersAdded),
		logger.Int("playersRejected", stats.PlayersRejected),
		logger.Int("requestsFailed", stats.RequestsFailed),
		logger.Int("teamsVerified", stats.TeamsVerified),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
