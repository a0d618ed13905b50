package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/rostr/internal/adapters/http/api"
	"github.com/okian/rostr/internal/adapters/repository"
	service "github.com/okian/rostr/internal/app"
	"github.com/okian/rostr/internal/auth"
	"github.com/okian/rostr/internal/config"
	"github.com/okian/rostr/internal/domain/recommend"
	"github.com/okian/rostr/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 35 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

const defaultSecret = "change-me"

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the regrade workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, nil)
		},
	}
}

// setup loads configuration, initializes logging and opens the store.
func setup(ctx context.Context) (*config.Config, *repository.SQLStore, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(logger.WithLevel(cfg.LogLevel), logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	db, err := repository.Open(ctx, repository.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s database: %w", cfg.DBDriver, err)
	}
	return cfg, repository.NewSQLStore(db, repository.Driver(cfg.DBDriver)), nil
}

func newService(cfg *config.Config, store repository.Store) (*service.Service, *auth.Service, error) {
	authSvc, err := auth.NewService(cfg.JWTSecret, auth.WithTokenTTL(cfg.TokenTTL()))
	if err != nil {
		return nil, nil, err
	}
	svc := service.New(store, authSvc,
		service.WithLogger(logger.Named("service")),
		service.WithWorkerCount(cfg.RegradeWorkers),
		service.WithQueueSize(cfg.RegradeQueueSize),
		service.WithPendingSize(cfg.PendingRegradeSize),
		service.WithSeason(cfg.Season),
		service.WithMaxRosterSize(cfg.MaxRosterSize),
		service.WithLineupSize(cfg.LineupSize),
		service.WithTradeEvenMargin(cfg.TradeEvenMargin),
		service.WithRecommender(recommend.New(
			recommend.WithAlpha(cfg.RecommendAlpha),
			recommend.WithTopN(cfg.RecommendTopN),
		)),
	)
	return svc, authSvc, nil
}

// serve runs until ctx is done. When ready is non-nil it receives the bound
// listen address once the server accepts connections.
func serve(ctx context.Context, ready chan<- string) error {
	// Our metrics live on a custom registry; drop the default Go collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cfg, store, err := setup(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	log := logger.Named("main")
	if cfg.JWTSecret == defaultSecret {
		log.Warn(ctx, "jwt_secret is the default; set ROSTR_JWT_SECRET outside development")
	}

	svc, authSvc, err := newService(cfg, store)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	res, err := svc.LoadCatalog(ctx, cfg.CatalogPath)
	if err != nil {
		_ = svc.Stop(context.Background())
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	log.Info(ctx, "catalog loaded",
		logger.String("path", cfg.CatalogPath),
		logger.Int("rows", res.Rows),
		logger.Any("seasons", res.Seasons))

	handler := api.NewServer(svc, authSvc,
		api.WithLogger(logger.Named("api")),
		api.WithCORSOrigins(cfg.Origins()),
		api.WithAuthRateLimit(cfg.AuthRatePerMinute, cfg.AuthBurst),
	).Handler()

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		_ = svc.Stop(context.Background())
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if ready != nil {
			ready <- ln.Addr().String()
		}
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
		if err := svc.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("service stop: %w", err))
		}
		return errors.Join(errs...)
	})

	err = g.Wait()
	log.Info(context.Background(), "server stopped")
	return err
}
