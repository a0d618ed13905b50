package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/rostr/internal/loadtest"
	"github.com/okian/rostr/pkg/logger"
)

// Default load run settings.
const (
	defaultUsers          = 20
	defaultPlayersPerTeam = 5
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultTimeout        = 30 * time.Second
	defaultRunTimeout     = 10 * time.Minute
	defaultAuthPerMinute  = 30 // matches the server's auth_rate_per_minute default
	defaultAuthBurst      = 10
)

func newLoadTestCmd() *cobra.Command {
	cfg := loadtest.Config{}
	cmd := &cobra.Command{
		Use:     "loadtest",
		Short:   "Drive a running server with concurrent users and verify team grades",
		Example: `  rostr loadtest --url http://localhost:9080 --users 200 --workers 16 --auth-rate 600 --auth-burst 50`,
		Args:    cobra.NoArgs,
		Long: `Drive a running server with concurrent users and verify team grades.

Sign-up and login are paced with --auth-rate and --auth-burst because the
server rate limits them per client address. Raise both, together with the
server's auth_rate_per_minute and auth_burst, for larger runs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := "info"
			if cfg.Verbose {
				level = "debug"
			}
			if err := logger.Init(logger.WithLevel(level), logger.WithOutput(cmd.ErrOrStderr())); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
			defer cancel()

			stats, err := loadtest.Run(ctx, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d teams verified, %d players added in %s\n",
				stats.TeamsVerified, stats.PlayersAdded, stats.Duration.Round(time.Millisecond))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	f.IntVar(&cfg.Users, "users", defaultUsers, "users to sign up, one team each")
	f.IntVar(&cfg.PlayersPerTeam, "players", defaultPlayersPerTeam, "pitchers to add to every team")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "concurrent requests")
	f.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	f.IntVar(&cfg.Season, "season", 2024, "catalog season to draw pitchers from")
	f.BoolVar(&cfg.Verbose, "verbose", false, "log every failed request")
	f.IntVar(&cfg.AuthPerMinute, "auth-rate", defaultAuthPerMinute, "sign-up and login calls per minute, 0 for unpaced")
	f.IntVar(&cfg.AuthBurst, "auth-burst", defaultAuthBurst, "auth calls allowed back to back")
	return cmd
}
