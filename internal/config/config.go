// Package config defines service configuration and its loader.
//
// Conventions:
// - New() returns a Config holding every default.
// - Load(ctx) layers an optional YAML file and ROSTR_* env vars on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBDriver is sqlite or postgres; DBDSN is passed to the driver as is.
	DBDriver string `koanf:"db_driver"`
	DBDSN    string `koanf:"db_dsn"`

	// JWTSecret signs bearer tokens.
	JWTSecret       string `koanf:"jwt_secret"`
	TokenTTLMinutes int    `koanf:"token_ttl_minutes"`

	// CatalogPath points at a YAML catalog; empty loads the embedded seed.
	CatalogPath string `koanf:"catalog_path"`
	// Season is used when a request does not name one.
	Season int `koanf:"season"`

	MaxRosterSize   int     `koanf:"max_roster_size"`
	LineupSize      int     `koanf:"lineup_size"`
	TradeEvenMargin float64 `koanf:"trade_even_margin"`
	RecommendAlpha  float64 `koanf:"recommend_alpha"`
	RecommendTopN   int     `koanf:"recommend_top_n"`

	// RegradeQueueSize bounds the in-memory regrade queue.
	RegradeQueueSize int `koanf:"regrade_queue_size"`
	// RegradeWorkers sets the number of regrade workers.
	RegradeWorkers int `koanf:"regrade_workers"`
	// PendingRegradeSize caps how many queued player ids are remembered.
	PendingRegradeSize int `koanf:"pending_regrade_size"`

	// CORSOrigins is a comma separated list of allowed origins.
	CORSOrigins string `koanf:"cors_origins"`

	// AuthRatePerMinute and AuthBurst shape the per-IP limiter on sign-in
	// and sign-up.
	AuthRatePerMinute int `koanf:"auth_rate_per_minute"`
	AuthBurst         int `koanf:"auth_burst"`
}

// New creates a Config filled with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		DBDriver:           "sqlite",
		DBDSN:              "file:rostr.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		JWTSecret:          "change-me",
		TokenTTLMinutes:    480,
		Season:             2024,
		MaxRosterSize:      10,
		LineupSize:         5,
		TradeEvenMargin:    2.0,
		RecommendAlpha:     0.4,
		RecommendTopN:      5,
		RegradeQueueSize:   1024,
		RegradeWorkers:     runtime.NumCPU(),
		PendingRegradeSize: 10_000,
		CORSOrigins:        "*",
		AuthRatePerMinute:  30,
		AuthBurst:          10,
	}
}

// TokenTTL returns the token lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// Origins splits CORSOrigins into trimmed, non-empty entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBDriver != "sqlite" && c.DBDriver != "postgres":
		return fmt.Errorf("%w: db_driver must be sqlite or postgres, got %q", ErrInvalidConfig, c.DBDriver)
	case c.DBDSN == "":
		return fmt.Errorf("%w: db_dsn must not be empty", ErrInvalidConfig)
	case c.JWTSecret == "":
		return fmt.Errorf("%w: jwt_secret must not be empty", ErrInvalidConfig)
	case c.TokenTTLMinutes <= 0:
		return fmt.Errorf("%w: token_ttl_minutes must be positive", ErrInvalidConfig)
	case c.Season < 1000 || c.Season > 9999:
		return fmt.Errorf("%w: season must have four digits", ErrInvalidConfig)
	case c.MaxRosterSize <= 0:
		return fmt.Errorf("%w: max_roster_size must be positive", ErrInvalidConfig)
	case c.LineupSize < 0:
		return fmt.Errorf("%w: lineup_size must not be negative", ErrInvalidConfig)
	case c.TradeEvenMargin < 0:
		return fmt.Errorf("%w: trade_even_margin must not be negative", ErrInvalidConfig)
	case c.RecommendAlpha < 0:
		return fmt.Errorf("%w: recommend_alpha must not be negative", ErrInvalidConfig)
	case c.RecommendTopN <= 0:
		return fmt.Errorf("%w: recommend_top_n must be positive", ErrInvalidConfig)
	case c.RegradeQueueSize <= 0:
		return fmt.Errorf("%w: regrade_queue_size must be positive", ErrInvalidConfig)
	case c.RegradeWorkers <= 0:
		return fmt.Errorf("%w: regrade_workers must be positive", ErrInvalidConfig)
	case c.AuthRatePerMinute <= 0 || c.AuthBurst <= 0:
		return fmt.Errorf("%w: auth_rate_per_minute and auth_burst must be positive", ErrInvalidConfig)
	}
	return nil
}
