package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/rostr/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DBDriver, convey.ShouldEqual, "sqlite")
			convey.So(cfg.MaxRosterSize, convey.ShouldEqual, 10)
			convey.So(cfg.LineupSize, convey.ShouldEqual, 5)
			convey.So(cfg.TradeEvenMargin, convey.ShouldEqual, 2.0)
			convey.So(cfg.RecommendAlpha, convey.ShouldEqual, 0.4)
			convey.So(cfg.RecommendTopN, convey.ShouldEqual, 5)
			convey.So(cfg.RegradeWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.TokenTTL(), convey.ShouldEqual, 8*time.Hour)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Origins(t *testing.T) {
	convey.Convey("Given a comma separated origin list", t, func() {
		cfg := config.New()
		cfg.CORSOrigins = " https://a.example , ,https://b.example"

		convey.Convey("Then blanks are dropped and entries trimmed", func() {
			convey.So(cfg.Origins(), convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid values", t, func() {
		cases := map[string]func(*config.Config){
			"driver":  func(c *config.Config) { c.DBDriver = "oracle" },
			"secret":  func(c *config.Config) { c.JWTSecret = "" },
			"season":  func(c *config.Config) { c.Season = 24 },
			"roster":  func(c *config.Config) { c.MaxRosterSize = 0 },
			"margin":  func(c *config.Config) { c.TradeEvenMargin = -1 },
			"workers": func(c *config.Config) { c.RegradeWorkers = 0 },
			"ttl":     func(c *config.Config) { c.TokenTTLMinutes = 0 },
		}

		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)

			convey.Convey("Then "+name+" is rejected as ErrInvalidConfig", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
