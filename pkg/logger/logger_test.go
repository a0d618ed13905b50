package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given logger options", t, func() {
		Convey("When the format is unknown", func() {
			err := Init(WithFormat("xml"))

			Convey("Then Init fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the level is unknown", func() {
			err := Init(WithLevel("loud"))

			Convey("Then Init fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When defaults are used", func() {
			So(Init(), ShouldBeNil)

			Convey("Then a logger is available", func() {
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat(FormatJSON), WithOutput(&buf), WithLevel("debug")), ShouldBeNil)
		ctx := context.Background()

		Convey("When a named logger with fields writes an entry", func() {
			l := Named("api").Named("teams").With(String("team_id", "t1"))
			l.Info(ctx, "player added",
				Int("roster", 3), Bool("graded", true),
				Duration("took", 2*time.Millisecond), Error(errors.New("boom")))

			Convey("Then the entry carries every field", func() {
				var entry map[string]any
				So(json.Unmarshal(buf.Bytes(), &entry), ShouldBeNil)
				So(entry["msg"], ShouldEqual, "player added")
				So(entry["logger"], ShouldEqual, "api.teams")
				So(entry["team_id"], ShouldEqual, "t1")
				So(entry["roster"], ShouldEqual, 3.0)
				So(entry["graded"], ShouldEqual, true)
				So(entry["error"], ShouldEqual, "boom")
				So(entry["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Error(ctx, "shown")

			Convey("Then lower-level entries are dropped", func() {
				out := buf.String()
				So(out, ShouldNotContainSubstring, "hidden")
				So(out, ShouldContainSubstring, "shown")
			})
		})

		Reset(func() {
			_ = SetLevelString("info")
		})
	})
}

func TestLoggerText(t *testing.T) {
	Convey("Given a text logger", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf)), ShouldBeNil)

		Convey("When warning", func() {
			Get().Warn(context.Background(), "queue nearly full", Float64("utilization", 0.9))

			Convey("Then a single text line is written", func() {
				out := strings.TrimSpace(buf.String())
				So(strings.Count(out, "\n"), ShouldEqual, 0)
				So(out, ShouldContainSubstring, "level=WARN")
				So(out, ShouldContainSubstring, "utilization=0.9")
			})
		})
	})
}
