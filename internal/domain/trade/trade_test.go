package trade_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/rostr/internal/domain/grading"
	"github.com/okian/rostr/internal/domain/trade"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeCatalog grades: Ace 92.5, Mid 64.25, Bad -1.
func fakeCatalog(name string) (string, grading.Stats, bool) {
	lines := map[string]grading.Stats{
		"ace": {StrikeoutRate: grading.StrikeoutRateFromPercent(35), InningsPitched: 200, ERA: 2.0},
		"mid": {StrikeoutRate: grading.StrikeoutRateFromPercent(28.5), InningsPitched: 180, ERA: 3.25},
		"bad": {StrikeoutRate: grading.StrikeoutRateFromPercent(18), InningsPitched: 90, ERA: 5.5},
	}
	s, ok := lines[strings.ToLower(name)]
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:]), s, ok
}

func TestEvaluate(t *testing.T) {
	Convey("Given a lopsided trade", t, func() {
		res, err := trade.Evaluate([]string{"Ace"}, []string{"Mid", "Bad"}, fakeCatalog, trade.DefaultEvenMargin)

		Convey("Then side totals and the difference are computed", func() {
			So(err, ShouldBeNil)
			So(res.SideA.TotalGrade, ShouldEqual, 92.5)
			So(res.SideB.TotalGrade, ShouldEqual, 63.25)
			So(res.Diff, ShouldEqual, 29.25)
			So(res.Winner, ShouldEqual, trade.WinnerSideA)
			So(res.Suggestion, ShouldContainSubstring, "Side A gains 29.25")
		})

		Convey("And each player carries its tier", func() {
			So(res.SideA.Players[0].Tier, ShouldEqual, grading.TierElite)
			So(res.SideB.Players[1].Tier, ShouldEqual, grading.TierPoor)
		})
	})

	Convey("Given a trade that favours side B", t, func() {
		res, err := trade.Evaluate([]string{"Bad"}, []string{"Mid"}, fakeCatalog, trade.DefaultEvenMargin)

		Convey("Then side B wins", func() {
			So(err, ShouldBeNil)
			So(res.Diff, ShouldEqual, -65.25)
			So(res.Winner, ShouldEqual, trade.WinnerSideB)
			So(res.Suggestion, ShouldContainSubstring, "Side B gains 65.25")
		})
	})

	Convey("Given a swap of equal players", t, func() {
		res, err := trade.Evaluate([]string{"mid"}, []string{"MID"}, fakeCatalog, trade.DefaultEvenMargin)

		Convey("Then the trade is even", func() {
			So(err, ShouldBeNil)
			So(res.Diff, ShouldEqual, 0)
			So(res.Winner, ShouldEqual, trade.WinnerEven)
		})
	})

	Convey("Given unknown and blank names", t, func() {
		res, err := trade.Evaluate([]string{" Ace ", "", "Nobody"}, []string{" "}, fakeCatalog, 0)

		Convey("Then blanks are dropped and unknown names are reported", func() {
			So(err, ShouldBeNil)
			So(len(res.SideA.Players), ShouldEqual, 1)
			So(res.SideA.Missing, ShouldResemble, []string{"Nobody"})
			So(res.SideB.Players, ShouldBeEmpty)
			So(res.Suggestion, ShouldContainSubstring, "No stats found for: Nobody.")
		})
	})

	Convey("Given two empty sides", t, func() {
		_, err := trade.Evaluate([]string{""}, nil, fakeCatalog, 1)

		Convey("Then the trade is rejected", func() {
			So(errors.Is(err, trade.ErrEmptyTrade), ShouldBeTrue)
		})
	})
}
