package roster_test

import (
	"testing"

	"github.com/okian/rostr/internal/domain/model"
	"github.com/okian/rostr/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTeamTier(t *testing.T) {
	Convey("Given team tier boundaries", t, func() {
		cases := []struct {
			avg  float64
			want string
		}{
			{90, "Excellent Team"},
			{75, "Excellent Team"},
			{74.9, "Very Good"},
			{65, "Very Good"},
			{64.9, "Average"},
			{55, "Average"},
			{54.9, "Weak"},
			{-10, "Weak"},
		}

		Convey("Then each average maps to its tier", func() {
			for _, c := range cases {
				name, meaning := roster.TeamTier(c.avg)
				So(name, ShouldEqual, c.want)
				So(meaning, ShouldNotBeEmpty)
			}
		})

		Convey("And the published scale has four rows", func() {
			rows := roster.TeamScale()
			So(len(rows), ShouldEqual, 4)
			So(*rows[0].Min, ShouldEqual, 75.0)
			So(rows[3].Min, ShouldBeNil)
		})
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given an empty roster", t, func() {
		s := roster.Summarize(nil)

		Convey("Then there is no average and the tier is N/A", func() {
			So(s.AverageGrade, ShouldBeNil)
			So(s.TeamTier, ShouldEqual, roster.NoTier)
			So(s.Players, ShouldNotBeNil)
			So(len(s.Players), ShouldEqual, 0)
		})
	})

	Convey("Given a roster of graded pitchers", t, func() {
		players := []model.Player{
			{Name: "A", Grade: 92.5},
			{Name: "B", Grade: 64.25},
			{Name: "C", Grade: 50.0},
		}
		s := roster.Summarize(players)

		Convey("Then the average is rounded to one decimal", func() {
			So(*s.AverageGrade, ShouldEqual, 68.9)
			So(s.TeamTier, ShouldEqual, "Very Good")
			So(s.TierMeaning, ShouldEqual, "Competitive every week.")
		})
	})
}

func TestRecommendLineup(t *testing.T) {
	Convey("Given a roster with a tie", t, func() {
		players := []model.Player{
			{ID: "1", Name: "Zac Gallen", Position: "SP", Grade: 61},
			{ID: "2", Name: "Gerrit Cole", Position: "SP", Grade: 88},
			{ID: "3", Name: "Logan Webb", Position: "SP", Grade: 61},
			{ID: "4", Name: "Devin Williams", Position: "RP", Grade: 40},
		}

		Convey("When two starters are requested", func() {
			lineup := roster.RecommendLineup(players, 2)

			Convey("Then players are ranked by grade with ties broken by name", func() {
				So(len(lineup), ShouldEqual, 4)
				So(lineup[0].Name, ShouldEqual, "Gerrit Cole")
				So(lineup[1].Name, ShouldEqual, "Logan Webb")
				So(lineup[2].Name, ShouldEqual, "Zac Gallen")
				So(lineup[3].Name, ShouldEqual, "Devin Williams")
				So(lineup[0].Rank, ShouldEqual, 1)
				So(lineup[3].Rank, ShouldEqual, 4)
			})

			Convey("And only the top two start", func() {
				So(lineup[0].Role, ShouldEqual, roster.RoleStart)
				So(lineup[1].Role, ShouldEqual, roster.RoleStart)
				So(lineup[2].Role, ShouldEqual, roster.RoleBench)
			})

			Convey("And the input slice is untouched", func() {
				So(players[0].Name, ShouldEqual, "Zac Gallen")
			})
		})

		Convey("When more starters are requested than players exist", func() {
			lineup := roster.RecommendLineup(players, 10)

			Convey("Then everyone starts", func() {
				for _, e := range lineup {
					So(e.Role, ShouldEqual, roster.RoleStart)
				}
			})
		})
	})
}
