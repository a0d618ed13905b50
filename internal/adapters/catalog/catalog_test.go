package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/rostr/internal/adapters/catalog"
	. "github.com/smartystreets/goconvey/convey"
)

const sample = `
pitchers:
  - idfg: "13125"
    name: " Gerrit Cole "
    season: 2023
    k_pct: 27.0
    ip: 209
    era: 2.63
    advanced:
      stuff_plus: 105
  - idfg: "13125"
    name: Gerrit Cole
    season: 2024
    k_pct: 26.1
    ip: 95
    era: 3.41
`

func TestParse(t *testing.T) {
	Convey("Given a valid catalog document", t, func() {
		rows, err := catalog.Parse(strings.NewReader(sample))

		Convey("Then every row is decoded and trimmed", func() {
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 2)
			So(rows[0].Name, ShouldEqual, "Gerrit Cole")
			So(rows[0].KPct, ShouldEqual, 27.0)
			So(rows[0].Advanced.StuffPlus, ShouldEqual, 105)
			So(catalog.Seasons(rows), ShouldResemble, []int{2023, 2024})
		})

		Convey("And grading stats convert the percentage", func() {
			s := rows[0].GradingStats()
			So(float64(s.StrikeoutRate), ShouldAlmostEqual, 0.27, 1e-9)
			So(s.InningsPitched, ShouldEqual, 209)
		})
	})

	Convey("Given broken documents", t, func() {
		cases := map[string]string{
			"unknown key":  "pitchers:\n  - idfg: \"1\"\n    name: A\n    season: 2024\n    strikeouts: 3\n",
			"missing idfg": "pitchers:\n  - name: A\n    season: 2024\n",
			"bad season":   "pitchers:\n  - idfg: \"1\"\n    name: A\n    season: 24\n",
			"bad k_pct":    "pitchers:\n  - idfg: \"1\"\n    name: A\n    season: 2024\n    k_pct: 120\n",
			"negative era": "pitchers:\n  - idfg: \"1\"\n    name: A\n    season: 2024\n    era: -1\n",
			"duplicate":    "pitchers:\n  - idfg: \"1\"\n    name: A\n    season: 2024\n  - idfg: \"1\"\n    name: A\n    season: 2024\n",
			"not yaml":     "pitchers: [",
		}

		Convey("Then each is rejected as invalid", func() {
			for _, doc := range cases {
				_, err := catalog.Parse(strings.NewReader(doc))
				So(errors.Is(err, catalog.ErrInvalidCatalog), ShouldBeTrue)
			}
		})

		Convey("And empty documents are reported as empty", func() {
			_, err := catalog.Parse(strings.NewReader(""))
			So(errors.Is(err, catalog.ErrEmptyCatalog), ShouldBeTrue)
			_, err = catalog.Parse(strings.NewReader("pitchers: []\n"))
			So(errors.Is(err, catalog.ErrEmptyCatalog), ShouldBeTrue)
		})
	})
}

func TestSeedAndFiles(t *testing.T) {
	Convey("Given the bundled seed", t, func() {
		rows, err := catalog.Seed()

		Convey("Then it loads with advanced metrics for two seasons", func() {
			So(err, ShouldBeNil)
			So(len(rows), ShouldBeGreaterThan, 20)
			So(catalog.Seasons(rows), ShouldContain, 2024)
			So(catalog.Seasons(rows), ShouldContain, 2023)
			for _, r := range rows {
				So(r.Advanced.PitchingPlus, ShouldBeGreaterThan, 0)
			}
		})

		Convey("And Load without a path returns the seed", func() {
			again, err := catalog.Load("")
			So(err, ShouldBeNil)
			So(len(again), ShouldEqual, len(rows))
		})
	})

	Convey("Given a catalog file on disk", t, func() {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		So(os.WriteFile(path, []byte(sample), 0o600), ShouldBeNil)

		Convey("Then Load reads it", func() {
			rows, err := catalog.Load(path)
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 2)
		})

		Convey("And a missing file is an error", func() {
			_, err := catalog.Load(filepath.Join(t.TempDir(), "missing.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}
