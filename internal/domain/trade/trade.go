// Package trade compares two groups of pitchers by their summed grades.
package trade

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/okian/rostr/internal/domain/grading"
)

// Winner labels.
const (
	WinnerSideA = "Side A"
	WinnerSideB = "Side B"
	WinnerEven  = "Even"
)

// DefaultEvenMargin is the grade difference below which a trade is even.
const DefaultEvenMargin = 2.0

// ErrEmptyTrade is returned when neither side names a player.
var ErrEmptyTrade = errors.New("trade must name at least one player")

// Resolver looks up a pitcher by name and returns its grading input.
// ok is false when the name is unknown.
type Resolver func(name string) (displayName string, stats grading.Stats, ok bool)

// PlayerGrade is one resolved pitcher in a trade side.
type PlayerGrade struct {
	Name  string       `json:"name"`
	Grade float64      `json:"grade"`
	Tier  grading.Tier `json:"tier"`
}

// Side is the evaluated half of a trade.
type Side struct {
	Players    []PlayerGrade `json:"players"`
	TotalGrade float64       `json:"total_grade"`
	Missing    []string      `json:"missing"`
}

// Result is the outcome of a trade evaluation. Diff is SideA minus SideB.
type Result struct {
	SideA      Side    `json:"sideA"`
	SideB      Side    `json:"sideB"`
	Diff       float64 `json:"diff"`
	Winner     string  `json:"winner"`
	Suggestion string  `json:"suggestion"`
}

// CleanNames trims names and drops blanks, e.g. from splitting "a, ,b" on commas.
func CleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Evaluate grades both sides with resolve and picks a winner. Sides whose
// difference is under evenMargin are reported as even.
func Evaluate(sideA, sideB []string, resolve Resolver, evenMargin float64) (Result, error) {
	sideA, sideB = CleanNames(sideA), CleanNames(sideB)
	if len(sideA) == 0 && len(sideB) == 0 {
		return Result{}, ErrEmptyTrade
	}
	if evenMargin < 0 {
		evenMargin = 0
	}

	res := Result{
		SideA: evaluateSide(sideA, resolve),
		SideB: evaluateSide(sideB, resolve),
	}
	res.Diff = round2(res.SideA.TotalGrade - res.SideB.TotalGrade)

	switch {
	case math.Abs(res.Diff) < evenMargin:
		res.Winner = WinnerEven
	case res.Diff > 0:
		res.Winner = WinnerSideA
	default:
		res.Winner = WinnerSideB
	}
	res.Suggestion = suggest(res)
	return res, nil
}

func evaluateSide(names []string, resolve Resolver) Side {
	s := Side{Players: []PlayerGrade{}, Missing: []string{}}
	for _, n := range names {
		display, stats, ok := resolve(n)
		if !ok {
			s.Missing = append(s.Missing, n)
			continue
		}
		g := grading.ComputeGrade(stats)
		s.Players = append(s.Players, PlayerGrade{Name: display, Grade: g, Tier: grading.ClassifyTier(g)})
		s.TotalGrade += g
	}
	s.TotalGrade = round2(s.TotalGrade)
	return s
}

func suggest(r Result) string {
	var msg string
	switch r.Winner {
	case WinnerEven:
		msg = "Trade is balanced; decide based on roster needs."
	case WinnerSideA:
		msg = fmt.Sprintf("Side A gains %.2f grade points; Side B should ask for more.", r.Diff)
	default:
		msg = fmt.Sprintf("Side B gains %.2f grade points; Side A should ask for more.", -r.Diff)
	}
	missing := append(append([]string{}, r.SideA.Missing...), r.SideB.Missing...)
	if len(missing) > 0 {
		msg += " No stats found for: " + strings.Join(missing, ", ") + "."
	}
	return msg
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
