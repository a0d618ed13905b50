// Package roster derives team-level views from graded players: the team
// average with its tier, and a ranked lineup.
package roster

import (
	"math"
	"sort"
	"strings"

	"github.com/okian/rostr/internal/domain/model"
)

// Lineup roles.
const (
	RoleStart = "start"
	RoleBench = "bench"
)

// NoTier is reported when a team has no players to average.
const NoTier = "N/A"

type teamBand struct {
	min     float64
	name    string
	meaning string
}

// teamBands is evaluated top-down; lower bounds are inclusive.
var teamBands = []teamBand{
	{75, "Excellent Team", "Elite pitching staff."},
	{65, "Very Good", "Competitive every week."},
	{55, "Average", "Solid but needs upgrades."},
	{math.Inf(-1), "Weak", "Below-average team."},
}

// TeamTier classifies a team average grade.
func TeamTier(avg float64) (name, meaning string) {
	for _, b := range teamBands {
		if avg >= b.min {
			return b.name, b.meaning
		}
	}
	last := teamBands[len(teamBands)-1]
	return last.name, last.meaning
}

// TeamScaleRow describes one team tier for clients.
type TeamScaleRow struct {
	Tier    string   `json:"tier"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Meaning string   `json:"meaning"`
}

// TeamScale returns the team tier table from best to worst.
func TeamScale() []TeamScaleRow {
	rows := make([]TeamScaleRow, 0, len(teamBands))
	var upper *float64
	for _, b := range teamBands {
		row := TeamScaleRow{Tier: b.name, Max: upper, Meaning: b.meaning}
		if !math.IsInf(b.min, -1) {
			lower := b.min
			row.Min = &lower
			upper = &lower
		}
		rows = append(rows, row)
	}
	return rows
}

// Summary is the grading display for a whole team.
type Summary struct {
	Players      []model.Player `json:"players"`
	AverageGrade *float64       `json:"average_grade,omitempty"`
	TeamTier     string         `json:"team_tier"`
	TierMeaning  string         `json:"team_tier_meaning,omitempty"`
}

// Summarize averages the players' grades (one decimal) and classifies the
// team. An empty roster has no average and tier NoTier.
func Summarize(players []model.Player) Summary {
	s := Summary{Players: players, TeamTier: NoTier}
	if s.Players == nil {
		s.Players = []model.Player{}
	}
	if len(players) == 0 {
		return s
	}
	var sum float64
	for _, p := range players {
		sum += p.Grade
	}
	avg := math.Round(sum/float64(len(players))*10) / 10
	s.AverageGrade = &avg
	s.TeamTier, s.TierMeaning = TeamTier(avg)
	return s
}

// LineupEntry is one ranked pitcher in a lineup recommendation.
type LineupEntry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Position string  `json:"position"`
	Score    float64 `json:"score"`
	Role     string  `json:"role"`
}

// RecommendLineup ranks players by grade, best first. Ties break by name so
// the order is stable. The first starters entries are marked RoleStart.
func RecommendLineup(players []model.Player, starters int) []LineupEntry {
	sorted := make([]model.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Grade != sorted[j].Grade {
			return sorted[i].Grade > sorted[j].Grade
		}
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	out := make([]LineupEntry, len(sorted))
	for i, p := range sorted {
		role := RoleBench
		if i < starters {
			role = RoleStart
		}
		out[i] = LineupEntry{
			Rank:     i + 1,
			PlayerID: p.ID,
			Name:     p.Name,
			Position: p.Position,
			Score:    p.Grade,
			Role:     role,
		}
	}
	return out
}
