// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/rostr/internal/domain/grading"
)

// User is an account that owns teams. PasswordHash is never serialised.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Team is a named pitching staff owned by a user.
type Team struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"team_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Player is a rostered pitcher together with its last computed grade.
type Player struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"team_id"`
	Name      string    `json:"player_name"`
	MLBID     string    `json:"mlbid,omitempty"`
	IDFG      string    `json:"idfg,omitempty"`
	Position  string    `json:"position"`
	Season    int       `json:"season"`
	Grade     float64   `json:"grade"`
	Analysis  string    `json:"analysis"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdvancedMetrics are the pitch-quality inputs used by the recommender.
type AdvancedMetrics struct {
	PitchingPlus float64 `json:"pitching_plus" yaml:"pitching_plus"`
	StuffPlus    float64 `json:"stuff_plus" yaml:"stuff_plus"`
	KBBPct       float64 `json:"k_bb_pct" yaml:"k_bb_pct"`
	XFIPMinus    float64 `json:"xfip_minus" yaml:"xfip_minus"`
	BarrelPct    float64 `json:"barrel_pct" yaml:"barrel_pct"`
	HardHitPct   float64 `json:"hardhit_pct" yaml:"hardhit_pct"`
	GBPct        float64 `json:"gb_pct" yaml:"gb_pct"`
	SwStrPct     float64 `json:"swstr_pct" yaml:"swstr_pct"`
	WPALI        float64 `json:"wpa_li" yaml:"wpa_li"`
}

// PitcherSeason is one catalog row: a pitcher's line for one season.
// KPct is stored as a percentage, the way stat sites publish it.
type PitcherSeason struct {
	IDFG     string          `json:"IDfg" yaml:"idfg"`
	MLBID    string          `json:"mlbid,omitempty" yaml:"mlbid"`
	Name     string          `json:"Name" yaml:"name"`
	Team     string          `json:"Team" yaml:"team"`
	Age      int             `json:"Age" yaml:"age"`
	Season   int             `json:"Season" yaml:"season"`
	Wins     int             `json:"W" yaml:"w"`
	Losses   int             `json:"L" yaml:"l"`
	KPct     float64         `json:"K%" yaml:"k_pct"`
	Innings  float64         `json:"IP" yaml:"ip"`
	ERA      float64         `json:"ERA" yaml:"era"`
	Advanced AdvancedMetrics `json:"advanced" yaml:"advanced"`
}

// GradingStats converts the catalog line into the grading engine's input.
func (p PitcherSeason) GradingStats() grading.Stats {
	return grading.Stats{
		StrikeoutRate:  grading.StrikeoutRateFromPercent(p.KPct),
		InningsPitched: p.Innings,
		ERA:            p.ERA,
	}
}

// RegradeJob asks a worker to recompute one rostered player's grade.
type RegradeJob struct {
	JobID    string
	PlayerID string
	Season   int
}
