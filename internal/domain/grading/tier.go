package grading

import (
	"encoding/json"
	"math"
)

// Tier is an ordered grade bucket. Elite is the best.
type Tier int

// Tiers in descending order of quality.
const (
	TierElite Tier = iota
	TierTop
	TierSolid
	TierReplacement
	TierPoor
)

// tierBand is one row of the tier table: grades >= min land in tier.
type tierBand struct {
	min     float64
	tier    Tier
	name    string
	color   string
	meaning string
}

var negInf = math.Inf(-1)

// tierBands is evaluated top-down; the last band catches everything.
var tierBands = []tierBand{
	{min: 80, tier: TierElite, name: "Elite", color: "green", meaning: "Must-start fantasy aces."},
	{min: 70, tier: TierTop, name: "Top", color: "blue", meaning: "Reliable, high-end starters."},
	{min: 60, tier: TierSolid, name: "Solid", color: "yellow", meaning: "Good, matchup-dependent starters."},
	{min: 45, tier: TierReplacement, name: "Replacement", color: "orange", meaning: "Streamers; risky ratios."},
	{min: negInf, tier: TierPoor, name: "Poor", color: "red", meaning: "Hurts ERA/WHIP; avoid."},
}

// ClassifyTier maps a grade to its tier. Lower bounds are inclusive.
func ClassifyTier(grade float64) Tier {
	for _, b := range tierBands {
		if grade >= b.min {
			return b.tier
		}
	}
	// NaN compares false against every band.
	return TierPoor
}

func (t Tier) band() tierBand {
	if t < TierElite || t > TierPoor {
		return tierBands[len(tierBands)-1]
	}
	return tierBands[t]
}

// String returns the display name, e.g. "Elite".
func (t Tier) String() string { return t.band().name }

// Color is the display colour clients use for grades in this tier.
func (t Tier) Color() string { return t.band().color }

// Meaning is the one-line description shown on the grade scale.
func (t Tier) Meaning() string { return t.band().meaning }

// MarshalJSON encodes the tier by name.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// ScaleRow describes one tier for clients that render the grade scale.
type ScaleRow struct {
	Tier    string   `json:"tier"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Color   string   `json:"color"`
	Meaning string   `json:"meaning"`
}

// Scale returns the tier table from best to worst.
func Scale() []ScaleRow {
	rows := make([]ScaleRow, 0, len(tierBands))
	var upper *float64
	for i := range tierBands {
		b := tierBands[i]
		row := ScaleRow{Tier: b.tier.String(), Max: upper, Color: b.tier.Color(), Meaning: b.tier.Meaning()}
		if b.min != negInf {
			lower := b.min
			row.Min = &lower
			upper = &lower
		}
		rows = append(rows, row)
	}
	return rows
}
