// Package grading turns a pitcher's season line into a fantasy grade, a tier
// and a short scouting report.
//
// Every function in this package is pure: no state is held between calls, so
// callers may grade concurrently without coordination.
package grading

import (
	"math"
)

// Grade formula weights.
const (
	strikeoutWeight = 150.0
	inningsWeight   = 0.3
	eraWeight       = 10.0
	gradePrecision  = 100.0
)

// StrikeoutRate is the fraction of batters struck out, in [0,1].
// Thresholds and rendered text use the percentage form via Percent.
type StrikeoutRate float64

// StrikeoutRateFromPercent converts a percentage such as 28.5 into 0.285.
func StrikeoutRateFromPercent(pct float64) StrikeoutRate {
	return StrikeoutRate(pct / 100)
}

// Percent returns the rate as a percentage (0.285 -> 28.5).
func (r StrikeoutRate) Percent() float64 {
	return float64(r) * 100
}

// Stats is the input to the engine.
type Stats struct {
	StrikeoutRate  StrikeoutRate
	InningsPitched float64
	ERA            float64
}

// ComputeGrade returns 150*K + 0.3*IP - 10*ERA rounded to two decimals.
// The result is not clamped and the inputs are not validated.
func ComputeGrade(s Stats) float64 {
	grade := strikeoutWeight*float64(s.StrikeoutRate) + inningsWeight*s.InningsPitched - eraWeight*s.ERA
	return roundTo2(grade)
}

// roundTo2 rounds half away from zero, which is half-up for positive grades.
func roundTo2(v float64) float64 {
	return math.Round(v*gradePrecision) / gradePrecision
}

// Report bundles everything the engine derives from one stat line.
type Report struct {
	Name     string   `json:"name,omitempty"`
	Stats    Stats    `json:"-"`
	Grade    float64  `json:"grade"`
	Tier     Tier     `json:"tier"`
	Color    string   `json:"color"`
	Analysis Analysis `json:"analysis"`
}

// Evaluate grades s and builds the matching analysis.
func Evaluate(name string, s Stats) Report {
	grade := ComputeGrade(s)
	tier := ClassifyTier(grade)
	return Report{
		Name:     name,
		Stats:    s,
		Grade:    grade,
		Tier:     tier,
		Color:    tier.Color(),
		Analysis: GenerateAnalysis(name, s, grade),
	}
}
