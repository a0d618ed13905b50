package grading

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Analysis is the structured scouting report for one pitcher.
//
// Profile is computed but String does not print it: the rendered report only
// carries the profile's recommendation sentence.
type Analysis struct {
	Tier           Tier
	Lines          [3]string
	Profile        Profile
	Recommendation string
}

// String renders the report as five newline-separated lines.
func (a Analysis) String() string {
	var b strings.Builder
	b.WriteString(a.Tier.String())
	b.WriteString(" Tier:\n")
	for _, l := range a.Lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString("Fantasy Recommendation: ")
	b.WriteString(a.Recommendation)
	return b.String()
}

// MarshalJSON exposes both the structured fields and the rendered text.
func (a Analysis) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Tier           Tier     `json:"tier"`
		Lines          []string `json:"lines"`
		Profile        string   `json:"profile"`
		Recommendation string   `json:"recommendation"`
		Text           string   `json:"text"`
	}{
		Tier:           a.Tier,
		Lines:          a.Lines[:],
		Profile:        a.Profile.String(),
		Recommendation: a.Recommendation,
		Text:           a.String(),
	})
}

// lineRule renders one commentary line when match holds for the statistic.
type lineRule struct {
	match  func(v float64) bool
	format string
}

func atLeast(min float64) func(float64) bool { return func(v float64) bool { return v >= min } }
func atMost(max float64) func(float64) bool  { return func(v float64) bool { return v <= max } }
func always(float64) bool                    { return true }

// strikeoutLines takes K% (percentage form).
var strikeoutLines = []lineRule{
	{atLeast(32), "Elite swing-and-miss skill (%.1f K%%)."},
	{atLeast(28), "Strong strikeout output (%.1f K%%)."},
	{atLeast(24), "Steady strikeout support (%.1f K%%)."},
	{atLeast(20), "Modest strikeout rate (%.1f K%%); pairing with a high-K arm is beneficial."},
	{always, "Low strikeout output (%.1f K%%) limits ceiling."},
}

var inningsLines = []lineRule{
	{atLeast(170), "High-volume workload (%.1f IP) adds weekly stability."},
	{atLeast(130), "Moderate workload (%.1f IP) with reliable usage."},
	{always, "Light innings load (%.1f IP) lowers weekly impact."},
}

var eraLines = []lineRule{
	{atMost(2.5), "Limits damage exceptionally well (ERA %.2f)."},
	{atMost(3.5), "Manages contact effectively (ERA %.2f)."},
	{atMost(4.25), "Inconsistent run prevention (ERA %.2f)."},
	{always, "High risk to ERA/WHIP (ERA %.2f)."},
}

func pickLine(rules []lineRule, v float64) string {
	for _, r := range rules {
		if r.match(v) {
			return fmt.Sprintf(r.format, v)
		}
	}
	// Unreachable while every table ends with always; NaN lands here too.
	last := rules[len(rules)-1]
	return fmt.Sprintf(last.format, v)
}

// GenerateAnalysis builds the scouting report for s graded at grade.
// name is accepted for callers' convenience and is not rendered.
func GenerateAnalysis(_ string, s Stats, grade float64) Analysis {
	k := s.StrikeoutRate.Percent()
	profile := ClassifyProfile(k, s.InningsPitched, s.ERA)
	return Analysis{
		Tier: ClassifyTier(grade),
		Lines: [3]string{
			pickLine(strikeoutLines, k),
			pickLine(inningsLines, s.InningsPitched),
			pickLine(eraLines, s.ERA),
		},
		Profile:        profile,
		Recommendation: profile.Recommendation(),
	}
}
