package grading

// Profile is a pitcher archetype derived from K%, IP and ERA together.
type Profile int

// Profiles in rule order. ProfileBalanced is the fallback.
const (
	ProfileAceWorkhorse Profile = iota
	ProfileStrikeoutSpecialist
	ProfileRatioProtector
	ProfileVolatileStrikeoutArm
	ProfileContactManager
	ProfileHighVolumeRatioRisk
	ProfileBalanced
)

var profileText = [...]struct{ name, recommendation string }{
	ProfileAceWorkhorse:         {"Ace Workhorse", "Start every week without hesitation."},
	ProfileStrikeoutSpecialist:  {"Strikeout Specialist", "Great for boosting Ks, but may need innings support."},
	ProfileRatioProtector:       {"Ratio Protector", "Strong ratios but limited upside in strikeouts."},
	ProfileVolatileStrikeoutArm: {"Volatile Strikeout Arm", "Useful for Ks but may hurt ratios; stream by matchup."},
	ProfileContactManager:       {"Contact Manager", "Low strikeouts but solid ratio stability."},
	ProfileHighVolumeRatioRisk:  {"High-Volume Ratio Risk", "Provides innings but likely harmful in ERA/WHIP."},
	ProfileBalanced:             {"Balanced Profile", "Contributes steadily without major strengths or weaknesses."},
}

// String returns the archetype name.
func (p Profile) String() string {
	if p < 0 || int(p) >= len(profileText) {
		p = ProfileBalanced
	}
	return profileText[p].name
}

// Recommendation returns the fixed advice sentence for the archetype.
func (p Profile) Recommendation() string {
	if p < 0 || int(p) >= len(profileText) {
		p = ProfileBalanced
	}
	return profileText[p].recommendation
}

type profileRule struct {
	profile Profile
	match   func(k, ip, era float64) bool
}

// profileRules is evaluated in order; the first match wins.
var profileRules = []profileRule{
	{ProfileAceWorkhorse, func(k, ip, era float64) bool { return k >= 28 && ip >= 170 && era <= 3.0 }},
	{ProfileStrikeoutSpecialist, func(k, ip, _ float64) bool { return k >= 30 && ip < 130 }},
	{ProfileRatioProtector, func(k, _, era float64) bool { return k < 22 && era < 3.25 }},
	{ProfileVolatileStrikeoutArm, func(k, _, era float64) bool { return k >= 28 && era >= 4.0 }},
	{ProfileContactManager, func(k, _, era float64) bool { return k < 20 && era < 3.5 }},
	{ProfileHighVolumeRatioRisk, func(_, ip, era float64) bool { return ip >= 160 && era >= 4.3 }},
}

// ClassifyProfile picks the archetype for k (K% as a percentage), ip and era.
func ClassifyProfile(kPct, ip, era float64) Profile {
	for _, r := range profileRules {
		if r.match(kPct, ip, era) {
			return r.profile
		}
	}
	return ProfileBalanced
}
