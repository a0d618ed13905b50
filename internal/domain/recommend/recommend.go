// Package recommend ranks free-agent pitchers for a team. Candidates score
// well on weighted pitch-quality metrics and lose points for resembling
// pitchers the team already rosters.
package recommend

import (
	"math"
	"sort"

	"github.com/okian/rostr/internal/domain/model"
)

// Defaults used when callers pass zero values.
const (
	DefaultAlpha = 0.4
	DefaultTopN  = 5
)

type feature struct {
	name   string
	weight float64
	value  func(model.AdvancedMetrics) float64
}

// features lists the scored metrics. A negative weight means lower is better.
var features = []feature{
	{"pitching+", 0.30, func(m model.AdvancedMetrics) float64 { return m.PitchingPlus }},
	{"stuff+", 0.25, func(m model.AdvancedMetrics) float64 { return m.StuffPlus }},
	{"k-bb%", 0.20, func(m model.AdvancedMetrics) float64 { return m.KBBPct }},
	{"xfip-", -0.15, func(m model.AdvancedMetrics) float64 { return m.XFIPMinus }},
	{"barrel%", -0.10, func(m model.AdvancedMetrics) float64 { return m.BarrelPct }},
	{"hardhit%", -0.10, func(m model.AdvancedMetrics) float64 { return m.HardHitPct }},
	{"gb%", 0.05, func(m model.AdvancedMetrics) float64 { return m.GBPct }},
	{"swstr%", 0.05, func(m model.AdvancedMetrics) float64 { return m.SwStrPct }},
	{"wpa/li", 0.05, func(m model.AdvancedMetrics) float64 { return m.WPALI }},
}

// Weights returns the metric weights keyed by metric name.
func Weights() map[string]float64 {
	out := make(map[string]float64, len(features))
	for _, f := range features {
		out[f.name] = f.weight
	}
	return out
}

// Recommendation is one scored candidate.
type Recommendation struct {
	IDFG       string  `json:"IDfg"`
	Name       string  `json:"name"`
	Team       string  `json:"team"`
	BaseScore  float64 `json:"base_score"`
	Penalty    float64 `json:"penalty"`
	FinalScore float64 `json:"final_score"`
}

// Recommender scores candidates against a roster.
type Recommender struct {
	alpha float64
	topN  int
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithAlpha sets the similarity penalty strength.
func WithAlpha(alpha float64) Option {
	return func(r *Recommender) {
		if alpha >= 0 {
			r.alpha = alpha
		}
	}
}

// WithTopN sets the default number of results.
func WithTopN(n int) Option {
	return func(r *Recommender) {
		if n > 0 {
			r.topN = n
		}
	}
}

// New returns a Recommender with defaults overridden by opts.
func New(opts ...Option) *Recommender {
	r := &Recommender{alpha: DefaultAlpha, topN: DefaultTopN}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recommend scores candidates and returns the best topN, highest first.
// topN <= 0 uses the configured default.
//
// Metrics are min-max scaled over team and candidates together. The base
// score sums |weight| * value, with value inverted for negative weights.
// The penalty is -alpha times the largest cosine similarity between the
// candidate and any rostered pitcher, computed on the scaled values.
func (r *Recommender) Recommend(team, candidates []model.PitcherSeason, topN int) []Recommendation {
	if topN <= 0 {
		topN = r.topN
	}
	if len(candidates) == 0 {
		return []Recommendation{}
	}

	all := make([]model.PitcherSeason, 0, len(team)+len(candidates))
	all = append(all, team...)
	all = append(all, candidates...)
	scaled := normalize(all)
	teamVecs, candVecs := scaled[:len(team)], scaled[len(team):]

	out := make([]Recommendation, len(candidates))
	for i, c := range candidates {
		base := baseScore(candVecs[i])
		var maxSim float64
		for j, t := range teamVecs {
			s := cosine(candVecs[i], t)
			if j == 0 || s > maxSim {
				maxSim = s
			}
		}
		var penalty float64
		if p := r.alpha * maxSim; p != 0 {
			penalty = -p
		}
		out[i] = Recommendation{
			IDFG:       c.IDFG,
			Name:       c.Name,
			Team:       c.Team,
			BaseScore:  round4(base),
			Penalty:    round4(penalty),
			FinalScore: round4(base + penalty),
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].FinalScore > out[j].FinalScore })
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

// normalize scales each feature to [0,1] across rows. A constant column
// scales to 0.
func normalize(rows []model.PitcherSeason) [][]float64 {
	out := make([][]float64, len(rows))
	for i := range out {
		out[i] = make([]float64, len(features))
	}
	for f, feat := range features {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, row := range rows {
			v := feat.value(row.Advanced)
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		span := hi - lo
		for i, row := range rows {
			if span == 0 {
				continue
			}
			out[i][f] = (feat.value(row.Advanced) - lo) / span
		}
	}
	return out
}

func baseScore(vec []float64) float64 {
	var score float64
	for f, feat := range features {
		v := vec[f]
		if feat.weight < 0 {
			v = 1 - v
		}
		score += v * math.Abs(feat.weight)
	}
	return score
}

// cosine returns 0 when either vector is all zeros.
func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
