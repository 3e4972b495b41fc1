package rank

import (
	"sort"

	"github.com/elonfeng/airace/pkg/leaderboard"
)

// MissingPolicy names how a model's unreported benchmarks enter its own
// weighted capability mean. The published methodology has flipped between
// the two over time, so the choice is explicit configuration rather than a
// hardcoded assumption.
type MissingPolicy string

const (
	// MissingExclude drops unreported benchmarks from the model's mean.
	MissingExclude MissingPolicy = "exclude"
	// MissingZero counts unreported benchmarks as a zero score.
	MissingZero MissingPolicy = "zero"
)

// Weights are the run-wide scoring constants. Capability and Value blend
// the two normalized indices into Unified; InputCost and OutputCost blend
// the two price columns into the value denominator.
type Weights struct {
	Capability float64
	Value      float64
	InputCost  float64
	OutputCost float64
	Missing    MissingPolicy
}

// DefaultWeights matches the current published methodology: 70/30
// capability/value, input and output cost weighted equally, missing
// benchmarks excluded from the mean.
func DefaultWeights() Weights {
	return Weights{
		Capability: 0.7,
		Value:      0.3,
		InputCost:  1.0,
		OutputCost: 1.0,
		Missing:    MissingExclude,
	}
}

// ScoredModel is the derived, immutable record for one model in one run.
// It carries everything the history entry needs, including the verbatim
// raw cells its scores were computed from.
type ScoredModel struct {
	Name        string
	Company     string
	Origin      string
	DetailURL   string
	Description string
	Created     string

	Index int // original extraction position
	Rank  int // 1-based position after the Unified sort

	// Scores holds the model's normalized benchmark scores (0-100),
	// restricted to surviving benchmarks it reported.
	Scores map[string]float64
	// RawScores holds the verbatim cell text per benchmark column, for
	// the persisted snapshot.
	RawScores map[string]string

	RawInputCost  string
	RawOutputCost string
	BlendedCost   float64

	AvgIQ   float64
	Value   float64
	Unified float64
}

// Compose combines normalized benchmark scores into capability, value and
// Unified indices, then orders the cohort by Unified descending with the
// extraction order as the tiebreaker. The result is deterministic for
// identical inputs.
func Compose(models []leaderboard.RawModel, cohort Cohort, w Weights) []ScoredModel {
	scored := make([]ScoredModel, len(models))

	for i := range models {
		m := &models[i]
		s := ScoredModel{
			Name:          m.Name,
			Company:       m.Company,
			Origin:        m.Origin,
			DetailURL:     m.DetailURL,
			Description:   m.Description,
			Created:       m.Created,
			Index:         m.Index,
			Scores:        cohort.Normalized[i],
			RawScores:     rawScoreText(m, cohort.Benchmarks),
			RawInputCost:  m.InputCost.Text,
			RawOutputCost: m.OutputCost.Text,
		}

		s.AvgIQ = avgIQ(cohort, s.Scores, w.Missing)
		s.BlendedCost = blendedCost(m, w)
		if s.BlendedCost > 0 {
			s.Value = s.AvgIQ / s.BlendedCost
		}

		scored[i] = s
	}

	// Cohort-normalize both indices independently, then blend.
	minIQ, maxIQ := bounds(scored, func(s ScoredModel) float64 { return s.AvgIQ })
	minVal, maxVal := bounds(scored, func(s ScoredModel) float64 { return s.Value })

	for i := range scored {
		normIQ := MinMaxScale(scored[i].AvgIQ, minIQ, maxIQ)
		normVal := MinMaxScale(scored[i].Value, minVal, maxVal)
		scored[i].Unified = 10 * (w.Capability*normIQ + w.Value*normVal)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Unified > scored[j].Unified
	})
	for i := range scored {
		scored[i].Rank = i + 1
	}

	return scored
}

// avgIQ is the participation-weighted mean of the model's normalized
// scores. Under MissingExclude only reported benchmarks contribute weight;
// under MissingZero every surviving benchmark does, with unreported ones
// scoring zero.
func avgIQ(cohort Cohort, scores map[string]float64, policy MissingPolicy) float64 {
	totalWeighted := 0.0
	weightSum := 0.0

	for _, b := range cohort.Benchmarks {
		score, reported := scores[b]
		if !reported && policy != MissingZero {
			continue
		}
		weight := cohort.Stats[b].Weight
		totalWeighted += score * weight
		weightSum += weight
	}

	if weightSum == 0 {
		return 0
	}
	return totalWeighted / weightSum
}

// blendedCost combines the two price cells with the configured weights.
// Non-numeric cost cells contribute nothing, so a model with no pricing
// ends up with a zero denominator and a zero Value.
func blendedCost(m *leaderboard.RawModel, w Weights) float64 {
	cost := 0.0
	if m.InputCost.IsNumeric() {
		cost += w.InputCost * m.InputCost.Value
	}
	if m.OutputCost.IsNumeric() {
		cost += w.OutputCost * m.OutputCost.Value
	}
	return cost
}

func rawScoreText(m *leaderboard.RawModel, benchmarks []string) map[string]string {
	out := make(map[string]string, len(benchmarks))
	for _, b := range benchmarks {
		c := m.Cell(b)
		if c.Kind == leaderboard.CellMissing {
			continue
		}
		out[b] = c.Text
	}
	return out
}

func bounds(scored []ScoredModel, f func(ScoredModel) float64) (min, max float64) {
	for i := range scored {
		v := f(scored[i])
		if i == 0 {
			min, max = v, v
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
