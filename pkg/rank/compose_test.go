package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/airace/pkg/leaderboard"
)

func composeRun(t *testing.T, models []leaderboard.RawModel, benchmarks []string, w Weights) []ScoredModel {
	t.Helper()
	return Compose(models, Normalize(models, benchmarks), w)
}

func TestCompose_AvgIQIsWeightedMean(t *testing.T) {
	// GPQA has 3 participants (weight 1.0), MMLU has 2 (weight 2/3).
	models := []leaderboard.RawModel{
		rawModel("a", "US", 0, map[string]string{"GPQA": "10", "MMLU": "50"}, "1", "1"),
		rawModel("b", "US", 1, map[string]string{"GPQA": "20", "MMLU": "70"}, "1", "1"),
		rawModel("c", "US", 2, map[string]string{"GPQA": "30"}, "1", "1"),
	}

	scored := composeRun(t, models, []string{"GPQA", "MMLU"}, DefaultWeights())

	var b ScoredModel
	for _, s := range scored {
		if s.Name == "b" {
			b = s
		}
	}
	// b: GPQA normalized 50, MMLU normalized 100.
	want := (50.0*1.0 + 100.0*(2.0/3.0)) / (1.0 + 2.0/3.0)
	assert.InDelta(t, want, b.AvgIQ, 1e-9)
}

func TestCompose_MissingBenchmarkExcludedFromOwnMean(t *testing.T) {
	models := []leaderboard.RawModel{
		rawModel("full", "US", 0, map[string]string{"A": "100", "B": "0"}, "1", "1"),
		rawModel("partial", "US", 1, map[string]string{"A": "0", "B": "100"}, "1", "1"),
		rawModel("onlyA", "US", 2, map[string]string{"A": "50"}, "1", "1"),
	}

	scored := composeRun(t, models, []string{"A", "B"}, DefaultWeights())

	for _, s := range scored {
		if s.Name == "onlyA" {
			// A: min 0 max 100 -> onlyA normalizes to 50; B contributes nothing.
			assert.InDelta(t, 50.0, s.AvgIQ, 1e-9)
		}
	}
}

func TestCompose_MissingZeroPolicyPenalizes(t *testing.T) {
	models := []leaderboard.RawModel{
		rawModel("full", "US", 0, map[string]string{"A": "100", "B": "0"}, "1", "1"),
		rawModel("partial", "US", 1, map[string]string{"A": "0", "B": "100"}, "1", "1"),
		rawModel("onlyA", "US", 2, map[string]string{"A": "50"}, "1", "1"),
	}

	w := DefaultWeights()
	w.Missing = MissingZero
	scored := composeRun(t, models, []string{"A", "B"}, w)

	for _, s := range scored {
		if s.Name == "onlyA" {
			// A weight 1.0 (3 participants), B weight 2/3; B counts as zero.
			want := (50.0 * 1.0) / (1.0 + 2.0/3.0)
			assert.InDelta(t, want, s.AvgIQ, 1e-9)
		}
	}
}

func TestCompose_ValueZeroWhenCostMissingOrZero(t *testing.T) {
	models := []leaderboard.RawModel{
		rawModel("free", "US", 0, map[string]string{"A": "90"}, "0", "0"),
		rawModel("priced", "US", 1, map[string]string{"A": "80"}, "1", "3"),
		rawModel("unknown", "US", 2, map[string]string{"A": "70"}, "-", "n/a"),
	}

	scored := composeRun(t, models, []string{"A"}, DefaultWeights())

	for _, s := range scored {
		switch s.Name {
		case "free", "unknown":
			assert.Equal(t, 0.0, s.Value, "model %s", s.Name)
		case "priced":
			assert.InDelta(t, s.AvgIQ/4.0, s.Value, 1e-9)
		}
	}
}

func TestCompose_CostBlendWeights(t *testing.T) {
	models := []leaderboard.RawModel{
		rawModel("a", "US", 0, map[string]string{"A": "10"}, "2", "4"),
		rawModel("b", "US", 1, map[string]string{"A": "20"}, "2", "4"),
	}

	w := DefaultWeights()
	w.InputCost = 0.25
	w.OutputCost = 0.75
	scored := composeRun(t, models, []string{"A"}, w)

	for _, s := range scored {
		assert.InDelta(t, 0.25*2+0.75*4, s.BlendedCost, 1e-9)
	}
}

func TestCompose_UnifiedScaleAndOrdering(t *testing.T) {
	models := []leaderboard.RawModel{
		rawModel("worst", "US", 0, map[string]string{"A": "10"}, "10", "10"),
		rawModel("mid", "US", 1, map[string]string{"A": "20"}, "2", "2"),
		rawModel("best", "US", 2, map[string]string{"A": "30"}, "1", "1"),
	}

	scored := composeRun(t, models, []string{"A"}, DefaultWeights())

	require.Len(t, scored, 3)
	assert.Equal(t, "best", scored[0].Name)
	assert.Equal(t, 1, scored[0].Rank)
	// Best-on-both-axes lands at the top of the 0-1000 scale.
	assert.InDelta(t, 1000.0, scored[0].Unified, 1e-9)
	assert.GreaterOrEqual(t, scored[0].Unified, scored[1].Unified)
	assert.GreaterOrEqual(t, scored[1].Unified, scored[2].Unified)
}

func TestCompose_TiesKeepExtractionOrder(t *testing.T) {
	// Identical rows tie on Unified; extraction order must break the tie.
	models := []leaderboard.RawModel{
		rawModel("first", "US", 0, map[string]string{"A": "50"}, "1", "1"),
		rawModel("second", "CN", 1, map[string]string{"A": "50"}, "1", "1"),
	}

	scored := composeRun(t, models, []string{"A"}, DefaultWeights())

	assert.Equal(t, "first", scored[0].Name)
	assert.Equal(t, "second", scored[1].Name)
}

func TestCompose_Deterministic(t *testing.T) {
	models := []leaderboard.RawModel{
		rawModel("a", "US", 0, map[string]string{"A": "13.7", "B": "91.2"}, "1.25", "2.5"),
		rawModel("b", "CN", 1, map[string]string{"A": "77.1", "B": "-"}, "0.5", "1.5"),
		rawModel("c", "US", 2, map[string]string{"A": "55.5", "B": "60.1"}, "3", "9"),
	}

	first := composeRun(t, models, []string{"A", "B"}, DefaultWeights())
	second := composeRun(t, models, []string{"A", "B"}, DefaultWeights())

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.Equal(t, first[i].AvgIQ, second[i].AvgIQ)
		assert.Equal(t, first[i].Value, second[i].Value)
		assert.Equal(t, first[i].Unified, second[i].Unified)
	}
}

func TestCompose_AllPlaceholderModelDoesNotCrash(t *testing.T) {
	models := []leaderboard.RawModel{
		rawModel("a", "US", 0, map[string]string{"B": "10"}, "1", "1"),
		rawModel("b", "US", 1, map[string]string{"B": "20"}, "1", "1"),
		rawModel("c", "US", 2, map[string]string{"B": "30"}, "1", "1"),
		rawModel("ghost", "CN", 3, map[string]string{"B": "-"}, "1", "1"),
	}

	scored := composeRun(t, models, []string{"B"}, DefaultWeights())

	require.Len(t, scored, 4)
	for _, s := range scored {
		if s.Name == "ghost" {
			assert.Empty(t, s.Scores)
			assert.Equal(t, 0.0, s.AvgIQ)
		}
	}
}
