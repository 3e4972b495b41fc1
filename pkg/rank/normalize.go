package rank

import (
	"github.com/elonfeng/airace/pkg/leaderboard"
)

// CohortStats holds one benchmark's run-scoped normalization inputs. Only
// benchmarks with at least two numeric participants ever get stats; the
// rest are excluded from the run entirely.
type CohortStats struct {
	Benchmark    string
	Participants int
	Min          float64
	Max          float64
	// Weight is participant count over the run's max participant count.
	Weight float64
}

// Cohort is the normalizer's output for one run: surviving benchmark stats
// plus, per model index, that model's normalized benchmark scores.
type Cohort struct {
	// Benchmarks lists surviving benchmarks in the order the leaderboard
	// presented them.
	Benchmarks []string
	Stats      map[string]CohortStats
	// Normalized[i] maps benchmark name to the 0-100 normalized score of
	// models[i], restricted to benchmarks the model actually reported.
	Normalized []map[string]float64
}

// Normalize computes cohort participation, min-max bounds, participation
// weights and per-model normalized scores from the raw run. benchmarks is
// the run's canonical column list; unknown columns on individual rows are
// ignored.
func Normalize(models []leaderboard.RawModel, benchmarks []string) Cohort {
	stats := make(map[string]CohortStats)

	maxParticipants := 0
	for _, b := range benchmarks {
		count := 0
		min, max := 0.0, 0.0
		for i := range models {
			c := models[i].Cell(b)
			if !c.IsNumeric() {
				continue
			}
			if count == 0 {
				min, max = c.Value, c.Value
			} else {
				if c.Value < min {
					min = c.Value
				}
				if c.Value > max {
					max = c.Value
				}
			}
			count++
		}
		// Fewer than 2 participants: nothing to normalize against, the
		// benchmark drops out of the run.
		if count < 2 {
			continue
		}
		stats[b] = CohortStats{Benchmark: b, Participants: count, Min: min, Max: max}
		if count > maxParticipants {
			maxParticipants = count
		}
	}

	var surviving []string
	for _, b := range benchmarks {
		if _, ok := stats[b]; ok {
			surviving = append(surviving, b)
		}
	}

	for _, b := range surviving {
		s := stats[b]
		s.Weight = float64(s.Participants) / float64(maxParticipants)
		stats[b] = s
	}

	normalized := make([]map[string]float64, len(models))
	for i := range models {
		scores := make(map[string]float64)
		for _, b := range surviving {
			c := models[i].Cell(b)
			if !c.IsNumeric() {
				continue
			}
			scores[b] = MinMaxScale(c.Value, stats[b].Min, stats[b].Max)
		}
		normalized[i] = scores
	}

	return Cohort{Benchmarks: surviving, Stats: stats, Normalized: normalized}
}

// MinMaxScale maps v into 0-100 relative to [min, max]. When every
// participant is tied the scale degenerates to 100 for all of them, which
// keeps the math defined without a division by zero.
func MinMaxScale(v, min, max float64) float64 {
	if max == min {
		return 100
	}
	return (v - min) / (max - min) * 100
}
