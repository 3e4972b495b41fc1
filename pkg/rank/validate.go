package rank

import (
	"math"
	"strconv"

	"github.com/elonfeng/airace/pkg/leaderboard"
)

// Tolerance is the absolute float tolerance for the validator's
// re-derivation checks. Only rounding noise is forgiven.
const Tolerance = 1e-9

// Validator re-derives every composed field from raw inputs and asserts
// the structural invariants of a run snapshot before anything is persisted.
// It is all-or-nothing: the first violation aborts the run.
type Validator struct {
	Weights Weights
	// ExpectedPerGroup, when non-empty, requires each listed origin group
	// to contribute exactly that many models.
	ExpectedPerGroup map[string]int
}

// Validate checks scored against an independent recomputation from the raw
// models and against the structural rules. It returns the first violation
// found, typed per rule.
func (v Validator) Validate(models []leaderboard.RawModel, benchmarks []string, scored []ScoredModel) error {
	if err := v.checkFields(scored); err != nil {
		return err
	}
	if err := v.checkDuplicates(scored); err != nil {
		return err
	}
	if err := v.checkComposition(scored); err != nil {
		return err
	}
	return v.checkRederivation(models, benchmarks, scored)
}

func (v Validator) checkFields(scored []ScoredModel) error {
	for i := range scored {
		s := &scored[i]
		switch {
		case s.Name == "":
			return &MissingFieldError{Model: s.Name, Field: "name"}
		case s.Origin == "":
			return &MissingFieldError{Model: s.Name, Field: "origin"}
		case s.Rank <= 0:
			return &MissingFieldError{Model: s.Name, Field: "rank"}
		case s.Scores == nil:
			return &MissingFieldError{Model: s.Name, Field: "scores"}
		case math.IsNaN(s.AvgIQ) || math.IsInf(s.AvgIQ, 0):
			return &MissingFieldError{Model: s.Name, Field: "avgIq"}
		case math.IsNaN(s.Value) || math.IsInf(s.Value, 0):
			return &MissingFieldError{Model: s.Name, Field: "value"}
		case math.IsNaN(s.Unified) || math.IsInf(s.Unified, 0):
			return &MissingFieldError{Model: s.Name, Field: "unified"}
		}
	}
	return nil
}

func (v Validator) checkDuplicates(scored []ScoredModel) error {
	ranks := make(map[int]bool, len(scored))
	names := make(map[string]bool, len(scored))
	for i := range scored {
		s := &scored[i]
		if ranks[s.Rank] {
			return &DuplicateRankError{Field: "rank", Value: strconv.Itoa(s.Rank)}
		}
		ranks[s.Rank] = true

		key := s.Origin + "/" + s.Name
		if names[key] {
			return &DuplicateRankError{Field: "model", Value: key}
		}
		names[key] = true
	}
	return nil
}

func (v Validator) checkComposition(scored []ScoredModel) error {
	if len(v.ExpectedPerGroup) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for i := range scored {
		counts[scored[i].Origin]++
	}
	for group, want := range v.ExpectedPerGroup {
		if got := counts[group]; got != want {
			return &CompositionError{Group: group, Got: got, Want: want}
		}
	}
	for group := range counts {
		if _, ok := v.ExpectedPerGroup[group]; !ok {
			return &CompositionError{Group: group, Got: counts[group], Want: 0}
		}
	}
	return nil
}

// checkRederivation runs the whole normalize/compose pipeline again from
// the raw records and compares every derived number.
func (v Validator) checkRederivation(models []leaderboard.RawModel, benchmarks []string, scored []ScoredModel) error {
	cohort := Normalize(models, benchmarks)
	want := Compose(models, cohort, v.Weights)

	if len(want) != len(scored) {
		return &CompositionError{Group: "total", Got: len(scored), Want: len(want)}
	}

	for i := range scored {
		got, exp := &scored[i], &want[i]
		if got.Name != exp.Name || got.Index != exp.Index {
			return &DuplicateRankError{Field: "order", Value: got.Name}
		}
		if !within(got.AvgIQ, exp.AvgIQ) {
			return &MismatchError{Model: got.Name, Field: "avgIq", Got: got.AvgIQ, Want: exp.AvgIQ}
		}
		if !within(got.Value, exp.Value) {
			return &MismatchError{Model: got.Name, Field: "value", Got: got.Value, Want: exp.Value}
		}
		if !within(got.Unified, exp.Unified) {
			return &MismatchError{Model: got.Name, Field: "unified", Got: got.Unified, Want: exp.Unified}
		}
		for b, score := range exp.Scores {
			if !within(got.Scores[b], score) {
				return &MismatchError{Model: got.Name, Field: b, Got: got.Scores[b], Want: score}
			}
		}
		if len(got.Scores) != len(exp.Scores) {
			return &MissingFieldError{Model: got.Name, Field: "scores"}
		}
	}
	return nil
}

func within(a, b float64) bool {
	return math.Abs(a-b) <= Tolerance
}
