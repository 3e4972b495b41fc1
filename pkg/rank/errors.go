package rank

import "fmt"

// CompositionError reports a run whose per-origin-group model counts do
// not match the configured policy.
type CompositionError struct {
	Group string
	Got   int
	Want  int
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("group %s has %d models, want %d", e.Group, e.Got, e.Want)
}

// DuplicateRankError reports a duplicated rank or identity inside a single
// run snapshot.
type DuplicateRankError struct {
	Field string // "rank" or "model"
	Value string
}

func (e *DuplicateRankError) Error() string {
	return fmt.Sprintf("duplicate %s %q in run", e.Field, e.Value)
}

// MissingFieldError reports a scored record missing a required field.
type MissingFieldError struct {
	Model string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("model %q missing required field %s", e.Model, e.Field)
}

// MismatchError reports a composed value that the validator could not
// reproduce from the raw inputs within tolerance.
type MismatchError struct {
	Model string
	Field string
	Got   float64
	Want  float64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("model %q field %s: composed %g, rederived %g", e.Model, e.Field, e.Got, e.Want)
}
