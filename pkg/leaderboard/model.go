package leaderboard

import "fmt"

// RawModel is one leaderboard row exactly as scraped. Cells map benchmark
// column names to their verbatim cell content; nothing here is inferred,
// defaulted, or coerced. A RawModel is created once per run and never
// mutated afterwards.
type RawModel struct {
	Name      string
	Company   string
	Origin    string
	DetailURL string

	// Index is the 0-based position in the run's combined extraction
	// order. It is the tiebreaker for the final stable sort.
	Index int

	Cells      map[string]RawCell
	InputCost  RawCell
	OutputCost RawCell

	// Enrichment fields, populated only by a detail-page pass; empty when
	// enrichment is disabled or failed for this model.
	Description string
	Created     string
}

// Cell returns the named benchmark cell, or a missing cell if the column
// never appeared for this row.
func (m *RawModel) Cell(benchmark string) RawCell {
	if c, ok := m.Cells[benchmark]; ok {
		return c
	}
	return MissingCell()
}

// FetchError reports that the upstream source stayed unreachable (or kept
// returning malformed responses) through every retry attempt.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// EmptyResultError reports that the source answered but yielded zero rows.
// It is distinct from FetchError so a healthy-but-empty page never turns
// into a silent empty history entry.
type EmptyResultError struct {
	URL string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("source %s returned no leaderboard rows", e.URL)
}
