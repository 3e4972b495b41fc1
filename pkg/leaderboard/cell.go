package leaderboard

import (
	"math"
	"strconv"
	"strings"
)

// CellKind classifies a scraped table cell.
type CellKind int

const (
	// CellMissing means the column was absent from the row entirely.
	CellMissing CellKind = iota
	// CellPlaceholder means the cell held a non-numeric marker ("-", "n/a", ...).
	CellPlaceholder
	// CellNumeric means the cell parsed to a finite number.
	CellNumeric
)

// placeholders are the markers the upstream table uses for missing scores.
var placeholders = map[string]bool{
	"":     true,
	"-":    true,
	"n/a":  true,
	"N/A":  true,
	"null": true,
	"None": true,
}

// RawCell preserves a scraped cell verbatim alongside its numeric
// interpretation. Text is always exactly what the page showed; Value is
// meaningful only when Kind == CellNumeric.
type RawCell struct {
	Kind  CellKind
	Text  string
	Value float64
}

// ParseCell interprets a raw cell string. Currency symbols, percent signs
// and thousands separators are stripped before the numeric parse; anything
// that still fails to parse is a placeholder.
func ParseCell(text string) RawCell {
	trimmed := strings.TrimSpace(text)
	if placeholders[trimmed] {
		return RawCell{Kind: CellPlaceholder, Text: text}
	}

	cleaned := strings.NewReplacer("%", "", ",", "", "$", "").Replace(trimmed)
	cleaned = strings.TrimSpace(cleaned)
	if placeholders[cleaned] {
		return RawCell{Kind: CellPlaceholder, Text: text}
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		// ParseFloat accepts "Inf" and "NaN"; only finite values may
		// participate in normalization.
		return RawCell{Kind: CellPlaceholder, Text: text}
	}
	return RawCell{Kind: CellNumeric, Text: text, Value: v}
}

// MissingCell returns the cell used when a column never appeared in a row.
func MissingCell() RawCell {
	return RawCell{Kind: CellMissing}
}

// IsNumeric reports whether the cell carries a usable score.
func (c RawCell) IsNumeric() bool { return c.Kind == CellNumeric }
