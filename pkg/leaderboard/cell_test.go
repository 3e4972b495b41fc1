package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCell_Numeric(t *testing.T) {
	c := ParseCell("87.5")
	assert.True(t, c.IsNumeric())
	assert.Equal(t, 87.5, c.Value)
	assert.Equal(t, "87.5", c.Text)
}

func TestParseCell_StripsFormatting(t *testing.T) {
	assert.Equal(t, 92.3, ParseCell("92.3%").Value)
	assert.Equal(t, 1250.0, ParseCell("1,250").Value)
	assert.Equal(t, 15.0, ParseCell("$15.00").Value)
	assert.Equal(t, 2.5, ParseCell("  2.5  ").Value)
}

func TestParseCell_Placeholders(t *testing.T) {
	for _, text := range []string{"", "-", "n/a", "N/A", "null", "None"} {
		c := ParseCell(text)
		assert.Equal(t, CellPlaceholder, c.Kind, "text %q", text)
		assert.Equal(t, text, c.Text, "text %q", text)
	}
}

func TestParseCell_NonFiniteIsPlaceholder(t *testing.T) {
	for _, text := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "Infinity"} {
		c := ParseCell(text)
		assert.Equal(t, CellPlaceholder, c.Kind, "text %q", text)
		assert.Equal(t, text, c.Text, "text %q", text)
	}
}

func TestParseCell_NonNumericIsPlaceholder(t *testing.T) {
	c := ParseCell("coming soon")
	assert.Equal(t, CellPlaceholder, c.Kind)
	assert.Equal(t, "coming soon", c.Text)
}

func TestParseCell_PreservesVerbatimText(t *testing.T) {
	// Raw preservation: the parsed view never rewrites the cell.
	c := ParseCell("88.1%")
	assert.Equal(t, "88.1%", c.Text)
}

func TestRawModel_CellMissing(t *testing.T) {
	m := RawModel{Cells: map[string]RawCell{"GPQA": ParseCell("50")}}
	assert.Equal(t, CellMissing, m.Cell("MMLU").Kind)
	assert.True(t, m.Cell("GPQA").IsNumeric())
}
