// Package export writes the derived, re-creatable artifacts of a full
// extraction run: CSV tables, per-origin aggregates and a SQLite archive.
// None of these are sources of truth; the history log is.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/elonfeng/airace/pkg/rank"
)

// WriteCombinedCSV writes the run's ordered model table: identity, the raw
// benchmark cells, then the derived scores. The benchmark column set is
// dynamic per run.
func WriteCombinedCSV(path string, benchmarks []string, scored []rank.ScoredModel) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"Rank", "Model", "Country", "Organization", "Input $/M", "Output $/M"}
	header = append(header, benchmarks...)
	header = append(header, "AvgIQ", "Value", "Unified")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range scored {
		s := &scored[i]
		row := []string{
			strconv.Itoa(s.Rank), s.Name, s.Origin, s.Company,
			s.RawInputCost, s.RawOutputCost,
		}
		for _, b := range benchmarks {
			row = append(row, s.RawScores[b])
		}
		row = append(row,
			formatScore(s.AvgIQ),
			formatScore(s.Value),
			formatScore(s.Unified),
		)
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// WriteAggregatesCSV writes one row per origin group: model count, total
// and mean Unified.
func WriteAggregatesCSV(path string, scored []rank.ScoredModel) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Country", "Models", "TotalUnified", "AvgUnified"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, agg := range Aggregate(scored) {
		row := []string{
			agg.Origin,
			strconv.Itoa(agg.Models),
			formatScore(agg.TotalUnified),
			formatScore(agg.AvgUnified),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s row: %w", agg.Origin, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// OriginAggregate summarizes one origin group's Unified scores.
type OriginAggregate struct {
	Origin       string
	Models       int
	TotalUnified float64
	AvgUnified   float64
}

// Aggregate computes per-origin summaries in first-seen order, which
// follows the run's ranked order.
func Aggregate(scored []rank.ScoredModel) []OriginAggregate {
	index := make(map[string]int)
	var out []OriginAggregate

	for i := range scored {
		s := &scored[i]
		pos, ok := index[s.Origin]
		if !ok {
			pos = len(out)
			index[s.Origin] = pos
			out = append(out, OriginAggregate{Origin: s.Origin})
		}
		out[pos].Models++
		out[pos].TotalUnified += s.Unified
	}

	for i := range out {
		out[i].AvgUnified = out[i].TotalUnified / float64(out[i].Models)
	}
	return out
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
