package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/elonfeng/airace/internal/export"
	"github.com/elonfeng/airace/pkg/leaderboard"
	"github.com/elonfeng/airace/pkg/rank"
)

func newTable(headers []string, maxColWidth int) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	configs := make([]table.ColumnConfig, len(headers))
	for i, h := range headers {
		header[i] = h
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			WidthMax:    maxColWidth,
			AlignHeader: text.AlignLeft,
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)
	return tw
}

func renderBasicTable(models []leaderboard.RawModel, maxColWidth int) string {
	tw := newTable([]string{"#", "Model", "Country", "URL"}, maxColWidth)
	for i := range models {
		m := &models[i]
		tw.AppendRow(table.Row{m.Index + 1, m.Name, m.Origin, m.DetailURL})
	}
	return tw.Render()
}

func renderScoredTable(scored []rank.ScoredModel, maxColWidth int) string {
	tw := newTable([]string{"Rank", "Model", "Country", "Organization", "AvgIQ", "Value", "Unified"}, maxColWidth)
	for i := range scored {
		s := &scored[i]
		tw.AppendRow(table.Row{
			s.Rank, s.Name, s.Origin, s.Company,
			fmt.Sprintf("%.2f", s.AvgIQ),
			fmt.Sprintf("%.2f", s.Value),
			fmt.Sprintf("%.2f", s.Unified),
		})
	}
	return tw.Render()
}

func renderAggregatesTable(aggs []export.OriginAggregate) string {
	tw := newTable([]string{"Country", "Models", "Total Unified", "Avg Unified"}, 0)
	for _, a := range aggs {
		tw.AppendRow(table.Row{
			a.Origin, a.Models,
			fmt.Sprintf("%.2f", a.TotalUnified),
			fmt.Sprintf("%.2f", a.AvgUnified),
		})
	}
	return tw.Render()
}
