package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"volumegen/internal/domain"
	"volumegen/internal/pipeline"
)

// renderSummary lays out a run report as a two-column table.
func renderSummary(r *pipeline.Report) string {
	encoding := r.Encoding
	if encoding == "" {
		encoding = "-"
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Field", "Value"})
	tw.AppendRows([]table.Row{
		{"Source", r.Source},
		{"Format", string(r.Format)},
		{"Encoding", encoding},
		{"Rows parsed", r.RowsParsed},
		{"Rows skipped", r.RowsSkipped},
		{"Rows dropped", r.RowsDropped},
		{"Rows written", r.RowsWritten},
		{"Columns", resolvedColumns(r)},
	})
	if len(r.Missing) > 0 {
		missing := make([]string, len(r.Missing))
		for i, d := range r.Missing {
			missing[i] = string(d)
		}
		tw.AppendRow(table.Row{"Missing", strings.Join(missing, ", ")})
	}
	if len(r.Attempts) > 0 {
		tw.AppendRow(table.Row{"Failed attempts", len(r.Attempts)})
	}
	tw.AppendRow(table.Row{"Outputs", strings.Join(r.Sinks, ", ")})
	tw.AppendRow(table.Row{"Duration", r.Duration.Round(time.Millisecond).String()})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func resolvedColumns(r *pipeline.Report) string {
	var parts []string
	for _, dim := range domain.AllDimensions {
		if col, ok := r.Resolved[dim]; ok {
			parts = append(parts, fmt.Sprintf("%s=%s", dim, col))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
