package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// kv is one row of a field/value summary table.
type kv struct {
	field string
	value string
}

func renderSummary(title string, rows []kv) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if title != "" {
		tw.SetTitle(title)
	}
	for _, row := range rows {
		tw.AppendRow(table.Row{row.field, row.value})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
	})
	return tw.Render()
}
