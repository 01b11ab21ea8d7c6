package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

type OutputFormat string

const (
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
)

func printOutput(w io.Writer, format string, data any, tableHeaders []string, tableRows [][]string) error {
	tw := table.NewWriter()
	headers := make(table.Row, len(tableHeaders))
	for i, header := range tableHeaders {
		headers[i] = header
	}
	tw.AppendHeader(headers)
	for _, row := range tableRows {
		cells := make(table.Row, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		tw.AppendRow(cells)
	}

	switch OutputFormat(format) {
	case OutputFormatJSON:
		return printJSON(w, data)
	case OutputFormatTable, "":
		_, err := fmt.Fprintln(w, tw.Render())
		return err
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func printJSON(w io.Writer, data any) error {
	output, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// truncate shortens s to at most n runes for table cells
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
