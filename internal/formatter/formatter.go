package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"stormscrape/internal/extractor"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Formats lists the accepted values of Format's format argument.
var Formats = []string{"text", "markdown", "csv", "json"}

// Format renders extracted records for the prompt.
func Format(result *extractor.Result, format string) (string, error) {
	switch format {
	case "text":
		return ToText(result), nil
	case "markdown":
		return newTable(result).RenderMarkdown(), nil
	case "csv":
		return ToCSV(result)
	case "json":
		b, err := ToJSON(result)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported data format: %s", format)
	}
}

// ToText renders records as borderless aligned columns under their source
// header names, the way a data frame prints without its index.
func ToText(result *extractor.Result) string {
	t := newTable(result)
	style := t.Style()
	style.Options = table.OptionsNoBordersAndSeparators
	return t.Render()
}

// ToCSV renders records as RFC 4180 CSV under their source header names.
func ToCSV(result *extractor.Result) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	header := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		header = append(header, headerAt(result.Headers, i))
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range result.Records {
		if err := w.Write(r.Fields()); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}
	return sb.String(), nil
}

// ToJSON renders records as an array of objects keyed by source header names.
func ToJSON(result *extractor.Result) ([]byte, error) {
	out := make([]map[string]string, 0, len(result.Records))
	for _, r := range result.Records {
		row := make(map[string]string, len(result.Headers))
		for i, v := range r.Fields() {
			row[headerAt(result.Headers, i)] = v
		}
		out = append(out, row)
	}
	return json.MarshalIndent(out, "", "  ")
}

// Preview renders arbitrary rows as a boxed table for the terminal.
func Preview(headers []string, rows [][]string) string {
	t := table.NewWriter()
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	t.SetStyle(style)
	t.AppendHeader(toRow(headers))
	for _, r := range rows {
		t.AppendRow(toRow(r))
	}
	return t.Render()
}

func newTable(result *extractor.Result) table.Writer {
	t := table.NewWriter()
	style := table.StyleDefault
	style.Format.Header = text.FormatDefault
	t.SetStyle(style)

	header := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		header = append(header, headerAt(result.Headers, i))
	}
	t.AppendHeader(toRow(header))
	for _, r := range result.Records {
		t.AppendRow(toRow(r.Fields()))
	}
	return t
}

func headerAt(headers []string, i int) string {
	if i < len(headers) && headers[i] != "" {
		return headers[i]
	}
	return extractor.Field(i).String()
}

func toRow(values []string) table.Row {
	row := make(table.Row, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
