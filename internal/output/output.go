package output

import (
	"fmt"
	"os"
	"strings"

	"stormscrape/internal/reply"
)

// Header is written in place of whatever header text the model produced.
const Header = "hurricane_storm_name, date_start, date_end, list_of_areas_affected, number_of_deaths"

// Fields are the canonical column names, in order.
var Fields = strings.Split(Header, ", ")

const delimiter = ", "

// Serialize renders the table as delimited text: the canonical header, then
// one line per data row. Cells are joined with ", ". A cell containing a
// comma, a double quote or a line break is quoted, with inner quotes
// doubled, so the output reads back losslessly with any CSV reader that
// trims leading space.
func Serialize(table *reply.Table) string {
	var sb strings.Builder
	sb.WriteString(Header)
	for _, row := range table.Rows {
		sb.WriteByte('\n')
		writeRow(&sb, row)
	}
	sb.WriteByte('\n')
	return sb.String()
}

func writeRow(sb *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			sb.WriteString(delimiter)
		}
		sb.WriteString(escape(cell))
	}
}

func escape(cell string) string {
	if !needsQuotes(cell) {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

func needsQuotes(cell string) bool {
	if cell == "" {
		return false
	}
	return strings.ContainsAny(cell, ",\"\r\n") || cell[0] == ' ' || cell[0] == '\t'
}

// WriteFile serializes table to path, replacing any existing file.
func WriteFile(path string, table *reply.Table) error {
	if err := os.WriteFile(path, []byte(Serialize(table)), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
