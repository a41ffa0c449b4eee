package reply

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// HeaderLine must appear verbatim, alone on its line.
	HeaderLine = "| Storm Name | Date Start | Date End | Areas Affected | Deaths |"
	// SeparatorLine must immediately follow HeaderLine.
	SeparatorLine = "| --- | --- | --- | --- | --- |"
	// Columns is the number of cells in every row.
	Columns = 5

	placeholder = "{}"
)

var ErrTableNotFound = errors.New("the expected table format was not found in the model output")

// NotFoundError describes how far the recognizer got before giving up.
type NotFoundError struct {
	Reason string
	Line   int // 1-based line of the closest header candidate, 0 if none
}

func (e *NotFoundError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", ErrTableNotFound, e.Reason)
	}
	return fmt.Sprintf("%s: %s (header at line %d)", ErrTableNotFound, e.Reason, e.Line)
}

func (e *NotFoundError) Unwrap() error { return ErrTableNotFound }

// Table is the recognized block of a reply.
type Table struct {
	// Span is the matched text: header, separator and data lines.
	Span string
	// Rows holds the trimmed cells of each data line.
	Rows [][]string
}

// Clean trims the accumulated reply and drops the "{}" placeholder some
// streaming APIs send as their final event payload.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, placeholder, "")
	return strings.TrimSpace(s)
}

type state int

const (
	seekHeader state = iota
	expectSeparator
	readRows
)

// failureReasons describes a candidate that died in the given state. Later
// states rank higher when choosing which failure to report.
var failureReasons = map[state]string{
	seekHeader:      "no header line",
	expectSeparator: "header line not followed by the separator line",
	readRows:        "separator line not followed by any data row",
}

// Parse scans s line by line for the first block made of HeaderLine,
// SeparatorLine and one or more data rows of Columns pipe-delimited cells.
// Text around the block is ignored. If no complete block exists the error
// wraps ErrTableNotFound.
func Parse(s string) (*Table, error) {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	var (
		st       = seekHeader
		start    int
		rows     [][]string
		furthest = seekHeader
		failLine = 0
	)

	fail := func() {
		if st > furthest {
			furthest = st
			failLine = start + 1
		}
		st = seekHeader
		rows = nil
	}

	for i, line := range lines {
		switch st {
		case expectSeparator:
			if line == SeparatorLine {
				st = readRows
				continue
			}
			fail()
		case readRows:
			if cells, ok := SplitRow(line); ok {
				rows = append(rows, cells)
				continue
			}
			if len(rows) > 0 {
				return newTable(lines[start:i], rows), nil
			}
			fail()
		}

		// seekHeader, possibly re-entered on the line that broke a candidate.
		if line == HeaderLine {
			st = expectSeparator
			start = i
		}
	}

	if st == readRows && len(rows) > 0 {
		return newTable(lines[start:], rows), nil
	}
	if st != seekHeader {
		fail()
	}

	return nil, &NotFoundError{Reason: failureReasons[furthest], Line: failLine}
}

func newTable(lines []string, rows [][]string) *Table {
	return &Table{
		Span: strings.Join(lines, "\n"),
		Rows: rows,
	}
}

// SplitRow parses "| a | b | c | d | e |" into its trimmed cells. Cells may
// be empty but cannot contain a pipe.
func SplitRow(line string) ([]string, bool) {
	if len(line) < 2 || line[0] != '|' || line[len(line)-1] != '|' {
		return nil, false
	}
	parts := strings.Split(line[1:len(line)-1], "|")
	if len(parts) != Columns {
		return nil, false
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts, true
}
