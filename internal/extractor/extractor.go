package extractor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultSelector matches the first sortable data table of a Wikipedia article.
const DefaultSelector = "table.wikitable"

// ErrTableNotFound is returned when the selector matches nothing.
var ErrTableNotFound = errors.New("table not found")

// Record is one storm projected onto the four fields the pipeline carries.
// Values are the document's text, unparsed.
type Record struct {
	StormName     string
	DatesActive   string
	AreasAffected string
	Deaths        string
}

// Fields returns the record values in projection order.
func (r Record) Fields() []string {
	return []string{r.StormName, r.DatesActive, r.AreasAffected, r.Deaths}
}

// Result holds the extracted records and the source header names they were
// projected from, in projection order.
type Result struct {
	Headers []string
	Records []Record
}

// Extract finds the first table matching selector, learns its column names
// from the first row and projects every following row onto columns.
func Extract(doc *goquery.Document, selector string, columns Columns) (*Result, error) {
	table := doc.Find(selector).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no element matches %q", ErrTableNotFound, selector)
	}

	rows := table.Find("tr")
	if rows.Length() == 0 {
		return nil, fmt.Errorf("%w: %q has no rows", ErrTableNotFound, selector)
	}

	headers := rowCells(rows.First())
	projection, err := Negotiate(headers, columns)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, rows.Length()-1)
	rows.Slice(1, goquery.ToEnd).Each(func(i int, row *goquery.Selection) {
		records = append(records, projection.Project(rowCells(row)))
	})

	return &Result{
		Headers: projection.Headers(),
		Records: records,
	}, nil
}

// rowCells returns the normalized text of every th/td directly in row.
func rowCells(row *goquery.Selection) []string {
	var cells []string
	row.ChildrenFiltered("th, td").Each(func(i int, cell *goquery.Selection) {
		cells = append(cells, CellText(cell))
	})
	return cells
}

// CellText concatenates the trimmed text of every descendant text node, so
// markup splitting a word ("Storm<br>name") does not leave whitespace
// behind. Non-breaking spaces become ordinary spaces.
func CellText(sel *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range sel.Nodes {
		strippedText(n, &sb)
	}
	return strings.ReplaceAll(sb.String(), "\u00a0", " ")
}

func strippedText(node *html.Node, sb *strings.Builder) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		sb.WriteString(strings.TrimSpace(node.Data))
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		strippedText(child, sb)
	}
}
