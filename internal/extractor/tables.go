package extractor

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

// TableInfo describes one candidate table for inspection.
type TableInfo struct {
	Index    int
	Caption  string
	Headers  []string
	Rows     int
	Markdown string
}

// Tables lists every element matching selector with its discovered header
// row and a Markdown rendering, so a user can pick a selector and column
// names before running the pipeline.
func Tables(doc *goquery.Document, selector string) ([]TableInfo, error) {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.Table())

	var infos []TableInfo
	var convErr error
	doc.Find(selector).EachWithBreak(func(i int, table *goquery.Selection) bool {
		rows := table.Find("tr")

		var headers []string
		if rows.Length() > 0 {
			headers = rowCells(rows.First())
		}
		dataRows := rows.Length() - 1
		if dataRows < 0 {
			dataRows = 0
		}

		outer, err := goquery.OuterHtml(table)
		if err != nil {
			convErr = fmt.Errorf("failed to read table %d HTML: %w", i+1, err)
			return false
		}
		markdown, err := converter.ConvertString(outer)
		if err != nil {
			convErr = fmt.Errorf("failed to convert table %d to Markdown: %w", i+1, err)
			return false
		}

		infos = append(infos, TableInfo{
			Index:    i + 1,
			Caption:  strings.TrimSpace(table.Find("caption").First().Text()),
			Headers:  headers,
			Rows:     dataRows,
			Markdown: strings.TrimSpace(markdown),
		})
		return true
	})
	if convErr != nil {
		return nil, convErr
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("%w: no element matches %q", ErrTableNotFound, selector)
	}
	return infos, nil
}
