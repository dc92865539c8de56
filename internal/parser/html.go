package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	apperrors "github.com/prachitbhike/thirteen/internal/errors"
)

// parseHTML handles the loosely-structured path. Filers pick their own
// column order, so the parser locates the table whose header row names
// issuer/identifier-like columns and then works positionally off the
// CUSIP cell of each row. Rows without a locatable valid identifier are
// silently skipped.
func parseHTML(raw string) (*Filing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnsupportedFormat, err)
	}

	table := findInformationTable(doc)
	if table == nil {
		return nil, apperrors.ErrNoInformationTable
	}

	filing := &Filing{
		Cover:   parseCover(raw),
		Dialect: DialectHTML,
	}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if h, ok := holdingFromTokens(cells); ok {
			filing.Holdings = append(filing.Holdings, h)
		}
	})

	if len(filing.Holdings) == 0 {
		return nil, apperrors.ErrNoInformationTable
	}
	return summarize(filing), nil
}

// findInformationTable returns the first table whose header row mentions
// an issuer or identifier column, or nil if none does.
func findInformationTable(doc *goquery.Document) *goquery.Selection {
	var table *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		header := strings.ToLower(t.Find("tr").First().Text())
		if strings.Contains(header, "cusip") || strings.Contains(header, "issuer") {
			table = t
			return false
		}
		return true
	})
	return table
}
