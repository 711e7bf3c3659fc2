// Package segment partitions a document into sections bounded by the pages of
// its outline headings.
package segment

import (
	"slices"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
)

// FullDocumentTitle titles the single section of a document without headings.
const FullDocumentTitle = "Full Document"

// Segment splits doc into sections, one per heading. Each section runs from
// its heading's page up to the page before the next heading's page, or to the
// last page. Text on pages before the first heading is not captured.
//
// When two headings share a page, the earlier one yields a zero-page section
// (PageEnd == PageStart-1) with empty text.
func Segment(doc *doctree.Document, o doctree.Outline) []doctree.Section {
	pageCount := doc.PageCount()

	if len(o.Headings) == 0 {
		return []doctree.Section{{
			Title:     FullDocumentTitle,
			PageStart: 1,
			PageEnd:   pageCount,
			Text:      strings.TrimSpace(pageText(doc, 1, pageCount)),
		}}
	}

	headings := slices.Clone(o.Headings)
	slices.SortStableFunc(headings, func(a, b doctree.Heading) int {
		return a.Page - b.Page
	})

	sections := make([]doctree.Section, 0, len(headings))
	for i, h := range headings {
		end := pageCount
		if i+1 < len(headings) {
			end = headings[i+1].Page - 1
		}
		sections = append(sections, doctree.Section{
			Title:     h.Text,
			PageStart: h.Page,
			PageEnd:   end,
			Text:      strings.TrimSpace(pageText(doc, h.Page, end)),
		})
	}
	return sections
}

// pageText concatenates the text of pages start..end inclusive. Pages outside
// the document contribute nothing; an inverted range yields "".
func pageText(doc *doctree.Document, start, end int) string {
	start = max(start, 1)
	end = min(end, doc.PageCount())

	var sb strings.Builder
	for p := start; p <= end; p++ {
		text := doc.Pages[p-1].Text
		sb.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
