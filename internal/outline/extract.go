// Package outline derives a document title and heading list from collected
// text lines, and reads/writes the outline JSON format.
package outline

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docrank/internal/doctree"
)

// UntitledDocument is the title of a document with no collected text.
const UntitledDocument = "Untitled Document"

// Extract builds the outline of a collected document. It is deterministic:
// the same document always yields the same title and headings.
func Extract(doc *doctree.Document) doctree.Outline {
	lines := doc.Lines()

	out := doctree.Outline{
		Title:    selectTitle(lines),
		Headings: []doctree.Heading{},
	}
	for _, l := range lines {
		level, ok := Classify(l.Text)
		if !ok {
			continue
		}
		out.Headings = append(out.Headings, doctree.Heading{
			Level: level,
			Text:  strings.TrimSpace(l.Text),
			Page:  l.Page,
		})
	}
	return out
}

// selectTitle picks the longest line set in the largest font; ties keep the
// first line encountered.
func selectTitle(lines []doctree.TextLine) string {
	bySize := make(map[float64][]string)
	largest := 0.0
	for _, l := range lines {
		text := strings.TrimSpace(l.Text)
		if text == "" {
			continue
		}
		if len(bySize) == 0 || l.FontSize > largest {
			largest = l.FontSize
		}
		bySize[l.FontSize] = append(bySize[l.FontSize], text)
	}

	title := ""
	for _, text := range bySize[largest] {
		if utf8.RuneCountInString(text) > utf8.RuneCountInString(title) {
			title = text
		}
	}
	if title == "" {
		return UntitledDocument
	}
	return title
}
