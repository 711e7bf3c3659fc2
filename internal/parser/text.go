package parser

import (
	"io"

	"github.com/dgallion1/docrank/internal/doctree"
)

// TextParser handles plain text files. Form feeds separate pages.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &doctree.Document{ID: filename, Pages: splitFormFeedPages(string(src))}, nil
}
