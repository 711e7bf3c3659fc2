package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraph styles stand in for glyph sizes:
// "Title" sorts above "Heading N", which sorts above body paragraphs.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "docrank-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	c := &lineCollector{page: 1}
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		c.add(docxParagraphText(para), docxFontSize(docxStyle(para)))
	}

	return &doctree.Document{ID: filename, Pages: []doctree.Page{c.toPage()}}, nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
}

func docxFontSize(style string) float64 {
	if style == "title" {
		return titleFontSize
	}
	if strings.HasPrefix(style, "heading") && len(style) == len("heading")+1 {
		if lvl := int(style[len(style)-1] - '0'); lvl >= 1 && lvl <= 6 {
			return headingFontSize(lvl)
		}
	}
	return bodyFontSize
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
