package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
)

// Parser collects per-page text lines, each tagged with its dominant font size.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// Options tunes collector behavior.
type Options struct {
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".md":       true,
	".markdown": true,
	".txt":      true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Synthetic sizes for formats that carry structure instead of glyph metrics.
const (
	bodyFontSize  = 12.0
	titleFontSize = 28.0
)

// headingFontSize maps a structural heading level (1-6) to a font size that
// sorts above body text and below an explicit document title.
func headingFontSize(level int) float64 {
	switch level {
	case 1:
		return 24
	case 2:
		return 20
	case 3:
		return 18
	case 4:
		return 16
	case 5:
		return 14
	case 6:
		return 13
	}
	return bodyFontSize
}

// lineCollector accumulates lines for a single logical page.
type lineCollector struct {
	page  int
	lines []doctree.TextLine
}

func (c *lineCollector) add(text string, size float64) {
	for _, l := range strings.Split(text, "\n") {
		l = strings.Join(strings.Fields(l), " ")
		if l == "" {
			continue
		}
		c.lines = append(c.lines, doctree.TextLine{Text: l, FontSize: size, Page: c.page})
	}
}

func (c *lineCollector) toPage() doctree.Page {
	texts := make([]string, len(c.lines))
	for i, l := range c.lines {
		texts[i] = l.Text
	}
	return doctree.Page{Number: c.page, Text: strings.Join(texts, "\n"), Lines: c.lines}
}
