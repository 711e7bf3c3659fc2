package parser

import (
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFParser handles PDF files. Lines and font sizes come from the positioned
// glyphs of ledongthuc/pdf; page text falls back to pdftotext when enabled.
type PDFParser struct {
	FallbackPdftotext bool
}

// Glyphs further apart than this fraction of the font size are word-separated.
const wordGapRatio = 0.15

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docrank-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	pages, err := collectPDFPages(tmpPath)
	if err != nil && p.FallbackPdftotext {
		pages, err = collectPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	// The glyph reader skips trailing pages it cannot decode; pad to the
	// structural page count so segmentation covers the whole file.
	if n, err := countPages(tmpPath); err == nil {
		for len(pages) < n {
			pages = append(pages, doctree.Page{Number: len(pages) + 1})
		}
	}

	return &doctree.Document{ID: filename, Pages: pages}, nil
}

func countPages(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(f, conf)
}

func collectPDFPages(path string) ([]doctree.Page, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]doctree.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		pg := doctree.Page{Number: i}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, pg)
			continue
		}
		if glyphs, err := pageGlyphs(page); err == nil {
			pg.Lines = glyphsToLines(glyphs, i)
		}
		pg.Text = joinLines(pg.Lines)
		if pg.Text == "" {
			if text, err := page.GetPlainText(nil); err == nil {
				pg.Text = text
			}
		}
		pages = append(pages, pg)
	}
	return pages, nil
}

// pageGlyphs returns the positioned glyphs of a page in content-stream order.
// The content interpreter panics on malformed operators.
func pageGlyphs(page pdflib.Page) (glyphs []pdflib.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read page content: %v", r)
		}
	}()
	return page.Content().Text, nil
}

// Baselines closer than this fraction of the font size belong to one line.
const lineTolerance = 0.5

// glyphsToLines groups glyphs into lines by baseline, keeping stream order.
// Each line's font size is the largest size among its non-blank glyphs.
func glyphsToLines(glyphs []pdflib.Text, pageNum int) []doctree.TextLine {
	var lines []doctree.TextLine
	var sb strings.Builder
	var maxSize, lineY, prevX, prevEnd float64
	started, pendingSpace := false, false

	flush := func() {
		text := strings.Join(strings.Fields(sb.String()), " ")
		if text != "" {
			lines = append(lines, doctree.TextLine{Text: text, FontSize: maxSize, Page: pageNum})
		}
		sb.Reset()
		maxSize = 0
		started, pendingSpace = false, false
	}

	for _, t := range glyphs {
		if t.S == "" {
			continue
		}
		if strings.TrimSpace(t.S) == "" {
			pendingSpace = sb.Len() > 0
			continue
		}
		size := math.Max(t.FontSize, 1)
		if started && math.Abs(t.Y-lineY) > lineTolerance*math.Max(size, maxSize) {
			flush()
		}
		if !started {
			started = true
			lineY = t.Y
		} else if pendingSpace || t.X-prevEnd > wordGapRatio*size || t.X < prevX {
			sb.WriteByte(' ')
		}
		pendingSpace = false
		sb.WriteString(t.S)
		prevX = t.X
		prevEnd = t.X + t.W
		if t.FontSize > maxSize {
			maxSize = t.FontSize
		}
	}
	flush()
	return lines
}

func joinLines(lines []doctree.TextLine) string {
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	return strings.Join(texts, "\n")
}

// collectPdftotext has no glyph metrics; every line gets the body size.
func collectPdftotext(path string) ([]doctree.Page, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return splitFormFeedPages(string(out)), nil
}

// splitFormFeedPages splits text on form feeds, one page per segment.
func splitFormFeedPages(text string) []doctree.Page {
	raw := strings.Split(text, "\f")
	// pdftotext terminates the last page with a form feed.
	if len(raw) > 1 && strings.TrimSpace(raw[len(raw)-1]) == "" {
		raw = raw[:len(raw)-1]
	}
	pages := make([]doctree.Page, 0, len(raw))
	for i, body := range raw {
		c := &lineCollector{page: i + 1}
		c.add(body, bodyFontSize)
		pg := c.toPage()
		pg.Text = body
		pages = append(pages, pg)
	}
	return pages
}
