package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_HeadingSizes(t *testing.T) {
	input := `# Title

Intro text.

## 1. Section A

Section A content.

### Subsection A1
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := doc.Lines()
	want := []struct {
		text string
		size float64
	}{
		{"Title", 24},
		{"Intro text.", bodyFontSize},
		{"1. Section A", 20},
		{"Section A content.", bodyFontSize},
		{"Subsection A1", 18},
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %+v", len(want), len(lines), lines)
	}
	for i, w := range want {
		if lines[i].Text != w.text {
			t.Errorf("line[%d]: expected %q, got %q", i, w.text, lines[i].Text)
		}
		if lines[i].FontSize != w.size {
			t.Errorf("line[%d]: expected size %v, got %v", i, w.size, lines[i].FontSize)
		}
	}
}

func TestMarkdownParser_PageText(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader("# A\n\nbody one\nbody two\n"), "x.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.PageCount() != 1 {
		t.Fatalf("expected single page, got %d", doc.PageCount())
	}
	if !strings.Contains(doc.Pages[0].Text, "body one") || !strings.Contains(doc.Pages[0].Text, "body two") {
		t.Errorf("expected page text to carry paragraph lines, got %q", doc.Pages[0].Text)
	}
}

func TestHTMLParser_TitleAndHeadings(t *testing.T) {
	input := `<html><head><title>Field Guide</title></head>
<body><h1>1. Overview</h1><p>Some text.</p><h2>1.1 Scope</h2><script>x()</script></body></html>`
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "guide.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := doc.Lines()
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %+v", len(lines), lines)
	}
	if lines[0].Text != "Field Guide" || lines[0].FontSize != titleFontSize {
		t.Errorf("expected title line first, got %+v", lines[0])
	}
	if lines[3].Text != "1.1 Scope" || lines[3].FontSize != headingFontSize(2) {
		t.Errorf("expected h2 line last, got %+v", lines[3])
	}
}
