package segment

import (
	"fmt"
	"sort"
	"testing"

	"github.com/dgallion1/docrank/internal/doctree"
)

func makeDoc(pages int) *doctree.Document {
	doc := &doctree.Document{ID: "doc.pdf"}
	for i := 1; i <= pages; i++ {
		doc.Pages = append(doc.Pages, doctree.Page{Number: i, Text: fmt.Sprintf("page %d text", i)})
	}
	return doc
}

func TestSegment_ThreePagesTwoHeadings(t *testing.T) {
	doc := makeDoc(3)
	o := doctree.Outline{Headings: []doctree.Heading{
		{Level: doctree.H1, Text: "1. Intro", Page: 1},
		{Level: doctree.H1, Text: "2. Methods", Page: 2},
	}}

	got := Segment(doc, o)
	if len(got) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(got))
	}
	if got[0].Title != "1. Intro" || got[0].PageStart != 1 || got[0].PageEnd != 1 {
		t.Errorf("section A: got %+v", got[0])
	}
	if got[0].Text != "page 1 text" {
		t.Errorf("section A text: got %q", got[0].Text)
	}
	if got[1].Title != "2. Methods" || got[1].PageStart != 2 || got[1].PageEnd != 3 {
		t.Errorf("section B: got %+v", got[1])
	}
	if got[1].Text != "page 2 text\npage 3 text" {
		t.Errorf("section B text: got %q", got[1].Text)
	}
}

func TestSegment_NoHeadingsYieldsFullDocument(t *testing.T) {
	doc := makeDoc(4)
	got := Segment(doc, doctree.Outline{Title: "x"})
	if len(got) != 1 {
		t.Fatalf("expected 1 section, got %d", len(got))
	}
	s := got[0]
	if s.Title != FullDocumentTitle || s.PageStart != 1 || s.PageEnd != 4 {
		t.Errorf("unexpected full-document section: %+v", s)
	}
	if s.Text != "page 1 text\npage 2 text\npage 3 text\npage 4 text" {
		t.Errorf("unexpected text: %q", s.Text)
	}
}

func TestSegment_SamePageHeadingsYieldZeroPageSection(t *testing.T) {
	doc := makeDoc(3)
	o := doctree.Outline{Headings: []doctree.Heading{
		{Level: doctree.H1, Text: "1. A", Page: 2},
		{Level: doctree.H2, Text: "1.1 B", Page: 2},
	}}
	got := Segment(doc, o)
	if len(got) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(got))
	}
	if got[0].PageStart != 2 || got[0].PageEnd != 1 || got[0].Text != "" {
		t.Errorf("expected zero-page empty section, got %+v", got[0])
	}
	if got[1].PageStart != 2 || got[1].PageEnd != 3 {
		t.Errorf("unexpected second section: %+v", got[1])
	}
}

func TestSegment_SortsByPageStably(t *testing.T) {
	doc := makeDoc(5)
	o := doctree.Outline{Headings: []doctree.Heading{
		{Text: "late", Page: 4},
		{Text: "first-on-2", Page: 2},
		{Text: "second-on-2", Page: 2},
		{Text: "early", Page: 1},
	}}
	got := Segment(doc, o)
	order := []string{"early", "first-on-2", "second-on-2", "late"}
	for i, title := range order {
		if got[i].Title != title {
			t.Errorf("section %d: expected %q, got %q", i, title, got[i].Title)
		}
	}
	// Input outline is not reordered.
	if o.Headings[0].Text != "late" {
		t.Error("expected input headings to be left untouched")
	}
}

func TestSegment_PartitionsPagesFromFirstHeading(t *testing.T) {
	doc := makeDoc(9)
	o := doctree.Outline{Headings: []doctree.Heading{
		{Text: "a", Page: 2},
		{Text: "b", Page: 5},
		{Text: "c", Page: 6},
		{Text: "d", Page: 9},
	}}
	got := Segment(doc, o)

	var starts, headingPages []int
	for _, h := range o.Headings {
		headingPages = append(headingPages, h.Page)
	}
	for _, s := range got {
		starts = append(starts, s.PageStart)
	}
	sort.Ints(starts)
	sort.Ints(headingPages)
	for i := range starts {
		if starts[i] != headingPages[i] {
			t.Fatalf("section starts %v do not match heading pages %v", starts, headingPages)
		}
	}

	// Contiguous coverage from the first heading page to the last page.
	next := got[0].PageStart
	for _, s := range got {
		if s.PageStart != next {
			t.Fatalf("gap or overlap at %+v (expected start %d)", s, next)
		}
		next = s.PageEnd + 1
	}
	if next != doc.PageCount()+1 {
		t.Errorf("expected coverage to end at page %d, ended at %d", doc.PageCount(), next-1)
	}
}

func TestSegment_HeadingBeyondLastPage(t *testing.T) {
	doc := makeDoc(2)
	o := doctree.Outline{Headings: []doctree.Heading{
		{Text: "a", Page: 1},
		{Text: "ghost", Page: 7},
	}}
	got := Segment(doc, o)
	if got[0].PageEnd != 6 || got[0].Text != "page 1 text\npage 2 text" {
		t.Errorf("unexpected first section: %+v", got[0])
	}
	if got[1].Text != "" {
		t.Errorf("expected no text for out-of-range section, got %q", got[1].Text)
	}
}
