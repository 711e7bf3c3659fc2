package doctree

// TextLine is one line of text as collected from a page, tagged with the
// largest glyph size used anywhere in the line.
type TextLine struct {
	Text     string
	FontSize float64
	Page     int
}

// Page holds the collected lines of a single page plus its plain text.
type Page struct {
	Number int        // 1-based
	Text   string     // Full page text in reading order
	Lines  []TextLine // Source order, not reconstructed
}

// Document is the collector output for one input file.
type Document struct {
	ID    string // Identifier as loaded (the file name)
	Pages []Page
}

// PageCount returns the number of pages, including empty ones.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Lines returns every collected line across all pages in page order.
func (d *Document) Lines() []TextLine {
	var out []TextLine
	for _, p := range d.Pages {
		out = append(out, p.Lines...)
	}
	return out
}

// HeadingLevel is the coarse rank of a heading.
type HeadingLevel string

const (
	H1 HeadingLevel = "H1"
	H2 HeadingLevel = "H2"
)

// Heading is a classified outline entry.
type Heading struct {
	Level HeadingLevel `json:"level"`
	Text  string       `json:"text"`
	Page  int          `json:"page"`
}

// Outline is a document title plus its headings in discovery order.
type Outline struct {
	Title    string    `json:"title"`
	Headings []Heading `json:"outline"`
}

// Section is a contiguous page range bounded by heading pages.
// A zero-page section has PageEnd == PageStart-1 and empty Text.
type Section struct {
	Title     string
	PageStart int
	PageEnd   int
	Text      string
}

// SectionedDocument pairs a loaded document with its sections.
type SectionedDocument struct {
	ID       string
	Title    string
	Sections []Section
}
