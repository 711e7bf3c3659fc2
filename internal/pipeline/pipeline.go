// Package pipeline wires the collectors, outline extractor, segmenter, scorer
// and report assembler into whole-directory runs.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/outline"
	"github.com/dgallion1/docrank/internal/parser"
	"github.com/dgallion1/docrank/internal/rank"
	"github.com/dgallion1/docrank/internal/report"
	"github.com/dgallion1/docrank/internal/segment"
)

var (
	// ErrMissingOutline marks a document whose outline JSON is not on disk.
	ErrMissingOutline = errors.New("outline file missing")
	// ErrNoDocuments is returned when no document could be loaded for a run.
	ErrNoDocuments = errors.New("no documents processed")
	// ErrOutlineCollision marks a document whose outline file name is
	// already claimed by another document in the same directory.
	ErrOutlineCollision = errors.New("outline file name already claimed")
)

// Options configures a Pipeline.
type Options struct {
	Parser  parser.Options
	Report  report.Options
	Workers int
}

// Pipeline runs outline generation and ranking. It is safe for concurrent use.
type Pipeline struct {
	scorer     *rank.Scorer
	parserOpts parser.Options
	reportOpts report.Options
	workers    int
	log        *slog.Logger
	now        func() time.Time
}

// New creates a pipeline around a constructed scorer.
func New(scorer *rank.Scorer, opts Options, log *slog.Logger) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Pipeline{
		scorer:     scorer,
		parserOpts: opts.Parser,
		reportOpts: opts.Report,
		workers:    opts.Workers,
		log:        log,
		now:        time.Now,
	}
}

// ListDocuments returns the supported documents in dir, sorted by name.
func ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// outlineOwners maps each outline file name to the document that owns it.
// Documents sharing a stem (a.pdf, a.md) would share a.json; the first name
// in sort order keeps it.
func outlineOwners(names []string) map[string]string {
	owners := make(map[string]string, len(names))
	for _, name := range names {
		key := outline.FileName(name)
		if cur, ok := owners[key]; !ok || name < cur {
			owners[key] = name
		}
	}
	return owners
}

// claimOutline reports ErrOutlineCollision when name does not own its
// outline file among owners.
func claimOutline(owners map[string]string, name string) error {
	if owner := owners[outline.FileName(name)]; owner != name {
		return fmt.Errorf("%s: %w by %s", outline.FileName(name), ErrOutlineCollision, owner)
	}
	return nil
}

// Parse collects a document from r using the parser for name's extension.
func (p *Pipeline) Parse(r io.Reader, name string) (*doctree.Document, error) {
	ps, err := parser.ForFile(name, p.parserOpts)
	if err != nil {
		return nil, err
	}
	doc, err := ps.Parse(r, name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return doc, nil
}

// ParseFile collects the document at path. The document ID is its base name.
func (p *Pipeline) ParseFile(path string) (*doctree.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(f, filepath.Base(path))
}

// Sectioned segments doc by o and attaches the outline title.
func Sectioned(doc *doctree.Document, o doctree.Outline) doctree.SectionedDocument {
	title := o.Title
	if title == "" {
		title = outline.UnknownDocument
	}
	return doctree.SectionedDocument{
		ID:       doc.ID,
		Title:    title,
		Sections: segment.Segment(doc, o),
	}
}
