package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/outline"
)

// Skipped names a document left out of a run and the reason.
type Skipped struct {
	Document string `json:"document"`
	Reason   string `json:"reason"`
}

// LoadDocuments pairs every document in inputDir with its outline from
// outlinesDir and segments it. Documents without a usable outline, that cannot
// be parsed, or whose stem repeats an earlier document's are skipped with a
// warning. Order follows file names.
func (p *Pipeline) LoadDocuments(ctx context.Context, inputDir, outlinesDir string) ([]doctree.SectionedDocument, []Skipped, error) {
	names, err := ListDocuments(inputDir)
	if err != nil {
		return nil, nil, err
	}

	docs := make([]*doctree.SectionedDocument, len(names))
	errs := make([]error, len(names))
	owners := outlineOwners(names)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := claimOutline(owners, name); err != nil {
				errs[i] = err
				return nil
			}
			d, err := p.loadOne(filepath.Join(inputDir, name), outlinesDir)
			if err != nil {
				errs[i] = err
				return nil
			}
			docs[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var loaded []doctree.SectionedDocument
	var skipped []Skipped
	for i, name := range names {
		if errs[i] != nil {
			log := p.log.With("document", name)
			switch {
			case errors.Is(errs[i], ErrMissingOutline):
				log.Warn("outline JSON missing, skipping")
			case errors.Is(errs[i], ErrOutlineCollision):
				log.Warn("outline name collides with another document, skipping", "error", errs[i])
			default:
				log.Warn("document skipped", "error", errs[i])
			}
			skipped = append(skipped, Skipped{Document: name, Reason: errs[i].Error()})
			continue
		}
		loaded = append(loaded, *docs[i])
	}
	return loaded, skipped, nil
}

func (p *Pipeline) loadOne(path, outlinesDir string) (*doctree.SectionedDocument, error) {
	name := filepath.Base(path)
	o, err := outline.Load(filepath.Join(outlinesDir, outline.FileName(name)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", outline.FileName(name), ErrMissingOutline)
		}
		return nil, fmt.Errorf("load outline: %w", err)
	}
	doc, err := p.ParseFile(path)
	if err != nil {
		return nil, err
	}
	d := Sectioned(doc, o)
	return &d, nil
}
