package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/outline"
)

// OutlineSummary counts the results of an outline generation pass.
type OutlineSummary struct {
	Written int
	Failed  int
	Skipped int
}

// OutlineFile extracts the outline of the document at path and writes it to
// outputDir as <stem>.json.
func (p *Pipeline) OutlineFile(path, outputDir string) (doctree.Outline, error) {
	doc, err := p.ParseFile(path)
	if err != nil {
		return doctree.Outline{}, err
	}
	o := outline.Extract(doc)
	dest := filepath.Join(outputDir, outline.FileName(filepath.Base(path)))
	if err := outline.WriteFile(dest, o); err != nil {
		return doctree.Outline{}, fmt.Errorf("write outline: %w", err)
	}
	return o, nil
}

// GenerateOutlines writes an outline for every supported document in
// inputDir. A document that fails is logged and counted, never fatal. Of
// documents sharing a stem only the first by name is outlined.
func (p *Pipeline) GenerateOutlines(ctx context.Context, inputDir, outputDir string) (OutlineSummary, error) {
	names, err := ListDocuments(inputDir)
	if err != nil {
		return OutlineSummary{}, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return OutlineSummary{}, fmt.Errorf("create output dir: %w", err)
	}

	var written, failed, skipped atomic.Int64
	owners := outlineOwners(names)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			log := p.log.With("document", name)
			if err := claimOutline(owners, name); err != nil {
				log.Warn("outline name collides with another document, skipping", "error", err)
				skipped.Add(1)
				return nil
			}
			o, err := p.OutlineFile(filepath.Join(inputDir, name), outputDir)
			if err != nil {
				log.Warn("outline failed", "error", err)
				failed.Add(1)
				return nil
			}
			log.Info("outline written", "title", o.Title, "headings", len(o.Headings))
			written.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return OutlineSummary{}, err
	}

	sum := OutlineSummary{Written: int(written.Load()), Failed: int(failed.Load()), Skipped: int(skipped.Load())}
	p.log.Info("outline generation complete",
		"documents", len(names), "written", sum.Written, "failed", sum.Failed, "skipped", sum.Skipped)
	return sum, nil
}
