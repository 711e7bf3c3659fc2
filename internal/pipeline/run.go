package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/rank"
	"github.com/dgallion1/docrank/internal/report"
)

// RankRequest describes one directory-based ranking run.
type RankRequest struct {
	InputDir    string
	OutlinesDir string
	OutputFile  string
	Query       rank.Query
	TopK        int
}

// Result is what a completed ranking run produced.
type Result struct {
	Report *report.Report
	Ranked []rank.ScoredSection
	Docs   []doctree.SectionedDocument
}

// Run executes a ranking run over directories and writes the report file.
// ErrNoDocuments is returned, and nothing is written, when no document
// loads. Scoring failures abort the run before anything is written.
func (p *Pipeline) Run(ctx context.Context, run *Run, req RankRequest) (*Result, error) {
	log := p.log.With("run_id", run.ID)

	log.Info("phase 1/4: loading documents and outlines", "input_dir", req.InputDir, "outlines_dir", req.OutlinesDir)
	run.SetStatus(StatusRunning, PhaseLoading)
	docs, skipped, err := p.LoadDocuments(ctx, req.InputDir, req.OutlinesDir)
	if err != nil {
		run.AddError(err.Error())
		run.SetStatus(StatusFailed, PhaseLoading)
		return nil, err
	}
	run.AddSkipped(skipped...)

	res, err := p.RankDocuments(ctx, run, req.Query, docs, req.TopK)
	if err != nil {
		return nil, err
	}

	log.Info("phase 4/4: writing report", "output_file", req.OutputFile)
	run.SetStatus(StatusRunning, PhaseWriting)
	if err := report.WriteFile(res.Report, req.OutputFile); err != nil {
		run.AddError(err.Error())
		run.SetStatus(StatusFailed, PhaseWriting)
		return nil, err
	}
	run.SetStatus(StatusCompleted, PhaseDone)
	log.Info("report written", "output_file", req.OutputFile, "sections", len(res.Report.ExtractedSections))
	return res, nil
}

// RankDocuments pools, scores and assembles a report for already-loaded
// documents. It performs no I/O.
func (p *Pipeline) RankDocuments(ctx context.Context, run *Run, q rank.Query, docs []doctree.SectionedDocument, topK int) (*Result, error) {
	log := p.log.With("run_id", run.ID)
	run.setDocuments(documentIDs(docs))

	if len(docs) == 0 {
		run.SetStatus(StatusEmpty, PhaseLoading)
		log.Warn("no documents processed")
		return nil, ErrNoDocuments
	}

	log.Info("phase 2/4: pooling sections", "documents", len(docs))
	run.SetStatus(StatusRunning, PhasePooling)
	cands := rank.Pool(docs)
	run.setSections(len(cands))
	log.Info("sections pooled", "sections", len(cands))

	log.Info("phase 3/4: computing hybrid relevance scores")
	run.SetStatus(StatusRunning, PhaseScoring)
	ranked, err := p.scorer.Score(ctx, q, cands)
	if err != nil {
		var ie *rank.InferenceError
		if errors.As(err, &ie) {
			log.Error("inference failed", "stage", ie.Stage, "error", ie.Err)
		}
		run.AddError(err.Error())
		run.SetStatus(StatusFailed, PhaseScoring)
		return nil, fmt.Errorf("score sections: %w", err)
	}

	opts := p.reportOpts
	if topK > 0 {
		opts.TopK = topK
	}
	rep, err := report.Assemble(q, docs, ranked, opts, p.now())
	if err != nil {
		run.AddError(err.Error())
		run.SetStatus(StatusFailed, PhaseScoring)
		return nil, err
	}
	return &Result{Report: rep, Ranked: ranked, Docs: docs}, nil
}

func documentIDs(docs []doctree.SectionedDocument) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}
