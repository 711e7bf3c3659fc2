package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docrank/internal/pipeline"
	"github.com/dgallion1/docrank/internal/rank"
)

var (
	rankInputDir    string
	rankOutlinesDir string
	rankOutputFile  string
	rankPersona     string
	rankJob         string
	rankTopK        int
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank document sections for a persona and job to be done",
	Long: `Load every document in --input-dir together with its outline from
--outlines-dir, split it into sections, score all sections against the
persona and job to be done, and write the top sections to --output-file.

Documents without an outline file are skipped with a warning. The report is
YAML when --output-file ends in .yaml or .yml, JSON otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		p, _ := newPipeline(cfg, logger)

		run := pipeline.NewRun()
		res, err := p.Run(cmd.Context(), run, pipeline.RankRequest{
			InputDir:    rankInputDir,
			OutlinesDir: rankOutlinesDir,
			OutputFile:  rankOutputFile,
			Query:       rank.Query{Persona: rankPersona, Task: rankJob},
			TopK:        rankTopK,
		})
		if errors.Is(err, pipeline.ErrNoDocuments) {
			fmt.Fprintln(cmd.OutOrStdout(), "No documents processed. Exiting.")
			return nil
		}
		if err != nil {
			logger.Error("ranking failed", "run_id", run.ID, "error", err)
			return err
		}

		writeSummary(cmd.OutOrStdout(), res, run.Snapshot(), rankOutputFile)
		return nil
	},
}

func init() {
	rankCmd.Flags().StringVar(&rankInputDir, "input-dir", "", "directory containing documents")
	rankCmd.Flags().StringVar(&rankOutlinesDir, "outlines-dir", "", "directory containing outline JSON files")
	rankCmd.Flags().StringVar(&rankOutputFile, "output-file", "", "report output path")
	rankCmd.Flags().StringVar(&rankPersona, "persona", "", "persona description")
	rankCmd.Flags().StringVar(&rankJob, "job-to-be-done", "", "task the persona needs to accomplish")
	rankCmd.Flags().IntVar(&rankTopK, "top-k", 0, "number of sections to report (default: ranking.top_k)")
	for _, name := range []string{"input-dir", "outlines-dir", "output-file", "persona", "job-to-be-done"} {
		_ = rankCmd.MarkFlagRequired(name)
	}
}
