package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	outlineInputDir  string
	outlineOutputDir string
	outlineWatch     bool
)

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Extract outline JSON for every document in a directory",
	Long: `Extract the title and H1/H2 headings of every supported document in
--input-dir and write one <name>.json file per document to --output-dir.

With --watch the command keeps running and outlines documents as they are
added or changed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		p, _ := newPipeline(cfg, logger)
		ctx := cmd.Context()

		sum, err := p.GenerateOutlines(ctx, outlineInputDir, outlineOutputDir)
		if err != nil {
			logger.Error("outline generation failed", "error", err)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d outlines written, %d failed, %d skipped\n", sum.Written, sum.Failed, sum.Skipped)

		if !outlineWatch {
			return nil
		}
		return p.Watch(ctx, outlineInputDir, outlineOutputDir, 0)
	},
}

func init() {
	outlineCmd.Flags().StringVar(&outlineInputDir, "input-dir", "", "directory containing documents")
	outlineCmd.Flags().StringVar(&outlineOutputDir, "output-dir", "", "directory for outline JSON files")
	outlineCmd.Flags().BoolVar(&outlineWatch, "watch", false, "keep running and outline new or changed documents")
	_ = outlineCmd.MarkFlagRequired("input-dir")
	_ = outlineCmd.MarkFlagRequired("output-dir")
}
