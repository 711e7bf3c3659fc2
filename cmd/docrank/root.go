package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docrank/internal/config"
)

var (
	cfgFile   string
	logFormat string

	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docrank",
	Short: "Document outline extraction and persona-driven section ranking",
	Long: `docrank builds structural outlines (title plus H1/H2 headings with page
numbers) from PDF and other documents, then ranks the sections of a document
collection against a persona and a job to be done.

Commands:
  outline  extract outline JSON files for a directory of documents
  rank     rank sections across documents and write a report
  serve    expose outline extraction and ranking over HTTP`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		// The server logs to stdout; CLI commands keep stdout for results.
		var w io.Writer = os.Stderr
		if cmd.Name() == serveCmd.Name() {
			w = os.Stdout
		}
		logger, err = newLogger(w, logFormat)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./docrank.yaml or ~/.docrank/docrank.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logFormat, "log-format", "json", "log format: json or text",
	)

	rootCmd.AddCommand(outlineCmd, rankCmd, serveCmd, versionCmd)
}

func newLogger(w io.Writer, format string) (*slog.Logger, error) {
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, nil)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, nil)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want json or text)", format)
	}
}
