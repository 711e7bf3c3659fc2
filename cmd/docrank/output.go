package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dgallion1/docrank/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	rankStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)
)

// writeSummary renders the ranked sections of a finished run.
func writeSummary(w io.Writer, res *pipeline.Result, run pipeline.RunSnapshot, outputFile string) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("Persona:"), titleStyle.Render(res.Report.Metadata.Persona))
	fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("Job:"), res.Report.Metadata.JobToBeDone)
	fmt.Fprintf(&b, "%s %d documents, %d sections\n", dimStyle.Render("Scored:"), len(run.Documents), run.Sections)
	for _, s := range run.Skipped {
		fmt.Fprintf(&b, "%s %s (%s)\n", warnStyle.Render("Skipped:"), s.Document, s.Reason)
	}
	b.WriteString("\n")

	for i, s := range res.Report.ExtractedSections {
		// Report entries follow ranking order.
		score := res.Ranked[i].HybridScore
		fmt.Fprintf(&b, "%s %s %s\n   %s\n",
			rankStyle.Render(fmt.Sprintf("%2d.", s.ImportanceRank)),
			s.SectionTitle,
			dimStyle.Render(fmt.Sprintf("(%.3f)", score)),
			dimStyle.Render(fmt.Sprintf("%s, page %d", s.Document, s.Page)),
		)
	}
	fmt.Fprintf(&b, "\n%s %s", dimStyle.Render("Report:"), outputFile)

	fmt.Fprintln(w, boxStyle.Render(b.String()))
}
