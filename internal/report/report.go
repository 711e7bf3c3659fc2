// Package report turns a ranked section list into the final result document.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/rank"
)

const (
	DefaultTopK         = 5
	DefaultExcerptChars = 1000
	ellipsis            = "..."
	timestampLayout     = "2006-01-02T15:04:05.000000Z"
)

type Metadata struct {
	InputDocuments []string `json:"input_documents" yaml:"input_documents"`
	Persona        string   `json:"persona" yaml:"persona"`
	JobToBeDone    string   `json:"job_to_be_done" yaml:"job_to_be_done"`
	Timestamp      string   `json:"timestamp" yaml:"timestamp"`
}

type ExtractedSection struct {
	Document       string `json:"document" yaml:"document"`
	SectionTitle   string `json:"section_title" yaml:"section_title"`
	Page           int    `json:"page" yaml:"page"`
	ImportanceRank int    `json:"importance_rank" yaml:"importance_rank"`
}

type Subsection struct {
	Document    string `json:"document" yaml:"document"`
	RefinedText string `json:"refined_text" yaml:"refined_text"`
	Page        int    `json:"page" yaml:"page"`
}

type Report struct {
	Metadata           Metadata           `json:"metadata" yaml:"metadata"`
	ExtractedSections  []ExtractedSection `json:"extracted_sections" yaml:"extracted_sections"`
	SubsectionAnalysis []Subsection       `json:"subsection_analysis" yaml:"subsection_analysis"`
}

// Options controls how much of the ranking ends up in the report.
type Options struct {
	TopK         int
	ExcerptChars int
}

// Assemble builds the report from the top ranked sections. docs supplies the
// input document order and the section bodies that ranked refers to.
func Assemble(q rank.Query, docs []doctree.SectionedDocument, ranked []rank.ScoredSection, opts Options, now time.Time) (*Report, error) {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.ExcerptChars <= 0 {
		opts.ExcerptChars = DefaultExcerptChars
	}

	byID := make(map[string]doctree.SectionedDocument, len(docs))
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
		ids = append(ids, d.ID)
	}

	r := &Report{
		Metadata: Metadata{
			InputDocuments: ids,
			Persona:        q.Persona,
			JobToBeDone:    q.Task,
			Timestamp:      now.UTC().Format(timestampLayout),
		},
		ExtractedSections:  []ExtractedSection{},
		SubsectionAnalysis: []Subsection{},
	}

	n := min(opts.TopK, len(ranked))
	for i, sc := range ranked[:n] {
		doc, ok := byID[sc.DocumentID]
		if !ok || sc.SectionIndex < 0 || sc.SectionIndex >= len(doc.Sections) {
			return nil, fmt.Errorf("ranked section %s#%d not found", sc.DocumentID, sc.SectionIndex)
		}
		sec := doc.Sections[sc.SectionIndex]
		r.ExtractedSections = append(r.ExtractedSections, ExtractedSection{
			Document:       doc.ID,
			SectionTitle:   sec.Title,
			Page:           sec.PageStart,
			ImportanceRank: i + 1,
		})
		r.SubsectionAnalysis = append(r.SubsectionAnalysis, Subsection{
			Document:    doc.ID,
			RefinedText: Refine(sec.Text, opts.ExcerptChars),
			Page:        sec.PageStart,
		})
	}
	return r, nil
}

// Refine flattens newlines to spaces, trims, and caps the result at limit
// characters, appending "..." only when something was cut.
func Refine(text string, limit int) string {
	s := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + ellipsis
}

// Marshal encodes r as YAML when path ends in .yaml or .yml, else as
// two-space indented JSON.
func Marshal(r *Report, path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return nil, fmt.Errorf("encode yaml report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml report: %w", err)
		}
		return buf.Bytes(), nil
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return nil, fmt.Errorf("encode json report: %w", err)
		}
		return buf.Bytes(), nil
	}
}

// WriteFile writes r to path atomically, creating the parent directory.
func WriteFile(r *Report, path string) error {
	data, err := Marshal(r, path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".report-*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}
