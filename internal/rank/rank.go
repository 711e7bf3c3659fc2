// Package rank scores pooled document sections against a persona/task query
// by blending embedding similarity with keyword overlap.
package rank

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/embed"
	"github.com/dgallion1/docrank/internal/keywords"
)

// Query is the relevance intent: who is asking and what they need done.
type Query struct {
	Persona string
	Task    string
}

func (q Query) String() string {
	return q.Persona + ". Job to be done: " + q.Task
}

// Candidate is one pooled section, addressed by document and position.
type Candidate struct {
	DocumentID   string
	SectionIndex int
	Text         string
}

// Pool flattens the sections of docs into one candidate set, preserving
// document order then section order.
func Pool(docs []doctree.SectionedDocument) []Candidate {
	var out []Candidate
	for _, d := range docs {
		for i, s := range d.Sections {
			out = append(out, Candidate{DocumentID: d.ID, SectionIndex: i, Text: s.Text})
		}
	}
	return out
}

// ScoredSection is the outcome of scoring one candidate.
type ScoredSection struct {
	DocumentID    string  `json:"document"`
	SectionIndex  int     `json:"section_index"`
	HybridScore   float64 `json:"hybrid_score"`
	SemanticScore float64 `json:"semantic_score"`
	KeywordScore  float64 `json:"keyword_score"`
}

// Weights blend the two relevance signals.
type Weights struct {
	Embedding float64
	Keyword   float64
}

// DefaultWeights favors semantic similarity.
var DefaultWeights = Weights{Embedding: 0.8, Keyword: 0.2}

// InferenceError reports a failed embedding or keyword-extraction call. A run
// that hits one produces no scores at all.
type InferenceError struct {
	Stage string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed during %s: %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// Scorer ranks candidates. The model handle is shared and only read.
type Scorer struct {
	model       embed.Embedder
	extractor   keywords.Extractor
	weights     Weights
	maxKeywords int
}

// NewScorer builds a scorer around an already-constructed model handle.
func NewScorer(model embed.Embedder, extractor keywords.Extractor, weights Weights, maxKeywords int) *Scorer {
	if maxKeywords <= 0 {
		maxKeywords = keywords.DefaultMaxKeywords
	}
	return &Scorer{model: model, extractor: extractor, weights: weights, maxKeywords: maxKeywords}
}

// Score returns one ScoredSection per candidate, sorted by hybrid score
// descending. Ties keep pooling order.
func (s *Scorer) Score(ctx context.Context, q Query, cands []Candidate) ([]ScoredSection, error) {
	if len(cands) == 0 {
		return []ScoredSection{}, nil
	}
	query := q.String()

	texts := make([]string, 0, len(cands)+1)
	texts = append(texts, query)
	for _, c := range cands {
		texts = append(texts, c.Text)
	}
	vecs, err := s.model.Embed(ctx, texts)
	if err != nil {
		return nil, &InferenceError{Stage: "embedding", Err: err}
	}
	if len(vecs) != len(texts) {
		return nil, &InferenceError{
			Stage: "embedding",
			Err:   fmt.Errorf("got %d vectors for %d texts", len(vecs), len(texts)),
		}
	}

	kws, err := s.extractor.Extract(ctx, query, s.maxKeywords)
	if err != nil {
		return nil, &InferenceError{Stage: "keyword extraction", Err: err}
	}

	out := make([]ScoredSection, len(cands))
	for i, c := range cands {
		sem := embed.Cosine(vecs[0], vecs[i+1])
		kw := KeywordScore(kws, c.Text)
		out[i] = ScoredSection{
			DocumentID:    c.DocumentID,
			SectionIndex:  c.SectionIndex,
			HybridScore:   s.weights.Embedding*sem + s.weights.Keyword*kw,
			SemanticScore: sem,
			KeywordScore:  kw,
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].HybridScore > out[j].HybridScore })
	return out, nil
}

// KeywordScore is the fraction of kws found, case-insensitively, as
// substrings of text. It is 0 when kws is empty.
func KeywordScore(kws []string, text string) float64 {
	lower := strings.ToLower(text)
	var hits int
	for _, kw := range kws {
		if strings.Contains(lower, strings.ToLower(kw)) {
			hits++
		}
	}
	return float64(hits) / float64(max(len(kws), 1))
}
