// Package keywords extracts key phrases from a short query. Candidates are the
// 1- and 2-word n-grams left after English stop-words are removed; they are
// ranked by embedding similarity to the whole query.
package keywords

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dgallion1/docrank/internal/embed"
)

// DefaultMaxKeywords is the number of phrases returned when none is configured.
const DefaultMaxKeywords = 10

// Extractor returns up to max key phrases from text, best first.
type Extractor interface {
	Extract(ctx context.Context, text string, max int) ([]string, error)
}

// Tokens are runs of two or more letters, digits or underscores in any script.
var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// EmbeddingExtractor ranks candidate phrases by cosine similarity between each
// candidate's embedding and the embedding of the full text.
type EmbeddingExtractor struct {
	model embed.Embedder
}

func NewEmbeddingExtractor(model embed.Embedder) *EmbeddingExtractor {
	return &EmbeddingExtractor{model: model}
}

func (e *EmbeddingExtractor) Extract(ctx context.Context, text string, max int) ([]string, error) {
	if max <= 0 {
		max = DefaultMaxKeywords
	}
	cands := Candidates(text)
	if len(cands) == 0 {
		return []string{}, nil
	}

	inputs := make([]string, 0, len(cands)+1)
	inputs = append(inputs, text)
	inputs = append(inputs, cands...)
	vecs, err := e.model.Embed(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("embed keyword candidates: %w", err)
	}
	if len(vecs) != len(inputs) {
		return nil, fmt.Errorf("embed keyword candidates: got %d vectors for %d inputs", len(vecs), len(inputs))
	}

	type scored struct {
		phrase string
		score  float64
	}
	ranked := make([]scored, len(cands))
	for i, c := range cands {
		ranked[i] = scored{phrase: c, score: embed.Cosine(vecs[0], vecs[i+1])}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	n := min(max, len(ranked))
	out := make([]string, n)
	for i := range n {
		out[i] = ranked[i].phrase
	}
	return out, nil
}

// Candidates returns the unique 1- and 2-word phrases of text, lowercased,
// with stop-words removed before n-grams are formed. The result is sorted.
func Candidates(text string) []string {
	var words []string
	for _, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopWords[tok]; !stop {
			words = append(words, tok)
		}
	}

	seen := make(map[string]struct{}, len(words)*2)
	for i, w := range words {
		seen[w] = struct{}{}
		if i+1 < len(words) {
			seen[w+" "+words[i+1]] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
