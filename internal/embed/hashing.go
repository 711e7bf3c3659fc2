package embed

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// DefaultDimensions matches the MiniLM family of sentence encoders.
const DefaultDimensions = 384

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Feature weights for the hashing model.
const (
	unigramWeight = 1.0
	bigramWeight  = 0.5
	trigramWeight = 0.25
)

// HashingEmbedder is a local, deterministic bag-of-features encoder: word
// unigrams, word bigrams and character trigrams are hashed with a sign bit
// into a fixed number of dimensions, then L2-normalized. It needs no model
// weights and is the offline default.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder returns a hashing encoder with dims dimensions.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &HashingEmbedder{dims: dims}
}

func (h *HashingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.encode(t)
	}
	return out, nil
}

func (h *HashingEmbedder) encode(text string) []float32 {
	vec := make([]float64, h.dims)
	words := wordRe.FindAllString(strings.ToLower(text), -1)

	for i, w := range words {
		h.add(vec, "w:"+w, unigramWeight)
		if i+1 < len(words) {
			h.add(vec, "b:"+w+" "+words[i+1], bigramWeight)
		}
		padded := []rune("^" + w + "$")
		for j := 0; j+3 <= len(padded); j++ {
			h.add(vec, "c:"+string(padded[j:j+3]), trigramWeight)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	out := make([]float32, h.dims)
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}

func (h *HashingEmbedder) add(vec []float64, feature string, weight float64) {
	hasher := fnv.New64a()
	hasher.Write([]byte(feature))
	sum := hasher.Sum64()
	idx := int(sum % uint64(h.dims))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}
