package outline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docrank/internal/doctree"
)

// rule classifies a trimmed line, reporting whether it matched.
type rule struct {
	name  string
	level doctree.HeadingLevel
	match func(line string) bool
}

// Numbers are any decimal digit and separators include no-break spaces,
// which PDF text often carries after section numbers.
var (
	numberedH1 = regexp.MustCompile(`^\p{Nd}+\.[\s\p{Zs}]+.+`)
	numberedH2 = regexp.MustCompile(`^\p{Nd}+\.\p{Nd}+[\s\p{Zs}]+.+`)
)

// structuralMarkers are headings recognized by name regardless of numbering.
var structuralMarkers = map[string]bool{
	"revision history":  true,
	"table of contents": true,
	"acknowledgements":  true,
	"references":        true,
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{name: "numbered-h1", level: doctree.H1, match: numberedH1.MatchString},
	{name: "numbered-h2", level: doctree.H2, match: numberedH2.MatchString},
	{name: "structural-marker", level: doctree.H1, match: func(line string) bool {
		return structuralMarkers[strings.ToLower(strings.Join(strings.Fields(line), " "))]
	}},
}

// minHeadingRunes is the shortest line considered for classification.
const minHeadingRunes = 4

// Classify returns the heading level for a line, or false if it is not a heading.
func Classify(line string) (doctree.HeadingLevel, bool) {
	line = strings.TrimSpace(line)
	if isNoise(line) {
		return "", false
	}
	for _, r := range rules {
		if r.match(line) {
			return r.level, true
		}
	}
	return "", false
}

// isNoise filters empty, very short, and punctuation-only lines (dot leaders).
func isNoise(line string) bool {
	if utf8.RuneCountInString(line) < minHeadingRunes {
		return true
	}
	for _, r := range line {
		if !unicode.IsPunct(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
