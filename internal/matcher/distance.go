package matcher

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/pmezard/go-difflib/difflib"
)

// EditSimilarity scores two already-normalized strings in [0,1] from an
// edit-cost point of view. It is a strategy so the precise implementation is
// chosen once at startup; scoring code never branches on what is available.
type EditSimilarity interface {
	Score(a, b string) float64
	Name() string
}

// Levenshtein derives similarity from edit distance:
// 1 - dist/max(len(a), len(b), 1). The denominator is floored at 1 so two
// empty strings score 1.0 instead of dividing by zero.
type Levenshtein struct{}

func (Levenshtein) Name() string { return "levenshtein" }

func (Levenshtein) Score(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen < 1 {
		maxLen = 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// RatioOnly reuses the sequence ratio for the edit term. Degraded mode for
// when a true edit distance is not wanted; the blend then collapses to the
// plain sequence ratio.
type RatioOnly struct{}

func (RatioOnly) Name() string { return "ratio" }

func (RatioOnly) Score(a, b string) float64 { return sequenceRatio(a, b) }

// sequenceRatio is the longest-matching-blocks ratio of Python's difflib
// (the original resolver used SequenceMatcher), applied per character.
func sequenceRatio(a, b string) float64 {
	sm := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return sm.Ratio()
}
