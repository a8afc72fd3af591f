// Package matcher implements fuzzy name matching for employee resolution:
// normalization, a blended similarity score and threshold ranking. It is
// pure computation; no I/O, safe for concurrent use.
package matcher

import (
	"regexp"
	"sort"
	"strings"

	"leave-manager/internal/constants"
	"leave-manager/internal/models"
)

// Config holds the matching knobs with their documented defaults.
type Config struct {
	EditWeight float64 // weight of the edit-distance similarity (default 0.6)
	SeqWeight  float64 // weight of the sequence ratio (default 0.4)
	Threshold  float64 // minimum score kept by RankMatches (default 0.6)
	// TokenVariants additionally scores reversed "last first" ordering and
	// first-vs-first / last-vs-last token pairs, taking the maximum across
	// variants. A name may match well under exactly one ordering.
	TokenVariants bool
}

func DefaultConfig() Config {
	return Config{
		EditWeight:    constants.MatchEditWeight,
		SeqWeight:     constants.MatchSeqWeight,
		Threshold:     constants.MatchThreshold,
		TokenVariants: true,
	}
}

// Matcher scores free-text queries against employee display names.
type Matcher struct {
	cfg  Config
	edit EditSimilarity
}

// New builds a matcher with the given config and edit-similarity strategy.
// Zero weights fall back to the defaults; a nil strategy means Levenshtein.
func New(cfg Config, edit EditSimilarity) *Matcher {
	if cfg.EditWeight == 0 && cfg.SeqWeight == 0 {
		cfg.EditWeight = constants.MatchEditWeight
		cfg.SeqWeight = constants.MatchSeqWeight
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = constants.MatchThreshold
	}
	if edit == nil {
		edit = Levenshtein{}
	}
	return &Matcher{cfg: cfg, edit: edit}
}

var (
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize lower-cases, strips everything that is not a word character or
// whitespace, collapses whitespace runs and trims. Applied to both sides of
// every comparison so punctuation and case never affect scoring. Idempotent;
// empty input yields "".
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = nonWordRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Similarity returns the blended base score of two names in [0,1]:
// EditWeight x edit similarity + SeqWeight x sequence ratio, both computed
// on the normalized forms. Symmetric in its arguments.
func (m *Matcher) Similarity(a, b string) float64 {
	return m.blend(Normalize(a), Normalize(b))
}

// blend expects already-normalized inputs.
func (m *Matcher) blend(a, b string) float64 {
	return m.cfg.EditWeight*m.edit.Score(a, b) + m.cfg.SeqWeight*sequenceRatio(a, b)
}

// BestSimilarity scores query against a candidate name across the configured
// variants and returns the maximum. Never the average: averaging would
// punish a perfect "Doe John" hit for not also matching "John Doe".
func (m *Matcher) BestSimilarity(query, name string) float64 {
	qn := Normalize(query)
	nn := Normalize(name)
	best := m.blend(qn, nn)
	if !m.cfg.TokenVariants {
		return best
	}

	if first, last := splitName(nn); last != "" {
		// reversed "last first" ordering of the candidate name
		if s := m.blend(qn, last+" "+first); s > best {
			best = s
		}
	}

	if qFirst, qLast := splitName(qn); qLast != "" {
		nFirst, nLast := splitName(nn)
		fs := m.blend(qFirst, nFirst)
		ls := m.blend(qLast, nLast)
		if fs > 0 || ls > 0 {
			if s := (fs + ls) / 2; s > best {
				best = s
			}
		}
	}
	return best
}

// splitName splits a normalized name into its first token and the joined
// remainder; the remainder is "" for single-word names.
func splitName(name string) (first, last string) {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return "", ""
	}
	return tokens[0], strings.Join(tokens[1:], " ")
}

// RankMatches scores every candidate's display name against the query,
// keeps those at or above the threshold and sorts them by descending score.
// The sort is stable: ties preserve candidate input order, which keeps
// resolution deterministic.
func (m *Matcher) RankMatches(query string, candidates []models.Employee) []models.MatchCandidate {
	matches := make([]models.MatchCandidate, 0, len(candidates))
	for _, emp := range candidates {
		score := m.BestSimilarity(query, emp.DisplayName)
		if score >= m.cfg.Threshold {
			matches = append(matches, models.MatchCandidate{
				Employee:  emp,
				Score:     score,
				MatchType: models.MatchTypeFuzzy,
			})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches
}

// Threshold exposes the configured score cutoff.
func (m *Matcher) Threshold() float64 { return m.cfg.Threshold }
