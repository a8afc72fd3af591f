// Package resolver turns a free-text, possibly misspelled employee query
// into exactly one employee record or a ranked disambiguation list. Exact
// lookup first; fuzzy matching over active employees only when the exact
// path finds nothing.
package resolver

import (
	"context"
	"strings"

	"leave-manager/internal/matcher"
	"leave-manager/internal/models"
	errs "leave-manager/pkg/errors"
)

// Directory is the injected employee-lookup collaborator. LookupExact does a
// substring match across name/email/mobile/employee-number and may return
// inactive employees (historical lookups are intentional on the exact path);
// ListActive is the fuzzy-fallback universe.
type Directory interface {
	LookupExact(ctx context.Context, query string) ([]models.Employee, error)
	ListActive(ctx context.Context) ([]models.Employee, error)
}

// Resolver orchestrates exact lookup, fuzzy fallback and context-based
// disambiguation. Stateless apart from its collaborators; safe for
// concurrent use when the Directory is.
type Resolver struct {
	dir           Directory
	matcher       *matcher.Matcher
	maxCandidates int
}

// New builds a resolver. maxCandidates caps the fuzzy disambiguation list
// (values < 1 fall back to 5); it bounds list size and suppresses
// low-confidence noise.
func New(dir Directory, m *matcher.Matcher, maxCandidates int) *Resolver {
	if maxCandidates < 1 {
		maxCandidates = 5
	}
	return &Resolver{dir: dir, matcher: m, maxCandidates: maxCandidates}
}

// Resolve maps query to a Resolution. hint is optional caller-supplied
// context ("qa", "backend", an email fragment) used only to narrow an
// otherwise ambiguous candidate set. A failing lookup propagates as an
// error and is never reported as not-found.
func (r *Resolver) Resolve(ctx context.Context, query, hint string) (models.Resolution, error) {
	candidates, err := r.dir.LookupExact(ctx, query)
	if err != nil {
		return models.Resolution{}, errs.NewLookup("resolver.Resolve", "exact lookup failed", err)
	}

	if len(candidates) == 0 {
		active, err := r.dir.ListActive(ctx)
		if err != nil {
			return models.Resolution{}, errs.NewLookup("resolver.Resolve", "active employee listing failed", err)
		}
		ranked := r.matcher.RankMatches(query, active)
		if len(ranked) > r.maxCandidates {
			ranked = ranked[:r.maxCandidates]
		}
		candidates = make([]models.Employee, 0, len(ranked))
		for _, mc := range ranked {
			candidates = append(candidates, mc.Employee)
		}
	}

	switch len(candidates) {
	case 0:
		return models.Resolution{Status: models.ResolutionNotFound, Query: query}, nil
	case 1:
		return models.Resolution{Status: models.ResolutionResolved, Query: query, Employee: &candidates[0]}, nil
	}

	if h := strings.TrimSpace(hint); h != "" {
		if emp, ok := narrowByContext(candidates, h); ok {
			return models.Resolution{Status: models.ResolutionResolved, Query: query, Employee: &emp}, nil
		}
	}

	return models.Resolution{Status: models.ResolutionAmbiguous, Query: query, Candidates: candidates}, nil
}

// narrowByContext keeps candidates whose designation, email or display name
// contains the lower-cased hint. The filter only decides the outcome when
// exactly one candidate survives; otherwise the caller keeps the full,
// unfiltered list.
func narrowByContext(candidates []models.Employee, hint string) (models.Employee, bool) {
	h := strings.ToLower(hint)
	var kept []models.Employee
	for _, c := range candidates {
		designation := strings.ToLower(c.DesignationOr(""))
		email := strings.ToLower(c.EmailOr(""))
		name := strings.ToLower(c.DisplayName)
		if strings.Contains(designation, h) || strings.Contains(email, h) || strings.Contains(name, h) {
			kept = append(kept, c)
		}
	}
	if len(kept) == 1 {
		return kept[0], true
	}
	return models.Employee{}, false
}
