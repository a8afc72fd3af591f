package models

// Match types attached to candidates during resolution.
const (
	MatchTypeExact = "exact"
	MatchTypeFuzzy = "fuzzy"
)

// MatchCandidate pairs an employee with a similarity score in [0,1].
// Created transiently during matching and discarded after ranking.
type MatchCandidate struct {
	Employee  Employee `json:"employee"`
	Score     float64  `json:"score"`
	MatchType string   `json:"match_type"`
}

// ResolutionStatus is the outcome variant of a resolve call.
type ResolutionStatus string

const (
	ResolutionNotFound  ResolutionStatus = "not_found"
	ResolutionResolved  ResolutionStatus = "resolved"
	ResolutionAmbiguous ResolutionStatus = "ambiguous"
)

// Resolution is the tagged result of resolving a free-text query to an
// employee. Exactly one of Employee / Candidates is populated: Employee for
// resolved, Candidates (ordered by descending relevance, always >= 2 entries)
// for ambiguous, neither for not found.
type Resolution struct {
	Status     ResolutionStatus `json:"status"`
	Query      string           `json:"query"`
	Employee   *Employee        `json:"employee,omitempty"`
	Candidates []Employee       `json:"candidates,omitempty"`
}
