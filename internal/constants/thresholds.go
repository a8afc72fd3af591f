package constants

// Centralized threshold values used across the application.
// Keep these stable; change deliberately and document why.
// These are not configuration knobs; use pkg/config for env-driven settings.

const (
	// Name matching: blend weights and score cutoff. Edit distance rewards
	// small typo tolerance, the sequence ratio rewards substring and
	// reordering tolerance; the 0.6/0.4 blend smooths the pathological
	// cases of either metric alone.
	MatchEditWeight    = 0.6
	MatchSeqWeight     = 0.4
	MatchThreshold     = 0.6
	MaxFuzzyCandidates = 5

	// Leave day equivalents per approved leave request.
	FullDayLeaveWeight = 1.0
	HalfDayLeaveWeight = 0.5
	TwoHourLeaveWeight = 0.25
	// Unknown leave types count as a full day. This is a deliberate,
	// tested policy, not an incidental fallback.
	DefaultLeaveWeight = 1.0

	// Circuit breaker rate thresholds for the OpenAI assist client.
	OpenAICircuitFailureRate  = 0.5
	OpenAICircuitSlowCallRate = 0.5
)
