// Package leave converts approved leave requests into day equivalents and
// computes running balances.
package leave

import (
	"strings"

	"leave-manager/internal/constants"
	"leave-manager/internal/models"
)

// Weight returns the day equivalent of one approved request of the given
// leave type. Unknown types count as a full day; this default is a stated
// policy of the balance arithmetic, not an incidental fallback, so changing
// it means changing the tests too.
func Weight(leaveType string) float64 {
	switch strings.ToUpper(strings.TrimSpace(leaveType)) {
	case "FULL DAY":
		return constants.FullDayLeaveWeight
	case "HALF DAY", "COMPENSATION HALF DAY":
		return constants.HalfDayLeaveWeight
	case "2 HRS", "COMPENSATION 2 HRS":
		return constants.TwoHourLeaveWeight
	default:
		return constants.DefaultLeaveWeight
	}
}

// Calculate folds aggregated approved leave counts into a balance:
// used = sum(count x weight), current = opening - used.
func Calculate(openingBalance float64, counts []models.LeaveCount) models.LeaveBalance {
	used := 0.0
	details := make(map[string]int, len(counts))
	equivalents := make(map[string]float64, len(counts))

	for _, lc := range counts {
		lt := strings.ToUpper(strings.TrimSpace(lc.LeaveType))
		days := float64(lc.Count) * Weight(lt)
		used += days
		details[lt] += lc.Count
		equivalents[lt] += days
	}

	return models.LeaveBalance{
		OpeningBalance: openingBalance,
		UsedLeaves:     used,
		CurrentBalance: openingBalance - used,
		LeaveDetails:   details,
		DayEquivalents: equivalents,
	}
}
