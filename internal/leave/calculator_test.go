package leave

import (
	"math"
	"testing"

	"leave-manager/internal/models"
)

func TestWeight(t *testing.T) {
	cases := []struct {
		leaveType string
		want      float64
	}{
		{"FULL DAY", 1.0},
		{"full day", 1.0},
		{"  Full Day  ", 1.0},
		{"HALF DAY", 0.5},
		{"COMPENSATION HALF DAY", 0.5},
		{"2 HRS", 0.25},
		{"COMPENSATION 2 HRS", 0.25},
		// unknown types count as a full day
		{"SABBATICAL", 1.0},
		{"", 1.0},
	}
	for _, c := range cases {
		if got := Weight(c.leaveType); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("Weight(%q) = %v, want %v", c.leaveType, got, c.want)
		}
	}
}

func TestCalculate(t *testing.T) {
	counts := []models.LeaveCount{
		{LeaveType: "FULL DAY", Count: 3},
		{LeaveType: "HALF DAY", Count: 2},
		{LeaveType: "2 HRS", Count: 4},
	}
	bal := Calculate(10, counts)

	// 3*1.0 + 2*0.5 + 4*0.25 = 5.0
	if math.Abs(bal.UsedLeaves-5.0) > 1e-9 {
		t.Fatalf("used = %v, want 5.0", bal.UsedLeaves)
	}
	if math.Abs(bal.CurrentBalance-5.0) > 1e-9 {
		t.Fatalf("current = %v, want 5.0", bal.CurrentBalance)
	}
	if bal.LeaveDetails["FULL DAY"] != 3 || bal.LeaveDetails["HALF DAY"] != 2 || bal.LeaveDetails["2 HRS"] != 4 {
		t.Fatalf("details wrong: %+v", bal.LeaveDetails)
	}
	if math.Abs(bal.DayEquivalents["2 HRS"]-1.0) > 1e-9 {
		t.Fatalf("2 HRS equivalents = %v, want 1.0", bal.DayEquivalents["2 HRS"])
	}
}

func TestCalculateNoLeaves(t *testing.T) {
	bal := Calculate(12.5, nil)
	if bal.UsedLeaves != 0 {
		t.Fatalf("used = %v, want 0", bal.UsedLeaves)
	}
	if math.Abs(bal.CurrentBalance-12.5) > 1e-9 {
		t.Fatalf("current = %v, want opening balance 12.5", bal.CurrentBalance)
	}
	if len(bal.LeaveDetails) != 0 {
		t.Fatalf("details should be empty: %+v", bal.LeaveDetails)
	}
}

func TestCalculateUnknownTypeCountsFullDay(t *testing.T) {
	bal := Calculate(5, []models.LeaveCount{{LeaveType: "MYSTERY LEAVE", Count: 2}})
	if math.Abs(bal.UsedLeaves-2.0) > 1e-9 {
		t.Fatalf("used = %v, want 2.0", bal.UsedLeaves)
	}
	if math.Abs(bal.CurrentBalance-3.0) > 1e-9 {
		t.Fatalf("current = %v, want 3.0", bal.CurrentBalance)
	}
}

func TestCalculateCanGoNegative(t *testing.T) {
	bal := Calculate(1, []models.LeaveCount{{LeaveType: "FULL DAY", Count: 3}})
	if math.Abs(bal.CurrentBalance+2.0) > 1e-9 {
		t.Fatalf("current = %v, want -2.0 (overdraw is reported, not clamped)", bal.CurrentBalance)
	}
}

func TestCalculateMergesCaseVariants(t *testing.T) {
	bal := Calculate(10, []models.LeaveCount{
		{LeaveType: "Full Day", Count: 1},
		{LeaveType: "FULL DAY", Count: 2},
	})
	if bal.LeaveDetails["FULL DAY"] != 3 {
		t.Fatalf("case variants not merged: %+v", bal.LeaveDetails)
	}
	if math.Abs(bal.UsedLeaves-3.0) > 1e-9 {
		t.Fatalf("used = %v, want 3.0", bal.UsedLeaves)
	}
}
