package tools

import (
	"fmt"
	"sort"
	"strings"

	"leave-manager/internal/models"
)

// The result strings are consumed by chat-style clients, so they are plain
// text reports rather than markup.

func formatNotFound(query string) string {
	return fmt.Sprintf("No employee found matching %q. Try the full name or an email fragment.", query)
}

func formatAmbiguous(query string, candidates []models.Employee) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Multiple employees match %q. Please pick one or add context (designation, email):\n", query)
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s", i+1, c.DisplayName)
		if d := c.DesignationOr(""); d != "" {
			fmt.Fprintf(&b, " - %s", d)
		}
		if e := c.EmailOr(""); e != "" {
			fmt.Fprintf(&b, " (%s)", e)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatEmployeeDetails(e models.Employee) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Employee: %s\n", e.DisplayName)
	fmt.Fprintf(&b, "Designation: %s\n", e.DesignationOr("N/A"))
	fmt.Fprintf(&b, "Email: %s\n", e.EmailOr("N/A"))
	if e.Mobile != nil && *e.Mobile != "" {
		fmt.Fprintf(&b, "Mobile: %s\n", *e.Mobile)
	}
	if e.EmpNumber != nil && *e.EmpNumber != "" {
		fmt.Fprintf(&b, "Employee number: %s\n", *e.EmpNumber)
	}
	if e.DOJ != nil {
		fmt.Fprintf(&b, "Date of joining: %s\n", e.DOJ.Format("2006-01-02"))
	}
	if e.BloodGroup != nil && *e.BloodGroup != "" {
		fmt.Fprintf(&b, "Blood group: %s\n", *e.BloodGroup)
	}
	status := "Inactive"
	if e.IsActive() {
		status = "Active"
	}
	fmt.Fprintf(&b, "Status: %s\n", status)
	return b.String()
}

func formatLeaveBalance(e models.Employee, bal models.LeaveBalance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Leave balance for %s:\n", e.DisplayName)
	fmt.Fprintf(&b, "Opening balance: %.2f days\n", bal.OpeningBalance)
	fmt.Fprintf(&b, "Used: %.2f days\n", bal.UsedLeaves)
	fmt.Fprintf(&b, "Current balance: %.2f days\n", bal.CurrentBalance)
	if len(bal.LeaveDetails) > 0 {
		b.WriteString("Approved leaves by type:\n")
		for _, lt := range sortedKeys(bal.LeaveDetails) {
			fmt.Fprintf(&b, "  %s: %d (%.2f days)\n", lt, bal.LeaveDetails[lt], bal.DayEquivalents[lt])
		}
	}
	return b.String()
}

func formatSearchHits(query, mode string, hits []searchHit) string {
	if len(hits) == 0 {
		return fmt.Sprintf("No employees match %q.", query)
	}
	var b strings.Builder
	if mode == "fuzzy" {
		fmt.Fprintf(&b, "No direct matches for %q; %d similar name(s):\n", query, len(hits))
	} else {
		fmt.Fprintf(&b, "%d employee(s) match %q:\n", len(hits), query)
	}
	for i, h := range hits {
		e := h.Employee
		fmt.Fprintf(&b, "%d. %s - %s (%s)", i+1, e.DisplayName, e.DesignationOr("N/A"), e.EmailOr("N/A"))
		if h.Balance != nil {
			fmt.Fprintf(&b, " - balance %.2f days", h.Balance.CurrentBalance)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatWorkReports(e models.Employee, days int, reports []models.WorkReport) string {
	if len(reports) == 0 {
		return fmt.Sprintf("No work reports for %s in the last %d days.", e.DisplayName, days)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Work reports for %s (last %d days):\n", e.DisplayName, days)
	for _, r := range reports {
		fmt.Fprintf(&b, "%s (%.1f hrs): %s\n", r.ReportDate.Format("2006-01-02"), r.Hours, r.Details)
	}
	return b.String()
}

func formatGeneratedKey(k models.APIKey) string {
	var b strings.Builder
	fmt.Fprintf(&b, "API key created for %q.\n", k.Name)
	fmt.Fprintf(&b, "Key: %s\n", k.Key)
	if k.ExpiresAt != nil {
		fmt.Fprintf(&b, "Expires: %s\n", k.ExpiresAt.Format("2006-01-02"))
	}
	b.WriteString("Store it now; it is not shown again.")
	return b.String()
}

func formatKeyList(keys []models.APIKey) string {
	if len(keys) == 0 {
		return "No API keys stored."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d API key(s):\n", len(keys))
	for _, k := range keys {
		state := "revoked"
		if k.IsActive {
			state = "active"
		}
		fmt.Fprintf(&b, "%s  %s  [%s]\n", k.Masked(), k.Name, state)
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
