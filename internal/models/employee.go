package models

import (
	"time"
)

// Employee statuses as stored in the developer table.
const (
	StatusInactive = 0
	StatusActive   = 1
)

type Employee struct {
	ID                  int64      `json:"id" db:"id"`
	DisplayName         string     `json:"display_name" db:"developer_name"`
	Designation         *string    `json:"designation" db:"designation"`
	Email               *string    `json:"email" db:"email_id"`
	Mobile              *string    `json:"mobile" db:"mobile"`
	Status              int        `json:"status" db:"status"`
	DOJ                 *time.Time `json:"doj" db:"doj"`
	EmpNumber           *string    `json:"emp_number" db:"emp_number"`
	BloodGroup          *string    `json:"blood_group" db:"blood_group"`
	Username            *string    `json:"username" db:"username"`
	OpeningLeaveBalance float64    `json:"opening_leave_balance" db:"opening_leave_balance"`
}

// IsActive reports whether the employee is currently employed.
func (e Employee) IsActive() bool { return e.Status == StatusActive }

// DesignationOr returns the designation or a fallback for display.
func (e Employee) DesignationOr(fallback string) string {
	if e.Designation != nil && *e.Designation != "" {
		return *e.Designation
	}
	return fallback
}

// EmailOr returns the email or a fallback for display.
func (e Employee) EmailOr(fallback string) string {
	if e.Email != nil && *e.Email != "" {
		return *e.Email
	}
	return fallback
}

// LeaveBalance summarizes an employee's leave position in day equivalents.
type LeaveBalance struct {
	OpeningBalance float64            `json:"opening_balance"`
	UsedLeaves     float64            `json:"used_leaves"`
	CurrentBalance float64            `json:"current_balance"`
	LeaveDetails   map[string]int     `json:"leave_details"` // leave type -> approved count
	DayEquivalents map[string]float64 `json:"day_equivalents,omitempty"`
}

// LeaveCount is one aggregated row of approved leave requests by type.
type LeaveCount struct {
	LeaveType string `json:"leave_type" db:"leave_type"`
	Count     int    `json:"count" db:"count"`
}

// WorkReport is a daily report row submitted by an employee.
type WorkReport struct {
	ID         int64     `json:"id" db:"id"`
	EmployeeID int64     `json:"employee_id" db:"developer_id"`
	ReportDate time.Time `json:"report_date" db:"report_date"`
	Details    string    `json:"details" db:"details"`
	Hours      float64   `json:"hours" db:"hours"`
}
