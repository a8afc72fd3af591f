package domain

import (
	"context"

	"leave-manager/internal/models"
)

// EmployeeRepository defines data access for employee records.
type EmployeeRepository interface {
	// SearchEmployeesCtx substring-matches across name/email/mobile/employee
	// number, active and inactive alike, ordered by display name.
	SearchEmployeesCtx(ctx context.Context, query string) ([]models.Employee, error)
	// ListActiveEmployeesCtx returns all employees with active status.
	ListActiveEmployeesCtx(ctx context.Context) ([]models.Employee, error)
	GetEmployeeByIDCtx(ctx context.Context, id int64) (*models.Employee, error)
}

// LeaveRepository defines access to approved leave aggregates.
type LeaveRepository interface {
	GetApprovedLeaveCountsCtx(ctx context.Context, employeeID int64) ([]models.LeaveCount, error)
	GetOpeningLeaveBalanceCtx(ctx context.Context, employeeID int64) (float64, error)
}

// WorkReportRepository defines access to daily work reports.
type WorkReportRepository interface {
	GetRecentWorkReportsCtx(ctx context.Context, employeeID int64, days int) ([]models.WorkReport, error)
}

// APIKeyRepository defines access to client API keys.
type APIKeyRepository interface {
	EnsureAPIKeySchemaCtx(ctx context.Context) error
	CreateAPIKeyCtx(ctx context.Context, key *models.APIKey) error
	GetAPIKeyCtx(ctx context.Context, key string) (*models.APIKey, error)
	TouchAPIKeyCtx(ctx context.Context, key string) error
	ListAPIKeysCtx(ctx context.Context) ([]models.APIKey, error)
	RevokeAPIKeyCtx(ctx context.Context, key string) (bool, error)
	CountActiveAPIKeysCtx(ctx context.Context) (int, error)
}

// Repository aggregates the repos commonly required by services.
type Repository interface {
	EmployeeRepository
	LeaveRepository
	WorkReportRepository
	APIKeyRepository
}
