// Package repository implements the domain repositories on MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"leave-manager/internal/domain"
	"leave-manager/internal/models"
	"leave-manager/pkg/database"
	errs "leave-manager/pkg/errors"
)

// SQLRepository satisfies the domain repositories over pkg/database.DB.
// It keeps business logic decoupled from the SQL layer; store failures are
// wrapped as LookupError so callers can tell "the search failed" apart from
// "the search matched nothing".
type SQLRepository struct {
	db *database.DB
}

func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Ensure interface compliance at compile time
var _ domain.Repository = (*SQLRepository)(nil)

const employeeColumns = `d.id, d.developer_name, d.designation, d.email_id, d.mobile,
	d.status, d.doj, d.emp_number, d.blood_group, u.username, d.opening_leave_balance`

const employeeFrom = `FROM developer d LEFT JOIN user u ON d.user_id = u.user_id`

// EmployeeRepository methods

func (r *SQLRepository) SearchEmployeesCtx(ctx context.Context, query string) ([]models.Employee, error) {
	ctx, cancel := r.db.ReadContext(ctx)
	defer cancel()

	like := "%" + query + "%"
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT `+employeeColumns+` `+employeeFrom+`
		WHERE d.developer_name LIKE ? OR d.email_id LIKE ?
		   OR d.mobile LIKE ? OR d.emp_number LIKE ?
		ORDER BY d.developer_name`,
		like, like, like, like)
	if err != nil {
		return nil, errs.NewLookup("repository.SearchEmployeesCtx", "employee search query failed", err)
	}
	defer rows.Close()
	return scanEmployees(rows)
}

func (r *SQLRepository) ListActiveEmployeesCtx(ctx context.Context) ([]models.Employee, error) {
	ctx, cancel := r.db.ReadContext(ctx)
	defer cancel()

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT `+employeeColumns+` `+employeeFrom+`
		WHERE d.status = ?
		ORDER BY d.developer_name`,
		models.StatusActive)
	if err != nil {
		return nil, errs.NewLookup("repository.ListActiveEmployeesCtx", "active employee listing failed", err)
	}
	defer rows.Close()
	return scanEmployees(rows)
}

func (r *SQLRepository) GetEmployeeByIDCtx(ctx context.Context, id int64) (*models.Employee, error) {
	ctx, cancel := r.db.ReadContext(ctx)
	defer cancel()

	row := r.db.Conn().QueryRowContext(ctx, `
		SELECT `+employeeColumns+` `+employeeFrom+`
		WHERE d.id = ?`, id)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewLookup("repository.GetEmployeeByIDCtx", fmt.Sprintf("employee %d fetch failed", id), err)
	}
	return emp, nil
}

// LeaveRepository methods

func (r *SQLRepository) GetApprovedLeaveCountsCtx(ctx context.Context, employeeID int64) ([]models.LeaveCount, error) {
	ctx, cancel := r.db.ReadContext(ctx)
	defer cancel()

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT leave_type, COUNT(*) AS count
		FROM leave_requests
		WHERE developer_id = ? AND status = 'Approved'
		GROUP BY leave_type`, employeeID)
	if err != nil {
		return nil, errs.NewLookup("repository.GetApprovedLeaveCountsCtx", "leave aggregation failed", err)
	}
	defer rows.Close()

	var counts []models.LeaveCount
	for rows.Next() {
		var lc models.LeaveCount
		if err := rows.Scan(&lc.LeaveType, &lc.Count); err != nil {
			return nil, errs.NewLookup("repository.GetApprovedLeaveCountsCtx", "leave row scan failed", err)
		}
		counts = append(counts, lc)
	}
	return counts, rows.Err()
}

func (r *SQLRepository) GetOpeningLeaveBalanceCtx(ctx context.Context, employeeID int64) (float64, error) {
	ctx, cancel := r.db.ReadContext(ctx)
	defer cancel()

	var balance sql.NullFloat64
	err := r.db.Conn().QueryRowContext(ctx,
		`SELECT opening_leave_balance FROM developer WHERE id = ?`, employeeID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errs.NewValidation("repository.GetOpeningLeaveBalanceCtx",
			fmt.Sprintf("employee %d not found", employeeID), nil)
	}
	if err != nil {
		return 0, errs.NewLookup("repository.GetOpeningLeaveBalanceCtx", "opening balance fetch failed", err)
	}
	return balance.Float64, nil
}

// WorkReportRepository methods

func (r *SQLRepository) GetRecentWorkReportsCtx(ctx context.Context, employeeID int64, days int) ([]models.WorkReport, error) {
	ctx, cancel := r.db.ReadContext(ctx)
	defer cancel()

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT id, developer_id, report_date, details, hours
		FROM work_reports
		WHERE developer_id = ? AND report_date >= DATE_SUB(CURDATE(), INTERVAL ? DAY)
		ORDER BY report_date DESC`, employeeID, days)
	if err != nil {
		return nil, errs.NewLookup("repository.GetRecentWorkReportsCtx", "work report query failed", err)
	}
	defer rows.Close()

	var reports []models.WorkReport
	for rows.Next() {
		var (
			wr      models.WorkReport
			date    sql.NullTime
			details sql.NullString
			hours   sql.NullFloat64
		)
		if err := rows.Scan(&wr.ID, &wr.EmployeeID, &date, &details, &hours); err != nil {
			return nil, errs.NewLookup("repository.GetRecentWorkReportsCtx", "work report scan failed", err)
		}
		wr.ReportDate = date.Time
		wr.Details = details.String
		wr.Hours = hours.Float64
		reports = append(reports, wr)
	}
	return reports, rows.Err()
}

// APIKeyRepository methods

func (r *SQLRepository) EnsureAPIKeySchemaCtx(ctx context.Context) error {
	ctx, cancel := r.db.WriteContext(ctx)
	defer cancel()

	_, err := r.db.Conn().ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS api_keys (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			api_key VARCHAR(255) UNIQUE NOT NULL,
			is_active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_used TIMESTAMP NULL,
			expires_at TIMESTAMP NULL
		)`)
	if err != nil {
		return errs.NewLookup("repository.EnsureAPIKeySchemaCtx", "api_keys table creation failed", err)
	}
	return nil
}

func (r *SQLRepository) CreateAPIKeyCtx(ctx context.Context, key *models.APIKey) error {
	ctx, cancel := r.db.WriteContext(ctx)
	defer cancel()

	res, err := r.db.Conn().ExecContext(ctx,
		`INSERT INTO api_keys (name, api_key, expires_at) VALUES (?, ?, ?)`,
		key.Name, key.Key, key.ExpiresAt)
	if err != nil {
		return errs.NewLookup("repository.CreateAPIKeyCtx", "api key insert failed", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		key.ID = id
	}
	return nil
}

func (r *SQLRepository) GetAPIKeyCtx(ctx context.Context, key string) (*models.APIKey, error) {
	ctx, cancel := r.db.ReadContext(ctx)
	defer cancel()

	var (
		k         models.APIKey
		lastUsed  sql.NullTime
		expiresAt sql.NullTime
	)
	err := r.db.Conn().QueryRowContext(ctx, `
		SELECT id, name, api_key, is_active, created_at, last_used, expires_at
		FROM api_keys WHERE api_key = ?`, key).
		Scan(&k.ID, &k.Name, &k.Key, &k.IsActive, &k.CreatedAt, &lastUsed, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewLookup("repository.GetAPIKeyCtx", "api key fetch failed", err)
	}
	if lastUsed.Valid {
		k.LastUsed = &lastUsed.Time
	}
	if expiresAt.Valid {
		k.ExpiresAt = &expiresAt.Time
	}
	return &k, nil
}

func (r *SQLRepository) TouchAPIKeyCtx(ctx context.Context, key string) error {
	ctx, cancel := r.db.WriteContext(ctx)
	defer cancel()

	_, err := r.db.Conn().ExecContext(ctx,
		`UPDATE api_keys SET last_used = NOW() WHERE api_key = ?`, key)
	if err != nil {
		return errs.NewLookup("repository.TouchAPIKeyCtx", "last_used update failed", err)
	}
	return nil
}

func (r *SQLRepository) ListAPIKeysCtx(ctx context.Context) ([]models.APIKey, error) {
	ctx, cancel := r.db.ReadContext(ctx)
	defer cancel()

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT id, name, api_key, is_active, created_at, last_used, expires_at
		FROM api_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, errs.NewLookup("repository.ListAPIKeysCtx", "api key listing failed", err)
	}
	defer rows.Close()

	var keys []models.APIKey
	for rows.Next() {
		var (
			k         models.APIKey
			lastUsed  sql.NullTime
			expiresAt sql.NullTime
		)
		if err := rows.Scan(&k.ID, &k.Name, &k.Key, &k.IsActive, &k.CreatedAt, &lastUsed, &expiresAt); err != nil {
			return nil, errs.NewLookup("repository.ListAPIKeysCtx", "api key scan failed", err)
		}
		if lastUsed.Valid {
			k.LastUsed = &lastUsed.Time
		}
		if expiresAt.Valid {
			k.ExpiresAt = &expiresAt.Time
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *SQLRepository) RevokeAPIKeyCtx(ctx context.Context, key string) (bool, error) {
	ctx, cancel := r.db.WriteContext(ctx)
	defer cancel()

	res, err := r.db.Conn().ExecContext(ctx,
		`UPDATE api_keys SET is_active = FALSE WHERE api_key = ?`, key)
	if err != nil {
		return false, errs.NewLookup("repository.RevokeAPIKeyCtx", "api key revoke failed", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, errs.NewLookup("repository.RevokeAPIKeyCtx", "rows affected unavailable", err)
	}
	return affected > 0, nil
}

func (r *SQLRepository) CountActiveAPIKeysCtx(ctx context.Context) (int, error) {
	ctx, cancel := r.db.ReadContext(ctx)
	defer cancel()

	var count int
	err := r.db.Conn().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM api_keys WHERE is_active = TRUE`).Scan(&count)
	if err != nil {
		return 0, errs.NewLookup("repository.CountActiveAPIKeysCtx", "active key count failed", err)
	}
	return count, nil
}

// LookupExact and ListActive satisfy the resolver's Directory collaborator.

func (r *SQLRepository) LookupExact(ctx context.Context, query string) ([]models.Employee, error) {
	return r.SearchEmployeesCtx(ctx, query)
}

func (r *SQLRepository) ListActive(ctx context.Context) ([]models.Employee, error) {
	return r.ListActiveEmployeesCtx(ctx)
}

// scanning helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*models.Employee, error) {
	var (
		emp         models.Employee
		designation sql.NullString
		email       sql.NullString
		mobile      sql.NullString
		doj         sql.NullTime
		empNumber   sql.NullString
		bloodGroup  sql.NullString
		username    sql.NullString
		opening     sql.NullFloat64
	)
	err := row.Scan(&emp.ID, &emp.DisplayName, &designation, &email, &mobile,
		&emp.Status, &doj, &empNumber, &bloodGroup, &username, &opening)
	if err != nil {
		return nil, err
	}
	if designation.Valid {
		emp.Designation = &designation.String
	}
	if email.Valid {
		emp.Email = &email.String
	}
	if mobile.Valid {
		emp.Mobile = &mobile.String
	}
	if doj.Valid {
		emp.DOJ = &doj.Time
	}
	if empNumber.Valid {
		emp.EmpNumber = &empNumber.String
	}
	if bloodGroup.Valid {
		emp.BloodGroup = &bloodGroup.String
	}
	if username.Valid {
		emp.Username = &username.String
	}
	emp.OpeningLeaveBalance = opening.Float64
	return &emp, nil
}

func scanEmployees(rows *sql.Rows) ([]models.Employee, error) {
	var employees []models.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, errs.NewLookup("repository.scanEmployees", "employee row scan failed", err)
		}
		employees = append(employees, *emp)
	}
	return employees, rows.Err()
}
