package testutil

import (
	"context"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"leave-manager/internal/models"
)

// MockDirectory implements resolver.Directory for tests.
type MockDirectory struct {
	Mu        sync.Mutex
	Exact     map[string][]models.Employee
	Active    []models.Employee
	ExactErr  error
	ActiveErr error

	ExactCalls  int
	ActiveCalls int
}

func NewMockDirectory() *MockDirectory {
	return &MockDirectory{Exact: map[string][]models.Employee{}}
}

func (m *MockDirectory) LookupExact(ctx context.Context, query string) ([]models.Employee, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.ExactCalls++
	if m.ExactErr != nil {
		return nil, m.ExactErr
	}
	return m.Exact[query], nil
}

func (m *MockDirectory) ListActive(ctx context.Context) ([]models.Employee, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.ActiveCalls++
	if m.ActiveErr != nil {
		return nil, m.ActiveErr
	}
	return m.Active, nil
}

// MockRepository implements domain.Repository for tests. Zero value is usable;
// unset lookups return empty results rather than errors.
type MockRepository struct {
	Mu sync.Mutex

	Employees    []models.Employee
	EmployeeErr  error
	LeaveCounts  map[int64][]models.LeaveCount
	Openings     map[int64]float64
	LeaveErr     error
	WorkReports  map[int64][]models.WorkReport
	WorkErr      error
	Keys         []models.APIKey
	KeyErr       error
	SchemaCalls  int
	CreatedKeys  []models.APIKey
	TouchedKeys  []string
	RevokedKeys  []string
	RevokeResult bool
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		LeaveCounts: map[int64][]models.LeaveCount{},
		Openings:    map[int64]float64{},
		WorkReports: map[int64][]models.WorkReport{},
	}
}

func (m *MockRepository) SearchEmployeesCtx(ctx context.Context, query string) ([]models.Employee, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.EmployeeErr != nil {
		return nil, m.EmployeeErr
	}
	q := strings.ToLower(query)
	var out []models.Employee
	for _, e := range m.Employees {
		if strings.Contains(strings.ToLower(e.DisplayName), q) ||
			(e.Email != nil && strings.Contains(strings.ToLower(*e.Email), q)) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockRepository) ListActiveEmployeesCtx(ctx context.Context) ([]models.Employee, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.EmployeeErr != nil {
		return nil, m.EmployeeErr
	}
	var out []models.Employee
	for _, e := range m.Employees {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockRepository) GetEmployeeByIDCtx(ctx context.Context, id int64) (*models.Employee, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.EmployeeErr != nil {
		return nil, m.EmployeeErr
	}
	for i := range m.Employees {
		if m.Employees[i].ID == id {
			e := m.Employees[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) GetApprovedLeaveCountsCtx(ctx context.Context, employeeID int64) ([]models.LeaveCount, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.LeaveErr != nil {
		return nil, m.LeaveErr
	}
	return m.LeaveCounts[employeeID], nil
}

func (m *MockRepository) GetOpeningLeaveBalanceCtx(ctx context.Context, employeeID int64) (float64, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.LeaveErr != nil {
		return 0, m.LeaveErr
	}
	return m.Openings[employeeID], nil
}

func (m *MockRepository) GetRecentWorkReportsCtx(ctx context.Context, employeeID int64, days int) ([]models.WorkReport, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.WorkErr != nil {
		return nil, m.WorkErr
	}
	return m.WorkReports[employeeID], nil
}

func (m *MockRepository) EnsureAPIKeySchemaCtx(ctx context.Context) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.SchemaCalls++
	return m.KeyErr
}

func (m *MockRepository) CreateAPIKeyCtx(ctx context.Context, key *models.APIKey) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.KeyErr != nil {
		return m.KeyErr
	}
	m.CreatedKeys = append(m.CreatedKeys, *key)
	m.Keys = append(m.Keys, *key)
	return nil
}

func (m *MockRepository) GetAPIKeyCtx(ctx context.Context, key string) (*models.APIKey, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.KeyErr != nil {
		return nil, m.KeyErr
	}
	for i := range m.Keys {
		if m.Keys[i].Key == key {
			k := m.Keys[i]
			return &k, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) TouchAPIKeyCtx(ctx context.Context, key string) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.TouchedKeys = append(m.TouchedKeys, key)
	return nil
}

func (m *MockRepository) ListAPIKeysCtx(ctx context.Context) ([]models.APIKey, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.KeyErr != nil {
		return nil, m.KeyErr
	}
	return m.Keys, nil
}

func (m *MockRepository) RevokeAPIKeyCtx(ctx context.Context, key string) (bool, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.KeyErr != nil {
		return false, m.KeyErr
	}
	m.RevokedKeys = append(m.RevokedKeys, key)
	for i := range m.Keys {
		if m.Keys[i].Key == key && m.Keys[i].IsActive {
			m.Keys[i].IsActive = false
			return true, nil
		}
	}
	return m.RevokeResult, nil
}

func (m *MockRepository) CountActiveAPIKeysCtx(ctx context.Context) (int, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.KeyErr != nil {
		return 0, m.KeyErr
	}
	n := 0
	for _, k := range m.Keys {
		if k.IsActive {
			n++
		}
	}
	return n, nil
}

// MockCompleter implements assist.ChatCompleter for tests.
type MockCompleter struct {
	Mu      sync.Mutex
	Content string
	Err     error
	Calls   int
}

func (m *MockCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return openai.ChatCompletionResponse{}, m.Err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: m.Content}},
		},
	}, nil
}
