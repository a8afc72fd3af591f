package tools

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"leave-manager/internal/assist"
	"leave-manager/internal/auth"
	"leave-manager/internal/matcher"
	"leave-manager/internal/models"
	"leave-manager/internal/resolver"
	testutil "leave-manager/internal/testing"
	"leave-manager/pkg/logging"
)

func strPtr(s string) *string { return &s }

func fixtureRepo() *testutil.MockRepository {
	repo := testutil.NewMockRepository()
	repo.Employees = []models.Employee{
		{ID: 1, DisplayName: "John Doe", Designation: strPtr("Backend Engineer"),
			Email: strPtr("john@corp.test"), Status: models.StatusActive, OpeningLeaveBalance: 12},
		{ID: 2, DisplayName: "Arun Kumar", Designation: strPtr("QA Engineer"),
			Email: strPtr("arun@corp.test"), Status: models.StatusActive},
		{ID: 3, DisplayName: "Vijay Kumar", Designation: strPtr("Backend Engineer"),
			Email: strPtr("vijay@corp.test"), Status: models.StatusActive},
	}
	repo.Openings[1] = 12
	repo.LeaveCounts[1] = []models.LeaveCount{
		{LeaveType: "FULL DAY", Count: 2},
		{LeaveType: "HALF DAY", Count: 1},
	}
	repo.WorkReports[1] = []models.WorkReport{
		{ID: 10, EmployeeID: 1, ReportDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
			Details: "reviewed payroll batch", Hours: 7.5},
	}
	return repo
}

type testDirectory struct {
	repo *testutil.MockRepository
}

// exact lookup mimics the SQL substring search over the fixture set.
func (d testDirectory) lookup(query string) []models.Employee {
	q := strings.ToLower(query)
	var out []models.Employee
	for _, e := range d.repo.Employees {
		if strings.Contains(strings.ToLower(e.DisplayName), q) {
			out = append(out, e)
		}
	}
	return out
}

func newTestRegistry(t *testing.T, repo *testutil.MockRepository, disambiguator *assist.Disambiguator) (*Registry, *mux.Router) {
	t.Helper()
	log := logging.New(logging.Config{Level: "error", Format: "text"})

	dir := testutil.NewMockDirectory()
	d := testDirectory{repo: repo}
	for _, q := range []string{"john doe", "kumar", "arun kumar"} {
		dir.Exact[q] = d.lookup(q)
	}
	for _, e := range repo.Employees {
		dir.Active = append(dir.Active, e)
	}

	m := matcher.New(matcher.DefaultConfig(), matcher.Levenshtein{})
	res := resolver.New(dir, m, 5)
	keys := auth.NewKeyStore(nil, "", repo, log)
	reg := New(repo, res, m, keys, disambiguator, log)

	router := mux.NewRouter()
	reg.RegisterRoutes(router)
	return reg, router
}

func invoke(t *testing.T, router *mux.Router, tool, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/tools/"+tool, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return rec, out
}

func TestListTools(t *testing.T) {
	_, router := newTestRegistry(t, fixtureRepo(), nil)

	req := httptest.NewRequest(http.MethodGet, "/tools", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var out struct {
		Tools []Tool `json:"tools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	want := []string{
		"generate_api_key", "get_employee_details", "get_leave_balance",
		"get_work_reports", "list_api_keys", "revoke_api_key", "search_employees",
	}
	if len(out.Tools) != len(want) {
		t.Fatalf("tool count = %d, want %d", len(out.Tools), len(want))
	}
	for i, w := range want {
		if out.Tools[i].Name != w {
			t.Fatalf("tool %d = %q, want %q", i, out.Tools[i].Name, w)
		}
	}
}

func TestUnknownTool(t *testing.T) {
	_, router := newTestRegistry(t, fixtureRepo(), nil)
	rec, _ := invoke(t, router, "launch_rocket", `{}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetEmployeeDetailsResolved(t *testing.T) {
	_, router := newTestRegistry(t, fixtureRepo(), nil)
	rec, out := invoke(t, router, "get_employee_details", `{"name":"john doe"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if out["status"] != "resolved" {
		t.Fatalf("status field = %v, want resolved", out["status"])
	}
	result, _ := out["result"].(string)
	if !strings.Contains(result, "John Doe") || !strings.Contains(result, "Backend Engineer") {
		t.Fatalf("report missing fields:\n%s", result)
	}
	balance, _ := out["balance"].(map[string]any)
	if balance == nil {
		t.Fatalf("balance missing: %v", out)
	}
	if cur := balance["current_balance"].(float64); cur != 9.5 {
		t.Fatalf("current = %v, want 9.5", cur)
	}
	if !strings.Contains(result, "Current balance: 9.50 days") {
		t.Fatalf("report missing balance line:\n%s", result)
	}
}

func TestGetEmployeeDetailsNotFound(t *testing.T) {
	_, router := newTestRegistry(t, fixtureRepo(), nil)
	rec, out := invoke(t, router, "get_employee_details", `{"name":"zzzz qqqq"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if out["status"] != "not_found" {
		t.Fatalf("status field = %v, want not_found", out["status"])
	}
}

func TestGetEmployeeDetailsAmbiguous(t *testing.T) {
	_, router := newTestRegistry(t, fixtureRepo(), nil)
	rec, out := invoke(t, router, "get_employee_details", `{"name":"kumar"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if out["status"] != "ambiguous" {
		t.Fatalf("status field = %v, want ambiguous", out["status"])
	}
	candidates, _ := out["candidates"].([]any)
	if len(candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(candidates))
	}
	result, _ := out["result"].(string)
	if !strings.Contains(result, "Arun Kumar") || !strings.Contains(result, "Vijay Kumar") {
		t.Fatalf("options list incomplete:\n%s", result)
	}
}

func TestGetEmployeeDetailsContextNarrows(t *testing.T) {
	_, router := newTestRegistry(t, fixtureRepo(), nil)
	rec, out := invoke(t, router, "get_employee_details", `{"name":"kumar","additional_context":"qa"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if out["status"] != "resolved" {
		t.Fatalf("status field = %v, want resolved", out["status"])
	}
	result, _ := out["result"].(string)
	if !strings.Contains(result, "Arun Kumar") {
		t.Fatalf("context picked wrong employee:\n%s", result)
	}
}

func TestGetEmployeeDetailsAssistPick(t *testing.T) {
	// both candidates are backend engineers, so the plain context filter
	// keeps two and only the assist can decide
	completer := &testutil.MockCompleter{Content: "2"}
	log := logging.New(logging.Config{Level: "error", Format: "text"})
	d := assist.NewWithClient(completer, "test-model", time.Second, log)
	repo := fixtureRepo()
	repo.Employees[1].Designation = strPtr("Backend Engineer")
	_, router := newTestRegistry(t, repo, d)

	rec, out := invoke(t, router, "get_employee_details", `{"name":"kumar","additional_context":"backend"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if out["status"] != "resolved" {
		t.Fatalf("status field = %v, want resolved (assist should narrow)", out["status"])
	}
	if completer.Calls != 1 {
		t.Fatalf("assist called %d times, want 1", completer.Calls)
	}
	result, _ := out["result"].(string)
	if !strings.Contains(result, "Vijay Kumar") {
		t.Fatalf("assist pick ignored:\n%s", result)
	}
}

func TestGetEmployeeDetailsMissingName(t *testing.T) {
	_, router := newTestRegistry(t, fixtureRepo(), nil)
	rec, _ := invoke(t, router, "get_employee_details", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetLeaveBalance(t *testing.T) {
	_, router := newTestRegistry(t, fixtureRepo(), nil)
	rec, out := invoke(t, router, "get_leave_balance", `{"name":"john doe"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	balance, _ := out["balance"].(map[string]any)
	if balance == nil {
		t.Fatalf("balance missing: %v", out)
	}
	// 2 full days + 1 half day = 2.5 used, 12 - 2.5 = 9.5
	if used := balance["used_leaves"].(float64); used != 2.5 {
		t.Fatalf("used = %v, want 2.5", used)
	}
	if cur := balance["current_balance"].(float64); cur != 9.5 {
		t.Fatalf("current = %v, want 9.5", cur)
	}
}

func TestSearchEmployees(t *testing.T) {
	_, router := newTestRegistry(t, fixtureRepo(), nil)
	rec, out := invoke(t, router, "search_employees", `{"search_query":"kumar"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if out["match_mode"] != "exact" {
		t.Fatalf("match_mode = %v, want exact", out["match_mode"])
	}
	found, _ := out["employees"].([]any)
	if len(found) != 2 {
		t.Fatalf("employees = %d, want 2", len(found))
	}
}

func TestSearchEmployeesFuzzyFallback(t *testing.T) {
	_, router := newTestRegistry(t, fixtureRepo(), nil)
	// no substring hit for the misspelling, similarity ranking takes over
	rec, out := invoke(t, router, "search_employees", `{"search_query":"jhon doe"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if out["match_mode"] != "fuzzy" {
		t.Fatalf("match_mode = %v, want fuzzy", out["match_mode"])
	}
	found, _ := out["employees"].([]any)
	if len(found) != 1 {
		t.Fatalf("employees = %d, want 1", len(found))
	}
	hit := found[0].(map[string]any)
	emp := hit["employee"].(map[string]any)
	if emp["display_name"] != "John Doe" {
		t.Fatalf("fuzzy hit = %v, want John Doe", emp["display_name"])
	}
	if hit["score"].(float64) <= 0 {
		t.Fatalf("score missing on fuzzy hit: %v", hit)
	}
}

func TestSearchEmployeesIncludesBalance(t *testing.T) {
	_, router := newTestRegistry(t, fixtureRepo(), nil)
	rec, out := invoke(t, router, "search_employees", `{"search_query":"john"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	found, _ := out["employees"].([]any)
	if len(found) != 1 {
		t.Fatalf("employees = %d, want 1", len(found))
	}
	bal, _ := found[0].(map[string]any)["balance"].(map[string]any)
	if bal == nil {
		t.Fatalf("balance missing on hit: %v", found[0])
	}
	if cur := bal["current_balance"].(float64); cur != 9.5 {
		t.Fatalf("current = %v, want 9.5", cur)
	}
}

func TestSearchEmployeesEmptyQuery(t *testing.T) {
	_, router := newTestRegistry(t, fixtureRepo(), nil)
	rec, _ := invoke(t, router, "search_employees", `{"search_query":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetWorkReports(t *testing.T) {
	_, router := newTestRegistry(t, fixtureRepo(), nil)
	rec, out := invoke(t, router, "get_work_reports", `{"name":"john doe","days":14}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	reports, _ := out["reports"].([]any)
	if len(reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(reports))
	}
	result, _ := out["result"].(string)
	if !strings.Contains(result, "2025-06-02") {
		t.Fatalf("report date missing:\n%s", result)
	}
}

func TestGenerateAndListAndRevokeAPIKey(t *testing.T) {
	repo := fixtureRepo()
	_, router := newTestRegistry(t, repo, nil)

	rec, out := invoke(t, router, "generate_api_key", `{"name":"reporting","expires_days":30}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d: %s", rec.Code, rec.Body.String())
	}
	full, _ := out["key"].(string)
	if !strings.HasPrefix(full, auth.KeyPrefix) {
		t.Fatalf("generated key %q missing prefix", full)
	}

	rec, out = invoke(t, router, "list_api_keys", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	listed, _ := out["keys"].([]any)
	if len(listed) != 1 {
		t.Fatalf("listed keys = %d, want 1", len(listed))
	}
	masked := listed[0].(map[string]any)["key"].(string)
	if masked == full {
		t.Fatal("list leaked the full key")
	}

	rec, out = invoke(t, router, "revoke_api_key", `{"key_prefix":"`+full[:12]+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("revoke status = %d", rec.Code)
	}
	if out["revoked"] != true {
		t.Fatalf("revoked = %v, want true", out["revoked"])
	}
}

func TestGenerateAPIKeyMissingName(t *testing.T) {
	_, router := newTestRegistry(t, fixtureRepo(), nil)
	rec, _ := invoke(t, router, "generate_api_key", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRevokeAPIKeyShortPrefix(t *testing.T) {
	_, router := newTestRegistry(t, fixtureRepo(), nil)
	rec, _ := invoke(t, router, "revoke_api_key", `{"key_prefix":"lm"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestLookupFailureReturns503(t *testing.T) {
	repo := fixtureRepo()
	dirErr := testutil.NewMockDirectory()
	dirErr.ExactErr = errTest("connection refused")

	log := logging.New(logging.Config{Level: "error", Format: "text"})
	m := matcher.New(matcher.DefaultConfig(), matcher.Levenshtein{})
	res := resolver.New(dirErr, m, 5)
	keys := auth.NewKeyStore(nil, "", repo, log)
	reg := New(repo, res, m, keys, nil, log)
	router := mux.NewRouter()
	reg.RegisterRoutes(router)

	rec, _ := invoke(t, router, "get_employee_details", `{"name":"john doe"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
