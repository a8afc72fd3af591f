package tools

import (
	"net/http"
	"strings"

	"leave-manager/internal/constants"
	"leave-manager/internal/leave"
	"leave-manager/internal/models"
	errs "leave-manager/pkg/errors"
	"leave-manager/pkg/logging"
)

func (g *Registry) registerAll() {
	g.register(&Tool{
		Name:        "get_employee_details",
		Description: "Look up an employee by (possibly misspelled) name and return their profile and leave balance.",
		InputSchema: schema(`{"type":"object","properties":{"name":{"type":"string"},"additional_context":{"type":"string"}},"required":["name"]}`),
		handler:     g.getEmployeeDetails,
	})
	g.register(&Tool{
		Name:        "get_leave_balance",
		Description: "Resolve an employee and report their current leave balance in day equivalents.",
		InputSchema: schema(`{"type":"object","properties":{"name":{"type":"string"},"additional_context":{"type":"string"}},"required":["name"]}`),
		handler:     g.getLeaveBalance,
	})
	g.register(&Tool{
		Name:        "search_employees",
		Description: "Substring search across employee names, emails, mobiles and employee numbers, with a fuzzy fallback.",
		InputSchema: schema(`{"type":"object","properties":{"search_query":{"type":"string"}},"required":["search_query"]}`),
		handler:     g.searchEmployees,
	})
	g.register(&Tool{
		Name:        "get_work_reports",
		Description: "Resolve an employee and return their recent daily work reports.",
		InputSchema: schema(`{"type":"object","properties":{"name":{"type":"string"},"additional_context":{"type":"string"},"days":{"type":"integer"}},"required":["name"]}`),
		handler:     g.getWorkReports,
	})
	g.register(&Tool{
		Name:        "generate_api_key",
		Description: "Create a new client API key. The full key is shown once in the response.",
		InputSchema: schema(`{"type":"object","properties":{"name":{"type":"string"},"expires_days":{"type":"integer"}},"required":["name"]}`),
		handler:     g.generateAPIKey,
	})
	g.register(&Tool{
		Name:        "list_api_keys",
		Description: "List stored API keys with masked values.",
		InputSchema: schema(`{"type":"object","properties":{}}`),
		handler:     g.listAPIKeys,
	})
	g.register(&Tool{
		Name:        "revoke_api_key",
		Description: "Deactivate API keys whose value starts with the given prefix.",
		InputSchema: schema(`{"type":"object","properties":{"key_prefix":{"type":"string"}},"required":["key_prefix"]}`),
		handler:     g.revokeAPIKey,
	})
}

type resolveArgs struct {
	Name    string `json:"name"`
	Context string `json:"additional_context"`
}

// resolveOrReply resolves a name and, on anything but a single match, writes
// the not-found or ambiguous reply itself and returns ok=false. The assist
// pick runs only for ambiguous results with a context.
func (g *Registry) resolveOrReply(w http.ResponseWriter, r *http.Request, args resolveArgs) (*models.Employee, bool) {
	if strings.TrimSpace(args.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid arguments", "name is required"))
		return nil, false
	}

	res, err := g.resolver.Resolve(r.Context(), args.Name, args.Context)
	if err != nil {
		g.writeToolError(w, "tools.resolve", err)
		return nil, false
	}

	switch res.Status {
	case models.ResolutionResolved:
		return res.Employee, true
	case models.ResolutionNotFound:
		writeJSON(w, http.StatusOK, map[string]any{
			"status": res.Status,
			"query":  res.Query,
			"result": formatNotFound(res.Query),
		})
		return nil, false
	}

	if g.assist != nil && strings.TrimSpace(args.Context) != "" {
		if i, ok := g.assist.Pick(r.Context(), args.Name, args.Context, res.Candidates); ok {
			g.log.Info("ambiguity narrowed by assist",
				logging.String("query", args.Name),
				logging.Int64("employee_id", res.Candidates[i].ID))
			return &res.Candidates[i], true
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     res.Status,
		"query":      res.Query,
		"candidates": res.Candidates,
		"result":     formatAmbiguous(res.Query, res.Candidates),
	})
	return nil, false
}

func (g *Registry) getEmployeeDetails(w http.ResponseWriter, r *http.Request) {
	var args resolveArgs
	if err := decodeArgs(r, &args); err != nil {
		g.writeToolError(w, "tools.get_employee_details", err)
		return
	}
	emp, ok := g.resolveOrReply(w, r, args)
	if !ok {
		return
	}

	balance, err := g.balanceFor(r, emp.ID)
	if err != nil {
		g.writeToolError(w, "tools.get_employee_details", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   models.ResolutionResolved,
		"employee": emp,
		"balance":  balance,
		"result":   formatEmployeeDetails(*emp) + formatLeaveBalance(*emp, balance),
	})
}

// balanceFor loads the opening balance and approved leave counts and folds
// them into the current position.
func (g *Registry) balanceFor(r *http.Request, employeeID int64) (models.LeaveBalance, error) {
	opening, err := g.repo.GetOpeningLeaveBalanceCtx(r.Context(), employeeID)
	if err != nil {
		return models.LeaveBalance{}, err
	}
	counts, err := g.repo.GetApprovedLeaveCountsCtx(r.Context(), employeeID)
	if err != nil {
		return models.LeaveBalance{}, err
	}
	return leave.Calculate(opening, counts), nil
}

func (g *Registry) getLeaveBalance(w http.ResponseWriter, r *http.Request) {
	var args resolveArgs
	if err := decodeArgs(r, &args); err != nil {
		g.writeToolError(w, "tools.get_leave_balance", err)
		return
	}
	emp, ok := g.resolveOrReply(w, r, args)
	if !ok {
		return
	}

	balance, err := g.balanceFor(r, emp.ID)
	if err != nil {
		g.writeToolError(w, "tools.get_leave_balance", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   models.ResolutionResolved,
		"employee": emp,
		"balance":  balance,
		"result":   formatLeaveBalance(*emp, balance),
	})
}

type searchArgs struct {
	Query string `json:"search_query"`
}

// searchHit pairs an employee with a best-effort current balance. Balance is
// nil when the leave lookup failed; the search result is still returned.
type searchHit struct {
	Employee models.Employee      `json:"employee"`
	Balance  *models.LeaveBalance `json:"balance,omitempty"`
	Score    float64              `json:"score,omitempty"`
}

func (g *Registry) searchEmployees(w http.ResponseWriter, r *http.Request) {
	var args searchArgs
	if err := decodeArgs(r, &args); err != nil {
		g.writeToolError(w, "tools.search_employees", err)
		return
	}
	if strings.TrimSpace(args.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid arguments", "search_query is required"))
		return
	}

	found, err := g.repo.SearchEmployeesCtx(r.Context(), args.Query)
	if err != nil {
		g.writeToolError(w, "tools.search_employees", err)
		return
	}

	mode := "exact"
	hits := make([]searchHit, 0, len(found))
	for _, e := range found {
		hits = append(hits, searchHit{Employee: e})
	}

	// Substring search came up empty: rank all active employees by name
	// similarity instead.
	if len(hits) == 0 {
		active, err := g.repo.ListActiveEmployeesCtx(r.Context())
		if err != nil {
			g.writeToolError(w, "tools.search_employees", err)
			return
		}
		ranked := g.matcher.RankMatches(args.Query, active)
		if len(ranked) > constants.MaxFuzzyCandidates {
			ranked = ranked[:constants.MaxFuzzyCandidates]
		}
		if len(ranked) > 0 {
			mode = "fuzzy"
		}
		for _, c := range ranked {
			hits = append(hits, searchHit{Employee: c.Employee, Score: c.Score})
		}
	}

	for i := range hits {
		bal, err := g.balanceFor(r, hits[i].Employee.ID)
		if err != nil {
			g.log.Warn("quick balance lookup failed",
				logging.Int64("employee_id", hits[i].Employee.ID),
				logging.Err(err))
			continue
		}
		hits[i].Balance = &bal
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":      args.Query,
		"match_mode": mode,
		"employees":  hits,
		"result":     formatSearchHits(args.Query, mode, hits),
	})
}

type workReportArgs struct {
	resolveArgs
	Days int `json:"days"`
}

func (g *Registry) getWorkReports(w http.ResponseWriter, r *http.Request) {
	var args workReportArgs
	if err := decodeArgs(r, &args); err != nil {
		g.writeToolError(w, "tools.get_work_reports", err)
		return
	}
	if args.Days <= 0 {
		args.Days = constants.WorkReportDefaultDays
	}
	emp, ok := g.resolveOrReply(w, r, args.resolveArgs)
	if !ok {
		return
	}

	reports, err := g.repo.GetRecentWorkReportsCtx(r.Context(), emp.ID, args.Days)
	if err != nil {
		g.writeToolError(w, "tools.get_work_reports", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   models.ResolutionResolved,
		"employee": emp,
		"reports":  reports,
		"result":   formatWorkReports(*emp, args.Days, reports),
	})
}

type generateKeyArgs struct {
	Name        string `json:"name"`
	ExpiresDays int    `json:"expires_days"`
}

func (g *Registry) generateAPIKey(w http.ResponseWriter, r *http.Request) {
	var args generateKeyArgs
	if err := decodeArgs(r, &args); err != nil {
		g.writeToolError(w, "tools.generate_api_key", err)
		return
	}
	if strings.TrimSpace(args.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid arguments", "name is required"))
		return
	}
	if args.ExpiresDays <= 0 {
		args.ExpiresDays = constants.APIKeyDefaultExpiryDays
	}

	key, err := g.keys.Generate(r.Context(), args.Name, args.ExpiresDays)
	if err != nil {
		g.writeToolError(w, "tools.generate_api_key", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":       key.Name,
		"key":        key.Key, // full value, shown only here
		"expires_at": key.ExpiresAt,
		"result":     formatGeneratedKey(*key),
	})
}

func (g *Registry) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := g.keys.List(r.Context())
	if err != nil {
		g.writeToolError(w, "tools.list_api_keys", err)
		return
	}
	masked := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		masked = append(masked, map[string]any{
			"name":       k.Name,
			"key":        k.Masked(),
			"is_active":  k.IsActive,
			"created_at": k.CreatedAt,
			"last_used":  k.LastUsed,
			"expires_at": k.ExpiresAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"keys":   masked,
		"result": formatKeyList(keys),
	})
}

type revokeKeyArgs struct {
	KeyPrefix string `json:"key_prefix"`
}

func (g *Registry) revokeAPIKey(w http.ResponseWriter, r *http.Request) {
	var args revokeKeyArgs
	if err := decodeArgs(r, &args); err != nil {
		g.writeToolError(w, "tools.revoke_api_key", err)
		return
	}

	revoked, err := g.keys.RevokeByPrefix(r.Context(), args.KeyPrefix)
	if err != nil {
		if errs.Is(err, errs.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid arguments", err.Error()))
			return
		}
		g.writeToolError(w, "tools.revoke_api_key", err)
		return
	}
	msg := "No matching active key found."
	if revoked {
		msg = "API key revoked."
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"revoked": revoked,
		"result":  msg,
	})
}
