// Package tools exposes the HR data operations as named, JSON-invoked tools.
// GET /tools lists the catalog; POST /tools/{name} invokes one with a JSON
// argument object and returns a text report plus structured fields.
package tools

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"leave-manager/internal/assist"
	"leave-manager/internal/auth"
	"leave-manager/internal/domain"
	"leave-manager/internal/matcher"
	"leave-manager/internal/resolver"
	errs "leave-manager/pkg/errors"
	"leave-manager/pkg/logging"
	"leave-manager/pkg/metrics"
)

var (
	mInvocations  = metrics.Default.Counter("tool_invocations_total", "Tool invocations")
	mToolErrors   = metrics.Default.Counter("tool_errors_total", "Tool invocations that failed")
	mUnknownTools = metrics.Default.Counter("tool_unknown_total", "Invocations of unregistered tool names")
)

// Tool is one invokable operation in the catalog.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`

	handler func(w http.ResponseWriter, r *http.Request)
}

// Registry holds the tool catalog and the collaborators handlers need.
type Registry struct {
	repo     domain.Repository
	resolver *resolver.Resolver
	matcher  *matcher.Matcher
	keys     *auth.KeyStore
	assist   *assist.Disambiguator // optional; nil disables AI narrowing
	log      *logging.Logger

	tools map[string]*Tool
	names []string // registration order for stable listing
}

// New builds the registry and registers the full tool set. disambiguator may
// be nil when no OpenAI key is configured.
func New(repo domain.Repository, res *resolver.Resolver, m *matcher.Matcher, keys *auth.KeyStore, disambiguator *assist.Disambiguator, log *logging.Logger) *Registry {
	reg := &Registry{
		repo:     repo,
		resolver: res,
		matcher:  m,
		keys:     keys,
		assist:   disambiguator,
		log:      log.WithComponent("tools"),
		tools:    make(map[string]*Tool),
	}
	reg.registerAll()
	return reg
}

// ToolNames returns the registered tool names in listing order.
func (g *Registry) ToolNames() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	sort.Strings(out)
	return out
}

func (g *Registry) register(t *Tool) {
	g.tools[t.Name] = t
	g.names = append(g.names, t.Name)
}

// RegisterRoutes attaches the catalog endpoints to the router. The router is
// expected to already carry the auth middleware.
func (g *Registry) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/tools", g.handleList).Methods(http.MethodGet)
	r.HandleFunc("/tools/{name}", g.handleInvoke).Methods(http.MethodPost)
}

func (g *Registry) handleList(w http.ResponseWriter, r *http.Request) {
	out := make([]Tool, 0, len(g.names))
	for _, n := range g.names {
		out = append(out, *g.tools[n])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, map[string]any{"tools": out})
}

func (g *Registry) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	t, ok := g.tools[name]
	if !ok {
		mUnknownTools.Inc()
		writeJSON(w, http.StatusNotFound, errorBody("unknown tool", name))
		return
	}
	mInvocations.Inc()

	client, _ := auth.ClientNameFromContext(r.Context())
	reqID, _ := auth.RequestIDFromContext(r.Context())
	g.log.Info("tool invoked",
		logging.String("tool", name),
		logging.String("client", client),
		logging.String("request_id", reqID))

	t.handler(w, r)
}

// decodeArgs parses the JSON argument object. An empty body is allowed and
// leaves the argument struct at its zero value.
func decodeArgs(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if err.Error() == "EOF" {
			return nil
		}
		return errs.NewValidation("tools.decodeArgs", "invalid JSON arguments", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errorBody(msg, details string) map[string]string {
	b := map[string]string{"error": msg}
	if details != "" {
		b["details"] = details
	}
	return b
}

// writeToolError maps domain error kinds to HTTP statuses.
func (g *Registry) writeToolError(w http.ResponseWriter, op string, err error) {
	mToolErrors.Inc()
	switch {
	case errs.Is(err, errs.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody("invalid arguments", err.Error()))
	case errs.Is(err, errs.ErrLookup):
		g.log.Error("data lookup failed", logging.String("op", op), logging.Err(err))
		writeJSON(w, http.StatusServiceUnavailable, errorBody("data source unavailable", ""))
	default:
		g.log.Error("tool failed", logging.String("op", op), logging.Err(err))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error", ""))
	}
}

func schema(s string) json.RawMessage { return json.RawMessage(s) }
