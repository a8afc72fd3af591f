// Package health runs named component checks and serves the aggregate result
// as the public /health endpoint.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status represents the health status of a component or the whole system.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// ComponentHealth is the result of a single component check.
type ComponentHealth struct {
	Name     string         `json:"name"`
	Status   Status         `json:"status"`
	Duration time.Duration  `json:"duration"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SystemHealth is the aggregate served by the endpoint.
type SystemHealth struct {
	Status     Status                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Service    string                     `json:"service"`
	Version    string                     `json:"version,omitempty"`
	Uptime     string                     `json:"uptime"`
	Components map[string]ComponentHealth `json:"components"`
}

// CheckFunc performs one component check.
type CheckFunc func(ctx context.Context) ComponentHealth

// Manager runs registered checks on demand.
type Manager struct {
	mu        sync.RWMutex
	checks    map[string]CheckFunc
	service   string
	version   string
	timeout   time.Duration
	startTime time.Time
}

func NewManager(service, version string, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Manager{
		checks:    make(map[string]CheckFunc),
		service:   service,
		version:   version,
		timeout:   timeout,
		startTime: time.Now(),
	}
}

// Register adds a named check. Later registrations replace earlier ones.
func (m *Manager) Register(name string, fn CheckFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[name] = fn
}

// Check runs all registered checks and aggregates their status: any
// unhealthy component makes the system unhealthy, any degraded one makes it
// degraded, otherwise healthy.
func (m *Manager) Check(ctx context.Context) SystemHealth {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.RLock()
	checks := make(map[string]CheckFunc, len(m.checks))
	for name, fn := range m.checks {
		checks[name] = fn
	}
	m.mu.RUnlock()

	components := make(map[string]ComponentHealth, len(checks))
	overall := StatusHealthy
	for name, fn := range checks {
		start := time.Now()
		ch := fn(ctx)
		ch.Name = name
		ch.Duration = time.Since(start)
		components[name] = ch

		switch ch.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
		case StatusDegraded:
			if overall == StatusHealthy {
				overall = StatusDegraded
			}
		}
	}

	return SystemHealth{
		Status:     overall,
		Timestamp:  time.Now(),
		Service:    m.service,
		Version:    m.version,
		Uptime:     time.Since(m.startTime).Round(time.Second).String(),
		Components: components,
	}
}

// Handler serves the aggregate health as JSON. Unhealthy systems answer 503
// so load balancers can react; degraded still answers 200.
func (m *Manager) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sys := m.Check(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if sys.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(sys)
	}
}

// Pinger is anything that can verify connectivity, e.g. the database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseCheck builds a check that pings the store.
func DatabaseCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) ComponentHealth {
		if err := p.Ping(ctx); err != nil {
			return ComponentHealth{Status: StatusUnhealthy, Error: err.Error()}
		}
		return ComponentHealth{Status: StatusHealthy, Metadata: map[string]any{"connected": true}}
	}
}
