package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces a per-client requests-per-minute budget. Clients are
// keyed by API key when present, client IP otherwise.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	perMin  int

	maxClients int // prune oldest entries past this to bound memory
}

type clientLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 100
	}
	return &RateLimiter{
		clients:    make(map[string]*clientLimiter),
		perMin:     perMinute,
		maxClients: 4096,
	}
}

// Allow reports whether the client identified by id may make a request now.
func (r *RateLimiter) Allow(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cl, ok := r.clients[id]
	if !ok {
		if len(r.clients) >= r.maxClients {
			r.pruneLocked()
		}
		cl = &clientLimiter{
			lim: rate.NewLimiter(rate.Limit(float64(r.perMin)/60.0), r.perMin),
		}
		r.clients[id] = cl
	}
	cl.lastSeen = time.Now()
	return cl.lim.Allow()
}

// pruneLocked drops clients idle for over an hour; if none qualify it drops
// the stalest half so the map cannot grow without bound.
func (r *RateLimiter) pruneLocked() {
	cutoff := time.Now().Add(-time.Hour)
	for id, cl := range r.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(r.clients, id)
		}
	}
	if len(r.clients) < r.maxClients {
		return
	}
	drop := len(r.clients) / 2
	for id := range r.clients {
		if drop == 0 {
			break
		}
		delete(r.clients, id)
		drop--
	}
}

// PerMinute exposes the configured budget for the info endpoint.
func (r *RateLimiter) PerMinute() int { return r.perMin }
