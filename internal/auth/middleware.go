package auth

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"leave-manager/pkg/logging"
	"leave-manager/pkg/metrics"
)

var (
	mAuthRejected = metrics.Default.Counter("auth_rejected_total", "Requests rejected for missing or invalid API keys")
	mRateLimited  = metrics.Default.Counter("rate_limited_total", "Requests rejected by the per-client rate limit")
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClientNameKey is the context key for the authenticated client name.
	ClientNameKey contextKey = "client_name"
	// RequestIDKey is the context key for the per-request id.
	RequestIDKey contextKey = "request_id"
)

// Public paths that skip authentication and rate limiting.
var publicPaths = map[string]bool{
	"/":       true,
	"/health": true,
}

// Middleware validates API keys and applies per-client rate limits on all
// non-public routes.
type Middleware struct {
	store   *KeyStore
	limiter *RateLimiter // nil disables rate limiting
	header  string       // primary API key header, e.g. "x-api-key"
	require bool
	log     *logging.Logger
}

func NewMiddleware(store *KeyStore, limiter *RateLimiter, header string, require bool, log *logging.Logger) *Middleware {
	if header == "" {
		header = "x-api-key"
	}
	return &Middleware{
		store:   store,
		limiter: limiter,
		header:  header,
		require: require,
		log:     log.WithComponent("auth"),
	}
}

// Handler wraps an HTTP handler with authentication and rate limiting.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if publicPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		log := m.log.WithRequestID(requestID)

		key := m.extractKey(r)
		clientName := "anonymous"

		if m.require {
			if key == "" {
				mAuthRejected.Inc()
				log.Warn("api key missing", logging.String("path", r.URL.Path))
				writeError(w, http.StatusUnauthorized, "API key required",
					"provide the "+m.header+" header or Authorization: Bearer <key>")
				return
			}
			name, ok, err := m.store.Validate(ctx, key)
			if err != nil {
				log.Error("api key validation failed", logging.Err(err))
				writeError(w, http.StatusServiceUnavailable, "authentication unavailable",
					"the key store could not be reached")
				return
			}
			if !ok {
				mAuthRejected.Inc()
				log.Warn("invalid api key", logging.String("path", r.URL.Path))
				writeError(w, http.StatusForbidden, "invalid API key",
					"the provided API key is invalid, expired, or has been revoked")
				return
			}
			clientName = name
		}

		if m.limiter != nil {
			id := key
			if id == "" {
				id = "ip_" + clientIP(r)
			}
			if !m.limiter.Allow(id) {
				mRateLimited.Inc()
				log.Warn("rate limit exceeded", logging.String("client", clientName))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded",
					"request budget per minute exhausted; retry later")
				return
			}
		}

		ctx = context.WithValue(ctx, ClientNameKey, clientName)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractKey pulls the API key from the configured header or a Bearer token.
func (m *Middleware) extractKey(r *http.Request) string {
	if key := r.Header.Get(m.header); key != "" {
		return key
	}
	if ah := r.Header.Get("Authorization"); strings.HasPrefix(ah, "Bearer ") {
		return strings.TrimSpace(ah[len("Bearer "):])
	}
	return ""
}

// clientIP extracts the real client IP, honoring reverse-proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "details": details})
}

// ClientNameFromContext retrieves the authenticated client name.
func ClientNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(ClientNameKey).(string)
	return name, ok
}

// RequestIDFromContext retrieves the request id set by the middleware.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(RequestIDKey).(string)
	return id, ok
}

// IsAuthRequired lets the info endpoint report the effective policy.
func (m *Middleware) IsAuthRequired() bool { return m.require }
