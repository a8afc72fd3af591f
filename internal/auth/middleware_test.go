package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler(t *testing.T, gotClient *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if name, ok := ClientNameFromContext(r.Context()); ok && gotClient != nil {
			*gotClient = name
		}
		if _, ok := RequestIDFromContext(r.Context()); !ok {
			t.Error("request id missing from context")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func newTestMiddleware(t *testing.T, limiter *RateLimiter) *Middleware {
	t.Helper()
	store := NewKeyStore([]string{"good-key"}, "", nil, testLogger())
	return NewMiddleware(store, limiter, "x-api-key", true, testLogger())
}

func TestMiddlewareMissingKey(t *testing.T) {
	h := newTestMiddleware(t, nil).Handler(okHandler(t, nil))

	req := httptest.NewRequest(http.MethodPost, "/tools/get_employee_details", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareInvalidKey(t *testing.T) {
	h := newTestMiddleware(t, nil).Handler(okHandler(t, nil))

	req := httptest.NewRequest(http.MethodPost, "/tools/get_employee_details", nil)
	req.Header.Set("x-api-key", "bad-key")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestMiddlewareValidKeyHeader(t *testing.T) {
	var client string
	h := newTestMiddleware(t, nil).Handler(okHandler(t, &client))

	req := httptest.NewRequest(http.MethodPost, "/tools/get_employee_details", nil)
	req.Header.Set("x-api-key", "good-key")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if client != "static" {
		t.Fatalf("client name = %q, want static", client)
	}
}

func TestMiddlewareBearerToken(t *testing.T) {
	h := newTestMiddleware(t, nil).Handler(okHandler(t, nil))

	req := httptest.NewRequest(http.MethodPost, "/tools/get_employee_details", nil)
	req.Header.Set("Authorization", "Bearer good-key")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMiddlewarePublicPathsSkipAuth(t *testing.T) {
	h := newTestMiddleware(t, nil).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/", "/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("public path %s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestMiddlewareRateLimit(t *testing.T) {
	limiter := NewRateLimiter(3)
	h := newTestMiddleware(t, limiter).Handler(okHandler(t, nil))

	var last int
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/tools/get_leave_balance", nil)
		req.Header.Set("x-api-key", "good-key")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		last = rec.Code
		if last == http.StatusTooManyRequests {
			break
		}
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("rate limit never hit; last status = %d", last)
	}
}

func TestMiddlewareAuthDisabled(t *testing.T) {
	store := NewKeyStore(nil, "", nil, testLogger())
	mw := NewMiddleware(store, nil, "x-api-key", false, testLogger())
	h := mw.Handler(okHandler(t, nil))

	req := httptest.NewRequest(http.MethodPost, "/tools/search_employees", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with auth disabled", rec.Code)
	}
	if mw.IsAuthRequired() {
		t.Fatal("IsAuthRequired() = true, want false")
	}
}

func TestRateLimiterAllows(t *testing.T) {
	rl := NewRateLimiter(60)
	if !rl.Allow("client-a") {
		t.Fatal("first request denied")
	}
}

func TestRateLimiterBlocksBurst(t *testing.T) {
	rl := NewRateLimiter(5)
	denied := false
	for i := 0; i < 20; i++ {
		if !rl.Allow("client-b") {
			denied = true
			break
		}
	}
	if !denied {
		t.Fatal("burst of 20 never denied with a 5/min limit")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := NewRateLimiter(5)
	for i := 0; i < 20; i++ {
		rl.Allow("noisy")
	}
	if !rl.Allow("quiet") {
		t.Fatal("quiet client throttled by noisy client's traffic")
	}
}

func TestRateLimiterDefault(t *testing.T) {
	rl := NewRateLimiter(0)
	if rl.PerMinute() != 100 {
		t.Fatalf("default per-minute = %d, want 100", rl.PerMinute())
	}
}
