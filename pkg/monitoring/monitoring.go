// Package monitoring carries the HTTP observability middleware: per-request
// latency and status counters recorded into a metrics registry, plus pprof
// registration for non-production environments.
package monitoring

import (
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"leave-manager/pkg/metrics"
)

type statusWriter struct {
	w      http.ResponseWriter
	status int
}

func (sw *statusWriter) Header() http.Header         { return sw.w.Header() }
func (sw *statusWriter) Write(b []byte) (int, error) { return sw.w.Write(b) }
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.w.WriteHeader(code)
}

// Middleware records request duration and a counter per status class into reg.
func Middleware(reg *metrics.Registry) func(http.Handler) http.Handler {
	latency := reg.Histogram("http_request_duration_seconds", "HTTP request latency", nil)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{w: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)
			latency.ObserveSince(start)
			class := strconv.Itoa(sw.status/100) + "xx"
			reg.Counter("http_responses_"+class+"_total", "HTTP responses with "+class+" status").Inc()
		})
	}
}

// RegisterPprof attaches the pprof handlers to mux. Only wired outside
// production.
func RegisterPprof(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}
