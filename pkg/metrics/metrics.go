// Package metrics is a small dependency-free metrics registry exposed in
// Prometheus text format. It covers what this service needs: counters for
// tool invocations and auth outcomes, gauges for pool sizes, and a latency
// histogram for the HTTP layer.
package metrics

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Counter is a monotonically increasing value.
type Counter struct {
	name string
	help string
	val  int64
}

func (c *Counter) Inc()            { atomic.AddInt64(&c.val, 1) }
func (c *Counter) Add(delta int64) { atomic.AddInt64(&c.val, delta) }
func (c *Counter) Get() int64      { return atomic.LoadInt64(&c.val) }

// Gauge is a value that can go up and down.
type Gauge struct {
	name string
	help string
	bits uint64
}

func (g *Gauge) Set(v float64) { atomic.StoreUint64(&g.bits, math.Float64bits(v)) }
func (g *Gauge) Get() float64  { return math.Float64frombits(atomic.LoadUint64(&g.bits)) }

// Histogram accumulates observations into fixed buckets.
type Histogram struct {
	name    string
	help    string
	mu      sync.Mutex
	bounds  []float64 // upper bounds, ascending
	counts  []int64   // len(bounds)+1, last is +Inf
	sum     float64
	samples int64
}

func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples++
	h.sum += v
	for i, b := range h.bounds {
		if v <= b {
			h.counts[i]++
			return
		}
	}
	h.counts[len(h.bounds)]++
}

// ObserveSince records the elapsed time in seconds.
func (h *Histogram) ObserveSince(start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

// Registry holds named metrics. All methods are safe for concurrent use;
// registering an existing name returns the original instance.
type Registry struct {
	mu         sync.Mutex
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
}

func NewRegistry() *Registry {
	return &Registry{
		counters:   map[string]*Counter{},
		gauges:     map[string]*Gauge{},
		histograms: map[string]*Histogram{},
	}
}

// Default is the process-wide registry.
var Default = NewRegistry()

func (r *Registry) Counter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c := &Counter{name: name, help: help}
	r.counters[name] = c
	return c
}

func (r *Registry) Gauge(name, help string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gauges[name]; ok {
		return g
	}
	g := &Gauge{name: name, help: help}
	r.gauges[name] = g
	return g
}

func (r *Registry) Histogram(name, help string, bounds []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h
	}
	if len(bounds) == 0 {
		bounds = []float64{0.005, 0.025, 0.1, 0.5, 1, 5}
	}
	h := &Histogram{name: name, help: help, bounds: bounds, counts: make([]int64, len(bounds)+1)}
	r.histograms[name] = h
	return h
}

// Handler renders the registry in Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		var b strings.Builder

		r.mu.Lock()
		defer r.mu.Unlock()

		for _, name := range sortedNames(r.counters) {
			c := r.counters[name]
			fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, c.help, name, name, c.Get())
		}
		for _, name := range sortedNames(r.gauges) {
			g := r.gauges[name]
			fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s gauge\n%s %g\n", name, g.help, name, name, g.Get())
		}
		for _, name := range sortedNames(r.histograms) {
			h := r.histograms[name]
			h.mu.Lock()
			fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s histogram\n", name, h.help, name)
			cum := int64(0)
			for i, bound := range h.bounds {
				cum += h.counts[i]
				fmt.Fprintf(&b, "%s_bucket{le=%q} %d\n", name, fmt.Sprintf("%g", bound), cum)
			}
			cum += h.counts[len(h.bounds)]
			fmt.Fprintf(&b, "%s_bucket{le=\"+Inf\"} %d\n", name, cum)
			fmt.Fprintf(&b, "%s_sum %g\n%s_count %d\n", name, h.sum, name, h.samples)
			h.mu.Unlock()
		}

		_, _ = w.Write([]byte(b.String()))
	})
}

// Handler exposes the default registry.
func Handler() http.Handler { return Default.Handler() }

func sortedNames[T any](m map[string]*T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
