// Package circuit implements a small sliding-window circuit breaker used to
// guard the optional OpenAI assist client. A resolution request must never
// hang on a flaky external API; when the breaker is open, calls short-circuit
// and the caller falls back to the plain ambiguous answer.
package circuit

import (
	"context"
	"errors"
	"sync"
	"time"

	"leave-manager/pkg/logging"
)

// State represents the circuit breaker state.
// Closed: normal operation; HalfOpen: probing; Open: fail fast.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

// Config tunes a circuit breaker instance.
type Config struct {
	Name string

	OperationTimeout    time.Duration // per-call timeout
	OpenFor             time.Duration // how long to stay open before probing
	MaxConsecFailures   int           // consecutive failures to open
	WindowSize          int           // sliding window of recent calls
	FailureRate         float64       // 0..1 fraction in window to open
	SlowCallThreshold   time.Duration // duration over which a call counts as slow
	SlowCallRate        float64       // 0..1 fraction in window to open
	HalfOpenMaxInFlight int           // usually 1
}

// ErrOpen indicates the breaker is open and calls are short-circuited.
var ErrOpen = errors.New("circuit open")

type sample struct {
	success bool
	slow    bool
}

type Breaker struct {
	cfg        Config
	mu         sync.Mutex
	st         State
	nextProbe  time.Time
	consecFail int

	win  []sample
	idx  int
	used int

	log *logging.Logger
}

func New(cfg Config, log *logging.Logger) *Breaker {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 20
	}
	if cfg.HalfOpenMaxInFlight <= 0 {
		cfg.HalfOpenMaxInFlight = 1
	}
	return &Breaker{
		cfg: cfg,
		st:  Closed,
		win: make([]sample, cfg.WindowSize),
		log: log,
	}
}

// State reports the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.st
}

func (b *Breaker) setStateLocked(st State) {
	if b.st == st {
		return
	}
	b.st = st
	if b.log != nil {
		b.log.WithComponent("circuit").Info("breaker state change",
			logging.String("name", b.cfg.Name), logging.Int("state", int(st)))
	}
}

// record adds a sample into the ring and opens on threshold breach.
// Caller must hold b.mu.
func (b *Breaker) record(success bool, slow bool) {
	b.win[b.idx] = sample{success: success, slow: slow}
	if b.used < len(b.win) {
		b.used++
	}
	b.idx = (b.idx + 1) % len(b.win)

	fail := 0
	slowN := 0
	for i := 0; i < b.used; i++ {
		if !b.win[i].success {
			fail++
		}
		if b.win[i].slow {
			slowN++
		}
	}
	failRate := float64(fail) / float64(b.used)
	slowRate := float64(slowN) / float64(b.used)

	if b.st != Closed {
		return
	}
	open := (b.cfg.MaxConsecFailures > 0 && b.consecFail >= b.cfg.MaxConsecFailures) ||
		(b.cfg.FailureRate > 0 && failRate >= b.cfg.FailureRate) ||
		(b.cfg.SlowCallRate > 0 && slowRate >= b.cfg.SlowCallRate)
	if open {
		b.setStateLocked(Open)
		b.nextProbe = time.Now().Add(b.cfg.OpenFor)
	}
}

// Do runs op under the breaker. If open, runs fallback if provided, otherwise
// returns ErrOpen. op returns error only; outputs are captured via closures.
func (b *Breaker) Do(ctx context.Context, op func(ctx context.Context) error, fallback func(ctx context.Context, cause error) error) error {
	b.mu.Lock()
	if b.st == Open {
		if time.Now().Before(b.nextProbe) {
			b.mu.Unlock()
			if fallback != nil {
				return fallback(ctx, ErrOpen)
			}
			return ErrOpen
		}
		b.setStateLocked(HalfOpen)
	}
	b.mu.Unlock()

	if b.cfg.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.OperationTimeout)
		defer cancel()
	}

	start := time.Now()
	err := op(ctx)
	dur := time.Since(start)
	slow := b.cfg.SlowCallThreshold > 0 && dur > b.cfg.SlowCallThreshold

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.consecFail++
		b.record(false, slow)
		if b.st == HalfOpen {
			// probe failed -> open again
			b.setStateLocked(Open)
			b.nextProbe = time.Now().Add(b.cfg.OpenFor)
		}
		if fallback != nil {
			return fallback(ctx, err)
		}
		return err
	}

	b.consecFail = 0
	b.record(true, slow)
	if b.st == HalfOpen {
		b.setStateLocked(Closed)
	}
	return nil
}
