package circuit

import (
	"context"
	"errors"
	"testing"
	"time"

	"leave-manager/pkg/logging"
)

func testLogger() *logging.Logger {
	return logging.New(logging.Config{Level: "error", Format: "text"})
}

func newTestBreaker(openFor time.Duration) *Breaker {
	return New(Config{
		Name:              "test",
		OpenFor:           openFor,
		MaxConsecFailures: 2,
		WindowSize:        10,
	}, testLogger())
}

func TestDoSuccess(t *testing.T) {
	b := newTestBreaker(time.Minute)
	err := b.Do(context.Background(), func(ctx context.Context) error { return nil }, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.State() != Closed {
		t.Fatalf("state = %v, want closed", b.State())
	}
}

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	b := newTestBreaker(time.Minute)
	boom := errors.New("boom")
	op := func(ctx context.Context) error { return boom }

	for i := 0; i < 2; i++ {
		if err := b.Do(context.Background(), op, nil); !errors.Is(err, boom) {
			t.Fatalf("call %d: err = %v, want boom", i, err)
		}
	}
	if b.State() != Open {
		t.Fatalf("state = %v, want open after 2 consecutive failures", b.State())
	}

	calls := 0
	err := b.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	}, nil)
	if !errors.Is(err, ErrOpen) {
		t.Fatalf("err = %v, want ErrOpen", err)
	}
	if calls != 0 {
		t.Fatal("operation ran while breaker open")
	}
}

func TestFallbackRunsWhenOpen(t *testing.T) {
	b := newTestBreaker(time.Minute)
	boom := errors.New("boom")
	for i := 0; i < 2; i++ {
		_ = b.Do(context.Background(), func(ctx context.Context) error { return boom }, nil)
	}

	ranFallback := false
	err := b.Do(context.Background(),
		func(ctx context.Context) error { t.Fatal("op must not run"); return nil },
		func(ctx context.Context, cause error) error {
			ranFallback = true
			if !errors.Is(cause, ErrOpen) {
				t.Fatalf("fallback cause = %v, want ErrOpen", cause)
			}
			return nil
		})
	if err != nil {
		t.Fatalf("fallback result not returned: %v", err)
	}
	if !ranFallback {
		t.Fatal("fallback did not run")
	}
}

func TestProbeClosesAfterSuccess(t *testing.T) {
	b := newTestBreaker(time.Millisecond)
	boom := errors.New("boom")
	for i := 0; i < 2; i++ {
		_ = b.Do(context.Background(), func(ctx context.Context) error { return boom }, nil)
	}
	time.Sleep(5 * time.Millisecond)

	if err := b.Do(context.Background(), func(ctx context.Context) error { return nil }, nil); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if b.State() != Closed {
		t.Fatalf("state = %v, want closed after successful probe", b.State())
	}
}

func TestProbeFailureReopens(t *testing.T) {
	b := newTestBreaker(time.Millisecond)
	boom := errors.New("boom")
	for i := 0; i < 2; i++ {
		_ = b.Do(context.Background(), func(ctx context.Context) error { return boom }, nil)
	}
	time.Sleep(5 * time.Millisecond)

	_ = b.Do(context.Background(), func(ctx context.Context) error { return boom }, nil)
	if b.State() != Open {
		t.Fatalf("state = %v, want open after failed probe", b.State())
	}
}

func TestOperationTimeout(t *testing.T) {
	b := New(Config{
		Name:             "timeout",
		OperationTimeout: 10 * time.Millisecond,
	}, testLogger())

	err := b.Do(context.Background(), func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	}, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}
