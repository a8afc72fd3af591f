package assist

import (
	"context"
	"errors"
	"testing"
	"time"

	"leave-manager/internal/models"
	testutil "leave-manager/internal/testing"
	"leave-manager/pkg/logging"
)

func testLogger() *logging.Logger {
	return logging.New(logging.Config{Level: "error", Format: "text"})
}

func candidates() []models.Employee {
	return []models.Employee{
		{ID: 1, DisplayName: "Arun Kumar"},
		{ID: 2, DisplayName: "Vijay Kumar"},
	}
}

func TestPickSelectsCandidate(t *testing.T) {
	c := &testutil.MockCompleter{Content: "2"}
	d := NewWithClient(c, "test-model", time.Second, testLogger())

	i, ok := d.Pick(context.Background(), "kumar", "backend", candidates())
	if !ok {
		t.Fatal("expected a pick")
	}
	if i != 1 {
		t.Fatalf("pick = %d, want 1", i)
	}
}

func TestPickParsesNoisyAnswer(t *testing.T) {
	c := &testutil.MockCompleter{Content: "The matching entry is 1."}
	d := NewWithClient(c, "test-model", time.Second, testLogger())

	i, ok := d.Pick(context.Background(), "kumar", "qa", candidates())
	if !ok || i != 0 {
		t.Fatalf("pick = (%d, %v), want (0, true)", i, ok)
	}
}

func TestPickAbstains(t *testing.T) {
	c := &testutil.MockCompleter{Content: "none"}
	d := NewWithClient(c, "test-model", time.Second, testLogger())

	if _, ok := d.Pick(context.Background(), "kumar", "devops", candidates()); ok {
		t.Fatal("expected abstain")
	}
}

func TestPickRejectsOutOfRange(t *testing.T) {
	c := &testutil.MockCompleter{Content: "7"}
	d := NewWithClient(c, "test-model", time.Second, testLogger())

	if _, ok := d.Pick(context.Background(), "kumar", "qa", candidates()); ok {
		t.Fatal("out-of-range answer accepted")
	}
}

func TestPickDegradesOnError(t *testing.T) {
	c := &testutil.MockCompleter{Err: errors.New("api down")}
	d := NewWithClient(c, "test-model", time.Second, testLogger())

	if _, ok := d.Pick(context.Background(), "kumar", "qa", candidates()); ok {
		t.Fatal("pick succeeded despite API failure")
	}
}

func TestPickSkipsWithoutHint(t *testing.T) {
	c := &testutil.MockCompleter{Content: "1"}
	d := NewWithClient(c, "test-model", time.Second, testLogger())

	if _, ok := d.Pick(context.Background(), "kumar", "  ", candidates()); ok {
		t.Fatal("pick ran without a context hint")
	}
	if c.Calls != 0 {
		t.Fatalf("completer called %d times, want 0", c.Calls)
	}
}

func TestPickSkipsSingleCandidate(t *testing.T) {
	c := &testutil.MockCompleter{Content: "1"}
	d := NewWithClient(c, "test-model", time.Second, testLogger())

	one := candidates()[:1]
	if _, ok := d.Pick(context.Background(), "kumar", "qa", one); ok {
		t.Fatal("pick ran for a single candidate")
	}
}

func TestPickShortCircuitsWhenBreakerOpens(t *testing.T) {
	c := &testutil.MockCompleter{Err: errors.New("api down")}
	d := NewWithClient(c, "test-model", time.Second, testLogger())

	// repeated failures open the breaker
	for i := 0; i < 3; i++ {
		d.Pick(context.Background(), "kumar", "qa", candidates())
	}
	before := c.Calls
	d.Pick(context.Background(), "kumar", "qa", candidates())
	if c.Calls != before {
		t.Fatalf("breaker open but completer still called (%d -> %d)", before, c.Calls)
	}
}
