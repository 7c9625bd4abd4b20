package governor

import (
	"context"
	"testing"
	"time"
)

func TestEnterCallWithinLimit(t *testing.T) {
	g := New(context.Background(), Limits{MaxCallDepth: 2})
	defer g.Close()
	if err := g.EnterCall(); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if err := g.EnterCall(); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if err := g.EnterCall(); err == nil {
		t.Fatal("expected the third call to exceed MaxCallDepth")
	}
	g.ExitCall()
	if g.Snapshot().CallDepth != 1 {
		t.Fatalf("expected depth 1 after one ExitCall, got %d", g.Snapshot().CallDepth)
	}
}

func TestTickLoopExceeded(t *testing.T) {
	g := New(context.Background(), Limits{MaxLoopIterations: 2})
	defer g.Close()
	if err := g.TickLoop(); err != nil {
		t.Fatalf("iteration 1: %v", err)
	}
	if err := g.TickLoop(); err != nil {
		t.Fatalf("iteration 2: %v", err)
	}
	err := g.TickLoop()
	if err == nil {
		t.Fatal("expected the third iteration to exceed MaxLoopIterations")
	}
	if exceeded, ok := err.(*ExceededError); !ok || exceeded.Dimension != "loop iterations" {
		t.Fatalf("expected a loop-iterations ExceededError, got %#v", err)
	}
}

func TestTickEvalExceeded(t *testing.T) {
	g := New(context.Background(), Limits{MaxEvaluations: 1})
	defer g.Close()
	if err := g.TickEval(); err != nil {
		t.Fatalf("step 1: %v", err)
	}
	if err := g.TickEval(); err == nil {
		t.Fatal("expected the second step to exceed MaxEvaluations")
	}
}

func TestZeroLimitsAreUnbounded(t *testing.T) {
	g := New(context.Background(), Limits{})
	defer g.Close()
	for i := 0; i < 1000; i++ {
		if err := g.TickLoop(); err != nil {
			t.Fatalf("unexpected limit error at iteration %d: %v", i, err)
		}
	}
}

func TestCheckReportsParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	g := New(parent, Limits{})
	defer g.Close()
	if err := g.Check(); err != nil {
		t.Fatalf("expected no error before cancellation, got %v", err)
	}
	cancel()
	if err := g.Check(); err == nil {
		t.Fatal("expected Check to report the parent context's cancellation")
	}
}

func TestCheckReportsDeadline(t *testing.T) {
	g := New(context.Background(), Limits{Deadline: time.Now().Add(-time.Second)})
	defer g.Close()
	if err := g.Check(); err == nil {
		t.Fatal("expected Check to report an already-passed deadline")
	}
}

func TestAbortForcesNextCheckToFail(t *testing.T) {
	g := New(context.Background(), Limits{})
	defer g.Close()
	g.Abort()
	if err := g.Check(); err == nil {
		t.Fatal("expected Check to fail after Abort")
	}
}

func TestExceededErrorMessage(t *testing.T) {
	err := &ExceededError{Dimension: "call depth", Limit: 10}
	want := "resource limit exceeded: call depth (limit 10)"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
