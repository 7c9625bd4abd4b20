// Package governor tracks per-run resource consumption (call depth, loop
// iterations, total evaluation steps) and exposes a deadline/abort signal
// the evaluator checks at statement boundaries, loop back-edges, and
// generator/async resumption points. Generalized from the teacher's
// callstack.go, which tracked call depth only for stack-trace
// reconstruction; here the same bookkeeping doubles as the resource limiter.
package governor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Limits bounds a single run. A zero value in any field means "unbounded"
// for that dimension.
type Limits struct {
	MaxCallDepth      int
	MaxLoopIterations int64
	MaxEvaluations    int64
	Deadline          time.Time // zero means no deadline
}

// Counters is the live, per-run resource usage, updated synchronously by
// the evaluator on its own goroutine. The fields are plain integers with
// no synchronization of their own.
type Counters struct {
	CallDepth      int
	LoopIterations int64
	Evaluations    int64
}

// ExceededError reports which counter tripped its limit.
type ExceededError struct {
	Dimension string
	Limit     int64
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("resource limit exceeded: %s (limit %d)", e.Dimension, e.Limit)
}

// Governor is the per-run accounting and cancellation object. One
// Governor is created per run by the scheduler/interpreter and discarded
// when the run completes.
type Governor struct {
	limits  Limits
	ctrs    Counters
	aborted atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a Governor bound to parent's cancellation in addition to its
// own limits; the run aborts if either fires first.
func New(parent context.Context, limits Limits) *Governor {
	ctx := parent
	var cancel context.CancelFunc
	if !limits.Deadline.IsZero() {
		ctx, cancel = context.WithDeadline(parent, limits.Deadline)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	return &Governor{limits: limits, ctx: ctx, cancel: cancel}
}

// Close releases the governor's internal context, stopping its deadline
// timer. Must be called on every exit path of a run (Interpreter.Run and
// Interpreter.EvalModuleBody defer it).
func (g *Governor) Close() { g.cancel() }

// Check returns an error if the run has been aborted (deadline, external
// cancellation, or an Abort call), else nil. TickEval calls it, so it runs
// at every statement and expression the evaluator visits, loop back-edges
// included; the interpreter also calls it between top-level statements.
func (g *Governor) Check() error {
	if g.aborted.Load() {
		return &ExceededError{Dimension: "aborted"}
	}
	select {
	case <-g.ctx.Done():
		g.aborted.Store(true)
		return g.ctx.Err()
	default:
		return nil
	}
}

// Abort forces the run to stop at the next Check, used by an external
// caller (e.g. the host cancelling a long-running script).
func (g *Governor) Abort() { g.aborted.Store(true) }

// Context returns the run's deadline/cancellation-bound context, so code
// that needs to hand a context onward (a dynamic import's module load, for
// instance) inherits the same run's cancellation rather than running
// unbounded.
func (g *Governor) Context() context.Context { return g.ctx }

// EnterCall increments call depth and returns an error if it would exceed
// MaxCallDepth; callers must pair a successful EnterCall with ExitCall.
func (g *Governor) EnterCall() error {
	g.ctrs.CallDepth++
	if g.limits.MaxCallDepth > 0 && g.ctrs.CallDepth > g.limits.MaxCallDepth {
		g.ctrs.CallDepth--
		return &ExceededError{Dimension: "call depth", Limit: int64(g.limits.MaxCallDepth)}
	}
	return nil
}

// ExitCall decrements call depth on return from a call frame.
func (g *Governor) ExitCall() { g.ctrs.CallDepth-- }

// TickLoop increments the loop-iteration counter, erroring once
// MaxLoopIterations is exceeded.
func (g *Governor) TickLoop() error {
	g.ctrs.LoopIterations++
	if g.limits.MaxLoopIterations > 0 && g.ctrs.LoopIterations > g.limits.MaxLoopIterations {
		return &ExceededError{Dimension: "loop iterations", Limit: g.limits.MaxLoopIterations}
	}
	return nil
}

// TickEval increments the total-evaluation-step counter, erroring once
// MaxEvaluations is exceeded. Called once per statement/expression node
// visited, giving a coarse but cheap overall-work bound independent of
// call depth or loop shape. An aborted run is reported first, via Check.
func (g *Governor) TickEval() error {
	if err := g.Check(); err != nil {
		return err
	}
	g.ctrs.Evaluations++
	if g.limits.MaxEvaluations > 0 && g.ctrs.Evaluations > g.limits.MaxEvaluations {
		return &ExceededError{Dimension: "evaluation steps", Limit: g.limits.MaxEvaluations}
	}
	return nil
}

// Snapshot returns a copy of the current counters for diagnostics.
func (g *Governor) Snapshot() Counters { return g.ctrs }
