package vaultjs_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vaultjs/vaultjs/pkg/vaultjs"
)

func mustEngine(t *testing.T, opts ...vaultjs.Option) *vaultjs.Engine {
	t.Helper()
	e, err := vaultjs.New(opts...)
	if err != nil {
		t.Fatalf("vaultjs.New: %v", err)
	}
	return e
}

// S1: under the ES5 preset, `let x = 1;` fails with a feature error naming
// "LetConst".
func TestScenarioS1_ES5RejectsLetConst(t *testing.T) {
	e := mustEngine(t, vaultjs.WithPresets("ES5"))
	_, err := e.Eval(context.Background(), "let x = 1;", vaultjs.RunOptions{})
	if err == nil {
		t.Fatal("expected a feature error, got nil")
	}
	if !strings.Contains(err.Error(), "LetConst") {
		t.Fatalf("expected error naming LetConst, got %q", err)
	}
}

// S2: a generator's finally block runs exactly once on an early .return(),
// observed through a host-bound array the guest script pushes onto, and
// the return() result reports {value: 99, done: true}.
func TestScenarioS2_GeneratorReturnRunsFinallyOnce(t *testing.T) {
	e := mustEngine(t, vaultjs.WithPresets("ES2015"))
	source := `
		function* g() {
			try { yield 1; } finally { log.push('f'); }
		}
		const it = g();
		it.next();
		it.return(99);
	`
	var log []any
	out, err := e.Eval(context.Background(), source, vaultjs.RunOptions{
		Globals: map[string]any{"log": &log},
	})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(log) != 1 || log[0] != "f" {
		t.Fatalf("expected log == [\"f\"], got %v", log)
	}
	result, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("expected a map result, got %T (%v)", out, out)
	}
	if result["value"] != float64(99) || result["done"] != true {
		t.Fatalf("expected {value: 99, done: true}, got %v", result)
	}
}

// S3: under ES2020+, `o?.a.b.c ?? "d"` evaluates to "d" with no property
// access attempted on a null o, while a falsy-but-not-nullish base still
// proceeds into the chain (and can fail there).
func TestScenarioS3_OptionalChainingShortCircuitsOnNullOnly(t *testing.T) {
	e := mustEngine(t, vaultjs.WithPresets("ES2020"))

	out, err := e.Eval(context.Background(), `let o = null; o?.a.b.c ?? "d";`, vaultjs.RunOptions{})
	if err != nil {
		t.Fatalf("Eval (null base): %v", err)
	}
	if out != "d" {
		t.Fatalf("expected \"d\", got %v", out)
	}

	_, err = e.Eval(context.Background(), `let x = 0; x?.a.b.c;`, vaultjs.RunOptions{})
	if err == nil {
		t.Fatal("expected the chain to proceed past a falsy-but-not-nullish base and fail on .b")
	}
	if !strings.Contains(err.Error(), "cannot read properties of undefined") {
		t.Fatalf("expected a property-access error, got %q", err)
	}
}

// S4: two overlapping async runs with disjoint globals resolve with their
// own value each (scope isolation across concurrent runs), and a run
// submitted afterward with no such global fails with a reference error —
// nothing from either prior run leaks.
func TestScenarioS4_OverlappingAsyncRunsStaySerializedAndIsolated(t *testing.T) {
	e := mustEngine(t, vaultjs.WithPresets("ES2017", "timers"))
	source := `
		function sleep(ms) { return new Promise(resolve => setTimeout(resolve, ms)); }
		await sleep(1);
		secret;
	`

	var wg sync.WaitGroup
	results := make([]any, 2)
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0], errs[0] = e.EvalAsync(context.Background(), source, vaultjs.RunOptions{
			Globals: map[string]any{"secret": "A"},
		})
	}()
	go func() {
		defer wg.Done()
		results[1], errs[1] = e.EvalAsync(context.Background(), source, vaultjs.RunOptions{
			Globals: map[string]any{"secret": "B"},
		})
	}()
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	got := map[any]bool{results[0]: true, results[1]: true}
	if !got["A"] || !got["B"] {
		t.Fatalf("expected results {A, B} in some order, got %v", results)
	}

	_, err := e.Eval(context.Background(), "secret;", vaultjs.RunOptions{})
	if err == nil {
		t.Fatal("expected a reference error for secret after both runs completed")
	}
	if !strings.Contains(err.Error(), "secret") || !strings.Contains(err.Error(), "not defined") {
		t.Fatalf("expected an undefined-variable error for secret, got %q", err)
	}
}

// S5: main.js -> a.js -> b.js -> a.js resolves without infinite recursion;
// the cycle links around rather than erroring, and every export is
// initialized by the time main.js's own body runs.
func TestScenarioS5_ModuleCycleResolves(t *testing.T) {
	resolver := mapResolver{
		"main.js": `
			import { aValue, getB } from "a.js";
			export const result = aValue + ":" + getB();
		`,
		"a.js": `
			import { bValue } from "b.js";
			export const aValue = "a";
			export function getB() { return bValue; }
		`,
		"b.js": `
			import { aValue } from "a.js";
			export const bValue = "b-seed";
			export function getA() { return aValue; }
		`,
	}
	e := mustEngine(t, vaultjs.WithPresets("ES2015"), vaultjs.WithModuleResolver(resolver))

	done := make(chan struct{})
	var ns map[string]any
	var err error
	go func() {
		ns, err = e.EvalModule(context.Background(), "main.js", vaultjs.RunOptions{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("module cycle evaluation did not terminate (likely infinite recursion)")
	}
	if err != nil {
		t.Fatalf("EvalModule: %v", err)
	}
	if ns["result"] != "a:b-seed" {
		t.Fatalf("expected result \"a:b-seed\", got %v", ns["result"])
	}
}

// S6: a run limited to 2 loop iterations fails a 3-iteration loop with a
// resource-exceeded runtime error.
func TestScenarioS6_LoopIterationLimitTrips(t *testing.T) {
	e := mustEngine(t, vaultjs.WithPresets("ES2015"))
	_, err := e.Eval(context.Background(), `for (let i = 0; i < 3; i++) {}`, vaultjs.RunOptions{
		Limits: vaultjs.Limits{MaxLoopIterations: 2},
	})
	if err == nil {
		t.Fatal("expected a loop-iteration limit error")
	}
	if !strings.Contains(err.Error(), "loop iterations") {
		t.Fatalf("expected a loop-iterations resource error, got %q", err)
	}
}

// Invariant 1: scope isolation. A per-run global from one run is invisible
// to the next run on the same engine.
func TestInvariant_ScopeIsolation(t *testing.T) {
	e := mustEngine(t, vaultjs.WithPresets("ES2015"))
	out, err := e.Eval(context.Background(), "x;", vaultjs.RunOptions{Globals: map[string]any{"x": float64(1)}})
	if err != nil || out != float64(1) {
		t.Fatalf("first run: out=%v err=%v", out, err)
	}
	_, err = e.Eval(context.Background(), "x;", vaultjs.RunOptions{})
	if err == nil {
		t.Fatal("expected x to be undefined in a later run with no such global")
	}
}

// Invariant 2: feature gating is pre-effect. A host callback referenced by
// the initializer of a gated declaration is never invoked.
func TestInvariant_FeatureGatingIsPreEffect(t *testing.T) {
	e := mustEngine(t, vaultjs.WithPresets("ES5"))
	var calls []any
	sideEffect := func() (any, error) { calls = append(calls, "sideEffect"); return float64(1), nil }
	_, err := e.Eval(context.Background(), `let x = sideEffect();`, vaultjs.RunOptions{
		Globals: map[string]any{"sideEffect": sideEffect},
	})
	if err == nil || !strings.Contains(err.Error(), "LetConst") {
		t.Fatalf("expected a LetConst feature error, got %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("expected sideEffect never to run, calls=%v", calls)
	}
}

// Invariant 3 overlaps with S3 above (short-circuit on null/undefined only).

// Invariant 4: generator completion laws — g.return(v) reports
// {value: v, done: true} and a subsequent g.next() reports done:true. The
// finally block here is empty; a finally running on return() is observed
// by the Invariant 5 test below.
func TestInvariant_GeneratorCompletionLaws(t *testing.T) {
	e := mustEngine(t, vaultjs.WithPresets("ES2015"))
	source := `
		function* g() { try { yield 1; } finally { } }
		const it = g();
		it.next();
		const r1 = it.return(5);
		const r2 = it.next();
		({done1: r1.done, value1: r1.value, done2: r2.done});
	`
	out, err := e.Eval(context.Background(), source, vaultjs.RunOptions{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	res := out.(map[string]any)
	if res["done1"] != true || res["value1"] != float64(5) || res["done2"] != true {
		t.Fatalf("unexpected generator completion shape: %v", res)
	}
}

// Invariant 5: for..of with an early break calls return() on the iterator
// exactly once — observed via a generator's finally block, triggered by
// the implicit return() a break issues.
func TestInvariant_ForOfBreakCallsIteratorReturnOnce(t *testing.T) {
	e := mustEngine(t, vaultjs.WithPresets("ES2015"))
	source := `
		function* g() {
			try { yield 1; yield 2; yield 3; } finally { log.push('closed'); }
		}
		for (const v of g()) {
			if (v === 1) break;
		}
	`
	var log []any
	_, err := e.Eval(context.Background(), source, vaultjs.RunOptions{
		Globals: map[string]any{"log": &log},
	})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(log) != 1 || log[0] != "closed" {
		t.Fatalf("expected the iterator's return() to run exactly once, got log=%v", log)
	}
}

// Invariant 6: accessing a private name on a receiver not branded by its
// declaring class's registry fails with a type error at the access site.
func TestInvariant_PrivateNameBrandCheck(t *testing.T) {
	e := mustEngine(t, vaultjs.WithPresets("ES2022"))
	source := `
		class A { #x = 1; static peek(o) { return o.#x; } }
		class B {}
		A.peek(new B());
	`
	_, err := e.Eval(context.Background(), source, vaultjs.RunOptions{})
	if err == nil {
		t.Fatal("expected a private-brand type error")
	}
	if !strings.Contains(err.Error(), "#x") {
		t.Fatalf("expected the error to name the private field, got %q", err)
	}
}

// Invariant 7: module idempotence. With the module cache enabled (the
// default once a resolver is configured), evaluating the same specifier
// twice runs its body exactly once — observed via mutable state closed
// over by an exported function, which keeps advancing across calls
// instead of resetting.
func TestInvariant_ModuleIdempotence(t *testing.T) {
	resolver := mapResolver{
		"counter.js": `
			let n = 0;
			export function bump() { n += 1; return n; }
		`,
	}
	e := mustEngine(t, vaultjs.WithPresets("ES2015"), vaultjs.WithModuleResolver(resolver))

	ns1, err := e.EvalModule(context.Background(), "counter.js", vaultjs.RunOptions{})
	if err != nil {
		t.Fatalf("first EvalModule: %v", err)
	}
	bump1 := ns1["bump"].(func(...any) (any, error))
	v1, err := bump1()
	if err != nil || v1 != float64(1) {
		t.Fatalf("bump() after first load: v=%v err=%v", v1, err)
	}

	ns2, err := e.EvalModule(context.Background(), "counter.js", vaultjs.RunOptions{})
	if err != nil {
		t.Fatalf("second EvalModule: %v", err)
	}
	bump2 := ns2["bump"].(func(...any) (any, error))
	v2, err := bump2()
	if err != nil || v2 != float64(2) {
		t.Fatalf("bump() after second load should continue from shared state, got v=%v err=%v", v2, err)
	}

	exports, ok, err := e.GetModuleExports("counter.js")
	if err != nil || !ok {
		t.Fatalf("GetModuleExports: ok=%v err=%v", ok, err)
	}
	if _, has := exports["bump"]; !has {
		t.Fatalf("expected cached exports to include bump, got %v", exports)
	}

	e.ClearModuleCache()
	if _, ok, _ := e.GetModuleExports("counter.js"); ok {
		t.Fatal("expected GetModuleExports to miss after ClearModuleCache")
	}
}

// Invariant 8: TestScenarioS4 above runs two overlapping EvalAsync calls
// under the scheduler's serialized access; it accepts their results in
// either order and does not check submission order.

// Invariant 9: a host object obtained through a global can never be
// mutated by guest code; an opaque (non-struct/slice/map) host value stays
// a read-only bound object whose writes fail with a security-flavored
// type error rather than silently succeeding.
func TestInvariant_HostObjectsAreReadOnly(t *testing.T) {
	e := mustEngine(t, vaultjs.WithPresets("ES2015"))
	opaque := make(chan int, 1)
	_, err := e.Eval(context.Background(), `hostChan.x = 1;`, vaultjs.RunOptions{
		Globals: map[string]any{"hostChan": opaque},
	})
	if err == nil {
		t.Fatal("expected assignment to a read-only host object to fail")
	}
	if !strings.Contains(err.Error(), "read-only host object") {
		t.Fatalf("expected a read-only-host-object error, got %q", err)
	}
}

// RegisterFunction adapts an arbitrary Go function via reflection,
// including a trailing error return that becomes a catchable exception.
func TestRegisterFunction(t *testing.T) {
	e := mustEngine(t, vaultjs.WithPresets("ES2015"))
	if err := e.RegisterFunction("add", func(a, b int64) (int64, error) {
		return a + b, nil
	}); err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}
	if err := e.RegisterFunction("mustPositive", func(n int64) (int64, error) {
		if n < 0 {
			return 0, fmt.Errorf("negative input")
		}
		return n, nil
	}); err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}

	out, err := e.Eval(context.Background(), "add(2, 3);", vaultjs.RunOptions{})
	if err != nil || out != float64(5) {
		t.Fatalf("add(2,3): out=%v err=%v", out, err)
	}

	out, err = e.Eval(context.Background(), `
		let caught = "none";
		try { mustPositive(-1); } catch (e) { caught = e.message; }
		caught;
	`, vaultjs.RunOptions{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !strings.Contains(fmt.Sprint(out), "negative input") {
		t.Fatalf("expected the host error message to be catchable, got %v", out)
	}
}

// Eval rejects a non-zero TimeoutMs; only EvalAsync honors one.
func TestEval_RejectsTimeout(t *testing.T) {
	e := mustEngine(t, vaultjs.WithPresets("ES2015"))
	_, err := e.Eval(context.Background(), "1;", vaultjs.RunOptions{TimeoutMs: 10})
	if err == nil {
		t.Fatal("expected Eval to reject a non-zero TimeoutMs")
	}
}

// Eval rejects with ErrBusy when another run already holds the scheduler
// lock, rather than queuing behind it.
func TestEval_RejectsWhenBusy(t *testing.T) {
	e := mustEngine(t, vaultjs.WithPresets("ES2017", "timers"))
	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _ = e.EvalAsync(context.Background(), `
			function sleep(ms) { return new Promise(r => setTimeout(r, ms)); }
			__started();
			await __wait();
		`, vaultjs.RunOptions{
			Globals: map[string]any{
				"__started": func() (any, error) { close(started); return nil, nil },
				"__wait": func() (any, error) {
					<-release
					return nil, nil
				},
			},
		})
	}()
	<-started
	_, err := e.Eval(context.Background(), "1;", vaultjs.RunOptions{})
	close(release)
	if err != vaultjs.ErrBusy {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

type mapResolver map[string]string

func (m mapResolver) Resolve(specifier, importerPath string) (*vaultjs.ResolvedModule, error) {
	src, ok := m[specifier]
	if !ok {
		return nil, fmt.Errorf("no such module %q", specifier)
	}
	return &vaultjs.ResolvedModule{Path: specifier, Source: src}, nil
}
