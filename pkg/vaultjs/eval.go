package vaultjs

import (
	"context"
	"fmt"
	"time"

	"github.com/vaultjs/vaultjs/internal/feature"
	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/parser"
	"github.com/vaultjs/vaultjs/internal/preset"
	"github.com/vaultjs/vaultjs/internal/scheduler"
	"github.com/vaultjs/vaultjs/internal/value"
	"github.com/vaultjs/vaultjs/internal/verrors"
)

// ErrBusy is returned by Eval when another run already holds the engine's
// scheduler lock; Eval is the non-blocking, reject-if-busy entry point per
// spec.md §6 ("sync runs ... cannot be pre-empted"), unlike EvalAsync/
// EvalModule which wait for the scheduler lock instead (waiting runs are
// not admitted in a guaranteed order).
var ErrBusy = scheduler.ErrBusy

// RunOptions configures a single Eval/EvalAsync/EvalModule call, layered
// on top of the Engine's persistent configuration for this run only.
type RunOptions struct {
	// Globals overlays additional bindings for this run only, converted
	// the same way WithGlobal converts a persistent one. A host-supplied
	// pointer to a slice or map is written back with the run's final
	// state once evaluation completes.
	Globals map[string]any

	// FeatureMode/FeatureTags, if FeatureTags is non-empty, overlay this
	// run's feature gate on top of the engine's own, via the same
	// whitelist/blacklist combinator WithFeatures uses.
	FeatureMode FeatureMode
	FeatureTags []string

	// Limits overrides the engine's default resource limits for this run
	// only. A zero Limits leaves the engine default in place.
	Limits Limits

	// TimeoutMs bounds an EvalAsync run's wall-clock duration (EvalModule
	// does not apply it); a non-zero value makes Eval return an error,
	// since spec.md requires a synchronous run to reject any timeout
	// configuration rather than honor one.
	TimeoutMs int

	// Validator overrides the engine's validator for this run only, when
	// non-nil.
	Validator func(*Program) error

	// Full, when true, makes Eval/EvalAsync return a *RunResult (value
	// plus resource Counters) instead of a bare any.
	Full bool
}

// RunResult is returned instead of a bare value when RunOptions.Full is
// set, bundling the run's resource usage alongside its value per
// spec.md §6's `result: "full"` mode.
type RunResult struct {
	Value    any
	Counters Counters
}

// Eval parses and evaluates source synchronously: it runs only if no
// other run currently holds the engine's scheduler lock (ErrBusy
// otherwise) and rejects a non-zero TimeoutMs, matching spec.md §6's rule
// that a sync run cannot be pre-empted or suspended.
func (e *Engine) Eval(ctx context.Context, source string, opts RunOptions) (any, error) {
	if opts.TimeoutMs != 0 {
		return nil, fmt.Errorf("vaultjs: Eval does not support TimeoutMs; use EvalAsync")
	}
	var out any
	var runErr error
	err := e.sched.TryRun(func() error {
		out, runErr = e.run(ctx, source, opts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, runErr
}

// EvalAsync parses and evaluates source, waiting behind any
// already-in-progress run (internal/scheduler.Run; waiting runs are not
// admitted in a guaranteed order) rather than rejecting,
// and honoring TimeoutMs as a deadline layered onto ctx. Go has no native
// promise type; EvalAsync models "a run that may be pre-empted/suspended
// and does not reject under contention" by blocking the calling
// goroutine, exactly as a host `await evaluateAsync(...)` would observe
// from the outside.
func (e *Engine) EvalAsync(ctx context.Context, source string, opts RunOptions) (any, error) {
	runCtx := ctx
	if opts.TimeoutMs > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(opts.TimeoutMs)*time.Millisecond)
		defer cancel()
	}
	var out any
	var runErr error
	err := e.sched.Run(func() error {
		out, runErr = e.run(runCtx, source, opts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, runErr
}

// run implements the shared parse-validate-evaluate-convert path behind
// both Eval and EvalAsync; callers hold the scheduler lock already.
func (e *Engine) run(ctx context.Context, source string, opts RunOptions) (any, error) {
	p := parser.New(source, parser.Options{})
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, verrors.NewParse(verrors.CodeSyntaxError, errs[0].Error(), errs[0].Span)
	}

	validate := e.validator
	if opts.Validator != nil {
		validate = opts.Validator
	}
	if validate != nil {
		if err := validate(prog); err != nil {
			return nil, fmt.Errorf("vaultjs: validation failed: %w", err)
		}
	}

	restoreGate := e.overlayFeatures(opts)
	defer restoreGate()

	globals, writebacks, err := e.convertRunGlobals(opts.Globals)
	if err != nil {
		return nil, err
	}

	limits := e.limits
	if opts.Limits != (Limits{}) {
		limits = opts.Limits
	}

	res := e.it.Run(ctx, prog, source, runOptionsFor(globals, limits))

	for _, w := range writebacks {
		if err := w.apply(e.it); err != nil {
			return nil, err
		}
	}

	if res.Err != nil {
		return nil, res.Err
	}

	hostVal, err := guestToHost(e.it, res.Value)
	if err != nil {
		return nil, err
	}
	if opts.Full {
		return &RunResult{Value: hostVal, Counters: res.Counters}, nil
	}
	return hostVal, nil
}

// overlayFeatures temporarily narrows/widens e.it.Gate for the duration of
// one run when RunOptions carries FeatureTags, restoring the engine's own
// gate afterward. internal/interp consults *feature.Gate by pointer
// (Interpreter.Gate), so swapping the pointed-to value for the run's
// duration and restoring it after is sufficient without touching the
// Interpreter's own field.
func (e *Engine) overlayFeatures(opts RunOptions) func() {
	if len(opts.FeatureTags) == 0 {
		return func() {}
	}
	prev := *e.it.Gate
	mode := preset.ModeWhitelist
	if opts.FeatureMode == FeatureBlacklist {
		mode = preset.ModeBlacklist
	}
	fc := preset.FeatureControl{Mode: mode, Features: tagSet(opts.FeatureTags)}
	e.it.Gate.Enabled = fc.Resolve()
	return func() { *e.it.Gate = prev }
}

// runOptionsFor builds the internal/interp.RunOptions a converted globals
// overlay and resource limits translate to for one Run call.
func runOptionsFor(globals map[string]value.Value, limits Limits) interp.RunOptions {
	return interp.RunOptions{Limits: limits, Globals: globals}
}

func tagSet(tags []string) feature.FeatureSet {
	fs := make(feature.FeatureSet, len(tags))
	for _, t := range tags {
		fs[feature.Tag(t)] = true
	}
	return fs
}

// convertRunGlobals converts a per-run globals overlay the same way
// persistent globals are converted, additionally collecting writebacks
// for any host pointer-to-slice/map value so the caller observes guest
// mutations after the run completes (spec.md's scope-isolation scenario:
// a host-bound array the guest pushes onto).
func (e *Engine) convertRunGlobals(raw map[string]any) (map[string]value.Value, []*writeback, error) {
	if len(raw) == 0 {
		return nil, nil, nil
	}
	out := make(map[string]value.Value, len(raw))
	var writebacks []*writeback
	for name, v := range raw {
		gv, err := hostToGuest(e.it, v, e.security)
		if err != nil {
			return nil, nil, fmt.Errorf("vaultjs: converting run global %q: %w", name, err)
		}
		out[name] = gv
		if w := planWriteback(v, gv); w != nil {
			writebacks = append(writebacks, w)
		}
	}
	return out, writebacks, nil
}
