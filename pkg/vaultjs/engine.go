// Package vaultjs is the embeddable engine's external interface: the
// functional-options constructor a host uses to configure one Interpreter
// (feature gate, globals, module resolution, security policy, resource
// limits, validator), and the Eval/EvalAsync/EvalModule entry points that
// drive it. Every other package under internal/ is wired together here;
// nothing outside this package (and cmd/vaultjs, which only calls this
// package) should need to import internal/interp directly.
//
// Grounded on the teacher's pkg/dwscript functional-options surface
// (`New(WithTypeCheck(false))`, `engine.RegisterFunction`, `engine.Eval`):
// the same accumulate-then-build shape, generalized from one static-typed
// Pascal engine to a dynamically-configured, preset-driven one.
package vaultjs

import (
	"fmt"
	"io"

	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/bridge"
	"github.com/vaultjs/vaultjs/internal/env"
	"github.com/vaultjs/vaultjs/internal/feature"
	"github.com/vaultjs/vaultjs/internal/governor"
	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/module"
	"github.com/vaultjs/vaultjs/internal/preset"
	"github.com/vaultjs/vaultjs/internal/scheduler"
	"github.com/vaultjs/vaultjs/internal/value"
)

// Program is a parsed script or module, re-exported from internal/ast so a
// host's Validator can inspect it without importing an internal package
// directly.
type Program = ast.Program

// Limits bounds a single run's resource consumption; re-exported from
// internal/governor. A zero Limits means unbounded.
type Limits = governor.Limits

// Counters reports a completed run's resource usage.
type Counters = governor.Counters

// ResolvedModule is what a Resolver hands back for one specifier.
type ResolvedModule = module.ResolvedModule

// Resolver maps an import specifier to a ResolvedModule; a host embedding
// the module system implements this over its own filesystem or bundle
// conventions. See FileResolver for the plain-filesystem default.
type Resolver = module.Resolver

// FeatureMode selects how WithFeatures' tags are interpreted.
type FeatureMode int

const (
	// FeatureWhitelist enables exactly the given tags.
	FeatureWhitelist FeatureMode = iota
	// FeatureBlacklist enables every known tag except the given ones.
	FeatureBlacklist
)

// Engine is one configured, reusable evaluation environment: a persistent
// internal/interp.Interpreter plus the scheduler that serializes concurrent
// Eval/EvalAsync/EvalModule calls against it, per spec.md's "scheduler
// serialization" invariant. Safe for concurrent use from multiple
// goroutines; internal/scheduler is the seam that makes that true.
type Engine struct {
	it       *interp.Interpreter
	sched    *scheduler.Scheduler
	limits   Limits
	security bridge.SecurityPolicy

	modulesEnabled bool
	resolver       Resolver
	maxModuleDepth int
	loader         *module.Loader
	validator      func(*Program) error
}

type config struct {
	bundles        []preset.OptionBundle
	globals        map[string]any
	resolver       Resolver
	maxModuleDepth int
	limits         Limits
	security       *bridge.SecurityPolicy
	blockedNames   []string
	validator      func(*Program) error
}

// Option configures an Engine at construction time. Options are applied in
// the order given to New.
type Option func(*config)

// WithPresets merges the named era/add-on bundles into the engine's
// feature gate and persistent globals, in order, via internal/preset's
// Combine (later bundles' globals win a name collision; feature control
// merges per spec.md §6). Recognized era names: "ES5", "ES2015"/"ES6",
// "ES2016".."ES2024", "ESNext". Recognized add-on names: "timers",
// "json", "crypto", "codecs", "streams", "blob", "perf", "events",
// "fetch"; console and CONFIG are installed by WithConsole/WithConfig
// instead. An unrecognized name contributes a bundle that enables every
// feature and installs nothing; New does not report it as an error.
func WithPresets(names ...string) Option {
	return func(c *config) {
		for _, name := range names {
			c.bundles = append(c.bundles, presetBundle(name))
		}
	}
}

// WithGlobal installs one persistent global, converted from v via
// hostToGuest (Go slices/maps become mutable guest arrays/objects, structs
// a mutable copy of their exported fields, funcs callable native
// functions; other non-primitive values become a read-only host proxy).
func WithGlobal(name string, v any) Option {
	return func(c *config) {
		if c.globals == nil {
			c.globals = map[string]any{}
		}
		c.globals[name] = v
	}
}

// WithGlobals installs every entry of vals as a persistent global.
func WithGlobals(vals map[string]any) Option {
	return func(c *config) {
		if c.globals == nil {
			c.globals = map[string]any{}
		}
		for k, v := range vals {
			c.globals[k] = v
		}
	}
}

// WithFeatures adds an explicit feature-control overlay on top of any
// WithPresets bundles, merged via the same whitelist/blacklist combinator
// rule spec.md §6 defines for composing presets.
func WithFeatures(mode FeatureMode, tags ...string) Option {
	return func(c *config) {
		fs := make(feature.FeatureSet, len(tags))
		for _, t := range tags {
			fs[feature.Tag(t)] = true
		}
		pm := preset.ModeWhitelist
		if mode == FeatureBlacklist {
			pm = preset.ModeBlacklist
		}
		c.bundles = append(c.bundles, preset.OptionBundle{
			Name:           "custom-features",
			FeatureControl: preset.FeatureControl{Mode: pm, Features: fs},
			Globals:        map[string]preset.GlobalFactory{},
		})
	}
}

// WithConsole installs the `console` global, writing every log/info/warn/
// error/debug call to w. Kept as its own option (rather than a WithPresets
// name) since Console needs a caller-supplied sink the way the teacher's
// engine needs SetOutput.
func WithConsole(w io.Writer) Option {
	return func(c *config) { c.bundles = append(c.bundles, preset.Console(w)) }
}

// WithConfig installs a frozen `CONFIG` global decoded from yamlText.
func WithConfig(yamlText string) Option {
	return func(c *config) { c.bundles = append(c.bundles, preset.Config(yamlText)) }
}

// WithModuleResolver enables the ES-module system, backed by r for
// specifier resolution. Modules are disabled (EvalModule and dynamic
// `import()` both fail) until this option is supplied.
func WithModuleResolver(r Resolver) Option {
	return func(c *config) { c.resolver = r }
}

// WithModuleDepth overrides the module import graph's max depth
// (internal/module's misbehaving-resolver backstop). n <= 0 uses that
// package's default.
func WithModuleDepth(n int) Option {
	return func(c *config) { c.maxModuleDepth = n }
}

// WithLimits sets the engine's default per-run resource limits, used by
// any Eval/EvalAsync call that does not override Limits in its own
// RunOptions. Module bodies (EvalModule and dynamic import()) always run
// under these limits, which New hands to the module loader.
func WithLimits(limits Limits) Option {
	return func(c *config) { c.limits = limits }
}

// WithBlockedNames adds names to the security policy's blocked-property
// set, beyond internal/bridge's fixed Forbidden list.
func WithBlockedNames(names ...string) Option {
	return func(c *config) { c.blockedNames = append(c.blockedNames, names...) }
}

// WithErrorPolicy controls how a host-side Go error (an FFI function's
// trailing error return, a module load failure) surfaces to guest code:
// "preserve" (verbatim message), "mask" (a fixed generic message), or
// "retain" (same masked message, reserved for a host that wants to log
// the original error itself rather than have the guest see it). An
// unrecognized policy string is treated as "mask".
func WithErrorPolicy(policy, maskedMessage string) Option {
	return func(c *config) {
		var ep bridge.ErrorPolicy
		switch policy {
		case "preserve":
			ep = bridge.ErrorPreserve
		case "retain":
			ep = bridge.ErrorRetain
		default:
			ep = bridge.ErrorMask
		}
		c.security = &bridge.SecurityPolicy{ErrorPolicy: ep, MaskedMessage: maskedMessage}
	}
}

// WithValidator installs a predicate run against the parsed Program before
// every Eval/EvalAsync executes it; a non-nil return aborts the run with
// that error instead of evaluating anything, per spec.md §6's validator
// hook. Modules loaded by EvalModule or dynamic import() are not passed
// to the validator.
func WithValidator(fn func(*Program) error) Option {
	return func(c *config) { c.validator = fn }
}

// New builds an Engine: a bootstrapped Interpreter with its feature gate
// and persistent globals installed, and (if WithModuleResolver was given)
// a module Loader wired to it. Mirrors the teacher's
// `New(WithTypeCheck(false))` accumulate-then-construct shape.
func New(opts ...Option) (*Engine, error) {
	cfg := config{}
	for _, o := range opts {
		o(&cfg)
	}

	combined := preset.Combine(cfg.bundles...)
	gate := feature.New(combined.FeatureControl.Resolve())

	security := bridge.DefaultPolicy()
	if combined.Security != nil {
		security = *combined.Security
	}
	if cfg.security != nil {
		merged := *cfg.security
		security = merged
	}
	if len(cfg.blockedNames) > 0 {
		if security.BlockedNames == nil {
			security.BlockedNames = map[string]bool{}
		}
		for _, n := range cfg.blockedNames {
			security.BlockedNames[n] = true
		}
	}

	it := interp.New(gate, security)

	persistent := map[string]value.Value{}
	combined.Apply(it, persistent)
	for name, raw := range cfg.globals {
		gv, err := hostToGuest(it, raw, security)
		if err != nil {
			return nil, fmt.Errorf("vaultjs: converting global %q: %w", name, err)
		}
		persistent[name] = gv
	}
	for name, v := range persistent {
		b := it.Global.Declare(name, env.BindVar)
		b.Initialize(v)
	}

	e := &Engine{
		it:             it,
		sched:          scheduler.New(),
		limits:         cfg.limits,
		security:       security,
		maxModuleDepth: cfg.maxModuleDepth,
		validator:      cfg.validator,
	}
	if cfg.resolver != nil {
		e.modulesEnabled = true
		e.resolver = cfg.resolver
		e.loader = module.NewLoader(it, cfg.resolver, cfg.maxModuleDepth, cfg.limits)
		it.SetDynamicImporter(e.loader, "")
	}
	return e, nil
}

// RegisterFunction adapts fn (an arbitrary Go function value) via
// reflection and installs it as a persistent global callable name,
// grounded on the teacher's `engine.RegisterFunction(name, fn)`: int64/
// float64/string/bool parameters and an optional trailing error return
// (which becomes a catchable guest exception) are supported directly;
// slice parameters convert element by element, and any other parameter
// receives the guest value's guestToHost form when that is convertible to
// the parameter type (a guest object arrives as map[string]any, so struct
// parameters and other map types reject it). Returns an error if fn is
// not a function.
func (e *Engine) RegisterFunction(name string, fn any) error {
	gv, err := hostToGuest(e.it, fn, e.security)
	if err != nil {
		return err
	}
	if _, ok := gv.(value.Ref); !ok {
		return fmt.Errorf("vaultjs: RegisterFunction(%q): not a function", name)
	}
	if fo, ok := e.it.Heap.Get(gv.(value.Ref)).(*value.FunctionObject); !ok || fo.Native == nil {
		return fmt.Errorf("vaultjs: RegisterFunction(%q): %T is not a function", name, fn)
	}
	b := e.it.Global.Declare(name, env.BindVar)
	b.Initialize(gv)
	return nil
}
