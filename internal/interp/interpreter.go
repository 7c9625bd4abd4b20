// Package interp is the tree-walking evaluator: it turns a parsed
// internal/ast.Program into effects and a final value, consulting
// internal/feature's gate before any gated construct fires, internal/bridge
// before any property write, and internal/governor at every statement and
// loop back-edge. Architecture (persistent engine state plus a fresh
// per-run environment and resource governor layered on top) is grounded on
// the teacher's Interpreter/Run split: one long-lived evaluator object
// reused across runs, one lightweight per-call accounting object created
// and torn down around each Run.
package interp

import (
	"context"
	"fmt"

	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/bridge"
	"github.com/vaultjs/vaultjs/internal/env"
	"github.com/vaultjs/vaultjs/internal/feature"
	"github.com/vaultjs/vaultjs/internal/governor"
	"github.com/vaultjs/vaultjs/internal/value"
	"github.com/vaultjs/vaultjs/internal/verrors"
)

// Interpreter is the persistent, reusable evaluation engine for one
// embedded script environment: one heap, one global environment, and the
// policy objects that gate what guest code may do. A single Interpreter is
// meant to be driven through many sequential Run calls (the host's
// pkg/vaultjs layer serializes access via internal/scheduler); nothing here
// is safe for concurrent use without that external serialization.
type Interpreter struct {
	Heap   *value.Heap
	Global *env.Environment
	Gate   *feature.Gate
	Policy bridge.SecurityPolicy

	ObjectProto value.Ref
	ArrayProto  value.Ref
	FuncProto   value.Ref
	ErrorProto  value.Ref
	StringProto value.Ref
	NumberProto value.Ref
	BoolProto   value.Ref
	PromiseProto value.Ref
	GeneratorProto value.Ref
	RegExpProto value.Ref
	MapProto    value.Ref
	SetProto    value.Ref

	gov *governor.Governor
	src string

	microtasks []func()

	// classScopes maps a ClassObject to the lexical scope its body was
	// evaluated in, so instance-field initializers (run later, once per
	// constructed instance) and static initializers can close over the
	// class body's scope chain (private names, the class's own binding
	// for self-reference, enclosing variables) the same way a method body
	// does.
	classScopes map[*value.ClassObject]*env.Environment

	importer DynamicImporter
	modPath  string
}

// DynamicImporter resolves a dynamic `import(specifier)` expression into a
// module namespace object, once a host has configured one. Defined here
// rather than importing internal/module directly, since internal/module
// itself imports internal/interp (it drives the evaluator to run a
// module's body) — this interface is the dependency-free seam that lets
// *module.Loader satisfy it structurally without either package importing
// the other.
type DynamicImporter interface {
	ImportDynamic(specifier, importerPath string) (value.Ref, error)
}

// SetDynamicImporter wires a module loader into `import()` resolution;
// called once by pkg/vaultjs after constructing both. modulePath is the
// entry script's own resolved path, used as the importer path for a
// dynamic import reached from top-level (non-module) code.
func (it *Interpreter) SetDynamicImporter(d DynamicImporter, modulePath string) {
	it.importer = d
	it.modPath = modulePath
}

// New builds an Interpreter with a bootstrapped prototype chain and an
// empty global environment. Callers layer in additional globals (console,
// timers, JSON, ...) via internal/preset bundles after construction.
func New(gate *feature.Gate, policy bridge.SecurityPolicy) *Interpreter {
	h := value.NewHeap()
	it := &Interpreter{
		Heap:   h,
		Global: env.New(nil, env.KindFunction),
		Gate:   gate,
		Policy: policy,
		classScopes: make(map[*value.ClassObject]*env.Environment),
	}
	it.ObjectProto = h.Alloc(&value.PlainObject{Class: "Object", Props: map[value.PropertyKey]*value.PropertyDescriptor{}, Extensible: true})
	it.ArrayProto = it.newProtoObject()
	it.FuncProto = it.newProtoObject()
	it.ErrorProto = it.newProtoObject()
	it.StringProto = it.newProtoObject()
	it.NumberProto = it.newProtoObject()
	it.BoolProto = it.newProtoObject()
	it.PromiseProto = it.newProtoObject()
	it.GeneratorProto = it.newProtoObject()
	it.RegExpProto = it.newProtoObject()
	it.MapProto = it.newProtoObject()
	it.SetProto = it.newProtoObject()
	return it
}

func (it *Interpreter) newProtoObject() value.Ref {
	return it.Heap.Alloc(&value.PlainObject{
		Class:      "Object",
		Props:      map[value.PropertyKey]*value.PropertyDescriptor{},
		Proto:      it.ObjectProto,
		HasProto:   true,
		Extensible: true,
	})
}

// RunOptions configures one call to Run.
type RunOptions struct {
	Limits  governor.Limits
	Globals map[string]value.Value // overlaid on top of persistent globals for this run only
}

// Result is the outcome of one Run.
type Result struct {
	Value    value.Value
	Err      *verrors.Error
	Counters governor.Counters
}

// Run parses nothing itself (the caller supplies an already-parsed
// Program); it hoists top-level var/function declarations, then evaluates
// the body statement by statement, draining queued microtasks (resolved
// promise reactions) after each top-level statement, matching a
// single-threaded host's run-to-completion job-queue model.
func (it *Interpreter) Run(ctx context.Context, prog *ast.Program, src string, opts RunOptions) Result {
	it.src = src
	gov := governor.New(ctx, opts.Limits)
	it.gov = gov
	defer gov.Close()
	defer func() { it.gov = nil }()

	runEnv := env.New(it.Global, env.KindFunction)
	for name, v := range opts.Globals {
		b := runEnv.Declare(name, env.BindVar)
		b.Initialize(v)
	}

	it.hoistVarsAndFunctions(prog.Body, runEnv, true)

	var last value.Value = value.Undefined{}
	for _, stmt := range prog.Body {
		if err := gov.Check(); err != nil {
			return Result{Value: last, Err: it.resourceError(err), Counters: gov.Snapshot()}
		}
		c := it.evalStatement(stmt, runEnv)
		it.drainMicrotasks()
		switch c.Kind {
		case CompletionThrow:
			return Result{Value: last, Err: it.toVError(c), Counters: gov.Snapshot()}
		case CompletionNormal:
			if c.Value != nil {
				last = c.Value
			}
		default:
			// A bare top-level return/break/continue is a script bug;
			// treat its value as the script's result rather than erroring.
			if c.Value != nil {
				last = c.Value
			}
		}
	}
	return Result{Value: last, Counters: gov.Snapshot()}
}

// HoistModule runs the declaration-hoisting pass for a parsed module body
// against modEnv: every var/function name is declared and initialized,
// every top-level let/const/class name is declared in its temporal dead
// zone. internal/module calls this once per module at link time, before
// any module in the graph is evaluated, so export bindings (and import
// bindings aliased straight to them) exist — TDZ or not — for every
// module to reference regardless of evaluation order, including cycles.
func (it *Interpreter) HoistModule(body []ast.Statement, modEnv *env.Environment) {
	it.hoistVarsAndFunctions(body, modEnv, true)
}

// EvalModuleBody runs a module's already-hoisted and already-linked body
// in source order, draining microtasks after each statement, mirroring
// Run's top-level loop without re-hoisting or allocating a fresh
// environment (internal/module owns the module's environment and the
// link-time hoist pass already ran via HoistModule).
func (it *Interpreter) EvalModuleBody(ctx context.Context, body []ast.Statement, modEnv *env.Environment, limits governor.Limits) *verrors.Error {
	gov := governor.New(ctx, limits)
	prevGov := it.gov
	it.gov = gov
	defer func() {
		gov.Close()
		it.gov = prevGov
	}()

	for _, stmt := range body {
		if err := gov.Check(); err != nil {
			return it.resourceError(err)
		}
		c := it.evalStatement(stmt, modEnv)
		it.drainMicrotasks()
		if c.Kind == CompletionThrow {
			return it.toVError(c)
		}
	}
	return nil
}

// queueMicrotask registers fn to run after the current top-level
// statement finishes, modeling the promise-reaction job queue.
func (it *Interpreter) queueMicrotask(fn func()) {
	it.microtasks = append(it.microtasks, fn)
}

// QueueMicrotask is queueMicrotask's exported form, used by
// internal/preset's Timers addon to model setTimeout/setInterval
// callbacks as queued jobs rather than real OS timers: this is a
// trusted, single-threaded, run-to-completion host, so "schedule for
// later" and "run once the current job finishes" are the same thing.
func (it *Interpreter) QueueMicrotask(fn func()) { it.queueMicrotask(fn) }

func (it *Interpreter) drainMicrotasks() {
	for len(it.microtasks) > 0 {
		fn := it.microtasks[0]
		it.microtasks = it.microtasks[1:]
		fn()
	}
}

// thrownError wraps a guest-visible value.Value as a Go error so it can
// travel through ordinary Go error returns in helper functions (property
// access, conversions) before being re-wrapped into a Completion at the
// nearest statement/expression boundary that knows how to produce one.
type thrownError struct{ V value.Value }

func (e *thrownError) Error() string {
	if e.V == nil {
		return "thrown value"
	}
	return e.V.String()
}

// ThrownValue unwraps err into the guest value it carries, when err
// originated from a guest `throw` (or an evaluator-raised error, which is
// always wrapped the same way) rather than from plain Go failure. Used by
// internal/preset to reject a Promise with the exact value a synchronous
// executor/reaction threw, rather than a re-stringified message.
func (it *Interpreter) ThrownValue(err error) (value.Value, bool) {
	if te, ok := err.(*thrownError); ok {
		return te.V, true
	}
	return nil, false
}

func (it *Interpreter) throwErr(err error) Completion {
	if te, ok := err.(*thrownError); ok {
		return throwC(te.V)
	}
	return throwC(it.newErrorValue("Error", err.Error()))
}

// newErrorValue builds a guest Error object of the given constructor name
// ("TypeError", "RangeError", "ReferenceError", "Error", ...) with a
// message property, used for every runtime error the evaluator raises
// itself (as opposed to a guest `throw`).
func (it *Interpreter) newErrorValue(name, message string) value.Value {
	obj := &value.PlainObject{
		Class:      "Error",
		Props:      map[value.PropertyKey]*value.PropertyDescriptor{},
		Proto:      it.ErrorProto,
		HasProto:   true,
		Extensible: true,
	}
	obj.Keys = append(obj.Keys, value.StringKey("name"), value.StringKey("message"), value.StringKey("stack"))
	obj.Props[value.StringKey("name")] = &value.PropertyDescriptor{Value: value.String(name), Writable: true, Configurable: true}
	obj.Props[value.StringKey("message")] = &value.PropertyDescriptor{Value: value.String(message), Writable: true, Configurable: true}
	obj.Props[value.StringKey("stack")] = &value.PropertyDescriptor{Value: value.String(name + ": " + message), Writable: true, Configurable: true}
	return it.Heap.Alloc(obj)
}

// NewError builds a guest Error object, exported for internal/preset
// bundles that need to throw/reject with a properly-prototyped Error
// value (a TypeError for a bad addon argument, a rejected fetch(), ...)
// rather than a bare string.
func (it *Interpreter) NewError(name, message string) value.Value {
	return it.newErrorValue(name, message)
}

func (it *Interpreter) typeError(msg string, args ...any) Completion {
	return throwC(it.newErrorValue("TypeError", fmt.Sprintf(msg, args...)))
}

func (it *Interpreter) referenceError(msg string, args ...any) Completion {
	return throwC(it.newErrorValue("ReferenceError", fmt.Sprintf(msg, args...)))
}

func (it *Interpreter) rangeError(msg string, args ...any) Completion {
	return throwC(it.newErrorValue("RangeError", fmt.Sprintf(msg, args...)))
}

// ast0 returns a zero Span for synthetic calls the evaluator makes on its
// own behalf (valueOf/toString during coercion, property-accessor
// invocations) where no guest source position applies.
func ast0() ast.Span { return ast.Span{} }

func (it *Interpreter) resourceError(err error) *verrors.Error {
	return verrors.NewRuntime(verrors.CodeResourceExceeded, err.Error(), ast.Span{})
}

// toVError converts an uncaught CompletionThrow into the public
// diagnostic shape, rendering the thrown value's message/name if it looks
// like an Error object, or its display string otherwise.
func (it *Interpreter) toVError(c Completion) *verrors.Error {
	msg := it.displayThrown(c.Value)
	return verrors.NewRuntime(verrors.CodeUserThrow, msg, ast.Span{})
}

func (it *Interpreter) displayThrown(v value.Value) string {
	if r, ok := v.(value.Ref); ok {
		if obj, ok := it.Heap.Get(r).(*value.PlainObject); ok {
			name := "Error"
			if d, ok := obj.Props[value.StringKey("name")]; ok {
				name = d.Value.String()
			}
			msg := ""
			if d, ok := obj.Props[value.StringKey("message")]; ok {
				msg = d.Value.String()
			}
			if msg != "" {
				return name + ": " + msg
			}
			return name
		}
	}
	if v == nil {
		return "undefined"
	}
	return v.String()
}
