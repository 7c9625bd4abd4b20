package interp

import (
	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/env"
	"github.com/vaultjs/vaultjs/internal/value"
)

// Async functions run synchronously to completion on the calling
// goroutine: `await` on an already-settled (or non-thenable) value
// returns immediately, and `await` on one of this engine's own pending
// promises drains the microtask queue until it settles. This models a
// trusted, single-threaded host with no real I/O concurrency — there is
// nothing an async function could usefully wait on that isn't itself
// produced by queued guest code — while still giving `async`/`await` its
// ordinary surface syntax and Promise-returning shape.

// NewPromise, ResolvePromise, and RejectPromise expose the pending/
// resolve/reject machinery to internal/preset, which builds the
// guest-visible `Promise` constructor/prototype (`new Promise(executor)`,
// `.then`/`.catch`/`.finally`) on top of the same PromiseHandle this
// engine's own `await` and async functions already drive.
func (it *Interpreter) NewPromise() (value.Ref, *value.PromiseHandle) { return it.newPromise() }
func (it *Interpreter) ResolvePromise(h *value.PromiseHandle, v value.Value) { it.resolvePromise(h, v) }
func (it *Interpreter) RejectPromise(h *value.PromiseHandle, v value.Value) { it.rejectPromise(h, v) }

func (it *Interpreter) newPromise() (value.Ref, *value.PromiseHandle) {
	obj := value.NewPlainObject(it.PromiseProto, true)
	obj.Class = "Promise"
	h := &value.PromiseHandle{State: value.PromisePending}
	obj.Internal = h
	return it.Heap.Alloc(obj), h
}

func (it *Interpreter) resolvePromise(h *value.PromiseHandle, v value.Value) {
	if h.State != value.PromisePending {
		return
	}
	if r, ok := v.(value.Ref); ok {
		if po, ok := it.Heap.Get(r).(*value.PlainObject); ok {
			if oh, ok := po.Internal.(*value.PromiseHandle); ok {
				it.drainUntilSettled(oh)
				if oh.State == value.PromiseRejected {
					it.rejectPromise(h, oh.Result)
					return
				}
				v = oh.Result
			}
		}
	}
	h.State = value.PromiseFulfilled
	h.Result = v
	for _, r := range h.OnFulfill {
		it.runReaction(r, v)
	}
	h.OnFulfill = nil
}

func (it *Interpreter) rejectPromise(h *value.PromiseHandle, v value.Value) {
	if h.State != value.PromisePending {
		return
	}
	h.State = value.PromiseRejected
	h.Result = v
	for _, r := range h.OnReject {
		it.runReaction(r, v)
	}
	h.OnReject = nil
}

func (it *Interpreter) runReaction(fnRef value.Ref, v value.Value) {
	it.queueMicrotask(func() {
		fnObj, ok := it.Heap.Get(fnRef).(*value.FunctionObject)
		if !ok {
			return
		}
		_, _ = it.callFunction(fnRef, fnObj, value.Undefined{}, []value.Value{v}, ast0())
	})
}

// drainUntilSettled forces a pending promise toward settlement by running
// queued microtasks; if the queue empties with h still pending, nothing
// further is going to resolve it (there is no outstanding host I/O in this
// engine), so evalAwait treats that as a stuck await.
func (it *Interpreter) drainUntilSettled(h *value.PromiseHandle) {
	for h.State == value.PromisePending && len(it.microtasks) > 0 {
		it.drainMicrotasks()
	}
}

func (it *Interpreter) evalAwait(e *ast.AwaitExpression, scope *env.Environment) (value.Value, error) {
	v, err := it.evalExpression(e.Argument, scope)
	if err != nil {
		return nil, err
	}
	r, ok := v.(value.Ref)
	if !ok {
		return v, nil
	}
	po, ok := it.Heap.Get(r).(*value.PlainObject)
	if !ok {
		return v, nil
	}
	h, ok := po.Internal.(*value.PromiseHandle)
	if !ok {
		return v, nil
	}
	it.drainUntilSettled(h)
	switch h.State {
	case value.PromiseFulfilled:
		return h.Result, nil
	case value.PromiseRejected:
		return nil, &thrownError{V: h.Result}
	default:
		return nil, &thrownError{V: it.newErrorValue("Error", "await on a promise that never settles")}
	}
}

// runAsyncFunction evaluates an async function's body synchronously,
// settling a fresh Promise with its return value or thrown exception.
func (it *Interpreter) runAsyncFunction(ce *closureEnv, callScope *env.Environment) value.Value {
	ref, h := it.newPromise()

	var result value.Value = value.Undefined{}
	var err error
	switch body := ce.Body.(type) {
	case *ast.BlockStatement:
		it.hoistVarsAndFunctions(body.Body, callScope, true)
		c := it.evalBlock(body.Body, callScope)
		switch c.Kind {
		case CompletionReturn:
			result = c.Value
		case CompletionThrow:
			err = &thrownError{V: c.Value}
		}
	case ast.Expression:
		result, err = it.evalExpression(body, callScope)
	}

	if err != nil {
		if te, ok := err.(*thrownError); ok {
			it.rejectPromise(h, te.V)
		} else {
			it.rejectPromise(h, it.newErrorValue("Error", err.Error()))
		}
	} else {
		it.resolvePromise(h, result)
	}
	return ref
}

// evalDynamicImport evaluates `import(specifier)`: if a DynamicImporter
// has been wired in via SetDynamicImporter, the specifier is resolved,
// linked, and evaluated (synchronously, consistent with this engine's
// run-to-completion async model) and the settled Promise carries the
// resulting namespace object. With no importer configured, the Promise
// rejects with a descriptive error, since dynamic import must always
// produce a Promise regardless of whether module loading is available.
func (it *Interpreter) evalDynamicImport(e *ast.ImportExpression, scope *env.Environment) (value.Value, error) {
	specV, err := it.evalExpression(e.Source, scope)
	if err != nil {
		return nil, err
	}
	spec, err := it.toStringValue(specV)
	if err != nil {
		return nil, err
	}
	ref, h := it.newPromise()
	if it.importer == nil {
		it.rejectPromise(h, it.newErrorValue("Error", "dynamic import of \""+spec+"\" requires a module loader, none configured"))
		return ref, nil
	}
	nsRef, err := it.importer.ImportDynamic(spec, it.modPath)
	if err != nil {
		it.rejectPromise(h, it.newErrorValue("Error", "dynamic import of \""+spec+"\" failed: "+err.Error()))
		return ref, nil
	}
	it.resolvePromise(h, nsRef)
	return ref, nil
}
