package preset

import (
	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/value"
)

// promiseGlobal builds the guest-visible `Promise` constructor on top of
// the PromiseHandle machinery internal/interp's own `await`/async-function
// support already drives (NewPromise/ResolvePromise/RejectPromise,
// exported from internal/interp/async.go for exactly this purpose). Every
// ES2015+ era bundle installs this under the "Promise" global; it is not
// gated behind a feature tag of its own since AsyncAwait already gates
// the `async`/`await` syntax forms that would be useless without it, and
// a guest may legitimately want Promise without async/await (callback
// style `.then` chains).
func promiseGlobal(it *interp.Interpreter) value.Value {
	installPromiseProto(it)

	ctorFn := it.NativeFunction("Promise", func(a value.NativeArgs) (value.Value, error) {
		executor, ok := arg(a.Args, 0).(value.Ref)
		if !ok {
			return nil, it.Throw(it.NewError("TypeError", "Promise resolver is not a function"))
		}
		ref, h := it.NewPromise()
		resolveFn := it.NativeFunction("resolve", func(ra value.NativeArgs) (value.Value, error) {
			it.ResolvePromise(h, arg(ra.Args, 0))
			return value.Undefined{}, nil
		})
		rejectFn := it.NativeFunction("reject", func(ra value.NativeArgs) (value.Value, error) {
			it.RejectPromise(h, arg(ra.Args, 0))
			return value.Undefined{}, nil
		})
		if _, err := it.CallValue(executor, value.Undefined{}, []value.Value{resolveFn, rejectFn}); err != nil {
			if v, ok := it.ThrownValue(err); ok {
				it.RejectPromise(h, v)
			} else {
				it.RejectPromise(h, it.NewError("Error", err.Error()))
			}
		}
		return ref, nil
	})
	if fo, ok := it.Heap.Get(ctorFn).(*value.FunctionObject); ok {
		fo.Proto = it.PromiseProto
		fo.Statics = newPromiseStatics(it)
	}
	return ctorFn
}

// newPromiseStatics builds Promise.resolve/reject/all/race/allSettled as
// a plain object installed under the constructor's Statics field
// (internal/interp/convert.go's FunctionObject property lookup checks
// Statics before falling back to Function.prototype), the same pattern
// internal/class uses for a class's own static members.
func newPromiseStatics(it *interp.Interpreter) value.Ref {
	obj, ref := newObject(it)
	setMethod(it, obj, "resolve", func(a value.NativeArgs) (value.Value, error) {
		v := arg(a.Args, 0)
		if r, ok := v.(value.Ref); ok {
			if po, ok := it.Heap.Get(r).(*value.PlainObject); ok {
				if _, ok := po.Internal.(*value.PromiseHandle); ok {
					return v, nil
				}
			}
		}
		pref, h := it.NewPromise()
		it.ResolvePromise(h, v)
		return pref, nil
	})
	setMethod(it, obj, "reject", func(a value.NativeArgs) (value.Value, error) {
		pref, h := it.NewPromise()
		it.RejectPromise(h, arg(a.Args, 0))
		return pref, nil
	})
	setMethod(it, obj, "all", func(a value.NativeArgs) (value.Value, error) {
		return promiseCombinator(it, a.Args, combinatorAll)
	})
	setMethod(it, obj, "race", func(a value.NativeArgs) (value.Value, error) {
		return promiseCombinator(it, a.Args, combinatorRace)
	})
	setMethod(it, obj, "allSettled", func(a value.NativeArgs) (value.Value, error) {
		return promiseCombinator(it, a.Args, combinatorAllSettled)
	})
	return ref
}

type combinatorKind int

const (
	combinatorAll combinatorKind = iota
	combinatorRace
	combinatorAllSettled
)

// promiseCombinator implements Promise.all/race/allSettled against the
// single iterable argument guest code passes as an array; non-array
// arguments are treated as an empty list rather than erroring, since a
// proper iterable protocol is out of scope for this sandboxed surface.
func promiseCombinator(it *interp.Interpreter, args []value.Value, kind combinatorKind) (value.Value, error) {
	var items []value.Value
	if r, ok := arg(args, 0).(value.Ref); ok {
		if ao, ok := it.Heap.Get(r).(*value.ArrayObject); ok {
			items = ao.Elements
		}
	}
	resultRef, h := it.NewPromise()
	if len(items) == 0 {
		switch kind {
		case combinatorRace:
			// stays pending forever, matching real Promise.race([]) semantics
		default:
			emptyArr := &value.ArrayObject{Proto: it.ArrayProto}
			arrRef := it.Heap.Alloc(emptyArr)
			it.ResolvePromise(h, arrRef)
		}
		return resultRef, nil
	}

	results := make([]value.Value, len(items))
	remaining := len(items)
	settled := false

	for idx, item := range items {
		i := idx
		onFulfilled := func(v value.Value) {
			if settled {
				return
			}
			switch kind {
			case combinatorAll:
				results[i] = v
				remaining--
				if remaining == 0 {
					settled = true
					it.ResolvePromise(h, toArray(it, results))
				}
			case combinatorRace:
				settled = true
				it.ResolvePromise(h, v)
			case combinatorAllSettled:
				results[i] = settledRecord(it, "fulfilled", v)
				remaining--
				if remaining == 0 {
					settled = true
					it.ResolvePromise(h, toArray(it, results))
				}
			}
		}
		onRejected := func(v value.Value) {
			if settled {
				return
			}
			switch kind {
			case combinatorAll:
				settled = true
				it.RejectPromise(h, v)
			case combinatorRace:
				settled = true
				it.RejectPromise(h, v)
			case combinatorAllSettled:
				results[i] = settledRecord(it, "rejected", v)
				remaining--
				if remaining == 0 {
					settled = true
					it.ResolvePromise(h, toArray(it, results))
				}
			}
		}
		attachReaction(it, item, onFulfilled, onRejected)
	}
	return resultRef, nil
}

// attachReaction subscribes to item's settlement if it is a promise;
// non-promise values settle as already-fulfilled, matching Promise.all's
// treatment of non-thenable entries.
func attachReaction(it *interp.Interpreter, item value.Value, onFulfilled, onRejected func(value.Value)) {
	r, ok := item.(value.Ref)
	if !ok {
		onFulfilled(item)
		return
	}
	po, ok := it.Heap.Get(r).(*value.PlainObject)
	if !ok {
		onFulfilled(item)
		return
	}
	h, ok := po.Internal.(*value.PromiseHandle)
	if !ok {
		onFulfilled(item)
		return
	}
	fulfillFn := it.NativeFunction("", func(a value.NativeArgs) (value.Value, error) {
		onFulfilled(arg(a.Args, 0))
		return value.Undefined{}, nil
	})
	rejectFn := it.NativeFunction("", func(a value.NativeArgs) (value.Value, error) {
		onRejected(arg(a.Args, 0))
		return value.Undefined{}, nil
	})
	switch h.State {
	case value.PromisePending:
		h.OnFulfill = append(h.OnFulfill, fulfillFn)
		h.OnReject = append(h.OnReject, rejectFn)
	case value.PromiseFulfilled:
		it.QueueMicrotask(func() { onFulfilled(h.Result) })
	case value.PromiseRejected:
		it.QueueMicrotask(func() { onRejected(h.Result) })
	}
}

func toArray(it *interp.Interpreter, elems []value.Value) value.Ref {
	arr := &value.ArrayObject{Proto: it.ArrayProto, Elements: append([]value.Value{}, elems...), Length: len(elems)}
	return it.Heap.Alloc(arr)
}

func settledRecord(it *interp.Interpreter, status string, v value.Value) value.Ref {
	obj, ref := newObject(it)
	setValue(obj, "status", value.String(status), true)
	if status == "fulfilled" {
		setValue(obj, "value", v, true)
	} else {
		setValue(obj, "reason", v, true)
	}
	return ref
}

// installPromiseProto attaches then/catch/finally to it.PromiseProto
// exactly once per engine (subsequent calls overwrite with identical
// definitions, harmless idempotence rather than a guarded flag, since
// there is no per-engine "already installed" bit worth threading through
// GlobalFactory's signature for a same-cost no-op).
func installPromiseProto(it *interp.Interpreter) {
	proto, ok := it.Heap.Get(it.PromiseProto).(*value.PlainObject)
	if !ok {
		return
	}
	setMethod(it, proto, "then", func(a value.NativeArgs) (value.Value, error) {
		return promiseThen(it, a.This, arg(a.Args, 0), arg(a.Args, 1))
	})
	setMethod(it, proto, "catch", func(a value.NativeArgs) (value.Value, error) {
		return promiseThen(it, a.This, value.Undefined{}, arg(a.Args, 0))
	})
	setMethod(it, proto, "finally", func(a value.NativeArgs) (value.Value, error) {
		onFinally := arg(a.Args, 0)
		wrap := it.NativeFunction("", func(wa value.NativeArgs) (value.Value, error) {
			if fnRef, ok := onFinally.(value.Ref); ok {
				if _, err := it.CallValue(fnRef, value.Undefined{}, nil); err != nil {
					return nil, err
				}
			}
			return arg(wa.Args, 0), nil
		})
		wrapReject := it.NativeFunction("", func(wa value.NativeArgs) (value.Value, error) {
			if fnRef, ok := onFinally.(value.Ref); ok {
				if _, err := it.CallValue(fnRef, value.Undefined{}, nil); err != nil {
					return nil, err
				}
			}
			return nil, it.Throw(arg(wa.Args, 0))
		})
		return promiseThen(it, a.This, wrap, wrapReject)
	})
	setMethod(it, proto, "resolve", func(a value.NativeArgs) (value.Value, error) {
		v := arg(a.Args, 0)
		if r, ok := v.(value.Ref); ok {
			if _, ok := it.Heap.Get(r).(*value.PlainObject); ok {
				return v, nil // already a promise (or promise-shaped); pass through
			}
		}
		ref, h := it.NewPromise()
		it.ResolvePromise(h, v)
		return ref, nil
	})
	setMethod(it, proto, "reject", func(a value.NativeArgs) (value.Value, error) {
		ref, h := it.NewPromise()
		it.RejectPromise(h, arg(a.Args, 0))
		return ref, nil
	})
}

// promiseThen is the shared implementation behind .then/.catch/.finally:
// it allocates the derived promise and registers reactions that settle
// it from whichever handler fires, falling back to pass-through
// propagation when a handler slot is not callable.
func promiseThen(it *interp.Interpreter, this value.Value, onFulfilled, onRejected value.Value) (value.Value, error) {
	selfRef, ok := this.(value.Ref)
	if !ok {
		return nil, it.Throw(it.NewError("TypeError", "Promise.prototype.then called on a non-object"))
	}
	selfObj, ok := it.Heap.Get(selfRef).(*value.PlainObject)
	if !ok {
		return nil, it.Throw(it.NewError("TypeError", "Promise.prototype.then called on a non-Promise"))
	}
	h, ok := selfObj.Internal.(*value.PromiseHandle)
	if !ok {
		return nil, it.Throw(it.NewError("TypeError", "Promise.prototype.then called on a non-Promise"))
	}

	derivedRef, derivedH := it.NewPromise()

	onFulfillReaction := it.NativeFunction("", func(a value.NativeArgs) (value.Value, error) {
		v := arg(a.Args, 0)
		if fnRef, ok := onFulfilled.(value.Ref); ok {
			res, err := it.CallValue(fnRef, value.Undefined{}, []value.Value{v})
			if err != nil {
				if tv, ok := it.ThrownValue(err); ok {
					it.RejectPromise(derivedH, tv)
				} else {
					it.RejectPromise(derivedH, it.NewError("Error", err.Error()))
				}
				return value.Undefined{}, nil
			}
			it.ResolvePromise(derivedH, res)
			return value.Undefined{}, nil
		}
		it.ResolvePromise(derivedH, v) // no handler: fulfilled value propagates through
		return value.Undefined{}, nil
	})
	onRejectReaction := it.NativeFunction("", func(a value.NativeArgs) (value.Value, error) {
		v := arg(a.Args, 0)
		if fnRef, ok := onRejected.(value.Ref); ok {
			res, err := it.CallValue(fnRef, value.Undefined{}, []value.Value{v})
			if err != nil {
				if tv, ok := it.ThrownValue(err); ok {
					it.RejectPromise(derivedH, tv)
				} else {
					it.RejectPromise(derivedH, it.NewError("Error", err.Error()))
				}
				return value.Undefined{}, nil
			}
			it.ResolvePromise(derivedH, res)
			return value.Undefined{}, nil
		}
		it.RejectPromise(derivedH, v) // no handler: rejection propagates through
		return value.Undefined{}, nil
	})

	switch h.State {
	case value.PromisePending:
		h.OnFulfill = append(h.OnFulfill, onFulfillReaction)
		h.OnReject = append(h.OnReject, onRejectReaction)
	case value.PromiseFulfilled:
		it.QueueMicrotask(func() { _, _ = it.CallValue(onFulfillReaction, value.Undefined{}, []value.Value{h.Result}) })
	case value.PromiseRejected:
		it.QueueMicrotask(func() { _, _ = it.CallValue(onRejectReaction, value.Undefined{}, []value.Value{h.Result}) })
	}
	return derivedRef, nil
}
