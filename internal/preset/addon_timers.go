package preset

import (
	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/value"
)

// Timers returns the bundle installing setTimeout/clearTimeout/
// setInterval/clearInterval. This engine is a trusted, single-threaded,
// run-to-completion sandbox with no real event loop or wall-clock timer
// source, so "run later" is modeled as "run once the current synchronous
// job and any already-queued microtasks finish" via Interpreter.QueueMicrotask:
// a delay argument is accepted (for API compatibility with guest code
// written against a real timer) but not honored as a wall-clock wait.
// setInterval is capped (maxIntervalTicks) rather than left to requeue
// itself forever, since nothing in this engine ever drives a host-side
// run loop past the point all queued microtasks have drained.
func Timers() OptionBundle {
	return OptionBundle{
		Name:           "timers",
		FeatureControl: Unrestricted(),
		Globals: map[string]GlobalFactory{
			"setTimeout":    timersSetTimeout,
			"clearTimeout":  timersClear,
			"setInterval":   timersSetInterval,
			"clearInterval": timersClear,
		},
	}
}

// maxIntervalTicks bounds how many times a setInterval callback re-queues
// itself before this engine stops rescheduling it. A guest script that
// never calls clearInterval would otherwise queue callbacks indefinitely,
// and this engine has no wall clock to space them out by.
const maxIntervalTicks = 1000

type timerState struct{ cleared bool }

func timersSetTimeout(it *interp.Interpreter) value.Value {
	return it.NativeFunction("setTimeout", func(a value.NativeArgs) (value.Value, error) {
		fnRef, ok := arg(a.Args, 0).(value.Ref)
		if !ok {
			return value.Number(0), nil
		}
		extra := extraArgs(a.Args, 2)
		st := &timerState{}
		it.QueueMicrotask(func() {
			if st.cleared {
				return
			}
			_, _ = it.CallValue(fnRef, value.Undefined{}, extra)
		})
		return timerHandle(it, st), nil
	})
}

func timersSetInterval(it *interp.Interpreter) value.Value {
	return it.NativeFunction("setInterval", func(a value.NativeArgs) (value.Value, error) {
		fnRef, ok := arg(a.Args, 0).(value.Ref)
		if !ok {
			return value.Number(0), nil
		}
		extra := extraArgs(a.Args, 2)
		st := &timerState{}
		var tick func(int)
		tick = func(n int) {
			if st.cleared || n >= maxIntervalTicks {
				return
			}
			it.QueueMicrotask(func() {
				if st.cleared {
					return
				}
				_, _ = it.CallValue(fnRef, value.Undefined{}, extra)
				tick(n + 1)
			})
		}
		tick(0)
		return timerHandle(it, st), nil
	})
}

func timersClear(it *interp.Interpreter) value.Value {
	return it.NativeFunction("clearTimeout", func(a value.NativeArgs) (value.Value, error) {
		r, ok := arg(a.Args, 0).(value.Ref)
		if !ok {
			return value.Undefined{}, nil
		}
		if obj, ok := it.Heap.Get(r).(*value.PlainObject); ok {
			if st, ok := obj.Internal.(*timerState); ok {
				st.cleared = true
			}
		}
		return value.Undefined{}, nil
	})
}

// timerHandle wraps st in a plain object so clearTimeout/clearInterval
// can find it back by identity; guest code only ever passes the handle
// through opaquely, never inspects it.
func timerHandle(it *interp.Interpreter, st *timerState) value.Ref {
	obj, ref := newObject(it)
	obj.Internal = st
	return ref
}

func extraArgs(args []value.Value, from int) []value.Value {
	if from >= len(args) {
		return nil
	}
	return append([]value.Value{}, args[from:]...)
}
