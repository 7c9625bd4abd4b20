package preset

import (
	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/value"
)

// Events returns the bundle installing `EventTarget`: `addEventListener`/
// `removeEventListener`/`dispatchEvent`, the minimal synchronous
// publish-subscribe surface the Timers/Fetch addons' own callback style
// doesn't cover when a guest script wants many independent listeners on
// one name rather than a single callback argument.
func Events() OptionBundle {
	return OptionBundle{
		Name:           "events",
		FeatureControl: Unrestricted(),
		Globals: map[string]GlobalFactory{
			"EventTarget": eventTargetCtor,
		},
	}
}

type eventTargetState struct {
	listeners map[string][]value.Ref
}

func eventTargetCtor(it *interp.Interpreter) value.Value {
	return it.NativeFunction("EventTarget", func(a value.NativeArgs) (value.Value, error) {
		st := &eventTargetState{listeners: map[string][]value.Ref{}}
		obj, ref := newObject(it)
		obj.Internal = st
		setMethod(it, obj, "addEventListener", func(ra value.NativeArgs) (value.Value, error) {
			name := argString(ra.Args, 0)
			fn, ok := arg(ra.Args, 1).(value.Ref)
			if !ok {
				return value.Undefined{}, nil
			}
			st.listeners[name] = append(st.listeners[name], fn)
			return value.Undefined{}, nil
		})
		setMethod(it, obj, "removeEventListener", func(ra value.NativeArgs) (value.Value, error) {
			name := argString(ra.Args, 0)
			fn, ok := arg(ra.Args, 1).(value.Ref)
			if !ok {
				return value.Undefined{}, nil
			}
			kept := st.listeners[name][:0]
			for _, l := range st.listeners[name] {
				if l != fn {
					kept = append(kept, l)
				}
			}
			st.listeners[name] = kept
			return value.Undefined{}, nil
		})
		setMethod(it, obj, "dispatchEvent", func(ra value.NativeArgs) (value.Value, error) {
			eventObj, ok := arg(ra.Args, 0).(value.Ref)
			if !ok {
				return value.Bool(true), nil
			}
			name := eventTypeOf(it, eventObj)
			for _, l := range st.listeners[name] {
				if _, err := it.CallValue(l, ref, []value.Value{eventObj}); err != nil {
					return nil, err
				}
			}
			return value.Bool(true), nil
		})
		return ref, nil
	})
}

func eventTypeOf(it *interp.Interpreter, eventRef value.Ref) string {
	obj, ok := it.Heap.Get(eventRef).(*value.PlainObject)
	if !ok {
		return ""
	}
	pd, ok := obj.Props[value.StringKey("type")]
	if !ok {
		return ""
	}
	if s, ok := pd.Value.(value.String); ok {
		return string(s)
	}
	return ""
}
