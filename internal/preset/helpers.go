package preset

import (
	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/value"
)

// newObject allocates a plain, extensible object on it's own heap with
// Object.prototype as its prototype, the shape every addon namespace
// object (console, timers, ...) and constructor .prototype uses.
func newObject(it *interp.Interpreter) (*value.PlainObject, value.Ref) {
	obj := value.NewPlainObject(it.ObjectProto, true)
	ref := it.Heap.Alloc(obj)
	return obj, ref
}

// setMethod installs a native method on obj as a writable, enumerable,
// configurable property (matches how ordinary object-literal methods
// behave, the shape guest code expects when it enumerates an addon
// namespace).
func setMethod(it *interp.Interpreter, obj *value.PlainObject, name string, fn func(value.NativeArgs) (value.Value, error)) {
	ref := it.NativeFunction(name, fn)
	setValue(obj, name, ref, true)
}

// setValue installs a data property, writable and configurable, and
// enumerable iff enumerable.
func setValue(obj *value.PlainObject, name string, v value.Value, enumerable bool) {
	key := value.StringKey(name)
	if _, exists := obj.Props[key]; !exists {
		obj.Keys = append(obj.Keys, key)
	}
	obj.Props[key] = &value.PropertyDescriptor{Value: v, Writable: true, Enumerable: enumerable, Configurable: true}
}

// arg returns args[i] or undefined when the call was made with fewer
// than i+1 arguments, matching JS's own lenient arity.
func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undefined{}
}

// argString coerces args[i] to a Go string via its guest String()
// rendering; addons use this for simple display/identifier-shaped
// arguments (console messages, event names) where full ToString
// abstract-operation semantics (calling a user toString()) are not
// warranted for a host-side utility function.
func argString(args []value.Value, i int) string {
	v := arg(args, i)
	if v == nil {
		return "undefined"
	}
	return v.String()
}

// argNumber coerces args[i] to a float64, defaulting to 0 for anything
// that isn't already a Number (addons needing full ToNumber coercion do
// it themselves; this covers the common "a number was passed" case).
func argNumber(args []value.Value, i int) float64 {
	if n, ok := arg(args, i).(value.Number); ok {
		return float64(n)
	}
	return 0
}
