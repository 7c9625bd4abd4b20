package vaultjs

import (
	"fmt"
	"reflect"

	"github.com/vaultjs/vaultjs/internal/bridge"
	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/value"
)

// hostToGuest converts an arbitrary host Go value into a guest-visible
// value.Value. Nil and primitive kinds convert directly to guest
// primitives; Go slices and maps become genuine mutable heap objects
// (ArrayObject/PlainObject) rather than bridge.WrapHost's read-only proxy,
// so guest code can .push()/assign into a host-supplied collection the
// same way it would any other guest value. A struct becomes a mutable
// PlainObject copy of its exported fields (guest writes change the copy,
// not the host struct), and a func becomes a callable native function
// (hostFuncToGuest). Every other kind (channels, ...) goes through
// bridge.WrapHost's read-only BoundHostObject.
func hostToGuest(it *interp.Interpreter, v any, policy bridge.SecurityPolicy) (value.Value, error) {
	if v == nil {
		return value.Null{}, nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return value.Null{}, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Bool:
		return value.Bool(rv.Bool()), nil
	case reflect.String:
		return value.String(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Number(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return value.Number(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return value.Number(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		elems := make([]value.Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := hostToGuest(it, rv.Index(i).Interface(), policy)
			if err != nil {
				return nil, err
			}
			elems[i] = ev
		}
		arr := &value.ArrayObject{Proto: it.ArrayProto, Elements: elems, Length: len(elems)}
		return it.Heap.Alloc(arr), nil
	case reflect.Map:
		obj := value.NewPlainObject(it.ObjectProto, true)
		ref := it.Heap.Alloc(obj)
		for _, mk := range rv.MapKeys() {
			ev, err := hostToGuest(it, rv.MapIndex(mk).Interface(), policy)
			if err != nil {
				return nil, err
			}
			key := value.StringKey(fmt.Sprint(mk.Interface()))
			obj.Keys = append(obj.Keys, key)
			obj.Props[key] = &value.PropertyDescriptor{Value: ev, Writable: true, Enumerable: true, Configurable: true}
		}
		return ref, nil
	case reflect.Struct:
		obj := value.NewPlainObject(it.ObjectProto, true)
		ref := it.Heap.Alloc(obj)
		rt := rv.Type()
		for i := 0; i < rv.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			ev, err := hostToGuest(it, rv.Field(i).Interface(), policy)
			if err != nil {
				return nil, err
			}
			key := value.StringKey(f.Name)
			obj.Keys = append(obj.Keys, key)
			obj.Props[key] = &value.PropertyDescriptor{Value: ev, Writable: true, Enumerable: true, Configurable: true}
		}
		return ref, nil
	case reflect.Func:
		return hostFuncToGuest(it, rv), nil
	default:
		proto := it.ObjectProto
		return bridge.WrapHost(v, it.Heap, proto, policy), nil
	}
}

// writeback describes one host pointer whose pointed-to slice/map should
// be refreshed from the guest's final heap state once a run completes —
// the counterpart to hostToGuest's slice/map unwrap. ref is the exact
// value.Ref installed as the global, which is a stable index into the
// engine's heap: a guest .push()/assignment mutates the pointee of that
// same heap slot in place, so re-reading ref after the run sees the
// mutated state with no extra bookkeeping inside internal/interp.
type writeback struct {
	ref value.Ref
	ptr reflect.Value // the original pointer, e.g. reflect.ValueOf(hostPtr)
}

// planWriteback returns a non-nil *writeback when v is a pointer to a
// slice or map, the two shapes hostToGuest gives a mutable guest
// representation to.
func planWriteback(v any, ref value.Value) *writeback {
	r, ok := ref.(value.Ref)
	if !ok {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil
	}
	switch rv.Elem().Kind() {
	case reflect.Slice, reflect.Map:
		return &writeback{ref: r, ptr: rv}
	default:
		return nil
	}
}

// apply reads the current heap state at w.ref and writes it back into the
// host slice/map w.ptr points to, converting each element with
// guestToReflect.
func (w *writeback) apply(it *interp.Interpreter) error {
	elemType := w.ptr.Elem().Type()
	switch elemType.Kind() {
	case reflect.Slice:
		arr, ok := it.Heap.Get(w.ref).(*value.ArrayObject)
		if !ok {
			return nil
		}
		out := reflect.MakeSlice(elemType, len(arr.Elements), len(arr.Elements))
		for i, ev := range arr.Elements {
			if ev == nil {
				continue
			}
			hv, err := guestToReflect(it, ev, elemType.Elem())
			if err != nil {
				return err
			}
			out.Index(i).Set(hv)
		}
		w.ptr.Elem().Set(out)
	case reflect.Map:
		obj, ok := it.Heap.Get(w.ref).(*value.PlainObject)
		if !ok {
			return nil
		}
		out := reflect.MakeMapWithSize(elemType, len(obj.Keys))
		for _, k := range obj.Keys {
			if k.IsSym {
				continue
			}
			pd := obj.Props[k]
			if pd == nil || pd.IsAccessor() {
				continue
			}
			hv, err := guestToReflect(it, pd.Value, elemType.Elem())
			if err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(k.Str), hv)
		}
		w.ptr.Elem().Set(out)
	}
	return nil
}

// guestToHost converts a guest value.Value into a plain Go any: numbers
// to float64, objects to map[string]any, arrays to []any, matching the
// shape a host naturally destructures with a type switch rather than
// round-tripping through JSON.
func guestToHost(it *interp.Interpreter, v value.Value) (any, error) {
	switch x := v.(type) {
	case nil, value.Undefined:
		return nil, nil
	case value.Null:
		return nil, nil
	case value.Bool:
		return bool(x), nil
	case value.Number:
		return float64(x), nil
	case value.BigInt:
		return x.V, nil
	case value.String:
		return string(x), nil
	case *value.Symbol:
		return x.String(), nil
	case value.Ref:
		switch o := it.Heap.Get(x).(type) {
		case *value.ArrayObject:
			out := make([]any, len(o.Elements))
			for i, ev := range o.Elements {
				if ev == nil {
					continue
				}
				hv, err := guestToHost(it, ev)
				if err != nil {
					return nil, err
				}
				out[i] = hv
			}
			return out, nil
		case *value.PlainObject:
			out := make(map[string]any, len(o.Keys))
			for _, k := range o.Keys {
				if k.IsSym {
					continue
				}
				pd := o.Props[k]
				if pd == nil || pd.IsAccessor() {
					continue
				}
				hv, err := guestToHost(it, pd.Value)
				if err != nil {
					return nil, err
				}
				out[k.Str] = hv
			}
			return out, nil
		case *value.FunctionObject:
			return func(args ...any) (any, error) {
				gargs := make([]value.Value, len(args))
				for i, a := range args {
					gv, err := hostToGuest(it, a, bridge.DefaultPolicy())
					if err != nil {
						return nil, err
					}
					gargs[i] = gv
				}
				res, err := it.CallValue(x, value.Undefined{}, gargs)
				if err != nil {
					return nil, err
				}
				return guestToHost(it, res)
			}, nil
		case *value.BoundHostObject:
			return o.Host, nil
		default:
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("vaultjs: unrecognized guest value %T", v)
	}
}

// guestToReflect converts a guest value.Value into a reflect.Value of the
// given target type, used both for FFI argument binding and writeback.
func guestToReflect(it *interp.Interpreter, v value.Value, target reflect.Type) (reflect.Value, error) {
	if target.Kind() == reflect.Interface {
		hv, err := guestToHost(it, v)
		if err != nil {
			return reflect.Value{}, err
		}
		if hv == nil {
			return reflect.Zero(target), nil
		}
		return reflect.ValueOf(hv), nil
	}
	switch target.Kind() {
	case reflect.String:
		return reflect.ValueOf(v.String()).Convert(target), nil
	case reflect.Bool:
		return reflect.ValueOf(value.ToBoolean(v)).Convert(target), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := v.(value.Number)
		if !ok {
			return reflect.Value{}, fmt.Errorf("vaultjs: expected number, got %s", v.Kind())
		}
		return reflect.ValueOf(int64(n)).Convert(target), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := v.(value.Number)
		if !ok {
			return reflect.Value{}, fmt.Errorf("vaultjs: expected number, got %s", v.Kind())
		}
		return reflect.ValueOf(uint64(n)).Convert(target), nil
	case reflect.Float32, reflect.Float64:
		n, ok := v.(value.Number)
		if !ok {
			return reflect.Value{}, fmt.Errorf("vaultjs: expected number, got %s", v.Kind())
		}
		return reflect.ValueOf(float64(n)).Convert(target), nil
	case reflect.Slice:
		ref, ok := v.(value.Ref)
		if !ok {
			return reflect.Value{}, fmt.Errorf("vaultjs: expected array, got %s", v.Kind())
		}
		arr, ok := it.Heap.Get(ref).(*value.ArrayObject)
		if !ok {
			return reflect.Value{}, fmt.Errorf("vaultjs: expected array")
		}
		out := reflect.MakeSlice(target, len(arr.Elements), len(arr.Elements))
		for i, ev := range arr.Elements {
			if ev == nil {
				continue
			}
			hv, err := guestToReflect(it, ev, target.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(hv)
		}
		return out, nil
	default:
		hv, err := guestToHost(it, v)
		if err != nil {
			return reflect.Value{}, err
		}
		if hv == nil {
			return reflect.Zero(target), nil
		}
		rv := reflect.ValueOf(hv)
		if rv.Type().ConvertibleTo(target) {
			return rv.Convert(target), nil
		}
		return reflect.Value{}, fmt.Errorf("vaultjs: cannot convert guest value to %s", target)
	}
}

// hostFuncToGuest wraps a Go function value as a guest-callable native
// function, converting guest arguments to the function's declared
// parameter types and its Go return value(s) back to guest values. A
// trailing error return is turned into a catchable guest exception via
// it.Throw rather than an opaque host failure, matching the teacher's
// RegisterFunction FFI convention (an error return becomes a DWScript
// EHost exception the guest can catch).
func hostFuncToGuest(it *interp.Interpreter, fn reflect.Value) value.Value {
	ft := fn.Type()
	return it.NativeFunction("", func(na value.NativeArgs) (value.Value, error) {
		return callHostFunc(it, fn, ft, na.Args)
	})
}

func callHostFunc(it *interp.Interpreter, fn reflect.Value, ft reflect.Type, args []value.Value) (value.Value, error) {
	in := make([]reflect.Value, ft.NumIn())
	for i := 0; i < ft.NumIn(); i++ {
		var gv value.Value = value.Undefined{}
		if i < len(args) {
			gv = args[i]
		}
		rv, err := guestToReflect(it, gv, ft.In(i))
		if err != nil {
			return nil, it.Throw(it.NewError("TypeError", err.Error()))
		}
		in[i] = rv
	}
	out := fn.Call(in)
	return hostResultsToGuest(it, out)
}

// hostResultsToGuest converts a registered Go function's return values
// per basic_ffi_test.go's conventions: no results -> undefined; a
// trailing error result that is non-nil -> a catchable guest throw; a
// single non-error result -> that value; otherwise the first result.
func hostResultsToGuest(it *interp.Interpreter, out []reflect.Value) (value.Value, error) {
	if len(out) == 0 {
		return value.Undefined{}, nil
	}
	last := out[len(out)-1]
	if last.Type().Implements(reflect.TypeOf((*error)(nil)).Elem()) {
		if !last.IsNil() {
			err := last.Interface().(error)
			return nil, it.Throw(it.NewError("Error", err.Error()))
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return value.Undefined{}, nil
	}
	return hostToGuest(it, out[0].Interface(), bridge.DefaultPolicy())
}
