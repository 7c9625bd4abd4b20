package preset

import (
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/value"
)

// JSON returns the bundle installing JSON.parse/JSON.stringify, built on
// gjson/sjson rather than a hand-rolled walker (per this project's
// "avoid a bespoke JSON codec when the pack already carries one" rule):
// gjson drives parse (its Result tree maps directly onto guest
// values), sjson drives stringify (building the text bottom-up by
// setting each path rather than assembling a Go any-tree first).
func JSON() OptionBundle {
	return OptionBundle{
		Name:           "json",
		FeatureControl: Unrestricted(),
		Globals: map[string]GlobalFactory{
			"JSON": jsonGlobal,
		},
	}
}

func jsonGlobal(it *interp.Interpreter) value.Value {
	obj, ref := newObject(it)
	setMethod(it, obj, "parse", func(a value.NativeArgs) (value.Value, error) {
		text := argString(a.Args, 0)
		if !gjson.Valid(text) {
			return nil, it.Throw(it.NewError("SyntaxError", "invalid JSON input"))
		}
		return gjsonToValue(it, gjson.Parse(text)), nil
	})
	setMethod(it, obj, "stringify", func(a value.NativeArgs) (value.Value, error) {
		v := arg(a.Args, 0)
		text, err := valueToJSON(it, v)
		if err != nil {
			return nil, it.Throw(it.NewError("TypeError", err.Error()))
		}
		return value.String(text), nil
	})
	return ref
}

// jsonParseBytes parses raw bytes the same way JSON.parse does, used by
// the Fetch addon's Response.json() so it shares gjson-backed parsing
// rather than re-decoding through a second path.
func jsonParseBytes(it *interp.Interpreter, body []byte) (value.Value, error) {
	if !gjson.ValidBytes(body) {
		return nil, it.Throw(it.NewError("SyntaxError", "invalid JSON input"))
	}
	return gjsonToValue(it, gjson.ParseBytes(body)), nil
}

func gjsonToValue(it *interp.Interpreter, r gjson.Result) value.Value {
	switch r.Type {
	case gjson.Null:
		return value.Null{}
	case gjson.False:
		return value.Bool(false)
	case gjson.True:
		return value.Bool(true)
	case gjson.Number:
		return value.Number(r.Num)
	case gjson.String:
		return value.String(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			var elems []value.Value
			r.ForEach(func(_, v gjson.Result) bool {
				elems = append(elems, gjsonToValue(it, v))
				return true
			})
			arr := &value.ArrayObject{Proto: it.ArrayProto, Elements: elems, Length: len(elems)}
			return it.Heap.Alloc(arr)
		}
		obj, ref := newObject(it)
		r.ForEach(func(k, v gjson.Result) bool {
			setValue(obj, k.Str, gjsonToValue(it, v), true)
			return true
		})
		return ref
	default:
		return value.Undefined{}
	}
}

// valueToJSON serializes v by building the JSON text incrementally with
// sjson.Set, one path per property/element, starting from an empty
// document. Functions and undefined values are omitted the way
// JSON.stringify drops them from object properties and renders them as
// null inside arrays.
func valueToJSON(it *interp.Interpreter, v value.Value) (string, error) {
	return valueToJSONAt(it, v)
}

func valueToJSONAt(it *interp.Interpreter, v value.Value) (string, error) {
	switch x := v.(type) {
	case value.Undefined:
		return "null", nil
	case value.Null:
		return "null", nil
	case value.Bool:
		return strconv.FormatBool(bool(x)), nil
	case value.Number:
		return strconv.FormatFloat(float64(x), 'g', -1, 64), nil
	case value.String:
		return strconv.Quote(string(x)), nil
	case value.Ref:
		obj := it.Heap.Get(x)
		switch o := obj.(type) {
		case *value.ArrayObject:
			result := "[]"
			var err error
			for i, el := range o.Elements {
				if el == nil {
					el = value.Null{}
				}
				if r, isRef := el.(value.Ref); isRef {
					if _, isFn := it.Heap.Get(r).(*value.FunctionObject); isFn {
						el = value.Null{}
					}
				}
				if _, isUndef := el.(value.Undefined); isUndef {
					el = value.Null{}
				}
				result, err = setJSONPath(result, strconv.Itoa(i), el, it)
				if err != nil {
					return "", err
				}
			}
			return result, nil
		case *value.PlainObject:
			result := "{}"
			var err error
			for _, k := range o.Keys {
				if k.IsSym {
					continue
				}
				pd, ok := o.Props[k]
				if !ok || pd.IsAccessor() {
					continue
				}
				if _, isUndef := pd.Value.(value.Undefined); isUndef {
					continue // undefined properties are omitted, like functions
				}
				if _, isFn := pd.Value.(value.Ref); isFn {
					if fo, ok := it.Heap.Get(pd.Value.(value.Ref)).(*value.FunctionObject); ok {
						_ = fo
						continue // functions are omitted from JSON.stringify output
					}
				}
				result, err = setJSONPath(result, k.Str, pd.Value, it)
				if err != nil {
					return "", err
				}
			}
			return result, nil
		case *value.FunctionObject:
			return "", nil
		default:
			return "null", nil
		}
	default:
		return "null", nil
	}
}

// setJSONPath sets path within doc to val, encoding val as raw JSON
// first so sjson splices a nested structure rather than a quoted string.
func setJSONPath(doc, path string, val value.Value, it *interp.Interpreter) (string, error) {
	raw, err := valueToJSONAt(it, val)
	if err != nil {
		return "", err
	}
	if raw == "" {
		return doc, nil // value.Ref to a function: omit the property entirely
	}
	return sjson.SetRaw(doc, path, raw)
}
