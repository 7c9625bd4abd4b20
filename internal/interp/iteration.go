package interp

import (
	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/env"
	"github.com/vaultjs/vaultjs/internal/value"
)

// iterateToSlice drains an iterable value (array, string, or a
// guest/host object implementing the Symbol.iterator protocol) into a Go
// slice, used for array destructuring, spread, and for-of. hint, if
// positive, is the minimum number of slots a caller plans to default-fill
// and is purely advisory (no effect on correctness).
func (it *Interpreter) iterateToSlice(v value.Value, hint int) ([]value.Value, error) {
	switch x := v.(type) {
	case value.String:
		runes := []rune(string(x))
		out := make([]value.Value, len(runes))
		for i, r := range runes {
			out[i] = value.String(string(r))
		}
		return out, nil
	case value.Ref:
		if arr, ok := it.Heap.Get(x).(*value.ArrayObject); ok {
			out := make([]value.Value, arr.Length)
			for i := 0; i < arr.Length; i++ {
				if i < len(arr.Elements) && arr.Elements[i] != nil {
					out[i] = arr.Elements[i]
				} else if sv, ok := arr.Sparse[i]; ok {
					out[i] = sv
				} else {
					out[i] = value.Undefined{}
				}
			}
			return out, nil
		}
		return it.drainIterator(x)
	default:
		return nil, &thrownError{V: it.newErrorValue("TypeError", "value is not iterable")}
	}
}

// sharedIteratorSymbol is the well-known Symbol.iterator key objects use to
// expose a custom iterator via a zero-argument method returning an
// iterator object ({next(){...}}).
var sharedIteratorSymbol = &value.Symbol{Description: "Symbol.iterator", GlobalKey: "Symbol.iterator"}

func iteratorKey() value.PropertyKey { return value.SymbolKey(sharedIteratorSymbol) }

func (it *Interpreter) drainIterator(r value.Ref) ([]value.Value, error) {
	iterFnVal, err := it.getProperty(r, iteratorKey())
	if err != nil {
		return nil, err
	}
	iterFnRef, ok := iterFnVal.(value.Ref)
	if !ok {
		return nil, &thrownError{V: it.newErrorValue("TypeError", "value is not iterable")}
	}
	iterFn, ok := it.Heap.Get(iterFnRef).(*value.FunctionObject)
	if !ok {
		return nil, &thrownError{V: it.newErrorValue("TypeError", "value is not iterable")}
	}
	iterObj, err := it.callFunction(iterFnRef, iterFn, value.Ref(r), nil, ast0())
	if err != nil {
		return nil, err
	}
	iterRef, ok := iterObj.(value.Ref)
	if !ok {
		return nil, &thrownError{V: it.newErrorValue("TypeError", "iterator result is not an object")}
	}
	var out []value.Value
	for {
		nextVal, err := it.getProperty(iterRef, value.StringKey("next"))
		if err != nil {
			return nil, err
		}
		nextRef, ok := nextVal.(value.Ref)
		if !ok {
			return nil, &thrownError{V: it.newErrorValue("TypeError", "iterator has no next method")}
		}
		nextFn, _ := it.Heap.Get(nextRef).(*value.FunctionObject)
		res, err := it.callFunction(nextRef, nextFn, value.Ref(iterRef), nil, ast0())
		if err != nil {
			return nil, err
		}
		resRef, ok := res.(value.Ref)
		if !ok {
			return nil, &thrownError{V: it.newErrorValue("TypeError", "iterator result is not an object")}
		}
		doneVal, err := it.getProperty(resRef, value.StringKey("done"))
		if err != nil {
			return nil, err
		}
		if value.ToBoolean(doneVal) {
			break
		}
		vv, err := it.getProperty(resRef, value.StringKey("value"))
		if err != nil {
			return nil, err
		}
		out = append(out, vv)
		if it.gov != nil {
			if err := it.gov.TickLoop(); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (it *Interpreter) newArrayFromSlice(vals []value.Value) value.Value {
	arr := value.NewArrayObject(it.ArrayProto)
	arr.Elements = append(arr.Elements, vals...)
	arr.Length = len(vals)
	return it.Heap.Alloc(arr)
}

func (it *Interpreter) evalForOf(n *ast.ForOfStatement, scope *env.Environment, label string) Completion {
	rightV, err := it.evalExpression(n.Right, scope)
	if err != nil {
		return it.throwErr(err)
	}
	items, err := it.iterateToSlice(rightV, 0)
	if err != nil {
		return it.throwErr(err)
	}
	for _, item := range items {
		iterScope := env.New(scope, env.KindBlock)
		if err := it.bindForTarget(n.Left, item, iterScope); err != nil {
			return it.throwErr(err)
		}
		if it.gov != nil {
			if err := it.gov.TickLoop(); err != nil {
				return it.throwErr(err)
			}
		}
		c := it.evalStatement(n.Body, iterScope)
		if sig, done := handleLoopCompletion(c, label); done {
			return sig
		}
	}
	return emptyNormal
}

func (it *Interpreter) evalForIn(n *ast.ForInStatement, scope *env.Environment, label string) Completion {
	rightV, err := it.evalExpression(n.Right, scope)
	if err != nil {
		return it.throwErr(err)
	}
	r, ok := rightV.(value.Ref)
	if !ok {
		return emptyNormal
	}
	keys := it.enumerableKeys(r)
	for _, k := range keys {
		iterScope := env.New(scope, env.KindBlock)
		if err := it.bindForTarget(n.Left, value.String(k), iterScope); err != nil {
			return it.throwErr(err)
		}
		if it.gov != nil {
			if err := it.gov.TickLoop(); err != nil {
				return it.throwErr(err)
			}
		}
		c := it.evalStatement(n.Body, iterScope)
		if sig, done := handleLoopCompletion(c, label); done {
			return sig
		}
	}
	return emptyNormal
}

// enumerableKeys collects own-enumerable string keys walking up the
// prototype chain, de-duplicating by name in first-seen (most-derived)
// order, matching for-in's enumeration semantics.
func (it *Interpreter) enumerableKeys(r value.Ref) []string {
	seen := map[string]bool{}
	var out []string
	cur := r
	for {
		switch o := it.Heap.Get(cur).(type) {
		case *value.ArrayObject:
			for i := 0; i < o.Length; i++ {
				k := value.Number(i).String()
				if !seen[k] {
					seen[k] = true
					out = append(out, k)
				}
			}
			if o.Proto == (value.Ref{}) {
				return out
			}
			cur = o.Proto
		case *value.PlainObject:
			for _, k := range o.Keys {
				if k.IsSym {
					continue
				}
				d := o.Props[k]
				if d == nil || !d.Enumerable || seen[k.Str] {
					continue
				}
				seen[k.Str] = true
				out = append(out, k.Str)
			}
			if !o.HasProto {
				return out
			}
			cur = o.Proto
		default:
			return out
		}
	}
}

func (it *Interpreter) bindForTarget(left ast.Node, v value.Value, scope *env.Environment) error {
	if vd, ok := left.(*ast.VarDeclaration); ok {
		decl := vd.Declarations[0]
		bindPatternNames(decl.ID, func(name string) { scope.Declare(name, declKindOf(vd.Kind)) })
		return it.bindPattern(decl.ID, v, scope, vd.Kind)
	}
	if pat, ok := left.(ast.Expression); ok {
		return it.assignToTarget(pat, v, scope)
	}
	return nil
}

func declKindOf(k string) env.BindingKind {
	switch k {
	case "const":
		return env.BindConst
	case "var":
		return env.BindVar
	default:
		return env.BindLet
	}
}
