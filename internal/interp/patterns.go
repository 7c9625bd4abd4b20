package interp

import (
	"fmt"

	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/env"
	"github.com/vaultjs/vaultjs/internal/value"
)

// bindPattern binds v against pat in scope, declaring/initializing
// bindings of the given declaration kind ("var", "let", "const", "param").
// Used by variable declarations, catch clauses, and function parameters.
func (it *Interpreter) bindPattern(pat ast.Expression, v value.Value, scope *env.Environment, kind string) error {
	switch p := pat.(type) {
	case *ast.Identifier:
		return it.initBinding(p.Name, v, scope, kind)
	case *ast.ArrayPattern:
		items, err := it.iterateToSlice(v, len(p.Elements))
		if err != nil {
			return err
		}
		for i, el := range p.Elements {
			if el == nil {
				continue
			}
			if rest, ok := el.(*ast.RestElement); ok {
				var tail []value.Value
				if i < len(items) {
					tail = items[i:]
				}
				arr := it.newArrayFromSlice(tail)
				return it.bindPattern(rest.Argument, arr, scope, kind)
			}
			var ev value.Value = value.Undefined{}
			if i < len(items) && items[i] != nil {
				ev = items[i]
			}
			if err := it.bindDefaulted(el, ev, scope, kind); err != nil {
				return err
			}
		}
		return nil
	case *ast.ObjectPattern:
		if value.IsNullish(v) {
			return &thrownError{V: it.newErrorValue("TypeError", "cannot destructure null or undefined")}
		}
		used := map[string]bool{}
		for _, prop := range p.Properties {
			key, err := it.patternKey(prop.Key, prop.Computed, scope)
			if err != nil {
				return err
			}
			used[key.String()] = true
			pv, err := it.getPropertyValue(v, key)
			if err != nil {
				return err
			}
			if err := it.bindDefaulted(prop.Value, pv, scope, kind); err != nil {
				return err
			}
		}
		if p.Rest != nil {
			rest := it.restObject(v, used)
			if err := it.bindPattern(p.Rest.Argument, rest, scope, kind); err != nil {
				return err
			}
		}
		return nil
	case *ast.AssignmentPattern:
		if value.IsNullish(v) {
			if _, ok := v.(value.Null); !ok {
				dv, err := it.evalExpression(p.Right, scope)
				if err != nil {
					return err
				}
				v = dv
			}
		}
		return it.bindPattern(p.Left, v, scope, kind)
	default:
		return fmt.Errorf("unsupported binding pattern %T", pat)
	}
}

// bindDefaulted handles an AssignmentPattern wrapper inline so an
// undefined positional/property value picks up its default.
func (it *Interpreter) bindDefaulted(el ast.Expression, v value.Value, scope *env.Environment, kind string) error {
	if ap, ok := el.(*ast.AssignmentPattern); ok {
		if _, isUndef := v.(value.Undefined); isUndef {
			dv, err := it.evalExpression(ap.Right, scope)
			if err != nil {
				return err
			}
			if id, ok := ap.Left.(*ast.Identifier); ok {
				it.nameAnonymous(dv, id.Name)
			}
			return it.bindPattern(ap.Left, dv, scope, kind)
		}
		return it.bindPattern(ap.Left, v, scope, kind)
	}
	return it.bindPattern(el, v, scope, kind)
}

func (it *Interpreter) initBinding(name string, v value.Value, scope *env.Environment, kind string) error {
	if kind == "var" {
		target := scope.HoistTarget()
		b, _, ok := target.Lookup(name)
		if !ok {
			b = target.Declare(name, env.BindVar)
		}
		b.Value = v
		b.Initialized = true
		return nil
	}
	b, ok := scope.Bindings[name]
	if !ok {
		ek := env.BindLet
		switch kind {
		case "const":
			ek = env.BindConst
		case "param":
			ek = env.BindParam
		}
		b = scope.Declare(name, ek)
	}
	b.Initialize(v)
	return nil
}

func (it *Interpreter) patternKey(keyExpr ast.Expression, computed bool, scope *env.Environment) (value.PropertyKey, error) {
	if !computed {
		switch k := keyExpr.(type) {
		case *ast.Identifier:
			return value.StringKey(k.Name), nil
		case *ast.StringLiteral:
			return value.StringKey(k.Value), nil
		case *ast.NumericLiteral:
			return value.StringKey(value.Number(k.Value).String()), nil
		}
	}
	v, err := it.evalExpression(keyExpr, scope)
	if err != nil {
		return value.PropertyKey{}, err
	}
	return it.propKeyOf(v)
}

func (it *Interpreter) getPropertyValue(v value.Value, key value.PropertyKey) (value.Value, error) {
	switch x := v.(type) {
	case value.Ref:
		return it.getProperty(x, key)
	case value.String:
		if key.Str == "length" {
			return value.Number(len([]rune(string(x)))), nil
		}
		return value.Undefined{}, nil
	default:
		if value.IsNullish(v) {
			return nil, &thrownError{V: it.newErrorValue("TypeError", "cannot read properties of "+v.String())}
		}
		return value.Undefined{}, nil
	}
}

// restObject builds the `...rest` object for an object destructuring
// pattern: every own enumerable key of v not already consumed.
func (it *Interpreter) restObject(v value.Value, used map[string]bool) value.Value {
	obj := value.NewPlainObject(it.ObjectProto, true)
	r, ok := v.(value.Ref)
	if !ok {
		return it.Heap.Alloc(obj)
	}
	src, ok := it.Heap.Get(r).(*value.PlainObject)
	if !ok {
		return it.Heap.Alloc(obj)
	}
	for _, k := range src.Keys {
		if used[k.String()] {
			continue
		}
		d := src.Props[k]
		if d == nil || !d.Enumerable {
			continue
		}
		obj.Keys = append(obj.Keys, k)
		obj.Props[k] = &value.PropertyDescriptor{Value: d.Value, Writable: true, Enumerable: true, Configurable: true}
	}
	return it.Heap.Alloc(obj)
}
