package interp

import (
	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/env"
	"github.com/vaultjs/vaultjs/internal/value"
)

// memberKey resolves a MemberExpression's property key without touching
// its object (used by assignment targets and `delete`, which need the key
// computed only once even though the object was already evaluated).
func (it *Interpreter) memberKey(me *ast.MemberExpression, scope *env.Environment) (value.PropertyKey, error) {
	if !me.Computed {
		if id, ok := me.Property.(*ast.Identifier); ok {
			return value.StringKey(id.Name), nil
		}
		return value.PropertyKey{}, &thrownError{V: it.newErrorValue("SyntaxError", "private fields are not accessible as plain property keys")}
	}
	v, err := it.evalExpression(me.Property, scope)
	if err != nil {
		return value.PropertyKey{}, err
	}
	return it.propKeyOf(v)
}

// evalMember evaluates a MemberExpression, returning both the value and
// the object it was read from (nil if short-circuited by optional
// chaining or not applicable), so call sites needing the receiver for a
// method call (`obj.method()`) don't re-evaluate obj.Object.
func (it *Interpreter) evalMember(me *ast.MemberExpression, scope *env.Environment) (value.Value, value.Value, error) {
	if _, ok := me.Object.(*ast.SuperExpression); ok {
		return it.evalSuperMember(me, scope)
	}
	objV, err := it.evalExpression(me.Object, scope)
	if err != nil {
		return nil, nil, err
	}
	if me.Optional && value.IsNullish(objV) {
		return value.Undefined{}, nil, nil
	}
	if pid, ok := me.Property.(*ast.PrivateIdentifier); ok {
		v, err := it.privateGet(objV, pid, scope)
		return v, objV, err
	}
	key, err := it.memberKey(me, scope)
	if err != nil {
		return nil, nil, err
	}
	v, err := it.getPropertyValue(objV, key)
	if err != nil {
		return nil, nil, err
	}
	return v, objV, nil
}

// evalCallee evaluates the callee of a call expression, returning the
// function value together with the `this` value a method call binds
// (zero value value.Undefined{} for a bare function reference).
func (it *Interpreter) evalCallee(callee ast.Expression, scope *env.Environment) (value.Value, value.Value, error) {
	if me, ok := callee.(*ast.MemberExpression); ok {
		v, thisV, err := it.evalMember(me, scope)
		if err != nil {
			return nil, nil, err
		}
		if thisV == nil {
			thisV = value.Undefined{}
		}
		return v, thisV, nil
	}
	v, err := it.evalExpression(callee, scope)
	if err != nil {
		return nil, nil, err
	}
	return v, value.Undefined{}, nil
}

func (it *Interpreter) evalCall(e *ast.CallExpression, scope *env.Environment) (value.Value, error) {
	if _, ok := e.Callee.(*ast.SuperExpression); ok {
		return it.evalSuperCall(e, scope)
	}
	fnV, thisV, err := it.evalCallee(e.Callee, scope)
	if err != nil {
		return nil, err
	}
	if e.Optional && value.IsNullish(fnV) {
		return value.Undefined{}, nil
	}
	args, err := it.evalArgs(e.Arguments, scope)
	if err != nil {
		return nil, err
	}
	return it.invoke(fnV, thisV, args, e.Span())
}

// invoke is the common call entry for guest call expressions, tagged
// templates, and host-side FFI re-entry: it validates fnV is callable and
// dispatches through callFunction/class-constructor rejection.
func (it *Interpreter) invoke(fnV, thisV value.Value, args []value.Value, span ast.Span) (value.Value, error) {
	ref, ok := fnV.(value.Ref)
	if !ok {
		return nil, &thrownError{V: it.newErrorValue("TypeError", "value is not a function")}
	}
	switch obj := it.Heap.Get(ref).(type) {
	case *value.FunctionObject:
		if obj.ParentClass != nil {
			return nil, &thrownError{V: it.newErrorValue("TypeError", "class constructor cannot be invoked without 'new'")}
		}
		return it.callFunction(ref, obj, thisV, args, span)
	default:
		return nil, &thrownError{V: it.newErrorValue("TypeError", "value is not a function")}
	}
}

func (it *Interpreter) newRegExp(pattern, flags string) value.Value {
	obj := value.NewPlainObject(it.RegExpProto, true)
	obj.Class = "RegExp"
	obj.Internal = struct{ Pattern, Flags string }{pattern, flags}
	obj.Props[value.StringKey("source")] = &value.PropertyDescriptor{Value: value.String(pattern), Enumerable: false}
	obj.Props[value.StringKey("flags")] = &value.PropertyDescriptor{Value: value.String(flags), Enumerable: false}
	obj.Keys = append(obj.Keys, value.StringKey("source"), value.StringKey("flags"))
	return it.Heap.Alloc(obj)
}
