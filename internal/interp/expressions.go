package interp

import (
	"math/big"
	"strings"

	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/env"
	"github.com/vaultjs/vaultjs/internal/value"
)

// evalExpression evaluates n, returning a Go error (wrapping a thrownError
// for guest-visible throws) rather than a Completion — expressions cannot
// themselves produce break/continue/return, so the narrower signature
// keeps every call site from having to handle completion kinds it can
// never see.
func (it *Interpreter) evalExpression(n ast.Expression, scope *env.Environment) (value.Value, error) {
	if it.gov != nil {
		if err := it.gov.TickEval(); err != nil {
			return nil, err
		}
	}
	if err := it.Gate.CheckNode(n); err != nil {
		return nil, err
	}
	switch e := n.(type) {
	case *ast.NumericLiteral:
		return value.Number(e.Value), nil
	case *ast.BigIntLiteral:
		return value.BigInt{V: new(big.Int).Set(e.Value)}, nil
	case *ast.StringLiteral:
		return value.String(e.Value), nil
	case *ast.BooleanLiteral:
		return value.Bool(e.Value), nil
	case *ast.NullLiteral:
		return value.Null{}, nil
	case *ast.Identifier:
		b, _, ok := scope.Lookup(e.Name)
		if !ok {
			return nil, &thrownError{V: it.newErrorValue("ReferenceError", e.Name+" is not defined")}
		}
		if !b.Initialized {
			return nil, &thrownError{V: it.newErrorValue("ReferenceError", "cannot access '"+e.Name+"' before initialization")}
		}
		return b.Value, nil
	case *ast.ThisExpression:
		if b, _, ok := scope.Lookup("this"); ok {
			return b.Value, nil
		}
		return value.Undefined{}, nil
	case *ast.TemplateLiteral:
		return it.evalTemplate(e, scope)
	case *ast.TaggedTemplateExpression:
		return it.evalTaggedTemplate(e, scope)
	case *ast.RegexLiteral:
		return it.newRegExp(e.Pattern, e.Flags), nil
	case *ast.ArrayExpression:
		return it.evalArrayExpression(e, scope)
	case *ast.ObjectExpression:
		return it.evalObjectExpression(e, scope)
	case *ast.FunctionExpression:
		name := ""
		if e.ID != nil {
			name = e.ID.Name
		}
		fnScope := scope
		if e.ID != nil {
			fnScope = env.New(scope, env.KindBlock)
		}
		fn := it.makeFunction(name, e.Params, e.Body, e.Generator, e.Async, fnScope, value.Ref{})
		if e.ID != nil {
			b := fnScope.Declare(e.ID.Name, env.BindConst)
			b.Initialize(fn)
		}
		return fn, nil
	case *ast.ArrowFunctionExpression:
		return it.makeArrow(e.Params, e.Body, e.Async, scope), nil
	case *ast.ClassExpression:
		return it.evalClassExpression(e, scope)
	case *ast.UnaryExpression:
		if e.Operator == "delete" {
			return it.evalDelete(e.Argument, scope)
		}
		v, err := it.evalExpression(e.Argument, scope)
		if err != nil {
			return nil, err
		}
		return it.unaryOp(e.Operator, v)
	case *ast.UpdateExpression:
		return it.evalUpdate(e, scope)
	case *ast.BinaryExpression:
		l, err := it.evalExpression(e.Left, scope)
		if err != nil {
			return nil, err
		}
		r, err := it.evalExpression(e.Right, scope)
		if err != nil {
			return nil, err
		}
		return it.binaryOp(e.Operator, l, r)
	case *ast.LogicalExpression:
		return it.evalLogical(e, scope)
	case *ast.AssignmentExpression:
		return it.evalAssignment(e, scope)
	case *ast.ConditionalExpression:
		t, err := it.evalExpression(e.Test, scope)
		if err != nil {
			return nil, err
		}
		if value.ToBoolean(t) {
			return it.evalExpression(e.Consequent, scope)
		}
		return it.evalExpression(e.Alternate, scope)
	case *ast.CallExpression:
		return it.evalCall(e, scope)
	case *ast.NewExpression:
		callee, err := it.evalExpression(e.Callee, scope)
		if err != nil {
			return nil, err
		}
		args, err := it.evalArgs(e.Arguments, scope)
		if err != nil {
			return nil, err
		}
		return it.construct(callee, args, e.Span())
	case *ast.MemberExpression:
		v, _, err := it.evalMember(e, scope)
		return v, err
	case *ast.SequenceExpression:
		var last value.Value
		for _, ex := range e.Expressions {
			v, err := it.evalExpression(ex, scope)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil
	case *ast.YieldExpression:
		return it.evalYield(e, scope)
	case *ast.AwaitExpression:
		return it.evalAwait(e, scope)
	case *ast.ImportExpression:
		return it.evalDynamicImport(e, scope)
	case *ast.SpreadElement:
		return it.evalExpression(e.Argument, scope)
	default:
		return value.Undefined{}, nil
	}
}

func (it *Interpreter) evalArgs(args []ast.Expression, scope *env.Environment) ([]value.Value, error) {
	var out []value.Value
	for _, a := range args {
		if sp, ok := a.(*ast.SpreadElement); ok {
			v, err := it.evalExpression(sp.Argument, scope)
			if err != nil {
				return nil, err
			}
			items, err := it.iterateToSlice(v, 0)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
			continue
		}
		v, err := it.evalExpression(a, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (it *Interpreter) evalTemplate(e *ast.TemplateLiteral, scope *env.Environment) (value.Value, error) {
	var b strings.Builder
	for i, q := range e.Quasis {
		b.WriteString(q.Cooked)
		if i < len(e.Expressions) {
			v, err := it.evalExpression(e.Expressions[i], scope)
			if err != nil {
				return nil, err
			}
			s, err := it.toStringValue(v)
			if err != nil {
				return nil, err
			}
			b.WriteString(s)
		}
	}
	return value.String(b.String()), nil
}

func (it *Interpreter) evalTaggedTemplate(e *ast.TaggedTemplateExpression, scope *env.Environment) (value.Value, error) {
	tagV, thisV, err := it.evalCallee(e.Tag, scope)
	if err != nil {
		return nil, err
	}
	strs := make([]value.Value, len(e.Quasi.Quasis))
	raws := make([]value.Value, len(e.Quasi.Quasis))
	for i, q := range e.Quasi.Quasis {
		strs[i] = value.String(q.Cooked)
		raws[i] = value.String(q.Raw)
	}
	stringsArr := it.newArrayFromSlice(strs)
	if r, ok := stringsArr.(value.Ref); ok {
		rawArr := it.newArrayFromSlice(raws)
		_ = it.setProperty(r, value.StringKey("raw"), rawArr)
	}
	args := []value.Value{stringsArr}
	for _, ex := range e.Quasi.Expressions {
		v, err := it.evalExpression(ex, scope)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return it.invoke(tagV, thisV, args, e.Span())
}

func (it *Interpreter) evalArrayExpression(e *ast.ArrayExpression, scope *env.Environment) (value.Value, error) {
	arr := value.NewArrayObject(it.ArrayProto)
	for _, el := range e.Elements {
		if el == nil {
			arr.Elements = append(arr.Elements, nil)
			arr.Length++
			continue
		}
		if sp, ok := el.(*ast.SpreadElement); ok {
			v, err := it.evalExpression(sp.Argument, scope)
			if err != nil {
				return nil, err
			}
			items, err := it.iterateToSlice(v, 0)
			if err != nil {
				return nil, err
			}
			arr.Elements = append(arr.Elements, items...)
			arr.Length += len(items)
			continue
		}
		v, err := it.evalExpression(el, scope)
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, v)
		arr.Length++
	}
	return it.Heap.Alloc(arr), nil
}

func (it *Interpreter) evalObjectExpression(e *ast.ObjectExpression, scope *env.Environment) (value.Value, error) {
	obj := value.NewPlainObject(it.ObjectProto, true)
	ref := it.Heap.Alloc(obj)
	for _, p := range e.Properties {
		if p.Kind == "spread" {
			v, err := it.evalExpression(p.Value, scope)
			if err != nil {
				return nil, err
			}
			it.spreadInto(obj, v)
			continue
		}
		key, err := it.patternKey(p.Key, p.Computed, scope)
		if err != nil {
			return nil, err
		}
		if p.Kind == "get" || p.Kind == "set" {
			fnExpr := p.Value.(*ast.FunctionExpression)
			fn := it.makeFunction("", fnExpr.Params, fnExpr.Body, false, false, scope, value.Ref(ref))
			d := obj.Props[key]
			if d == nil {
				d = &value.PropertyDescriptor{Enumerable: true, Configurable: true}
				obj.Props[key] = d
				obj.Keys = append(obj.Keys, key)
			}
			if p.Kind == "get" {
				d.HasGet, d.Get = true, fn.(value.Ref)
			} else {
				d.HasSet, d.Set = true, fn.(value.Ref)
			}
			continue
		}
		var v value.Value
		if p.Method {
			fnExpr := p.Value.(*ast.FunctionExpression)
			v = it.makeFunction("", fnExpr.Params, fnExpr.Body, fnExpr.Generator, fnExpr.Async, scope, value.Ref(ref))
		} else {
			val, err := it.evalExpression(p.Value, scope)
			if err != nil {
				return nil, err
			}
			v = val
			if id, ok := p.Key.(*ast.Identifier); ok && !p.Computed {
				it.nameAnonymous(v, id.Name)
			}
		}
		if existing, ok := obj.Props[key]; ok {
			existing.Value, existing.HasGet, existing.HasSet = v, false, false
		} else {
			obj.Props[key] = &value.PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true}
			obj.Keys = append(obj.Keys, key)
		}
	}
	sortOwnKeys(obj)
	return ref, nil
}

func (it *Interpreter) spreadInto(obj *value.PlainObject, v value.Value) {
	r, ok := v.(value.Ref)
	if !ok {
		return
	}
	switch src := it.Heap.Get(r).(type) {
	case *value.PlainObject:
		for _, k := range src.Keys {
			d := src.Props[k]
			if d == nil || !d.Enumerable {
				continue
			}
			val := d.Value
			if d.IsAccessor() {
				gv, err := it.getPlain(src, k, value.Ref(r))
				if err != nil {
					continue
				}
				val = gv
			}
			if existing, ok := obj.Props[k]; ok {
				existing.Value, existing.HasGet, existing.HasSet = val, false, false
			} else {
				obj.Props[k] = &value.PropertyDescriptor{Value: val, Writable: true, Enumerable: true, Configurable: true}
				obj.Keys = append(obj.Keys, k)
			}
		}
	case *value.ArrayObject:
		for i := 0; i < src.Length; i++ {
			k := value.StringKey(value.Number(i).String())
			var val value.Value = value.Undefined{}
			if i < len(src.Elements) && src.Elements[i] != nil {
				val = src.Elements[i]
			}
			obj.Props[k] = &value.PropertyDescriptor{Value: val, Writable: true, Enumerable: true, Configurable: true}
			obj.Keys = append(obj.Keys, k)
		}
	}
}

func (it *Interpreter) evalLogical(e *ast.LogicalExpression, scope *env.Environment) (value.Value, error) {
	l, err := it.evalExpression(e.Left, scope)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case "&&":
		if !value.ToBoolean(l) {
			return l, nil
		}
		return it.evalExpression(e.Right, scope)
	case "||":
		if value.ToBoolean(l) {
			return l, nil
		}
		return it.evalExpression(e.Right, scope)
	case "??":
		if !value.IsNullish(l) {
			return l, nil
		}
		return it.evalExpression(e.Right, scope)
	}
	return nil, &thrownError{V: it.newErrorValue("TypeError", "unknown logical operator "+e.Operator)}
}

func (it *Interpreter) evalDelete(target ast.Expression, scope *env.Environment) (value.Value, error) {
	me, ok := target.(*ast.MemberExpression)
	if !ok {
		return value.Bool(true), nil
	}
	objV, err := it.evalExpression(me.Object, scope)
	if err != nil {
		return nil, err
	}
	r, ok := objV.(value.Ref)
	if !ok {
		return value.Bool(true), nil
	}
	key, err := it.memberKey(me, scope)
	if err != nil {
		return nil, err
	}
	if po, ok := it.Heap.Get(r).(*value.PlainObject); ok {
		delete(po.Props, key)
		for i, k := range po.Keys {
			if k == key {
				po.Keys = append(po.Keys[:i], po.Keys[i+1:]...)
				break
			}
		}
	}
	return value.Bool(true), nil
}

func (it *Interpreter) evalUpdate(e *ast.UpdateExpression, scope *env.Environment) (value.Value, error) {
	old, err := it.evalExpression(e.Argument, scope)
	if err != nil {
		return nil, err
	}
	var next value.Value
	if b, ok := old.(value.BigInt); ok {
		delta := big.NewInt(1)
		if e.Operator == "--" {
			delta = big.NewInt(-1)
		}
		next = value.BigInt{V: new(big.Int).Add(b.V, delta)}
	} else {
		f, err := it.toNumber(old)
		if err != nil {
			return nil, err
		}
		old = value.Number(f)
		if e.Operator == "++" {
			f++
		} else {
			f--
		}
		next = value.Number(f)
	}
	if err := it.assignToTarget(e.Argument, next, scope); err != nil {
		return nil, err
	}
	if e.Prefix {
		return next, nil
	}
	return old, nil
}
