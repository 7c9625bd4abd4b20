package interp

import (
	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/env"
	"github.com/vaultjs/vaultjs/internal/value"
)

// assignToTarget writes v into an existing binding or property reached by
// target, used for plain `=` assignment (after destructuring is already
// unwound to individual identifier/member targets), ++/--, and for-in/of
// loop targets that reference an existing variable rather than declaring
// a new one.
func (it *Interpreter) assignToTarget(target ast.Expression, v value.Value, scope *env.Environment) error {
	switch t := target.(type) {
	case *ast.Identifier:
		b, _, ok := scope.Lookup(t.Name)
		if !ok {
			// Sloppy-mode implicit global: declare at the outermost scope.
			root := scope
			for root.Outer != nil {
				root = root.Outer
			}
			b = root.Declare(t.Name, env.BindVar)
		}
		if b.Kind == env.BindConst && b.Initialized {
			return &thrownError{V: it.newErrorValue("TypeError", "assignment to constant variable")}
		}
		b.Value = v
		b.Initialized = true
		return nil
	case *ast.MemberExpression:
		if _, ok := t.Object.(*ast.SuperExpression); ok {
			return it.assignSuperMember(t, v, scope)
		}
		objV, err := it.evalExpression(t.Object, scope)
		if err != nil {
			return err
		}
		if pid, ok := t.Property.(*ast.PrivateIdentifier); ok {
			return it.privateSet(objV, pid, v, scope)
		}
		key, err := it.memberKey(t, scope)
		if err != nil {
			return err
		}
		ref, err := it.toObjectRef(objV)
		if err != nil {
			return err
		}
		return it.setProperty(ref, key, v)
	case *ast.ArrayPattern, *ast.ObjectPattern, *ast.AssignmentPattern:
		return it.bindDestructureAssign(t, v, scope)
	default:
		return nil
	}
}

// bindDestructureAssign is bindPattern's counterpart for plain (not
// declaration) destructuring assignment: every leaf binds via
// assignToTarget against an existing variable/property instead of
// declaring a new one.
func (it *Interpreter) bindDestructureAssign(pat ast.Expression, v value.Value, scope *env.Environment) error {
	switch p := pat.(type) {
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
				return it.bindDestructureAssign(rest.Argument, it.newArrayFromSlice(tail), scope)
			}
			var ev value.Value = value.Undefined{}
			if i < len(items) && items[i] != nil {
				ev = items[i]
			}
			if err := it.destructureDefaulted(el, ev, scope); err != nil {
				return err
			}
		}
		return nil
	case *ast.ObjectPattern:
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
			if err := it.destructureDefaulted(prop.Value, pv, scope); err != nil {
				return err
			}
		}
		if p.Rest != nil {
			if err := it.bindDestructureAssign(p.Rest.Argument, it.restObject(v, used), scope); err != nil {
				return err
			}
		}
		return nil
	case *ast.AssignmentPattern:
		if _, isUndef := v.(value.Undefined); isUndef {
			dv, err := it.evalExpression(p.Right, scope)
			if err != nil {
				return err
			}
			v = dv
		}
		return it.assignToTarget(p.Left, v, scope)
	default:
		return it.assignToTarget(pat, v, scope)
	}
}

func (it *Interpreter) destructureDefaulted(el ast.Expression, v value.Value, scope *env.Environment) error {
	if ap, ok := el.(*ast.AssignmentPattern); ok {
		if _, isUndef := v.(value.Undefined); isUndef {
			dv, err := it.evalExpression(ap.Right, scope)
			if err != nil {
				return err
			}
			return it.assignToTarget(ap.Left, dv, scope)
		}
		return it.assignToTarget(ap.Left, v, scope)
	}
	return it.assignToTarget(el, v, scope)
}

func (it *Interpreter) evalAssignment(e *ast.AssignmentExpression, scope *env.Environment) (value.Value, error) {
	if e.Operator == "=" {
		v, err := it.evalExpression(e.Right, scope)
		if err != nil {
			return nil, err
		}
		if id, ok := e.Left.(*ast.Identifier); ok {
			it.nameAnonymous(v, id.Name)
		}
		if err := it.assignToTarget(e.Left, v, scope); err != nil {
			return nil, err
		}
		return v, nil
	}
	switch e.Operator {
	case "&&=", "||=", "??=":
		cur, err := it.evalExpression(e.Left, scope)
		if err != nil {
			return nil, err
		}
		switch e.Operator {
		case "&&=":
			if !value.ToBoolean(cur) {
				return cur, nil
			}
		case "||=":
			if value.ToBoolean(cur) {
				return cur, nil
			}
		case "??=":
			if !value.IsNullish(cur) {
				return cur, nil
			}
		}
		v, err := it.evalExpression(e.Right, scope)
		if err != nil {
			return nil, err
		}
		if err := it.assignToTarget(e.Left, v, scope); err != nil {
			return nil, err
		}
		return v, nil
	default:
		cur, err := it.evalExpression(e.Left, scope)
		if err != nil {
			return nil, err
		}
		r, err := it.evalExpression(e.Right, scope)
		if err != nil {
			return nil, err
		}
		op := e.Operator[:len(e.Operator)-1] // strip trailing '='
		res, err := it.binaryOp(op, cur, r)
		if err != nil {
			return nil, err
		}
		if err := it.assignToTarget(e.Left, res, scope); err != nil {
			return nil, err
		}
		return res, nil
	}
}
