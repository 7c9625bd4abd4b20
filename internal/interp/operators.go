package interp

import (
	"math"
	"math/big"

	"github.com/vaultjs/vaultjs/internal/value"
)

// looseEquals implements the `==` abstract equality comparison.
func (it *Interpreter) looseEquals(a, b value.Value) (bool, error) {
	if a.Kind() == b.Kind() {
		return value.SameValueZero(a, b), nil
	}
	if value.IsNullish(a) && value.IsNullish(b) {
		return true, nil
	}
	if value.IsNullish(a) || value.IsNullish(b) {
		return false, nil
	}
	an, aIsNum := a.(value.Number)
	bn, bIsNum := b.(value.Number)
	as, aIsStr := a.(value.String)
	bs, bIsStr := b.(value.String)
	switch {
	case aIsNum && bIsStr:
		f, err := it.toNumber(bs)
		if err != nil {
			return false, err
		}
		return float64(an) == f, nil
	case aIsStr && bIsNum:
		f, err := it.toNumber(as)
		if err != nil {
			return false, err
		}
		return f == float64(bn), nil
	}
	if ab, ok := a.(value.Bool); ok {
		f, _ := it.toNumber(ab)
		return it.looseEquals(value.Number(f), b)
	}
	if bb, ok := b.(value.Bool); ok {
		f, _ := it.toNumber(bb)
		return it.looseEquals(a, value.Number(f))
	}
	if ar, ok := a.(value.Ref); ok && !bIsRef(b) {
		prim, err := it.toPrimitive(ar, "default")
		if err != nil {
			return false, err
		}
		return it.looseEquals(prim, b)
	}
	if br, ok := b.(value.Ref); ok && !bIsRef(a) {
		prim, err := it.toPrimitive(br, "default")
		if err != nil {
			return false, err
		}
		return it.looseEquals(a, prim)
	}
	return false, nil
}

func bIsRef(v value.Value) bool { _, ok := v.(value.Ref); return ok }

// binaryOp evaluates a non-logical binary operator over already-evaluated
// operands.
func (it *Interpreter) binaryOp(op string, l, r value.Value) (value.Value, error) {
	switch op {
	case "==":
		b, err := it.looseEquals(l, r)
		return value.Bool(b), err
	case "!=":
		b, err := it.looseEquals(l, r)
		return value.Bool(!b), err
	case "===":
		return value.Bool(value.SameValueZero(l, r) && l.Kind() == r.Kind()), nil
	case "!==":
		return value.Bool(!(value.SameValueZero(l, r) && l.Kind() == r.Kind())), nil
	case "+":
		return it.addOp(l, r)
	case "-", "*", "/", "%", "**":
		return it.arithOp(op, l, r)
	case "<", ">", "<=", ">=":
		return it.relationalOp(op, l, r)
	case "&", "|", "^", "<<", ">>", ">>>":
		return it.bitwiseOp(op, l, r)
	case "in":
		ref, ok := r.(value.Ref)
		if !ok {
			return nil, &thrownError{V: it.newErrorValue("TypeError", "cannot use 'in' operator on a non-object")}
		}
		key, err := it.propKeyOf(l)
		if err != nil {
			return nil, err
		}
		return value.Bool(it.hasProperty(ref, key)), nil
	case "instanceof":
		return it.instanceOf(l, r)
	}
	return nil, &thrownError{V: it.newErrorValue("TypeError", "unknown operator "+op)}
}

func (it *Interpreter) addOp(l, r value.Value) (value.Value, error) {
	lp, err := it.toAddPrimitive(l)
	if err != nil {
		return nil, err
	}
	rp, err := it.toAddPrimitive(r)
	if err != nil {
		return nil, err
	}
	_, lStr := lp.(value.String)
	_, rStr := rp.(value.String)
	if lStr || rStr {
		ls, err := it.toStringValue(lp)
		if err != nil {
			return nil, err
		}
		rs, err := it.toStringValue(rp)
		if err != nil {
			return nil, err
		}
		return value.String(ls + rs), nil
	}
	lb, lIsBig := lp.(value.BigInt)
	rb, rIsBig := rp.(value.BigInt)
	if lIsBig || rIsBig {
		if !lIsBig || !rIsBig {
			return nil, &thrownError{V: it.newErrorValue("TypeError", "cannot mix BigInt and other types")}
		}
		return value.BigInt{V: new(big.Int).Add(lb.V, rb.V)}, nil
	}
	lf, err := it.toNumber(lp)
	if err != nil {
		return nil, err
	}
	rf, err := it.toNumber(rp)
	if err != nil {
		return nil, err
	}
	return value.Number(lf + rf), nil
}

func (it *Interpreter) toAddPrimitive(v value.Value) (value.Value, error) {
	if r, ok := v.(value.Ref); ok {
		return it.toPrimitive(r, "default")
	}
	return v, nil
}

func (it *Interpreter) arithOp(op string, l, r value.Value) (value.Value, error) {
	lb, lIsBig := l.(value.BigInt)
	rb, rIsBig := r.(value.BigInt)
	if lIsBig || rIsBig {
		if !lIsBig || !rIsBig {
			return nil, &thrownError{V: it.newErrorValue("TypeError", "cannot mix BigInt and other types")}
		}
		res := new(big.Int)
		switch op {
		case "-":
			res.Sub(lb.V, rb.V)
		case "*":
			res.Mul(lb.V, rb.V)
		case "/":
			if rb.V.Sign() == 0 {
				return nil, &thrownError{V: it.newErrorValue("RangeError", "division by zero")}
			}
			res.Quo(lb.V, rb.V)
		case "%":
			if rb.V.Sign() == 0 {
				return nil, &thrownError{V: it.newErrorValue("RangeError", "division by zero")}
			}
			res.Rem(lb.V, rb.V)
		case "**":
			res.Exp(lb.V, rb.V, nil)
		}
		return value.BigInt{V: res}, nil
	}
	lf, err := it.toNumber(l)
	if err != nil {
		return nil, err
	}
	rf, err := it.toNumber(r)
	if err != nil {
		return nil, err
	}
	switch op {
	case "-":
		return value.Number(lf - rf), nil
	case "*":
		return value.Number(lf * rf), nil
	case "/":
		return value.Number(lf / rf), nil
	case "%":
		return value.Number(math.Mod(lf, rf)), nil
	case "**":
		return value.Number(math.Pow(lf, rf)), nil
	}
	return nil, nil
}

func (it *Interpreter) relationalOp(op string, l, r value.Value) (value.Value, error) {
	lp, err := it.toAddPrimitive(l)
	if err != nil {
		return nil, err
	}
	rp, err := it.toAddPrimitive(r)
	if err != nil {
		return nil, err
	}
	ls, lIsStr := lp.(value.String)
	rs, rIsStr := rp.(value.String)
	if lIsStr && rIsStr {
		return value.Bool(compareStrings(op, string(ls), string(rs))), nil
	}
	lf, err := it.toNumber(lp)
	if err != nil {
		return nil, err
	}
	rf, err := it.toNumber(rp)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(lf) || math.IsNaN(rf) {
		return value.Bool(false), nil
	}
	switch op {
	case "<":
		return value.Bool(lf < rf), nil
	case ">":
		return value.Bool(lf > rf), nil
	case "<=":
		return value.Bool(lf <= rf), nil
	case ">=":
		return value.Bool(lf >= rf), nil
	}
	return value.Bool(false), nil
}

func compareStrings(op, a, b string) bool {
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	}
	return false
}

func (it *Interpreter) bitwiseOp(op string, l, r value.Value) (value.Value, error) {
	li, err := it.toInt32(l)
	if err != nil {
		return nil, err
	}
	ri, err := it.toInt32(r)
	if err != nil {
		return nil, err
	}
	switch op {
	case "&":
		return value.Number(li & ri), nil
	case "|":
		return value.Number(li | ri), nil
	case "^":
		return value.Number(li ^ ri), nil
	case "<<":
		return value.Number(li << (uint32(ri) & 31)), nil
	case ">>":
		return value.Number(li >> (uint32(ri) & 31)), nil
	case ">>>":
		lu, err := it.toUint32(l)
		if err != nil {
			return nil, err
		}
		return value.Number(lu >> (uint32(ri) & 31)), nil
	}
	return value.Number(0), nil
}

func (it *Interpreter) unaryOp(op string, v value.Value) (value.Value, error) {
	switch op {
	case "-":
		if b, ok := v.(value.BigInt); ok {
			return value.BigInt{V: new(big.Int).Neg(b.V)}, nil
		}
		f, err := it.toNumber(v)
		if err != nil {
			return nil, err
		}
		return value.Number(-f), nil
	case "+":
		f, err := it.toNumber(v)
		if err != nil {
			return nil, err
		}
		return value.Number(f), nil
	case "!":
		return value.Bool(!value.ToBoolean(v)), nil
	case "~":
		if b, ok := v.(value.BigInt); ok {
			return value.BigInt{V: new(big.Int).Not(b.V)}, nil
		}
		i, err := it.toInt32(v)
		if err != nil {
			return nil, err
		}
		return value.Number(^i), nil
	case "typeof":
		return value.String(it.typeOf(v)), nil
	case "void":
		return value.Undefined{}, nil
	}
	return nil, &thrownError{V: it.newErrorValue("TypeError", "unknown unary operator "+op)}
}

// hasProperty reports whether r (or a prototype of it) has an own
// property named key, used by the `in` operator.
func (it *Interpreter) hasProperty(r value.Ref, key value.PropertyKey) bool {
	switch o := it.Heap.Get(r).(type) {
	case *value.ArrayObject:
		if key.Str == "length" && !key.IsSym {
			return true
		}
		if idx, ok := numericIndex(key); ok {
			if idx < len(o.Elements) && o.Elements[idx] != nil {
				return true
			}
			_, ok := o.Sparse[idx]
			return ok
		}
		if o.Proto != (value.Ref{}) {
			return it.hasProperty(o.Proto, key)
		}
		return false
	case *value.PlainObject:
		if _, ok := o.Props[key]; ok {
			return true
		}
		if o.HasProto {
			return it.hasProperty(o.Proto, key)
		}
		return false
	default:
		return false
	}
}

// instanceOf implements `l instanceof r`: r must be a function/class with
// a .prototype object reachable by walking l's prototype chain.
func (it *Interpreter) instanceOf(l, r value.Value) (value.Value, error) {
	rr, ok := r.(value.Ref)
	if !ok {
		return nil, &thrownError{V: it.newErrorValue("TypeError", "right-hand side of 'instanceof' is not callable")}
	}
	var protoRef value.Ref
	switch fo := it.Heap.Get(rr).(type) {
	case *value.FunctionObject:
		protoRef = fo.Proto
	case *value.ClassObject:
		protoRef = fo.Prototype
	default:
		return nil, &thrownError{V: it.newErrorValue("TypeError", "right-hand side of 'instanceof' is not callable")}
	}
	lr, ok := l.(value.Ref)
	if !ok {
		return value.Bool(false), nil
	}
	cur := lr
	for {
		obj := it.Heap.Get(cur)
		po, ok := obj.(*value.PlainObject)
		if !ok {
			return value.Bool(false), nil
		}
		if !po.HasProto {
			return value.Bool(false), nil
		}
		if po.Proto == protoRef {
			return value.Bool(true), nil
		}
		cur = po.Proto
	}
}
