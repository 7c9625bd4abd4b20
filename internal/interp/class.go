package interp

import (
	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/class"
	"github.com/vaultjs/vaultjs/internal/env"
	"github.com/vaultjs/vaultjs/internal/value"
)

// homeRefValue and classRefValue are internal-only value.Value wrappers
// stashed in a call scope's hidden "%home%"/"%class%" bindings so
// super.member/super(...) can resolve without threading extra parameters
// through callFunction's signature. They never escape to guest code.
type homeRefValue struct{ Ref value.Ref }

func (homeRefValue) Kind() value.Kind { return value.KindUndefined }
func (homeRefValue) String() string   { return "" }

type classRefValue struct{ C *value.ClassObject }

func (classRefValue) Kind() value.Kind { return value.KindUndefined }
func (classRefValue) String() string   { return "" }

func lookupHome(scope *env.Environment) (value.Ref, bool) {
	b, _, ok := scope.Lookup("%home%")
	if !ok {
		return value.Ref{}, false
	}
	h, ok := b.Value.(homeRefValue)
	if !ok {
		return value.Ref{}, false
	}
	return h.Ref, true
}

func lookupClass(scope *env.Environment) (*value.ClassObject, bool) {
	b, _, ok := scope.Lookup("%class%")
	if !ok {
		return nil, false
	}
	c, ok := b.Value.(classRefValue)
	if !ok {
		return nil, false
	}
	return c.C, true
}

// lookupPrivateName resolves a lexical "#name" reference, declared as a
// hidden scope binding while its owning class body is evaluated, so
// private-name resolution follows ordinary lexical scoping (only code
// written inside the class body can ever reference the name).
func lookupPrivateName(scope *env.Environment, name string) (*value.PrivateName, bool) {
	b, _, ok := scope.Lookup("#" + name)
	if !ok {
		return nil, false
	}
	pv, ok := b.Value.(privateNameValue)
	if !ok {
		return nil, false
	}
	return pv.PN, true
}

type privateNameValue struct{ PN *value.PrivateName }

func (privateNameValue) Kind() value.Kind { return value.KindUndefined }
func (privateNameValue) String() string   { return "" }

func (it *Interpreter) privateGet(objV value.Value, pid *ast.PrivateIdentifier, scope *env.Environment) (value.Value, error) {
	pn, ok := lookupPrivateName(scope, pid.Name)
	if !ok {
		return nil, &thrownError{V: it.newErrorValue("SyntaxError", "private name #"+pid.Name+" is not defined")}
	}
	r, ok := objV.(value.Ref)
	if !ok {
		return nil, &thrownError{V: it.typeErrorVal("cannot read private member #" + pid.Name + " from non-object")}
	}
	po, ok := it.Heap.Get(r).(*value.PlainObject)
	if !ok {
		return nil, &thrownError{V: it.typeErrorVal("cannot read private member #" + pid.Name)}
	}
	v, ok := class.GetBrand(po, pn)
	if !ok {
		return nil, &thrownError{V: it.typeErrorVal("cannot read private member #" + pid.Name + " from an object whose class did not declare it")}
	}
	return v, nil
}

func (it *Interpreter) privateSet(objV value.Value, pid *ast.PrivateIdentifier, v value.Value, scope *env.Environment) error {
	pn, ok := lookupPrivateName(scope, pid.Name)
	if !ok {
		return &thrownError{V: it.newErrorValue("SyntaxError", "private name #"+pid.Name+" is not defined")}
	}
	r, ok := objV.(value.Ref)
	if !ok {
		return &thrownError{V: it.typeErrorVal("cannot write private member #" + pid.Name + " on non-object")}
	}
	po, ok := it.Heap.Get(r).(*value.PlainObject)
	if !ok {
		return &thrownError{V: it.typeErrorVal("cannot write private member #" + pid.Name)}
	}
	if !class.HasBrand(po, pn) {
		return &thrownError{V: it.typeErrorVal("cannot write private member #" + pid.Name + " to an object whose class did not declare it")}
	}
	class.SetBrand(po, pn, v)
	return nil
}

// typeErrorVal builds a TypeError value without an extra span parameter,
// mirroring the convenience wrappers in interpreter.go.
func (it *Interpreter) typeErrorVal(msg string) value.Value {
	return it.newErrorValue("TypeError", msg)
}

func (it *Interpreter) evalClassDeclaration(n *ast.ClassDeclaration, scope *env.Environment) (value.Value, error) {
	return it.buildClass(n.ID.Name, n.SuperClass, n.Body, scope)
}

func (it *Interpreter) evalClassExpression(n *ast.ClassExpression, scope *env.Environment) (value.Value, error) {
	name := ""
	inner := scope
	if n.ID != nil {
		name = n.ID.Name
		inner = env.New(scope, env.KindBlock)
	}
	v, err := it.buildClass(name, n.SuperClass, n.Body, inner)
	if err != nil {
		return nil, err
	}
	if n.ID != nil {
		b := inner.Declare(n.ID.Name, env.BindConst)
		b.Initialize(v)
	}
	return v, nil
}

// buildClass evaluates a class body (declaration or expression form) into
// a heap-allocated ClassObject: a prototype object for instance
// members, a static-home object for static members, a private-name
// registry shared by both, and an ordered instance-field initializer list
// the constructor-chain runner executes at instantiation time. Static
// fields and static blocks run here, once, while the class is defined.
func (it *Interpreter) buildClass(name string, superExpr ast.Expression, body []ast.ClassMember, scope *env.Environment) (value.Value, error) {
	var superClassObj *value.ClassObject
	var superRef value.Ref
	hasSuper := false
	protoParent := it.ObjectProto
	staticParent := it.FuncProto
	protoParentSet := true
	if superExpr != nil {
		sv, err := it.evalExpression(superExpr, scope)
		if err != nil {
			return nil, err
		}
		if _, isNull := sv.(value.Null); isNull {
			protoParentSet = false
			hasSuper = true
		} else {
			sr, ok := sv.(value.Ref)
			if !ok {
				return nil, &thrownError{V: it.typeErrorVal("class extends value is not a constructor")}
			}
			co, ok := it.Heap.Get(sr).(*value.ClassObject)
			if !ok {
				return nil, &thrownError{V: it.typeErrorVal("class extends value is not a constructor")}
			}
			superClassObj = co
			superRef = sr
			hasSuper = true
			protoParent = co.Prototype
			staticParent = co.StaticHome
		}
	}

	proto := value.NewPlainObject(protoParent, protoParentSet)
	protoRef := it.Heap.Alloc(proto)
	staticHome := value.NewPlainObject(staticParent, true)
	staticHomeRef := it.Heap.Alloc(staticHome)

	co := &value.ClassObject{
		Name:          name,
		Prototype:     protoRef,
		StaticHome:    staticHomeRef,
		SuperClass:    superRef,
		HasSuperClass: hasSuper,
		PrivateNames:  make(map[string]*value.PrivateName),
	}
	_ = superClassObj

	reg := class.NewRegistry(co)
	classScope := env.New(scope, env.KindClassBody)
	if name != "" {
		// Allow a named class expression/declaration to reference itself
		// from within method bodies before the outer binding exists yet.
		selfB := classScope.Declare(name, env.BindConst)
		_ = selfB
	}

	// First pass: declare every private name lexically so forward
	// references within the body (a method referencing a field declared
	// later) resolve.
	for _, m := range body {
		var key ast.Expression
		switch mm := m.(type) {
		case *ast.MethodDefinition:
			key = mm.Key
		case *ast.PropertyDefinition:
			key = mm.Key
		}
		if pid, ok := key.(*ast.PrivateIdentifier); ok {
			pn := reg.Declare(pid.Name, co)
			co.PrivateNames[pid.Name] = pn
			pb := classScope.Declare("#"+pid.Name, env.BindConst)
			pb.Initialize(privateNameValue{PN: pn})
		}
	}

	var ctorFn *value.FunctionObject
	var ctorRef value.Ref

	for _, m := range body {
		switch mm := m.(type) {
		case *ast.MethodDefinition:
			home := protoRef
			if mm.Static {
				home = staticHomeRef
			}
			fnV := it.makeFunction("", mm.Value.Params, mm.Value.Body, mm.Value.Generator, mm.Value.Async, classScope, home)
			fnRef := fnV.(value.Ref)
			fnObj := it.Heap.Get(fnRef).(*value.FunctionObject)
			fnObj.Kind = value.FuncMethod

			if mm.Kind == "constructor" {
				fnObj.Kind = value.FuncNormal
				ctorFn = fnObj
				ctorRef = fnRef
				continue
			}

			if pid, ok := mm.Key.(*ast.PrivateIdentifier); ok {
				pn := co.PrivateNames[pid.Name]
				if mm.Static {
					co.StaticInitOrder = append(co.StaticInitOrder, value.StaticInit{IsPriv: true, Priv: pn, ValueExp: fnV})
				} else {
					co.InstanceFields = append(co.InstanceFields, value.FieldInit{IsPriv: true, Priv: pn, ValueExp: fnV})
				}
				continue
			}

			key, err := it.classKey(mm.Key, mm.Computed, classScope)
			if err != nil {
				return nil, err
			}
			it.fnObjName(fnObj, key)
			target := proto
			if mm.Static {
				target = staticHome
			}
			it.defineClassAccessorOrMethod(target, key, mm.Kind, fnRef)

		case *ast.PropertyDefinition:
			if pid, ok := mm.Key.(*ast.PrivateIdentifier); ok {
				pn := co.PrivateNames[pid.Name]
				if mm.Static {
					co.StaticInitOrder = append(co.StaticInitOrder, value.StaticInit{IsPriv: true, Priv: pn, ValueExp: mm.Value})
				} else {
					co.InstanceFields = append(co.InstanceFields, value.FieldInit{IsPriv: true, Priv: pn, ValueExp: mm.Value})
				}
				continue
			}
			key, err := it.classKey(mm.Key, mm.Computed, classScope)
			if err != nil {
				return nil, err
			}
			if mm.Static {
				co.StaticInitOrder = append(co.StaticInitOrder, value.StaticInit{Key: key, ValueExp: mm.Value})
			} else {
				co.InstanceFields = append(co.InstanceFields, value.FieldInit{Key: key, ValueExp: mm.Value})
			}

		case *ast.StaticBlock:
			co.StaticInitOrder = append(co.StaticInitOrder, value.StaticInit{IsBlock: true, Block: mm.Body})
		}
	}

	if ctorFn == nil {
		ctorFn = &value.FunctionObject{Name: name, Kind: value.FuncNormal, Env: classScope}
		ctorRef = it.Heap.Alloc(ctorFn)
		if hasSuper {
			ctorFn.CtorKind = value.CtorDerived
		} else {
			ctorFn.CtorKind = value.CtorBase
		}
	} else if hasSuper {
		ctorFn.CtorKind = value.CtorDerived
	} else {
		ctorFn.CtorKind = value.CtorBase
	}
	ctorFn.Name = name
	ctorFn.ParentClass = co
	ctorFn.Proto = protoRef
	co.Constructor = ctorRef

	proto.Props[value.StringKey("constructor")] = &value.PropertyDescriptor{Value: ctorRef, Writable: true, Configurable: true}
	proto.Keys = append(proto.Keys, value.StringKey("constructor"))

	classRef := it.Heap.Alloc(co)
	if name != "" {
		if b, _, ok := classScope.Lookup(name); ok {
			b.Initialize(classRef)
		}
	}
	it.classScopes[co] = classScope

	if err := it.runStaticInit(co, classRef, classScope); err != nil {
		return nil, err
	}

	return classRef, nil
}

func (it *Interpreter) classKey(keyExpr ast.Expression, computed bool, scope *env.Environment) (value.PropertyKey, error) {
	if !computed {
		switch k := keyExpr.(type) {
		case *ast.Identifier:
			return value.StringKey(k.Name), nil
		case *ast.StringLiteral:
			return value.StringKey(k.Value), nil
		}
	}
	v, err := it.evalExpression(keyExpr, scope)
	if err != nil {
		return value.PropertyKey{}, err
	}
	return it.propKeyOf(v)
}

func (it *Interpreter) fnObjName(fnObj *value.FunctionObject, key value.PropertyKey) {
	if fnObj.Name == "" {
		fnObj.Name = key.String()
	}
}

func (it *Interpreter) defineClassAccessorOrMethod(target *value.PlainObject, key value.PropertyKey, kind string, fnRef value.Ref) {
	switch kind {
	case "get":
		d, ok := target.Props[key]
		if !ok || !d.IsAccessor() {
			d = &value.PropertyDescriptor{Configurable: true}
			target.Keys = append(target.Keys, key)
		}
		d.HasGet = true
		d.Get = fnRef
		target.Props[key] = d
	case "set":
		d, ok := target.Props[key]
		if !ok || !d.IsAccessor() {
			d = &value.PropertyDescriptor{Configurable: true}
			target.Keys = append(target.Keys, key)
		}
		d.HasSet = true
		d.Set = fnRef
		target.Props[key] = d
	default:
		if _, exists := target.Props[key]; !exists {
			target.Keys = append(target.Keys, key)
		}
		target.Props[key] = &value.PropertyDescriptor{Value: fnRef, Writable: true, Configurable: true}
	}
}

// runStaticInit runs a class's static field initializers and static blocks
// in declaration order, with `this` bound to the class itself (classRef),
// immediately after the class's own construction — before any instance is
// ever created, per the class evaluation order.
func (it *Interpreter) runStaticInit(co *value.ClassObject, classRef value.Ref, classScope *env.Environment) error {
	staticScope := env.New(classScope, env.KindFunction)
	thisB := staticScope.Declare("this", env.BindConst)
	thisB.Initialize(classRef)
	classB := staticScope.Declare("%class%", env.BindConst)
	classB.Initialize(classRefValue{C: co})

	home, _ := it.Heap.Get(co.StaticHome).(*value.PlainObject)

	for _, s := range co.StaticInitOrder {
		if s.IsBlock {
			stmts := s.Block.([]ast.Statement)
			it.hoistVarsAndFunctions(stmts, staticScope, false)
			c := it.evalBlock(stmts, staticScope)
			if c.Kind == CompletionThrow {
				return &thrownError{V: c.Value}
			}
			continue
		}
		var v value.Value = value.Undefined{}
		if s.ValueExp != nil {
			switch ve := s.ValueExp.(type) {
			case ast.Expression:
				val, err := it.evalExpression(ve, staticScope)
				if err != nil {
					return err
				}
				v = val
			case value.Value:
				v = ve
			}
		}
		if s.IsPriv {
			class.SetBrand(home, s.Priv, v)
			continue
		}
		key := s.Key.(value.PropertyKey)
		if _, exists := home.Props[key]; !exists {
			home.Keys = append(home.Keys, key)
		}
		home.Props[key] = &value.PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true}
	}
	return nil
}

// instantiateClass is `new` applied to a ClassObject: allocate the instance,
// then run the constructor chain (base constructor, instance fields, and
// the derived body, in spec order).
func (it *Interpreter) instantiateClass(co *value.ClassObject, args []value.Value, span ast.Span) (value.Value, error) {
	instObj := value.NewPlainObject(co.Prototype, true)
	instRef := it.Heap.Alloc(instObj)
	if err := it.runConstructor(co, instRef, args, span); err != nil {
		return nil, err
	}
	return instRef, nil
}

// runConstructor invokes classObj's constructor chain against an already
// allocated instance. For a class with no explicit `constructor` member,
// the default base constructor is a no-op beyond field init, and the
// default derived constructor forwards args to the superclass constructor
// before running its own fields.
func (it *Interpreter) runConstructor(co *value.ClassObject, instRef value.Ref, args []value.Value, span ast.Span) error {
	ctorFn, _ := it.Heap.Get(co.Constructor).(*value.FunctionObject)
	implicit := ctorFn.Params == nil

	if implicit {
		if co.HasSuperClass {
			superCo, ok := it.Heap.Get(co.SuperClass).(*value.ClassObject)
			if !ok {
				return &thrownError{V: it.typeErrorVal("super constructor is not a constructor")}
			}
			if err := it.runConstructor(superCo, instRef, args, span); err != nil {
				return err
			}
		}
		return it.runInstanceFields(co, instRef)
	}

	if !co.HasSuperClass {
		if err := it.runInstanceFields(co, instRef); err != nil {
			return err
		}
	}
	_, err := it.callFunction(co.Constructor, ctorFn, value.Ref(instRef), args, span)
	return err
}

// runInstanceFields evaluates co's own instance field initializers against
// instRef, in source order, with `this` bound to the new instance and
// private-field brands installed on first write.
func (it *Interpreter) runInstanceFields(co *value.ClassObject, instRef value.Ref) error {
	classScope := it.classScopes[co]
	fieldScope := env.New(classScope, env.KindFunction)
	thisB := fieldScope.Declare("this", env.BindConst)
	thisB.Initialize(instRef)
	classB := fieldScope.Declare("%class%", env.BindConst)
	classB.Initialize(classRefValue{C: co})
	homeB := fieldScope.Declare("%home%", env.BindConst)
	homeB.Initialize(homeRefValue{Ref: co.Prototype})

	instObj := it.Heap.Get(instRef).(*value.PlainObject)

	for _, f := range co.InstanceFields {
		var v value.Value = value.Undefined{}
		if f.ValueExp != nil {
			switch ve := f.ValueExp.(type) {
			case ast.Expression:
				val, err := it.evalExpression(ve, fieldScope)
				if err != nil {
					return err
				}
				v = val
			case value.Value:
				v = ve
			}
		}
		if f.IsPriv {
			class.SetBrand(instObj, f.Priv, v)
			continue
		}
		key := f.Key.(value.PropertyKey)
		if _, exists := instObj.Props[key]; !exists {
			instObj.Keys = append(instObj.Keys, key)
		}
		instObj.Props[key] = &value.PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true}
	}
	return nil
}

// evalSuperMember resolves `super.prop` from inside a method or constructor
// (memberKey rejects a private `#prop` here): the lookup starts at the method's [[HomeObject]]'s
// prototype (the superclass's prototype, or static home's prototype for a
// static method), with `this` as the receiver for accessor invocation.
func (it *Interpreter) evalSuperMember(me *ast.MemberExpression, scope *env.Environment) (value.Value, value.Value, error) {
	homeRef, ok := lookupHome(scope)
	if !ok {
		return nil, nil, &thrownError{V: it.typeErrorVal("'super' keyword is only valid inside a method")}
	}
	thisB, _, _ := scope.Lookup("this")
	var thisV value.Value = value.Undefined{}
	if thisB != nil {
		thisV = thisB.Value
	}
	home, ok := it.Heap.Get(homeRef).(*value.PlainObject)
	if !ok || !home.HasProto {
		return value.Undefined{}, thisV, nil
	}
	key, err := it.memberKey(me, scope)
	if err != nil {
		return nil, nil, err
	}
	selfRef, _ := thisV.(value.Ref)
	v, err := it.getFromProto(home.Proto, true, key, selfRef)
	if err != nil {
		return nil, nil, err
	}
	return v, thisV, nil
}

// assignSuperMember writes `super.prop = v`: the lookup for an existing
// accessor still starts at the home object's prototype, but a plain data
// write lands on `this`, matching [[Set]]'s receiver-vs-home distinction.
func (it *Interpreter) assignSuperMember(me *ast.MemberExpression, v value.Value, scope *env.Environment) error {
	homeRef, ok := lookupHome(scope)
	if !ok {
		return &thrownError{V: it.typeErrorVal("'super' keyword is only valid inside a method")}
	}
	thisB, _, _ := scope.Lookup("this")
	if thisB == nil {
		return &thrownError{V: it.typeErrorVal("'super' keyword is only valid inside a method")}
	}
	key, err := it.memberKey(me, scope)
	if err != nil {
		return err
	}
	home, ok := it.Heap.Get(homeRef).(*value.PlainObject)
	if ok && home.HasProto {
		if d, protoObj, found := it.findAccessor(home.Proto, key); found && d.HasSet {
			setFn, _ := it.Heap.Get(d.Set).(*value.FunctionObject)
			_, err := it.callFunction(d.Set, setFn, thisB.Value, []value.Value{v}, ast0())
			_ = protoObj
			return err
		}
	}
	thisRef, ok := thisB.Value.(value.Ref)
	if !ok {
		return &thrownError{V: it.typeErrorVal("cannot assign super property on non-object this")}
	}
	return it.setProperty(thisRef, key, v)
}

// findAccessor walks a prototype chain starting at r looking for key as an
// accessor property, used by super-property assignment.
func (it *Interpreter) findAccessor(r value.Ref, key value.PropertyKey) (*value.PropertyDescriptor, value.Ref, bool) {
	cur := r
	for {
		po, ok := it.Heap.Get(cur).(*value.PlainObject)
		if !ok {
			return nil, value.Ref{}, false
		}
		if d, ok := po.Props[key]; ok {
			if d.IsAccessor() {
				return d, cur, true
			}
			return nil, value.Ref{}, false
		}
		if !po.HasProto {
			return nil, value.Ref{}, false
		}
		cur = po.Proto
	}
}

// evalSuperCall implements `super(...)` inside a derived constructor: it
// constructs the superclass against the already-allocated `this`, then runs
// the current class's own instance field initializers, matching the order
// fields must see a fully-constructed super() result.
func (it *Interpreter) evalSuperCall(e *ast.CallExpression, scope *env.Environment) (value.Value, error) {
	co, ok := lookupClass(scope)
	if !ok || !co.HasSuperClass {
		return nil, &thrownError{V: it.typeErrorVal("'super' keyword is unexpected here")}
	}
	thisB, _, ok := scope.Lookup("this")
	if !ok {
		return nil, &thrownError{V: it.typeErrorVal("'super' keyword is unexpected here")}
	}
	instRef, ok := thisB.Value.(value.Ref)
	if !ok {
		return nil, &thrownError{V: it.typeErrorVal("'super' keyword is unexpected here")}
	}
	args, err := it.evalArgs(e.Arguments, scope)
	if err != nil {
		return nil, err
	}
	superCo, ok := it.Heap.Get(co.SuperClass).(*value.ClassObject)
	if !ok {
		return nil, &thrownError{V: it.typeErrorVal("super constructor is not a constructor")}
	}
	if err := it.runConstructor(superCo, instRef, args, e.Span()); err != nil {
		return nil, err
	}
	if err := it.runInstanceFields(co, instRef); err != nil {
		return nil, err
	}
	return value.Undefined{}, nil
}
