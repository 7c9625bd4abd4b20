package interp

import (
	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/env"
	"github.com/vaultjs/vaultjs/internal/value"
)

// closureEnv bundles the defining environment together with the params/
// body AST nodes behind the `any`-typed fields value.FunctionObject
// carries, so internal/value stays free of an import on internal/ast.
type closureEnv struct {
	Params    []ast.Expression
	Body      ast.Node // *ast.BlockStatement or ast.Expression (arrow concise body)
	Env       *env.Environment
	Generator bool
	Async     bool
}

// makeFunction allocates a FunctionObject closing over scope. homeObject,
// when non-zero, is the method's [[HomeObject]] for `super` resolution.
func (it *Interpreter) makeFunction(name string, params []ast.Expression, body ast.Node, generator, async bool, scope *env.Environment, homeObject value.Ref) value.Value {
	kind := value.FuncNormal
	switch {
	case generator && async:
		kind = value.FuncAsyncGenerator
	case generator:
		kind = value.FuncGenerator
	case async:
		kind = value.FuncAsync
	}
	fo := &value.FunctionObject{
		Name:       name,
		Params:     &closureEnv{Params: params, Body: body, Env: scope, Generator: generator, Async: async},
		Body:       body,
		Env:        scope,
		Kind:       kind,
		HomeObject: homeObject,
		ThisMode:   "strict",
	}
	ref := it.Heap.Alloc(fo)
	if kind == value.FuncNormal {
		proto := value.NewPlainObject(it.ObjectProto, true)
		protoRef := it.Heap.Alloc(proto)
		proto.Props[value.StringKey("constructor")] = &value.PropertyDescriptor{Value: ref, Writable: true, Configurable: true}
		fo.Proto = protoRef
	}
	return ref
}

// makeArrow allocates an arrow FunctionObject. Arrows never get their own
// "this"/"arguments" bindings (callFunction skips declaring them for
// FuncArrow), so a plain Lookup inside the arrow's body naturally resolves
// to whatever "this"/"arguments" binding is live in the enclosing
// non-arrow scope at the arrow's definition site — that is the entire
// mechanism behind lexical `this`, no separate capture step needed.
func (it *Interpreter) makeArrow(params []ast.Expression, body ast.Node, async bool, scope *env.Environment) value.Value {
	fo := &value.FunctionObject{
		Params:   &closureEnv{Params: params, Body: body, Env: scope, Async: async},
		Body:     body,
		Env:      scope,
		Kind:     value.FuncArrow,
		ThisMode: "lexical",
	}
	return it.Heap.Alloc(fo)
}

// nativeFunction wraps a Go function as a guest-callable FunctionObject,
// used by internal/preset bundles to expose host builtins.
func (it *Interpreter) nativeFunction(name string, arity int, fn func(value.NativeArgs) (value.Value, error)) value.Ref {
	fo := &value.FunctionObject{Name: name, Native: fn, Kind: value.FuncNormal}
	return it.Heap.Alloc(fo)
}

// NativeFunction is nativeFunction's exported form, used by
// internal/preset to build the callable globals each bundle installs
// (console methods, timers, Promise executor/reactions, JSON, ...)
// without internal/preset needing access to the evaluator's unexported
// construction path.
func (it *Interpreter) NativeFunction(name string, fn func(value.NativeArgs) (value.Value, error)) value.Ref {
	return it.nativeFunction(name, 0, fn)
}

// Throw wraps v as the error a native function returns to raise a
// catchable guest exception, the exported form of the unexported
// thrownError type every evaluator-raised error already uses. Without
// this, an addon's native function returning a plain Go error would
// surface as an uncatchable host failure instead of a `try`/`catch`-able
// guest value.
func (it *Interpreter) Throw(v value.Value) error {
	return &thrownError{V: v}
}

// CallValue invokes a callable heap value from outside the evaluator
// proper, routing through the same callFunction path every guest call
// uses. Used by preset addons that must call back into guest code on
// their own (Timers' queued callbacks, Promise reactions constructed
// outside internal/interp).
func (it *Interpreter) CallValue(fnRef value.Ref, this value.Value, args []value.Value) (value.Value, error) {
	fnObj, ok := it.Heap.Get(fnRef).(*value.FunctionObject)
	if !ok {
		return nil, &thrownError{V: it.newErrorValue("TypeError", "value is not a function")}
	}
	return it.callFunction(fnRef, fnObj, this, args, ast0())
}

// callFunction invokes fnObj with the given this-value and arguments.
// This is the single call path: guest closures, arrows, native builtins,
// and accessor get/set invocations all route through it.
func (it *Interpreter) callFunction(fnRef value.Ref, fnObj *value.FunctionObject, this value.Value, args []value.Value, span ast.Span) (value.Value, error) {
	if fnObj == nil {
		return nil, &thrownError{V: it.newErrorValue("TypeError", "value is not a function")}
	}
	if it.gov != nil {
		if err := it.gov.EnterCall(); err != nil {
			return nil, err
		}
		defer it.gov.ExitCall()
	}
	if fnObj.Native != nil {
		return fnObj.Native(value.NativeArgs{This: this, Args: args, Heap: it.Heap})
	}
	ce, ok := fnObj.Params.(*closureEnv)
	if !ok {
		return value.Undefined{}, nil
	}
	callScope := env.New(ce.Env, env.KindFunction)
	if fnObj.Kind != value.FuncArrow {
		thisBinding := callScope.Declare("this", env.BindConst)
		thisBinding.Initialize(this)
		argsObj := it.makeArgumentsObject(args)
		ab := callScope.Declare("arguments", env.BindVar)
		ab.Initialize(argsObj)
		if fnObj.HomeObject != (value.Ref{}) {
			hb := callScope.Declare("%home%", env.BindConst)
			hb.Initialize(homeRefValue{Ref: fnObj.HomeObject})
		}
		if fnObj.ParentClass != nil {
			cb := callScope.Declare("%class%", env.BindConst)
			cb.Initialize(classRefValue{C: fnObj.ParentClass})
		}
	}
	if err := it.bindParams(ce.Params, args, callScope); err != nil {
		return nil, err
	}
	if fnObj.Kind == value.FuncGenerator || fnObj.Kind == value.FuncAsyncGenerator {
		return it.startGenerator(fnObj, ce, callScope), nil
	}
	if fnObj.Kind == value.FuncAsync {
		return it.runAsyncFunction(ce, callScope), nil
	}
	return it.runFunctionBody(ce, callScope)
}

func (it *Interpreter) runFunctionBody(ce *closureEnv, callScope *env.Environment) (value.Value, error) {
	switch body := ce.Body.(type) {
	case *ast.BlockStatement:
		it.hoistVarsAndFunctions(body.Body, callScope, true)
		c := it.evalBlock(body.Body, callScope)
		switch c.Kind {
		case CompletionReturn:
			return c.Value, nil
		case CompletionThrow:
			return nil, &thrownError{V: c.Value}
		default:
			return value.Undefined{}, nil
		}
	case ast.Expression:
		return it.evalExpression(body, callScope)
	default:
		return value.Undefined{}, nil
	}
}

func (it *Interpreter) bindParams(params []ast.Expression, args []value.Value, scope *env.Environment) error {
	for i, p := range params {
		if rest, ok := p.(*ast.RestElement); ok {
			var tail []value.Value
			if i < len(args) {
				tail = args[i:]
			}
			arr := it.newArrayFromSlice(tail)
			bindPatternNames(rest.Argument, func(name string) { scope.Declare(name, env.BindParam) })
			if err := it.bindPattern(rest.Argument, arr, scope, "param"); err != nil {
				return err
			}
			return nil
		}
		var av value.Value = value.Undefined{}
		if i < len(args) {
			av = args[i]
		}
		bindPatternNames(p, func(name string) {
			if !scope.HasOwn(name) {
				scope.Declare(name, env.BindParam)
			}
		})
		if err := it.bindDefaulted(p, av, scope, "param"); err != nil {
			return err
		}
	}
	return nil
}

func (it *Interpreter) makeArgumentsObject(args []value.Value) value.Value {
	obj := value.NewPlainObject(it.ObjectProto, true)
	obj.Class = "Arguments"
	for i, a := range args {
		k := value.StringKey(value.Number(i).String())
		obj.Keys = append(obj.Keys, k)
		obj.Props[k] = &value.PropertyDescriptor{Value: a, Writable: true, Enumerable: true, Configurable: true}
	}
	lk := value.StringKey("length")
	obj.Keys = append(obj.Keys, lk)
	obj.Props[lk] = &value.PropertyDescriptor{Value: value.Number(len(args)), Writable: true, Configurable: true}
	return it.Heap.Alloc(obj)
}

// construct implements `new Target(args)`: ordinary functions get a fresh
// object whose prototype is Target.prototype; ClassObject targets defer
// to internal/class's constructor-chain runner.
func (it *Interpreter) construct(target value.Value, args []value.Value, span ast.Span) (value.Value, error) {
	ref, ok := target.(value.Ref)
	if !ok {
		return nil, &thrownError{V: it.newErrorValue("TypeError", "not a constructor")}
	}
	switch obj := it.Heap.Get(ref).(type) {
	case *value.ClassObject:
		return it.instantiateClass(obj, args, span)
	case *value.FunctionObject:
		if obj.Kind == value.FuncArrow || obj.Native != nil && obj.ParentClass == nil {
			// Native functions may still act as constructors (e.g. host
			// factory functions); arrows never can.
			if obj.Kind == value.FuncArrow {
				return nil, &thrownError{V: it.newErrorValue("TypeError", "arrow functions cannot be used as constructors")}
			}
		}
		protoRef := obj.Proto
		if protoRef == (value.Ref{}) {
			protoRef = it.ObjectProto
		}
		instObj := value.NewPlainObject(protoRef, true)
		instRef := it.Heap.Alloc(instObj)
		res, err := it.callFunction(ref, obj, value.Ref(instRef), args, span)
		if err != nil {
			return nil, err
		}
		if _, isObj := res.(value.Ref); isObj {
			return res, nil
		}
		return instRef, nil
	default:
		return nil, &thrownError{V: it.newErrorValue("TypeError", "not a constructor")}
	}
}
