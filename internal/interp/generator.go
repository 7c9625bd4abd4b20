package interp

import (
	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/env"
	"github.com/vaultjs/vaultjs/internal/value"
)

// Generators are implemented as a dedicated goroutine per generator object,
// synchronized over a pair of unbuffered channels so exactly one of
// {consumer, generator body} ever runs at a time — a coroutine, not real
// concurrency. The Interpreter's heap and environments are never touched
// from two goroutines simultaneously because of that handoff discipline.
type genResume struct {
	kind string // "next", "throw", "return"
	val  value.Value
}

type genYield struct {
	val  value.Value
	done bool
	err  error
}

type genCoro struct {
	resumeCh chan genResume
	yieldCh  chan genYield
}

// genYieldValue is the hidden "%yield%" scope binding a generator body's
// YieldExpression nodes look up to find their coroutine's channel pair.
type genYieldValue struct{ C *genCoro }

func (genYieldValue) Kind() value.Kind { return value.KindUndefined }
func (genYieldValue) String() string   { return "" }

// genReturnSignal is panicked from evalYield when the consumer calls
// generator.return(v), unwinding the in-flight body evaluation straight
// back to startGenerator's goroutine without threading a special
// Completion kind through every statement form.
type genReturnSignal struct{ V value.Value }

func (it *Interpreter) iterResult(v value.Value, done bool) value.Value {
	obj := value.NewPlainObject(it.ObjectProto, true)
	obj.Keys = append(obj.Keys, value.StringKey("value"), value.StringKey("done"))
	obj.Props[value.StringKey("value")] = &value.PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true}
	obj.Props[value.StringKey("done")] = &value.PropertyDescriptor{Value: value.Bool(done), Writable: true, Enumerable: true, Configurable: true}
	return it.Heap.Alloc(obj)
}

// startGenerator allocates a generator object and spawns its coroutine
// goroutine, suspended until the first .next()/.throw()/.return() call.
func (it *Interpreter) startGenerator(fnObj *value.FunctionObject, ce *closureEnv, callScope *env.Environment) value.Value {
	coro := &genCoro{resumeCh: make(chan genResume), yieldCh: make(chan genYield)}
	handle := &value.GeneratorHandle{State: value.GenSuspendedStart, Coro: coro}

	obj := value.NewPlainObject(it.GeneratorProto, true)
	obj.Class = "Generator"
	obj.Internal = handle
	genRef := it.Heap.Alloc(obj)

	go func() {
		first := <-coro.resumeCh
		if first.kind != "next" {
			if first.kind == "throw" {
				coro.yieldCh <- genYield{done: true, err: &thrownError{V: first.val}}
			} else {
				coro.yieldCh <- genYield{val: first.val, done: true}
			}
			return
		}

		var result value.Value = value.Undefined{}
		var threw error
		func() {
			defer func() {
				if r := recover(); r != nil {
					if grs, ok := r.(genReturnSignal); ok {
						result = grs.V
						return
					}
					panic(r)
				}
			}()
			genScope := env.New(callScope, env.KindFunction)
			yb := genScope.Declare("%yield%", env.BindConst)
			yb.Initialize(genYieldValue{C: coro})
			switch body := ce.Body.(type) {
			case *ast.BlockStatement:
				it.hoistVarsAndFunctions(body.Body, genScope, true)
				c := it.evalBlock(body.Body, genScope)
				switch c.Kind {
				case CompletionReturn:
					result = c.Value
				case CompletionThrow:
					threw = &thrownError{V: c.Value}
				}
			case ast.Expression:
				v, err := it.evalExpression(body, genScope)
				if err != nil {
					threw = err
				} else {
					result = v
				}
			}
		}()

		handle.State = value.GenCompleted
		coro.yieldCh <- genYield{val: result, done: true, err: threw}
	}()

	resume := func(kind string, v value.Value) (value.Value, error) {
		if handle.State == value.GenCompleted {
			if kind == "throw" {
				return nil, &thrownError{V: v}
			}
			return it.iterResult(v, true), nil
		}
		handle.State = value.GenExecuting
		coro.resumeCh <- genResume{kind: kind, val: v}
		y := <-coro.yieldCh
		if y.done {
			handle.State = value.GenCompleted
		} else {
			handle.State = value.GenSuspendedYield
		}
		if y.err != nil {
			return nil, y.err
		}
		return it.iterResult(y.val, y.done), nil
	}

	addMethod := func(name string, fn func(value.NativeArgs) (value.Value, error)) {
		ref := it.nativeFunction(name, 1, fn)
		obj.Props[value.StringKey(name)] = &value.PropertyDescriptor{Value: ref, Writable: true, Configurable: true}
		obj.Keys = append(obj.Keys, value.StringKey(name))
	}
	addMethod("next", func(na value.NativeArgs) (value.Value, error) {
		var arg value.Value = value.Undefined{}
		if len(na.Args) > 0 {
			arg = na.Args[0]
		}
		return resume("next", arg)
	})
	addMethod("throw", func(na value.NativeArgs) (value.Value, error) {
		var arg value.Value = value.Undefined{}
		if len(na.Args) > 0 {
			arg = na.Args[0]
		}
		return resume("throw", arg)
	})
	addMethod("return", func(na value.NativeArgs) (value.Value, error) {
		var arg value.Value = value.Undefined{}
		if len(na.Args) > 0 {
			arg = na.Args[0]
		}
		return resume("return", arg)
	})

	return genRef
}

// evalYield suspends the enclosing generator coroutine, handing val to the
// waiting consumer and blocking until the next resume.
func (it *Interpreter) evalYield(e *ast.YieldExpression, scope *env.Environment) (value.Value, error) {
	b, _, ok := scope.Lookup("%yield%")
	if !ok {
		return nil, &thrownError{V: it.typeErrorVal("yield is only valid inside a generator")}
	}
	gv, ok := b.Value.(genYieldValue)
	if !ok {
		return nil, &thrownError{V: it.typeErrorVal("yield is only valid inside a generator")}
	}
	coro := gv.C

	if e.Delegate {
		var argV value.Value = value.Undefined{}
		if e.Argument != nil {
			v, err := it.evalExpression(e.Argument, scope)
			if err != nil {
				return nil, err
			}
			argV = v
		}
		items, err := it.iterateToSlice(argV, 0)
		if err != nil {
			return nil, err
		}
		var last value.Value = value.Undefined{}
		for _, item := range items {
			coro.yieldCh <- genYield{val: item, done: false}
			r := <-coro.resumeCh
			switch r.kind {
			case "throw":
				return nil, &thrownError{V: r.val}
			case "return":
				panic(genReturnSignal{V: r.val})
			default:
				last = r.val
			}
		}
		return last, nil
	}

	var argV value.Value = value.Undefined{}
	if e.Argument != nil {
		v, err := it.evalExpression(e.Argument, scope)
		if err != nil {
			return nil, err
		}
		argV = v
	}
	coro.yieldCh <- genYield{val: argV, done: false}
	r := <-coro.resumeCh
	switch r.kind {
	case "throw":
		return nil, &thrownError{V: r.val}
	case "return":
		panic(genReturnSignal{V: r.val})
	default:
		return r.val, nil
	}
}
