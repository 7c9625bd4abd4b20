package interp

import (
	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/env"
	"github.com/vaultjs/vaultjs/internal/value"
)

// evalStatement dispatches one statement node, returning its completion.
// Every case consults the governor's per-statement tick and the feature
// gate before doing anything with an observable effect.
func (it *Interpreter) evalStatement(s ast.Statement, scope *env.Environment) Completion {
	if it.gov != nil {
		if err := it.gov.TickEval(); err != nil {
			return it.throwErr(err)
		}
	}
	if err := it.Gate.CheckNode(s); err != nil {
		return it.throwErr(err)
	}
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		v, err := it.evalExpression(n.Expr, scope)
		if err != nil {
			return it.throwErr(err)
		}
		return normalC(v)
	case *ast.BlockStatement:
		return it.evalBlock(n.Body, env.New(scope, env.KindBlock))
	case *ast.EmptyStatement:
		return emptyNormal
	case *ast.VarDeclaration:
		return it.evalVarDeclaration(n, scope)
	case *ast.FunctionDeclaration:
		// Already bound at hoist time for top-level bodies; a block-scoped
		// function declaration binds and initializes here, the point the
		// block's own evaluation reaches it.
		if n.ID != nil {
			if b, _, ok := scope.Lookup(n.ID.Name); ok && !b.Initialized {
				fn := it.makeFunction(n.ID.Name, n.Params, n.Body, n.Generator, n.Async, scope, value.Ref{})
				b.Initialize(fn)
			}
		}
		return emptyNormal
	case *ast.ClassDeclaration:
		v, err := it.evalClassDeclaration(n, scope)
		if err != nil {
			return it.throwErr(err)
		}
		if n.ID != nil {
			if b, _, ok := scope.Lookup(n.ID.Name); ok {
				b.Initialize(v)
			}
		}
		return emptyNormal
	case *ast.IfStatement:
		test, err := it.evalExpression(n.Test, scope)
		if err != nil {
			return it.throwErr(err)
		}
		if value.ToBoolean(test) {
			return it.evalStatement(n.Consequent, scope)
		} else if n.Alternate != nil {
			return it.evalStatement(n.Alternate, scope)
		}
		return emptyNormal
	case *ast.WhileStatement:
		return it.evalWhile(n, scope, "")
	case *ast.DoWhileStatement:
		return it.evalDoWhile(n, scope, "")
	case *ast.ForStatement:
		return it.evalFor(n, scope, "")
	case *ast.ForInStatement:
		return it.evalForIn(n, scope, "")
	case *ast.ForOfStatement:
		return it.evalForOf(n, scope, "")
	case *ast.BreakStatement:
		return breakC(n.Label)
	case *ast.ContinueStatement:
		return continueC(n.Label)
	case *ast.ReturnStatement:
		if n.Argument == nil {
			return returnC(value.Undefined{})
		}
		v, err := it.evalExpression(n.Argument, scope)
		if err != nil {
			return it.throwErr(err)
		}
		return returnC(v)
	case *ast.ThrowStatement:
		v, err := it.evalExpression(n.Argument, scope)
		if err != nil {
			return it.throwErr(err)
		}
		return throwC(v)
	case *ast.TryStatement:
		return it.evalTry(n, scope)
	case *ast.SwitchStatement:
		return it.evalSwitch(n, scope)
	case *ast.LabeledStatement:
		return it.evalLabeled(n, scope)
	case *ast.ImportDeclaration, *ast.ExportNamedDeclaration,
		*ast.ExportDefaultDeclaration, *ast.ExportAllDeclaration:
		// Module-linkage statements are handled entirely by internal/module
		// before the body ever reaches the statement evaluator in a module
		// run; reaching one here in a plain script run is a gated feature
		// error raised by the CheckNode call above when Modules is disabled,
		// and a no-op otherwise (already linked).
		return emptyNormal
	default:
		return emptyNormal
	}
}

func (it *Interpreter) evalBlock(body []ast.Statement, scope *env.Environment) Completion {
	it.hoistVarNames2(body, scope)
	var last value.Value
	for _, s := range body {
		c := it.evalStatement(s, scope)
		if c.Kind != CompletionNormal {
			return c
		}
		if c.Value != nil {
			last = c.Value
		}
	}
	return normalC(last)
}

// hoistVarNames2 declares this block's own let/const/class/function names
// (TDZ) without touching the enclosing function-level var bindings, which
// were already hoisted once at Run/call entry.
func (it *Interpreter) hoistVarNames2(body []ast.Statement, scope *env.Environment) {
	for _, s := range body {
		switch d := s.(type) {
		case *ast.VarDeclaration:
			if d.Kind != "var" {
				for _, decl := range d.Declarations {
					bindPatternNames(decl.ID, func(name string) {
						if !scope.HasOwn(name) {
							kind := env.BindLet
							if d.Kind == "const" {
								kind = env.BindConst
							}
							scope.Declare(name, kind)
						}
					})
				}
			}
		case *ast.ClassDeclaration:
			if d.ID != nil && !scope.HasOwn(d.ID.Name) {
				scope.Declare(d.ID.Name, env.BindClass)
			}
		case *ast.FunctionDeclaration:
			if d.ID != nil && !scope.HasOwn(d.ID.Name) {
				scope.Declare(d.ID.Name, env.BindFunction)
			}
		}
	}
}

func (it *Interpreter) evalVarDeclaration(n *ast.VarDeclaration, scope *env.Environment) Completion {
	for _, decl := range n.Declarations {
		var v value.Value = value.Undefined{}
		if decl.Init != nil {
			val, err := it.evalExpression(decl.Init, scope)
			if err != nil {
				return it.throwErr(err)
			}
			v = val
			if id, ok := decl.ID.(*ast.Identifier); ok {
				it.nameAnonymous(v, id.Name)
			}
		}
		if err := it.bindPattern(decl.ID, v, scope, n.Kind); err != nil {
			return it.throwErr(err)
		}
	}
	return emptyNormal
}

// nameAnonymous sets an anonymous function/class value's display name
// from the identifier it's being bound to, matching the spec's
// NamedEvaluation rule for `const f = function() {}`/`const C = class {}`.
func (it *Interpreter) nameAnonymous(v value.Value, name string) {
	r, ok := v.(value.Ref)
	if !ok {
		return
	}
	if fo, ok := it.Heap.Get(r).(*value.FunctionObject); ok && fo.Name == "" {
		fo.Name = name
	}
}

func (it *Interpreter) evalWhile(n *ast.WhileStatement, scope *env.Environment, label string) Completion {
	for {
		test, err := it.evalExpression(n.Test, scope)
		if err != nil {
			return it.throwErr(err)
		}
		if !value.ToBoolean(test) {
			return emptyNormal
		}
		if it.gov != nil {
			if err := it.gov.TickLoop(); err != nil {
				return it.throwErr(err)
			}
		}
		c := it.evalStatement(n.Body, scope)
		if sig, done := handleLoopCompletion(c, label); done {
			return sig
		}
	}
}

func (it *Interpreter) evalDoWhile(n *ast.DoWhileStatement, scope *env.Environment, label string) Completion {
	for {
		if it.gov != nil {
			if err := it.gov.TickLoop(); err != nil {
				return it.throwErr(err)
			}
		}
		c := it.evalStatement(n.Body, scope)
		if sig, done := handleLoopCompletion(c, label); done {
			return sig
		}
		test, err := it.evalExpression(n.Test, scope)
		if err != nil {
			return it.throwErr(err)
		}
		if !value.ToBoolean(test) {
			return emptyNormal
		}
	}
}

func (it *Interpreter) evalFor(n *ast.ForStatement, scope *env.Environment, label string) Completion {
	loopScope := env.New(scope, env.KindBlock)
	if vd, ok := n.Init.(*ast.VarDeclaration); ok {
		if vd.Kind != "var" {
			for _, decl := range vd.Declarations {
				bindPatternNames(decl.ID, func(name string) {
					kind := env.BindLet
					if vd.Kind == "const" {
						kind = env.BindConst
					}
					loopScope.Declare(name, kind)
				})
			}
		}
		if c := it.evalVarDeclaration(vd, loopScope); c.Kind == CompletionThrow {
			return c
		}
	} else if n.Init != nil {
		if expr, ok := n.Init.(ast.Expression); ok {
			if _, err := it.evalExpression(expr, loopScope); err != nil {
				return it.throwErr(err)
			}
		}
	}
	for {
		if n.Test != nil {
			test, err := it.evalExpression(n.Test, loopScope)
			if err != nil {
				return it.throwErr(err)
			}
			if !value.ToBoolean(test) {
				return emptyNormal
			}
		}
		if it.gov != nil {
			if err := it.gov.TickLoop(); err != nil {
				return it.throwErr(err)
			}
		}
		// Each iteration gets its own copy of the loop-head bindings (only
		// meaningful for let/const heads) so a closure captured inside the
		// body observes that iteration's value, per the per-iteration
		// environment rule for `for (let ...)`.
		iterScope := env.New(loopScope.Outer, env.KindBlock)
		for name, b := range loopScope.Bindings {
			copy := *b
			iterScope.Bindings[name] = &copy
		}
		c := it.evalStatement(n.Body, iterScope)
		for name, b := range iterScope.Bindings {
			if ob, ok := loopScope.Bindings[name]; ok {
				*ob = *b
			}
		}
		if sig, done := handleLoopCompletion(c, label); done {
			return sig
		}
		if n.Update != nil {
			if _, err := it.evalExpression(n.Update, loopScope); err != nil {
				return it.throwErr(err)
			}
		}
	}
}

func handleLoopCompletion(c Completion, label string) (Completion, bool) {
	switch c.Kind {
	case CompletionBreak:
		if c.Label == "" || c.Label == label {
			return emptyNormal, true
		}
		return c, true
	case CompletionContinue:
		if c.Label == "" || c.Label == label {
			return emptyNormal, false
		}
		return c, true
	case CompletionThrow, CompletionReturn:
		return c, true
	default:
		return emptyNormal, false
	}
}

func (it *Interpreter) evalTry(n *ast.TryStatement, scope *env.Environment) Completion {
	c := it.evalBlock(n.Block.Body, env.New(scope, env.KindBlock))
	if c.Kind == CompletionThrow && n.Handler != nil {
		catchScope := env.New(scope, env.KindBlock)
		bound := true
		if n.Handler.Param != nil {
			bindPatternNames(n.Handler.Param, func(name string) { catchScope.Declare(name, env.BindLet) })
			if err := it.bindPattern(n.Handler.Param, c.Value, catchScope, "let"); err != nil {
				c = it.throwErr(err)
				bound = false
			}
		}
		if bound {
			c = it.evalBlock(n.Handler.Body.Body, catchScope)
		}
	}
	if n.Finalizer != nil {
		fc := it.evalBlock(n.Finalizer.Body, env.New(scope, env.KindBlock))
		if fc.Kind != CompletionNormal {
			return fc
		}
	}
	return c
}

func (it *Interpreter) evalSwitch(n *ast.SwitchStatement, scope *env.Environment) Completion {
	disc, err := it.evalExpression(n.Discriminant, scope)
	if err != nil {
		return it.throwErr(err)
	}
	swScope := env.New(scope, env.KindBlock)
	for _, c := range n.Cases {
		it.hoistVarNames2(c.Consequent, swScope)
	}
	matched := -1
	defaultIdx := -1
	for i, c := range n.Cases {
		if c.Test == nil {
			defaultIdx = i
			continue
		}
		tv, err := it.evalExpression(c.Test, swScope)
		if err != nil {
			return it.throwErr(err)
		}
		if value.SameValueZero(disc, tv) && disc.Kind() == tv.Kind() {
			matched = i
			break
		}
	}
	if matched == -1 {
		matched = defaultIdx
	}
	if matched == -1 {
		return emptyNormal
	}
	for i := matched; i < len(n.Cases); i++ {
		for _, st := range n.Cases[i].Consequent {
			c := it.evalStatement(st, swScope)
			if c.Kind == CompletionBreak && c.Label == "" {
				return emptyNormal
			}
			if c.Kind != CompletionNormal {
				return c
			}
		}
	}
	return emptyNormal
}

func (it *Interpreter) evalLabeled(n *ast.LabeledStatement, scope *env.Environment) Completion {
	var c Completion
	switch body := n.Body.(type) {
	case *ast.WhileStatement:
		c = it.evalWhile(body, scope, n.Label)
	case *ast.DoWhileStatement:
		c = it.evalDoWhile(body, scope, n.Label)
	case *ast.ForStatement:
		c = it.evalFor(body, scope, n.Label)
	case *ast.ForInStatement:
		c = it.evalForIn(body, scope, n.Label)
	case *ast.ForOfStatement:
		c = it.evalForOf(body, scope, n.Label)
	default:
		c = it.evalStatement(n.Body, scope)
	}
	if c.Kind == CompletionBreak && c.Label == n.Label {
		return emptyNormal
	}
	return c
}
