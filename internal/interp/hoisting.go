package interp

import (
	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/env"
	"github.com/vaultjs/vaultjs/internal/value"
)

// hoistVarsAndFunctions walks a statement list and declares every var
// binding (recursing into nested blocks/loops/try but not into nested
// function bodies) at the nearest function/module scope, then declares
// every top-level let/const/class binding (TDZ, not hoisted across
// blocks) directly in scope. topLevel distinguishes a function/program
// body, where FunctionDeclarations are additionally bound and initialized
// immediately, from a nested block, where they are only var-hoisted by
// name (their initialization happens in evalStatement when the
// declaration itself is reached, per block-scoped function semantics).
func (it *Interpreter) hoistVarsAndFunctions(body []ast.Statement, scope *env.Environment, topLevel bool) {
	target := scope.HoistTarget()
	for _, s := range body {
		it.hoistVarNames(s, target)
	}
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
			if topLevel && d.ID != nil {
				fn := it.makeFunction(d.ID.Name, d.Params, d.Body, d.Generator, d.Async, scope, value.Ref{})
				b := target.Bindings[d.ID.Name]
				if b == nil {
					b = target.Declare(d.ID.Name, env.BindFunction)
				}
				b.Initialize(fn)
			}
		}
	}
}

// hoistVarNames recurses through a statement's nested statement lists
// (but never into a nested function/arrow body) declaring every var name
// and every top-level function-declaration name it finds at target.
func (it *Interpreter) hoistVarNames(s ast.Statement, target *env.Environment) {
	switch n := s.(type) {
	case *ast.VarDeclaration:
		if n.Kind == "var" {
			for _, decl := range n.Declarations {
				bindPatternNames(decl.ID, func(name string) {
					if !target.HasOwn(name) {
						target.Declare(name, env.BindVar)
					}
				})
			}
		}
	case *ast.FunctionDeclaration:
		if n.ID != nil && !target.HasOwn(n.ID.Name) {
			target.Declare(n.ID.Name, env.BindFunction)
		}
	case *ast.BlockStatement:
		for _, st := range n.Body {
			it.hoistVarNames(st, target)
		}
	case *ast.IfStatement:
		it.hoistVarNames(n.Consequent, target)
		if n.Alternate != nil {
			it.hoistVarNames(n.Alternate, target)
		}
	case *ast.ForStatement:
		if vd, ok := n.Init.(*ast.VarDeclaration); ok {
			it.hoistVarNames(vd, target)
		}
		it.hoistVarNames(n.Body, target)
	case *ast.ForInStatement:
		if vd, ok := n.Left.(*ast.VarDeclaration); ok {
			it.hoistVarNames(vd, target)
		}
		it.hoistVarNames(n.Body, target)
	case *ast.ForOfStatement:
		if vd, ok := n.Left.(*ast.VarDeclaration); ok {
			it.hoistVarNames(vd, target)
		}
		it.hoistVarNames(n.Body, target)
	case *ast.WhileStatement:
		it.hoistVarNames(n.Body, target)
	case *ast.DoWhileStatement:
		it.hoistVarNames(n.Body, target)
	case *ast.TryStatement:
		it.hoistVarNames(n.Block, target)
		if n.Handler != nil {
			it.hoistVarNames(n.Handler.Body, target)
		}
		if n.Finalizer != nil {
			it.hoistVarNames(n.Finalizer, target)
		}
	case *ast.SwitchStatement:
		for _, c := range n.Cases {
			for _, st := range c.Consequent {
				it.hoistVarNames(st, target)
			}
		}
	case *ast.LabeledStatement:
		it.hoistVarNames(n.Body, target)
	}
}

// bindPatternNames invokes fn with every identifier name bound by a
// destructuring pattern or plain identifier.
func bindPatternNames(pat ast.Expression, fn func(name string)) {
	switch p := pat.(type) {
	case *ast.Identifier:
		fn(p.Name)
	case *ast.ArrayPattern:
		for _, el := range p.Elements {
			if el != nil {
				bindPatternNames(el, fn)
			}
		}
	case *ast.ObjectPattern:
		for _, prop := range p.Properties {
			bindPatternNames(prop.Value, fn)
		}
		if p.Rest != nil {
			bindPatternNames(p.Rest.Argument, fn)
		}
	case *ast.AssignmentPattern:
		bindPatternNames(p.Left, fn)
	case *ast.RestElement:
		bindPatternNames(p.Argument, fn)
	}
}
