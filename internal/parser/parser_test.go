package parser

import (
	"testing"

	"github.com/vaultjs/vaultjs/internal/ast"
)

func parseOK(t *testing.T, src string, opts Options) *ast.Program {
	t.Helper()
	p := New(src, opts)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}
	return prog
}

func TestParseVarDeclaration(t *testing.T) {
	prog := parseOK(t, "let x = 1;", Options{})
	if len(prog.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Body))
	}
	decl, ok := prog.Body[0].(*ast.VarDeclaration)
	if !ok {
		t.Fatalf("expected *ast.VarDeclaration, got %T", prog.Body[0])
	}
	if decl.Kind != "let" {
		t.Fatalf("expected kind %q, got %q", "let", decl.Kind)
	}
	if len(decl.Declarations) != 1 {
		t.Fatalf("expected 1 declarator, got %d", len(decl.Declarations))
	}
	id, ok := decl.Declarations[0].ID.(*ast.Identifier)
	if !ok || id.Name != "x" {
		t.Fatalf("expected identifier x, got %#v", decl.Declarations[0].ID)
	}
	lit, ok := decl.Declarations[0].Init.(*ast.NumericLiteral)
	if !ok || lit.Value != 1 {
		t.Fatalf("expected numeric literal 1, got %#v", decl.Declarations[0].Init)
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3), i.e. the top-level operator is '+'.
	prog := parseOK(t, "1 + 2 * 3;", Options{})
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	bin, ok := stmt.Expr.(*ast.BinaryExpression)
	if !ok {
		t.Fatalf("expected *ast.BinaryExpression at the top, got %T", stmt.Expr)
	}
	if bin.Operator != "+" {
		t.Fatalf("expected top operator '+', got %q", bin.Operator)
	}
	rhs, ok := bin.Right.(*ast.BinaryExpression)
	if !ok || rhs.Operator != "*" {
		t.Fatalf("expected right operand to be '2 * 3', got %#v", bin.Right)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := parseOK(t, "if (x) { y(); } else { z(); }", Options{})
	ifStmt, ok := prog.Body[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected *ast.IfStatement, got %T", prog.Body[0])
	}
	if ifStmt.Consequent == nil || ifStmt.Alternate == nil {
		t.Fatal("expected both a consequent and an alternate branch")
	}
}

func TestParseFunctionDeclaration(t *testing.T) {
	prog := parseOK(t, "function add(a, b) { return a + b; }", Options{})
	fn, ok := prog.Body[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected *ast.FunctionDeclaration, got %T", prog.Body[0])
	}
	if fn.ID == nil || fn.ID.Name != "add" {
		t.Fatalf("expected function name %q, got %#v", "add", fn.ID)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
}

func TestParseArrowFunction(t *testing.T) {
	prog := parseOK(t, "const f = (a, b) => a + b;", Options{})
	decl := prog.Body[0].(*ast.VarDeclaration)
	arrow, ok := decl.Declarations[0].Init.(*ast.ArrowFunctionExpression)
	if !ok {
		t.Fatalf("expected *ast.ArrowFunctionExpression, got %T", decl.Declarations[0].Init)
	}
	if len(arrow.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(arrow.Params))
	}
}

func TestParseOptionalChaining(t *testing.T) {
	prog := parseOK(t, "a?.b.c;", Options{})
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	outer, ok := stmt.Expr.(*ast.MemberExpression)
	if !ok {
		t.Fatalf("expected *ast.MemberExpression, got %T", stmt.Expr)
	}
	inner, ok := outer.Object.(*ast.MemberExpression)
	if !ok {
		t.Fatalf("expected a nested MemberExpression for a?.b, got %T", outer.Object)
	}
	if !inner.Optional {
		t.Fatal("expected the innermost member access (a?.b) to be marked Optional")
	}
	if outer.Optional {
		t.Fatal("a plain '.c' following '?.' should not itself be marked Optional")
	}
}

func TestParseTemplateLiteral(t *testing.T) {
	prog := parseOK(t, "`hello ${name}!`;", Options{})
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	tmpl, ok := stmt.Expr.(*ast.TemplateLiteral)
	if !ok {
		t.Fatalf("expected *ast.TemplateLiteral, got %T", stmt.Expr)
	}
	if len(tmpl.Expressions) != 1 {
		t.Fatalf("expected 1 substitution, got %d", len(tmpl.Expressions))
	}
}

func TestParseClassWithPrivateField(t *testing.T) {
	prog := parseOK(t, "class Counter { #count = 0; increment() { this.#count += 1; } }", Options{})
	cls, ok := prog.Body[0].(*ast.ClassDeclaration)
	if !ok {
		t.Fatalf("expected *ast.ClassDeclaration, got %T", prog.Body[0])
	}
	if len(cls.Body) != 2 {
		t.Fatalf("expected 2 class members, got %d", len(cls.Body))
	}
}

func TestParseModuleImportExport(t *testing.T) {
	prog := parseOK(t, `import { a } from "a.js"; export const b = a + 1;`, Options{Module: true})
	if !prog.IsModule {
		t.Fatal("expected IsModule to be true")
	}
	if _, ok := prog.Body[0].(*ast.ImportDeclaration); !ok {
		t.Fatalf("expected *ast.ImportDeclaration, got %T", prog.Body[0])
	}
	if _, ok := prog.Body[1].(*ast.ExportNamedDeclaration); !ok {
		t.Fatalf("expected *ast.ExportNamedDeclaration, got %T", prog.Body[1])
	}
}

func TestParseForOf(t *testing.T) {
	prog := parseOK(t, "for (const x of xs) { sum += x; }", Options{})
	if _, ok := prog.Body[0].(*ast.ForOfStatement); !ok {
		t.Fatalf("expected *ast.ForOfStatement, got %T", prog.Body[0])
	}
}

func TestParseErrorsAreCollectedNotPanicked(t *testing.T) {
	p := New("let = ;", Options{})
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected at least one syntax error for a malformed declaration")
	}
}

func TestAutomaticSemicolonInsertion(t *testing.T) {
	// No semicolon after the return expression, followed by a newline: ASI
	// should accept the statement without a ';' before the closing brace.
	prog := parseOK(t, "function f() {\n  return 1\n}", Options{})
	fn := prog.Body[0].(*ast.FunctionDeclaration)
	if len(fn.Body.Body) != 1 {
		t.Fatalf("expected 1 statement in the function body, got %d", len(fn.Body.Body))
	}
}
