// Package ast defines the abstract syntax tree node types for the vaultjs
// scripting language (a JavaScript-compatible subset up to and including
// ES2024). Every node carries a source span for diagnostics; the core
// evaluator assumes a well-formed tree and treats structural mismatches as
// parse-category errors referencing the offending span.
package ast

// Position is a single point in source text, one-indexed.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Span is the half-open source range covered by a node.
type Span struct {
	Start Position
	End   Position
}

// Node is the base interface implemented by every AST node.
type Node interface {
	Span() Span
	node()
}

// Statement is any node that performs an action without producing a value.
type Statement interface {
	Node
	stmtNode()
}

// Expression is any node that produces a value. Destructuring patterns
// (ArrayPattern, ObjectPattern, AssignmentPattern, RestElement, and plain
// Identifier/MemberExpression) are represented as Expression so they can
// appear uniformly in parameter lists, variable declarators, and
// assignment left-hand sides; the evaluator distinguishes pattern position
// from value position by context, not by a separate interface.
type Expression interface {
	Node
	exprNode()
}

// Base carries the span shared by every concrete node and satisfies node().
type Base struct {
	Loc Span
}

func (b Base) Span() Span { return b.Loc }
func (Base) node()        {}

// Program is the root of a parsed script or module.
type Program struct {
	Base
	Body     []Statement
	Hashbang string // text following a leading "#!" line, if any
	IsModule bool
}

func (*Program) stmtNode() {}
