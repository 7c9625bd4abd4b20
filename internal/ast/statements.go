package ast

// ExpressionStatement wraps an expression evaluated for its side effects.
type ExpressionStatement struct {
	Base
	Expr Expression
}

func (*ExpressionStatement) stmtNode() {}

// BlockStatement is a `{ ... }` statement list introducing a block scope.
type BlockStatement struct {
	Base
	Body []Statement
}

func (*BlockStatement) stmtNode() {}

// EmptyStatement is a lone `;`.
type EmptyStatement struct{ Base }

func (*EmptyStatement) stmtNode() {}

// VarDeclarator binds ID (a pattern) to the value of Init, if present.
type VarDeclarator struct {
	Base
	ID   Expression // pattern
	Init Expression // may be nil
}

func (*VarDeclarator) node() {}

// VarDeclaration is a `var`/`let`/`const` declaration statement.
type VarDeclaration struct {
	Base
	Kind         string // "var", "let", "const"
	Declarations []*VarDeclarator
}

func (*VarDeclaration) stmtNode() {}

// IfStatement is `if (test) consequent else alternate`.
type IfStatement struct {
	Base
	Test       Expression
	Consequent Statement
	Alternate  Statement // may be nil
}

func (*IfStatement) stmtNode() {}

// ForStatement is the classic three-clause `for (init; test; update) body`.
// Init may be a *VarDeclaration or an Expression or nil.
type ForStatement struct {
	Base
	Init   Node
	Test   Expression
	Update Expression
	Body   Statement
}

func (*ForStatement) stmtNode() {}

// ForInStatement is `for (left in right) body`.
type ForInStatement struct {
	Base
	Left  Node // *VarDeclaration or pattern Expression
	Right Expression
	Body  Statement
}

func (*ForInStatement) stmtNode() {}

// ForOfStatement is `for [await] (left of right) body`.
type ForOfStatement struct {
	Base
	Left  Node
	Right Expression
	Body  Statement
	Await bool
}

func (*ForOfStatement) stmtNode() {}

// WhileStatement is `while (test) body`.
type WhileStatement struct {
	Base
	Test Expression
	Body Statement
}

func (*WhileStatement) stmtNode() {}

// DoWhileStatement is `do body while (test);`.
type DoWhileStatement struct {
	Base
	Body Statement
	Test Expression
}

func (*DoWhileStatement) stmtNode() {}

// BreakStatement is `break [label];`.
type BreakStatement struct {
	Base
	Label string
}

func (*BreakStatement) stmtNode() {}

// ContinueStatement is `continue [label];`.
type ContinueStatement struct {
	Base
	Label string
}

func (*ContinueStatement) stmtNode() {}

// ReturnStatement is `return [argument];`.
type ReturnStatement struct {
	Base
	Argument Expression // may be nil
}

func (*ReturnStatement) stmtNode() {}

// ThrowStatement is `throw argument;`.
type ThrowStatement struct {
	Base
	Argument Expression
}

func (*ThrowStatement) stmtNode() {}

// CatchClause is the `catch (param) body` part of a TryStatement. Param is
// nil for an optional-catch-binding-omitted clause.
type CatchClause struct {
	Base
	Param Expression // pattern, may be nil
	Body  *BlockStatement
}

func (*CatchClause) node() {}

// TryStatement is `try block [catch] [finally]`.
type TryStatement struct {
	Base
	Block     *BlockStatement
	Handler   *CatchClause // may be nil
	Finalizer *BlockStatement // may be nil
}

func (*TryStatement) stmtNode() {}

// SwitchCase is one `case test:`/`default:` arm of a SwitchStatement. Test
// is nil for the default arm.
type SwitchCase struct {
	Base
	Test       Expression
	Consequent []Statement
}

func (*SwitchCase) node() {}

// SwitchStatement is `switch (discriminant) { cases }`.
type SwitchStatement struct {
	Base
	Discriminant Expression
	Cases        []*SwitchCase
}

func (*SwitchStatement) stmtNode() {}

// LabeledStatement is `label: body`, giving Body a name reachable from a
// labeled break/continue anywhere inside it.
type LabeledStatement struct {
	Base
	Label string
	Body  Statement
}

func (*LabeledStatement) stmtNode() {}

// FunctionDeclaration is a named, hoisted function/generator/async
// declaration.
type FunctionDeclaration struct {
	Base
	ID        *Identifier
	Params    []Expression
	Body      *BlockStatement
	Generator bool
	Async     bool
}

func (*FunctionDeclaration) stmtNode() {}
