package ast

// ArrayExpression is an array literal. A nil element represents an elision
// hole (`[1, , 3]`); a *SpreadElement element represents `...x`.
type ArrayExpression struct {
	Base
	Elements []Expression
}

func (*ArrayExpression) exprNode() {}

// Property is one entry of an ObjectExpression.
type Property struct {
	Base
	Key       Expression
	Value     Expression
	Computed  bool
	Shorthand bool
	Method    bool
	Kind      string // "init", "get", "set", "spread"
}

func (*Property) node() {}

// ObjectExpression is an object literal.
type ObjectExpression struct {
	Base
	Properties []*Property
}

func (*ObjectExpression) exprNode() {}

// SpreadElement is `...expr` inside an array/object literal or call args.
type SpreadElement struct {
	Base
	Argument Expression
}

func (*SpreadElement) exprNode() {}

// FunctionExpression is a named or anonymous function expression,
// including generator and async variants.
type FunctionExpression struct {
	Base
	ID        *Identifier
	Params    []Expression // patterns
	Body      *BlockStatement
	Generator bool
	Async     bool
}

func (*FunctionExpression) exprNode() {}

// ArrowFunctionExpression is `(params) => body`. Body is either an
// Expression (concise body) or a *BlockStatement.
type ArrowFunctionExpression struct {
	Base
	Params         []Expression
	Body           Node
	Async          bool
	ExpressionBody bool
}

func (*ArrowFunctionExpression) exprNode() {}

// UnaryExpression is a prefix unary operator: -, +, !, ~, typeof, void, delete.
type UnaryExpression struct {
	Base
	Operator string
	Argument Expression
}

func (*UnaryExpression) exprNode() {}

// UpdateExpression is ++/-- in prefix or postfix position.
type UpdateExpression struct {
	Base
	Operator string
	Argument Expression
	Prefix   bool
}

func (*UpdateExpression) exprNode() {}

// BinaryExpression is any non-logical binary operator, including `**`.
type BinaryExpression struct {
	Base
	Operator string
	Left     Expression
	Right    Expression
}

func (*BinaryExpression) exprNode() {}

// LogicalExpression is &&, ||, or ??.
type LogicalExpression struct {
	Base
	Operator string
	Left     Expression
	Right    Expression
}

func (*LogicalExpression) exprNode() {}

// AssignmentExpression is `left op right`, where op may be "=" or a
// compound/logical-assignment operator (+=, ||=, &&=, ??=, ...).
type AssignmentExpression struct {
	Base
	Operator string
	Left     Expression // pattern in the "=" destructuring case
	Right    Expression
}

func (*AssignmentExpression) exprNode() {}

// ConditionalExpression is `test ? consequent : alternate`.
type ConditionalExpression struct {
	Base
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

func (*ConditionalExpression) exprNode() {}

// CallExpression is `callee(args)`, optionally short-circuiting via `?.(`.
type CallExpression struct {
	Base
	Callee    Expression
	Arguments []Expression
	Optional  bool
}

func (*CallExpression) exprNode() {}

// NewExpression is `new callee(args)`.
type NewExpression struct {
	Base
	Callee    Expression
	Arguments []Expression
}

func (*NewExpression) exprNode() {}

// MemberExpression is `object.property` or `object[property]`, optionally
// short-circuiting via `?.`.
type MemberExpression struct {
	Base
	Object   Expression
	Property Expression
	Computed bool
	Optional bool
}

func (*MemberExpression) exprNode() {}

// SequenceExpression is the comma operator: `a, b, c`.
type SequenceExpression struct {
	Base
	Expressions []Expression
}

func (*SequenceExpression) exprNode() {}

// YieldExpression is `yield expr` or `yield* expr` inside a generator body.
type YieldExpression struct {
	Base
	Argument Expression // may be nil
	Delegate bool
}

func (*YieldExpression) exprNode() {}

// AwaitExpression is `await expr` inside an async function body.
type AwaitExpression struct {
	Base
	Argument Expression
}

func (*AwaitExpression) exprNode() {}

// ImportExpression is the dynamic `import(specifier)` call form.
type ImportExpression struct {
	Base
	Source Expression
}

func (*ImportExpression) exprNode() {}
