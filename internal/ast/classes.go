package ast

// MethodDefinition is a method, getter, setter, or constructor on a class
// body. Key is an *Identifier, *PrivateIdentifier, *StringLiteral, or a
// computed Expression (see Computed).
type MethodDefinition struct {
	Base
	Key      Expression
	Value    *FunctionExpression
	Kind     string // "method", "get", "set", "constructor"
	Static   bool
	Computed bool
}

func (*MethodDefinition) node() {}

// PropertyDefinition is a class field, `key = value;` (instance or static).
type PropertyDefinition struct {
	Base
	Key      Expression
	Value    Expression // may be nil (uninitialized field)
	Static   bool
	Computed bool
}

func (*PropertyDefinition) node() {}

// StaticBlock is a `static { ... }` class initialization block. StaticBlocks
// interleave with static PropertyDefinitions in source order; see the class
// system's initialization-order handling.
type StaticBlock struct {
	Base
	Body []Statement
}

func (*StaticBlock) node() {}

// ClassMember is the union of MethodDefinition, PropertyDefinition, and
// StaticBlock, distinguished by a type switch at class-definition time.
type ClassMember interface {
	Node
}

// ClassDeclaration is a named class declaration.
type ClassDeclaration struct {
	Base
	ID         *Identifier
	SuperClass Expression // may be nil
	Body       []ClassMember
}

func (*ClassDeclaration) stmtNode() {}

// ClassExpression is an (optionally named) class expression.
type ClassExpression struct {
	Base
	ID         *Identifier // may be nil
	SuperClass Expression  // may be nil
	Body       []ClassMember
}

func (*ClassExpression) exprNode() {}
