package ast

// ImportSpecifier is one binding introduced by an ImportDeclaration.
// Kind is "named" (`{imported as local}`), "default" (`local`), or
// "namespace" (`* as local`). Imported is nil for "default" and
// "namespace" kinds.
type ImportSpecifier struct {
	Base
	Kind     string
	Imported *Identifier
	Local    *Identifier
}

func (*ImportSpecifier) node() {}

// ImportDeclaration is `import ... from "source";`, or a bare
// `import "source";` when Specifiers is empty.
type ImportDeclaration struct {
	Base
	Specifiers []*ImportSpecifier
	Source     string
}

func (*ImportDeclaration) stmtNode() {}

// ExportSpecifier is one `{local as exported}` entry of a named export
// list.
type ExportSpecifier struct {
	Base
	Local    *Identifier
	Exported *Identifier
}

func (*ExportSpecifier) node() {}

// ExportNamedDeclaration is `export <declaration>` or
// `export {specifiers} [from "source"];`.
type ExportNamedDeclaration struct {
	Base
	Declaration Statement // may be nil when Specifiers is used instead
	Specifiers  []*ExportSpecifier
	Source      string // re-export source, may be empty
}

func (*ExportNamedDeclaration) stmtNode() {}

// ExportDefaultDeclaration is `export default <expr-or-decl>;`.
type ExportDefaultDeclaration struct {
	Base
	Declaration Node // Expression, *FunctionDeclaration, or *ClassDeclaration
}

func (*ExportDefaultDeclaration) stmtNode() {}

// ExportAllDeclaration is `export * [as exported] from "source";`.
type ExportAllDeclaration struct {
	Base
	Source   string
	Exported string // empty when no "as" clause
}

func (*ExportAllDeclaration) stmtNode() {}
