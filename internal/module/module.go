package module

import (
	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/env"
	"github.com/vaultjs/vaultjs/internal/value"
)

// State tracks a Module's position in the link/evaluate lifecycle, mostly
// to catch a Loader bug (evaluating before linking finishes) rather than
// to drive behavior: a cycle is handled by the cache entry existing
// before recursion, not by checking State.
type State int

const (
	StateLinking State = iota
	StateLinked
	StateEvaluating
	StateEvaluated
)

// Module is one node of the dependency graph: a parsed program linked to
// its own module-kind environment and the frozen namespace object guest
// code sees for `import * as ns from "...".`
type Module struct {
	Path    string
	Source  string
	Program *ast.Program
	Env     *env.Environment

	Namespace value.Ref
	State     State

	// deps, in source import order, for diagnostics and cycle messages.
	deps []*Module
}
