// Package env implements the lexical environment chain: scope records,
// bindings with temporal-dead-zone tracking, and var-hoisting to the
// nearest function/module scope.
package env

import "github.com/vaultjs/vaultjs/internal/value"

// Kind distinguishes the scope-record flavor, which controls what var
// hoisting targets and whether `with`-style shadow lookup is active.
type Kind int

const (
	KindModule Kind = iota
	KindFunction
	KindBlock
	KindClassBody
	KindWith
)

// BindingKind distinguishes declaration forms for TDZ and reassignment
// rules.
type BindingKind int

const (
	BindVar BindingKind = iota
	BindLet
	BindConst
	BindFunction
	BindClass
	BindParam
	BindImport
)

// Binding is one name's slot in an Environment.
type Binding struct {
	Kind        BindingKind
	Initialized bool
	Value       value.Value
}

// Environment is one scope record in the lexical chain.
type Environment struct {
	Kind     Kind
	Bindings map[string]*Binding
	Outer    *Environment

	// Exports holds live-binding references for a KindModule environment;
	// nil for every other kind.
	Exports map[string]*Binding

	// WithTarget is the shadow-lookup object for a KindWith environment;
	// zero value for every other kind. Held as `any` (a value.Ref) to
	// avoid forcing every environment to carry heap-typed fields.
	WithTarget any
	WithHas    func(name string) bool
	WithGet    func(name string) (value.Value, bool)
	WithSet    func(name string, v value.Value) bool
}

// New creates a child environment of outer with the given kind.
func New(outer *Environment, kind Kind) *Environment {
	return &Environment{Kind: kind, Bindings: make(map[string]*Binding), Outer: outer}
}

// NewModule creates a root module environment with an exports table.
func NewModule() *Environment {
	e := New(nil, KindModule)
	e.Exports = make(map[string]*Binding)
	return e
}

// Declare creates a new binding in this environment. kind==BindVar/BindFunction
// bindings start Initialized (hoisted, pre-set to undefined or the
// function value); let/const/class/import start uninitialized (TDZ) until
// Initialize is called at the point of their declaration's evaluation.
func (e *Environment) Declare(name string, kind BindingKind) *Binding {
	b := &Binding{Kind: kind}
	if kind == BindVar || kind == BindFunction || kind == BindParam {
		b.Initialized = true
		b.Value = value.Undefined{}
	}
	e.Bindings[name] = b
	return b
}

// Initialize marks a TDZ binding initialized with its first value,
// performed when a let/const/class/import declaration's initializer runs.
func (b *Binding) Initialize(v value.Value) {
	b.Value = v
	b.Initialized = true
}

// Lookup walks the chain for name, consulting `with` shadow objects at
// each KindWith link before falling through to its own bindings.
func (e *Environment) Lookup(name string) (*Binding, *Environment, bool) {
	for cur := e; cur != nil; cur = cur.Outer {
		if cur.Kind == KindWith && cur.WithHas != nil && cur.WithHas(name) {
			if v, ok := cur.WithGet(name); ok {
				return &Binding{Kind: BindVar, Initialized: true, Value: v}, cur, true
			}
		}
		if b, ok := cur.Bindings[name]; ok {
			return b, cur, true
		}
	}
	return nil, nil, false
}

// HoistTarget returns the nearest function or module environment that a
// `var`/function declaration in e hoists to.
func (e *Environment) HoistTarget() *Environment {
	for cur := e; cur != nil; cur = cur.Outer {
		if cur.Kind == KindFunction || cur.Kind == KindModule {
			return cur
		}
	}
	return e
}

// HasOwn reports whether name is declared directly in this environment
// (not an ancestor), used by hoisting to avoid redeclaring an existing
// binding.
func (e *Environment) HasOwn(name string) bool {
	_, ok := e.Bindings[name]
	return ok
}
