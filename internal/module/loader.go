package module

import (
	"context"
	"fmt"

	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/env"
	"github.com/vaultjs/vaultjs/internal/governor"
	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/parser"
	"github.com/vaultjs/vaultjs/internal/value"
)

// defaultMaxDepth bounds the import graph's depth as a safety backstop
// against a misbehaving Resolver that keeps minting new specifiers
// (there is no other way a well-formed graph could recurse forever, since
// genuine cycles are caught by the module cache instead).
const defaultMaxDepth = 500

// Loader resolves, links, and evaluates one ES-module dependency graph
// against a single Interpreter. It generalizes the teacher's
// UnitRegistry (a case-insensitive unit-name cache plus a search-path
// list, loading each `uses` dependency eagerly and erroring outright on a
// cycle) to ES modules: identity is a Resolver-produced path, the cache
// is keyed by that path, and a cycle is linked around — each module's
// export bindings exist (TDZ or not) before any module's body runs — not
// rejected outright.
type Loader struct {
	it       *interp.Interpreter
	resolver Resolver
	maxDepth int
	limits   governor.Limits

	cache map[string]*Module // keyed by resolved Path
}

// NewLoader builds a Loader. maxDepth <= 0 uses defaultMaxDepth; limits
// governs every module body's evaluation the same way they would a plain
// script Run.
func NewLoader(it *interp.Interpreter, resolver Resolver, maxDepth int, limits governor.Limits) *Loader {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	return &Loader{it: it, resolver: resolver, maxDepth: maxDepth, limits: limits, cache: make(map[string]*Module)}
}

// Clear empties the module cache, forcing every subsequently imported
// specifier to be re-resolved, re-parsed, and re-evaluated from scratch.
// Used by a host that wants a fresh module graph without rebuilding the
// whole Loader (and losing its maxDepth/limits configuration).
func (l *Loader) Clear() {
	l.cache = make(map[string]*Module)
}

// Get returns the cached Module at the resolved path rm.Path without
// triggering any load, for cache introspection (a host asking "what did
// path export" after a Load already ran).
func (l *Loader) Get(path string) (*Module, bool) {
	m, ok := l.cache[path]
	return m, ok
}

// Load resolves specifier relative to importerPath, links the full
// dependency graph reachable from it, evaluates every not-yet-evaluated
// module in dependency-first order, and returns the entry module.
func (l *Loader) Load(ctx context.Context, specifier, importerPath string) (*Module, error) {
	m, err := l.link(specifier, importerPath, 0)
	if err != nil {
		return nil, err
	}
	visiting := make(map[string]bool)
	if err := l.evalAll(ctx, m, visiting); err != nil {
		return nil, err
	}
	return m, nil
}

// link resolves specifier, and if not already cached, parses it and
// recursively links every module it imports, aliasing import bindings to
// the exact *env.Binding the dependency exports (a live reference: once
// the dependency's own declaration runs, every importer sees the same
// value with no copy step). Registering the Module in the cache before
// recursing into its own imports is what lets a cycle resolve instead of
// infinite-looping: a module reached a second time while still being
// linked just returns the same (partially-linked but already-hoisted,
// already-named-exported) Module.
func (l *Loader) link(specifier, importerPath string, depth int) (*Module, error) {
	if depth > l.maxDepth {
		return nil, fmt.Errorf("module graph exceeds max depth %d resolving %q", l.maxDepth, specifier)
	}
	rm, err := l.resolver.Resolve(specifier, importerPath)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %q from %q: %w", specifier, importerPath, err)
	}
	if m, ok := l.cache[rm.Path]; ok {
		return m, nil
	}

	p := parser.New(rm.Source, parser.Options{Module: true})
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("module %q has parse errors: %s", rm.Path, errs[0].Error())
	}

	rewritten, imports, named, stars := desugarModule(prog.Body)
	modEnv := env.NewModule()
	m := &Module{
		Path:    rm.Path,
		Source:  rm.Source,
		Program: &ast.Program{Body: rewritten, IsModule: true},
		Env:     modEnv,
		State:   StateLinking,
	}
	l.cache[rm.Path] = m

	l.it.HoistModule(rewritten, modEnv)

	for _, ne := range named {
		if ne.source != "" {
			continue // resolved below, once the source module is linked
		}
		b, _, ok := modEnv.Lookup(ne.local)
		if !ok {
			return nil, fmt.Errorf("module %q: export of undeclared binding %q", rm.Path, ne.local)
		}
		modEnv.Exports[ne.exported] = b
	}

	for _, is := range imports {
		dep, err := l.link(is.source, rm.Path, depth+1)
		if err != nil {
			return nil, err
		}
		m.deps = append(m.deps, dep)
		switch is.kind {
		case "side-effect":
			// linked for effect only, no binding introduced
		case "default":
			b, ok := dep.Env.Exports["default"]
			if !ok {
				return nil, fmt.Errorf("module %q has no default export, imported by %q", dep.Path, rm.Path)
			}
			modEnv.Bindings[is.local] = b
		case "namespace":
			modEnv.Bindings[is.local] = l.namespaceBinding(dep)
		default: // "named"
			b, ok := dep.Env.Exports[is.imported]
			if !ok {
				return nil, fmt.Errorf("module %q has no export %q, imported by %q", dep.Path, is.imported, rm.Path)
			}
			modEnv.Bindings[is.local] = b
		}
	}

	for _, ne := range named {
		if ne.source == "" {
			continue
		}
		dep, err := l.link(ne.source, rm.Path, depth+1)
		if err != nil {
			return nil, err
		}
		m.deps = append(m.deps, dep)
		b, ok := dep.Env.Exports[ne.local]
		if !ok {
			return nil, fmt.Errorf("module %q has no export %q, re-exported by %q", dep.Path, ne.local, rm.Path)
		}
		modEnv.Exports[ne.exported] = b
	}

	for _, sa := range stars {
		dep, err := l.link(sa.source, rm.Path, depth+1)
		if err != nil {
			return nil, err
		}
		m.deps = append(m.deps, dep)
		if sa.exported != "" {
			modEnv.Exports[sa.exported] = l.namespaceBinding(dep)
			continue
		}
		for name, b := range dep.Env.Exports {
			if name == "default" {
				continue
			}
			if _, exists := modEnv.Exports[name]; !exists {
				modEnv.Exports[name] = b
			}
		}
	}

	m.State = StateLinked
	return m, nil
}

// evalAll runs a post-order dependency walk, evaluating each module's
// body exactly once. visiting breaks cycles: a module already on the
// current DFS path is skipped rather than re-entered (its own call frame
// further up the stack will evaluate it once its own dependencies are
// done).
func (l *Loader) evalAll(ctx context.Context, m *Module, visiting map[string]bool) error {
	if m.State == StateEvaluated || visiting[m.Path] {
		return nil
	}
	visiting[m.Path] = true
	for _, dep := range m.deps {
		if err := l.evalAll(ctx, dep, visiting); err != nil {
			return err
		}
	}
	m.State = StateEvaluating
	if verr := l.it.EvalModuleBody(ctx, m.Program.Body, m.Env, l.limits); verr != nil {
		return verr
	}
	m.State = StateEvaluated
	return nil
}

// ImportDynamic satisfies interp.DynamicImporter: a dynamic `import()`
// runs the same link-then-evaluate path as a static import, synchronously
// (matching this engine's run-to-completion async model), and returns the
// resolved module's namespace object.
func (l *Loader) ImportDynamic(specifier, importerPath string) (value.Ref, error) {
	m, err := l.Load(context.Background(), specifier, importerPath)
	if err != nil {
		return value.Ref{}, err
	}
	return l.namespaceFor(m), nil
}

// namespaceBinding returns a synthetic, already-initialized *env.Binding
// whose Value is dep's namespace object, building that object on first
// request. Used both for `import * as ns` and `export * as ns from`.
func (l *Loader) namespaceBinding(dep *Module) *env.Binding {
	return &env.Binding{Kind: env.BindConst, Initialized: true, Value: l.namespaceFor(dep)}
}

// namespaceFor lazily builds dep's frozen namespace object: one
// non-configurable accessor property per export name, reading through to
// the live binding at access time, plus a `default` key whenever the
// module has one. The result is cached on the Module so repeated imports
// share one identity, matching the module-namespace-exotic-object
// singleton rule.
func (l *Loader) namespaceFor(dep *Module) value.Ref {
	if dep.Namespace != (value.Ref{}) {
		return dep.Namespace
	}
	it := l.it
	obj := value.NewPlainObject(value.Ref{}, false)
	obj.Class = "Module"
	obj.Extensible = false
	for name, b := range dep.Env.Exports {
		binding := b
		getter := &value.FunctionObject{
			Name: "get " + name,
			Kind: value.FuncNormal,
			Native: func(value.NativeArgs) (value.Value, error) {
				if !binding.Initialized {
					return value.Undefined{}, nil
				}
				return binding.Value, nil
			},
		}
		getRef := it.Heap.Alloc(getter)
		key := value.StringKey(name)
		obj.Keys = append(obj.Keys, key)
		obj.Props[key] = &value.PropertyDescriptor{HasGet: true, Get: getRef, Enumerable: true, Configurable: false}
	}
	ref := it.Heap.Alloc(obj)
	dep.Namespace = ref
	return ref
}
