// Package module implements the ES-module dependency graph: resolution,
// linking (pre-declaring every export binding before any module body
// runs, so import cycles observe each other's temporal-dead-zone state
// instead of erroring), and evaluation in dependency-first order.
//
// It generalizes the teacher's internal/units package (a Pascal
// uses-clause unit loader: case-insensitive name registry, search-path
// list, eager load-and-error-on-cycle semantics) to ES modules: identity
// is a resolver-produced path rather than a unit name, the cache is
// keyed by that path, and a dependency cycle is linked-around rather than
// rejected, matching how real ES module graphs behave.
package module

// ResolvedModule is what a Resolver hands back for one specifier: enough
// to parse and identity-cache the target module. Path is the resolved,
// canonical module identity (used as the cache key and import-cycle
// detection key); Source is the module's full text.
type ResolvedModule struct {
	Path   string
	Source string
}

// Resolver maps an import specifier, relative to the importing module's
// own resolved path, to a ResolvedModule. A host embeds vaultjs by
// implementing Resolver over its own filesystem/bundle/virtual-FS
// conventions; vaultjs ships no default resolution policy of its own
// (bare-specifier lookup, extension inference, directory indexes are all
// host decisions, not engine ones) — pkg/vaultjs wires a host-supplied
// Resolver into a Loader.
type Resolver interface {
	Resolve(specifier, importerPath string) (*ResolvedModule, error)
}
