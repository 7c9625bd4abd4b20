// Package class implements the private-field brand registry: allocating a
// distinct *value.PrivateName identity per declared `#name` per class, and
// checking whether a given instance carries the brand for a given private
// name before allowing field/method access. The constructor-chain runner
// (instance field initialization order, super() gating, static
// initialization order) lives in internal/interp instead, since it needs
// the evaluator's call machinery; this package holds the piece of class
// semantics that doesn't.
package class

import "github.com/vaultjs/vaultjs/internal/value"

// Registry tracks the private names declared by one class body, keyed by
// their source name (without the leading '#'). Two classes each declaring
// `#x` get distinct *value.PrivateName identities even though the source
// names collide, matching the brand-per-declaration invariant.
type Registry struct {
	names map[string]*value.PrivateName
}

// NewRegistry returns an empty registry for one ClassObject under
// construction.
func NewRegistry(owner *value.ClassObject) *Registry {
	return &Registry{names: make(map[string]*value.PrivateName)}
}

// Declare allocates (or returns the existing) PrivateName for name within
// this class body.
func (r *Registry) Declare(name string, owner *value.ClassObject) *value.PrivateName {
	if pn, ok := r.names[name]; ok {
		return pn
	}
	pn := &value.PrivateName{Name: name, Class: owner}
	r.names[name] = pn
	return pn
}

// Lookup finds a previously declared private name by source name.
func (r *Registry) Lookup(name string) (*value.PrivateName, bool) {
	pn, ok := r.names[name]
	return pn, ok
}

// HasBrand reports whether obj carries a private slot for pn — the
// "brand check" the spec requires before `obj.#field` resolves on an
// object that was not constructed by pn's declaring class.
func HasBrand(obj *value.PlainObject, pn *value.PrivateName) bool {
	if obj.Private == nil {
		return false
	}
	_, ok := obj.Private[pn]
	return ok
}

// SetBrand installs pn's slot on obj with an initial value, performed once
// per instance when the declaring class's field initializers (or a
// private-method installation step) run for that instance.
func SetBrand(obj *value.PlainObject, pn *value.PrivateName, v value.Value) {
	if obj.Private == nil {
		obj.Private = make(map[*value.PrivateName]value.Value)
	}
	obj.Private[pn] = v
}

// GetBrand reads pn's slot, returning ok=false if HasBrand would be false.
func GetBrand(obj *value.PlainObject, pn *value.PrivateName) (value.Value, bool) {
	if obj.Private == nil {
		return nil, false
	}
	v, ok := obj.Private[pn]
	return v, ok
}
