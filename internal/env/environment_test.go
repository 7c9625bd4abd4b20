package env

import (
	"testing"

	"github.com/vaultjs/vaultjs/internal/value"
)

func TestDeclareVarStartsInitialized(t *testing.T) {
	e := New(nil, KindFunction)
	b := e.Declare("x", BindVar)
	if !b.Initialized {
		t.Fatal("expected a var binding to start initialized (hoisted to undefined)")
	}
	if _, ok := b.Value.(value.Undefined); !ok {
		t.Fatalf("expected undefined, got %#v", b.Value)
	}
}

func TestDeclareLetStartsUninitialized(t *testing.T) {
	e := New(nil, KindBlock)
	b := e.Declare("x", BindLet)
	if b.Initialized {
		t.Fatal("expected a let binding to start in the temporal dead zone")
	}
	b.Initialize(value.Number(1))
	if !b.Initialized || b.Value != value.Number(1) {
		t.Fatalf("expected initialized value 1, got initialized=%v value=%#v", b.Initialized, b.Value)
	}
}

func TestLookupWalksOuterChain(t *testing.T) {
	outer := New(nil, KindFunction)
	outer.Declare("x", BindVar).Initialize(value.Number(42))
	inner := New(outer, KindBlock)

	b, owner, ok := inner.Lookup("x")
	if !ok {
		t.Fatal("expected to find x via the outer chain")
	}
	if owner != outer {
		t.Fatal("expected the owning environment to be the outer one")
	}
	if b.Value != value.Number(42) {
		t.Fatalf("expected 42, got %#v", b.Value)
	}
}

func TestLookupMissingReturnsFalse(t *testing.T) {
	e := New(nil, KindBlock)
	if _, _, ok := e.Lookup("missing"); ok {
		t.Fatal("expected lookup of an undeclared name to fail")
	}
}

func TestShadowingPrefersInnerBinding(t *testing.T) {
	outer := New(nil, KindFunction)
	outer.Declare("x", BindVar).Initialize(value.Number(1))
	inner := New(outer, KindBlock)
	inner.Declare("x", BindLet).Initialize(value.Number(2))

	b, owner, ok := inner.Lookup("x")
	if !ok || b.Value != value.Number(2) {
		t.Fatalf("expected the inner binding (2) to shadow the outer one, got %#v", b.Value)
	}
	if owner != inner {
		t.Fatal("expected the owning environment to be the inner block")
	}
}

func TestHoistTargetSkipsBlockScopes(t *testing.T) {
	fn := New(nil, KindFunction)
	block := New(fn, KindBlock)
	nested := New(block, KindBlock)

	if got := nested.HoistTarget(); got != fn {
		t.Fatalf("expected var hoisting to target the function scope, got kind=%d", got.Kind)
	}
}

func TestHoistTargetStopsAtModule(t *testing.T) {
	mod := NewModule()
	block := New(mod, KindBlock)
	if got := block.HoistTarget(); got != mod {
		t.Fatal("expected var hoisting inside a module to target the module scope")
	}
}

func TestHasOwnDoesNotConsultOuter(t *testing.T) {
	outer := New(nil, KindFunction)
	outer.Declare("x", BindVar)
	inner := New(outer, KindBlock)

	if inner.HasOwn("x") {
		t.Fatal("expected HasOwn to ignore bindings declared in an outer scope")
	}
	inner.Declare("x", BindLet)
	if !inner.HasOwn("x") {
		t.Fatal("expected HasOwn to report a binding declared directly in this scope")
	}
}

func TestNewModuleHasExportsTable(t *testing.T) {
	m := NewModule()
	if m.Kind != KindModule {
		t.Fatalf("expected KindModule, got %d", m.Kind)
	}
	if m.Exports == nil {
		t.Fatal("expected a module environment to start with a non-nil Exports map")
	}
	if m.Outer != nil {
		t.Fatal("expected a module's root environment to have no outer scope")
	}
}

func TestWithShadowLookupTakesPriority(t *testing.T) {
	outer := New(nil, KindFunction)
	outer.Declare("x", BindVar).Initialize(value.Number(1))

	withEnv := New(outer, KindWith)
	withEnv.WithHas = func(name string) bool { return name == "x" }
	withEnv.WithGet = func(name string) (value.Value, bool) { return value.Number(99), true }

	b, _, ok := withEnv.Lookup("x")
	if !ok || b.Value != value.Number(99) {
		t.Fatalf("expected the with-object's x (99) to shadow the outer binding, got %#v", b.Value)
	}
}
