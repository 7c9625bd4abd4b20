package class

import (
	"testing"

	"github.com/vaultjs/vaultjs/internal/value"
)

func TestDeclareIsIdempotentPerName(t *testing.T) {
	owner := &value.ClassObject{}
	r := NewRegistry(owner)
	a := r.Declare("x", owner)
	b := r.Declare("x", owner)
	if a != b {
		t.Fatal("expected declaring the same name twice to return the same PrivateName")
	}
}

func TestDistinctClassesGetDistinctBrandsForSameSourceName(t *testing.T) {
	ownerA := &value.ClassObject{}
	ownerB := &value.ClassObject{}
	rA := NewRegistry(ownerA)
	rB := NewRegistry(ownerB)
	pnA := rA.Declare("x", ownerA)
	pnB := rB.Declare("x", ownerB)
	if pnA == pnB {
		t.Fatal("expected two classes each declaring #x to get distinct PrivateName identities")
	}
}

func TestLookupMissingReturnsFalse(t *testing.T) {
	r := NewRegistry(&value.ClassObject{})
	if _, ok := r.Lookup("nope"); ok {
		t.Fatal("expected Lookup of an undeclared name to report false")
	}
}

func TestBrandRoundTrip(t *testing.T) {
	owner := &value.ClassObject{}
	r := NewRegistry(owner)
	pn := r.Declare("secret", owner)
	obj := value.NewPlainObject(value.Ref{}, false)

	if HasBrand(obj, pn) {
		t.Fatal("expected a freshly constructed object to not carry the brand yet")
	}
	if _, ok := GetBrand(obj, pn); ok {
		t.Fatal("expected GetBrand to report false before the brand is set")
	}

	SetBrand(obj, pn, value.Number(42))
	if !HasBrand(obj, pn) {
		t.Fatal("expected the brand to be present after SetBrand")
	}
	got, ok := GetBrand(obj, pn)
	if !ok || got != value.Number(42) {
		t.Fatalf("expected GetBrand to return (42, true), got (%#v, %v)", got, ok)
	}
}

func TestCrossClassInstanceLacksTheOtherClassBrand(t *testing.T) {
	ownerA := &value.ClassObject{}
	ownerB := &value.ClassObject{}
	rA := NewRegistry(ownerA)
	rB := NewRegistry(ownerB)
	pnA := rA.Declare("x", ownerA)
	pnB := rB.Declare("x", ownerB)

	instanceOfA := value.NewPlainObject(value.Ref{}, false)
	SetBrand(instanceOfA, pnA, value.Bool(true))

	if HasBrand(instanceOfA, pnB) {
		t.Fatal("expected an instance of A to not carry B's brand for the same source name")
	}
}
