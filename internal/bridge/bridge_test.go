package bridge

import (
	"errors"
	"testing"

	"github.com/vaultjs/vaultjs/internal/value"
)

func TestWrapHostPrimitivesPassThrough(t *testing.T) {
	h := value.NewHeap()
	policy := DefaultPolicy()

	if v := WrapHost(true, h, value.Ref{}, policy); v != value.Bool(true) {
		t.Fatalf("expected Bool(true), got %#v", v)
	}
	if v := WrapHost(42, h, value.Ref{}, policy); v != value.Number(42) {
		t.Fatalf("expected Number(42), got %#v", v)
	}
	if v := WrapHost("hi", h, value.Ref{}, policy); v != value.String("hi") {
		t.Fatalf("expected String(hi), got %#v", v)
	}
	if v := WrapHost(nil, h, value.Ref{}, policy); v != (value.Null{}) {
		t.Fatalf("expected Null, got %#v", v)
	}
}

func TestWrapHostOpaqueValueIsReadOnlyBoundObject(t *testing.T) {
	h := value.NewHeap()
	policy := DefaultPolicy()

	ch := make(chan int, 1)
	v := WrapHost(ch, h, value.Ref{}, policy)
	ref, ok := v.(value.Ref)
	if !ok {
		t.Fatalf("expected a heap Ref for an opaque value, got %#v", v)
	}
	bound, ok := h.Get(ref).(*value.BoundHostObject)
	if !ok {
		t.Fatalf("expected *value.BoundHostObject, got %T", h.Get(ref))
	}
	if !bound.ReadOnly {
		t.Fatal("expected the bound host object to be read-only")
	}
	if bound.Host.(chan int) != ch {
		t.Fatal("expected the bound object to retain the original channel value")
	}
}

func TestIsBlockedChecksForbiddenAndConfigured(t *testing.T) {
	policy := SecurityPolicy{BlockedNames: map[string]bool{"secret": true}}
	if !policy.IsBlocked("__proto__") {
		t.Fatal("expected __proto__ to always be blocked")
	}
	if !policy.IsBlocked("secret") {
		t.Fatal("expected a host-configured blocked name to be blocked")
	}
	if policy.IsBlocked("ok") {
		t.Fatal("expected an unrelated name to not be blocked")
	}
}

func TestSanitizeErrorPreserve(t *testing.T) {
	policy := SecurityPolicy{ErrorPolicy: ErrorPreserve}
	msg, retained := SanitizeError(errors.New("disk full"), policy)
	if msg != "disk full" {
		t.Fatalf("expected the original message, got %q", msg)
	}
	if retained != nil {
		t.Fatal("expected no retained error under ErrorPreserve")
	}
}

func TestSanitizeErrorMask(t *testing.T) {
	policy := SecurityPolicy{ErrorPolicy: ErrorMask, MaskedMessage: "nope"}
	msg, retained := SanitizeError(errors.New("disk full"), policy)
	if msg != "nope" {
		t.Fatalf("expected the masked message, got %q", msg)
	}
	if retained != nil {
		t.Fatal("expected no retained error under ErrorMask")
	}
}

func TestSanitizeErrorRetainKeepsOriginalSeparately(t *testing.T) {
	policy := SecurityPolicy{ErrorPolicy: ErrorRetain, MaskedMessage: "nope"}
	original := errors.New("disk full")
	msg, retained := SanitizeError(original, policy)
	if msg != "nope" {
		t.Fatalf("expected the masked message visible to the guest, got %q", msg)
	}
	if retained != original {
		t.Fatal("expected ErrorRetain to hand back the original error for host-side logging")
	}
}

func TestSanitizeErrorNilIsNoop(t *testing.T) {
	msg, retained := SanitizeError(nil, DefaultPolicy())
	if msg != "" || retained != nil {
		t.Fatalf("expected empty results for a nil error, got (%q, %v)", msg, retained)
	}
}

func TestRejectPollutionBlocksForbiddenName(t *testing.T) {
	h := value.NewHeap()
	objProto := h.Alloc(value.NewPlainObject(value.Ref{}, false))
	target := value.NewPlainObject(objProto, true)
	err := RejectPollution("__proto__", target, h, objProto, DefaultPolicy())
	if err == nil {
		t.Fatal("expected __proto__ assignment onto an Object.prototype-chain object to be rejected")
	}
}

func TestRejectPollutionAllowsOrdinaryKeys(t *testing.T) {
	h := value.NewHeap()
	objProto := h.Alloc(value.NewPlainObject(value.Ref{}, false))
	target := value.NewPlainObject(objProto, true)
	if err := RejectPollution("name", target, h, objProto, DefaultPolicy()); err != nil {
		t.Fatalf("expected an ordinary key to be allowed, got %v", err)
	}
}

func TestRejectPollutionRejectsProtoNameOffObjectPrototypeChain(t *testing.T) {
	h := value.NewHeap()
	objProto := h.Alloc(value.NewPlainObject(value.Ref{}, false))
	nullProtoTarget := value.NewPlainObject(value.Ref{}, false)
	if err := RejectPollution("__proto__", nullProtoTarget, h, objProto, DefaultPolicy()); err == nil {
		t.Fatal("expected __proto__ on a null-prototype object to be rejected as a forbidden name")
	}
}
