package value

import (
	"math"
	"math/big"
	"testing"
)

func TestNumberStringFormatting(t *testing.T) {
	tests := []struct {
		n    Number
		want string
	}{
		{Number(0), "0"},
		{Number(42), "42"},
		{Number(3.5), "3.5"},
		{Number(math.NaN()), "NaN"},
		{Number(math.Inf(1)), "Infinity"},
		{Number(math.Inf(-1)), "-Infinity"},
	}
	for _, tt := range tests {
		if got := tt.n.String(); got != tt.want {
			t.Fatalf("Number(%v).String() = %q, want %q", float64(tt.n), got, tt.want)
		}
	}
}

func TestIsNullish(t *testing.T) {
	if !IsNullish(Undefined{}) {
		t.Fatal("expected Undefined to be nullish")
	}
	if !IsNullish(Null{}) {
		t.Fatal("expected Null to be nullish")
	}
	if IsNullish(Number(0)) {
		t.Fatal("expected 0 to not be nullish")
	}
	if IsNullish(Bool(false)) {
		t.Fatal("expected false to not be nullish")
	}
}

func TestToBoolean(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Undefined{}, false},
		{Null{}, false},
		{Bool(false), false},
		{Bool(true), true},
		{Number(0), false},
		{Number(math.NaN()), false},
		{Number(1), true},
		{String(""), false},
		{String("x"), true},
		{Ref{Index: 1}, true},
	}
	for _, tt := range tests {
		if got := ToBoolean(tt.v); got != tt.want {
			t.Fatalf("ToBoolean(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestSameValueZeroTreatsSignedZerosEqual(t *testing.T) {
	posZero := Number(0)
	negZero := Number(math.Copysign(0, -1))
	if !SameValueZero(posZero, negZero) {
		t.Fatal("expected SameValueZero(+0, -0) to be true")
	}
	if SameValue(posZero, negZero) {
		t.Fatal("expected SameValue(+0, -0) to be false")
	}
}

func TestSameValueZeroTreatsNaNEqual(t *testing.T) {
	nan := Number(math.NaN())
	if !SameValueZero(nan, nan) {
		t.Fatal("expected SameValueZero(NaN, NaN) to be true")
	}
	if !SameValue(nan, nan) {
		t.Fatal("expected SameValue(NaN, NaN) to be true")
	}
}

func TestSameValueZeroDifferentKinds(t *testing.T) {
	if SameValueZero(Number(1), String("1")) {
		t.Fatal("expected values of different kinds to never compare equal")
	}
}

func TestBigIntString(t *testing.T) {
	b := BigInt{V: big.NewInt(9007199254740993)}
	if b.String() != "9007199254740993" {
		t.Fatalf("unexpected BigInt string: %q", b.String())
	}
}

func TestSymbolIdentityVsGlobalRegistry(t *testing.T) {
	a := &Symbol{Description: "x"}
	b := &Symbol{Description: "x"}
	if SameValueZero(a, b) {
		t.Fatal("expected two distinct plain symbols to never compare equal")
	}
	ga := &Symbol{Description: "k", GlobalKey: "k"}
	gb := &Symbol{Description: "k", GlobalKey: "k"}
	if !SameValueZero(ga, gb) {
		t.Fatal("expected two Symbol.for(k) symbols to compare equal")
	}
}

func TestRefZeroValueIsDistinctFromAllocated(t *testing.T) {
	var zero Ref
	alloc := Ref{Index: 1}
	if zero == alloc {
		t.Fatal("expected the zero Ref to differ from an allocated one")
	}
}
