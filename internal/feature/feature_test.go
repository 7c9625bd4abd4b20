package feature

import (
	"strings"
	"testing"

	"github.com/vaultjs/vaultjs/internal/ast"
)

func TestGateCheckEnabledTag(t *testing.T) {
	g := New(NewFeatureSet(LetConst))
	if err := g.Check(LetConst, ast.Span{}); err != nil {
		t.Fatalf("expected LetConst to be enabled, got %v", err)
	}
}

func TestGateCheckDisabledTagNamesItself(t *testing.T) {
	g := New(NewFeatureSet())
	err := g.Check(LetConst, ast.Span{})
	if err == nil {
		t.Fatal("expected an error for a disabled tag")
	}
	if !strings.Contains(err.Error(), "LetConst") {
		t.Fatalf("expected the error to name the tag, got %q", err)
	}
}

func TestTagForNodeLetVsVar(t *testing.T) {
	letDecl := &ast.VarDeclaration{Kind: "let"}
	if tag, ok := TagForNode(letDecl); !ok || tag != LetConst {
		t.Fatalf("expected (%q, true) for let, got (%q, %v)", LetConst, tag, ok)
	}
	varDecl := &ast.VarDeclaration{Kind: "var"}
	if _, ok := TagForNode(varDecl); ok {
		t.Fatal("expected plain var declarations to be ungated")
	}
}

func TestTagForNodeOptionalMember(t *testing.T) {
	optional := &ast.MemberExpression{Optional: true}
	if tag, ok := TagForNode(optional); !ok || tag != OptionalChaining {
		t.Fatalf("expected (%q, true), got (%q, %v)", OptionalChaining, tag, ok)
	}
	plain := &ast.MemberExpression{Optional: false}
	if _, ok := TagForNode(plain); ok {
		t.Fatal("expected a plain member access to be ungated")
	}
}

func TestTagForNodeNullishCoalescing(t *testing.T) {
	nc := &ast.LogicalExpression{Operator: "??"}
	if tag, ok := TagForNode(nc); !ok || tag != NullishCoalescing {
		t.Fatalf("expected (%q, true), got (%q, %v)", NullishCoalescing, tag, ok)
	}
	and := &ast.LogicalExpression{Operator: "&&"}
	if _, ok := TagForNode(and); ok {
		t.Fatal("expected && to be ungated")
	}
}

func TestTagForNodeNumericSeparators(t *testing.T) {
	sep := &ast.NumericLiteral{Raw: "1_000"}
	if tag, ok := TagForNode(sep); !ok || tag != NumericSeparators {
		t.Fatalf("expected (%q, true), got (%q, %v)", NumericSeparators, tag, ok)
	}
	plain := &ast.NumericLiteral{Raw: "1000"}
	if _, ok := TagForNode(plain); ok {
		t.Fatal("expected a plain numeric literal to be ungated")
	}
}

func TestUnionAndWithout(t *testing.T) {
	a := NewFeatureSet(LetConst, Classes)
	b := NewFeatureSet(Generators)
	u := Union(a, b)
	for _, tag := range []Tag{LetConst, Classes, Generators} {
		if !u[tag] {
			t.Fatalf("expected %q in the union", tag)
		}
	}

	w := u.Without(NewFeatureSet(Classes))
	if w[Classes] {
		t.Fatal("expected Classes to be removed by Without")
	}
	if !w[LetConst] || !w[Generators] {
		t.Fatal("expected the other tags to survive Without")
	}
}

func TestCheckNodeSkipsUngatedNodes(t *testing.T) {
	g := New(NewFeatureSet())
	if err := g.CheckNode(&ast.BinaryExpression{Operator: "+"}); err != nil {
		t.Fatalf("expected plain arithmetic to need no feature check, got %v", err)
	}
}
