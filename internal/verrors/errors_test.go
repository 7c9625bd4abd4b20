package verrors

import (
	"strings"
	"testing"

	"github.com/vaultjs/vaultjs/internal/ast"
)

func TestFormatWithoutSource(t *testing.T) {
	err := NewRuntime(CodeReferenceError, "x is not defined", ast.Span{})
	got := err.Error()
	want := "Runtime[E0101]: x is not defined"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatWithSourceExcerptAndCaret(t *testing.T) {
	src := "let x = y;\n"
	span := ast.Span{Start: ast.Position{Line: 1, Column: 9}}
	err := NewRuntime(CodeReferenceError, "y is not defined", span)
	got := err.FormatWithContext(src, false)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines (message, source, caret), got %d: %q", len(lines), got)
	}
	if lines[1] != "let x = y;" {
		t.Fatalf("expected the source excerpt line, got %q", lines[1])
	}
	if strings.TrimRight(lines[2], " ") != strings.Repeat(" ", 8)+"^" {
		t.Fatalf("expected the caret under column 9, got %q", lines[2])
	}
}

func TestFormatWithStackTrailer(t *testing.T) {
	err := NewRuntime(CodeTypeError, "boom", ast.Span{})
	err.Stack = []StackFrame{
		{FuncName: "inner", Span: ast.Span{Start: ast.Position{Line: 3, Column: 5}}},
		{FuncName: "outer", Span: ast.Span{Start: ast.Position{Line: 1, Column: 1}}},
	}
	got := err.Error()
	if !strings.Contains(got, "at inner (3:5)") || !strings.Contains(got, "at outer (1:1)") {
		t.Fatalf("expected both stack frames rendered, got %q", got)
	}
}

func TestNewFeatureNamesTagInMessage(t *testing.T) {
	err := NewFeature("LetConst", ast.Span{})
	if err.Category != CategoryFeature {
		t.Fatalf("expected CategoryFeature, got %q", err.Category)
	}
	if err.Code != CodeFeatureDisabled {
		t.Fatalf("expected code %q, got %q", CodeFeatureDisabled, err.Code)
	}
	if !strings.Contains(err.Message, "LetConst") {
		t.Fatalf("expected the message to name the tag, got %q", err.Message)
	}
}

func TestCategoryConstructors(t *testing.T) {
	tests := []struct {
		build func() *Error
		want  Category
	}{
		{func() *Error { return NewParse(CodeSyntaxError, "m", ast.Span{}) }, CategoryParse},
		{func() *Error { return NewRuntime(CodeTypeError, "m", ast.Span{}) }, CategoryRuntime},
		{func() *Error { return NewSecurity(CodeForbiddenProperty, "m", ast.Span{}) }, CategorySecurity},
		{func() *Error { return NewFeature("X", ast.Span{}) }, CategoryFeature},
	}
	for _, tt := range tests {
		if got := tt.build().Category; got != tt.want {
			t.Fatalf("expected category %q, got %q", tt.want, got)
		}
	}
}

func TestExcerptOutOfRangeLineIsOmitted(t *testing.T) {
	err := NewRuntime(CodeTypeError, "boom", ast.Span{Start: ast.Position{Line: 99}})
	got := err.FormatWithContext("one line only", false)
	if strings.Contains(got, "\n") {
		t.Fatalf("expected no excerpt for an out-of-range line, got %q", got)
	}
}
