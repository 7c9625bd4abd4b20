// Package feature implements the pre-effect feature gate: a fixed set of
// Tags, one node-kind-to-tag mapping, and a Gate checked before any
// evaluation side effect that depends on a gateable language feature.
// Modeled on the teacher's internal/semantic pass architecture (a Pass
// walks the tree and reports errors through a shared context), generalized
// here from static type-checking to a runtime feature-presence check.
package feature

import (
	"fmt"

	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/verrors"
)

// Tag names one gateable language feature.
type Tag string

const (
	ArrowFunctions    Tag = "ArrowFunctions"
	TemplateLiterals  Tag = "TemplateLiterals"
	Classes           Tag = "Classes"
	ClassFields       Tag = "ClassFields"
	PrivateFields     Tag = "PrivateFields"
	StaticBlocks      Tag = "StaticBlocks"
	LetConst          Tag = "LetConst"
	Destructuring     Tag = "Destructuring"
	Spread            Tag = "Spread"
	RestParameters    Tag = "RestParameters"
	DefaultParameters Tag = "DefaultParameters"
	ForOf             Tag = "ForOf"
	AsyncAwait        Tag = "AsyncAwait"
	Generators        Tag = "Generators"
	OptionalChaining  Tag = "OptionalChaining"
	NullishCoalescing Tag = "NullishCoalescing"
	LogicalAssignment Tag = "LogicalAssignment"
	Exponentiation    Tag = "Exponentiation"
	NumericSeparators Tag = "NumericSeparators"
	DynamicImport     Tag = "DynamicImport"
	BigIntLiterals    Tag = "BigIntLiterals"
	Hashbang          Tag = "Hashbang"
	Modules           Tag = "Modules"
)

// AllTags lists every gateable tag, used by presets to build a whitelist
// FeatureSet from an era table.
var AllTags = []Tag{
	ArrowFunctions, TemplateLiterals, Classes, ClassFields, PrivateFields,
	StaticBlocks, LetConst, Destructuring, Spread, RestParameters,
	DefaultParameters, ForOf, AsyncAwait, Generators, OptionalChaining,
	NullishCoalescing, LogicalAssignment, Exponentiation, NumericSeparators,
	DynamicImport, BigIntLiterals, Hashbang, Modules,
}

// FeatureSet is a whitelist of enabled tags.
type FeatureSet map[Tag]bool

// NewFeatureSet builds a FeatureSet from the given tags.
func NewFeatureSet(tags ...Tag) FeatureSet {
	fs := make(FeatureSet, len(tags))
	for _, t := range tags {
		fs[t] = true
	}
	return fs
}

// Union returns a new set containing every tag present in any input.
func Union(sets ...FeatureSet) FeatureSet {
	out := make(FeatureSet)
	for _, s := range sets {
		for t := range s {
			out[t] = true
		}
	}
	return out
}

// Without returns a copy of fs with every tag in blocked removed.
func (fs FeatureSet) Without(blocked FeatureSet) FeatureSet {
	out := make(FeatureSet, len(fs))
	for t := range fs {
		if !blocked[t] {
			out[t] = true
		}
	}
	return out
}

// Gate checks AST node kinds against an enabled FeatureSet at evaluation
// time, immediately before the first side effect the gated construct would
// have.
type Gate struct {
	Enabled FeatureSet
}

// New returns a Gate enforcing exactly the given FeatureSet.
func New(fs FeatureSet) *Gate { return &Gate{Enabled: fs} }

// Check raises a CategoryFeature error if tag is not enabled.
func (g *Gate) Check(tag Tag, span ast.Span) error {
	if g.Enabled[tag] {
		return nil
	}
	return verrors.NewFeature(string(tag), span)
}

// TagForNode returns the tag gating n's evaluation, or ("", false) if n
// requires no feature gate (e.g. plain arithmetic, var declarations).
func TagForNode(n ast.Node) (Tag, bool) {
	switch v := n.(type) {
	case *ast.ArrowFunctionExpression:
		return ArrowFunctions, true
	case *ast.TemplateLiteral, *ast.TaggedTemplateExpression:
		return TemplateLiterals, true
	case *ast.ClassDeclaration, *ast.ClassExpression:
		return Classes, true
	case *ast.PropertyDefinition:
		return ClassFields, true
	case *ast.PrivateIdentifier:
		return PrivateFields, true
	case *ast.StaticBlock:
		return StaticBlocks, true
	case *ast.VarDeclaration:
		if v.Kind == "let" || v.Kind == "const" {
			return LetConst, true
		}
		return "", false
	case *ast.ArrayPattern, *ast.ObjectPattern:
		return Destructuring, true
	case *ast.SpreadElement:
		return Spread, true
	case *ast.RestElement:
		return RestParameters, true
	case *ast.AssignmentPattern:
		return DefaultParameters, true
	case *ast.ForOfStatement:
		return ForOf, true
	case *ast.AwaitExpression:
		return AsyncAwait, true
	case *ast.YieldExpression:
		return Generators, true
	case *ast.MemberExpression:
		if v.Optional {
			return OptionalChaining, true
		}
		return "", false
	case *ast.CallExpression:
		if v.Optional {
			return OptionalChaining, true
		}
		return "", false
	case *ast.LogicalExpression:
		if v.Operator == "??" {
			return NullishCoalescing, true
		}
		return "", false
	case *ast.AssignmentExpression:
		switch v.Operator {
		case "&&=", "||=", "??=":
			return LogicalAssignment, true
		}
		return "", false
	case *ast.BinaryExpression:
		if v.Operator == "**" {
			return Exponentiation, true
		}
		return "", false
	case *ast.NumericLiteral:
		for _, r := range v.Raw {
			if r == '_' {
				return NumericSeparators, true
			}
		}
		return "", false
	case *ast.ImportExpression:
		return DynamicImport, true
	case *ast.BigIntLiteral:
		return BigIntLiterals, true
	case *ast.ImportDeclaration, *ast.ExportNamedDeclaration,
		*ast.ExportDefaultDeclaration, *ast.ExportAllDeclaration:
		return Modules, true
	default:
		return "", false
	}
}

// CheckNode is the convenience entry point the evaluator calls immediately
// before acting on n: it resolves the gating tag (if any) and checks it.
func (g *Gate) CheckNode(n ast.Node) error {
	tag, ok := TagForNode(n)
	if !ok {
		return nil
	}
	if err := g.Check(tag, n.Span()); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
