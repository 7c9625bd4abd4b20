// Package preset supplies the "external collaborator" spec.md §1 frames as
// out of core scope: era feature tables and curated global bundles,
// combined into the configuration internal/interp's feature gate and
// globals overlay consume. Grounded on the teacher's pkg/dwscript
// functional-options construction (`New(WithTypeCheck(false))`) for the
// combinator shape, and on internal/builtins' per-domain-file layout
// (math, json, datetime, ...) for splitting each addon into its own file.
// internal/preset is called from pkg/vaultjs only; internal/interp never
// imports it, so the evaluator core stays ignorant of what preset a host
// chose.
package preset

import (
	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/bridge"
	"github.com/vaultjs/vaultjs/internal/feature"
	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/value"
)

// FeatureMode selects how a bundle's Features set is interpreted when
// resolved into the engine's effective gate.
type FeatureMode int

const (
	// ModeWhitelist enables exactly the listed tags.
	ModeWhitelist FeatureMode = iota
	// ModeBlacklist enables every tag except the listed ones.
	ModeBlacklist
)

// FeatureControl is one bundle's feature-gate contribution: a mode plus
// the tag set that mode is interpreted against. The zero value
// (ModeWhitelist, empty set) enables nothing, matching an empty era
// table; a bundle that wants "don't touch feature gating" should use
// Unrestricted() instead (ModeBlacklist, empty set — blocks nothing).
type FeatureControl struct {
	Mode     FeatureMode
	Features feature.FeatureSet
}

// Unrestricted returns a FeatureControl that enables every tag, matching
// spec.md §6's "absent ⇒ all enabled" rule for engines configured with no
// featureControl at all.
func Unrestricted() FeatureControl {
	return FeatureControl{Mode: ModeBlacklist, Features: feature.NewFeatureSet()}
}

// Resolve expands fc into the concrete whitelist internal/feature.Gate
// consumes.
func (fc FeatureControl) Resolve() feature.FeatureSet {
	if fc.Mode == ModeWhitelist {
		return fc.Features
	}
	return feature.NewFeatureSet(feature.AllTags...).Without(fc.Features)
}

// combine applies spec.md §6's exact merge rule: whitelist+whitelist and
// blacklist+blacklist union their tag sets and keep the shared mode;
// whitelist+blacklist always produces a whitelist of "whitelist minus the
// other side's blacklist", regardless of which argument carried which mode.
func combineFeatureControl(a, b FeatureControl) FeatureControl {
	switch {
	case a.Mode == ModeWhitelist && b.Mode == ModeWhitelist:
		return FeatureControl{Mode: ModeWhitelist, Features: feature.Union(a.Features, b.Features)}
	case a.Mode == ModeBlacklist && b.Mode == ModeBlacklist:
		return FeatureControl{Mode: ModeBlacklist, Features: feature.Union(a.Features, b.Features)}
	case a.Mode == ModeWhitelist && b.Mode == ModeBlacklist:
		return FeatureControl{Mode: ModeWhitelist, Features: a.Features.Without(b.Features)}
	default: // a blacklist, b whitelist
		return FeatureControl{Mode: ModeWhitelist, Features: b.Features.Without(a.Features)}
	}
}

// GlobalFactory builds one global's guest-visible value against a live
// engine. Building lazily (rather than eagerly at preset-construction
// time) is what lets a bundle be declared once — as package-level data —
// and instantiated fresh against every *interp.Interpreter a host
// constructs, each with its own heap and prototype objects.
type GlobalFactory func(it *interp.Interpreter) value.Value

// OptionBundle is one named, composable slice of engine configuration:
// which features it turns on/off, which globals it contributes, and
// (optionally) a security-policy or validator override. Era tables
// (ES5..ESNext) and add-on bundles (Console, Timers, ...) are both plain
// OptionBundle values; Combine merges any number of them, in order, into
// one.
type OptionBundle struct {
	Name           string
	FeatureControl FeatureControl
	Globals        map[string]GlobalFactory
	Security       *bridge.SecurityPolicy
	Validator      func(*ast.Program) error
}

// Empty returns a bundle that enables every feature and contributes no
// globals — the identity element for Combine.
func Empty() OptionBundle {
	return OptionBundle{Name: "empty", FeatureControl: Unrestricted(), Globals: map[string]GlobalFactory{}}
}

// Combine merges bundles left to right per spec.md §6's "Preset
// combinator": globals shallow-merge with later bundles winning on a
// name collision; featureControl merges via combineFeatureControl;
// security merges via mergeSecurity (later error policy wins, blocked
// names accumulate); validator shallow-merges, later non-nil value
// winning. With zero arguments Combine returns Empty()'s contents with an
// empty Name.
func Combine(bundles ...OptionBundle) OptionBundle {
	out := Empty()
	out.Name = ""
	for i, b := range bundles {
		if i == 0 {
			out.FeatureControl = b.FeatureControl
		} else {
			out.FeatureControl = combineFeatureControl(out.FeatureControl, b.FeatureControl)
		}
		for name, g := range b.Globals {
			out.Globals[name] = g
		}
		if b.Security != nil {
			merged := mergeSecurity(out.Security, b.Security)
			out.Security = &merged
		}
		if b.Validator != nil {
			out.Validator = b.Validator
		}
		if b.Name != "" {
			if out.Name == "" {
				out.Name = b.Name
			} else {
				out.Name = out.Name + "+" + b.Name
			}
		}
	}
	if len(bundles) == 0 {
		out.FeatureControl = Unrestricted()
	}
	return out
}

// mergeSecurity shallow-merges two security policies: b's error policy
// and masked message replace a's outright (a policy either preserves,
// masks, or retains, so "later wins" on the whole triple rather than
// per-field avoids producing a nonsensical mixed state), while blocked
// names accumulate — a later bundle narrowing the sandbox should never
// silently un-block a name an earlier bundle restricted.
func mergeSecurity(a, b *bridge.SecurityPolicy) bridge.SecurityPolicy {
	if a == nil {
		a = &bridge.SecurityPolicy{}
	}
	merged := *b
	merged.BlockedNames = make(map[string]bool, len(a.BlockedNames)+len(b.BlockedNames))
	for k := range a.BlockedNames {
		merged.BlockedNames[k] = true
	}
	for k := range b.BlockedNames {
		merged.BlockedNames[k] = true
	}
	return merged
}

// Apply builds every bundle global against it, installing each directly
// as a binding in target — called by pkg/vaultjs once per engine
// construction (persistent globals) and once per run (overlay globals).
func (ob OptionBundle) Apply(it *interp.Interpreter, target map[string]value.Value) {
	for name, factory := range ob.Globals {
		target[name] = factory(it)
	}
}
