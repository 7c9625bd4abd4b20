package preset

import "github.com/vaultjs/vaultjs/internal/feature"

// era builds a whitelist OptionBundle named name from the union of
// additions, plus the core globals every ES2015+ runtime carries
// (Promise). ES5 gets no core globals: it predates Promise entirely.
func era(name string, globals bool, additions ...feature.Tag) OptionBundle {
	ob := OptionBundle{
		Name:           name,
		FeatureControl: FeatureControl{Mode: ModeWhitelist, Features: feature.NewFeatureSet(additions...)},
		Globals:        map[string]GlobalFactory{},
	}
	if globals {
		ob.Globals["Promise"] = promiseGlobal
	}
	return ob
}

// Each table below is the cumulative feature set introduced by that
// edition and every edition before it, matching how real engines
// describe "ES2020 support": additive, never removing an earlier tag.
// Bundled here as concrete tables (rather than left purely to a host) so
// pkg/vaultjs.Eval works standalone with no preset configured, per
// SPEC_FULL.md §3.M.

var es5Tags = []feature.Tag{}

var es2015Tags = append(append([]feature.Tag{}, es5Tags...),
	feature.ArrowFunctions, feature.TemplateLiterals, feature.Classes,
	feature.LetConst, feature.Destructuring, feature.Spread,
	feature.RestParameters, feature.DefaultParameters, feature.ForOf,
	feature.Generators, feature.Modules,
)

var es2016Tags = append(append([]feature.Tag{}, es2015Tags...), feature.Exponentiation)

var es2017Tags = append(append([]feature.Tag{}, es2016Tags...), feature.AsyncAwait)

// ES2018 added object spread/rest and for-await-of; both ride the
// existing Spread and AsyncAwait/ForOf tags, so no new tag is needed.
var es2018Tags = append([]feature.Tag{}, es2017Tags...)

// ES2019 (Array.flat, Object.fromEntries, optional catch binding) adds
// nothing this engine gates on a feature tag.
var es2019Tags = append([]feature.Tag{}, es2018Tags...)

var es2020Tags = append(append([]feature.Tag{}, es2019Tags...),
	feature.OptionalChaining, feature.NullishCoalescing,
	feature.BigIntLiterals, feature.DynamicImport,
)

var es2021Tags = append(append([]feature.Tag{}, es2020Tags...),
	feature.LogicalAssignment, feature.NumericSeparators,
)

var es2022Tags = append(append([]feature.Tag{}, es2021Tags...),
	feature.ClassFields, feature.PrivateFields, feature.StaticBlocks,
)

var es2023Tags = append(append([]feature.Tag{}, es2022Tags...), feature.Hashbang)

// ES2024 (Object.groupBy, well-formed-unicode-strings) adds nothing new
// at the granularity this engine's feature gate tracks.
var es2024Tags = append([]feature.Tag{}, es2023Tags...)

// ES5 is the baseline: no let/const, no classes, no arrow functions, no
// modules, nothing past function-scoped var and plain for-loops.
func ES5() OptionBundle { return era("ES5", false, es5Tags...) }

// ES2015 is ES6: the first edition this engine ships Promise with.
func ES2015() OptionBundle { return era("ES2015", true, es2015Tags...) }
func ES6() OptionBundle    { return ES2015() }

func ES2016() OptionBundle { return era("ES2016", true, es2016Tags...) }
func ES2017() OptionBundle { return era("ES2017", true, es2017Tags...) }
func ES2018() OptionBundle { return era("ES2018", true, es2018Tags...) }
func ES2019() OptionBundle { return era("ES2019", true, es2019Tags...) }
func ES2020() OptionBundle { return era("ES2020", true, es2020Tags...) }
func ES2021() OptionBundle { return era("ES2021", true, es2021Tags...) }
func ES2022() OptionBundle { return era("ES2022", true, es2022Tags...) }
func ES2023() OptionBundle { return era("ES2023", true, es2023Tags...) }
func ES2024() OptionBundle { return era("ES2024", true, es2024Tags...) }

// ESNext tracks the newest edition this engine implements; kept as its
// own named preset (rather than an alias of ES2024) so a host selecting
// "ESNext" gets a name that keeps meaning "the newest I support" as new
// editions are added here, without every call site needing updating.
func ESNext() OptionBundle { return era("ESNext", true, es2024Tags...) }
