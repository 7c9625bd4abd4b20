package vaultjs

import "github.com/vaultjs/vaultjs/internal/preset"

// presetBundle maps a preset name to its internal/preset bundle. Kept as
// a lookup table rather than exposing preset.OptionBundle itself in the
// public API, since Go's internal/ visibility rule would otherwise block
// an external caller from ever constructing one.
func presetBundle(name string) preset.OptionBundle {
	switch name {
	case "ES5":
		return preset.ES5()
	case "ES2015", "ES6":
		return preset.ES2015()
	case "ES2016":
		return preset.ES2016()
	case "ES2017":
		return preset.ES2017()
	case "ES2018":
		return preset.ES2018()
	case "ES2019":
		return preset.ES2019()
	case "ES2020":
		return preset.ES2020()
	case "ES2021":
		return preset.ES2021()
	case "ES2022":
		return preset.ES2022()
	case "ES2023":
		return preset.ES2023()
	case "ES2024":
		return preset.ES2024()
	case "ESNext":
		return preset.ESNext()
	case "timers":
		return preset.Timers()
	case "json":
		return preset.JSON()
	case "crypto":
		return preset.Crypto()
	case "codecs":
		return preset.Codecs()
	case "streams":
		return preset.Streams()
	case "blob":
		return preset.Blob()
	case "perf":
		return preset.Perf()
	case "events":
		return preset.Events()
	case "fetch":
		return preset.Fetch()
	default:
		// An unrecognized name contributes nothing rather than aborting
		// construction; New has no error path back from inside an Option,
		// so a typo'd preset name silently no-ops instead of panicking a
		// host's startup path. Eval-time feature errors still catch the
		// resulting gap (a script using a feature the host thought it
		// enabled fails loudly with a named CategoryFeature error).
		return preset.Empty()
	}
}
