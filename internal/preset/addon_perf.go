package preset

import (
	"time"

	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/value"
)

// Perf returns the bundle installing a `performance.now()` monotonic
// clock, measured from the bundle's own construction (mirrors the
// Navigation-Timing-origin idea without any of the surrounding API),
// plus `performance.mark`/`performance.measure` building a simple named
// timeline a guest can read back via `performance.getEntries()`.
func Perf() OptionBundle {
	return OptionBundle{
		Name:           "perf",
		FeatureControl: Unrestricted(),
		Globals: map[string]GlobalFactory{
			"performance": perfGlobal,
		},
	}
}

type perfEntry struct {
	name     string
	start    time.Time
	duration time.Duration
}

func perfGlobal(it *interp.Interpreter) value.Value {
	origin := time.Now()
	var entries []perfEntry
	marks := map[string]time.Time{}

	obj, ref := newObject(it)
	setMethod(it, obj, "now", func(a value.NativeArgs) (value.Value, error) {
		return value.Number(float64(time.Since(origin).Microseconds()) / 1000), nil
	})
	setMethod(it, obj, "mark", func(a value.NativeArgs) (value.Value, error) {
		name := argString(a.Args, 0)
		now := time.Now()
		marks[name] = now
		entries = append(entries, perfEntry{name: name, start: now})
		return value.Undefined{}, nil
	})
	setMethod(it, obj, "measure", func(a value.NativeArgs) (value.Value, error) {
		name := argString(a.Args, 0)
		startMark := argString(a.Args, 1)
		start, ok := marks[startMark]
		if !ok {
			return nil, it.Throw(it.NewError("Error", "performance.measure: unknown mark \""+startMark+"\""))
		}
		now := time.Now()
		entries = append(entries, perfEntry{name: name, start: start, duration: now.Sub(start)})
		return value.Undefined{}, nil
	})
	setMethod(it, obj, "getEntries", func(a value.NativeArgs) (value.Value, error) {
		elems := make([]value.Value, len(entries))
		for i, e := range entries {
			eobj, eref := newObject(it)
			setValue(eobj, "name", value.String(e.name), true)
			setValue(eobj, "startTime", value.Number(float64(e.start.Sub(origin).Microseconds())/1000), true)
			setValue(eobj, "duration", value.Number(float64(e.duration.Microseconds())/1000), true)
			elems[i] = eref
		}
		arr := &value.ArrayObject{Proto: it.ArrayProto, Elements: elems, Length: len(elems)}
		return it.Heap.Alloc(arr), nil
	})
	return ref
}
