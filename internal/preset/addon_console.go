package preset

import (
	"fmt"
	"io"

	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/value"
)

// Console returns the bundle installing the `console` global, writing
// every call to w. Grounded on the teacher's pkg/dwscript.SetOutput(io.Writer)
// convention: rather than hardcoding os.Stdout, the sink is caller-supplied
// so a host embedding this engine can capture guest output the same way
// the teacher's own engine lets callers redirect writeln.
func Console(w io.Writer) OptionBundle {
	return OptionBundle{
		Name:           "console",
		FeatureControl: Unrestricted(),
		Globals: map[string]GlobalFactory{
			"console": func(it *interp.Interpreter) value.Value {
				return consoleGlobal(it, w)
			},
		},
	}
}

func consoleGlobal(it *interp.Interpreter, w io.Writer) value.Value {
	obj, ref := newObject(it)
	logLine := func(level string) func(value.NativeArgs) (value.Value, error) {
		return func(a value.NativeArgs) (value.Value, error) {
			parts := make([]any, len(a.Args))
			for i, v := range a.Args {
				parts[i] = consoleDisplay(it, v)
			}
			fmt.Fprintln(w, parts...)
			_ = level // level distinguishes the call site only; all levels share one sink
			return value.Undefined{}, nil
		}
	}
	setMethod(it, obj, "log", logLine("log"))
	setMethod(it, obj, "info", logLine("info"))
	setMethod(it, obj, "warn", logLine("warn"))
	setMethod(it, obj, "error", logLine("error"))
	setMethod(it, obj, "debug", logLine("debug"))
	return ref
}

// consoleDisplay renders v the way console.log displays an argument: a
// string prints bare (no quotes), everything else falls back to the
// guest value's own String() rendering.
func consoleDisplay(it *interp.Interpreter, v value.Value) string {
	if s, ok := v.(value.String); ok {
		return string(s)
	}
	return v.String()
}
