package preset

import (
	"bytes"

	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/value"
)

// Streams returns the bundle installing a minimal `ReadableStream`-shaped
// buffer: `new ReadableStream(sourceString)` wraps a bytes.Buffer a guest
// reads from via `.read()` (returns the next chunk or undefined at EOF)
// and `.readAll()`. Full WHATWG streams (backpressure, transform/writable
// pairs) are out of scope for a synchronous, run-to-completion sandbox;
// this gives a guest script something to pull chunked data from without
// hand-building a string-slicing loop.
func Streams() OptionBundle {
	return OptionBundle{
		Name:           "streams",
		FeatureControl: Unrestricted(),
		Globals: map[string]GlobalFactory{
			"ReadableStream": streamCtor,
		},
	}
}

const streamChunkSize = 4096

func streamCtor(it *interp.Interpreter) value.Value {
	return it.NativeFunction("ReadableStream", func(a value.NativeArgs) (value.Value, error) {
		buf := bytes.NewBufferString(argString(a.Args, 0))
		obj, ref := newObject(it)
		setMethod(it, obj, "read", func(ra value.NativeArgs) (value.Value, error) {
			chunk := buf.Next(streamChunkSize)
			if len(chunk) == 0 {
				return value.Undefined{}, nil
			}
			return value.String(chunk), nil
		})
		setMethod(it, obj, "readAll", func(ra value.NativeArgs) (value.Value, error) {
			rest := buf.String()
			buf.Reset()
			return value.String(rest), nil
		})
		setValue(obj, "done", value.Bool(false), true)
		return ref, nil
	})
}
