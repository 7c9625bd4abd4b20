package preset

import (
	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/value"
)

// Blob returns the bundle installing a minimal `Blob`: `new Blob(text,
// mimeType)` wraps raw bytes plus a type tag, with `.text()`, `.size`
// and `.type` — the subset of the real Blob surface a guest script needs
// to pass data between the Codecs/Streams/Fetch addons without those
// addons needing to agree on a bare-string convention.
func Blob() OptionBundle {
	return OptionBundle{
		Name:           "blob",
		FeatureControl: Unrestricted(),
		Globals: map[string]GlobalFactory{
			"Blob": blobCtor,
		},
	}
}

func blobCtor(it *interp.Interpreter) value.Value {
	return it.NativeFunction("Blob", func(a value.NativeArgs) (value.Value, error) {
		text := argString(a.Args, 0)
		mimeType := "application/octet-stream"
		if len(a.Args) > 1 {
			mimeType = argString(a.Args, 1)
		}
		obj, ref := newObject(it)
		setMethod(it, obj, "text", func(ra value.NativeArgs) (value.Value, error) {
			return value.String(text), nil
		})
		setValue(obj, "size", value.Number(len(text)), true)
		setValue(obj, "type", value.String(mimeType), true)
		return ref, nil
	})
}
