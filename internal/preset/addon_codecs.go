package preset

import (
	"encoding/base64"
	"encoding/hex"
	"unicode/utf8"

	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/value"
)

// Codecs returns the bundle installing base64/hex/UTF-8 text codec
// helpers (`atob`/`btoa`, `hex.encode`/`hex.decode`, `utf8.isValid`/
// `utf8.length`). Per spec.md's own Non-goal ("implementing ... text-codec
// libraries from scratch ... proxied to the host"), this addon is a thin
// wrapper over stdlib encoding/base64, encoding/hex and unicode/utf8
// rather than a hand-rolled codec.
func Codecs() OptionBundle {
	return OptionBundle{
		Name:           "codecs",
		FeatureControl: Unrestricted(),
		Globals: map[string]GlobalFactory{
			"atob": func(it *interp.Interpreter) value.Value {
				return it.NativeFunction("atob", func(a value.NativeArgs) (value.Value, error) {
					decoded, err := base64.StdEncoding.DecodeString(argString(a.Args, 0))
					if err != nil {
						return nil, it.Throw(it.NewError("Error", "atob: invalid base64 input"))
					}
					return value.String(decoded), nil
				})
			},
			"btoa": func(it *interp.Interpreter) value.Value {
				return it.NativeFunction("btoa", func(a value.NativeArgs) (value.Value, error) {
					return value.String(base64.StdEncoding.EncodeToString([]byte(argString(a.Args, 0)))), nil
				})
			},
			"hex": func(it *interp.Interpreter) value.Value {
				return hexGlobal(it)
			},
			"utf8": func(it *interp.Interpreter) value.Value {
				return utf8Global(it)
			},
		},
	}
}

func hexGlobal(it *interp.Interpreter) value.Value {
	obj, ref := newObject(it)
	setMethod(it, obj, "encode", func(a value.NativeArgs) (value.Value, error) {
		return value.String(hex.EncodeToString([]byte(argString(a.Args, 0)))), nil
	})
	setMethod(it, obj, "decode", func(a value.NativeArgs) (value.Value, error) {
		decoded, err := hex.DecodeString(argString(a.Args, 0))
		if err != nil {
			return nil, it.Throw(it.NewError("Error", "hex.decode: invalid hex input"))
		}
		return value.String(decoded), nil
	})
	return ref
}

func utf8Global(it *interp.Interpreter) value.Value {
	obj, ref := newObject(it)
	setMethod(it, obj, "isValid", func(a value.NativeArgs) (value.Value, error) {
		return value.Bool(utf8.ValidString(argString(a.Args, 0))), nil
	})
	setMethod(it, obj, "length", func(a value.NativeArgs) (value.Value, error) {
		return value.Number(utf8.RuneCountInString(argString(a.Args, 0))), nil
	})
	return ref
}
