package preset

import (
	"crypto/rand"

	"github.com/google/uuid"

	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/value"
)

// Crypto returns the bundle installing `crypto.randomUUID` and
// `crypto.getRandomValues`, backed by google/uuid and stdlib crypto/rand
// respectively. Neither is gated behind a feature tag: this is a host
// capability addon (like Timers or Console), not a syntax feature the
// era tables govern.
func Crypto() OptionBundle {
	return OptionBundle{
		Name:           "crypto",
		FeatureControl: Unrestricted(),
		Globals: map[string]GlobalFactory{
			"crypto": cryptoGlobal,
		},
	}
}

func cryptoGlobal(it *interp.Interpreter) value.Value {
	obj, ref := newObject(it)
	setMethod(it, obj, "randomUUID", func(a value.NativeArgs) (value.Value, error) {
		return value.String(uuid.NewString()), nil
	})
	setMethod(it, obj, "getRandomValues", func(a value.NativeArgs) (value.Value, error) {
		r, ok := arg(a.Args, 0).(value.Ref)
		if !ok {
			return nil, it.Throw(it.NewError("TypeError", "getRandomValues requires a typed-array-shaped array argument"))
		}
		arr, ok := it.Heap.Get(r).(*value.ArrayObject)
		if !ok {
			return nil, it.Throw(it.NewError("TypeError", "getRandomValues requires a typed-array-shaped array argument"))
		}
		buf := make([]byte, len(arr.Elements))
		if _, err := rand.Read(buf); err != nil {
			return nil, it.Throw(it.NewError("Error", "random source unavailable: "+err.Error()))
		}
		for i, b := range buf {
			arr.Elements[i] = value.Number(b)
		}
		return r, nil
	})
	return ref
}
