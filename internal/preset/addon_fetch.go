package preset

import (
	"io"
	"net/http"
	"time"

	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/value"
)

// Fetch returns the bundle installing `fetch(url)`, a trusted-host
// capability (per spec.md's curated add-on list) performing a real
// outbound GET via stdlib net/http and settling a Promise with a
// Response-shaped object (`.status`, `.ok`, `.text()`, `.json()`). The
// request runs synchronously inside the native call (this engine has no
// concurrent I/O event loop), so guest code observes the Promise as
// already settled by the time `.then` is reached — correct for a
// run-to-completion model, just not overlapped with other guest work.
// Adding "fetch" to internal/bridge.SecurityPolicy.BlockedNames does not
// remove or disable this global (that set is consulted only on property
// writes); the global is absent only when this bundle is not included.
func Fetch() OptionBundle {
	return OptionBundle{
		Name:           "fetch",
		FeatureControl: Unrestricted(),
		Globals: map[string]GlobalFactory{
			"fetch": fetchGlobal,
		},
	}
}

const fetchTimeout = 10 * time.Second

func fetchGlobal(it *interp.Interpreter) value.Value {
	client := &http.Client{Timeout: fetchTimeout}
	return it.NativeFunction("fetch", func(a value.NativeArgs) (value.Value, error) {
		url := argString(a.Args, 0)
		ref, h := it.NewPromise()
		resp, err := client.Get(url)
		if err != nil {
			it.RejectPromise(h, it.NewError("Error", "fetch: "+err.Error()))
			return ref, nil
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			it.RejectPromise(h, it.NewError("Error", "fetch: "+err.Error()))
			return ref, nil
		}
		it.ResolvePromise(h, fetchResponse(it, resp.StatusCode, body))
		return ref, nil
	})
}

func fetchResponse(it *interp.Interpreter, status int, body []byte) value.Value {
	obj, ref := newObject(it)
	setValue(obj, "status", value.Number(status), true)
	setValue(obj, "ok", value.Bool(status >= 200 && status < 300), true)
	setMethod(it, obj, "text", func(a value.NativeArgs) (value.Value, error) {
		return value.String(body), nil
	})
	setMethod(it, obj, "json", func(a value.NativeArgs) (value.Value, error) {
		return jsonParseBytes(it, body)
	})
	return ref
}
