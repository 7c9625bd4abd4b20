package preset

import (
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/vaultjs/vaultjs/internal/interp"
	"github.com/vaultjs/vaultjs/internal/value"
)

// Config returns the bundle installing a frozen `CONFIG` global decoded
// from host-supplied YAML text, grounded on the teacher's go.mod already
// carrying goccy/go-yaml (there as an indirect dependency of its own
// tooling; promoted here to a direct one since this engine's config
// surface exercises it on purpose). A host wanting a JS config surface
// typically hands the guest its own deployment config as data, not as
// something the guest can rewrite, hence CONFIG is frozen one level at a
// time all the way down rather than left writable.
func Config(yamlText string) OptionBundle {
	return OptionBundle{
		Name:           "config",
		FeatureControl: Unrestricted(),
		Globals: map[string]GlobalFactory{
			"CONFIG": func(it *interp.Interpreter) value.Value {
				var decoded any
				if err := yaml.Unmarshal([]byte(yamlText), &decoded); err != nil {
					return it.NewError("Error", "CONFIG: invalid YAML: "+err.Error())
				}
				return configToValue(it, decoded)
			},
		},
	}
}

func configToValue(it *interp.Interpreter, v any) value.Value {
	switch x := v.(type) {
	case nil:
		return value.Null{}
	case bool:
		return value.Bool(x)
	case string:
		return value.String(x)
	case int:
		return value.Number(x)
	case int64:
		return value.Number(x)
	case uint64:
		return value.Number(x)
	case float64:
		return value.Number(x)
	case []any:
		elems := make([]value.Value, len(x))
		for i, e := range x {
			elems[i] = configToValue(it, e)
		}
		arr := &value.ArrayObject{Proto: it.ArrayProto, Elements: elems, Length: len(elems), Frozen: true}
		return it.Heap.Alloc(arr)
	case map[string]any:
		obj, ref := newObject(it)
		for _, k := range sortedKeys(x) {
			setValue(obj, k, configToValue(it, x[k]), true)
		}
		obj.Frozen = true
		obj.Extensible = false
		return ref
	default:
		return value.Undefined{}
	}
}

// sortedKeys gives CONFIG's property enumeration order a stable,
// deterministic shape regardless of Go map iteration order, since
// go-yaml decodes mappings into map[string]any.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
