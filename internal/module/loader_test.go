package module

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/vaultjs/vaultjs/internal/bridge"
	"github.com/vaultjs/vaultjs/internal/feature"
	"github.com/vaultjs/vaultjs/internal/governor"
	"github.com/vaultjs/vaultjs/internal/interp"
)

// mapResolver resolves specifiers by exact match against its keys,
// ignoring the importer path, mirroring the in-memory resolver used by
// the engine-level scenario tests.
type mapResolver map[string]string

func (r mapResolver) Resolve(specifier, importerPath string) (*ResolvedModule, error) {
	src, ok := r[specifier]
	if !ok {
		return nil, fmt.Errorf("no such module %q", specifier)
	}
	return &ResolvedModule{Path: specifier, Source: src}, nil
}

func newTestLoader(sources map[string]string) *Loader {
	it := interp.New(feature.New(feature.NewFeatureSet(feature.AllTags...)), bridge.DefaultPolicy())
	return NewLoader(it, mapResolver(sources), 0, governor.Limits{})
}

func TestLoadSingleModuleExports(t *testing.T) {
	l := newTestLoader(map[string]string{
		"main.js": `export const value = 1 + 2;`,
	})
	m, err := l.Load(context.Background(), "main.js", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := m.Env.Exports["value"]
	if !ok {
		t.Fatal("expected an export named value")
	}
	if !b.Initialized {
		t.Fatal("expected the export binding to be initialized after evaluation")
	}
}

func TestLoadCachesByResolvedPath(t *testing.T) {
	l := newTestLoader(map[string]string{
		"main.js": `export const value = 1;`,
	})
	first, err := l.Load(context.Background(), "main.js", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := l.Load(context.Background(), "main.js", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatal("expected a second Load of the same path to return the cached Module")
	}
}

func TestClearForcesReload(t *testing.T) {
	l := newTestLoader(map[string]string{
		"main.js": `export const value = 1;`,
	})
	first, err := l.Load(context.Background(), "main.js", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Clear()
	if _, ok := l.Get("main.js"); ok {
		t.Fatal("expected Get to miss after Clear")
	}
	second, err := l.Load(context.Background(), "main.js", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Fatal("expected Clear to force a fresh Module on the next Load")
	}
}

func TestImportCycleResolvesInsteadOfLooping(t *testing.T) {
	l := newTestLoader(map[string]string{
		"a.js": `import { b } from "b.js"; export const a = "a:" + (typeof b);`,
		"b.js": `import { a } from "a.js"; export const b = "b";`,
	})
	done := make(chan error, 1)
	go func() {
		_, err := l.Load(context.Background(), "a.js", "")
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error resolving a cycle: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out resolving an import cycle, suspect infinite recursion")
	}
}

func TestNamedExportOfUndeclaredBindingErrors(t *testing.T) {
	l := newTestLoader(map[string]string{
		"main.js": `export { missing };`,
	})
	if _, err := l.Load(context.Background(), "main.js", ""); err == nil {
		t.Fatal("expected exporting an undeclared binding to error")
	}
}

func TestImportOfMissingExportErrors(t *testing.T) {
	l := newTestLoader(map[string]string{
		"main.js": `import { nope } from "dep.js";`,
		"dep.js":  `export const present = 1;`,
	})
	if _, err := l.Load(context.Background(), "main.js", ""); err == nil {
		t.Fatal("expected importing a nonexistent named export to error")
	}
}

func TestGetMissesBeforeLoad(t *testing.T) {
	l := newTestLoader(map[string]string{"main.js": `export const value = 1;`})
	if _, ok := l.Get("main.js"); ok {
		t.Fatal("expected Get to miss before any Load")
	}
}
