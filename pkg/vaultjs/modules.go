package vaultjs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vaultjs/vaultjs/internal/module"
)

// FileResolver resolves bare and relative specifiers against a plain
// filesystem directory tree, the default a host reaches for when it has
// no bundler or virtual-FS of its own. A specifier with no file extension
// at all has ".js" appended before the file is read, mirroring Node's
// extension-inference convention for relative imports.
type FileResolver struct {
	// Root anchors a specifier that does not resolve relative to its
	// importer (the entry module's own import path). Defaults to the
	// process's working directory when empty.
	Root string
}

// Resolve implements Resolver.
func (r FileResolver) Resolve(specifier, importerPath string) (*ResolvedModule, error) {
	base := filepath.Dir(importerPath)
	if importerPath == "" {
		base = r.Root
		if base == "" {
			base = "."
		}
	}
	path := specifier
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, specifier)
	}
	if filepath.Ext(path) == "" {
		path += ".js"
	}
	path = filepath.Clean(path)
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vaultjs: cannot read module %q: %w", path, err)
	}
	return &ResolvedModule{Path: path, Source: string(src)}, nil
}

// EvalModule loads and evaluates the ES module at path (resolved the same
// way a static or dynamic import would be) and returns its namespace as a
// host map, one entry per export. Returns an error if WithModuleResolver
// was never supplied. Of opts, only FeatureMode/FeatureTags are applied;
// Globals, Limits, TimeoutMs, Validator and Full are not.
func (e *Engine) EvalModule(ctx context.Context, path string, opts RunOptions) (map[string]any, error) {
	if !e.modulesEnabled {
		return nil, fmt.Errorf("vaultjs: module system is disabled; construct the Engine with WithModuleResolver")
	}

	var out map[string]any
	var runErr error
	err := e.sched.Run(func() error {
		restoreGate := e.overlayFeatures(opts)
		defer restoreGate()

		m, lerr := e.loader.Load(ctx, path, "")
		if lerr != nil {
			runErr = lerr
			return nil
		}
		out, runErr = e.namespaceToHost(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, runErr
}

// namespaceToHost converts a loaded module's exports into a plain host
// map, reading each live binding directly rather than going through the
// guest-visible frozen namespace object (which exists only to be imported
// by other guest code).
func (e *Engine) namespaceToHost(m *module.Module) (map[string]any, error) {
	out := make(map[string]any, len(m.Env.Exports))
	for name, b := range m.Env.Exports {
		if !b.Initialized {
			out[name] = nil
			continue
		}
		v, err := guestToHost(e.it, b.Value)
		if err != nil {
			return nil, fmt.Errorf("vaultjs: converting export %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// ClearModuleCache empties the module loader's cache, so the next
// EvalModule/import() re-reads and re-evaluates every module from
// scratch instead of reusing a previously loaded graph. A no-op when the
// module system is disabled.
func (e *Engine) ClearModuleCache() {
	if e.loader != nil {
		e.loader.Clear()
	}
}

// GetModuleExports returns the already-loaded module at the resolved path
// without loading or re-evaluating anything, for a host inspecting what a
// prior EvalModule/import produced. The second return is false if path
// was never loaded (or the module system is disabled).
func (e *Engine) GetModuleExports(path string) (map[string]any, bool, error) {
	if e.loader == nil {
		return nil, false, nil
	}
	m, ok := e.loader.Get(path)
	if !ok {
		return nil, false, nil
	}
	exports, err := e.namespaceToHost(m)
	if err != nil {
		return nil, true, err
	}
	return exports, true, nil
}

// IsModuleSystemEnabled reports whether WithModuleResolver was supplied
// at construction.
func (e *Engine) IsModuleSystemEnabled() bool {
	return e.modulesEnabled
}
