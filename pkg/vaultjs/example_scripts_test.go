package vaultjs_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/vaultjs/vaultjs/pkg/vaultjs"
)

// TestExampleScripts runs every fixture under examples/ through a fresh
// ES2024+console engine and snapshots its stdout, mirroring the teacher's
// fixture_test.go (snaps.MatchSnapshot per example file).
func TestExampleScripts(t *testing.T) {
	files, err := filepath.Glob("../../examples/*.js")
	if err != nil {
		t.Fatalf("globbing examples: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no example scripts found under examples/")
	}

	for _, file := range files {
		file := file
		name := filepath.Base(file)
		t.Run(name, func(t *testing.T) {
			source, err := os.ReadFile(file)
			if err != nil {
				t.Fatalf("reading %s: %v", file, err)
			}

			var buf bytes.Buffer
			engine, err := vaultjs.New(
				vaultjs.WithPresets("ES2024", "console"),
				vaultjs.WithConsole(&buf),
			)
			if err != nil {
				t.Fatalf("constructing engine: %v", err)
			}

			if _, err := engine.Eval(context.Background(), string(source), vaultjs.RunOptions{}); err != nil {
				t.Fatalf("running %s: %v", name, err)
			}

			snaps.MatchSnapshot(t, name+"_output", buf.String())
		})
	}
}

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}
