package launcher

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// makeBundle creates a bundle skeleton with the given interpreter names
// present in the runtime bin directory.
func makeBundle(t *testing.T, spec Spec, interpreters ...string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "mycli-macos-arm64")
	binDir := spec.RuntimeBinDir(root)
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range interpreters {
		if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestNewSpecRuntimePath(t *testing.T) {
	spec := NewSpec("mycli", "mycli_app")
	if spec.RuntimeRelPath != "libexec/mycli-venv" {
		t.Errorf("RuntimeRelPath = %q, want %q", spec.RuntimeRelPath, "libexec/mycli-venv")
	}
}

func TestResolve(t *testing.T) {
	spec := NewSpec("mycli", "mycli_app")

	tests := []struct {
		name         string
		interpreters []string
		args         []string
		wantHandoff  string // base name of the chosen interpreter, "" for diagnostic
	}{
		{
			name:         "versioned name preferred per candidate order",
			interpreters: []string{"python3", "python"},
			wantHandoff:  "python3",
		},
		{
			name:         "falls back to unversioned name",
			interpreters: []string{"python"},
			wantHandoff:  "python",
		},
		{
			name:         "falls back to fully versioned name",
			interpreters: []string{"python3.12"},
			wantHandoff:  "python3.12",
		},
		{
			name:         "no interpreter yields diagnostic",
			interpreters: nil,
		},
		{
			name:         "arguments forwarded unchanged",
			interpreters: []string{"python3"},
			args:         []string{"--version", "--", "weird arg"},
			wantHandoff:  "python3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := makeBundle(t, spec, tt.interpreters...)
			outcome := spec.Resolve(root, tt.args)

			if tt.wantHandoff == "" {
				diag, ok := outcome.(Diagnostic)
				if !ok {
					t.Fatalf("Resolve() = %T, want Diagnostic", outcome)
				}
				if diag.ExitCode != 1 {
					t.Errorf("Diagnostic.ExitCode = %d, want 1", diag.ExitCode)
				}
				if !strings.Contains(diag.Message, spec.RuntimeBinDir(root)) {
					t.Errorf("Diagnostic.Message = %q, want it to name %q", diag.Message, spec.RuntimeBinDir(root))
				}
				if !strings.Contains(diag.Message, "reinstall") {
					t.Errorf("Diagnostic.Message = %q, want a reinstall hint", diag.Message)
				}
				return
			}

			handoff, ok := outcome.(Handoff)
			if !ok {
				t.Fatalf("Resolve() = %T, want Handoff", outcome)
			}
			if got := filepath.Base(handoff.Interpreter); got != tt.wantHandoff {
				t.Errorf("Handoff.Interpreter = %q, want base %q", handoff.Interpreter, tt.wantHandoff)
			}
			wantArgs := append([]string{"-m", "mycli_app"}, tt.args...)
			if len(handoff.Args) != len(wantArgs) {
				t.Fatalf("Handoff.Args = %v, want %v", handoff.Args, wantArgs)
			}
			for i := range wantArgs {
				if handoff.Args[i] != wantArgs[i] {
					t.Errorf("Handoff.Args[%d] = %q, want %q", i, handoff.Args[i], wantArgs[i])
				}
			}
		})
	}
}

func TestResolveIgnoresNonExecutableCandidates(t *testing.T) {
	spec := NewSpec("mycli", "mycli_app")
	root := makeBundle(t, spec, "python")
	// python3 exists first in candidate order but is not executable;
	// resolution must skip it, not hand off to it.
	if err := os.WriteFile(filepath.Join(spec.RuntimeBinDir(root), "python3"), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	handoff, ok := spec.Resolve(root, nil).(Handoff)
	if !ok {
		t.Fatal("Resolve() expected Handoff")
	}
	if filepath.Base(handoff.Interpreter) != "python" {
		t.Errorf("Handoff.Interpreter = %q, want python", handoff.Interpreter)
	}
}

func TestResolveRelocatedBundle(t *testing.T) {
	spec := NewSpec("mycli", "mycli_app")
	root := makeBundle(t, spec, "python3")

	// Move the whole bundle somewhere else; resolution must work at the
	// new location because nothing in the bundle is absolute.
	newRoot := filepath.Join(t.TempDir(), "relocated", "mycli-macos-arm64")
	if err := os.MkdirAll(filepath.Dir(newRoot), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(root, newRoot); err != nil {
		t.Fatal(err)
	}

	handoff, ok := spec.Resolve(newRoot, nil).(Handoff)
	if !ok {
		t.Fatal("Resolve() expected Handoff after relocation")
	}
	if !strings.HasPrefix(handoff.Interpreter, newRoot) {
		t.Errorf("Handoff.Interpreter = %q, want it under %q", handoff.Interpreter, newRoot)
	}
}

func TestBundleRootFromLauncher(t *testing.T) {
	spec := NewSpec("mycli", "mycli_app")
	root := makeBundle(t, spec, "python3")
	binDir := filepath.Join(root, BinDirName)
	if err := spec.WriteTo(binDir); err != nil {
		t.Fatal(err)
	}
	launcherPath := filepath.Join(binDir, "mycli")

	t.Run("direct invocation", func(t *testing.T) {
		got, err := BundleRootFromLauncher(launcherPath)
		if err != nil {
			t.Fatal(err)
		}
		assertSamePath(t, got, root)
	})

	t.Run("symlink from unrelated directory", func(t *testing.T) {
		linkDir := t.TempDir()
		link := filepath.Join(linkDir, "mycli")
		if err := os.Symlink(launcherPath, link); err != nil {
			t.Fatal(err)
		}
		got, err := BundleRootFromLauncher(link)
		if err != nil {
			t.Fatal(err)
		}
		assertSamePath(t, got, root)
	})

	t.Run("chained symlinks", func(t *testing.T) {
		hop1 := filepath.Join(t.TempDir(), "hop1")
		hop2 := filepath.Join(t.TempDir(), "hop2")
		if err := os.Symlink(launcherPath, hop1); err != nil {
			t.Fatal(err)
		}
		if err := os.Symlink(hop1, hop2); err != nil {
			t.Fatal(err)
		}
		got, err := BundleRootFromLauncher(hop2)
		if err != nil {
			t.Fatal(err)
		}
		assertSamePath(t, got, root)
	})
}

// assertSamePath compares paths after symlink evaluation; t.TempDir may
// itself sit behind a symlink (e.g. /tmp on macOS).
func assertSamePath(t *testing.T, got, want string) {
	t.Helper()
	resolvedWant, err := filepath.EvalSymlinks(want)
	if err != nil {
		t.Fatal(err)
	}
	if got != resolvedWant {
		t.Errorf("bundle root = %q, want %q", got, resolvedWant)
	}
}

func TestScriptDeterministic(t *testing.T) {
	spec := NewSpec("mycli", "mycli_app")
	first, err := spec.Script()
	if err != nil {
		t.Fatal(err)
	}
	second, err := spec.Script()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("Script() output differs between calls; launcher must be deterministic")
	}
}

func TestScriptContents(t *testing.T) {
	spec := NewSpec("mycli", "mycli_app")
	script, err := spec.Script()
	if err != nil {
		t.Fatal(err)
	}
	text := string(script)

	for _, want := range []string{
		"#!/usr/bin/env bash",
		`RUNTIME_DIR="$APP_ROOT/libexec/mycli-venv"`,
		"for candidate in python3 python python3.13 python3.12 python3.11; do",
		`exec "$PYTHON" -m mycli_app "$@"`,
		"readlink",
		"exit 1",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Script() missing %q", want)
		}
	}

	// Relocatability: the script may not embed any build-machine path.
	if strings.Contains(text, os.TempDir()) {
		t.Error("Script() embeds an absolute build path")
	}
}

func TestWriteTo(t *testing.T) {
	spec := NewSpec("mycli", "mycli_app")
	binDir := filepath.Join(t.TempDir(), "bin")
	if err := spec.WriteTo(binDir); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(filepath.Join(binDir, "mycli"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Error("POSIX launcher is not executable")
	}

	if _, err := os.Stat(filepath.Join(binDir, "mycli.bat")); err != nil {
		t.Errorf("batch launcher missing: %v", err)
	}
}
