package helpers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type record struct {
	App     string `json:"app"`
	Version string `json:"version"`
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "record.json")
	want := record{App: "mycli", Version: "1.0.0"}

	if err := SaveJSON(path, want, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadJSON[record](path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != want {
		t.Errorf("LoadJSON() = %+v, want %+v", *got, want)
	}
}

func TestLoadJSONMissingFile(t *testing.T) {
	_, err := LoadJSON[record](filepath.Join(t.TempDir(), "absent.json"))
	var jle *JSONLoadError
	if !errors.As(err, &jle) {
		t.Fatalf("LoadJSON() error = %v, want *JSONLoadError", err)
	}
	if jle.Reason != "file not found" {
		t.Errorf("Reason = %q, want %q", jle.Reason, "file not found")
	}
}

func TestLoadJSONMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadJSON[record](path)
	var jle *JSONLoadError
	if !errors.As(err, &jle) {
		t.Fatalf("LoadJSON() error = %v, want *JSONLoadError", err)
	}
	if jle.Unwrap() == nil {
		t.Error("parse failure does not wrap the underlying error")
	}
}

func TestFileAndDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(file) {
		t.Error("FileExists() = false for a regular file")
	}
	if FileExists(dir) {
		t.Error("FileExists() = true for a directory")
	}
	if !DirExists(dir) {
		t.Error("DirExists() = false for a directory")
	}
	if DirExists(file) {
		t.Error("DirExists() = true for a regular file")
	}
	if FileExists(filepath.Join(dir, "absent")) || DirExists(filepath.Join(dir, "absent")) {
		t.Error("existence check passed for a missing path")
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(path, 0o755); err != nil {
		t.Fatal(err)
	}
	if !DirExists(path) {
		t.Error("EnsureDir() did not create the directory tree")
	}
	// Idempotent on an existing directory.
	if err := EnsureDir(path, 0o755); err != nil {
		t.Errorf("EnsureDir() on existing directory: %v", err)
	}
}

func TestRemovePath(t *testing.T) {
	dir := t.TempDir()

	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RemovePath(file); err != nil {
		t.Fatal(err)
	}
	if FileExists(file) {
		t.Error("RemovePath() left the file behind")
	}

	tree := filepath.Join(dir, "tree", "sub")
	if err := os.MkdirAll(tree, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := RemovePath(filepath.Join(dir, "tree")); err != nil {
		t.Fatal(err)
	}
	if DirExists(filepath.Join(dir, "tree")) {
		t.Error("RemovePath() left the directory tree behind")
	}

	// Missing paths are not an error.
	if err := RemovePath(filepath.Join(dir, "absent")); err != nil {
		t.Errorf("RemovePath() on missing path: %v", err)
	}
}
