// Package venv constructs the throwaway, relocatable virtual environment
// the bundle ships.
package venv

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/caskpack/caskpack/internal/bundle"
	"github.com/caskpack/caskpack/internal/executor"
	"github.com/caskpack/caskpack/internal/helpers"
	"github.com/caskpack/caskpack/internal/output"
)

// baselineTools are the packaging tools upgraded inside the fresh
// environment before anything else is installed. Pinned so two builds of
// the same source install through identical tooling.
var baselineTools = []string{
	"pip==24.2",
	"setuptools==75.1.0",
	"wheel==0.44.0",
}

// BuiltEnvironment is an ephemeral interpreter installation owned by one
// build invocation. It is created with copy semantics so the whole tree can
// be relocated without dangling symlinks back to the host interpreter.
type BuiltEnvironment struct {
	// Path is the environment root (the directory containing bin/ or
	// Scripts/).
	Path string
}

// Python returns the path of the interpreter inside the environment.
func (e *BuiltEnvironment) Python() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.Path, "Scripts", "python.exe")
	}
	return filepath.Join(e.Path, "bin", "python3")
}

// BinDir returns the executable-holding directory of the environment.
func (e *BuiltEnvironment) BinDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.Path, "Scripts")
	}
	return filepath.Join(e.Path, "bin")
}

// Builder creates build environments by shelling out to the host Python.
type Builder struct {
	runner executor.Runner
	log    *output.Logger
}

// NewBuilder creates a Builder. A nil logger falls back to the package
// default.
func NewBuilder(runner executor.Runner, log *output.Logger) *Builder {
	if log == nil {
		log = output.DefaultLogger
	}
	return &Builder{runner: runner, log: log}
}

// Build creates a fresh environment at envDir, upgrades the baseline
// packaging tools, and installs the project in editable mode with the
// requested extras. Install failures surface as BuildError with the tool's
// stderr attached verbatim; nothing is retried.
func (b *Builder) Build(ctx context.Context, req bundle.BuildRequest, envDir string) (*BuiltEnvironment, error) {
	if err := helpers.RemovePath(envDir); err != nil {
		return nil, fmt.Errorf("failed to clean environment directory %s: %w", envDir, err)
	}

	b.log.Info("Creating build virtual environment at %s", envDir)
	if err := b.run(ctx, "environment creation", req.ProjectRoot,
		req.Python, "-m", "venv", "--copies", envDir); err != nil {
		return nil, err
	}

	env := &BuiltEnvironment{Path: envDir}

	upgradeArgs := append([]string{"-m", "pip", "install", "--upgrade"}, baselineTools...)
	if err := b.run(ctx, "packaging tools upgrade", req.ProjectRoot,
		env.Python(), upgradeArgs...); err != nil {
		return nil, err
	}

	projectSpec := req.ProjectRoot + req.ExtrasSpec()
	if err := b.run(ctx, "project install", req.ProjectRoot,
		env.Python(), "-m", "pip", "install", "-e", projectSpec); err != nil {
		return nil, err
	}

	return env, nil
}

// run executes one external command, echoing it first, and wraps any
// non-zero exit in a BuildError carrying captured stderr.
func (b *Builder) run(ctx context.Context, step, dir, name string, args ...string) error {
	cmdline := name + " " + strings.Join(args, " ")
	b.log.Command("%s", cmdline)

	_, stderr, err := b.runner.Run(ctx, dir, name, args...)
	if err != nil {
		return &bundle.BuildError{
			Step:   step,
			Cmd:    cmdline,
			Stderr: string(stderr),
			Err:    err,
		}
	}
	return nil
}
