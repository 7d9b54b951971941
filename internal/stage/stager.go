// Package stage assembles the final relocatable bundle layout from a built
// environment.
package stage

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caskpack/caskpack/internal/bundle"
	"github.com/caskpack/caskpack/internal/helpers"
	"github.com/caskpack/caskpack/internal/launcher"
	"github.com/caskpack/caskpack/internal/output"
	"github.com/caskpack/caskpack/internal/venv"
)

// StagedBundle is the finished on-disk layout:
//
//	<app>-<platform_tag>/
//	  bin/<app>                      launcher, executable
//	  bin/<app>.bat                  Windows launcher
//	  libexec/<app>-venv/...         relocated runtime
//
// Every path inside the runtime is reachable by relative traversal from the
// launcher, so the whole tree stays valid wherever the installer puts it.
type StagedBundle struct {
	// Root is the staging root directory.
	Root string
	// Launcher is the spec the bundle's launchers were generated from.
	Launcher launcher.Spec
}

// LauncherPath returns the POSIX launcher path inside the bundle.
func (s *StagedBundle) LauncherPath() string {
	return filepath.Join(s.Root, launcher.BinDirName, s.Launcher.AppName)
}

// Stager copies built environments into staged bundles.
type Stager struct {
	log *output.Logger
}

// NewStager creates a Stager. A nil logger falls back to the package
// default.
func NewStager(log *output.Logger) *Stager {
	if log == nil {
		log = output.DefaultLogger
	}
	return &Stager{log: log}
}

// Stage builds the bundle layout for req from env under req.ArtifactsDir.
// Staging is idempotent: a pre-existing staging root is removed wholesale
// first, so repeated builds never merge stale files with fresh ones. The
// source environment is copied, not moved, and may be cleaned up
// independently afterward.
func (st *Stager) Stage(env *venv.BuiltEnvironment, req bundle.BuildRequest) (*StagedBundle, error) {
	root := filepath.Join(req.ArtifactsDir, req.BundleName())
	if err := helpers.RemovePath(root); err != nil {
		return nil, fmt.Errorf("failed to clean staging root %s: %w", root, err)
	}
	if err := helpers.EnsureDir(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging root %s: %w", root, err)
	}

	spec := launcher.NewSpec(req.AppName, req.PackageName)
	runtimeTarget := spec.RuntimeDir(root)

	st.log.Info("Staging runtime into %s", runtimeTarget)
	if err := copyTree(env.Path, runtimeTarget); err != nil {
		return nil, fmt.Errorf("failed to copy build environment: %w", err)
	}

	pruned, err := pruneBytecode(runtimeTarget)
	if err != nil {
		return nil, fmt.Errorf("failed to prune bytecode: %w", err)
	}
	st.log.Debug("Pruned %d bytecode entries", pruned)

	binDir := filepath.Join(root, launcher.BinDirName)
	if err := spec.WriteTo(binDir); err != nil {
		return nil, err
	}

	staged := &StagedBundle{Root: root, Launcher: spec}
	if err := st.verify(staged); err != nil {
		return nil, err
	}
	return staged, nil
}

// verify is the post-stage self-check: the runtime must be present and the
// launcher's candidate probing must land on a real interpreter. A bundle
// failing this check must never reach the archive step.
func (st *Stager) verify(staged *StagedBundle) error {
	runtimeBin := staged.Launcher.RuntimeBinDir(staged.Root)
	if !helpers.DirExists(runtimeBin) {
		return &bundle.StagingIntegrityError{
			StagingRoot: staged.Root,
			Reason:      fmt.Sprintf("runtime bin directory %s is missing", runtimeBin),
		}
	}

	entries, err := os.ReadDir(staged.Launcher.RuntimeDir(staged.Root))
	if err != nil || len(entries) == 0 {
		return &bundle.StagingIntegrityError{
			StagingRoot: staged.Root,
			Reason:      "runtime directory is empty",
		}
	}

	if _, ok := staged.Launcher.Resolve(staged.Root, nil).(launcher.Handoff); !ok {
		return &bundle.StagingIntegrityError{
			StagingRoot: staged.Root,
			Reason:      fmt.Sprintf("no interpreter candidate resolves inside %s", runtimeBin),
		}
	}

	if !helpers.FileExists(staged.LauncherPath()) {
		return &bundle.StagingIntegrityError{
			StagingRoot: staged.Root,
			Reason:      "launcher script is missing",
		}
	}

	return nil
}

// copyTree recursively copies src into dst, preserving file modes and
// recreating symlinks as symlinks. Relative symlinks inside the
// environment keep working after relocation; that is the point of copying
// them rather than their targets.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// pruneBytecode removes every __pycache__ directory and standalone
// .pyc/.pyo file under root. The interpreter regenerates bytecode at first
// run, so pruning is size-only and must never affect behavior.
func pruneBytecode(root string) (int, error) {
	var pruned int
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A just-removed __pycache__ parent is expected here.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() && d.Name() == "__pycache__" {
			if err := os.RemoveAll(path); err != nil {
				return err
			}
			pruned++
			return filepath.SkipDir
		}
		if !d.IsDir() {
			ext := strings.ToLower(filepath.Ext(path))
			if ext == ".pyc" || ext == ".pyo" {
				if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
					return err
				}
				pruned++
			}
		}
		return nil
	})
	return pruned, err
}
