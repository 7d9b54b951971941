// Package launcher synthesizes the executable scripts that end users and
// package managers invoke, and models the interpreter resolution those
// scripts perform at run time.
package launcher

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// BinDirName is the launcher-holding directory inside the bundle.
	BinDirName = "bin"

	// LibexecDirName is the vendor directory holding the runtime.
	LibexecDirName = "libexec"

	// runtimeSuffix is appended to the app name to form the runtime
	// directory name inside libexec.
	runtimeSuffix = "-venv"
)

// DefaultInterpreters is the ordered candidate list probed inside the
// runtime's bin directory: unversioned-modern first, then generic, then
// versioned names. First match wins; the list is a pure data value so tests
// can enumerate exactly what gets tried.
var DefaultInterpreters = []string{
	"python3",
	"python",
	"python3.13",
	"python3.12",
	"python3.11",
}

// Spec describes one launcher. It is pure data: the same spec always emits
// byte-identical scripts, which keeps bundle archives reproducible.
type Spec struct {
	// AppName is the launcher file name.
	AppName string

	// PackageName is the importable Python package executed via -m.
	PackageName string

	// RuntimeRelPath is the runtime directory relative to the bundle
	// root, always slash-separated (it is embedded in a POSIX script).
	// The Bundle Stager copies the environment to exactly this path;
	// launcher and stager must agree or every install is broken.
	RuntimeRelPath string

	// Interpreters is the ordered candidate list probed inside
	// <runtime>/bin.
	Interpreters []string
}

// NewSpec builds the canonical launcher spec for an application. Both the
// stager and the synthesizer derive the runtime location from here, which
// is what keeps them in lock-step.
func NewSpec(appName, packageName string) Spec {
	return Spec{
		AppName:        appName,
		PackageName:    packageName,
		RuntimeRelPath: LibexecDirName + "/" + appName + runtimeSuffix,
		Interpreters:   DefaultInterpreters,
	}
}

// RuntimeDir returns the absolute runtime directory for a bundle root.
func (s Spec) RuntimeDir(bundleRoot string) string {
	return filepath.Join(bundleRoot, filepath.FromSlash(s.RuntimeRelPath))
}

// RuntimeBinDir returns the executable-holding directory inside the
// runtime.
func (s Spec) RuntimeBinDir(bundleRoot string) string {
	return filepath.Join(s.RuntimeDir(bundleRoot), "bin")
}

// Outcome is the terminal result of launcher resolution. There are exactly
// two: hand off to an interpreter, or print a diagnostic and exit. There is
// no retry state and no PATH fallback.
type Outcome interface {
	isOutcome()
}

// Handoff is a successful resolution: replace the current process with
// Interpreter running Args.
type Handoff struct {
	// Interpreter is the absolute path of the interpreter to exec.
	Interpreter string
	// Args are the interpreter arguments, including the -m module
	// invocation and all forwarded user arguments unchanged.
	Args []string
}

func (Handoff) isOutcome() {}

// Diagnostic is a failed resolution: print Message to stderr and exit with
// ExitCode.
type Diagnostic struct {
	Message  string
	ExitCode int
}

func (Diagnostic) isOutcome() {}

// Resolve performs the launcher's run-time algorithm against a bundle root:
// probe the interpreter candidates in order inside the runtime bin
// directory and hand off to the first one that is a regular executable
// file. No candidate found is a hard stop; falling back to a system
// interpreter would silently run against the wrong dependency set.
func (s Spec) Resolve(bundleRoot string, args []string) Outcome {
	binDir := s.RuntimeBinDir(bundleRoot)
	for _, name := range s.Interpreters {
		candidate := filepath.Join(binDir, name)
		info, err := os.Stat(candidate)
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
			continue
		}
		handoffArgs := append([]string{"-m", s.PackageName}, args...)
		return Handoff{Interpreter: candidate, Args: handoffArgs}
	}

	return Diagnostic{
		Message: fmt.Sprintf(
			"Error: could not locate an executable interpreter in %s\nThe %s installation appears incomplete. Please reinstall %s.",
			binDir, s.AppName, s.AppName),
		ExitCode: 1,
	}
}

// BundleRootFromLauncher resolves a launcher invocation path to its bundle
// root: follow symlinks to the launcher's true location, then go one level
// up from its containing directory. This mirrors what the emitted script
// does and exists so the relationship is testable in-process.
func BundleRootFromLauncher(invokedPath string) (string, error) {
	resolved, err := filepath.EvalSymlinks(invokedPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve launcher path %s: %w", invokedPath, err)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", err
	}
	return filepath.Dir(filepath.Dir(abs)), nil
}

// WriteTo writes the POSIX launcher (executable) and the Windows batch
// launcher into binDir.
func (s Spec) WriteTo(binDir string) error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("failed to create launcher directory %s: %w", binDir, err)
	}

	posix, err := s.Script()
	if err != nil {
		return err
	}
	posixPath := filepath.Join(binDir, s.AppName)
	if err := os.WriteFile(posixPath, posix, 0o755); err != nil {
		return fmt.Errorf("failed to write launcher %s: %w", posixPath, err)
	}

	batch, err := s.BatchScript()
	if err != nil {
		return err
	}
	batchPath := filepath.Join(binDir, s.AppName+".bat")
	if err := os.WriteFile(batchPath, batch, 0o644); err != nil {
		return fmt.Errorf("failed to write launcher %s: %w", batchPath, err)
	}

	return nil
}
