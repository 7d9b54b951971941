package bundle

import (
	"fmt"
	"strings"
)

// VersionResolutionError is returned when no usable version assignment can
// be determined for the project. It aborts the pipeline before any build
// environment is created.
type VersionResolutionError struct {
	Path   string
	Reason string
}

func (e *VersionResolutionError) Error() string {
	return fmt.Sprintf("version resolution failed: %s: %s", e.Reason, e.Path)
}

// ShouldSilenceUsage marks the error as operational: the command syntax was
// fine, the project tree was not.
func (e *VersionResolutionError) ShouldSilenceUsage() bool { return true }

// RecoveryHint suggests how to fix the project tree.
func (e *VersionResolutionError) RecoveryHint() string {
	return "ensure the package __init__.py contains exactly one top-level __version__ = \"X.Y.Z\" assignment, or pass --version"
}

// BuildError is returned when an external tool invocation exits non-zero.
// It carries the tool's stderr verbatim for operator diagnosis and is never
// retried automatically.
type BuildError struct {
	Step   string
	Cmd    string
	Stderr string
	Err    error
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("%s failed: %s", e.Step, e.Cmd)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\nstderr:\n" + s
	}
	return msg
}

func (e *BuildError) Unwrap() error { return e.Err }

// ShouldSilenceUsage marks the error as operational.
func (e *BuildError) ShouldSilenceUsage() bool { return true }

// StagingIntegrityError is returned when the staged bundle fails its
// post-build self-check. It must prevent archival: a bundle that cannot
// locate its own interpreter is not a valid artifact.
type StagingIntegrityError struct {
	StagingRoot string
	Reason      string
}

func (e *StagingIntegrityError) Error() string {
	return fmt.Sprintf("staged bundle %s failed self-check: %s", e.StagingRoot, e.Reason)
}

// ShouldSilenceUsage marks the error as operational.
func (e *StagingIntegrityError) ShouldSilenceUsage() bool { return true }

// RecoveryHint suggests the usual cause.
func (e *StagingIntegrityError) RecoveryHint() string {
	return "the build environment may be incomplete; re-run the build with --verbose and inspect the staging root"
}

// SilenceUsageError is implemented by errors that should not trigger CLI
// usage output: the user's command was correct, something else failed.
type SilenceUsageError interface {
	error
	ShouldSilenceUsage() bool
}

// RecoverableError is implemented by errors that carry an actionable
// recovery hint for the user.
type RecoverableError interface {
	error
	RecoveryHint() string
}

// ShouldSilenceUsage checks whether err (or anything it wraps) asks for CLI
// usage output to be suppressed.
func ShouldSilenceUsage(err error) bool {
	if err == nil {
		return false
	}
	if sue, ok := err.(SilenceUsageError); ok {
		return sue.ShouldSilenceUsage()
	}
	if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
		return ShouldSilenceUsage(unwrapper.Unwrap())
	}
	return false
}

// RecoveryHint extracts a recovery hint from err or anything it wraps.
// Returns "" when none is available.
func RecoveryHint(err error) string {
	if err == nil {
		return ""
	}
	if re, ok := err.(RecoverableError); ok {
		return re.RecoveryHint()
	}
	if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
		return RecoveryHint(unwrapper.Unwrap())
	}
	return ""
}
