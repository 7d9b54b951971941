// Package bundle defines the value types and error taxonomy shared by the
// packaging pipeline.
package bundle

import (
	"fmt"
	"sort"
	"strings"
)

// BuildRequest is the immutable input configuration for one build
// invocation. It is assembled once at the CLI boundary (the only place that
// reads environment variables) and passed through every pipeline component.
type BuildRequest struct {
	// ProjectRoot is the path to the Python project source tree.
	ProjectRoot string

	// AppName is the launcher/executable name (e.g. "mycli").
	AppName string

	// PackageName is the importable top-level Python package (e.g.
	// "mycli_app"), used for version detection and module execution.
	PackageName string

	// SourceDir is the directory under ProjectRoot holding the package
	// (commonly "src").
	SourceDir string

	// Extras are the optional dependency group names to install. May be
	// empty. Order is not significant; installs use a sorted copy.
	Extras []string

	// PlatformTag identifies the target OS/architecture. It is opaque to
	// the pipeline: never parsed, only embedded in names.
	PlatformTag string

	// VersionOverride, when non-empty after trimming, wins over the
	// version extracted from the package init file.
	VersionOverride string

	// ArtifactsDir is where the staged bundle, archive and checksum land.
	ArtifactsDir string

	// Python is the host interpreter used to create the build
	// environment (e.g. "python3").
	Python string
}

// Validate reports the first structural problem with the request.
func (r BuildRequest) Validate() error {
	switch {
	case r.ProjectRoot == "":
		return fmt.Errorf("project root is required")
	case r.AppName == "":
		return fmt.Errorf("app name is required")
	case r.PackageName == "":
		return fmt.Errorf("package name is required")
	case r.PlatformTag == "":
		return fmt.Errorf("platform tag is required")
	case r.ArtifactsDir == "":
		return fmt.Errorf("artifacts directory is required")
	case r.Python == "":
		return fmt.Errorf("python interpreter is required")
	}
	return nil
}

// ExtrasSpec returns the pip requirement suffix for the requested extras,
// e.g. "[broker,tls]", or "" when no extras were requested.
func (r BuildRequest) ExtrasSpec() string {
	if len(r.Extras) == 0 {
		return ""
	}
	extras := make([]string, len(r.Extras))
	copy(extras, r.Extras)
	sort.Strings(extras)
	return "[" + strings.Join(extras, ",") + "]"
}

// BundleName returns the staged bundle directory name:
// <app>-<platform_tag>.
func (r BuildRequest) BundleName() string {
	return fmt.Sprintf("%s-%s", r.AppName, r.PlatformTag)
}

// ArtifactName returns the archive file name for the resolved version:
// <app>-<version>-<platform_tag>.tar.gz.
func (r BuildRequest) ArtifactName(version string) string {
	return fmt.Sprintf("%s-%s-%s.tar.gz", r.AppName, version, r.PlatformTag)
}
