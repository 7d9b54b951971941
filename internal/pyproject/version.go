// Package pyproject statically extracts metadata from a Python project
// tree. Nothing here imports or executes Python code: building must never
// trigger import-time side effects or require the project's runtime
// dependencies to be installed.
package pyproject

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caskpack/caskpack/internal/bundle"
)

// assignmentRe matches a top-level __version__ assignment. The anchor at
// column zero is what makes the scan "top-level": indented assignments
// inside functions or conditionals do not count.
var assignmentRe = regexp.MustCompile(`^__version__\s*=\s*(['"])([^'"]*)(['"])\s*(#.*)?$`)

// versionShapeRe is the accepted X.Y.Z[-suffix] shape.
var versionShapeRe = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.\-]+)?$`)

// ResolveVersion determines the release version for the request.
// A trimmed non-empty VersionOverride wins verbatim; otherwise the version
// is extracted from the package init file. It is a pure function of the
// request: no environment reads, no side effects.
func ResolveVersion(req bundle.BuildRequest) (string, error) {
	if override := strings.TrimSpace(req.VersionOverride); override != "" {
		return override, nil
	}

	initPath := filepath.Join(req.ProjectRoot, req.SourceDir, req.PackageName, "__init__.py")
	version, err := extractVersion(initPath)
	if err != nil {
		return "", err
	}

	if !versionShapeRe.MatchString(version) {
		return "", &bundle.VersionResolutionError{
			Path:   initPath,
			Reason: "version " + quote(version) + " does not match X.Y.Z[-suffix]",
		}
	}
	return version, nil
}

// extractVersion scans the init file text for __version__ assignments.
// Exactly one distinct value must be present; zero assignments or
// conflicting values fail resolution rather than picking one silently.
func extractVersion(initPath string) (string, error) {
	data, err := os.ReadFile(initPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &bundle.VersionResolutionError{
				Path:   initPath,
				Reason: "package init file not found",
			}
		}
		return "", &bundle.VersionResolutionError{
			Path:   initPath,
			Reason: "failed to read package init file: " + err.Error(),
		}
	}

	var found []string
	for _, line := range strings.Split(string(data), "\n") {
		m := assignmentRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		// Opening and closing quote must agree, as in any parsed
		// string literal.
		if m[1] != m[3] {
			continue
		}
		found = append(found, m[2])
	}

	switch {
	case len(found) == 0:
		return "", &bundle.VersionResolutionError{
			Path:   initPath,
			Reason: "no top-level __version__ assignment found",
		}
	case len(found) > 1 && !allEqual(found):
		return "", &bundle.VersionResolutionError{
			Path:   initPath,
			Reason: "conflicting __version__ assignments: " + strings.Join(quoteAll(found), ", "),
		}
	}
	return found[0], nil
}

func allEqual(values []string) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = quote(v)
	}
	return out
}

func quote(v string) string {
	return "\"" + v + "\""
}
