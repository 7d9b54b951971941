// Package paths centralizes the default filesystem locations used by
// caskpack.
package paths

import (
	"os"
	"path/filepath"
)

// DefaultArtifactsDir returns the default output directory for staged
// bundles, archives and checksums, relative to the project root.
func DefaultArtifactsDir(projectRoot string) string {
	return filepath.Join(projectRoot, "dist", "artifacts")
}

// ScratchDir returns the per-build scratch directory for the given build
// ID. Scratch directories live under the OS temp dir so abandoned builds
// are reclaimed by normal temp cleanup.
func ScratchDir(buildID string) string {
	return filepath.Join(os.TempDir(), "caskpack-build-"+buildID)
}

// DefaultConfigName is the config file caskpack looks for in the project
// root and the working directory.
const DefaultConfigName = "caskpack.toml"
