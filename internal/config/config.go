// Package config loads and validates the caskpack.toml project
// configuration.
package config

// FileConfig mirrors the caskpack.toml layout.
//
//	[project]
//	name = "mycli"
//	package = "mycli_app"
//	source_dir = "src"
//
//	[build]
//	python = "python3"
//	extras = ["broker"]
//	platform_tags = ["macos-arm64", "macos-x86_64", "macos-universal2"]
//	artifacts_dir = "dist/artifacts"
type FileConfig struct {
	Project ProjectConfig `toml:"project"`
	Build   BuildConfig   `toml:"build"`
}

// ProjectConfig identifies the Python project being packaged.
type ProjectConfig struct {
	// Name is the launcher/executable name.
	Name string `toml:"name"`
	// Package is the importable top-level Python package.
	Package string `toml:"package"`
	// SourceDir is the directory under the project root holding the
	// package. Defaults to "src".
	SourceDir string `toml:"source_dir"`
}

// BuildConfig holds build defaults that flags may override.
type BuildConfig struct {
	// Python is the host interpreter used to create the build
	// environment. Defaults to "python3".
	Python string `toml:"python"`
	// Extras are the dependency groups installed when --extras is not
	// given.
	Extras []string `toml:"extras"`
	// PlatformTags are the known target platforms, offered interactively
	// when --platform-tag is not given. The first entry is the
	// non-interactive default.
	PlatformTags []string `toml:"platform_tags"`
	// ArtifactsDir is the output directory, relative to the project root
	// unless absolute.
	ArtifactsDir string `toml:"artifacts_dir"`
}

// DefaultFileConfig returns the configuration used when no caskpack.toml
// exists.
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		Project: ProjectConfig{
			SourceDir: "src",
		},
		Build: BuildConfig{
			Python:       "python3",
			PlatformTags: []string{"macos-universal2"},
			ArtifactsDir: "dist/artifacts",
		},
	}
}
