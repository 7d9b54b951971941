package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caskpack/caskpack/internal/bundle"
	"github.com/caskpack/caskpack/internal/config"
	"github.com/caskpack/caskpack/internal/interactive"
	"github.com/caskpack/caskpack/internal/output"
	"github.com/caskpack/caskpack/internal/pipeline"
)

// versionOverrideEnv is the CI-facing version override. It is read exactly
// once, here at the command boundary; everything below works from the
// immutable BuildRequest.
const versionOverrideEnv = "CASKPACK_VERSION"

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	var (
		projectRoot     string
		appName         string
		packageName     string
		extrasFlag      string
		platformTag     string
		versionOverride string
		artifactsDir    string
		pythonBin       string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a relocatable bundle and its tar.gz + sha256 artifacts",
		Long: `Build runs the full packaging pipeline:

  1. Resolve the release version (override, or static scan of __init__.py)
  2. Create an isolated copy-semantics virtualenv and install the project
  3. Stage the bundle layout (bin/ launcher + libexec/ runtime), pruning
     bytecode caches
  4. Archive the staged bundle as tar.gz and emit the SHA-256 sidecar

The pipeline is all-or-nothing: any failure halts before archival.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absRoot, err := filepath.Abs(projectRoot)
			if err != nil {
				return fmt.Errorf("failed to resolve project root: %w", err)
			}

			cfg, cfgPath, err := config.NewLoader(absRoot, configPath).Load()
			if err != nil {
				return err
			}
			if cfgPath != "" {
				output.Debug("Using config file: %s", cfgPath)
			}

			req, err := assembleRequest(cfg, requestFlags{
				projectRoot:     absRoot,
				appName:         appName,
				packageName:     packageName,
				extras:          extrasFlag,
				extrasSet:       cmd.Flags().Changed("extras"),
				platformTag:     platformTag,
				versionOverride: versionOverride,
				artifactsDir:    artifactsDir,
				python:          pythonBin,
			})
			if err != nil {
				return err
			}

			result, err := pipeline.New(nil, output.DefaultLogger).Run(cmd.Context(), req)
			if err != nil {
				// Operational failures are not usage mistakes.
				cmd.SilenceUsage = bundle.ShouldSilenceUsage(err)
				return err
			}

			if jsonMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}

			output.Info("")
			output.Info("Bundle complete! Artifacts:")
			output.Info("  - Bundle directory: %s", result.StagingRoot)
			output.Info("  - Tarball:          %s", result.ArchivePath)
			output.Info("  - SHA256:           %s", result.ChecksumPath)
			output.Info("  - Manifest:         %s", result.ManifestPath)
			output.Info("")
			output.Info("Next steps:")
			output.Info("  1. Codesign/notarize the tarball on macOS if distributing externally.")
			output.Info("  2. Upload the tarball and update distribution metadata (e.g. Homebrew Cask).")
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRoot, "project", ".",
		"Path to the Python project source tree")
	cmd.Flags().StringVar(&appName, "app", "",
		"Launcher/executable name (default: project.name from caskpack.toml)")
	cmd.Flags().StringVar(&packageName, "package", "",
		"Importable top-level Python package (default: project.package from caskpack.toml)")
	cmd.Flags().StringVar(&extrasFlag, "extras", "",
		"Comma-separated optional dependency groups; pass \"\" to skip extras")
	cmd.Flags().StringVar(&platformTag, "platform-tag", "",
		"Platform suffix for artifact names (default: select from build.platform_tags)")
	cmd.Flags().StringVar(&versionOverride, "version", "",
		"Version override; wins over the __version__ assignment")
	cmd.Flags().StringVar(&artifactsDir, "artifacts-dir", "",
		"Output directory (default: build.artifacts_dir from caskpack.toml)")
	cmd.Flags().StringVar(&pythonBin, "python", "",
		"Host interpreter used to create the build environment")

	return cmd
}

// requestFlags carries the raw flag values into request assembly.
type requestFlags struct {
	projectRoot     string
	appName         string
	packageName     string
	extras          string
	extrasSet       bool
	platformTag     string
	versionOverride string
	artifactsDir    string
	python          string
}

// assembleRequest merges flags, config and the single environment read into
// an immutable BuildRequest. Precedence: flag > environment > config file >
// default.
func assembleRequest(cfg *config.FileConfig, f requestFlags) (bundle.BuildRequest, error) {
	req := bundle.BuildRequest{
		ProjectRoot: f.projectRoot,
		AppName:     firstNonEmpty(f.appName, cfg.Project.Name),
		PackageName: firstNonEmpty(f.packageName, cfg.Project.Package),
		SourceDir:   cfg.Project.SourceDir,
		PlatformTag: f.platformTag,
		Python:      firstNonEmpty(f.python, cfg.Build.Python),
	}

	req.VersionOverride = f.versionOverride
	if req.VersionOverride == "" {
		req.VersionOverride = os.Getenv(versionOverrideEnv)
	}

	if f.extrasSet {
		req.Extras = splitExtras(f.extras)
	} else {
		req.Extras = cfg.Build.Extras
	}

	dir := firstNonEmpty(f.artifactsDir, cfg.Build.ArtifactsDir)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(f.projectRoot, dir)
	}
	req.ArtifactsDir = dir

	if req.PlatformTag == "" {
		tag, err := choosePlatformTag(cfg.Build.PlatformTags)
		if err != nil {
			return bundle.BuildRequest{}, err
		}
		req.PlatformTag = tag
	}

	if err := req.Validate(); err != nil {
		return bundle.BuildRequest{}, err
	}
	return req, nil
}

// choosePlatformTag picks the target platform when --platform-tag is not
// given: interactive selection on a TTY with several configured tags,
// otherwise the first configured tag.
func choosePlatformTag(tags []string) (string, error) {
	switch {
	case len(tags) == 0:
		return "", fmt.Errorf("no platform tag given and build.platform_tags is empty")
	case len(tags) == 1 || !interactive.IsTerminal():
		return tags[0], nil
	}

	_, tag, err := interactive.NewPrompterAdapter().SelectFromList("Select target platform", tags)
	if err != nil {
		return "", fmt.Errorf("platform selection cancelled: %w", err)
	}
	return tag, nil
}

func splitExtras(s string) []string {
	var extras []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			extras = append(extras, part)
		}
	}
	return extras
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
