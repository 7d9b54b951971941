package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caskpack/caskpack/internal/archive"
	"github.com/caskpack/caskpack/internal/bundle"
	"github.com/caskpack/caskpack/internal/helpers"
)

// fabricatingRunner stands in for the Python toolchain: when it sees the
// venv creation command it materializes a plausible environment tree so
// the later stages have something real to stage and archive.
type fabricatingRunner struct {
	commands []string
}

func (r *fabricatingRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	r.commands = append(r.commands, name+" "+strings.Join(args, " "))

	if len(args) >= 3 && args[0] == "-m" && args[1] == "venv" {
		envDir := args[len(args)-1]
		pkgDir := filepath.Join(envDir, "lib", "python3.12", "site-packages", "mycli_app")
		if err := os.MkdirAll(filepath.Join(envDir, "bin"), 0o755); err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(pkgDir, 0o755); err != nil {
			return nil, nil, err
		}
		writes := map[string]os.FileMode{
			filepath.Join(envDir, "bin", "python3"):    0o755,
			filepath.Join(envDir, "pyvenv.cfg"):        0o644,
			filepath.Join(pkgDir, "__init__.py"):       0o644,
			filepath.Join(pkgDir, "__main__.py"):       0o644,
			filepath.Join(pkgDir, "cli.pyc"):           0o644,
			filepath.Join(envDir, "bin", "activate"):   0o644,
			filepath.Join(envDir, "bin", "pip"):        0o755,
		}
		for path, mode := range writes {
			if err := os.WriteFile(path, []byte("fabricated "+filepath.Base(path)), mode); err != nil {
				return nil, nil, err
			}
		}
	}
	return nil, nil, nil
}

// makeProject lays out a minimal src-layout project carrying a version
// constant.
func makeProject(t *testing.T, version string) string {
	t.Helper()
	root := t.TempDir()
	pkgDir := filepath.Join(root, "src", "mycli_app")
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	init := "\"\"\"mycli package.\"\"\"\n\n__version__ = \"" + version + "\"\n"
	if err := os.WriteFile(filepath.Join(pkgDir, "__init__.py"), []byte(init), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func pipelineRequest(t *testing.T, projectRoot string) bundle.BuildRequest {
	t.Helper()
	return bundle.BuildRequest{
		ProjectRoot:  projectRoot,
		AppName:      "mycli",
		PackageName:  "mycli_app",
		SourceDir:    "src",
		Extras:       []string{"broker"},
		PlatformTag:  "macos-arm64",
		ArtifactsDir: filepath.Join(t.TempDir(), "dist", "artifacts"),
		Python:       "python3",
	}
}

func TestRunProducesArtifactSet(t *testing.T) {
	runner := &fabricatingRunner{}
	req := pipelineRequest(t, makeProject(t, "1.0.0"))

	result, err := New(runner, nil).Run(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	if result.Version != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", result.Version)
	}
	if result.BuildID == "" {
		t.Error("BuildID is empty")
	}

	wantArchive := filepath.Join(req.ArtifactsDir, "mycli-1.0.0-macos-arm64.tar.gz")
	if result.ArchivePath != wantArchive {
		t.Errorf("ArchivePath = %q, want %q", result.ArchivePath, wantArchive)
	}
	for _, path := range []string{result.ArchivePath, result.ChecksumPath, result.ManifestPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing artifact %s: %v", path, err)
		}
	}

	// The sidecar must verify against the archive it describes.
	digest, err := archive.VerifyChecksum(result.ArchivePath)
	if err != nil {
		t.Fatalf("produced archive fails checksum verification: %v", err)
	}
	if digest != result.Digest {
		t.Errorf("verified digest %s differs from reported %s", digest, result.Digest)
	}

	manifest, err := helpers.LoadJSON[Manifest](result.ManifestPath)
	if err != nil {
		t.Fatal(err)
	}
	if manifest.App != "mycli" || manifest.Version != "1.0.0" || manifest.PlatformTag != "macos-arm64" {
		t.Errorf("manifest identity = %s/%s/%s, want mycli/1.0.0/macos-arm64",
			manifest.App, manifest.Version, manifest.PlatformTag)
	}
	if manifest.SHA256 != result.Digest {
		t.Errorf("manifest sha256 %s differs from result digest %s", manifest.SHA256, result.Digest)
	}
	if manifest.BuildID != result.BuildID {
		t.Errorf("manifest build id %s differs from result %s", manifest.BuildID, result.BuildID)
	}

	// Staging left behind for inspection; its launcher is executable.
	launcher := filepath.Join(result.StagingRoot, "bin", "mycli")
	info, err := os.Stat(launcher)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o111 == 0 {
		t.Error("staged launcher is not executable")
	}
}

func TestRunCleansScratchDirectory(t *testing.T) {
	runner := &fabricatingRunner{}
	req := pipelineRequest(t, makeProject(t, "1.0.0"))

	result, err := New(runner, nil).Run(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	// The build environment lived under the per-build scratch dir, which
	// must be gone after the run; the staged copy is self-contained.
	if strings.Contains(result.StagingRoot, "caskpack-build-") {
		t.Fatalf("staging root %q sits inside the scratch dir", result.StagingRoot)
	}
	scratch := filepath.Join(os.TempDir(), "caskpack-build-"+result.BuildID)
	if _, err := os.Stat(scratch); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("scratch directory %s survived the run", scratch)
	}
}

func TestRunVersionResolutionFailureArchivesNothing(t *testing.T) {
	runner := &fabricatingRunner{}
	req := pipelineRequest(t, t.TempDir()) // no package tree at all

	_, err := New(runner, nil).Run(context.Background(), req)
	var vre *bundle.VersionResolutionError
	if !errors.As(err, &vre) {
		t.Fatalf("Run() error = %v, want VersionResolutionError", err)
	}
	if len(runner.commands) != 0 {
		t.Errorf("commands ran despite failed version resolution: %v", runner.commands)
	}
	if _, err := os.Stat(req.ArtifactsDir); !errors.Is(err, os.ErrNotExist) {
		t.Error("artifacts directory was created despite the failed build")
	}
}

func TestRunInvalidRequest(t *testing.T) {
	req := pipelineRequest(t, makeProject(t, "1.0.0"))
	req.AppName = ""

	if _, err := New(&fabricatingRunner{}, nil).Run(context.Background(), req); err == nil {
		t.Fatal("Run() accepted a request without an app name")
	}
}

func TestRunPrunedBytecodeNeverArchived(t *testing.T) {
	runner := &fabricatingRunner{}
	req := pipelineRequest(t, makeProject(t, "2.0.0"))

	result, err := New(runner, nil).Run(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	err = filepath.WalkDir(result.StagingRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasSuffix(d.Name(), ".pyc") || d.Name() == "__pycache__" {
			t.Errorf("bytecode artifact staged: %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
