// Package pipeline orchestrates one full bundle build: version resolution,
// environment construction, staging, launcher synthesis, archival and
// checksum emission.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/caskpack/caskpack/internal/archive"
	"github.com/caskpack/caskpack/internal/bundle"
	"github.com/caskpack/caskpack/internal/executor"
	"github.com/caskpack/caskpack/internal/helpers"
	"github.com/caskpack/caskpack/internal/output"
	"github.com/caskpack/caskpack/internal/paths"
	"github.com/caskpack/caskpack/internal/pyproject"
	"github.com/caskpack/caskpack/internal/stage"
	"github.com/caskpack/caskpack/internal/venv"
)

// Result describes a completed build.
type Result struct {
	BuildID      string
	Version      string
	StagingRoot  string
	ArchivePath  string
	ChecksumPath string
	ManifestPath string
	Digest       string
}

// Manifest is the JSON build record written next to the archive for
// downstream automation (cask templating, signing).
type Manifest struct {
	BuildID     string    `json:"build_id"`
	App         string    `json:"app"`
	Version     string    `json:"version"`
	PlatformTag string    `json:"platform_tag"`
	Archive     string    `json:"archive"`
	SHA256      string    `json:"sha256"`
	BuiltAt     time.Time `json:"built_at"`
}

// Pipeline runs builds. One Pipeline value may serve multiple sequential
// builds; each Run uses a disjoint scratch directory and staging root, so
// parallel builds for different platforms belong in separate processes, as
// the CI harness drives them.
type Pipeline struct {
	runner executor.Runner
	log    *output.Logger
}

// New creates a Pipeline. A nil runner gets the OS adapter; a nil logger
// the package default.
func New(runner executor.Runner, log *output.Logger) *Pipeline {
	if runner == nil {
		runner = executor.NewOSRunner()
	}
	if log == nil {
		log = output.DefaultLogger
	}
	return &Pipeline{runner: runner, log: log}
}

// Run executes the whole pipeline for req. All-or-nothing: any failure
// halts immediately and nothing is archived; a partial staging root left
// behind is not a valid artifact and is cleaned up by the next run's
// idempotent staging.
func (p *Pipeline) Run(ctx context.Context, req bundle.BuildRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	version, err := pyproject.ResolveVersion(req)
	if err != nil {
		return nil, err
	}

	buildID := uuid.NewString()
	p.log.Info("Building %s version %s for %s (build %s)", req.AppName, version, req.PlatformTag, buildID)

	scratch := paths.ScratchDir(buildID)
	defer func() {
		// Best-effort: an abandoned scratch dir is reclaimed by OS
		// temp cleanup anyway.
		if err := os.RemoveAll(scratch); err != nil {
			p.log.Debug("Failed to remove scratch directory %s: %v", scratch, err)
		}
	}()

	builder := venv.NewBuilder(p.runner, p.log)
	env, err := builder.Build(ctx, req, filepath.Join(scratch, "bundle-venv"))
	if err != nil {
		return nil, err
	}

	if err := helpers.EnsureDir(req.ArtifactsDir, 0o755); err != nil {
		return nil, err
	}

	stager := stage.NewStager(p.log)
	staged, err := stager.Stage(env, req)
	if err != nil {
		return nil, err
	}
	p.log.Success("Staged bundle at %s", staged.Root)

	archivePath := filepath.Join(req.ArtifactsDir, req.ArtifactName(version))
	if err := archive.Create(staged.Root, archivePath); err != nil {
		return nil, err
	}

	checksumPath, digest, err := archive.WriteChecksum(archivePath)
	if err != nil {
		return nil, err
	}
	p.log.Success("Archive %s (sha256 %s)", filepath.Base(archivePath), digest)

	manifest := Manifest{
		BuildID:     buildID,
		App:         req.AppName,
		Version:     version,
		PlatformTag: req.PlatformTag,
		Archive:     filepath.Base(archivePath),
		SHA256:      digest,
		BuiltAt:     time.Now().UTC(),
	}
	manifestPath := archivePath + ".manifest.json"
	if err := helpers.SaveJSON(manifestPath, manifest, 0o644); err != nil {
		return nil, err
	}

	return &Result{
		BuildID:      buildID,
		Version:      version,
		StagingRoot:  staged.Root,
		ArchivePath:  archivePath,
		ChecksumPath: checksumPath,
		ManifestPath: manifestPath,
		Digest:       digest,
	}, nil
}
