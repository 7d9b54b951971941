package executor

import (
	"bytes"
	"context"
	"os/exec"
)

// OSRunner implements Runner using os/exec. This is the production adapter.
type OSRunner struct{}

// NewOSRunner creates a command runner backed by the real OS.
func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

// Run executes the command via exec.CommandContext, buffering stdout and
// stderr separately.
func (r *OSRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
