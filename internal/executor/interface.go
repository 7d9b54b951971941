// Package executor abstracts external command execution so the pipeline
// stays testable without a Python toolchain on the test machine.
package executor

import "context"

// Runner executes an external command and returns its stdout and stderr
// separately. The pipeline surfaces stderr verbatim on failure, so the two
// streams must not be combined.
//
// Caller is responsible for argument construction; nothing is passed
// through a shell.
type Runner interface {
	// Run executes name with args, with dir as the working directory
	// ("" means the current directory). The command is killed when ctx
	// is cancelled.
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)
}
