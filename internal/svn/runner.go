package svn

import (
	"bytes"
	"context"
	stdErrors "errors"
	"os/exec"
)

// Result holds the captured output of one backend process invocation.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte

	// Stderr is the captured standard error.
	Stderr []byte

	// ExitCode is the exit code returned by the process.
	ExitCode int
}

// Runner executes a backend process and captures its output.
// The returned error is non-nil only when the process could not be started at
// all; a process that ran and exited non-zero is reported via Result.ExitCode.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// execRunner runs processes via os/exec, honoring context cancellation.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if stdErrors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}
