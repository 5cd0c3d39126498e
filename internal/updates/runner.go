package updates

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Runner executes a backend's query command and captures stdout.
type Runner interface {
	// Run executes argv and returns its stdout. A non-zero exit returns
	// a *RunError carrying the exit code and captured stderr.
	Run(ctx context.Context, argv []string) (string, error)
}

// RunError reports a command that started but exited non-zero.
type RunError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("command exited with status %d: %v", e.ExitCode, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// execRunner runs commands via os/exec.
type execRunner struct{}

// NewRunner returns the default command runner.
func NewRunner() Runner { return execRunner{} }

func (execRunner) Run(ctx context.Context, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), &RunError{
				ExitCode: exitErr.ExitCode(),
				Stderr:   string(exitErr.Stderr),
				Err:      err,
			}
		}
		// Spawn failure (e.g. binary removed after the startup probe).
		return "", err
	}
	return string(out), nil
}
