// Package command runs external programs for WPK.
//
// Programs are always started with an explicit argument vector and never
// through a shell, so package names and paths cannot be reinterpreted as
// shell syntax.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// Command describes one program invocation.
type Command struct {
	// Name is the program to run, resolved through PATH when it has no separator.
	Name string
	Args []string
	// Dir is the working directory of the child process. Empty means the
	// current directory of WPK itself.
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the argument vector for logs.
func (c Command) String() string {
	s := c.Name
	for _, a := range c.Args {
		s += " " + a
	}
	return s
}

// Runner starts programs and waits for them to finish.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
	LookPath(name string) (string, error)
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command and waits for it. A non-zero exit status is
// returned as an error wrapping *exec.ExitError.
func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	if c.Name == "" {
		return fmt.Errorf("command name is required")
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("run %s: %w", c.Name, ctx.Err())
		}
		return fmt.Errorf("run %s: %w", c.Name, err)
	}
	return nil
}

// LookPath reports where name would be found on PATH.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// ExitCode extracts the exit status from an error returned by Run.
// It returns -1 when err does not carry one.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
