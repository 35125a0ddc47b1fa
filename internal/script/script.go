// Package script finds and runs the post-install script shipped inside a
// package archive.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zer0users/wpk/internal/command"
)

const (
	// DefaultName is the conventional post-install script file name.
	DefaultName = "Packagefile"
	// DefaultInterpreter runs the script.
	DefaultInterpreter = "python3"
)

var (
	// ErrNoScript means the package ships no post-install script. Installation
	// is still complete.
	ErrNoScript = errors.New("no Packagefile found")
	// ErrScript means the script ran and exited unsuccessfully.
	ErrScript = errors.New("Packagefile execution returned non-zero exit code")
)

// Result describes one FindAndRun call.
type Result struct {
	// Path of the script that was selected, empty when none was found.
	Path string
	// Matches counts every candidate seen during the search.
	Matches  int
	ExitCode int
}

// Found reports whether a script was located.
func (r Result) Found() bool {
	return r.Path != ""
}

// Config configures a Runner.
type Config struct {
	Name        string
	Interpreter string
	Stdout      io.Writer
	Stderr      io.Writer
	Logger      *slog.Logger
}

// Runner locates and executes post-install scripts.
type Runner struct {
	runner      command.Runner
	name        string
	interpreter string
	stdout      io.Writer
	stderr      io.Writer
	logger      *slog.Logger
}

// NewRunner creates a script runner that starts processes through runner.
func NewRunner(runner command.Runner, cfg Config) *Runner {
	r := &Runner{
		runner:      runner,
		name:        cfg.Name,
		interpreter: cfg.Interpreter,
		stdout:      cfg.Stdout,
		stderr:      cfg.Stderr,
		logger:      cfg.Logger,
	}
	if r.name == "" {
		r.name = DefaultName
	}
	if r.interpreter == "" {
		r.interpreter = DefaultInterpreter
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

// FindAndRun searches rootDir for the script and, when found, executes it
// with the interpreter from inside the script's directory. It returns
// ErrNoScript when nothing matches and an error wrapping ErrScript when the
// script fails. The working directory of WPK itself is never changed.
func (r *Runner) FindAndRun(ctx context.Context, rootDir string) (Result, error) {
	matches, err := FindAll(rootDir, r.name)
	if err != nil {
		return Result{}, fmt.Errorf("search %s: %w", rootDir, err)
	}
	if len(matches) == 0 {
		return Result{}, ErrNoScript
	}

	result := Result{Path: matches[0], Matches: len(matches)}
	if len(matches) > 1 {
		r.logger.Warn("multiple post-install scripts found, using shallowest", "selected", result.Path, "count", len(matches))
	}

	dir := filepath.Dir(result.Path)
	r.logger.Debug("running post-install script", "script", result.Path, "interpreter", r.interpreter)

	err = r.runner.Run(ctx, command.Command{
		Name:   r.interpreter,
		Args:   []string{filepath.Base(result.Path)},
		Dir:    dir,
		Stdout: r.stdout,
		Stderr: r.stderr,
	})
	if err != nil {
		result.ExitCode = command.ExitCode(err)
		return result, fmt.Errorf("%w: %w", ErrScript, err)
	}
	return result, nil
}

// Find returns the script FindAll ranks first, or ErrNoScript.
func Find(rootDir, name string) (string, error) {
	matches, err := FindAll(rootDir, name)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", ErrNoScript
	}
	return matches[0], nil
}

// FindAll returns every regular file called name below rootDir ordered
// shallowest first, ties broken by path. Symlinks are not followed.
func FindAll(rootDir, name string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && d.Name() == name {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		di, dj := depth(rootDir, matches[i]), depth(rootDir, matches[j])
		if di != dj {
			return di < dj
		}
		return matches[i] < matches[j]
	})
	return matches, nil
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/")
}
