package archive

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/zer0users/wpk/internal/command"
)

// DefaultUnzipProgram is the external tool used by CommandUnpacker.
const DefaultUnzipProgram = "unzip"

// CommandUnpacker extracts archives with the unzip command line tool.
type CommandUnpacker struct {
	runner  command.Runner
	program string
}

// NewCommandUnpacker returns an unpacker that runs program (DefaultUnzipProgram
// when empty) through runner.
func NewCommandUnpacker(runner command.Runner, program string) *CommandUnpacker {
	if program == "" {
		program = DefaultUnzipProgram
	}
	return &CommandUnpacker{runner: runner, program: program}
}

// Name identifies the unpacker in logs.
func (u *CommandUnpacker) Name() string {
	return u.program
}

// Unpack runs "unzip -o -q <archive> -d <target>". Paths travel as separate
// arguments and are never interpreted by a shell.
func (u *CommandUnpacker) Unpack(ctx context.Context, archivePath, targetDir string) error {
	var stderr bytes.Buffer
	err := u.runner.Run(ctx, command.Command{
		Name:   u.program,
		Args:   []string{"-o", "-q", archivePath, "-d", targetDir},
		Stderr: &stderr,
	})
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
