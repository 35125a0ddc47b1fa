package main

import (
	"context"
	"fmt"
	"io"

	"github.com/zer0users/wpk/internal/archive"
	"github.com/zer0users/wpk/internal/command"
	"github.com/zer0users/wpk/internal/install"
	"github.com/zer0users/wpk/internal/script"
	"github.com/zer0users/wpk/internal/transfer"
)

// runInstall handles the `wpk install` subcommand
func (c *cli) runInstall(ctx context.Context, args []string) int {
	opts, err := parseArgs(args, flagGlobal|flagYes)
	if err != nil {
		return c.fail(err)
	}
	if opts.help {
		printInstallHelp(c.stdout)
		return 0
	}
	if len(opts.positional) == 0 {
		fmt.Fprintln(c.stderr, "Error: Package name required")
		fmt.Fprintln(c.stderr, "Usage: wpk install <package>")
		return 1
	}
	if len(opts.positional) > 1 {
		return c.fail(fmt.Errorf("install takes exactly one package name, got %d", len(opts.positional)))
	}

	a, err := c.open(ctx, opts)
	if err != nil {
		return c.fail(err)
	}
	defer a.Close()

	runner := command.NewExecRunner()
	unpacker, err := archive.Select(a.cfg.Install.Unpacker, runner)
	if err != nil {
		return c.fail(err)
	}
	a.logger.Debug("unpacker selected", "unpacker", unpacker.Name())

	installer, err := install.NewInstaller(install.Config{
		Catalog: a.catalog,
		Transfer: transfer.NewDownloader(a.session.Client,
			transfer.WithUserAgent(a.session.UserAgent),
			transfer.WithLogger(a.logger)),
		Extractor: archive.NewExtractor(unpacker, a.logger),
		Scripts: script.NewRunner(runner, script.Config{
			Name:        a.cfg.Install.ScriptName,
			Interpreter: a.cfg.Install.Interpreter,
			Stdout:      c.stdout,
			Stderr:      c.stderr,
			Logger:      a.logger,
		}),
		Confirmer: install.NewPromptConfirmer(c.stdin, c.stdout),
		AssumeYes: opts.yes || a.cfg.Install.AssumeYes,
		Out:       c.stdout,
		TempDir:   a.cfg.Install.TempDir,
		Progress:  newProgressRenderer(c.stderr),
		Logger:    a.logger,
	})
	if err != nil {
		return c.fail(err)
	}

	result, err := installer.Install(ctx, opts.positional[0])
	if err != nil {
		return c.fail(err)
	}
	a.logger.Info("install complete",
		"package", result.Package,
		"outcome", result.Outcome,
		"bytes", result.Transferred,
		"warnings", len(result.Warnings),
		"duration", result.Duration)
	return 0
}

func printInstallHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: wpk install <package> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Download a package, extract it and run its Packagefile.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -y, --yes         Do not ask for confirmation")
	fmt.Fprintln(w, "  --config <path>   Use this wpk.lua instead of the default")
	fmt.Fprintln(w, "  --debug           Log debug information to stderr")
	fmt.Fprintln(w, "  -h, --help        Show this help")
}
