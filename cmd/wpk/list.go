package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/zer0users/wpk/internal/catalog"
)

// runList handles the `wpk list` subcommand
func (c *cli) runList(ctx context.Context, args []string) int {
	opts, err := parseArgs(args, flagGlobal|flagFormat)
	if err != nil {
		return c.fail(err)
	}
	if opts.help {
		printListHelp(c.stdout)
		return 0
	}
	if len(opts.positional) > 0 {
		return c.fail(fmt.Errorf("list takes no arguments"))
	}

	a, err := c.open(ctx, opts)
	if err != nil {
		return c.fail(err)
	}
	defer a.Close()

	entries, err := a.catalog.List(ctx)
	if err != nil {
		return c.fail(err)
	}
	a.logger.Debug("listing fetched", "packages", len(entries))

	if err := printEntries(c.stdout, entries, opts.format, "Total: %d packages\n"); err != nil {
		return c.fail(err)
	}
	return 0
}

// printEntries renders entries in format. Text output is one name per line
// followed by footer, which receives the entry count.
func printEntries(w io.Writer, entries []catalog.Entry, format, footer string) error {
	if entries == nil {
		entries = []catalog.Entry{}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	default:
		for _, e := range entries {
			fmt.Fprintln(w, e.Name)
		}
		fmt.Fprintf(w, footer, len(entries))
		return nil
	}
}

func printListHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: wpk list [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List the packages available in the repository.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --format <fmt>    Output format: text, json or yaml (default text)")
	fmt.Fprintln(w, "  --config <path>   Use this wpk.lua instead of the default")
	fmt.Fprintln(w, "  --debug           Log debug information to stderr")
	fmt.Fprintln(w, "  -h, --help        Show this help")
}
