package main

import (
	"context"
	"fmt"
	"io"

	"github.com/zer0users/wpk/internal/catalog"
)

// runSearch handles the `wpk search` subcommand
func (c *cli) runSearch(ctx context.Context, args []string) int {
	opts, err := parseArgs(args, flagGlobal|flagFormat)
	if err != nil {
		return c.fail(err)
	}
	if opts.help {
		printSearchHelp(c.stdout)
		return 0
	}
	if len(opts.positional) != 1 {
		fmt.Fprintln(c.stderr, "Error: Search term required")
		fmt.Fprintln(c.stderr, "Usage: wpk search <term>")
		return 1
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

	matches := catalog.Search(entries, opts.positional[0])
	a.logger.Debug("search finished", "term", opts.positional[0], "candidates", len(entries), "matches", len(matches))

	if err := printEntries(c.stdout, matches, opts.format, "Found: %d packages\n"); err != nil {
		return c.fail(err)
	}
	return 0
}

func printSearchHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: wpk search <term> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fuzzy-search the package names in the repository, best match first.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --format <fmt>    Output format: text, json or yaml (default text)")
	fmt.Fprintln(w, "  --config <path>   Use this wpk.lua instead of the default")
	fmt.Fprintln(w, "  --debug           Log debug information to stderr")
	fmt.Fprintln(w, "  -h, --help        Show this help")
}
