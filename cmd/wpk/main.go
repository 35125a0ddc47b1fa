package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Version will be set at build time via -ldflags
var Version = "v1.0.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// cli carries the standard streams of one invocation.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// run dispatches a command and returns the process exit code. Deferred
// teardown inside commands has finished by the time it returns.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}

	switch args[0] {
	case "--version":
		fmt.Fprintf(stdout, "WPK %s\n", Version)
		fmt.Fprintln(stdout, "Water Package Manager")
		return 0
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	case "install":
		return c.runInstall(ctx, args[1:])
	case "list":
		return c.runList(ctx, args[1:])
	case "search":
		return c.runSearch(ctx, args[1:])
	default:
		fmt.Fprintf(stderr, "Error: Unknown command '%s'\n", args[0])
		printUsage(stderr)
		return 1
	}
}

func (c *cli) fail(err error) int {
	fmt.Fprintf(c.stderr, "Error: %v\n", err)
	return 1
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "WPK - Water Package Manager")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  wpk install <package> [--yes]      Install a package")
	fmt.Fprintln(w, "  wpk list [--format text|json|yaml] List available packages")
	fmt.Fprintln(w, "  wpk search <term> [--format ...]   Search available packages")
	fmt.Fprintln(w, "  wpk help                           Show this help")
	fmt.Fprintln(w, "  wpk --version                      Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global options:")
	fmt.Fprintln(w, "  --config <path>   Use this wpk.lua instead of the default")
	fmt.Fprintln(w, "  --debug           Log debug information to stderr")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  wpk install water")
	fmt.Fprintln(w, "  wpk install terminal")
}
