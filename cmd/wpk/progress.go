package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/zer0users/wpk/internal/transfer"
)

// newProgressRenderer returns an observer that redraws a progress line on w,
// or nil when w is not a terminal.
func newProgressRenderer(w io.Writer) transfer.Observer {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}

	width := 0
	return func(p transfer.Progress, done bool) {
		line := formatProgress(p)
		pad := width - len(line)
		if pad < 0 {
			pad = 0
		}
		width = len(line)
		fmt.Fprintf(w, "\r%s%*s", line, pad, "")
		if done {
			fmt.Fprintln(w)
		}
	}
}

func formatProgress(p transfer.Progress) string {
	if pct := p.Percent(); pct >= 0 {
		return fmt.Sprintf("Downloading... %3.0f%% (%s / %s)",
			pct, transfer.HumanSize(p.Transferred), transfer.HumanSize(p.Expected))
	}
	return fmt.Sprintf("Downloading... %s", transfer.HumanSize(p.Transferred))
}
