package install

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode"
)

// PromptConfirmer writes a prompt and reads the answer from a terminal or
// pipe. Blank input is skipped; the answer is yes when the first non-blank
// rune is 'y' or 'Y'. End of input means no.
type PromptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPromptConfirmer reads answers from in and writes prompts to out.
func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{in: bufio.NewReader(in), out: out}
}

type answer struct {
	r   rune
	err error
}

// Confirm shows prompt and waits for an answer or for ctx to end.
func (c *PromptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprint(c.out, prompt)

	// The read cannot be interrupted; on cancellation the goroutine is left
	// blocked until the process exits.
	answers := make(chan answer, 1)
	go func() {
		for {
			r, _, err := c.in.ReadRune()
			if err != nil || !unicode.IsSpace(r) {
				answers <- answer{r: r, err: err}
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return false, ctx.Err()
	case a := <-answers:
		if errors.Is(a.err, io.EOF) {
			fmt.Fprintln(c.out)
			return false, nil
		}
		if a.err != nil {
			return false, fmt.Errorf("read answer: %w", a.err)
		}
		return a.r == 'y' || a.r == 'Y', nil
	}
}
