package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// promptConfirmer asks yes/no questions on a terminal. Anything but an
// explicit yes declines, including EOF.
type promptConfirmer struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func newPromptConfirmer(in io.Reader, out io.Writer, assumeYes bool) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

func (c *promptConfirmer) Confirm(ctx context.Context, prompt string) bool {
	if c.assumeYes {
		fmt.Fprintf(c.out, "%s [y/N] y\n", prompt)
		return true
	}
	if ctx.Err() != nil {
		return false
	}

	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
