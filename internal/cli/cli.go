// Package cli resolves the start target for the interactive commands.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const Prompt = "Enter the site URL to open (e.g. https://www.example.com): "

// ResolveTarget picks the first URL to open. A positional argument wins; when
// interactive, the user is asked once. An empty answer, a closed input or a
// non-interactive run all yield "" so the normalizer applies its default.
// Pass a *bufio.Reader to keep reading the same input afterwards.
func ResolveTarget(args []string, in io.Reader, out io.Writer, interactive bool) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}
	if !interactive || in == nil {
		return "", nil
	}
	if out != nil {
		fmt.Fprint(out, Prompt)
	}

	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read target: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
