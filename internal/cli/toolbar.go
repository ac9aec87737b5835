package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const ToolbarHelp = "commands: back | forward | reload | where | quit | <address>"

// Navigator is the window a toolbar drives.
type Navigator interface {
	Navigate(input string) (string, error)
	Back() error
	Forward() error
	Reload() error
	Title() (string, error)
	Location() (string, error)
}

// RunToolbar reads one command per line from in until quit, EOF or ctx is
// done. Any line that is not a command is opened as an address. Navigation
// errors are reported on out and do not stop the loop.
func RunToolbar(ctx context.Context, in io.Reader, out io.Writer, nav Navigator) error {
	fmt.Fprintln(out, ToolbarHelp)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read command: %w", err)
			}
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		var err error
		switch strings.ToLower(line) {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		case "b", "back":
			err = nav.Back()
		case "f", "forward":
			err = nav.Forward()
		case "r", "reload":
			err = nav.Reload()
		case "w", "where":
		default:
			_, err = nav.Navigate(line)
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		printPage(out, nav)
	}
}

func printPage(out io.Writer, nav Navigator) {
	loc, err := nav.Location()
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	title, _ := nav.Title()
	fmt.Fprintf(out, "%s  %s\n", loc, title)
}
