package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// dispatcher is the minimal command surface the REPL needs. The real App
// satisfies it; tests can provide a stub.
type dispatcher interface {
	dispatch(ctx context.Context, cmd string, args []string) error
}

// runREPL reads lines from the scanner, parses the first token as the
// command and hands the rest to the dispatcher. Handler errors are printed,
// not fatal: the loop only exits on EOF or "exit"/"quit".
func runREPL(ctx context.Context, d dispatcher, scanner *bufio.Scanner, out io.Writer) {
	for {
		fmt.Fprint(out, "tabdav> ")
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		if cmd == "exit" || cmd == "quit" {
			fmt.Fprintln(out, "Bye!")
			return
		}

		if err := d.dispatch(ctx, cmd, parts[1:]); err != nil {
			fmt.Fprintln(out, "Error:", err)
		}
	}
}
