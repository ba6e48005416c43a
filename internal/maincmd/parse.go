package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/embedvm/lang/parser"
)

// Parse implements the "parse" command: parse each file and print the
// resulting abstract syntax tree.
func (c *Cmd) Parse(_ context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, path := range args {
		if err := parseFile(stdio, path); err != nil {
			printError(stdio, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func parseFile(stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	ch, perr := parser.ParseChunk(path, src)
	if ch != nil {
		printChunk(stdio.Stdout, ch)
	}
	return perr
}
