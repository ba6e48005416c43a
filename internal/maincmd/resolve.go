package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/mna/embedvm/lang/parser"
	"github.com/mna/embedvm/lang/resolver"
)

// Resolve implements the "resolve" command: parse and resolve each file,
// then print the resulting global-memory and per-function locals tables.
func (c *Cmd) Resolve(_ context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, path := range args {
		if err := resolveFile(stdio, path); err != nil {
			printError(stdio, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func resolveFile(stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	ch, perr := parser.ParseChunk(path, src)
	if perr != nil {
		return perr
	}

	res, rerr := resolver.Resolve(ch)
	if rerr != nil {
		return rerr
	}

	names := maps.Keys(res.Globals)
	slices.Sort(names)
	fmt.Fprintf(stdio.Stdout, "%s: globals\n", path)
	for _, name := range names {
		g := res.Globals[name]
		fmt.Fprintf(stdio.Stdout, "  %s: addr=%d size=%d\n", name, g.Addr, g.Size)
	}

	for _, fn := range res.Funcs {
		fmt.Fprintf(stdio.Stdout, "%s: function %s\n", path, fn.Decl.Name.Name)
		fmt.Fprintf(stdio.Stdout, "  params: %v\n", fn.Params)
		fmt.Fprintf(stdio.Stdout, "  locals: %v\n", fn.Locals.Names())
	}
	return nil
}
