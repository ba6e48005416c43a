package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/embedvm/lang/compiler"
	"github.com/mna/embedvm/lang/parser"
)

// Compile implements the "compile" command: parse, resolve and compile a
// single source file into an EmbedVM binary image, written to --out or to
// stdout. Only one file is accepted, since a program's entry point and
// global-memory layout are resolved for one chunk at a time.
func (c *Cmd) Compile(_ context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 1 {
		err := fmt.Errorf("compile: exactly one source file is required, got %d", len(args))
		printError(stdio, err)
		return err
	}

	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		printError(stdio, err)
		return err
	}

	ch, perr := parser.ParseChunk(path, src)
	if perr != nil {
		printError(stdio, perr)
		return perr
	}

	prog, cerr := compiler.Compile(ch)
	if cerr != nil {
		printError(stdio, cerr)
		return cerr
	}

	bin, berr := prog.ToBinary(0)
	if berr != nil {
		printError(stdio, berr)
		return berr
	}

	if c.Out == "" {
		_, err = stdio.Stdout.Write(bin)
	} else {
		err = os.WriteFile(c.Out, bin, 0o644)
	}
	if err != nil {
		printError(stdio, err)
		return err
	}
	return nil
}
