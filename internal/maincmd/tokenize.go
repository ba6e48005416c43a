package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/embedvm/lang/scanner"
	"github.com/mna/embedvm/lang/token"
)

// Tokenize implements the "tokenize" command: scan each file and print its
// token stream, one token per line.
func (c *Cmd) Tokenize(_ context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, path := range args {
		if err := tokenizeFile(stdio, path); err != nil {
			printError(stdio, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func tokenizeFile(stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var scanErr error
	s := scanner.New(src, func(pos token.Pos, msg string) {
		if scanErr == nil {
			line, col := pos.LineCol()
			scanErr = fmt.Errorf("%s:%d:%d: %s", path, line, col, msg)
		}
	})

	for {
		tok := s.Scan()
		line, col := tok.Pos.LineCol()
		fmt.Fprintf(stdio.Stdout, "%s:%d:%d: %s", path, line, col, tok.Kind)
		if tok.Kind == token.IDENT || tok.Kind == token.INT {
			fmt.Fprintf(stdio.Stdout, " %s", tok.Lit)
		}
		fmt.Fprintln(stdio.Stdout)
		if tok.Kind == token.EOF {
			break
		}
	}
	return scanErr
}
