package maincmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/mna/embedvm/lang/ast"
)

// printChunk walks ch and prints one indented line per node, using each
// node's own fmt.Formatter implementation (ast.Node requires one) for its
// label.
func printChunk(w io.Writer, ch *ast.Chunk) {
	depth := 0
	var visit ast.VisitorFunc
	visit = func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir == ast.VisitExit {
			depth--
			return nil
		}
		fmt.Fprintf(w, "%s%v\n", strings.Repeat("  ", depth), n)
		depth++
		return visit
	}
	ast.Walk(visit, ch)
}
