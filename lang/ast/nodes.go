package ast

import (
	"fmt"

	"github.com/mna/embedvm/lang/token"
)

// Chunk is the root of a parsed source file: its global, extern and
// function declarations.
type Chunk struct {
	Name    string // filename, may be empty
	Globals []*GlobalDecl
	Externs []*ExternDecl
	Funcs   []*FuncDecl
	EOF     token.Pos
}

func (n *Chunk) Format(f fmt.State, verb rune) {
	format(f, verb, n, "chunk", map[string]int{"funcs": len(n.Funcs)})
}

func (n *Chunk) Span() (start, end token.Pos) {
	if len(n.Funcs) > 0 {
		start, _ = n.Funcs[0].Span()
	}
	return start, n.EOF
}

func (n *Chunk) Walk(v Visitor) {
	for _, g := range n.Globals {
		Walk(v, g)
	}
	for _, e := range n.Externs {
		Walk(v, e)
	}
	for _, fn := range n.Funcs {
		Walk(v, fn)
	}
}

// Block represents a sequence of statements delimited by a parent
// construct (a function body, an if/else arm, a loop body).
type Block struct {
	Start token.Pos
	End   token.Pos
	Stmts []Stmt
}

func (n *Block) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts)})
}

func (n *Block) Span() (start, end token.Pos) { return n.Start, n.End }

func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}

// GlobalDecl declares a name backed by global memory: "global counter" for
// a single byte, or "global table[16]" for a 16-byte array. Size is 0 for
// a scalar declaration.
type GlobalDecl struct {
	Keyword token.Pos
	Name    *Ident
	Size    int
	End     token.Pos
}

func (n *GlobalDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "global "+n.Name.Name, map[string]int{"size": n.Size})
}

func (n *GlobalDecl) Span() (start, end token.Pos) { return n.Keyword, n.End }

func (n *GlobalDecl) Walk(v Visitor) { Walk(v, n.Name) }

// ExternDecl declares a host-registered user function: "extern name(which)"
// binds the identifier name, at call sites, to CallUserFunction(which)
// instead of an intra-program CallV.
type ExternDecl struct {
	Keyword token.Pos
	Name    *Ident
	Which   int
	End     token.Pos
}

func (n *ExternDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "extern "+n.Name.Name, map[string]int{"which": n.Which})
}

func (n *ExternDecl) Span() (start, end token.Pos) { return n.Keyword, n.End }

func (n *ExternDecl) Walk(v Visitor) { Walk(v, n.Name) }

// Param represents one function parameter. Default is non-nil for a
// parameter declared as "name = value"; only trailing parameters may
// carry a default, a call omits them right-to-left.
type Param struct {
	Name    *Ident
	Default Expr // nil if required
}

// FuncDecl represents a top-level function declaration.
type FuncDecl struct {
	Keyword token.Pos
	Name    *Ident
	Params  []*Param
	Body    *Block
}

func (n *FuncDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "function "+n.Name.Name, map[string]int{"params": len(n.Params)})
}

func (n *FuncDecl) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.Keyword, end
}

func (n *FuncDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, p := range n.Params {
		Walk(v, p.Name)
		if p.Default != nil {
			Walk(v, p.Default)
		}
	}
	Walk(v, n.Body)
}
