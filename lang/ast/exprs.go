package ast

import (
	"fmt"

	"github.com/mna/embedvm/lang/token"
)

// Ident represents an identifier, either a local variable, a function
// name or a global-memory view name.
type Ident struct {
	NamePos token.Pos
	Name    string
}

func (n *Ident) Format(f fmt.State, verb rune) { format(f, verb, n, n.Name, nil) }
func (n *Ident) Span() (start, end token.Pos) {
	return n.NamePos, n.NamePos + token.Pos(len(n.Name))
}
func (n *Ident) Walk(Visitor) {}
func (n *Ident) expr()        {}

// IntLit represents an integer literal.
type IntLit struct {
	ValuePos token.Pos
	Raw      string
	Value    int64
}

func (n *IntLit) Format(f fmt.State, verb rune) { format(f, verb, n, n.Raw, nil) }
func (n *IntLit) Span() (start, end token.Pos) {
	return n.ValuePos, n.ValuePos + token.Pos(len(n.Raw))
}
func (n *IntLit) Walk(Visitor) {}
func (n *IntLit) expr()        {}

// UnaryExpr represents a unary operator applied to an operand:
// -x, ~x or not x.
type UnaryExpr struct {
	OpPos token.Pos
	Op    token.Token
	X     Expr
}

func (n *UnaryExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Op.String(), nil) }
func (n *UnaryExpr) Span() (start, end token.Pos) {
	_, end = n.X.Span()
	return n.OpPos, end
}
func (n *UnaryExpr) Walk(v Visitor) { Walk(v, n.X) }
func (n *UnaryExpr) expr()          {}

// BinaryExpr represents a binary or comparison operator applied to two
// operands.
type BinaryExpr struct {
	X     Expr
	OpPos token.Pos
	Op    token.Token
	Y     Expr
}

func (n *BinaryExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Op.String(), nil) }
func (n *BinaryExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	_, end = n.Y.Span()
	return start, end
}
func (n *BinaryExpr) Walk(v Visitor) {
	Walk(v, n.X)
	Walk(v, n.Y)
}
func (n *BinaryExpr) expr() {}

// CompareExpr represents a chain of one or more comparison operators
// sharing operands, e.g. a<b<c. Operands holds len(Ops)+1 expressions;
// Ops[i] compares Operands[i] against Operands[i+1]. A single comparison
// a<b is represented the same way, with one op and two operands, so
// lowering always goes through the pairwise-and path.
type CompareExpr struct {
	Operands []Expr
	Ops      []token.Token
	OpPos    []token.Pos
}

func (n *CompareExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "compare", map[string]int{"ops": len(n.Ops)})
}
func (n *CompareExpr) Span() (start, end token.Pos) {
	start, _ = n.Operands[0].Span()
	_, end = n.Operands[len(n.Operands)-1].Span()
	return start, end
}
func (n *CompareExpr) Walk(v Visitor) {
	for _, o := range n.Operands {
		Walk(v, o)
	}
}
func (n *CompareExpr) expr() {}

// CallExpr represents a function call, e.g. uf(1, i) or inc(n).
type CallExpr struct {
	Fun    *Ident
	Lparen token.Pos
	Args   []Expr
	Rparen token.Pos
}

func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call "+n.Fun.Name, map[string]int{"args": len(n.Args)})
}
func (n *CallExpr) Span() (start, end token.Pos) {
	start, _ = n.Fun.Span()
	return start, n.Rparen
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Fun)
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *CallExpr) expr() {}

// SelectorExpr represents a global-memory view access of the form
// gv.name, e.g. gv.counter.
type SelectorExpr struct {
	X   Expr
	Dot token.Pos
	Sel *Ident
}

func (n *SelectorExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "selector", nil) }
func (n *SelectorExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	_, end = n.Sel.Span()
	return start, end
}
func (n *SelectorExpr) Walk(v Visitor) {
	Walk(v, n.X)
	Walk(v, n.Sel)
}
func (n *SelectorExpr) expr() {}

// IndexExpr represents an array-valued global-memory view access, e.g.
// gv.values[i].
type IndexExpr struct {
	X      Expr
	Lbrack token.Pos
	Index  Expr
	Rbrack token.Pos
}

func (n *IndexExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "index", nil) }
func (n *IndexExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	return start, n.Rbrack
}
func (n *IndexExpr) Walk(v Visitor) {
	Walk(v, n.X)
	Walk(v, n.Index)
}
func (n *IndexExpr) expr() {}

// ParenExpr represents a parenthesized expression, kept in the tree only
// to preserve the exact span of the source; it carries no semantic
// meaning of its own.
type ParenExpr struct {
	Lparen token.Pos
	X      Expr
	Rparen token.Pos
}

func (n *ParenExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "paren", nil) }
func (n *ParenExpr) Span() (start, end token.Pos)  { return n.Lparen, n.Rparen }
func (n *ParenExpr) Walk(v Visitor)                { Walk(v, n.X) }
func (n *ParenExpr) expr()                         {}
