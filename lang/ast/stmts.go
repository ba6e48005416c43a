package ast

import (
	"fmt"

	"github.com/mna/embedvm/lang/token"
)

// AssignStmt represents an assignment statement, e.g. x = y + z or
// gv.a[i] = gv.a[i] + 1. Left is guaranteed to hold only *Ident, *IndexExpr
// or *SelectorExpr nodes.
type AssignStmt struct {
	Left   []Expr
	Assign token.Pos
	Right  []Expr
}

func (n *AssignStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "assign", nil) }
func (n *AssignStmt) Span() (start, end token.Pos) {
	start, _ = n.Left[0].Span()
	_, end = n.Right[len(n.Right)-1].Span()
	return start, end
}
func (n *AssignStmt) Walk(v Visitor) {
	for _, e := range n.Left {
		Walk(v, e)
	}
	for _, e := range n.Right {
		Walk(v, e)
	}
}
func (n *AssignStmt) BlockEnding() bool { return false }

// ExprStmt represents an expression used as a statement, which is only
// valid for function calls.
type ExprStmt struct {
	X Expr
}

func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "expr stmt", nil) }
func (n *ExprStmt) Span() (start, end token.Pos)  { return n.X.Span() }
func (n *ExprStmt) Walk(v Visitor)                { Walk(v, n.X) }
func (n *ExprStmt) BlockEnding() bool             { return false }

// IfStmt represents an if statement, with an optional else arm that is
// either another *IfStmt (else if) or a plain *Block (else).
type IfStmt struct {
	Keyword token.Pos
	Cond    Expr
	Body    *Block
	Else    Node // nil, *IfStmt or *Block
	End     token.Pos
}

func (n *IfStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "if", nil) }
func (n *IfStmt) Span() (start, end token.Pos)  { return n.Keyword, n.End }
func (n *IfStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
	if n.Else != nil {
		Walk(v, n.Else)
	}
}
func (n *IfStmt) BlockEnding() bool { return false }

// WhileStmt represents a while loop.
type WhileStmt struct {
	Keyword token.Pos
	Cond    Expr
	Body    *Block
	End     token.Pos
}

func (n *WhileStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "while", nil) }
func (n *WhileStmt) Span() (start, end token.Pos)  { return n.Keyword, n.End }
func (n *WhileStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
}
func (n *WhileStmt) BlockEnding() bool { return false }

// ForRangeStmt represents a for-in-range loop: for name in range(stop),
// range(start, stop) or range(start, stop, step). Step, when present, must
// be a literal integer; the resolver rejects anything else.
type ForRangeStmt struct {
	Keyword     token.Pos
	Name        *Ident
	Start, Stop Expr // Start is nil when only one argument is given to range()
	Step        Expr // nil when omitted; defaults to 1
	Body        *Block
	End         token.Pos
}

func (n *ForRangeStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "for range", nil) }
func (n *ForRangeStmt) Span() (start, end token.Pos)  { return n.Keyword, n.End }
func (n *ForRangeStmt) Walk(v Visitor) {
	Walk(v, n.Name)
	if n.Start != nil {
		Walk(v, n.Start)
	}
	Walk(v, n.Stop)
	if n.Step != nil {
		Walk(v, n.Step)
	}
	Walk(v, n.Body)
}
func (n *ForRangeStmt) BlockEnding() bool { return false }

// BreakStmt represents a break statement.
type BreakStmt struct{ Pos token.Pos }

func (n *BreakStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "break", nil) }
func (n *BreakStmt) Span() (start, end token.Pos)  { return n.Pos, n.Pos }
func (n *BreakStmt) Walk(Visitor)                  {}
func (n *BreakStmt) BlockEnding() bool             { return true }

// ContinueStmt represents a continue statement.
type ContinueStmt struct{ Pos token.Pos }

func (n *ContinueStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "continue", nil) }
func (n *ContinueStmt) Span() (start, end token.Pos)  { return n.Pos, n.Pos }
func (n *ContinueStmt) Walk(Visitor)                  {}
func (n *ContinueStmt) BlockEnding() bool             { return true }

// ReturnStmt represents a return statement. X is nil for a bare return.
type ReturnStmt struct {
	Pos token.Pos
	X   Expr
}

func (n *ReturnStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "return", nil) }
func (n *ReturnStmt) Span() (start, end token.Pos) {
	if n.X == nil {
		return n.Pos, n.Pos
	}
	_, end = n.X.Span()
	return n.Pos, end
}
func (n *ReturnStmt) Walk(v Visitor) {
	if n.X != nil {
		Walk(v, n.X)
	}
}
func (n *ReturnStmt) BlockEnding() bool { return true }
