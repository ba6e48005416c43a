package compiler

import (
	"fmt"

	"github.com/mna/embedvm/lang/ast"
	"github.com/mna/embedvm/lang/codec"
	"github.com/mna/embedvm/lang/token"
)

// binOps maps the token spelling of a binary/comparison operator to its
// codec.BinOp family member.
var binOps = map[token.Token]codec.BinOp{
	token.PLUS:       codec.Add,
	token.MINUS:      codec.Sub,
	token.STAR:       codec.Mul,
	token.SLASH:      codec.Div,
	token.PERCENT:    codec.Mod,
	token.LTLT:       codec.Shl,
	token.GTGT:       codec.Shr,
	token.AMPERSAND:  codec.BAnd,
	token.PIPE:       codec.BOr,
	token.CIRCUMFLEX: codec.BXor,
	token.AND:        codec.LAnd,
	token.OR:         codec.LOr,
	token.LT:         codec.CmpLT,
	token.LE:         codec.CmpLE,
	token.EQL:        codec.CmpEQ,
	token.NEQ:        codec.CmpNE,
	token.GE:         codec.CmpGE,
	token.GT:         codec.CmpGT,
}

// unOps maps the token spelling of a unary operator to its codec.UnOp
// family member. Unary plus is not part of the grammar (it would be a
// no-op per the host language's own semantics, so there is nothing for
// the parser to produce a node for).
var unOps = map[token.Token]codec.UnOp{
	token.MINUS: codec.ArithmeticInvert,
	token.TILDE: codec.BitwiseNot,
	token.NOT:   codec.LogicNot,
}

// expr lowers e, leaving exactly one value on top of the stack.
func (fc *funcCompiler) expr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.IntLit:
		fc.block.Append(codec.Instruction{Kind: codec.KindPushConstantV, Value: int32(n.Value)})
		return nil

	case *ast.Ident:
		if off, ok := fc.params[n.Name]; ok {
			fc.block.Append(codec.Instruction{Kind: codec.KindPushLocal, SFA: off})
			return nil
		}
		idx, _ := fc.info.Locals.Lookup(n.Name)
		fc.block.Append(codec.Instruction{Kind: codec.KindPushLocal, SFA: int8(idx)})
		return nil

	case *ast.UnaryExpr:
		if err := fc.expr(n.X); err != nil {
			return err
		}
		op, ok := unOps[n.Op]
		if !ok {
			return &Error{Pos: n.OpPos, Msg: fmt.Sprintf("compiler: unsupported unary operator %s", n.Op)}
		}
		fc.block.Append(codec.Instruction{Kind: codec.KindUnary, UnOp: op})
		return nil

	case *ast.BinaryExpr:
		if err := fc.expr(n.X); err != nil {
			return err
		}
		if err := fc.expr(n.Y); err != nil {
			return err
		}
		op, ok := binOps[n.Op]
		if !ok {
			return &Error{Pos: n.OpPos, Msg: fmt.Sprintf("compiler: unsupported binary operator %s", n.Op)}
		}
		fc.block.Append(codec.Instruction{Kind: codec.KindBinary, BinOp: op})
		return nil

	case *ast.CompareExpr:
		return fc.compareExpr(n)

	case *ast.ParenExpr:
		return fc.expr(n.X)

	case *ast.CallExpr:
		return fc.callExpr(n)

	case *ast.SelectorExpr, *ast.IndexExpr:
		return fc.globalAccess(n, false)

	default:
		start, _ := e.Span()
		return &Error{Pos: start, Msg: fmt.Sprintf("compiler: unsupported expression %T", e)}
	}
}

// compareExpr lowers a chain of comparisons a<b<c<... to the pairwise
// form (a<b) and (b<c) and ..., re-evaluating each shared operand once
// per comparison it takes part in rather than caching it on the stack.
// A single comparison a<b is the one-op case of the same loop.
func (fc *funcCompiler) compareExpr(n *ast.CompareExpr) error {
	for i, op := range n.Ops {
		if err := fc.expr(n.Operands[i]); err != nil {
			return err
		}
		if err := fc.expr(n.Operands[i+1]); err != nil {
			return err
		}
		bop, ok := binOps[op]
		if !ok {
			return &Error{Pos: n.OpPos[i], Msg: fmt.Sprintf("compiler: unsupported comparison operator %s", op)}
		}
		fc.block.Append(codec.Instruction{Kind: codec.KindBinary, BinOp: bop})
		if i > 0 {
			fc.block.Append(codec.Instruction{Kind: codec.KindBinary, BinOp: codec.LAnd})
		}
	}
	return nil
}

// callExpr lowers a call to either a declared function (intra-program
// CallV) or an extern (host-registered CallUserFunction), leaving the
// call's return value on top of the stack.
func (fc *funcCompiler) callExpr(n *ast.CallExpr) error {
	name := n.Fun.Name

	if which, ok := fc.externs[name]; ok {
		for i := len(n.Args) - 1; i >= 0; i-- {
			if err := fc.expr(n.Args[i]); err != nil {
				return err
			}
		}
		fc.block.Append(codec.Instruction{Kind: codec.KindPushConstantV, Value: int32(len(n.Args))})
		fc.block.Append(codec.Instruction{Kind: codec.KindCallUserFunction, FuncID: uint8(which)})
		return nil
	}

	sig, ok := fc.funcs[name]
	if !ok {
		return &Error{Pos: n.Fun.NamePos, Msg: fmt.Sprintf("call to undeclared function %q", name)}
	}
	if len(n.Args) < sig.required || len(n.Args) > sig.paramCount {
		if sig.required == sig.paramCount {
			return &Error{Pos: n.Fun.NamePos, Msg: fmt.Sprintf("function %q takes %d argument(s), got %d", name, sig.paramCount, len(n.Args))}
		}
		return &Error{Pos: n.Fun.NamePos, Msg: fmt.Sprintf("function %q takes %d to %d argument(s), got %d", name, sig.required, sig.paramCount, len(n.Args))}
	}

	// push defaults for the omitted trailing parameters, furthest first,
	// then the explicit arguments in reverse order, matching
	// python.py's PushableFunctioncall.push_value.
	omitted := sig.paramCount - len(n.Args)
	for i := 0; i < omitted; i++ {
		fc.block.Append(codec.Instruction{Kind: codec.KindPushConstantV, Value: int32(sig.defaults[len(sig.defaults)-1-i])})
	}
	for i := len(n.Args) - 1; i >= 0; i-- {
		if err := fc.expr(n.Args[i]); err != nil {
			return err
		}
	}
	fc.block.Append(codec.Instruction{Kind: codec.KindCallV, Label: sig.label.ID})
	if sig.paramCount > 0 {
		fc.block.Append(codec.Instruction{Kind: codec.KindPopMany, Value: int32(sig.paramCount - 1)})
	}
	return nil
}

// globalAccess lowers a read (store=false) or write (store=true) of a
// global-memory view, either scalar (gv.name) or array element
// (gv.name[idx]). For an array element, the index is pushed first and
// the access uses popoffset=true per section 4.5 of the design notes.
func (fc *funcCompiler) globalAccess(e ast.Expr, store bool) error {
	var sel *ast.SelectorExpr
	var idxExpr ast.Expr
	switch n := e.(type) {
	case *ast.SelectorExpr:
		sel = n
	case *ast.IndexExpr:
		sel = n.X.(*ast.SelectorExpr)
		idxExpr = n.Index
	}

	g, ok := fc.globals[sel.Sel.Name]
	if !ok {
		return &Error{Pos: sel.Sel.NamePos, Msg: fmt.Sprintf("undeclared global %q", sel.Sel.Name)}
	}

	if idxExpr != nil {
		if err := fc.expr(idxExpr); err != nil {
			return err
		}
	}

	nargs := uint8(1)
	if g.Addr >= 256 {
		nargs = 2
	}
	fc.block.Append(codec.Instruction{
		Kind:      codec.KindGlobalAccess,
		Store:     store,
		Width:     codec.WidthU8,
		NArgs:     nargs,
		PopOffset: idxExpr != nil,
		Address:   uint32(g.Addr),
	})
	return nil
}
