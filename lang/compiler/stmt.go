package compiler

import (
	"fmt"

	"github.com/mna/embedvm/lang/ast"
	"github.com/mna/embedvm/lang/codec"
)

func (fc *funcCompiler) stmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.AssignStmt:
		return fc.assignStmt(n)

	case *ast.ExprStmt:
		// A bare call statement still pushes its return value (every
		// expression pushes exactly one value); drop it since nothing
		// consumes it.
		if err := fc.expr(n.X); err != nil {
			return err
		}
		fc.block.Append(codec.Instruction{Kind: codec.KindDropValue})
		return nil

	case *ast.IfStmt:
		return fc.ifStmt(n)

	case *ast.WhileStmt:
		return fc.whileStmt(n)

	case *ast.ForRangeStmt:
		return fc.forRangeStmt(n)

	case *ast.BreakStmt:
		top := fc.loops[len(fc.loops)-1]
		fc.block.Append(codec.Instruction{Kind: codec.KindJumpV, Label: top.brk.ID})
		return nil

	case *ast.ContinueStmt:
		top := fc.loops[len(fc.loops)-1]
		fc.block.Append(codec.Instruction{Kind: codec.KindJumpV, Label: top.cont.ID})
		return nil

	case *ast.ReturnStmt:
		if n.X != nil {
			if err := fc.expr(n.X); err != nil {
				return err
			}
			fc.block.Append(codec.Instruction{Kind: codec.KindReturn})
			return nil
		}
		fc.block.Append(codec.Instruction{Kind: codec.KindReturn0})
		return nil

	default:
		start, _ := s.Span()
		return &Error{Pos: start, Msg: fmt.Sprintf("compiler: unsupported statement %T", s)}
	}
}

// assignStmt evaluates the right-hand side(s) once and pops the result(s)
// into every target. A single right-hand value assigned to several
// targets (a, b = expr) is broadcast by duplicating the value with
// Bury(k=0) once per extra target, matching
// original_source/pysrc/embedvm/python.py's Function._parse_assign. A
// right-hand list matching the target count in length is a parallel
// assignment: every value is pushed left to right, then popped into the
// targets in reverse so each target receives the value at its own
// position.
func (fc *funcCompiler) assignStmt(n *ast.AssignStmt) error {
	switch {
	case len(n.Right) == 1:
		if err := fc.expr(n.Right[0]); err != nil {
			return err
		}
		for range n.Left[1:] {
			fc.block.Append(codec.Instruction{Kind: codec.KindBury, Value: 0})
		}
		for _, target := range n.Left {
			if err := fc.popSet(target); err != nil {
				return err
			}
		}
		return nil

	case len(n.Right) == len(n.Left):
		for _, rhs := range n.Right {
			if err := fc.expr(rhs); err != nil {
				return err
			}
		}
		for i := len(n.Left) - 1; i >= 0; i-- {
			if err := fc.popSet(n.Left[i]); err != nil {
				return err
			}
		}
		return nil

	default:
		start, _ := n.Span()
		return &Error{Pos: start, Msg: fmt.Sprintf("assignment has %d targets but %d values", len(n.Left), len(n.Right))}
	}
}

// popSet pops the value on top of the stack into target, which the
// resolver guarantees is an *ast.Ident, *ast.SelectorExpr or
// *ast.IndexExpr.
func (fc *funcCompiler) popSet(target ast.Expr) error {
	switch t := target.(type) {
	case *ast.Ident:
		if off, ok := fc.params[t.Name]; ok {
			fc.block.Append(codec.Instruction{Kind: codec.KindPopLocal, SFA: off})
			return nil
		}
		idx, _ := fc.info.Locals.Lookup(t.Name)
		fc.block.Append(codec.Instruction{Kind: codec.KindPopLocal, SFA: int8(idx)})
		return nil

	case *ast.SelectorExpr, *ast.IndexExpr:
		return fc.globalAccess(target, true)

	default:
		start, _ := target.Span()
		return &Error{Pos: start, Msg: "compiler: invalid assignment target"}
	}
}

// ifStmt lowers:
//
//	push(test); JumpVIfNot -> Lelse
//	<then>
//	(else present: JumpV -> Lend; label Lelse; <else>; label Lend)
//	(else absent: label Lelse)
func (fc *funcCompiler) ifStmt(n *ast.IfStmt) error {
	if err := fc.expr(n.Cond); err != nil {
		return err
	}
	lelse := fc.newLabel("if-else")
	fc.block.Append(codec.Instruction{Kind: codec.KindJumpIfNotV, Label: lelse.ID})

	if err := fc.block0(n.Body); err != nil {
		return err
	}

	if n.Else == nil {
		fc.block.AppendLabel(lelse)
		return nil
	}

	lend := fc.newLabel("if-end")
	fc.block.Append(codec.Instruction{Kind: codec.KindJumpV, Label: lend.ID})
	fc.block.AppendLabel(lelse)

	switch e := n.Else.(type) {
	case *ast.Block:
		if err := fc.block0(e); err != nil {
			return err
		}
	case *ast.IfStmt:
		if err := fc.ifStmt(e); err != nil {
			return err
		}
	}
	fc.block.AppendLabel(lend)
	return nil
}

// whileStmt lowers:
//
//	label Lstart
//	push(test); JumpVIfNot -> Lend
//	<body with break=Lend, continue=Lstart>
//	JumpV -> Lstart
//	label Lend
func (fc *funcCompiler) whileStmt(n *ast.WhileStmt) error {
	lstart := fc.newLabel("while-start")
	lend := fc.newLabel("while-end")

	fc.block.AppendLabel(lstart)
	if err := fc.expr(n.Cond); err != nil {
		return err
	}
	fc.block.Append(codec.Instruction{Kind: codec.KindJumpIfNotV, Label: lend.ID})

	fc.loops = append(fc.loops, loopLabels{brk: lend, cont: lstart})
	err := fc.block0(n.Body)
	fc.loops = fc.loops[:len(fc.loops)-1]
	if err != nil {
		return err
	}

	fc.block.Append(codec.Instruction{Kind: codec.KindJumpV, Label: lstart.ID})
	fc.block.AppendLabel(lend)
	return nil
}

// forRangeStmt lowers the range preamble/compare/body/epilogue sequence
// described in original_source/pysrc/embedvm/python.py's Function._parse
// ast.For branch:
//
//	push(stop); push(start)
//	label Lcmp
//	Bury(0)                 ; copy current
//	Dig(1); Bury(2)         ; copy stop below
//	if step>0: CmpGE else: CmpLE
//	JumpVIf -> LregEnd
//	Bury(0); PopLocal(i)    ; write current into the loop variable
//	<body with break=LbreakEnd, continue=Lcont>
//	label Lcont
//	push(step); Add
//	JumpV -> Lcmp
//	label LregEnd
//	label LbreakEnd
//	DropValue; DropValue    ; remove current and stop
func (fc *funcCompiler) forRangeStmt(n *ast.ForRangeStmt) error {
	step := int64(1)
	if n.Step != nil {
		lit, ok := n.Step.(*ast.IntLit)
		if !ok {
			start, _ := n.Step.Span()
			return &Error{Pos: start, Msg: "compiler: for-range step must be a literal integer"}
		}
		step = lit.Value
	}

	if n.Start != nil {
		if err := fc.expr(n.Stop); err != nil {
			return err
		}
		if err := fc.expr(n.Start); err != nil {
			return err
		}
	} else {
		if err := fc.expr(n.Stop); err != nil {
			return err
		}
		fc.block.Append(codec.Instruction{Kind: codec.KindPushConstantV, Value: 0})
	}

	lcmp := fc.newLabel("for-cmp")
	lregend := fc.newLabel("for-regend")
	lbreakend := fc.newLabel("for-breakend")
	lcont := fc.newLabel("for-cont")

	fc.block.AppendLabel(lcmp)
	fc.block.Append(codec.Instruction{Kind: codec.KindBury, Value: 0})
	fc.block.Append(codec.Instruction{Kind: codec.KindDig, Value: 1})
	fc.block.Append(codec.Instruction{Kind: codec.KindBury, Value: 2})

	cmp := codec.CmpGE
	if step < 0 {
		cmp = codec.CmpLE
	}
	fc.block.Append(codec.Instruction{Kind: codec.KindBinary, BinOp: cmp})
	fc.block.Append(codec.Instruction{Kind: codec.KindJumpIfV, Label: lregend.ID})

	fc.block.Append(codec.Instruction{Kind: codec.KindBury, Value: 0})
	idx, _ := fc.info.Locals.Lookup(n.Name.Name)
	fc.block.Append(codec.Instruction{Kind: codec.KindPopLocal, SFA: int8(idx)})

	fc.loops = append(fc.loops, loopLabels{brk: lbreakend, cont: lcont})
	err := fc.block0(n.Body)
	fc.loops = fc.loops[:len(fc.loops)-1]
	if err != nil {
		return err
	}

	fc.block.AppendLabel(lcont)
	fc.block.Append(codec.Instruction{Kind: codec.KindPushConstantV, Value: int32(step)})
	fc.block.Append(codec.Instruction{Kind: codec.KindBinary, BinOp: codec.Add})
	fc.block.Append(codec.Instruction{Kind: codec.KindJumpV, Label: lcmp.ID})

	fc.block.AppendLabel(lregend)
	fc.block.AppendLabel(lbreakend)
	fc.block.Append(codec.Instruction{Kind: codec.KindDropValue})
	fc.block.Append(codec.Instruction{Kind: codec.KindDropValue})
	return nil
}
