// Package resolver implements the locals pre-pass that lang/compiler's
// design notes call for: a single walk over a function's body, before any
// code is emitted, that assigns a stable slot to every local variable and
// rejects the structural mistakes the generator should never have to
// think about (break/continue outside a loop, a non-literal for-step, an
// assignment that collides with a declared global name, a reference to an
// undeclared global view).
package resolver

import (
	"fmt"

	"github.com/mna/embedvm/lang/ast"
	"github.com/mna/embedvm/lang/token"
)

// Error reports a CompilerError: source has unsupported syntax, an
// undefined name, or a structural misuse such as break outside a loop, a
// non-literal for-step, or reassigning a global name.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	line, col := e.Pos.LineCol()
	return fmt.Sprintf("%d:%d: %s", line, col, e.Msg)
}

// FuncInfo is the result of resolving one function declaration. Params
// and Locals occupy disjoint slot spaces: a parameter's stack-frame
// offset is negative (-1-index), a local's is non-negative (its slot
// index), matching original_source/pysrc/embedvm/python.py's Argument
// and LocalVariable classes.
type FuncInfo struct {
	Decl   *ast.FuncDecl
	Params []string
	Locals *Locals // every assignment target and for-loop variable that is not a parameter
}

// Chunk is the result of resolving an entire source chunk: every declared
// global view, and the resolved info for every function.
type Chunk struct {
	Globals map[string]Global
	Funcs   []*FuncInfo
}

// Resolve walks ch once, assigning global addresses and per-function
// local slots, and checking every structural rule lang/compiler relies
// on. It stops and returns the first error encountered, matching the
// "abort on first error" behavior of the original compiler.
func Resolve(ch *ast.Chunk) (*Chunk, error) {
	r := &resolver{globals: make(map[string]Global)}

	addr := 0
	for _, g := range ch.Globals {
		if _, dup := r.globals[g.Name.Name]; dup {
			return nil, &Error{Pos: g.Keyword, Msg: fmt.Sprintf("global %q already declared", g.Name.Name)}
		}
		size := g.Size
		width := 1
		if size > 0 {
			width = size
		}
		r.globals[g.Name.Name] = Global{Addr: addr, Size: g.Size}
		addr += width
	}

	out := &Chunk{Globals: r.globals}
	seen := make(map[string]bool)
	for _, fn := range ch.Funcs {
		if seen[fn.Name.Name] {
			return nil, &Error{Pos: fn.Keyword, Msg: fmt.Sprintf("function %q already declared", fn.Name.Name)}
		}
		seen[fn.Name.Name] = true

		info, err := r.resolveFunc(fn)
		if err != nil {
			return nil, err
		}
		out.Funcs = append(out.Funcs, info)
	}
	return out, nil
}

type resolver struct {
	globals   map[string]Global
	params    map[string]bool
	loopDepth int
}

func (r *resolver) resolveFunc(fn *ast.FuncDecl) (*FuncInfo, error) {
	locals := newLocals()
	r.params = make(map[string]bool, len(fn.Params))
	paramNames := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		r.params[p.Name.Name] = true
		paramNames[i] = p.Name.Name
	}

	r.loopDepth = 0
	if err := r.block(fn.Body, locals); err != nil {
		return nil, err
	}
	return &FuncInfo{Decl: fn, Params: paramNames, Locals: locals}, nil
}

func (r *resolver) block(b *ast.Block, locals *Locals) error {
	for _, s := range b.Stmts {
		if err := r.stmt(s, locals); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) stmt(s ast.Stmt, locals *Locals) error {
	switch n := s.(type) {
	case *ast.AssignStmt:
		for _, rhs := range n.Right {
			if err := r.expr(rhs, locals); err != nil {
				return err
			}
		}
		for _, lhs := range n.Left {
			if err := r.assignTarget(lhs, locals); err != nil {
				return err
			}
		}
		return nil

	case *ast.ExprStmt:
		return r.expr(n.X, locals)

	case *ast.IfStmt:
		if err := r.expr(n.Cond, locals); err != nil {
			return err
		}
		if err := r.block(n.Body, locals); err != nil {
			return err
		}
		switch e := n.Else.(type) {
		case nil:
		case *ast.Block:
			return r.block(e, locals)
		case *ast.IfStmt:
			return r.stmt(e, locals)
		}
		return nil

	case *ast.WhileStmt:
		if err := r.expr(n.Cond, locals); err != nil {
			return err
		}
		r.loopDepth++
		err := r.block(n.Body, locals)
		r.loopDepth--
		return err

	case *ast.ForRangeStmt:
		if n.Start != nil {
			if err := r.expr(n.Start, locals); err != nil {
				return err
			}
		}
		if err := r.expr(n.Stop, locals); err != nil {
			return err
		}
		if n.Step != nil {
			if _, ok := n.Step.(*ast.IntLit); !ok {
				start, _ := n.Step.Span()
				return &Error{Pos: start, Msg: "for-range step must be a literal integer"}
			}
			if err := r.expr(n.Step, locals); err != nil {
				return err
			}
		}
		locals.declare(n.Name.Name)
		r.loopDepth++
		err := r.block(n.Body, locals)
		r.loopDepth--
		return err

	case *ast.BreakStmt:
		if r.loopDepth == 0 {
			return &Error{Pos: n.Pos, Msg: "break outside loop"}
		}
		return nil

	case *ast.ContinueStmt:
		if r.loopDepth == 0 {
			return &Error{Pos: n.Pos, Msg: "continue outside loop"}
		}
		return nil

	case *ast.ReturnStmt:
		if n.X != nil {
			return r.expr(n.X, locals)
		}
		return nil

	default:
		start, _ := s.Span()
		return &Error{Pos: start, Msg: fmt.Sprintf("unsupported statement %T", s)}
	}
}

// assignTarget validates and declares (if needed) an assignment target.
func (r *resolver) assignTarget(e ast.Expr, locals *Locals) error {
	switch n := e.(type) {
	case *ast.Ident:
		if _, isGlobal := r.globals[n.Name]; isGlobal {
			return &Error{Pos: n.NamePos, Msg: fmt.Sprintf("cannot reassign global name %q; use gv.%s instead", n.Name, n.Name)}
		}
		if r.params[n.Name] {
			return nil
		}
		locals.declare(n.Name)
		return nil

	case *ast.SelectorExpr, *ast.IndexExpr:
		_, indexed, err := r.globalRef(e)
		if err != nil {
			return err
		}
		if indexed {
			idx, _ := e.(*ast.IndexExpr)
			return r.expr(idx.Index, locals)
		}
		return nil

	default:
		start, _ := e.Span()
		return &Error{Pos: start, Msg: "invalid assignment target"}
	}
}

func (r *resolver) expr(e ast.Expr, locals *Locals) error {
	switch n := e.(type) {
	case *ast.Ident:
		if r.params[n.Name] {
			return nil
		}
		if _, ok := locals.Lookup(n.Name); ok {
			return nil
		}
		if _, ok := r.globals[n.Name]; ok {
			return &Error{Pos: n.NamePos, Msg: fmt.Sprintf("global %q must be accessed as gv.%s", n.Name, n.Name)}
		}
		return &Error{Pos: n.NamePos, Msg: fmt.Sprintf("undefined name %q", n.Name)}

	case *ast.IntLit:
		return nil

	case *ast.UnaryExpr:
		return r.expr(n.X, locals)

	case *ast.BinaryExpr:
		if err := r.expr(n.X, locals); err != nil {
			return err
		}
		return r.expr(n.Y, locals)

	case *ast.CompareExpr:
		for _, o := range n.Operands {
			if err := r.expr(o, locals); err != nil {
				return err
			}
		}
		return nil

	case *ast.ParenExpr:
		return r.expr(n.X, locals)

	case *ast.CallExpr:
		for _, a := range n.Args {
			if err := r.expr(a, locals); err != nil {
				return err
			}
		}
		return nil

	case *ast.SelectorExpr, *ast.IndexExpr:
		_, indexed, err := r.globalRef(e)
		if err != nil {
			return err
		}
		if indexed {
			idx, _ := e.(*ast.IndexExpr)
			return r.expr(idx.Index, locals)
		}
		return nil

	default:
		start, _ := e.Span()
		return &Error{Pos: start, Msg: fmt.Sprintf("unsupported expression %T", e)}
	}
}

// globalRef validates that e refers to a declared global view, either as
// a scalar (gv.name) or an indexed array element (gv.name[idx]), and
// returns its declared name and whether it was indexed.
func (r *resolver) globalRef(e ast.Expr) (name string, indexed bool, err error) {
	var sel *ast.SelectorExpr
	switch n := e.(type) {
	case *ast.SelectorExpr:
		sel = n
	case *ast.IndexExpr:
		s, ok := n.X.(*ast.SelectorExpr)
		if !ok {
			start, _ := n.Span()
			return "", false, &Error{Pos: start, Msg: "index expression must apply to a global view"}
		}
		sel, indexed = s, true
	}

	base, ok := sel.X.(*ast.Ident)
	if !ok || base.Name != "gv" {
		start, _ := sel.Span()
		return "", false, &Error{Pos: start, Msg: "selector expression must be of the form gv.name"}
	}

	g, ok := r.globals[sel.Sel.Name]
	if !ok {
		return "", false, &Error{Pos: sel.Sel.NamePos, Msg: fmt.Sprintf("undeclared global %q", sel.Sel.Name)}
	}
	if indexed && g.Size == 0 {
		return "", false, &Error{Pos: sel.Sel.NamePos, Msg: fmt.Sprintf("global %q is a scalar, cannot be indexed", sel.Sel.Name)}
	}
	if !indexed && g.Size > 0 {
		return "", false, &Error{Pos: sel.Sel.NamePos, Msg: fmt.Sprintf("global %q is an array, must be indexed", sel.Sel.Name)}
	}
	return sel.Sel.Name, indexed, nil
}
