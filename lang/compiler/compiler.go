// Package compiler lowers a resolved *ast.Chunk into a *program.Program:
// one lang/asm.FreeBlock per function, merged into a single free block so
// that inter-function calls become intra-block relative jumps subject to
// the same narrowing as any other branch, then relaxed by
// lang/program.Program.FixAll.
//
// The statement and expression lowering rules are grounded on
// original_source/pysrc/embedvm/python.py's Function._parse/_parse_assign/
// _parse_range and CodeObject.push_value/pop_set methods, adapted from
// Python's dynamic AST walk to a static walk over lang/ast nodes.
package compiler

import (
	"fmt"

	"github.com/mna/embedvm/lang/asm"
	"github.com/mna/embedvm/lang/ast"
	"github.com/mna/embedvm/lang/codec"
	"github.com/mna/embedvm/lang/program"
	"github.com/mna/embedvm/lang/resolver"
	"github.com/mna/embedvm/lang/token"
)

// Error reports a compile-time failure that the resolver's structural
// checks don't already cover: an unknown call target or an argument-count
// mismatch against a declared function.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	line, col := e.Pos.LineCol()
	return fmt.Sprintf("%d:%d: %s", line, col, e.Msg)
}

// funcSig records what a call site needs to know about a declared
// function: its entry label, its total parameter count (to size the
// post-call PopMany) and how many of those parameters are required.
// defaults holds the default value of every optional trailing
// parameter, in declaration order, for the ones after required.
type funcSig struct {
	label      *asm.Label
	paramCount int
	required   int
	defaults   []int64
}

// Compile resolves ch and lowers every function it declares into a single
// assembled *program.Program. The returned program has already been
// through FixAll; callers can serialize it directly with
// (*program.Program).ToBinary.
func Compile(ch *ast.Chunk) (*program.Program, error) {
	res, err := resolver.Resolve(ch)
	if err != nil {
		return nil, err
	}

	c := &compiler{
		globals: res.Globals,
		externs: make(map[string]int, len(ch.Externs)),
		funcs:   make(map[string]funcSig, len(res.Funcs)),
	}

	for _, ext := range ch.Externs {
		if _, dup := c.externs[ext.Name.Name]; dup {
			return nil, &Error{Pos: ext.Keyword, Msg: fmt.Sprintf("extern %q already declared", ext.Name.Name)}
		}
		if ext.Which < 0 || ext.Which > 15 {
			return nil, &Error{Pos: ext.Keyword, Msg: fmt.Sprintf("extern %q: which must be 0..15, got %d", ext.Name.Name, ext.Which)}
		}
		c.externs[ext.Name.Name] = ext.Which
	}

	var labelSeq codec.LabelID
	for _, fn := range res.Funcs {
		name := fn.Decl.Name.Name
		if _, dup := c.externs[name]; dup {
			return nil, &Error{Pos: fn.Decl.Keyword, Msg: fmt.Sprintf("function %q collides with an extern of the same name", name)}
		}
		labelSeq++
		required := 0
		var defaults []int64
		for _, p := range fn.Decl.Params {
			if p.Default == nil {
				required++
				continue
			}
			defaults = append(defaults, p.Default.(*ast.IntLit).Value)
		}
		c.funcs[name] = funcSig{
			label:      &asm.Label{ID: labelSeq, Export: name},
			paramCount: len(fn.Params),
			required:   required,
			defaults:   defaults,
		}
	}

	merged := &asm.FreeBlock{}
	for _, fn := range res.Funcs {
		labelSeq++
		fb, err := c.compileFunc(fn, &labelSeq)
		if err != nil {
			return nil, err
		}
		merged.Extend(fb)
	}

	prog := &program.Program{Blocks: []program.Block{program.NewFreeBlock(merged)}}
	if err := prog.FixAll(); err != nil {
		return nil, fmt.Errorf("compiler: %w", err)
	}
	return prog, nil
}

// compiler holds the state shared by every function being lowered: the
// global-view table, the extern (host user-function) table, and the
// entry label and arity of every declared function.
type compiler struct {
	globals map[string]resolver.Global
	externs map[string]int
	funcs   map[string]funcSig
}

// loopLabels gives break/continue statements their jump targets; nil at
// top level, where the resolver has already rejected break/continue.
type loopLabels struct {
	brk, cont *asm.Label
}

// funcCompiler lowers a single function body into a FreeBlock, tracking
// its parameter/local slot assignment and its stack of enclosing loops.
type funcCompiler struct {
	*compiler
	info    *resolver.FuncInfo
	params  map[string]int8 // name -> negative SFA offset
	block   *asm.FreeBlock
	nextID  *codec.LabelID
	loops   []loopLabels
}

func (c *compiler) compileFunc(info *resolver.FuncInfo, nextID *codec.LabelID) (*asm.FreeBlock, error) {
	fb := &asm.FreeBlock{}
	sig := c.funcs[info.Decl.Name.Name]
	fb.AppendLabel(sig.label)

	if n := info.Locals.Count(); n > 0 {
		fb.Append(codec.Instruction{Kind: codec.KindPushZeros, Value: int32(n - 1)})
	}

	params := make(map[string]int8, len(info.Params))
	for i, p := range info.Params {
		params[p] = int8(-1 - i)
	}

	fc := &funcCompiler{compiler: c, info: info, params: params, block: fb, nextID: nextID}
	if err := fc.block0(info.Decl.Body); err != nil {
		return nil, err
	}
	if !endsInReturn(info.Decl.Body) {
		fb.Append(codec.Instruction{Kind: codec.KindReturn0})
	}
	return fb, nil
}

func endsInReturn(b *ast.Block) bool {
	if len(b.Stmts) == 0 {
		return false
	}
	_, ok := b.Stmts[len(b.Stmts)-1].(*ast.ReturnStmt)
	return ok
}

func (fc *funcCompiler) newLabel(descr string) *asm.Label {
	*fc.nextID++
	return &asm.Label{ID: *fc.nextID, Descr: descr}
}

func (fc *funcCompiler) block0(b *ast.Block) error {
	for _, s := range b.Stmts {
		if err := fc.stmt(s); err != nil {
			return err
		}
	}
	return nil
}
