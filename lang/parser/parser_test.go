package parser_test

import (
	"testing"

	"github.com/mna/embedvm/lang/ast"
	"github.com/mna/embedvm/lang/parser"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleFunction(t *testing.T) {
	src := `
function toggle()
	gv.flag = gv.flag ^ 1
end
`
	ch, err := parser.ParseChunk("toggle.evm", []byte(src))
	require.NoError(t, err)
	require.Len(t, ch.Funcs, 1)

	fn := ch.Funcs[0]
	require.Equal(t, "toggle", fn.Name.Name)
	require.Empty(t, fn.Params)
	require.Len(t, fn.Body.Stmts, 1)

	assign, ok := fn.Body.Stmts[0].(*ast.AssignStmt)
	require.True(t, ok)
	require.Len(t, assign.Left, 1)
	sel, ok := assign.Left[0].(*ast.SelectorExpr)
	require.True(t, ok)
	require.Equal(t, "flag", sel.Sel.Name)
}

func TestParseIfWhileForRange(t *testing.T) {
	src := `
function run(n)
	i = 0
	while i < n
		if gv.a[i] == 0
			gv.a[i] = 1
		else
			gv.a[i] = gv.a[i] + 1
		end
		i = i + 1
	end

	for k in range(0, n, 2)
		gv.a[k] = 0
	end

	return n
end
`
	ch, err := parser.ParseChunk("run.evm", []byte(src))
	require.NoError(t, err)
	require.Len(t, ch.Funcs, 1)

	fn := ch.Funcs[0]
	require.Equal(t, []string{"n"}, identNames(fn.Params))
	require.Len(t, fn.Body.Stmts, 4)

	while, ok := fn.Body.Stmts[1].(*ast.WhileStmt)
	require.True(t, ok)
	require.Len(t, while.Body.Stmts, 2)

	ifStmt, ok := while.Body.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Else)

	forRange, ok := fn.Body.Stmts[2].(*ast.ForRangeStmt)
	require.True(t, ok)
	require.NotNil(t, forRange.Start)
	require.NotNil(t, forRange.Step)

	ret, ok := fn.Body.Stmts[3].(*ast.ReturnStmt)
	require.True(t, ok)
	require.NotNil(t, ret.X)
}

func TestParseCallStatementAndExpr(t *testing.T) {
	src := `
function main()
	uf(1, 2)
	return 1 + 2 * 3
end
`
	ch, err := parser.ParseChunk("main.evm", []byte(src))
	require.NoError(t, err)

	fn := ch.Funcs[0]
	require.Len(t, fn.Body.Stmts, 2)

	exprStmt, ok := fn.Body.Stmts[0].(*ast.ExprStmt)
	require.True(t, ok)
	call, ok := exprStmt.X.(*ast.CallExpr)
	require.True(t, ok)
	require.Equal(t, "uf", call.Fun.Name)
	require.Len(t, call.Args, 2)

	ret := fn.Body.Stmts[1].(*ast.ReturnStmt)
	bin, ok := ret.X.(*ast.BinaryExpr)
	require.True(t, ok)
	// "*" binds tighter than "+", so the top-level node is the "+".
	require.Equal(t, "+", bin.Op.String())
}

func TestParseErrorReportsAndRecovers(t *testing.T) {
	src := `
function bad(
	return 1
end

function good()
	return 2
end
`
	ch, err := parser.ParseChunk("bad.evm", []byte(src))
	require.Error(t, err)
	// the malformed declaration is skipped, but the well-formed one after it
	// still parses.
	require.Len(t, ch.Funcs, 1)
	require.Equal(t, "good", ch.Funcs[0].Name.Name)
}

func TestParseGlobalDecls(t *testing.T) {
	src := `
global counter
global table[16]

function main()
	return 0
end
`
	ch, err := parser.ParseChunk("globals.evm", []byte(src))
	require.NoError(t, err)
	require.Len(t, ch.Globals, 2)
	require.Equal(t, "counter", ch.Globals[0].Name.Name)
	require.Equal(t, 0, ch.Globals[0].Size)
	require.Equal(t, "table", ch.Globals[1].Name.Name)
	require.Equal(t, 16, ch.Globals[1].Size)
}

func TestParseExternDecl(t *testing.T) {
	src := `
extern uf(1)

function main()
	uf(1, 2)
	return 0
end
`
	ch, err := parser.ParseChunk("extern.evm", []byte(src))
	require.NoError(t, err)
	require.Len(t, ch.Externs, 1)
	require.Equal(t, "uf", ch.Externs[0].Name.Name)
	require.Equal(t, 1, ch.Externs[0].Which)
}

func TestParseChainedComparison(t *testing.T) {
	src := `
function main(a, b, c)
	return a < b < c
end
`
	ch, err := parser.ParseChunk("chain.evm", []byte(src))
	require.NoError(t, err)

	fn := ch.Funcs[0]
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	cmp, ok := ret.X.(*ast.CompareExpr)
	require.True(t, ok)
	require.Len(t, cmp.Operands, 3)
	require.Equal(t, []string{"<", "<"}, []string{cmp.Ops[0].String(), cmp.Ops[1].String()})
}

func TestParseDefaultParams(t *testing.T) {
	src := `
function inc(n, step = 1)
	return n + step
end

function main()
	return inc(1) + inc(1, 2)
end
`
	ch, err := parser.ParseChunk("defaults.evm", []byte(src))
	require.NoError(t, err)

	fn := ch.Funcs[0]
	require.Len(t, fn.Params, 2)
	require.Nil(t, fn.Params[0].Default)
	require.NotNil(t, fn.Params[1].Default)
	require.Equal(t, int64(1), fn.Params[1].Default.(*ast.IntLit).Value)
}

func identNames(params []*ast.Param) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name.Name
	}
	return names
}
