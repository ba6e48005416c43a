package resolver_test

import (
	"testing"

	"github.com/mna/embedvm/lang/ast"
	"github.com/mna/embedvm/lang/parser"
	"github.com/mna/embedvm/lang/resolver"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	ch, err := parser.ParseChunk("test.evm", []byte(src))
	require.NoError(t, err)
	return ch
}

func TestResolveLocalsSlotOrder(t *testing.T) {
	ch := mustParse(t, `
function f(a, b)
	x = a + b
	y = x + 1
	x = y
	return x
end
`)
	res, err := resolver.Resolve(ch)
	require.NoError(t, err)
	require.Len(t, res.Funcs, 1)

	info := res.Funcs[0]
	require.Equal(t, []string{"a", "b"}, info.Params)
	require.Equal(t, []string{"x", "y"}, info.Locals.Names())
}

func TestResolveGlobalAddressesAndSizes(t *testing.T) {
	ch := mustParse(t, `
global flag
global table[4]

function main()
	gv.flag = 1
	gv.table[0] = 2
	return 0
end
`)
	res, err := resolver.Resolve(ch)
	require.NoError(t, err)
	require.Equal(t, 0, res.Globals["flag"].Addr)
	require.Equal(t, 0, res.Globals["flag"].Size)
	require.Equal(t, 1, res.Globals["table"].Addr)
	require.Equal(t, 4, res.Globals["table"].Size)
}

func TestResolveBreakOutsideLoopFails(t *testing.T) {
	ch := mustParse(t, `
function f()
	break
end
`)
	_, err := resolver.Resolve(ch)
	require.Error(t, err)
}

func TestResolveNonLiteralForStepFails(t *testing.T) {
	ch := mustParse(t, `
function f(n)
	for i in range(0, 10, n)
	end
	return 0
end
`)
	_, err := resolver.Resolve(ch)
	require.Error(t, err)
}

func TestResolveReassigningGlobalNameFails(t *testing.T) {
	ch := mustParse(t, `
global flag

function f()
	flag = 1
	return 0
end
`)
	_, err := resolver.Resolve(ch)
	require.Error(t, err)
}

func TestResolveUndeclaredGlobalFails(t *testing.T) {
	ch := mustParse(t, `
function f()
	gv.nope = 1
	return 0
end
`)
	_, err := resolver.Resolve(ch)
	require.Error(t, err)
}
