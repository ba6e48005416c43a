package compiler_test

import (
	"testing"

	"github.com/mna/embedvm/lang/codec"
	"github.com/mna/embedvm/lang/compiler"
	"github.com/mna/embedvm/lang/parser"
	"github.com/stretchr/testify/require"
)

// decodeAll decodes a flat instruction stream from offset 0 to its end,
// which is valid for any program assembled from a single merged free
// block (no data gaps between instructions).
func decodeAll(t *testing.T, bin []byte) []codec.Instruction {
	t.Helper()
	var out []codec.Instruction
	off := 0
	for off < len(bin) {
		ins, n, err := codec.Decode(bin, off)
		require.NoError(t, err, "decoding at offset %d", off)
		out = append(out, ins)
		off += n
	}
	return out
}

func kinds(insns []codec.Instruction) []codec.Kind {
	out := make([]codec.Kind, len(insns))
	for i, ins := range insns {
		out[i] = ins.Kind
	}
	return out
}

func compileAndDecode(t *testing.T, src string) []codec.Instruction {
	t.Helper()
	ch, err := parser.ParseChunk("test.evm", []byte(src))
	require.NoError(t, err)
	prog, err := compiler.Compile(ch)
	require.NoError(t, err)
	bin, err := prog.ToBinary(0)
	require.NoError(t, err)
	return decodeAll(t, bin)
}

func TestCompileConstantSizing(t *testing.T) {
	for _, tc := range []struct {
		src   string
		kind  codec.Kind
		value int32
	}{
		{"function f() x = 3 end", codec.KindPushImmediate, 3},
		{"function f() x = 200 end", codec.KindPushU8, 200},
		{"function f() x = -100 end", codec.KindPushS8, -100},
		{"function f() x = 1000 end", codec.KindPush16, 1000},
	} {
		insns := compileAndDecode(t, tc.src)
		// PushZeros(0) prologue, push, PopLocal(0), implicit Return0.
		require.Equal(t, []codec.Kind{codec.KindPushZeros, tc.kind, codec.KindPopLocal, codec.KindReturn0}, kinds(insns), tc.src)
		require.Equal(t, tc.value, insns[1].Value, tc.src)
		require.EqualValues(t, 0, insns[2].SFA, tc.src)
	}
}

func TestCompileToggleLoop(t *testing.T) {
	src := `
global toggling

function loop()
	for i in range(16)
		gv.toggling = not gv.toggling
	end
	return 0
end
`
	insns := compileAndDecode(t, src)

	var loads, stores, nots int
	for _, ins := range insns {
		if ins.Kind == codec.KindGlobalAccess {
			require.Equal(t, codec.WidthU8, ins.Width)
			require.False(t, ins.PopOffset)
			require.EqualValues(t, 0, ins.Address)
			require.EqualValues(t, 1, ins.NArgs)
			if ins.Store {
				stores++
			} else {
				loads++
			}
		}
		if ins.Kind == codec.KindUnary && ins.UnOp == codec.LogicNot {
			nots++
		}
	}
	require.Equal(t, 1, loads)
	require.Equal(t, 1, stores)
	require.Equal(t, 1, nots)
}

func TestCompileUserFunctionCall(t *testing.T) {
	src := `
extern uf(1)

function main()
	i = 0
	uf(1, i)
	return 0
end
`
	insns := compileAndDecode(t, src)

	// PushZeros(0); PushImmediate(0); PopLocal(0); <call sequence>; DropValue; PushImmediate(0); Return
	idx := -1
	for i, ins := range insns {
		if ins.Kind == codec.KindCallUserFunction {
			idx = i
			break
		}
	}
	require.Greater(t, idx, 0, "no CallUserFunction found in %v", kinds(insns))
	require.EqualValues(t, 1, insns[idx].FuncID)

	// the two args are pushed in reverse (i, then the literal 1), followed
	// by the argument count (2), then the call, then a drop since the call
	// is used as a bare statement.
	require.Equal(t, codec.KindPushLocal, insns[idx-3].Kind)
	require.EqualValues(t, 0, insns[idx-3].SFA)
	require.Equal(t, codec.KindPushImmediate, insns[idx-2].Kind)
	require.EqualValues(t, 1, insns[idx-2].Value)
	require.Equal(t, codec.KindPushImmediate, insns[idx-1].Kind)
	require.EqualValues(t, 2, insns[idx-1].Value)
	require.Equal(t, codec.KindDropValue, insns[idx+1].Kind)
}

func TestCompileBackwardShortJumpStaysOneByte(t *testing.T) {
	src := `
function f()
	x = 10
	while 1
		x = x - 1
		if not x > 0
			break
		end
	end
	return 0
end
`
	insns := compileAndDecode(t, src)

	var sawJumpRel1, sawJumpRel2 bool
	for _, ins := range insns {
		switch ins.Kind {
		case codec.KindJumpRel1:
			sawJumpRel1 = true
		case codec.KindJumpRel2:
			sawJumpRel2 = true
		}
	}
	require.True(t, sawJumpRel1, "expected at least one JumpRel1 in %v", kinds(insns))
	require.False(t, sawJumpRel2, "a loop this small should never need a 2-byte displacement")
}

func TestCompileGlobalArrayAccess(t *testing.T) {
	src := `
global a[5]

function bump(i)
	gv.a[i] = gv.a[i] + 1
end
`
	insns := compileAndDecode(t, src)

	var loadIdx, storeIdx int = -1, -1
	for i, ins := range insns {
		if ins.Kind != codec.KindGlobalAccess {
			continue
		}
		require.True(t, ins.PopOffset)
		require.EqualValues(t, 0, ins.Address)
		if ins.Store {
			storeIdx = i
		} else {
			loadIdx = i
		}
	}
	require.NotEqual(t, -1, loadIdx)
	require.NotEqual(t, -1, storeIdx)
	require.Less(t, loadIdx, storeIdx)

	// the load is preceded by a push of the index, and followed by
	// PushImmediate(1); Add.
	require.Equal(t, codec.KindPushLocal, insns[loadIdx-1].Kind)
	require.Equal(t, codec.KindPushImmediate, insns[loadIdx+1].Kind)
	require.EqualValues(t, 1, insns[loadIdx+1].Value)
	require.Equal(t, codec.KindBinary, insns[loadIdx+2].Kind)
	require.Equal(t, codec.Add, insns[loadIdx+2].BinOp)

	// the store is preceded by the index pushed again.
	require.Equal(t, codec.KindPushLocal, insns[storeIdx-1].Kind)
}

func TestCompileUndeclaredFunctionCallFails(t *testing.T) {
	ch, err := parser.ParseChunk("test.evm", []byte(`
function f()
	g()
	return 0
end
`))
	require.NoError(t, err)
	_, err = compiler.Compile(ch)
	require.Error(t, err)
}

func TestCompileArityMismatchFails(t *testing.T) {
	ch, err := parser.ParseChunk("test.evm", []byte(`
function g(a, b)
	return a + b
end

function f()
	g(1)
	return 0
end
`))
	require.NoError(t, err)
	_, err = compiler.Compile(ch)
	require.Error(t, err)
}

func TestCompileChainedComparison(t *testing.T) {
	src := `
function f(a, b, c)
	return a < b < c
end
`
	insns := compileAndDecode(t, src)

	var cmps, ands int
	for _, ins := range insns {
		if ins.Kind != codec.KindBinary {
			continue
		}
		if ins.BinOp == codec.CmpLT {
			cmps++
		}
		if ins.BinOp == codec.LAnd {
			ands++
		}
	}
	// (a<b) and (b<c): two compares joined by one LogicAnd, with b pushed
	// twice (once per comparison it takes part in).
	require.Equal(t, 2, cmps)
	require.Equal(t, 1, ands)

	count := 0
	for _, ins := range insns {
		if ins.Kind == codec.KindPushLocal && ins.SFA == -2 {
			count++
		}
	}
	require.Equal(t, 2, count, "shared operand b must be pushed once per comparison, in %v", kinds(insns))
}

func TestCompileDefaultParams(t *testing.T) {
	src := `
function inc(n, step = 5)
	return n + step
end

function f()
	return inc(1) + inc(1, 2)
end
`
	insns := compileAndDecode(t, src)

	var sawDefault bool
	for _, ins := range insns {
		if ins.Kind == codec.KindPushS8 && ins.Value == 5 {
			sawDefault = true
		}
	}
	require.True(t, sawDefault, "expected the default value 5 to be pushed for the omitted argument, in %v", kinds(insns))
}

func TestCompileTooFewArgsBelowRequiredFails(t *testing.T) {
	ch, err := parser.ParseChunk("test.evm", []byte(`
function g(a, b = 1)
	return a + b
end

function f()
	g()
	return 0
end
`))
	require.NoError(t, err)
	_, err = compiler.Compile(ch)
	require.Error(t, err)
}
