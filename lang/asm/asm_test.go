package asm_test

import (
	"testing"

	"github.com/mna/embedvm/lang/asm"
	"github.com/mna/embedvm/lang/codec"
	"github.com/stretchr/testify/require"
)

func TestRelaxSimpleForwardJump(t *testing.T) {
	// PushImmediate(0); JumpIfNot(L); PushImmediate(1); L: Return
	b := &asm.FreeBlock{}
	l := &asm.Label{ID: 1}
	b.Append(codec.Instruction{Kind: codec.KindPushImmediate, Value: 0})
	b.Append(codec.Instruction{Kind: codec.KindJumpIfNotV, Label: l.ID})
	b.Append(codec.Instruction{Kind: codec.KindPushImmediate, Value: 1})
	b.AppendLabel(l)
	b.Append(codec.Instruction{Kind: codec.KindReturn})

	fixed, err := b.Relax(0)
	require.NoError(t, err)
	require.Len(t, fixed.Code, 4)

	jmp := fixed.Code[1]
	require.Equal(t, codec.KindJumpIfNotRel1, jmp.Kind)
	require.EqualValues(t, 3, jmp.RelAddr) // from offset 1 (jump) to offset 4 (label, after the 1-byte push)
}

func TestRelaxPicksNarrowestPushEncoding(t *testing.T) {
	for _, tc := range []struct {
		value int32
		kind  codec.Kind
	}{
		{3, codec.KindPushImmediate},
		{200, codec.KindPushU8},
		{-100, codec.KindPushS8},
		{1000, codec.KindPush16},
	} {
		b := &asm.FreeBlock{}
		b.Append(codec.Instruction{Kind: codec.KindPushConstantV, Value: tc.value})
		fixed, err := b.Relax(0)
		require.NoError(t, err, "value %d", tc.value)
		require.Equal(t, tc.kind, fixed.Code[0].Kind, "value %d", tc.value)
	}
}

func TestRelaxBackwardShortJumpStaysOneByte(t *testing.T) {
	// L: PushImmediate(0); DropValue; JumpV(L)
	b := &asm.FreeBlock{}
	l := &asm.Label{ID: 1}
	b.AppendLabel(l)
	b.Append(codec.Instruction{Kind: codec.KindPushImmediate, Value: 0})
	b.Append(codec.Instruction{Kind: codec.KindDropValue})
	b.Append(codec.Instruction{Kind: codec.KindJumpV, Label: l.ID})

	fixed, err := b.Relax(0)
	require.NoError(t, err)
	require.Equal(t, codec.KindJumpRel1, fixed.Code[2].Kind)
	require.EqualValues(t, -2, fixed.Code[2].RelAddr)
}

func TestRelaxUnfixRoundTrip(t *testing.T) {
	l := &asm.Label{ID: 1, Export: "loop"}
	b := &asm.FreeBlock{}
	b.AppendLabel(l)
	b.Append(codec.Instruction{Kind: codec.KindPushConstantV, Value: 1000})
	b.Append(codec.Instruction{Kind: codec.KindDropValue})
	b.Append(codec.Instruction{Kind: codec.KindJumpV, Label: l.ID})

	fixed, err := b.Relax(0)
	require.NoError(t, err)

	free2, err := asm.Unfix(fixed)
	require.NoError(t, err)

	fixed2, err := free2.Relax(0)
	require.NoError(t, err)
	require.Equal(t, fixed.Code, fixed2.Code)
	require.Equal(t, fixed.Sym, fixed2.Sym)
}

func TestRelaxUndefinedLabelFails(t *testing.T) {
	b := &asm.FreeBlock{}
	b.Append(codec.Instruction{Kind: codec.KindJumpV, Label: 99})
	_, err := b.Relax(0)
	require.Error(t, err)
}
