package program_test

import (
	"testing"

	"github.com/mna/embedvm/lang/asm"
	"github.com/mna/embedvm/lang/codec"
	"github.com/mna/embedvm/lang/program"
	"github.com/stretchr/testify/require"
)

func TestProgramFixAllAndToBinary(t *testing.T) {
	l := &asm.Label{ID: 1, Export: "main"}
	b := &asm.FreeBlock{}
	b.AppendLabel(l)
	b.Append(codec.Instruction{Kind: codec.KindPushImmediate, Value: 1})
	b.Append(codec.Instruction{Kind: codec.KindReturn0})

	p := &program.Program{Blocks: []program.Block{program.NewFreeBlock(b)}}
	require.NoError(t, p.FixAll())

	require.Equal(t, 0, p.EntryPoint())
	require.Equal(t, 2, p.Length())

	bin, err := p.ToBinary(0)
	require.NoError(t, err)
	require.Equal(t, []byte{0x91, 0x9c}, bin)
}

func TestProgramUnfixAllRoundTrip(t *testing.T) {
	l := &asm.Label{ID: 1}
	b := &asm.FreeBlock{}
	b.Append(codec.Instruction{Kind: codec.KindPushConstantV, Value: 5})
	b.Append(codec.Instruction{Kind: codec.KindJumpIfNotV, Label: l.ID})
	b.AppendLabel(l)
	b.Append(codec.Instruction{Kind: codec.KindReturn})

	p := &program.Program{Blocks: []program.Block{program.NewFreeBlock(b)}}
	require.NoError(t, p.FixAll())
	bin1, err := p.ToBinary(0)
	require.NoError(t, err)

	require.NoError(t, p.UnfixAll())
	require.NoError(t, p.FixAll())
	bin2, err := p.ToBinary(0)
	require.NoError(t, err)

	require.Equal(t, bin1, bin2)
}
