package codec_test

import (
	"testing"

	"github.com/mna/embedvm/lang/codec"
	"github.com/stretchr/testify/require"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	for b := 0; b < 256; b++ {
		buf := []byte{byte(b), 0xe9, 0xfd}
		ins, n, err := codec.Decode(buf, 0)
		if err != nil {
			require.IsType(t, &codec.UnknownCommandError{}, err, "byte 0x%02x", b)
			continue
		}
		require.False(t, ins.IsPlaceholder(), "byte 0x%02x decoded to a placeholder kind", b)
		encoded, err := codec.Encode(ins)
		require.NoError(t, err, "byte 0x%02x", b)
		require.Equal(t, buf[:n], encoded, "byte 0x%02x", b)

		ins2, n2, err := codec.Decode(encoded, 0)
		require.NoError(t, err)
		require.Equal(t, n, n2)
		require.Equal(t, ins, ins2)
	}
}

func TestDecodePushImmediate(t *testing.T) {
	ins, n, err := codec.Decode([]byte{0x90}, 0)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, codec.KindPushImmediate, ins.Kind)
	require.EqualValues(t, 0, ins.Value)

	ins, n, err = codec.Decode([]byte{0x97}, 0)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, codec.KindPushImmediate, ins.Kind)
	require.EqualValues(t, -1, ins.Value)
}

func TestDecodeUnknownCommand(t *testing.T) {
	// 0x8f lies just past the unary operators (0x8c..0x8e) and before
	// PushImmediate (0x90..0x97); no family claims it.
	_, _, err := codec.Decode([]byte{0x8f}, 0)
	require.Error(t, err)
	require.IsType(t, &codec.UnknownCommandError{}, err)
}

func TestDecodeTruncated(t *testing.T) {
	_, _, err := codec.Decode([]byte{0x98}, 0)
	require.Error(t, err)
	require.IsType(t, &codec.TruncatedError{}, err)

	_, _, err = codec.Decode([]byte{0x9a, 0x01}, 0)
	require.Error(t, err)
	require.IsType(t, &codec.TruncatedError{}, err)

	// a global access in the 2-byte-address mode (mode 1) with only the
	// opcode byte present.
	_, _, err = codec.Decode([]byte{0xc1}, 0)
	require.Error(t, err)
	require.IsType(t, &codec.TruncatedError{}, err)

	// the fully indirect mode (mode 2) needs no operand bytes at all.
	ins, n, err := codec.Decode([]byte{0xc2}, 0)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.EqualValues(t, 0, ins.NArgs)
	require.True(t, ins.PopOffset)
}

func TestEncodeRangeErrors(t *testing.T) {
	_, err := codec.Encode(codec.Instruction{Kind: codec.KindPushImmediate, Value: 100})
	require.Error(t, err)
	require.IsType(t, &codec.RangeError{}, err)

	_, err = codec.Encode(codec.Instruction{Kind: codec.KindCallUserFunction, FuncID: 16})
	require.Error(t, err)

	_, err = codec.Encode(codec.Instruction{Kind: codec.KindPushLocal, SFA: 40})
	require.Error(t, err)
}

func TestEncodePlaceholderFails(t *testing.T) {
	_, err := codec.Encode(codec.Instruction{Kind: codec.KindJumpV})
	require.Error(t, err)
}

func TestGlobalAccessFullyIndirectInvariant(t *testing.T) {
	ins := codec.Instruction{Kind: codec.KindGlobalAccess, Width: codec.WidthU8, NArgs: 0, PopOffset: true}
	b, err := codec.Encode(ins)
	require.NoError(t, err)
	require.Len(t, b, 1)

	decoded, n, err := codec.Decode(b, 0)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.EqualValues(t, 0, decoded.NArgs)
	require.True(t, decoded.PopOffset)
}

func TestWalkStopsOnReturn(t *testing.T) {
	// PushImmediate(0); Return
	data := []byte{0x90, 0x9b}
	claimed, err := codec.Walk(data, []int{0})
	require.NoError(t, err)
	require.Len(t, claimed.Insns, 2)
}
