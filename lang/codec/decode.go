package codec

// Decode reads the instruction starting at data[offset], returning its
// decoded form and the number of bytes it occupies. Operand bytes are
// interpreted big-endian; signed fields are sign-extended per signExtend.
func Decode(data []byte, offset int) (Instruction, int, error) {
	b := data[offset]
	fam := decodeTable[b]
	if fam == nil {
		return Instruction{}, 0, &UnknownCommandError{Byte: b}
	}
	if need := fam.minLen(b); offset+need > len(data) {
		return Instruction{}, 0, &TruncatedError{Offset: offset, Need: need, Have: len(data) - offset}
	}
	ins, err := fam.decode(data, offset)
	if err != nil {
		return Instruction{}, 0, err
	}
	return ins, ins.Len(), nil
}

func decodePushLocal(data []byte, offset int) (Instruction, error) {
	return Instruction{Kind: KindPushLocal, SFA: int8(signExtend(int64(data[offset]), 0x3f))}, nil
}

func decodePopLocal(data []byte, offset int) (Instruction, error) {
	return Instruction{Kind: KindPopLocal, SFA: int8(signExtend(int64(data[offset]), 0x3f))}, nil
}

func decodeUnaryAt(op UnOp) func([]byte, int) (Instruction, error) {
	return func(data []byte, offset int) (Instruction, error) {
		return Instruction{Kind: KindUnary, UnOp: op}, nil
	}
}

func decodeBinaryAt(op BinOp) func([]byte, int) (Instruction, error) {
	return func(data []byte, offset int) (Instruction, error) {
		return Instruction{Kind: KindBinary, BinOp: op}, nil
	}
}

func decodePushImmediate(data []byte, offset int) (Instruction, error) {
	return Instruction{Kind: KindPushImmediate, Value: signExtend(int64(data[offset]), 0x07)}, nil
}

func decodePushU8(data []byte, offset int) (Instruction, error) {
	return Instruction{Kind: KindPushU8, Value: int32(data[offset+1])}, nil
}

func decodePushS8(data []byte, offset int) (Instruction, error) {
	return Instruction{Kind: KindPushS8, Value: signExtend(int64(data[offset+1]), 0xff)}, nil
}

func decodePush16(data []byte, offset int) (Instruction, error) {
	v := int64(data[offset+1])<<8 | int64(data[offset+2])
	return Instruction{Kind: KindPush16, Value: signExtend(v, 0xffff)}, nil
}

func decodeRel1(kind Kind) func([]byte, int) (Instruction, error) {
	return func(data []byte, offset int) (Instruction, error) {
		return Instruction{Kind: kind, RelAddr: signExtend(int64(data[offset+1]), 0xff)}, nil
	}
}

func decodeRel2(kind Kind) func([]byte, int) (Instruction, error) {
	return func(data []byte, offset int) (Instruction, error) {
		v := int64(data[offset+1])<<8 | int64(data[offset+2])
		return Instruction{Kind: kind, RelAddr: signExtend(v, 0xffff)}, nil
	}
}

func decodeCallUserFunction(data []byte, offset int) (Instruction, error) {
	return Instruction{Kind: KindCallUserFunction, FuncID: data[offset] & 0x0f}, nil
}

// modeToNArgsPop maps the 3-bit global-access mode field to (nargs,
// popoffset). Mode 2 is the fully indirect form (nil static address,
// popoffset=true); modes 0 and 1 carry a 1- or 2-byte static address used
// as is (popoffset=false), and modes 3 and 4 carry a 1- or 2-byte static
// address to which an offset popped from the stack is added. See
// DESIGN.md for why this numbering, not a mode-0-is-indirect one, is used.
var modeToNArgsPop = [5]struct {
	nargs     uint8
	popoffset bool
}{
	{1, false},
	{2, false},
	{0, true},
	{1, true},
	{2, true},
}

var nargsPopToMode = func() map[[2]int]byte {
	m := make(map[[2]int]byte, len(modeToNArgsPop))
	for i, e := range modeToNArgsPop {
		pop := 0
		if e.popoffset {
			pop = 1
		}
		m[[2]int{int(e.nargs), pop}] = byte(i)
	}
	return m
}()

func decodeGlobalAccess(data []byte, offset int, store bool, width GlobalWidth) (Instruction, error) {
	mode := data[offset] & 0x7
	if int(mode) >= len(modeToNArgsPop) {
		return Instruction{}, &UnknownCommandError{Byte: data[offset]}
	}
	e := modeToNArgsPop[mode]
	ins := Instruction{Kind: KindGlobalAccess, Store: store, Width: width, NArgs: e.nargs, PopOffset: e.popoffset}
	switch e.nargs {
	case 0:
		// address comes entirely from the stack at runtime.
	case 1:
		ins.Address = uint32(data[offset+1])
	case 2:
		ins.Address = uint32(data[offset+1])<<8 | uint32(data[offset+2])
	}
	return ins, nil
}
