package codec

import "fmt"

// Encode returns the exact byte sequence for ins, re-validating every field
// against its mask's range. It fails (instead of silently truncating) if a
// mutated field is now out of range, and it refuses to encode placeholder
// Kinds: callers must relax those to a concrete form first.
func Encode(ins Instruction) ([]byte, error) {
	switch ins.Kind {
	case KindPushLocal:
		return encodeSFA(0x00, ins.SFA)
	case KindPopLocal:
		return encodeSFA(0x40, ins.SFA)

	case KindUnary:
		if int(ins.UnOp) > 2 {
			return nil, &RangeError{Field: "un_op", Value: int64(ins.UnOp)}
		}
		return []byte{0x8c + byte(ins.UnOp)}, nil

	case KindBinary:
		if int(ins.BinOp) >= int(numBinOps) {
			return nil, &RangeError{Field: "bin_op", Value: int64(ins.BinOp)}
		}
		if int(ins.BinOp) < arithmeticOps {
			return []byte{0x80 + byte(ins.BinOp)}, nil
		}
		return []byte{0xa8 + byte(int(ins.BinOp)-arithmeticOps)}, nil

	case KindPushImmediate:
		if err := assertSignExtended("value", int64(ins.Value), 0x07); err != nil {
			return nil, err
		}
		return []byte{0x90 | byte(ins.Value&0x07)}, nil

	case KindPushU8:
		if ins.Value < 0 || ins.Value > 255 {
			return nil, &RangeError{Field: "value", Value: int64(ins.Value)}
		}
		return []byte{0x98, byte(ins.Value)}, nil

	case KindPushS8:
		if err := assertSignExtended("value", int64(ins.Value), 0xff); err != nil {
			return nil, err
		}
		return []byte{0x99, byte(ins.Value)}, nil

	case KindPush16:
		if ins.Value < -0x8000 || ins.Value > 0xffff {
			return nil, &RangeError{Field: "value", Value: int64(ins.Value)}
		}
		v := uint32(ins.Value) & 0xffff
		return []byte{0x9a, byte(v >> 8), byte(v)}, nil

	case KindReturn:
		return []byte{0x9b}, nil
	case KindReturn0:
		return []byte{0x9c}, nil
	case KindDropValue:
		return []byte{0x9d}, nil
	case KindCallAddress:
		return []byte{0x9e}, nil
	case KindJumpToAddress:
		return []byte{0x9f}, nil

	case KindJumpRel1:
		return encodeRel1(0xa0, ins.RelAddr)
	case KindJumpRel2:
		return encodeRel2(0xa1, ins.RelAddr)
	case KindCallRel1:
		return encodeRel1(0xa2, ins.RelAddr)
	case KindCallRel2:
		return encodeRel2(0xa3, ins.RelAddr)
	case KindJumpIfRel1:
		return encodeRel1(0xa4, ins.RelAddr)
	case KindJumpIfRel2:
		return encodeRel2(0xa5, ins.RelAddr)
	case KindJumpIfNotRel1:
		return encodeRel1(0xa6, ins.RelAddr)
	case KindJumpIfNotRel2:
		return encodeRel2(0xa7, ins.RelAddr)

	case KindStackPointer:
		return []byte{0xae}, nil
	case KindStackFramePointer:
		return []byte{0xaf}, nil

	case KindCallUserFunction:
		if ins.FuncID > 15 {
			return nil, &RangeError{Field: "funcid", Value: int64(ins.FuncID)}
		}
		return []byte{0xb0 | ins.FuncID}, nil

	case KindGlobalAccess:
		return encodeGlobalAccess(ins)

	case KindBury:
		return encodeStackAccess(0xc5, ins.Value)
	case KindDig:
		return encodeStackAccess(0xc6, ins.Value)

	case KindPushZeros:
		return encodeShoveling(0xf0, ins.Value)
	case KindPopMany:
		return encodeShoveling(0xf8, ins.Value)

	case KindPushConstantV, KindJumpV, KindJumpIfV, KindJumpIfNotV, KindCallV:
		return nil, fmt.Errorf("codec: cannot encode placeholder instruction %s, relax it first", ins.Kind)

	default:
		return nil, fmt.Errorf("codec: unknown instruction kind %s", ins.Kind)
	}
}

func encodeSFA(base byte, sfa int8) ([]byte, error) {
	if err := assertSignExtended("sfa", int64(sfa), 0x3f); err != nil {
		return nil, err
	}
	return []byte{base | byte(sfa)&0x3f}, nil
}

func encodeRel1(base byte, reladdr int32) ([]byte, error) {
	if err := assertSignExtended("reladdr", int64(reladdr), 0xff); err != nil {
		return nil, err
	}
	return []byte{base, byte(reladdr)}, nil
}

func encodeRel2(base byte, reladdr int32) ([]byte, error) {
	if err := assertSignExtended("reladdr", int64(reladdr), 0xffff); err != nil {
		return nil, err
	}
	v := uint32(reladdr) & 0xffff
	return []byte{base, byte(v >> 8), byte(v)}, nil
}

func encodeStackAccess(suffix byte, k int32) ([]byte, error) {
	if k < 0 || k > 5 {
		return nil, &RangeError{Field: "k", Value: int64(k)}
	}
	return []byte{0xc0 | byte(k)<<3 | (suffix & 0x7)}, nil
}

func encodeShoveling(base byte, n int32) ([]byte, error) {
	if n < 0 || n > 7 {
		return nil, &RangeError{Field: "n", Value: int64(n)}
	}
	return []byte{base | byte(n)}, nil
}

var globalBase = map[bool]map[GlobalWidth]byte{
	false: {WidthU8: 0xc0, WidthS8: 0xd0, Width16: 0xe0},
	true:  {WidthU8: 0xc8, WidthS8: 0xd8, Width16: 0xe8},
}

func encodeGlobalAccess(ins Instruction) ([]byte, error) {
	base, ok := globalBase[ins.Store][ins.Width]
	if !ok {
		return nil, &RangeError{Field: "width", Value: int64(ins.Width)}
	}
	pop := 0
	if ins.PopOffset {
		pop = 1
	}
	mode, ok := nargsPopToMode[[2]int{int(ins.NArgs), pop}]
	if !ok {
		return nil, &RangeError{Field: "nargs", Value: int64(ins.NArgs)}
	}
	if ins.NArgs == 0 && !ins.PopOffset {
		return nil, &RangeError{Field: "popoffset", Value: 0}
	}

	out := []byte{base | mode}
	switch ins.NArgs {
	case 0:
	case 1:
		if ins.Address > 0xff {
			return nil, &RangeError{Field: "address", Value: int64(ins.Address)}
		}
		out = append(out, byte(ins.Address))
	case 2:
		if ins.Address > 0xffff {
			return nil, &RangeError{Field: "address", Value: int64(ins.Address)}
		}
		out = append(out, byte(ins.Address>>8), byte(ins.Address))
	default:
		return nil, &RangeError{Field: "nargs", Value: int64(ins.NArgs)}
	}
	return out, nil
}
