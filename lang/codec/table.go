package codec

// family describes one instruction family's byte-matching rule: a byte b
// belongs to the family when b&mask == value, refined by an optional extra
// predicate for families that share their top bits with another family
// (global access vs. stack access both live under mask 0xc7/0xf8).
type family struct {
	name   string
	mask   byte
	value  byte
	extra  func(b byte) bool
	// minLen returns the total number of bytes (including the opcode byte
	// itself) this family's instruction needs, given the already-known
	// opcode byte b. Decode uses it to bounds-check before reading operand
	// bytes, so a truncated buffer fails gracefully instead of panicking.
	minLen func(b byte) int
	decode func(data []byte, offset int) (Instruction, error)
}

var families = buildFamilies()

// decodeTable maps each possible byte to the single family that claims it,
// or nil if no family claims it. It is built once at init time, which is
// also when a table bug (more than one family claiming a byte) is caught,
// per the "ambiguities are caught at table-build time" design rationale.
var decodeTable [256]*family

func init() {
	for b := 0; b < 256; b++ {
		var matched *family
		for i := range families {
			f := &families[i]
			if byte(b)&f.mask != f.value {
				continue
			}
			if f.extra != nil && !f.extra(byte(b)) {
				continue
			}
			if matched != nil {
				panic((&MultipleMatchError{Byte: byte(b)}).Error())
			}
			matched = f
		}
		decodeTable[b] = matched
	}
}

// fixedLen builds a minLen closure for a family whose byte length never
// depends on the opcode byte's own bits.
func fixedLen(n int) func(byte) int {
	return func(byte) int { return n }
}

func buildFamilies() []family {
	fams := []family{
		{"push_local", 0xc0, 0x00, nil, fixedLen(1), decodePushLocal},
		{"pop_local", 0xc0, 0x40, nil, fixedLen(1), decodePopLocal},
	}
	for i := 0; i < arithmeticOps; i++ {
		fams = append(fams, family{"binary_arith", 0xff, byte(0x80 + i), nil, fixedLen(1), decodeBinaryAt(BinOp(i))})
	}
	for i := 0; i < 3; i++ {
		fams = append(fams, family{"unary", 0xff, byte(0x8c + i), nil, fixedLen(1), decodeUnaryAt(UnOp(i))})
	}
	fams = append(fams,
		family{"push_immediate", 0xf8, 0x90, nil, fixedLen(1), decodePushImmediate},
		family{"push_u8", 0xff, 0x98, nil, fixedLen(2), decodePushU8},
		family{"push_s8", 0xff, 0x99, nil, fixedLen(2), decodePushS8},
		family{"push_16", 0xff, 0x9a, nil, fixedLen(3), decodePush16},
		family{"return", 0xff, 0x9b, nil, fixedLen(1), exact(KindReturn)},
		family{"return0", 0xff, 0x9c, nil, fixedLen(1), exact(KindReturn0)},
		family{"drop_value", 0xff, 0x9d, nil, fixedLen(1), exact(KindDropValue)},
		family{"call_address", 0xff, 0x9e, nil, fixedLen(1), exact(KindCallAddress)},
		family{"jump_to_address", 0xff, 0x9f, nil, fixedLen(1), exact(KindJumpToAddress)},

		family{"jump_rel1", 0xff, 0xa0, nil, fixedLen(2), decodeRel1(KindJumpRel1)},
		family{"jump_rel2", 0xff, 0xa1, nil, fixedLen(3), decodeRel2(KindJumpRel2)},
		family{"call_rel1", 0xff, 0xa2, nil, fixedLen(2), decodeRel1(KindCallRel1)},
		family{"call_rel2", 0xff, 0xa3, nil, fixedLen(3), decodeRel2(KindCallRel2)},
		family{"jump_if_rel1", 0xff, 0xa4, nil, fixedLen(2), decodeRel1(KindJumpIfRel1)},
		family{"jump_if_rel2", 0xff, 0xa5, nil, fixedLen(3), decodeRel2(KindJumpIfRel2)},
		family{"jump_ifnot_rel1", 0xff, 0xa6, nil, fixedLen(2), decodeRel1(KindJumpIfNotRel1)},
		family{"jump_ifnot_rel2", 0xff, 0xa7, nil, fixedLen(3), decodeRel2(KindJumpIfNotRel2)},
	)
	for i := 0; i < 6; i++ {
		fams = append(fams, family{"compare", 0xff, byte(0xa8 + i), nil, fixedLen(1), decodeBinaryAt(BinOp(arithmeticOps + i))})
	}
	fams = append(fams,
		family{"stack_pointer", 0xff, 0xae, nil, fixedLen(1), exact(KindStackPointer)},
		family{"stack_frame_pointer", 0xff, 0xaf, nil, fixedLen(1), exact(KindStackFramePointer)},
		family{"call_user_function", 0xf0, 0xb0, nil, fixedLen(1), decodeCallUserFunction},
	)

	globalCodes := []struct {
		base  byte
		store bool
		width GlobalWidth
	}{
		{0xc0, false, WidthU8},
		{0xc8, true, WidthU8},
		{0xd0, false, WidthS8},
		{0xd8, true, WidthS8},
		{0xe0, false, Width16},
		{0xe8, true, Width16},
	}
	for _, gc := range globalCodes {
		gc := gc
		fams = append(fams, family{
			name:  "global_access",
			mask:  0xf8,
			value: gc.base,
			extra: func(b byte) bool { return b&0x7 <= 4 },
			minLen: func(b byte) int {
				mode := b & 0x7
				if int(mode) >= len(modeToNArgsPop) {
					return 1
				}
				return 1 + int(modeToNArgsPop[mode].nargs)
			},
			decode: func(data []byte, offset int) (Instruction, error) {
				return decodeGlobalAccess(data, offset, gc.store, gc.width)
			},
		})
	}

	fams = append(fams,
		family{
			name:   "bury",
			mask:   0xc7,
			value:  0xc5,
			extra:  func(b byte) bool { return (b>>3)&0x7 <= 5 },
			minLen: fixedLen(1),
			decode: func(data []byte, offset int) (Instruction, error) {
				return Instruction{Kind: KindBury, Value: int32((data[offset] >> 3) & 0x7)}, nil
			},
		},
		family{
			name:   "dig",
			mask:   0xc7,
			value:  0xc6,
			extra:  func(b byte) bool { return (b>>3)&0x7 <= 5 },
			minLen: fixedLen(1),
			decode: func(data []byte, offset int) (Instruction, error) {
				return Instruction{Kind: KindDig, Value: int32((data[offset] >> 3) & 0x7)}, nil
			},
		},
		family{
			name:   "push_zeros",
			mask:   0xf8,
			value:  0xf0,
			minLen: fixedLen(1),
			decode: func(data []byte, offset int) (Instruction, error) {
				return Instruction{Kind: KindPushZeros, Value: int32(data[offset] & 0x7)}, nil
			},
		},
		family{
			name:   "pop_many",
			mask:   0xf8,
			value:  0xf8,
			minLen: fixedLen(1),
			decode: func(data []byte, offset int) (Instruction, error) {
				return Instruction{Kind: KindPopMany, Value: int32(data[offset] & 0x7)}, nil
			},
		},
	)
	return fams
}

func exact(kind Kind) func([]byte, int) (Instruction, error) {
	return func(data []byte, offset int) (Instruction, error) {
		return Instruction{Kind: kind}, nil
	}
}
