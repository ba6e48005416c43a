// Package codec implements the bidirectional mapping between an EmbedVM
// Instruction value and its 1-3 byte encoding. It owns the 256-entry opcode
// dispatch table and the sign-extension rules used throughout the toolchain.
//
// Instruction is a single tagged union (Kind selects which fields are
// meaningful) rather than the family-per-type hierarchy a dynamically typed
// implementation would use; operator and comparator families are further
// tagged by an inner enum (UnOp, BinOp) so that one Kind covers an entire
// opcode range instead of one Kind per opcode.
package codec

import "fmt"

// LabelID identifies a Label owned by the lang/asm package. Concrete,
// fixed-form instructions never carry a LabelID; only the variable-length
// placeholder Kinds (PushConstantV is the exception: it carries a Value, not
// a label) reference one, and they hold it by value so that codec itself
// never needs to import lang/asm.
type LabelID uint32

// Kind identifies an instruction family.
type Kind uint8

const (
	KindPushLocal Kind = iota
	KindPopLocal

	KindUnary
	KindBinary

	KindPushImmediate
	KindPushU8
	KindPushS8
	KindPush16
	KindPushConstantV // variable-length placeholder

	KindReturn
	KindReturn0
	KindDropValue
	KindCallAddress
	KindJumpToAddress

	KindJumpRel1
	KindJumpIfRel1
	KindJumpIfNotRel1
	KindJumpRel2
	KindJumpIfRel2
	KindJumpIfNotRel2
	KindCallRel1
	KindCallRel2

	KindJumpV // variable-length placeholder
	KindJumpIfV
	KindJumpIfNotV
	KindCallV

	KindCallUserFunction

	KindGlobalAccess

	KindBury
	KindDig
	KindPushZeros
	KindPopMany

	KindStackPointer
	KindStackFramePointer

	numKinds
)

var kindNames = [numKinds]string{
	KindPushLocal:          "push_local",
	KindPopLocal:           "pop_local",
	KindUnary:              "unary",
	KindBinary:             "binary",
	KindPushImmediate:      "push_immediate",
	KindPushU8:             "push_u8",
	KindPushS8:             "push_s8",
	KindPush16:             "push_16",
	KindPushConstantV:      "push_constant",
	KindReturn:             "return",
	KindReturn0:            "return0",
	KindDropValue:          "drop",
	KindCallAddress:        "call_address",
	KindJumpToAddress:      "jump_to_address",
	KindJumpRel1:           "jump_rel1",
	KindJumpIfRel1:         "jump_if_rel1",
	KindJumpIfNotRel1:      "jump_ifnot_rel1",
	KindJumpRel2:           "jump_rel2",
	KindJumpIfRel2:         "jump_if_rel2",
	KindJumpIfNotRel2:      "jump_ifnot_rel2",
	KindCallRel1:           "call_rel1",
	KindCallRel2:           "call_rel2",
	KindJumpV:              "jump",
	KindJumpIfV:            "jump_if",
	KindJumpIfNotV:         "jump_ifnot",
	KindCallV:              "call",
	KindCallUserFunction:   "call_user_function",
	KindGlobalAccess:       "global_access",
	KindBury:               "bury",
	KindDig:                "dig",
	KindPushZeros:          "push_zeros",
	KindPopMany:            "pop_many",
	KindStackPointer:       "stack_pointer",
	KindStackFramePointer:  "stack_frame_pointer",
}

func (k Kind) String() string {
	if k < numKinds {
		if name := kindNames[k]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal kind (%d)", uint8(k))
}

// UnOp identifies the unary operator family members.
type UnOp uint8

const (
	BitwiseNot UnOp = iota
	ArithmeticInvert
	LogicNot
)

var unOpNames = [...]string{BitwiseNot: "bitwise_not", ArithmeticInvert: "arithmetic_invert", LogicNot: "logic_not"}

func (o UnOp) String() string { return unOpNames[o] }

// BinOp identifies the binary operator family members: arithmetic/logic ops
// (Add..LOr) share an opcode range with the comparisons (CmpLT..CmpGT), but
// both pop two operands and push one, so they share one Kind.
type BinOp uint8

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	Shl
	Shr
	BAnd
	BOr
	BXor
	LAnd
	LOr

	CmpLT
	CmpLE
	CmpEQ
	CmpNE
	CmpGE
	CmpGT

	numBinOps
)

// arithmeticOps is the number of BinOp values encoded in the Add..LOr byte
// range; the remaining ones (the comparisons) are encoded in a disjoint
// range starting at 0xa8.
const arithmeticOps = int(CmpLT)

var binOpNames = [numBinOps]string{
	Add: "add", Sub: "sub", Mul: "mul", Div: "div", Mod: "mod",
	Shl: "shl", Shr: "shr", BAnd: "band", BOr: "bor", BXor: "bxor",
	LAnd: "land", LOr: "lor",
	CmpLT: "cmp_lt", CmpLE: "cmp_le", CmpEQ: "cmp_eq", CmpNE: "cmp_ne", CmpGE: "cmp_ge", CmpGT: "cmp_gt",
}

func (o BinOp) String() string { return binOpNames[o] }

// GlobalWidth is the width of a global memory cell.
type GlobalWidth uint8

const (
	WidthU8 GlobalWidth = iota
	WidthS8
	Width16
)

func (w GlobalWidth) String() string {
	switch w {
	case WidthU8:
		return "u8"
	case WidthS8:
		return "s8"
	case Width16:
		return "16"
	default:
		return fmt.Sprintf("illegal width (%d)", uint8(w))
	}
}

// Bytes returns the number of memory bytes a single value of this width
// occupies.
func (w GlobalWidth) Bytes() int {
	if w == Width16 {
		return 2
	}
	return 1
}

// Instruction is a tagged union: Kind says which of the fields below are
// meaningful. Zero-value fields for any other Kind are simply unused.
type Instruction struct {
	Kind Kind

	// PushLocal, PopLocal: signed frame-access offset (-32..31).
	SFA int8

	UnOp  UnOp
	BinOp BinOp

	// PushImmediate (-4..3), PushU8 (0..255), PushS8 (-128..127),
	// Push16 (-32768..65535), PushConstantV (any of the above, prebake
	// chooses the width), Bury/Dig (k, 0..5), PushZeros/PopMany (n, 0..7).
	Value int32

	// JumpRel1/2, JumpIfRel1/2, JumpIfNotRel1/2, CallRel1/2: signed
	// displacement from this instruction's own first byte.
	RelAddr int32

	// JumpV, JumpIfV, JumpIfNotV, CallV: symbolic target, resolved during
	// relaxation by the lang/asm package.
	Label LabelID

	// CallUserFunction: 4-bit function id (0..15).
	FuncID uint8

	// GlobalAccess.
	Store     bool
	Width     GlobalWidth
	NArgs     uint8 // number of address bytes: 0, 1 or 2
	PopOffset bool
	Address   uint32
}

// IsPlaceholder reports whether the instruction is a variable-length
// placeholder that relaxation must replace with a concrete, fixed-width
// form before it can be encoded.
func (ins Instruction) IsPlaceholder() bool {
	switch ins.Kind {
	case KindPushConstantV, KindJumpV, KindJumpIfV, KindJumpIfNotV, KindCallV:
		return true
	default:
		return false
	}
}

// Len returns the number of bytes this (non-placeholder) instruction encodes
// to, or -1 if ins is a placeholder (callers must prebake it first).
func (ins Instruction) Len() int {
	switch ins.Kind {
	case KindPushLocal, KindPopLocal, KindUnary, KindBinary,
		KindPushImmediate, KindReturn, KindReturn0, KindDropValue,
		KindCallAddress, KindJumpToAddress, KindCallUserFunction,
		KindBury, KindDig, KindPushZeros, KindPopMany,
		KindStackPointer, KindStackFramePointer:
		return 1
	case KindPushU8, KindPushS8, KindJumpRel1, KindJumpIfRel1, KindJumpIfNotRel1, KindCallRel1:
		return 2
	case KindPush16, KindJumpRel2, KindJumpIfRel2, KindJumpIfNotRel2, KindCallRel2:
		return 3
	case KindGlobalAccess:
		return 1 + int(ins.NArgs)
	case KindPushConstantV, KindJumpV, KindJumpIfV, KindJumpIfNotV, KindCallV:
		return -1
	default:
		return -1
	}
}
