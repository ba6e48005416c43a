package asm

import (
	"fmt"

	"github.com/mna/embedvm/lang/codec"
)

// worstCaseLen is the length, in bytes, every placeholder instruction
// could possibly need: one opcode byte plus a 2-byte operand. It seeds
// the first position pass before any placeholder has been sized.
const worstCaseLen = 3

// Relax assigns an absolute address to every item in b, starting at
// codeStart, and resolves every placeholder instruction to its narrowest
// concrete encoding. It runs the position/size computation three times
// (an initial worst-case pass, then two refinement passes): the first
// refinement lets a placeholder see the effect of every other
// placeholder's worst-case size shrinking; the second catches the corner
// case where that first shrink itself changes a relative displacement's
// own width. A third pass can never change anything further, since no
// displacement can grow once every candidate has already been measured at
// its narrowest on a prior pass.
func (b *FreeBlock) Relax(codeStart int) (*FixedBlock, error) {
	n := len(b.Items)
	lengths := make([]int, n)
	positions := make([]int, n)

	for i, it := range b.Items {
		switch {
		case it.IsLabel():
			lengths[i] = 0
		case it.Ins.IsPlaceholder():
			lengths[i] = worstCaseLen
		default:
			lengths[i] = it.Ins.Len()
		}
	}

	labelPos := make(map[codec.LabelID]int)
	updatePositions := func() {
		pos := codeStart
		for i := range b.Items {
			positions[i] = pos
			pos += lengths[i]
		}
		for k := range labelPos {
			delete(labelPos, k)
		}
		for i, it := range b.Items {
			if it.IsLabel() {
				labelPos[it.Label.ID] = positions[i]
			}
		}
	}
	updatePositions()

	for pass := 0; pass < 2; pass++ {
		for i := range b.Items {
			it := &b.Items[i]
			if it.IsLabel() || !it.Ins.IsPlaceholder() {
				continue
			}
			width, err := prebake(it.Ins, positions[i], labelPos)
			if err != nil {
				return nil, err
			}
			lengths[i] = width
		}
		updatePositions()
	}

	fixed := &FixedBlock{Start: codeStart, Code: make(map[int]codec.Instruction), Sym: make(map[string]int)}
	for i, it := range b.Items {
		if it.IsLabel() {
			if it.Label.Export != "" {
				fixed.Sym[it.Label.Export] = positions[i]
			}
			continue
		}
		ins := it.Ins
		if ins.IsPlaceholder() {
			concrete, err := concretize(ins, positions[i], labelPos, lengths[i])
			if err != nil {
				return nil, err
			}
			ins = concrete
		}
		if _, exists := fixed.Code[positions[i]]; exists {
			return nil, fmt.Errorf("asm: relax produced two instructions at offset %d", positions[i])
		}
		fixed.Code[positions[i]] = ins
	}
	return fixed, nil
}

// prebake returns the byte width (including the opcode byte) the
// placeholder at selfPos currently needs, given the label positions known
// so far.
func prebake(ins codec.Instruction, selfPos int, labelPos map[codec.LabelID]int) (int, error) {
	if ins.Kind == codec.KindPushConstantV {
		return pushConstantWidth(ins.Value)
	}
	target, ok := labelPos[ins.Label]
	if !ok {
		return 0, fmt.Errorf("asm: undefined label %d", ins.Label)
	}
	return branchWidth(int32(target - selfPos)), nil
}

func pushConstantWidth(value int32) (int, error) {
	switch {
	case value >= -4 && value < 4:
		return 1, nil
	case value >= -128 && value < 256:
		return 2, nil
	case value >= -0x8000 && value < 0x10000:
		return 3, nil
	default:
		return 0, fmt.Errorf("asm: constant %d overflows the widest push encoding", value)
	}
}

func branchWidth(reladdr int32) int {
	if reladdr >= -128 && reladdr < 128 {
		return 2
	}
	return 3
}

// placeholderPairs maps each jump/call placeholder Kind to its one-byte
// and two-byte displacement forms.
var placeholderPairs = map[codec.Kind][2]codec.Kind{
	codec.KindJumpV:      {codec.KindJumpRel1, codec.KindJumpRel2},
	codec.KindCallV:      {codec.KindCallRel1, codec.KindCallRel2},
	codec.KindJumpIfV:    {codec.KindJumpIfRel1, codec.KindJumpIfRel2},
	codec.KindJumpIfNotV: {codec.KindJumpIfNotRel1, codec.KindJumpIfNotRel2},
}

func concretize(ins codec.Instruction, selfPos int, labelPos map[codec.LabelID]int, width int) (codec.Instruction, error) {
	if ins.Kind == codec.KindPushConstantV {
		out := codec.Instruction{Value: ins.Value}
		switch width {
		case 1:
			out.Kind = codec.KindPushImmediate
		case 2:
			if ins.Value < 128 {
				out.Kind = codec.KindPushS8
			} else {
				out.Kind = codec.KindPushU8
			}
		case 3:
			out.Kind = codec.KindPush16
		default:
			return codec.Instruction{}, fmt.Errorf("asm: invalid push width %d", width)
		}
		return out, nil
	}

	pair, ok := placeholderPairs[ins.Kind]
	if !ok {
		return codec.Instruction{}, fmt.Errorf("asm: %s is not a placeholder instruction", ins.Kind)
	}
	target, ok := labelPos[ins.Label]
	if !ok {
		return codec.Instruction{}, fmt.Errorf("asm: undefined label %d", ins.Label)
	}
	reladdr := int32(target - selfPos)
	out := codec.Instruction{RelAddr: reladdr}
	if width == 2 {
		out.Kind = pair[0]
	} else {
		out.Kind = pair[1]
	}
	return out, nil
}
