package asm

import (
	"fmt"
	"sort"

	"github.com/mna/embedvm/lang/codec"
)

// labelAllocator hands out fresh LabelIDs, avoiding any already in use by
// the block being unfixed.
type labelAllocator struct {
	next codec.LabelID
}

func (a *labelAllocator) alloc() codec.LabelID {
	a.next++
	return a.next
}

// Unfix reverses Relax: it rebuilds a FreeBlock whose placeholder
// instructions reference labels by ID instead of baked-in relative
// displacements, synthesizing a label at every position a branch in b
// targets and at every exported symbol. It is the basis for round-trip
// testing relaxation (Relax(Unfix(x)) reproduces x byte for byte) and for
// disassembling a binary back into an editable, re-relaxable form.
func Unfix(b *FixedBlock) (*FreeBlock, error) {
	positions := make([]int, 0, len(b.Code))
	for pos := range b.Code {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	alloc := &labelAllocator{}
	labelAt := make(map[int]*Label)
	exportAt := make(map[int]string)
	for name, pos := range b.Sym {
		exportAt[pos] = name
	}

	generalized := make(map[int]codec.Instruction, len(positions))
	for _, pos := range positions {
		ins := b.Code[pos]
		g, targetPos, hasTarget := generalize(ins, pos)
		if hasTarget {
			if _, ok := labelAt[targetPos]; !ok {
				labelAt[targetPos] = &Label{ID: alloc.alloc()}
			}
			g.Label = labelAt[targetPos].ID
		}
		generalized[pos] = g
	}
	for pos, name := range exportAt {
		if _, ok := labelAt[pos]; !ok {
			labelAt[pos] = &Label{ID: alloc.alloc()}
		}
		labelAt[pos].Export = name
	}

	out := &FreeBlock{}
	for _, pos := range positions {
		if l, ok := labelAt[pos]; ok {
			out.AppendLabel(l)
			delete(labelAt, pos)
		}
		out.Append(generalized[pos])
	}
	if len(labelAt) > 0 {
		return nil, fmt.Errorf("asm: %d label(s) target a position with no instruction", len(labelAt))
	}
	return out, nil
}

// generalize returns the placeholder form of ins (if any — most
// instructions have no more general form and are returned unchanged), plus
// the absolute position it targets when it is a relative branch.
func generalize(ins codec.Instruction, selfPos int) (g codec.Instruction, targetPos int, hasTarget bool) {
	switch ins.Kind {
	case codec.KindPushImmediate, codec.KindPushU8, codec.KindPushS8, codec.KindPush16:
		return codec.Instruction{Kind: codec.KindPushConstantV, Value: ins.Value}, 0, false

	case codec.KindJumpRel1, codec.KindJumpRel2:
		return codec.Instruction{Kind: codec.KindJumpV}, selfPos + int(ins.RelAddr), true
	case codec.KindCallRel1, codec.KindCallRel2:
		return codec.Instruction{Kind: codec.KindCallV}, selfPos + int(ins.RelAddr), true
	case codec.KindJumpIfRel1, codec.KindJumpIfRel2:
		return codec.Instruction{Kind: codec.KindJumpIfV}, selfPos + int(ins.RelAddr), true
	case codec.KindJumpIfNotRel1, codec.KindJumpIfNotRel2:
		return codec.Instruction{Kind: codec.KindJumpIfNotV}, selfPos + int(ins.RelAddr), true

	default:
		return ins, 0, false
	}
}
