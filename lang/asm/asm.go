// Package asm implements the assembler layer: free blocks of instructions
// carrying unresolved labels and variable-length placeholders, the
// relaxation pass that turns a free block into a fixed block of concrete,
// address-assigned instructions, and the inverse pass that turns a fixed
// block back into a free one.
package asm

import "github.com/mna/embedvm/lang/codec"

// Label marks a position in a FreeBlock's instruction stream. It carries no
// position itself; its address is only known once the enclosing block is
// relaxed. Export, when non-empty, names a symbol other code (and other
// blocks, once relaxed) can look up by name.
type Label struct {
	ID     codec.LabelID
	Descr  string
	Export string
}

// Item is one entry of a FreeBlock: either a label marker or an
// instruction. Exactly one of the two fields is meaningful, selected by
// IsLabel.
type Item struct {
	Label *Label
	Ins   codec.Instruction
}

// IsLabel reports whether it is a label marker rather than an instruction.
func (it Item) IsLabel() bool { return it.Label != nil }

// FreeBlock is an open sequence of instructions and labels, as produced by
// a code generator. Placeholder instructions (codec.Instruction.IsPlaceholder)
// reference their target via a Label.ID rather than a computed address;
// Relax resolves them.
type FreeBlock struct {
	Items []Item
}

// Append adds an instruction to the block.
func (b *FreeBlock) Append(ins codec.Instruction) {
	b.Items = append(b.Items, Item{Ins: ins})
}

// AppendLabel adds a label marker to the block.
func (b *FreeBlock) AppendLabel(l *Label) {
	b.Items = append(b.Items, Item{Label: l})
}

// Extend appends another block's items in order, for merging independently
// generated blocks (e.g. one per function) into a single unit before
// relaxation, since label references only resolve within their own block.
func (b *FreeBlock) Extend(other *FreeBlock) {
	b.Items = append(b.Items, other.Items...)
}

// FixedBlock is the result of relaxing a FreeBlock: every instruction has a
// concrete encoding and a definite absolute position, and every exported
// label has a resolved address.
type FixedBlock struct {
	Start int
	Code  map[int]codec.Instruction
	Sym   map[string]int
}

// Length returns the number of bytes this block occupies, computed from
// its highest-addressed instruction.
func (b *FixedBlock) Length() int {
	if len(b.Code) == 0 {
		return 0
	}
	maxPos := b.Start
	for pos := range b.Code {
		if pos > maxPos {
			maxPos = pos
		}
	}
	return maxPos + b.Code[maxPos].Len() - b.Start
}

// DataBlock is a literal run of bytes, used for disassembled regions that
// no entry point's walk claimed, or for explicit global-data segments.
type DataBlock struct {
	Data []byte
}

// Length returns the number of bytes in the block.
func (b *DataBlock) Length() int { return len(b.Data) }
