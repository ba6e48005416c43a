// Package program assembles the blocks produced by lang/asm into a single
// linked binary image: it fixes every free block's addresses in one
// consistent address space, concatenates the result, and resolves the
// program's entry point.
package program

import (
	"fmt"
	"sort"

	"github.com/dolthub/swiss"

	"github.com/mna/embedvm/lang/asm"
	"github.com/mna/embedvm/lang/codec"
)

// Block is one of asm.FreeBlock, asm.FixedBlock or asm.DataBlock.
type Block interface {
	isProgramBlock()
}

type freeBlock struct{ *asm.FreeBlock }
type fixedBlock struct{ *asm.FixedBlock }
type dataBlock struct{ *asm.DataBlock }

func (freeBlock) isProgramBlock()  {}
func (fixedBlock) isProgramBlock() {}
func (dataBlock) isProgramBlock()  {}

// NewFreeBlock wraps a free block for inclusion in a Program.
func NewFreeBlock(b *asm.FreeBlock) Block { return freeBlock{b} }

// NewFixedBlock wraps an already-relaxed block for inclusion in a Program.
func NewFixedBlock(b *asm.FixedBlock) Block { return fixedBlock{b} }

// NewDataBlock wraps a literal data block for inclusion in a Program.
func NewDataBlock(b *asm.DataBlock) Block { return dataBlock{b} }

// Program is an ordered sequence of blocks sharing one address space: the
// offset each block starts at is the sum of the lengths of every block
// before it.
type Program struct {
	Blocks []Block
}

func blockLength(b Block) int {
	switch v := b.(type) {
	case freeBlock:
		panic("program: length of an unrelaxed free block is undefined")
	case fixedBlock:
		return v.Length()
	case dataBlock:
		return v.Length()
	default:
		panic(fmt.Sprintf("program: unknown block type %T", b))
	}
}

// FixAll relaxes every FreeBlock in the program in place, in order, each
// one starting at the address following the cumulative length of every
// block before it. It mirrors lang/asm.FreeBlock.Relax applied block by
// block rather than to the whole program at once: a label resolves only
// within its own block, so blocks whose labels must see each other have
// to be one block (lang/compiler puts every function into a single block,
// since calls cross function boundaries) before calling FixAll.
func (p *Program) FixAll() error {
	for i, b := range p.Blocks {
		fb, ok := b.(freeBlock)
		if !ok {
			continue
		}
		start := 0
		for _, prev := range p.Blocks[:i] {
			start += blockLength(prev)
		}
		fixed, err := fb.FreeBlock.Relax(start)
		if err != nil {
			return fmt.Errorf("program: relaxing block %d: %w", i, err)
		}
		p.Blocks[i] = fixedBlock{fixed}
	}
	return nil
}

// UnfixAll replaces every FixedBlock in the program with the free block
// Unfix produces, undoing FixAll so the program can be edited and
// re-relaxed.
func (p *Program) UnfixAll() error {
	for i, b := range p.Blocks {
		fb, ok := b.(fixedBlock)
		if !ok {
			continue
		}
		free, err := asm.Unfix(fb.FixedBlock)
		if err != nil {
			return fmt.Errorf("program: unfixing block %d: %w", i, err)
		}
		p.Blocks[i] = freeBlock{free}
	}
	return nil
}

// Length returns the total byte length of the program. Every block must
// already be fixed or data (call FixAll first).
func (p *Program) Length() int {
	total := 0
	for _, b := range p.Blocks {
		total += blockLength(b)
	}
	return total
}

// ToBinary serializes the whole program to a contiguous byte image,
// starting at absolute address startPos. Every FreeBlock must have been
// relaxed first (see FixAll); any gap between one block's end and the
// next's start, or within a fixed block between consecutive instructions,
// is filled with zero bytes.
func (p *Program) ToBinary(startPos int) ([]byte, error) {
	var out []byte
	pos := startPos
	emit := func(upto int) {
		for pos < upto {
			out = append(out, 0)
			pos++
		}
	}
	for i, b := range p.Blocks {
		switch v := b.(type) {
		case fixedBlock:
			positions := make([]int, 0, len(v.Code))
			for at := range v.Code {
				positions = append(positions, at)
			}
			sort.Ints(positions)
			for _, at := range positions {
				emit(at)
				enc, err := codec.Encode(v.Code[at])
				if err != nil {
					return nil, fmt.Errorf("program: encoding block %d offset %d: %w", i, at, err)
				}
				out = append(out, enc...)
				pos += len(enc)
			}
		case dataBlock:
			emit(pos)
			out = append(out, v.Data...)
			pos += len(v.Data)
		case freeBlock:
			return nil, fmt.Errorf("program: block %d was never relaxed", i)
		}
	}
	return out, nil
}

// Symbols returns every exported label across every fixed block, mapped
// to its absolute address. EntryPoint uses this to resolve "main". The
// merge itself goes through a swiss.Map, which is then copied into the
// returned plain Go map; the table is built anew on every call.
func (p *Program) Symbols() map[string]int {
	merged := swiss.NewMap[string, int](8)
	for _, b := range p.Blocks {
		if fb, ok := b.(fixedBlock); ok {
			for name, pos := range fb.Sym {
				merged.Put(name, pos)
			}
		}
	}
	syms := make(map[string]int, merged.Count())
	merged.Iter(func(name string, pos int) bool {
		syms[name] = pos
		return false
	})
	return syms
}

// EntryPoint resolves the program's entry address: the "main" export if
// one exists, otherwise address 0.
func (p *Program) EntryPoint() int {
	if pos, ok := p.Symbols()["main"]; ok {
		return pos
	}
	return 0
}
