package maincmd

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/exp/slices"

	"github.com/mna/mainer"

	"github.com/mna/embedvm/lang/codec"
)

// Disasm implements the "disasm" command: decode each file's bytes as an
// EmbedVM binary image, walking from address 0, and print one line per
// decoded instruction.
func (c *Cmd) Disasm(_ context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, path := range args {
		if err := disasmFile(stdio, path); err != nil {
			printError(stdio, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func disasmFile(stdio mainer.Stdio, path string) error {
	bin, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	claimed, err := codec.Walk(bin, []int{0})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	offsets := make([]int, 0, len(claimed.Insns))
	for off := range claimed.Insns {
		offsets = append(offsets, off)
	}
	slices.Sort(offsets)

	for _, off := range offsets {
		fmt.Fprintf(stdio.Stdout, "%-30s# %04x\n", formatInstruction(claimed.Insns[off]), off)
	}
	return nil
}

// formatInstruction renders ins as "family(field=value, ...)", the textual
// form described by the Program Model's asm/disasm round-trip: one
// instruction per line, each a family name plus whichever fields that
// family actually populates.
func formatInstruction(ins codec.Instruction) string {
	switch ins.Kind {
	case codec.KindPushLocal, codec.KindPopLocal:
		return fmt.Sprintf("%s(sfa=%d)", ins.Kind, ins.SFA)
	case codec.KindUnary:
		return fmt.Sprintf("%s(op=%s)", ins.Kind, ins.UnOp)
	case codec.KindBinary:
		return fmt.Sprintf("%s(op=%s)", ins.Kind, ins.BinOp)
	case codec.KindPushImmediate, codec.KindPushU8, codec.KindPushS8, codec.KindPush16:
		return fmt.Sprintf("%s(value=%d)", ins.Kind, ins.Value)
	case codec.KindBury, codec.KindDig, codec.KindPushZeros, codec.KindPopMany:
		return fmt.Sprintf("%s(n=%d)", ins.Kind, ins.Value)
	case codec.KindJumpRel1, codec.KindJumpRel2, codec.KindJumpIfRel1, codec.KindJumpIfRel2,
		codec.KindJumpIfNotRel1, codec.KindJumpIfNotRel2, codec.KindCallRel1, codec.KindCallRel2:
		return fmt.Sprintf("%s(reladdr=%+d)", ins.Kind, ins.RelAddr)
	case codec.KindCallUserFunction:
		return fmt.Sprintf("%s(funcid=%d)", ins.Kind, ins.FuncID)
	case codec.KindGlobalAccess:
		return fmt.Sprintf("%s(store=%v, width=%s, address=%d, popoffset=%v)",
			ins.Kind, ins.Store, ins.Width, ins.Address, ins.PopOffset)
	default:
		return fmt.Sprintf("%s()", ins.Kind)
	}
}
