package codec

import "fmt"

// UnknownCommandError is returned by Decode when no instruction family
// matches the byte at the requested offset.
type UnknownCommandError struct {
	Byte byte
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: byte 0x%02x does not match any instruction family", e.Byte)
}

// RangeError is returned by Encode or by a placeholder's prebake step when a
// field's value does not fit the range its mask allows.
type RangeError struct {
	Field string
	Value int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range error: field %s value %d is out of range", e.Field, e.Value)
}

// TruncatedError is returned by Decode when the byte at the requested
// offset begins a recognized instruction family, but the buffer ends
// before that family's operand bytes do. A caller walking a byte image
// (the disassembler in particular) treats this the same as any other
// decode failure: the current walk stops, others continue.
type TruncatedError struct {
	Offset int
	Need   int
	Have   int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated instruction: offset %d needs %d bytes, only %d available", e.Offset, e.Need, e.Have)
}

// MultipleMatchError signals a codec-table bug: more than one instruction
// family claimed the same byte. It should never occur with the shipped
// dispatch table; it exists so a broken table fails loudly instead of
// silently picking the first match.
type MultipleMatchError struct {
	Byte byte
}

func (e *MultipleMatchError) Error() string {
	return fmt.Sprintf("multiple match: byte 0x%02x matches more than one instruction family", e.Byte)
}
