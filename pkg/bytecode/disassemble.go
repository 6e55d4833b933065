package bytecode

import (
	"fmt"
	"io"
)

// Disassemble writes a human-readable rendering of every instruction in
// chunk to w, in the spirit of a prior bytecode format's
// disassembler — this is the in-scope half of that file; the persisted
// `.sg` binary format it also implemented is out of scope per spec §6
// ("there is no persisted bytecode format... out of scope for
// reimplementation") and is not carried forward (see DESIGN.md).
func Disassemble(chunk *Chunk, name string, w io.Writer) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		offset = DisassembleInstruction(chunk, w, offset)
	}
}

// DisassembleInstruction writes one instruction starting at offset and
// returns the offset of the next instruction.
func DisassembleInstruction(chunk *Chunk, w io.Writer, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && chunk.LineAt(offset) == chunk.LineAt(offset-1) {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", chunk.LineAt(offset))
	}

	op := Opcode(chunk.Code[offset])
	switch op {
	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpCall, OpArray, OpObject:
		return byteInstruction(w, op, chunk, offset)
	case OpSetLocalTyped:
		slot := chunk.Code[offset+1]
		typeByte := chunk.Code[offset+2]
		fmt.Fprintf(w, "%-20s %4d (type %d)\n", op, slot, typeByte)
		return offset + 3
	case OpConstant, OpGetGlobal, OpSetGlobal, OpDefineGlobal, OpGetProperty,
		OpSetProperty, OpClosure, OpClass, OpMethod, OpGetSuper, OpUse, OpUsing:
		return constantInstruction(w, op, chunk, offset)
	case OpDefineTypedGlobal, OpSetGlobalTyped:
		return typedGlobalInstruction(w, op, chunk, offset)
	case OpJump, OpJumpIfFalse, OpLoop:
		return jumpInstruction(w, op, chunk, offset)
	case OpTry:
		return tryInstruction(w, chunk, offset)
	default:
		fmt.Fprintf(w, "%s\n", op)
		return offset + 1
	}
}

func byteInstruction(w io.Writer, op Opcode, chunk *Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-20s %4d\n", op, slot)
	return offset + 2
}

func constantInstruction(w io.Writer, op Opcode, chunk *Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	var rendered string
	if int(idx) < len(chunk.Constants) {
		rendered = chunk.Constants[idx].ToString()
	}
	fmt.Fprintf(w, "%-20s %4d '%s'\n", op, idx, rendered)
	return offset + 2
}

func typedGlobalInstruction(w io.Writer, op Opcode, chunk *Chunk, offset int) int {
	nameIdx := chunk.Code[offset+1]
	typeIdx := chunk.Code[offset+2]
	var rendered string
	if int(nameIdx) < len(chunk.Constants) {
		rendered = chunk.Constants[nameIdx].ToString()
	}
	fmt.Fprintf(w, "%-20s %4d '%s' (type %d)\n", op, nameIdx, rendered, typeIdx)
	return offset + 3
}

func jumpInstruction(w io.Writer, op Opcode, chunk *Chunk, offset int) int {
	target := chunk.ReadU16(offset + 1)
	fmt.Fprintf(w, "%-20s %4d -> %d\n", op, offset, target)
	return offset + 3
}

func tryInstruction(w io.Writer, chunk *Chunk, offset int) int {
	tryEnd := chunk.ReadU16(offset + 1)
	catchStart := chunk.ReadU16(offset + 3)
	finallyStart := chunk.ReadU16(offset + 5)
	fmt.Fprintf(w, "%-20s end=%d catch=%d finally=%d\n", OpTry, tryEnd, catchStart, finallyStart)
	return offset + 7
}
