package bytecode

import (
	"encoding/binary"

	"github.com/yasakei/neutron/pkg/value"
)

// Chunk is a compiled program or function body (spec §3.4): a byte
// vector of instructions, a parallel per-byte line-number table for error
// reporting, and a constant pool indexed by a single byte.
//
// A one-byte constant index caps a single Chunk at 256 constants. The
// teacher's format.go documents the same 256-entry constant-pool
// constraint; Neutron inherits it rather than widening the index, since
// nothing in spec §3.4 asks for more and it keeps CONSTANT a two-byte
// instruction.
type Chunk struct {
	Code      []byte
	Lines     []int // one entry per byte in Code
	Constants []value.Value
}

// NewChunk returns an empty chunk.
func NewChunk() *Chunk {
	return &Chunk{}
}

// WriteByte appends a raw byte at the given source line.
func (c *Chunk) WriteByte(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op Opcode, line int) {
	c.WriteByte(byte(op), line)
}

// WriteU16 appends a 16-bit big-endian operand (spec §3.4: "jumps and
// loops use 16-bit big-endian offsets").
func (c *Chunk) WriteU16(v uint16, line int) {
	c.WriteByte(byte(v>>8), line)
	c.WriteByte(byte(v), line)
}

// ReadU16 decodes the big-endian 16-bit value at offset.
func (c *Chunk) ReadU16(offset int) uint16 {
	return binary.BigEndian.Uint16(c.Code[offset : offset+2])
}

// PatchU16 overwrites the 16-bit operand at offset — used by the
// compiler's jump-backpatching (spec §4.1).
func (c *Chunk) PatchU16(offset int, v uint16) {
	binary.BigEndian.PutUint16(c.Code[offset:offset+2], v)
}

// AddConstant appends v to the constant pool and returns its index.
// Panics if the pool would exceed 256 entries — the compiler does not
// check the pool size first, so a function needing more than 256
// constants panics here; Chunk itself enforces the one-byte index invariant.
func (c *Chunk) AddConstant(v value.Value) int {
	if len(c.Constants) >= 256 {
		panic("bytecode: constant pool overflow (max 256 per chunk)")
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// LineAt returns the source line recorded for instruction byte offset.
func (c *Chunk) LineAt(offset int) int {
	if offset < 0 || offset >= len(c.Lines) {
		return 0
	}
	return c.Lines[offset]
}
