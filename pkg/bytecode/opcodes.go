// Package bytecode defines Neutron's bytecode format: a linear
// instruction byte-stream, a parallel source-line table, and a
// one-byte-indexed constant pool (spec §3.4).
//
// This supersedes an earlier []Instruction slice-of-structs encoding
// with a true byte-stream, the representation spec §3.4 and §4.1 assume: jumps patch a 16-bit
// big-endian offset directly into the stream, and opcodes are decoded one
// byte at a time the way the VM's line-table lookup (one entry per byte)
// requires.
package bytecode

// Opcode is a single bytecode instruction's operation.
type Opcode byte

const (
	// Stack
	OpConstant Opcode = iota // operand: u8 constant pool index
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpDup

	// Locals / globals
	OpGetLocal    // operand: u8 slot
	OpSetLocal    // operand: u8 slot
	OpGetUpvalue  // operand: u8 index into the running closure's captured values
	OpSetUpvalue  // operand: u8 index into the running closure's captured values
	OpGetGlobal // operand: u8 constant index (name)
	OpSetGlobal
	OpDefineGlobal
	OpDefineTypedGlobal // operand: u8 constant index (name), u8 type tag index
	OpSetGlobalTyped
	OpSetLocalTyped // operand: u8 slot, u8 type tag index

	// Properties / indices
	OpGetProperty // operand: u8 constant index (name)
	OpSetProperty
	OpIndexGet
	OpIndexSet

	// Arithmetic / logical
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpNegate
	OpNot
	OpEqual
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShiftLeft
	OpShiftRight

	// Control flow
	OpJump         // operand: u16 absolute target
	OpJumpIfFalse  // operand: u16 absolute target; peeks condition, does not pop
	OpLoop         // operand: u16 backward target
	OpCall         // operand: u8 arg count
	OpReturn

	// Closures / objects
	OpClosure // operand: u8 constant index (Function)
	OpArray   // operand: u8 element count
	OpObject  // operand: u8 pair count
	OpThis

	// Exceptions
	OpTry     // operand: u16 tryEnd, u16 catchStart, u16 finallyStart
	OpEndTry
	OpThrow
	OpRetry // jump back to the active exception frame's tryStart

	// Classes
	OpClass       // operand: u8 constant index (name)
	OpInherit     // pops super (top) then subclass; sets subclass.Super; pushes subclass
	OpMethod      // operand: u8 constant index (name); pops Function, attaches to class now on top
	OpGetSuper    // operand: u8 constant index (method name); pops superclass (top) then instance; pushes BoundMethod

	// Modules
	OpUse   // operand: u8 constant index (module name); binds a global
	OpUsing // operand: u8 constant index (file path); evaluates into current globals

	opCount
)

// SentinelOffset marks an absent catch/finally target in an OpTry
// instruction's operands (spec §3.6).
const SentinelOffset = 0xFFFF

var opNames = [opCount]string{
	OpConstant:          "CONSTANT",
	OpNil:                "NIL",
	OpTrue:               "TRUE",
	OpFalse:              "FALSE",
	OpPop:                "POP",
	OpDup:                "DUP",
	OpGetLocal:           "GET_LOCAL",
	OpSetLocal:           "SET_LOCAL",
	OpGetUpvalue:         "GET_UPVALUE",
	OpSetUpvalue:         "SET_UPVALUE",
	OpGetGlobal:          "GET_GLOBAL",
	OpSetGlobal:          "SET_GLOBAL",
	OpDefineGlobal:       "DEFINE_GLOBAL",
	OpDefineTypedGlobal:  "DEFINE_TYPED_GLOBAL",
	OpSetGlobalTyped:     "SET_GLOBAL_TYPED",
	OpSetLocalTyped:      "SET_LOCAL_TYPED",
	OpGetProperty:        "GET_PROPERTY",
	OpSetProperty:        "SET_PROPERTY",
	OpIndexGet:           "INDEX_GET",
	OpIndexSet:           "INDEX_SET",
	OpAdd:                "ADD",
	OpSubtract:           "SUBTRACT",
	OpMultiply:           "MULTIPLY",
	OpDivide:             "DIVIDE",
	OpModulo:             "MODULO",
	OpNegate:             "NEGATE",
	OpNot:                "NOT",
	OpEqual:              "EQUAL",
	OpNotEqual:           "NOT_EQUAL",
	OpGreater:            "GREATER",
	OpLess:               "LESS",
	OpGreaterEqual:       "GREATER_EQUAL",
	OpLessEqual:          "LESS_EQUAL",
	OpBitAnd:             "BITAND",
	OpBitOr:              "BITOR",
	OpBitXor:             "BITXOR",
	OpShiftLeft:          "SHL",
	OpShiftRight:         "SHR",
	OpJump:               "JUMP",
	OpJumpIfFalse:        "JUMP_IF_FALSE",
	OpLoop:               "LOOP",
	OpCall:               "CALL",
	OpReturn:             "RETURN",
	OpClosure:            "CLOSURE",
	OpArray:              "ARRAY",
	OpObject:             "OBJECT",
	OpThis:                "THIS",
	OpTry:                "OP_TRY",
	OpEndTry:             "END_TRY",
	OpThrow:              "THROW",
	OpRetry:              "RETRY",
	OpClass:              "CLASS",
	OpInherit:            "INHERIT",
	OpMethod:             "METHOD",
	OpGetSuper:           "GET_SUPER",
	OpUse:                "USE",
	OpUsing:              "USING",
}

func (op Opcode) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "UNKNOWN"
}
