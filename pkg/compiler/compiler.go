// Package compiler implements Neutron's single-pass compiler (spec §4.1):
// it walks the pkg/ast tree once and emits pkg/bytecode directly, with no
// separate intermediate representation — mirroring an earlier
// single-pass compiler shape, generalized from a flat
// instruction slice to a byte-stream Chunk with real scoping, jumps,
// classes, and exception frames.
package compiler

import (
	"fmt"

	"github.com/yasakei/neutron/pkg/ast"
	"github.com/yasakei/neutron/pkg/bytecode"
	"github.com/yasakei/neutron/pkg/value"
)

type local struct {
	name  string
	depth int
}

type upvalueSlot struct {
	index     int
	fromLocal bool
}

type loopContext struct {
	breakJumps     []int
	continueTarget int
	// continueJumps collects forward jumps emitted by `continue` inside a
	// for-loop, which must land on the increment clause rather than the
	// loop test (patched once the increment has been compiled), or inside
	// a do-while, where they land on the condition test after the body.
	continueJumps []int
	isFor         bool
}

type classContext struct {
	enclosing *classContext
	hasSuper  bool
}

// funcState is the compiler's per-function activation: its own Chunk,
// local-variable table, and scope depth. Nesting funcState values (via
// enclosing) is what lets nested `fun`/lambda literals resolve names in
// an enclosing function as upvalues instead of globals.
type funcState struct {
	enclosing *funcState
	fn        *value.Function
	chunk     *bytecode.Chunk
	locals    []local
	upvalues  []upvalueSlot
	scopeDepth int
	loops     []*loopContext
}

// Compiler compiles one pkg/ast.Program (or nested function literal) into
// pkg/bytecode, tracking lexical scope, loop break/continue targets, class
// bodies (for `this`/`super` resolution), and `safe{}` nesting.
type Compiler struct {
	fs        *funcState
	class     *classContext
	safeDepth int
	errors    []string
}

// New returns a Compiler ready to compile a top-level script.
func New() *Compiler {
	c := &Compiler{}
	c.fs = &funcState{
		fn:    &value.Function{Name: "", Arity: 0},
		chunk: bytecode.NewChunk(),
	}
	// Slot 0 of every function's locals is reserved (the receiver for
	// methods, an unused sentinel for plain functions/scripts) the same
	// way an earlier design reserves symbol slot 0 for `self`.
	c.fs.locals = append(c.fs.locals, local{name: "", depth: 0})
	return c
}

// Compile compiles program into the top-level script Function.
func Compile(program *ast.Program) (*value.Function, error) {
	c := New()
	for _, stmt := range program.Statements {
		c.compileStatement(stmt)
	}
	c.emitOp(bytecode.OpNil, 0)
	c.emitOp(bytecode.OpReturn, 0)
	c.fs.fn.Chunk = c.fs.chunk
	if len(c.errors) > 0 {
		return nil, fmt.Errorf("compile errors: %v", c.errors)
	}
	return c.fs.fn, nil
}

func (c *Compiler) errorf(format string, args ...interface{}) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

func (c *Compiler) chunk() *bytecode.Chunk { return c.fs.chunk }

func (c *Compiler) emitOp(op bytecode.Opcode, line int) {
	c.chunk().WriteOp(op, line)
}

func (c *Compiler) emitByte(b byte, line int) {
	c.chunk().WriteByte(b, line)
}

func (c *Compiler) emitOpByte(op bytecode.Opcode, b byte, line int) {
	c.emitOp(op, line)
	c.emitByte(b, line)
}

func (c *Compiler) emitConstant(v value.Value) byte {
	return byte(c.chunk().AddConstant(v))
}

func (c *Compiler) identifierConstant(name string) byte {
	return c.emitConstant(value.FromObject(value.NewDataString(name)))
}

// emitJump writes op followed by a placeholder 16-bit offset and returns
// the offset of that operand, to be patched once the target is known.
func (c *Compiler) emitJump(op bytecode.Opcode, line int) int {
	c.emitOp(op, line)
	pos := len(c.chunk().Code)
	c.chunk().WriteU16(bytecode.SentinelOffset, line)
	return pos
}

func (c *Compiler) patchJump(pos int) {
	target := uint16(len(c.chunk().Code))
	c.chunk().PatchU16(pos, target)
}

func (c *Compiler) emitLoop(loopStart int, line int) {
	c.emitOp(bytecode.OpLoop, line)
	c.chunk().WriteU16(uint16(loopStart), line)
}

// --- scope management ---

func (c *Compiler) beginScope() { c.fs.scopeDepth++ }

func (c *Compiler) endScope() {
	c.fs.scopeDepth--
	for len(c.fs.locals) > 0 && c.fs.locals[len(c.fs.locals)-1].depth > c.fs.scopeDepth {
		c.emitOp(bytecode.OpPop, 0)
		c.fs.locals = c.fs.locals[:len(c.fs.locals)-1]
	}
}

func (c *Compiler) addLocal(name string) {
	c.fs.locals = append(c.fs.locals, local{name: name, depth: c.fs.scopeDepth})
}

func (c *Compiler) resolveLocal(fs *funcState, name string) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			return i
		}
	}
	return -1
}

func (c *Compiler) addUpvalue(fs *funcState, index int, fromLocal bool) int {
	for i, uv := range fs.upvalues {
		if uv.index == index && uv.fromLocal == fromLocal {
			return i
		}
	}
	fs.upvalues = append(fs.upvalues, upvalueSlot{index: index, fromLocal: fromLocal})
	return len(fs.upvalues) - 1
}

func (c *Compiler) resolveUpvalue(fs *funcState, name string) int {
	if fs.enclosing == nil {
		return -1
	}
	if slot := c.resolveLocal(fs.enclosing, name); slot != -1 {
		return c.addUpvalue(fs, slot, true)
	}
	if idx := c.resolveUpvalue(fs.enclosing, name); idx != -1 {
		return c.addUpvalue(fs, idx, false)
	}
	return -1
}

// declareAndDefineVariable, at global scope, emits a (typed) global
// definition that pops the value already on the stack; at local scope, it
// records the stack slot that already holds the value as a new local
// (Neutron's locals live directly in the VM's value stack, spec §4.1).
func (c *Compiler) declareAndDefineVariable(name string, typeName string, line int) {
	tag := value.TypeTagFromName(typeName)
	if c.fs.scopeDepth > 0 {
		c.addLocal(name)
		return
	}
	nameIdx := c.identifierConstant(name)
	if typeName != "" {
		c.emitOp(bytecode.OpDefineTypedGlobal, line)
		c.emitByte(nameIdx, line)
		c.emitByte(tag.Byte(), line)
	} else {
		c.emitOpByte(bytecode.OpDefineGlobal, nameIdx, line)
	}
}

func (c *Compiler) emitGetVariable(name string, line int) {
	if slot := c.resolveLocal(c.fs, name); slot != -1 {
		c.emitOpByte(bytecode.OpGetLocal, byte(slot), line)
		return
	}
	if idx := c.resolveUpvalue(c.fs, name); idx != -1 {
		c.emitOpByte(bytecode.OpGetUpvalue, byte(idx), line)
		return
	}
	c.emitOpByte(bytecode.OpGetGlobal, c.identifierConstant(name), line)
}

func (c *Compiler) emitSetVariable(name string, typeName string, line int) {
	if slot := c.resolveLocal(c.fs, name); slot != -1 {
		if typeName != "" {
			c.emitOp(bytecode.OpSetLocalTyped, line)
			c.emitByte(byte(slot), line)
			c.emitByte(value.TypeTagFromName(typeName).Byte(), line)
		} else {
			c.emitOpByte(bytecode.OpSetLocal, byte(slot), line)
		}
		return
	}
	if idx := c.resolveUpvalue(c.fs, name); idx != -1 {
		c.emitOpByte(bytecode.OpSetUpvalue, byte(idx), line)
		return
	}
	nameIdx := c.identifierConstant(name)
	if typeName != "" {
		c.emitOp(bytecode.OpSetGlobalTyped, line)
		c.emitByte(nameIdx, line)
		c.emitByte(value.TypeTagFromName(typeName).Byte(), line)
	} else {
		c.emitOpByte(bytecode.OpSetGlobal, nameIdx, line)
	}
}

// --- statements ---

func (c *Compiler) compileStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		c.compileExpression(s.Expr)
		c.emitOp(bytecode.OpPop, 0)
	case *ast.SayStatement:
		// say(expr) compiles to a call of the global `say` native (installed
		// by the runtime's builtin prelude) rather than a dedicated opcode —
		// keeps "printing" an ordinary call, as spec §4.7's stdout-writer
		// built-in expects.
		c.emitOpByte(bytecode.OpGetGlobal, c.identifierConstant("say"), 0)
		c.compileExpression(s.Value)
		c.emitOpByte(bytecode.OpCall, 1, 0)
		c.emitOp(bytecode.OpPop, 0)
	case *ast.VarStatement:
		c.compileVarStatement(s)
	case *ast.Block:
		c.beginScope()
		for _, st := range s.Statements {
			c.compileStatement(st)
		}
		c.endScope()
	case *ast.IfStatement:
		c.compileIf(s)
	case *ast.WhileStatement:
		c.compileWhile(s)
	case *ast.DoWhileStatement:
		c.compileDoWhile(s)
	case *ast.ForStatement:
		c.compileFor(s)
	case *ast.UseStatement:
		nameIdx := c.identifierConstant(s.Name)
		c.emitOpByte(bytecode.OpUse, nameIdx, 0)
	case *ast.UsingStatement:
		pathIdx := c.emitConstant(value.FromObject(value.NewDataString(s.Path)))
		c.emitOpByte(bytecode.OpUsing, pathIdx, 0)
	case *ast.FunStatement:
		c.compileFunDeclaration(s)
	case *ast.ReturnStatement:
		if s.Value == nil {
			c.emitOp(bytecode.OpNil, 0)
		} else {
			c.compileExpression(s.Value)
		}
		c.emitOp(bytecode.OpReturn, 0)
	case *ast.ClassStatement:
		c.compileClass(s)
	case *ast.BreakStatement:
		c.compileBreak()
	case *ast.ContinueStatement:
		c.compileContinue()
	case *ast.MatchStatement:
		c.compileMatch(s)
	case *ast.TryStatement:
		c.compileTry(s)
	case *ast.ThrowStatement:
		c.compileExpression(s.Value)
		c.emitOp(bytecode.OpThrow, 0)
	case *ast.RetryStatement:
		c.emitOp(bytecode.OpRetry, 0)
	case *ast.SafeStatement:
		c.safeDepth++
		c.compileStatement(s.Body)
		c.safeDepth--
	default:
		c.errorf("unknown statement type %T", stmt)
	}
}

func (c *Compiler) compileVarStatement(s *ast.VarStatement) {
	if c.safeDepth > 0 && s.Type == "" {
		c.errorf("safe block requires a type annotation for 'var %s'", s.Name.Literal)
	}
	if s.Init != nil {
		c.compileExpression(s.Init)
	} else {
		c.emitOp(bytecode.OpNil, s.Name.Line)
	}
	c.declareAndDefineVariable(s.Name.Literal, s.Type, s.Name.Line)
}

func (c *Compiler) compileIf(s *ast.IfStatement) {
	var endJumps []int
	for i, cond := range s.Conditions {
		c.compileExpression(cond)
		elseJump := c.emitJump(bytecode.OpJumpIfFalse, 0)
		c.emitOp(bytecode.OpPop, 0)
		c.compileStatement(s.Branches[i])
		endJumps = append(endJumps, c.emitJump(bytecode.OpJump, 0))
		c.patchJump(elseJump)
		c.emitOp(bytecode.OpPop, 0)
	}
	if s.Else != nil {
		c.compileStatement(s.Else)
	}
	for _, j := range endJumps {
		c.patchJump(j)
	}
}

func (c *Compiler) compileWhile(s *ast.WhileStatement) {
	loopStart := len(c.chunk().Code)
	lc := &loopContext{continueTarget: loopStart}
	c.fs.loops = append(c.fs.loops, lc)

	c.compileExpression(s.Condition)
	exitJump := c.emitJump(bytecode.OpJumpIfFalse, 0)
	c.emitOp(bytecode.OpPop, 0)
	c.compileStatement(s.Body)
	c.emitLoop(loopStart, 0)
	c.patchJump(exitJump)
	c.emitOp(bytecode.OpPop, 0)

	for _, j := range lc.breakJumps {
		c.patchJump(j)
	}
	c.fs.loops = c.fs.loops[:len(c.fs.loops)-1]
}

func (c *Compiler) compileDoWhile(s *ast.DoWhileStatement) {
	loopStart := len(c.chunk().Code)
	lc := &loopContext{continueTarget: loopStart, isFor: true}
	c.fs.loops = append(c.fs.loops, lc)

	c.compileStatement(s.Body)
	// `continue` inside a do-while jumps here, to the condition test.
	condStart := len(c.chunk().Code)
	lc.continueTarget = condStart
	for _, j := range lc.continueJumps {
		c.patchJump(j)
	}
	c.compileExpression(s.Condition)
	c.emitOp(bytecode.OpJumpIfFalse, 0)
	// JUMP_IF_FALSE operand points past the loop; compute manually since we
	// loop backward on true instead of forward on false.
	falseJumpPos := len(c.chunk().Code)
	c.chunk().WriteU16(bytecode.SentinelOffset, 0)
	c.emitOp(bytecode.OpPop, 0)
	c.emitLoop(loopStart, 0)
	c.patchJump(falseJumpPos)
	c.emitOp(bytecode.OpPop, 0)

	for _, j := range lc.breakJumps {
		c.patchJump(j)
	}
	c.fs.loops = c.fs.loops[:len(c.fs.loops)-1]
}

func (c *Compiler) compileFor(s *ast.ForStatement) {
	c.beginScope()
	if s.Init != nil {
		c.compileStatement(s.Init)
	}

	loopStart := len(c.chunk().Code)
	exitJump := -1
	if s.Condition != nil {
		c.compileExpression(s.Condition)
		exitJump = c.emitJump(bytecode.OpJumpIfFalse, 0)
		c.emitOp(bytecode.OpPop, 0)
	}

	lc := &loopContext{isFor: true}
	c.fs.loops = append(c.fs.loops, lc)
	c.compileStatement(s.Body)

	// `continue` lands here: the increment clause runs before the next test.
	for _, j := range lc.continueJumps {
		c.patchJump(j)
	}
	if s.Increment != nil {
		c.compileExpression(s.Increment)
		c.emitOp(bytecode.OpPop, 0)
	}
	c.emitLoop(loopStart, 0)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(bytecode.OpPop, 0)
	}
	for _, j := range lc.breakJumps {
		c.patchJump(j)
	}
	c.fs.loops = c.fs.loops[:len(c.fs.loops)-1]
	c.endScope()
}

func (c *Compiler) compileBreak() {
	if len(c.fs.loops) == 0 {
		c.errorf("'break' outside of a loop")
		return
	}
	lc := c.fs.loops[len(c.fs.loops)-1]
	lc.breakJumps = append(lc.breakJumps, c.emitJump(bytecode.OpJump, 0))
}

func (c *Compiler) compileContinue() {
	if len(c.fs.loops) == 0 {
		c.errorf("'continue' outside of a loop")
		return
	}
	lc := c.fs.loops[len(c.fs.loops)-1]
	if lc.isFor {
		lc.continueJumps = append(lc.continueJumps, c.emitJump(bytecode.OpJump, 0))
	} else {
		c.emitLoop(lc.continueTarget, 0)
	}
}

func (c *Compiler) compileMatch(s *ast.MatchStatement) {
	c.compileExpression(s.Subject)
	// subject sits in a synthetic local slot for the duration of the match
	c.beginScope()
	c.addLocal("")
	subjectSlot := byte(len(c.fs.locals) - 1)

	var endJumps []int
	for _, cs := range s.Cases {
		c.emitOpByte(bytecode.OpGetLocal, subjectSlot, 0)
		c.compileExpression(cs.Value)
		c.emitOp(bytecode.OpEqual, 0)
		nextJump := c.emitJump(bytecode.OpJumpIfFalse, 0)
		c.emitOp(bytecode.OpPop, 0)
		c.compileStatement(cs.Body)
		endJumps = append(endJumps, c.emitJump(bytecode.OpJump, 0))
		c.patchJump(nextJump)
		c.emitOp(bytecode.OpPop, 0)
	}
	if s.Default != nil {
		c.compileStatement(s.Default)
	}
	for _, j := range endJumps {
		c.patchJump(j)
	}
	c.endScope()
}

func (c *Compiler) compileTry(s *ast.TryStatement) {
	tryPos := c.emitJump(bytecode.OpTry, 0)
	catchPos := len(c.chunk().Code)
	c.chunk().WriteU16(bytecode.SentinelOffset, 0)
	finallyPos := len(c.chunk().Code)
	c.chunk().WriteU16(bytecode.SentinelOffset, 0)

	c.compileStatement(s.Try)
	afterTry := c.emitJump(bytecode.OpJump, 0)

	c.patchJump(tryPos)
	if s.HasCatch {
		c.chunk().PatchU16(catchPos, uint16(len(c.chunk().Code)))
		c.beginScope()
		if s.CatchName != "" {
			c.addLocal(s.CatchName)
		} else {
			c.emitOp(bytecode.OpPop, 0)
		}
		c.compileStatement(s.Catch)
		c.endScope()
	} else {
		c.chunk().PatchU16(catchPos, bytecode.SentinelOffset)
	}
	afterCatch := c.emitJump(bytecode.OpJump, 0)

	c.patchJump(afterTry)
	c.patchJump(afterCatch)

	if s.HasFinally {
		c.chunk().PatchU16(finallyPos, uint16(len(c.chunk().Code)))
		c.compileStatement(s.Finally)
	} else {
		c.chunk().PatchU16(finallyPos, bytecode.SentinelOffset)
	}

	// Reached after the try body when nothing was thrown, after catch
	// (then finally) when an exception was caught, or after finally alone
	// when an exception reached it with no catch to handle it first —
	// exactly once per construct on every path that runs to the end of it.
	// A `return` out of the construct skips this; the VM's RETURN handler
	// drops that frame's exception frames instead.
	c.emitOp(bytecode.OpEndTry, 0)
}

func (c *Compiler) compileFunDeclaration(s *ast.FunStatement) {
	if c.fs.scopeDepth > 0 {
		c.addLocal(s.Name)
	}
	fn := c.compileFunctionBody(s.Name, s.Params, s.ReturnType, s.Body, false)
	idx := c.emitConstant(value.FromObject(fn))
	c.emitOpByte(bytecode.OpClosure, idx, 0)
	if c.fs.scopeDepth == 0 {
		nameIdx := c.identifierConstant(s.Name)
		c.emitOpByte(bytecode.OpDefineGlobal, nameIdx, 0)
	}
}

// compileFunctionBody compiles params+body into a standalone *value.Function
// with its own Chunk and upvalue descriptor list, capturing the current
// compiler as the new function's enclosing scope for upvalue resolution.
func (c *Compiler) compileFunctionBody(name string, params []ast.Param, retType string, body *ast.Block, isMethod bool) *value.Function {
	fn := &value.Function{Name: name, Arity: len(params), IsMethod: isMethod, ReturnType: retType}
	for _, p := range params {
		fn.ParamTypes = append(fn.ParamTypes, p.Type)
	}

	outer := c.fs
	c.fs = &funcState{enclosing: outer, fn: fn, chunk: bytecode.NewChunk(), scopeDepth: 1}
	// Slot 0: `this` for methods, unused otherwise.
	if isMethod {
		c.fs.locals = append(c.fs.locals, local{name: "this", depth: 0})
	} else {
		c.fs.locals = append(c.fs.locals, local{name: "", depth: 0})
	}
	for _, p := range params {
		c.addLocal(p.Name)
	}

	for _, st := range body.Statements {
		c.compileStatement(st)
	}
	c.emitOp(bytecode.OpNil, 0)
	c.emitOp(bytecode.OpReturn, 0)

	fn.Chunk = c.fs.chunk
	fn.Upvalues = make([]value.UpvalueDesc, len(c.fs.upvalues))
	for i, uv := range c.fs.upvalues {
		fn.Upvalues[i] = value.UpvalueDesc{Index: uv.index, FromLocal: uv.fromLocal}
	}
	c.fs = outer
	return fn
}

func (c *Compiler) compileClass(s *ast.ClassStatement) {
	nameIdx := c.identifierConstant(s.Name)
	c.emitOpByte(bytecode.OpClass, nameIdx, 0)
	c.declareAndDefineVariable(s.Name, "", 0)

	enclosing := c.class
	cc := &classContext{enclosing: enclosing}
	c.class = cc

	if s.SuperName != "" {
		if s.SuperName == s.Name {
			c.errorf("class %s cannot extend itself", s.Name)
		}
		c.emitGetVariable(s.SuperName, 0)
		c.beginScope()
		c.addLocal("super")
		c.emitGetVariable(s.Name, 0)
		c.emitGetVariable("super", 0)
		c.emitOp(bytecode.OpInherit, 0)
		c.emitOp(bytecode.OpPop, 0)
		cc.hasSuper = true
	}

	c.emitGetVariable(s.Name, 0)
	for _, m := range s.Methods {
		c.compileMethod(m)
	}
	c.emitOp(bytecode.OpPop, 0)

	if cc.hasSuper {
		c.endScope()
	}
	c.class = enclosing
}

func (c *Compiler) compileMethod(m *ast.FunStatement) {
	fn := c.compileFunctionBody(m.Name, m.Params, m.ReturnType, m.Body, true)
	idx := c.emitConstant(value.FromObject(fn))
	c.emitOpByte(bytecode.OpClosure, idx, 0)
	nameIdx := c.identifierConstant(m.Name)
	c.emitOpByte(bytecode.OpMethod, nameIdx, 0)
}

// --- expressions ---

func (c *Compiler) compileExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		c.emitOpByte(bytecode.OpConstant, c.emitConstant(value.Number(e.Value)), 0)
	case *ast.FloatLiteral:
		c.emitOpByte(bytecode.OpConstant, c.emitConstant(value.Number(e.Value)), 0)
	case *ast.StringLiteral:
		c.emitOpByte(bytecode.OpConstant, c.emitConstant(value.FromObject(value.NewDataString(e.Value))), 0)
	case *ast.BooleanLiteral:
		if e.Value {
			c.emitOp(bytecode.OpTrue, 0)
		} else {
			c.emitOp(bytecode.OpFalse, 0)
		}
	case *ast.NilLiteral:
		c.emitOp(bytecode.OpNil, 0)
	case *ast.ThisExpression:
		c.emitGetVariable("this", 0)
	case *ast.Identifier:
		c.emitGetVariable(e.Name, 0)
	case *ast.GroupingExpression:
		c.compileExpression(e.Inner)
	case *ast.UnaryExpression:
		c.compileExpression(e.Operand)
		switch e.Op {
		case "-":
			c.emitOp(bytecode.OpNegate, 0)
		case "!", "not":
			c.emitOp(bytecode.OpNot, 0)
		default:
			c.errorf("unknown unary operator %q", e.Op)
		}
	case *ast.BinaryExpression:
		c.compileBinary(e)
	case *ast.TernaryExpression:
		c.compileExpression(e.Condition)
		elseJump := c.emitJump(bytecode.OpJumpIfFalse, 0)
		c.emitOp(bytecode.OpPop, 0)
		c.compileExpression(e.Then)
		endJump := c.emitJump(bytecode.OpJump, 0)
		c.patchJump(elseJump)
		c.emitOp(bytecode.OpPop, 0)
		c.compileExpression(e.Else)
		c.patchJump(endJump)
	case *ast.CallExpression:
		c.compileCall(e)
	case *ast.MemberExpression:
		c.compileMember(e)
	case *ast.IndexExpression:
		c.compileExpression(e.Receiver)
		c.compileExpression(e.Index)
		c.emitOp(bytecode.OpIndexGet, 0)
	case *ast.AssignExpression:
		c.compileAssign(e)
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			c.compileExpression(el)
		}
		c.emitOpByte(bytecode.OpArray, byte(len(e.Elements)), 0)
	case *ast.ObjectLiteral:
		for i, k := range e.Keys {
			c.emitOpByte(bytecode.OpConstant, c.emitConstant(value.FromObject(value.NewDataString(k))), 0)
			c.compileExpression(e.Values[i])
		}
		c.emitOpByte(bytecode.OpObject, byte(len(e.Keys)), 0)
	case *ast.LambdaExpression:
		fn := c.compileFunctionBody("", e.Params, e.ReturnType, e.Body, false)
		idx := c.emitConstant(value.FromObject(fn))
		c.emitOpByte(bytecode.OpClosure, idx, 0)
	default:
		c.errorf("unknown expression type %T", expr)
	}
}

func (c *Compiler) compileBinary(e *ast.BinaryExpression) {
	if e.Op == "and" {
		c.compileExpression(e.Left)
		jump := c.emitJump(bytecode.OpJumpIfFalse, 0)
		c.emitOp(bytecode.OpPop, 0)
		c.compileExpression(e.Right)
		c.patchJump(jump)
		return
	}
	if e.Op == "or" {
		c.compileExpression(e.Left)
		elseJump := c.emitJump(bytecode.OpJumpIfFalse, 0)
		endJump := c.emitJump(bytecode.OpJump, 0)
		c.patchJump(elseJump)
		c.emitOp(bytecode.OpPop, 0)
		c.compileExpression(e.Right)
		c.patchJump(endJump)
		return
	}

	c.compileExpression(e.Left)
	c.compileExpression(e.Right)
	switch e.Op {
	case "+":
		c.emitOp(bytecode.OpAdd, 0)
	case "-":
		c.emitOp(bytecode.OpSubtract, 0)
	case "*":
		c.emitOp(bytecode.OpMultiply, 0)
	case "/":
		c.emitOp(bytecode.OpDivide, 0)
	case "%":
		c.emitOp(bytecode.OpModulo, 0)
	case "==":
		c.emitOp(bytecode.OpEqual, 0)
	case "!=":
		c.emitOp(bytecode.OpNotEqual, 0)
	case "<":
		c.emitOp(bytecode.OpLess, 0)
	case ">":
		c.emitOp(bytecode.OpGreater, 0)
	case "<=":
		c.emitOp(bytecode.OpLessEqual, 0)
	case ">=":
		c.emitOp(bytecode.OpGreaterEqual, 0)
	case "&":
		c.emitOp(bytecode.OpBitAnd, 0)
	case "|":
		c.emitOp(bytecode.OpBitOr, 0)
	case "^":
		c.emitOp(bytecode.OpBitXor, 0)
	case "<<":
		c.emitOp(bytecode.OpShiftLeft, 0)
	case ">>":
		c.emitOp(bytecode.OpShiftRight, 0)
	default:
		c.errorf("unknown binary operator %q", e.Op)
	}
}

func (c *Compiler) compileCall(e *ast.CallExpression) {
	if member, ok := e.Callee.(*ast.MemberExpression); ok {
		if _, isSuper := member.Receiver.(*ast.Identifier); isSuper && member.Receiver.(*ast.Identifier).Name == "super" {
			c.emitGetVariable("this", 0)
			c.emitGetVariable("super", 0)
			c.emitOpByte(bytecode.OpGetSuper, c.identifierConstant(member.Name), 0)
			for _, a := range e.Args {
				c.compileExpression(a)
			}
			c.emitOpByte(bytecode.OpCall, byte(len(e.Args)), 0)
			return
		}
	}
	c.compileExpression(e.Callee)
	for _, a := range e.Args {
		c.compileExpression(a)
	}
	c.emitOpByte(bytecode.OpCall, byte(len(e.Args)), 0)
}

func (c *Compiler) compileMember(e *ast.MemberExpression) {
	if recv, ok := e.Receiver.(*ast.Identifier); ok && recv.Name == "super" {
		c.emitGetVariable("this", 0)
		c.emitGetVariable("super", 0)
		c.emitOpByte(bytecode.OpGetSuper, c.identifierConstant(e.Name), 0)
		return
	}
	c.compileExpression(e.Receiver)
	c.emitOpByte(bytecode.OpGetProperty, c.identifierConstant(e.Name), 0)
}

func (c *Compiler) compileAssign(e *ast.AssignExpression) {
	switch target := e.Target.(type) {
	case *ast.Identifier:
		c.compileExpression(e.Value)
		if c.safeDepth > 0 && c.resolveLocal(c.fs, target.Name) == -1 && c.resolveUpvalue(c.fs, target.Name) == -1 {
			c.errorf("safe block requires declaring %q with 'var' before assignment", target.Name)
		}
		c.emitSetVariable(target.Name, "", 0)
	case *ast.MemberExpression:
		c.compileExpression(target.Receiver)
		c.compileExpression(e.Value)
		c.emitOpByte(bytecode.OpSetProperty, c.identifierConstant(target.Name), 0)
	case *ast.IndexExpression:
		c.compileExpression(target.Receiver)
		c.compileExpression(target.Index)
		c.compileExpression(e.Value)
		c.emitOp(bytecode.OpIndexSet, 0)
	default:
		c.errorf("invalid assignment target %T", e.Target)
	}
}
