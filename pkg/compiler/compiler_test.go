package compiler

import (
	"testing"

	"github.com/yasakei/neutron/pkg/ast"
	"github.com/yasakei/neutron/pkg/bytecode"
	"github.com/yasakei/neutron/pkg/parser"
	"github.com/yasakei/neutron/pkg/value"
)

func compileSrc(t *testing.T, src string) *value.Function {
	t.Helper()
	p := parser.New(src)
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v (parser errors: %v)", err, p.Errors())
	}
	fn, err := Compile(prog)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return fn
}

func chunkOf(t *testing.T, fn *value.Function) *bytecode.Chunk {
	t.Helper()
	c, ok := fn.Chunk.(*bytecode.Chunk)
	if !ok {
		t.Fatalf("got Chunk type %T, want *bytecode.Chunk", fn.Chunk)
	}
	return c
}

func asFunction(v value.Value) (*value.Function, bool) {
	if !v.IsObject() {
		return nil, false
	}
	fn, ok := v.AsObject().(*value.Function)
	return fn, ok
}

func containsOp(code []byte, op bytecode.Opcode) bool {
	for _, b := range code {
		if bytecode.Opcode(b) == op {
			return true
		}
	}
	return false
}

func countOp(code []byte, op bytecode.Opcode) int {
	n := 0
	for _, b := range code {
		if bytecode.Opcode(b) == op {
			n++
		}
	}
	return n
}

func TestCompileIntegerLiteralEmitsConstant(t *testing.T) {
	fn := compileSrc(t, "42;")
	chunk := chunkOf(t, fn)
	if !containsOp(chunk.Code, bytecode.OpConstant) {
		t.Fatalf("expected OpConstant in %v", chunk.Code)
	}
	if len(chunk.Constants) != 1 || chunk.Constants[0].ToString() != "42" {
		t.Fatalf("got constants %v, want a single 42", chunk.Constants)
	}
}

func TestCompileBinaryExpressionOrdersOperandsBeforeOperator(t *testing.T) {
	fn := compileSrc(t, "1 + 2;")
	chunk := chunkOf(t, fn)
	var addIdx, lastConstIdx int = -1, -1
	for i, b := range chunk.Code {
		switch bytecode.Opcode(b) {
		case bytecode.OpConstant:
			lastConstIdx = i
		case bytecode.OpAdd:
			addIdx = i
		}
	}
	if addIdx == -1 || lastConstIdx == -1 || addIdx < lastConstIdx {
		t.Fatalf("expected both operands pushed before OpAdd, got %v", chunk.Code)
	}
}

func TestCompileAndOrShortCircuitWithJumpIfFalse(t *testing.T) {
	fn := compileSrc(t, "1 and 2;")
	chunk := chunkOf(t, fn)
	if !containsOp(chunk.Code, bytecode.OpJumpIfFalse) {
		t.Errorf("expected 'and' to compile a OpJumpIfFalse, got %v", chunk.Code)
	}

	fn = compileSrc(t, "1 or 2;")
	chunk = chunkOf(t, fn)
	if !containsOp(chunk.Code, bytecode.OpJumpIfFalse) || !containsOp(chunk.Code, bytecode.OpJump) {
		t.Errorf("expected 'or' to compile OpJumpIfFalse+OpJump, got %v", chunk.Code)
	}
}

func TestCompileVarStatementGlobalUsesDefineGlobal(t *testing.T) {
	fn := compileSrc(t, "var x = 10;")
	chunk := chunkOf(t, fn)
	if !containsOp(chunk.Code, bytecode.OpDefineGlobal) {
		t.Fatalf("expected OpDefineGlobal, got %v", chunk.Code)
	}
}

func TestCompileVarStatementTypedUsesDefineTypedGlobal(t *testing.T) {
	fn := compileSrc(t, "var x: number = 10;")
	chunk := chunkOf(t, fn)
	if !containsOp(chunk.Code, bytecode.OpDefineTypedGlobal) {
		t.Fatalf("expected OpDefineTypedGlobal, got %v", chunk.Code)
	}
}

func TestCompileLocalVarUsesLocalSlotNotGlobal(t *testing.T) {
	fn := compileSrc(t, "{ var x = 1; x; }")
	chunk := chunkOf(t, fn)
	if containsOp(chunk.Code, bytecode.OpDefineGlobal) {
		t.Errorf("local declaration should not emit OpDefineGlobal, got %v", chunk.Code)
	}
	if !containsOp(chunk.Code, bytecode.OpGetLocal) {
		t.Errorf("expected a OpGetLocal reading back the local, got %v", chunk.Code)
	}
}

func TestCompileWhileLoopEmitsLoopAndJumpIfFalse(t *testing.T) {
	fn := compileSrc(t, "while (1) { 2; }")
	chunk := chunkOf(t, fn)
	if !containsOp(chunk.Code, bytecode.OpLoop) || !containsOp(chunk.Code, bytecode.OpJumpIfFalse) {
		t.Fatalf("expected OpLoop+OpJumpIfFalse, got %v", chunk.Code)
	}
}

func TestCompileBreakAndContinueInsideForLoop(t *testing.T) {
	fn := compileSrc(t, "for (var i = 0; i < 1; i = i + 1) { break; continue; }")
	chunk := chunkOf(t, fn)
	if !containsOp(chunk.Code, bytecode.OpJump) {
		t.Fatalf("expected break/continue to compile to jumps, got %v", chunk.Code)
	}
}

func TestCompileBreakOutsideLoopIsAnError(t *testing.T) {
	p := parser.New("break;")
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, err := Compile(prog); err == nil {
		t.Fatal("expected a compile error for 'break' outside a loop")
	}
}

func TestCompileFunctionDeclarationEmitsClosureAndDefineGlobal(t *testing.T) {
	fn := compileSrc(t, "fun add(a, b) { return a + b; }")
	chunk := chunkOf(t, fn)
	if !containsOp(chunk.Code, bytecode.OpClosure) || !containsOp(chunk.Code, bytecode.OpDefineGlobal) {
		t.Fatalf("expected OpClosure+OpDefineGlobal, got %v", chunk.Code)
	}

	var inner *value.Function
	for _, c := range chunk.Constants {
		if f, ok := asFunction(c); ok {
			inner = f
		}
	}
	if inner == nil {
		t.Fatal("expected the compiled function to appear as a constant")
	}
	if inner.Name != "add" || inner.Arity != 2 {
		t.Fatalf("got name=%q arity=%d, want add/2", inner.Name, inner.Arity)
	}
	innerChunk := chunkOf(t, inner)
	if !containsOp(innerChunk.Code, bytecode.OpReturn) {
		t.Errorf("expected the function body to end with OpReturn, got %v", innerChunk.Code)
	}
}

func TestCompileClosureCapturesEnclosingLocalAsUpvalue(t *testing.T) {
	fn := compileSrc(t, `
		fun outer() {
			var x = 1;
			fun inner() { return x; }
			return inner;
		}
	`)
	chunk := chunkOf(t, fn)
	var outerFn *value.Function
	for _, c := range chunk.Constants {
		if f, ok := asFunction(c); ok {
			outerFn = f
		}
	}
	if outerFn == nil {
		t.Fatal("expected outer() to appear as a constant")
	}
	outerChunk := chunkOf(t, outerFn)
	var innerFn *value.Function
	for _, c := range outerChunk.Constants {
		if f, ok := asFunction(c); ok {
			innerFn = f
		}
	}
	if innerFn == nil {
		t.Fatal("expected inner() to appear as a constant of outer()'s chunk")
	}
	if len(innerFn.Upvalues) != 1 || !innerFn.Upvalues[0].FromLocal {
		t.Fatalf("got upvalues %#v, want one upvalue captured from a local", innerFn.Upvalues)
	}
	innerChunk := chunkOf(t, innerFn)
	if !containsOp(innerChunk.Code, bytecode.OpGetUpvalue) {
		t.Errorf("expected inner() body to read the upvalue, got %v", innerChunk.Code)
	}
}

func TestCompileClassWithoutSuperEmitsClassAndMethod(t *testing.T) {
	fn := compileSrc(t, `
		class Dog {
			init(name) { this.name = name; }
			bark() { say(this.name); }
		}
	`)
	chunk := chunkOf(t, fn)
	if !containsOp(chunk.Code, bytecode.OpClass) {
		t.Fatalf("expected OpClass, got %v", chunk.Code)
	}
	if n := countOp(chunk.Code, bytecode.OpMethod); n != 2 {
		t.Fatalf("got %d OpMethod, want 2 (init, bark)", n)
	}
	if containsOp(chunk.Code, bytecode.OpInherit) {
		t.Errorf("class without 'extends' should not emit OpInherit, got %v", chunk.Code)
	}
}

func TestCompileClassWithExtendsEmitsInherit(t *testing.T) {
	fn := compileSrc(t, `
		class Animal { speak() { say("..."); } }
		class Dog extends Animal { speak() { say("woof"); } }
	`)
	chunk := chunkOf(t, fn)
	if !containsOp(chunk.Code, bytecode.OpInherit) {
		t.Fatalf("expected OpInherit, got %v", chunk.Code)
	}
}

func TestCompileClassExtendingItselfIsAnError(t *testing.T) {
	p := parser.New("class Dog extends Dog { bark() { say(1); } }")
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, err := Compile(prog); err == nil {
		t.Fatal("expected a compile error for a class extending itself")
	}
}

func TestCompileTryCatchFinallyEmitsTryEndTryAndThrow(t *testing.T) {
	fn := compileSrc(t, `try { throw "x"; } catch (e) { say(e); } finally { say("done"); }`)
	chunk := chunkOf(t, fn)
	if !containsOp(chunk.Code, bytecode.OpTry) || !containsOp(chunk.Code, bytecode.OpEndTry) {
		t.Fatalf("expected OpTry+OpEndTry, got %v", chunk.Code)
	}
	if !containsOp(chunk.Code, bytecode.OpThrow) {
		t.Errorf("expected the throw statement to compile to OpThrow, got %v", chunk.Code)
	}
}

func TestCompileTryWithoutCatchOrFinallyIsAParseError(t *testing.T) {
	p := parser.New("try { 1; }")
	if _, err := p.Parse(); err == nil {
		t.Fatal("expected a parse error: try requires a catch or finally clause")
	}
}

func TestCompileTernaryExpressionEmitsBothBranches(t *testing.T) {
	fn := compileSrc(t, "1 ? 2 : 3;")
	chunk := chunkOf(t, fn)
	if n := countOp(chunk.Code, bytecode.OpConstant); n < 3 {
		t.Fatalf("expected condition+then+else to each push a constant, got %d OpConstant in %v", n, chunk.Code)
	}
	if !containsOp(chunk.Code, bytecode.OpJumpIfFalse) || !containsOp(chunk.Code, bytecode.OpJump) {
		t.Fatalf("expected ternary to compile as a conditional jump pair, got %v", chunk.Code)
	}
}

func TestCompileArrayAndIndexExpression(t *testing.T) {
	fn := compileSrc(t, "[1, 2, 3][0];")
	chunk := chunkOf(t, fn)
	if !containsOp(chunk.Code, bytecode.OpArray) || !containsOp(chunk.Code, bytecode.OpIndexGet) {
		t.Fatalf("expected OpArray+OpIndexGet, got %v", chunk.Code)
	}
}

func TestCompileObjectLiteralEmitsObjectOpcode(t *testing.T) {
	fn := compileSrc(t, `var o = {"a": 1, "b": 2};`)
	chunk := chunkOf(t, fn)
	if !containsOp(chunk.Code, bytecode.OpObject) {
		t.Fatalf("expected OpObject, got %v", chunk.Code)
	}
}

func TestCompileMemberAssignmentUsesSetProperty(t *testing.T) {
	fn := compileSrc(t, "obj.field = 1;")
	chunk := chunkOf(t, fn)
	if !containsOp(chunk.Code, bytecode.OpSetProperty) {
		t.Fatalf("expected OpSetProperty, got %v", chunk.Code)
	}
}

func TestCompileIndexAssignmentUsesIndexSet(t *testing.T) {
	fn := compileSrc(t, "arr[0] = 1;")
	chunk := chunkOf(t, fn)
	if !containsOp(chunk.Code, bytecode.OpIndexSet) {
		t.Fatalf("expected OpIndexSet, got %v", chunk.Code)
	}
}

func TestCompileUseAndUsingEmitModuleOpcodes(t *testing.T) {
	fn := compileSrc(t, `use math; using "helpers.nt";`)
	chunk := chunkOf(t, fn)
	if !containsOp(chunk.Code, bytecode.OpUse) || !containsOp(chunk.Code, bytecode.OpUsing) {
		t.Fatalf("expected OpUse+OpUsing, got %v", chunk.Code)
	}
}

func TestCompileSuperCallCompilesTheOverridingMethod(t *testing.T) {
	fn := compileSrc(t, `
		class Animal { speak() { say("..."); } }
		class Dog extends Animal { speak() { super.speak(); } }
	`)
	chunk := chunkOf(t, fn)
	var dogSpeak *value.Function
	count := 0
	for _, c := range chunk.Constants {
		if f, ok := asFunction(c); ok && f.Name == "speak" {
			count++
			dogSpeak = f
		}
	}
	if count != 2 {
		t.Fatalf("expected two speak() methods (base + override) among constants, found %d", count)
	}
	if dogSpeak == nil {
		t.Fatal("expected to find a compiled speak() method")
	}
	speakChunk := chunkOf(t, dogSpeak)
	if !containsOp(speakChunk.Code, bytecode.OpGetSuper) {
		t.Errorf("expected super.speak() to compile to OpGetSuper, got %v", speakChunk.Code)
	}
}

func TestCompileLambdaExpressionEmitsClosure(t *testing.T) {
	fn := compileSrc(t, "var f = fun(a) { return a; };")
	chunk := chunkOf(t, fn)
	if !containsOp(chunk.Code, bytecode.OpClosure) {
		t.Fatalf("expected OpClosure for a lambda literal, got %v", chunk.Code)
	}
}

func TestCompileSimpleExpressionStatementEndsInPop(t *testing.T) {
	var stmt ast.Statement = &ast.ExpressionStatement{Expr: &ast.IntegerLiteral{Value: 1}}
	c := New()
	c.compileStatement(stmt)
	if len(c.errors) != 0 {
		t.Errorf("got errors %v, want none", c.errors)
	}
	if !containsOp(c.chunk().Code, bytecode.OpPop) {
		t.Errorf("expected an expression statement to pop its discarded value, got %v", c.chunk().Code)
	}
}
