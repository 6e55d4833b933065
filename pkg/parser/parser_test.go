package parser

import (
	"testing"

	"github.com/yasakei/neutron/pkg/ast"
)

func parseOne(t *testing.T, src string) ast.Statement {
	t.Helper()
	p := New(src)
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v (parser errors: %v)", err, p.Errors())
	}
	if len(prog.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(prog.Statements))
	}
	return prog.Statements[0]
}

func exprOf(t *testing.T, stmt ast.Statement) ast.Expression {
	t.Helper()
	es, ok := stmt.(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("got %T, want *ast.ExpressionStatement", stmt)
	}
	return es.Expr
}

func TestParseIntegerLiteral(t *testing.T) {
	expr := exprOf(t, parseOne(t, "42;"))
	lit, ok := expr.(*ast.IntegerLiteral)
	if !ok {
		t.Fatalf("got %T, want *ast.IntegerLiteral", expr)
	}
	if lit.Value != 42 {
		t.Errorf("got %v, want 42", lit.Value)
	}
}

func TestParseFloatLiteral(t *testing.T) {
	expr := exprOf(t, parseOne(t, "3.14;"))
	lit, ok := expr.(*ast.FloatLiteral)
	if !ok {
		t.Fatalf("got %T, want *ast.FloatLiteral", expr)
	}
	if lit.Value != 3.14 {
		t.Errorf("got %v, want 3.14", lit.Value)
	}
}

func TestParseStringLiteral(t *testing.T) {
	expr := exprOf(t, parseOne(t, `"hello";`))
	lit, ok := expr.(*ast.StringLiteral)
	if !ok {
		t.Fatalf("got %T, want *ast.StringLiteral", expr)
	}
	if lit.Value != "hello" {
		t.Errorf("got %q, want hello", lit.Value)
	}
}

func TestParseBooleanLiterals(t *testing.T) {
	expr := exprOf(t, parseOne(t, "true;"))
	if lit, ok := expr.(*ast.BooleanLiteral); !ok || lit.Value != true {
		t.Errorf("got %#v, want BooleanLiteral{true}", expr)
	}
	expr = exprOf(t, parseOne(t, "false;"))
	if lit, ok := expr.(*ast.BooleanLiteral); !ok || lit.Value != false {
		t.Errorf("got %#v, want BooleanLiteral{false}", expr)
	}
}

func TestParseNilLiteral(t *testing.T) {
	expr := exprOf(t, parseOne(t, "nil;"))
	if _, ok := expr.(*ast.NilLiteral); !ok {
		t.Errorf("got %T, want *ast.NilLiteral", expr)
	}
}

func TestParseIdentifier(t *testing.T) {
	expr := exprOf(t, parseOne(t, "someName;"))
	id, ok := expr.(*ast.Identifier)
	if !ok || id.Name != "someName" {
		t.Errorf("got %#v, want Identifier{someName}", expr)
	}
}

func TestParseMultipleStatements(t *testing.T) {
	p := New("1; 2; 3;")
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(prog.Statements) != 3 {
		t.Fatalf("got %d statements, want 3", len(prog.Statements))
	}
}

func TestParseNegativeNumber(t *testing.T) {
	expr := exprOf(t, parseOne(t, "-5;"))
	u, ok := expr.(*ast.UnaryExpression)
	if !ok || u.Op != "-" {
		t.Fatalf("got %#v, want UnaryExpression{-}", expr)
	}
	lit, ok := u.Operand.(*ast.IntegerLiteral)
	if !ok || lit.Value != 5 {
		t.Fatalf("got operand %#v, want IntegerLiteral{5}", u.Operand)
	}
}

func TestParseWithComments(t *testing.T) {
	src := `
		// leading comment
		1; /* trailing */
	`
	expr := exprOf(t, parseOne(t, src))
	if lit, ok := expr.(*ast.IntegerLiteral); !ok || lit.Value != 1 {
		t.Errorf("got %#v, want IntegerLiteral{1}", expr)
	}
}

func TestParseVarStatement(t *testing.T) {
	p := New("var x = 10;")
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	v, ok := prog.Statements[0].(*ast.VarStatement)
	if !ok {
		t.Fatalf("got %T, want *ast.VarStatement", prog.Statements[0])
	}
	if v.Name.Literal != "x" {
		t.Errorf("got name %q, want x", v.Name.Literal)
	}
	lit, ok := v.Init.(*ast.IntegerLiteral)
	if !ok || lit.Value != 10 {
		t.Errorf("got init %#v, want IntegerLiteral{10}", v.Init)
	}
}

func TestParseIfElifElse(t *testing.T) {
	src := `
		if (1) { 1; } elif (2) { 2; } else { 3; }
	`
	p := New(src)
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ifs, ok := prog.Statements[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("got %T, want *ast.IfStatement", prog.Statements[0])
	}
	if len(ifs.Conditions) != 2 || len(ifs.Branches) != 2 {
		t.Fatalf("got %d conditions / %d branches, want 2 / 2", len(ifs.Conditions), len(ifs.Branches))
	}
	if ifs.Else == nil {
		t.Fatal("expected an else branch")
	}
}

func TestParseFunctionDeclaration(t *testing.T) {
	p := New("fun add(a, b) { return a + b; }")
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	fn, ok := prog.Statements[0].(*ast.FunStatement)
	if !ok {
		t.Fatalf("got %T, want *ast.FunStatement", prog.Statements[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("got name=%q params=%d, want add/2", fn.Name, len(fn.Params))
	}
}

func TestParseClassWithExtendsAndMethods(t *testing.T) {
	src := `
		class Dog extends Animal {
			init(name) { this.name = name; }
			bark() { say(this.name); }
		}
	`
	p := New(src)
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	cls, ok := prog.Statements[0].(*ast.ClassStatement)
	if !ok {
		t.Fatalf("got %T, want *ast.ClassStatement", prog.Statements[0])
	}
	if cls.Name != "Dog" || cls.SuperName != "Animal" {
		t.Fatalf("got name=%q super=%q, want Dog/Animal", cls.Name, cls.SuperName)
	}
	if len(cls.Methods) != 2 {
		t.Fatalf("got %d methods, want 2", len(cls.Methods))
	}
}

func TestParseTryCatchFinally(t *testing.T) {
	src := `
		try { throw "x"; } catch (e) { say(e); } finally { say("done"); }
	`
	p := New(src)
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ts, ok := prog.Statements[0].(*ast.TryStatement)
	if !ok {
		t.Fatalf("got %T, want *ast.TryStatement", prog.Statements[0])
	}
	if !ts.HasCatch || !ts.HasFinally || ts.CatchName != "e" {
		t.Fatalf("got %#v", ts)
	}
}

func TestParseUseAndUsing(t *testing.T) {
	p := New(`use math; using "helpers.nt";`)
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	use, ok := prog.Statements[0].(*ast.UseStatement)
	if !ok || use.Name != "math" {
		t.Fatalf("got %#v, want UseStatement{math}", prog.Statements[0])
	}
	using, ok := prog.Statements[1].(*ast.UsingStatement)
	if !ok || using.Path != "helpers.nt" {
		t.Fatalf("got %#v, want UsingStatement{helpers.nt}", prog.Statements[1])
	}
}

func TestParseArrayAndIndex(t *testing.T) {
	expr := exprOf(t, parseOne(t, "[1, 2, 3][0];"))
	idx, ok := expr.(*ast.IndexExpression)
	if !ok {
		t.Fatalf("got %T, want *ast.IndexExpression", expr)
	}
	arr, ok := idx.Receiver.(*ast.ArrayLiteral)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("got receiver %#v, want 3-element ArrayLiteral", idx.Receiver)
	}
}

func TestParseMemberAndCall(t *testing.T) {
	expr := exprOf(t, parseOne(t, "obj.method(1, 2);"))
	call, ok := expr.(*ast.CallExpression)
	if !ok || len(call.Args) != 2 {
		t.Fatalf("got %#v, want 2-arg CallExpression", expr)
	}
	member, ok := call.Callee.(*ast.MemberExpression)
	if !ok || member.Name != "method" {
		t.Fatalf("got callee %#v, want MemberExpression{method}", call.Callee)
	}
}

func TestOperatorPrecedenceMulOverAdd(t *testing.T) {
	expr := exprOf(t, parseOne(t, "1 + 2 * 3;"))
	bin, ok := expr.(*ast.BinaryExpression)
	if !ok || bin.Op != "+" {
		t.Fatalf("got %#v, want top-level BinaryExpression{+}", expr)
	}
	right, ok := bin.Right.(*ast.BinaryExpression)
	if !ok || right.Op != "*" {
		t.Fatalf("got right operand %#v, want BinaryExpression{*}", bin.Right)
	}
}

func TestOperatorPrecedenceComparisonOverLogical(t *testing.T) {
	expr := exprOf(t, parseOne(t, "1 < 2 and 3 > 2;"))
	bin, ok := expr.(*ast.BinaryExpression)
	if !ok || bin.Op != "and" {
		t.Fatalf("got %#v, want top-level BinaryExpression{and}", expr)
	}
	if _, ok := bin.Left.(*ast.BinaryExpression); !ok {
		t.Fatalf("got left %#v, want a comparison BinaryExpression", bin.Left)
	}
	if _, ok := bin.Right.(*ast.BinaryExpression); !ok {
		t.Fatalf("got right %#v, want a comparison BinaryExpression", bin.Right)
	}
}

func TestOperatorPrecedenceParenthesesOverride(t *testing.T) {
	expr := exprOf(t, parseOne(t, "(1 + 2) * 3;"))
	bin, ok := expr.(*ast.BinaryExpression)
	if !ok || bin.Op != "*" {
		t.Fatalf("got %#v, want top-level BinaryExpression{*}", expr)
	}
	group, ok := bin.Left.(*ast.GroupingExpression)
	if !ok {
		t.Fatalf("got left %#v, want *ast.GroupingExpression", bin.Left)
	}
	if _, ok := group.Inner.(*ast.BinaryExpression); !ok {
		t.Fatalf("got grouping inner %#v, want BinaryExpression", group.Inner)
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	expr := exprOf(t, parseOne(t, "a = b = 1;"))
	outer, ok := expr.(*ast.AssignExpression)
	if !ok {
		t.Fatalf("got %T, want *ast.AssignExpression", expr)
	}
	if _, ok := outer.Target.(*ast.Identifier); !ok {
		t.Fatalf("got target %#v, want Identifier", outer.Target)
	}
	if _, ok := outer.Value.(*ast.AssignExpression); !ok {
		t.Fatalf("got value %#v, want a nested AssignExpression", outer.Value)
	}
}

func TestTernaryExpression(t *testing.T) {
	expr := exprOf(t, parseOne(t, "1 ? 2 : 3;"))
	tern, ok := expr.(*ast.TernaryExpression)
	if !ok {
		t.Fatalf("got %T, want *ast.TernaryExpression", expr)
	}
	if _, ok := tern.Condition.(*ast.IntegerLiteral); !ok {
		t.Errorf("got condition %#v", tern.Condition)
	}
}
