// Package ast defines the Abstract Syntax Tree node kinds the compiler
// consumes (spec §6). The lexer/parser surface that produces this tree is
// an out-of-scope external collaborator per spec §1 ("only the AST node
// kinds consumed by the compiler are specified") — pkg/lexer and
// pkg/parser here are kept only deep enough to exercise pkg/compiler.
package ast

// Node is the interface every AST node implements.
type Node interface {
	TokenLiteral() string
}

// Expression is any node that produces a Value when compiled.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node compiled for effect rather than value.
type Statement interface {
	Node
	statementNode()
}

// Program is the root node of a compiled unit.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

// --- Statements (spec §6) ---

type ExpressionStatement struct{ Expr Expression }

func (s *ExpressionStatement) TokenLiteral() string { return "expr" }
func (s *ExpressionStatement) statementNode()       {}

// SayStatement is Neutron's print statement: `say(expr);`.
type SayStatement struct{ Value Expression }

func (s *SayStatement) TokenLiteral() string { return "say" }
func (s *SayStatement) statementNode()       {}

// VarStatement is `var name [: Type] = init;` or a bare declaration.
type VarStatement struct {
	Name Token
	Type string // "" when unannotated
	Init Expression
}

func (s *VarStatement) TokenLiteral() string { return "var" }
func (s *VarStatement) statementNode()       {}

// Block is `{ ... }`, a statement list that compiles in its own scope.
type Block struct{ Statements []Statement }

func (s *Block) TokenLiteral() string { return "block" }
func (s *Block) statementNode()       {}

// IfStatement covers `if`/`elif...`/`else` as a chain of condition-block
// pairs with a final else block.
type IfStatement struct {
	Conditions []Expression
	Branches   []*Block
	Else       *Block // nil if absent
}

func (s *IfStatement) TokenLiteral() string { return "if" }
func (s *IfStatement) statementNode()       {}

type WhileStatement struct {
	Condition Expression
	Body      *Block
}

func (s *WhileStatement) TokenLiteral() string { return "while" }
func (s *WhileStatement) statementNode()       {}

// DoWhileStatement is `do { ... } while (cond);` (SPEC_FULL.md §4: body
// compiles first, condition test last).
type DoWhileStatement struct {
	Body      *Block
	Condition Expression
}

func (s *DoWhileStatement) TokenLiteral() string { return "do" }
func (s *DoWhileStatement) statementNode()       {}

// ForStatement is the C-style `for (init; cond; incr) body`.
type ForStatement struct {
	Init      Statement // may be nil
	Condition Expression // may be nil (treated as always-true)
	Increment Expression // may be nil
	Body      *Block
}

func (s *ForStatement) TokenLiteral() string { return "for" }
func (s *ForStatement) statementNode()       {}

// UseStatement is `use name;` — import a module (source, native, or
// built-in) into the current scope under its own name (spec §4.5).
type UseStatement struct{ Name string }

func (s *UseStatement) TokenLiteral() string { return "use" }
func (s *UseStatement) statementNode()       {}

// UsingStatement is `using "path.nt";` — evaluate a file in the current
// global scope (spec §4.5's import-file syntax).
type UsingStatement struct{ Path string }

func (s *UsingStatement) TokenLiteral() string { return "using" }
func (s *UsingStatement) statementNode()       {}

// FunStatement is a named function declaration.
type FunStatement struct {
	Name       string
	Params     []Param
	ReturnType string // "" when unannotated
	Body       *Block
}

func (s *FunStatement) TokenLiteral() string { return "fun" }
func (s *FunStatement) statementNode()       {}

// Param is one function/method/lambda parameter, optionally annotated.
type Param struct {
	Name string
	Type string // "" when unannotated
}

type ReturnStatement struct{ Value Expression } // Value nil => `return;`

func (s *ReturnStatement) TokenLiteral() string { return "return" }
func (s *ReturnStatement) statementNode()       {}

// ClassStatement is a class declaration: a name, optional superclass, and
// a set of methods compiled as Functions stored in the class's method
// table (spec §4.1).
type ClassStatement struct {
	Name       string
	SuperName  string // "" when no `extends`/superclass clause
	Methods    []*FunStatement
}

func (s *ClassStatement) TokenLiteral() string { return "class" }
func (s *ClassStatement) statementNode()       {}

type BreakStatement struct{}

func (s *BreakStatement) TokenLiteral() string { return "break" }
func (s *BreakStatement) statementNode()       {}

type ContinueStatement struct{}

func (s *ContinueStatement) TokenLiteral() string { return "continue" }
func (s *ContinueStatement) statementNode()       {}

// MatchStatement is `match (subject) { case a => ...; default => ...; }`.
type MatchStatement struct {
	Subject  Expression
	Cases    []MatchCase
	Default  *Block // nil if absent
}

type MatchCase struct {
	Value Expression
	Body  *Block
}

func (s *MatchStatement) TokenLiteral() string { return "match" }
func (s *MatchStatement) statementNode()       {}

// TryStatement is `try { } catch(name) { } finally { }` (spec §4.1/§4.6).
// Catch and Finally are independently optional, but at least one must be
// present (enforced by the parser, not the compiler).
type TryStatement struct {
	Try        *Block
	CatchName  string // "" when there is no catch clause
	HasCatch   bool
	Catch      *Block
	HasFinally bool
	Finally    *Block
}

func (s *TryStatement) TokenLiteral() string { return "try" }
func (s *TryStatement) statementNode()       {}

type ThrowStatement struct{ Value Expression }

func (s *ThrowStatement) TokenLiteral() string { return "throw" }
func (s *ThrowStatement) statementNode()       {}

// RetryStatement re-enters the nearest enclosing try block from its start
// (SPEC_FULL.md §4); only valid inside a catch clause.
type RetryStatement struct{}

func (s *RetryStatement) TokenLiteral() string { return "retry" }
func (s *RetryStatement) statementNode()       {}

// SafeStatement is `safe { ... }` — inside Body, every var/assignment
// must carry a type annotation, enforced at compile time (SPEC_FULL.md §4).
type SafeStatement struct{ Body *Block }

func (s *SafeStatement) TokenLiteral() string { return "safe" }
func (s *SafeStatement) statementNode()       {}

// --- Expressions (spec §6) ---

type IntegerLiteral struct{ Value float64 }

func (e *IntegerLiteral) TokenLiteral() string { return "int" }
func (e *IntegerLiteral) expressionNode()      {}

type FloatLiteral struct{ Value float64 }

func (e *FloatLiteral) TokenLiteral() string { return "float" }
func (e *FloatLiteral) expressionNode()      {}

type StringLiteral struct{ Value string }

func (e *StringLiteral) TokenLiteral() string { return "string" }
func (e *StringLiteral) expressionNode()      {}

type BooleanLiteral struct{ Value bool }

func (e *BooleanLiteral) TokenLiteral() string { return "bool" }
func (e *BooleanLiteral) expressionNode()      {}

type NilLiteral struct{}

func (e *NilLiteral) TokenLiteral() string { return "nil" }
func (e *NilLiteral) expressionNode()      {}

type Identifier struct{ Name string }

func (e *Identifier) TokenLiteral() string { return e.Name }
func (e *Identifier) expressionNode()      {}

type ThisExpression struct{}

func (e *ThisExpression) TokenLiteral() string { return "this" }
func (e *ThisExpression) expressionNode()      {}

// BinaryExpression covers arithmetic, comparison, logical (and/or), and
// bitwise operators (spec §6); Op is the operator token text, e.g. "+",
// "==", "and", "&".
type BinaryExpression struct {
	Left  Expression
	Op    string
	Right Expression
}

func (e *BinaryExpression) TokenLiteral() string { return e.Op }
func (e *BinaryExpression) expressionNode()      {}

type UnaryExpression struct {
	Op      string // "-", "!"
	Operand Expression
}

func (e *UnaryExpression) TokenLiteral() string { return e.Op }
func (e *UnaryExpression) expressionNode()      {}

type GroupingExpression struct{ Inner Expression }

func (e *GroupingExpression) TokenLiteral() string { return "(" }
func (e *GroupingExpression) expressionNode()      {}

// MemberExpression is `receiver.name` property access.
type MemberExpression struct {
	Receiver Expression
	Name     string
}

func (e *MemberExpression) TokenLiteral() string { return "." }
func (e *MemberExpression) expressionNode()      {}

// IndexExpression is `receiver[index]`.
type IndexExpression struct {
	Receiver Expression
	Index    Expression
}

func (e *IndexExpression) TokenLiteral() string { return "[" }
func (e *IndexExpression) expressionNode()      {}

// CallExpression is `callee(args...)`.
type CallExpression struct {
	Callee Expression
	Args   []Expression
}

func (e *CallExpression) TokenLiteral() string { return "(" }
func (e *CallExpression) expressionNode()      {}

// AssignExpression covers `target = value`, where target is an
// Identifier, MemberExpression, or IndexExpression.
type AssignExpression struct {
	Target Expression
	Value  Expression
}

func (e *AssignExpression) TokenLiteral() string { return "=" }
func (e *AssignExpression) expressionNode()      {}

// ObjectLiteral is `{ "k": v, ... }`.
type ObjectLiteral struct {
	Keys   []string
	Values []Expression
}

func (e *ObjectLiteral) TokenLiteral() string { return "{" }
func (e *ObjectLiteral) expressionNode()      {}

type ArrayLiteral struct{ Elements []Expression }

func (e *ArrayLiteral) TokenLiteral() string { return "[" }
func (e *ArrayLiteral) expressionNode()      {}

// LambdaExpression is an anonymous function expression.
type LambdaExpression struct {
	Params     []Param
	ReturnType string
	Body       *Block
}

func (e *LambdaExpression) TokenLiteral() string { return "fun" }
func (e *LambdaExpression) expressionNode()      {}

// TernaryExpression is `cond ? then : otherwise` (SPEC_FULL.md §4).
type TernaryExpression struct {
	Condition Expression
	Then      Expression
	Else      Expression
}

func (e *TernaryExpression) TokenLiteral() string { return "?" }
func (e *TernaryExpression) expressionNode()      {}

// Token is a minimal position-carrying identifier token, used where the
// AST needs to report a source location (e.g. VarStatement.Name) without
// pulling in the full lexer token type.
type Token struct {
	Literal string
	Line    int
	Column  int
}
