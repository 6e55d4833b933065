// Package parser implements a recursive-descent, Pratt-style parser that
// turns a Neutron token stream into the pkg/ast tree pkg/compiler consumes.
// As with pkg/lexer, this is kept only deep enough to exercise the
// compiler; the grammar itself is not part of the specified surface.
package parser

import (
	"fmt"
	"strconv"

	"github.com/yasakei/neutron/pkg/ast"
	"github.com/yasakei/neutron/pkg/lexer"
)

type precedence int

const (
	precNone precedence = iota
	precAssignment
	precTernary
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precComparison
	precShift
	precTerm
	precFactor
	precUnary
	precCall
)

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser converts a token stream into an *ast.Program.
type Parser struct {
	l       *lexer.Lexer
	curTok  lexer.Token
	peekTok lexer.Token
	errors  []string

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
	precs     map[lexer.TokenType]precedence
}

// New constructs a Parser over source.
func New(source string) *Parser {
	p := &Parser{l: lexer.New(source)}
	p.nextToken()
	p.nextToken()

	p.prefixFns = map[lexer.TokenType]prefixParseFn{
		lexer.TokenInteger:    p.parseIntegerLiteral,
		lexer.TokenFloat:      p.parseFloatLiteral,
		lexer.TokenString:     p.parseStringLiteral,
		lexer.TokenTrue:       func() ast.Expression { p.nextToken(); return &ast.BooleanLiteral{Value: true} },
		lexer.TokenFalse:      func() ast.Expression { p.nextToken(); return &ast.BooleanLiteral{Value: false} },
		lexer.TokenNil:        func() ast.Expression { p.nextToken(); return &ast.NilLiteral{} },
		lexer.TokenThis:       func() ast.Expression { p.nextToken(); return &ast.ThisExpression{} },
		lexer.TokenSuper:      func() ast.Expression { p.nextToken(); return &ast.Identifier{Name: "super"} },
		lexer.TokenIdentifier: p.parseIdentifier,
		lexer.TokenLParen:     p.parseGrouping,
		lexer.TokenLBracket:   p.parseArrayLiteral,
		lexer.TokenLBrace:     p.parseObjectLiteral,
		lexer.TokenMinus:      p.parseUnary,
		lexer.TokenBang:       p.parseUnary,
		lexer.TokenNot:        p.parseUnary,
		lexer.TokenFun:        p.parseLambda,
	}

	p.infixFns = map[lexer.TokenType]infixParseFn{
		lexer.TokenPlus:       p.parseBinary,
		lexer.TokenMinus:      p.parseBinary,
		lexer.TokenStar:       p.parseBinary,
		lexer.TokenSlash:      p.parseBinary,
		lexer.TokenPercent:    p.parseBinary,
		lexer.TokenEqual:      p.parseBinary,
		lexer.TokenNotEqual:   p.parseBinary,
		lexer.TokenLess:       p.parseBinary,
		lexer.TokenGreater:    p.parseBinary,
		lexer.TokenLessEq:     p.parseBinary,
		lexer.TokenGreaterEq:  p.parseBinary,
		lexer.TokenAnd:        p.parseBinary,
		lexer.TokenOr:         p.parseBinary,
		lexer.TokenAmp:        p.parseBinary,
		lexer.TokenPipe:       p.parseBinary,
		lexer.TokenCaret:      p.parseBinary,
		lexer.TokenShl:        p.parseBinary,
		lexer.TokenShr:        p.parseBinary,
		lexer.TokenLParen:     p.parseCall,
		lexer.TokenDot:        p.parseMember,
		lexer.TokenLBracket:   p.parseIndex,
		lexer.TokenAssign:     p.parseAssign,
		lexer.TokenQuestion:   p.parseTernary,
	}

	p.precs = map[lexer.TokenType]precedence{
		lexer.TokenAssign:    precAssignment,
		lexer.TokenQuestion:  precTernary,
		lexer.TokenOr:        precOr,
		lexer.TokenAnd:       precAnd,
		lexer.TokenPipe:      precBitOr,
		lexer.TokenCaret:     precBitXor,
		lexer.TokenAmp:       precBitAnd,
		lexer.TokenEqual:     precEquality,
		lexer.TokenNotEqual:  precEquality,
		lexer.TokenLess:      precComparison,
		lexer.TokenGreater:   precComparison,
		lexer.TokenLessEq:    precComparison,
		lexer.TokenGreaterEq: precComparison,
		lexer.TokenShl:       precShift,
		lexer.TokenShr:       precShift,
		lexer.TokenPlus:      precTerm,
		lexer.TokenMinus:     precTerm,
		lexer.TokenStar:      precFactor,
		lexer.TokenSlash:     precFactor,
		lexer.TokenPercent:   precFactor,
		lexer.TokenLParen:    precCall,
		lexer.TokenDot:       precCall,
		lexer.TokenLBracket:  precCall,
	}
	return p
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.l.NextToken()
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: %s", p.curTok.Line, msg))
}

// Errors returns accumulated parse errors.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) expect(tt lexer.TokenType, what string) bool {
	if p.curTok.Type == tt {
		return true
	}
	p.addError(fmt.Sprintf("expected %s, got %q", what, p.curTok.Literal))
	return false
}

func (p *Parser) expectAndAdvance(tt lexer.TokenType, what string) {
	if p.expect(tt, what) {
		p.nextToken()
	}
}

func (p *Parser) peekPrecedence() precedence {
	if pr, ok := p.precs[p.curTok.Type]; ok {
		return pr
	}
	return precNone
}

// Parse consumes the entire token stream and returns the resulting
// Program, or an error aggregating every parse failure encountered.
func (p *Parser) Parse() (*ast.Program, error) {
	program := &ast.Program{}
	for p.curTok.Type != lexer.TokenEOF {
		if stmt := p.parseStatement(); stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}
	if len(p.errors) > 0 {
		return program, fmt.Errorf("parser errors: %v", p.errors)
	}
	return program, nil
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curTok.Type {
	case lexer.TokenVar:
		return p.parseVarStatement()
	case lexer.TokenSay:
		return p.parseSayStatement()
	case lexer.TokenLBrace:
		return p.parseBlock()
	case lexer.TokenIf:
		return p.parseIfStatement()
	case lexer.TokenWhile:
		return p.parseWhileStatement()
	case lexer.TokenDo:
		return p.parseDoWhileStatement()
	case lexer.TokenFor:
		return p.parseForStatement()
	case lexer.TokenUse:
		return p.parseUseStatement()
	case lexer.TokenUsing:
		return p.parseUsingStatement()
	case lexer.TokenFun:
		return p.parseFunStatement()
	case lexer.TokenReturn:
		return p.parseReturnStatement()
	case lexer.TokenClass:
		return p.parseClassStatement()
	case lexer.TokenBreak:
		p.nextToken()
		p.skipSemicolon()
		return &ast.BreakStatement{}
	case lexer.TokenContinue:
		p.nextToken()
		p.skipSemicolon()
		return &ast.ContinueStatement{}
	case lexer.TokenMatch:
		return p.parseMatchStatement()
	case lexer.TokenTry:
		return p.parseTryStatement()
	case lexer.TokenThrow:
		return p.parseThrowStatement()
	case lexer.TokenRetry:
		p.nextToken()
		p.skipSemicolon()
		return &ast.RetryStatement{}
	case lexer.TokenSafe:
		return p.parseSafeStatement()
	default:
		expr := p.parseExpression(precAssignment)
		p.skipSemicolon()
		if expr == nil {
			return nil
		}
		return &ast.ExpressionStatement{Expr: expr}
	}
}

func (p *Parser) skipSemicolon() {
	if p.curTok.Type == lexer.TokenSemicolon {
		p.nextToken()
	}
}

func (p *Parser) parseVarStatement() ast.Statement {
	p.nextToken() // 'var'
	if !p.expect(lexer.TokenIdentifier, "identifier") {
		return nil
	}
	name := ast.Token{Literal: p.curTok.Literal, Line: p.curTok.Line, Column: p.curTok.Column}
	p.nextToken()

	typ := ""
	if p.curTok.Type == lexer.TokenColon {
		p.nextToken()
		if !p.expect(lexer.TokenIdentifier, "type name") {
			return nil
		}
		typ = p.curTok.Literal
		p.nextToken()
	}

	var init ast.Expression
	if p.curTok.Type == lexer.TokenAssign {
		p.nextToken()
		init = p.parseExpression(precAssignment)
	}
	p.skipSemicolon()
	return &ast.VarStatement{Name: name, Type: typ, Init: init}
}

func (p *Parser) parseSayStatement() ast.Statement {
	p.nextToken() // 'say'
	p.expectAndAdvance(lexer.TokenLParen, "(")
	value := p.parseExpression(precAssignment)
	p.expectAndAdvance(lexer.TokenRParen, ")")
	p.skipSemicolon()
	return &ast.SayStatement{Value: value}
}

func (p *Parser) parseBlock() *ast.Block {
	p.expectAndAdvance(lexer.TokenLBrace, "{")
	block := &ast.Block{}
	for p.curTok.Type != lexer.TokenRBrace && p.curTok.Type != lexer.TokenEOF {
		if stmt := p.parseStatement(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}
	p.expectAndAdvance(lexer.TokenRBrace, "}")
	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{}
	p.nextToken() // 'if'
	p.expectAndAdvance(lexer.TokenLParen, "(")
	cond := p.parseExpression(precAssignment)
	p.expectAndAdvance(lexer.TokenRParen, ")")
	stmt.Conditions = append(stmt.Conditions, cond)
	stmt.Branches = append(stmt.Branches, p.parseBlock())

	for p.curTok.Type == lexer.TokenElif {
		p.nextToken()
		p.expectAndAdvance(lexer.TokenLParen, "(")
		c := p.parseExpression(precAssignment)
		p.expectAndAdvance(lexer.TokenRParen, ")")
		stmt.Conditions = append(stmt.Conditions, c)
		stmt.Branches = append(stmt.Branches, p.parseBlock())
	}
	if p.curTok.Type == lexer.TokenElse {
		p.nextToken()
		stmt.Else = p.parseBlock()
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	p.nextToken() // 'while'
	p.expectAndAdvance(lexer.TokenLParen, "(")
	cond := p.parseExpression(precAssignment)
	p.expectAndAdvance(lexer.TokenRParen, ")")
	return &ast.WhileStatement{Condition: cond, Body: p.parseBlock()}
}

func (p *Parser) parseDoWhileStatement() ast.Statement {
	p.nextToken() // 'do'
	body := p.parseBlock()
	p.expectAndAdvance(lexer.TokenWhile, "while")
	p.expectAndAdvance(lexer.TokenLParen, "(")
	cond := p.parseExpression(precAssignment)
	p.expectAndAdvance(lexer.TokenRParen, ")")
	p.skipSemicolon()
	return &ast.DoWhileStatement{Body: body, Condition: cond}
}

func (p *Parser) parseForStatement() ast.Statement {
	p.nextToken() // 'for'
	p.expectAndAdvance(lexer.TokenLParen, "(")

	var init ast.Statement
	if p.curTok.Type != lexer.TokenSemicolon {
		init = p.parseStatement()
	} else {
		p.nextToken()
	}

	var cond ast.Expression
	if p.curTok.Type != lexer.TokenSemicolon {
		cond = p.parseExpression(precAssignment)
	}
	p.expectAndAdvance(lexer.TokenSemicolon, ";")

	var incr ast.Expression
	if p.curTok.Type != lexer.TokenRParen {
		incr = p.parseExpression(precAssignment)
	}
	p.expectAndAdvance(lexer.TokenRParen, ")")

	return &ast.ForStatement{Init: init, Condition: cond, Increment: incr, Body: p.parseBlock()}
}

func (p *Parser) parseUseStatement() ast.Statement {
	p.nextToken() // 'use'
	if !p.expect(lexer.TokenIdentifier, "module name") {
		return nil
	}
	name := p.curTok.Literal
	p.nextToken()
	p.skipSemicolon()
	return &ast.UseStatement{Name: name}
}

func (p *Parser) parseUsingStatement() ast.Statement {
	p.nextToken() // 'using'
	if !p.expect(lexer.TokenString, "file path string") {
		return nil
	}
	path := p.curTok.Literal
	p.nextToken()
	p.skipSemicolon()
	return &ast.UsingStatement{Path: path}
}

func (p *Parser) parseParams() []ast.Param {
	p.expectAndAdvance(lexer.TokenLParen, "(")
	var params []ast.Param
	for p.curTok.Type != lexer.TokenRParen && p.curTok.Type != lexer.TokenEOF {
		if !p.expect(lexer.TokenIdentifier, "parameter name") {
			break
		}
		param := ast.Param{Name: p.curTok.Literal}
		p.nextToken()
		if p.curTok.Type == lexer.TokenColon {
			p.nextToken()
			if p.expect(lexer.TokenIdentifier, "type name") {
				param.Type = p.curTok.Literal
				p.nextToken()
			}
		}
		params = append(params, param)
		if p.curTok.Type == lexer.TokenComma {
			p.nextToken()
		}
	}
	p.expectAndAdvance(lexer.TokenRParen, ")")
	return params
}

func (p *Parser) parseReturnType() string {
	if p.curTok.Type == lexer.TokenColon {
		p.nextToken()
		if p.expect(lexer.TokenIdentifier, "return type") {
			t := p.curTok.Literal
			p.nextToken()
			return t
		}
	}
	return ""
}

func (p *Parser) parseFunStatement() ast.Statement {
	p.nextToken() // 'fun'
	if !p.expect(lexer.TokenIdentifier, "function name") {
		return nil
	}
	name := p.curTok.Literal
	p.nextToken()
	params := p.parseParams()
	retType := p.parseReturnType()
	body := p.parseBlock()
	return &ast.FunStatement{Name: name, Params: params, ReturnType: retType, Body: body}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	p.nextToken() // 'return'
	if p.curTok.Type == lexer.TokenSemicolon || p.curTok.Type == lexer.TokenRBrace {
		p.skipSemicolon()
		return &ast.ReturnStatement{}
	}
	value := p.parseExpression(precAssignment)
	p.skipSemicolon()
	return &ast.ReturnStatement{Value: value}
}

func (p *Parser) parseClassStatement() ast.Statement {
	p.nextToken() // 'class'
	if !p.expect(lexer.TokenIdentifier, "class name") {
		return nil
	}
	name := p.curTok.Literal
	p.nextToken()

	super := ""
	if p.curTok.Type == lexer.TokenExtends {
		p.nextToken()
		if p.expect(lexer.TokenIdentifier, "superclass name") {
			super = p.curTok.Literal
			p.nextToken()
		}
	}

	p.expectAndAdvance(lexer.TokenLBrace, "{")
	var methods []*ast.FunStatement
	for p.curTok.Type != lexer.TokenRBrace && p.curTok.Type != lexer.TokenEOF {
		if !p.expect(lexer.TokenIdentifier, "method name") {
			p.nextToken()
			continue
		}
		mname := p.curTok.Literal
		p.nextToken()
		params := p.parseParams()
		retType := p.parseReturnType()
		body := p.parseBlock()
		methods = append(methods, &ast.FunStatement{Name: mname, Params: params, ReturnType: retType, Body: body})
	}
	p.expectAndAdvance(lexer.TokenRBrace, "}")
	return &ast.ClassStatement{Name: name, SuperName: super, Methods: methods}
}

func (p *Parser) parseMatchStatement() ast.Statement {
	p.nextToken() // 'match'
	p.expectAndAdvance(lexer.TokenLParen, "(")
	subject := p.parseExpression(precAssignment)
	p.expectAndAdvance(lexer.TokenRParen, ")")
	p.expectAndAdvance(lexer.TokenLBrace, "{")

	stmt := &ast.MatchStatement{Subject: subject}
	for p.curTok.Type != lexer.TokenRBrace && p.curTok.Type != lexer.TokenEOF {
		if p.curTok.Type == lexer.TokenCase {
			p.nextToken()
			val := p.parseExpression(precAssignment)
			p.expectAndAdvance(lexer.TokenArrow, "=>")
			body := p.parseBlock()
			stmt.Cases = append(stmt.Cases, ast.MatchCase{Value: val, Body: body})
		} else if p.curTok.Type == lexer.TokenDefault {
			p.nextToken()
			p.expectAndAdvance(lexer.TokenArrow, "=>")
			stmt.Default = p.parseBlock()
		} else {
			p.addError(fmt.Sprintf("expected case/default in match, got %q", p.curTok.Literal))
			p.nextToken()
		}
	}
	p.expectAndAdvance(lexer.TokenRBrace, "}")
	return stmt
}

func (p *Parser) parseTryStatement() ast.Statement {
	p.nextToken() // 'try'
	stmt := &ast.TryStatement{Try: p.parseBlock()}

	if p.curTok.Type == lexer.TokenCatch {
		p.nextToken()
		stmt.HasCatch = true
		if p.curTok.Type == lexer.TokenLParen {
			p.nextToken()
			if p.expect(lexer.TokenIdentifier, "catch binding name") {
				stmt.CatchName = p.curTok.Literal
				p.nextToken()
			}
			p.expectAndAdvance(lexer.TokenRParen, ")")
		}
		stmt.Catch = p.parseBlock()
	}
	if p.curTok.Type == lexer.TokenFinally {
		p.nextToken()
		stmt.HasFinally = true
		stmt.Finally = p.parseBlock()
	}
	if !stmt.HasCatch && !stmt.HasFinally {
		p.addError("try block requires a catch or finally clause")
	}
	return stmt
}

func (p *Parser) parseThrowStatement() ast.Statement {
	p.nextToken() // 'throw'
	value := p.parseExpression(precAssignment)
	p.skipSemicolon()
	return &ast.ThrowStatement{Value: value}
}

func (p *Parser) parseSafeStatement() ast.Statement {
	p.nextToken() // 'safe'
	return &ast.SafeStatement{Body: p.parseBlock()}
}

// --- expressions ---

func (p *Parser) parseExpression(prec precedence) ast.Expression {
	prefix, ok := p.prefixFns[p.curTok.Type]
	if !ok {
		p.addError(fmt.Sprintf("unexpected token %q", p.curTok.Literal))
		p.nextToken()
		return nil
	}
	left := prefix()

	for p.curTok.Type != lexer.TokenSemicolon &&
		(prec < p.peekPrecedence() || (prec == precAssignment && p.curTok.Type == lexer.TokenAssign)) {
		infix, ok := p.infixFns[p.curTok.Type]
		if !ok {
			return left
		}
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	v, err := strconv.ParseFloat(p.curTok.Literal, 64)
	if err != nil {
		p.addError(fmt.Sprintf("invalid integer %q", p.curTok.Literal))
	}
	p.nextToken()
	return &ast.IntegerLiteral{Value: v}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	v, err := strconv.ParseFloat(p.curTok.Literal, 64)
	if err != nil {
		p.addError(fmt.Sprintf("invalid float %q", p.curTok.Literal))
	}
	p.nextToken()
	return &ast.FloatLiteral{Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	v := p.curTok.Literal
	p.nextToken()
	return &ast.StringLiteral{Value: v}
}

func (p *Parser) parseIdentifier() ast.Expression {
	v := p.curTok.Literal
	p.nextToken()
	return &ast.Identifier{Name: v}
}

func (p *Parser) parseGrouping() ast.Expression {
	p.nextToken() // '('
	inner := p.parseExpression(precAssignment)
	p.expectAndAdvance(lexer.TokenRParen, ")")
	return &ast.GroupingExpression{Inner: inner}
}

func (p *Parser) parseUnary() ast.Expression {
	op := p.curTok.Literal
	p.nextToken()
	operand := p.parseExpression(precUnary)
	return &ast.UnaryExpression{Op: op, Operand: operand}
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	op := p.curTok.Literal
	prec := p.peekPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	return &ast.BinaryExpression{Left: left, Op: op, Right: right}
}

func (p *Parser) parseTernary(cond ast.Expression) ast.Expression {
	p.nextToken() // '?'
	then := p.parseExpression(precAssignment)
	p.expectAndAdvance(lexer.TokenColon, ":")
	els := p.parseExpression(precAssignment)
	return &ast.TernaryExpression{Condition: cond, Then: then, Else: els}
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	p.nextToken() // '('
	var args []ast.Expression
	for p.curTok.Type != lexer.TokenRParen && p.curTok.Type != lexer.TokenEOF {
		args = append(args, p.parseExpression(precAssignment))
		if p.curTok.Type == lexer.TokenComma {
			p.nextToken()
		}
	}
	p.expectAndAdvance(lexer.TokenRParen, ")")
	return &ast.CallExpression{Callee: callee, Args: args}
}

func (p *Parser) parseMember(receiver ast.Expression) ast.Expression {
	p.nextToken() // '.'
	if !p.expect(lexer.TokenIdentifier, "property name") {
		return receiver
	}
	name := p.curTok.Literal
	p.nextToken()
	return &ast.MemberExpression{Receiver: receiver, Name: name}
}

func (p *Parser) parseIndex(receiver ast.Expression) ast.Expression {
	p.nextToken() // '['
	idx := p.parseExpression(precAssignment)
	p.expectAndAdvance(lexer.TokenRBracket, "]")
	return &ast.IndexExpression{Receiver: receiver, Index: idx}
}

func (p *Parser) parseAssign(target ast.Expression) ast.Expression {
	p.nextToken() // '='
	value := p.parseExpression(precAssignment)
	return &ast.AssignExpression{Target: target, Value: value}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	p.nextToken() // '['
	lit := &ast.ArrayLiteral{}
	for p.curTok.Type != lexer.TokenRBracket && p.curTok.Type != lexer.TokenEOF {
		lit.Elements = append(lit.Elements, p.parseExpression(precAssignment))
		if p.curTok.Type == lexer.TokenComma {
			p.nextToken()
		}
	}
	p.expectAndAdvance(lexer.TokenRBracket, "]")
	return lit
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	p.nextToken() // '{'
	lit := &ast.ObjectLiteral{}
	for p.curTok.Type != lexer.TokenRBrace && p.curTok.Type != lexer.TokenEOF {
		var key string
		switch p.curTok.Type {
		case lexer.TokenString:
			key = p.curTok.Literal
		case lexer.TokenIdentifier:
			key = p.curTok.Literal
		default:
			p.addError(fmt.Sprintf("expected object key, got %q", p.curTok.Literal))
		}
		p.nextToken()
		p.expectAndAdvance(lexer.TokenColon, ":")
		val := p.parseExpression(precAssignment)
		lit.Keys = append(lit.Keys, key)
		lit.Values = append(lit.Values, val)
		if p.curTok.Type == lexer.TokenComma {
			p.nextToken()
		}
	}
	p.expectAndAdvance(lexer.TokenRBrace, "}")
	return lit
}

func (p *Parser) parseLambda() ast.Expression {
	p.nextToken() // 'fun'
	params := p.parseParams()
	retType := p.parseReturnType()
	body := p.parseBlock()
	return &ast.LambdaExpression{Params: params, ReturnType: retType, Body: body}
}
