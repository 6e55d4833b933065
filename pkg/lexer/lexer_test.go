package lexer

import "testing"

func TestNextTokenPunctuation(t *testing.T) {
	input := `( ) { } [ ] , . ; : ? + - * / %`

	want := []TokenType{
		TokenLParen, TokenRParen, TokenLBrace, TokenRBrace,
		TokenLBracket, TokenRBracket, TokenComma, TokenDot,
		TokenSemicolon, TokenColon, TokenQuestion,
		TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenPercent,
		TokenEOF,
	}

	l := New(input)
	for i, wantType := range want {
		tok := l.NextToken()
		if tok.Type != wantType {
			t.Fatalf("token %d: got type %v, want %v (literal %q)", i, tok.Type, wantType, tok.Literal)
		}
	}
}

func TestNextTokenOperators(t *testing.T) {
	input := `= == != < <= > >= ! & | ^ << >> =>`
	want := []TokenType{
		TokenAssign, TokenEqual, TokenNotEqual,
		TokenLess, TokenLessEq, TokenGreater, TokenGreaterEq,
		TokenBang, TokenAmp, TokenPipe, TokenCaret, TokenShl, TokenShr,
		TokenArrow, TokenEOF,
	}

	l := New(input)
	for i, wantType := range want {
		tok := l.NextToken()
		if tok.Type != wantType {
			t.Fatalf("token %d: got type %v, want %v (literal %q)", i, tok.Type, wantType, tok.Literal)
		}
	}
}

func TestNextTokenKeywords(t *testing.T) {
	input := "var fun return if elif else while for class extends this super say use using try catch finally throw and or not"
	want := []TokenType{
		TokenVar, TokenFun, TokenReturn, TokenIf, TokenElif, TokenElse,
		TokenWhile, TokenFor, TokenClass, TokenExtends, TokenThis, TokenSuper,
		TokenSay, TokenUse, TokenUsing, TokenTry, TokenCatch, TokenFinally,
		TokenThrow, TokenAnd, TokenOr, TokenNot, TokenEOF,
	}

	l := New(input)
	for i, wantType := range want {
		tok := l.NextToken()
		if tok.Type != wantType {
			t.Fatalf("token %d: got type %v, want %v (literal %q)", i, tok.Type, wantType, tok.Literal)
		}
	}
}

func TestNextTokenIdentifierVsKeyword(t *testing.T) {
	l := New("classify")
	tok := l.NextToken()
	if tok.Type != TokenIdentifier || tok.Literal != "classify" {
		t.Errorf("got %v %q, want identifier \"classify\" (must not match the \"class\" keyword as a prefix)", tok.Type, tok.Literal)
	}
}

func TestNextTokenIntegerAndFloat(t *testing.T) {
	l := New("42 3.14")
	tok := l.NextToken()
	if tok.Type != TokenInteger || tok.Literal != "42" {
		t.Errorf("got %v %q, want integer \"42\"", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != TokenFloat || tok.Literal != "3.14" {
		t.Errorf("got %v %q, want float \"3.14\"", tok.Type, tok.Literal)
	}
}

func TestNextTokenStringEscapes(t *testing.T) {
	l := New(`"line1\nline2\ttabbed\"quoted\""`)
	tok := l.NextToken()
	want := "line1\nline2\ttabbed\"quoted\""
	if tok.Type != TokenString || tok.Literal != want {
		t.Errorf("got %v %q, want string %q", tok.Type, tok.Literal, want)
	}
}

func TestNextTokenLineAndBlockComments(t *testing.T) {
	input := `
		// a line comment
		1 /* a
		block comment */ 2
	`
	l := New(input)
	tok := l.NextToken()
	if tok.Type != TokenInteger || tok.Literal != "1" {
		t.Fatalf("got %v %q, want integer \"1\"", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != TokenInteger || tok.Literal != "2" {
		t.Fatalf("got %v %q, want integer \"2\"", tok.Type, tok.Literal)
	}
}

func TestTokenizeStopsAtIllegalToken(t *testing.T) {
	l := New("1 + @")
	tokens, err := l.Tokenize()
	if err == nil {
		t.Fatal("expected an error for the illegal '@' token")
	}
	last := tokens[len(tokens)-1]
	if last.Type != TokenIllegal || last.Literal != "@" {
		t.Errorf("got last token %v %q, want illegal \"@\"", last.Type, last.Literal)
	}
}

func TestTokenizeProgram(t *testing.T) {
	l := New(`fun add(a, b) { return a + b; }`)
	tokens, err := l.Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Type != TokenFun {
		t.Fatalf("expected first token to be TokenFun, got %v", tokens[0].Type)
	}
	if tokens[len(tokens)-1].Type != TokenEOF {
		t.Errorf("expected last token to be TokenEOF, got %v", tokens[len(tokens)-1].Type)
	}
}
