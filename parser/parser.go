// Package parser implements a recursive-descent, precedence-climbing
// parser that turns a token stream into a typed ast.
//
// Grounded on the original implementation's Parser.c (advance/peek/
// check/match/consume, the synchronizing-error-recovery flag, and the
// dataType() specifier parser) and src2/Compiler.h's grammar-function
// list for the full precedence ladder: assignment, logical-and,
// logical-or, bitwise-or, xor, and, equality, relational, shift,
// additive, multiplicative, unary, postfix, primary.
package parser

import (
	"github.com/skx/cc/ast"
	"github.com/skx/cc/diag"
	"github.com/skx/cc/lexer"
	"github.com/skx/cc/token"
	"github.com/skx/cc/types"
)

// Parser holds parsing state: the lexer it pulls tokens from one
// ahead at a time, and the diagnostic bag errors are reported into.
type Parser struct {
	lex *lexer.Lexer

	current  token.Token
	previous token.Token
	peeked   *token.Token

	diags         *diag.Bag
	synchronizing bool

	// symbols tracks each declared variable's type through parsing, so
	// that an Identifier node can carry its resolved C type the first
	// time it's built rather than needing a second pass. Innermost
	// scope is the last element.
	symbols []map[string]types.DataType
}

// New creates a Parser reading from lex and reporting into diags.
func New(lex *lexer.Lexer, diags *diag.Bag) *Parser {
	p := &Parser{lex: lex, diags: diags}
	p.pushScope()
	p.advance()
	return p
}

func (p *Parser) pushScope() {
	p.symbols = append(p.symbols, make(map[string]types.DataType))
}

func (p *Parser) popScope() {
	p.symbols = p.symbols[:len(p.symbols)-1]
}

func (p *Parser) declareSymbol(name string, dt types.DataType) {
	p.symbols[len(p.symbols)-1][name] = dt
}

func (p *Parser) resolveSymbol(name string) types.DataType {
	for i := len(p.symbols) - 1; i >= 0; i-- {
		if dt, ok := p.symbols[i][name]; ok {
			return dt
		}
	}
	return types.IntType
}

func (p *Parser) advance() {
	if p.current.Kind == token.EOF {
		return
	}
	p.previous = p.current
	if p.peeked != nil {
		p.current = *p.peeked
		p.peeked = nil
	} else {
		p.current = p.lex.NextToken()
	}
	if p.current.Kind == token.ERROR {
		p.errorAt(p.current, "%s", p.current.Literal)
	}
}

// peek returns the token after current without consuming it, buffering
// one token of lookahead. Used only to disambiguate a cast `(type)x`
// from a parenthesised expression `(x)`, both of which start with '('.
func (p *Parser) peek() token.Token {
	if p.peeked == nil {
		t := p.lex.NextToken()
		p.peeked = &t
	}
	return *p.peeked
}

func (p *Parser) atEnd() bool {
	return p.current.Kind == token.EOF
}

func (p *Parser) check(kind token.Kind) bool {
	return p.current.Kind == kind
}

func (p *Parser) match(kind token.Kind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(kind token.Kind, message string) token.Token {
	if p.check(kind) {
		tok := p.current
		p.advance()
		return tok
	}
	p.errorAt(p.current, "%s", message)
	return p.current
}

func (p *Parser) errorAt(tok token.Token, format string, args ...any) {
	if p.synchronizing {
		return
	}
	p.synchronizing = true
	p.diags.Errorf(tok.Line, tok.Col, len(tok.Literal), format, args...)
}

// synchronize discards tokens until it finds one that plausibly starts
// a new statement, so one parse error doesn't cascade into dozens.
func (p *Parser) synchronize() {
	p.synchronizing = false
	for !p.atEnd() {
		if p.previous.Kind == token.SEMICOLON {
			return
		}
		switch p.current.Kind {
		case token.IF, token.WHILE, token.FOR, token.DO, token.RETURN,
			token.INT, token.CHAR, token.FLOAT, token.DOUBLE, token.LBRACE:
			return
		}
		p.advance()
	}
}

// ParseProgram parses a whole translation unit as a flat sequence of
// top-level statements, the way the compiled program's single _start
// body executes them.
func ParseProgram(lex *lexer.Lexer, diags *diag.Bag) []ast.Stmt {
	p := New(lex, diags)
	var stmts []ast.Stmt
	for !p.atEnd() {
		stmt := p.declarationOrStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.synchronizing {
			p.synchronize()
		}
	}
	return stmts
}

func (p *Parser) declarationOrStatement() ast.Stmt {
	if token.IsTypeStart(p.current.Kind) {
		return p.variableDeclaration()
	}
	return p.statement()
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.LBRACE):
		return p.block()
	case p.match(token.IF):
		return p.ifStatement()
	case p.match(token.WHILE):
		return p.whileStatement()
	case p.match(token.DO):
		return p.doWhileStatement()
	case p.match(token.FOR):
		return p.forStatement()
	case p.match(token.RETURN):
		return p.returnStatement()
	case p.match(token.BREAK):
		tok := p.previous
		p.consume(token.SEMICOLON, "expected ';' after 'break'")
		return &ast.BreakStmt{Token: tok}
	case p.match(token.CONTINUE):
		tok := p.previous
		p.consume(token.SEMICOLON, "expected ';' after 'continue'")
		return &ast.ContinueStmt{Token: tok}
	case p.check(token.PUTCHAR):
		return p.putcharStatement()
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) block() ast.Stmt {
	p.pushScope()
	defer p.popScope()

	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.atEnd() {
		stmts = append(stmts, p.declarationOrStatement())
		if p.synchronizing {
			p.synchronize()
		}
	}
	p.consume(token.RBRACE, "expected '}' after block")
	return &ast.BlockStmt{Stmts: stmts}
}

func (p *Parser) ifStatement() ast.Stmt {
	p.consume(token.LPAREN, "expected '(' after 'if'")
	cond := p.expression()
	p.consume(token.RPAREN, "expected ')' after if condition")
	then := p.statement()

	var elseStmt ast.Stmt
	if p.match(token.ELSE) {
		elseStmt = p.statement()
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: elseStmt}
}

func (p *Parser) whileStatement() ast.Stmt {
	p.consume(token.LPAREN, "expected '(' after 'while'")
	cond := p.expression()
	p.consume(token.RPAREN, "expected ')' after while condition")
	body := p.statement()
	return &ast.WhileStmt{Cond: cond, Body: body}
}

func (p *Parser) doWhileStatement() ast.Stmt {
	body := p.statement()
	p.consume(token.WHILE, "expected 'while' after 'do' body")
	p.consume(token.LPAREN, "expected '(' after 'while'")
	cond := p.expression()
	p.consume(token.RPAREN, "expected ')' after do/while condition")
	p.consume(token.SEMICOLON, "expected ';' after do/while statement")
	return &ast.DoWhileStmt{Body: body, Cond: cond}
}

// forStatement desugars `for (init; cond; iter) body` into a block
// holding the init statement followed by a while loop whose body is
// `{ body; iter; }`, per spec.md §4.2. A missing condition becomes the
// integer literal `1`. The init clause gets its own scope (pushed here,
// not by block()) so a declared loop variable doesn't leak past the
// loop but is still visible to cond/iter/body.
func (p *Parser) forStatement() ast.Stmt {
	p.pushScope()
	defer p.popScope()

	p.consume(token.LPAREN, "expected '(' after 'for'")

	var init ast.Stmt
	switch {
	case p.match(token.SEMICOLON):
		// no init clause
	case token.IsTypeStart(p.current.Kind):
		init = p.variableDeclaration()
	default:
		init = p.expressionStatement()
	}

	var cond ast.Expr
	if p.check(token.SEMICOLON) {
		cond = &ast.NumberLit{
			Token:    token.Token{Kind: token.INT_CONST, Literal: "1", IntValue: 1},
			DataType: types.IntType,
		}
	} else {
		cond = p.expression()
	}
	p.consume(token.SEMICOLON, "expected ';' after for-loop condition")

	var iter ast.Expr
	if !p.check(token.RPAREN) {
		iter = p.expression()
	}
	p.consume(token.RPAREN, "expected ')' after for-loop clauses")

	body := p.statement()

	bodyStmts := []ast.Stmt{body}
	if iter != nil {
		bodyStmts = append(bodyStmts, &ast.ExprStmt{X: iter})
	}
	loop := &ast.WhileStmt{Cond: cond, Body: &ast.BlockStmt{Stmts: bodyStmts}}

	if init == nil {
		return loop
	}
	return &ast.BlockStmt{Stmts: []ast.Stmt{init, loop}}
}

func (p *Parser) returnStatement() ast.Stmt {
	tok := p.previous
	if p.match(token.SEMICOLON) {
		return &ast.ReturnStmt{Token: tok}
	}
	val := p.expression()
	p.consume(token.SEMICOLON, "expected ';' after return value")
	return &ast.ReturnStmt{Token: tok, Value: val}
}

func (p *Parser) putcharStatement() ast.Stmt {
	tok := p.current
	p.advance()
	p.consume(token.LPAREN, "expected '(' after 'putchar'")
	arg := p.expression()
	p.consume(token.RPAREN, "expected ')' after putchar argument")
	p.consume(token.SEMICOLON, "expected ';' after putchar statement")
	return &ast.PutcharStmt{Token: tok, X: arg}
}

func (p *Parser) expressionStatement() ast.Stmt {
	expr := p.expression()
	p.consume(token.SEMICOLON, "expected ';' after expression")
	return &ast.ExprStmt{X: expr}
}

func (p *Parser) variableDeclaration() ast.Stmt {
	dt := p.dataType()
	name := p.consume(token.IDENT, "expected variable name")

	var init ast.Expr
	if p.match(token.ASSIGN) {
		init = p.expression()
	}
	p.consume(token.SEMICOLON, "expected ';' after variable declaration")
	p.declareSymbol(name.Literal, dt)
	return &ast.VarDecl{Name: name, DataType: dt, Initializer: init}
}

// dataType parses a type specifier sequence: any number of `const`/
// `volatile` qualifiers (accepted but not tracked, since this codegen
// never distinguishes a qualified type from its unqualified form), an
// optional signedness, then the base type keyword(s).
func (p *Parser) dataType() types.DataType {
	for p.match(token.CONST) || p.match(token.VOLATILE) {
	}

	signednessGiven := false
	unsigned := false

	if p.match(token.UNSIGNED) {
		signednessGiven = true
		unsigned = true
	} else if p.match(token.SIGNED) {
		signednessGiven = true
	}

	for p.match(token.CONST) || p.match(token.VOLATILE) {
	}

	switch {
	case p.match(token.LONG):
		if p.match(token.LONG) {
			p.match(token.INT)
			return types.DataType{Kind: types.LongLong, IsUnsigned: unsigned}
		}
		if p.match(token.DOUBLE) {
			p.errorAt(p.previous, "long double is not supported by this code generator")
			return types.DataType{Kind: types.LongDouble}
		}
		p.match(token.INT)
		return types.DataType{Kind: types.Long, IsUnsigned: unsigned}

	case p.match(token.SHORT):
		p.match(token.INT)
		return types.DataType{Kind: types.Short, IsUnsigned: unsigned}

	case p.match(token.CHAR):
		return types.DataType{Kind: types.Char, IsUnsigned: unsigned}

	case p.match(token.DOUBLE):
		if signednessGiven {
			p.errorAt(p.previous, "cannot use a signedness specifier with double")
		}
		return types.DoubleType

	case p.match(token.FLOAT):
		if signednessGiven {
			p.errorAt(p.previous, "cannot use a signedness specifier with float")
		}
		return types.FloatType

	case p.match(token.VOID):
		return types.VoidType

	case p.match(token.INT), signednessGiven:
		return types.DataType{Kind: types.Int, IsUnsigned: unsigned}
	}

	p.errorAt(p.current, "expected a type specifier")
	return types.IntType
}
