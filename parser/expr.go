package parser

import (
	"github.com/skx/cc/ast"
	"github.com/skx/cc/token"
	"github.com/skx/cc/types"
)

// expression is the top of the precedence ladder: assignment binds
// loosest, short of the statement terminator itself.
func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

var assignOps = map[token.Kind]bool{
	token.ASSIGN: true, token.PLUS_ASSIGN: true, token.MINUS_ASSIGN: true,
	token.STAR_ASSIGN: true, token.SLASH_ASSIGN: true, token.PERCENT_ASSIGN: true,
	token.AMP_ASSIGN: true, token.PIPE_ASSIGN: true, token.CARET_ASSIGN: true,
	token.SHL_ASSIGN: true, token.SHR_ASSIGN: true,
}

func (p *Parser) assignment() ast.Expr {
	lhs := p.logicalAnd()

	if assignOps[p.current.Kind] {
		op := p.current
		p.advance()
		rhs := p.assignment()
		return &ast.AssignExpr{Op: op, Lvalue: lhs, Rvalue: rhs, DataType: lhs.Type()}
	}
	return lhs
}

// logicalAnd is the spec's outer operator: the ladder in spec.md §4.2
// reads assignment → logical-and → logical-or, so `&&` binds looser
// than `||` here, not tighter as conventional C precedence would have
// it. `a && b || c` parses as `a && (b || c)`.
func (p *Parser) logicalAnd() ast.Expr {
	expr := p.logicalOr()
	for p.match(token.ANDAND) {
		op := p.previous
		rhs := p.logicalOr()
		expr = &ast.BinaryExpr{Op: op, Left: expr, Right: rhs, DataType: types.IntType}
	}
	return expr
}

func (p *Parser) logicalOr() ast.Expr {
	expr := p.bitwiseOr()
	for p.match(token.OROR) {
		op := p.previous
		rhs := p.bitwiseOr()
		expr = &ast.BinaryExpr{Op: op, Left: expr, Right: rhs, DataType: types.IntType}
	}
	return expr
}

func (p *Parser) bitwiseOr() ast.Expr {
	expr := p.bitwiseXor()
	for p.match(token.PIPE) {
		op := p.previous
		rhs := p.bitwiseXor()
		expr = p.binary(op, expr, rhs)
	}
	return expr
}

func (p *Parser) bitwiseXor() ast.Expr {
	expr := p.bitwiseAnd()
	for p.match(token.CARET) {
		op := p.previous
		rhs := p.bitwiseAnd()
		expr = p.binary(op, expr, rhs)
	}
	return expr
}

func (p *Parser) bitwiseAnd() ast.Expr {
	expr := p.equality()
	for p.match(token.AMP) {
		op := p.previous
		rhs := p.equality()
		expr = p.binary(op, expr, rhs)
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.relational()
	for p.check(token.EQ) || p.check(token.NE) {
		op := p.current
		p.advance()
		rhs := p.relational()
		expr = &ast.BinaryExpr{Op: op, Left: expr, Right: rhs, DataType: types.IntType}
	}
	return expr
}

func (p *Parser) relational() ast.Expr {
	expr := p.shift()
	for p.check(token.LT) || p.check(token.LE) || p.check(token.GT) || p.check(token.GE) {
		op := p.current
		p.advance()
		rhs := p.shift()
		expr = &ast.BinaryExpr{Op: op, Left: expr, Right: rhs, DataType: types.IntType}
	}
	return expr
}

func (p *Parser) shift() ast.Expr {
	expr := p.additive()
	for p.check(token.SHL) || p.check(token.SHR) {
		op := p.current
		p.advance()
		rhs := p.additive()
		// A shift's result type is the promoted type of its left
		// operand alone; the right operand's type never widens it.
		dt := types.IntegerPromote(expr.Type())
		expr = &ast.BinaryExpr{Op: op, Left: expr, Right: rhs, DataType: dt}
	}
	return expr
}

func (p *Parser) additive() ast.Expr {
	expr := p.multiplicative()
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := p.current
		p.advance()
		rhs := p.multiplicative()
		expr = p.binary(op, expr, rhs)
	}
	return expr
}

func (p *Parser) multiplicative() ast.Expr {
	expr := p.unary()
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		op := p.current
		p.advance()
		rhs := p.unary()
		expr = p.binary(op, expr, rhs)
	}
	return expr
}

// binary builds a BinaryExpr with its static type resolved by the
// usual arithmetic conversions, mirroring what the code generator
// will do again at emission time for the actual values.
func (p *Parser) binary(op token.Token, left, right ast.Expr) ast.Expr {
	dt := types.UsualArithmeticConversion(left.Type(), right.Type())
	return &ast.BinaryExpr{Op: op, Left: left, Right: right, DataType: dt}
}

func (p *Parser) unary() ast.Expr {
	switch {
	case p.check(token.MINUS), p.check(token.TILDE):
		// Unary `-`/`~` apply C's integer promotion to their operand
		// before the operation; a float operand is unaffected.
		op := p.current
		p.advance()
		operand := p.unary()
		dt := operand.Type()
		if dt.IsInteger() {
			dt = types.IntegerPromote(dt)
		}
		return &ast.UnaryExpr{Op: op, Operand: operand, DataType: dt}

	case p.check(token.BANG):
		// Logical not always yields a plain int 0/1, regardless of the
		// operand's type.
		op := p.current
		p.advance()
		operand := p.unary()
		return &ast.UnaryExpr{Op: op, Operand: operand, DataType: types.IntType}

	case p.check(token.INC), p.check(token.DEC):
		op := p.current
		p.advance()
		operand := p.unary()
		return &ast.UnaryExpr{Op: op, Operand: operand, DataType: operand.Type()}

	case p.match(token.SIZEOF):
		return p.sizeofExpr()

	case p.check(token.LPAREN) && token.IsTypeStart(p.peek().Kind):
		return p.castExpr()
	}
	return p.postfix()
}

// castExpr parses an explicit C-style cast `(type) unary-expr`. Only
// reached once the caller has already confirmed the token after '('
// starts a type specifier, distinguishing it from a parenthesised
// expression like `(x)`.
func (p *Parser) castExpr() ast.Expr {
	tok := p.current
	p.advance() // consume '('
	dt := p.dataType()
	p.consume(token.RPAREN, "expected ')' after cast type")
	operand := p.unary()
	return &ast.CastExpr{Token: tok, TargetType: dt, Operand: operand}
}

func (p *Parser) sizeofExpr() ast.Expr {
	tok := p.previous
	p.consume(token.LPAREN, "expected '(' after 'sizeof'")

	var dt types.DataType
	if token.IsTypeStart(p.current.Kind) {
		dt = p.dataType()
	} else {
		operand := p.expression()
		dt = operand.Type()
	}
	p.consume(token.RPAREN, "expected ')' after sizeof operand")
	return &ast.SizeofExpr{Token: tok, OperandType: dt}
}

func (p *Parser) postfix() ast.Expr {
	expr := p.primary()
	for p.check(token.INC) || p.check(token.DEC) {
		op := p.current
		p.advance()
		expr = &ast.PostfixExpr{Op: op, Operand: expr, DataType: expr.Type()}
	}
	return expr
}

// numberLitTypes maps a numeric token kind straight to its C type, per
// the original implementation's tokenNumberLiteralToDataType.
var numberLitTypes = map[token.Kind]types.DataType{
	token.INT_CONST:     types.IntType,
	token.UINT_CONST:    types.UIntType,
	token.LONG_CONST:    types.LongType,
	token.ULONG_CONST:   {Kind: types.Long, IsUnsigned: true},
	token.LLONG_CONST:   {Kind: types.LongLong},
	token.ULLONG_CONST:  {Kind: types.LongLong, IsUnsigned: true},
	token.FLOAT_CONST:   types.FloatType,
	token.DOUBLE_CONST:  types.DoubleType,
	token.LDOUBLE_CONST: {Kind: types.LongDouble},
}

func (p *Parser) primary() ast.Expr {
	if dt, ok := numberLitTypes[p.current.Kind]; ok {
		tok := p.current
		p.advance()
		if tok.Kind == token.LDOUBLE_CONST {
			p.errorAt(tok, "long double is not supported by this code generator")
		}
		return &ast.NumberLit{Token: tok, DataType: dt}
	}

	switch {
	case p.check(token.CHAR_CONST):
		tok := p.current
		p.advance()
		return &ast.CharLit{Token: tok}

	case p.check(token.STRING_CONST):
		tok := p.current
		p.advance()
		return &ast.StringLit{Token: tok}

	case p.check(token.IDENT):
		tok := p.current
		p.advance()
		return &ast.Identifier{Token: tok, DataType: p.resolveSymbol(tok.Literal)}

	case p.match(token.LPAREN):
		inner := p.expression()
		p.consume(token.RPAREN, "expected ')' after expression")
		return &ast.GroupingExpr{Inner: inner}
	}

	p.errorAt(p.current, "expected an expression")
	p.advance()
	return &ast.NumberLit{Token: token.Token{Kind: token.INT_CONST}, DataType: types.IntType}
}
