package codegen

import (
	"github.com/skx/cc/ast"
	"github.com/skx/cc/token"
	"github.com/skx/cc/types"
)

// compoundOps maps a compound-assignment token to the plain binary
// operator it stands in for: `x += y` desugars to `x = x + y`.
var compoundOps = map[token.Kind]token.Kind{
	token.PLUS_ASSIGN:    token.PLUS,
	token.MINUS_ASSIGN:   token.MINUS,
	token.STAR_ASSIGN:    token.STAR,
	token.SLASH_ASSIGN:   token.SLASH,
	token.PERCENT_ASSIGN: token.PERCENT,
	token.AMP_ASSIGN:     token.AMP,
	token.PIPE_ASSIGN:    token.PIPE,
	token.CARET_ASSIGN:   token.CARET,
	token.SHL_ASSIGN:     token.SHL,
	token.SHR_ASSIGN:     token.SHR,
}

func (g *Generator) genAssign(a *ast.AssignExpr) result {
	lv := g.genExpr(a.Lvalue)

	if !lv.isLvalue() {
		g.errorf(a.Op.Line, a.Op.Col, "cannot assign to a non lvalue")
		g.freeIfTemp(lv)
		return lv
	}

	if a.Op.Kind == token.ASSIGN {
		rv := g.genExpr(a.Rvalue)
		rv = g.convert(rv, lv.dataType)
		g.store(lv, rv)
		g.freeIfTemp(rv)
		return lv
	}

	op, ok := compoundOps[a.Op.Kind]
	if !ok {
		g.errorf(a.Op.Line, a.Op.Col, "internal: unhandled assignment operator %s", a.Op.Kind)
		return lv
	}

	rv := g.genExpr(a.Rvalue)

	synthetic := token.Token{Kind: op, Line: a.Op.Line, Col: a.Op.Col}
	var combined result
	switch op {
	case token.SHL, token.SHR:
		combined = g.genShift(synthetic, lv, rv)
	default:
		// x += y applies the same usual arithmetic conversions a plain
		// x + y would, then narrows the result back to x's type; this
		// keeps e.g. `char c; c /= 5;` dividing as an int the way C
		// requires instead of as a byte-sized division.
		common := types.UsualArithmeticConversion(lv.dataType, rv.dataType)
		left := g.convert(lv, common)
		right := g.convert(rv, common)
		if common.IsFloat() {
			combined = g.genFloatArith(synthetic, left, right)
		} else {
			combined = g.genIntArith(synthetic, left, right)
		}
	}

	combined = g.convert(combined, lv.dataType)
	g.store(lv, combined)
	g.freeIfTemp(combined)
	return lv
}
