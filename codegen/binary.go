package codegen

import (
	"github.com/skx/cc/ast"
	"github.com/skx/cc/token"
	"github.com/skx/cc/types"
)

// genBinary evaluates a binary expression, applying the usual
// arithmetic conversions before dispatching to the integer, float, or
// short-circuit emitter the operator needs.
func (g *Generator) genBinary(b *ast.BinaryExpr) result {
	switch b.Op.Kind {
	case token.ANDAND:
		return g.genLogicalAnd(b)
	case token.OROR:
		return g.genLogicalOr(b)
	}

	left := g.genExpr(b.Left)
	right := g.genExpr(b.Right)

	switch b.Op.Kind {
	case token.SHL, token.SHR:
		return g.genShift(b.Op, left, right)
	}

	common := types.UsualArithmeticConversion(left.dataType, right.dataType)
	left = g.convert(left, common)
	right = g.convert(right, common)

	if left.kind == locIntConstant && right.kind == locIntConstant {
		if folded, ok := foldIntConstants(b.Op.Kind, common, left.intValue, right.intValue); ok {
			return folded
		}
	}

	switch b.Op.Kind {
	case token.LT, token.LE, token.GT, token.GE, token.EQ, token.NE:
		return g.genComparison(b.Op, left, right)
	}

	if common.IsFloat() {
		return g.genFloatArith(b.Op, left, right)
	}
	return g.genIntArith(b.Op, left, right)
}

func (g *Generator) genIntArith(op token.Token, left, right result) result {
	dt := left.dataType
	size := dt.Size()
	dst := g.allocateTemp(dt)

	g.buf.Inst("mov r12%s, %s", gpSuffix(size), left.operand(size))
	g.freeIfTemp(left)

	switch op.Kind {
	case token.PLUS:
		g.buf.Inst("add r12%s, %s", gpSuffix(size), right.operand(size))
	case token.MINUS:
		g.buf.Inst("sub r12%s, %s", gpSuffix(size), right.operand(size))
	case token.STAR:
		g.buf.Inst("imul r12%s, %s", gpSuffix(size), right.operand(size))
	case token.SLASH, token.PERCENT:
		g.genDivision(op, dt, size, right)
	case token.AMP:
		g.buf.Inst("and r12%s, %s", gpSuffix(size), right.operand(size))
	case token.PIPE:
		g.buf.Inst("or r12%s, %s", gpSuffix(size), right.operand(size))
	case token.CARET:
		g.buf.Inst("xor r12%s, %s", gpSuffix(size), right.operand(size))
	}

	g.freeIfTemp(right)
	g.buf.Inst("mov %s, r12%s", dst.operand(size), gpSuffix(size))
	return dst
}

// genDivision handles the rax:rdx dance div/idiv need. r12 holds the
// dividend (already loaded by the caller); right is the divisor,
// loaded into r11 since div/idiv cannot take an immediate operand
// directly. Integer promotion guarantees size is always 4 or 8 here,
// so cdq/cqo alone is enough to fill rdx correctly for idiv; there is
// no narrower-than-int division to special-case.
func (g *Generator) genDivision(op token.Token, dt types.DataType, size int, right result) {
	g.buf.Inst("mov r11%s, %s", gpSuffix(size), right.operand(size))
	g.buf.Inst("mov %s, r12%s", regRAX.name(size), gpSuffix(size))

	if dt.IsUnsigned {
		g.buf.Inst("xor %s, %s", regRDX.name(size), regRDX.name(size))
		g.buf.Inst("div r11%s", gpSuffix(size))
	} else {
		if size == 8 {
			g.buf.Inst("cqo")
		} else {
			g.buf.Inst("cdq")
		}
		g.buf.Inst("idiv r11%s", gpSuffix(size))
	}

	if op.Kind == token.SLASH {
		g.buf.Inst("mov r12, rax")
	} else {
		g.buf.Inst("mov r12, rdx")
	}
}

func (g *Generator) genFloatArith(op token.Token, left, right result) result {
	dt := left.dataType
	size := dt.Size()
	dst := g.allocateTemp(dt)
	mov := movFloat(dt)

	g.buf.Inst("%s xmm0, %s", mov, left.operand(size))
	g.freeIfTemp(left)
	g.buf.Inst("%s xmm1, %s", mov, right.operand(size))
	g.freeIfTemp(right)

	suffix := "ss"
	if dt.Kind != types.Float {
		suffix = "sd"
	}
	switch op.Kind {
	case token.PLUS:
		g.buf.Inst("add%s xmm0, xmm1", suffix)
	case token.MINUS:
		g.buf.Inst("sub%s xmm0, xmm1", suffix)
	case token.STAR:
		g.buf.Inst("mul%s xmm0, xmm1", suffix)
	case token.SLASH:
		g.buf.Inst("div%s xmm0, xmm1", suffix)
	}

	g.buf.Inst("%s %s, xmm0", mov, dst.operand(size))
	return dst
}

func (g *Generator) genShift(op token.Token, left, right result) result {
	// The shift count is evaluated in its own right (no arithmetic
	// conversion against left, matching C) but must end up in cl. The
	// left operand still undergoes integer promotion on its own, so
	// `char c = 1; c << 2;` shifts as an int rather than a byte.
	dt := types.UsualArithmeticConversion(left.dataType, types.IntType)
	left = g.convert(left, dt)
	size := dt.Size()
	dst := g.allocateTemp(dt)

	g.buf.Inst("mov r12%s, %s", gpSuffix(size), left.operand(size))
	g.freeIfTemp(left)
	countSize := right.dataType.Size()
	g.buf.Inst("mov %s, %s", regRCX.name(countSize), right.operand(countSize))
	g.freeIfTemp(right)

	if op.Kind == token.SHL {
		g.buf.Inst("shl r12%s, cl", gpSuffix(size))
	} else if dt.IsUnsigned {
		g.buf.Inst("shr r12%s, cl", gpSuffix(size))
	} else {
		g.buf.Inst("sar r12%s, cl", gpSuffix(size))
	}

	g.buf.Inst("mov %s, r12%s", dst.operand(size), gpSuffix(size))
	return dst
}

func (g *Generator) genComparison(op token.Token, left, right result) result {
	dt := left.dataType
	size := dt.Size()
	dst := g.allocateTemp(types.IntType)

	if dt.IsFloat() {
		mov := movFloat(dt)
		g.buf.Inst("%s xmm0, %s", mov, left.operand(size))
		g.freeIfTemp(left)
		g.buf.Inst("%s xmm1, %s", mov, right.operand(size))
		g.freeIfTemp(right)
		g.buf.Inst("%s xmm0, xmm1", ucomiss(dt))
	} else {
		g.buf.Inst("mov r12%s, %s", gpSuffix(size), left.operand(size))
		g.freeIfTemp(left)
		g.buf.Inst("cmp r12%s, %s", gpSuffix(size), right.operand(size))
		g.freeIfTemp(right)
	}

	setcc := map[token.Kind]string{
		token.LT: "setl", token.LE: "setle",
		token.GT: "setg", token.GE: "setge",
		token.EQ: "sete", token.NE: "setne",
	}[op.Kind]
	if dt.IsFloat() || dt.IsUnsigned {
		// Unsigned integer comparisons, like float ones, need the
		// below/above family: setl/setg key off the signed (OF/SF)
		// flags, which cmp on an unsigned operand doesn't set
		// meaningfully. Unordered float comparisons use the same
		// mnemonics so NaN reliably compares false, matching
		// ucomiss/ucomisd's flags.
		setcc = map[token.Kind]string{
			token.LT: "setb", token.LE: "setbe",
			token.GT: "seta", token.GE: "setae",
			token.EQ: "sete", token.NE: "setne",
		}[op.Kind]
	}

	g.buf.Inst("%s al", setcc)
	g.buf.Inst("movzx r12, al")
	g.buf.Inst("mov %s, r12d", dst.operand(4))
	return dst
}

// genLogicalAnd short-circuits: if the left operand is false the
// right is never evaluated.
func (g *Generator) genLogicalAnd(b *ast.BinaryExpr) result {
	falseLabel := g.newLabel()
	endLabel := g.newLabel()
	dst := g.allocateTemp(types.IntType)

	left := g.genExpr(b.Left)
	g.jumpIfZero(left, falseLabel)
	g.freeIfTemp(left)

	right := g.genExpr(b.Right)
	g.jumpIfZero(right, falseLabel)
	g.freeIfTemp(right)

	g.buf.Inst("mov %s, 1", dst.operand(4))
	g.buf.Inst("jmp %s", endLabel)
	g.buf.Label(falseLabel)
	g.buf.Inst("mov %s, 0", dst.operand(4))
	g.buf.Label(endLabel)
	return dst
}

func (g *Generator) genLogicalOr(b *ast.BinaryExpr) result {
	trueLabel := g.newLabel()
	endLabel := g.newLabel()
	dst := g.allocateTemp(types.IntType)

	left := g.genExpr(b.Left)
	g.jumpIfNotZero(left, trueLabel)
	g.freeIfTemp(left)

	right := g.genExpr(b.Right)
	g.jumpIfNotZero(right, trueLabel)
	g.freeIfTemp(right)

	g.buf.Inst("mov %s, 0", dst.operand(4))
	g.buf.Inst("jmp %s", endLabel)
	g.buf.Label(trueLabel)
	g.buf.Inst("mov %s, 1", dst.operand(4))
	g.buf.Label(endLabel)
	return dst
}
