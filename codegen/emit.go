package codegen

import (
	"fmt"
	"strconv"

	"github.com/skx/cc/ast"
	"github.com/skx/cc/token"
	"github.com/skx/cc/types"
)

// stmtLine returns the source line a statement starts on, for -debug
// annotations, or 0 if the statement carries no token of its own.
func stmtLine(s ast.Stmt) int {
	switch st := s.(type) {
	case *ast.VarDecl:
		return st.Name.Line
	case *ast.ReturnStmt:
		return st.Token.Line
	case *ast.BreakStmt:
		return st.Token.Line
	case *ast.ContinueStmt:
		return st.Token.Line
	case *ast.PutcharStmt:
		return st.Token.Line
	}
	return 0
}

// genStmt emits one statement, in the single pre-order walk the
// generator makes over the program.
func (g *Generator) genStmt(s ast.Stmt) {
	if g.Debug {
		if line := stmtLine(s); line > 0 {
			g.buf.Raw(fmt.Sprintf("    ; line %d", line))
		}
	}
	switch st := s.(type) {
	case *ast.ExprStmt:
		r := g.genExpr(st.X)
		g.freeIfTemp(r)

	case *ast.VarDecl:
		g.genVarDecl(st)

	case *ast.ReturnStmt:
		g.genReturn(st)

	case *ast.BlockStmt:
		g.scope.push()
		for _, inner := range st.Stmts {
			g.genStmt(inner)
		}
		g.scope.pop()

	case *ast.IfStmt:
		g.genIf(st)

	case *ast.WhileStmt:
		g.genWhile(st)

	case *ast.DoWhileStmt:
		g.genDoWhile(st)

	case *ast.BreakStmt:
		g.genBreak(st)

	case *ast.ContinueStmt:
		g.genContinue(st)

	case *ast.PutcharStmt:
		g.genPutchar(st)

	default:
		g.errorf(0, 0, "internal: unhandled statement %T", s)
	}
}

func (g *Generator) genVarDecl(st *ast.VarDecl) {
	offset := g.allocateLocal(st.Name.Literal, st.DataType, st.Name.Line, st.Name.Col)
	dst := baseOffsetResult(st.DataType, offset)

	if st.Initializer == nil {
		return
	}

	val := g.genExpr(st.Initializer)
	val = g.convert(val, st.DataType)
	g.store(dst, val)
	g.freeIfTemp(val)
}

// genReturn leaves the return value in rax (per spec.md §4.3.8 and
// §6's "return value in rax for integer types... xmm0 for floating
// types" — truncated to an integer here too, since the process exit
// status is always an integer) and jumps to the single shared
// epilogue, rather than emitting its own exit sequence: spec.md
// §4.3.9 emits the epilogue exactly once, after the whole statement
// sequence, using whatever is then in the accumulator.
func (g *Generator) genReturn(st *ast.ReturnStmt) {
	if st.Value != nil {
		val := g.genExpr(st.Value)
		g.loadIntoReturnRegister(val)
	} else {
		g.buf.Inst("xor eax, eax")
	}
	g.buf.Inst("jmp %s", g.exitLabel)
}

// loadIntoReturnRegister leaves st.Value's integer representation in
// rax: exit status is always an integer, so a float/double result is
// truncated toward zero first, matching the explicit-cast path a
// source-level `(int)` conversion would take.
func (g *Generator) loadIntoReturnRegister(r result) {
	if r.dataType.IsFloat() {
		r = g.convertFloatToInt(r, types.LongType)
	}
	size := r.dataType.Size()
	g.buf.Inst("mov %s, %s", regRAX.name(size), r.operand(size))
	g.freeIfTemp(r)
}

func (g *Generator) genIf(st *ast.IfStmt) {
	elseLabel := g.newLabel()
	endLabel := elseLabel
	if st.Else != nil {
		endLabel = g.newLabel()
	}

	cond := g.genExpr(st.Cond)
	g.jumpIfZero(cond, elseLabel)
	g.freeIfTemp(cond)

	g.genStmt(st.Then)

	if st.Else != nil {
		g.buf.Inst("jmp %s", endLabel)
		g.buf.Label(elseLabel)
		g.genStmt(st.Else)
		g.buf.Label(endLabel)
	} else {
		g.buf.Label(elseLabel)
	}
}

func (g *Generator) genWhile(st *ast.WhileStmt) {
	start := g.newLabel()
	end := g.newLabel()

	g.loops.push(loop{startLabel: start, endLabel: end})
	defer g.loops.pop()

	g.buf.Label(start)
	cond := g.genExpr(st.Cond)
	g.jumpIfZero(cond, end)
	g.freeIfTemp(cond)

	g.genStmt(st.Body)
	g.buf.Inst("jmp %s", start)
	g.buf.Label(end)
}

func (g *Generator) genDoWhile(st *ast.DoWhileStmt) {
	start := g.newLabel()
	condLabel := g.newLabel()
	end := g.newLabel()

	g.loops.push(loop{startLabel: condLabel, endLabel: end})
	defer g.loops.pop()

	g.buf.Label(start)
	g.genStmt(st.Body)

	g.buf.Label(condLabel)
	cond := g.genExpr(st.Cond)
	g.jumpIfNotZero(cond, start)
	g.freeIfTemp(cond)

	g.buf.Label(end)
}

func (g *Generator) genBreak(st *ast.BreakStmt) {
	lp, ok := g.loops.current()
	if !ok {
		g.errorf(st.Token.Line, st.Token.Col, "'break' statement not in a loop")
		return
	}
	g.buf.Inst("jmp %s", lp.endLabel)
}

func (g *Generator) genContinue(st *ast.ContinueStmt) {
	lp, ok := g.loops.current()
	if !ok {
		g.errorf(st.Token.Line, st.Token.Col, "'continue' statement not in a loop")
		return
	}
	g.buf.Inst("jmp %s", lp.startLabel)
}

func (g *Generator) genPutchar(st *ast.PutcharStmt) {
	val := g.genExpr(st.X)
	offset := g.temps.allocate(1, &g.frameSize)
	tmp := baseOffsetResult(types.CharType, offset)
	g.store(tmp, g.convert(val, types.CharType))
	g.freeIfTemp(val)

	g.buf.Inst("mov rax, 1")
	g.buf.Inst("mov rdi, 1")
	g.buf.Inst("lea rsi, [rbp-%s]", itoaOffset(offset))
	g.buf.Inst("mov rdx, 1")
	g.buf.Inst("syscall")
	g.temps.free(offset)
}

// jumpIfZero emits a compare-and-branch to label when cond is false
// (zero). An integer cond is always loaded into the scratch register
// before the cmp.
func (g *Generator) jumpIfZero(cond result, label string) {
	size := cond.dataType.Size()
	if cond.dataType.IsFloat() {
		g.buf.Inst("pxor xmm0, xmm0")
		g.buf.Inst("%s xmm0, %s", ucomiss(cond.dataType), cond.operand(size))
		g.buf.Inst("je %s", label)
		return
	}
	// cmp can't take two immediates, so a constant condition (e.g.
	// `while (1)`) needs loading into the scratch register first, the
	// same way a binary operator's operands always route through a
	// register.
	g.buf.Inst("mov r12%s, %s", gpSuffix(size), cond.operand(size))
	g.buf.Inst("cmp r12%s, 0", gpSuffix(size))
	g.buf.Inst("je %s", label)
}

func (g *Generator) jumpIfNotZero(cond result, label string) {
	size := cond.dataType.Size()
	if cond.dataType.IsFloat() {
		g.buf.Inst("pxor xmm0, xmm0")
		g.buf.Inst("%s xmm0, %s", ucomiss(cond.dataType), cond.operand(size))
		g.buf.Inst("jne %s", label)
		return
	}
	g.buf.Inst("mov r12%s, %s", gpSuffix(size), cond.operand(size))
	g.buf.Inst("cmp r12%s, 0", gpSuffix(size))
	g.buf.Inst("jne %s", label)
}

func ucomiss(dt types.DataType) string {
	if dt.Kind == types.Float {
		return "ucomiss"
	}
	return "ucomisd"
}

func itoaOffset(offset int) string {
	return strconv.Itoa(offset)
}

// genExpr evaluates e and returns a Result describing where its value
// now lives.
func (g *Generator) genExpr(e ast.Expr) result {
	switch ex := e.(type) {
	case *ast.NumberLit:
		return g.genNumberLit(ex)
	case *ast.CharLit:
		return intResult(types.IntType, ex.Token.IntValue)
	case *ast.StringLit:
		return g.genStringLit(ex)
	case *ast.Identifier:
		return g.genIdentifier(ex)
	case *ast.GroupingExpr:
		return g.genExpr(ex.Inner)
	case *ast.UnaryExpr:
		return g.genUnary(ex)
	case *ast.PostfixExpr:
		return g.genPostfix(ex)
	case *ast.BinaryExpr:
		return g.genBinary(ex)
	case *ast.AssignExpr:
		return g.genAssign(ex)
	case *ast.SizeofExpr:
		return intResult(types.UIntType, int64(ex.OperandType.Size()))
	case *ast.CastExpr:
		return g.genCast(ex)
	}
	g.errorf(0, 0, "internal: unhandled expression %T", e)
	return intResult(types.IntType, 0)
}

func (g *Generator) genNumberLit(n *ast.NumberLit) result {
	if n.DataType.IsFloat() {
		label := g.internFloat(n.Token.Literal, n.Token.FloatValue, n.DataType)
		return floatResult(n.DataType, label)
	}
	return intResult(n.DataType, n.Token.IntValue)
}

func (g *Generator) internFloat(literal string, value float64, dt types.DataType) string {
	key := literal
	if lbl, ok := g.floatLabels[key]; ok {
		return lbl
	}
	label := g.newLabel()
	g.floatLabels[key] = label
	directive := "dd"
	if dt.Kind != types.Float {
		directive = "dq"
	}
	g.buf.DataLine("%s: %s %v", label, directive, value)
	return label
}

func (g *Generator) genStringLit(s *ast.StringLit) result {
	if lbl, ok := g.stringLabels[s.Token.Literal]; ok {
		return stringLitResult(types.DataType{Kind: types.Char}, lbl)
	}
	label := g.newLabel()
	g.stringLabels[s.Token.Literal] = label
	g.buf.DataLine("%s: db `%s`, 0", label, escapeForNasm(s.Token.Decoded))
	return stringLitResult(types.DataType{Kind: types.Char}, label)
}

func escapeForNasm(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '`' || s[i] == '\\' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// genCast evaluates an explicit `(type)operand` cast by routing
// through the same implicit-conversion rules an assignment or
// arithmetic promotion would use; the parser has already reported
// "long double is not supported" for that target type, so this never
// needs to special-case it again.
func (g *Generator) genCast(c *ast.CastExpr) result {
	operand := g.genExpr(c.Operand)
	converted := g.convert(operand, c.TargetType)
	// A cast's result is always an rvalue in C, even when convert's
	// narrowing path re-tagged the operand's own BaseOffset in place
	// (no new storage was needed, so it returned the same addressable
	// slot). Copy it into a fresh temp so `(char)x = 5;` still hits
	// the "cannot assign to a non lvalue" check instead of writing
	// through x's storage under its narrowed type.
	if converted.kind == locBaseOffset {
		dst := g.allocateTemp(converted.dataType)
		size := converted.dataType.Size()
		g.buf.Inst("mov r12%s, %s", gpSuffix(size), converted.operand(size))
		g.buf.Inst("mov %s, r12%s", dst.operand(size), gpSuffix(size))
		return dst
	}
	return converted
}

func (g *Generator) genIdentifier(id *ast.Identifier) result {
	v, ok := g.scope.lookup(id.Token.Literal)
	if !ok {
		g.errorf(id.Token.Line, id.Token.Col, "undeclared variable '%s' used", id.Token.Literal)
		return intResult(types.IntType, 0)
	}
	return baseOffsetResult(v.dataType, v.baseOffset)
}

// store writes val into dst, whose C type val has already been
// converted to match.
func (g *Generator) store(dst, val result) {
	size := dst.dataType.Size()
	if dst.dataType.IsFloat() {
		reg := g.loadFloat(val)
		g.buf.Inst("%s %s, %s", movFloat(dst.dataType), dst.operand(size), reg)
		return
	}
	if val.kind == locIntConstant {
		// An immediate-to-memory mov is legal directly; routing a
		// constant through r12 first would just be a wasted
		// instruction.
		g.buf.Inst("mov %s, %s", dst.operand(size), val.operand(size))
		return
	}
	g.buf.Inst("mov r12%s, %s", gpSuffix(size), val.operand(size))
	g.buf.Inst("mov %s, r12%s", dst.operand(size), gpSuffix(size))
}

func gpSuffix(size int) string {
	switch size {
	case 1:
		return "b"
	case 2:
		return "w"
	case 4:
		return "d"
	default:
		return ""
	}
}

func movFloat(dt types.DataType) string {
	if dt.Kind == types.Float {
		return "movss"
	}
	return "movsd"
}

// loadFloat moves val into xmm0 and returns its name for use as a
// source operand. It does not convert: val must already have the
// float type the caller stores.
func (g *Generator) loadFloat(val result) string {
	g.buf.Inst("%s xmm0, %s", movFloat(val.dataType), val.operand(val.dataType.Size()))
	return "xmm0"
}

// convert applies the implicit C conversion from r's type to target,
// emitting the sign/zero-extension or int/float instruction the
// conversion needs, and returns a Result of the target type.
func (g *Generator) convert(r result, target types.DataType) result {
	if r.dataType.Equal(target) {
		return r
	}

	switch {
	case r.dataType.IsInteger() && target.IsFloat():
		return g.convertIntToFloat(r, target)
	case r.dataType.IsFloat() && target.IsInteger():
		return g.convertFloatToInt(r, target)
	case r.dataType.IsFloat() && target.IsFloat():
		return g.convertFloatToFloat(r, target)
	case target.Size() > r.dataType.Size():
		// Widening needs a real sign/zero-extend: re-tagging alone
		// would read past the narrower value's storage (e.g. a
		// `dword` read starting at a `char`'s one-byte slot pulls in
		// three unrelated bytes).
		return g.convertIntWidth(r, target)
	default:
		// Narrowing (or same-size re-signing) just re-tags the type:
		// reading fewer bytes from the same base address yields the
		// correctly truncated low bytes on this little-endian target.
		out := r
		out.dataType = target
		return out
	}
}

// extendToR12 sign- or zero-extends r (per its own signedness) into
// the full 64-bit scratch register. x86 has no single movzx/movsx
// opcode for a 32-bit source, so that width is special-cased:
// movsxd for signed, and a plain 32-bit load for unsigned, since a
// 32-bit destination write already zero-extends the upper half of
// its 64-bit register on this architecture.
func (g *Generator) extendToR12(r result) {
	if r.kind == locIntConstant {
		// movsx/movsxd/movzx require a register or memory source, never
		// an immediate; a constant's int64 value is already the correct
		// sign-extended 64-bit representation, so a plain mov suffices.
		g.buf.Inst("mov r12, %d", r.intValue)
		return
	}
	size := r.dataType.Size()
	switch {
	case size == 8:
		g.buf.Inst("mov r12, %s", r.operand(size))
	case size == 4 && !r.dataType.IsUnsigned:
		g.buf.Inst("movsxd r12, %s", r.operand(size))
	case size == 4:
		g.buf.Inst("mov r12d, %s", r.operand(size))
	case r.dataType.IsUnsigned:
		g.buf.Inst("movzx r12, %s", r.operand(size))
	default:
		g.buf.Inst("movsx r12, %s", r.operand(size))
	}
}

// convertIntWidth sign- or zero-extends r up to target's width,
// landing the result in a fresh temp of that width.
func (g *Generator) convertIntWidth(r result, target types.DataType) result {
	dst := g.allocateTemp(target)
	g.extendToR12(r)
	g.freeIfTemp(r)
	g.buf.Inst("mov %s, r12%s", dst.operand(target.Size()), gpSuffix(target.Size()))
	return dst
}

func (g *Generator) convertIntToFloat(r result, target types.DataType) result {
	dst := g.allocateTemp(target)
	instr := "cvtsi2sd"
	if target.Kind == types.Float {
		instr = "cvtsi2ss"
	}
	g.extendToR12(r)
	g.freeIfTemp(r)
	g.buf.Inst("%s xmm0, r12", instr)
	g.buf.Inst("%s %s, xmm0", movFloat(target), dst.operand(target.Size()))
	return dst
}

func (g *Generator) convertFloatToInt(r result, target types.DataType) result {
	dst := g.allocateTemp(target)
	instr := "cvttsd2si"
	if r.dataType.Kind == types.Float {
		instr = "cvttss2si"
	}
	g.buf.Inst("%s xmm0, %s", movFloat(r.dataType), r.operand(r.dataType.Size()))
	g.buf.Inst("%s r12, xmm0", instr)
	g.buf.Inst("mov %s, r12%s", dst.operand(target.Size()), gpSuffix(target.Size()))
	return dst
}

func (g *Generator) convertFloatToFloat(r result, target types.DataType) result {
	dst := g.allocateTemp(target)
	if target.Kind == types.Float {
		g.buf.Inst("movsd xmm0, %s", r.operand(r.dataType.Size()))
		g.buf.Inst("cvtsd2ss xmm0, xmm0")
	} else {
		g.buf.Inst("movss xmm0, %s", r.operand(r.dataType.Size()))
		g.buf.Inst("cvtss2sd xmm0, xmm0")
	}
	g.buf.Inst("%s %s, xmm0", movFloat(target), dst.operand(target.Size()))
	return dst
}

func (g *Generator) genUnary(u *ast.UnaryExpr) result {
	switch u.Op.Kind {
	case token.MINUS:
		operand := g.genExpr(u.Operand)
		operand = g.promoteForUnaryArith(operand)
		return g.genNegate(operand)
	case token.BANG:
		operand := g.genExpr(u.Operand)
		return g.genLogicalNot(operand)
	case token.TILDE:
		operand := g.genExpr(u.Operand)
		operand = g.promoteForUnaryArith(operand)
		return g.genBitwiseNot(operand)
	case token.INC, token.DEC:
		return g.genPrefixIncDec(u)
	}
	g.errorf(u.Op.Line, u.Op.Col, "internal: unhandled unary operator %s", u.Op.Kind)
	return intResult(types.IntType, 0)
}

// promoteForUnaryArith applies C's integer promotion to r before unary
// `-`/`~`, matching the static type the parser already assigned the
// enclosing ast.UnaryExpr: an `unsigned char`/`short` operand widens
// to plain `int` first, so `~c` for a zero `unsigned char c` computes
// as `~0` (giving -1) rather than an 8-bit `~0` (giving 255).
func (g *Generator) promoteForUnaryArith(r result) result {
	if !r.dataType.IsInteger() {
		return r
	}
	promoted := types.IntegerPromote(r.dataType)
	if promoted.Equal(r.dataType) {
		return r
	}
	return g.convert(r, promoted)
}

func (g *Generator) genNegate(r result) result {
	if r.dataType.IsFloat() {
		dst := g.allocateTemp(r.dataType)
		g.buf.Inst("%s xmm0, %s", movFloat(r.dataType), r.operand(r.dataType.Size()))
		g.buf.Inst("pxor xmm1, xmm1")
		if r.dataType.Kind == types.Float {
			g.buf.Inst("subss xmm1, xmm0")
		} else {
			g.buf.Inst("subsd xmm1, xmm0")
		}
		g.buf.Inst("%s %s, xmm1", movFloat(r.dataType), dst.operand(r.dataType.Size()))
		g.freeIfTemp(r)
		return dst
	}
	dst := g.allocateTemp(r.dataType)
	size := r.dataType.Size()
	g.buf.Inst("mov r12%s, %s", gpSuffix(size), r.operand(size))
	g.buf.Inst("neg r12%s", gpSuffix(size))
	g.buf.Inst("mov %s, r12%s", dst.operand(size), gpSuffix(size))
	g.freeIfTemp(r)
	return dst
}

func (g *Generator) genBitwiseNot(r result) result {
	dst := g.allocateTemp(r.dataType)
	size := r.dataType.Size()
	g.buf.Inst("mov r12%s, %s", gpSuffix(size), r.operand(size))
	g.buf.Inst("not r12%s", gpSuffix(size))
	g.buf.Inst("mov %s, r12%s", dst.operand(size), gpSuffix(size))
	g.freeIfTemp(r)
	return dst
}

func (g *Generator) genLogicalNot(r result) result {
	dst := g.allocateTemp(types.IntType)
	size := r.dataType.Size()
	if r.dataType.IsFloat() {
		g.buf.Inst("pxor xmm0, xmm0")
		g.buf.Inst("%s xmm0, %s", ucomiss(r.dataType), r.operand(size))
	} else {
		g.buf.Inst("mov r12%s, %s", gpSuffix(size), r.operand(size))
		g.buf.Inst("cmp r12%s, 0", gpSuffix(size))
	}
	g.buf.Inst("sete al")
	g.buf.Inst("movzx r12, al")
	g.buf.Inst("mov %s, r12d", dst.operand(4))
	g.freeIfTemp(r)
	return dst
}

func (g *Generator) genPrefixIncDec(u *ast.UnaryExpr) result {
	lv := g.genExpr(u.Operand)
	if !lv.isLvalue() {
		g.errorf(u.Op.Line, u.Op.Col, "cannot assign to a non lvalue")
		return lv
	}
	delta := int64(1)
	if u.Op.Kind == token.DEC {
		delta = -1
	}
	updated := g.addConstant(lv, delta)
	g.store(lv, updated)
	g.freeIfTemp(updated)
	return lv
}

func (g *Generator) genPostfix(p *ast.PostfixExpr) result {
	lv := g.genExpr(p.Operand)
	if !lv.isLvalue() {
		g.errorf(p.Op.Line, p.Op.Col, "cannot assign to a non lvalue")
		return lv
	}
	before := g.allocateTemp(lv.dataType)
	g.store(before, lv)

	delta := int64(1)
	if p.Op.Kind == token.DEC {
		delta = -1
	}
	updated := g.addConstant(lv, delta)
	g.store(lv, updated)
	g.freeIfTemp(updated)
	return before
}

// addConstant emits `dst = src + delta` for integer types, used by
// increment/decrement.
func (g *Generator) addConstant(src result, delta int64) result {
	dst := g.allocateTemp(src.dataType)
	size := src.dataType.Size()
	g.buf.Inst("mov r12%s, %s", gpSuffix(size), src.operand(size))
	if delta >= 0 {
		g.buf.Inst("add r12%s, %d", gpSuffix(size), delta)
	} else {
		g.buf.Inst("sub r12%s, %d", gpSuffix(size), -delta)
	}
	g.buf.Inst("mov %s, r12%s", dst.operand(size), gpSuffix(size))
	return dst
}
