package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skx/cc/diag"
	"github.com/skx/cc/lexer"
	"github.com/skx/cc/parser"
	"github.com/skx/cc/source"
)

func compile(t *testing.T, text string) (string, *diag.Bag) {
	t.Helper()
	fi := &source.FileInfo{Filename: "test.c", Text: text, LineStarts: []int{0}}
	diags := diag.NewBag(fi)
	prog := parser.ParseProgram(lexer.New(fi), diags)
	require.False(t, diags.HadError(), "parse errors: %s", diags.Render())

	gen := New(diags)
	out, _ := gen.Generate(prog)
	return out, diags
}

func TestGenerateSimpleReturn(t *testing.T) {
	out, diags := compile(t, "return 42;")
	require.False(t, diags.HadError())

	assert.Contains(t, out, "section .text")
	assert.Contains(t, out, "section .data")
	assert.Contains(t, out, "mov rdi, rax")
	assert.Contains(t, out, "mov rax, 60")
	assert.Contains(t, out, "syscall")
	assert.NotContains(t, out, "#FRAMESIZE")
}

func TestReturnValueSurvivesIntoExitStatus(t *testing.T) {
	// Regression guard: the epilogue must carry the computed value
	// from rax into rdi before clobbering rax with the syscall
	// number, or every exit status collapses to 0. There must also be
	// exactly one epilogue: an explicit `return` must not get its own
	// inline exit sequence in addition to the shared one.
	out, diags := compile(t, "int a = 7; return a;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "mov rdi, rax")
	assert.Equal(t, 1, strings.Count(out, "syscall"))
	assert.Equal(t, 1, strings.Count(out, "mov rax, 60"))
}

func TestBareReturnExitsZero(t *testing.T) {
	// `return;` zeroes rax itself and falls into the same shared
	// epilogue every other return uses, rather than hard-coding rdi.
	out, diags := compile(t, "return;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "xor eax, eax")
	assert.Contains(t, out, "mov rdi, rax")
	assert.Equal(t, 1, strings.Count(out, "syscall"))
}

func TestFallingOffTheEndWithNoReturnExitsZero(t *testing.T) {
	out, diags := compile(t, "int a = 7;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "xor eax, eax")
	assert.Contains(t, out, "mov rdi, rax")
	assert.Equal(t, 1, strings.Count(out, "syscall"))
}

func TestGenerateArithmetic(t *testing.T) {
	// Neither operand is a constant here, so the addition and the
	// multiplication both have to emit real instructions.
	out, diags := compile(t, "int p = 2; int q = 3; int a = p + q * p; return a;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "imul")
	assert.Contains(t, out, "add")
}

func TestConstantArithmeticFoldsAtCompileTime(t *testing.T) {
	// `2 + 3 * 4` reduces entirely to the IntConstant 14 at compile
	// time: the initializer is a plain immediate store, with no
	// runtime add/imul instruction at all.
	out, diags := compile(t, "int x = 2 + 3 * 4;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "dword [rbp-4], 14")
	assert.NotContains(t, out, "imul")
	assert.NotContains(t, out, "add r12")
}

func TestConstantComparisonFoldsAtCompileTime(t *testing.T) {
	out, diags := compile(t, "int x = 2 < 3; return x;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "dword [rbp-4], 1")
	assert.NotContains(t, out, "cmp")
}

func TestConstantDivisionByZeroDoesNotFoldAndFallsThroughToRuntime(t *testing.T) {
	out, diags := compile(t, "int x = 1 / 0; return x;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "idiv")
}

func TestGenerateFloatConstantInterning(t *testing.T) {
	out, diags := compile(t, "double a = 1.5; double b = 1.5; return 0;")
	require.False(t, diags.HadError())

	// The two equal literals should share one .data label rather than
	// each growing the data section with a duplicate entry.
	count := 0
	for i := 0; i+3 <= len(out); i++ {
		if out[i:i+3] == "dq " {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestGenerateWhileLoopEmitsLabelsAndJumps(t *testing.T) {
	out, diags := compile(t, `
		int i = 0;
		while (i < 3) {
			i += 1;
		}
		return i;
	`)
	require.False(t, diags.HadError())
	assert.Contains(t, out, "jmp")
	assert.Contains(t, out, "cmp")
}

func TestBreakOutsideLoopIsAnError(t *testing.T) {
	_, diags := compile(t, "break;")
	assert.True(t, diags.HadError())
}

func TestRedeclarationInSameScopeIsAnError(t *testing.T) {
	_, diags := compile(t, "int a = 1; int a = 2; return a;")
	assert.True(t, diags.HadError())
}

func TestShadowingInNestedScopeIsNotAnError(t *testing.T) {
	_, diags := compile(t, "int a = 1; { int a = 2; } return a;")
	assert.False(t, diags.HadError())
}

func TestCompoundAssignDivisionPromotesNarrowTypes(t *testing.T) {
	out, diags := compile(t, "char c = 10; c /= 3; return c;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "idiv")
	assert.Contains(t, out, "cdq")
}

func TestWideningConversionSignExtendsRatherThanReinterprets(t *testing.T) {
	out, diags := compile(t, "char c = 1; int x = c + 1000; return x;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "movsx")
}

func TestShiftPromotesNarrowLeftOperand(t *testing.T) {
	out, diags := compile(t, "char c = 1; int x = c << 4; return x;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "movsx")
	assert.Contains(t, out, "shl r12d, cl")
}

func TestConstantLoopConditionRoutesThroughRegister(t *testing.T) {
	// cmp can't compare two immediates; a literal condition like
	// `while (1)` must load into a register first.
	out, diags := compile(t, "while (1) { break; } return 0;")
	require.False(t, diags.HadError())
	assert.NotContains(t, out, "cmp 1, 0")
	assert.Contains(t, out, "cmp r12")
}

func TestLogicalNotOfConstantRoutesThroughRegister(t *testing.T) {
	out, diags := compile(t, "return !5;")
	require.False(t, diags.HadError())
	assert.NotContains(t, out, "cmp 5, 0")
	assert.Contains(t, out, "cmp r12")
}

func TestNarrowIntToFloatConversionSignExtends(t *testing.T) {
	out, diags := compile(t, "char c = 3; double d = c; return (int)d;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "movsx r12")
	assert.Contains(t, out, "cvtsi2sd")
}

func TestCastTruncatesFloatToInt(t *testing.T) {
	out, diags := compile(t, "double d = 5.9; return (int)d;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "cvttsd2si")
}

func TestUnsignedComparisonUsesUnsignedSetcc(t *testing.T) {
	// Regression guard: cmp's flags alone don't distinguish "below" from
	// "less" — an unsigned `<` must lower to setb, not the signed setl,
	// or e.g. 0u < -1 (as a huge positive unsigned value) would compare
	// the wrong way.
	out, diags := compile(t, "unsigned int a = 1; unsigned int b = 2; int x = a < b; return x;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "setb al")
	assert.NotContains(t, out, "setl al")
}

func TestSignedComparisonUsesSignedSetcc(t *testing.T) {
	out, diags := compile(t, "int a = 1; int b = 2; int x = a < b; return x;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "setl al")
}

func TestAssignmentToConstantLiteralIsAnError(t *testing.T) {
	_, diags := compile(t, "5 = 3;")
	assert.True(t, diags.HadError())
}

func TestIncrementOfConstantLiteralIsAnError(t *testing.T) {
	_, diags := compile(t, "5++;")
	assert.True(t, diags.HadError())
}

func TestAssignmentToStringLiteralIsAnError(t *testing.T) {
	// A string literal's Label is a data-section address, but it's not a
	// source-level modifiable storage location: the only producer of a
	// Label result must not pass isLvalue(), or this would silently
	// corrupt the literal's bytes instead of reporting an error.
	_, diags := compile(t, `"hi" = 65;`)
	assert.True(t, diags.HadError())
}

func TestAssignmentToCastExpressionIsAnError(t *testing.T) {
	// A cast's value is always an rvalue in C, even when the cast
	// narrows a variable's own type and convert() re-tags its storage
	// in place rather than allocating a fresh temp.
	_, diags := compile(t, "int x = 1; (char)x = 5;")
	assert.True(t, diags.HadError())
}

func TestShiftByVariableCountUsesRegisterSizedMove(t *testing.T) {
	// The shift count must move into rcx via a register-sized operand
	// before being referenced as cl; a memory operand sized to the
	// count's full C type paired with the 8-bit cl destination is
	// illegal in NASM.
	out, diags := compile(t, "int n = 2; int x = 8 << n; return x;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "mov ecx,")
	assert.NotContains(t, out, "mov cl, dword")
}

func TestShiftResultTypeIgnoresRightOperandWidth(t *testing.T) {
	// A shift's result type is the promoted type of the left operand
	// alone; a wider right operand must not widen the shift itself.
	out, diags := compile(t, "int y = 2; long long x = 8; int z = y << x; return z;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "mov dword [rbp-")
}

func TestUnsignedCharPromotesToPlainIntNotUnsignedInt(t *testing.T) {
	// Integer promotion of anything narrower than int always yields a
	// plain (signed) int, regardless of the source type's signedness:
	// int can represent every unsigned char/short value.
	out, diags := compile(t, "unsigned char a = 1; unsigned char b = 2; int x = (a - b) < 0; return x;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "setl al")
	assert.NotContains(t, out, "setb al")
}

func TestUnaryBitwiseNotPromotesNarrowOperandToInt(t *testing.T) {
	// ~c on an unsigned char 0 must promote to (signed) int first,
	// giving ~0 == -1 (sign-extended into a 4-byte temp), not an 8-bit
	// ~0 == 255 computed at the operand's own width.
	out, diags := compile(t, "unsigned char c = 0; int x = ~c; return x;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "movzx r12")
	assert.Contains(t, out, "not r12d")
}

func TestUnaryMinusPromotesNarrowOperandToInt(t *testing.T) {
	out, diags := compile(t, "char c = 1; int x = -c; return x;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "neg r12d")
}

func TestIntConstantWideningToFloatUsesPlainMov(t *testing.T) {
	// movsx/movsxd/movzx require a register or memory source; widening
	// an int-literal constant up to a wider integer or into a float
	// conversion must go through a plain `mov r12, <value>` instead.
	out, diags := compile(t, "double d = 5; return (int)d;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "mov r12, 5")
	assert.NotContains(t, out, "movsx r12, 5")
	assert.NotContains(t, out, "movsxd r12, 5")
}

func TestIntConstantWideningToLongLongUsesPlainMov(t *testing.T) {
	// int and long are both 4 bytes in this ABI, so widen into the one
	// integer type that's actually wider: long long (8 bytes).
	out, diags := compile(t, "long long x = 5; return (int)x;")
	require.False(t, diags.HadError())
	assert.Contains(t, out, "mov r12, 5")
	assert.NotContains(t, out, "movsxd r12, 5")
}
