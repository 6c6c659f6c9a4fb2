// Package codegen is the compiler's code generator: it walks a typed
// AST and emits x86-64 NASM assembly text. This is the CORE of the
// compiler — register/temp/stack/scope/label management, the implicit
// C conversions, and the x86-64 instruction selection all live here.
//
// Grounded on the original implementation's Compiler (Compiler.c's
// statement/expression walk and allocateOnStack), Registers.{h,c} (the
// GP/SIMD register pools), and Stack.{h,c}/Result.h (the temp pool and
// the Result descriptor). The one-function-per-operator shape of the
// teacher's instructions package survives in emit.go.
package codegen

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/skx/cc/asmbuf"
	"github.com/skx/cc/ast"
	"github.com/skx/cc/diag"
	"github.com/skx/cc/types"
)

// frameSizePlaceholder is patched with the final stack_frame_size
// once a full statement walk has discovered every local variable and
// temporary the function needs. Grounded on the teacher's own
// "#ID"-token-then-strings.Replace idiom for patching a value that's
// only known after a full pass over the instruction list.
const frameSizePlaceholder = "#FRAMESIZE"

// Generator holds all compiler state for one compilation: the two
// output sections, the temp pool, the scope and loop stacks, and the
// diagnostic bag. There is no general-purpose register pool: emission
// works through fixed registers.
type Generator struct {
	buf   *asmbuf.Buffer
	temps *temps
	scope *scopes
	loops *loops
	diags *diag.Bag

	frameSize    int
	labelCounter int

	// exitLabel is where every `return` jumps to once it has left its
	// value in rax; the single epilogue that moves that value into rdi
	// and issues the exit syscall lives there, emitted exactly once.
	exitLabel string

	floatLabels  map[string]string
	stringLabels map[string]string

	// Debug, when set, annotates the generated listing with a comment
	// giving the source line of each top-level statement.
	Debug bool
}

// New creates a Generator that reports errors into diags.
func New(diags *diag.Bag) *Generator {
	return &Generator{
		buf:          asmbuf.New(),
		temps:        newTemps(),
		scope:        newScopes(),
		loops:        newLoops(),
		diags:        diags,
		floatLabels:  make(map[string]string),
		stringLabels: make(map[string]string),
	}
}

// Generate walks prog, a sequence of top-level statements executed in
// _start, and returns the finished assembly listing.
func (g *Generator) Generate(prog []ast.Stmt) (string, error) {
	g.scope.push()
	defer g.scope.pop()

	g.exitLabel = g.newLabel()

	g.buf.Inst("mov rbp, rsp")
	g.buf.Inst("sub rsp, %s", frameSizePlaceholder)

	for _, stmt := range prog {
		g.genStmt(stmt)
	}

	// Fall off the end without an explicit return: exit 0. An explicit
	// `return` jumps straight to exitLabel instead, so this line is
	// only ever reached when no return statement ran.
	g.buf.Inst("xor eax, eax")

	// The program epilogue per spec.md §4.3.9: emitted exactly once,
	// regardless of how many `return` statements the program has, each
	// of which only ever leaves its value in rax and jumps here.
	g.buf.Label(g.exitLabel)
	g.buf.Inst("mov rdi, rax")
	g.buf.Inst("mov rax, 60")
	g.buf.Inst("syscall")

	if g.diags.HadError() {
		return "", errors.New("compilation failed")
	}

	out := g.buf.Render()
	frame := alignUp(g.frameSize, 16)
	return strings.Replace(out, frameSizePlaceholder, fmt.Sprintf("%d", frame), -1), nil
}

// newLabel allocates the next sequential .L label.
func (g *Generator) newLabel() string {
	l := fmt.Sprintf(".L%d", g.labelCounter)
	g.labelCounter++
	return l
}

// allocateLocal reserves stack_frame_size-growing space for a
// just-declared variable and records it in the current scope, or
// reports a redeclaration error if name is already declared there.
func (g *Generator) allocateLocal(name string, dt types.DataType, line, col int) int {
	size := dt.Size()
	g.frameSize = alignUp(g.frameSize+size, size)
	if !g.scope.declare(name, dt, g.frameSize) {
		g.errorf(line, col, "redeclaration of variable '%s'", name)
	}
	return g.frameSize
}

// allocateTemp hands out a temp-pool slot of the given type, growing
// stack_frame_size if no free slot of that size exists.
func (g *Generator) allocateTemp(dt types.DataType) result {
	offset := g.temps.allocate(dt.Size(), &g.frameSize)
	return tempResult(dt, offset)
}

// freeIfTemp releases r's slot back to the pool if it came from one;
// every Result not consumed as someone else's operand must eventually
// flow through here exactly once.
func (g *Generator) freeIfTemp(r result) {
	if r.isTemp() {
		g.temps.free(r.baseOffset)
	}
}

func (g *Generator) errorf(line, col int, format string, args ...any) {
	g.diags.Errorf(line, col, 1, format, args...)
}
