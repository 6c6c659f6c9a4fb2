package codegen

import (
	"strconv"

	"github.com/skx/cc/types"
)

// locationKind tags a Result's storage location.
//
// Grounded on the original implementation's Result
// (ResultLocationType, DataType, a location union) — the union
// becomes a tagged struct with one field per variant, since Go has no
// C-style anonymous unions and the values are small enough that the
// waste of an unused field per variant doesn't matter.
type locationKind int

const (
	locIntConstant locationKind = iota
	locFloatConstant
	locBaseOffset
	locTemp
	locStringLiteral
)

// result is the central codegen value descriptor: every intermediate
// value produced while walking an expression is a result, carrying
// its C type alongside where it currently lives.
type result struct {
	dataType types.DataType
	kind     locationKind

	intValue   int64  // locIntConstant
	label      string // locFloatConstant / locStringLiteral
	baseOffset int    // locBaseOffset / locTemp
}

func intResult(dt types.DataType, v int64) result {
	return result{dataType: dt, kind: locIntConstant, intValue: v}
}

func floatResult(dt types.DataType, label string) result {
	return result{dataType: dt, kind: locFloatConstant, label: label}
}

func baseOffsetResult(dt types.DataType, offset int) result {
	return result{dataType: dt, kind: locBaseOffset, baseOffset: offset}
}

func tempResult(dt types.DataType, offset int) result {
	return result{dataType: dt, kind: locTemp, baseOffset: offset}
}

// stringLitResult is a labelled datum: a string literal's .data
// address. It is never a modifiable lvalue, per isLvalue below.
func stringLitResult(dt types.DataType, label string) result {
	return result{dataType: dt, kind: locStringLiteral, label: label}
}

// isTemp reports whether r occupies a slot from the temp pool, which
// the producer of r is responsible for freeing exactly once.
func (r result) isTemp() bool {
	return r.kind == locTemp
}

// isLvalue reports whether r designates a modifiable storage location:
// only a declared variable's BaseOffset qualifies. A constant, a
// floating or string literal, or a Temp (compiler-owned scratch
// storage, not source-level storage) cannot appear on the left of an
// assignment.
func (r result) isLvalue() bool {
	return r.kind == locBaseOffset
}

// operand renders r as a NASM memory/immediate operand of the given
// byte size, for use as a direct instruction argument. Results living
// in a register are addressed by the caller directly and don't go
// through this.
func (r result) operand(size int) string {
	switch r.kind {
	case locIntConstant:
		return strconv.FormatInt(r.intValue, 10)
	case locBaseOffset, locTemp:
		return memOperand(size, r.baseOffset)
	case locFloatConstant, locStringLiteral:
		return "[" + r.label + "]"
	}
	return ""
}

func memOperand(size int, offset int) string {
	return sizeKeyword(size) + " [rbp-" + strconv.Itoa(offset) + "]"
}

func sizeKeyword(size int) string {
	switch size {
	case 1:
		return "byte"
	case 2:
		return "word"
	case 4:
		return "dword"
	default:
		return "qword"
	}
}

