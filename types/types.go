// Package types implements the compiler's C type system: the small,
// fixed set of scalar types the code generator needs to know the size
// and signedness of, plus the usual-arithmetic-conversion rules C
// applies when two differently-typed operands meet in an expression.
//
// Grounded on the original implementation's DataType (a type tag plus
// an isUnsigned flag) and its DataTypeSize table; pointer, array,
// struct and union member types are out of scope, so DataType here
// stays a flat tag instead of the original's tagged union.
package types

import "fmt"

// Kind identifies a scalar C type.
type Kind int

// Scalar type kinds, ordered by increasing conversion rank within each
// of the integer and floating families.
const (
	Void Kind = iota
	Char
	Short
	Int
	Long
	LongLong
	Float
	Double
	LongDouble
)

// DataType is a scalar C type: a kind plus, for integer kinds, a
// signedness flag. Floating kinds are always signed.
type DataType struct {
	Kind       Kind
	IsUnsigned bool
}

// Convenience constructors for the types the parser produces directly
// from a declaration's type specifiers.
var (
	VoidType   = DataType{Kind: Void}
	CharType   = DataType{Kind: Char}
	IntType    = DataType{Kind: Int}
	UIntType   = DataType{Kind: Int, IsUnsigned: true}
	LongType   = DataType{Kind: Long}
	FloatType  = DataType{Kind: Float}
	DoubleType = DataType{Kind: Double}
)

// Size returns the type's size in bytes, per the System V x86-64 ABI
// sizes this compiler targets: char 1, short 2, int/long 4, long long/
// double/pointer 8.
func (d DataType) Size() int {
	switch d.Kind {
	case Char:
		return 1
	case Short:
		return 2
	case Int, Long:
		return 4
	case LongLong, Double:
		return 8
	case Float:
		return 4
	case LongDouble:
		// Rejected by the parser; still needs a size so sizeof(long double)
		// doesn't crash the type checker if it's ever reached.
		return 16
	case Void:
		return 0
	}
	return 0
}

// IsFloat reports whether d is one of the floating-point kinds.
func (d DataType) IsFloat() bool {
	switch d.Kind {
	case Float, Double, LongDouble:
		return true
	}
	return false
}

// IsInteger reports whether d is an integer kind (including char,
// which C treats as an integer type).
func (d DataType) IsInteger() bool {
	switch d.Kind {
	case Char, Short, Int, Long, LongLong:
		return true
	}
	return false
}

// rank gives the conversion rank used by the usual arithmetic
// conversions: within a family, higher rank wins; float ranks below
// double which ranks below long double, and any float type outranks
// any integer type.
func (d DataType) rank() int {
	if d.IsFloat() {
		switch d.Kind {
		case Float:
			return 100
		case Double:
			return 101
		case LongDouble:
			return 102
		}
	}
	switch d.Kind {
	case Char:
		return 1
	case Short:
		return 2
	case Int:
		return 3
	case Long:
		return 4
	case LongLong:
		return 5
	}
	return 0
}

// Equal reports whether d and other are the identical scalar type.
func (d DataType) Equal(other DataType) bool {
	return d.Kind == other.Kind && d.IsUnsigned == other.IsUnsigned
}

// IntegerPromote applies C's integer promotion to a single operand, as
// required before unary `-`/`~` and the left operand of a shift: any
// integer type narrower than `int` becomes plain `int` (signedness
// dropped, since `int` fully represents every value either width
// holds); `int` and wider, and every float type, pass through
// unchanged. Implemented as the self-conversion case of
// UsualArithmeticConversion, which already encodes this rule.
func IntegerPromote(d DataType) DataType {
	return UsualArithmeticConversion(d, d)
}

// UsualArithmeticConversion computes the common type two operands are
// converted to before a binary arithmetic or comparison operator is
// applied, following C's usual arithmetic conversions: if either
// operand is floating, the result is the wider float type; otherwise
// integer promotion picks the operand of higher rank, with ties broken
// towards unsigned.
func UsualArithmeticConversion(a, b DataType) DataType {
	if a.IsFloat() || b.IsFloat() {
		winner := a
		if !a.IsFloat() || (b.IsFloat() && b.rank() > a.rank()) {
			winner = b
		}
		return DataType{Kind: winner.Kind}
	}

	var result DataType
	switch {
	case a.IsUnsigned == b.IsUnsigned:
		// Signednesses agree: take the greater-rank type with that
		// signedness.
		result = a
		if b.rank() > a.rank() {
			result = b
		}
	case a.IsUnsigned && a.rank() >= b.rank():
		result = a
	case b.IsUnsigned && b.rank() >= a.rank():
		result = b
	case a.IsUnsigned:
		// b is signed and outranks the unsigned a: the signed type wins,
		// per the spec's rule 6 (not an OR of the two signedness flags).
		result = DataType{Kind: b.Kind}
	default:
		result = DataType{Kind: a.Kind}
	}

	if result.Kind < Int {
		// Integer promotion: anything narrower than int is promoted to
		// plain int, since int can represent every value of char/short
		// whether or not the source type was unsigned.
		result.Kind = Int
		result.IsUnsigned = false
	}
	return result
}

// String renders a DataType as a C-ish type name, used in diagnostics.
func (d DataType) String() string {
	name := map[Kind]string{
		Void:       "void",
		Char:       "char",
		Short:      "short",
		Int:        "int",
		Long:       "long",
		LongLong:   "long long",
		Float:      "float",
		Double:     "double",
		LongDouble: "long double",
	}[d.Kind]

	if d.IsUnsigned && d.IsInteger() {
		return fmt.Sprintf("unsigned %s", name)
	}
	return name
}
