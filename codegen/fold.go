package codegen

import (
	"github.com/skx/cc/token"
	"github.com/skx/cc/types"
)

// foldIntConstants evaluates a binary operator directly over two
// int-constant operands, producing the Result genBinary would
// otherwise have to emit runtime instructions to compute. `2 + 3 * 4`
// folds all the way down to a single IntConstant(14) this way, one
// nested call at a time, since the multiplication itself folds before
// the addition ever sees it.
//
// Division and remainder decline to fold when the divisor is zero,
// falling through to the normal runtime emission path so the compiled
// program faults the same way a hand-written `x / 0` would.
func foldIntConstants(op token.Kind, dt types.DataType, l, r int64) (result, bool) {
	switch op {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.AMP, token.PIPE, token.CARET:
		v, ok := foldArith(op, dt, l, r)
		if !ok {
			return result{}, false
		}
		return intResult(dt, v), true
	case token.LT, token.LE, token.GT, token.GE, token.EQ, token.NE:
		v := int64(0)
		if foldCompare(op, dt, l, r) {
			v = 1
		}
		return intResult(types.IntType, v), true
	}
	return result{}, false
}

func foldArith(op token.Kind, dt types.DataType, l, r int64) (int64, bool) {
	if dt.IsUnsigned {
		ul, ur := uint64(l), uint64(r)
		var uv uint64
		switch op {
		case token.PLUS:
			uv = ul + ur
		case token.MINUS:
			uv = ul - ur
		case token.STAR:
			uv = ul * ur
		case token.SLASH:
			if ur == 0 {
				return 0, false
			}
			uv = ul / ur
		case token.PERCENT:
			if ur == 0 {
				return 0, false
			}
			uv = ul % ur
		case token.AMP:
			uv = ul & ur
		case token.PIPE:
			uv = ul | ur
		case token.CARET:
			uv = ul ^ ur
		}
		return truncateUnsigned(int64(uv), dt.Size()), true
	}

	var v int64
	switch op {
	case token.PLUS:
		v = l + r
	case token.MINUS:
		v = l - r
	case token.STAR:
		v = l * r
	case token.SLASH:
		if r == 0 {
			return 0, false
		}
		v = l / r
	case token.PERCENT:
		if r == 0 {
			return 0, false
		}
		v = l % r
	case token.AMP:
		v = l & r
	case token.PIPE:
		v = l | r
	case token.CARET:
		v = l ^ r
	}
	return truncateSigned(v, dt.Size()), true
}

func foldCompare(op token.Kind, dt types.DataType, l, r int64) bool {
	if dt.IsUnsigned {
		ul, ur := uint64(l), uint64(r)
		switch op {
		case token.LT:
			return ul < ur
		case token.LE:
			return ul <= ur
		case token.GT:
			return ul > ur
		case token.GE:
			return ul >= ur
		case token.EQ:
			return ul == ur
		case token.NE:
			return ul != ur
		}
	}
	switch op {
	case token.LT:
		return l < r
	case token.LE:
		return l <= r
	case token.GT:
		return l > r
	case token.GE:
		return l >= r
	case token.EQ:
		return l == r
	case token.NE:
		return l != r
	}
	return false
}

// truncateSigned and truncateUnsigned reproduce the wraparound a real
// fixed-width register would apply, so a folded constant matches what
// the runtime arithmetic path would have left in a same-sized
// register.
func truncateSigned(v int64, size int) int64 {
	switch size {
	case 1:
		return int64(int8(v))
	case 2:
		return int64(int16(v))
	case 4:
		return int64(int32(v))
	default:
		return v
	}
}

func truncateUnsigned(v int64, size int) int64 {
	switch size {
	case 1:
		return int64(uint8(v))
	case 2:
		return int64(uint16(v))
	case 4:
		return int64(uint32(v))
	default:
		return v
	}
}
