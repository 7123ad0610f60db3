package ir

import "fmt"

// Op identifies the operator computed by an Assign statement.
type Op uint8

const (
	OpInvalid Op = iota

	OpCopy    // x = y, x = const
	OpAddrOf  // x = &v
	OpNop     // same-representation cast
	OpConvert // value conversion
	OpViewConvert
	OpBitNot
	OpTruthNot
	OpNegate
	OpAbs

	OpBitAnd
	OpBitOr
	OpBitXor
	OpTruthAnd
	OpTruthOr
	OpTruthXor

	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	OpPlus
	OpPointerPlus
	OpMinus
	OpTernaryPlus // a + b + c
	OpTernaryPM   // a + b - c
	OpTernaryMP   // a - b + c
	OpTernaryMM   // a - b - c
	OpMult
	OpWidenMult
	OpTruncDiv
	OpExactDiv
	OpTruncMod

	OpLShift
	OpRShift
	OpLRotate
	OpRRotate
	OpFshl
	OpFshr

	OpCond         // c ? a : b
	OpBitIorConcat // (a with low bits cleared) | b, offset in the third operand
	OpExtractBit   // bit k of a
	OpLut
	OpMin
	OpMax

	OpCall
	OpLoad
	OpOpaque

	numOps
)

var opNames = [...]string{
	OpInvalid:      "invalid",
	OpCopy:         "copy",
	OpAddrOf:       "addr",
	OpNop:          "nop",
	OpConvert:      "convert",
	OpViewConvert:  "view_convert",
	OpBitNot:       "bit_not",
	OpTruthNot:     "truth_not",
	OpNegate:       "negate",
	OpAbs:          "abs",
	OpBitAnd:       "bit_and",
	OpBitOr:        "bit_or",
	OpBitXor:       "bit_xor",
	OpTruthAnd:     "truth_and",
	OpTruthOr:      "truth_or",
	OpTruthXor:     "truth_xor",
	OpEq:           "eq",
	OpNe:           "ne",
	OpLt:           "lt",
	OpLe:           "le",
	OpGt:           "gt",
	OpGe:           "ge",
	OpPlus:         "plus",
	OpPointerPlus:  "pointer_plus",
	OpMinus:        "minus",
	OpTernaryPlus:  "ternary_plus",
	OpTernaryPM:    "ternary_pm",
	OpTernaryMP:    "ternary_mp",
	OpTernaryMM:    "ternary_mm",
	OpMult:         "mult",
	OpWidenMult:    "widen_mult",
	OpTruncDiv:     "trunc_div",
	OpExactDiv:     "exact_div",
	OpTruncMod:     "trunc_mod",
	OpLShift:       "lshift",
	OpRShift:       "rshift",
	OpLRotate:      "lrotate",
	OpRRotate:      "rrotate",
	OpFshl:         "fshl",
	OpFshr:         "fshr",
	OpCond:         "cond",
	OpBitIorConcat: "bit_ior_concat",
	OpExtractBit:   "extract_bit",
	OpLut:          "lut",
	OpMin:          "min",
	OpMax:          "max",
	OpCall:         "call",
	OpLoad:         "load",
	OpOpaque:       "opaque",
}

func (op Op) String() string {
	if op < numOps {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// Valid reports whether op is a known operator other than OpInvalid.
func (op Op) Valid() bool {
	return op > OpInvalid && op < numOps
}

// Arity returns the number of operands op expects, or -1 when the count
// is variable.
func (op Op) Arity() int {
	switch op {
	case OpAddrOf, OpLut, OpLoad, OpCall, OpOpaque:
		return -1
	case OpCopy, OpNop, OpConvert, OpViewConvert, OpBitNot, OpTruthNot, OpNegate, OpAbs:
		return 1
	case OpTernaryPlus, OpTernaryPM, OpTernaryMP, OpTernaryMM, OpCond, OpBitIorConcat, OpFshl, OpFshr:
		return 3
	case OpInvalid:
		return 0
	default:
		if op < numOps {
			return 2
		}
		return 0
	}
}

// ParseOp returns the operator named s.
func ParseOp(s string) (Op, error) {
	for i, name := range opNames {
		if i != int(OpInvalid) && name == s {
			return Op(i), nil
		}
	}
	return OpInvalid, fmt.Errorf("unknown operator %q", s)
}
