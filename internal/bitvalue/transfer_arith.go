package bitvalue

import (
	"github.com/gnoverse/bitwidth/internal/analysis/lattice"
	"github.com/gnoverse/bitwidth/internal/ir"
)

// rippleFunc is lattice.Add or lattice.Sub.
type rippleFunc func(a, b, carry lattice.Bit) (lattice.Bit, lattice.Bit)

// addChain ripples x op y from the least significant bit for at most the
// destination width. A signed destination gains one extra bit computed from
// the operands' sign bits; an unsigned one is padded to its full width by
// propagating the final carry.
func addChain(x, y lattice.Bitstring, sx, sy bool, dest *ir.Node, op rippleFunc) lattice.Bitstring {
	x, y = equalize(x, y, sx, sy)
	width := dest.Width
	n := min(width, len(x))

	res := make(lattice.Bitstring, n)
	carry := lattice.Zero
	for i := 0; i < n; i++ {
		var bit lattice.Bit
		carry, bit = op(x.At(i), y.At(i), carry)
		res[n-1-i] = bit
	}

	if dest.Signed {
		if len(res) < width {
			_, bit := op(x.MSB(), y.MSB(), carry)
			res = append(lattice.Bitstring{bit}, res...)
		}
		return res
	}
	for len(res) < width {
		var bit lattice.Bit
		carry, bit = op(lattice.Zero, lattice.Zero, carry)
		res = append(lattice.Bitstring{bit}, res...)
	}
	return res
}

// ternary computes a op1 b op2 c as two ripple chains.
func (s *analysis) ternary(a *ir.Assign, dest *ir.Node) lattice.Bitstring {
	x, y, z := s.arg(a, 0), s.arg(a, 1), s.arg(a, 2)
	bx, by, bz := s.operand(x), s.operand(y), s.operand(z)
	n := max(len(bx), len(by), len(bz))
	bx = lattice.SignExtend(bx, s.signed(x), n)
	by = lattice.SignExtend(by, s.signed(y), n)
	bz = lattice.SignExtend(bz, s.signed(z), n)

	first, second := rippleFunc(lattice.Add), rippleFunc(lattice.Add)
	switch a.Op {
	case ir.OpTernaryPM:
		second = lattice.Sub
	case ir.OpTernaryMP:
		first = lattice.Sub
	case ir.OpTernaryMM:
		first, second = lattice.Sub, lattice.Sub
	}
	partial := addChain(bx, by, s.signed(x), s.signed(y), dest, first)
	return addChain(partial, bz, dest.Signed, s.signed(z), dest, second)
}

// negate computes 0 - x.
func negate(x lattice.Bitstring, dest *ir.Node) lattice.Bitstring {
	if !dest.Signed && len(x) < dest.Width {
		x = lattice.SignExtend(x, false, dest.Width)
	}
	return addChain(lattice.Zeros(len(x)), x, false, dest.Signed, dest, lattice.Sub)
}

// abs splits on the sign bit of x: non negative values pass through,
// negative ones are negated and an unknown sign merges both outcomes.
// Unsigned values are never negative.
func abs(x lattice.Bitstring, src, dest *ir.Node) lattice.Bitstring {
	if !src.Signed {
		return x
	}
	negated := func() lattice.Bitstring {
		n := len(x)
		res := make(lattice.Bitstring, n)
		borrow := lattice.Zero
		for i := 0; i < n; i++ {
			var bit lattice.Bit
			borrow, bit = lattice.Sub(lattice.Zero, x.At(i), borrow)
			res[n-1-i] = bit
		}
		if n < src.Width {
			_, bit := lattice.Sub(lattice.Zero, x.MSB(), borrow)
			res = append(lattice.Bitstring{bit}, res...)
		}
		return res
	}

	switch x.MSB() {
	case lattice.Zero:
		return x
	case lattice.One:
		return negated()
	default:
		neg := negated()
		n := max(len(x), len(neg))
		return lattice.Inf(x, neg, n, dest.Signed, dest.Bool)
	}
}

// mult accumulates shifted partial products, bounded by the sum of the
// operand lengths and the destination width.
func mult(x, y lattice.Bitstring, sx, sy bool, width int) lattice.Bitstring {
	size := min(len(x)+len(y), width)
	x = lattice.Truncate(lattice.SignExtend(x, sx, size), size)
	y = lattice.Truncate(lattice.SignExtend(y, sy, size), size)

	acc := lattice.Zeros(size)
	for pos := 0; pos < size; pos++ {
		yb := y.At(pos)
		partial := make(lattice.Bitstring, size)
		for i := 0; i < size; i++ {
			if i < pos {
				partial[size-1-i] = lattice.Zero
				continue
			}
			partial[size-1-i] = lattice.And(x.At(i-pos), yb)
		}
		carry := lattice.Zero
		next := make(lattice.Bitstring, size)
		for i := 0; i < size; i++ {
			var bit lattice.Bit
			carry, bit = lattice.Add(partial.At(i), acc.At(i), carry)
			next[size-1-i] = bit
		}
		acc = next
	}
	return acc
}

// compare scans x and y from the most significant bit; the first pair of
// differing constants decides the result and an Unknown bit before that
// makes it Unknown. A DontCare bit before the decision leaves the result
// DontCare. For signed operands the sign position has reversed polarity.
func compare(op ir.Op, x, y lattice.Bitstring, sx, sy bool) lattice.Bit {
	x, y = equalize(x, y, sx, sy)
	signed := sx || sy
	undecided := false
	for i := range x {
		a, b := x[i], y[i]
		if a == lattice.DontCare || b == lattice.DontCare {
			undecided = true
			continue
		}
		if undecided {
			return lattice.DontCare
		}
		if a == lattice.Unknown || b == lattice.Unknown {
			return lattice.Unknown
		}
		if a == b {
			continue
		}
		greater := a == lattice.One
		if i == 0 && signed {
			greater = !greater
		}
		switch op {
		case ir.OpEq:
			return lattice.Zero
		case ir.OpNe:
			return lattice.One
		case ir.OpGt, ir.OpGe:
			return boolBit(greater)
		default:
			return boolBit(!greater)
		}
	}
	if undecided {
		return lattice.DontCare
	}
	switch op {
	case ir.OpEq, ir.OpLe, ir.OpGe:
		return lattice.One
	default:
		return lattice.Zero
	}
}

func boolBit(b bool) lattice.Bit {
	if b {
		return lattice.One
	}
	return lattice.Zero
}
