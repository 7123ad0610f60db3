package bitvalue

import (
	"slices"

	"github.com/gnoverse/bitwidth/internal/analysis/lattice"
	"github.com/gnoverse/bitwidth/internal/ir"
)

// normalizeBool turns a lone DontCare bit of an unsigned non boolean
// operand into 0X so that extension pads it with zeros.
func normalizeBool(x lattice.Bitstring, n *ir.Node) lattice.Bitstring {
	if len(x) == 1 && x[0] == lattice.DontCare && !n.Bool && !n.Signed {
		return lattice.Bitstring{lattice.Zero, lattice.DontCare}
	}
	return x
}

func bitwise(op ir.Op, x, y lattice.Bitstring, nx, ny *ir.Node, width int) lattice.Bitstring {
	table := lattice.And
	switch op {
	case ir.OpBitOr:
		table = lattice.Or
	case ir.OpBitXor:
		table = lattice.Xor
	}
	x = lattice.SignExtend(normalizeBool(x, nx), nx.Signed, width)
	y = lattice.SignExtend(normalizeBool(y, ny), ny.Signed, width)
	res := make(lattice.Bitstring, width)
	for i := 0; i < width; i++ {
		res[width-1-i] = table(x.At(i), y.At(i))
	}
	return res
}

func bitNot(x lattice.Bitstring, n *ir.Node, width int) lattice.Bitstring {
	x = lattice.SignExtend(normalizeBool(x, n), n.Signed, width)
	res := make(lattice.Bitstring, width)
	for i := 0; i < width; i++ {
		res[width-1-i] = lattice.Xor(x.At(i), lattice.One)
	}
	return res
}

func truthOp(op ir.Op) func(a, b lattice.Bit) lattice.Bit {
	switch op {
	case ir.OpTruthAnd:
		return lattice.And
	case ir.OpTruthOr:
		return lattice.Or
	default:
		return lattice.Xor
	}
}

func (s *analysis) lshift(a *ir.Assign, dest *ir.Node) lattice.Bitstring {
	xid, kid := s.arg(a, 0), s.arg(a, 1)
	x := s.operand(xid)
	width := dest.Width

	k, ok := s.constant(kid)
	if !ok {
		sh := s.operand(kid)
		if len(sh) >= 31 {
			return lattice.Unknowns(width)
		}
		reach := 1 << len(sh)
		if width < reach || width < reach+len(x) {
			return lattice.Unknowns(width)
		}
		return lattice.Unknowns(len(x) + reach)
	}
	switch {
	case k < 0:
		return lattice.Unknowns(width)
	case int64(width) <= k:
		return lattice.Bitstring{lattice.Zero}
	}
	res := lattice.Truncate(x, s.fn.Node(xid).Width)
	res = append(res, lattice.Zeros(int(k))...)
	return lattice.Truncate(res, width)
}

func (s *analysis) rshift(a *ir.Assign) lattice.Bitstring {
	xid, kid := s.arg(a, 0), s.arg(a, 1)
	x := s.operand(xid)

	k, ok := s.constant(kid)
	if !ok || k < 0 {
		return lattice.Unknowns(len(x))
	}
	if int64(len(x)) <= k {
		if s.signed(xid) {
			return lattice.Bitstring{x.MSB()}
		}
		return lattice.Bitstring{lattice.Zero}
	}
	return x[:len(x)-int(k)].Clone()
}

func (s *analysis) rotate(a *ir.Assign, width int) lattice.Bitstring {
	xid, kid := s.arg(a, 0), s.arg(a, 1)
	k, ok := s.constant(kid)
	if !ok || width == 0 {
		return lattice.Unknowns(width)
	}
	x := lattice.Resize(s.operand(xid), s.signed(xid), width)
	shift := int(((k % int64(width)) + int64(width)) % int64(width))
	if a.Op == ir.OpRRotate {
		shift = (width - shift) % width
	}
	res := make(lattice.Bitstring, 0, width)
	res = append(res, x[shift:]...)
	return append(res, x[:shift]...)
}

// funnel shifts the concatenation hi:lo and keeps width bits.
func (s *analysis) funnel(a *ir.Assign, width int) lattice.Bitstring {
	hid, lid, kid := s.arg(a, 0), s.arg(a, 1), s.arg(a, 2)
	k, ok := s.constant(kid)
	if !ok || width == 0 {
		return lattice.Unknowns(width)
	}
	shift := int(((k % int64(width)) + int64(width)) % int64(width))
	cat := make(lattice.Bitstring, 0, 2*width)
	cat = append(cat, lattice.Resize(s.operand(hid), s.signed(hid), width)...)
	cat = append(cat, lattice.Resize(s.operand(lid), s.signed(lid), width)...)
	if a.Op == ir.OpFshl {
		return cat[shift : shift+width].Clone()
	}
	return cat[width-shift : 2*width-shift].Clone()
}

func (s *analysis) cond(a *ir.Assign, dest *ir.Node) lattice.Bitstring {
	cid, tid, eid := s.arg(a, 0), s.arg(a, 1), s.arg(a, 2)
	c := s.operand(cid)
	switch c.Disjunction() {
	case lattice.Zero:
		if slices.Contains(c, lattice.DontCare) {
			return lattice.DontCares(dest.Width)
		}
		return s.operand(eid)
	case lattice.One:
		return s.operand(tid)
	}
	t, e := equalize(s.operand(tid), s.operand(eid), s.signed(tid), s.signed(eid))
	return lattice.Inf(t, e, dest.Width, dest.Signed, dest.Bool)
}

// concat takes the low offset bits from the second operand and the rest
// from the first.
func (s *analysis) concat(a *ir.Assign) lattice.Bitstring {
	hid, lid, oid := s.arg(a, 0), s.arg(a, 1), s.arg(a, 2)
	offset, ok := s.constant(oid)
	if !ok {
		contractViolation(s.fn, a, "concatenation offset is not constant")
	}
	hi, lo := equalize(s.operand(hid), s.operand(lid), s.signed(hid), s.signed(lid))
	n := len(hi)
	res := make(lattice.Bitstring, n)
	for i := 0; i < n; i++ {
		if int64(i) < offset {
			res[n-1-i] = lo.At(i)
		} else {
			res[n-1-i] = hi.At(i)
		}
	}
	return res
}

func (s *analysis) extractBit(a *ir.Assign) lattice.Bitstring {
	xid, kid := s.arg(a, 0), s.arg(a, 1)
	k, ok := s.constant(kid)
	if !ok || k < 0 {
		contractViolation(s.fn, a, "bit position is not a non negative constant")
	}
	x := s.operand(xid)
	if int64(len(x)) <= k {
		if s.signed(xid) {
			return lattice.Bitstring{x.MSB()}
		}
		return lattice.Bitstring{lattice.Zero}
	}
	return lattice.Bitstring{x.At(int(k))}
}
