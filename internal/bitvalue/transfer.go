package bitvalue

import (
	"github.com/gnoverse/bitwidth/internal/analysis/lattice"
	"github.com/gnoverse/bitwidth/internal/ir"
)

// Transfer evaluates a single assignment of fn given the current and best
// estimates of its operands. The result never has more bits than the
// destination's declared width.
func Transfer(fn *ir.Function, a *ir.Assign, current, best map[ir.NodeID]lattice.Bitstring, opts ...Option) lattice.Bitstring {
	if current == nil {
		current = make(map[ir.NodeID]lattice.Bitstring)
	}
	s := &analysis{
		cfg:     newConfig(opts),
		fn:      fn,
		best:    best,
		current: current,
	}
	return s.transfer(a)
}

// operand returns what is known about id. Constants come from best or their
// value, values outside the analysis are fully unknown.
func (s *analysis) operand(id ir.NodeID) lattice.Bitstring {
	n := s.fn.Node(id)
	if !n.Handled {
		return lattice.Unknowns(n.Width)
	}
	if n.Kind == ir.KindConst {
		if bs, ok := s.best[id]; ok && len(bs) > 0 {
			return bs
		}
		return lattice.FromConstant(n.Value, n.Width, n.Signed)
	}
	if bs, ok := s.current[id]; ok {
		return bs
	}
	if bs, ok := s.best[id]; ok && len(bs) > 0 {
		return bs
	}
	return lattice.Unknowns(n.Width)
}

// constant returns the integer value of id when every bit of it is known.
func (s *analysis) constant(id ir.NodeID) (int64, bool) {
	n := s.fn.Node(id)
	if n.Kind == ir.KindConst {
		return n.Value, true
	}
	return s.operand(id).Int64(n.Signed)
}

func (s *analysis) arg(a *ir.Assign, i int) ir.NodeID {
	if i >= len(a.Args) || a.Args[i] == ir.NoNode {
		contractViolation(s.fn, a, "%s expects operand %d", a.Op, i)
	}
	return a.Args[i]
}

func (s *analysis) signed(id ir.NodeID) bool {
	return s.fn.Node(id).Signed
}

func (s *analysis) transfer(a *ir.Assign) lattice.Bitstring {
	dest := s.fn.Node(a.Dest)
	width := dest.Width
	var res lattice.Bitstring

	switch a.Op {
	case ir.OpCopy:
		res = s.operand(s.arg(a, 0))
	case ir.OpNop, ir.OpConvert, ir.OpViewConvert:
		res = s.convert(a, dest)
	case ir.OpAddrOf:
		res = addrOf(s.cfg.addressWidth, a.Align)
	case ir.OpBitNot:
		x := s.arg(a, 0)
		res = bitNot(s.operand(x), s.fn.Node(x), width)
	case ir.OpTruthNot:
		res = lattice.Bitstring{lattice.Xor(s.operand(s.arg(a, 0)).Disjunction(), lattice.One)}
	case ir.OpNegate:
		res = negate(s.operand(s.arg(a, 0)), dest)
	case ir.OpAbs:
		x := s.arg(a, 0)
		res = abs(s.operand(x), s.fn.Node(x), dest)

	case ir.OpBitAnd, ir.OpBitOr, ir.OpBitXor:
		x, y := s.arg(a, 0), s.arg(a, 1)
		res = bitwise(a.Op, s.operand(x), s.operand(y), s.fn.Node(x), s.fn.Node(y), width)
	case ir.OpTruthAnd, ir.OpTruthOr, ir.OpTruthXor:
		l := s.operand(s.arg(a, 0)).Disjunction()
		r := s.operand(s.arg(a, 1)).Disjunction()
		res = lattice.Bitstring{truthOp(a.Op)(l, r)}

	case ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		x, y := s.arg(a, 0), s.arg(a, 1)
		res = lattice.Bitstring{compare(a.Op, s.operand(x), s.operand(y), s.signed(x), s.signed(y))}

	case ir.OpPlus, ir.OpPointerPlus:
		x, y := s.arg(a, 0), s.arg(a, 1)
		res = addChain(s.operand(x), s.operand(y), s.signed(x), s.signed(y), dest, lattice.Add)
	case ir.OpMinus:
		x, y := s.arg(a, 0), s.arg(a, 1)
		res = addChain(s.operand(x), s.operand(y), s.signed(x), s.signed(y), dest, lattice.Sub)
	case ir.OpTernaryPlus, ir.OpTernaryPM, ir.OpTernaryMP, ir.OpTernaryMM:
		res = s.ternary(a, dest)
	case ir.OpMult, ir.OpWidenMult:
		x, y := s.arg(a, 0), s.arg(a, 1)
		res = mult(s.operand(x), s.operand(y), s.signed(x), s.signed(y), width)
	case ir.OpTruncDiv, ir.OpExactDiv:
		x := s.operand(s.arg(a, 0))
		s.arg(a, 1)
		n := len(x)
		if s.signed(a.Args[0]) {
			n++
		}
		res = lattice.Unknowns(n)
	case ir.OpTruncMod:
		x, y := s.operand(s.arg(a, 0)), s.operand(s.arg(a, 1))
		n := min(len(x), len(y))
		if s.signed(a.Args[0]) {
			n++
		}
		res = lattice.Unknowns(n)

	case ir.OpLShift:
		res = s.lshift(a, dest)
	case ir.OpRShift:
		res = s.rshift(a)
	case ir.OpLRotate, ir.OpRRotate:
		res = s.rotate(a, width)
	case ir.OpFshl, ir.OpFshr:
		res = s.funnel(a, width)

	case ir.OpCond:
		res = s.cond(a, dest)
	case ir.OpBitIorConcat:
		res = s.concat(a)
	case ir.OpExtractBit:
		res = s.extractBit(a)
	case ir.OpLut:
		res = lattice.Unknowns(1)
	case ir.OpMin, ir.OpMax:
		x, y := s.arg(a, 0), s.arg(a, 1)
		bx, by := equalize(s.operand(x), s.operand(y), s.signed(x), s.signed(y))
		res = lattice.Inf(bx, by, len(bx), s.signed(x), false)

	case ir.OpCall:
		if bs, ok := s.cfg.summaries.Lookup(a.Callee); ok && len(bs) > 0 {
			res = bs
		}
	case ir.OpLoad, ir.OpOpaque:
		res = nil

	default:
		contractViolation(s.fn, a, "unsupported operator %s", a.Op)
	}

	if len(res) == 0 {
		return lattice.Unknowns(width)
	}
	return lattice.Truncate(res, width)
}

// equalize extends the shorter of x and y, each by its own signedness.
func equalize(x, y lattice.Bitstring, sx, sy bool) (lattice.Bitstring, lattice.Bitstring) {
	switch {
	case len(x) > len(y):
		y = lattice.SignExtend(y, sy, len(x))
	case len(y) > len(x):
		x = lattice.SignExtend(x, sx, len(y))
	}
	return x, y
}

func (s *analysis) convert(a *ir.Assign, dest *ir.Node) lattice.Bitstring {
	src := s.fn.Node(s.arg(a, 0))
	res := s.operand(src.ID)
	noExtend := dest.Signed && dest.Width == 1 && src.Bool
	if dest.Signed != src.Signed && !noExtend && len(res) < dest.Width {
		res = lattice.SignExtend(res, src.Signed, dest.Width)
	}
	return lattice.Truncate(res, dest.Width)
}

// addrOf describes an address whose align low bits are zero.
func addrOf(addressWidth, align int) lattice.Bitstring {
	if align <= 0 || addressWidth <= align {
		return nil
	}
	return append(lattice.Unknowns(addressWidth-align), lattice.Zeros(align)...)
}
