package lattice

// MeetBit combines two facts about the same bit. DontCare is the identity,
// agreeing constants are kept and anything else becomes Unknown.
func MeetBit(a, b Bit) Bit {
	switch {
	case a == DontCare:
		return b
	case b == DontCare:
		return a
	case a == b:
		return a
	default:
		return Unknown
	}
}

// Inf merges two bitstrings describing the same destination. The shorter
// operand is extended using the destination's signedness and the result is
// bounded by width. Boolean destinations only merge their least significant
// bit.
func Inf(a, b Bitstring, width int, signed, isBool bool) Bitstring {
	if isBool {
		return Bitstring{MeetBit(a.LSB(), b.LSB())}
	}
	n := max(len(a), len(b))
	if n == 0 {
		return DontCares(min(1, width))
	}
	ea := SignExtend(a, signed, n)
	eb := SignExtend(b, signed, n)
	res := make(Bitstring, n)
	for i := range res {
		res[i] = MeetBit(ea[i], eb[i])
	}
	if width > 0 {
		return Truncate(res, width)
	}
	return res
}
