package lattice

// SignExtend widens bs to width bits. Signed bitstrings replicate their most
// significant bit, unsigned ones are padded with Zero. A DontCare MSB is
// always replicated. Bitstrings already at least width long are returned as
// a copy.
func SignExtend(bs Bitstring, signed bool, width int) Bitstring {
	if len(bs) >= width {
		return bs.Clone()
	}
	src := bs
	if len(src) == 0 {
		src = Bitstring{DontCare}
	}
	sign := Zero
	if signed || src[0] == DontCare {
		sign = src[0]
	}
	res := make(Bitstring, width)
	pad := width - len(src)
	for i := 0; i < pad; i++ {
		res[i] = sign
	}
	copy(res[pad:], src)
	return res
}

// Truncate keeps the width least significant bits of bs.
func Truncate(bs Bitstring, width int) Bitstring {
	if width < 0 {
		width = 0
	}
	if len(bs) <= width {
		return bs.Clone()
	}
	return bs[len(bs)-width:].Clone()
}

// SignReduce drops leading bits that carry no information: repeated sign
// bits for signed values, leading zeros (or repeated DontCare) for unsigned
// ones. A single bit is never removed.
func SignReduce(bs Bitstring, signed bool) Bitstring {
	i := 0
	for len(bs)-i > 1 {
		a, b := bs[i], bs[i+1]
		if signed {
			if a == Unknown || a != b {
				break
			}
		} else {
			if !(a == DontCare && b == DontCare) && !(a == Zero && b != DontCare) {
				break
			}
		}
		i++
	}
	return bs[i:].Clone()
}

// Significant returns the number of bits bs still needs once redundant
// leading bits are removed.
func Significant(bs Bitstring, signed bool) int {
	if len(bs) == 0 {
		return 0
	}
	return len(SignReduce(bs, signed))
}

// Resize truncates or extends bs so that it has exactly width bits.
func Resize(bs Bitstring, signed bool, width int) Bitstring {
	if len(bs) > width {
		return Truncate(bs, width)
	}
	return SignExtend(bs, signed, width)
}
