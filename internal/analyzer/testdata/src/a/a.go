package a

func mask(x uint8) uint8 { // want `result of mask needs 4 of 8 bits`
	return x & 0x0f // want `t0 \(uint8\) needs 4 of 8 bits`
}

func wide(x uint8) uint8 {
	return x | 0x80
}

func seven() int { // want `result of seven needs 4 of 64 bits, always 7`
	return 7
}

func quiet(x uint16) uint16 { //bitwidth:ignore
	return x >> 12
}

func pick(c bool) uint8 { // want `result of pick needs 3 of 8 bits`
	if c {
		return 4
	}
	return 6
}
