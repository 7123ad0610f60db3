package lattice

import (
	"fmt"
	"strings"
)

// Bit models what is statically known about a single bit of a value.
type Bit uint8

const (
	Zero     Bit = iota // constant 0
	One                 // constant 1
	Unknown             // varies at runtime
	DontCare            // not yet constrained / not observed
)

func (b Bit) String() string {
	switch b {
	case Zero:
		return "0"
	case One:
		return "1"
	case Unknown:
		return "U"
	case DontCare:
		return "X"
	default:
		return "?"
	}
}

// IsConstant reports whether the bit is Zero or One.
func (b Bit) IsConstant() bool {
	return b == Zero || b == One
}

// Bitstring is an MSB-first sequence of lattice bits. Its length is the
// number of currently known positions, which may be smaller than the
// declared width of the value it describes.
type Bitstring []Bit

// Unknowns returns a bitstring of width Unknown bits.
func Unknowns(width int) Bitstring {
	return fill(width, Unknown)
}

// DontCares returns a bitstring of width DontCare bits.
func DontCares(width int) Bitstring {
	return fill(width, DontCare)
}

// Zeros returns a bitstring of width Zero bits.
func Zeros(width int) Bitstring {
	return fill(width, Zero)
}

func fill(width int, b Bit) Bitstring {
	if width < 0 {
		width = 0
	}
	bs := make(Bitstring, width)
	for i := range bs {
		bs[i] = b
	}
	return bs
}

// FromConstant returns the minimal two's complement representation of value
// bounded by width. Zero is the single bit 0. Positive signed values keep a
// leading 0 sign bit when there is room for it; negative values occupy the
// whole width.
func FromConstant(value int64, width int, signed bool) Bitstring {
	v := uint64(value)
	if v == 0 {
		return Bitstring{Zero}
	}
	var res Bitstring
	bit := 0
	for ; bit < width && v > 0; bit++ {
		if v&1 == 1 {
			res = append(res, One)
		} else {
			res = append(res, Zero)
		}
		v >>= 1
	}
	if bit < width && signed {
		res = append(res, Zero)
	}
	reverse(res)
	if len(res) == 0 {
		return Bitstring{Zero}
	}
	return res
}

// Parse converts a string over the alphabet {0,1,U,X} into a bitstring.
func Parse(s string) (Bitstring, error) {
	res := make(Bitstring, 0, len(s))
	for i, r := range s {
		switch r {
		case '0':
			res = append(res, Zero)
		case '1':
			res = append(res, One)
		case 'U':
			res = append(res, Unknown)
		case 'X':
			res = append(res, DontCare)
		default:
			return nil, fmt.Errorf("unexpected character %q at offset %d in bitstring %q", r, i, s)
		}
	}
	return res, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Bitstring {
	bs, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return bs
}

func (bs Bitstring) String() string {
	var sb strings.Builder
	sb.Grow(len(bs))
	for _, b := range bs {
		sb.WriteString(b.String())
	}
	return sb.String()
}

// Clone returns an independent copy of the bitstring.
func (bs Bitstring) Clone() Bitstring {
	if bs == nil {
		return nil
	}
	out := make(Bitstring, len(bs))
	copy(out, bs)
	return out
}

// Equal reports whether two bitstrings are identical position by position.
func (bs Bitstring) Equal(other Bitstring) bool {
	if len(bs) != len(other) {
		return false
	}
	for i := range bs {
		if bs[i] != other[i] {
			return false
		}
	}
	return true
}

// IsConstant reports whether every bit is Zero or One.
func (bs Bitstring) IsConstant() bool {
	for _, b := range bs {
		if !b.IsConstant() {
			return false
		}
	}
	return true
}

// MSB returns the most significant bit, or DontCare for an empty bitstring.
func (bs Bitstring) MSB() Bit {
	if len(bs) == 0 {
		return DontCare
	}
	return bs[0]
}

// LSB returns the least significant bit, or DontCare for an empty bitstring.
func (bs Bitstring) LSB() Bit {
	if len(bs) == 0 {
		return DontCare
	}
	return bs[len(bs)-1]
}

// At returns the bit at position pos counted from the LSB.
func (bs Bitstring) At(pos int) Bit {
	return bs[len(bs)-1-pos]
}

// Disjunction folds the bitstring into a single truth bit: One if any bit
// is One, Unknown if any bit is Unknown, Zero otherwise. DontCare bits do
// not contribute.
func (bs Bitstring) Disjunction() Bit {
	res := Zero
	for _, b := range bs {
		switch b {
		case One:
			return One
		case Unknown:
			res = Unknown
		}
	}
	return res
}

func reverse(bs Bitstring) {
	for i, j := 0, len(bs)-1; i < j; i, j = i+1, j-1 {
		bs[i], bs[j] = bs[j], bs[i]
	}
}

// Int64 interprets a constant bitstring as an integer, sign extending it when
// signed. It fails when a bit is not constant or the value does not fit.
func (bs Bitstring) Int64(signed bool) (int64, bool) {
	if len(bs) == 0 || len(bs) > 64 || !bs.IsConstant() {
		return 0, false
	}
	if !signed && len(bs) == 64 && bs[0] == One {
		return 0, false
	}
	var v int64
	if signed && bs[0] == One {
		v = -1
	}
	for _, b := range bs {
		v <<= 1
		if b == One {
			v |= 1
		}
	}
	return v, true
}
