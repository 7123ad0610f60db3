package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignExtend(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in     string
		signed bool
		width  int
		want   string
	}{
		{"101", true, 6, "111101"},
		{"101", false, 6, "000101"},
		{"011", true, 5, "00011"},
		{"X01", false, 5, "XXX01"},
		{"U01", false, 4, "0U01"},
		{"U01", true, 4, "UU01"},
		{"1010", true, 2, "1010"},
		{"", false, 2, "XX"},
	}
	for _, tt := range tests {
		got := SignExtend(MustParse(tt.in), tt.signed, tt.width)
		assert.Equal(t, tt.want, got.String(), "%s signed=%v width=%d", tt.in, tt.signed, tt.width)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "01", Truncate(MustParse("1101"), 2).String())
	assert.Equal(t, "1101", Truncate(MustParse("1101"), 8).String())
	assert.Empty(t, Truncate(MustParse("1101"), 0))
}

func TestExtensionRoundTrip(t *testing.T) {
	t.Parallel()
	inputs := []string{"0", "1", "U", "X", "10U", "X01U", "0110", "1UUX0"}
	for _, in := range inputs {
		bs := MustParse(in)
		for _, signed := range []bool{false, true} {
			for k := 0; k <= 6; k++ {
				ext := SignExtend(bs, signed, len(bs)+k)
				assert.Len(t, ext, len(bs)+k)
				assert.Equal(t, in, Truncate(ext, len(bs)).String(), "signed=%v k=%d", signed, k)
			}
		}
	}
}

func TestSignReduce(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in     string
		signed bool
		want   string
	}{
		{"00000101", false, "101"},
		{"00000000", false, "0"},
		{"1110", true, "10"},
		{"0001", true, "01"},
		{"UU01", true, "UU01"},
		{"XXX1", false, "X1"},
		{"000X", false, "0X"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SignReduce(MustParse(tt.in), tt.signed).String(), tt.in)
	}
	assert.Equal(t, 3, Significant(MustParse("00000101"), false))
	assert.Equal(t, 0, Significant(nil, false))
}

func TestResize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "1111", Resize(MustParse("11"), true, 4).String())
	assert.Equal(t, "11", Resize(MustParse("0011"), false, 2).String())
}
