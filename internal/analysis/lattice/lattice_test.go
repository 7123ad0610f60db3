package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConstant(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		value  int64
		width  int
		signed bool
		want   string
	}{
		{"zero", 0, 8, false, "0"},
		{"three unsigned", 3, 8, false, "11"},
		{"three signed", 3, 8, true, "011"},
		{"five", 5, 8, false, "101"},
		{"full width signed", 127, 7, true, "1111111"},
		{"minus one", -1, 8, true, "11111111"},
		{"minus two", -2, 4, true, "1110"},
		{"truncated by width", 0x1ff, 8, false, "11111111"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FromConstant(tt.value, tt.width, tt.signed)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"0", "1", "U", "X", "01UX", "XXXX0000"} {
		bs, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, s, bs.String())
	}

	_, err := Parse("01a")
	assert.Error(t, err)
}

func TestConstructors(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "UUUU", Unknowns(4).String())
	assert.Equal(t, "XXX", DontCares(3).String())
	assert.Equal(t, "00", Zeros(2).String())
	assert.Empty(t, Unknowns(-1))
}

func TestBitstringQueries(t *testing.T) {
	t.Parallel()
	bs := MustParse("10U0")
	assert.Equal(t, One, bs.MSB())
	assert.Equal(t, Zero, bs.LSB())
	assert.Equal(t, Unknown, bs.At(1))
	assert.False(t, bs.IsConstant())
	assert.True(t, MustParse("1010").IsConstant())

	c := bs.Clone()
	c[0] = Zero
	assert.Equal(t, One, bs[0])
	assert.False(t, bs.Equal(c))
	assert.True(t, bs.Equal(MustParse("10U0")))

	assert.Equal(t, DontCare, Bitstring{}.MSB())
}

func TestDisjunction(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want Bit
	}{
		{"0000", Zero},
		{"00X0", Zero},
		{"0U00", Unknown},
		{"0U10", One},
		{"X", Zero},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MustParse(tt.in).Disjunction(), tt.in)
	}
}

func TestInt64(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in     string
		signed bool
		want   int64
		ok     bool
	}{
		{"101", false, 5, true},
		{"101", true, -3, true},
		{"0101", true, 5, true},
		{"1U1", false, 0, false},
		{"", false, 0, false},
	}
	for _, tt := range tests {
		got, ok := MustParse(tt.in).Int64(tt.signed)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
