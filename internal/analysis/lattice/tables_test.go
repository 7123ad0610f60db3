package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// admits reports whether concrete value v is described by abstract bit b.
func admits(b Bit, v int) bool {
	switch b {
	case Zero:
		return v == 0
	case One:
		return v == 1
	default:
		return true
	}
}

func TestBinaryTablesSound(t *testing.T) {
	t.Parallel()
	ops := map[string]struct {
		abstract func(a, b Bit) Bit
		concrete func(x, y int) int
	}{
		"and": {And, func(x, y int) int { return x & y }},
		"or":  {Or, func(x, y int) int { return x | y }},
		"xor": {Xor, func(x, y int) int { return x ^ y }},
	}
	for name, op := range ops {
		for _, a := range allBits {
			for _, b := range allBits {
				out := op.abstract(a, b)
				for _, x := range completions(a) {
					for _, y := range completions(b) {
						assert.True(t, admits(out, op.concrete(x, y)), "%s(%s,%s)=%s excludes %d,%d", name, a, b, out, x, y)
					}
				}
			}
		}
	}
}

func TestRippleTablesSound(t *testing.T) {
	t.Parallel()
	for _, a := range allBits {
		for _, b := range allBits {
			for _, c := range allBits {
				co, s := Add(a, b, c)
				bo, d := Sub(a, b, c)
				for _, x := range completions(a) {
					for _, y := range completions(b) {
						for _, z := range completions(c) {
							sum := x + y + z
							assert.True(t, admits(co, sum>>1))
							assert.True(t, admits(s, sum&1))
							diff := x - y - z
							borrow := 0
							if diff < 0 {
								borrow = 1
							}
							assert.True(t, admits(bo, borrow))
							assert.True(t, admits(d, diff&1))
						}
					}
				}
			}
		}
	}
}

func TestTableEntries(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Zero, And(Zero, Unknown))
	assert.Equal(t, Zero, And(DontCare, Zero))
	assert.Equal(t, Unknown, And(One, Unknown))
	assert.Equal(t, DontCare, And(One, DontCare))
	assert.Equal(t, One, Or(One, Unknown))
	assert.Equal(t, Unknown, Xor(One, Unknown))
	assert.Equal(t, Zero, Xor(One, One))

	co, s := Add(One, One, Zero)
	assert.Equal(t, One, co)
	assert.Equal(t, Zero, s)

	co, s = Add(One, Unknown, Zero)
	assert.Equal(t, Unknown, co)
	assert.Equal(t, Unknown, s)

	bo, d := Sub(Zero, One, Zero)
	assert.Equal(t, One, bo)
	assert.Equal(t, One, d)

	bo, d = Sub(Zero, Zero, Unknown)
	assert.Equal(t, Unknown, bo)
	assert.Equal(t, Unknown, d)
}

func TestOperatorTablesShared(t *testing.T) {
	t.Parallel()
	assert.Same(t, OperatorTables(), OperatorTables())
}
