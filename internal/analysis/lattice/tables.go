package lattice

import "sync"

// Tables hold the abstract truth tables of the combinational operators.
// They are derived once from the concrete operators by enumerating every
// completion of the abstract inputs: an output that takes a single concrete
// value is that value, otherwise it is DontCare when some input is DontCare
// and Unknown when none is.
type Tables struct {
	and, or, xor [4][4]Bit
	// plus and minus are indexed by (a, b, carry) and hold (carry out, result).
	plus, minus [4][4][4][2]Bit
}

var (
	tablesOnce sync.Once
	tables     *Tables
)

// OperatorTables returns the process-wide tables, building them on first use.
func OperatorTables() *Tables {
	tablesOnce.Do(func() {
		tables = buildTables()
	})
	return tables
}

// And returns the table entry for a & b.
func And(a, b Bit) Bit { return OperatorTables().and[a][b] }

// Or returns the table entry for a | b.
func Or(a, b Bit) Bit { return OperatorTables().or[a][b] }

// Xor returns the table entry for a ^ b.
func Xor(a, b Bit) Bit { return OperatorTables().xor[a][b] }

// Add returns the carry out and sum bit of a + b + carry.
func Add(a, b, carry Bit) (Bit, Bit) {
	e := OperatorTables().plus[a][b][carry]
	return e[0], e[1]
}

// Sub returns the borrow out and difference bit of a - b - borrow.
func Sub(a, b, borrow Bit) (Bit, Bit) {
	e := OperatorTables().minus[a][b][borrow]
	return e[0], e[1]
}

var allBits = [...]Bit{Zero, One, Unknown, DontCare}

// completions lists the concrete values an abstract bit may stand for.
func completions(b Bit) []int {
	switch b {
	case Zero:
		return []int{0}
	case One:
		return []int{1}
	default:
		return []int{0, 1}
	}
}

// abstractOf folds the set of observed concrete outputs back into a bit.
func abstractOf(seen [2]bool, anyDontCare bool) Bit {
	switch {
	case seen[0] && !seen[1]:
		return Zero
	case seen[1] && !seen[0]:
		return One
	case anyDontCare:
		return DontCare
	default:
		return Unknown
	}
}

func binaryTable(op func(x, y int) int) [4][4]Bit {
	var t [4][4]Bit
	for _, a := range allBits {
		for _, b := range allBits {
			var seen [2]bool
			for _, x := range completions(a) {
				for _, y := range completions(b) {
					seen[op(x, y)] = true
				}
			}
			t[a][b] = abstractOf(seen, a == DontCare || b == DontCare)
		}
	}
	return t
}

func rippleTable(op func(x, y, c int) (int, int)) [4][4][4][2]Bit {
	var t [4][4][4][2]Bit
	for _, a := range allBits {
		for _, b := range allBits {
			for _, c := range allBits {
				var carries, results [2]bool
				for _, x := range completions(a) {
					for _, y := range completions(b) {
						for _, z := range completions(c) {
							co, r := op(x, y, z)
							carries[co] = true
							results[r] = true
						}
					}
				}
				x := a == DontCare || b == DontCare || c == DontCare
				t[a][b][c] = [2]Bit{abstractOf(carries, x), abstractOf(results, x)}
			}
		}
	}
	return t
}

func buildTables() *Tables {
	return &Tables{
		and: binaryTable(func(x, y int) int { return x & y }),
		or:  binaryTable(func(x, y int) int { return x | y }),
		xor: binaryTable(func(x, y int) int { return x ^ y }),
		plus: rippleTable(func(x, y, c int) (int, int) {
			s := x + y + c
			return s >> 1, s & 1
		}),
		minus: rippleTable(func(x, y, c int) (int, int) {
			d := x - y - c
			borrow := 0
			if d < 0 {
				borrow = 1
			}
			return borrow, d & 1
		}),
	}
}
