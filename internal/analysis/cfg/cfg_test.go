package cfg

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReversePostorder(t *testing.T) {
	t.Parallel()
	// 0 -> 1 -> {2, 3}, 2 -> 4, 3 -> 4, 4 -> 1 (loop), 5 unreachable
	g := Adjacency{
		{1},
		{2, 3},
		{4},
		{4},
		{1},
		{0},
	}

	rpo := ReversePostorder(g, 0)
	assert.Len(t, rpo, 6)
	assert.Equal(t, 0, rpo[0])
	assert.Equal(t, 1, rpo[1])
	assert.Equal(t, 5, rpo[len(rpo)-1])

	pos := make(map[int]int)
	for i, n := range rpo {
		pos[n] = i
	}
	assert.Less(t, pos[2], pos[4])
	assert.Less(t, pos[3], pos[4])
}

func TestPostorderSkipsUnreachable(t *testing.T) {
	t.Parallel()
	g := Adjacency{{1}, {}, {0}}
	assert.Equal(t, []int{1, 0}, Postorder(g, 0))
}

func TestSCCs(t *testing.T) {
	t.Parallel()
	// b0 -> b1, b1 -> [b2, b3], b2 -> b1, b3 -> b4
	g := Adjacency{
		{1},
		{2, 3},
		{1},
		{4},
		{},
	}

	sccs := SCCs(g)
	for _, scc := range sccs {
		sort.Ints(scc)
	}
	assert.Equal(t, [][]int{{0}, {1, 2}, {3}, {4}}, sccs)
}

func TestSCCsSelfLoopAndIsolated(t *testing.T) {
	t.Parallel()
	g := Adjacency{{0}, {}, {1}}
	sccs := SCCs(g)
	assert.Len(t, sccs, 3)

	index := make(map[int]int)
	for i, scc := range sccs {
		for _, n := range scc {
			index[n] = i
		}
	}
	assert.Less(t, index[2], index[1])
}
