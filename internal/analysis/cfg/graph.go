package cfg

// Graph is a directed graph over the nodes 0..Len()-1.
type Graph interface {
	Len() int
	Succs(n int) []int
}

type nodeAndIndex struct {
	n     int
	index int // number of successor edges of n already explored
}

// Postorder returns a depth-first postorder of the nodes reachable from
// entry. Unreachable nodes do not appear.
func Postorder(g Graph, entry int) []int {
	return postorderFrom(g, []int{entry}, make([]bool, g.Len()))
}

func postorderFrom(g Graph, roots []int, seen []bool) []int {
	order := make([]int, 0, g.Len())
	s := make([]nodeAndIndex, 0, 32)
	for _, root := range roots {
		if root < 0 || root >= g.Len() || seen[root] {
			continue
		}
		seen[root] = true
		s = append(s, nodeAndIndex{n: root})
		for len(s) > 0 {
			tos := len(s) - 1
			x := s[tos]
			succs := g.Succs(x.n)
			if i := x.index; i < len(succs) {
				s[tos].index++
				next := succs[i]
				if !seen[next] {
					seen[next] = true
					s = append(s, nodeAndIndex{n: next})
				}
				continue
			}
			s = s[:tos]
			order = append(order, x.n)
		}
	}
	return order
}

// ReversePostorder returns the reverse of Postorder(g, entry) followed by
// every node unreachable from entry in index order, so that the result is
// a permutation of all nodes.
func ReversePostorder(g Graph, entry int) []int {
	seen := make([]bool, g.Len())
	po := postorderFrom(g, []int{entry}, seen)
	order := make([]int, 0, g.Len())
	for i := len(po) - 1; i >= 0; i-- {
		order = append(order, po[i])
	}
	for n := 0; n < g.Len(); n++ {
		if !seen[n] {
			order = append(order, n)
		}
	}
	return order
}

// SCCs partitions every node of g into strongly connected components using
// the Kosaraju-Sharir algorithm. Components are returned in topological
// order of the condensed graph: if an edge leads from component A to a
// different component B, A comes before B.
func SCCs(g Graph) [][]int {
	n := g.Len()
	roots := make([]int, n)
	for i := range roots {
		roots[i] = i
	}
	po := postorderFrom(g, roots, make([]bool, n))

	preds := make([][]int, n)
	for from := 0; from < n; from++ {
		for _, to := range g.Succs(from) {
			preds[to] = append(preds[to], from)
		}
	}

	var result [][]int
	seen := make([]bool, n)
	queue := make([]int, 0, n)
	for i := len(po) - 1; i >= 0; i-- {
		leader := po[i]
		if seen[leader] {
			continue
		}
		scc := make([]int, 0, 4)
		queue = append(queue[:0], leader)
		seen[leader] = true
		for len(queue) > 0 {
			b := queue[0]
			queue = queue[1:]
			scc = append(scc, b)
			for _, p := range preds[b] {
				if !seen[p] {
					seen[p] = true
					queue = append(queue, p)
				}
			}
		}
		result = append(result, scc)
	}
	return result
}

// Adjacency is a Graph backed by successor lists.
type Adjacency [][]int

func (a Adjacency) Len() int          { return len(a) }
func (a Adjacency) Succs(n int) []int { return a[n] }
