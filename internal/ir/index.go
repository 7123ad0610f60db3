package ir

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gnoverse/bitwidth/internal/analysis/cfg"
)

// Index records the def/use chains of a function.
type Index struct {
	defs map[NodeID]Stmt
	uses map[NodeID][]Stmt
}

// NewIndex builds the def/use chains of fn.
func NewIndex(fn *Function) *Index {
	ix := &Index{
		defs: make(map[NodeID]Stmt),
		uses: make(map[NodeID][]Stmt),
	}
	for _, s := range fn.Statements() {
		for _, d := range s.Defs() {
			ix.defs[d] = s
		}
		seen := make(map[NodeID]bool)
		for _, u := range s.Uses() {
			if u == NoNode || seen[u] {
				continue
			}
			seen[u] = true
			ix.uses[u] = append(ix.uses[u], s)
		}
	}
	return ix
}

// Def returns the statement defining id.
func (ix *Index) Def(id NodeID) (Stmt, bool) {
	s, ok := ix.defs[id]
	return s, ok
}

// Uses returns the statements reading id, in program order.
func (ix *Index) Uses(id NodeID) []Stmt {
	return ix.uses[id]
}

// HasUses reports whether any statement reads id.
func (ix *Index) HasUses(id NodeID) bool {
	return len(ix.uses[id]) > 0
}

// Validate checks the structural invariants of fn: operands refer to
// existing nodes, SSA nodes are defined at most once, widths are positive
// and phi edges name real predecessors.
func Validate(fn *Function) error {
	var errs []error
	inRange := func(id NodeID) bool {
		return id >= 0 && int(id) < len(fn.Nodes)
	}
	for i, n := range fn.Nodes {
		if n.ID != NodeID(i) {
			errs = append(errs, fmt.Errorf("node %d has id %d", i, n.ID))
		}
		if n.Width <= 0 {
			errs = append(errs, fmt.Errorf("node %s has width %d", n.Name, n.Width))
		}
	}
	defined := make(map[NodeID]bool)
	for bi, b := range fn.Blocks {
		if b.Index != bi {
			errs = append(errs, fmt.Errorf("block %d has index %d", bi, b.Index))
		}
		for _, s := range b.Succs {
			if s < 0 || s >= len(fn.Blocks) {
				errs = append(errs, fmt.Errorf("block %d: successor %d out of range", bi, s))
			}
		}
		for _, phi := range b.Phis {
			for _, in := range phi.Incoming {
				if !slices.Contains(b.Preds, in.Pred) {
					errs = append(errs, fmt.Errorf("block %d: phi edge from non-predecessor %d", bi, in.Pred))
				}
			}
		}
		for _, s := range append(phisAsStmts(b.Phis), b.Stmts...) {
			if s.Block() != bi {
				errs = append(errs, fmt.Errorf("block %d: statement claims block %d", bi, s.Block()))
			}
			for _, d := range s.Defs() {
				if !inRange(d) {
					errs = append(errs, fmt.Errorf("block %d: definition of unknown node %d", bi, d))
					continue
				}
				if defined[d] {
					errs = append(errs, fmt.Errorf("node %s defined more than once", fn.Nodes[d].Name))
				}
				defined[d] = true
			}
			for _, u := range s.Uses() {
				if u != NoNode && !inRange(u) {
					errs = append(errs, fmt.Errorf("block %d: use of unknown node %d", bi, u))
				}
			}
			if a, ok := s.(*Assign); ok && !a.Op.Valid() {
				errs = append(errs, fmt.Errorf("block %d: assignment with invalid operator %s", bi, a.Op))
			}
		}
	}
	if fn.Result != NoNode && !inRange(fn.Result) {
		errs = append(errs, fmt.Errorf("result node %d out of range", fn.Result))
	}
	if len(errs) > 0 {
		return fmt.Errorf("function %s: %w", fn.Name, errors.Join(errs...))
	}
	return nil
}

func phisAsStmts(phis []*Phi) []Stmt {
	res := make([]Stmt, len(phis))
	for i, p := range phis {
		res[i] = p
	}
	return res
}

// CallGraph returns the call graph of p: node i is p.Functions[i] and an
// edge i->j means function i contains a direct call to function j.
func (p *Program) CallGraph() cfg.Adjacency {
	index := make(map[string]int, len(p.Functions))
	for i, fn := range p.Functions {
		index[fn.Name] = i
	}
	g := make(cfg.Adjacency, len(p.Functions))
	for i, fn := range p.Functions {
		seen := make(map[int]bool)
		for _, s := range fn.Statements() {
			a, ok := s.(*Assign)
			if !ok || a.Op != OpCall {
				continue
			}
			j, ok := index[a.Callee]
			if !ok || seen[j] {
				continue
			}
			seen[j] = true
			g[i] = append(g[i], j)
		}
	}
	return g
}
