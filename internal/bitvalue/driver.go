package bitvalue

import (
	"context"
	"fmt"

	"github.com/gnoverse/bitwidth/internal/analysis/cfg"
	"github.com/gnoverse/bitwidth/internal/analysis/lattice"
	"github.com/gnoverse/bitwidth/internal/ir"
	"go.uber.org/zap"
)

// Input is the function to analyze together with the upstream bounds.
type Input struct {
	Func *ir.Function
	// Best holds the coarsest valid bound of each node. It is read only
	// and seeds the current estimate of a node the first time it is written.
	Best map[ir.NodeID]lattice.Bitstring
}

// Result is the fixed point reached for one function.
type Result struct {
	Func *ir.Function
	// Current maps every evaluated node to its known bits.
	Current map[ir.NodeID]lattice.Bitstring
	// Summary describes the returned value; nil for root functions and
	// functions without a returned value.
	Summary lattice.Bitstring
	// Visits counts processed queue entries, Updates counts changes.
	Visits  int
	Updates int
}

// analysis is the state of one driver run. It is owned by a single
// goroutine.
type analysis struct {
	cfg     *config
	fn      *ir.Function
	best    map[ir.NodeID]lattice.Bitstring
	current map[ir.NodeID]lattice.Bitstring
	index   *ir.Index

	queue  []ir.Stmt
	queued map[ir.Stmt]bool

	summary lattice.Bitstring
	visits  int
	updates int
}

// Analyze runs the forward bit value analysis of in.Func to its fixed point.
// The only error is the cancellation of ctx.
func Analyze(ctx context.Context, in Input, opts ...Option) (*Result, error) {
	if in.Func == nil {
		return nil, fmt.Errorf("bitvalue: nil function")
	}
	s := &analysis{
		cfg:     newConfig(opts),
		fn:      in.Func,
		best:    in.Best,
		current: make(map[ir.NodeID]lattice.Bitstring),
		index:   ir.NewIndex(in.Func),
		queued:  make(map[ir.Stmt]bool),
	}
	if err := s.run(ctx); err != nil {
		return nil, err
	}
	s.cfg.logger.Debug("bit value analysis converged",
		zap.String("function", s.fn.Name),
		zap.Int("visits", s.visits),
		zap.Int("updates", s.updates),
		zap.Int("values", len(s.current)),
	)
	return &Result{
		Func:    s.fn,
		Current: s.current,
		Summary: s.summary,
		Visits:  s.visits,
		Updates: s.updates,
	}, nil
}

func (s *analysis) run(ctx context.Context) error {
	s.seed()
	for len(s.queue) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		stmt := s.queue[0]
		s.queue = s.queue[1:]
		delete(s.queued, stmt)
		s.visits++

		switch stmt := stmt.(type) {
		case *ir.Assign:
			s.visitAssign(stmt)
		case *ir.Phi:
			s.visitPhi(stmt)
		case *ir.Return:
			s.visitReturn(stmt)
		case *ir.Asm:
			s.visitAsm(stmt)
		default:
			contractViolation(s.fn, stmt, "unexpected statement %T", stmt)
		}
	}
	s.publish()
	return nil
}

// seed enqueues the eligible statements block by block in reverse
// postorder, then every return statement.
func (s *analysis) seed() {
	if len(s.fn.Blocks) == 0 {
		return
	}
	var returns []ir.Stmt
	for _, bi := range cfg.ReversePostorder(s.fn, 0) {
		b := s.fn.Blocks[bi]
		for _, phi := range b.Phis {
			if s.eligible(phi.Dest) {
				s.push(phi)
			}
		}
		for _, stmt := range b.Stmts {
			switch stmt := stmt.(type) {
			case *ir.Assign:
				if s.eligible(stmt.Dest) {
					s.push(stmt)
				}
			case *ir.Asm:
				s.push(stmt)
			case *ir.Return:
				returns = append(returns, stmt)
			}
		}
	}
	for _, r := range returns {
		s.push(r)
	}
}

func (s *analysis) eligible(id ir.NodeID) bool {
	return s.fn.Node(id).Handled && s.index.HasUses(id)
}

func (s *analysis) push(stmt ir.Stmt) {
	if s.queued[stmt] {
		return
	}
	s.queued[stmt] = true
	s.queue = append(s.queue, stmt)
}

func (s *analysis) pushUsers(id ir.NodeID) {
	for _, u := range s.index.Uses(id) {
		s.push(u)
	}
}

// ready reports whether id can be read. Parameters and values without a
// definition are seeded on first read; values whose definition has not run
// yet get that definition enqueued.
func (s *analysis) ready(id ir.NodeID) bool {
	if id == ir.NoNode {
		return true
	}
	n := s.fn.Node(id)
	if !n.Handled || n.Kind == ir.KindConst {
		return true
	}
	if _, ok := s.current[id]; ok {
		return true
	}
	switch n.Kind {
	case ir.KindParam, ir.KindResult:
		s.set(id, s.seedValue(n, lattice.Unknowns(n.Width)))
		return true
	}
	def, ok := s.index.Def(id)
	if !ok {
		s.set(id, lattice.FromConstant(0, n.Width, n.Signed))
		return true
	}
	s.push(def)
	return false
}

// seedValue returns the best bound of n at its full width, or fallback.
func (s *analysis) seedValue(n *ir.Node, fallback lattice.Bitstring) lattice.Bitstring {
	if bs, ok := s.best[n.ID]; ok && len(bs) > 0 {
		return lattice.Resize(bs, n.Signed, n.Width)
	}
	return fallback
}

// set records a new value for id and reports whether it changed.
func (s *analysis) set(id ir.NodeID, bs lattice.Bitstring) bool {
	old, had := s.current[id]
	if had && old.Equal(bs) {
		return false
	}
	s.current[id] = bs
	s.updates++
	if s.cfg.observer != nil {
		s.cfg.observer(Update{Func: s.fn.Name, Node: id, Old: old, New: bs.Clone()})
	}
	return true
}

// merge meets bs into the current value of id, seeding it first when id
// has not been written yet.
func (s *analysis) merge(id ir.NodeID, bs lattice.Bitstring) bool {
	n := s.fn.Node(id)
	old, ok := s.current[id]
	if !ok {
		old = s.seedValue(n, lattice.DontCares(n.Width))
	}
	return s.set(id, lattice.Inf(old, bs, n.Width, n.Signed, n.Bool))
}

func (s *analysis) visitAssign(a *ir.Assign) {
	allReady := true
	for _, arg := range a.Args {
		if !s.ready(arg) {
			allReady = false
		}
	}
	if !allReady {
		return
	}
	if s.merge(a.Dest, s.transfer(a)) {
		s.pushUsers(a.Dest)
	}
}

func (s *analysis) visitPhi(phi *ir.Phi) {
	dest := s.fn.Node(phi.Dest)
	if !dest.Handled {
		return
	}
	changed := false
	if _, ok := s.current[phi.Dest]; !ok {
		changed = s.set(phi.Dest, s.seedValue(dest, lattice.DontCares(dest.Width)))
	}

	pending := false
	for _, in := range phi.Incoming {
		if in.Value == phi.Dest {
			continue
		}
		if !s.ready(in.Value) {
			pending = true
			continue
		}
		if s.merge(phi.Dest, s.operand(in.Value)) {
			changed = true
		}
	}
	if pending {
		s.push(phi)
	}
	if changed {
		s.pushUsers(phi.Dest)
	}
}

func (s *analysis) visitReturn(r *ir.Return) {
	if s.fn.Root || r.Value == ir.NoNode || s.fn.Result == ir.NoNode {
		return
	}
	if !s.ready(r.Value) {
		s.push(r)
		return
	}
	res := s.fn.Node(s.fn.Result)
	v := lattice.Resize(s.operand(r.Value), s.signed(r.Value), res.Width)
	s.summary = lattice.Inf(s.summary, v, res.Width, res.Signed, res.Bool)
}

func (s *analysis) visitAsm(asm *ir.Asm) {
	for _, out := range asm.Outputs {
		n := s.fn.Node(out)
		if !n.Handled {
			continue
		}
		if _, ok := s.current[out]; ok {
			continue
		}
		if s.set(out, s.seedValue(n, lattice.Unknowns(n.Width))) {
			s.pushUsers(out)
		}
	}
}

// publish meets the accumulated return summary into the result node and
// makes it visible to callers.
func (s *analysis) publish() {
	if s.summary == nil || s.fn.Result == ir.NoNode {
		return
	}
	s.merge(s.fn.Result, s.summary)
	s.summary = s.current[s.fn.Result]
	s.cfg.summaries.Store(s.fn.Name, s.summary)
}
