package bitvalue

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/gnoverse/bitwidth/internal/analysis/cfg"
	"github.com/gnoverse/bitwidth/internal/ir"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AnalyzeProgram analyzes every function of prog. Functions are grouped by
// the strongly connected components of the call graph and processed callees
// first; components that do not depend on each other run in parallel, each
// function with its own driver state. Calls inside a recursive component
// see whatever summary exists when the caller is analyzed.
func AnalyzeProgram(ctx context.Context, prog *ir.Program, opts ...Option) (map[string]*Result, error) {
	c := newConfig(opts)
	opts = append(opts[:len(opts):len(opts)], WithSummaries(c.summaries))

	levels := scheduleLevels(prog)
	results := make(map[string]*Result, len(prog.Functions))
	var mu sync.Mutex

	for depth, level := range levels {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.NumCPU())
		for _, scc := range level {
			scc := scc
			g.Go(func() error {
				for _, idx := range scc {
					fn := prog.Functions[idx]
					res, err := analyzeWorker(gctx, fn, opts)
					if err != nil {
						return fmt.Errorf("analyzing %s: %w", fn.Name, err)
					}
					mu.Lock()
					results[fn.Name] = res
					mu.Unlock()
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		c.logger.Debug("call graph level analyzed",
			zap.Int("level", depth),
			zap.Int("components", len(level)),
		)
	}
	return results, nil
}

// analyzeWorker runs Analyze on a worker goroutine, where a contract
// violation must come back as an error instead of crashing the process.
func analyzeWorker(ctx context.Context, fn *ir.Function, opts []Option) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			cerr, ok := r.(*ContractError)
			if !ok {
				panic(r)
			}
			res, err = nil, cerr
		}
	}()
	return Analyze(ctx, Input{Func: fn}, opts...)
}

// scheduleLevels groups the call graph components so that every component
// only calls into components of earlier levels or into itself.
func scheduleLevels(prog *ir.Program) [][][]int {
	g := prog.CallGraph()
	sccs := cfg.SCCs(g)

	comp := make([]int, g.Len())
	for i, scc := range sccs {
		for _, n := range scc {
			comp[n] = i
		}
	}

	// sccs is topologically ordered with callers first, so walking it
	// backwards visits every callee component before its callers.
	level := make([]int, len(sccs))
	var levels [][][]int
	for i := len(sccs) - 1; i >= 0; i-- {
		lvl := 0
		for _, n := range sccs[i] {
			for _, callee := range g.Succs(n) {
				if c := comp[callee]; c != i {
					lvl = max(lvl, level[c]+1)
				}
			}
		}
		level[i] = lvl
		for len(levels) <= lvl {
			levels = append(levels, nil)
		}
		levels[lvl] = append(levels[lvl], sccs[i])
	}
	return levels
}
