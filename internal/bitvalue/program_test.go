package bitvalue

import (
	"context"
	"testing"

	"github.com/gnoverse/bitwidth/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func leaf(name string, value int64) *ir.Function {
	u8 := ir.Uint(8)
	b := ir.NewBuilder(name)
	b.Result(u8)
	b.Return(0, b.Const(value, u8))
	return b.Function()
}

func caller(name string, callees ...string) *ir.Function {
	u8 := ir.Uint(8)
	b := ir.NewBuilder(name)
	b.Result(u8)
	acc := b.Const(0, u8)
	for _, callee := range callees {
		c := b.Call(0, "c_"+callee, u8, callee)
		acc = b.Assign(0, "or_"+callee, u8, ir.OpBitOr, acc, c)
	}
	b.Return(0, acc)
	return b.Function()
}

func TestAnalyzeProgramContractViolation(t *testing.T) {
	t.Parallel()
	u8 := ir.Uint(8)
	b := ir.NewBuilder("broken")
	b.Result(u8)
	b.Return(0, b.Assign(0, "y", u8, ir.OpInvalid))

	_, err := AnalyzeProgram(context.Background(), ir.NewProgram(leaf("ok", 1), b.Function()))
	var cerr *ContractError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "broken", cerr.Func)
	assert.ErrorContains(t, err, "analyzing broken")
}

func TestAnalyzeProgramUsesCalleeSummaries(t *testing.T) {
	t.Parallel()
	u8 := ir.Uint(8)

	g := ir.NewBuilder("g")
	g.Result(u8)
	p := g.Param("p", u8)
	g.Return(0, g.Assign(0, "r", u8, ir.OpBitAnd, p, g.Const(7, u8)))

	f := ir.NewBuilder("f").Root()
	c := f.Call(0, "c", u8, "g")
	y := f.Assign(0, "y", u8, ir.OpBitOr, c, f.Const(8, u8))
	f.Return(0, y)

	// callers are listed first on purpose
	prog := ir.NewProgram(f.Function(), g.Function())
	results, err := AnalyzeProgram(context.Background(), prog, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "00000UUU", results["g"].Summary.String())
	assert.Equal(t, "00000UUU", results["f"].Current[c].String())
	assert.Equal(t, "00001UUU", results["f"].Current[y].String())
	assert.Nil(t, results["f"].Summary)
}

func TestAnalyzeProgramChain(t *testing.T) {
	t.Parallel()
	prog := ir.NewProgram(
		caller("top", "mid", "other"),
		caller("mid", "bottom"),
		leaf("bottom", 2),
		leaf("other", 4),
	)
	sums := NewSummaries()
	results, err := AnalyzeProgram(context.Background(), prog, WithSummaries(sums))
	require.NoError(t, err)

	assert.Equal(t, "00000010", results["mid"].Summary.String())
	assert.Equal(t, "00000110", results["top"].Summary.String())
	assert.Equal(t, []string{"bottom", "mid", "other", "top"}, sums.Names())
}

func TestAnalyzeProgramRecursion(t *testing.T) {
	t.Parallel()
	prog := ir.NewProgram(caller("even", "odd"), caller("odd", "even"))
	results, err := AnalyzeProgram(context.Background(), prog)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.Len(t, res.Summary, 8)
	}
}

func TestAnalyzeProgramCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := AnalyzeProgram(ctx, ir.NewProgram(leaf("a", 1), caller("b", "a")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScheduleLevels(t *testing.T) {
	t.Parallel()
	prog := ir.NewProgram(
		caller("top", "mid", "other"),
		caller("mid", "bottom"),
		leaf("bottom", 0),
		leaf("other", 0),
		caller("self", "self"),
	)
	levels := scheduleLevels(prog)
	require.Len(t, levels, 3)

	names := func(level [][]int) []string {
		var res []string
		for _, scc := range level {
			for _, idx := range scc {
				res = append(res, prog.Functions[idx].Name)
			}
		}
		return res
	}
	assert.ElementsMatch(t, []string{"bottom", "other", "self"}, names(levels[0]))
	assert.ElementsMatch(t, []string{"mid"}, names(levels[1]))
	assert.ElementsMatch(t, []string{"top"}, names(levels[2]))
}
