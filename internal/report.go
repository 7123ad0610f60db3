package internal

import (
	"fmt"
	"go/ast"
	"go/token"
	"sort"

	"github.com/fzipp/gocyclo"
	"github.com/gnoverse/bitwidth/internal/analysis/lattice"
	"github.com/gnoverse/bitwidth/internal/bitvalue"
	"github.com/gnoverse/bitwidth/internal/directive"
	"github.com/gnoverse/bitwidth/internal/ir"
	tt "github.com/gnoverse/bitwidth/internal/types"
)

// Complexity maps function names to their cyclomatic complexity.
func Complexity(fset *token.FileSet, files []*ast.File) map[string]int {
	res := make(map[string]int)
	for _, f := range files {
		for _, stat := range gocyclo.AnalyzeASTFile(f, fset, nil) {
			res[stat.FuncName] = stat.Complexity
		}
	}
	return res
}

// ReportOptions selects and decorates the reports of BuildReports.
type ReportOptions struct {
	// MinSavedBits drops reports that save fewer bits.
	MinSavedBits int
	// IgnoredFuncs are not reported.
	IgnoredFuncs map[string]bool
	// Directives suppress reports in their scope; nil suppresses nothing.
	Directives *directive.Set
	// Complexity is attached to the reports of each function.
	Complexity map[string]int
}

// BuildReports describes the fixed points of prog: one report per handled
// integer SSA value and one per summarized function whose known bits fit in
// fewer bits than the declared width. Reports are sorted by position.
func BuildReports(prog *ir.Program, results map[string]*bitvalue.Result, opts ReportOptions) []tt.Report {
	var reports []tt.Report
	add := func(r tt.Report, ok bool) {
		if ok && !opts.Directives.Ignored(r.Start, r.Kind) {
			reports = append(reports, r)
		}
	}

	for _, fn := range prog.Functions {
		res, ok := results[fn.Name]
		if !ok || opts.IgnoredFuncs[fn.Name] {
			continue
		}
		for _, n := range fn.Nodes {
			if n.Kind != ir.KindSSA || !n.Handled || n.Bool || !n.Pos.IsValid() {
				continue
			}
			if bits, ok := res.Current[n.ID]; ok {
				add(newReport(tt.KindValue, fn, n, bits, n.Pos, opts))
			}
		}
		if res.Summary != nil && fn.Result != ir.NoNode && fn.Pos.IsValid() {
			add(newReport(tt.KindSummary, fn, fn.Node(fn.Result), res.Summary, fn.Pos, opts))
		}
	}

	sort.SliceStable(reports, func(i, j int) bool {
		a, b := reports[i].Start, reports[j].Start
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return reports
}

// newReport describes bits as the value of n, or nothing when too few bits
// would be saved.
func newReport(
	kind string,
	fn *ir.Function,
	n *ir.Node,
	bits lattice.Bitstring,
	pos token.Position,
	opts ReportOptions,
) (tt.Report, bool) {
	bits = lattice.Resize(bits, n.Signed, n.Width)
	sig := lattice.Significant(bits, n.Signed)
	saved := n.Width - sig
	if saved <= 0 || saved < opts.MinSavedBits {
		return tt.Report{}, false
	}

	r := tt.Report{
		Kind:        kind,
		Severity:    tt.SeverityInfo,
		Function:    fn.Name,
		Value:       n.Name,
		Filename:    pos.Filename,
		Start:       pos,
		End:         pos,
		Bits:        bits.String(),
		Width:       n.Width,
		Significant: sig,
		Saved:       saved,
		Complexity:  opts.Complexity[fn.Name],
		Note:        fmt.Sprintf("known bits: %s", bits),
	}
	if kind == tt.KindSummary {
		r.Message = fmt.Sprintf("result of %s needs %d of %d bits", fn.Name, sig, n.Width)
	} else {
		r.Message = fmt.Sprintf("%s (%s) needs %d of %d bits", n.Name, n.Type, sig, n.Width)
	}
	if v, ok := bits.Int64(n.Signed); ok {
		r.Severity = tt.SeverityWarning
		r.Message += fmt.Sprintf(", always %d", v)
	}
	return r, true
}
