// Package analyzer exposes the bit width analysis as a go/analysis pass so
// that it runs under go vet style drivers.
package analyzer

import (
	"context"
	"fmt"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/buildssa"

	"github.com/gnoverse/bitwidth/internal"
	"github.com/gnoverse/bitwidth/internal/bitvalue"
	"github.com/gnoverse/bitwidth/internal/directive"
	"github.com/gnoverse/bitwidth/internal/frontend"
	tt "github.com/gnoverse/bitwidth/internal/types"
)

const doc = `report integer values that need fewer bits than their type

The bitwidth analyzer propagates the known bits of every integer SSA value
through the functions of a package, callees first, and reports values and
function results whose upper bits are always redundant.`

var (
	minSavedBits = 1
	addressWidth = 64
)

// Analyzer reports the values and results of a package that need fewer bits
// than their declared type.
var Analyzer = &analysis.Analyzer{
	Name:     "bitwidth",
	Doc:      doc,
	Requires: []*analysis.Analyzer{buildssa.Analyzer},
	Run:      run,
}

func init() {
	Analyzer.Flags.IntVar(&minSavedBits, "min-saved-bits", minSavedBits, "drop reports that save fewer bits")
	Analyzer.Flags.IntVar(&addressWidth, "address-width", addressWidth, "number of bits of an address")
}

func run(pass *analysis.Pass) (any, error) {
	ssainput := pass.ResultOf[buildssa.Analyzer].(*buildssa.SSA)

	prog, err := frontend.LowerFuncs(ssainput.SrcFuncs, pass.TypesSizes)
	if err != nil {
		return nil, err
	}
	results, err := bitvalue.AnalyzeProgram(context.Background(), prog,
		bitvalue.WithAddressWidth(addressWidth),
	)
	if err != nil {
		return nil, fmt.Errorf("bitwidth: %w", err)
	}

	dirs := directive.New()
	for _, f := range pass.Files {
		dirs.Add(f, pass.Fset)
	}
	reports := internal.BuildReports(prog, results, internal.ReportOptions{
		MinSavedBits: minSavedBits,
		Directives:   dirs,
		Complexity:   internal.Complexity(pass.Fset, pass.Files),
	})
	for _, r := range reports {
		report(pass, r)
	}
	return nil, nil
}

func report(pass *analysis.Pass, r tt.Report) {
	for _, f := range pass.Files {
		tf := pass.Fset.File(f.Pos())
		if tf == nil || tf.Name() != r.Start.Filename {
			continue
		}
		pass.Report(analysis.Diagnostic{
			Pos:      tf.Pos(r.Start.Offset),
			Category: r.Kind,
			Message:  r.Message,
		})
		return
	}
}
