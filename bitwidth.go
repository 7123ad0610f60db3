// Package bitwidth finds integer values in Go code that always fit in fewer
// bits than their type provides.
//
// Each function is lowered from SSA form and analyzed with a forward
// dataflow over a four valued bit lattice (0, 1, unknown, don't care).
// Callees are analyzed first so that calls see a summary of the bits their
// callee can return.
//
//	reports, err := bitwidth.AnalyzeFile(ctx, "main.go", bitwidth.DefaultSettings())
//	for _, r := range reports {
//		fmt.Printf("%s: %s\n", r.Start, r.Message)
//	}
package bitwidth

import (
	"context"

	"go.uber.org/zap"

	"github.com/gnoverse/bitwidth/internal"
	tt "github.com/gnoverse/bitwidth/internal/types"
)

type (
	// Report describes the known bits of one value or one function result.
	Report = tt.Report
	// Settings configures an analysis.
	Settings = tt.Settings
)

// Report kinds.
const (
	KindValue   = tt.KindValue
	KindSummary = tt.KindSummary
)

// DefaultSettings returns the settings used without a configuration file.
func DefaultSettings() Settings {
	return tt.DefaultSettings()
}

// AnalyzeFile analyzes the Go file at filename.
func AnalyzeFile(ctx context.Context, filename string, settings Settings) ([]Report, error) {
	engine, err := internal.NewEngine(zap.NewNop(), settings)
	if err != nil {
		return nil, err
	}
	return engine.RunContext(ctx, filename)
}

// AnalyzeSource analyzes src as the content of the Go file filename.
func AnalyzeSource(ctx context.Context, filename string, src []byte, settings Settings) ([]Report, error) {
	engine, err := internal.NewEngine(zap.NewNop(), settings)
	if err != nil {
		return nil, err
	}
	return engine.RunSourceContext(ctx, filename, src)
}
