// Command bitwidthvet runs the bitwidth analyzer as a standalone vet tool:
//
//	go vet -vettool=$(which bitwidthvet) ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/gnoverse/bitwidth/internal/analyzer"
)

func main() {
	singlechecker.Main(analyzer.Analyzer)
}
