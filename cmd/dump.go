package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gnoverse/bitwidth/internal"
	"github.com/gnoverse/bitwidth/internal/bitvalue"
	"github.com/gnoverse/bitwidth/internal/ir"
)

var (
	dumpFunc   string
	dumpDot    bool
	dumpOutput string
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the lowered functions of a file with the known bits of every value",
	Long: `Prints the analysis IR of each function followed by the fixed point of its
values, or a GraphViz digraph annotated with the same bits.
Example) bitwidth dump --func mask --dot -o mask.dot main.go`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		engine, err := newEngine()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if dumpOutput != "" {
			f, err := os.Create(dumpOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return runDump(ctx, w, engine, args[0], dumpFunc, dumpDot)
	},
}

func init() {
	dumpCmd.Flags().StringVar(&dumpFunc, "func", "", "Only dump the named function")
	dumpCmd.Flags().BoolVar(&dumpDot, "dot", false, "Write GraphViz output")
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "Output path")
}

var errFunctionNotFound = errors.New("function not found")

func runDump(ctx context.Context, w io.Writer, engine *internal.Engine, filename, funcName string, dot bool) error {
	in, err := engine.Inspect(ctx, filename, nil)
	if err != nil {
		return err
	}

	fns := in.Program.Functions
	if funcName != "" {
		fn, ok := in.Program.Lookup(funcName)
		if !ok {
			return fmt.Errorf("%w: %s", errFunctionNotFound, funcName)
		}
		fns = []*ir.Function{fn}
	}

	for _, fn := range fns {
		res := in.Results[fn.Name]
		if dot {
			err = ir.FprintDot(w, fn, func(s ir.Stmt) string { return stmtBits(fn, res, s) })
		} else {
			err = dumpFunction(w, fn, res)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func dumpFunction(w io.Writer, fn *ir.Function, res *bitvalue.Result) error {
	if err := ir.Fprint(w, fn); err != nil {
		return err
	}
	if res == nil {
		_, err := fmt.Fprintln(w)
		return err
	}

	ids := make([]ir.NodeID, 0, len(res.Current))
	for id := range res.Current {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fmt.Fprintf(w, "  known bits (%d visits, %d updates):\n", res.Visits, res.Updates)
	for _, id := range ids {
		n := fn.Node(id)
		if n.Kind == ir.KindConst {
			continue
		}
		fmt.Fprintf(w, "\t%-12s %s\n", n.Name, res.Current[id])
	}
	if res.Summary != nil {
		fmt.Fprintf(w, "\t%-12s %s\n", "result", res.Summary)
	}
	_, err := fmt.Fprintln(w)
	return err
}

// stmtBits describes the values a statement defines.
func stmtBits(fn *ir.Function, res *bitvalue.Result, s ir.Stmt) string {
	if res == nil {
		return ""
	}
	var text string
	for _, id := range s.Defs() {
		bits, ok := res.Current[id]
		if !ok {
			continue
		}
		if text != "" {
			text += " "
		}
		text += fn.Node(id).Name + "=" + bits.String()
	}
	return text
}
