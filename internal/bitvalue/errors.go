package bitvalue

import (
	"fmt"

	"github.com/gnoverse/bitwidth/internal/ir"
)

// ContractError reports IR that breaks the invariants the analysis relies
// on, such as an unknown operator or a missing operand. It is raised with
// panic since it indicates a bug in whatever produced the IR.
type ContractError struct {
	Func   string
	Stmt   string
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("bitvalue: %s: %s: %s", e.Func, e.Stmt, e.Reason)
}

func contractViolation(fn *ir.Function, s ir.Stmt, format string, args ...any) {
	stmt := "<nil>"
	if s != nil {
		stmt = ir.FormatStmt(fn, s)
	}
	panic(&ContractError{
		Func:   fn.Name,
		Stmt:   stmt,
		Reason: fmt.Sprintf(format, args...),
	})
}
