package frontend

import (
	"fmt"
	"go/constant"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"github.com/gnoverse/bitwidth/internal/ir"
	"golang.org/x/tools/go/ssa"
)

var binOps = map[token.Token]ir.Op{
	token.ADD: ir.OpPlus,
	token.SUB: ir.OpMinus,
	token.MUL: ir.OpMult,
	token.QUO: ir.OpTruncDiv,
	token.REM: ir.OpTruncMod,
	token.AND: ir.OpBitAnd,
	token.OR:  ir.OpBitOr,
	token.XOR: ir.OpBitXor,
	token.SHL: ir.OpLShift,
	token.SHR: ir.OpRShift,
	token.EQL: ir.OpEq,
	token.NEQ: ir.OpNe,
	token.LSS: ir.OpLt,
	token.LEQ: ir.OpLe,
	token.GTR: ir.OpGt,
	token.GEQ: ir.OpGe,
}

// lowerer holds the state of lowering one function.
type lowerer struct {
	fn    *ssa.Function
	sizes types.Sizes
	fset  *token.FileSet
	b     *ir.Builder
	nodes map[ssa.Value]ir.NodeID
}

// Lower translates fn into the IR. Only integer and boolean values are
// represented. Instructions that consume such values without producing one,
// like stores and branches, become Asm statements with inputs only so that
// their operands count as used.
func Lower(fn *ssa.Function, sizes types.Sizes) (*ir.Function, error) {
	if len(fn.Blocks) == 0 {
		return nil, fmt.Errorf("%s has no body", fn)
	}
	if isGeneric(fn) {
		return nil, fmt.Errorf("%s is generic", fn)
	}
	l := &lowerer{
		fn:    fn,
		sizes: sizes,
		fset:  fn.Prog.Fset,
		b:     ir.NewBuilder(FuncName(fn)),
		nodes: make(map[ssa.Value]ir.NodeID),
	}
	l.declare()
	l.lower()

	res := l.b.Function()
	res.Pos = l.fset.Position(fn.Pos())
	if err := ir.Validate(res); err != nil {
		return nil, err
	}
	return res, nil
}

// FuncName is the name a function is known by inside its own package.
func FuncName(fn *ssa.Function) string {
	if fn.Pkg != nil {
		return fn.RelString(fn.Pkg.Pkg)
	}
	return fn.String()
}

func (l *lowerer) calleeName(callee *ssa.Function) string {
	if callee.Pkg == l.fn.Pkg {
		return FuncName(callee)
	}
	return callee.String()
}

func (l *lowerer) at(pos token.Pos) {
	if pos.IsValid() {
		l.b.At(l.fset.Position(pos))
	}
}

// typeOf maps t to an IR type. Only booleans and integers are representable.
func (l *lowerer) typeOf(t types.Type) (ir.Type, bool) {
	basic, ok := t.Underlying().(*types.Basic)
	if !ok {
		return ir.Type{}, false
	}
	info := basic.Info()
	switch {
	case info&types.IsBoolean != 0:
		return ir.BoolType, true
	case info&types.IsInteger == 0:
		return ir.Type{}, false
	case info&types.IsUntyped != 0:
		return ir.Int(64), true
	}
	return ir.Type{
		Width:  int(l.sizes.Sizeof(t)) * 8,
		Signed: info&types.IsUnsigned == 0,
	}, true
}

// declare creates the blocks, the parameters, the result and a node for every
// value defined by an instruction so that forward references from phis
// resolve.
func (l *lowerer) declare() {
	for i := 1; i < len(l.fn.Blocks); i++ {
		l.b.NewBlock()
	}
	for _, blk := range l.fn.Blocks {
		for _, pred := range blk.Preds {
			l.b.Edge(pred.Index, blk.Index)
		}
	}

	for _, p := range l.fn.Params {
		if typ, ok := l.typeOf(p.Type()); ok {
			l.at(p.Pos())
			l.nodes[p] = l.b.Param(p.Name(), typ)
		}
	}
	if results := l.fn.Signature.Results(); results.Len() == 1 {
		if typ, ok := l.typeOf(results.At(0).Type()); ok {
			l.b.Result(typ)
		}
	}

	for _, blk := range l.fn.Blocks {
		for _, instr := range blk.Instrs {
			v, ok := instr.(ssa.Value)
			if !ok {
				continue
			}
			if typ, ok := l.typeOf(v.Type()); ok {
				l.at(v.Pos())
				l.nodes[v] = l.b.Value(v.Name(), typ)
			}
		}
	}
}

// value returns the node of v, creating constants and values from outside
// the function on first use.
func (l *lowerer) value(v ssa.Value) (ir.NodeID, bool) {
	if id, ok := l.nodes[v]; ok {
		return id, true
	}
	typ, ok := l.typeOf(v.Type())
	if !ok {
		return ir.NoNode, false
	}
	var id ir.NodeID
	c, isConst := v.(*ssa.Const)
	if value, ok := constValue(c); isConst && ok {
		id = l.b.Const(value, typ)
	} else {
		id = l.b.Value(v.Name(), typ)
		l.b.Unhandled(id)
	}
	l.nodes[v] = id
	return id, true
}

func constValue(c *ssa.Const) (int64, bool) {
	if c == nil {
		return 0, false
	}
	if c.Value == nil {
		return 0, true
	}
	switch c.Value.Kind() {
	case constant.Bool:
		if constant.BoolVal(c.Value) {
			return 1, true
		}
		return 0, true
	case constant.Int:
		if v, exact := constant.Int64Val(c.Value); exact {
			return v, true
		}
		if v, exact := constant.Uint64Val(c.Value); exact {
			return int64(v), true
		}
	}
	return 0, false
}

// operands returns the nodes of the representable operands of instr.
func (l *lowerer) operands(instr ssa.Instruction) []ir.NodeID {
	var ids []ir.NodeID
	for _, op := range instr.Operands(nil) {
		if *op == nil {
			continue
		}
		if id, ok := l.value(*op); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (l *lowerer) lower() {
	for _, blk := range l.fn.Blocks {
		for _, instr := range blk.Instrs {
			l.at(instr.Pos())
			l.instr(blk.Index, instr)
		}
	}
}

func (l *lowerer) instr(blk int, instr ssa.Instruction) {
	switch instr := instr.(type) {
	case *ssa.Phi:
		if dest, ok := l.nodes[instr]; ok {
			l.phi(blk, dest, instr)
		}
		return
	case *ssa.Return:
		value := ir.NoNode
		if len(instr.Results) == 1 && l.b.Function().Result != ir.NoNode {
			value, _ = l.value(instr.Results[0])
		}
		l.b.Return(blk, value)
		return
	}

	if v, ok := instr.(ssa.Value); ok {
		if dest, ok := l.nodes[v]; ok {
			l.assign(blk, dest, instr)
			return
		}
	}
	if inputs := l.operands(instr); len(inputs) > 0 {
		l.b.Asm(blk, nil, inputs...)
	}
}

func (l *lowerer) phi(blk int, dest ir.NodeID, phi *ssa.Phi) {
	preds := phi.Block().Preds
	incoming := make([]ir.PhiArg, 0, len(phi.Edges))
	for i, edge := range phi.Edges {
		v, ok := l.value(edge)
		if !ok {
			continue
		}
		incoming = append(incoming, ir.PhiArg{Value: v, Pred: preds[i].Index})
	}
	l.b.PhiTo(blk, dest, incoming...)
}

func (l *lowerer) assign(blk int, dest ir.NodeID, instr ssa.Instruction) {
	switch v := instr.(type) {
	case *ssa.BinOp:
		l.binOp(blk, dest, v)
	case *ssa.UnOp:
		l.unOp(blk, dest, v)
	case *ssa.Convert:
		l.convert(blk, dest, v, v.X)
	case *ssa.ChangeType:
		l.convert(blk, dest, v, v.X)
	case *ssa.Call:
		l.call(blk, dest, v)
	default:
		l.opaque(blk, dest, instr)
	}
}

func (l *lowerer) opaque(blk int, dest ir.NodeID, instr ssa.Instruction) {
	l.b.AssignTo(blk, dest, ir.OpOpaque, l.operands(instr)...)
}

func (l *lowerer) binOp(blk int, dest ir.NodeID, v *ssa.BinOp) {
	x, okx := l.value(v.X)
	y, oky := l.value(v.Y)
	if !okx || !oky {
		l.opaque(blk, dest, v)
		return
	}
	if v.Op == token.AND_NOT {
		typ := l.b.Function().Node(y).Type
		inv := l.b.Assign(blk, v.Name()+".not", typ, ir.OpBitNot, y)
		l.b.AssignTo(blk, dest, ir.OpBitAnd, x, inv)
		return
	}
	op, ok := binOps[v.Op]
	if !ok {
		l.opaque(blk, dest, v)
		return
	}
	l.b.AssignTo(blk, dest, op, x, y)
}

func (l *lowerer) unOp(blk int, dest ir.NodeID, v *ssa.UnOp) {
	if v.Op == token.MUL {
		l.b.AssignTo(blk, dest, ir.OpLoad)
		return
	}
	x, ok := l.value(v.X)
	if !ok {
		l.opaque(blk, dest, v)
		return
	}
	switch v.Op {
	case token.SUB:
		l.b.AssignTo(blk, dest, ir.OpNegate, x)
	case token.XOR:
		l.b.AssignTo(blk, dest, ir.OpBitNot, x)
	case token.NOT:
		l.b.AssignTo(blk, dest, ir.OpTruthNot, x)
	default:
		l.opaque(blk, dest, v)
	}
}

func (l *lowerer) convert(blk int, dest ir.NodeID, instr ssa.Instruction, x ssa.Value) {
	src, ok := l.value(x)
	if !ok {
		l.opaque(blk, dest, instr)
		return
	}
	l.b.AssignTo(blk, dest, ir.OpConvert, src)
}

func (l *lowerer) call(blk int, dest ir.NodeID, v *ssa.Call) {
	common := v.Common()
	if builtin, ok := common.Value.(*ssa.Builtin); ok && len(common.Args) == 2 {
		op := ir.OpInvalid
		switch builtin.Name() {
		case "min":
			op = ir.OpMin
		case "max":
			op = ir.OpMax
		}
		x, okx := l.value(common.Args[0])
		y, oky := l.value(common.Args[1])
		if op != ir.OpInvalid && okx && oky {
			l.b.AssignTo(blk, dest, op, x, y)
			return
		}
	}
	args := l.operands(v)
	if callee := common.StaticCallee(); callee != nil {
		l.b.AssignTo(blk, dest, ir.OpCall, args...).Callee = l.calleeName(callee)
		return
	}
	l.b.AssignTo(blk, dest, ir.OpOpaque, args...)
}

func isGeneric(fn *ssa.Function) bool {
	return fn.TypeParams().Len() > 0 && len(fn.TypeArgs()) == 0
}

// IsRoot reports whether fn is an entry point of its package.
func IsRoot(fn *ssa.Function) bool {
	if fn.Parent() != nil || fn.Signature.Recv() != nil {
		return false
	}
	name := fn.Name()
	return name == "main" || name == "init" || strings.HasPrefix(name, "init#")
}

// PackageFunctions returns the functions with a body declared in pkg:
// package level functions, methods and their closures, in source order.
// Generic functions are skipped.
func PackageFunctions(pkg *ssa.Package) []*ssa.Function {
	var fns []*ssa.Function
	var visit func(fn *ssa.Function)
	visit = func(fn *ssa.Function) {
		if len(fn.Blocks) == 0 || isGeneric(fn) {
			return
		}
		fns = append(fns, fn)
		for _, anon := range fn.AnonFuncs {
			visit(anon)
		}
	}

	for _, mem := range pkg.Members {
		switch m := mem.(type) {
		case *ssa.Function:
			visit(m)
		case *ssa.Type:
			if named, ok := m.Type().(*types.Named); ok && named.TypeParams().Len() > 0 {
				continue
			}
			mset := pkg.Prog.MethodSets.MethodSet(types.NewPointer(m.Type()))
			for i := 0; i < mset.Len(); i++ {
				fn := pkg.Prog.MethodValue(mset.At(i))
				if fn != nil && fn.Synthetic == "" && fn.Pkg == pkg {
					visit(fn)
				}
			}
		}
	}

	sort.SliceStable(fns, func(i, j int) bool {
		if fns[i].Pos() != fns[j].Pos() {
			return fns[i].Pos() < fns[j].Pos()
		}
		return FuncName(fns[i]) < FuncName(fns[j])
	})
	return fns
}

// LowerPackage lowers every function of PackageFunctions(pkg) and marks the
// package entry points as roots.
func LowerPackage(pkg *ssa.Package, sizes types.Sizes) (*ir.Program, error) {
	return LowerFuncs(PackageFunctions(pkg), sizes)
}

// LowerFuncs lowers fns into one program. Functions without a body and
// generic functions are skipped.
func LowerFuncs(fns []*ssa.Function, sizes types.Sizes) (*ir.Program, error) {
	prog := ir.NewProgram()
	for _, fn := range fns {
		if len(fn.Blocks) == 0 || isGeneric(fn) {
			continue
		}
		lowered, err := Lower(fn, sizes)
		if err != nil {
			return nil, fmt.Errorf("lowering %s: %w", fn, err)
		}
		lowered.Root = IsRoot(fn)
		prog.Add(lowered)
	}
	return prog, nil
}
