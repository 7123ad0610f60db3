package ir

import (
	"fmt"
	"go/token"
)

// Builder assembles a Function statement by statement.
type Builder struct {
	fn  *Function
	pos token.Position
}

// NewBuilder starts a function called name with an empty entry block.
func NewBuilder(name string) *Builder {
	b := &Builder{fn: &Function{Name: name, Result: NoNode}}
	b.NewBlock()
	return b
}

// At sets the source position attached to subsequently created nodes and
// statements.
func (b *Builder) At(pos token.Position) *Builder {
	b.pos = pos
	return b
}

// Root marks the function as an entry point.
func (b *Builder) Root() *Builder {
	b.fn.Root = true
	return b
}

func (b *Builder) node(kind NodeKind, name string, typ Type) NodeID {
	id := NodeID(len(b.fn.Nodes))
	b.fn.Nodes = append(b.fn.Nodes, &Node{
		ID:      id,
		Kind:    kind,
		Name:    name,
		Type:    typ,
		Handled: true,
		Pos:     b.pos,
	})
	return id
}

// Param declares a formal parameter.
func (b *Builder) Param(name string, typ Type) NodeID {
	id := b.node(KindParam, name, typ)
	b.fn.Params = append(b.fn.Params, id)
	return id
}

// Const declares an integer constant.
func (b *Builder) Const(value int64, typ Type) NodeID {
	id := b.node(KindConst, fmt.Sprint(value), typ)
	b.fn.Nodes[id].Value = value
	return id
}

// Value declares an SSA node whose definition is added later.
func (b *Builder) Value(name string, typ Type) NodeID {
	return b.node(KindSSA, name, typ)
}

// Result declares the return summary node of the function.
func (b *Builder) Result(typ Type) NodeID {
	if b.fn.Result == NoNode {
		b.fn.Result = b.node(KindResult, b.fn.Name+".result", typ)
	}
	return b.fn.Result
}

// Unhandled excludes id from the analysis.
func (b *Builder) Unhandled(id NodeID) {
	b.fn.Nodes[id].Handled = false
}

// NewBlock appends an empty basic block and returns its index.
func (b *Builder) NewBlock() int {
	idx := len(b.fn.Blocks)
	b.fn.Blocks = append(b.fn.Blocks, &Block{Index: idx})
	return idx
}

// Edge adds a control flow edge from -> to.
func (b *Builder) Edge(from, to int) {
	b.fn.Blocks[from].Succs = append(b.fn.Blocks[from].Succs, to)
	b.fn.Blocks[to].Preds = append(b.fn.Blocks[to].Preds, from)
}

// Assign declares name and defines it as op(args...) in block blk.
func (b *Builder) Assign(blk int, name string, typ Type, op Op, args ...NodeID) NodeID {
	dest := b.Value(name, typ)
	b.AssignTo(blk, dest, op, args...)
	return dest
}

// AssignTo defines an existing node as op(args...) in block blk.
func (b *Builder) AssignTo(blk int, dest NodeID, op Op, args ...NodeID) *Assign {
	s := &Assign{Dest: dest, Op: op, Args: args, BlockIndex: blk, Pos: b.pos}
	b.fn.Blocks[blk].Stmts = append(b.fn.Blocks[blk].Stmts, s)
	return s
}

// Call defines name as the result of calling callee with args.
func (b *Builder) Call(blk int, name string, typ Type, callee string, args ...NodeID) NodeID {
	dest := b.Value(name, typ)
	b.AssignTo(blk, dest, OpCall, args...).Callee = callee
	return dest
}

// AddrOf defines name as an address whose align low bits are zero.
func (b *Builder) AddrOf(blk int, name string, typ Type, align int) NodeID {
	dest := b.Value(name, typ)
	b.AssignTo(blk, dest, OpAddrOf).Align = align
	return dest
}

// Phi declares name and defines it by a phi in block blk.
func (b *Builder) Phi(blk int, name string, typ Type, incoming ...PhiArg) NodeID {
	dest := b.Value(name, typ)
	b.PhiTo(blk, dest, incoming...)
	return dest
}

// PhiTo defines an existing node by a phi in block blk.
func (b *Builder) PhiTo(blk int, dest NodeID, incoming ...PhiArg) *Phi {
	s := &Phi{Dest: dest, Incoming: incoming, BlockIndex: blk, Pos: b.pos}
	b.fn.Blocks[blk].Phis = append(b.fn.Blocks[blk].Phis, s)
	return s
}

// Return ends block blk returning value, which may be NoNode.
func (b *Builder) Return(blk int, value NodeID) *Return {
	s := &Return{Value: value, BlockIndex: blk, Pos: b.pos}
	b.fn.Blocks[blk].Stmts = append(b.fn.Blocks[blk].Stmts, s)
	return s
}

// Asm adds an opaque statement defining outputs from inputs.
func (b *Builder) Asm(blk int, outputs []NodeID, inputs ...NodeID) *Asm {
	s := &Asm{Outputs: outputs, Inputs: inputs, BlockIndex: blk, Pos: b.pos}
	b.fn.Blocks[blk].Stmts = append(b.fn.Blocks[blk].Stmts, s)
	return s
}

// Function returns the function built so far.
func (b *Builder) Function() *Function {
	return b.fn
}
