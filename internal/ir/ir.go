// Package ir is the SSA representation analyzed by the bit value engine.
//
// Values are nodes in a per-function arena and are referred to by NodeID.
// Statements are one of Assign, Phi, Return or Asm and live in the basic
// blocks of a Function. Every SSA node has at most one defining statement.
package ir

import (
	"fmt"
	"go/token"
)

// NodeID indexes Function.Nodes.
type NodeID int32

// NoNode marks an absent node, such as the value of a bare return.
const NoNode NodeID = -1

// NodeKind classifies what a node stands for.
type NodeKind uint8

const (
	KindSSA    NodeKind = iota // value defined by a statement
	KindParam                  // formal parameter
	KindConst                  // integer constant
	KindResult                 // the function's return summary
)

func (k NodeKind) String() string {
	switch k {
	case KindSSA:
		return "ssa"
	case KindParam:
		return "param"
	case KindConst:
		return "const"
	case KindResult:
		return "result"
	default:
		return "unknown"
	}
}

// Type is the declared integer type of a node.
type Type struct {
	Width  int
	Signed bool
	Bool   bool
}

// Int returns a signed integer type of the given width.
func Int(width int) Type { return Type{Width: width, Signed: true} }

// Uint returns an unsigned integer type of the given width.
func Uint(width int) Type { return Type{Width: width} }

// BoolType is the one bit boolean type.
var BoolType = Type{Width: 1, Bool: true}

func (t Type) String() string {
	switch {
	case t.Bool:
		return "bool"
	case t.Signed:
		return fmt.Sprintf("i%d", t.Width)
	default:
		return fmt.Sprintf("u%d", t.Width)
	}
}

// Node is a value of the function.
type Node struct {
	ID   NodeID
	Kind NodeKind
	Name string
	Type
	// Handled reports whether the node takes part in the analysis.
	Handled bool
	// Value holds the constant of a KindConst node.
	Value int64
	Pos   token.Position
}

// Stmt is implemented by *Assign, *Phi, *Return and *Asm.
type Stmt interface {
	// Block returns the index of the enclosing basic block.
	Block() int
	// Defs returns the nodes written by the statement.
	Defs() []NodeID
	// Uses returns the nodes read by the statement.
	Uses() []NodeID
}

// Assign computes Dest = Op(Args...).
type Assign struct {
	Dest NodeID
	Op   Op
	Args []NodeID
	// Align is the number of low address bits known to be zero (OpAddrOf).
	Align int
	// Callee names the statically called function (OpCall).
	Callee string

	BlockIndex int
	Pos        token.Position
}

func (s *Assign) Block() int     { return s.BlockIndex }
func (s *Assign) Defs() []NodeID { return []NodeID{s.Dest} }
func (s *Assign) Uses() []NodeID { return s.Args }
func (s *Assign) Operand(i int) NodeID {
	if i < len(s.Args) {
		return s.Args[i]
	}
	return NoNode
}

// PhiArg is the value flowing into a phi from predecessor block Pred.
type PhiArg struct {
	Value NodeID
	Pred  int
}

// Phi selects one of its incoming values depending on the edge taken.
type Phi struct {
	Dest     NodeID
	Incoming []PhiArg

	BlockIndex int
	Pos        token.Position
}

func (s *Phi) Block() int     { return s.BlockIndex }
func (s *Phi) Defs() []NodeID { return []NodeID{s.Dest} }
func (s *Phi) Uses() []NodeID {
	uses := make([]NodeID, 0, len(s.Incoming))
	for _, in := range s.Incoming {
		uses = append(uses, in.Value)
	}
	return uses
}

// Return leaves the function with Value, or with nothing when Value is NoNode.
type Return struct {
	Value NodeID

	BlockIndex int
	Pos        token.Position
}

func (s *Return) Block() int     { return s.BlockIndex }
func (s *Return) Defs() []NodeID { return nil }
func (s *Return) Uses() []NodeID {
	if s.Value == NoNode {
		return nil
	}
	return []NodeID{s.Value}
}

// Asm is an opaque instruction whose outputs cannot be reasoned about.
type Asm struct {
	Outputs []NodeID
	Inputs  []NodeID

	BlockIndex int
	Pos        token.Position
}

func (s *Asm) Block() int     { return s.BlockIndex }
func (s *Asm) Defs() []NodeID { return s.Outputs }
func (s *Asm) Uses() []NodeID { return s.Inputs }

// Block is a basic block. Phis run before Stmts.
type Block struct {
	Index int
	Phis  []*Phi
	Stmts []Stmt
	Succs []int
	Preds []int
}

// Function is one analyzed function. Blocks[0] is the entry block.
type Function struct {
	Name   string
	Pos    token.Position
	Nodes  []*Node
	Params []NodeID
	Blocks []*Block
	// Result is the KindResult node summarizing returned values, or NoNode.
	Result NodeID
	// Root functions are entry points; their returns are not summarized.
	Root bool
}

// Node returns the node with the given id.
func (f *Function) Node(id NodeID) *Node {
	return f.Nodes[id]
}

// Len and Succs expose the control flow graph of f.
func (f *Function) Len() int          { return len(f.Blocks) }
func (f *Function) Succs(n int) []int { return f.Blocks[n].Succs }

// Statements returns every statement of f, phis first within each block.
func (f *Function) Statements() []Stmt {
	var res []Stmt
	for _, b := range f.Blocks {
		for _, phi := range b.Phis {
			res = append(res, phi)
		}
		res = append(res, b.Stmts...)
	}
	return res
}

// Program is a set of functions that may call each other.
type Program struct {
	Functions []*Function
	byName    map[string]*Function
}

// NewProgram indexes fns by name.
func NewProgram(fns ...*Function) *Program {
	p := &Program{}
	for _, fn := range fns {
		p.Add(fn)
	}
	return p
}

// Add appends fn to the program, replacing a previous function of the same name.
func (p *Program) Add(fn *Function) {
	if p.byName == nil {
		p.byName = make(map[string]*Function)
	}
	if old, ok := p.byName[fn.Name]; ok {
		for i, f := range p.Functions {
			if f == old {
				p.Functions[i] = fn
			}
		}
	} else {
		p.Functions = append(p.Functions, fn)
	}
	p.byName[fn.Name] = fn
}

// Lookup returns the function called name.
func (p *Program) Lookup(name string) (*Function, bool) {
	fn, ok := p.byName[name]
	return fn, ok
}
