package ir

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a textual listing of fn to w.
func Fprint(w io.Writer, fn *Function) error {
	var sb strings.Builder

	params := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		n := fn.Node(p)
		params = append(params, n.Name+" "+n.Type.String())
	}
	fmt.Fprintf(&sb, "func %s(%s)", fn.Name, strings.Join(params, ", "))
	if fn.Result != NoNode {
		fmt.Fprintf(&sb, " %s", fn.Node(fn.Result).Type)
	}
	if fn.Root {
		sb.WriteString(" root")
	}
	sb.WriteString("\n")

	for _, b := range fn.Blocks {
		fmt.Fprintf(&sb, "b%d:", b.Index)
		if len(b.Preds) > 0 {
			fmt.Fprintf(&sb, " <- %s", blockList(b.Preds))
		}
		if len(b.Succs) > 0 {
			fmt.Fprintf(&sb, " -> %s", blockList(b.Succs))
		}
		sb.WriteString("\n")
		for _, phi := range b.Phis {
			sb.WriteString("\t" + FormatStmt(fn, phi) + "\n")
		}
		for _, s := range b.Stmts {
			sb.WriteString("\t" + FormatStmt(fn, s) + "\n")
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatStmt renders a single statement.
func FormatStmt(fn *Function, s Stmt) string {
	name := func(id NodeID) string {
		if id == NoNode {
			return "_"
		}
		return fn.Node(id).Name
	}
	names := func(ids []NodeID) string {
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = name(id)
		}
		return strings.Join(parts, ", ")
	}

	switch s := s.(type) {
	case *Assign:
		dest := fn.Node(s.Dest)
		rhs := s.Op.String()
		switch s.Op {
		case OpCall:
			rhs += " " + s.Callee
		case OpAddrOf:
			rhs += fmt.Sprintf(" align=%d", s.Align)
		}
		if len(s.Args) > 0 {
			rhs += " " + names(s.Args)
		}
		return fmt.Sprintf("%s:%s = %s", dest.Name, dest.Type, rhs)
	case *Phi:
		dest := fn.Node(s.Dest)
		edges := make([]string, len(s.Incoming))
		for i, in := range s.Incoming {
			edges[i] = fmt.Sprintf("b%d: %s", in.Pred, name(in.Value))
		}
		return fmt.Sprintf("%s:%s = phi [%s]", dest.Name, dest.Type, strings.Join(edges, ", "))
	case *Return:
		if s.Value == NoNode {
			return "return"
		}
		return "return " + name(s.Value)
	case *Asm:
		return fmt.Sprintf("%s = asm %s", names(s.Outputs), names(s.Inputs))
	default:
		return fmt.Sprintf("<%T>", s)
	}
}

func blockList(idx []int) string {
	parts := make([]string, len(idx))
	for i, b := range idx {
		parts[i] = fmt.Sprintf("b%d", b)
	}
	return strings.Join(parts, " ")
}

// FprintDot writes fn as a GraphViz digraph with one box per block. When
// annotate is not nil, its result is appended to each statement line.
func FprintDot(w io.Writer, fn *Function, annotate func(Stmt) string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "digraph %q {\n", fn.Name)
	sb.WriteString("\tmode=\"heir\";\n\tsplines=\"ortho\";\n\tnode [shape=box, fontname=\"monospace\"];\n\n")

	line := func(s Stmt) string {
		text := FormatStmt(fn, s)
		if annotate != nil {
			if extra := annotate(s); extra != "" {
				text += "  ; " + extra
			}
		}
		return text + `\l`
	}
	for _, b := range fn.Blocks {
		label := fmt.Sprintf(`b%d:\l`, b.Index)
		for _, phi := range b.Phis {
			label += line(phi)
		}
		for _, s := range b.Stmts {
			label += line(s)
		}
		fmt.Fprintf(&sb, "\t\"b%d\" [label=\"%s\"];\n", b.Index, strings.ReplaceAll(label, `"`, `\"`))
	}
	sb.WriteString("\n")
	for _, b := range fn.Blocks {
		for _, s := range b.Succs {
			fmt.Fprintf(&sb, "\t\"b%d\" -> \"b%d\"\n", b.Index, s)
		}
	}
	sb.WriteString("}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
