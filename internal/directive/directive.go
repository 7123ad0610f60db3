// Package directive reads //bitwidth:ignore comments.
//
// A directive may name the report kinds it suppresses after a colon, for
// example "//bitwidth:ignore:summary". Without a list it suppresses every
// kind. Its scope depends on where it appears:
//
//   - before the package clause: the whole file
//   - after code on the same line: that statement
//   - on its own line above a statement: that statement
//   - on its own line above a function declaration: the function
//   - anywhere else: its own line
package directive

import (
	"errors"
	"go/ast"
	"go/token"
	"strings"
)

const Prefix = "//bitwidth:ignore"

var (
	errNotDirective = errors.New("not a bitwidth directive")
	errMalformed    = errors.New("malformed bitwidth directive")
	errEmptyList    = errors.New("bitwidth directive: no kinds after colon")
)

// Set holds the ignore scopes of the parsed files.
type Set struct {
	scopes map[string][]scope
}

type scope struct {
	kinds map[string]struct{}
	start token.Position
	end   token.Position
}

// New returns an empty Set.
func New() *Set {
	return &Set{scopes: make(map[string][]scope)}
}

// Parse collects the directives of f.
func Parse(f *ast.File, fset *token.FileSet) *Set {
	s := New()
	s.Add(f, fset)
	return s
}

// Add collects the directives of one more file.
func (s *Set) Add(f *ast.File, fset *token.FileSet) {
	stmts := statementsByLine(f, fset)
	pkgLine := fset.Position(f.Package).Line

	for _, cg := range f.Comments {
		for _, c := range cg.List {
			sc, err := parseDirective(c, f, fset, stmts, pkgLine)
			if err != nil {
				continue
			}
			name := sc.start.Filename
			s.scopes[name] = append(s.scopes[name], sc)
		}
	}
}

// Len returns the number of directives found.
func (s *Set) Len() int {
	n := 0
	for _, scopes := range s.scopes {
		n += len(scopes)
	}
	return n
}

// Ignored reports whether a report of the given kind at pos is suppressed.
func (s *Set) Ignored(pos token.Position, kind string) bool {
	if s == nil {
		return false
	}
	for _, sc := range s.scopes[pos.Filename] {
		if pos.Line < sc.start.Line || pos.Line > sc.end.Line {
			continue
		}
		if len(sc.kinds) == 0 {
			return true
		}
		if _, ok := sc.kinds[kind]; ok {
			return true
		}
	}
	return false
}

func parseDirective(
	c *ast.Comment,
	f *ast.File,
	fset *token.FileSet,
	stmts map[int]ast.Stmt,
	pkgLine int,
) (scope, error) {
	var sc scope
	if !strings.HasPrefix(c.Text, Prefix) {
		return sc, errNotDirective
	}
	rest := c.Text[len(Prefix):]
	if rest != "" && rest[0] != ':' {
		return sc, errMalformed
	}
	if rest != "" {
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return sc, errEmptyList
		}
	}
	sc.kinds = parseKinds(rest)
	pos := fset.Position(c.Slash)

	if pos.Line < pkgLine {
		sc.start = fset.Position(f.Pos())
		sc.end = fset.Position(f.End())
		return sc, nil
	}

	if stmt, ok := stmts[pos.Line]; ok && pos.Offset > fset.Position(stmt.Pos()).Offset {
		sc.start = fset.Position(stmt.Pos())
		sc.end = fset.Position(stmt.End())
		return sc, nil
	}

	if stmt, ok := stmts[pos.Line+1]; ok {
		sc.start = pos
		sc.end = fset.Position(stmt.End())
		return sc, nil
	}

	if fn := funcAfter(fset, f, pos.Line); fn != nil && fset.Position(fn.Pos()).Line == pos.Line+1 {
		sc.start = pos
		sc.end = fset.Position(fn.End())
		return sc, nil
	}

	sc.start = pos
	sc.end = pos
	return sc, nil
}

func parseKinds(text string) map[string]struct{} {
	kinds := make(map[string]struct{})
	for _, k := range strings.Split(text, ",") {
		if k = strings.TrimSpace(k); k != "" {
			kinds[k] = struct{}{}
		}
	}
	return kinds
}

// statementsByLine maps each line to the first statement starting on it.
func statementsByLine(f *ast.File, fset *token.FileSet) map[int]ast.Stmt {
	stmts := make(map[int]ast.Stmt)
	ast.Inspect(f, func(n ast.Node) bool {
		if stmt, ok := n.(ast.Stmt); ok {
			line := fset.Position(stmt.Pos()).Line
			if _, seen := stmts[line]; !seen {
				stmts[line] = stmt
			}
		}
		return n != nil
	})
	return stmts
}

func funcAfter(fset *token.FileSet, f *ast.File, line int) *ast.FuncDecl {
	for _, decl := range f.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fset.Position(fn.Pos()).Line >= line {
			return fn
		}
	}
	return nil
}
