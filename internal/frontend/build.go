// Package frontend turns Go source into the IR analyzed by the bit value
// engine. Source is type checked with go/types, converted to SSA form by
// golang.org/x/tools/go/ssa and then lowered function by function.
package frontend

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// DefaultArch selects the integer sizes used when no architecture is
// configured.
const DefaultArch = "amd64"

// Package is a type checked package in SSA form.
type Package struct {
	Fset  *token.FileSet
	Files []*ast.File
	SSA   *ssa.Package
	Sizes types.Sizes
}

// BuildSource parses src as the content of filename and builds its package.
// When src is nil the file is read from disk.
func BuildSource(filename string, src []byte, arch string) (*Package, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filename, err)
	}
	return BuildFiles(fset, []*ast.File{f}, arch)
}

// BuildFiles type checks files as a single package and builds its SSA form.
// Imports are resolved from source.
func BuildFiles(fset *token.FileSet, files []*ast.File, arch string) (*Package, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to build")
	}
	sizes, err := SizesFor(arch)
	if err != nil {
		return nil, err
	}

	name := files[0].Name.Name
	for _, f := range files[1:] {
		if f.Name.Name != name {
			return nil, fmt.Errorf("multiple packages: %s and %s", name, f.Name.Name)
		}
	}

	conf := &types.Config{
		Importer: importer.ForCompiler(fset, "source", nil),
		Sizes:    sizes,
	}
	pkg, _, err := ssautil.BuildPackage(conf, fset, types.NewPackage(name, name), files, ssa.InstantiateGenerics)
	if err != nil {
		return nil, fmt.Errorf("typecheck %s: %w", name, err)
	}
	return &Package{Fset: fset, Files: files, SSA: pkg, Sizes: sizes}, nil
}

// SizesFor returns the gc sizes of arch, or of DefaultArch when arch is empty.
func SizesFor(arch string) (types.Sizes, error) {
	if arch == "" {
		arch = DefaultArch
	}
	sizes := types.SizesFor("gc", arch)
	if sizes == nil {
		return nil, fmt.Errorf("unknown architecture %q", arch)
	}
	return sizes, nil
}
