package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gnoverse/bitwidth/internal/bitvalue"
	"github.com/gnoverse/bitwidth/internal/directive"
	"github.com/gnoverse/bitwidth/internal/frontend"
	"github.com/gnoverse/bitwidth/internal/ir"
	tt "github.com/gnoverse/bitwidth/internal/types"
	"go.uber.org/zap"
)

// Engine manages the analysis of Go files: it builds SSA, runs the bit value
// analysis over every function and turns the fixed points into reports.
type Engine struct {
	logger   *zap.Logger
	settings tt.Settings

	roots        map[string]bool
	ignoredFuncs map[string]bool
	ignoredPaths []string
	cache        *Cache

	mu         sync.Mutex
	watcher    *fsnotify.Watcher
	isWatching bool
	onReports  func(filename string, reports []tt.Report)
}

// NewEngine creates an engine. A nil logger disables logging.
func NewEngine(logger *zap.Logger, settings tt.Settings) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := frontend.SizesFor(settings.Arch); err != nil {
		return nil, err
	}
	e := &Engine{
		logger:       logger,
		settings:     settings,
		roots:        make(map[string]bool),
		ignoredFuncs: make(map[string]bool),
	}
	for _, r := range settings.Roots {
		e.roots[r] = true
	}
	for _, f := range settings.IgnoreFunctions {
		e.IgnoreFunction(f)
	}
	return e, nil
}

// SetCache enables result caching for Run.
func (e *Engine) SetCache(c *Cache) {
	e.cache = c
}

// IgnoreFunction excludes fn from the reports. It is still analyzed so that
// its callers see its summary.
func (e *Engine) IgnoreFunction(fn string) {
	e.ignoredFuncs[fn] = true
}

// IgnorePath skips files matching the glob pattern or located under the
// directory path.
func (e *Engine) IgnorePath(path string) {
	e.ignoredPaths = append(e.ignoredPaths, filepath.Clean(path))
}

func (e *Engine) isIgnoredPath(filename string) bool {
	clean := filepath.Clean(filename)
	for _, p := range e.ignoredPaths {
		if ok, _ := filepath.Match(p, clean); ok {
			return true
		}
		if clean == p || strings.HasPrefix(clean, p+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Run analyzes filename and returns its reports.
func (e *Engine) Run(filename string) ([]tt.Report, error) {
	return e.RunContext(context.Background(), filename)
}

// RunContext is Run with a context bounding the analysis.
func (e *Engine) RunContext(ctx context.Context, filename string) ([]tt.Report, error) {
	if e.isIgnoredPath(filename) {
		return nil, nil
	}
	if e.cache != nil {
		if reports, ok := e.cache.Get(filename); ok {
			e.logger.Debug("cache hit", zap.String("file", filename))
			return reports, nil
		}
	}

	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filename, err)
	}
	reports, err := e.analyze(ctx, filename, src)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(filename, reports); err != nil {
			e.logger.Warn("failed to cache reports", zap.String("file", filename), zap.Error(err))
		}
	}
	return reports, nil
}

// RunSource analyzes source as the content of a single file.
func (e *Engine) RunSource(source []byte) ([]tt.Report, error) {
	return e.RunSourceContext(context.Background(), "source.go", source)
}

// RunSourceContext analyzes source as the content of filename. Neither the
// cache nor the ignored paths apply.
func (e *Engine) RunSourceContext(ctx context.Context, filename string, source []byte) ([]tt.Report, error) {
	return e.analyze(ctx, filename, source)
}

// Inspection is the analysis state of one file: its lowered functions and
// their fixed points.
type Inspection struct {
	Program *ir.Program
	Results map[string]*bitvalue.Result

	pkg *frontend.Package
}

// Inspect builds and analyzes filename without producing reports. A nil src
// reads the file.
func (e *Engine) Inspect(ctx context.Context, filename string, src []byte) (*Inspection, error) {
	if src == nil {
		var err error
		if src, err = os.ReadFile(filename); err != nil {
			return nil, fmt.Errorf("error reading %s: %w", filename, err)
		}
	}
	return e.inspect(ctx, filename, src)
}

func (e *Engine) inspect(ctx context.Context, filename string, src []byte) (in *Inspection, err error) {
	defer func() {
		if r := recover(); r != nil {
			cerr, ok := r.(*bitvalue.ContractError)
			if !ok {
				panic(r)
			}
			in, err = nil, fmt.Errorf("%s: %w", filename, cerr)
		}
	}()

	pkg, err := frontend.BuildSource(filename, src, e.settings.Arch)
	if err != nil {
		return nil, err
	}
	prog, err := frontend.LowerPackage(pkg.SSA, pkg.Sizes)
	if err != nil {
		return nil, err
	}
	for _, fn := range prog.Functions {
		if e.roots[fn.Name] {
			fn.Root = true
		}
	}

	results, err := bitvalue.AnalyzeProgram(ctx, prog,
		bitvalue.WithLogger(e.logger),
		bitvalue.WithAddressWidth(e.settings.AddressWidth),
	)
	if err != nil {
		return nil, fmt.Errorf("error analyzing %s: %w", filename, err)
	}
	return &Inspection{Program: prog, Results: results, pkg: pkg}, nil
}

func (e *Engine) analyze(ctx context.Context, filename string, src []byte) ([]tt.Report, error) {
	in, err := e.inspect(ctx, filename, src)
	if err != nil {
		return nil, err
	}

	dirs := directive.Parse(in.pkg.Files[0], in.pkg.Fset)
	reports := BuildReports(in.Program, in.Results, ReportOptions{
		MinSavedBits: e.settings.MinSavedBits,
		IgnoredFuncs: e.ignoredFuncs,
		Directives:   dirs,
		Complexity:   Complexity(in.pkg.Fset, in.pkg.Files),
	})
	e.logger.Debug("file analyzed",
		zap.String("file", filename),
		zap.Int("functions", len(in.Program.Functions)),
		zap.Int("reports", len(reports)),
	)
	return reports, nil
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	return &SourceCode{Lines: lines}, nil
}
