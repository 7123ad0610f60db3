// Package analyze runs an analysis engine over files, directories and
// in-memory sources and loads the configuration it runs with.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/gnoverse/bitwidth/internal"
	tt "github.com/gnoverse/bitwidth/internal/types"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const (
	maxShowRecentFiles = 25

	// DefaultConfigPath is the configuration file looked up when none is given.
	DefaultConfigPath = ".bitwidth.yaml"
)

// Engine is the part of internal.Engine the processing functions rely on.
type Engine interface {
	Run(filePath string) ([]tt.Report, error)
	RunSource(source []byte) ([]tt.Report, error)
	IgnoreFunction(fn string)
	IgnorePath(path string)
}

// Progress receives the directory progress display. Set it to io.Discard to
// silence it.
var Progress io.Writer = os.Stderr

// New creates an engine configured by the file at configurationPath. A
// missing file yields the default settings.
func New(configurationPath string, logger *zap.Logger) (*internal.Engine, error) {
	config, err := parseConfigurationFile(configurationPath)
	if err != nil {
		return nil, err
	}
	return internal.NewEngine(logger, config.Settings)
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	sources [][]byte,
	processor func(Engine, []byte) ([]tt.Report, error),
) ([]tt.Report, error) {
	var all []tt.Report
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		reports, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		all = append(all, reports...)
	}

	return all, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	paths []string,
	processor func(Engine, string) ([]tt.Report, error),
) ([]tt.Report, error) {
	var all []tt.Report
	for _, path := range paths {
		reports, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return all, err
		}
		all = append(all, reports...)
	}

	return all, nil
}

// ProcessPath analyzes a file, or every Go file below a directory. Files of
// a directory are processed concurrently; a file that fails is logged and
// skipped. On cancellation the reports gathered so far are returned with
// the context error.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	path string,
	processor func(Engine, string) ([]tt.Report, error),
) ([]tt.Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !hasDesiredExtension(path) {
			return nil, nil
		}
		return processor(engine, path)
	}

	files, err := collectFiles(path)
	if err != nil {
		return nil, err
	}

	display := newRecentFiles(Progress)
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(Progress),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	var (
		mu      sync.Mutex
		reports = []tt.Report{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, filePath := range files {
		if gctx.Err() != nil {
			break
		}
		fp := filePath
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			display.add(filepath.Base(fp))

			fileReports, err := processor(engine, fp)
			bar.Add(1)
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
				return nil
			}

			mu.Lock()
			reports = append(reports, fileReports...)
			mu.Unlock()
			return nil
		})
	}
	werr := g.Wait()
	fmt.Fprintln(Progress)

	sortReports(reports)
	if err := ctx.Err(); err != nil {
		return reports, err
	}
	if werr != nil && !errors.Is(werr, context.Canceled) {
		return reports, werr
	}
	return reports, nil
}

func ProcessFile(engine Engine, filePath string) ([]tt.Report, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine Engine, source []byte) ([]tt.Report, error) {
	return engine.RunSource(source)
}

func collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(filePath string, fileInfo os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fileInfo.IsDir() && hasDesiredExtension(filePath) {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", root, err)
	}
	return files, nil
}

func hasDesiredExtension(path string) bool {
	return filepath.Ext(path) == ".go" && !strings.HasSuffix(path, "_test.go")
}

func sortReports(reports []tt.Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		a, b := reports[i].Start, reports[j].Start
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// recentFiles keeps the names of the last processed files on screen.
type recentFiles struct {
	mu    sync.Mutex
	w     io.Writer
	names []string
}

func newRecentFiles(w io.Writer) *recentFiles {
	// make space for the list and the bar below it
	for range maxShowRecentFiles + 1 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\033[%dA", maxShowRecentFiles+1)
	return &recentFiles{w: w, names: make([]string, maxShowRecentFiles)}
}

func (r *recentFiles) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copy(r.names[1:], r.names[:len(r.names)-1])
	r.names[0] = name

	fmt.Fprintf(r.w, "\033[%dA", maxShowRecentFiles)
	for _, n := range r.names {
		// \033[2K clears the line, \r moves back to its start
		fmt.Fprintf(r.w, "\033[2K\r%s\n", n)
	}
}

// Config is the content of a configuration file.
type Config struct {
	Name        string `yaml:"name"`
	tt.Settings `yaml:",inline"`
}

// DefaultConfig returns the configuration written by "bitwidth init".
func DefaultConfig() Config {
	return Config{Name: "bitwidth", Settings: tt.DefaultSettings()}
}

// LoadConfig reads the configuration at path, falling back to the defaults
// for a missing file or missing keys.
func LoadConfig(path string) (Config, error) {
	return parseConfigurationFile(path)
}

func parseConfigurationFile(configurationPath string) (Config, error) {
	config := DefaultConfig()
	if configurationPath == "" {
		return config, nil
	}

	f, err := os.Open(configurationPath)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("error parsing %s: %w", configurationPath, err)
	}
	return config, nil
}
