package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoverse/bitwidth/analyze"
	"github.com/gnoverse/bitwidth/formatter"
	"github.com/gnoverse/bitwidth/internal"
	tt "github.com/gnoverse/bitwidth/internal/types"
)

var (
	ignoreFunctions string
	ignorePaths     string
	jsonOutput      bool
	outPath         string
	cacheDir        string
	watch           bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [paths...]",
	Short: "Report values and results that need fewer bits than their type",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("please provide file or directory paths")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		engine, err := newEngine()
		if err != nil {
			return err
		}

		reports, err := analyze.ProcessFiles(ctx, logger, engine, args, analyze.ProcessFile)
		if err != nil {
			return fmt.Errorf("error processing files: %w", err)
		}
		if err := printReports(cmd.OutOrStdout(), reports, jsonOutput, outPath); err != nil {
			return err
		}

		if watch {
			return watchPaths(cmd, engine, args)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&ignoreFunctions, "ignore-functions", "", "Comma-separated list of functions to analyze without reporting")
	analyzeCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths or globs to skip")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output reports in JSON format")
	analyzeCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	analyzeCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory caching the reports of unchanged files")
	analyzeCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reanalyze files as they change")
}

func newEngine() (*internal.Engine, error) {
	engine, err := analyze.New(cfgFile, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}

	for _, fn := range splitList(ignoreFunctions) {
		engine.IgnoreFunction(fn)
	}
	for _, path := range splitList(ignorePaths) {
		engine.IgnorePath(path)
	}

	if cacheDir != "" {
		cache, err := internal.NewCache(cacheDir, cfgFile)
		if err != nil {
			return nil, err
		}
		engine.SetCache(cache)
	}
	return engine, nil
}

func splitList(s string) []string {
	var res []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			res = append(res, item)
		}
	}
	return res
}

func watchPaths(cmd *cobra.Command, engine *internal.Engine, paths []string) error {
	out := cmd.OutOrStdout()
	engine.SetWatchHandler(func(filename string, reports []tt.Report) {
		if err := printReports(out, reports, jsonOutput, ""); err != nil {
			logger.Error("Error printing reports", zap.String("file", filename), zap.Error(err))
		}
	})
	if err := engine.StartWatching(paths...); err != nil {
		return err
	}
	fmt.Fprintln(out, "Watching for changes, press Ctrl+C to stop")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	return engine.StopWatching()
}

func printReports(w io.Writer, reports []tt.Report, isJSON bool, jsonPath string) error {
	reportsByFile := make(map[string][]tt.Report)
	for _, r := range reports {
		reportsByFile[r.Filename] = append(reportsByFile[r.Filename], r)
	}

	if isJSON {
		d, err := json.MarshalIndent(reportsByFile, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshalling reports to JSON: %w", err)
		}
		if jsonPath == "" {
			_, err = fmt.Fprintln(w, string(d))
			return err
		}
		if err := os.WriteFile(jsonPath, d, 0o644); err != nil {
			return fmt.Errorf("error writing JSON output file: %w", err)
		}
		return nil
	}

	sortedFiles := make([]string, 0, len(reportsByFile))
	for filename := range reportsByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	for _, filename := range sortedFiles {
		sourceCode, err := internal.ReadSourceCode(filename)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			continue
		}
		fmt.Fprint(w, formatter.GenerateFormattedReport(reportsByFile[filename], sourceCode))
	}
	return nil
}
