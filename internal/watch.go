package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	tt "github.com/gnoverse/bitwidth/internal/types"
	"go.uber.org/zap"
)

// debounceDelay groups the writes of one save into a single analysis.
const debounceDelay = 100 * time.Millisecond

var errAlreadyWatching = errors.New("already watching")

// SetWatchHandler sets the callback receiving the reports of files changed
// while watching. Without a handler the reports are logged.
func (e *Engine) SetWatchHandler(fn func(filename string, reports []tt.Report)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onReports = fn
}

// StartWatching reanalyzes Go files under dirs whenever they are written.
func (e *Engine) StartWatching(dirs ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isWatching {
		return errAlreadyWatching
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}

	for _, dir := range dirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			watcher.Close()
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	e.watcher = watcher
	e.isWatching = true
	go e.watchLoop(watcher)
	return nil
}

// StopWatching stops the watcher started by StartWatching.
func (e *Engine) StopWatching() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isWatching {
		e.logger.Warn("not watching")
		return nil
	}
	e.isWatching = false
	return e.watcher.Close()
}

func (e *Engine) watchLoop(watcher *fsnotify.Watcher) {
	pending := make(map[string]*time.Timer)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				for _, t := range pending {
					t.Stop()
				}
				return
			}
			if !isWatchedEvent(event) {
				continue
			}
			if t, ok := pending[event.Name]; ok {
				t.Reset(debounceDelay)
				continue
			}
			name := event.Name
			pending[name] = time.AfterFunc(debounceDelay, func() { e.handleFileChange(name) })
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			e.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func isWatchedEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return strings.HasSuffix(event.Name, ".go") && !strings.HasSuffix(event.Name, "_test.go")
}

func (e *Engine) handleFileChange(filename string) {
	reports, err := e.Run(filename)
	if err != nil {
		e.logger.Error("error analyzing changed file", zap.String("file", filename), zap.Error(err))
		return
	}

	e.mu.Lock()
	handler := e.onReports
	e.mu.Unlock()
	if handler != nil {
		handler(filename, reports)
		return
	}
	e.logReports(filename, reports)
}

func (e *Engine) logReports(filename string, reports []tt.Report) {
	if len(reports) == 0 {
		e.logger.Info("no narrowable values", zap.String("file", filename))
		return
	}
	e.logger.Info("found narrowable values", zap.String("file", filename), zap.Int("count", len(reports)))
	for _, r := range reports {
		e.logger.Info(r.Message, zap.String("function", r.Function), zap.Int("line", r.Start.Line))
	}
}
