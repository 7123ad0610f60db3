// Package internal drives the bit width analysis of Go source files.
//
// Engine parses and type-checks a file, builds its SSA form, lowers every
// function to the analysis IR and runs the bit value analysis over the whole
// package, callees first. The fixed points are turned into reports: one per
// value whose known bits fit in fewer bits than its type provides, and one
// per function whose result does.
//
// Key components:
//
// Engine: coordinates building, analysis and reporting. It honors
// //bitwidth:ignore directives, ignored functions and ignored paths.
//
// Cache: persists the reports of analyzed files between runs. Entries are
// invalidated when the file, a dependency such as the configuration file or
// the entry age changes.
//
// Watching: StartWatching reanalyzes files as they are saved.
//
// Usage:
//
//	engine, err := internal.NewEngine(logger, types.DefaultSettings())
//	if err != nil {
//	    // handle error
//	}
//
//	reports, err := engine.Run("path/to/file.go")
//	if err != nil {
//	    // handle error
//	}
//
//	for _, r := range reports {
//	    fmt.Printf("%s: %s\n", r.Start, r.Message)
//	}
package internal
