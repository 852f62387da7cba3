// Command oakc is the CLI front door for the well-formedness core:
// `check` analyses a grammar, `build` additionally lowers it to Go
// source, and `watch` re-runs `check` on every save.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/aledsdavies/oakc/internal/ast"
	"github.com/aledsdavies/oakc/internal/codegen"
	"github.com/aledsdavies/oakc/internal/diag"
	"github.com/aledsdavies/oakc/internal/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "oakc",
		Short: "oakc checks and compiles the well-formedness core of a PEG grammar",
	}
	root.AddCommand(newCheckCmd(), newBuildCmd(), newWatchCmd())
	return root
}

func newCheckCmd() *cobra.Command {
	var noCache bool
	cmd := &cobra.Command{
		Use:   "check <grammar>",
		Short: "run duplicate detection and well-formedness analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0], !noCache)
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the analysis cache")
	return cmd
}

func newBuildCmd() *cobra.Command {
	var outDir string
	var pkgName string
	cmd := &cobra.Command{
		Use:   "build <grammar>",
		Short: "check a grammar and lower its optional operators to Go source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args[0], outDir, pkgName)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory for generated source")
	cmd.Flags().StringVar(&pkgName, "package", "parser", "package name for generated source")
	return cmd
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <grammar>",
		Short: "re-run check whenever the grammar file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(args[0])
		},
	}
	return cmd
}

func cacheFileFor(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".oakc-cache")
}

func runCheck(path string, useCache bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	result := pipeline.Check(string(src), cacheFileFor(path), useCache)
	printDiagnostics(string(src), result.Sink)
	if result.CacheHit {
		slog.Info("analysis cache hit", "file", path)
	}
	switch result.State {
	case ast.StateValue:
		fmt.Printf("%s: well-formed\n", path)
		return nil
	case ast.StateFake:
		fmt.Printf("%s: degraded (duplicate names reported; analysis still ran)\n", path)
		return fmt.Errorf("grammar has errors")
	default:
		return fmt.Errorf("grammar is not well-formed")
	}
}

func runBuild(path, outDir, pkgName string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	result := pipeline.Check(string(src), cacheFileFor(path), true)
	printDiagnostics(string(src), result.Sink)
	if result.State == ast.StateNothing {
		return fmt.Errorf("grammar is not well-formed, refusing to generate code")
	}

	before := len(result.Sink.Diagnostics)
	code, unsupported := codegen.GenerateFile(result.Grammar, result.Sink, pkgName)
	printDiagnostics(string(src), &diag.CapturingSink{Diagnostics: result.Sink.Diagnostics[before:]})
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}
	outPath := filepath.Join(outDir, pkgName+"_parser.go")
	if err := os.WriteFile(outPath, []byte(code), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	fmt.Printf("wrote %s\n", outPath)
	if len(unsupported) > 0 {
		fmt.Printf("note: %d expression(s) used an operator this core does not compile; see diagnostics above\n", len(unsupported))
	}
	return nil
}

func runWatch(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	slog.Info("watching for changes", "file", path)
	_ = runCheck(path, true)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			slog.Info("grammar changed, re-checking", "file", path)
			_ = runCheck(path, true)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func printDiagnostics(src string, sink *diag.CapturingSink) {
	if len(sink.Diagnostics) == 0 {
		return
	}
	render := diag.NewSourceSink(src)
	for _, d := range sink.Diagnostics {
		b := render.Error(d.Kind, d.Span, d.Message)
		for _, n := range d.Notes {
			b.SpanNote(n.Span, n.Message)
		}
		b.Emit()
	}
	fmt.Fprint(os.Stderr, render.String())
}
