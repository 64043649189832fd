// Package main is a harness for exercising the syntax/eval pipeline
// end-to-end: parse a source file, evaluate it, and print its resulting
// scope and content. It is not part of the library's public interface.
//
// Usage:
//
//	marq run input.mq
//	marq run -config project.yaml
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/solheim/marq/eval"
	"github.com/solheim/marq/syntax"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run", "r":
		if err := runCompile(os.Args[2:]); err != nil {
			reportError(err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		if err := runCompile(os.Args[1:]); err != nil {
			reportError(err)
			os.Exit(1)
		}
	}
}

func printUsage() {
	fmt.Println(`marq - harness for the syntax/eval pipeline

Usage:
  marq run <input.mq>
  marq run -config <project.yaml>
  marq help

Options:
  -config   Read entry file and project root from a YAML config instead`)
}

func runCompile(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML project config")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var entry, root string
	var recursionLimit int
	if *configPath != "" {
		cfg, err := loadProjectConfig(*configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		entry = cfg.Entry
		root = cfg.Root
		recursionLimit = cfg.RecursionLimit
	} else {
		if fs.NArg() < 1 {
			return errors.New("missing input file")
		}
		entry = fs.Arg(0)
	}
	if root == "" {
		root = "."
	}

	world := eval.NewFileWorld(root, eval.NewStdScope())
	if recursionLimit > 0 {
		world.SetRecursionLimit(recursionLimit)
	}
	id, err := world.MainFileId(entry)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", entry, err)
	}

	mod, err := eval.Eval(world, eval.NewRoute(), id)
	if err != nil {
		return diagnose(world, err)
	}

	names := mod.Scope.Names()
	sort.Strings(names)
	fmt.Println("scope:")
	for _, n := range names {
		fmt.Printf("  %s\n", n)
	}
	fmt.Println("content:")
	fmt.Println(mod.Content.String())
	return nil
}

// diagnose logs a structured diagnostic for err, attaching source location
// when the error (or one it wraps) carries a span.
func diagnose(world *eval.FileWorld, err error) error {
	var se *eval.SourceError
	if errors.As(err, &se) {
		if loc, ok := locate(world, se.Span); ok {
			slog.Error("evaluation failed", "error", se.Err, "file", loc.path, "line", loc.line, "column", loc.column)
			return err
		}
	}
	slog.Error("evaluation failed", "error", err)
	return err
}

type location struct {
	path   string
	line   int
	column int
}

func locate(world *eval.FileWorld, span syntax.Span) (location, bool) {
	if span.IsDetached() {
		return location{}, false
	}
	path, ok := world.Path(span.Id())
	if !ok {
		return location{}, false
	}
	src, err := world.Source(span.Id())
	if err != nil {
		return location{}, false
	}
	start, _, ok := span.Range()
	if !ok {
		return location{path: path}, true
	}
	line, col := src.Lines().ByteToLineColumn(start)
	return location{path: path, line: line + 1, column: col + 1}, true
}

func reportError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}
