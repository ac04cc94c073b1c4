/*
Command loom is the CLI entry point for the host language: it loads and
runs one source file, or drops into an interactive read-eval-print loop.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pterm/pterm"

	"github.com/nmoraes/loomscript/ast"
	"github.com/nmoraes/loomscript/corelang"
	"github.com/nmoraes/loomscript/earley"
	"github.com/nmoraes/loomscript/module"
	"github.com/nmoraes/loomscript/symbol"
)

// sourceExtension is the file extension a bare module path resolves to
// on disk; the CLI takes the path without it.
const sourceExtension = ".lang"

// fsSource reads a module path as <path>.lang relative to root.
type fsSource struct{ root string }

func (s fsSource) Read(path string) (string, error) {
	full := filepath.Join(s.root, path+sourceExtension)
	b, err := os.ReadFile(full)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// traceKeys are the tracing selectors every package of this module
// logs under; the -trace flag sets them all at once.
var traceKeys = []string{
	"loom.grammar", "loom.earley", "loom.ast",
	"loom.corelang", "loom.module", "loom.tokenize",
}

func main() {
	gtrace.SyntaxTracer = gologadapter.New()
	repl := flag.Bool("repl", false, "start an interactive session instead of running a file")
	root := flag.String("root", ".", "directory module paths are resolved relative to")
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	flag.Parse()
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(tracing.TraceLevelFromString(*tlevel))
	}

	if *repl {
		runRepl()
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: loom <source_file> (without extension)")
		os.Exit(1)
	}
	path := flag.Arg(0)

	loader := module.NewLoader(fsSource{root: *root}, nil)
	if _, err := loader.Load(path, builtins()); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// builtins is the CLI's variable table, seeded into every module's root
// scope. The language core has no I/O of its own; print is the one
// effectful binding the command line provides.
func builtins() map[string]interface{} {
	return map[string]interface{}{
		"print": ast.Callable(func(args []interface{}) (interface{}, error) {
			parts := make([]interface{}, len(args))
			copy(parts, args)
			fmt.Println(parts...)
			return nil, nil
		}),
	}
}

// reportError prints err to stderr, unwrapping an AmbiguousParse into
// one line per candidate derivation.
func reportError(err error) {
	var ambiguous *earley.AmbiguousParse
	if errors.As(err, &ambiguous) {
		for _, candidate := range ambiguous.Candidates {
			fmt.Fprintf(os.Stderr, "%v\n", candidate)
		}
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

// runRepl starts an interactive session. Every line the user enters is
// appended to a growing source buffer that gets re-parsed and
// re-executed from scratch on each line, with a fresh grammar and a
// fresh root scope each time. Simpler than threading a mid-parse
// grammar mutation across separate Parse calls. Because every earlier
// line runs again, their side effects repeat too: a print entered on
// one line prints again after every later line.
func runRepl() {
	pterm.Info.Println("loom interactive session — Ctrl-D to quit")

	rl, err := readline.New("loom> ")
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
	defer rl.Close()

	var source string
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		if line == "" {
			continue
		}
		source += line + "\n"

		g, err := corelang.New()
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		p := earley.NewParser(g)
		v, perr := p.Parse(symbol.NewCharSource(source))
		if perr != nil {
			reportError(perr)
			continue
		}
		program, ok := v.(*ast.Program)
		if !ok {
			pterm.Error.Println("parse did not produce a statement sequence")
			continue
		}

		ctx := ast.NewContext()
		for name, v := range builtins() {
			ctx.Declare(name)
			_ = ctx.Assign(name, v)
		}
		value, sig, err := ast.Execute(program, ctx)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if sig != ast.SignalNone {
			pterm.Warning.Printf("uncaught loop-control signal %d\n", sig)
			continue
		}
		if value != nil {
			pterm.Info.Println(fmt.Sprintf("%v", value))
		}
	}
	pterm.Info.Println("bye")
}
