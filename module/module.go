/*
Package module loads host-language source files, parses them with the
corelang grammar, executes them, and collects their exported variables
and macros — the unit a program's `import` statement pulls in.

Modules are memoized by path: a path is parsed and executed at most
once per Loader, and every importer of the same path sees the same
*Module. Persisted (cross-process) caching of parsed programs is an
optional seam, the ModuleCache interface; the loader is complete and
deterministic without one.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package module

import (
	"fmt"
	"sync"

	"github.com/npillmayer/schuko/tracing"

	"github.com/nmoraes/loomscript/ast"
	"github.com/nmoraes/loomscript/corelang"
	"github.com/nmoraes/loomscript/earley"
	"github.com/nmoraes/loomscript/symbol"
)

func tracer() tracing.Trace {
	return tracing.Select("loom.module")
}

// Source resolves a module path (as written in an `import` statement)
// to its source text. Callers supply one appropriate to their
// environment — a filesystem rooted at a library directory, an
// embedded archive, a network fetch — module.Load has no built-in
// notion of where a path lives.
type Source interface {
	Read(path string) (string, error)
}

// ModuleCache optionally persists a module's parsed Program across
// process runs, keyed however the implementation likes (a content hash
// of the source plus its transitive imports' content hashes is the
// natural scheme, but nothing here requires it). Load consults it
// before parsing and writes through it after a successful parse; a nil
// ModuleCache simply disables this, which is the default.
type ModuleCache interface {
	Get(path string) (*ast.Program, bool)
	Put(path string, program *ast.Program)
}

// UncaughtLoopControl reports that a module's top level statements
// produced a Continue, Break, or Return signal with nothing to catch
// it — those signals only make sense inside a Forever body or a
// Callable invocation.
type UncaughtLoopControl struct {
	Path   string
	Signal ast.Signal
}

func (e *UncaughtLoopControl) Error() string {
	return fmt.Sprintf("module: %s: uncaught loop-control signal %d escaped the top level", e.Path, e.Signal)
}

// Module is one loaded, executed host-language source file.
type Module struct {
	Path     string
	Program  *ast.Program
	Context  *ast.Context
	Exported map[string]interface{} // exported variables and re-exported builtins
	Macros   map[string]ast.MacroCallable
}

// Loader loads and memoizes modules by path. The zero value is usable;
// NewLoader lets a caller supply a Source and/or ModuleCache.
type Loader struct {
	source Source
	cache  ModuleCache

	mu      sync.Mutex
	loaded  map[string]*Module
	loading map[string]bool
}

// defaultLoader backs the package-level Load convenience function; a
// caller that wants its own Source/ModuleCache should build a Loader
// directly instead.
var defaultLoader = NewLoader(nil, nil)

// NewLoader creates a Loader. Either argument may be nil: a nil Source
// makes Load always fail to read a path it does not already have
// memoized; a nil ModuleCache disables persisted caching.
func NewLoader(source Source, cache ModuleCache) *Loader {
	return &Loader{
		source:  source,
		cache:   cache,
		loaded:  map[string]*Module{},
		loading: map[string]bool{},
	}
}

// Load loads the module at path, memoized: a second Load of the same
// path returns the same *Module without re-parsing or re-executing.
// builtins seeds the module's root ast.Context before execution —
// the standard variable table (print and friends) is the caller's to
// supply, not this package's.
func (l *Loader) Load(path string, builtins map[string]interface{}) (*Module, error) {
	l.mu.Lock()
	if l.loaded == nil {
		l.loaded = map[string]*Module{}
	}
	if l.loading == nil {
		l.loading = map[string]bool{}
	}
	if m, ok := l.loaded[path]; ok {
		l.mu.Unlock()
		return m, nil
	}
	if l.loading[path] {
		l.mu.Unlock()
		return nil, fmt.Errorf("module: %s: import cycle detected", path)
	}
	l.loading[path] = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		delete(l.loading, path)
		l.mu.Unlock()
	}()

	m, err := l.load(path, builtins)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.loaded[path] = m
	l.mu.Unlock()
	return m, nil
}

func (l *Loader) load(path string, builtins map[string]interface{}) (*Module, error) {
	program, err := l.parse(path, builtins)
	if err != nil {
		return nil, err
	}

	ctx := ast.NewContext()
	for name, v := range builtins {
		ctx.Declare(name)
		if err := ctx.Assign(name, v); err != nil {
			return nil, err
		}
	}

	// Import statements resolve through this same Loader at execution
	// time, so memoization and cycle detection apply to them too. The
	// hook is saved and restored the same way parse handles
	// corelang.ImportResolver: recursive executions reached through an
	// import reassign it to an equivalent closure and put the outer one
	// back on return.
	prevLoad := ast.LoadModule
	ast.LoadModule = func(importPath string) (map[string]interface{}, map[string]ast.MacroCallable, error) {
		m, err := l.Load(importPath, builtins)
		if err != nil {
			return nil, nil, err
		}
		return m.Exported, m.Macros, nil
	}
	_, sig, err := ast.Execute(program, ctx)
	ast.LoadModule = prevLoad
	if err != nil {
		return nil, fmt.Errorf("module: %s: %w", path, err)
	}
	if sig != ast.SignalNone {
		return nil, &UncaughtLoopControl{Path: path, Signal: sig}
	}

	m := &Module{
		Path:     path,
		Program:  program,
		Context:  ctx,
		Exported: map[string]interface{}{},
		Macros:   map[string]ast.MacroCallable{},
	}
	for name, v := range builtins {
		m.Exported[name] = v
	}
	if err := l.collectExports(m, program, ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// collectExports walks program's top-level statements, pulling every
// exported VarDecl's current value and every exported MacroDefinition's
// installed callable out of ctx — both executed directly in ctx (the
// module's own root scope, never a child of it), so ctx.Access and
// ctx's own macro table are all collectExports needs (no separate
// bookkeeping of "what got declared" is required) — plus every
// re-exported name/macro of an exported Import statement, loaded
// through the same Loader so a shared cache/memoization applies
// transitively.
func (l *Loader) collectExports(m *Module, program *ast.Program, ctx *ast.Context) error {
	for _, stmt := range program.Statements {
		switch n := stmt.(type) {
		case *ast.VarDecl:
			if !n.Exported {
				continue
			}
			v, err := ctx.Access(n.Name)
			if err != nil {
				return fmt.Errorf("module: %s: exported variable %q: %w", m.Path, n.Name, err)
			}
			m.Exported[n.Name] = v
		case *ast.MacroDefinition:
			if !n.Exported {
				continue
			}
			mc, err := ctx.LookupMacro(n.Name)
			if err != nil {
				return fmt.Errorf("module: %s: exported macro %q: %w", m.Path, n.Name, err)
			}
			m.Macros[n.Name] = mc
		case *ast.Import:
			if !n.Exported {
				continue
			}
			imported, err := l.Load(n.Path, nil)
			if err != nil {
				return err
			}
			for name, v := range imported.Exported {
				m.Exported[name] = v
			}
			for name, mc := range imported.Macros {
				m.Macros[name] = mc
			}
		}
	}
	return nil
}

// parse reads path through l.source and parses it with the corelang
// grammar. An ambiguous parse of a module is rejected outright: a
// source file must mean exactly one program.
func (l *Loader) parse(path string, builtins map[string]interface{}) (*ast.Program, error) {
	if l.cache != nil {
		if p, ok := l.cache.Get(path); ok {
			return p, nil
		}
	}
	if l.source == nil {
		return nil, fmt.Errorf("module: %s: no Source configured to read this path", path)
	}
	text, err := l.source.Read(path)
	if err != nil {
		return nil, fmt.Errorf("module: %s: %w", path, err)
	}

	g, err := corelang.New()
	if err != nil {
		return nil, err
	}

	// corelang.ImportResolver is a single package-level hook (corelang
	// cannot import module, see the comment on ImportResolver), so it
	// has to be pointed at *this* Loader for the duration of this
	// parse: otherwise a custom Loader's import statements would
	// silently resolve through whichever Loader last set the hook
	// (or none at all) instead of this one's own Source. Recursive
	// parse calls reached through an import statement's mid-rule
	// Transform (still this same goroutine, still this same Loader)
	// just reassign it to an equivalent closure and restore the outer
	// one on return, so nesting is safe without a lock.
	// builtins are threaded through so that an import resolved here, at
	// parse time, executes the imported module with the same variable
	// table the importer got — the memoized *Module this builds is the
	// one every later Load of the same path returns.
	prevResolver := corelang.ImportResolver
	corelang.ImportResolver = func(importPath string) (*ast.Program, error) {
		m, err := l.Load(importPath, builtins)
		if err != nil {
			return nil, err
		}
		return m.Program, nil
	}
	defer func() { corelang.ImportResolver = prevResolver }()

	p := earley.NewParser(g)
	v, err := p.Parse(symbol.NewCharSource(text))
	if err != nil {
		return nil, fmt.Errorf("module: %s: parse error: %w", path, err)
	}
	program, ok := v.(*ast.Program)
	if !ok {
		return nil, fmt.Errorf("module: %s: parse did not produce a Program (got %T)", path, v)
	}
	tracer().Debugf("module %s: parsed %d top-level statements", path, len(program.Statements))
	if l.cache != nil {
		l.cache.Put(path, program)
	}
	return program, nil
}

// Load loads path through the package's default loader, which has no
// Source configured — callers that need to actually read files should
// build their own Loader with NewLoader and a Source implementation.
func Load(path string, builtins map[string]interface{}) (*Module, error) {
	return defaultLoader.Load(path, builtins)
}
