package ast

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("loom.ast")
}

// unassigned is the sentinel value stored for a declared-but-not-yet-
// assigned variable; reading it is an error, distinct from reading an
// undeclared name.
var unassigned = &struct{ name string }{"unassigned"}

// MacroCallable is what a macro's Body evaluates to: the callable
// invoked (context, nodes...) every time a MacroUse built from it
// executes.
type MacroCallable func(ctx *Context, nodes []Node) (interface{}, Signal, error)

// Context is one lexical scope: a flat variable table and a macro
// table, chained to a parent scope. Declare is idempotent; Assign
// walks outward to the nearest scope that already declared the name;
// Access walks outward to the nearest scope that has assigned it.
type Context struct {
	parent    *Context
	variables map[string]interface{}
	macros    map[string]MacroCallable
}

// NewContext creates a root context with no parent.
func NewContext() *Context {
	return &Context{variables: map[string]interface{}{}, macros: map[string]MacroCallable{}}
}

// Child creates a new scope nested under ctx.
func (ctx *Context) Child() *Context {
	return &Context{parent: ctx, variables: map[string]interface{}{}, macros: map[string]MacroCallable{}}
}

// Declare introduces name into ctx's own scope, unassigned, unless it
// is already declared there — re-declaring an existing name is a
// no-op, not an error.
func (ctx *Context) Declare(name string) {
	if _, ok := ctx.variables[name]; !ok {
		ctx.variables[name] = unassigned
	}
}

// Assign walks outward from ctx to the nearest scope that declared
// name and sets its value there. It returns an error if no enclosing
// scope ever declared name.
func (ctx *Context) Assign(name string, value interface{}) error {
	for c := ctx; c != nil; c = c.parent {
		if _, ok := c.variables[name]; ok {
			c.variables[name] = value
			tracer().Debugf("loom.ast: %s = %v", name, value)
			return nil
		}
	}
	return &UndeclaredVariableError{Name: name}
}

// Access walks outward from ctx to the nearest scope that has
// assigned name, returning its value. It returns an error if name was
// never declared, or was declared but never assigned in any
// enclosing scope.
func (ctx *Context) Access(name string) (interface{}, error) {
	declared := false
	for c := ctx; c != nil; c = c.parent {
		if v, ok := c.variables[name]; ok {
			if v != unassigned {
				return v, nil
			}
			declared = true
		}
	}
	if declared {
		return nil, &UnassignedVariableError{Name: name}
	}
	return nil, &UndeclaredVariableError{Name: name}
}

// DefineMacro installs callable under name in ctx's own scope.
func (ctx *Context) DefineMacro(name string, callable MacroCallable) {
	ctx.macros[name] = callable
	tracer().Infof("loom.ast: macro %q defined", name)
}

// UndefineMacro removes name from ctx's own scope's macro table, if
// present there.
func (ctx *Context) UndefineMacro(name string) {
	delete(ctx.macros, name)
	tracer().Infof("loom.ast: macro %q undefined", name)
}

// LookupMacro walks outward from ctx for a macro named name.
func (ctx *Context) LookupMacro(name string) (MacroCallable, error) {
	for c := ctx; c != nil; c = c.parent {
		if m, ok := c.macros[name]; ok {
			return m, nil
		}
	}
	return nil, &UndefinedMacroError{Name: name}
}

// UndeclaredVariableError reports an assign/access of a name no
// enclosing scope ever declared.
type UndeclaredVariableError struct{ Name string }

func (e *UndeclaredVariableError) Error() string {
	return fmt.Sprintf("ast: %q was never declared in this scope or any enclosing one", e.Name)
}

// UnassignedVariableError reports an access of a name that is declared
// but has not yet been assigned a value in any enclosing scope.
type UnassignedVariableError struct{ Name string }

func (e *UnassignedVariableError) Error() string {
	return fmt.Sprintf("ast: %q is declared but has no value yet", e.Name)
}

// UndefinedMacroError reports a MacroUse whose name has no installed
// definition reachable from the executing scope.
type UndefinedMacroError struct{ Name string }

func (e *UndefinedMacroError) Error() string {
	return fmt.Sprintf("ast: no macro named %q is defined here", e.Name)
}

// ArityMismatchError reports a call whose argument count does not
// match the callee's declared parameter count.
type ArityMismatchError struct {
	Want int
	Got  int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("ast: function expects %d argument(s), got %d", e.Want, e.Got)
}
