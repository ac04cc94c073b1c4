package ast

import "fmt"

// Signal is the explicit, returned result of one interpreter step that
// needs to unwind more than one expression: Continue and Break unwind
// to the nearest Forever, Return unwinds to the nearest Callable
// invocation. A plain enum threaded through every Execute return, not
// a Go panic: the frames that may absorb a signal pattern-match on it.
type Signal int

const (
	SignalNone Signal = iota
	SignalContinue
	SignalBreak
	SignalReturn
)

// Callable is a host-language-visible function value: the result of
// evaluating a function literal, or a Go builtin injected by the
// caller (package module's Builtins).
type Callable func(args []interface{}) (interface{}, error)

// Attributable is implemented by values that support `.attr` reads and
// writes from host-language code.
type Attributable interface {
	GetAttr(name string) (interface{}, error)
	SetAttr(name string, value interface{}) error
}

// LoadModule resolves an Import statement at execution time: it loads
// (or finds memoized) the module at path and hands back its exported
// variables and macros. It is nil until a module loader installs it
// around an execution — this package cannot import the loader (the
// loader imports corelang, which imports this package), so the hook
// closes the loop from the other side. Executing an Import with no
// loader installed is an error.
var LoadModule func(path string) (variables map[string]interface{}, macros map[string]MacroCallable, err error)

// Execute runs node in ctx, returning the value it produced (for
// expressions; nil for statements that don't produce one), a Signal
// if node caused non-local control transfer, and an error.
func Execute(node Node, ctx *Context) (interface{}, Signal, error) {
	switch n := node.(type) {
	case *Import:
		if LoadModule == nil {
			return nil, SignalNone, fmt.Errorf("ast: no module loader installed to import %q", n.Path)
		}
		variables, macros, err := LoadModule(n.Path)
		if err != nil {
			return nil, SignalNone, err
		}
		for name, v := range variables {
			ctx.Declare(name)
			if err := ctx.Assign(name, v); err != nil {
				return nil, SignalNone, err
			}
		}
		for name, mc := range macros {
			ctx.DefineMacro(name, mc)
		}
		return nil, SignalNone, nil
	case *Program:
		tracer().Infof("loom.ast: executing program of %d statements", len(n.Statements))
		return execSequence(n.Statements, ctx)
	case *Block:
		return execSequence(n.Statements, ctx.Child())
	case *VarDecl:
		ctx.Declare(n.Name)
		if n.Init != nil {
			v, sig, err := Execute(n.Init, ctx)
			if err != nil || sig != SignalNone {
				return nil, sig, err
			}
			if err := ctx.Assign(n.Name, v); err != nil {
				return nil, SignalNone, err
			}
		}
		return nil, SignalNone, nil
	case *MacroDefinition:
		defScope := ctx
		params := n.Parameters
		body := n.Body
		mc := MacroCallable(func(useCtx *Context, nodes []Node) (interface{}, Signal, error) {
			callScope := defScope.Child()
			callScope.Declare("__usage_context__")
			_ = callScope.Assign("__usage_context__", useCtx)
			nodeIdx := 0
			for _, param := range params {
				nt, ok := param.(MacroParameterNonterminal)
				if !ok {
					continue // terminal parameters match input but carry no node
				}
				if nodeIdx >= len(nodes) {
					break
				}
				node := nodes[nodeIdx]
				nodeIdx++
				if nt.Name == "" {
					continue // matched but not bound to a name
				}
				v, sig, err := Execute(node, useCtx)
				if err != nil || sig != SignalNone {
					return nil, sig, err
				}
				callScope.Declare(nt.Name)
				_ = callScope.Assign(nt.Name, v)
			}
			return Execute(body, callScope)
		})
		ctx.DefineMacro(n.Name, mc)
		return nil, SignalNone, nil
	case *FunctionLiteral:
		defScope := ctx
		params := n.Params
		body := n.Body
		fn := Callable(func(args []interface{}) (interface{}, error) {
			if len(args) != len(params) {
				return nil, &ArityMismatchError{Want: len(params), Got: len(args)}
			}
			callScope := defScope.Child()
			for i, name := range params {
				callScope.Declare(name)
				_ = callScope.Assign(name, args[i])
			}
			v, sig, err := Execute(body, callScope)
			if err != nil {
				return nil, err
			}
			if sig == SignalReturn {
				return v, nil
			}
			return nil, nil
		})
		return fn, SignalNone, nil
	case *MacroUndefinition:
		ctx.UndefineMacro(n.Name)
		return nil, SignalNone, nil
	case *If:
		cv, sig, err := Execute(n.Cond, ctx)
		if err != nil || sig != SignalNone {
			return nil, sig, err
		}
		if truthy(cv) {
			return Execute(n.Then, ctx)
		}
		if n.Else != nil {
			return Execute(n.Else, ctx)
		}
		return nil, SignalNone, nil
	case *Forever:
		for {
			v, sig, err := Execute(n.Body, ctx.Child())
			if err != nil {
				return nil, SignalNone, err
			}
			switch sig {
			case SignalBreak:
				return nil, SignalNone, nil
			case SignalReturn:
				return v, SignalReturn, nil
			case SignalContinue, SignalNone:
				continue
			}
		}
	case *Continue:
		return nil, SignalContinue, nil
	case *Break:
		return nil, SignalBreak, nil
	case *Return:
		if n.Value == nil {
			return nil, SignalReturn, nil
		}
		v, sig, err := Execute(n.Value, ctx)
		if err != nil || sig != SignalNone {
			return nil, sig, err
		}
		return v, SignalReturn, nil
	case *Assignment:
		v, sig, err := Execute(n.Value, ctx)
		if err != nil || sig != SignalNone {
			return nil, sig, err
		}
		if err := ctx.Assign(n.Name, v); err != nil {
			return nil, SignalNone, err
		}
		return v, SignalNone, nil
	case *AttributeAssignment:
		target, sig, err := Execute(n.Target, ctx)
		if err != nil || sig != SignalNone {
			return nil, sig, err
		}
		v, sig, err := Execute(n.Value, ctx)
		if err != nil || sig != SignalNone {
			return nil, sig, err
		}
		at, ok := target.(Attributable)
		if !ok {
			return nil, SignalNone, fmt.Errorf("ast: value does not support attribute assignment")
		}
		if err := at.SetAttr(n.Attr, v); err != nil {
			return nil, SignalNone, err
		}
		return v, SignalNone, nil
	case *ExpressionStatement:
		_, sig, err := Execute(n.Expr, ctx)
		return nil, sig, err
	case *Identifier:
		v, err := ctx.Access(n.Name)
		return v, SignalNone, err
	case *Literal:
		return n.Value, SignalNone, nil
	case *MacroUse:
		mc, err := ctx.LookupMacro(n.Name)
		if err != nil {
			return nil, SignalNone, err
		}
		return mc(ctx, n.Nodes)
	case *Call:
		callee, sig, err := Execute(n.Callee, ctx)
		if err != nil || sig != SignalNone {
			return nil, sig, err
		}
		fn, ok := callee.(Callable)
		if !ok {
			return nil, SignalNone, fmt.Errorf("ast: value is not callable")
		}
		args := make([]interface{}, 0, len(n.Args))
		for _, a := range n.Args {
			v, sig, err := Execute(a, ctx)
			if err != nil || sig != SignalNone {
				return nil, sig, err
			}
			args = append(args, v)
		}
		v, err := fn(args)
		return v, SignalNone, err
	case *Postfix:
		target, sig, err := Execute(n.Target, ctx)
		if err != nil || sig != SignalNone {
			return nil, sig, err
		}
		at, ok := target.(Attributable)
		if !ok {
			return nil, SignalNone, fmt.Errorf("ast: value has no attribute %q", n.Attr)
		}
		v, err := at.GetAttr(n.Attr)
		return v, SignalNone, err
	case *BinaryOp:
		return execBinaryOp(n, ctx)
	case *UnaryOp:
		return execUnaryOp(n, ctx)
	default:
		return nil, SignalNone, fmt.Errorf("ast: Execute: unhandled node type %T", node)
	}
}

func execSequence(stmts []Node, ctx *Context) (interface{}, Signal, error) {
	var last interface{}
	for _, s := range stmts {
		v, sig, err := Execute(s, ctx)
		if err != nil || sig != SignalNone {
			return v, sig, err
		}
		last = v
	}
	return last, SignalNone, nil
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int:
		return t != 0
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
