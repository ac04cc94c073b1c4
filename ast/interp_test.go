package ast

import "testing"

func TestVarDeclAndAssignment(t *testing.T) {
	ctx := NewContext()
	_, _, err := Execute(&VarDecl{Name: "x", Init: &Literal{Value: 1}}, ctx)
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = Execute(&Assignment{Name: "x", Value: &Literal{Value: 2}}, ctx)
	if err != nil {
		t.Fatal(err)
	}
	v, err := ctx.Access("x")
	if err != nil {
		t.Fatal(err)
	}
	if v.(int) != 2 {
		t.Fatalf("expected 2, got %v", v)
	}
}

func TestAccessUnassignedFails(t *testing.T) {
	ctx := NewContext()
	ctx.Declare("x")
	if _, err := ctx.Access("x"); err == nil {
		t.Fatalf("expected an UnassignedVariableError")
	}
}

func TestAccessUndeclaredFails(t *testing.T) {
	ctx := NewContext()
	if _, err := ctx.Access("nope"); err == nil {
		t.Fatalf("expected an UndeclaredVariableError")
	}
}

func TestIfHasNoOwnScope(t *testing.T) {
	ctx := NewContext()
	ctx.Declare("x")
	_ = ctx.Assign("x", 1)
	stmt := &If{
		Cond: &Literal{Value: true},
		Then: &Block{Statements: []Node{&Assignment{Name: "x", Value: &Literal{Value: 2}}}},
	}
	if _, _, err := Execute(stmt, ctx); err != nil {
		t.Fatal(err)
	}
	v, err := ctx.Access("x")
	if err != nil {
		t.Fatal(err)
	}
	if v.(int) != 2 {
		t.Fatalf("If's Then branch runs in the outer scope's chain: expected the outer x to be mutated, got %v", v)
	}
}

func TestForeverBreak(t *testing.T) {
	ctx := NewContext()
	ctx.Declare("n")
	_ = ctx.Assign("n", 0)
	body := &Block{Statements: []Node{
		&Assignment{Name: "n", Value: &BinaryOp{Op: "+", Left: &Identifier{Name: "n"}, Right: &Literal{Value: 1}}},
		&If{Cond: &BinaryOp{Op: ">=", Left: &Identifier{Name: "n"}, Right: &Literal{Value: 3}}, Then: &Break{}},
	}}
	_, sig, err := Execute(&Forever{Body: body}, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sig != SignalNone {
		t.Fatalf("Break must be absorbed by Forever, got signal %v escaping", sig)
	}
	v, _ := ctx.Access("n")
	if v.(int) != 3 {
		t.Fatalf("expected n==3, got %v", v)
	}
}

func TestForeverEachIterationGetsFreshScope(t *testing.T) {
	ctx := NewContext()
	ctx.Declare("count")
	_ = ctx.Assign("count", 0)
	body := &Block{Statements: []Node{
		&VarDecl{Name: "i", Init: &Literal{Value: 1}},
		&Assignment{Name: "count", Value: &BinaryOp{Op: "+", Left: &Identifier{Name: "count"}, Right: &Identifier{Name: "i"}}},
		&If{Cond: &BinaryOp{Op: ">=", Left: &Identifier{Name: "count"}, Right: &Literal{Value: 2}}, Then: &Break{}},
	}}
	if _, _, err := Execute(&Forever{Body: body}, ctx); err != nil {
		t.Fatal(err)
	}
	v, _ := ctx.Access("count")
	if v.(int) != 2 {
		t.Fatalf("redeclaring i each iteration must not error (fresh child scope per iteration); got count=%v", v)
	}
}

func TestReturnEscapesForever(t *testing.T) {
	ctx := NewContext()
	body := &Return{Value: &Literal{Value: 42}}
	v, sig, err := Execute(&Forever{Body: body}, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sig != SignalReturn {
		t.Fatalf("Return must propagate out of Forever, got %v", sig)
	}
	if v.(int) != 42 {
		t.Fatalf("expected 42, got %v", v)
	}
}

func TestCallArityMismatchFails(t *testing.T) {
	ctx := NewContext()
	fnVal, _, err := Execute(&FunctionLiteral{Params: []string{"a", "b"}, Body: &Return{Value: &Identifier{Name: "a"}}}, ctx)
	if err != nil {
		t.Fatal(err)
	}
	ctx.Declare("f")
	_ = ctx.Assign("f", fnVal)

	call := &Call{Callee: &Identifier{Name: "f"}, Args: []Node{&Literal{Value: 1}}}
	if _, _, err := Execute(call, ctx); err == nil {
		t.Fatalf("expected an ArityMismatchError calling with too few arguments")
	} else if _, ok := err.(*ArityMismatchError); !ok {
		t.Fatalf("expected *ArityMismatchError, got %T: %v", err, err)
	}

	call = &Call{Callee: &Identifier{Name: "f"}, Args: []Node{&Literal{Value: 1}, &Literal{Value: 2}, &Literal{Value: 3}}}
	if _, _, err := Execute(call, ctx); err == nil {
		t.Fatalf("expected an ArityMismatchError calling with too many arguments")
	} else if _, ok := err.(*ArityMismatchError); !ok {
		t.Fatalf("expected *ArityMismatchError, got %T: %v", err, err)
	}

	call = &Call{Callee: &Identifier{Name: "f"}, Args: []Node{&Literal{Value: 1}, &Literal{Value: 2}}}
	v, _, err := Execute(call, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.(int) != 1 {
		t.Fatalf("expected 1, got %v", v)
	}
}

func TestImportWithoutLoaderFails(t *testing.T) {
	prev := LoadModule
	LoadModule = nil
	defer func() { LoadModule = prev }()
	if _, _, err := Execute(&Import{Path: "somewhere"}, NewContext()); err == nil {
		t.Fatalf("executing an import with no loader installed must fail")
	}
}

func TestImportCopiesExportsIntoScope(t *testing.T) {
	prev := LoadModule
	LoadModule = func(path string) (map[string]interface{}, map[string]MacroCallable, error) {
		return map[string]interface{}{"answer": 42}, nil, nil
	}
	defer func() { LoadModule = prev }()
	ctx := NewContext()
	if _, _, err := Execute(&Import{Path: "answers"}, ctx); err != nil {
		t.Fatal(err)
	}
	v, err := ctx.Access("answer")
	if err != nil {
		t.Fatal(err)
	}
	if v.(int) != 42 {
		t.Fatalf("expected 42, got %v", v)
	}
}

func TestMacroUseResolvedAtExecutionTime(t *testing.T) {
	ctx := NewContext()
	// No macro "double" defined yet: using it now must fail.
	if _, _, err := Execute(&MacroUse{Name: "double", Nodes: []Node{&Literal{Value: 3}}}, ctx); err == nil {
		t.Fatalf("expected UndefinedMacroError before the macro is defined")
	}
	ctx.DefineMacro("double", func(c *Context, nodes []Node) (interface{}, Signal, error) {
		v, sig, err := Execute(nodes[0], c)
		if err != nil || sig != SignalNone {
			return nil, sig, err
		}
		return v.(int) * 2, SignalNone, nil
	})
	v, _, err := Execute(&MacroUse{Name: "double", Nodes: []Node{&Literal{Value: 3}}}, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.(int) != 6 {
		t.Fatalf("expected 6, got %v", v)
	}
}
