package corelang

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/nmoraes/loomscript/ast"
	"github.com/nmoraes/loomscript/earley"
	"github.com/nmoraes/loomscript/grammar"
	"github.com/nmoraes/loomscript/symbol"
)

func parseProgram(t *testing.T, source string) *ast.Program {
	t.Helper()
	g, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	p := earley.NewParser(g)
	v, err := p.Parse(symbol.NewCharSource(source))
	if err != nil {
		t.Fatalf("parsing %q: %v", source, err)
	}
	program, ok := v.(*ast.Program)
	if !ok {
		t.Fatalf("parsing %q: got %T, want *ast.Program", source, v)
	}
	return program
}

func parseSymbol(t *testing.T, head string, source string) interface{} {
	t.Helper()
	b := grammar.NewBuilder(grammar.New(symbol.MustNew(head)))
	buildChars(b)
	buildIdentifier(b)
	buildNumber(b)
	buildString(b)
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("building lexical grammar: %v", err)
	}
	p := earley.NewParser(g, earley.WithStartSymbol(symbol.MustNew(head)))
	v, err := p.Parse(symbol.NewCharSource(source))
	if err != nil {
		t.Fatalf("parsing %q as %s: %v", source, head, err)
	}
	return v
}

func TestIdentifierLexical(t *testing.T) {
	got := parseSymbol(t, "identifier", "  foo_bar1")
	if got != "foo_bar1" {
		t.Fatalf("identifier: got %v, want foo_bar1", got)
	}
}

func TestNumberLexicalInteger(t *testing.T) {
	got := parseSymbol(t, "number", " 123")
	if got != 123 {
		t.Fatalf("number: got %v (%T), want int 123", got, got)
	}
}

func TestNumberLexicalFloat(t *testing.T) {
	got := parseSymbol(t, "number", " 12.5")
	if got != 12.5 {
		t.Fatalf("number: got %v (%T), want float64 12.5", got, got)
	}
}

func TestUnaryMinusNumber(t *testing.T) {
	program := parseProgram(t, "var x = -5;")
	ctx := ast.NewContext()
	if _, sig, err := ast.Execute(program, ctx); err != nil || sig != ast.SignalNone {
		t.Fatalf("executing program: sig=%v err=%v", sig, err)
	}
	v, err := ctx.Access("x")
	if err != nil {
		t.Fatalf("accessing x: %v", err)
	}
	if v != -5 {
		t.Fatalf("x = %v, want -5", v)
	}
}

func TestStringLexicalEscape(t *testing.T) {
	got := parseSymbol(t, "string", `'a\nb'`)
	if got != "a\nb" {
		t.Fatalf("string: got %q, want %q", got, "a\nb")
	}
}

func TestVarDeclArithmeticPrecedence(t *testing.T) {
	program := parseProgram(t, "var x = 2 + 3 * 4;")
	ctx := ast.NewContext()
	if _, sig, err := ast.Execute(program, ctx); err != nil || sig != ast.SignalNone {
		t.Fatalf("executing program: sig=%v err=%v", sig, err)
	}
	v, err := ctx.Access("x")
	if err != nil {
		t.Fatalf("accessing x: %v", err)
	}
	if v != 14 {
		t.Fatalf("x = %v, want 14", v)
	}
}

func TestForeverBreakCountsToThree(t *testing.T) {
	source := `
		var i = 0;
		forever {
			i = i + 1;
			if (i == 3) {
				break;
			}
		}
	`
	program := parseProgram(t, source)
	ctx := ast.NewContext()
	if _, sig, err := ast.Execute(program, ctx); err != nil || sig != ast.SignalNone {
		t.Fatalf("executing program: sig=%v err=%v", sig, err)
	}
	v, err := ctx.Access("i")
	if err != nil {
		t.Fatalf("accessing i: %v", err)
	}
	if v != 3 {
		t.Fatalf("i = %v, want 3", v)
	}
}

func TestIfElse(t *testing.T) {
	source := `
		var x = 0;
		if (false) {
			x = 1;
		} else {
			x = 2;
		}
	`
	program := parseProgram(t, source)
	ctx := ast.NewContext()
	if _, sig, err := ast.Execute(program, ctx); err != nil || sig != ast.SignalNone {
		t.Fatalf("executing program: sig=%v err=%v", sig, err)
	}
	v, err := ctx.Access("x")
	if err != nil {
		t.Fatalf("accessing x: %v", err)
	}
	if v != 2 {
		t.Fatalf("x = %v, want 2", v)
	}
}

func TestMacroDefinitionAndUse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "loom.corelang")
	defer teardown()
	source := `
		var result = 0;
		macro double -> 'double', expression/e {
			result = e * 2;
		}
		double 5
	`
	program := parseProgram(t, source)
	ctx := ast.NewContext()
	if _, sig, err := ast.Execute(program, ctx); err != nil || sig != ast.SignalNone {
		t.Fatalf("executing program: sig=%v err=%v", sig, err)
	}
	v, err := ctx.Access("result")
	if err != nil {
		t.Fatalf("accessing result: %v", err)
	}
	if v != 10 {
		t.Fatalf("result = %v, want 10", v)
	}
}

func TestMacroSyntaxIllegalBeforeDefinition(t *testing.T) {
	g, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	p := earley.NewParser(g)
	if _, err := p.Parse(symbol.NewCharSource("double 5")); err == nil {
		t.Fatalf("macro-use syntax must not parse before the macro statement defines it")
	}
}

func TestUnmacroRemovesTheSyntax(t *testing.T) {
	source := `
		macro noop -> 'noop' {
		}
		noop
		unmacro noop -> 'noop';
		noop
	`
	g, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	p := earley.NewParser(g)
	if _, err := p.Parse(symbol.NewCharSource(source)); err == nil {
		t.Fatalf("the second noop use comes after the unmacro statement and must fail to parse")
	}
}

func TestFunctionLiteralCallReturn(t *testing.T) {
	source := `
		var add = (a, b) => {
			return a + b;
		};
		var sum = add(3, 4);
	`
	program := parseProgram(t, source)
	ctx := ast.NewContext()
	if _, sig, err := ast.Execute(program, ctx); err != nil || sig != ast.SignalNone {
		t.Fatalf("executing program: sig=%v err=%v", sig, err)
	}
	v, err := ctx.Access("sum")
	if err != nil {
		t.Fatalf("accessing sum: %v", err)
	}
	if v != 7 {
		t.Fatalf("sum = %v, want 7", v)
	}
}

func TestExportedVarDeclParsesExportFlag(t *testing.T) {
	program := parseProgram(t, "export var x = 1;")
	if len(program.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(program.Statements))
	}
	decl, ok := program.Statements[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("got %T, want *ast.VarDecl", program.Statements[0])
	}
	if !decl.Exported {
		t.Fatalf("VarDecl.Exported = false, want true")
	}
}
