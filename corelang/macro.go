package corelang

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/nmoraes/loomscript/ast"
	"github.com/nmoraes/loomscript/grammar"
	"github.com/nmoraes/loomscript/symbol"
)

func tracer() tracing.Trace {
	return tracing.Select("loom.corelang")
}

// ImportResolver loads the module at path and returns its parsed
// program. It is nil until package module sets it around a parse —
// corelang cannot import module directly (module imports corelang to
// build the grammar it parses with), so this package-level hook closes
// the dependency loop.
var ImportResolver func(path string) (*ast.Program, error)

// macroUseHead is the grammar symbol a macro definition named name
// installs its use-rule under.
func macroUseHead(name string) symbol.Symbol {
	return symbol.Symbol("macro_use_" + name)
}

// macroBodySymbols builds the body (and selection mask) of the grammar
// rule a macro definition named name installs: each terminal parameter
// splices its literal text in as suppressed single-character symbols
// (preceded by whitespace, like any other keyword-shaped token in this
// grammar), and every non-terminal parameter is selected regardless of
// whether it carries a /name tag — ast.Execute's MacroDefinition case
// consumes exactly one Nodes entry per non-terminal parameter in
// order, so the grammar side must select all of them to match.
func macroBodySymbols(params []ast.MacroParameter) ([]symbol.Symbol, []bool, error) {
	var body []symbol.Symbol
	var selected []bool
	for _, p := range params {
		switch t := p.(type) {
		case ast.MacroParameterTerminal:
			body = append(body, symbol.Symbol("whitespace"))
			selected = append(selected, false)
			for _, r := range t.Literal {
				body = append(body, symbol.Symbol(string(r)))
				selected = append(selected, false)
			}
		case ast.MacroParameterNonterminal:
			s, err := symbol.New(t.Symbol)
			if err != nil {
				return nil, nil, err
			}
			body = append(body, s)
			selected = append(selected, true)
		default:
			return nil, nil, fmt.Errorf("corelang: unknown macro parameter type %T", p)
		}
	}
	return body, selected, nil
}

// addMacroUseRule installs the grammar rule that recognizes a use of
// the macro named name with the given parameter shape, and a
// "statement -> macro_use_<name>" alternative so that the new syntax
// is reachable from a statement position. Every nonterminal
// parameter's matched node is threaded into the built ast.MacroUse's
// Nodes, in parameter order.
func addMacroUseRule(g *grammar.Grammar, name string, params []ast.MacroParameter) (*grammar.Grammar, error) {
	body, selected, err := macroBodySymbols(params)
	if err != nil {
		return nil, err
	}
	head := macroUseHead(name)
	rule := &grammar.Rule{
		Head:     head,
		Body:     body,
		Selected: selected,
		Build: func(values []interface{}) (interface{}, error) {
			nodes := make([]ast.Node, 0, len(values))
			for _, v := range values {
				n, ok := v.(ast.Node)
				if !ok {
					return nil, fmt.Errorf("corelang: macro %q: parameter value is not an ast.Node (%T)", name, v)
				}
				nodes = append(nodes, n)
			}
			return &ast.MacroUse{Name: name, Nodes: nodes}, nil
		},
	}
	g, err = g.Put(head, rule)
	if err != nil {
		return nil, err
	}
	tracer().Infof("loom.corelang: installed macro %q as %s", name, head)
	statementRule := &grammar.Rule{
		Head:     symbol.Symbol("statement"),
		Body:     []symbol.Symbol{head},
		Selected: []bool{true},
		Build:    passthrough,
	}
	return g.Put(symbol.Symbol("statement"), statementRule)
}

// dropMacroRule removes the grammar rules a matching addMacroUseRule
// call installed, structurally — an unmacro statement only ever
// reconstructs the parameter shape, never the *grammar.Rule pointer
// Put returned, so this goes through Grammar.DropBody rather than
// Grammar.Drop.
func dropMacroRule(g *grammar.Grammar, name string, params []ast.MacroParameter) (*grammar.Grammar, error) {
	body, _, err := macroBodySymbols(params)
	if err != nil {
		return nil, err
	}
	head := macroUseHead(name)
	g = g.DropBody(head, body)
	g = g.DropBody(symbol.Symbol("statement"), []symbol.Symbol{head})
	tracer().Infof("loom.corelang: uninstalled macro %q (%s)", name, head)
	return g, nil
}

// GrammarPatchForModule walks a module's top-level statements, installing
// the grammar rule for every exported macro definition it finds — this
// is what an import statement's mid-rule transform uses to bring an
// imported module's macros into the importing grammar. Only macro
// definitions written in the module itself are collected; macros the
// module re-exports through an `export import` are not.
//
// A macro that the defining module itself later un-defines with
// `unmacro` is, by construction, still collected here if it was
// exported: tracking that case would require an exported module to
// remember the exact parameter shape of a since-removed macro purely
// to recompute the grammar symbols needed to drop it again. (Package
// module's loader fails to load such a module in the first place: the
// exported macro's callable is gone by the time exports are
// collected.)
func GrammarPatchForModule(g *grammar.Grammar, body *ast.Program) (*grammar.Grammar, error) {
	var err error
	for _, stmt := range body.Statements {
		n, ok := stmt.(*ast.MacroDefinition)
		if !ok || !n.Exported {
			continue
		}
		g, err = addMacroUseRule(g, n.Name, n.Parameters)
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}
