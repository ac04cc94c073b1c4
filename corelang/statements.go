package corelang

import (
	"github.com/nmoraes/loomscript/ast"
	"github.com/nmoraes/loomscript/grammar"
)

// keyword splices word in as a sequence of suppressed single-character
// terminals, preceded by a suppressed whitespace — the same shape
// every other reserved word in this grammar uses (see buildExpr's
// true/false/nil literals).
func keyword(b *grammar.GrammarBuilder, word string) *grammar.GrammarBuilder {
	b = b.Skip("whitespace")
	for _, r := range word {
		b = b.Skip(string(r))
	}
	return b
}

func buildExportFlag(b *grammar.GrammarBuilder) {
	b.LHS("export_flag").Epsilon().End(func(v []interface{}) (interface{}, error) { return false, nil })
	keyword(b.LHS("export_flag"), "export").End(func(v []interface{}) (interface{}, error) { return true, nil })
}

func buildStatementSequence(b *grammar.GrammarBuilder) {
	// Trailing whitespace after the last statement belongs to the start
	// rule, not to statement_sequence: the sequence is also nested
	// inside block/function/macro bodies, where the closing brace's own
	// leading-whitespace skip already covers it — a second nullable
	// whitespace there would make every blank-padded block ambiguous.
	b.LHS("__start__").N("statement_sequence").Skip("whitespace").End(passthrough)

	b.LHS("statement_sequence").N("statements").End(func(v []interface{}) (interface{}, error) {
		return &ast.Program{Statements: v[0].([]ast.Node)}, nil
	})

	b.LHS("statements").Epsilon().End(func(v []interface{}) (interface{}, error) { return []ast.Node{}, nil })
	b.LHS("statements").N("statement").N("statements").End(func(v []interface{}) (interface{}, error) {
		return append([]ast.Node{v[0].(ast.Node)}, v[1].([]ast.Node)...), nil
	})
}

func buildStatement(b *grammar.GrammarBuilder) {
	b.LHS("statement").N("expression_statement").End(passthrough)
	b.LHS("expression_statement").N("expression").Skip("whitespace").Skip(";").
		End(func(v []interface{}) (interface{}, error) {
			return &ast.ExpressionStatement{Expr: v[0].(ast.Node)}, nil
		})

	b.LHS("statement").N("var_decl").End(passthrough)
	b.LHS("var_decl").N("export_flag").Skip("whitespace").Skip("v").Skip("a").Skip("r").
		N("identifier").Skip("whitespace").Skip(";").
		End(func(v []interface{}) (interface{}, error) {
			return &ast.VarDecl{Name: v[1].(string), Exported: v[0].(bool)}, nil
		})
	b.LHS("var_decl").N("export_flag").Skip("whitespace").Skip("v").Skip("a").Skip("r").
		N("identifier").Skip("whitespace").Skip("=").N("expression").Skip("whitespace").Skip(";").
		End(func(v []interface{}) (interface{}, error) {
			return &ast.VarDecl{Name: v[1].(string), Init: v[2].(ast.Node), Exported: v[0].(bool)}, nil
		})

	b.LHS("statement").N("import_stmt").End(passthrough)
	keyword(b.LHS("import_stmt").N("export_flag"), "import").N("string").Skip("whitespace").
		Transform(func(g *grammar.Grammar, values []interface{}) (*grammar.Grammar, error) {
			path := values[1].(string)
			if ImportResolver == nil {
				return g, nil
			}
			imported, err := ImportResolver(path)
			if err != nil {
				return nil, err
			}
			return GrammarPatchForModule(g, imported)
		}).
		Skip(";").
		End(func(v []interface{}) (interface{}, error) {
			return &ast.Import{Path: v[1].(string), Exported: v[0].(bool)}, nil
		})

	b.LHS("statement").N("macro_def").End(passthrough)
	keyword(b.LHS("macro_def").N("export_flag"), "macro").N("identifier").
		Skip("whitespace").Skip("-").Skip(">").
		N("macro_parameters").
		Skip("whitespace").Skip("{").N("statement_sequence").Skip("whitespace").Skip("}").
		Transform(func(g *grammar.Grammar, values []interface{}) (*grammar.Grammar, error) {
			name := values[1].(string)
			params := values[2].([]ast.MacroParameter)
			return addMacroUseRule(g, name, params)
		}).
		End(func(v []interface{}) (interface{}, error) {
			return &ast.MacroDefinition{
				Name:       v[1].(string),
				Parameters: v[2].([]ast.MacroParameter),
				Body:       v[3].(ast.Node),
				Exported:   v[0].(bool),
			}, nil
		})

	b.LHS("statement").N("macro_undef").End(passthrough)
	keyword(b.LHS("macro_undef").N("export_flag"), "unmacro").N("identifier").
		Skip("whitespace").Skip("-").Skip(">").
		N("unmacro_parameters").Skip("whitespace").
		Transform(func(g *grammar.Grammar, values []interface{}) (*grammar.Grammar, error) {
			name := values[1].(string)
			params := values[2].([]ast.MacroParameter)
			return dropMacroRule(g, name, params)
		}).
		Skip(";").
		End(func(v []interface{}) (interface{}, error) {
			return &ast.MacroUndefinition{Name: v[1].(string), Exported: v[0].(bool)}, nil
		})

	b.LHS("statement").N("block").End(passthrough)
	b.LHS("block").Skip("whitespace").Skip("{").N("statement_sequence").Skip("whitespace").Skip("}").
		End(func(v []interface{}) (interface{}, error) {
			return &ast.Block{Statements: v[0].(*ast.Program).Statements}, nil
		})

	b.LHS("statement").N("if_stmt").End(passthrough)
	keyword(b.LHS("if_stmt"), "if").Skip("whitespace").Skip("(").N("expression").Skip("whitespace").Skip(")").N("block").
		End(func(v []interface{}) (interface{}, error) {
			return &ast.If{Cond: v[0].(ast.Node), Then: v[1].(ast.Node)}, nil
		})

	b.LHS("statement").N("forever_stmt").End(passthrough)
	keyword(b.LHS("forever_stmt"), "forever").N("block").
		End(func(v []interface{}) (interface{}, error) { return &ast.Forever{Body: v[0].(ast.Node)}, nil })

	b.LHS("statement").N("continue_stmt").End(passthrough)
	keyword(b.LHS("continue_stmt"), "continue").Skip("whitespace").Skip(";").
		End(func(v []interface{}) (interface{}, error) { return &ast.Continue{}, nil })

	b.LHS("statement").N("break_stmt").End(passthrough)
	keyword(b.LHS("break_stmt"), "break").Skip("whitespace").Skip(";").
		End(func(v []interface{}) (interface{}, error) { return &ast.Break{}, nil })

	b.LHS("statement").N("return_stmt").End(passthrough)
	keyword(b.LHS("return_stmt"), "return").Skip("whitespace").Skip(";").
		End(func(v []interface{}) (interface{}, error) { return &ast.Return{}, nil })
	keyword(b.LHS("return_stmt"), "return").N("expression").Skip("whitespace").Skip(";").
		End(func(v []interface{}) (interface{}, error) { return &ast.Return{Value: v[0].(ast.Node)}, nil })

	b.LHS("statement").N("assignment").End(passthrough)
	b.LHS("assignment").N("identifier").Skip("whitespace").Skip("=").N("expression").Skip("whitespace").Skip(";").
		End(func(v []interface{}) (interface{}, error) {
			return &ast.Assignment{Name: v[0].(string), Value: v[1].(ast.Node)}, nil
		})

	b.LHS("statement").N("attribute_assignment").End(passthrough)
	b.LHS("attribute_assignment").N("postfix_expression").Skip("whitespace").Skip(".").N("identifier").
		Skip("whitespace").Skip("=").N("expression").Skip("whitespace").Skip(";").
		End(func(v []interface{}) (interface{}, error) {
			return &ast.AttributeAssignment{Target: v[0].(ast.Node), Attr: v[1].(string), Value: v[2].(ast.Node)}, nil
		})
}

// buildIfElse installs the if/else alternative separately from
// buildStatement's bare if, since it needs its own Skip chain for the
// `else` keyword before a second block.
func buildIfElse(b *grammar.GrammarBuilder) {
	keyword(b.LHS("if_else_stmt"), "if").Skip("whitespace").Skip("(").N("expression").Skip("whitespace").Skip(")").N("block")
	b = keyword(b, "else")
	b.N("block").End(func(v []interface{}) (interface{}, error) {
		return &ast.If{Cond: v[0].(ast.Node), Then: v[1].(ast.Node), Else: v[2].(ast.Node)}, nil
	})
	b.LHS("statement").N("if_else_stmt").End(passthrough)
}

func buildMacroParameters(b *grammar.GrammarBuilder) {
	b.LHS("macro_parameters").Epsilon().End(func(v []interface{}) (interface{}, error) { return []ast.MacroParameter{}, nil })
	b.LHS("macro_parameters").N("macro_parameter").End(func(v []interface{}) (interface{}, error) {
		return []ast.MacroParameter{v[0].(ast.MacroParameter)}, nil
	})
	b.LHS("macro_parameters").N("macro_parameter").Skip("whitespace").Skip(",").N("macro_parameters").
		End(func(v []interface{}) (interface{}, error) {
			return append([]ast.MacroParameter{v[0].(ast.MacroParameter)}, v[1].([]ast.MacroParameter)...), nil
		})

	b.LHS("macro_parameter").N("string").End(func(v []interface{}) (interface{}, error) {
		return ast.MacroParameterTerminal{Literal: v[0].(string)}, nil
	})
	b.LHS("macro_parameter").N("identifier").End(func(v []interface{}) (interface{}, error) {
		return ast.MacroParameterNonterminal{Symbol: v[0].(string)}, nil
	})
	b.LHS("macro_parameter").N("identifier").Skip("whitespace").Skip("/").N("identifier").
		End(func(v []interface{}) (interface{}, error) {
			return ast.MacroParameterNonterminal{Symbol: v[0].(string), Name: v[1].(string)}, nil
		})

	b.LHS("unmacro_parameters").Epsilon().End(func(v []interface{}) (interface{}, error) { return []ast.MacroParameter{}, nil })
	b.LHS("unmacro_parameters").N("unmacro_parameter").End(func(v []interface{}) (interface{}, error) {
		return []ast.MacroParameter{v[0].(ast.MacroParameter)}, nil
	})
	b.LHS("unmacro_parameters").N("unmacro_parameter").Skip("whitespace").Skip(",").N("unmacro_parameters").
		End(func(v []interface{}) (interface{}, error) {
			return append([]ast.MacroParameter{v[0].(ast.MacroParameter)}, v[1].([]ast.MacroParameter)...), nil
		})

	b.LHS("unmacro_parameter").N("string").End(func(v []interface{}) (interface{}, error) {
		return ast.MacroParameterTerminal{Literal: v[0].(string)}, nil
	})
	b.LHS("unmacro_parameter").N("identifier").End(func(v []interface{}) (interface{}, error) {
		return ast.MacroParameterNonterminal{Symbol: v[0].(string)}, nil
	})
}
