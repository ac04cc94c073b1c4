package corelang

import (
	"github.com/nmoraes/loomscript/ast"
	"github.com/nmoraes/loomscript/grammar"
)

// binaryOp builds *ast.BinaryOp{Op: op, Left: v[0], Right: v[1]} — used
// for every left-associative binary-operator level of the expression
// precedence chain ("expr + mul | mul, mul * atom | atom"), generalized
// to the host language's full operator set since ast/ops.go already
// evaluates all of them.
func binaryOp(op string) grammar.Builder {
	return func(v []interface{}) (interface{}, error) {
		return &ast.BinaryOp{Op: op, Left: v[0].(ast.Node), Right: v[1].(ast.Node)}, nil
	}
}

func unaryOp(op string) grammar.Builder {
	return func(v []interface{}) (interface{}, error) {
		return &ast.UnaryOp{Op: op, Operand: v[0].(ast.Node)}, nil
	}
}

func buildExpr(b *grammar.GrammarBuilder) {
	b.LHS("expression").N("logical_or").End(passthrough)

	b.LHS("logical_or").N("logical_or").Skip("whitespace").Skip("|").Skip("|").N("logical_and").End(binaryOp("||"))
	b.LHS("logical_or").N("logical_and").End(passthrough)

	b.LHS("logical_and").N("logical_and").Skip("whitespace").Skip("&").Skip("&").N("equality").End(binaryOp("&&"))
	b.LHS("logical_and").N("equality").End(passthrough)

	b.LHS("equality").N("equality").Skip("whitespace").Skip("=").Skip("=").N("comparison").End(binaryOp("=="))
	b.LHS("equality").N("equality").Skip("whitespace").Skip("!").Skip("=").N("comparison").End(binaryOp("!="))
	b.LHS("equality").N("comparison").End(passthrough)

	b.LHS("comparison").N("comparison").Skip("whitespace").Skip("<").Skip("=").N("additive").End(binaryOp("<="))
	b.LHS("comparison").N("comparison").Skip("whitespace").Skip(">").Skip("=").N("additive").End(binaryOp(">="))
	b.LHS("comparison").N("comparison").Skip("whitespace").Skip("<").N("additive").End(binaryOp("<"))
	b.LHS("comparison").N("comparison").Skip("whitespace").Skip(">").N("additive").End(binaryOp(">"))
	b.LHS("comparison").N("additive").End(passthrough)

	b.LHS("additive").N("additive").Skip("whitespace").Skip("+").N("multiplicative").End(binaryOp("+"))
	b.LHS("additive").N("additive").Skip("whitespace").Skip("-").N("multiplicative").End(binaryOp("-"))
	b.LHS("additive").N("multiplicative").End(passthrough)

	b.LHS("multiplicative").N("multiplicative").Skip("whitespace").Skip("*").N("unary").End(binaryOp("*"))
	b.LHS("multiplicative").N("multiplicative").Skip("whitespace").Skip("/").N("unary").End(binaryOp("/"))
	b.LHS("multiplicative").N("unary").End(passthrough)

	b.LHS("unary").Skip("whitespace").Skip("-").N("unary").End(unaryOp("-"))
	b.LHS("unary").Skip("whitespace").Skip("!").N("unary").End(unaryOp("!"))
	b.LHS("unary").N("postfix_expression").End(passthrough)

	b.LHS("postfix_expression").N("postfix_expression").Skip("whitespace").Skip(".").N("identifier").
		End(func(v []interface{}) (interface{}, error) {
			return &ast.Postfix{Target: v[0].(ast.Node), Attr: v[1].(string)}, nil
		})
	b.LHS("postfix_expression").N("postfix_expression").Skip("whitespace").Skip("(").N("call_arguments").Skip("whitespace").Skip(")").
		End(func(v []interface{}) (interface{}, error) {
			return &ast.Call{Callee: v[0].(ast.Node), Args: v[1].([]ast.Node)}, nil
		})
	b.LHS("postfix_expression").N("primary_expression").End(passthrough)

	b.LHS("call_arguments").Epsilon().End(func(v []interface{}) (interface{}, error) { return []ast.Node{}, nil })
	b.LHS("call_arguments").N("expression").End(func(v []interface{}) (interface{}, error) {
		return []ast.Node{v[0].(ast.Node)}, nil
	})
	b.LHS("call_arguments").N("expression").Skip("whitespace").Skip(",").N("call_arguments").
		End(func(v []interface{}) (interface{}, error) {
			return append([]ast.Node{v[0].(ast.Node)}, v[1].([]ast.Node)...), nil
		})

	b.LHS("primary_expression").N("variable_access").End(passthrough)
	b.LHS("variable_access").N("identifier").End(func(v []interface{}) (interface{}, error) {
		return &ast.Identifier{Name: v[0].(string)}, nil
	})

	b.LHS("primary_expression").N("number_literal").End(passthrough)
	b.LHS("number_literal").N("number").End(func(v []interface{}) (interface{}, error) {
		return &ast.Literal{Value: v[0]}, nil
	})

	b.LHS("primary_expression").N("string_literal").End(passthrough)
	b.LHS("string_literal").N("string").End(func(v []interface{}) (interface{}, error) {
		return &ast.Literal{Value: v[0].(string)}, nil
	})

	b.LHS("primary_expression").Skip("whitespace").Skip("t").Skip("r").Skip("u").Skip("e").
		End(func(v []interface{}) (interface{}, error) { return &ast.Literal{Value: true}, nil })
	b.LHS("primary_expression").Skip("whitespace").Skip("f").Skip("a").Skip("l").Skip("s").Skip("e").
		End(func(v []interface{}) (interface{}, error) { return &ast.Literal{Value: false}, nil })
	b.LHS("primary_expression").Skip("whitespace").Skip("n").Skip("i").Skip("l").
		End(func(v []interface{}) (interface{}, error) { return &ast.Literal{Value: nil}, nil })

	b.LHS("primary_expression").N("function_literal").End(passthrough)
	b.LHS("function_literal").Skip("whitespace").Skip("(").N("function_literal_parameters").Skip("whitespace").Skip(")").
		Skip("whitespace").Skip("=").Skip(">").Skip("whitespace").Skip("{").N("statement_sequence").Skip("whitespace").Skip("}").
		End(func(v []interface{}) (interface{}, error) {
			return &ast.FunctionLiteral{Params: v[0].([]string), Body: v[1].(ast.Node)}, nil
		})

	b.LHS("function_literal_parameters").Epsilon().End(func(v []interface{}) (interface{}, error) { return []string{}, nil })
	b.LHS("function_literal_parameters").N("identifier").End(func(v []interface{}) (interface{}, error) {
		return []string{v[0].(string)}, nil
	})
	b.LHS("function_literal_parameters").N("identifier").Skip("whitespace").Skip(",").N("function_literal_parameters").
		End(func(v []interface{}) (interface{}, error) {
			return append([]string{v[0].(string)}, v[1].([]string)...), nil
		})

	b.LHS("primary_expression").N("parenthesized_expression").End(passthrough)
	b.LHS("parenthesized_expression").Skip("whitespace").Skip("(").N("expression").Skip("whitespace").Skip(")").End(passthrough)
}
