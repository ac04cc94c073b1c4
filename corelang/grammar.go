package corelang

import (
	"github.com/nmoraes/loomscript/grammar"
	"github.com/nmoraes/loomscript/symbol"
)

// New assembles the full host grammar: the character-level lexical
// layer, the expression precedence chain, and the statement grammar
// (including the macro/unmacro/import rules that mutate the grammar
// they are themselves parsed by). A module's whole source text parses
// as "__start__" (a statement sequence plus any trailing whitespace),
// building an *ast.Program.
func New() (*grammar.Grammar, error) {
	b := grammar.NewBuilder(grammar.New(symbol.MustNew("__start__")))

	buildChars(b)
	buildIdentifier(b)
	buildNumber(b)
	buildString(b)

	buildExpr(b)

	buildExportFlag(b)
	buildStatementSequence(b)
	buildStatement(b)
	buildIfElse(b)
	buildMacroParameters(b)

	return b.Grammar()
}
