/*
Package loomscript is a dynamically extensible Earley parser and a
small host language built on top of it.

The parser (packages grammar, earley) differs from a textbook Earley
recognizer in one respect: the grammar is not a constant. Every item
carries its own Grammar value, and a rule may attach mid-rule
transforms that rewrite the grammar in force the instant a body
position is matched — so later positions of the same rule, and any
rule started afterwards, see the new grammar. Package structure:

■ symbol: grammar symbol identity, the scanner/parser token contract,
and the pluggable token matcher.

■ grammar: the persistent (value-semantic) Grammar and Rule types —
put/drop each return a new Grammar, leaving every grammar any item
already holds unchanged.

■ earley: the Item, Column and Parser driving the predict/scan/complete
fixed point over a token source.

■ ast: the host language's statement/expression node set and
tree-walking interpreter, including lexical scopes and macro tables.

■ corelang: the hard-coded grammar of the host language, including the
macro/unmacro statements that call back into grammar.Put/grammar.Drop
mid-parse.

■ module: the module loader — reads a source file, parses and executes
it, and exposes its exported names and macros to importers.

■ tokenize: a lexmachine-backed token source for grammars that want
coarser-grained tokens than symbol's character-level CharSource.

■ cmd/loom: the CLI entry point.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package loomscript
