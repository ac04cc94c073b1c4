/*
Package corelang is the hard-coded grammar of the host language:
statement sequences, imports, declarations, macro/unmacro (each wired
to grammar.Grammar.Put/Drop through a mid-rule Transform), control
flow, assignment, postfix expressions, literals, and the
character-level lexical layer (identifiers, numbers, strings,
whitespace/comments) they are built from.

Every terminal is a single character; identifiers and numbers are
non-terminals that concatenate matched characters in their builders.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package corelang

import (
	"github.com/nmoraes/loomscript/grammar"
)

const punctuationWithoutBackslashAndQuote = `!"#$%&()*+,-./:;<=>?@[]^_` + "`" + `{|}~`

// passthrough builds a rule's result as the value of its sole selected
// body position, unchanged — used throughout for alias/alternative
// productions that exist only to group several rules under one name.
func passthrough(v []interface{}) (interface{}, error) { return v[0], nil }

// charAlternatives installs one alternative per rune of chars under
// head, each selecting the matched rune itself — the character classes
// identifiers, numbers and strings are concatenated from.
func charAlternatives(b *grammar.GrammarBuilder, head string, chars string) {
	for _, c := range chars {
		b.LHS(head).T(string(c)).End(passthrough)
	}
}

func buildChars(b *grammar.GrammarBuilder) {
	charAlternatives(b, "letter", "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	charAlternatives(b, "digit", "0123456789")
	charAlternatives(b, "punctuation_without_backslash_and_quote", punctuationWithoutBackslashAndQuote)
	b.LHS("punctuation").N("punctuation_without_backslash_and_quote").End(passthrough)
	b.LHS("punctuation").T(`\`).End(passthrough)
	b.LHS("punctuation").T("'").End(passthrough)

	charAlternatives(b, "whitespace_char_without_newline", " \t\v\f\r")
	b.LHS("whitespace_char").N("whitespace_char_without_newline").End(passthrough)
	b.LHS("whitespace_char").T("\n").End(passthrough)

	b.LHS("whitespace_without_newline").Epsilon().End(func(v []interface{}) (interface{}, error) { return "", nil })
	b.LHS("whitespace_without_newline").N("whitespace_char_without_newline").N("whitespace_without_newline").
		End(func(v []interface{}) (interface{}, error) { return "", nil })

	// whitespace is the nullable non-terminal that may appear between any
	// two lexical tokens; it also swallows line comments.
	b.LHS("whitespace").Epsilon().End(func(v []interface{}) (interface{}, error) { return "", nil })
	b.LHS("whitespace").N("whitespace_char").N("whitespace").
		End(func(v []interface{}) (interface{}, error) { return "", nil })
	b.LHS("whitespace").Skip("#").N("comment_chars").Skip("\n").N("whitespace").
		End(func(v []interface{}) (interface{}, error) { return "", nil })

	b.LHS("comment_chars").Epsilon().End(func(v []interface{}) (interface{}, error) { return "", nil })
	b.LHS("comment_chars").N("comment_char").N("comment_chars").
		End(func(v []interface{}) (interface{}, error) { return "", nil })
	b.LHS("comment_char").N("letter").End(passthrough)
	b.LHS("comment_char").N("digit").End(passthrough)
	b.LHS("comment_char").N("punctuation").End(passthrough)
	b.LHS("comment_char").N("whitespace_char_without_newline").End(passthrough)
}
