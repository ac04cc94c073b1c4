package corelang

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/nmoraes/loomscript/grammar"
)

func buildIdentifier(b *grammar.GrammarBuilder) {
	b.LHS("identifier_head").T("_").End(passthrough)
	b.LHS("identifier_head").N("letter").End(passthrough)

	b.LHS("identifier_tail").Epsilon().End(func(v []interface{}) (interface{}, error) { return "", nil })
	b.LHS("identifier_tail").T("_").N("identifier_tail").End(concatRuneAndString)
	b.LHS("identifier_tail").N("letter").N("identifier_tail").End(concatRuneAndString)
	b.LHS("identifier_tail").N("digit").N("identifier_tail").End(concatRuneAndString)

	b.LHS("identifier_without_whitespace").N("identifier_head").N("identifier_tail").End(concatRuneAndString)

	b.LHS("identifier").Skip("whitespace").N("identifier_without_whitespace").End(passthrough)
}

func concatRuneAndString(v []interface{}) (interface{}, error) {
	return string(v[0].(rune)) + v[1].(string), nil
}

func buildNumber(b *grammar.GrammarBuilder) {
	// number_sign_opt appears only inside exponents. A leading sign on
	// the literal itself would collide with the unary minus operator:
	// "-5" must have exactly one derivation, the operator one.
	b.LHS("number_sign_opt").Epsilon().End(func(v []interface{}) (interface{}, error) { return "", nil })
	b.LHS("number_sign_opt").T("+").End(func(v []interface{}) (interface{}, error) { return "+", nil })
	b.LHS("number_sign_opt").T("-").End(func(v []interface{}) (interface{}, error) { return "-", nil })

	b.LHS("number_integer").N("digit").End(func(v []interface{}) (interface{}, error) { return string(v[0].(rune)), nil })
	b.LHS("number_integer").N("digit").N("number_integer").End(concatRuneAndString)

	b.LHS("number_fraction_opt").Epsilon().End(func(v []interface{}) (interface{}, error) { return "", nil })
	b.LHS("number_fraction_opt").Skip(".").N("number_integer").
		End(func(v []interface{}) (interface{}, error) { return "." + v[0].(string), nil })

	b.LHS("number_exponent_opt").Epsilon().End(func(v []interface{}) (interface{}, error) { return "", nil })
	b.LHS("number_exponent_opt").T("e").N("number_sign_opt").N("number_integer").End(concatExponent)
	b.LHS("number_exponent_opt").T("E").N("number_sign_opt").N("number_integer").End(concatExponent)

	b.LHS("number_without_whitespace").N("number_integer").N("number_fraction_opt").N("number_exponent_opt").
		End(func(v []interface{}) (interface{}, error) {
			text := v[0].(string) + v[1].(string) + v[2].(string)
			if strings.ContainsAny(text, ".eE") {
				f, err := strconv.ParseFloat(text, 64)
				return f, err
			}
			n, err := strconv.Atoi(text)
			return n, err
		})

	b.LHS("number").Skip("whitespace").N("number_without_whitespace").End(passthrough)
}

func concatExponent(v []interface{}) (interface{}, error) {
	marker := string(v[0].(rune))
	return marker + v[1].(string) + v[2].(string), nil
}

// stringEscapes is the fixed escape table for string literals:
// backslash followed by one of these characters substitutes to the
// given rune, and a backslash followed by any other character does not
// parse. Outside escapes, letters, digits, punctuation other than
// backslash and quote, and raw whitespace stand for themselves.
var stringEscapes = map[rune]rune{
	'\\': '\\',
	'\'': '\'',
	't':  '\t',
	'v':  '\v',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
}

func buildString(b *grammar.GrammarBuilder) {
	b.LHS("string_item").N("letter").End(passthrough)
	b.LHS("string_item").N("digit").End(passthrough)
	b.LHS("string_item").N("punctuation_without_backslash_and_quote").End(passthrough)
	b.LHS("string_item").N("whitespace_char").End(passthrough)
	// Installed in sorted order: rule insertion order is part of the
	// grammar's identity, and map iteration would vary it across runs.
	escaped := make([]rune, 0, len(stringEscapes))
	for e := range stringEscapes {
		escaped = append(escaped, e)
	}
	slices.Sort(escaped)
	for _, e := range escaped {
		r := stringEscapes[e]
		b.LHS("string_item").Skip(`\`).T(string(e)).
			End(func(v []interface{}) (interface{}, error) { return r, nil })
	}

	b.LHS("string_items").Epsilon().End(func(v []interface{}) (interface{}, error) { return "", nil })
	b.LHS("string_items").N("string_item").N("string_items").End(concatRuneAndString)

	b.LHS("string_without_whitespace").Skip("'").N("string_items").Skip("'").End(passthrough)
	b.LHS("string").Skip("whitespace").N("string_without_whitespace").End(passthrough)
}
