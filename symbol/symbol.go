/*
Package symbol defines grammar symbol identity, the token contract the
Earley driver pulls its input from, and the pluggable token-matching
contract that ties the two together: a symbol's terminal-ness is
relative to a grammar, never to the symbol alone (see package grammar),
so what this package owns is identity, token shape, and matching — not
terminal/non-terminal classification.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package symbol

import "fmt"

// Symbol is the identity of a grammar symbol: a non-empty string.
// Whether a given Symbol is a terminal or a non-terminal of a grammar
// depends entirely on that grammar (see package grammar); Symbol
// itself carries no such classification.
type Symbol string

// New validates and returns a Symbol. The empty string is not a
// symbol; a grammar rule containing one is rejected outright as an
// invariant violation.
func New(name string) (Symbol, error) {
	if name == "" {
		return "", fmt.Errorf("symbol: a symbol must not be the empty string")
	}
	return Symbol(name), nil
}

// MustNew is New, panicking on error. Intended for grammar-construction
// code building literal symbol tables, where an empty symbol is a
// programmer mistake caught immediately.
func MustNew(name string) Symbol {
	s, err := New(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Type categorizes a Token (e.g. "number", "identifier", a lexmachine
// DFA rule id). No constants are defined here; a scanner/grammar pair
// picks its own numbering — callers of package tokenize's lexmachine
// adapter pass their own text-to-Type mapping.
type Type int

// Span is the half-open run of input positions [From, To) a Token
// covers. CharToken — the terminal unit the host grammar is built
// from — carries one directly rather than recomputing it on every
// Span() call, since a character token's span is fixed the instant
// it's minted.
type Span [2]uint64

// From returns the start of the span.
func (s Span) From() uint64 { return s[0] }

// To returns the position just behind the end of the span.
func (s Span) To() uint64 { return s[1] }

// Len returns the length of the span.
func (s Span) Len() uint64 { return s[1] - s[0] }

// IsNull reports whether the span is the zero span.
func (s Span) IsNull() bool { return s == Span{} }

// Extend grows s so that it also covers other.
func (s Span) Extend(other Span) Span {
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}

// Token is one unit of input the Earley driver's scan step matches
// against a terminal symbol: a category (Type), the text it appeared
// as (Lexeme), a converted value to feed a matching rule if one
// applies (Value), and the input positions it covers (Span).
type Token interface {
	Type() Type
	Lexeme() string
	Value() interface{}
	Span() Span
}

// Retriever looks up a token by its input position — exposed by a
// parser that keeps every token it has seen, so that a caller can
// recover the original lexeme/value of a terminal after the fact.
type Retriever func(pos uint64) Token

// Matcher decides whether a token matches a terminal symbol, and if so,
// which value should be fed into the rule being matched. Returning
// ok=false means "no match"; this is not an error — the scanner simply
// drops the candidate item.
type Matcher func(tok Token, sym Symbol) (value interface{}, ok bool)

// DefaultMatcher matches when the token's lexeme equals the symbol's
// text, and feeds the token's value (or its lexeme, if the token
// carries no separate value) into the rule.
func DefaultMatcher(tok Token, sym Symbol) (interface{}, bool) {
	if tok.Lexeme() != string(sym) {
		return nil, false
	}
	if v := tok.Value(); v != nil {
		return v, true
	}
	return tok.Lexeme(), true
}

// Source is a finite, forward-only token stream. Next returns ok=false
// once the stream is exhausted; it must not be called again afterwards.
type Source interface {
	Next() (tok Token, ok bool)
}

// CharToken is a single-character token, the terminal unit the host
// grammar (package corelang) is built from: every terminal there is a
// single character. Its Span is carried directly (computed once at
// construction, by CharSource.Next) rather than derived from a bare
// position field on every call.
type CharToken struct {
	Ch     rune
	AtSpan Span
}

var _ Token = CharToken{}

// Type always reports 0; character tokens are matched by lexeme, not
// by a category, so no distinct types are needed.
func (c CharToken) Type() Type { return 0 }

// Lexeme returns the single character as a string.
func (c CharToken) Lexeme() string { return string(c.Ch) }

// Value returns the character as a rune.
func (c CharToken) Value() interface{} { return c.Ch }

// Span returns the one-character span this token covers.
func (c CharToken) Span() Span { return c.AtSpan }

// CharSource turns a string into a Source of CharTokens, one rune at a
// time. Multi-byte runes each count as a single input position; this
// matches the host grammar's character-level terminals.
type CharSource struct {
	runes []rune
	pos   int
}

var _ Source = (*CharSource)(nil)

// NewCharSource creates a Source over text.
func NewCharSource(text string) *CharSource {
	return &CharSource{runes: []rune(text)}
}

// Next is part of the Source interface.
func (s *CharSource) Next() (Token, bool) {
	if s.pos >= len(s.runes) {
		return nil, false
	}
	pos := uint64(s.pos)
	t := CharToken{Ch: s.runes[s.pos], AtSpan: Span{pos, pos + 1}}
	s.pos++
	return t, true
}
