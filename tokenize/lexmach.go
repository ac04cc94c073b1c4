/*
Package tokenize adapts github.com/timtadh/lexmachine to this module's
symbol.Source/symbol.Token contracts, for grammars that want
coarser-grained tokens than the character-level terminals package
corelang is built from. A token source is pluggable: the core grammar
happens to use one-character tokens, nothing requires it.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package tokenize

import (
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/nmoraes/loomscript/symbol"
)

func tracer() tracing.Trace {
	return tracing.Select("loom.tokenize")
}

// LMAdapter compiles a lexmachine DFA once and hands out LexmachSource
// values over it for successive inputs.
type LMAdapter struct {
	lexer *lexmachine.Lexer
}

// NewLMAdapter builds an adapter: init adds any pattern matcher
// actions the caller needs beyond the fixed literal/keyword tables;
// literals are matched as their own literal text (e.g. "+", "("),
// keywords are matched case-sensitively as given. tokenType maps a
// literal or keyword's text to the symbol.Type reported for it.
func NewLMAdapter(init func(*lexmachine.Lexer), literals []string, keywords []string, tokenType map[string]symbol.Type) (*LMAdapter, error) {
	lexer := lexmachine.NewLexer()
	if init != nil {
		init(lexer)
	}
	for _, lit := range literals {
		r := "\\" + strings.Join(strings.Split(lit, ""), "\\")
		lexer.Add([]byte(r), makeAction(lit, tokenType[lit]))
	}
	for _, kw := range keywords {
		lexer.Add([]byte(kw), makeAction(kw, tokenType[kw]))
	}
	if err := lexer.Compile(); err != nil {
		tracer().Errorf("compiling DFA: %v", err)
		return nil, err
	}
	return &LMAdapter{lexer: lexer}, nil
}

// Source creates a symbol.Source scanning input.
func (a *LMAdapter) Source(input string) (*LexmachSource, error) {
	s, err := a.lexer.Scanner([]byte(input))
	if err != nil {
		return nil, err
	}
	return &LexmachSource{scanner: s}, nil
}

// LexmachSource is a symbol.Source backed by a compiled lexmachine
// scanner.
type LexmachSource struct {
	scanner *lexmachine.Scanner
}

var _ symbol.Source = (*LexmachSource)(nil)

// Next is part of symbol.Source.
func (s *LexmachSource) Next() (symbol.Token, bool) {
	tok, err, eof := s.scanner.Next()
	for err != nil {
		tracer().Errorf("scanner error: %v", err)
		if ui, is := err.(*machines.UnconsumedInput); is {
			s.scanner.TC = ui.FailTC
		}
		tok, err, eof = s.scanner.Next()
	}
	if eof {
		return nil, false
	}
	lt := tok.(*lexmachine.Token)
	return lexToken{
		typ:    lt.Type,
		lexeme: string(lt.Lexeme),
		span:   symbol.Span{uint64(lt.StartColumn), uint64(lt.EndColumn)},
	}, true
}

// lexToken adapts a *lexmachine.Token to symbol.Token.
type lexToken struct {
	typ    int
	lexeme string
	span   symbol.Span
}

var _ symbol.Token = lexToken{}

func (t lexToken) Type() symbol.Type  { return symbol.Type(t.typ) }
func (t lexToken) Lexeme() string     { return t.lexeme }
func (t lexToken) Value() interface{} { return nil }
func (t lexToken) Span() symbol.Span  { return t.span }

// Skip is a pre-built lexmachine action that discards the match
// entirely (for whitespace and comments).
func Skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeAction(text string, typ symbol.Type) lexmachine.Action {
	id := int(typ)
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, text, m), nil
	}
}
