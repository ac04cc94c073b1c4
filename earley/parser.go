package earley

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/nmoraes/loomscript/grammar"
	"github.com/nmoraes/loomscript/symbol"
)

func tracer() tracing.Trace {
	return tracing.Select("loom.earley")
}

// Option configures a Parser at construction time.
type Option func(*Parser)

// AllowPartial lets the parser emit every top-level completion
// observed at a column boundary (a prefix parse) instead of failing
// with a ParseError when the token source stalls mid-derivation.
func AllowPartial(allow bool) Option {
	return func(p *Parser) { p.allowPartial = allow }
}

// AllowAmbiguous lets Parse return the first of several completing
// derivations instead of an AmbiguousParse error.
func AllowAmbiguous(allow bool) Option {
	return func(p *Parser) { p.allowAmbiguous = allow }
}

// WithStartSymbol overrides the grammar's own start symbol for this
// parser.
func WithStartSymbol(sym symbol.Symbol) Option {
	return func(p *Parser) { p.start = sym }
}

// WithMatcher overrides symbol.DefaultMatcher.
func WithMatcher(m symbol.Matcher) Option {
	return func(p *Parser) { p.matcher = m }
}

// Parser drives the predict/scan/complete fixed point over a token
// Source, dynamically re-reading each item's own Grammar as it goes —
// the same Parser and the same initial grammar can still derive
// different column-closures if a Transform rewrote the grammar for
// part of the column's items.
type Parser struct {
	grammar        *grammar.Grammar
	start          symbol.Symbol
	matcher        symbol.Matcher
	allowPartial   bool
	allowAmbiguous bool

	// tokens holds every token pulled from the source during the most
	// recent ParseAll run, indexed by input position; see TokenRetriever.
	tokens []symbol.Token
}

// NewParser returns a Parser seeded with g, whose start symbol
// defaults to g.Start().
func NewParser(g *grammar.Grammar, opts ...Option) *Parser {
	p := &Parser{grammar: g, start: g.Start(), matcher: symbol.DefaultMatcher}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse runs the Earley recognizer/builder over src, returning one
// value: the single accepted derivation of the start symbol (the first
// of several, under AllowAmbiguous), or — under AllowPartial — the
// longest prefix derivation that completed before the input stalled.
func (p *Parser) Parse(src symbol.Source) (interface{}, error) {
	results, err := p.ParseAll(src)
	if err != nil {
		return nil, err
	}
	if p.allowPartial {
		return results[len(results)-1], nil
	}
	return results[0], nil
}

// ParseAll runs the Earley recognizer/builder over src, returning the
// values of every accepted derivation of the start symbol in order of
// discovery. By default that is every derivation spanning the whole
// input; under AllowPartial it is every top-level completion observed
// at any column boundary, as the driver reached it. An empty result is
// never returned: zero completions is a *ParseError, and more than one
// whole-input completion without AllowAmbiguous is an *AmbiguousParse.
func (p *Parser) ParseAll(src symbol.Source) ([]interface{}, error) {
	p.tokens = nil
	col0 := NewColumn(0)
	columns := []*Column{col0}
	p.predictSymbol(col0, p.grammar, p.start)
	if err := p.closeColumn(columns, col0); err != nil {
		return nil, err
	}
	var streamed []interface{}
	if p.allowPartial {
		streamed = append(streamed, p.topLevelValues(col0)...)
	}
	pos := 0
	for {
		tok, ok := src.Next()
		if !ok {
			break
		}
		p.tokens = append(p.tokens, tok)
		next := NewColumn(pos + 1)
		if err := p.scan(columns[pos], next, tok); err != nil {
			return nil, err
		}
		if next.Len() == 0 {
			if p.allowPartial {
				tracer().Infof("loom.earley: stalled at %d, returning partial results", pos)
				break
			}
			return nil, p.stalledError(columns[pos])
		}
		columns = append(columns, next)
		pos++
		if err := p.closeColumn(columns, next); err != nil {
			return nil, err
		}
		if p.allowPartial {
			streamed = append(streamed, p.topLevelValues(next)...)
		}
	}
	last := columns[len(columns)-1]
	final := p.topLevelValues(last)
	if len(final) > 1 && !p.allowAmbiguous {
		return nil, &AmbiguousParse{Candidates: final}
	}
	if p.allowPartial {
		if len(streamed) == 0 {
			return nil, p.stalledError(last)
		}
		return streamed, nil
	}
	if len(final) == 0 {
		return nil, p.stalledError(last)
	}
	return final, nil
}

// TokenRetriever hands out the tokens of the most recent Parse/ParseAll
// run by input position — the token scanned between columns pos and
// pos+1, or nil for a position the parse never reached. Callers use it
// to recover the original lexeme of a terminal after the fact, e.g.
// for error reporting.
func (p *Parser) TokenRetriever() symbol.Retriever {
	return func(pos uint64) symbol.Token {
		if pos >= uint64(len(p.tokens)) {
			return nil
		}
		return p.tokens[pos]
	}
}

// topLevelValues collects, in insertion order, the built value of every
// complete whole-prefix derivation of the start symbol in col.
func (p *Parser) topLevelValues(col *Column) []interface{} {
	var values []interface{}
	for _, item := range col.items {
		if item.Complete() && item.Start == 0 && item.Rule.Head == p.start {
			values = append(values, item.Value)
		}
	}
	return values
}

// predictSymbol adds, to col, one item per rule of sym in g — the
// prediction step. It is safe (if wasteful) to call repeatedly for the
// same (col, g, sym): Column.Add silently drops items already present.
func (p *Parser) predictSymbol(col *Column, g *grammar.Grammar, sym symbol.Symbol) {
	for _, rule := range g.RulesFor(sym) {
		item := &Item{
			Grammar:  g,
			Rule:     rule,
			Start:    col.Pos,
			Progress: 0,
			Parents:  col.ParentSetFor(sym),
		}
		if col.Add(item) {
			tracer().Debugf("loom.earley: predict %s at %d", item, col.Pos)
		}
	}
}

// closeColumn runs predict and complete to a fixed point: every item
// added during the loop is itself visited later in the same loop,
// since the loop bound re-reads col.Len() each iteration.
func (p *Parser) closeColumn(columns []*Column, col *Column) error {
	for i := 0; i < col.Len(); i++ {
		item := col.items[i]
		sym, ok := item.Next()
		if !ok {
			if err := p.completeItem(columns, col, item); err != nil {
				return err
			}
			continue
		}
		if item.Grammar.HasSymbol(sym) {
			p.predictSymbol(col, item.Grammar, sym)
			col.ParentSetFor(sym).add(item)
			for _, done := range col.nullableCompletionsFor(sym) {
				selected := item.Rule.Selected[item.Progress]
				next, err := advance(item, done.Grammar, done.Value, selected)
				if err != nil {
					return err
				}
				col.Add(next)
			}
		}
	}
	return nil
}

// completeItem builds the value item contributes (once), then
// advances every item in item.Start's column that was waiting on
// item.Rule.Head, inserting the results into col.
func (p *Parser) completeItem(columns []*Column, col *Column, item *Item) error {
	if !item.valueComputed {
		v, err := item.Rule.Finish(item.Values)
		if err != nil {
			return fmt.Errorf("earley: building %s: %w", item.Rule.Head, err)
		}
		item.Value = v
		item.valueComputed = true
		tracer().Debugf("loom.earley: complete %s -> %v", item, v)
	}
	if item.Start == col.Pos {
		col.recordNullableCompletion(item.Rule.Head, item)
	}
	startCol := columns[item.Start]
	ps := startCol.parentSets[item.Rule.Head]
	if ps == nil {
		return nil
	}
	for _, waiting := range ps.waiting {
		selected := waiting.Rule.Selected[waiting.Progress]
		next, err := advance(waiting, item.Grammar, item.Value, selected)
		if err != nil {
			return err
		}
		col.Add(next)
	}
	return nil
}

// scan advances every item in col expecting a terminal symbol that tok
// matches, inserting the results into next. An InvariantViolation out
// of a mid-rule transform is a programmer error in the grammar and is
// returned to the caller rather than swallowed; a plain matcher
// rejection is not an error at all, just a dropped candidate item.
func (p *Parser) scan(col *Column, next *Column, tok symbol.Token) error {
	for _, item := range col.items {
		sym, ok := item.Next()
		if !ok || item.Grammar.HasSymbol(sym) {
			continue
		}
		value, matched := p.matcher(tok, sym)
		if !matched {
			continue
		}
		selected := item.Rule.Selected[item.Progress]
		nxt, err := advance(item, item.Grammar, value, selected)
		if err != nil {
			var violation *grammar.InvariantViolation
			if errors.As(err, &violation) {
				return err
			}
			tracer().Errorf("loom.earley: scan transform error: %v", err)
			continue
		}
		next.Add(nxt)
	}
	return nil
}

func (p *Parser) stalledError(col *Column) *ParseError {
	expected := map[string]struct{}{}
	for _, item := range col.items {
		sym, ok := item.Next()
		if !ok || item.Grammar.HasSymbol(sym) {
			continue
		}
		expected[string(sym)] = struct{}{}
	}
	return newParseError(col.Pos, expected)
}
