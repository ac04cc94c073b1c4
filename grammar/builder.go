package grammar

import "github.com/nmoraes/loomscript/symbol"

// GrammarBuilder provides the fluent grammar-construction style used
// throughout the host grammar package (corelang): LHS picks the head,
// a chain of N (select a non-terminal body symbol) / T (select a
// terminal body symbol) / Skip (match but suppress a symbol) builds
// the body, and End installs the rule with the given value builder.
//
// The fluent LHS(...).N(...).T(...).End() shape is adapted to a
// persistent Grammar: every call that finishes a rule reassigns gb's
// underlying grammar rather than mutating a shared table in place.
type GrammarBuilder struct {
	g   *Grammar
	err error

	head       symbol.Symbol
	body       []symbol.Symbol
	selected   []bool
	transforms map[int][]Transform
}

// NewBuilder starts building on top of an existing grammar (which may
// be empty, see New).
func NewBuilder(g *Grammar) *GrammarBuilder {
	return &GrammarBuilder{g: g}
}

// Grammar returns the grammar accumulated so far, and any error raised
// by a prior call in the chain: the first error short-circuits all
// later calls, so callers check the error once at the end instead of
// after every step.
func (b *GrammarBuilder) Grammar() (*Grammar, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.g, nil
}

// LHS begins a new rule with the given head symbol.
func (b *GrammarBuilder) LHS(head string) *GrammarBuilder {
	if b.err != nil {
		return b
	}
	s, err := symbol.New(head)
	if err != nil {
		b.err = err
		return b
	}
	b.head = s
	b.body = nil
	b.selected = nil
	b.transforms = nil
	return b
}

// N appends a non-terminal to the body whose value is selected (passed
// to the rule's builder).
func (b *GrammarBuilder) N(name string) *GrammarBuilder { return b.append(name, true) }

// T appends a terminal to the body whose value is selected.
func (b *GrammarBuilder) T(name string) *GrammarBuilder { return b.append(name, true) }

// Skip appends a symbol (terminal or non-terminal) to the body that
// must match but whose value is suppressed from the builder's
// arguments — used for punctuation and keywords.
func (b *GrammarBuilder) Skip(name string) *GrammarBuilder { return b.append(name, false) }

func (b *GrammarBuilder) append(name string, selected bool) *GrammarBuilder {
	if b.err != nil {
		return b
	}
	s, err := symbol.New(name)
	if err != nil {
		b.err = err
		return b
	}
	b.body = append(b.body, s)
	b.selected = append(b.selected, selected)
	return b
}

// Transform attaches a mid-rule grammar transform to the position just
// appended (i.e. it fires once the symbol last added by N/T/Skip has
// been matched). Several Transform calls on the same position stack up
// and run in call order.
func (b *GrammarBuilder) Transform(t Transform) *GrammarBuilder {
	if b.err != nil {
		return b
	}
	if len(b.body) == 0 {
		b.err = &InvariantViolation{Reason: "Transform called before any body symbol was appended"}
		return b
	}
	if b.transforms == nil {
		b.transforms = map[int][]Transform{}
	}
	slot := len(b.body) - 1
	b.transforms[slot] = append(b.transforms[slot], t)
	return b
}

// Epsilon empties the body of the rule under construction, making it
// an empty-body (nullable) production; End still installs it.
func (b *GrammarBuilder) Epsilon() *GrammarBuilder {
	if b.err != nil {
		return b
	}
	b.body = nil
	b.selected = nil
	return b
}

// End finishes the rule under construction, installing it with build
// as its value builder, and returns b for the next LHS call.
func (b *GrammarBuilder) End(build Builder) *GrammarBuilder {
	if b.err != nil {
		return b
	}
	if b.head == "" {
		b.err = &InvariantViolation{Reason: "End called without a preceding LHS"}
		return b
	}
	rule := &Rule{
		Head:       b.head,
		Body:       append([]symbol.Symbol{}, b.body...),
		Selected:   append([]bool{}, b.selected...),
		Transforms: b.transforms,
		Build:      build,
	}
	ng, err := b.g.Put(b.head, rule)
	if err != nil {
		b.err = err
		return b
	}
	b.g = ng
	return b
}
