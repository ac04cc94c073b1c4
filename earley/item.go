/*
Package earley implements the dynamically extensible Earley parser
driver: items, columns, the predict/scan/complete fixed point, and the
public Parser API.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package earley

import (
	"fmt"
	"reflect"

	"github.com/cnf/structhash"

	"github.com/nmoraes/loomscript/grammar"
	"github.com/nmoraes/loomscript/symbol"
)

// ParentSet is the set of items in some earlier column that are
// waiting on one particular symbol to complete. Items that predict the
// same symbol in the same column are registered into the very same
// ParentSet (by pointer), which is how a completion in a later column
// knows which waiting items to advance — and why item equality
// deliberately ignores this field: two items are the same item
// regardless of which ParentSet value they happen to carry, because
// predicting the same symbol at the same column always hands out the
// same ParentSet to begin with.
type ParentSet struct {
	waiting []*Item
}

func (p *ParentSet) add(item *Item) {
	p.waiting = append(p.waiting, item)
}

// Item is a dotted rule in progress: a Rule, a Start column, a
// Progress (how many body symbols have been matched), the values
// matched at selected positions so far, the ParentSet it was
// registered under when predicted, and the Grammar it is currently
// carrying — which may differ from a sibling item's Grammar if a
// mid-rule Transform has already fired on this item's path: each item
// owns its grammar, and grammar mutation is local to the derivation
// that caused it until a completion threads it onward.
type Item struct {
	Grammar  *grammar.Grammar
	Rule     *grammar.Rule
	Start    int
	Progress int
	Parents  *ParentSet
	Values   []interface{}

	// Value and valueComputed memoize the result of Rule.Build for a
	// completed item: completeItem only needs to build it once even if
	// several waiting items are advanced from it.
	Value         interface{}
	valueComputed bool
}

// Next returns the symbol expected at the dot, and whether the item
// has one at all (a complete item has none).
func (it *Item) Next() (symbol.Symbol, bool) {
	if it.Progress >= len(it.Rule.Body) {
		return "", false
	}
	return it.Rule.Body[it.Progress], true
}

// Complete reports whether the dot has reached the end of the body.
func (it *Item) Complete() bool {
	return it.Progress >= len(it.Rule.Body)
}

func (it *Item) String() string {
	return fmt.Sprintf("[%s -> %v @%d, start=%d]", it.Rule.Head, it.Rule.Body, it.Progress, it.Start)
}

// ruleStillPresent reports whether rule (by identity, not shape) is
// still one of g's rules for its own head — what item construction
// must check right after a mid-rule transform fires.
func ruleStillPresent(g *grammar.Grammar, rule *grammar.Rule) bool {
	for _, r := range g.RulesFor(rule.Head) {
		if r == rule {
			return true
		}
	}
	return false
}

// advance produces the item that results from matching one more body
// symbol, threading matchedValue into Values when selected is true,
// and applying the rule's Transform for the position just crossed (if
// any) on top of base. This is shared by both scan (symbol matched
// against an input token, base is its own current grammar) and
// complete (symbol matched by a fully-derived nonterminal, base is
// that nonterminal's own — possibly already transformed — grammar):
// completions carry the new grammar forward to the items waiting on
// them, predictions never do.
func advance(it *Item, base *grammar.Grammar, matchedValue interface{}, selected bool) (*Item, error) {
	values := it.Values
	if selected {
		values = append(append([]interface{}{}, it.Values...), matchedValue)
	}
	g := base
	for _, t := range it.Rule.Transforms[it.Progress] {
		var err error
		g, err = t(g, values)
		if err != nil {
			return nil, fmt.Errorf("earley: transform at %s position %d: %w", it.Rule.Head, it.Progress, err)
		}
		// A transform must never remove the rule it is attached to:
		// the item being advanced has to still be able to find itself
		// in the grammar the transform just handed back, or later
		// positions of this same rule would be matching against a
		// grammar that no longer has it.
		if !ruleStillPresent(g, it.Rule) {
			return nil, &grammar.InvariantViolation{Reason: fmt.Sprintf(
				"mid-rule transform at %s position %d removed the rule currently being matched",
				it.Rule.Head, it.Progress)}
		}
	}
	return &Item{
		Grammar:  g,
		Rule:     it.Rule,
		Start:    it.Start,
		Progress: it.Progress + 1,
		Parents:  it.Parents,
		Values:   values,
	}, nil
}

// key is the dedup identity of an item for Column membership: rule
// identity (not rule shape — two distinct *Rule values never collide,
// even with identical head/body), the grammar the item carries, its
// start column, its progress, and which derivation chain it carries.
// ParentSet is excluded on purpose (see ParentSet's doc comment).
//
// Two distinct derivations of the same (rule, grammar, start,
// progress) are deliberately kept as distinct items rather than
// packed into one, so that an ambiguous parse surfaces as several
// accepted items at the end rather than silently collapsing to
// whichever derivation was built first — this module favors
// enumerating every derivation's value over the classic
// shared-packed-forest space saving: AmbiguousParse carries every
// candidate value, not just one.
func key(it *Item) string {
	type k struct {
		Rule     string
		Grammar  string
		Start    int
		Progress int
	}
	h, err := structhash.Hash(k{
		Rule:     fmt.Sprintf("%p", it.Rule),
		Grammar:  it.Grammar.Key(),
		Start:    it.Start,
		Progress: it.Progress,
	}, 1)
	if err != nil {
		h = fmt.Sprintf("%p/%s/%d/%d", it.Rule, it.Grammar.Key(), it.Start, it.Progress)
	}
	return fmt.Sprintf("%s/%d", h, valuesIdentity(it.Values))
}

// valuesIdentity distinguishes derivation chains cheaply: advance
// builds Values by copying into a brand-new backing array whenever it
// appends a selected value, and the array's address is the
// discriminator — no need to hash the values themselves, which may
// hold arbitrary, not-reliably hashable AST nodes. Advancing past a
// suppressed position keeps the same array, so derivations that differ
// only in suppressed children (and items with no values yet) share an
// identity and are merged into one item.
func valuesIdentity(values []interface{}) uintptr {
	if len(values) == 0 {
		return 0
	}
	return reflect.ValueOf(values).Pointer()
}
