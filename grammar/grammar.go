/*
Package grammar implements a value-semantic (persistent) grammar:
put and drop each return a new Grammar, leaving every previously
observed Grammar value valid and unchanged. This is what lets an
Earley item carry "its" grammar by value — two items in the same
column can carry grammars that differ by a handful of rules without
either one mutating the other (components B and C of the system).

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package grammar

import (
	"fmt"
	"hash/fnv"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/exp/slices"

	"github.com/nmoraes/loomscript/symbol"
)

func tracer() tracing.Trace {
	return tracing.Select("loom.grammar")
}

// Builder turns the values selected out of a completed rule's body
// into the value the rule as a whole contributes to its parent.
type Builder func(values []interface{}) (interface{}, error)

// Transform rewrites the grammar mid-parse. It is attached to a
// specific position in a rule's body and runs the instant an item's
// dot advances past that position, receiving the grammar the
// completing item was carrying and the values selected so far. The
// grammar it returns replaces the one the completing item carries
// forward — and, because Earley completion threads an item's grammar
// into every parent it unblocks, that replacement grammar is what the
// rest of the column (and every later column) sees: completions, not
// predictions, carry the new grammar forward.
type Transform func(g *Grammar, valuesSoFar []interface{}) (*Grammar, error)

// Rule is one production: Head -> Body, with a selection mask marking
// which body positions contribute a value to Builder (the rest are
// matched but suppressed, e.g. punctuation), and an ordered list of
// Transforms per position, run in registration order the instant that
// position is matched.
type Rule struct {
	Head       symbol.Symbol
	Body       []symbol.Symbol
	Selected   []bool
	Transforms map[int][]Transform
	Build      Builder
}

// IsEpsilon reports whether this rule's body is empty.
func (r *Rule) IsEpsilon() bool { return len(r.Body) == 0 }

// Arity returns the number of selected (value-contributing) body
// positions — the length of the slice Build is ultimately called with.
func (r *Rule) Arity() int {
	n := 0
	for _, s := range r.Selected {
		if s {
			n++
		}
	}
	return n
}

// Finish produces the value a completed rule contributes to its
// parent: Build applied to the selected values, in body order — or,
// when no builder is set, the selected values themselves as a tuple.
func (r *Rule) Finish(values []interface{}) (interface{}, error) {
	if r.Build == nil {
		out := make([]interface{}, len(values))
		copy(out, values)
		return out, nil
	}
	return r.Build(values)
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s -> %v", r.Head, r.Body)
}

// key returns a stable identity string for r, used as a dedup key
// component by package earley. Two distinct *Rule values are always
// distinct keys, even if their Head/Body happen to coincide: rules
// installed by separate macro expansions must not be confused with
// each other even when they look alike. Rule identity, not rule
// shape, disambiguates items.
func (r *Rule) key() string {
	return fmt.Sprintf("%p", r)
}

const numBuckets = 32

type entry struct {
	sym   symbol.Symbol
	rules []*Rule
	next  *entry
}

func bucketOf(sym symbol.Symbol) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sym))
	return int(h.Sum32() % numBuckets)
}

// Grammar is an immutable collection of rules indexed by head symbol,
// plus a lazily-recomputed nullable-set cache. The zero value is not
// usable; use New.
type Grammar struct {
	buckets       [numBuckets]*entry
	start         symbol.Symbol
	nullable      map[symbol.Symbol]bool
	nullableDirty bool
	cachedKey     string
	keyCached     bool
}

// New returns an empty grammar whose start symbol is start. The start
// symbol need not have any rules yet — Put can add them later, each
// call returning the grammar to use from that point on.
func New(start symbol.Symbol) *Grammar {
	return &Grammar{start: start, nullableDirty: true}
}

// Start returns the grammar's start symbol.
func (g *Grammar) Start() symbol.Symbol { return g.start }

// Put returns a new Grammar with rule added to sym's rule set. g is
// left unmodified; every bucket other than sym's is shared by pointer
// with g, so Put is O(chain length of one bucket), not O(grammar size).
func (g *Grammar) Put(sym symbol.Symbol, rule *Rule) (*Grammar, error) {
	if sym == "" {
		return nil, &InvariantViolation{Reason: "cannot put a rule under the empty symbol"}
	}
	for _, bodySym := range rule.Body {
		if bodySym == "" {
			return nil, &InvariantViolation{Reason: "rule body contains an empty symbol"}
		}
	}
	if len(rule.Selected) != len(rule.Body) {
		return nil, &InvariantViolation{Reason: "selection mask length must equal body length"}
	}
	ng := g.shallowCopy()
	idx := bucketOf(sym)
	ng.buckets[idx] = consRule(g.buckets[idx], sym, rule)
	ng.nullableDirty = true
	tracer().Debugf("loom.grammar: put %s", rule)
	return ng, nil
}

// Drop returns a new Grammar with rule removed from sym's rule set. It
// is a no-op (returns an equal-shaped Grammar) if the rule was never
// present; Drop compares by rule identity (the same *Rule pointer
// passed to Put), not by rule shape.
func (g *Grammar) Drop(sym symbol.Symbol, rule *Rule) *Grammar {
	ng := g.shallowCopy()
	idx := bucketOf(sym)
	ng.buckets[idx] = removeRule(g.buckets[idx], sym, rule)
	ng.nullableDirty = true
	tracer().Debugf("loom.grammar: drop %s", rule)
	return ng
}

// DropHead returns a new Grammar with every rule under sym removed —
// the body-less form of drop. Afterwards sym has no rules and is
// therefore a terminal of the new grammar. A no-op if sym never had
// any.
func (g *Grammar) DropHead(sym symbol.Symbol) *Grammar {
	ng := g.shallowCopy()
	idx := bucketOf(sym)
	ng.buckets[idx] = removeEntry(g.buckets[idx], sym)
	ng.nullableDirty = true
	tracer().Debugf("loom.grammar: drop all rules of %s", sym)
	return ng
}

func (g *Grammar) shallowCopy() *Grammar {
	ng := &Grammar{start: g.start}
	ng.buckets = g.buckets
	return ng
}

func consRule(head *entry, sym symbol.Symbol, rule *Rule) *entry {
	// Rebuild the prefix up to (and including) sym's entry; everything
	// after it is shared unchanged with the old chain.
	var found bool
	var rebuilt []*entry
	for e := head; e != nil; e = e.next {
		if e.sym == sym {
			found = true
			break
		}
		rebuilt = append(rebuilt, e)
	}
	var newRules []*Rule
	var tail *entry
	if found {
		e := head
		for e.sym != sym {
			e = e.next
		}
		// A rule with this exact (head, body) already installed is
		// replaced, not appended alongside: leaving the old *Rule in
		// place would give the grammar two distinct rule identities
		// for what should parse as one production (earley items key on
		// *Rule pointer identity, so a stale duplicate would
		// predict/scan as a second, spurious derivation).
		filtered := make([]*Rule, 0, len(e.rules)+1)
		for _, existing := range e.rules {
			if !sameBody(existing.Body, rule.Body) {
				filtered = append(filtered, existing)
			}
		}
		newRules = append(filtered, rule)
		tail = e.next
	} else {
		newRules = []*Rule{rule}
		tail = head
	}
	result := &entry{sym: sym, rules: newRules, next: tail}
	for i := len(rebuilt) - 1; i >= 0; i-- {
		result = &entry{sym: rebuilt[i].sym, rules: rebuilt[i].rules, next: result}
	}
	return result
}

// removeEntry unlinks sym's whole entry from the chain, sharing the
// untouched suffix with the old chain like consRule/removeRule do.
func removeEntry(head *entry, sym symbol.Symbol) *entry {
	var rebuilt []*entry
	e := head
	for e != nil && e.sym != sym {
		rebuilt = append(rebuilt, e)
		e = e.next
	}
	if e == nil {
		return head
	}
	result := e.next
	for i := len(rebuilt) - 1; i >= 0; i-- {
		result = &entry{sym: rebuilt[i].sym, rules: rebuilt[i].rules, next: result}
	}
	return result
}

func removeRule(head *entry, sym symbol.Symbol, rule *Rule) *entry {
	var rebuilt []*entry
	e := head
	for e != nil && e.sym != sym {
		rebuilt = append(rebuilt, e)
		e = e.next
	}
	if e == nil {
		return head
	}
	filtered := make([]*Rule, 0, len(e.rules))
	for _, r := range e.rules {
		if r != rule {
			filtered = append(filtered, r)
		}
	}
	var result *entry
	if len(filtered) > 0 {
		result = &entry{sym: sym, rules: filtered, next: e.next}
	} else {
		result = e.next
	}
	for i := len(rebuilt) - 1; i >= 0; i-- {
		result = &entry{sym: rebuilt[i].sym, rules: rebuilt[i].rules, next: result}
	}
	return result
}

// RulesFor returns the rules whose head is sym, in a stable order
// (insertion order within the bucket chain).
func (g *Grammar) RulesFor(sym symbol.Symbol) []*Rule {
	for e := g.buckets[bucketOf(sym)]; e != nil; e = e.next {
		if e.sym == sym {
			out := make([]*Rule, len(e.rules))
			copy(out, e.rules)
			return out
		}
	}
	return nil
}

// HasSymbol reports whether sym has at least one rule in g.
func (g *Grammar) HasSymbol(sym symbol.Symbol) bool {
	return len(g.RulesFor(sym)) > 0
}

// allRules enumerates every rule in the grammar, head included,
// ordered via gods/arraylist so nullable-fixpoint iteration (and any
// trace output built on it) is deterministic across runs.
func (g *Grammar) allRules() *arraylist.List {
	list := arraylist.New()
	for _, b := range g.buckets {
		for e := b; e != nil; e = e.next {
			for _, r := range e.rules {
				list.Add(headedRule{head: e.sym, rule: r})
			}
		}
	}
	return list
}

type headedRule struct {
	head symbol.Symbol
	rule *Rule
}

// IsNullable reports whether sym can derive the empty string. The
// nullable set is a fixpoint over the whole grammar, recomputed lazily
// the first time it's asked for after any Put/Drop.
func (g *Grammar) IsNullable(sym symbol.Symbol) bool {
	g.ensureNullable()
	return g.nullable[sym]
}

func (g *Grammar) ensureNullable() {
	if !g.nullableDirty && g.nullable != nil {
		return
	}
	nullable := map[symbol.Symbol]bool{}
	changed := true
	rules := g.allRules()
	for changed {
		changed = false
		it := rules.Iterator()
		for it.Next() {
			hr := it.Value().(headedRule)
			if nullable[hr.head] {
				continue
			}
			allNullable := true
			for _, s := range hr.rule.Body {
				if !nullable[s] {
					allNullable = false
					break
				}
			}
			if allNullable {
				nullable[hr.head] = true
				changed = true
			}
		}
	}
	g.nullable = nullable
	g.nullableDirty = false
	tracer().Debugf("loom.grammar: recomputed nullable set (%d symbols)", len(nullable))
}

// InvariantViolation reports a structurally invalid grammar mutation:
// an empty-string symbol, a selection mask mismatched in length with
// the rule's body, a misordered GrammarBuilder call, or (raised by
// package earley) a mid-rule transform that removed the rule being
// matched.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("grammar: invariant violation: %s", e.Reason)
}

// Key returns a structural hash of g's rule identities, suitable as a
// map key for caching (e.g. memoizing a parser by the grammar it was
// built from). It hashes rule pointer identities and head symbols, not
// rule contents, since two rules that look alike but were installed by
// different macro expansions must hash differently.
func (g *Grammar) Key() string {
	if g.keyCached {
		return g.cachedKey
	}
	type ruleIdent struct {
		Head string
		Rule string
	}
	var idents []ruleIdent
	it := g.allRules().Iterator()
	for it.Next() {
		hr := it.Value().(headedRule)
		idents = append(idents, ruleIdent{Head: string(hr.head), Rule: hr.rule.key()})
	}
	slices.SortFunc(idents, func(a, b ruleIdent) bool {
		if a.Head != b.Head {
			return a.Head < b.Head
		}
		return a.Rule < b.Rule
	})
	hash, err := structhash.Hash(idents, 1)
	if err != nil {
		// structhash only fails on types it cannot reflect over; idents
		// is a plain slice of plain structs, so this is unreachable.
		hash = fmt.Sprintf("%v", idents)
	}
	g.cachedKey = hash
	g.keyCached = true
	return hash
}
