package grammar

import "github.com/nmoraes/loomscript/symbol"

// sameBody reports whether a and b name the same sequence of body symbols.
func sameBody(a, b []symbol.Symbol) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DropBody removes, structurally, the rule under sym whose body equals
// body — a structural match on (head, body), unlike Drop, which
// compares by the *Rule pointer the caller already holds. This is
// what lets an `unmacro` statement remove a macro's installed rule
// without having kept a reference to the *Rule put() returned, which
// package corelang's `macro`/`unmacro` transforms need (they only ever
// reconstruct the body from the parsed parameter list, never hold onto
// the *Rule itself).
func (g *Grammar) DropBody(sym symbol.Symbol, body []symbol.Symbol) *Grammar {
	for _, r := range g.RulesFor(sym) {
		if sameBody(r.Body, body) {
			return g.Drop(sym, r)
		}
	}
	return g.shallowCopy()
}
