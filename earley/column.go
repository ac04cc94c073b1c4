package earley

import "github.com/nmoraes/loomscript/symbol"

// Column holds every item derivable at one input position. Its item
// list is iterated while items are still being appended to it — the
// predict/complete fixed point for a column is one front-to-back pass
// whose bound grows as items are appended, so every item is visited
// exactly once, including items inserted during the pass.
type Column struct {
	Pos        int
	items      []*Item
	seen       map[string]bool
	parentSets map[symbol.Symbol]*ParentSet

	// nullableCompletions records, per head symbol, every item that
	// completed with Start == Pos (a derivation that started and ended
	// in this same column — always a nullable one). A prediction that
	// registers itself into this column's ParentSet for that symbol
	// after the completion already happened replays against this list
	// instead of being lost; see closeColumn.
	nullableCompletions map[symbol.Symbol][]*Item
}

// NewColumn creates an empty column at input position pos.
func NewColumn(pos int) *Column {
	return &Column{
		Pos:                 pos,
		seen:                map[string]bool{},
		parentSets:          map[symbol.Symbol]*ParentSet{},
		nullableCompletions: map[symbol.Symbol][]*Item{},
	}
}

func (c *Column) recordNullableCompletion(sym symbol.Symbol, item *Item) {
	c.nullableCompletions[sym] = append(c.nullableCompletions[sym], item)
}

func (c *Column) nullableCompletionsFor(sym symbol.Symbol) []*Item {
	return c.nullableCompletions[sym]
}

// Add inserts item if it is not already present (by key, ignoring
// ParentSet), returning whether it was newly added. The fixed-point
// loop in Parser.closeColumn picks up newly added items in the same
// pass.
func (c *Column) Add(item *Item) bool {
	k := key(item)
	if c.seen[k] {
		return false
	}
	c.seen[k] = true
	c.items = append(c.items, item)
	return true
}

// Items returns the column's items by index; it is safe to keep
// calling this with an increasing index while other items are being
// Added, which is how the fixed-point loop in Parser observes growth.
func (c *Column) Items() []*Item {
	return c.items
}

// Len reports how many items the column currently holds.
func (c *Column) Len() int {
	return len(c.items)
}

// ParentSetFor returns the (created on first use) ParentSet of items
// in this column expecting sym next.
func (c *Column) ParentSetFor(sym symbol.Symbol) *ParentSet {
	ps, ok := c.parentSets[sym]
	if !ok {
		ps = &ParentSet{}
		c.parentSets[sym] = ps
	}
	return ps
}
