package earley

import (
	"fmt"
	"sort"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// ParseError reports that no complete parse of the start symbol was
// found. Furthest is the input position the parser got to before it
// ran out of matching items; Expected lists the terminals that would
// have been accepted at that position, in a deterministic set (built
// with gods/treeset) so error messages are stable across runs.
type ParseError struct {
	Message  string
	Furthest int
	Expected *treeset.Set
}

func newParseError(furthest int, expected map[string]struct{}) *ParseError {
	set := treeset.NewWith(utils.StringComparator)
	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, n := range names {
		set.Add(n)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "no parse: stalled at position %d", furthest)
	if set.Size() > 0 {
		b.WriteString(", expected one of: ")
		first := true
		for _, v := range set.Values() {
			if !first {
				b.WriteString(", ")
			}
			b.WriteString(v.(string))
			first = false
		}
	}
	return &ParseError{Message: b.String(), Furthest: furthest, Expected: set}
}

func (e *ParseError) Error() string { return e.Message }

// AmbiguousParse reports that the start symbol completed in more than
// one way at the final column. Candidates holds the value each
// completing derivation built; by default a Parser returns this as an
// error (AllowAmbiguous=false picks none of them) — ambiguity is
// reported, not silently resolved.
type AmbiguousParse struct {
	Candidates []interface{}
}

func (e *AmbiguousParse) Error() string {
	return fmt.Sprintf("ambiguous parse: %d distinct derivations of the start symbol", len(e.Candidates))
}
