package grammar

import (
	"testing"

	"github.com/nmoraes/loomscript/symbol"
)

func concatBuild(values []interface{}) (interface{}, error) {
	s := ""
	for _, v := range values {
		s += v.(string)
	}
	return s, nil
}

func TestPutIsPersistent(t *testing.T) {
	g0 := New("S")
	rule := &Rule{Head: "S", Body: []symbol.Symbol{"a"}, Selected: []bool{true}, Build: concatBuild}
	g1, err := g0.Put("S", rule)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(g0.RulesFor("S")) != 0 {
		t.Fatalf("putting into g1 must not affect g0, got %d rules on g0", len(g0.RulesFor("S")))
	}
	if len(g1.RulesFor("S")) != 1 {
		t.Fatalf("expected 1 rule on g1, got %d", len(g1.RulesFor("S")))
	}
}

func TestPutSharesUnrelatedBuckets(t *testing.T) {
	g0 := New("S")
	g0, _ = g0.Put("A", &Rule{Head: "A", Body: nil, Selected: nil, Build: concatBuild})
	g1, _ := g0.Put("B", &Rule{Head: "B", Body: nil, Selected: nil, Build: concatBuild})
	if len(g1.RulesFor("A")) != 1 {
		t.Fatalf("g1 should still see A's rule installed on g0")
	}
}

func TestPutReplacesSameBodyRule(t *testing.T) {
	g0 := New("S")
	r1 := &Rule{Head: "S", Body: []symbol.Symbol{"a"}, Selected: []bool{true}, Build: concatBuild}
	r2 := &Rule{Head: "S", Body: []symbol.Symbol{"a"}, Selected: []bool{true}, Build: concatBuild}
	g1, _ := g0.Put("S", r1)
	g2, _ := g1.Put("S", r2)
	rules := g2.RulesFor("S")
	if len(rules) != 1 {
		t.Fatalf("re-putting an identical (head, body) must replace, got %d rules", len(rules))
	}
	if rules[0] != r2 {
		t.Fatalf("expected the replacing rule r2 to be the one kept")
	}
	if len(g1.RulesFor("S")) != 1 || g1.RulesFor("S")[0] != r1 {
		t.Fatalf("replacing on g2 must not affect g1's own rule")
	}
}

func TestDropRemovesByIdentity(t *testing.T) {
	g0 := New("S")
	r1 := &Rule{Head: "S", Body: []symbol.Symbol{"a"}, Selected: []bool{true}, Build: concatBuild}
	r2 := &Rule{Head: "S", Body: []symbol.Symbol{"b"}, Selected: []bool{true}, Build: concatBuild}
	g1, _ := g0.Put("S", r1)
	g1, _ = g1.Put("S", r2)
	g2 := g1.Drop("S", r1)
	if len(g2.RulesFor("S")) != 1 {
		t.Fatalf("expected 1 rule after drop, got %d", len(g2.RulesFor("S")))
	}
	if len(g1.RulesFor("S")) != 2 {
		t.Fatalf("dropping on g2 must not affect g1")
	}
}

func TestDropHeadRemovesAllRules(t *testing.T) {
	g0 := New("S")
	r1 := &Rule{Head: "S", Body: []symbol.Symbol{"a"}, Selected: []bool{true}, Build: concatBuild}
	r2 := &Rule{Head: "S", Body: []symbol.Symbol{"b"}, Selected: []bool{true}, Build: concatBuild}
	r3 := &Rule{Head: "A", Body: []symbol.Symbol{"c"}, Selected: []bool{true}, Build: concatBuild}
	g1, _ := g0.Put("S", r1)
	g1, _ = g1.Put("S", r2)
	g1, _ = g1.Put("A", r3)
	g2 := g1.DropHead("S")
	if len(g2.RulesFor("S")) != 0 {
		t.Fatalf("expected no S rules after DropHead, got %d", len(g2.RulesFor("S")))
	}
	if g2.HasSymbol("S") {
		t.Fatalf("S must be a terminal of g2 once all its rules are dropped")
	}
	if len(g2.RulesFor("A")) != 1 {
		t.Fatalf("DropHead(S) must not touch A's rules")
	}
	if len(g1.RulesFor("S")) != 2 {
		t.Fatalf("dropping on g2 must not affect g1")
	}
	g3 := g2.DropHead("S")
	if g3.HasSymbol("S") {
		t.Fatalf("DropHead of an absent head must stay a no-op")
	}
}

func TestEmptySymbolRejected(t *testing.T) {
	g0 := New("S")
	_, err := g0.Put("", &Rule{Head: "", Build: concatBuild})
	if err == nil {
		t.Fatalf("expected InvariantViolation for empty head symbol")
	}
	var iv *InvariantViolation
	if !errorsAs(err, &iv) {
		t.Fatalf("expected *InvariantViolation, got %T", err)
	}
}

func errorsAs(err error, target **InvariantViolation) bool {
	iv, ok := err.(*InvariantViolation)
	if !ok {
		return false
	}
	*target = iv
	return true
}

func TestNullableFixpoint(t *testing.T) {
	g := New("S")
	var err error
	g, err = g.Put("S", &Rule{Head: "S", Body: []symbol.Symbol{"A", "A"}, Selected: []bool{true, true}, Build: concatBuild})
	if err != nil {
		t.Fatal(err)
	}
	g, err = g.Put("A", &Rule{Head: "A", Build: concatBuild})
	if err != nil {
		t.Fatal(err)
	}
	if !g.IsNullable("A") {
		t.Fatalf("A has an epsilon rule, must be nullable")
	}
	if !g.IsNullable("S") {
		t.Fatalf("S is composed entirely of nullable A's, must be nullable")
	}
	if g.IsNullable("zzz") {
		t.Fatalf("unknown symbol must not be nullable")
	}
}

func TestBuilderFluentAPI(t *testing.T) {
	b := NewBuilder(New("Sum"))
	b.LHS("Sum").N("Sum").Skip("+").N("Num").End(func(v []interface{}) (interface{}, error) {
		return v[0].(int) + v[1].(int), nil
	})
	b.LHS("Sum").N("Num").End(func(v []interface{}) (interface{}, error) { return v[0], nil })
	b.LHS("Num").Epsilon().End(func(v []interface{}) (interface{}, error) { return 0, nil })
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("builder error: %v", err)
	}
	rules := g.RulesFor("Sum")
	if len(rules) != 2 {
		t.Fatalf("expected 2 Sum rules, got %d", len(rules))
	}
	if rules[0].Arity() != 2 {
		t.Fatalf("expected first Sum rule to select 2 values (skip is suppressed), got %d", rules[0].Arity())
	}
}

func TestTransformAttachesToLastAppendedPosition(t *testing.T) {
	b := NewBuilder(New("S"))
	fired := false
	b.LHS("S").N("A").Transform(func(g *Grammar, vals []interface{}) (*Grammar, error) {
		fired = true
		return g, nil
	}).N("B").End(func(v []interface{}) (interface{}, error) { return nil, nil })
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("builder error: %v", err)
	}
	rule := g.RulesFor("S")[0]
	if len(rule.Transforms[0]) != 1 {
		t.Fatalf("expected one transform at position 0, got %d", len(rule.Transforms[0]))
	}
	if _, ok := rule.Transforms[1]; ok {
		t.Fatalf("transform must not leak onto position 1")
	}
	_, _ = rule.Transforms[0][0](g, nil)
	if !fired {
		t.Fatalf("transform callback was not invoked")
	}
}
