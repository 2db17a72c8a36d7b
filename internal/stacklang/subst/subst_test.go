package subst

import (
	"testing"

	"stacklang/internal/stacklang/ir"
)

func TestAddOverwrites(t *testing.T) {
	s := Singleton("x", ir.Tag{N: 1}).Add("x", ir.Tag{N: 2})
	v, ok := s.Lookup("x")
	if !ok || v != ir.Value(ir.Tag{N: 2}) {
		t.Fatalf("expected x -> Tag(2), got %v", v)
	}
}

func TestApplyRecursesIntoTuple(t *testing.T) {
	s := Singleton("a", ir.Tag{N: 9})
	v := ir.TupleValue{Elems: []ir.Value{ir.Reg{Name: "a"}, ir.Reg{Name: "b"}}}

	got := s.Apply(v).(ir.TupleValue)
	if got.Elems[0] != ir.Value(ir.Tag{N: 9}) {
		t.Fatalf("expected a substituted to Tag(9), got %v", got.Elems[0])
	}
	if got.Elems[1] != ir.Value(ir.Reg{Name: "b"}) {
		t.Fatalf("expected b left alone, got %v", got.Elems[1])
	}
}

func TestRemoveDropsRulesBoundByPattern(t *testing.T) {
	s := Singleton("x", ir.Tag{N: 1}).Add("y", ir.Tag{N: 2})
	out := s.Remove(ir.PReg{Name: "x"})

	if _, ok := out.Lookup("x"); ok {
		t.Fatal("expected x removed")
	}
	if _, ok := out.Lookup("y"); !ok {
		t.Fatal("expected y to survive")
	}
}

func TestComposeAppliesFirstToSecondRHS(t *testing.T) {
	s1 := Singleton("a", ir.Tag{N: 1})
	s2 := Singleton("b", ir.Reg{Name: "a"})

	out := Compose(s1, s2)
	v, ok := out.Lookup("b")
	if !ok || v != ir.Value(ir.Tag{N: 1}) {
		t.Fatalf("expected b -> Tag(1) after composing, got %v", v)
	}
}

func TestComposeSecondWinsOnClash(t *testing.T) {
	s1 := Singleton("a", ir.Tag{N: 1})
	s2 := Singleton("a", ir.Tag{N: 2})

	out := Compose(s1, s2)
	v, _ := out.Lookup("a")
	if v != ir.Value(ir.Tag{N: 2}) {
		t.Fatalf("expected s2 to win on clash, got %v", v)
	}
}

func TestApplyPatternRejectsNonRegisterShape(t *testing.T) {
	s := Singleton("x", ir.Tag{N: 3})
	_, err := s.ApplyPattern(ir.PReg{Name: "x"})
	if err == nil {
		t.Fatal("expected a pattern shape error")
	}
	var shapeErr *ErrPatternShape
	if !isErrPatternShape(err, &shapeErr) {
		t.Fatalf("expected *ErrPatternShape, got %T", err)
	}
}

func isErrPatternShape(err error, target **ErrPatternShape) bool {
	e, ok := err.(*ErrPatternShape)
	if ok {
		*target = e
	}
	return ok
}

func TestApplyPatternAllowsRegisterToRegister(t *testing.T) {
	s := Singleton("x", ir.Reg{Name: "y"})
	p, err := s.ApplyPattern(ir.PReg{Name: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.(ir.PReg).Name != "y" {
		t.Fatalf("expected PReg(y), got %v", p)
	}
}

func TestRestoreDefsEmitsDefPerRule(t *testing.T) {
	s := Singleton("x", ir.Tag{N: 1}).Add("y", ir.Tag{N: 2})
	block := RestoreDefs(s, ir.ReturnInstr("x"))

	count := 0
	cur := block
	for {
		d, ok := cur.(ir.DefPattern)
		if !ok {
			break
		}
		count++
		cur = d.Next
	}
	if count != 2 {
		t.Fatalf("expected 2 restored defs, got %d", count)
	}
}

func TestTightRestoreDefsOnlyRestoresNeeded(t *testing.T) {
	s := Singleton("x", ir.Tag{N: 1}).Add("y", ir.Tag{N: 2})
	block := TightRestoreDefs(s, ir.NewRegSet("x"), ir.ReturnInstr("x"))

	d, ok := block.(ir.DefPattern)
	if !ok {
		t.Fatalf("expected a single restored Def, got %T", block)
	}
	if d.Pattern.(ir.PReg).Name != "x" {
		t.Fatalf("expected only x restored, got %v", d.Pattern)
	}
	if _, ok := d.Next.(ir.DefPattern); ok {
		t.Fatal("expected only one Def to be restored")
	}
}

func TestExtendPatternDecomposesTuple(t *testing.T) {
	p := ir.MustPTuple(ir.PReg{Name: "x"}, ir.PReg{Name: "y"})
	v := ir.TupleValue{Elems: []ir.Value{ir.Tag{N: 1}, ir.Tag{N: 2}}}

	s := ExtendPattern(Empty(), p, v)
	xv, _ := s.Lookup("x")
	yv, _ := s.Lookup("y")
	if xv != ir.Value(ir.Tag{N: 1}) || yv != ir.Value(ir.Tag{N: 2}) {
		t.Fatalf("expected x->Tag(1), y->Tag(2), got x=%v y=%v", xv, yv)
	}
}

func TestPatternMatchesAcceptsTupleOfMatchingArity(t *testing.T) {
	p := ir.MustPTuple(ir.PReg{Name: "x"}, ir.PReg{Name: "y"})
	v := ir.TupleValue{Elems: []ir.Value{ir.Tag{N: 1}, ir.Tag{N: 2}}}
	if !PatternMatches(p, v) {
		t.Fatal("expected a same-arity tuple value to match")
	}
}

func TestPatternMatchesRejectsBareRegForTuplePattern(t *testing.T) {
	p := ir.MustPTuple(ir.PReg{Name: "x"}, ir.PReg{Name: "y"})
	if PatternMatches(p, ir.Reg{Name: "r"}) {
		t.Fatal("expected a bare Reg standing in for a whole tuple not to match")
	}
}

func TestPatternMatchesRejectsArityMismatch(t *testing.T) {
	p := ir.MustPTuple(ir.PReg{Name: "x"}, ir.PReg{Name: "y"})
	v := ir.TupleValue{Elems: []ir.Value{ir.Tag{N: 1}}}
	if PatternMatches(p, v) {
		t.Fatal("expected an arity mismatch not to match")
	}
}

func TestPatternMatchesAlwaysAcceptsWildcardAndPReg(t *testing.T) {
	if !PatternMatches(ir.Wildcard{}, ir.Tag{N: 1}) {
		t.Fatal("expected Wildcard to match any value")
	}
	if !PatternMatches(ir.PReg{Name: "x"}, ir.Reg{Name: "r"}) {
		t.Fatal("expected PReg to match any value")
	}
}
