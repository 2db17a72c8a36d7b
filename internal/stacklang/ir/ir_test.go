package ir

import "testing"

func TestRegSetUnionMinus(t *testing.T) {
	a := NewRegSet("x", "y")
	b := NewRegSet("y", "z")

	union := a.Union(b)
	if len(union) != 3 {
		t.Fatalf("expected union of size 3, got %d", len(union))
	}

	minus := a.Minus(b)
	if !minus.Contains("x") || minus.Contains("y") {
		t.Fatalf("expected minus to contain only x, got %v", minus.Slice())
	}
}

func TestRegSetIsSubsetOf(t *testing.T) {
	small := NewRegSet("x")
	big := NewRegSet("x", "y")

	if !small.IsSubsetOf(big) {
		t.Error("expected {x} to be a subset of {x, y}")
	}
	if big.IsSubsetOf(small) {
		t.Error("expected {x, y} not to be a subset of {x}")
	}
}

func TestNewPTupleRejectsDuplicateBinder(t *testing.T) {
	_, err := NewPTuple(PReg{Name: "x"}, PReg{Name: "x"})
	if err == nil {
		t.Fatal("expected linearity violation for duplicate binder")
	}
}

func TestNewPTupleAcceptsNestedLinearPattern(t *testing.T) {
	p, err := NewPTuple(PReg{Name: "x"}, MustPTuple(PReg{Name: "y"}, Wildcard{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Elems) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(p.Elems))
	}
}

func TestMapChildrenRebuildsNonTerminal(t *testing.T) {
	block := PushInstr(Tag{N: 3}, CellInfo{Type: "U256"}, ReturnInstr("x"))

	visited := 0
	rebuilt := MapChildren(block, func(c Block) Block {
		visited++
		if _, ok := c.(Return); !ok {
			t.Fatalf("expected Return child, got %T", c)
		}
		return c
	})

	if visited != 1 {
		t.Fatalf("expected exactly 1 child visited, got %d", visited)
	}
	push, ok := rebuilt.(Push)
	if !ok {
		t.Fatalf("expected rebuilt node to stay a Push, got %T", rebuilt)
	}
	if push.Cell.Type != "U256" {
		t.Fatalf("expected cell info preserved, got %v", push.Cell)
	}
}

func TestMapChildrenOnCaseTokenVisitsAllBranches(t *testing.T) {
	block := CaseTokenInstr("t",
		[]TokenBranch{
			{Pattern: TokSingle{Terminal: "a", Reg: "v"}, Body: ReturnInstr("v")},
			{Pattern: TokMultiple{Terminals: []string{"b", "c"}}, Body: DieInstr()},
		},
		ReturnInstr("default"),
	)

	count := 0
	IterChildren(block, func(Block) { count++ })
	if count != 3 {
		t.Fatalf("expected 3 children (2 branches + default), got %d", count)
	}
}

func TestMapChildrenOnTerminalWithoutChildrenIsIdentity(t *testing.T) {
	block := JumpInstr("L1")
	rebuilt := MapChildren(block, func(c Block) Block {
		t.Fatal("Jump has no children; f should not be called")
		return c
	})
	if rebuilt != block {
		t.Fatalf("expected identity result for childless terminal")
	}
}

func TestTypedBlockMapChildren(t *testing.T) {
	tb := TypedBlockInstr(ReturnInstr("r"), []CellInfo{{Type: "U256"}}, nil, NewRegSet("r"), false, "L0")
	rebuilt := MapChildren(tb, func(c Block) Block { return DieInstr() })
	got, ok := rebuilt.(*TypedBlock)
	if !ok {
		t.Fatalf("expected *TypedBlock, got %T", rebuilt)
	}
	if _, ok := got.Body.(Die); !ok {
		t.Fatalf("expected rebuilt body to be Die, got %T", got.Body)
	}
	if got.Name != "L0" {
		t.Fatalf("expected name preserved, got %q", got.Name)
	}
}
