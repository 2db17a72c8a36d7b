package vm

import (
	"fmt"
	"testing"

	"stacklang/internal/stacklang/ir"
)

type stubHost struct {
	calls []string
}

func (s *stubHost) Call(fn string, args []ir.Value) (ir.Value, error) {
	s.calls = append(s.calls, fn)
	if fn == "fail" {
		return nil, fmt.Errorf("stub: %s always fails", fn)
	}
	return ir.TupleValue{Elems: args}, nil
}

func (s *stubHost) Field(base ir.Value, field string) (ir.Value, error) {
	return base, nil
}

func (s *stubHost) Position() ir.Value { return ir.Tag{N: -1} }

func (s *stubHost) Action(id int, bindings map[ir.Register]ir.Value) (ir.Value, error) {
	return ir.Tag{N: id}, nil
}

func program(body ir.Block, needed ir.RegSet) *ir.Program {
	p := ir.NewProgram()
	p.CFG["L0"] = ir.TypedBlockInstr(body, nil, nil, needed, false, "L0")
	p.Entry["S"] = "L0"
	return p
}

// TestTrivialGrammarBoundary mirrors lr1's: accepting [a] and overshooting
// on the empty input, but executed via the compiled-program interpreter
// instead of the table-driven one.
func TestTrivialGrammarBoundary(t *testing.T) {
	body := ir.CaseTokenInstr("_", []ir.TokenBranch{
		{Pattern: ir.TokSingle{Terminal: "a", Reg: "tok"}, Body: ir.ReturnInstr("tok")},
	}, nil)
	p := program(body, ir.NewRegSet())

	outcome, val, err := Run(p, "S", []Token{{Terminal: "a", Payload: ir.Unit{}}}, &stubHost{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != Accepted {
		t.Fatalf("expected accepted, got %s", outcome)
	}
	if val != ir.Value(ir.Unit{}) {
		t.Fatalf("expected the token payload returned, got %v", val)
	}

	outcome, _, err = Run(p, "S", nil, &stubHost{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != Overshoot {
		t.Fatalf("expected overshoot on empty input, got %s", outcome)
	}
}

func TestRejectsOnDie(t *testing.T) {
	body := ir.CaseTokenInstr("_", []ir.TokenBranch{
		{Pattern: ir.TokSingle{Terminal: "a", Reg: "tok"}, Body: ir.ReturnInstr("tok")},
	}, ir.DieInstr())
	p := program(body, ir.NewRegSet())

	outcome, _, err := Run(p, "S", []Token{{Terminal: "b"}}, &stubHost{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != Rejected {
		t.Fatalf("expected rejected via the default die branch, got %s", outcome)
	}
}

func TestPrimDispatchesToHost(t *testing.T) {
	body := ir.DefInstr(ir.PReg{Name: "x"}, ir.Tag{N: 42},
		ir.PrimInstr("y", ir.CallPrim{Func: "double", Args: []ir.Register{"x"}},
			ir.ReturnInstr("y")))
	p := program(body, ir.NewRegSet())

	host := &stubHost{}
	outcome, val, err := Run(p, "S", nil, host)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != Accepted {
		t.Fatalf("expected accepted, got %s", outcome)
	}
	if len(host.calls) != 1 || host.calls[0] != "double" {
		t.Fatalf("expected one call to 'double', got %v", host.calls)
	}
	tv, ok := val.(ir.TupleValue)
	if !ok || len(tv.Elems) != 1 || tv.Elems[0] != ir.Value(ir.Tag{N: 42}) {
		t.Fatalf("expected the prim's echoed arg wrapping Tag(42), got %v", val)
	}
}

func TestJumpFollowsControlFlow(t *testing.T) {
	p := ir.NewProgram()
	p.CFG["L0"] = ir.TypedBlockInstr(ir.JumpInstr("L1"), nil, nil, ir.NewRegSet(), false, "L0")
	p.CFG["L1"] = ir.TypedBlockInstr(
		ir.DefInstr(ir.PReg{Name: "r"}, ir.Tag{N: 7}, ir.ReturnInstr("r")),
		nil, nil, ir.NewRegSet(), false, "L1")
	p.Entry["S"] = "L0"

	outcome, val, err := Run(p, "S", nil, &stubHost{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != Accepted || val != ir.Value(ir.Tag{N: 7}) {
		t.Fatalf("expected accepted with Tag(7), got %s %v", outcome, val)
	}
}
