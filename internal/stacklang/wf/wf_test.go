package wf

import (
	"testing"

	"stacklang/internal/stacklang/ir"
)

func program(entryNeeded ir.RegSet, body ir.Block) *ir.Program {
	p := ir.NewProgram()
	p.CFG["L0"] = ir.TypedBlockInstr(body, nil, nil, entryNeeded, false, "L0")
	p.Entry["start"] = "L0"
	return p
}

func TestCheckAcceptsWellFormedProgram(t *testing.T) {
	body := ir.DefInstr(ir.PReg{Name: "x"}, ir.Tag{N: 1}, ir.ReturnInstr("x"))
	p := program(ir.NewRegSet(), body)

	if err := Check(p); err != nil {
		t.Fatalf("expected well-formed program to pass, got %v", err)
	}
}

func TestCheckRejectsReturnOfUndefinedRegister(t *testing.T) {
	p := program(ir.NewRegSet(), ir.ReturnInstr("x"))

	if err := Check(p); err == nil {
		t.Fatal("expected violation for returning an undefined register")
	}
}

func TestCheckRejectsJumpToMissingLabel(t *testing.T) {
	p := program(ir.NewRegSet(), ir.JumpInstr("nowhere"))

	err := Check(p)
	if err == nil {
		t.Fatal("expected violation for jump to missing label")
	}
}

func TestCheckRejectsJumpMissingNeededRegisters(t *testing.T) {
	p := ir.NewProgram()
	p.CFG["L0"] = ir.TypedBlockInstr(ir.JumpInstr("L1"), nil, nil, ir.NewRegSet(), false, "L0")
	p.CFG["L1"] = ir.TypedBlockInstr(ir.ReturnInstr("needed"), nil, nil, ir.NewRegSet("needed"), false, "L1")

	err := Check(p)
	if err == nil {
		t.Fatal("expected violation: L1 needs 'needed' but L0 never defines it")
	}
}

func TestCheckNeedReplacesNotExtendsDefinedSet(t *testing.T) {
	// x is defined, then Need({}) clears it, so returning x must fail.
	body := ir.DefInstr(ir.PReg{Name: "x"}, ir.Tag{N: 1},
		ir.NeedInstr(ir.NewRegSet(), ir.ReturnInstr("x")))
	p := program(ir.NewRegSet(), body)

	if err := Check(p); err == nil {
		t.Fatal("expected Need to clear the defined set, making the return fail")
	}
}

func TestCheckCaseTokenBranchBindsPayload(t *testing.T) {
	body := ir.CaseTokenInstr("t", []ir.TokenBranch{
		{Pattern: ir.TokSingle{Terminal: "a", Reg: "payload"}, Body: ir.ReturnInstr("payload")},
	}, nil)
	p := program(ir.NewRegSet("t"), body)

	if err := Check(p); err != nil {
		t.Fatalf("expected TokSingle to bind its payload register, got %v", err)
	}
}

func TestCheckPopBindsPattern(t *testing.T) {
	body := ir.PopInstr(ir.PReg{Name: "x"}, ir.ReturnInstr("x"))
	p := program(ir.NewRegSet(), body)

	if err := Check(p); err != nil {
		t.Fatalf("expected pop to bind x, got %v", err)
	}
}
