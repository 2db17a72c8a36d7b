package printer

import (
	"strings"
	"testing"

	"stacklang/internal/stacklang/ir"
)

func TestPrintBlockRendersPushPopReturn(t *testing.T) {
	body := ir.PushInstr(ir.Tag{N: 3}, ir.CellInfo{Type: "state"},
		ir.PopInstr(ir.PReg{Name: "x"}, ir.ReturnInstr("x")))

	out := PrintBlock(body)
	if !strings.Contains(out, "push(Tag(3) : state)") {
		t.Fatalf("expected push line, got:\n%s", out)
	}
	if !strings.Contains(out, "pop(x)") {
		t.Fatalf("expected pop line, got:\n%s", out)
	}
	if !strings.Contains(out, "return x") {
		t.Fatalf("expected return line, got:\n%s", out)
	}
}

func TestPrintProgramListsEntriesAndBlocksSorted(t *testing.T) {
	p := ir.NewProgram()
	p.CFG["L1"] = ir.TypedBlockInstr(ir.ReturnInstr("r"), nil, nil, ir.NewRegSet("r"), false, "L1")
	p.CFG["L0"] = ir.TypedBlockInstr(ir.JumpInstr("L1"), nil, nil, ir.NewRegSet(), false, "L0")
	p.Entry["start"] = "L0"

	out := Print(p)
	l0idx := strings.Index(out, "block L0:")
	l1idx := strings.Index(out, "block L1:")
	if l0idx == -1 || l1idx == -1 || l0idx > l1idx {
		t.Fatalf("expected blocks printed in sorted label order, got:\n%s", out)
	}
	if !strings.Contains(out, "entry start -> L0") {
		t.Fatalf("expected entry line, got:\n%s", out)
	}
}

func TestPrintBlockRendersCaseTagBranches(t *testing.T) {
	body := ir.CaseTagInstr("t", []ir.TagBranch{
		ir.NewTagBranch(ir.ReturnInstr("a"), 1, 2),
		ir.NewTagBranch(ir.DieInstr(), 3),
	})
	out := PrintBlock(body)
	if !strings.Contains(out, "case_tag(t)") {
		t.Fatalf("expected case_tag header, got:\n%s", out)
	}
	if !strings.Contains(out, "{1, 2} ->") {
		t.Fatalf("expected sorted tag set, got:\n%s", out)
	}
}
