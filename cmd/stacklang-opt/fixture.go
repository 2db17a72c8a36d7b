package main

import (
	"stacklang/internal/stacklang/ir"
)

// builtinFixtureProgram is the CLI's only built-in program: a StackLang
// encoding of the trivial grammar S -> a. Loading a real Program/LR1Automaton
// pair is an upstream concern this backend treats as an external
// collaborator (no .cmly or similar serialization is implemented here —
// see DESIGN.md), so -from-text is the only way to exercise the pipeline
// on anything else.
func builtinFixtureProgram() *ir.Program {
	body := ir.CaseTokenInstr("tok", []ir.TokenBranch{
		{Pattern: ir.TokSingle{Terminal: "a", Reg: "payload"}, Body: ir.ReturnInstr("payload")},
	}, nil)
	p := ir.NewProgram()
	p.CFG["L0"] = ir.TypedBlockInstr(body, nil, nil, ir.NewRegSet("tok"), false, "L0")
	p.Entry["S"] = "L0"
	return p
}

// passthroughHost is a Host that never fails: calls return Unit, field
// access returns the base unchanged, and actions return Unit. It exists
// so -diff has something to run against the built-in fixture without
// requiring a real semantic-action backend.
type passthroughHost struct{}

func (passthroughHost) Call(fn string, args []ir.Value) (ir.Value, error) { return ir.Unit{}, nil }
func (passthroughHost) Field(base ir.Value, field string) (ir.Value, error) {
	return base, nil
}
func (passthroughHost) Position() ir.Value { return ir.Unit{} }
func (passthroughHost) Action(id int, bindings map[ir.Register]ir.Value) (ir.Value, error) {
	return ir.Unit{}, nil
}
