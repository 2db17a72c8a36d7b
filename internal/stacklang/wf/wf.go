// Package wf implements the well-formedness checker: a recursive walk
// verifying that every register reference is defined on entry and that
// jumps target known labels whose needed registers are satisfied. Pattern
// linearity is not checked here; ir.NewPTuple enforces it when a tuple
// pattern is built.
//
// Violations are fatal: the IR is supposed to be produced correctly by
// an earlier pass, so a well-formedness failure indicates a bug
// upstream, not a recoverable user error.
package wf

import (
	"fmt"

	"stacklang/internal/stacklang/ir"
	"stacklang/internal/stacklang/regset"
)

// Violation is a fatal well-formedness error: an undefined register
// reference, a jump to a missing label, or a jump whose target needs
// registers the jump site hasn't defined.
type Violation struct {
	Label     string
	Message   string
	Undefined ir.RegSet
	Defined   ir.RegSet
}

func (v *Violation) Error() string {
	if v.Undefined != nil && len(v.Undefined) > 0 {
		return fmt.Sprintf("wf: in block %q: %s (undefined: %v, defined: %v)",
			v.Label, v.Message, v.Undefined.Slice(), v.Defined.Slice())
	}
	return fmt.Sprintf("wf: in block %q: %s", v.Label, v.Message)
}

// Check verifies every typed block in program.CFG.
func Check(program *ir.Program) error {
	for label, tb := range program.CFG {
		if err := checkTypedBlock(program, string(label), tb); err != nil {
			return err
		}
	}
	return nil
}

func checkTypedBlock(program *ir.Program, label string, tb *ir.TypedBlock) error {
	return checkBlock(program, label, tb.Body, tb.NeededRegisters.Clone())
}

// checkBlock threads the accumulated defined set through block.
func checkBlock(program *ir.Program, label string, block ir.Block, defined ir.RegSet) error {
	switch v := block.(type) {
	case ir.Need:
		if !v.Regs.IsSubsetOf(defined) {
			return &Violation{
				Label:     label,
				Message:   "need references registers not yet defined",
				Undefined: v.Regs.Minus(defined),
				Defined:   defined,
			}
		}
		return checkBlock(program, label, v.Next, v.Regs.Clone())

	case ir.Push:
		used := regset.RegistersOfValue(v.Value)
		if !used.IsSubsetOf(defined) {
			return &Violation{Label: label, Message: "push references undefined registers",
				Undefined: used.Minus(defined), Defined: defined}
		}
		return checkBlock(program, label, v.Next, defined)

	case ir.Pop:
		return checkBlock(program, label, v.Next, defined.Union(regset.Registers(v.Pattern)))

	case ir.DefPattern:
		used := regset.RegistersOfValue(v.Value)
		if !used.IsSubsetOf(defined) {
			return &Violation{Label: label, Message: "def references undefined registers",
				Undefined: used.Minus(defined), Defined: defined}
		}
		return checkBlock(program, label, v.Next, defined.Union(regset.Registers(v.Pattern)))

	case ir.DefBindings:
		next := defined.Clone()
		for _, b := range v.Bindings {
			used := regset.RegistersOfValue(b.Value)
			if !used.IsSubsetOf(defined) {
				return &Violation{Label: label, Message: "def(bindings) references undefined registers",
					Undefined: used.Minus(defined), Defined: defined}
			}
			next.Add(b.Reg)
		}
		return checkBlock(program, label, v.Next, next)

	case ir.Prim:
		used := ir.NewRegSet(v.Prim.Registers()...)
		if !used.IsSubsetOf(defined) {
			return &Violation{Label: label, Message: "prim references undefined registers",
				Undefined: used.Minus(defined), Defined: defined}
		}
		next := defined.Clone()
		next.Add(v.Result)
		return checkBlock(program, label, v.Next, next)

	case ir.Trace:
		return checkBlock(program, label, v.Next, defined)

	case ir.Comment:
		return checkBlock(program, label, v.Next, defined)

	case ir.Die:
		return nil

	case ir.Return:
		if !defined.Contains(v.Reg) {
			return &Violation{Label: label, Message: "return of undefined register",
				Undefined: ir.NewRegSet(v.Reg), Defined: defined}
		}
		return nil

	case ir.Jump:
		return checkJumpTarget(program, label, v.Label, defined)

	case ir.JumpBindings:
		next := defined.Clone()
		for _, b := range v.Bindings {
			used := regset.RegistersOfValue(b.Value)
			if !used.IsSubsetOf(defined) {
				return &Violation{Label: label, Message: "jump bindings reference undefined registers",
					Undefined: used.Minus(defined), Defined: defined}
			}
			next.Add(b.Reg)
		}
		return checkJumpTarget(program, label, v.Label, next)

	case ir.CaseToken:
		if !defined.Contains(v.Reg) {
			return &Violation{Label: label, Message: "case_token dispatch register is undefined",
				Undefined: ir.NewRegSet(v.Reg), Defined: defined}
		}
		for _, br := range v.Branches {
			branchDefined := defined.Clone()
			if single, ok := br.Pattern.(ir.TokSingle); ok {
				branchDefined.Add(single.Reg)
			}
			if err := checkBlock(program, label, br.Body, branchDefined); err != nil {
				return err
			}
		}
		if v.Default != nil {
			if err := checkBlock(program, label, v.Default, defined); err != nil {
				return err
			}
		}
		return nil

	case ir.CaseTag:
		if !defined.Contains(v.Reg) {
			return &Violation{Label: label, Message: "case_tag dispatch register is undefined",
				Undefined: ir.NewRegSet(v.Reg), Defined: defined}
		}
		for _, br := range v.Branches {
			if err := checkBlock(program, label, br.Body, defined.Clone()); err != nil {
				return err
			}
		}
		return nil

	case *ir.TypedBlock:
		if !v.NeededRegisters.IsSubsetOf(defined) {
			return &Violation{Label: label, Message: "typed block entered without its needed registers defined",
				Undefined: v.NeededRegisters.Minus(defined), Defined: defined}
		}
		return checkBlock(program, label, v.Body, v.NeededRegisters.Clone())

	default:
		return fmt.Errorf("wf: unhandled instruction form %T", block)
	}
}

func checkJumpTarget(program *ir.Program, fromLabel string, target ir.Label, defined ir.RegSet) error {
	tb, ok := program.CFG[target]
	if !ok {
		return &Violation{Label: fromLabel, Message: fmt.Sprintf("jump to missing label %q", target)}
	}
	if !tb.NeededRegisters.IsSubsetOf(defined) {
		return &Violation{
			Label:     fromLabel,
			Message:   fmt.Sprintf("jump to %q needs registers not defined at the jump site", target),
			Undefined: tb.NeededRegisters.Minus(defined),
			Defined:   defined,
		}
	}
	return nil
}
