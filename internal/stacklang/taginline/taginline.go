// Package taginline implements the tag inliner: when a constant Tag(t)
// is assigned to a register and later read, the assignment is dropped
// and the constant substituted into every value that reads it. Where an
// instruction names the register directly (a return, a case, a primitive
// argument, a need, a jump target's needed registers), the def is restored
// just before that instruction, so dispatch on the register (a later
// CaseTag) still sees the constant and can be statically resolved by push
// commutation.
//
// Correctness rests on tag-valued definitions being single-assignment
// along any control-flow path, an invariant the upstream emitter
// guarantees.
package taginline

import (
	"stacklang/internal/stacklang/ir"
	"stacklang/internal/stacklang/subst"
)

// TagInline returns a new program with tag-constant definitions propagated
// and dropped wherever provably safe to do so.
func TagInline(program *ir.Program) *ir.Program {
	out := ir.NewProgram()
	for nt, l := range program.Entry {
		out.Entry[nt] = l
	}
	out.States = program.States

	for label, tb := range program.CFG {
		out.CFG[label] = walk(program, tb, subst.Empty()).(*ir.TypedBlock)
	}
	return out
}

func walk(program *ir.Program, block ir.Block, s subst.Subst) ir.Block {
	switch v := block.(type) {
	case ir.DefPattern:
		if preg, ok := v.Pattern.(ir.PReg); ok {
			if tag, ok := v.Value.(ir.Tag); ok {
				// Record the constant and drop the def: it will be
				// rematerialized (if still needed) at a jump or flush
				// boundary.
				return walk(program, v.Next, s.Add(preg.Name, tag))
			}
		}
		newVal := s.Apply(v.Value)
		next := walk(program, v.Next, s.Remove(v.Pattern))
		return ir.DefInstr(v.Pattern, newVal, next)

	case ir.DefBindings:
		applied := s.ApplyBindings(v.Bindings)
		news := s
		for _, b := range v.Bindings {
			news = news.Remove(ir.PReg{Name: b.Reg})
		}
		return ir.DefBindingsInstr(applied, walk(program, v.Next, news))

	case ir.Push:
		return ir.PushInstr(s.Apply(v.Value), v.Cell, walk(program, v.Next, s))

	case ir.Pop:
		next := walk(program, v.Next, s.Remove(v.Pattern))
		return ir.PopInstr(v.Pattern, next)

	case ir.Prim:
		next := walk(program, v.Next, s.Remove(ir.PReg{Name: v.Result}))
		return subst.TightRestoreDefs(s, ir.NewRegSet(v.Prim.Registers()...), ir.PrimInstr(v.Result, v.Prim, next))

	case ir.Trace:
		return ir.TraceInstr(v.Text, walk(program, v.Next, s))

	case ir.Comment:
		return ir.CommentInstr(v.Text, walk(program, v.Next, s))

	case ir.Need:
		return subst.TightRestoreDefs(s, v.Regs, ir.NeedInstr(v.Regs, walk(program, v.Next, s)))

	case ir.Die:
		return v

	case ir.Return:
		// Return reads a bare register, not a substitutable Value, but it
		// is still a point where a dropped tag-constant def must become
		// visible again if nothing later would have restored it.
		if _, bound := s.Lookup(v.Reg); bound {
			return subst.TightRestoreDefs(s, ir.NewRegSet(v.Reg), v)
		}
		return v

	case ir.Jump:
		target, ok := program.CFG[v.Label]
		if !ok {
			return v
		}
		return subst.TightRestoreDefs(s, target.NeededRegisters, ir.JumpInstr(v.Label))

	case ir.JumpBindings:
		applied := s.ApplyBindings(v.Bindings)
		boundByJump := make(ir.RegSet, len(applied))
		for _, b := range applied {
			boundByJump.Add(b.Reg)
		}
		jump := ir.JumpBindingsInstr(applied, v.Label)
		target, ok := program.CFG[v.Label]
		if !ok {
			return jump
		}
		needed := target.NeededRegisters.Minus(boundByJump)
		return subst.TightRestoreDefs(s, needed, jump)

	case ir.CaseToken:
		branches := make([]ir.TokenBranch, len(v.Branches))
		for i, br := range v.Branches {
			branches[i] = ir.TokenBranch{Pattern: br.Pattern, Body: walk(program, br.Body, s)}
		}
		var def ir.Block
		if v.Default != nil {
			def = walk(program, v.Default, s)
		}
		return subst.TightRestoreDefs(s, ir.NewRegSet(v.Reg), ir.CaseTokenInstr(v.Reg, branches, def))

	case ir.CaseTag:
		branches := make([]ir.TagBranch, len(v.Branches))
		for i, br := range v.Branches {
			branches[i] = ir.TagBranch{Tags: br.Tags, Body: walk(program, br.Body, s)}
		}
		return subst.TightRestoreDefs(s, ir.NewRegSet(v.Reg), ir.CaseTagInstr(v.Reg, branches))

	case *ir.TypedBlock:
		if v.HasCaseTag {
			newBody := walk(program, v.Body, subst.Empty())
			flushed := ir.TypedBlockInstr(newBody, v.StackType, v.FinalType, v.NeededRegisters, v.HasCaseTag, v.Name)
			return subst.RestoreDefs(s, flushed)
		}
		newBody := walk(program, v.Body, s)
		return subst.TightRestoreDefs(s, v.NeededRegisters, ir.TypedBlockInstr(newBody, v.StackType, v.FinalType, v.NeededRegisters, v.HasCaseTag, v.Name))

	default:
		panic("taginline: unhandled instruction form")
	}
}
