// Package inline implements the inliner: it drops unreachable blocks and
// splices blocks with in-degree 1 into their sole predecessor, preserving
// the typed-block boundary so downstream passes still see the
// spliced-in block's stack-shape contract.
package inline

import (
	"stacklang/internal/stacklang/cfg"
	"stacklang/internal/stacklang/ir"
)

// Inline returns a new program with unreachable labels dropped and
// in-degree-1 labels spliced away.
func Inline(program *ir.Program) *ir.Program {
	degree := cfg.InDegree(program)

	out := ir.NewProgram()
	for nt, l := range program.Entry {
		out.Entry[nt] = l
	}
	out.States = program.States

	inlinable := func(l ir.Label) bool {
		d, reachable := degree[l]
		return reachable && d == 1
	}

	for label, tb := range program.CFG {
		if _, reachable := degree[label]; !reachable {
			continue // step 1: drop unreachable
		}
		if inlinable(label) {
			continue // step 2: will be spliced into its sole predecessor
		}
		out.CFG[label] = spliceTypedBlock(program, tb, inlinable)
	}

	return out
}

func spliceTypedBlock(program *ir.Program, tb *ir.TypedBlock, inlinable func(ir.Label) bool) *ir.TypedBlock {
	return ir.TypedBlockInstr(
		spliceBlock(program, tb.Body, inlinable),
		tb.StackType, tb.FinalType, tb.NeededRegisters, tb.HasCaseTag, tb.Name,
	)
}

// spliceBlock rewrites every Jump/JumpBindings whose target has in-degree 1
// by inlining a copy of that target's body, recursing into the spliced-in
// body so chains of singly-referenced blocks fully collapse.
func spliceBlock(program *ir.Program, block ir.Block, inlinable func(ir.Label) bool) ir.Block {
	switch v := block.(type) {
	case ir.Jump:
		if inlinable(v.Label) {
			target := program.CFG[v.Label]
			return spliceTypedBlock(program, target, inlinable)
		}
		return v
	case ir.JumpBindings:
		if inlinable(v.Label) {
			target := program.CFG[v.Label]
			spliced := spliceTypedBlock(program, target, inlinable)
			return ir.DefBindingsInstr(v.Bindings, spliced)
		}
		return v
	default:
		return ir.MapChildren(block, func(c ir.Block) ir.Block {
			return spliceBlock(program, c, inlinable)
		})
	}
}
