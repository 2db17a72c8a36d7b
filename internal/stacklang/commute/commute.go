// Package commute implements the push-commutation pass — the dominant
// transformation in this backend. Dead-branch elimination is folded into
// the same walk (commuteCaseTag): a CaseTag whose register is bound to a
// known Tag keeps only the matching branch. There is no separate
// dead-branch pass, and no set of possible states is threaded, so a
// CaseTag on a register that is not bound to a constant tag is left whole.
//
// Push commutation delays a Push past instructions that don't inspect its
// cell, so it can cancel against its matching Pop instead of materializing
// on the runtime stack at all.
package commute

import (
	"fmt"

	"stacklang/internal/stacklang/ir"
	"stacklang/internal/stacklang/regset"
	"stacklang/internal/stacklang/subst"
)

// Stats counts the progress a pass made: if both are zero the pass
// returns the original block unchanged, preserving identity for
// idempotence.
type Stats struct {
	CancelledPop       int
	EliminatedBranches int
}

func (s Stats) Changed() bool { return s.CancelledPop != 0 || s.EliminatedBranches != 0 }

func (s *Stats) add(other Stats) {
	s.CancelledPop += other.CancelledPop
	s.EliminatedBranches += other.EliminatedBranches
}

// pendingPush is one entry of the commuter's ordered push list: newest at
// index 0.
type pendingPush struct {
	Value ir.Value
	Cell  ir.CellInfo
	ID    int
}

// counter is the fresh-name generator: a mutable counter, created anew for
// each cfg block so output stays deterministic regardless of map order.
type counter struct{ n int }

func (c *counter) next() int {
	c.n++
	return c.n
}

func freshRegister(c *counter, base ir.Register) ir.Register {
	return ir.Register(fmt.Sprintf("%s_%d", base, c.next()))
}

type state struct {
	pushes     []pendingPush
	bindings   subst.Subst
	finalType  *string
	knownCells []ir.CellInfo
}

// Commute runs push commutation over every block in program, returning the
// transformed program and the aggregate stats across all blocks.
func Commute(program *ir.Program) (*ir.Program, Stats) {
	out := ir.NewProgram()
	for nt, l := range program.Entry {
		out.Entry[nt] = l
	}
	out.States = program.States

	var total Stats
	for label, tb := range program.CFG {
		c := &counter{}
		var stats Stats
		st := state{bindings: subst.Empty(), finalType: tb.FinalType, knownCells: tb.StackType}
		rebuilt := walk(program, tb, st, c, &stats)
		total.add(stats)
		if !stats.Changed() {
			out.CFG[label] = tb
			continue
		}
		out.CFG[label] = rebuilt.(*ir.TypedBlock)
	}
	return out, total
}

func pushesReference(pushes []pendingPush, r ir.Register) bool {
	for _, p := range pushes {
		if regset.RegistersOfValue(p.Value).Contains(r) {
			return true
		}
	}
	return false
}

// restorePushes materializes pending pushes in the reverse of the list
// order (oldest first) so the newest push ends up topmost on the runtime
// stack, matching the original program's layout.
func restorePushes(pushes []pendingPush, node ir.Block) ir.Block {
	result := node
	for i := 0; i < len(pushes); i++ {
		result = ir.PushInstr(pushes[i].Value, pushes[i].Cell, result)
	}
	return result
}

func pushedRegisters(pushes []pendingPush) ir.RegSet {
	out := make(ir.RegSet)
	for _, p := range pushes {
		out = out.Union(regset.RegistersOfValue(p.Value))
	}
	return out
}

func applyPrim(s subst.Subst, p ir.Primitive) ir.Primitive {
	substReg := func(r ir.Register) ir.Register {
		if reg, ok := s.Apply(ir.Reg{Name: r}).(ir.Reg); ok {
			return reg.Name
		}
		return r
	}
	switch v := p.(type) {
	case ir.CallPrim:
		args := make([]ir.Register, len(v.Args))
		for i, a := range v.Args {
			args[i] = substReg(a)
		}
		return ir.CallPrim{Func: v.Func, Args: args}
	case ir.FieldPrim:
		return ir.FieldPrim{Base: substReg(v.Base), Field: v.Field}
	case ir.PositionPrim:
		return v
	case ir.ActionPrim:
		return ir.ActionPrim{ActionID: v.ActionID, Bindings: s.ApplyBindings(v.Bindings)}
	default:
		return p
	}
}

func bindingsToSubst(bindings []ir.Binding) subst.Subst {
	s := subst.Empty()
	for _, b := range bindings {
		s = s.Add(b.Reg, b.Value)
	}
	return s
}

func walk(program *ir.Program, block ir.Block, st state, c *counter, stats *Stats) ir.Block {
	switch v := block.(type) {
	case ir.Need:
		rewritten := make(ir.RegSet)
		for r := range v.Regs {
			rewritten = rewritten.Union(regset.RegistersOfValue(st.bindings.Apply(ir.Reg{Name: r})))
		}
		rewritten = rewritten.Union(pushedRegisters(st.pushes))
		next := walk(program, v.Next, st, c, stats)
		return ir.NeedInstr(rewritten, next)

	case ir.Push:
		value := st.bindings.Apply(v.Value)
		id := c.next()
		newState := st
		newState.pushes = append([]pendingPush{{Value: value, Cell: v.Cell, ID: id}}, st.pushes...)
		next := walk(program, v.Next, newState, c, stats)
		return ir.CommentInstr(fmt.Sprintf("Commuting push_%d %s", id, value), next)

	case ir.Pop:
		if len(st.pushes) == 0 {
			if len(st.knownCells) == 0 {
				panic("commute: pop with no pending commuted push and an empty known-cell stack")
			}
			newState := st
			newState.knownCells = st.knownCells[:len(st.knownCells)-1]
			newState.bindings = st.bindings.Remove(v.Pattern)
			next := walk(program, v.Next, newState, c, stats)
			return ir.PopInstr(v.Pattern, next)
		}

		head := st.pushes[0]
		if !subst.PatternMatches(v.Pattern, head.Value) {
			// The pending push's value doesn't structurally match the
			// pop's pattern (e.g. a bare Reg standing in for a whole
			// PTuple): cancelling would drop the pop and leave the
			// pattern's registers undefined. Materialize just this one
			// push and do a genuine pop against it instead.
			newState := st
			newState.pushes = st.pushes[1:]
			newState.bindings = st.bindings.Remove(v.Pattern)
			next := walk(program, v.Next, newState, c, stats)
			return ir.PushInstr(head.Value, head.Cell, ir.PopInstr(v.Pattern, next))
		}

		newState := st
		newState.pushes = st.pushes[1:]
		newState.bindings = st.bindings.RemoveValue(head.Value)
		newState.bindings = subst.ExtendPattern(newState.bindings, v.Pattern, head.Value)
		stats.CancelledPop++
		next := walk(program, v.Next, newState, c, stats)
		return ir.CommentInstr(fmt.Sprintf("Cancelled push_%d against %s", head.ID, v.Pattern), next)

	case ir.DefPattern:
		extended := subst.ExtendPattern(subst.Empty(), v.Pattern, v.Value)
		newState := st
		newState.bindings = subst.Compose(st.bindings, extended)
		next := walk(program, v.Next, newState, c, stats)
		return ir.CommentInstr(fmt.Sprintf("Inlining def %s = %s", v.Pattern, v.Value), next)

	case ir.DefBindings:
		extended := bindingsToSubst(v.Bindings)
		newState := st
		newState.bindings = subst.Compose(st.bindings, extended)
		next := walk(program, v.Next, newState, c, stats)
		return ir.CommentInstr(fmt.Sprintf("Inlining def %v", v.Bindings), next)

	case ir.Prim:
		result := v.Result
		newState := st
		if pushesReference(st.pushes, v.Result) {
			result = freshRegister(c, v.Result)
			newState.bindings = st.bindings.Add(v.Result, ir.Reg{Name: result})
		}
		newPrim := applyPrim(st.bindings, v.Prim)
		next := walk(program, v.Next, newState, c, stats)
		return ir.PrimInstr(result, newPrim, next)

	case ir.Trace:
		return ir.TraceInstr(v.Text, walk(program, v.Next, st, c, stats))

	case ir.Comment:
		return ir.CommentInstr(v.Text, walk(program, v.Next, st, c, stats))

	case ir.Die:
		stats.CancelledPop += len(st.pushes)
		return ir.DieInstr()

	case ir.Return:
		stats.CancelledPop += len(st.pushes)
		applied := st.bindings.Apply(ir.Reg{Name: v.Reg})
		var node ir.Block
		if reg, ok := applied.(ir.Reg); ok {
			node = ir.ReturnInstr(reg.Name)
		} else {
			node = subst.RestoreDefs(subst.Singleton(v.Reg, applied), ir.ReturnInstr(v.Reg))
		}
		return restorePushes(st.pushes, node)

	case ir.Jump:
		return commuteJump(program, nil, v.Label, st, stats)

	case ir.JumpBindings:
		return commuteJump(program, v.Bindings, v.Label, st, stats)

	case ir.CaseToken:
		branches := make([]ir.TokenBranch, len(v.Branches))
		for i, br := range v.Branches {
			branchState := st
			pattern := br.Pattern
			if single, ok := br.Pattern.(ir.TokSingle); ok && pushesReference(st.pushes, single.Reg) {
				fresh := freshRegister(c, single.Reg)
				branchState.bindings = st.bindings.Add(single.Reg, ir.Reg{Name: fresh})
				pattern = ir.TokSingle{Terminal: single.Terminal, Reg: fresh}
			}
			branches[i] = ir.TokenBranch{Pattern: pattern, Body: walk(program, br.Body, branchState, c, stats)}
		}
		var def ir.Block
		if v.Default != nil {
			def = walk(program, v.Default, st, c, stats)
		}
		return ir.CaseTokenInstr(v.Reg, branches, def)

	case ir.CaseTag:
		return commuteCaseTag(program, v, st, c, stats)

	case *ir.TypedBlock:
		shrink := len(st.pushes)
		if shrink > len(v.StackType) {
			shrink = len(v.StackType)
		}
		newStackType := v.StackType[:len(v.StackType)-shrink]

		newNeeded := v.NeededRegisters.Union(pushedRegisters(st.pushes))

		newFinalType := v.FinalType
		if st.finalType != nil {
			newFinalType = st.finalType
		}

		newState := st
		newState.knownCells = longestCommonPrefix(v.StackType, st.knownCells)
		newState.finalType = newFinalType

		body := walk(program, v.Body, newState, c, stats)
		return ir.TypedBlockInstr(body, newStackType, newFinalType, newNeeded, v.HasCaseTag, v.Name)

	default:
		panic(fmt.Sprintf("commute: unhandled instruction form %T", block))
	}
}

func commuteJump(program *ir.Program, attached []ir.Binding, label ir.Label, st state, stats *Stats) ir.Block {
	composed := subst.Compose(st.bindings, bindingsToSubst(attached))
	rules := composed.Rules()

	var node ir.Block
	if len(rules) == 0 {
		node = ir.JumpInstr(label)
	} else {
		node = ir.JumpBindingsInstr(rules, label)
	}
	return restorePushes(st.pushes, node)
}

// longestCommonPrefix returns the longest prefix shared by a and b,
// comparing cells by value.
func longestCommonPrefix(a, b []ir.CellInfo) []ir.CellInfo {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	out := make([]ir.CellInfo, i)
	copy(out, a[:i])
	return out
}
