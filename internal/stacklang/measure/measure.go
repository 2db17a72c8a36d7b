// Package measure counts the instruction forms in a program. A
// Measurement is the per-pass "before/after" snapshot the reporter
// prints to show what a pass actually did.
package measure

import "stacklang/internal/stacklang/ir"

// Measurement is a per-instruction-kind count. Total always equals the sum
// of the other fields — enforced by construction, not by a separate
// invariant check, since Count is the only constructor.
type Measurement struct {
	Need         int
	Push         int
	Pop          int
	Def          int
	Prim         int
	Trace        int
	Comment      int
	Die          int
	Return       int
	Jump         int
	CaseToken    int
	CaseTag      int
	TypedBlock   int
	Total        int
}

// Count walks every block reachable from program's cfg and tallies each
// instruction kind.
func Count(program *ir.Program) Measurement {
	var m Measurement
	for _, tb := range program.CFG {
		countBlock(tb, &m)
	}
	return m
}

func countBlock(b ir.Block, m *Measurement) {
	m.Total++
	switch v := b.(type) {
	case ir.Need:
		m.Need++
		countBlock(v.Next, m)
	case ir.Push:
		m.Push++
		countBlock(v.Next, m)
	case ir.Pop:
		m.Pop++
		countBlock(v.Next, m)
	case ir.DefPattern:
		m.Def++
		countBlock(v.Next, m)
	case ir.DefBindings:
		m.Def++
		countBlock(v.Next, m)
	case ir.Prim:
		m.Prim++
		countBlock(v.Next, m)
	case ir.Trace:
		m.Trace++
		countBlock(v.Next, m)
	case ir.Comment:
		m.Comment++
		countBlock(v.Next, m)
	case ir.Die:
		m.Die++
	case ir.Return:
		m.Return++
	case ir.Jump:
		m.Jump++
	case ir.JumpBindings:
		m.Jump++
	case ir.CaseToken:
		m.CaseToken++
		for _, br := range v.Branches {
			countBlock(br.Body, m)
		}
		if v.Default != nil {
			countBlock(v.Default, m)
		}
	case ir.CaseTag:
		m.CaseTag++
		for _, br := range v.Branches {
			countBlock(br.Body, m)
		}
	case *ir.TypedBlock:
		m.TypedBlock++
		countBlock(v.Body, m)
	default:
		panic("measure: unhandled instruction form")
	}
}

// Delta reports how much progress a pass made between two measurements
// taken before and after, keyed by the field that changed — used by the
// reporter to render the "what this pass did" line without repeating the
// full table when nothing moved.
func Delta(before, after Measurement) map[string]int {
	out := make(map[string]int)
	add := func(name string, b, a int) {
		if b != a {
			out[name] = a - b
		}
	}
	add("need", before.Need, after.Need)
	add("push", before.Push, after.Push)
	add("pop", before.Pop, after.Pop)
	add("def", before.Def, after.Def)
	add("prim", before.Prim, after.Prim)
	add("trace", before.Trace, after.Trace)
	add("comment", before.Comment, after.Comment)
	add("die", before.Die, after.Die)
	add("return", before.Return, after.Return)
	add("jump", before.Jump, after.Jump)
	add("case_token", before.CaseToken, after.CaseToken)
	add("case_tag", before.CaseTag, after.CaseTag)
	add("typed_block", before.TypedBlock, after.TypedBlock)
	return out
}
