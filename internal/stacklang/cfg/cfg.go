// Package cfg implements control-flow traversal over a program: successor
// enumeration and in-degree computation over a Program's cfg.
//
// The cfg is a map of labels to blocks, never direct pointers — a
// worklist over map[Label]*T, the same shape a liveness/reachability
// pass takes in a register allocator.
package cfg

import "stacklang/internal/stacklang/ir"

// Successors returns every label directly reachable from block without
// crossing another terminal — i.e. it walks through Need/Push/Pop/Def/Prim/
// Trace/Comment continuations and into CaseToken/CaseTag branch bodies
// until it hits a Jump, collecting that Jump's label, or hits Die/Return
// (no successors). A nested *TypedBlock is not a terminal: the walk
// continues into its body, since the inliner splices a target's body in as
// a nested typed block and removes the target's own cfg entry.
func Successors(block ir.Block) []ir.Label {
	var out []ir.Label
	var walk func(b ir.Block)
	walk = func(b ir.Block) {
		switch v := b.(type) {
		case ir.Jump:
			out = append(out, v.Label)
		case ir.JumpBindings:
			out = append(out, v.Label)
		case ir.Die, ir.Return:
			// no successors
		case ir.CaseToken:
			for _, br := range v.Branches {
				walk(br.Body)
			}
			if v.Default != nil {
				walk(v.Default)
			}
		case ir.CaseTag:
			for _, br := range v.Branches {
				walk(br.Body)
			}
		case *ir.TypedBlock:
			walk(v.Body)
		default:
			ir.IterChildren(b, func(c ir.Block) { walk(c) })
		}
	}
	walk(block)
	return out
}

// InDegree computes, for every label reachable from an entry, how many
// incoming edges it has. Entry labels are seeded at degree 2 so they are
// never spliced away by the inliner.
//
// The result only contains reachable labels; absence from the map means
// unreachable.
func InDegree(program *ir.Program) map[ir.Label]int {
	degree := make(map[ir.Label]int)
	visited := make(map[ir.Label]bool)

	var queue []ir.Label
	for _, l := range program.Entry {
		if !visited[l] {
			visited[l] = true
			queue = append(queue, l)
		}
		degree[l] += 2
	}

	for len(queue) > 0 {
		l := queue[0]
		queue = queue[1:]

		tb, ok := program.CFG[l]
		if !ok {
			continue
		}
		for _, succ := range Successors(tb.Body) {
			degree[succ]++
			if !visited[succ] {
				visited[succ] = true
				queue = append(queue, succ)
			}
		}
	}

	return degree
}
