package commute

import "stacklang/internal/stacklang/ir"

// commuteCaseTag implements both push commutation's treatment of CaseTag
// and dead-branch elimination, which runs as part of the same walk: once
// the dispatched register is known to be exactly one tag, every other
// branch is unreachable and is dropped.
func commuteCaseTag(program *ir.Program, v ir.CaseTag, st state, c *counter, stats *Stats) ir.Block {
	applied := st.bindings.Apply(ir.Reg{Name: v.Reg})

	if tag, ok := applied.(ir.Tag); ok {
		for _, br := range v.Branches {
			if _, ok := br.Tags[tag.N]; !ok {
				continue
			}
			stats.EliminatedBranches += len(v.Branches) - 1
			branchState := st
			branchState.finalType, branchState.knownCells = refineFromTag(program, tag.N, st.finalType, st.knownCells)
			body := walk(program, br.Body, branchState, c, stats)
			return ir.CommentInstr("Eliminated case tag", body)
		}
		// No branch covers this tag: the program is only well-formed if
		// every branch set is exhaustive, so this indicates an upstream
		// bug rather than a runtime condition to recover from.
		panic("commute: case_tag has no branch covering a statically known tag")
	}

	dispatchReg := v.Reg
	if reg, ok := applied.(ir.Reg); ok {
		dispatchReg = reg.Name
	}

	branches := make([]ir.TagBranch, len(v.Branches))
	for i, br := range v.Branches {
		branchState := st
		branchState.finalType, branchState.knownCells = refineFromTags(program, br.Tags, st.finalType, st.knownCells)
		if len(br.Tags) == 1 {
			for t := range br.Tags {
				branchState.bindings = st.bindings.Add(dispatchReg, ir.Tag{N: t})
			}
		}
		branches[i] = ir.TagBranch{Tags: br.Tags, Body: walk(program, br.Body, branchState, c, stats)}
	}
	return ir.CaseTagInstr(dispatchReg, branches)
}

func refineFromTag(program *ir.Program, tag int, fallbackType *string, fallbackCells []ir.CellInfo) (*string, []ir.CellInfo) {
	info, ok := program.States.Lookup(tag)
	if !ok {
		return fallbackType, fallbackCells
	}
	finalType := fallbackType
	if info.FinalType != nil {
		finalType = info.FinalType
	}
	return finalType, longestCommonPrefix(info.KnownCells, fallbackCells)
}

// refineFromTags merges the state info of every tag in a TagMultiple branch:
// the known-cell prefix is the longest prefix common to all of them, and
// the final type is only kept when every tag agrees on it.
func refineFromTags(program *ir.Program, tags map[int]struct{}, fallbackType *string, fallbackCells []ir.CellInfo) (*string, []ir.CellInfo) {
	var cells []ir.CellInfo
	var finalType *string
	first := true
	agree := true

	for t := range tags {
		info, ok := program.States.Lookup(t)
		if !ok {
			agree = false
			continue
		}
		if first {
			cells = info.KnownCells
			finalType = info.FinalType
			first = false
			continue
		}
		cells = longestCommonPrefix(cells, info.KnownCells)
		if finalType == nil || info.FinalType == nil || *finalType != *info.FinalType {
			finalType = nil
		}
	}

	if first {
		return fallbackType, fallbackCells
	}
	cells = longestCommonPrefix(cells, fallbackCells)
	if !agree {
		finalType = fallbackType
	} else if finalType == nil {
		finalType = fallbackType
	}
	return finalType, cells
}
