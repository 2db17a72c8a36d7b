package ir

// Smart constructors. These exist so callers (builders, passes, tests)
// never build the instruction structs by hand and so that invariants that
// belong at construction time (pattern linearity) are enforced in one
// place.

func NeedInstr(regs RegSet, next Block) Block { return Need{Regs: regs, Next: next} }

func PushInstr(v Value, cell CellInfo, next Block) Block {
	return Push{Value: v, Cell: cell, Next: next}
}

func PopInstr(p Pattern, next Block) Block { return Pop{Pattern: p, Next: next} }

func DefInstr(p Pattern, v Value, next Block) Block {
	return DefPattern{Pattern: p, Value: v, Next: next}
}

func DefBindingsInstr(bindings []Binding, next Block) Block {
	return DefBindings{Bindings: bindings, Next: next}
}

func PrimInstr(result Register, prim Primitive, next Block) Block {
	return Prim{Result: result, Prim: prim, Next: next}
}

func TraceInstr(text string, next Block) Block { return Trace{Text: text, Next: next} }

func CommentInstr(text string, next Block) Block { return Comment{Text: text, Next: next} }

func DieInstr() Block { return Die{} }

func ReturnInstr(r Register) Block { return Return{Reg: r} }

func JumpInstr(label Label) Block { return Jump{Label: label} }

func JumpBindingsInstr(bindings []Binding, label Label) Block {
	return JumpBindings{Bindings: bindings, Label: label}
}

func CaseTokenInstr(r Register, branches []TokenBranch, def Block) Block {
	return CaseToken{Reg: r, Branches: branches, Default: def}
}

func CaseTagInstr(r Register, branches []TagBranch) Block {
	return CaseTag{Reg: r, Branches: branches}
}

func TypedBlockInstr(body Block, stackType []CellInfo, finalType *string, needed RegSet, hasCaseTag bool, name string) *TypedBlock {
	return &TypedBlock{
		Body:            body,
		StackType:       stackType,
		FinalType:       finalType,
		NeededRegisters: needed,
		HasCaseTag:      hasCaseTag,
		Name:            name,
	}
}
