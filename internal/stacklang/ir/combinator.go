package ir

// MapChildren is the generic structural-recursion combinator: a pass
// written as a type switch can override the cases it cares about and fall
// back to MapChildren for everything else (inline and cfg do), instead of
// re-deriving a full traversal.
//
// MapChildren visits exactly one instruction level: it replaces every
// direct sub-block of b with f(sub) and returns the rebuilt node. It does
// not recurse into f's result — that recursion is f's job, typically by
// calling itself.
func MapChildren(b Block, f func(Block) Block) Block {
	switch v := b.(type) {
	case Need:
		return Need{Regs: v.Regs, Next: f(v.Next)}
	case Push:
		return Push{Value: v.Value, Cell: v.Cell, Next: f(v.Next)}
	case Pop:
		return Pop{Pattern: v.Pattern, Next: f(v.Next)}
	case DefPattern:
		return DefPattern{Pattern: v.Pattern, Value: v.Value, Next: f(v.Next)}
	case DefBindings:
		return DefBindings{Bindings: v.Bindings, Next: f(v.Next)}
	case Prim:
		return Prim{Result: v.Result, Prim: v.Prim, Next: f(v.Next)}
	case Trace:
		return Trace{Text: v.Text, Next: f(v.Next)}
	case Comment:
		return Comment{Text: v.Text, Next: f(v.Next)}
	case Die:
		return v
	case Return:
		return v
	case Jump:
		return v
	case JumpBindings:
		return v
	case CaseToken:
		branches := make([]TokenBranch, len(v.Branches))
		for i, br := range v.Branches {
			branches[i] = TokenBranch{Pattern: br.Pattern, Body: f(br.Body)}
		}
		var def Block
		if v.Default != nil {
			def = f(v.Default)
		}
		return CaseToken{Reg: v.Reg, Branches: branches, Default: def}
	case CaseTag:
		branches := make([]TagBranch, len(v.Branches))
		for i, br := range v.Branches {
			branches[i] = TagBranch{Tags: br.Tags, Body: f(br.Body)}
		}
		return CaseTag{Reg: v.Reg, Branches: branches}
	case *TypedBlock:
		return &TypedBlock{
			Body:            f(v.Body),
			StackType:       v.StackType,
			FinalType:       v.FinalType,
			NeededRegisters: v.NeededRegisters,
			HasCaseTag:      v.HasCaseTag,
			Name:            v.Name,
		}
	default:
		panic("ir.MapChildren: unhandled instruction form")
	}
}

// IterChildren is MapChildren's read-only twin: it calls f once per direct
// sub-block without rebuilding anything. Used by passes (CFG traversal)
// that only need to observe, not transform.
func IterChildren(b Block, f func(Block)) {
	MapChildren(b, func(c Block) Block {
		f(c)
		return c
	})
}
