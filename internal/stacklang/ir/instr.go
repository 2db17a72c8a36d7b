package ir

import "fmt"

// Block is a cons-list of instructions terminated by a control-flow leaf.
// Every instruction form (Need, Push, Pop, Def, Prim, Trace, Comment, Die,
// Return, Jump, CaseToken, CaseTag, TypedBlock) implements Block.
//
// Non-terminal forms hold their continuation directly (a "k" in the usual
// continuation-passing sense); terminal forms end the block.
type Block interface {
	isBlock()
	// IsTerminal reports whether this node ends a block (no continuation).
	IsTerminal() bool
	String() string
}

// ---- Non-terminal forms ----

// Need declares that only registers in Regs are live on entry to Next;
// registers not in Regs become undefined. Need *replaces*, not extends,
// the accumulated defined set.
type Need struct {
	Regs RegSet
	Next Block
}

func (Need) isBlock()        {}
func (Need) IsTerminal() bool { return false }
func (n Need) String() string { return fmt.Sprintf("need(%v)", n.Regs.Slice()) }

// Push pushes Value onto the stack, annotated with symbolic cell info.
type Push struct {
	Value Value
	Cell  CellInfo
	Next  Block
}

func (Push) isBlock()        {}
func (Push) IsTerminal() bool { return false }
func (p Push) String() string { return fmt.Sprintf("push(%s : %s)", p.Value, p.Cell) }

// Pop pops the top of the stack into Pattern.
type Pop struct {
	Pattern Pattern
	Next    Block
}

func (Pop) isBlock()        {}
func (Pop) IsTerminal() bool { return false }
func (p Pop) String() string { return fmt.Sprintf("pop(%s)", p.Pattern) }

// DefPattern binds Pattern to Value.
type DefPattern struct {
	Pattern Pattern
	Value   Value
	Next    Block
}

func (DefPattern) isBlock()        {}
func (DefPattern) IsTerminal() bool { return false }
func (d DefPattern) String() string {
	return fmt.Sprintf("def(%s = %s)", d.Pattern, d.Value)
}

// DefBindings applies a composite bindings map in one step (the form the
// inliner produces when it splices in the target of a JumpBindings).
type DefBindings struct {
	Bindings []Binding
	Next     Block
}

func (DefBindings) isBlock()        {}
func (DefBindings) IsTerminal() bool { return false }
func (d DefBindings) String() string { return fmt.Sprintf("def(%v)", d.Bindings) }

// Prim assigns the result of Prim to Result.
type Prim struct {
	Result Register
	Prim   Primitive
	Next   Block
}

func (Prim) isBlock()        {}
func (Prim) IsTerminal() bool { return false }
func (p Prim) String() string { return fmt.Sprintf("%s = %s", p.Result, p.Prim) }

// Trace is a side-effect-only trace instruction; semantically transparent.
type Trace struct {
	Text string
	Next Block
}

func (Trace) isBlock()        {}
func (Trace) IsTerminal() bool { return false }
func (t Trace) String() string { return fmt.Sprintf("trace(%q)", t.Text) }

// Comment is a pure annotation; semantically transparent.
type Comment struct {
	Text string
	Next Block
}

func (Comment) isBlock()        {}
func (Comment) IsTerminal() bool { return false }
func (c Comment) String() string { return fmt.Sprintf("; %s", c.Text) }

// ---- Terminal forms ----

// Die aborts execution.
type Die struct{}

func (Die) isBlock()         {}
func (Die) IsTerminal() bool { return true }
func (Die) String() string   { return "die" }

// Return returns the contents of Reg.
type Return struct{ Reg Register }

func (Return) isBlock()         {}
func (Return) IsTerminal() bool { return true }
func (r Return) String() string { return fmt.Sprintf("return %s", r.Reg) }

// Jump transfers control to Label.
type Jump struct{ Label Label }

func (Jump) isBlock()         {}
func (Jump) IsTerminal() bool { return true }
func (j Jump) String() string { return fmt.Sprintf("jump %s", j.Label) }

// JumpBindings transfers control to Label, applying Bindings first.
type JumpBindings struct {
	Bindings []Binding
	Label    Label
}

func (JumpBindings) isBlock()         {}
func (JumpBindings) IsTerminal() bool { return true }
func (j JumpBindings) String() string {
	return fmt.Sprintf("jump(%v) %s", j.Bindings, j.Label)
}

// TokenPattern is the sum of TokSingle and TokMultiple.
type TokenPattern interface {
	isTokenPattern()
	String() string
}

// TokSingle matches one terminal, binding its semantic payload into Reg.
type TokSingle struct {
	Terminal string
	Reg      Register
}

func (TokSingle) isTokenPattern() {}
func (t TokSingle) String() string {
	return fmt.Sprintf("%s(%s)", t.Terminal, t.Reg)
}

// TokMultiple matches any terminal in Terminals, without binding.
type TokMultiple struct{ Terminals []string }

func (TokMultiple) isTokenPattern() {}
func (t TokMultiple) String() string {
	return fmt.Sprintf("%v", t.Terminals)
}

// TokenBranch pairs a TokenPattern with the block to run when it matches.
type TokenBranch struct {
	Pattern TokenPattern
	Body    Block
}

// CaseToken dispatches on the token in Reg.
type CaseToken struct {
	Reg      Register
	Branches []TokenBranch
	Default  Block // nil if there is no default arm
}

func (CaseToken) isBlock()         {}
func (CaseToken) IsTerminal() bool { return true }
func (c CaseToken) String() string {
	return fmt.Sprintf("case_token(%s, %d branches)", c.Reg, len(c.Branches))
}

// TagBranch matches any state tag in Tags (the TagMultiple pattern).
type TagBranch struct {
	Tags map[int]struct{}
	Body Block
}

// NewTagBranch builds a TagBranch from a literal set of tags.
func NewTagBranch(body Block, tags ...int) TagBranch {
	set := make(map[int]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return TagBranch{Tags: set, Body: body}
}

func (b TagBranch) containsTag(t int) bool {
	_, ok := b.Tags[t]
	return ok
}

// CaseTag dispatches on the state tag in Reg.
type CaseTag struct {
	Reg      Register
	Branches []TagBranch
}

func (CaseTag) isBlock()         {}
func (CaseTag) IsTerminal() bool { return true }
func (c CaseTag) String() string {
	return fmt.Sprintf("case_tag(%s, %d branches)", c.Reg, len(c.Branches))
}

// TypedBlock wraps a sub-block with its stack-shape and liveness contracts.
// It is itself a Block: the program's cfg maps labels directly to
// *TypedBlock, and passes (notably the inliner) splice a jump target's body
// back in wrapped in its own TypedBlock so downstream passes still see the
// contract.
type TypedBlock struct {
	Body            Block
	StackType       []CellInfo
	FinalType       *string
	NeededRegisters RegSet
	HasCaseTag      bool
	Name            string
}

func (*TypedBlock) isBlock()         {}
func (*TypedBlock) IsTerminal() bool { return true }
func (t *TypedBlock) String() string {
	name := t.Name
	if name == "" {
		name = "<anon>"
	}
	return fmt.Sprintf("typed_block %s (stack=%v needed=%v has_case_tag=%v)",
		name, t.StackType, t.NeededRegisters.Slice(), t.HasCaseTag)
}
