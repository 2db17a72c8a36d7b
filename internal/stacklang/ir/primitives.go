package ir

import "fmt"

// Binding is one row of a bindings map: a register together with the value
// it is bound to. Def(bindings, k), Jump(bindings, label) and the
// semantic-action primitive all carry an ordered list of Bindings rather
// than a bare map, so that restoration (subst.RestoreDefs) is
// deterministic.
type Binding struct {
	Reg   Register
	Value Value
}

func (b Binding) String() string { return fmt.Sprintf("%s = %s", b.Reg, b.Value) }

// Primitive is an opaque call that cannot be inlined by the backend.
type Primitive interface {
	isPrimitive()
	// Registers names every register this primitive reads.
	Registers() []Register
	String() string
}

// CallPrim invokes a host-language function with register arguments.
type CallPrim struct {
	Func string
	Args []Register
}

func (CallPrim) isPrimitive() {}
func (c CallPrim) Registers() []Register { return c.Args }
func (c CallPrim) String() string {
	return fmt.Sprintf("call(%s, %v)", c.Func, c.Args)
}

// FieldPrim reads a field from a host-language record.
type FieldPrim struct {
	Base  Register
	Field string
}

func (FieldPrim) isPrimitive() {}
func (f FieldPrim) Registers() []Register { return []Register{f.Base} }
func (f FieldPrim) String() string {
	return fmt.Sprintf("%s.%s", f.Base, f.Field)
}

// PositionPrim synthesizes a host-language source position. It reads no
// registers.
type PositionPrim struct{}

func (PositionPrim) isPrimitive()          {}
func (PositionPrim) Registers() []Register { return nil }
func (PositionPrim) String() string        { return "position()" }

// ActionPrim invokes a host-language semantic action. It carries an opaque
// action identifier and the substitution of bindings attached to the
// invocation (e.g. by the tag inliner or push commuter, restoring deferred
// defs before the action fires).
type ActionPrim struct {
	ActionID int
	Bindings []Binding
}

func (ActionPrim) isPrimitive() {}
func (a ActionPrim) Registers() []Register {
	var regs []Register
	var collect func(v Value)
	collect = func(v Value) {
		switch x := v.(type) {
		case Reg:
			regs = append(regs, x.Name)
		case TupleValue:
			for _, e := range x.Elems {
				collect(e)
			}
		}
	}
	for _, b := range a.Bindings {
		collect(b.Value)
	}
	return regs
}
func (a ActionPrim) String() string {
	return fmt.Sprintf("action(%d, %v)", a.ActionID, a.Bindings)
}

// CellInfo is the symbolic descriptor attached to every push: the type of
// the pushed value together with its provenance (e.g. which grammar symbol
// or nonterminal produced it). It is also the element type of a typed
// block's stack_type and of a StateInfo prefix.
type CellInfo struct {
	Type       string
	Provenance string
}

func (c CellInfo) String() string {
	if c.Provenance == "" {
		return c.Type
	}
	return fmt.Sprintf("%s/%s", c.Type, c.Provenance)
}
