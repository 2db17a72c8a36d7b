// Package subst implements a register substitution: a finite mapping from
// register to value, with composition, lazy application, and the
// restoration machinery the optimization passes use to flush a pending
// substitution back into concrete Def instructions.
package subst

import (
	"fmt"

	"stacklang/internal/stacklang/ir"
	"stacklang/internal/stacklang/regset"
)

// Subst is a finite register->value mapping. Values are immutable: every
// operation returns a new Subst rather than mutating the receiver, which
// keeps the lazy-application discipline (substitutions are applied
// lazily and must honor the restoration contract) easy to reason about —
// a pass can freely fork a substitution down two branches.
//
// order preserves insertion order so RestoreDefs/TightRestoreDefs emit
// deterministic output.
type Subst struct {
	order []ir.Register
	rules map[ir.Register]ir.Value
}

// Empty returns the empty substitution.
func Empty() Subst {
	return Subst{rules: make(map[ir.Register]ir.Value)}
}

// Singleton returns the substitution {r -> v}.
func Singleton(r ir.Register, v ir.Value) Subst {
	return Empty().Add(r, v)
}

// Add returns a substitution equal to s but with r mapped to v,
// overwriting any existing rule for r.
func (s Subst) Add(r ir.Register, v ir.Value) Subst {
	out := s.clone()
	if _, exists := out.rules[r]; !exists {
		out.order = append(out.order, r)
	}
	out.rules[r] = v
	return out
}

// Lookup returns the value r maps to, if any.
func (s Subst) Lookup(r ir.Register) (ir.Value, bool) {
	v, ok := s.rules[r]
	return v, ok
}

// Len reports the number of rules.
func (s Subst) Len() int { return len(s.order) }

// Rules returns the substitution's rules in insertion order, as a bindings
// list — the shape ir.DefBindings/ir.JumpBindings carry.
func (s Subst) Rules() []ir.Binding {
	out := make([]ir.Binding, 0, len(s.order))
	for _, r := range s.order {
		out = append(out, ir.Binding{Reg: r, Value: s.rules[r]})
	}
	return out
}

func (s Subst) clone() Subst {
	out := Subst{
		order: append([]ir.Register(nil), s.order...),
		rules: make(map[ir.Register]ir.Value, len(s.rules)),
	}
	for k, v := range s.rules {
		out.rules[k] = v
	}
	return out
}

// Remove returns s with every rule whose left-hand side is bound by p
// dropped.
func (s Subst) Remove(p ir.Pattern) Subst {
	return s.removeRegs(regset.Registers(p))
}

// RemoveValue returns s with every rule whose left-hand side is referenced
// by v dropped.
func (s Subst) RemoveValue(v ir.Value) Subst {
	return s.removeRegs(regset.RegistersOfValue(v))
}

func (s Subst) removeRegs(regs ir.RegSet) Subst {
	out := Empty()
	for _, r := range s.order {
		if regs.Contains(r) {
			continue
		}
		out = out.Add(r, s.rules[r])
	}
	return out
}

// Apply recursively substitutes into v.
func (s Subst) Apply(v ir.Value) ir.Value {
	switch val := v.(type) {
	case ir.Reg:
		if repl, ok := s.rules[val.Name]; ok {
			return repl
		}
		return val
	case ir.TupleValue:
		elems := make([]ir.Value, len(val.Elems))
		for i, e := range val.Elems {
			elems[i] = s.Apply(e)
		}
		return ir.TupleValue{Elems: elems}
	default:
		return v
	}
}

// ApplyBindings applies s to the right-hand side of every binding.
func (s Subst) ApplyBindings(bindings []ir.Binding) []ir.Binding {
	out := make([]ir.Binding, len(bindings))
	for i, b := range bindings {
		out[i] = ir.Binding{Reg: b.Reg, Value: s.Apply(b.Value)}
	}
	return out
}

// ErrPatternShape is returned by ApplyPattern when a rule crossing a PReg
// position maps to something other than another PReg — a substitution
// shape violation, not a recoverable condition.
type ErrPatternShape struct {
	Reg   ir.Register
	Value ir.Value
}

func (e *ErrPatternShape) Error() string {
	return fmt.Sprintf("subst: cannot substitute non-register value %s into pattern position %s", e.Value, e.Reg)
}

// ApplyPattern substitutes through a pattern. Substituting a PReg(r) where
// s maps r to a non-Reg value is a shape violation: patterns only ever bind
// registers, so a substitution rule reaching a PReg position must itself
// resolve to another register.
func (s Subst) ApplyPattern(p ir.Pattern) (ir.Pattern, error) {
	switch v := p.(type) {
	case ir.Wildcard:
		return v, nil
	case ir.PReg:
		repl, ok := s.rules[v.Name]
		if !ok {
			return v, nil
		}
		reg, ok := repl.(ir.Reg)
		if !ok {
			return nil, &ErrPatternShape{Reg: v.Name, Value: repl}
		}
		return ir.PReg{Name: reg.Name}, nil
	case ir.PTuple:
		elems := make([]ir.Pattern, len(v.Elems))
		for i, e := range v.Elems {
			sub, err := s.ApplyPattern(e)
			if err != nil {
				return nil, err
			}
			elems[i] = sub
		}
		return ir.PTuple{Elems: elems}, nil
	default:
		return p, nil
	}
}

// Compose returns the substitution equivalent to applying s1 then s2: s1 is
// applied to every right-hand side of s2, and the two rule sets are then
// unioned with s2 winning on any clash.
func Compose(s1, s2 Subst) Subst {
	out := Empty()
	for _, r := range s1.order {
		if _, overridden := s2.rules[r]; overridden {
			continue
		}
		out = out.Add(r, s1.rules[r])
	}
	for _, r := range s2.order {
		out = out.Add(r, s1.Apply(s2.rules[r]))
	}
	return out
}

// ExtendPattern returns s extended with the rules obtained by structurally
// decomposing p against v (used when a Pop/Def needs to record what a
// pattern's bound registers now equal, without emitting a Def instruction).
//
// Callers must check PatternMatches(p, v) first: a PTuple position that
// doesn't line up against a TupleValue of the same arity has no
// well-defined decomposition, and ExtendPattern silently drops the
// registers under that position rather than guessing.
func ExtendPattern(s Subst, p ir.Pattern, v ir.Value) Subst {
	out := s
	var walk func(p ir.Pattern, v ir.Value)
	walk = func(p ir.Pattern, v ir.Value) {
		switch pat := p.(type) {
		case ir.Wildcard:
			return
		case ir.PReg:
			out = out.Add(pat.Name, v)
		case ir.PTuple:
			tv, ok := v.(ir.TupleValue)
			if !ok || len(tv.Elems) != len(pat.Elems) {
				return
			}
			for i, sub := range pat.Elems {
				walk(sub, tv.Elems[i])
			}
		}
	}
	walk(p, v)
	return out
}

// PatternMatches reports whether p's shape is compatible with v: every
// PTuple position must line up against a TupleValue of the same arity,
// recursively. Wildcard and PReg always match, since they bind against
// any value. Callers use this to decide whether ExtendPattern can fully
// decompose p against v before relying on the result.
func PatternMatches(p ir.Pattern, v ir.Value) bool {
	switch pat := p.(type) {
	case ir.Wildcard:
		return true
	case ir.PReg:
		return true
	case ir.PTuple:
		tv, ok := v.(ir.TupleValue)
		if !ok || len(tv.Elems) != len(pat.Elems) {
			return false
		}
		for i, sub := range pat.Elems {
			if !PatternMatches(sub, tv.Elems[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// RestoreDefs prepends a Def(r, v, ·) instruction for every rule in s onto
// block: the oldest rule becomes the outermost Def and the newest sits
// directly above block.
func RestoreDefs(s Subst, block ir.Block) ir.Block {
	result := block
	for i := len(s.order) - 1; i >= 0; i-- {
		r := s.order[i]
		result = ir.DefInstr(ir.PReg{Name: r}, s.rules[r], result)
	}
	return result
}

// TightRestoreDefs is RestoreDefs restricted to rules whose left-hand side
// is in rs — used at jump boundaries where only the registers the target
// actually needs should be materialized.
func TightRestoreDefs(s Subst, rs ir.RegSet, block ir.Block) ir.Block {
	result := block
	for i := len(s.order) - 1; i >= 0; i-- {
		r := s.order[i]
		if !rs.Contains(r) {
			continue
		}
		result = ir.DefInstr(ir.PReg{Name: r}, s.rules[r], result)
	}
	return result
}
