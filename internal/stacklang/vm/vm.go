// Package vm interprets a compiled StackLang ir.Program directly, so the
// differential tester (package diff) can compare its behavior against the
// reference shift-reduce interpreter (package lr1) over the same
// sentences.
package vm

import (
	"fmt"

	"stacklang/internal/stacklang/ir"
)

// Outcome mirrors lr1.Outcome so the differential tester can compare the
// two interpreters' results directly without translating between types.
type Outcome int

const (
	Accepted Outcome = iota
	Rejected
	Overshoot
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Overshoot:
		return "overshoot"
	default:
		return "unknown"
	}
}

// Token is one element of the input stream a running program consumes via
// CaseToken.
type Token struct {
	Terminal string
	Payload  ir.Value
}

// Host resolves the effects a compiled program cannot express natively:
// host-language calls, field projection, and position synthesis. A real
// deployment wires Host to the grammar's actual semantic actions; tests
// wire a stub.
type Host interface {
	Call(fn string, args []ir.Value) (ir.Value, error)
	Field(base ir.Value, field string) (ir.Value, error)
	Position() ir.Value
	Action(id int, bindings map[ir.Register]ir.Value) (ir.Value, error)
}

// env is the mutable interpreter state threaded through a single run.
type env struct {
	regs   map[ir.Register]ir.Value
	stack  []ir.Value
	tokens []Token
	pos    int
	host   Host
}

func (e *env) eval(v ir.Value) ir.Value {
	switch val := v.(type) {
	case ir.Reg:
		if r, ok := e.regs[val.Name]; ok {
			return r
		}
		panic(fmt.Sprintf("vm: read of undefined register %s", val.Name))
	case ir.TupleValue:
		elems := make([]ir.Value, len(val.Elems))
		for i, el := range val.Elems {
			elems[i] = e.eval(el)
		}
		return ir.TupleValue{Elems: elems}
	default:
		return v
	}
}

func (e *env) bind(p ir.Pattern, v ir.Value) {
	switch pat := p.(type) {
	case ir.Wildcard:
	case ir.PReg:
		e.regs[pat.Name] = v
	case ir.PTuple:
		tv, ok := v.(ir.TupleValue)
		if !ok || len(tv.Elems) != len(pat.Elems) {
			panic("vm: pattern/value shape mismatch")
		}
		for i, sub := range pat.Elems {
			e.bind(sub, tv.Elems[i])
		}
	}
}

// result carries either a terminal outcome or a next-block-to-run request;
// run drives the trampoline so deeply chained Jump instructions don't
// recurse the host Go stack.
type result struct {
	outcome Outcome
	value   ir.Value
	jumpTo  ir.Label
	jumping bool
}

// Run executes program starting at its entry label for nt, consuming
// tokens via CaseToken and delegating opaque effects to host.
func Run(program *ir.Program, nt string, tokens []Token, host Host) (Outcome, ir.Value, error) {
	label, ok := program.Entry[nt]
	if !ok {
		return Rejected, nil, fmt.Errorf("vm: no entry for nonterminal %q", nt)
	}
	e := &env{regs: make(map[ir.Register]ir.Value), tokens: tokens, host: host}

	for {
		tb, ok := program.CFG[label]
		if !ok {
			return Rejected, nil, fmt.Errorf("vm: jump to undefined label %q", label)
		}
		r, err := execBlock(e, tb.Body)
		if err != nil {
			return Rejected, nil, err
		}
		if !r.jumping {
			return r.outcome, r.value, nil
		}
		label = r.jumpTo
	}
}

func execBlock(e *env, b ir.Block) (result, error) {
	switch v := b.(type) {
	case ir.Need:
		return execBlock(e, v.Next)

	case ir.Push:
		e.stack = append(e.stack, e.eval(v.Value))
		return execBlock(e, v.Next)

	case ir.Pop:
		if len(e.stack) == 0 {
			return result{}, fmt.Errorf("vm: pop from empty stack")
		}
		top := e.stack[len(e.stack)-1]
		e.stack = e.stack[:len(e.stack)-1]
		e.bind(v.Pattern, top)
		return execBlock(e, v.Next)

	case ir.DefPattern:
		e.bind(v.Pattern, e.eval(v.Value))
		return execBlock(e, v.Next)

	case ir.DefBindings:
		for _, bdg := range v.Bindings {
			e.regs[bdg.Reg] = e.eval(bdg.Value)
		}
		return execBlock(e, v.Next)

	case ir.Prim:
		val, err := execPrim(e, v.Prim)
		if err != nil {
			return result{}, err
		}
		e.regs[v.Result] = val
		return execBlock(e, v.Next)

	case ir.Trace:
		return execBlock(e, v.Next)

	case ir.Comment:
		return execBlock(e, v.Next)

	case ir.Die:
		return result{outcome: Rejected}, nil

	case ir.Return:
		val, ok := e.regs[v.Reg]
		if !ok {
			return result{}, fmt.Errorf("vm: return of undefined register %s", v.Reg)
		}
		return result{outcome: Accepted, value: val}, nil

	case ir.Jump:
		return result{jumping: true, jumpTo: v.Label}, nil

	case ir.JumpBindings:
		for _, bdg := range v.Bindings {
			e.regs[bdg.Reg] = e.eval(bdg.Value)
		}
		return result{jumping: true, jumpTo: v.Label}, nil

	case ir.CaseToken:
		if e.pos >= len(e.tokens) {
			return result{outcome: Overshoot}, nil
		}
		tok := e.tokens[e.pos]
		for _, br := range v.Branches {
			switch pat := br.Pattern.(type) {
			case ir.TokSingle:
				if pat.Terminal == tok.Terminal {
					e.pos++
					e.regs[pat.Reg] = tok.Payload
					return execBlock(e, br.Body)
				}
			case ir.TokMultiple:
				for _, term := range pat.Terminals {
					if term == tok.Terminal {
						e.pos++
						return execBlock(e, br.Body)
					}
				}
			}
		}
		if v.Default != nil {
			return execBlock(e, v.Default)
		}
		return result{outcome: Rejected}, nil

	case ir.CaseTag:
		tag, ok := e.regs[v.Reg].(ir.Tag)
		if !ok {
			return result{}, fmt.Errorf("vm: case_tag dispatch on non-tag register %s", v.Reg)
		}
		for _, br := range v.Branches {
			if _, ok := br.Tags[tag.N]; ok {
				return execBlock(e, br.Body)
			}
		}
		return result{}, fmt.Errorf("vm: case_tag has no branch for tag %d", tag.N)

	case *ir.TypedBlock:
		return execBlock(e, v.Body)

	default:
		return result{}, fmt.Errorf("vm: unhandled instruction form %T", b)
	}
}

func execPrim(e *env, p ir.Primitive) (ir.Value, error) {
	switch v := p.(type) {
	case ir.CallPrim:
		args := make([]ir.Value, len(v.Args))
		for i, r := range v.Args {
			val, ok := e.regs[r]
			if !ok {
				return nil, fmt.Errorf("vm: call arg %s undefined", r)
			}
			args[i] = val
		}
		return e.host.Call(v.Func, args)
	case ir.FieldPrim:
		base, ok := e.regs[v.Base]
		if !ok {
			return nil, fmt.Errorf("vm: field base %s undefined", v.Base)
		}
		return e.host.Field(base, v.Field)
	case ir.PositionPrim:
		return e.host.Position(), nil
	case ir.ActionPrim:
		bindings := make(map[ir.Register]ir.Value, len(v.Bindings))
		for _, b := range v.Bindings {
			bindings[b.Reg] = e.eval(b.Value)
		}
		return e.host.Action(v.ActionID, bindings)
	default:
		return nil, fmt.Errorf("vm: unhandled primitive %T", p)
	}
}
