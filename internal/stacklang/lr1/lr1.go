// Package lr1 is the reference shift-reduce interpreter: a direct
// executor of an automaton.Automaton's tables, independent of the
// StackLang compilation pipeline. The differential tester (package diff)
// runs this alongside a compiled program's own interpreter (package vm)
// and compares outcomes.
package lr1

import "stacklang/internal/stacklang/automaton"

// Outcome is the three-way result of parsing a sentence: accepted,
// rejected outright by the table, or "overshoot" — the parser ran off the
// end of the input while a table entry still expected a shift.
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

// maxSteps bounds the run to guard against a malformed table looping
// forever on a zero-length reduction cycle.
const maxSteps = 1 << 20

// Run parses sentence against a using the standard shift-reduce algorithm.
func Run(a *automaton.Automaton, sentence []string) Outcome {
	stack := []int{a.Start}
	pos := 0

	for step := 0; step < maxSteps; step++ {
		state := stack[len(stack)-1]

		var sym string
		if pos < len(sentence) {
			sym = sentence[pos]
		} else {
			sym = automaton.EndOfInput
		}

		act, ok := a.Action[state][sym]
		if !ok {
			if sym == automaton.EndOfInput {
				return Overshoot
			}
			return Rejected
		}

		switch act.Kind {
		case automaton.ActionShift:
			stack = append(stack, act.Target)
			pos++
		case automaton.ActionReduce:
			if act.Length > len(stack)-1 {
				return Rejected
			}
			stack = stack[:len(stack)-act.Length]
			top := stack[len(stack)-1]
			next, ok := a.Goto[top][act.Nonterminal]
			if !ok {
				return Rejected
			}
			stack = append(stack, next)
		case automaton.ActionAccept:
			if pos != len(sentence) {
				return Rejected
			}
			return Accepted
		default:
			return Rejected
		}
	}
	return Rejected
}
