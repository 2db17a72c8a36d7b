package automaton

// TrivialAccept builds the degenerate grammar used throughout this
// backend's tests: S -> a. State 0 is the start state; shifting 'a' goes
// to state 1, which accepts on end-of-input. The empty sentence ends in
// overshoot: state 0 still wants a shift on 'a' and has no action on
// end-of-input.
func TrivialAccept() (*Automaton, Grammar) {
	a := New(0)
	a.SetAction(0, "a", Action{Kind: ActionShift, Target: 1})
	a.SetAction(1, EndOfInput, Action{Kind: ActionAccept})
	a.StateTags[0] = 0
	a.StateTags[1] = 1

	g := Grammar{
		Start:        "S",
		Terminals:    []string{"a"},
		Nonterminals: []string{"S"},
		Productions:  []Production{{Head: "S", Body: []string{"a"}}},
	}
	return a, g
}
