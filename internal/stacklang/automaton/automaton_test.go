package automaton

import "testing"

func TestTagOfDefaultsToStateNumber(t *testing.T) {
	a := New(0)
	if got := a.TagOf(5); got != 5 {
		t.Fatalf("expected default tag 5, got %d", got)
	}
	a.StateTags[5] = 42
	if got := a.TagOf(5); got != 42 {
		t.Fatalf("expected registered tag 42, got %d", got)
	}
}

func TestSetActionAndSetGotoLazilyInitMaps(t *testing.T) {
	a := New(0)
	a.SetAction(1, "a", Action{Kind: ActionShift, Target: 2})
	a.SetGoto(1, "S", 3)

	act, ok := a.Action[1]["a"]
	if !ok || act.Kind != ActionShift || act.Target != 2 {
		t.Fatalf("expected shift to state 2, got %+v (ok=%v)", act, ok)
	}
	target, ok := a.Goto[1]["S"]
	if !ok || target != 3 {
		t.Fatalf("expected goto target 3, got %d (ok=%v)", target, ok)
	}
}

func TestTrivialAcceptShapesDegenerateGrammar(t *testing.T) {
	a, g := TrivialAccept()

	if a.Start != 0 {
		t.Fatalf("expected start state 0, got %d", a.Start)
	}
	shift, ok := a.Action[0]["a"]
	if !ok || shift.Kind != ActionShift || shift.Target != 1 {
		t.Fatalf("expected shift on 'a' to state 1, got %+v (ok=%v)", shift, ok)
	}
	accept, ok := a.Action[1][EndOfInput]
	if !ok || accept.Kind != ActionAccept {
		t.Fatalf("expected accept on end-of-input at state 1, got %+v (ok=%v)", accept, ok)
	}

	if g.Start != "S" {
		t.Fatalf("expected grammar start S, got %q", g.Start)
	}
	if len(g.Productions) != 1 || g.Productions[0].Head != "S" {
		t.Fatalf("expected a single S -> ... production, got %+v", g.Productions)
	}
}
