package diff

import (
	"fmt"
	"math/big"

	"stacklang/internal/stacklang/automaton"
)

// countTable memoizes the CFG length-counting DP: for each (symbol,
// length) pair, how many distinct terminal strings of that length the
// symbol can derive. Shared across a Run so repeated lengths don't
// recompute the whole grammar.
type countTable struct {
	grammar automaton.Grammar
	nt      map[string]bool
	symbol  map[string]*big.Int // key: fmt.Sprintf("%s|%d", symbol, n)
	body    map[string]*big.Int // key: fmt.Sprintf("%v|%d", body, n)
}

func newCountTable(g automaton.Grammar) *countTable {
	nt := make(map[string]bool, len(g.Nonterminals))
	for _, s := range g.Nonterminals {
		nt[s] = true
	}
	return &countTable{
		grammar: g,
		nt:      nt,
		symbol:  make(map[string]*big.Int),
		body:    make(map[string]*big.Int),
	}
}

var zero = big.NewInt(0)
var one = big.NewInt(1)

func (t *countTable) countSymbol(symbol string, n int) *big.Int {
	if n < 0 {
		return zero
	}
	if !t.nt[symbol] {
		if n == 1 {
			return one
		}
		return zero
	}
	key := fmt.Sprintf("%s|%d", symbol, n)
	if v, ok := t.symbol[key]; ok {
		return v
	}
	total := new(big.Int)
	for _, p := range t.grammar.Productions {
		if p.Head != symbol {
			continue
		}
		total.Add(total, t.countBody(p.Body, n))
	}
	t.symbol[key] = total
	return total
}

func (t *countTable) countBody(body []string, n int) *big.Int {
	if len(body) == 0 {
		if n == 0 {
			return new(big.Int).Set(one)
		}
		return zero
	}
	key := fmt.Sprintf("%v|%d", body, n)
	if v, ok := t.body[key]; ok {
		return v
	}
	total := new(big.Int)
	for n0 := 0; n0 <= n; n0++ {
		c0 := t.countSymbol(body[0], n0)
		if c0.Sign() == 0 {
			continue
		}
		rest := t.countBody(body[1:], n-n0)
		if rest.Sign() == 0 {
			continue
		}
		total.Add(total, new(big.Int).Mul(c0, rest))
	}
	t.body[key] = total
	return total
}

// unrankSymbol returns the idx-th (0-based) terminal string of length n
// that symbol derives, in the canonical order implied by countSymbol's
// production/composition iteration. idx is read-only to the caller; the
// recursion works against an internal copy.
func (t *countTable) unrankSymbol(symbol string, n int, idx *big.Int) []string {
	if !t.nt[symbol] {
		return []string{symbol}
	}
	remaining := new(big.Int).Set(idx)
	for _, p := range t.grammar.Productions {
		if p.Head != symbol {
			continue
		}
		c := t.countBody(p.Body, n)
		if remaining.Cmp(c) < 0 {
			return t.unrankBody(p.Body, n, remaining)
		}
		remaining.Sub(remaining, c)
	}
	panic("diff: rank out of range for symbol " + symbol)
}

func (t *countTable) unrankBody(body []string, n int, idx *big.Int) []string {
	if len(body) == 0 {
		return nil
	}
	for n0 := 0; n0 <= n; n0++ {
		c0 := t.countSymbol(body[0], n0)
		if c0.Sign() == 0 {
			continue
		}
		rest := t.countBody(body[1:], n-n0)
		if rest.Sign() == 0 {
			continue
		}
		block := new(big.Int).Mul(c0, rest)
		if idx.Cmp(block) < 0 {
			i0 := new(big.Int)
			i1 := new(big.Int)
			i0.DivMod(idx, rest, i1)
			first := t.unrankSymbol(body[0], n0, i0)
			restStrs := t.unrankBody(body[1:], n-n0, i1)
			return append(first, restStrs...)
		}
		idx.Sub(idx, block)
	}
	panic("diff: rank out of range in production body")
}
