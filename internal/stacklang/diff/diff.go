// Package diff implements the differential tester: it samples sentences
// of a grammar's language and checks that the reference shift-reduce
// interpreter (package lr1) and the compiled program's own interpreter
// (package vm) agree on every one.
//
// Sentence selection is exhaustive up to Settings.PerLengthCap sentences
// per length; beyond that it falls back to uniform random sampling, using
// math/big for exact counting (small grammars can still have astronomical
// sentence counts at moderate lengths) and crypto/rand for the sampling
// itself. Run also stops early once Settings.GlobalCap sentences have
// been checked across the whole run, and aborts immediately on the first
// mismatch rather than continuing to scan further lengths.
package diff

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"stacklang/internal/stacklang/automaton"
	"stacklang/internal/stacklang/ir"
	"stacklang/internal/stacklang/lr1"
	"stacklang/internal/stacklang/vm"
)

// Settings tunes how exhaustively Run explores the grammar's language.
type Settings struct {
	// ErrorToken, if non-empty, names a terminal reserved for parser error
	// recovery; sentences containing it are not meaningful members of the
	// language and are skipped.
	ErrorToken string
	// Threshold is the longest sentence length considered.
	Threshold int
	// PerLengthCap is the per-length sentence count above which Run
	// samples instead of enumerating exhaustively.
	PerLengthCap int
	// GlobalCap is the total number of sentences, across every length,
	// Run will check before stopping early.
	GlobalCap int
	// SampleSize is how many sentences Run draws per length once
	// PerLengthCap is exceeded.
	SampleSize int
}

// DefaultSettings returns the tester's standard tuning.
func DefaultSettings() Settings {
	return Settings{Threshold: 100, PerLengthCap: 100, GlobalCap: 1000, SampleSize: 100}
}

// Mismatch records one sentence where the two interpreters disagreed.
type Mismatch struct {
	Sentence  []string
	Reference lr1.Outcome
	Compiled  vm.Outcome
}

// Report summarizes a differential run.
type Report struct {
	Checked    int
	Mismatches []Mismatch
}

func (r *Report) OK() bool { return len(r.Mismatches) == 0 }

func outcomesAgree(ref lr1.Outcome, got vm.Outcome) bool {
	return ref.String() == got.String()
}

func tokensOf(sentence []string) []vm.Token {
	out := make([]vm.Token, len(sentence))
	for i, s := range sentence {
		out[i] = vm.Token{Terminal: s, Payload: ir.Unit{}}
	}
	return out
}

func containsErrorToken(sentence []string, errorToken string) bool {
	if errorToken == "" {
		return false
	}
	for _, s := range sentence {
		if s == errorToken {
			return true
		}
	}
	return false
}

// Run checks program (entered at nt) against the reference interpreter
// driven by auto, over grammar's language, per settings. It returns as
// soon as either settings.GlobalCap sentences have been checked or a
// mismatch has been found.
func Run(program *ir.Program, nt string, auto *automaton.Automaton, grammar automaton.Grammar, settings Settings, host vm.Host) (*Report, error) {
	table := newCountTable(grammar)
	report := &Report{}
	perLengthCapBig := big.NewInt(int64(settings.PerLengthCap))

lengths:
	for length := 0; length <= settings.Threshold; length++ {
		if report.Checked >= settings.GlobalCap {
			break
		}

		count := table.countSymbol(grammar.Start, length)
		if count.Sign() == 0 {
			continue
		}

		var sentences [][]string
		if count.Cmp(perLengthCapBig) <= 0 {
			sentences = enumerateAll(table, grammar.Start, length, count)
		} else {
			var err error
			sentences, err = sampleRandom(table, grammar.Start, length, count, settings.SampleSize)
			if err != nil {
				return nil, err
			}
		}

		for _, sentence := range sentences {
			if containsErrorToken(sentence, settings.ErrorToken) {
				continue
			}
			if report.Checked >= settings.GlobalCap {
				break lengths
			}
			report.Checked++

			ref := lr1.Run(auto, sentence)
			got, _, err := vm.Run(program, nt, tokensOf(sentence), host)
			if err != nil {
				return nil, fmt.Errorf("diff: compiled program errored on %v: %w", sentence, err)
			}
			if !outcomesAgree(ref, got) {
				report.Mismatches = append(report.Mismatches, Mismatch{
					Sentence:  append([]string(nil), sentence...),
					Reference: ref,
					Compiled:  got,
				})
				return report, nil
			}
		}
	}
	return report, nil
}

func enumerateAll(table *countTable, start string, length int, count *big.Int) [][]string {
	n := count.Int64()
	out := make([][]string, 0, n)
	idx := new(big.Int)
	for i := int64(0); i < n; i++ {
		idx.SetInt64(i)
		out = append(out, table.unrankSymbol(start, length, idx))
	}
	return out
}

func sampleRandom(table *countTable, start string, length int, count *big.Int, sampleSize int) ([][]string, error) {
	out := make([][]string, 0, sampleSize)
	for i := 0; i < sampleSize; i++ {
		idx, err := rand.Int(rand.Reader, count)
		if err != nil {
			return nil, fmt.Errorf("diff: sampling index: %w", err)
		}
		out = append(out, table.unrankSymbol(start, length, idx))
	}
	return out, nil
}
