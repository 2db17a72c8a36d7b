// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"stacklang/internal/stacklang/automaton"
	"stacklang/internal/stacklang/cfg"
	"stacklang/internal/stacklang/commute"
	"stacklang/internal/stacklang/diff"
	"stacklang/internal/stacklang/ierr"
	"stacklang/internal/stacklang/inline"
	"stacklang/internal/stacklang/ir"
	"stacklang/internal/stacklang/printer"
	"stacklang/internal/stacklang/report"
	"stacklang/internal/stacklang/taginline"
	"stacklang/internal/stacklang/textfmt"
	"stacklang/internal/stacklang/wf"
)

func main() {
	fromText := flag.String("from-text", "", "path to a StackLang program in the textual snippet format (default: a built-in S -> a fixture)")
	settingsPath := flag.String("settings", "", "path to an optional YAML settings file")
	run := flag.String("run", "S", "nonterminal entry point to exercise with -diff")
	runDiff := flag.Bool("diff", false, "run the differential tester against the built-in S -> a fixture's reference grammar")
	flag.Parse()

	settings, err := LoadSettings(*settingsPath)
	if err != nil {
		fail(err)
	}

	program, err := loadProgram(*fromText)
	if err != nil {
		fail(err)
	}

	if err := wf.Check(program); err != nil {
		fail(ierr.Wrap(err, ierr.CodeIRInvariant, "well-formedness check failed on the input program"))
	}

	reporter := report.New()

	indegree := cfg.InDegree(program)
	inlined := inline.Inline(program)
	reporter.Record("inline", program, inlined, fmt.Sprintf("%d reachable labels", len(indegree)))
	program = inlined

	if err := wf.Check(program); err != nil {
		fail(ierr.Wrap(err, ierr.CodeIRInvariant, "well-formedness check failed after inlining"))
	}

	tagInlined := taginline.TagInline(program)
	reporter.Record("taginline", program, tagInlined, "")
	program = tagInlined

	if err := wf.Check(program); err != nil {
		fail(ierr.Wrap(err, ierr.CodeIRInvariant, "well-formedness check failed after tag inlining"))
	}

	if settings.CommutePushes {
		commuted, stats := commute.Commute(program)
		note := fmt.Sprintf("cancelled %d pops, eliminated %d branches", stats.CancelledPop, stats.EliminatedBranches)
		reporter.Record("commute", program, commuted, note)
		program = commuted

		if err := wf.Check(program); err != nil {
			fail(ierr.Wrap(err, ierr.CodeIRInvariant, "well-formedness check failed after push commutation"))
		}
	}

	reporter.Print(os.Stdout)

	if settings.StacklangDump {
		fmt.Println(printer.Print(program))
	}

	if *runDiff {
		runDifferential(program, *run, settings)
	}

	color.Green("stacklang-opt: pipeline completed on entry %q", *run)
}

func loadProgram(path string) (*ir.Program, error) {
	if path == "" {
		return builtinFixtureProgram(), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, ierr.Wrap(err, ierr.CodeTextFormat, "reading "+path)
	}
	program, err := textfmt.ParseProgram(string(src))
	if err != nil {
		return nil, ierr.Wrap(err, ierr.CodeTextFormat, "parsing "+path)
	}
	return program, nil
}

func runDifferential(program *ir.Program, nt string, settings Settings) {
	if settings.ErrorToken != "" {
		color.Yellow("stacklang-opt: skipping differential test (grammar declares an error-recovery token %q)", settings.ErrorToken)
		return
	}

	auto, grammar := automaton.TrivialAccept()
	diffSettings := diff.DefaultSettings()
	diffSettings.ErrorToken = settings.ErrorToken

	rep, err := diff.Run(program, nt, auto, grammar, diffSettings, passthroughHost{})
	if err != nil {
		fail(ierr.Wrap(err, ierr.CodeDifferentialMismatch, "differential test run failed"))
	}
	if !rep.OK() {
		m := rep.Mismatches[0]
		fail(ierr.New(ierr.CodeDifferentialMismatch,
			fmt.Sprintf("sentence %v: reference=%s compiled=%s", m.Sentence, m.Reference, m.Compiled)))
	}
	color.Green("stacklang-opt: differential test OK (%d sentences checked)", rep.Checked)
}

func fail(err error) {
	color.Red("stacklang-opt: %v", err)
	os.Exit(1)
}
