// Package report renders a pipeline run — one entry per pass — as a
// colored parse/compile-style summary: a per-pass line naming what
// changed, stamped with a run ID so a batch of runs (or a
// differential-tester dump) can be correlated across log lines.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/iancoleman/strcase"
	"github.com/segmentio/ksuid"

	"stacklang/internal/stacklang/ir"
	"stacklang/internal/stacklang/measure"
)

// Entry is one pass's contribution to a run: what it measured before and
// after, and an optional free-text note (e.g. commute's cancelled-pop and
// eliminated-branch counts, which measure.Measurement doesn't capture).
type Entry struct {
	Pass   string
	Before measure.Measurement
	After  measure.Measurement
	Delta  map[string]int
	Note   string
}

// Reporter accumulates Entries across a pipeline run.
type Reporter struct {
	RunID   ksuid.KSUID
	entries []Entry
}

// New starts a reporter stamped with a fresh k-sortable run ID.
func New() *Reporter {
	return &Reporter{RunID: ksuid.New()}
}

// Record measures program before and after a pass ran and appends an
// Entry. Callers pass the program snapshots directly (measure.Count is
// cheap enough to call twice per pass; the core passes themselves never
// measure their own output, keeping them pure).
func (r *Reporter) Record(pass string, before, after *ir.Program, note string) {
	b := measure.Count(before)
	a := measure.Count(after)
	r.entries = append(r.entries, Entry{
		Pass:   pass,
		Before: b,
		After:  a,
		Delta:  measure.Delta(b, a),
		Note:   note,
	})
}

// Entries returns the recorded entries in run order.
func (r *Reporter) Entries() []Entry { return r.entries }

// Print writes a colored, human-readable summary of every recorded entry
// to w: a bold run header, then one line per pass naming which
// instruction-kind counts moved and by how much, with a pass that changed
// nothing dimmed rather than omitted (the CLI should show a no-op pass
// explicitly, not make it look like it never ran).
func (r *Reporter) Print(w io.Writer) {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(w, "%s %s\n", bold("run"), r.RunID.String())
	for _, e := range r.entries {
		if len(e.Delta) == 0 {
			fmt.Fprintf(w, "  %s %s\n", bold(e.Pass), dim("(no change)"))
			continue
		}
		fmt.Fprintf(w, "  %s\n", bold(e.Pass))
		for _, header := range sortedDeltaKeys(e.Delta) {
			d := e.Delta[header]
			label := strcase.ToCamel(header)
			if d < 0 {
				fmt.Fprintf(w, "    %-14s %s\n", label, green(fmt.Sprintf("%d", d)))
			} else {
				fmt.Fprintf(w, "    %-14s %s\n", label, red(fmt.Sprintf("+%d", d)))
			}
		}
		if e.Note != "" {
			fmt.Fprintf(w, "    %s %s\n", dim("note:"), e.Note)
		}
	}
}

func sortedDeltaKeys(delta map[string]int) []string {
	keys := make([]string, 0, len(delta))
	for k := range delta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
