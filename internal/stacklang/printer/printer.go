// Package printer renders a compiled StackLang program as readable text,
// in an indent/strings.Builder style.
package printer

import (
	"fmt"
	"sort"
	"strings"

	"stacklang/internal/stacklang/ir"
)

// Printer accumulates a program's textual rendering.
type Printer struct {
	indent int
	output strings.Builder
}

// New creates an empty Printer.
func New() *Printer { return &Printer{} }

// Print renders program in full.
func Print(program *ir.Program) string {
	p := New()
	p.printProgram(program)
	return p.output.String()
}

// PrintBlock renders a single block, useful for golden-output tests on a
// pass's output without a whole program.
func PrintBlock(b ir.Block) string {
	p := New()
	p.printBlock(b)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printProgram(program *ir.Program) {
	entries := make([]string, 0, len(program.Entry))
	for nt := range program.Entry {
		entries = append(entries, nt)
	}
	sort.Strings(entries)
	for _, nt := range entries {
		p.writeLine("entry %s -> %s", nt, program.Entry[nt])
	}
	p.writeLine("")

	labels := make([]ir.Label, 0, len(program.CFG))
	for l := range program.CFG {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	for _, label := range labels {
		p.writeLine("block %s:", label)
		p.indent++
		p.printBlock(program.CFG[label])
		p.indent--
		p.writeLine("")
	}
}

func (p *Printer) printBlock(b ir.Block) {
	switch v := b.(type) {
	case ir.Need:
		p.writeLine("need(%v)", v.Regs.Slice())
		p.printBlock(v.Next)
	case ir.Push:
		p.writeLine("push(%s : %s)", v.Value, v.Cell)
		p.printBlock(v.Next)
	case ir.Pop:
		p.writeLine("pop(%s)", v.Pattern)
		p.printBlock(v.Next)
	case ir.DefPattern:
		p.writeLine("def %s = %s", v.Pattern, v.Value)
		p.printBlock(v.Next)
	case ir.DefBindings:
		p.writeLine("def %s", bindingsString(v.Bindings))
		p.printBlock(v.Next)
	case ir.Prim:
		p.writeLine("%s = %s", v.Result, v.Prim)
		p.printBlock(v.Next)
	case ir.Trace:
		p.writeLine("trace(%q)", v.Text)
		p.printBlock(v.Next)
	case ir.Comment:
		p.writeLine("; %s", v.Text)
		p.printBlock(v.Next)
	case ir.Die:
		p.writeLine("die")
	case ir.Return:
		p.writeLine("return %s", v.Reg)
	case ir.Jump:
		p.writeLine("jump %s", v.Label)
	case ir.JumpBindings:
		p.writeLine("jump %s %s", bindingsString(v.Bindings), v.Label)
	case ir.CaseToken:
		p.writeLine("case_token(%s)", v.Reg)
		p.indent++
		for _, br := range v.Branches {
			p.writeLine("%s ->", br.Pattern)
			p.indent++
			p.printBlock(br.Body)
			p.indent--
		}
		if v.Default != nil {
			p.writeLine("_ ->")
			p.indent++
			p.printBlock(v.Default)
			p.indent--
		}
		p.indent--
	case ir.CaseTag:
		p.writeLine("case_tag(%s)", v.Reg)
		p.indent++
		for _, br := range v.Branches {
			p.writeLine("%s ->", tagSetString(br.Tags))
			p.indent++
			p.printBlock(br.Body)
			p.indent--
		}
		p.indent--
	case *ir.TypedBlock:
		name := v.Name
		if name == "" {
			name = "<anon>"
		}
		p.writeLine("typed_block %s (stack=%v needed=%v has_case_tag=%v)",
			name, v.StackType, v.NeededRegisters.Slice(), v.HasCaseTag)
		p.indent++
		p.printBlock(v.Body)
		p.indent--
	default:
		p.writeLine("<unknown instruction %T>", b)
	}
}

func bindingsString(bindings []ir.Binding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = b.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func tagSetString(tags map[int]struct{}) string {
	nums := make([]int, 0, len(tags))
	for t := range tags {
		nums = append(nums, t)
	}
	sort.Ints(nums)
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
