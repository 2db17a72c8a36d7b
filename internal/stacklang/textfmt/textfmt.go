package textfmt

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"

	"stacklang/internal/stacklang/ir"
)

func buildParser() (*participle.Parser[astFile], error) {
	return participle.Build[astFile](
		participle.Lexer(stackLexer),
		participle.Elide("Whitespace"),
	)
}

// ParseInstr parses a single straight-line instruction chain (no "block"
// wrapper). The optimizer CLI's -from-text flag reads whole programs with
// ParseProgram instead.
func ParseInstr(text string) (ir.Block, error) {
	parser, err := buildParser()
	if err != nil {
		return nil, fmt.Errorf("textfmt: building parser: %w", err)
	}
	// Reuse the block rule's instruction grammar by wrapping in a
	// throwaway label, the simplest way to drive the same grammar
	// entrypoint for a bare instruction chain.
	wrapped := "block _ : " + text
	var file astFile
	if err := parser.ParseString("<text>", wrapped, &file); err != nil {
		return nil, fmt.Errorf("textfmt: parse error: %w", err)
	}
	if len(file.Blocks) != 1 {
		return nil, fmt.Errorf("textfmt: expected exactly one instruction chain")
	}
	return astInstrToIR(file.Blocks[0].Body)
}

// WriteInstr renders a block as straight-line text. Panics on anything
// outside the round-trippable subset: the CaseToken, CaseTag, TypedBlock
// and JumpBindings forms, primitives other than calls, tuple values and
// tuple patterns. Callers that might see those should use package printer
// instead, which handles the full instruction set for display (not
// round-tripping).
func WriteInstr(b ir.Block) string {
	var sb strings.Builder
	writeInstr(&sb, b)
	return sb.String()
}

// ParseProgram parses a sequence of "block LABEL: <instr>" declarations
// into a Program whose typed blocks carry no stack-shape contract (this
// format doesn't express one); the first block becomes the "main" entry.
func ParseProgram(text string) (*ir.Program, error) {
	parser, err := buildParser()
	if err != nil {
		return nil, fmt.Errorf("textfmt: building parser: %w", err)
	}
	var file astFile
	if err := parser.ParseString("<program>", text, &file); err != nil {
		return nil, fmt.Errorf("textfmt: parse error: %w", err)
	}
	if len(file.Blocks) == 0 {
		return nil, fmt.Errorf("textfmt: no blocks found")
	}

	program := ir.NewProgram()
	for i, blk := range file.Blocks {
		body, err := astInstrToIR(blk.Body)
		if err != nil {
			return nil, fmt.Errorf("textfmt: block %s: %w", blk.Label, err)
		}
		label := ir.Label(blk.Label)
		program.CFG[label] = ir.TypedBlockInstr(body, nil, nil, ir.NewRegSet(), false, blk.Label)
		if i == 0 {
			program.Entry["main"] = label
		}
	}
	return program, nil
}

// WriteProgram renders every block's body in label-sorted order.
func WriteProgram(program *ir.Program) string {
	labels := make([]ir.Label, 0, len(program.CFG))
	for l := range program.CFG {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	var sb strings.Builder
	for _, l := range labels {
		sb.WriteString("block ")
		sb.WriteString(string(l))
		sb.WriteString(" :\n")
		writeInstr(&sb, program.CFG[l].Body)
		sb.WriteString("\n")
	}
	return sb.String()
}

func astInstrToIR(a *astInstr) (ir.Block, error) {
	switch {
	case a.Need != nil:
		regs := make([]ir.Register, len(a.Need.Regs))
		for i, r := range a.Need.Regs {
			regs[i] = ir.Register(r)
		}
		next, err := chainNext(a.Need.Next)
		if err != nil {
			return nil, err
		}
		return ir.NeedInstr(ir.NewRegSet(regs...), next), nil

	case a.DefBindings != nil:
		bindings := make([]ir.Binding, len(a.DefBindings.Bindings))
		for i, b := range a.DefBindings.Bindings {
			v, err := astValueToIR(b.Value)
			if err != nil {
				return nil, err
			}
			bindings[i] = ir.Binding{Reg: ir.Register(b.Reg), Value: v}
		}
		next, err := chainNext(a.DefBindings.Next)
		if err != nil {
			return nil, err
		}
		return ir.DefBindingsInstr(bindings, next), nil

	case a.Push != nil:
		v, err := astValueToIR(a.Push.Value)
		if err != nil {
			return nil, err
		}
		next, err := chainNext(a.Push.Next)
		if err != nil {
			return nil, err
		}
		return ir.PushInstr(v, ir.CellInfo{Type: a.Push.Cell}, next), nil

	case a.Pop != nil:
		next, err := chainNext(a.Pop.Next)
		if err != nil {
			return nil, err
		}
		return ir.PopInstr(astPatternToIR(a.Pop.Pattern), next), nil

	case a.Def != nil:
		v, err := astValueToIR(a.Def.Value)
		if err != nil {
			return nil, err
		}
		next, err := chainNext(a.Def.Next)
		if err != nil {
			return nil, err
		}
		return ir.DefInstr(astPatternToIR(a.Def.Pattern), v, next), nil

	case a.Prim != nil:
		args := make([]ir.Register, len(a.Prim.Call.Args))
		for i, arg := range a.Prim.Call.Args {
			args[i] = ir.Register(arg)
		}
		next, err := chainNext(a.Prim.Next)
		if err != nil {
			return nil, err
		}
		return ir.PrimInstr(ir.Register(a.Prim.Result), ir.CallPrim{Func: a.Prim.Call.Func, Args: args}, next), nil

	case a.Trace != nil:
		next, err := chainNext(a.Trace.Next)
		if err != nil {
			return nil, err
		}
		return ir.TraceInstr(unquote(a.Trace.Text), next), nil

	case a.Comment != nil:
		next, err := chainNext(a.Comment.Next)
		if err != nil {
			return nil, err
		}
		return ir.CommentInstr(strings.TrimSpace(strings.TrimPrefix(a.Comment.Text, ";")), next), nil

	case a.Die != nil:
		return ir.DieInstr(), nil

	case a.Return != nil:
		return ir.ReturnInstr(ir.Register(a.Return.Reg)), nil

	case a.Jump != nil:
		return ir.JumpInstr(ir.Label(a.Jump.Label)), nil

	default:
		return nil, fmt.Errorf("textfmt: empty instruction node")
	}
}

func chainNext(next *astInstr) (ir.Block, error) {
	if next == nil {
		return nil, fmt.Errorf("textfmt: non-terminal instruction missing a continuation")
	}
	return astInstrToIR(next)
}

func astValueToIR(v *astValue) (ir.Value, error) {
	switch {
	case v.Tag != nil:
		return ir.Tag{N: *v.Tag}, nil
	case v.Unit:
		return ir.Unit{}, nil
	case v.Reg != nil:
		return ir.Reg{Name: ir.Register(*v.Reg)}, nil
	default:
		return nil, fmt.Errorf("textfmt: empty value node")
	}
}

func astPatternToIR(p *astPattern) ir.Pattern {
	if p.Wildcard {
		return ir.Wildcard{}
	}
	return ir.PReg{Name: ir.Register(*p.Reg)}
}

func unquote(s string) string {
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return strings.Trim(s, `"`)
}

func writeInstr(sb *strings.Builder, b ir.Block) {
	switch v := b.(type) {
	case ir.Need:
		regs := v.Regs.Slice()
		parts := make([]string, len(regs))
		for i, r := range regs {
			parts[i] = string(r)
		}
		sb.WriteString(fmt.Sprintf("need(%s) ", strings.Join(parts, ", ")))
		writeInstr(sb, v.Next)
	case ir.DefBindings:
		parts := make([]string, len(v.Bindings))
		for i, bind := range v.Bindings {
			parts[i] = fmt.Sprintf("%s = %s", bind.Reg, writeValue(bind.Value))
		}
		sb.WriteString(fmt.Sprintf("def {%s} ", strings.Join(parts, ", ")))
		writeInstr(sb, v.Next)
	case ir.Push:
		sb.WriteString(fmt.Sprintf("push(%s : %s) ", writeValue(v.Value), v.Cell.Type))
		writeInstr(sb, v.Next)
	case ir.Pop:
		sb.WriteString(fmt.Sprintf("pop(%s) ", writePattern(v.Pattern)))
		writeInstr(sb, v.Next)
	case ir.DefPattern:
		sb.WriteString(fmt.Sprintf("def %s = %s ", writePattern(v.Pattern), writeValue(v.Value)))
		writeInstr(sb, v.Next)
	case ir.Prim:
		call, ok := v.Prim.(ir.CallPrim)
		if !ok {
			panic(fmt.Sprintf("textfmt: %T is outside the round-trippable primitive subset", v.Prim))
		}
		sb.WriteString(fmt.Sprintf("%s = call(%s", v.Result, call.Func))
		for _, a := range call.Args {
			sb.WriteString(", " + string(a))
		}
		sb.WriteString(") ")
		writeInstr(sb, v.Next)
	case ir.Trace:
		sb.WriteString(fmt.Sprintf("trace(%q) ", v.Text))
		writeInstr(sb, v.Next)
	case ir.Comment:
		sb.WriteString("; " + v.Text + "\n")
		writeInstr(sb, v.Next)
	case ir.Die:
		sb.WriteString("die")
	case ir.Return:
		sb.WriteString("return " + string(v.Reg))
	case ir.Jump:
		sb.WriteString("jump " + string(v.Label))
	default:
		panic(fmt.Sprintf("textfmt: %T is outside the round-trippable instruction subset", b))
	}
}

func writeValue(v ir.Value) string {
	switch val := v.(type) {
	case ir.Tag:
		return fmt.Sprintf("tag(%d)", val.N)
	case ir.Unit:
		return "unit"
	case ir.Reg:
		return string(val.Name)
	default:
		panic(fmt.Sprintf("textfmt: %T is outside the round-trippable value subset", v))
	}
}

func writePattern(p ir.Pattern) string {
	switch pat := p.(type) {
	case ir.Wildcard:
		return "_"
	case ir.PReg:
		return string(pat.Name)
	default:
		panic(fmt.Sprintf("textfmt: %T is outside the round-trippable pattern subset", p))
	}
}
