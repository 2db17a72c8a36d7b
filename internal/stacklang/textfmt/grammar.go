package textfmt

// File is a sequence of labeled blocks, each holding a straight-line
// instruction chain.
type astFile struct {
	Blocks []*astBlock `@@*`
}

type astBlock struct {
	Label string    `"block" @Ident ":"`
	Body  *astInstr `@@`
}

// astInstr is the sum of the straight-line instruction forms this format
// round-trips. Case dispatch and typed-block wrapping are out of scope:
// they carry structure (branch lists, contracts) that doesn't fit a
// single linear grammar rule as cleanly, and every test that needs them
// builds the ir.Block tree directly instead of through text.
type astInstr struct {
	Need        *astNeed        `  @@`
	Push        *astPush        `| @@`
	Pop         *astPop         `| @@`
	DefBindings *astDefBindings `| @@`
	Def         *astDef         `| @@`
	Prim        *astPrim        `| @@`
	Trace       *astTrace       `| @@`
	Comment     *astComment     `| @@`
	Die         *astDie         `| @@`
	Return      *astReturn      `| @@`
	Jump        *astJump        `| @@`
}

type astNeed struct {
	Regs []string  `"need" "(" [ @Ident { "," @Ident } ] ")"`
	Next *astInstr `@@?`
}

type astDefBindings struct {
	Bindings []*astBinding `"def" "{" [ @@ { "," @@ } ] "}"`
	Next     *astInstr     `@@?`
}

type astBinding struct {
	Reg   string    `@Ident "="`
	Value *astValue `@@`
}

type astPush struct {
	Value *astValue `"push" "(" @@ ":"`
	Cell  string    `@Ident ")"`
	Next  *astInstr `@@?`
}

type astPop struct {
	Pattern *astPattern `"pop" "(" @@ ")"`
	Next    *astInstr   `@@?`
}

type astDef struct {
	Pattern *astPattern `"def" @@ "="`
	Value   *astValue   `@@`
	Next    *astInstr   `@@?`
}

type astPrim struct {
	Result string    `@Ident "="`
	Call   *astCall  `@@`
	Next   *astInstr `@@?`
}

type astCall struct {
	Func string   `"call" "(" @Ident`
	Args []string `[ "," @Ident { "," @Ident } ] ")"`
}

type astTrace struct {
	Text string    `"trace" "(" @String ")"`
	Next *astInstr `@@?`
}

type astComment struct {
	Text string    `@Comment`
	Next *astInstr `@@?`
}

type astDie struct {
	Present bool `@"die"`
}

type astReturn struct {
	Reg string `"return" @Ident`
}

type astJump struct {
	Label string `"jump" @Ident`
}

type astValue struct {
	Tag  *int    `  "tag" "(" @Int ")"`
	Unit bool    `| @"unit"`
	Reg  *string ` | @Ident`
}

type astPattern struct {
	Wildcard bool    `  @"_"`
	Reg      *string `| @Ident`
}
