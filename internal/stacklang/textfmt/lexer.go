// Package textfmt is a participle-based parser for a textual StackLang
// snippet format: the straight-line subset of the instruction set (no
// case dispatch, no typed-block wrapper), intended for the "-from-text"
// entry point of the optimizer CLI and for golden-file round-trip tests.
//
// Built with lexer.MustStateful and participle.Build.
package textfmt

import "github.com/alecthomas/participle/v2/lexer"

var stackLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `;[^\n]*`, nil},
		{"String", `"(\\"|[^"])*"`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Int", `-?[0-9]+`, nil},
		{"Punctuation", `[(){}\[\]:,=]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
