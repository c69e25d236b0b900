package rtlil

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// RTLILLexer defines the lexical structure of Yosys RTLIL text.
// Keywords are plain words and matched by value in the grammar.
var RTLILLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments run to end of line
	{Name: "Comment", Pattern: `#[^\n]*`},

	{Name: "Whitespace", Pattern: `[\s\t\n\r]+`},

	// String literals with escape sequences
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},

	// Sized bit constants (e.g. 4'01x0), before plain integers
	{Name: "Const", Pattern: `[0-9]+'[01xzm-]*`},
	{Name: "Int", Pattern: `-?[0-9]+`},

	// Identifiers carry their sigil: \public or $private
	{Name: "Ident", Pattern: `[\\$]\S+`},

	// Keywords: module, wire, cell, connect, attribute, ...
	{Name: "Word", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

	{Name: "Punct", Pattern: `[\[\]{}:]`},
})
