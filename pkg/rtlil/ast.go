package rtlil

// File is a complete RTLIL document.
// Example: autoidx 12  module \top ... end
type File struct {
	Autoidx *int       `( "autoidx" @Int )?`
	Items   []*TopItem `@@*`
}

// TopItem is a design-level attribute or a module.
type TopItem struct {
	Attr   *Attr   `  @@`
	Module *Module `| @@`
}

// Attr is an attribute that applies to the next module, wire or cell.
// Example: attribute \src "top.v:3.1-9.10"
type Attr struct {
	Name  string    `"attribute" @Ident`
	Value *ConstLit `@@`
}

// Module is a module body.
type Module struct {
	Name  string        `"module" @Ident`
	Items []*ModuleItem `@@* "end"`
}

// ModuleItem is one statement inside a module.
type ModuleItem struct {
	Attr    *Attr      `  @@`
	Param   *ParamDecl `| @@`
	Wire    *Wire      `| @@`
	Cell    *Cell      `| @@`
	Connect *Connect   `| @@`
}

// ParamDecl declares a module parameter with an optional default.
// Example: parameter \WIDTH 8
type ParamDecl struct {
	Name    string    `"parameter" @Ident`
	Default *ConstLit `@@?`
}

// Wire is a wire declaration.
// Example: wire width 8 offset 0 input 1 \data
type Wire struct {
	Options []*WireOption `"wire" @@*`
	Name    string        `@Ident`
}

// WireOption is a single wire modifier.
type WireOption struct {
	Width  *int `  "width" @Int`
	Offset *int `| "offset" @Int`
	Input  *int `| "input" @Int`
	Output *int `| "output" @Int`
	Inout  *int `| "inout" @Int`
	Upto   bool `| @"upto"`
	Signed bool `| @"signed"`
}

// Cell is a cell instance with its parameters and port bindings.
// Example: cell $and $and$top.v:3$1 ... end
type Cell struct {
	Type  string      `"cell" @Ident`
	Name  string      `@Ident`
	Items []*CellItem `@@* "end"`
}

// CellItem is one statement inside a cell body.
type CellItem struct {
	Attr  *Attr      `  @@`
	Param *CellParam `| @@`
	Port  *PortConn  `| @@`
}

// CellParam is a cell parameter value.
// Example: parameter signed \B_WIDTH 1
type CellParam struct {
	Flags []string  `"parameter" @( "signed" | "real" )*`
	Name  string    `@Ident`
	Value *ConstLit `@@`
}

// PortConn binds a cell port to a signal.
// Example: connect \A \data [3:0]
type PortConn struct {
	Port   string `"connect" @Ident`
	Signal *Sig   `@@`
}

// Connect is a module-level assignment of a driver to a sink.
// Example: connect \y \a
type Connect struct {
	Sink   *Sig `"connect" @@`
	Driver *Sig `@@`
}

// Sig is a signal expression. Concatenations list their parts MSB first.
type Sig struct {
	Concat *SigConcat `  @@`
	Const  *ConstLit  `| @@`
	Ref    *SigRef    `| @@`
}

// SigConcat is a braced concatenation.
// Example: { \a [1] 1'0 \b }
type SigConcat struct {
	Parts []*Sig `"{" @@* "}"`
}

// SigRef names a whole wire, a single bit or a bit range.
// Example: \data [7:4]
type SigRef struct {
	Name   string  `@Ident`
	Select *BitSel `@@?`
}

// BitSel is a bit index or an inclusive hi:lo range.
type BitSel struct {
	Hi int  `"[" @Int`
	Lo *int `( ":" @Int )? "]"`
}

// ConstLit is a string, sized bit vector or integer value.
type ConstLit struct {
	Str  *string `  @String`
	Bits *string `| @Const`
	Int  *int64  `| @Int`
}
