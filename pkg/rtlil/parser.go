package rtlil

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"

	"github.com/OpenTraceLab/OpenTraceTMR/pkg/netlist"
)

// Parser reads RTLIL text.
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser creates a new RTLIL parser instance
func NewParser() (*Parser, error) {
	parser, err := participle.Build[File](
		participle.Lexer(RTLILLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("rtlil: failed to build parser: %w", err)
	}

	return &Parser{parser: parser}, nil
}

// Parse parses RTLIL text from a reader into its syntax tree.
func (p *Parser) Parse(filename string, r io.Reader) (*File, error) {
	f, err := p.parser.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("rtlil: parse error: %w", err)
	}
	return f, nil
}

// ParseString parses RTLIL text from a string into its syntax tree.
func (p *Parser) ParseString(input string) (*File, error) {
	f, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("rtlil: parse error: %w", err)
	}
	return f, nil
}

// Read parses RTLIL text and builds the design it describes.
func (p *Parser) Read(filename string, r io.Reader) (*netlist.Design, error) {
	f, err := p.Parse(filename, r)
	if err != nil {
		return nil, err
	}
	return Build(f)
}

// ReadString parses RTLIL text from a string and builds the design.
func (p *Parser) ReadString(input string) (*netlist.Design, error) {
	f, err := p.ParseString(input)
	if err != nil {
		return nil, err
	}
	return Build(f)
}

// ReadFile parses an RTLIL file and builds the design.
func (p *Parser) ReadFile(filename string) (*netlist.Design, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("rtlil: failed to open file: %w", err)
	}
	defer file.Close()

	return p.Read(filename, file)
}
