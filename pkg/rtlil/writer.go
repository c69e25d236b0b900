package rtlil

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/OpenTraceLab/OpenTraceTMR/pkg/netlist"
)

// Write dumps the whole design as RTLIL text. Wires and cells are written
// in name order and connections in list order, so equal designs produce
// identical text.
func Write(w io.Writer, d *netlist.Design) error {
	_, err := io.WriteString(w, Dump(d))
	return err
}

// Dump returns the RTLIL text of the design.
func Dump(d *netlist.Design) string {
	var b strings.Builder
	fmt.Fprintf(&b, "autoidx %d\n", d.Autoidx)
	for _, m := range d.Modules() {
		dumpModule(&b, m)
	}
	return b.String()
}

// DumpModule returns the RTLIL text of a single module.
func DumpModule(m *netlist.Module) string {
	var b strings.Builder
	dumpModule(&b, m)
	return b.String()
}

// Fingerprint returns the hex encoded BLAKE2b-256 digest of the design's
// RTLIL text.
func Fingerprint(d *netlist.Design) string {
	sum := blake2b.Sum256([]byte(Dump(d)))
	return hex.EncodeToString(sum[:])
}

// ModuleFingerprint returns the hex encoded BLAKE2b-256 digest of a
// module's RTLIL text.
func ModuleFingerprint(m *netlist.Module) string {
	sum := blake2b.Sum256([]byte(DumpModule(m)))
	return hex.EncodeToString(sum[:])
}

func dumpModule(b *strings.Builder, m *netlist.Module) {
	dumpAttributes(b, "", m.Attributes)
	fmt.Fprintf(b, "module %s\n", m.Name)
	for _, p := range m.Parameters {
		if p.Default != nil {
			fmt.Fprintf(b, "  parameter %s %s\n", p.Name, constText(*p.Default))
		} else {
			fmt.Fprintf(b, "  parameter %s\n", p.Name)
		}
	}
	for _, w := range m.Wires() {
		dumpAttributes(b, "  ", w.Attributes)
		b.WriteString("  wire ")
		if w.Width != 1 {
			fmt.Fprintf(b, "width %d ", w.Width)
		}
		if w.Upto {
			b.WriteString("upto ")
		}
		if w.Offset != 0 {
			fmt.Fprintf(b, "offset %d ", w.Offset)
		}
		switch {
		case w.PortInput && w.PortOutput:
			fmt.Fprintf(b, "inout %d ", w.PortID)
		case w.PortInput:
			fmt.Fprintf(b, "input %d ", w.PortID)
		case w.PortOutput:
			fmt.Fprintf(b, "output %d ", w.PortID)
		}
		if w.Signed {
			b.WriteString("signed ")
		}
		fmt.Fprintf(b, "%s\n", w.Name)
	}
	for _, c := range m.Cells() {
		dumpAttributes(b, "  ", c.Attributes)
		fmt.Fprintf(b, "  cell %s %s\n", c.Type, c.Name)
		for _, name := range c.Parameters.Names() {
			fmt.Fprintf(b, "    parameter %s %s\n", name, constText(c.Parameters[name]))
		}
		for _, port := range c.PortNames() {
			sig, _ := c.Port(port)
			fmt.Fprintf(b, "    connect %s %s\n", port, sig)
		}
		b.WriteString("  end\n")
	}
	for _, conn := range m.Connections() {
		fmt.Fprintf(b, "  connect %s %s\n", conn.Sink, conn.Driver)
	}
	b.WriteString("end\n")
}

func dumpAttributes(b *strings.Builder, indent string, attrs netlist.Attributes) {
	for _, name := range attrs.Names() {
		fmt.Fprintf(b, "%sattribute %s %s\n", indent, name, constText(attrs[name]))
	}
}

// constText renders a constant the way the RTLIL reader expects it. Strings
// use C escapes with three-digit octal for non-printable bytes.
func constText(c netlist.Const) string {
	if !c.IsString {
		return c.String()
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(c.Str); i++ {
		ch := c.Str[i]
		switch {
		case ch == '\\' || ch == '"':
			b.WriteByte('\\')
			b.WriteByte(ch)
		case ch == '\n':
			b.WriteString(`\n`)
		case ch == '\t':
			b.WriteString(`\t`)
		case ch < 32 || ch > 126:
			fmt.Fprintf(&b, `\%03o`, ch)
		default:
			b.WriteByte(ch)
		}
	}
	b.WriteByte('"')
	return b.String()
}
