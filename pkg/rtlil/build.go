package rtlil

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceTMR/pkg/netlist"
)

// Build converts a syntax tree into a netlist design. Attributes attach to
// the module, wire or cell that follows them.
func Build(f *File) (*netlist.Design, error) {
	d := netlist.NewDesign()
	if f.Autoidx != nil {
		d.Autoidx = *f.Autoidx
	}

	var pending []*Attr
	for _, item := range f.Items {
		switch {
		case item.Attr != nil:
			pending = append(pending, item.Attr)
		case item.Module != nil:
			m, err := buildModule(item.Module, pending)
			if err != nil {
				return nil, err
			}
			pending = nil
			if err := d.AddModule(m); err != nil {
				return nil, fmt.Errorf("rtlil: %w", err)
			}
		}
	}
	if len(pending) > 0 {
		return nil, fmt.Errorf("rtlil: attribute %s is not followed by a module", pending[0].Name)
	}
	return d, nil
}

type deferredCell struct {
	cell  *Cell
	attrs []*Attr
}

func buildModule(am *Module, attrs []*Attr) (*netlist.Module, error) {
	m := netlist.NewModule(am.Name)
	for _, a := range attrs {
		v, err := buildConst(a.Value)
		if err != nil {
			return nil, fmt.Errorf("rtlil: module %s: attribute %s: %w", am.Name, a.Name, err)
		}
		m.Attributes[a.Name] = v
	}

	// Wires first, so that cells and connections may refer to wires
	// declared further down.
	var cells []deferredCell
	var conns []*Connect
	var pending []*Attr
	for _, item := range am.Items {
		switch {
		case item.Attr != nil:
			pending = append(pending, item.Attr)
			continue
		case item.Param != nil:
			p := netlist.ModuleParam{Name: item.Param.Name}
			if item.Param.Default != nil {
				v, err := buildConst(item.Param.Default)
				if err != nil {
					return nil, fmt.Errorf("rtlil: module %s: parameter %s: %w", am.Name, p.Name, err)
				}
				p.Default = &v
			}
			m.Parameters = append(m.Parameters, p)
		case item.Wire != nil:
			if err := buildWire(m, item.Wire, pending); err != nil {
				return nil, err
			}
			pending = nil
			continue
		case item.Cell != nil:
			cells = append(cells, deferredCell{cell: item.Cell, attrs: pending})
			pending = nil
			continue
		case item.Connect != nil:
			conns = append(conns, item.Connect)
		}
		if len(pending) > 0 {
			return nil, fmt.Errorf("rtlil: module %s: attribute %s is not followed by a wire or cell",
				am.Name, pending[0].Name)
		}
	}
	if len(pending) > 0 {
		return nil, fmt.Errorf("rtlil: module %s: attribute %s is not followed by a wire or cell",
			am.Name, pending[0].Name)
	}
	m.FixupPorts()

	for _, dc := range cells {
		if err := buildCell(m, dc.cell, dc.attrs); err != nil {
			return nil, err
		}
	}
	for _, c := range conns {
		sink, err := buildSig(m, c.Sink)
		if err != nil {
			return nil, err
		}
		driver, err := buildSig(m, c.Driver)
		if err != nil {
			return nil, err
		}
		if sink.Width() != driver.Width() {
			return nil, fmt.Errorf("rtlil: module %s: connect %s %s: width mismatch %d != %d",
				m.Name, sink, driver, sink.Width(), driver.Width())
		}
		m.Connect(sink, driver)
	}
	return m, nil
}

func buildWire(m *netlist.Module, aw *Wire, attrs []*Attr) error {
	if m.Wire(aw.Name) != nil {
		return fmt.Errorf("rtlil: module %s: duplicate wire %s", m.Name, aw.Name)
	}
	width := 1
	for _, opt := range aw.Options {
		if opt.Width != nil {
			width = *opt.Width
		}
	}
	if width < 0 {
		return fmt.Errorf("rtlil: module %s: wire %s has negative width", m.Name, aw.Name)
	}

	w := m.AddWire(aw.Name, width)
	for _, opt := range aw.Options {
		switch {
		case opt.Offset != nil:
			w.Offset = *opt.Offset
		case opt.Input != nil:
			w.PortInput = true
			w.PortID = *opt.Input
		case opt.Output != nil:
			w.PortOutput = true
			w.PortID = *opt.Output
		case opt.Inout != nil:
			w.PortInput = true
			w.PortOutput = true
			w.PortID = *opt.Inout
		case opt.Upto:
			w.Upto = true
		case opt.Signed:
			w.Signed = true
		}
	}
	for _, a := range attrs {
		v, err := buildConst(a.Value)
		if err != nil {
			return fmt.Errorf("rtlil: module %s: wire %s: attribute %s: %w", m.Name, aw.Name, a.Name, err)
		}
		w.SetAttribute(a.Name, v)
	}
	return nil
}

func buildCell(m *netlist.Module, ac *Cell, attrs []*Attr) error {
	if m.Cell(ac.Name) != nil {
		return fmt.Errorf("rtlil: module %s: duplicate cell %s", m.Name, ac.Name)
	}
	c := m.AddCell(ac.Name, ac.Type)
	for _, item := range ac.Items {
		switch {
		case item.Attr != nil:
			attrs = append(attrs, item.Attr)
		case item.Param != nil:
			v, err := buildConst(item.Param.Value)
			if err != nil {
				return fmt.Errorf("rtlil: cell %s: parameter %s: %w", ac.Name, item.Param.Name, err)
			}
			c.SetParam(item.Param.Name, v)
		case item.Port != nil:
			sig, err := buildSig(m, item.Port.Signal)
			if err != nil {
				return fmt.Errorf("rtlil: cell %s: port %s: %w", ac.Name, item.Port.Port, err)
			}
			c.SetPort(item.Port.Port, sig)
		}
	}
	for _, a := range attrs {
		v, err := buildConst(a.Value)
		if err != nil {
			return fmt.Errorf("rtlil: cell %s: attribute %s: %w", ac.Name, a.Name, err)
		}
		c.SetAttribute(a.Name, v)
	}
	return nil
}

func buildSig(m *netlist.Module, s *Sig) (netlist.SigSpec, error) {
	var out netlist.SigSpec
	switch {
	case s.Concat != nil:
		// Parts are written MSB first.
		for i := len(s.Concat.Parts) - 1; i >= 0; i-- {
			part, err := buildSig(m, s.Concat.Parts[i])
			if err != nil {
				return out, err
			}
			out.Append(part)
		}
	case s.Const != nil:
		c, err := buildConst(s.Const)
		if err != nil {
			return out, err
		}
		if c.IsString {
			return out, fmt.Errorf("rtlil: module %s: string constant in signal", m.Name)
		}
		out.AppendConst(c.Bits...)
	case s.Ref != nil:
		w := m.Wire(s.Ref.Name)
		if w == nil {
			return out, fmt.Errorf("rtlil: module %s: unknown wire %s", m.Name, s.Ref.Name)
		}
		if s.Ref.Select == nil {
			out.AppendWire(w, 0, w.Width)
			break
		}
		hi := s.Ref.Select.Hi
		lo := hi
		if s.Ref.Select.Lo != nil {
			lo = *s.Ref.Select.Lo
		}
		if lo > hi {
			return out, fmt.Errorf("rtlil: module %s: reversed range %s [%d:%d]", m.Name, w.Name, hi, lo)
		}
		offset := lo - w.Offset
		width := hi - lo + 1
		if offset < 0 || offset+width > w.Width {
			return out, fmt.Errorf("rtlil: module %s: range %s [%d:%d] out of bounds", m.Name, w.Name, hi, lo)
		}
		out.AppendWire(w, offset, width)
	}
	return out, nil
}

func buildConst(c *ConstLit) (netlist.Const, error) {
	switch {
	case c.Str != nil:
		s, err := strconv.Unquote(*c.Str)
		if err != nil {
			return netlist.Const{}, fmt.Errorf("malformed string %s: %w", *c.Str, err)
		}
		return netlist.ConstString(s), nil
	case c.Bits != nil:
		return netlist.ParseBits(*c.Bits)
	case c.Int != nil:
		return netlist.ConstInt(*c.Int, 32), nil
	}
	return netlist.Const{}, fmt.Errorf("empty constant")
}
