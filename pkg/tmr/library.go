package tmr

import (
	"github.com/OpenTraceLab/OpenTraceTMR/pkg/netlist"
)

// AddLibrary adds single-bit definitions of the redundancy primitives to
// the design when they are missing and returns the names of the modules it
// added.
func AddLibrary(d *netlist.Design) []string {
	var added []string
	if d.Module(VoterType) == nil {
		if err := d.AddModule(voterModule()); err == nil {
			added = append(added, VoterType)
		}
	}
	if d.Module(FanoutType) == nil {
		if err := d.AddModule(fanoutModule()); err == nil {
			added = append(added, FanoutType)
		}
	}
	return added
}

func libraryModule(name string) *netlist.Module {
	m := netlist.NewModule(name)
	m.Attributes[`\keep_hierarchy`] = netlist.ConstInt(1, 32)
	one := netlist.ConstInt(1, 32)
	m.Parameters = append(m.Parameters, netlist.ModuleParam{Name: `\WIDTH`, Default: &one})
	return m
}

func libraryPort(m *netlist.Module, name string, input bool) *netlist.Wire {
	w := m.AddWire(name, 1)
	w.PortInput = input
	w.PortOutput = !input
	return w
}

// voterModule builds out = (inA & inB) | (inB & inC) | (inA & inC).
func voterModule() *netlist.Module {
	m := libraryModule(VoterType)
	in := [3]*netlist.Wire{
		libraryPort(m, `\inA`, true),
		libraryPort(m, `\inB`, true),
		libraryPort(m, `\inC`, true),
	}
	out := libraryPort(m, `\out`, false)

	ab := m.AddWire(`\ab`, 1)
	bc := m.AddWire(`\bc`, 1)
	ac := m.AddWire(`\ac`, 1)
	abbc := m.AddWire(`\ab_bc`, 1)

	gate(m, `\and_ab`, `$and`, in[0], in[1], ab)
	gate(m, `\and_bc`, `$and`, in[1], in[2], bc)
	gate(m, `\and_ac`, `$and`, in[0], in[2], ac)
	gate(m, `\or_ab_bc`, `$or`, ab, bc, abbc)
	gate(m, `\or_out`, `$or`, abbc, ac, out)

	m.FixupPorts()
	return m
}

// fanoutModule builds outA = outB = outC = in.
func fanoutModule() *netlist.Module {
	m := libraryModule(FanoutType)
	in := libraryPort(m, `\in`, true)
	for _, suffix := range suffixes {
		out := libraryPort(m, `\out`+suffix, false)
		m.Connect(netlist.SigWire(out), netlist.SigWire(in))
	}
	m.FixupPorts()
	return m
}

func gate(m *netlist.Module, name, typ string, a, b, y *netlist.Wire) {
	c := m.AddCell(name, typ)
	for _, p := range []string{`\A_SIGNED`, `\B_SIGNED`} {
		c.SetParam(p, netlist.ConstInt(0, 32))
	}
	for _, p := range []string{`\A_WIDTH`, `\B_WIDTH`, `\Y_WIDTH`} {
		c.SetParam(p, netlist.ConstInt(1, 32))
	}
	c.SetPort(`\A`, netlist.SigWire(a))
	c.SetPort(`\B`, netlist.SigWire(b))
	c.SetPort(`\Y`, netlist.SigWire(y))
}
