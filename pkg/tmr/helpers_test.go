package tmr

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceTMR/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceTMR/pkg/rtlil"
)

func parseDesign(t *testing.T, text string) *netlist.Design {
	t.Helper()
	parser, err := rtlil.NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	d, err := parser.ReadString(text)
	if err != nil {
		t.Fatalf("Failed to read design: %v", err)
	}
	return d
}

func runPass(t *testing.T, d *netlist.Design, cfg *Config) *Report {
	t.Helper()
	pass, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create pass: %v", err)
	}
	report, err := pass.Run(context.Background(), d, nil)
	if err != nil {
		t.Fatalf("Pass failed: %v", err)
	}
	return report
}

// sortedPorts returns the module ports with their direction, sorted.
func sortedPorts(m *netlist.Module) string {
	var ports []string
	for _, name := range m.Ports() {
		ports = append(ports, m.Wire(name).Direction()+" "+name)
	}
	sort.Strings(ports)
	return strings.Join(ports, ",")
}

func cellsOfType(m *netlist.Module, typ string) []*netlist.Cell {
	var result []*netlist.Cell
	for _, c := range m.Cells() {
		if c.Type == typ {
			result = append(result, c)
		}
	}
	return result
}

func portWire(t *testing.T, c *netlist.Cell, port string) *netlist.Wire {
	t.Helper()
	sig, ok := c.Port(port)
	if !ok {
		t.Fatalf("cell %s has no port %s", c.Name, port)
	}
	w := sig.AsWire()
	if w == nil {
		t.Fatalf("cell %s port %s is not a whole wire: %s", c.Name, port, sig)
	}
	return w
}

func hasConnection(m *netlist.Module, sink, driver string) bool {
	for _, conn := range m.Connections() {
		if conn.Sink.String() == sink && conn.Driver.String() == driver {
			return true
		}
	}
	return false
}

// checkVoter verifies that exactly one voter drives w from its replicas.
func checkVoter(t *testing.T, m *netlist.Module, w string) {
	t.Helper()
	var found int
	for _, c := range cellsOfType(m, VoterType) {
		if portWire(t, c, `\out`).Name != w {
			continue
		}
		found++
		for _, s := range suffixes {
			if got := portWire(t, c, `\in`+s).Name; got != w+s {
				t.Errorf("voter %s input %s = %s, want %s", c.Name, s, got, w+s)
			}
		}
	}
	if found != 1 {
		t.Errorf("expected exactly one voter driving %s, found %d", w, found)
	}
}

// checkFanout verifies that exactly one fanout reads w into its replicas.
func checkFanout(t *testing.T, m *netlist.Module, w string) {
	t.Helper()
	var found int
	for _, c := range cellsOfType(m, FanoutType) {
		if portWire(t, c, `\in`).Name != w {
			continue
		}
		found++
		for _, s := range suffixes {
			if got := portWire(t, c, `\out`+s).Name; got != w+s {
				t.Errorf("fanout %s output %s = %s, want %s", c.Name, s, got, w+s)
			}
		}
	}
	if found != 1 {
		t.Errorf("expected exactly one fanout reading %s, found %d", w, found)
	}
}

// checkExclusive verifies that no wire is both voted and fanned out.
func checkExclusive(t *testing.T, m *netlist.Module) {
	t.Helper()
	voted := make(map[string]bool)
	for _, c := range cellsOfType(m, VoterType) {
		voted[portWire(t, c, `\out`).Name] = true
	}
	for _, c := range cellsOfType(m, FanoutType) {
		if w := portWire(t, c, `\in`).Name; voted[w] {
			t.Errorf("wire %s has both a voter and a fanout", w)
		}
	}
}

// checkReferences verifies that every signal refers to wires of the module.
func checkReferences(t *testing.T, m *netlist.Module) {
	t.Helper()
	check := func(where string, sig netlist.SigSpec) {
		for _, w := range sig.Wires() {
			if m.Wire(w.Name) != w {
				t.Errorf("%s refers to removed wire %s", where, w.Name)
			}
		}
	}
	for _, c := range m.Cells() {
		for _, p := range c.PortNames() {
			sig, _ := c.Port(p)
			check(c.Name+"."+p, sig)
		}
	}
	for _, conn := range m.Connections() {
		check("connection", conn.Sink)
		check("connection", conn.Driver)
	}
}
