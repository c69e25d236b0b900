package netlist

import (
	"strings"
	"testing"
)

func newTestModule() *Module {
	m := NewModule(`\top`)
	a := m.AddWire(`\a`, 1)
	a.PortInput = true
	y := m.AddWire(`\y`, 1)
	y.PortOutput = true
	n := m.AddWire(`$not$top.v:3$1_Y`, 1)

	c := m.AddCell(`$not$top.v:3$1`, `$not`)
	c.SetPort(`\A`, SigWire(a))
	c.SetPort(`\Y`, SigWire(n))
	m.Connect(SigWire(y), SigWire(n))
	m.FixupPorts()
	return m
}

func TestModuleWiresSorted(t *testing.T) {
	m := newTestModule()

	var names []string
	for _, w := range m.Wires() {
		names = append(names, w.Name)
	}
	got := strings.Join(names, ",")
	want := `$not$top.v:3$1_Y,\a,\y`
	if got != want {
		t.Errorf("expected wires %s, got %s", want, got)
	}
}

func TestModuleAddWireDuplicatePanics(t *testing.T) {
	m := NewModule(`\top`)
	m.AddWire(`\a`, 1)

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on duplicate wire")
		}
	}()
	m.AddWire(`\a`, 1)
}

func TestFixupPortsKeepsOrder(t *testing.T) {
	m := newTestModule()
	if got := strings.Join(m.Ports(), ","); got != `\a,\y` {
		t.Fatalf("unexpected initial ports %s", got)
	}

	// New ports are appended after the existing ones in name order.
	b := m.AddWire(`\b`, 1)
	b.PortInput = true
	c := m.AddWire(`\c`, 1)
	c.PortOutput = true
	m.FixupPorts()

	if got := strings.Join(m.Ports(), ","); got != `\a,\y,\b,\c` {
		t.Errorf("expected ports a,y,b,c got %s", got)
	}
	if b.PortID != 3 || c.PortID != 4 {
		t.Errorf("unexpected port ids b=%d c=%d", b.PortID, c.PortID)
	}

	// Clearing a flag removes the port and renumbers the rest.
	m.Wire(`\y`).PortOutput = false
	m.FixupPorts()
	if got := strings.Join(m.Ports(), ","); got != `\a,\b,\c` {
		t.Errorf("expected ports a,b,c got %s", got)
	}
	if m.Wire(`\y`).PortID != 0 {
		t.Errorf("non-port wire kept port id %d", m.Wire(`\y`).PortID)
	}
}

func TestModuleUsed(t *testing.T) {
	m := newTestModule()
	free := m.AddWire(`\free`, 1)

	if !m.Used(m.Wire(`\a`)) {
		t.Errorf("a is bound to a cell port")
	}
	if !m.Used(m.Wire(`\y`)) {
		t.Errorf("y is a connection sink")
	}
	if m.BoundToCell(m.Wire(`\y`)) {
		t.Errorf("y is not bound to a cell")
	}
	if m.Used(free) {
		t.Errorf("free wire reported as used")
	}
}

func TestRenameCell(t *testing.T) {
	m := newTestModule()
	c := m.Cell(`$not$top.v:3$1`)

	if err := m.RenameCell(c, `\inv`); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if m.Cell(`\inv`) != c || m.Cell(`$not$top.v:3$1`) != nil {
		t.Errorf("cell not moved to new name")
	}
	if c.Visibility != Public || c.Provenance.Valid() {
		t.Errorf("renamed cell kept stale identity: %s %v", c.Visibility, c.Provenance)
	}

	other := m.AddCell(`\other`, `$not`)
	if err := m.RenameCell(other, `\inv`); err == nil {
		t.Errorf("expected error renaming onto an existing cell")
	}
}

func TestRemoveWires(t *testing.T) {
	m := newTestModule()
	y := m.Wire(`\y`)

	m.RemoveWires(map[*Wire]bool{y: true})

	if m.Wire(`\y`) != nil {
		t.Errorf("wire y still present")
	}
	if y.Module() != nil {
		t.Errorf("removed wire still points at its module")
	}
	if got := strings.Join(m.Ports(), ","); got != `\a` {
		t.Errorf("expected ports a, got %s", got)
	}
}

func TestDesignModules(t *testing.T) {
	d := NewDesign()
	top := NewModule(`\top`)
	sub := NewModule(`\sub`)
	if err := d.AddModule(top); err != nil {
		t.Fatal(err)
	}
	if err := d.AddModule(sub); err != nil {
		t.Fatal(err)
	}
	if err := d.AddModule(NewModule(`\top`)); err == nil {
		t.Errorf("expected duplicate module error")
	}
	if top.Design() != d {
		t.Errorf("module not attached to design")
	}

	if id := d.NewID("tmrg"); id != `$auto$tmrg$1` {
		t.Errorf("unexpected id %s", id)
	}
	if id := d.NewID("tmrg"); id != `$auto$tmrg$2` {
		t.Errorf("unexpected id %s", id)
	}
}

func TestDesignSelect(t *testing.T) {
	d := NewDesign()
	for _, name := range []string{`\top`, `\sub_a`, `\sub_b`} {
		if err := d.AddModule(NewModule(name)); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name     string
		patterns []string
		want     int
	}{
		{"all", nil, 3},
		{"exact", []string{"top"}, 1},
		{"glob", []string{"sub_*"}, 2},
		{"none", []string{"missing"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := d.Select(tt.patterns...); err != nil {
				t.Fatal(err)
			}
			if got := len(d.SelectedModules()); got != tt.want {
				t.Errorf("expected %d selected modules, got %d", tt.want, got)
			}
		})
	}

	if err := d.Select("["); err == nil {
		t.Errorf("expected error for malformed pattern")
	}
}

func TestStats(t *testing.T) {
	m := newTestModule()
	st := m.Stats()

	if st.Wires != 3 || st.Bits != 3 || st.Ports != 2 || st.Cells != 1 || st.Connections != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
	if st.CellTypes[`$not`] != 1 {
		t.Errorf("expected one $not cell, got %d", st.CellTypes[`$not`])
	}
}
