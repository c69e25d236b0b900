package netlist

// Stats summarizes the size of a module.
type Stats struct {
	Wires       int
	Bits        int
	Ports       int
	Cells       int
	Connections int
	CellTypes   map[string]int
}

// Stats collects module statistics.
func (m *Module) Stats() Stats {
	st := Stats{
		Wires:       len(m.wires),
		Ports:       len(m.ports),
		Cells:       len(m.cells),
		Connections: len(m.connections),
		CellTypes:   make(map[string]int),
	}
	for _, w := range m.wires {
		st.Bits += w.Width
	}
	for _, c := range m.cells {
		st.CellTypes[c.Type]++
	}
	return st
}
