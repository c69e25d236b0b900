package netlist

import (
	"encoding/json"
	"fmt"
	"io"
)

// PortJSON describes a module port in the JSON export.
type PortJSON struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Width     int    `json:"width"`
}

// CellJSON describes a cell in the JSON export.
type CellJSON struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Ports      map[string]string `json:"ports"`
}

// ConnectionJSON describes a direct assignment in the JSON export.
type ConnectionJSON struct {
	Sink   string `json:"sink"`
	Driver string `json:"driver"`
}

// ModuleJSON describes a module in the JSON export.
type ModuleJSON struct {
	Name        string           `json:"name"`
	Ports       []PortJSON       `json:"ports"`
	WireCount   int              `json:"wire_count"`
	Cells       []CellJSON       `json:"cells"`
	Connections []ConnectionJSON `json:"connections"`
}

// DesignJSON is the top-level JSON export document.
type DesignJSON struct {
	Version     string       `json:"version"`
	ModuleCount int          `json:"module_count"`
	Modules     []ModuleJSON `json:"modules"`
	GeneratedBy string       `json:"generated_by"`
}

// Direction returns the port direction keyword of a wire.
func (w *Wire) Direction() string {
	switch {
	case w.PortInput && w.PortOutput:
		return "inout"
	case w.PortInput:
		return "input"
	case w.PortOutput:
		return "output"
	default:
		return ""
	}
}

// ExportJSON exports the selected modules to JSON format.
func (d *Design) ExportJSON() ([]byte, error) {
	mods := d.SelectedModules()
	if len(mods) == 0 {
		return nil, fmt.Errorf("netlist: no modules selected")
	}

	output := DesignJSON{
		Version:     "1.0",
		ModuleCount: len(mods),
		GeneratedBy: "tmrg netlist export",
	}
	for _, m := range mods {
		output.Modules = append(output.Modules, m.toJSON())
	}

	return json.MarshalIndent(output, "", "  ")
}

func (m *Module) toJSON() ModuleJSON {
	mj := ModuleJSON{
		Name:        m.Name,
		WireCount:   len(m.wires),
		Ports:       []PortJSON{},
		Cells:       []CellJSON{},
		Connections: []ConnectionJSON{},
	}
	for _, name := range m.ports {
		w := m.wires[name]
		mj.Ports = append(mj.Ports, PortJSON{
			Name:      w.Name,
			Direction: w.Direction(),
			Width:     w.Width,
		})
	}
	for _, c := range m.Cells() {
		cj := CellJSON{
			Name:  c.Name,
			Type:  c.Type,
			Ports: make(map[string]string),
		}
		if len(c.Parameters) > 0 {
			cj.Parameters = make(map[string]string)
			for k, v := range c.Parameters {
				cj.Parameters[k] = v.String()
			}
		}
		for _, p := range c.PortNames() {
			cj.Ports[p] = c.ports[p].String()
		}
		mj.Cells = append(mj.Cells, cj)
	}
	for _, conn := range m.connections {
		mj.Connections = append(mj.Connections, ConnectionJSON{
			Sink:   conn.Sink.String(),
			Driver: conn.Driver.String(),
		})
	}
	return mj
}

// Dot writes a Graphviz view of the module: wires as plaintext nodes,
// cells as boxes, and direct assignments as dashed edges.
func (m *Module) Dot(out io.Writer) {
	fmt.Fprintf(out, "digraph %q\n{\n", Unescape(m.Name))
	fmt.Fprintf(out, "  overlap=scale;\n")
	fmt.Fprintf(out, "  rankdir=LR;\n")
	fmt.Fprintf(out, "  node\t[fontname=\"Helvetica\"];\n")

	wireID := make(map[*Wire]int)
	fmt.Fprintf(out, "  {\n    node [shape=plaintext];\n")
	for idx, w := range m.Wires() {
		wireID[w] = idx
		fmt.Fprintf(out, "    w%d\t[label=%q];\n", idx, Unescape(w.Name))
	}
	fmt.Fprintf(out, "  }\n")

	cells := m.Cells()
	fmt.Fprintf(out, "  {\n    node [shape=box];\n")
	for idx, c := range cells {
		fmt.Fprintf(out, "    c%d\t[label=%q];\n", idx, Unescape(c.Type))
	}
	fmt.Fprintf(out, "  }\n")

	var inputs, outputs []int
	for _, name := range m.ports {
		w := m.wires[name]
		if w.PortInput {
			inputs = append(inputs, wireID[w])
		}
		if w.PortOutput {
			outputs = append(outputs, wireID[w])
		}
	}
	for _, rank := range [][]int{inputs, outputs} {
		if len(rank) == 0 {
			continue
		}
		fmt.Fprintf(out, "  {  rank=same")
		for _, id := range rank {
			fmt.Fprintf(out, "; w%d", id)
		}
		fmt.Fprintf(out, ";}\n")
	}

	for idx, c := range cells {
		for _, p := range c.PortNames() {
			for _, w := range c.ports[p].Wires() {
				fmt.Fprintf(out, "  w%d -> c%d\t[label=%q];\n",
					wireID[w], idx, Unescape(p))
			}
		}
	}
	for _, conn := range m.connections {
		for _, d := range conn.Driver.Wires() {
			for _, s := range conn.Sink.Wires() {
				fmt.Fprintf(out, "  w%d -> w%d\t[style=dashed];\n",
					wireID[d], wireID[s])
			}
		}
	}
	fmt.Fprintf(out, "}\n")
}
