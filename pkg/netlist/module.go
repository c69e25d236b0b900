package netlist

import (
	"fmt"
	"sort"
)

// Wire is a named, signal-carrying node of a module.
type Wire struct {
	Name       string
	Width      int
	Offset     int
	Upto       bool
	Signed     bool
	PortInput  bool
	PortOutput bool
	PortID     int
	Attributes Attributes

	// Visibility and Provenance are fixed when the wire is created and
	// follow the src attribute through SetAttribute.
	Visibility Visibility
	Provenance Provenance

	module *Module
}

// IsPort reports whether the wire carries a port direction.
func (w *Wire) IsPort() bool {
	return w.PortInput || w.PortOutput
}

// Internal reports whether the wire is neither input nor output.
func (w *Wire) Internal() bool {
	return !w.PortInput && !w.PortOutput
}

// Module returns the module owning the wire.
func (w *Wire) Module() *Module {
	return w.module
}

// SetAttribute sets an attribute and refreshes the provenance when the
// src attribute changes.
func (w *Wire) SetAttribute(name string, value Const) {
	w.Attributes[name] = value
	if name == AttrSrc {
		w.Provenance = provenanceOf(w.Name, w.Attributes)
	}
}

func (w *Wire) String() string {
	return w.Name
}

// Cell is an instance of a primitive or a submodule.
type Cell struct {
	Name       string
	Type       string
	Parameters Attributes
	Attributes Attributes
	Visibility Visibility
	Provenance Provenance

	ports  map[string]SigSpec
	module *Module
}

// SetPort binds a port to a signal.
func (c *Cell) SetPort(port string, sig SigSpec) {
	c.ports[port] = sig
}

// Port returns the signal bound to a port.
func (c *Cell) Port(port string) (SigSpec, bool) {
	sig, ok := c.ports[port]
	return sig, ok
}

// UnsetPort removes a port binding.
func (c *Cell) UnsetPort(port string) {
	delete(c.ports, port)
}

// PortNames returns the bound port names in sorted order.
func (c *Cell) PortNames() []string {
	return sortedKeys(c.ports)
}

// SetParam sets a parameter value.
func (c *Cell) SetParam(name string, value Const) {
	c.Parameters[name] = value
}

// SetAttribute sets an attribute and refreshes the provenance when the
// src attribute changes.
func (c *Cell) SetAttribute(name string, value Const) {
	c.Attributes[name] = value
	if name == AttrSrc {
		c.Provenance = provenanceOf(c.Name, c.Attributes)
	}
}

// Internal reports whether the cell type is a built-in ($) primitive.
func (c *Cell) Internal() bool {
	return VisibilityOf(c.Type) == Private
}

// Module returns the module owning the cell.
func (c *Cell) Module() *Module {
	return c.module
}

func (c *Cell) String() string {
	return fmt.Sprintf("%s %s", c.Type, c.Name)
}

// Connection is a direct assignment Sink = Driver.
type Connection struct {
	Sink   SigSpec
	Driver SigSpec
}

// References reports whether either endpoint refers to w in any chunk.
func (c Connection) References(w *Wire) bool {
	return c.Sink.References(w) || c.Driver.References(w)
}

// Module is a graph of wires, cells and connections.
type Module struct {
	Name       string
	Attributes Attributes
	Parameters []ModuleParam

	wires       map[string]*Wire
	cells       map[string]*Cell
	connections []Connection
	ports       []string
	design      *Design
}

// ModuleParam is a module-level parameter declaration with an optional
// default value.
type ModuleParam struct {
	Name    string
	Default *Const
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{
		Name:       name,
		Attributes: make(Attributes),
		wires:      make(map[string]*Wire),
		cells:      make(map[string]*Cell),
	}
}

// Design returns the design the module belongs to, or nil.
func (m *Module) Design() *Design {
	return m.design
}

// AddWire creates a new wire. It panics if the name is taken; callers look
// the name up first.
func (m *Module) AddWire(name string, width int) *Wire {
	if _, ok := m.wires[name]; ok {
		panic(fmt.Sprintf("netlist: wire %s already exists in %s", name, m.Name))
	}
	w := &Wire{
		Name:       name,
		Width:      width,
		Attributes: make(Attributes),
		Visibility: VisibilityOf(name),
		Provenance: ProvenanceFromName(name),
		module:     m,
	}
	m.wires[name] = w
	return w
}

// Wire returns the named wire or nil.
func (m *Module) Wire(name string) *Wire {
	return m.wires[name]
}

// Wires returns all wires sorted by name.
func (m *Module) Wires() []*Wire {
	result := make([]*Wire, 0, len(m.wires))
	for _, name := range sortedKeys(m.wires) {
		result = append(result, m.wires[name])
	}
	return result
}

// NumWires returns the number of wires.
func (m *Module) NumWires() int {
	return len(m.wires)
}

// AddCell creates a new cell. It panics if the name is taken.
func (m *Module) AddCell(name, typ string) *Cell {
	if _, ok := m.cells[name]; ok {
		panic(fmt.Sprintf("netlist: cell %s already exists in %s", name, m.Name))
	}
	c := &Cell{
		Name:       name,
		Type:       typ,
		Parameters: make(Attributes),
		Attributes: make(Attributes),
		Visibility: VisibilityOf(name),
		Provenance: ProvenanceFromName(name),
		ports:      make(map[string]SigSpec),
		module:     m,
	}
	m.cells[name] = c
	return c
}

// Cell returns the named cell or nil.
func (m *Module) Cell(name string) *Cell {
	return m.cells[name]
}

// Cells returns all cells sorted by name.
func (m *Module) Cells() []*Cell {
	result := make([]*Cell, 0, len(m.cells))
	for _, name := range sortedKeys(m.cells) {
		result = append(result, m.cells[name])
	}
	return result
}

// NumCells returns the number of cells.
func (m *Module) NumCells() int {
	return len(m.cells)
}

// RemoveCell deletes a cell from the module.
func (m *Module) RemoveCell(c *Cell) {
	if m.cells[c.Name] == c {
		delete(m.cells, c.Name)
		c.module = nil
	}
}

// RenameCell moves a cell to a new name. The new name must be free.
func (m *Module) RenameCell(c *Cell, name string) error {
	if m.cells[c.Name] != c {
		return fmt.Errorf("netlist: cell %s not in module %s", c.Name, m.Name)
	}
	if _, ok := m.cells[name]; ok {
		return fmt.Errorf("netlist: cell %s already exists in %s", name, m.Name)
	}
	delete(m.cells, c.Name)
	c.Name = name
	c.Visibility = VisibilityOf(name)
	c.Provenance = provenanceOf(name, c.Attributes)
	m.cells[name] = c
	return nil
}

// RemoveWires deletes the wires from the module and recomputes the port
// list. Connections and cell ports referring to them are left untouched;
// callers clean those up first.
func (m *Module) RemoveWires(wires map[*Wire]bool) {
	for w := range wires {
		if m.wires[w.Name] == w {
			delete(m.wires, w.Name)
			w.module = nil
		}
	}
	m.FixupPorts()
}

// Connect appends a direct assignment.
func (m *Module) Connect(sink, driver SigSpec) {
	m.connections = append(m.connections, Connection{Sink: sink, Driver: driver})
}

// Connections returns the connection list. The slice must not be
// modified; use SetConnections to replace it.
func (m *Module) Connections() []Connection {
	return m.connections
}

// SetConnections replaces the connection list.
func (m *Module) SetConnections(conns []Connection) {
	m.connections = conns
}

// FixupPorts recomputes the port list from the wire port flags. Ports
// keep their relative order; new ports are appended in name order.
func (m *Module) FixupPorts() {
	var ports []*Wire
	for _, w := range m.wires {
		if w.IsPort() {
			ports = append(ports, w)
		} else {
			w.PortID = 0
		}
	}
	sort.Slice(ports, func(i, j int) bool {
		a, b := ports[i], ports[j]
		if (a.PortID == 0) != (b.PortID == 0) {
			return a.PortID != 0
		}
		if a.PortID != b.PortID {
			return a.PortID < b.PortID
		}
		return a.Name < b.Name
	})
	m.ports = make([]string, 0, len(ports))
	for i, w := range ports {
		w.PortID = i + 1
		m.ports = append(m.ports, w.Name)
	}
}

// Ports returns the port names in port order.
func (m *Module) Ports() []string {
	return m.ports
}

// Used reports whether any connection or cell port refers to w.
func (m *Module) Used(w *Wire) bool {
	for _, c := range m.connections {
		if c.References(w) {
			return true
		}
	}
	return m.BoundToCell(w)
}

// BoundToCell reports whether any cell port refers to w.
func (m *Module) BoundToCell(w *Wire) bool {
	for _, c := range m.cells {
		for _, sig := range c.ports {
			if sig.References(w) {
				return true
			}
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
