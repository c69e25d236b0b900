package netlist

import (
	"fmt"
	"path"
)

// Design is an ordered collection of modules.
type Design struct {
	Attributes Attributes

	// Autoidx is the next free index for generated identifiers.
	Autoidx int

	modules   []*Module
	byName    map[string]*Module
	selection *Selection
}

// NewDesign creates an empty design with everything selected.
func NewDesign() *Design {
	return &Design{
		Attributes: make(Attributes),
		Autoidx:    1,
		byName:     make(map[string]*Module),
	}
}

// AddModule appends a module to the design.
func (d *Design) AddModule(m *Module) error {
	if _, ok := d.byName[m.Name]; ok {
		return fmt.Errorf("netlist: duplicate module %s", m.Name)
	}
	m.design = d
	d.modules = append(d.modules, m)
	d.byName[m.Name] = m
	return nil
}

// Module returns the named module or nil.
func (d *Design) Module(name string) *Module {
	return d.byName[name]
}

// Modules returns the modules in design order.
func (d *Design) Modules() []*Module {
	return d.modules
}

// NewID returns a fresh private identifier of the form
// $auto$<origin>$<n>.
func (d *Design) NewID(origin string) string {
	id := fmt.Sprintf("$auto$%s$%d", origin, d.Autoidx)
	d.Autoidx++
	return id
}

// Select restricts the selection to modules matching the glob patterns.
// Patterns match the unescaped module name. No patterns selects all.
func (d *Design) Select(patterns ...string) error {
	if len(patterns) == 0 {
		d.selection = nil
		return nil
	}
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return fmt.Errorf("netlist: invalid selection pattern %q: %w", p, err)
		}
	}
	d.selection = &Selection{Patterns: patterns}
	return nil
}

// Selected reports whether the module is part of the current selection.
func (d *Design) Selected(m *Module) bool {
	return d.selection.Matches(m)
}

// SelectedModules returns the selected modules in design order.
func (d *Design) SelectedModules() []*Module {
	var result []*Module
	for _, m := range d.modules {
		if d.Selected(m) {
			result = append(result, m)
		}
	}
	return result
}

// Selection holds module glob patterns. A nil selection matches
// everything. Within a selected module all wires and cells are selected.
type Selection struct {
	Patterns []string
}

// Matches reports whether the module is selected.
func (s *Selection) Matches(m *Module) bool {
	if s == nil || len(s.Patterns) == 0 {
		return true
	}
	name := Unescape(m.Name)
	for _, p := range s.Patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}

// SelectedCells returns the cells of m that are selected, sorted by name.
func (d *Design) SelectedCells(m *Module) []*Cell {
	if !d.Selected(m) {
		return nil
	}
	return m.Cells()
}
