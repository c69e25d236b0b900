package tmr

import (
	"sort"

	"github.com/OpenTraceLab/OpenTraceTMR/pkg/netlist"
)

// resolveExempt seeds the exempt wire set from the module's
// tmrg_do_not_triplicate attribute and grows it with the objects that were
// synthesized from the same statements as the listed internal wires.
func (s *state) resolveExempt() {
	names := s.mod.Attributes.StringSet(netlist.AttrDoNotTriplicate)

	var seeds []*netlist.Wire
	for _, name := range sortedNames(names) {
		w := s.mod.Wire(netlist.Escape(name))
		if w == nil {
			s.logf("ignoring unknown exempt wire %s", name)
			continue
		}
		if !s.exemptWires[w] {
			s.exemptWires[w] = true
			seeds = append(seeds, w)
		}
	}

	// Only the listed wires are grouped; discovered wires are not
	// regrouped.
	for _, w := range seeds {
		if !w.Internal() {
			continue
		}
		for _, g := range s.statementGroups(w) {
			for _, c := range g.cells {
				if !s.exemptCells[c] {
					s.logf("exempt cell %s (statement of %s)", c.Name, w.Name)
				}
				s.exemptCells[c] = true
			}
			for _, gw := range g.wires {
				if gw.Visibility == netlist.Private {
					s.exemptWires[gw] = true
				} else {
					s.voterCand[gw] = true
				}
			}
		}
	}

	s.result.ExemptWires = len(s.exemptWires)
	s.result.ExemptCells = len(s.exemptCells)
}

// statementGroups returns the statement groups of the private drivers
// assigned to w.
func (s *state) statementGroups(w *netlist.Wire) []*group {
	var groups []*group
	for _, conn := range s.mod.Connections() {
		if conn.Sink.AsWire() != w {
			continue
		}
		driver := conn.Driver.AsWire()
		if driver == nil || driver.Visibility != netlist.Private || !driver.Provenance.Valid() {
			continue
		}
		groups = append(groups, s.statementGroup(driver.Provenance))
	}
	return groups
}

// statementGroup collects the selected private cells that share a
// provenance and every wire bound to their ports. User-named cells never
// join a group, even when their src points at the same line. Groups are
// cached per provenance.
func (s *state) statementGroup(p netlist.Provenance) *group {
	if g, ok := s.groups[p]; ok {
		return g
	}
	g := &group{}
	seen := make(map[*netlist.Wire]bool)
	for _, c := range s.design.SelectedCells(s.mod) {
		if c.Visibility != netlist.Private || c.Provenance != p {
			continue
		}
		g.cells = append(g.cells, c)
		for _, port := range c.PortNames() {
			sig, _ := c.Port(port)
			for _, w := range sig.Wires() {
				if !seen[w] {
					seen[w] = true
					g.wires = append(g.wires, w)
				}
			}
		}
	}
	s.groups[p] = g
	return g
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
