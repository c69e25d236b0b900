package tmr

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceTMR/pkg/netlist"
)

// triplicateWires creates the three replicas of every wire that does not
// stay single-rail. Internal originals without a boundary role are queued
// for removal.
func (s *state) triplicateWires() {
	for _, w := range s.origWires {
		if s.single(w) {
			continue
		}
		for _, suffix := range suffixes {
			s.replica(w, suffix)
		}
		s.result.WiresTriplicated++
		if !w.IsPort() && !s.hasCandidacy(w) {
			s.remove[w] = true
		}
	}
}

// isPrimitive reports whether a cell is replicated as three copies: built-in
// cells and black boxes whose type names no module of the design.
func (s *state) isPrimitive(c *netlist.Cell) bool {
	return c.Internal() || s.design.Module(c.Type) == nil
}

// triplicateCells replaces every non-exempt primitive cell by three copies
// wired to the replicas.
func (s *state) triplicateCells() {
	for _, c := range s.mod.Cells() {
		if s.exemptCells[c] || IsReserved(c.Type) || !s.isPrimitive(c) {
			continue
		}
		for _, suffix := range suffixes {
			nc := s.mod.AddCell(s.cellName(c.Name+suffix), c.Type)
			copyParams(nc, c)
			for _, port := range c.PortNames() {
				sig, _ := c.Port(port)
				nc.SetPort(port, s.remap(sig, suffix))
			}
		}
		s.mod.RemoveCell(c)
		s.result.CellsTriplicated++
	}
}

// triplicateInstances replaces every submodule instance by a single cell
// whose ports are the suffixed ports of the triplicated submodule. Ports
// listed in the instance's tmrg_do_not_triplicate attribute stay unsuffixed.
func (s *state) triplicateInstances() error {
	for _, c := range s.mod.Cells() {
		if s.exemptCells[c] || IsReserved(c.Type) || s.isPrimitive(c) {
			continue
		}
		keep := c.Attributes.StringSet(netlist.AttrDoNotTriplicate)
		iface := s.ifaces[c.Type]

		nc := s.mod.AddCell(s.design.NewID("tmrg"), c.Type)
		copyParams(nc, c)
		for _, port := range c.PortNames() {
			sig, _ := c.Port(port)
			if keep[netlist.Unescape(port)] {
				nc.SetPort(port, sig)
				s.classifyInstancePort(c, port, iface[port], sig)
				continue
			}
			for _, suffix := range suffixes {
				nc.SetPort(port+suffix, s.remap(sig, suffix))
			}
		}

		name := c.Name
		s.mod.RemoveCell(c)
		if err := s.mod.RenameCell(nc, name); err != nil {
			return fmt.Errorf("tmr: instance %s: %w", name, err)
		}
		s.result.InstancesTriplicated++
	}
	return nil
}

// classifyInstancePort gives the wire bound to a non-triplicated instance
// port its boundary role.
func (s *state) classifyInstancePort(c *netlist.Cell, port string, dir PortDir, sig netlist.SigSpec) {
	if s.cfg.InstancePorts != InstancePortsClassify {
		return
	}
	w := sig.AsWire()
	if w == nil {
		s.logf("instance %s port %s is not a whole wire, left unclassified", c.Name, port)
		return
	}
	switch {
	case dir&DirInput != 0:
		s.voterCand[w] = true
		s.logf("voter candidate %s (input %s of %s)", w.Name, port, c.Name)
	case dir&DirOutput != 0:
		s.fanoutCand[w] = true
		s.logf("fanout candidate %s (output %s of %s)", w.Name, port, c.Name)
	}
}

func copyParams(dst, src *netlist.Cell) {
	for _, name := range src.Parameters.Names() {
		dst.SetParam(name, src.Parameters[name])
	}
	for _, name := range src.Attributes.Names() {
		dst.SetAttribute(name, src.Attributes[name])
	}
}
