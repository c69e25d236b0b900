package tmr

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceTMR/pkg/netlist"
)

// resolveRoles turns candidacies into roles. A wire that is a candidate
// for both is settled by the conflict policy.
func (s *state) resolveRoles() (fanouts, voters []*netlist.Wire) {
	all := make(wireSet)
	for w := range s.voterCand {
		all[w] = true
	}
	for w := range s.fanoutCand {
		all[w] = true
	}

	for _, w := range all.sorted() {
		// A boundary wire is never removed, whatever its final role.
		delete(s.remove, w)

		v, f := s.voterCand[w], s.fanoutCand[w]
		if v && f {
			s.result.Conflicts++
			switch s.cfg.Conflict {
			case ConflictFanout:
				v = false
			case ConflictReject:
				s.logf("conflicting roles on %s, no primitive inserted", w.Name)
				s.result.Unresolved = append(s.result.Unresolved, w.Name)
				continue
			default:
				f = false
			}
		}
		if f {
			fanouts = append(fanouts, w)
		}
		if v {
			voters = append(voters, w)
		}
	}
	return fanouts, voters
}

// replicasOf ensures the three replicas of w exist and returns them.
// Missing replicas are created as plain internal wires.
func (s *state) replicasOf(w *netlist.Wire) ([3]*netlist.Wire, error) {
	var reps [3]*netlist.Wire
	if s.mod.Wire(w.Name) != w {
		return reps, fmt.Errorf("%w: %s in module %s", ErrMissingWire, w.Name, s.mod.Name)
	}
	for i, suffix := range suffixes {
		r := s.mod.Wire(w.Name + suffix)
		if r == nil {
			r = s.mod.AddWire(w.Name+suffix, w.Width)
			r.Offset = w.Offset
			r.Upto = w.Upto
			r.Signed = w.Signed
			s.replicas[r] = true
		}
		reps[i] = r
	}
	return reps, nil
}

// insertFanout drives the replicas of w from a single fanout cell.
func (s *state) insertFanout(w *netlist.Wire) error {
	reps, err := s.replicasOf(w)
	if err != nil {
		return err
	}

	// w becomes the single input; an output moves to the replicas, which
	// the fanout drives.
	input := w.PortInput
	output := w.PortOutput
	for _, r := range reps {
		input = input || r.PortInput
		output = output || r.PortOutput
	}
	for _, r := range reps {
		r.PortInput = false
		r.PortOutput = output
	}
	w.PortInput = input
	w.PortOutput = false
	s.mod.FixupPorts()
	s.reconciled[w] = true

	c := s.mod.AddCell(s.cellName(w.Name+"_fanout"), FanoutType)
	c.SetParam(`\WIDTH`, netlist.ConstInt(int64(s.cfg.primitiveWidth(w.Width)), 32))
	c.SetPort(`\in`, netlist.SigWire(w))
	for i, suffix := range suffixes {
		c.SetPort(`\out`+suffix, netlist.SigWire(reps[i]))
	}
	s.exemptCells[c] = true

	// The replicas are now driven by the fanout.
	s.dropConnections(func(conn netlist.Connection) bool {
		sink := conn.Sink.AsWire()
		return sink != nil && (sink == reps[0] || sink == reps[1] || sink == reps[2])
	})
	for _, r := range reps {
		if d := s.cellDriving(r, c); d != nil {
			s.result.MultiDriven = append(s.result.MultiDriven, r.Name)
			s.logf("replica %s driven by both %s and %s", r.Name, c.Name, d.Name)
		}
	}

	s.result.Fanouts = append(s.result.Fanouts, w.Name)
	s.logf("fanout %s -> %s", w.Name, c.Name)
	return nil
}

// insertVoter drives w from a majority voter over its replicas.
func (s *state) insertVoter(w *netlist.Wire) error {
	reps, err := s.replicasOf(w)
	if err != nil {
		return err
	}

	// w becomes the single voted output; an input moves to the replicas.
	output := w.PortOutput
	input := w.PortInput
	for _, r := range reps {
		output = output || r.PortOutput
		input = input || r.PortInput
	}
	for _, r := range reps {
		r.PortInput = input
		r.PortOutput = false
	}
	w.PortInput = false
	w.PortOutput = output
	s.mod.FixupPorts()
	s.reconciled[w] = true

	c := s.mod.AddCell(s.cellName(w.Name+"_voter"), VoterType)
	c.SetParam(`\WIDTH`, netlist.ConstInt(int64(s.cfg.primitiveWidth(w.Width)), 32))
	c.SetPort(`\out`, netlist.SigWire(w))
	for i, suffix := range suffixes {
		c.SetPort(`\in`+suffix, netlist.SigWire(reps[i]))
	}
	s.exemptCells[c] = true

	// w is now driven by the voter.
	s.dropConnections(func(conn netlist.Connection) bool {
		return conn.Sink.AsWire() == w
	})

	s.result.Voters = append(s.result.Voters, w.Name)
	s.logf("voter %s -> %s", c.Name, w.Name)
	return nil
}

// cellDriving returns a cell other than except whose output is bound to w,
// or nil. Built-in cells drive their \Y and \Q ports; submodule instances
// are looked up in the interface snapshot.
func (s *state) cellDriving(w *netlist.Wire, except *netlist.Cell) *netlist.Cell {
	for _, c := range s.mod.Cells() {
		if c == except {
			continue
		}
		for _, port := range c.PortNames() {
			if !s.isOutput(c, port) {
				continue
			}
			sig, _ := c.Port(port)
			for _, pw := range sig.Wires() {
				if pw == w {
					return c
				}
			}
		}
	}
	return nil
}

func (s *state) isOutput(c *netlist.Cell, port string) bool {
	if c.Internal() {
		return port == `\Y` || port == `\Q`
	}
	iface := s.ifaces[c.Type]
	if dir, ok := iface[port]; ok {
		return dir&DirOutput != 0
	}
	for _, suffix := range suffixes {
		if base, ok := strings.CutSuffix(port, suffix); ok {
			return iface[base]&DirOutput != 0
		}
	}
	return false
}
