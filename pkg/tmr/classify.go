package tmr

import (
	"github.com/OpenTraceLab/OpenTraceTMR/pkg/netlist"
)

// classifyBoundary finds the pass-through ports and assigns voter or fanout
// candidacy to every exempt wire.
func (s *state) classifyBoundary() {
	// An output port assigned directly from exempt logic stays single-rail.
	drivesPassThrough := make(wireSet)
	for _, conn := range s.mod.Connections() {
		sink := conn.Sink.AsWire()
		if sink == nil || !sink.PortOutput || s.exemptWires[sink] {
			continue
		}
		if !s.allExempt(conn.Driver) {
			continue
		}
		s.passThrough[sink] = true
		for _, w := range conn.Driver.Wires() {
			drivesPassThrough[w] = true
		}
		s.logf("pass-through port %s", sink.Name)
	}

	for _, w := range s.exemptWires.sorted() {
		switch {
		case w.IsPort():
			if w.PortOutput {
				s.voterCand[w] = true
			}
			if w.PortInput {
				s.fanoutCand[w] = true
			}
		case w.Visibility == netlist.Public:
			if drivesPassThrough[w] {
				s.voterCand[w] = true
			} else {
				s.fanoutCand[w] = true
			}
		}
	}
}
