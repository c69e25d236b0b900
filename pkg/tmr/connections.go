package tmr

import (
	"github.com/OpenTraceLab/OpenTraceTMR/pkg/netlist"
)

// rewriteConnections builds the replacement connection list and swaps it
// in. Assignments from exempt wires onto single-rail sinks are kept once;
// all others are emitted once per replica.
func (s *state) rewriteConnections() {
	conns := s.mod.Connections()
	s.result.ConnectionsBefore = len(conns)

	rewritten := make([]netlist.Connection, 0, 3*len(conns))
	for _, conn := range conns {
		if s.allExempt(conn.Driver) && s.singleRail(conn.Sink) {
			rewritten = append(rewritten, conn)
			continue
		}
		for _, suffix := range suffixes {
			rewritten = append(rewritten, netlist.Connection{
				Sink:   s.remap(conn.Sink, suffix),
				Driver: s.remap(conn.Driver, suffix),
			})
		}
	}
	s.mod.SetConnections(rewritten)
}

// dropConnections removes every connection for which drop returns true and
// returns the number removed.
func (s *state) dropConnections(drop func(netlist.Connection) bool) int {
	conns := s.mod.Connections()
	kept := make([]netlist.Connection, 0, len(conns))
	for _, conn := range conns {
		if !drop(conn) {
			kept = append(kept, conn)
		}
	}
	s.mod.SetConnections(kept)
	return len(conns) - len(kept)
}
